package articles

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/oduntan/giftregistry-backend/pkg/db"
	"github.com/oduntan/giftregistry-backend/pkg/db/models"
	pkgerrors "github.com/oduntan/giftregistry-backend/pkg/errors"
	"github.com/oduntan/giftregistry-backend/pkg/logger"
	"github.com/oduntan/giftregistry-backend/pkg/pagination"
	"github.com/oduntan/giftregistry-backend/pkg/slug"
)

// ListParams filters and pages the public article listing.
type ListParams struct {
	TagSlug string
	Limit   int
	Cursor  string
}

// Page is one window of the article listing.
type Page struct {
	Articles   []models.Article `json:"articles"`
	NextCursor string           `json:"next_cursor,omitempty"`
}

// ArticleInput carries admin-supplied fields for a new or edited article.
type ArticleInput struct {
	Title       string   `json:"title,omitempty"`
	Summary     string   `json:"summary,omitempty"`
	Content     string   `json:"content,omitempty"`
	ImageURL    *string  `json:"image_url,omitempty"`
	IsPublished *bool    `json:"is_published,omitempty"`
	Tags        []string `json:"tags,omitempty"`
}

// Service owns blog browsing and admin maintenance.
type Service interface {
	List(ctx context.Context, params ListParams) (*Page, error)
	GetBySlug(ctx context.Context, slug string) (*models.Article, error)
	ListTags(ctx context.Context) ([]models.Tag, error)
	Create(ctx context.Context, adminID uuid.UUID, input ArticleInput) (*models.Article, error)
	Update(ctx context.Context, articleID uuid.UUID, input ArticleInput) (*models.Article, error)
}

type service struct {
	repo Repository
	logg *logger.Logger
}

// NewService builds a blog service with the required dependencies.
func NewService(repo Repository, logg *logger.Logger) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("articles repository required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &service{repo: repo, logg: logg}, nil
}

func (s *service) List(ctx context.Context, params ListParams) (*Page, error) {
	cursor, err := pagination.ParseCursor(params.Cursor)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "parse cursor")
	}

	articles, err := s.repo.ListPublished(ctx, ListFilter{
		TagSlug: strings.TrimSpace(params.TagSlug),
		Limit:   params.Limit,
		Cursor:  cursor,
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list articles")
	}

	page := &Page{Articles: articles}
	limit := pagination.NormalizeLimit(params.Limit)
	if len(articles) > limit {
		page.Articles = articles[:limit]
		last := page.Articles[limit-1]
		page.NextCursor = pagination.EncodeCursor(pagination.Cursor{
			CreatedAt: last.CreatedAt,
			ID:        last.ID,
		})
	}
	return page, nil
}

// GetBySlug returns a published article and bumps its view counter. The bump
// is best effort; a failed counter write never hides the article.
func (s *service) GetBySlug(ctx context.Context, articleSlug string) (*models.Article, error) {
	article, err := s.repo.FindBySlug(ctx, strings.TrimSpace(articleSlug))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "article not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load article")
	}
	if !article.IsPublished {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "article not found")
	}

	if err := s.repo.IncrementViewCount(ctx, article.ID); err != nil {
		wctx := s.logg.WithField(ctx, "article_id", article.ID.String())
		s.logg.Warn(wctx, "failed to bump article view count: "+err.Error())
	} else {
		article.ViewCount++
	}
	return article, nil
}

func (s *service) ListTags(ctx context.Context) ([]models.Tag, error) {
	tags, err := s.repo.ListTags(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list tags")
	}
	return tags, nil
}

func (s *service) Create(ctx context.Context, adminID uuid.UUID, input ArticleInput) (*models.Article, error) {
	input.Title = strings.TrimSpace(input.Title)
	if input.Title == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "article title required")
	}
	if strings.TrimSpace(input.Content) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "article content required")
	}

	tags, err := s.resolveTags(ctx, input.Tags)
	if err != nil {
		return nil, err
	}

	published := true
	if input.IsPublished != nil {
		published = *input.IsPublished
	}

	article := &models.Article{
		Title:       input.Title,
		Slug:        slug.Make(input.Title),
		Summary:     strings.TrimSpace(input.Summary),
		ImageURL:    input.ImageURL,
		Content:     input.Content,
		IsPublished: published,
		CreatedByID: &adminID,
		Tags:        tags,
	}
	created, err := s.repo.Create(ctx, article)
	if err != nil {
		if db.IsUniqueViolation(err) {
			return nil, pkgerrors.New(pkgerrors.CodeConflict, "an article with this title already exists")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create article")
	}

	ctx = s.logg.WithFields(ctx, map[string]any{
		"article_id": created.ID.String(),
		"slug":       created.Slug,
	})
	s.logg.Info(ctx, "article created")
	return created, nil
}

func (s *service) Update(ctx context.Context, articleID uuid.UUID, input ArticleInput) (*models.Article, error) {
	article, err := s.findByID(ctx, articleID)
	if err != nil {
		return nil, err
	}

	updates := map[string]any{}
	if title := strings.TrimSpace(input.Title); title != "" {
		updates["title"] = title
	}
	if summary := strings.TrimSpace(input.Summary); summary != "" {
		updates["summary"] = summary
	}
	if strings.TrimSpace(input.Content) != "" {
		updates["content"] = input.Content
	}
	if input.ImageURL != nil {
		updates["image_url"] = *input.ImageURL
	}
	if input.IsPublished != nil {
		updates["is_published"] = *input.IsPublished
	}
	if len(updates) > 0 {
		if err := s.repo.Update(ctx, article.ID, updates); err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update article")
		}
	}

	if input.Tags != nil {
		tags, err := s.resolveTags(ctx, input.Tags)
		if err != nil {
			return nil, err
		}
		if err := s.repo.ReplaceTags(ctx, article, tags); err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "replace article tags")
		}
	}
	return s.findByID(ctx, articleID)
}

// resolveTags finds each named tag, creating the ones that do not exist yet.
func (s *service) resolveTags(ctx context.Context, names []string) ([]models.Tag, error) {
	var tags []models.Tag
	seen := map[string]bool{}
	for _, name := range names {
		name = strings.TrimSpace(name)
		if name == "" || seen[strings.ToLower(name)] {
			continue
		}
		seen[strings.ToLower(name)] = true

		tag, err := s.repo.FindTagByName(ctx, name)
		if err != nil {
			if !errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load tag")
			}
			tag, err = s.repo.CreateTag(ctx, &models.Tag{Name: name, Slug: slug.Make(name)})
			if err != nil {
				return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create tag")
			}
		}
		tags = append(tags, *tag)
	}
	return tags, nil
}

func (s *service) findByID(ctx context.Context, id uuid.UUID) (*models.Article, error) {
	article, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "article not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load article")
	}
	return article, nil
}
