package articles

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/oduntan/giftregistry-backend/pkg/db/models"
	"github.com/oduntan/giftregistry-backend/pkg/pagination"
)

// ListFilter narrows a published article page.
type ListFilter struct {
	TagSlug string
	Limit   int
	Cursor  *pagination.Cursor
}

// Repository defines persistence operations for the blog.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	ListPublished(ctx context.Context, filter ListFilter) ([]models.Article, error)
	FindBySlug(ctx context.Context, slug string) (*models.Article, error)
	FindByID(ctx context.Context, id uuid.UUID) (*models.Article, error)
	IncrementViewCount(ctx context.Context, id uuid.UUID) error
	Create(ctx context.Context, article *models.Article) (*models.Article, error)
	Update(ctx context.Context, id uuid.UUID, updates map[string]any) error
	FindTagByName(ctx context.Context, name string) (*models.Tag, error)
	CreateTag(ctx context.Context, tag *models.Tag) (*models.Tag, error)
	ListTags(ctx context.Context) ([]models.Tag, error)
	ReplaceTags(ctx context.Context, article *models.Article, tags []models.Tag) error
}

type repository struct {
	db *gorm.DB
}

// NewRepository builds a blog repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) ListPublished(ctx context.Context, filter ListFilter) ([]models.Article, error) {
	query := r.db.WithContext(ctx).
		Model(&models.Article{}).
		Preload("Tags").
		Where("articles.is_published = ?", true)

	if filter.TagSlug != "" {
		query = query.
			Joins("JOIN article_tags ON article_tags.article_id = articles.id").
			Joins("JOIN tags ON tags.id = article_tags.tag_id").
			Where("tags.slug = ?", filter.TagSlug)
	}
	if filter.Cursor != nil {
		query = query.Where(
			"(articles.created_at, articles.id) < (?, ?)",
			filter.Cursor.CreatedAt, filter.Cursor.ID,
		)
	}

	var articles []models.Article
	err := query.
		Order("articles.created_at DESC, articles.id DESC").
		Limit(pagination.LimitWithBuffer(filter.Limit)).
		Find(&articles).Error
	if err != nil {
		return nil, err
	}
	return articles, nil
}

func (r *repository) FindBySlug(ctx context.Context, slug string) (*models.Article, error) {
	var article models.Article
	err := r.db.WithContext(ctx).
		Preload("Tags").
		Where("slug = ?", slug).
		First(&article).Error
	if err != nil {
		return nil, err
	}
	return &article, nil
}

func (r *repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Article, error) {
	var article models.Article
	err := r.db.WithContext(ctx).
		Preload("Tags").
		Where("id = ?", id).
		First(&article).Error
	if err != nil {
		return nil, err
	}
	return &article, nil
}

func (r *repository) IncrementViewCount(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).
		Model(&models.Article{}).
		Where("id = ?", id).
		UpdateColumn("view_count", gorm.Expr("view_count + 1")).Error
}

func (r *repository) Create(ctx context.Context, article *models.Article) (*models.Article, error) {
	if article.ID == uuid.Nil {
		article.ID = uuid.New()
	}
	if err := r.db.WithContext(ctx).Create(article).Error; err != nil {
		return nil, err
	}
	return article, nil
}

func (r *repository) Update(ctx context.Context, id uuid.UUID, updates map[string]any) error {
	return r.db.WithContext(ctx).
		Model(&models.Article{}).
		Where("id = ?", id).
		Updates(updates).Error
}

func (r *repository) FindTagByName(ctx context.Context, name string) (*models.Tag, error) {
	var tag models.Tag
	err := r.db.WithContext(ctx).
		Where("name = ?", name).
		First(&tag).Error
	if err != nil {
		return nil, err
	}
	return &tag, nil
}

func (r *repository) CreateTag(ctx context.Context, tag *models.Tag) (*models.Tag, error) {
	if tag.ID == uuid.Nil {
		tag.ID = uuid.New()
	}
	if err := r.db.WithContext(ctx).Create(tag).Error; err != nil {
		return nil, err
	}
	return tag, nil
}

func (r *repository) ListTags(ctx context.Context) ([]models.Tag, error) {
	var tags []models.Tag
	err := r.db.WithContext(ctx).
		Order("name ASC").
		Find(&tags).Error
	if err != nil {
		return nil, err
	}
	return tags, nil
}

func (r *repository) ReplaceTags(ctx context.Context, article *models.Article, tags []models.Tag) error {
	return r.db.WithContext(ctx).
		Model(article).
		Association("Tags").
		Replace(tags)
}
