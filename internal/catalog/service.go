package catalog

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

// BrowseParams filters and pages the storefront product listing.
type BrowseParams struct {
	CategorySlug string
	Search       string
	Limit        int
	Cursor       string
}

// Page is one window of the product listing.
type Page struct {
	Products   []models.Product `json:"products"`
	NextCursor string           `json:"next_cursor,omitempty"`
}

// ImageInput describes one product image on create.
type ImageInput struct {
	URL    string `json:"url" validate:"required,url"`
	IsMain bool   `json:"is_main"`
}

// ProductInput carries admin-supplied fields for a new product.
type ProductInput struct {
	Name         string       `json:"name" validate:"required"`
	Slug         string       `json:"slug,omitempty"`
	CategorySlug string       `json:"category_slug" validate:"required"`
	Description  string       `json:"description" validate:"required"`
	SKU          *string      `json:"sku,omitempty"`
	PriceKobo    int64        `json:"price_kobo" validate:"required,gt=0"`
	Images       []ImageInput `json:"images,omitempty"`
}

// ProductUpdate carries optional product edits; nil fields stay untouched.
type ProductUpdate struct {
	Name        *string `json:"name,omitempty"`
	Description *string `json:"description,omitempty"`
	PriceKobo   *int64  `json:"price_kobo,omitempty"`
	IsAvailable *bool   `json:"is_available,omitempty"`
}

// CategoryInput carries admin-supplied fields for a new category.
type CategoryInput struct {
	Name string `json:"name" validate:"required"`
	Slug string `json:"slug,omitempty"`
}

// Service owns catalog browsing and admin maintenance.
type Service interface {
	Browse(ctx context.Context, params BrowseParams) (*Page, error)
	GetProduct(ctx context.Context, slug string) (*models.Product, error)
	ListCategories(ctx context.Context) ([]models.Category, error)
	CreateProduct(ctx context.Context, adminID uuid.UUID, input ProductInput) (*models.Product, error)
	UpdateProduct(ctx context.Context, productID uuid.UUID, input ProductUpdate) (*models.Product, error)
	CreateCategory(ctx context.Context, adminID uuid.UUID, input CategoryInput) (*models.Category, error)
}

type service struct {
	repo Repository
	logg *logger.Logger
}

// NewService builds a catalog service with the required dependencies.
func NewService(repo Repository, logg *logger.Logger) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("catalog repository required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &service{repo: repo, logg: logg}, nil
}

func (s *service) Browse(ctx context.Context, params BrowseParams) (*Page, error) {
	cursor, err := pagination.ParseCursor(params.Cursor)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "parse cursor")
	}

	products, err := s.repo.ListProducts(ctx, ListFilter{
		CategorySlug: strings.TrimSpace(params.CategorySlug),
		Search:       strings.TrimSpace(params.Search),
		Limit:        params.Limit,
		Cursor:       cursor,
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list products")
	}

	page := &Page{Products: products}
	limit := pagination.NormalizeLimit(params.Limit)
	if len(products) > limit {
		page.Products = products[:limit]
		last := page.Products[limit-1]
		page.NextCursor = pagination.EncodeCursor(pagination.Cursor{
			CreatedAt: last.CreatedAt,
			ID:        last.ID,
		})
	}
	return page, nil
}

func (s *service) GetProduct(ctx context.Context, slug string) (*models.Product, error) {
	product, err := s.repo.FindProductBySlug(ctx, strings.TrimSpace(slug))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load product")
	}
	return product, nil
}

func (s *service) ListCategories(ctx context.Context) ([]models.Category, error) {
	categories, err := s.repo.ListCategories(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list categories")
	}
	return categories, nil
}

func (s *service) CreateProduct(ctx context.Context, adminID uuid.UUID, input ProductInput) (*models.Product, error) {
	input.Name = strings.TrimSpace(input.Name)
	if input.Name == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "product name required")
	}
	if input.PriceKobo <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "price must be positive")
	}

	category, err := s.repo.FindCategoryBySlug(ctx, strings.TrimSpace(input.CategorySlug))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "category not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load category")
	}

	productSlug := strings.TrimSpace(input.Slug)
	if productSlug == "" {
		productSlug = slug.Make(input.Name)
	}

	product := &models.Product{
		Name:        input.Name,
		Slug:        productSlug,
		CategoryID:  category.ID,
		Description: strings.TrimSpace(input.Description),
		SKU:         input.SKU,
		PriceKobo:   input.PriceKobo,
		IsAvailable: true,
		CreatedByID: &adminID,
	}
	for _, img := range input.Images {
		product.Images = append(product.Images, models.ProductImage{
			URL:    img.URL,
			IsMain: img.IsMain,
		})
	}

	created, err := s.repo.CreateProduct(ctx, product)
	if err != nil {
		if db.IsUniqueViolation(err) {
			return nil, pkgerrors.New(pkgerrors.CodeConflict, "product slug already exists")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create product")
	}

	ctx = s.logg.WithFields(ctx, map[string]any{
		"product_id": created.ID.String(),
		"slug":       created.Slug,
	})
	s.logg.Info(ctx, "product created")
	return created, nil
}

func (s *service) UpdateProduct(ctx context.Context, productID uuid.UUID, input ProductUpdate) (*models.Product, error) {
	product, err := s.repo.FindProduct(ctx, productID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load product")
	}

	updates := map[string]any{}
	if input.Name != nil {
		name := strings.TrimSpace(*input.Name)
		if name == "" {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "product name cannot be blank")
		}
		updates["name"] = name
	}
	if input.Description != nil {
		updates["description"] = strings.TrimSpace(*input.Description)
	}
	if input.PriceKobo != nil {
		if *input.PriceKobo <= 0 {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "price must be positive")
		}
		updates["price_kobo"] = *input.PriceKobo
	}
	if input.IsAvailable != nil {
		updates["is_available"] = *input.IsAvailable
	}
	if len(updates) == 0 {
		return product, nil
	}

	if err := s.repo.UpdateProduct(ctx, product.ID, updates); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update product")
	}
	return s.repo.FindProduct(ctx, product.ID)
}

func (s *service) CreateCategory(ctx context.Context, adminID uuid.UUID, input CategoryInput) (*models.Category, error) {
	input.Name = strings.TrimSpace(input.Name)
	if input.Name == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "category name required")
	}

	categorySlug := strings.TrimSpace(input.Slug)
	if categorySlug == "" {
		categorySlug = slug.Make(input.Name)
	}

	created, err := s.repo.CreateCategory(ctx, &models.Category{
		Name:        input.Name,
		Slug:        categorySlug,
		CreatedByID: &adminID,
	})
	if err != nil {
		if db.IsUniqueViolation(err) {
			return nil, pkgerrors.New(pkgerrors.CodeConflict, "category already exists")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create category")
	}
	return created, nil
}
