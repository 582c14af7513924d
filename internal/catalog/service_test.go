package catalog

import (
	"context"
	"io"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/oduntan/giftregistry-backend/pkg/db/models"
	pkgerrors "github.com/oduntan/giftregistry-backend/pkg/errors"
	"github.com/oduntan/giftregistry-backend/pkg/logger"
)

func setupCatalogTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{})
	require.NoError(t, err)

	statements := []string{`
CREATE TABLE IF NOT EXISTS categories (
  id TEXT PRIMARY KEY,
  name TEXT NOT NULL UNIQUE,
  slug TEXT NOT NULL UNIQUE,
  created_by_id TEXT,
  created_at DATETIME,
  updated_at DATETIME
);`, `
CREATE TABLE IF NOT EXISTS products (
  id TEXT PRIMARY KEY,
  name TEXT NOT NULL,
  slug TEXT NOT NULL UNIQUE,
  category_id TEXT NOT NULL,
  description TEXT NOT NULL,
  sku TEXT,
  price_kobo INTEGER NOT NULL,
  is_available INTEGER NOT NULL DEFAULT 1,
  created_by_id TEXT,
  created_at DATETIME,
  updated_at DATETIME
);`, `
CREATE TABLE IF NOT EXISTS product_images (
  id TEXT PRIMARY KEY,
  product_id TEXT NOT NULL,
  url TEXT NOT NULL,
  is_main INTEGER NOT NULL DEFAULT 0,
  created_at DATETIME
);`}
	for _, stmt := range statements {
		require.NoError(t, db.Exec(stmt).Error)
	}
	return db
}

func newCatalogService(t *testing.T) (Service, Repository) {
	t.Helper()
	repo := NewRepository(setupCatalogTestDB(t))
	logg := logger.New(logger.Options{ServiceName: "catalog-test", Output: io.Discard})
	svc, err := NewService(repo, logg)
	require.NoError(t, err)
	return svc, repo
}

func seedCategory(t *testing.T, repo Repository, name, slug string) *models.Category {
	t.Helper()
	category, err := repo.CreateCategory(context.Background(), &models.Category{Name: name, Slug: slug})
	require.NoError(t, err)
	return category
}

func seedProduct(t *testing.T, repo Repository, categoryID uuid.UUID, name, slug string, priceKobo int64, createdAt time.Time) *models.Product {
	t.Helper()
	product, err := repo.CreateProduct(context.Background(), &models.Product{
		Name:        name,
		Slug:        slug,
		CategoryID:  categoryID,
		Description: name,
		PriceKobo:   priceKobo,
		IsAvailable: true,
		CreatedAt:   createdAt,
	})
	require.NoError(t, err)
	return product
}

func TestBrowsePagesWithCursor(t *testing.T) {
	svc, repo := newCatalogService(t)
	category := seedCategory(t, repo, "Kitchen", "kitchen")

	base := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	for i := 0; i < 5; i++ {
		seedProduct(t, repo, category.ID, "Item", uuid.NewString(), 10000, base.Add(time.Duration(i)*time.Minute))
	}

	first, err := svc.Browse(context.Background(), BrowseParams{Limit: 2})
	require.NoError(t, err)
	require.Len(t, first.Products, 2)
	require.NotEmpty(t, first.NextCursor)

	second, err := svc.Browse(context.Background(), BrowseParams{Limit: 2, Cursor: first.NextCursor})
	require.NoError(t, err)
	require.Len(t, second.Products, 2)
	require.NotEmpty(t, second.NextCursor)

	third, err := svc.Browse(context.Background(), BrowseParams{Limit: 2, Cursor: second.NextCursor})
	require.NoError(t, err)
	require.Len(t, third.Products, 1)
	assert.Empty(t, third.NextCursor)

	seen := map[uuid.UUID]bool{}
	for _, page := range [][]models.Product{first.Products, second.Products, third.Products} {
		for _, p := range page {
			assert.False(t, seen[p.ID], "product repeated across pages")
			seen[p.ID] = true
		}
	}
	require.Len(t, seen, 5)
}

func TestBrowseFiltersByCategoryAndAvailability(t *testing.T) {
	svc, repo := newCatalogService(t)
	kitchen := seedCategory(t, repo, "Kitchen", "kitchen")
	decor := seedCategory(t, repo, "Decor", "decor")

	now := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	seedProduct(t, repo, kitchen.ID, "Blender", "blender", 45000, now)
	seedProduct(t, repo, decor.ID, "Vase", "vase", 12000, now.Add(time.Minute))
	hidden := seedProduct(t, repo, kitchen.ID, "Old Kettle", "old-kettle", 9000, now.Add(2*time.Minute))
	require.NoError(t, repo.UpdateProduct(context.Background(), hidden.ID, map[string]any{"is_available": false}))

	page, err := svc.Browse(context.Background(), BrowseParams{CategorySlug: "kitchen"})
	require.NoError(t, err)
	require.Len(t, page.Products, 1)
	assert.Equal(t, "Blender", page.Products[0].Name)
}

func TestBrowseSearchMatchesNameAndDescription(t *testing.T) {
	svc, repo := newCatalogService(t)
	category := seedCategory(t, repo, "Kitchen", "kitchen")

	now := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	seedProduct(t, repo, category.ID, "Stand Mixer", "stand-mixer", 185000, now)
	seedProduct(t, repo, category.ID, "Air Fryer", "air-fryer", 95000, now.Add(time.Minute))

	page, err := svc.Browse(context.Background(), BrowseParams{Search: "mixer"})
	require.NoError(t, err)
	require.Len(t, page.Products, 1)
	assert.Equal(t, "Stand Mixer", page.Products[0].Name)
}

func TestBrowseRejectsMalformedCursor(t *testing.T) {
	svc, _ := newCatalogService(t)

	_, err := svc.Browse(context.Background(), BrowseParams{Cursor: "not-base64!!"})
	require.Error(t, err)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))
}

func TestGetProductLoadsImagesAndCategory(t *testing.T) {
	svc, repo := newCatalogService(t)
	category := seedCategory(t, repo, "Kitchen", "kitchen")

	_, err := repo.CreateProduct(context.Background(), &models.Product{
		Name:        "Blender",
		Slug:        "blender",
		CategoryID:  category.ID,
		Description: "700W blender",
		PriceKobo:   45000,
		IsAvailable: true,
		Images: []models.ProductImage{
			{URL: "https://cdn.example.com/blender-main.jpg", IsMain: true},
			{URL: "https://cdn.example.com/blender-side.jpg"},
		},
	})
	require.NoError(t, err)

	product, err := svc.GetProduct(context.Background(), "blender")
	require.NoError(t, err)
	require.Len(t, product.Images, 2)
	require.NotNil(t, product.Category)
	assert.Equal(t, "Kitchen", product.Category.Name)
	require.NotNil(t, product.MainImage())
	assert.Equal(t, "https://cdn.example.com/blender-main.jpg", product.MainImage().URL)

	_, err = svc.GetProduct(context.Background(), "missing")
	require.Error(t, err)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeNotFound))
}

func TestCreateProductValidatesAndSlugs(t *testing.T) {
	svc, repo := newCatalogService(t)
	seedCategory(t, repo, "Kitchen", "kitchen")
	adminID := uuid.New()

	created, err := svc.CreateProduct(context.Background(), adminID, ProductInput{
		Name:         "Cast Iron Pot",
		CategorySlug: "kitchen",
		Description:  "5L enamelled pot",
		PriceKobo:    78000,
		Images:       []ImageInput{{URL: "https://cdn.example.com/pot.jpg", IsMain: true}},
	})
	require.NoError(t, err)
	assert.Equal(t, "cast-iron-pot", created.Slug)
	require.NotNil(t, created.CreatedByID)
	assert.Equal(t, adminID, *created.CreatedByID)

	_, err = svc.CreateProduct(context.Background(), adminID, ProductInput{
		Name:         "Free Pot",
		CategorySlug: "kitchen",
		Description:  "no price",
		PriceKobo:    0,
	})
	require.Error(t, err)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))

	_, err = svc.CreateProduct(context.Background(), adminID, ProductInput{
		Name:         "Orphan",
		CategorySlug: "missing",
		Description:  "no category",
		PriceKobo:    1000,
	})
	require.Error(t, err)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeNotFound))

	_, err = svc.CreateProduct(context.Background(), adminID, ProductInput{
		Name:         "Cast Iron Pot",
		CategorySlug: "kitchen",
		Description:  "duplicate slug",
		PriceKobo:    78000,
	})
	require.Error(t, err)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeConflict))
}

func TestUpdateProductAppliesPartialEdits(t *testing.T) {
	svc, repo := newCatalogService(t)
	category := seedCategory(t, repo, "Kitchen", "kitchen")
	product := seedProduct(t, repo, category.ID, "Blender", "blender", 45000, time.Now().UTC())

	price := int64(52000)
	unavailable := false
	updated, err := svc.UpdateProduct(context.Background(), product.ID, ProductUpdate{
		PriceKobo:   &price,
		IsAvailable: &unavailable,
	})
	require.NoError(t, err)
	assert.Equal(t, price, updated.PriceKobo)
	assert.False(t, updated.IsAvailable)
	assert.Equal(t, "Blender", updated.Name)

	bad := int64(-1)
	_, err = svc.UpdateProduct(context.Background(), product.ID, ProductUpdate{PriceKobo: &bad})
	require.Error(t, err)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))
}

func TestCreateCategoryRejectsDuplicates(t *testing.T) {
	svc, _ := newCatalogService(t)
	adminID := uuid.New()

	created, err := svc.CreateCategory(context.Background(), adminID, CategoryInput{Name: "Home Office"})
	require.NoError(t, err)
	assert.Equal(t, "home-office", created.Slug)

	_, err = svc.CreateCategory(context.Background(), adminID, CategoryInput{Name: "Home Office"})
	require.Error(t, err)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeConflict))
}
