package cart

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/oduntan/giftregistry-backend/pkg/db/models"
)

// Repository reads the catalog rows the cart needs at add time.
type Repository interface {
	FindRegistryProduct(ctx context.Context, id uuid.UUID) (*models.RegistryProduct, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository builds a cart repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) FindRegistryProduct(ctx context.Context, id uuid.UUID) (*models.RegistryProduct, error) {
	var rp models.RegistryProduct
	err := r.db.WithContext(ctx).
		Preload("Product.Images").
		Preload("Registry").
		Where("id = ?", id).
		First(&rp).Error
	if err != nil {
		return nil, err
	}
	return &rp, nil
}
