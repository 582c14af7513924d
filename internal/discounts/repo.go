package discounts

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/oduntan/giftregistry-backend/pkg/db/models"
)

// Repository defines persistence operations for promo codes.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	FindByCode(ctx context.Context, code string) (*models.Discount, error)
	Create(ctx context.Context, discount *models.Discount) (*models.Discount, error)
	Deactivate(ctx context.Context, code string) error
}

type repository struct {
	db *gorm.DB
}

// NewRepository builds a discounts repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) FindByCode(ctx context.Context, code string) (*models.Discount, error) {
	var discount models.Discount
	err := r.db.WithContext(ctx).
		Where("code = ?", code).
		First(&discount).Error
	if err != nil {
		return nil, err
	}
	return &discount, nil
}

func (r *repository) Create(ctx context.Context, discount *models.Discount) (*models.Discount, error) {
	if discount.ID == uuid.Nil {
		discount.ID = uuid.New()
	}
	if err := r.db.WithContext(ctx).Create(discount).Error; err != nil {
		return nil, err
	}
	return discount, nil
}

func (r *repository) Deactivate(ctx context.Context, code string) error {
	return r.db.WithContext(ctx).
		Model(&models.Discount{}).
		Where("code = ?", code).
		Update("is_active", false).Error
}
