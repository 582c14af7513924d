package registries

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/oduntan/giftregistry-backend/pkg/db/models"
)

// Repository defines persistence operations for registries and their
// attachments.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, registry *models.Registry) (*models.Registry, error)
	FindRegistry(ctx context.Context, id uuid.UUID) (*models.Registry, error)
	FindBySlug(ctx context.Context, slug string) (*models.Registry, error)
	SlugExists(ctx context.Context, slug string) (bool, error)
	ListByOwner(ctx context.Context, ownerID uuid.UUID) ([]models.Registry, error)
	Update(ctx context.Context, id uuid.UUID, updates map[string]any) error
	AddProduct(ctx context.Context, rp *models.RegistryProduct) (*models.RegistryProduct, error)
	FindProduct(ctx context.Context, registryID, registryProductID uuid.UUID) (*models.RegistryProduct, error)
	RemoveProduct(ctx context.Context, registryProductID uuid.UUID) error
	UpsertDeliveryAddress(ctx context.Context, addr *models.RegistryDeliveryAddress) error
	UpsertFund(ctx context.Context, fund *models.HoneymoonFund) error
}

type repository struct {
	db *gorm.DB
}

// NewRepository builds a registries repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) Create(ctx context.Context, registry *models.Registry) (*models.Registry, error) {
	if registry.ID == uuid.Nil {
		registry.ID = uuid.New()
	}
	if err := r.db.WithContext(ctx).Create(registry).Error; err != nil {
		return nil, err
	}
	return registry, nil
}

func (r *repository) FindRegistry(ctx context.Context, id uuid.UUID) (*models.Registry, error) {
	var registry models.Registry
	err := r.db.WithContext(ctx).
		Where("id = ?", id).
		First(&registry).Error
	if err != nil {
		return nil, err
	}
	return &registry, nil
}

func (r *repository) FindBySlug(ctx context.Context, slug string) (*models.Registry, error) {
	var registry models.Registry
	err := r.db.WithContext(ctx).
		Preload("Products.Product.Images").
		Preload("Delivery").
		Preload("Fund").
		Where("slug = ?", slug).
		First(&registry).Error
	if err != nil {
		return nil, err
	}
	return &registry, nil
}

func (r *repository) SlugExists(ctx context.Context, slug string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.Registry{}).
		Where("slug = ?", slug).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *repository) ListByOwner(ctx context.Context, ownerID uuid.UUID) ([]models.Registry, error) {
	var registries []models.Registry
	err := r.db.WithContext(ctx).
		Preload("Products").
		Where("owner_id = ?", ownerID).
		Order("created_at DESC").
		Find(&registries).Error
	if err != nil {
		return nil, err
	}
	return registries, nil
}

func (r *repository) Update(ctx context.Context, id uuid.UUID, updates map[string]any) error {
	return r.db.WithContext(ctx).
		Model(&models.Registry{}).
		Where("id = ?", id).
		Updates(updates).Error
}

func (r *repository) AddProduct(ctx context.Context, rp *models.RegistryProduct) (*models.RegistryProduct, error) {
	if rp.ID == uuid.Nil {
		rp.ID = uuid.New()
	}
	if err := r.db.WithContext(ctx).Create(rp).Error; err != nil {
		return nil, err
	}
	return rp, nil
}

func (r *repository) FindProduct(ctx context.Context, registryID, registryProductID uuid.UUID) (*models.RegistryProduct, error) {
	var rp models.RegistryProduct
	err := r.db.WithContext(ctx).
		Where("id = ? AND registry_id = ?", registryProductID, registryID).
		First(&rp).Error
	if err != nil {
		return nil, err
	}
	return &rp, nil
}

func (r *repository) RemoveProduct(ctx context.Context, registryProductID uuid.UUID) error {
	return r.db.WithContext(ctx).
		Where("id = ?", registryProductID).
		Delete(&models.RegistryProduct{}).Error
}

func (r *repository) UpsertDeliveryAddress(ctx context.Context, addr *models.RegistryDeliveryAddress) error {
	var existing models.RegistryDeliveryAddress
	err := r.db.WithContext(ctx).
		Where("registry_id = ?", addr.RegistryID).
		First(&existing).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			if addr.ID == uuid.Nil {
				addr.ID = uuid.New()
			}
			return r.db.WithContext(ctx).Create(addr).Error
		}
		return err
	}
	return r.db.WithContext(ctx).
		Model(&existing).
		Updates(map[string]any{
			"name":         addr.Name,
			"phone_number": addr.PhoneNumber,
			"address":      addr.Address,
			"city":         addr.City,
			"state":        addr.State,
		}).Error
}

func (r *repository) UpsertFund(ctx context.Context, fund *models.HoneymoonFund) error {
	var existing models.HoneymoonFund
	err := r.db.WithContext(ctx).
		Where("registry_id = ?", fund.RegistryID).
		First(&existing).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			if fund.ID == uuid.Nil {
				fund.ID = uuid.New()
			}
			return r.db.WithContext(ctx).Create(fund).Error
		}
		return err
	}
	return r.db.WithContext(ctx).
		Model(&existing).
		Updates(map[string]any{
			"message":            fund.Message,
			"target_amount_kobo": fund.TargetAmountKobo,
		}).Error
}
