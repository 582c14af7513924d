package models

import (
	"time"

	"github.com/google/uuid"
)

// RegistryProduct links a product onto a registry's wishlist. Unit price is
// not stored here; the cart snapshots it from Product at add time.
type RegistryProduct struct {
	ID         uuid.UUID `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	RegistryID uuid.UUID `gorm:"column:registry_id;type:uuid;not null;index:idx_registry_products_pair,unique"`
	ProductID  uuid.UUID `gorm:"column:product_id;type:uuid;not null;index:idx_registry_products_pair,unique"`
	Purchased  bool      `gorm:"column:purchased;not null;default:false"`
	Registry   *Registry `gorm:"foreignKey:RegistryID"`
	Product    *Product  `gorm:"foreignKey:ProductID"`
	CreatedAt  time.Time `gorm:"column:created_at;autoCreateTime"`
}
