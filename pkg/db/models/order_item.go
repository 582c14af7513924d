package models

import (
	"time"

	"github.com/google/uuid"
)

// OrderItem snapshots one cart line at checkout. Quantity and prices are
// copied verbatim from the session cart, never recomputed afterwards.
type OrderItem struct {
	ID                uuid.UUID        `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	OrderID           uuid.UUID        `gorm:"column:order_id;type:uuid;not null"`
	RegistryProductID uuid.UUID        `gorm:"column:registry_product_id;type:uuid;not null"`
	Quantity          int              `gorm:"column:quantity;not null;default:1"`
	UnitPriceKobo     int64            `gorm:"column:unit_price_kobo;not null"`
	TotalPriceKobo    int64            `gorm:"column:total_price_kobo;not null"`
	RegistryProduct   *RegistryProduct `gorm:"foreignKey:RegistryProductID"`
	CreatedAt         time.Time        `gorm:"column:created_at;autoCreateTime"`
}
