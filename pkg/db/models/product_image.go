package models

import (
	"time"

	"github.com/google/uuid"
)

// ProductImage stores a display asset for a product.
type ProductImage struct {
	ID        uuid.UUID `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	ProductID uuid.UUID `gorm:"column:product_id;type:uuid;not null"`
	URL       string    `gorm:"column:url;not null"`
	IsMain    bool      `gorm:"column:is_main;not null;default:false"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
}
