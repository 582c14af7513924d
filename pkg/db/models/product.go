package models

import (
	"time"

	"github.com/google/uuid"
)

// Product is a catalog listing. Prices are stored in kobo (NGN minor units);
// the cart reads PriceKobo live at add time, it is never denormalized here.
type Product struct {
	ID          uuid.UUID      `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	Name        string         `gorm:"column:name;not null"`
	Slug        string         `gorm:"column:slug;not null;uniqueIndex"`
	CategoryID  uuid.UUID      `gorm:"column:category_id;type:uuid;not null"`
	Description string         `gorm:"column:description;not null"`
	SKU         *string        `gorm:"column:sku"`
	PriceKobo   int64          `gorm:"column:price_kobo;not null"`
	IsAvailable bool           `gorm:"column:is_available;not null"`
	CreatedByID *uuid.UUID     `gorm:"column:created_by_id;type:uuid"`
	Category    *Category      `gorm:"foreignKey:CategoryID"`
	Images      []ProductImage `gorm:"foreignKey:ProductID;constraint:OnDelete:CASCADE"`
	CreatedAt   time.Time      `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt   time.Time      `gorm:"column:updated_at;autoUpdateTime"`
}

// MainImage returns the flagged primary image, falling back to the first one.
func (p Product) MainImage() *ProductImage {
	for i := range p.Images {
		if p.Images[i].IsMain {
			return &p.Images[i]
		}
	}
	if len(p.Images) > 0 {
		return &p.Images[0]
	}
	return nil
}
