package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/oduntan/giftregistry-backend/pkg/enums"
)

// Registry is an event-bound wishlist. A kind tag replaces the per-event
// subclassing the platform used historically; kind-specific extras hang off
// optional associations (delivery address, honeymoon fund).
type Registry struct {
	ID          uuid.UUID                `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	Name        string                   `gorm:"column:name;not null"`
	Slug        string                   `gorm:"column:slug;not null;uniqueIndex"`
	Hashtag     *string                  `gorm:"column:hashtag"`
	Kind        enums.RegistryKind       `gorm:"column:kind;type:text;not null"`
	Description string                   `gorm:"column:description;not null"`
	ImageURL    *string                  `gorm:"column:image_url"`
	OwnerID     uuid.UUID                `gorm:"column:owner_id;type:uuid;not null"`
	IsActive    bool                     `gorm:"column:is_active;not null"`
	Products    []RegistryProduct        `gorm:"foreignKey:RegistryID;constraint:OnDelete:CASCADE"`
	Delivery    *RegistryDeliveryAddress `gorm:"foreignKey:RegistryID;constraint:OnDelete:CASCADE"`
	Fund        *HoneymoonFund           `gorm:"foreignKey:RegistryID;constraint:OnDelete:CASCADE"`
	CreatedAt   time.Time                `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt   time.Time                `gorm:"column:updated_at;autoUpdateTime"`
}
