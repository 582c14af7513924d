package models

import (
	"time"

	"github.com/google/uuid"
)

// RegistryDeliveryAddress is where purchased gifts for a registry get shipped.
type RegistryDeliveryAddress struct {
	ID          uuid.UUID `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	RegistryID  uuid.UUID `gorm:"column:registry_id;type:uuid;not null;uniqueIndex"`
	Name        string    `gorm:"column:name;not null"`
	PhoneNumber *string   `gorm:"column:phone_number"`
	Address     string    `gorm:"column:address;not null"`
	City        string    `gorm:"column:city;not null"`
	State       string    `gorm:"column:state;not null"`
	CreatedAt   time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt   time.Time `gorm:"column:updated_at;autoUpdateTime"`
}
