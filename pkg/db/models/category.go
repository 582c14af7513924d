package models

import (
	"time"

	"github.com/google/uuid"
)

// Category groups catalog products.
type Category struct {
	ID          uuid.UUID  `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	Name        string     `gorm:"column:name;not null;uniqueIndex"`
	Slug        string     `gorm:"column:slug;not null;uniqueIndex"`
	CreatedByID *uuid.UUID `gorm:"column:created_by_id;type:uuid"`
	CreatedAt   time.Time  `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt   time.Time  `gorm:"column:updated_at;autoUpdateTime"`
}
