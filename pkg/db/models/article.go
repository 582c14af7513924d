package models

import (
	"time"

	"github.com/google/uuid"
)

// Article is a blog post surfaced on the storefront.
type Article struct {
	ID          uuid.UUID  `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	Title       string     `gorm:"column:title;not null"`
	Slug        string     `gorm:"column:slug;not null;uniqueIndex"`
	Summary     string     `gorm:"column:summary;not null"`
	ImageURL    *string    `gorm:"column:image_url"`
	Content     string     `gorm:"column:content;not null"`
	IsPublished bool       `gorm:"column:is_published;not null"`
	ViewCount   int        `gorm:"column:view_count;not null;default:0"`
	CreatedByID *uuid.UUID `gorm:"column:created_by_id;type:uuid"`
	Tags        []Tag      `gorm:"many2many:article_tags"`
	CreatedAt   time.Time  `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt   time.Time  `gorm:"column:updated_at;autoUpdateTime"`
}

// Tag labels articles for discovery.
type Tag struct {
	ID        uuid.UUID `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	Name      string    `gorm:"column:name;not null;uniqueIndex"`
	Slug      string    `gorm:"column:slug;not null"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
}
