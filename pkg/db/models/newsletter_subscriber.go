package models

import (
	"time"

	"github.com/google/uuid"
)

// NewsletterSubscriber stores a storefront email signup.
type NewsletterSubscriber struct {
	ID        uuid.UUID `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	Email     string    `gorm:"column:email;not null;uniqueIndex"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
}
