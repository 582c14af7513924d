package models

import (
	"time"

	"github.com/google/uuid"
)

// User is an account that can own registries or administer the catalog.
type User struct {
	ID           uuid.UUID  `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	FirstName    string     `gorm:"column:first_name;not null"`
	LastName     string     `gorm:"column:last_name;not null"`
	PhoneNumber  *string    `gorm:"column:phone_number"`
	Email        string     `gorm:"column:email;not null;uniqueIndex"`
	PasswordHash string     `gorm:"column:password_hash;not null"`
	IsAdmin      bool       `gorm:"column:is_admin;not null;default:false"`
	IsActive     bool       `gorm:"column:is_active;not null"`
	ConfirmedAt  *time.Time `gorm:"column:confirmed_at"`
	CreatedAt    time.Time  `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt    time.Time  `gorm:"column:updated_at;autoUpdateTime"`
}

// FullName joins the user's names for display.
func (u User) FullName() string {
	if u.FirstName == "" && u.LastName == "" {
		return u.Email
	}
	return u.FirstName + " " + u.LastName
}
