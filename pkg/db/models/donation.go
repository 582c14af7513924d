package models

import (
	"time"

	"github.com/google/uuid"
)

// Donation records a direct cash contribution to one registry under a
// type=donation transaction.
type Donation struct {
	ID            uuid.UUID `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	TransactionID uuid.UUID `gorm:"column:transaction_id;type:uuid;not null"`
	RegistryID    uuid.UUID `gorm:"column:registry_id;type:uuid;not null"`
	AmountKobo    int64     `gorm:"column:amount_kobo;not null"`
	Registry      *Registry `gorm:"foreignKey:RegistryID"`
	CreatedAt     time.Time `gorm:"column:created_at;autoCreateTime"`
}
