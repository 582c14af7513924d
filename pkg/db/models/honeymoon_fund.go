package models

import (
	"time"

	"github.com/google/uuid"
)

// HoneymoonFund collects cash donations toward a registry target.
type HoneymoonFund struct {
	ID                uuid.UUID  `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	RegistryID        uuid.UUID  `gorm:"column:registry_id;type:uuid;not null;uniqueIndex"`
	Message           *string    `gorm:"column:message"`
	TargetAmountKobo  *int64     `gorm:"column:target_amount_kobo"`
	HasAchievedTarget bool       `gorm:"column:has_achieved_target;not null;default:false"`
	TargetAchievedAt  *time.Time `gorm:"column:target_achieved_at"`
	HasBeenPaidOut    bool       `gorm:"column:has_been_paid_out;not null;default:false"`
	PaidOutUpdatedAt  *time.Time `gorm:"column:paid_out_updated_at"`
	CreatedAt         time.Time  `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt         time.Time  `gorm:"column:updated_at;autoUpdateTime"`
}
