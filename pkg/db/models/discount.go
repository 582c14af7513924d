package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Discount is a promo code carrying either a fixed kobo amount or a
// percentage, never both. The exclusivity is enforced at admin input and by
// a database check constraint.
type Discount struct {
	ID          uuid.UUID  `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	Code        string     `gorm:"column:code;not null;uniqueIndex"`
	AmountKobo  *int64     `gorm:"column:amount_kobo"`
	Percentage  *float64   `gorm:"column:percentage;type:numeric(5,2)"`
	IsActive    bool       `gorm:"column:is_active;not null"`
	CreatedByID *uuid.UUID `gorm:"column:created_by_id;type:uuid"`
	CreatedAt   time.Time  `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt   time.Time  `gorm:"column:updated_at;autoUpdateTime"`
}

// ReductionKobo computes the discount value for a base price in kobo. A fixed
// amount wins regardless of the base; otherwise percentage/100 of the base,
// truncated to whole kobo.
func (d Discount) ReductionKobo(basePriceKobo int64) int64 {
	if d.AmountKobo != nil {
		return *d.AmountKobo
	}
	if d.Percentage == nil {
		return 0
	}
	reduction := decimal.NewFromFloat(*d.Percentage).
		Div(decimal.NewFromInt(100)).
		Mul(decimal.NewFromInt(basePriceKobo))
	return reduction.IntPart()
}
