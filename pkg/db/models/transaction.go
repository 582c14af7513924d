package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/oduntan/giftregistry-backend/pkg/enums"
)

// Transaction is the durable record of one payment attempt, covering either a
// product order or a cash donation. Rows are never deleted; a transaction
// flips from unpaid to paid exactly once, during reconciliation.
type Transaction struct {
	ID                   uuid.UUID             `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	TxnNo                string                `gorm:"column:txn_no;not null;uniqueIndex"`
	FirstName            string                `gorm:"column:first_name;not null"`
	LastName             string                `gorm:"column:last_name;not null"`
	PhoneNumber          *string               `gorm:"column:phone_number"`
	Email                string                `gorm:"column:email;not null"`
	Message              *string               `gorm:"column:message"`
	Type                 enums.TransactionType `gorm:"column:type;type:text;not null"`
	PaymentStatus        enums.PaymentStatus   `gorm:"column:payment_status;type:text;not null;default:'unpaid'"`
	TotalAmountKobo      int64                 `gorm:"column:total_amount_kobo;not null"`
	DiscountID           *uuid.UUID            `gorm:"column:discount_id;type:uuid"`
	DiscountedAmountKobo *int64                `gorm:"column:discounted_amount_kobo"`
	ProviderReference    *string               `gorm:"column:provider_reference;uniqueIndex"`
	PaidAt               *time.Time            `gorm:"column:paid_at"`
	Discount             *Discount             `gorm:"foreignKey:DiscountID"`
	Orders               []Order               `gorm:"foreignKey:TransactionID"`
	Donations            []Donation            `gorm:"foreignKey:TransactionID"`
	CreatedAt            time.Time             `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt            time.Time             `gorm:"column:updated_at;autoUpdateTime"`
}

// ChargeAmountKobo returns the amount actually sent to the payment provider:
// the discounted total when a discount applied, the full total otherwise.
func (t Transaction) ChargeAmountKobo() int64 {
	if t.DiscountedAmountKobo != nil {
		return *t.DiscountedAmountKobo
	}
	return t.TotalAmountKobo
}

// FullName joins the purchaser's names for display.
func (t Transaction) FullName() string {
	return t.FirstName + " " + t.LastName
}
