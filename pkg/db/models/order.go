package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/oduntan/giftregistry-backend/pkg/enums"
)

// Order is the portion of a transaction's purchase scoped to one registry.
// A transaction gets at most one order per distinct registry in the cart.
type Order struct {
	ID            uuid.UUID         `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	OrderNumber   string            `gorm:"column:order_number;not null;uniqueIndex"`
	TransactionID uuid.UUID         `gorm:"column:transaction_id;type:uuid;not null"`
	RegistryID    uuid.UUID         `gorm:"column:registry_id;type:uuid;not null"`
	Status        enums.OrderStatus `gorm:"column:status;type:text;not null;default:'pending'"`
	Items         []OrderItem       `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE"`
	Registry      *Registry         `gorm:"foreignKey:RegistryID"`
	CreatedAt     time.Time         `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt     time.Time         `gorm:"column:updated_at;autoUpdateTime"`
}
