package orders

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/oduntan/giftregistry-backend/pkg/db/models"
	"github.com/oduntan/giftregistry-backend/pkg/enums"
)

// Repository defines persistence operations for transactions, orders, and
// donations.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	CreateTransaction(ctx context.Context, txn *models.Transaction) (*models.Transaction, error)
	CreateOrder(ctx context.Context, order *models.Order) (*models.Order, error)
	CreateOrderItems(ctx context.Context, items []models.OrderItem) error
	CreateDonation(ctx context.Context, donation *models.Donation) (*models.Donation, error)
	FindTransactionByTxnNo(ctx context.Context, txnNo string) (*models.Transaction, error)
	FindTransactionByReference(ctx context.Context, reference string) (*models.Transaction, error)
	UpdateTransaction(ctx context.Context, id uuid.UUID, updates map[string]any) error
	MarkTransactionPaid(ctx context.Context, id uuid.UUID, paidAt time.Time) (bool, error)
	FindOrdersByTransaction(ctx context.Context, transactionID uuid.UUID) ([]models.Order, error)
	MarkRegistryProductsPurchased(ctx context.Context, registryProductIDs []uuid.UUID) error
	FindOrdersByRegistry(ctx context.Context, registryID uuid.UUID) ([]models.Order, error)
	SumPaidDonations(ctx context.Context, registryID uuid.UUID) (int64, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository builds an orders repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) CreateTransaction(ctx context.Context, txn *models.Transaction) (*models.Transaction, error) {
	if txn.ID == uuid.Nil {
		txn.ID = uuid.New()
	}
	if err := r.db.WithContext(ctx).Create(txn).Error; err != nil {
		return nil, err
	}
	return txn, nil
}

func (r *repository) CreateOrder(ctx context.Context, order *models.Order) (*models.Order, error) {
	if order.ID == uuid.Nil {
		order.ID = uuid.New()
	}
	if err := r.db.WithContext(ctx).Create(order).Error; err != nil {
		return nil, err
	}
	return order, nil
}

func (r *repository) CreateOrderItems(ctx context.Context, items []models.OrderItem) error {
	if len(items) == 0 {
		return nil
	}
	for i := range items {
		if items[i].ID == uuid.Nil {
			items[i].ID = uuid.New()
		}
	}
	return r.db.WithContext(ctx).Create(&items).Error
}

func (r *repository) CreateDonation(ctx context.Context, donation *models.Donation) (*models.Donation, error) {
	if donation.ID == uuid.Nil {
		donation.ID = uuid.New()
	}
	if err := r.db.WithContext(ctx).Create(donation).Error; err != nil {
		return nil, err
	}
	return donation, nil
}

func (r *repository) FindTransactionByTxnNo(ctx context.Context, txnNo string) (*models.Transaction, error) {
	var txn models.Transaction
	err := r.db.WithContext(ctx).
		Preload("Orders.Items").
		Preload("Donations").
		Where("txn_no = ?", txnNo).
		First(&txn).Error
	if err != nil {
		return nil, err
	}
	return &txn, nil
}

func (r *repository) FindTransactionByReference(ctx context.Context, reference string) (*models.Transaction, error) {
	var txn models.Transaction
	err := r.db.WithContext(ctx).
		Preload("Orders.Items").
		Preload("Donations").
		Where("provider_reference = ?", reference).
		First(&txn).Error
	if err != nil {
		return nil, err
	}
	return &txn, nil
}

func (r *repository) UpdateTransaction(ctx context.Context, id uuid.UUID, updates map[string]any) error {
	return r.db.WithContext(ctx).
		Model(&models.Transaction{}).
		Where("id = ?", id).
		Updates(updates).Error
}

// MarkTransactionPaid flips an unpaid transaction to paid in one guarded
// write. It reports false when the row was no longer unpaid, so concurrent
// reconcilers can tell the other side already settled it.
func (r *repository) MarkTransactionPaid(ctx context.Context, id uuid.UUID, paidAt time.Time) (bool, error) {
	res := r.db.WithContext(ctx).
		Model(&models.Transaction{}).
		Where("id = ? AND payment_status = ?", id, enums.PaymentStatusUnpaid).
		Updates(map[string]any{
			"payment_status": enums.PaymentStatusPaid,
			"paid_at":        paidAt,
		})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (r *repository) FindOrdersByTransaction(ctx context.Context, transactionID uuid.UUID) ([]models.Order, error) {
	var orders []models.Order
	err := r.db.WithContext(ctx).
		Preload("Items").
		Where("transaction_id = ?", transactionID).
		Order("created_at ASC").
		Find(&orders).Error
	if err != nil {
		return nil, err
	}
	return orders, nil
}

func (r *repository) MarkRegistryProductsPurchased(ctx context.Context, registryProductIDs []uuid.UUID) error {
	if len(registryProductIDs) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).
		Model(&models.RegistryProduct{}).
		Where("id IN ?", registryProductIDs).
		Update("purchased", true).Error
}

func (r *repository) FindOrdersByRegistry(ctx context.Context, registryID uuid.UUID) ([]models.Order, error) {
	var orders []models.Order
	err := r.db.WithContext(ctx).
		Preload("Items").
		Where("registry_id = ?", registryID).
		Order("created_at DESC").
		Find(&orders).Error
	if err != nil {
		return nil, err
	}
	return orders, nil
}

func (r *repository) SumPaidDonations(ctx context.Context, registryID uuid.UUID) (int64, error) {
	var total int64
	err := r.db.WithContext(ctx).
		Model(&models.Donation{}).
		Select("COALESCE(SUM(donations.amount_kobo), 0)").
		Joins("JOIN transactions ON transactions.id = donations.transaction_id").
		Where("donations.registry_id = ? AND transactions.payment_status = ?", registryID, "paid").
		Scan(&total).Error
	if err != nil {
		return 0, err
	}
	return total, nil
}
