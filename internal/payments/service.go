package payments

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/oduntan/giftregistry-backend/internal/orders"
	"github.com/oduntan/giftregistry-backend/pkg/db/models"
	"github.com/oduntan/giftregistry-backend/pkg/enums"
	pkgerrors "github.com/oduntan/giftregistry-backend/pkg/errors"
	"github.com/oduntan/giftregistry-backend/pkg/logger"
	"github.com/oduntan/giftregistry-backend/pkg/metrics"
)

const eventChargeSuccess = "charge.success"

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type verifier interface {
	Verify(ctx context.Context, reference string) (*Verification, error)
}

// Verification is the settled state reported by the gateway, decoupled from
// the gateway client's own types.
type Verification struct {
	Reference  string
	Succeeded  bool
	AmountKobo int64
}

// WebhookEvent is the gateway's server-to-server delivery payload.
type WebhookEvent struct {
	Event string      `json:"event"`
	Data  WebhookData `json:"data"`
}

// WebhookData carries the charge fields the reconciler reads.
type WebhookData struct {
	Reference  string `json:"reference"`
	Status     string `json:"status"`
	AmountKobo int64  `json:"amount"`
}

// Receipt is the reconciled state returned to the confirm page.
type Receipt struct {
	TxnNo      string              `json:"txn_no"`
	Reference  string              `json:"reference"`
	Status     enums.PaymentStatus `json:"status"`
	AmountKobo int64               `json:"amount_kobo"`
	PaidAt     *time.Time          `json:"paid_at,omitempty"`
}

// Service settles transactions against the gateway. Reconciliation reaches
// the same terminal state whether the confirm callback or the webhook runs
// first, and duplicate deliveries are no-ops.
type Service interface {
	Confirm(ctx context.Context, reference string) (*Receipt, error)
	HandleWebhook(ctx context.Context, event WebhookEvent) error
}

type service struct {
	repo    orders.Repository
	gateway verifier
	tx      txRunner
	metrics *metrics.PaymentMetrics
	logg    *logger.Logger
	now     func() time.Time
}

// NewService builds a payments service with the required dependencies.
func NewService(repo orders.Repository, gw verifier, tx txRunner, pm *metrics.PaymentMetrics, logg *logger.Logger) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("orders repository required")
	}
	if gw == nil {
		return nil, fmt.Errorf("payment gateway required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &service{
		repo:    repo,
		gateway: gw,
		tx:      tx,
		metrics: pm,
		logg:    logg,
		now:     time.Now,
	}, nil
}

func (s *service) Confirm(ctx context.Context, reference string) (*Receipt, error) {
	reference = strings.TrimSpace(reference)
	if reference == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "charge reference required")
	}
	ctx = s.logg.WithReference(ctx, reference)

	txn, err := s.findTransaction(ctx, reference)
	if err != nil {
		return nil, err
	}

	receipt, _, err := s.reconcile(ctx, txn, reference)
	return receipt, err
}

func (s *service) HandleWebhook(ctx context.Context, event WebhookEvent) error {
	if event.Event != eventChargeSuccess {
		s.metrics.IncWebhookEvent("ignored")
		return nil
	}
	reference := strings.TrimSpace(event.Data.Reference)
	if reference == "" {
		s.metrics.IncWebhookEvent("invalid")
		return pkgerrors.New(pkgerrors.CodeValidation, "webhook missing charge reference")
	}
	ctx = s.logg.WithReference(ctx, reference)

	txn, err := s.findTransaction(ctx, reference)
	if err != nil {
		s.metrics.IncWebhookEvent("unknown_reference")
		return err
	}

	_, settled, err := s.reconcile(ctx, txn, reference)
	if err != nil {
		s.metrics.IncWebhookEvent("failed")
		return err
	}
	if settled {
		s.metrics.IncWebhookEvent("reconciled")
	} else {
		s.metrics.IncWebhookEvent("unsettled")
	}
	return nil
}

func (s *service) findTransaction(ctx context.Context, reference string) (*models.Transaction, error) {
	txn, err := s.repo.FindTransactionByReference(ctx, reference)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "no transaction for charge reference")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load transaction")
	}
	return txn, nil
}

// reconcile drives a transaction to its settled state. Already-paid rows are
// returned untouched before any gateway call, which is what makes duplicate
// webhook deliveries and the confirm/webhook race safe.
func (s *service) reconcile(ctx context.Context, txn *models.Transaction, reference string) (*Receipt, bool, error) {
	if txn.PaymentStatus == enums.PaymentStatusPaid {
		s.metrics.IncAlreadyReconciled()
		s.logg.Info(ctx, "transaction already reconciled")
		return buildReceipt(txn), true, nil
	}

	s.metrics.IncGatewayRequest("verify")
	verification, err := s.gateway.Verify(ctx, reference)
	if err != nil {
		s.metrics.IncGatewayFailure("verify")
		return nil, false, err
	}
	if !verification.Succeeded {
		s.logg.Info(ctx, "charge not settled yet")
		return buildReceipt(txn), false, nil
	}
	if verification.AmountKobo != txn.ChargeAmountKobo() {
		return nil, false, pkgerrors.New(pkgerrors.CodeConflict, "verified amount does not match charge amount").
			WithDetails(map[string]any{
				"expected_kobo": txn.ChargeAmountKobo(),
				"verified_kobo": verification.AmountKobo,
			})
	}

	paidAt := s.now().UTC()
	var marked bool
	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		var err error
		marked, err = repo.MarkTransactionPaid(ctx, txn.ID, paidAt)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "mark transaction paid")
		}
		if !marked {
			// A concurrent reconciler settled it between our status check
			// and this write. Its transaction also marked the gifts.
			return nil
		}

		if txn.Type == enums.TransactionTypeOrder {
			if err := repo.MarkRegistryProductsPurchased(ctx, registryProductIDs(txn)); err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "mark gifts purchased")
			}
		}
		return nil
	})
	if err != nil {
		return nil, false, err
	}

	if !marked {
		s.metrics.IncAlreadyReconciled()
		fresh, err := s.findTransaction(ctx, reference)
		if err != nil {
			return nil, false, err
		}
		s.logg.Info(ctx, "transaction already reconciled")
		return buildReceipt(fresh), true, nil
	}

	txn.PaymentStatus = enums.PaymentStatusPaid
	txn.PaidAt = &paidAt

	s.logg.Info(s.logg.WithTxnNo(ctx, txn.TxnNo), "transaction reconciled as paid")
	return buildReceipt(txn), true, nil
}

func registryProductIDs(txn *models.Transaction) []uuid.UUID {
	var ids []uuid.UUID
	for _, order := range txn.Orders {
		for _, item := range order.Items {
			ids = append(ids, item.RegistryProductID)
		}
	}
	return ids
}

func buildReceipt(txn *models.Transaction) *Receipt {
	receipt := &Receipt{
		TxnNo:      txn.TxnNo,
		Status:     txn.PaymentStatus,
		AmountKobo: txn.ChargeAmountKobo(),
		PaidAt:     txn.PaidAt,
	}
	if txn.ProviderReference != nil {
		receipt.Reference = *txn.ProviderReference
	}
	return receipt
}
