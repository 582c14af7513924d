package checkout

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/oduntan/giftregistry-backend/internal/cart"
	"github.com/oduntan/giftregistry-backend/internal/discounts"
	"github.com/oduntan/giftregistry-backend/internal/orders"
	"github.com/oduntan/giftregistry-backend/pkg/db/models"
	"github.com/oduntan/giftregistry-backend/pkg/enums"
	pkgerrors "github.com/oduntan/giftregistry-backend/pkg/errors"
	"github.com/oduntan/giftregistry-backend/pkg/logger"
	"github.com/oduntan/giftregistry-backend/pkg/metrics"
	"github.com/oduntan/giftregistry-backend/pkg/paystack"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type gateway interface {
	Initialize(ctx context.Context, params paystack.InitializeParams) (*paystack.Authorization, error)
}

type registryFinder interface {
	FindRegistry(ctx context.Context, id uuid.UUID) (*models.Registry, error)
}

// discountApplier is the slice of the discounts service checkout needs.
type discountApplier interface {
	Apply(ctx context.Context, code string, baseAmountKobo int64) (*discounts.Application, error)
}

// CustomerInput identifies the gift giver. Givers check out anonymously, so
// everything needed for the receipt travels with the request.
type CustomerInput struct {
	FirstName   string
	LastName    string
	Email       string
	PhoneNumber *string
	Message     *string
}

// DonationInput describes a direct cash contribution to one registry.
type DonationInput struct {
	RegistryID uuid.UUID
	AmountKobo int64
	Customer   CustomerInput
}

// Result carries what the storefront needs to hand the giver to the gateway.
type Result struct {
	TxnNo            string   `json:"txn_no"`
	Reference        string   `json:"reference"`
	AuthorizationURL string   `json:"authorization_url"`
	AmountKobo       int64    `json:"amount_kobo"`
	OrderNumbers     []string `json:"order_numbers,omitempty"`
}

// Service converts carts and donations into durable transactions and opens
// the gateway charge.
type Service interface {
	Checkout(ctx context.Context, sessionID string, input CustomerInput) (*Result, error)
	Donate(ctx context.Context, input DonationInput) (*Result, error)
}

type service struct {
	carts      cart.Service
	repo       orders.Repository
	registries registryFinder
	numbers    *orders.NumberGenerator
	discounts  discountApplier
	tx         txRunner
	gateway    gateway
	metrics    *metrics.PaymentMetrics
	logg       *logger.Logger
}

// NewService builds a checkout service with the required dependencies.
func NewService(
	carts cart.Service,
	repo orders.Repository,
	registries registryFinder,
	numbers *orders.NumberGenerator,
	discountSvc discountApplier,
	tx txRunner,
	gw gateway,
	pm *metrics.PaymentMetrics,
	logg *logger.Logger,
) (Service, error) {
	if carts == nil {
		return nil, fmt.Errorf("cart service required")
	}
	if repo == nil {
		return nil, fmt.Errorf("orders repository required")
	}
	if registries == nil {
		return nil, fmt.Errorf("registry finder required")
	}
	if numbers == nil {
		return nil, fmt.Errorf("number generator required")
	}
	if discountSvc == nil {
		return nil, fmt.Errorf("discounts service required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if gw == nil {
		return nil, fmt.Errorf("payment gateway required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &service{
		carts:      carts,
		repo:       repo,
		registries: registries,
		numbers:    numbers,
		discounts:  discountSvc,
		tx:         tx,
		gateway:    gw,
		metrics:    pm,
		logg:       logg,
	}, nil
}

func (s *service) Checkout(ctx context.Context, sessionID string, input CustomerInput) (*Result, error) {
	if sessionID == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "session id required")
	}
	if err := validateCustomer(input); err != nil {
		return nil, err
	}

	state, err := s.carts.Load(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if state.IsEmpty() {
		return nil, pkgerrors.New(pkgerrors.CodeEmptyCart, "cart is empty")
	}

	total := state.TotalKobo()
	var discountID *uuid.UUID
	var discountedAmount *int64
	if state.DiscountCode != "" {
		app, err := s.discounts.Apply(ctx, state.DiscountCode, total)
		if err != nil {
			// A code revoked or retired since it was applied prices as no
			// discount.
			if !pkgerrors.IsCode(err, pkgerrors.CodeNotFound) && !pkgerrors.IsCode(err, pkgerrors.CodeExpired) {
				return nil, err
			}
		} else {
			discountID = &app.Discount.ID
			discounted := app.DiscountedKobo
			discountedAmount = &discounted
		}
	}

	txnNo, err := s.numbers.NextTxnNo(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "mint transaction number")
	}

	// Group cart lines per registry in first-seen order. Each registry in
	// the cart yields exactly one order.
	registryIDs := make([]uuid.UUID, 0, len(state.Lines))
	linesByRegistry := make(map[uuid.UUID][]cart.Line, len(state.Lines))
	for _, line := range state.Lines {
		if _, seen := linesByRegistry[line.RegistryID]; !seen {
			registryIDs = append(registryIDs, line.RegistryID)
		}
		linesByRegistry[line.RegistryID] = append(linesByRegistry[line.RegistryID], line)
	}

	orderNumbers := make([]string, 0, len(registryIDs))
	for range registryIDs {
		number, err := s.numbers.NextOrderNumber(ctx)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "mint order number")
		}
		orderNumbers = append(orderNumbers, number)
	}

	txn := &models.Transaction{
		TxnNo:                txnNo,
		FirstName:            input.FirstName,
		LastName:             input.LastName,
		PhoneNumber:          input.PhoneNumber,
		Email:                input.Email,
		Message:              input.Message,
		Type:                 enums.TransactionTypeOrder,
		PaymentStatus:        enums.PaymentStatusUnpaid,
		TotalAmountKobo:      total,
		DiscountID:           discountID,
		DiscountedAmountKobo: discountedAmount,
	}

	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		created, err := repo.CreateTransaction(ctx, txn)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create transaction")
		}

		for i, registryID := range registryIDs {
			order, err := repo.CreateOrder(ctx, &models.Order{
				OrderNumber:   orderNumbers[i],
				TransactionID: created.ID,
				RegistryID:    registryID,
				Status:        enums.OrderStatusPending,
			})
			if err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create order")
			}

			lines := linesByRegistry[registryID]
			items := make([]models.OrderItem, 0, len(lines))
			for _, line := range lines {
				items = append(items, models.OrderItem{
					OrderID:           order.ID,
					RegistryProductID: line.RegistryProductID,
					Quantity:          line.Quantity,
					UnitPriceKobo:     line.UnitPriceKobo,
					TotalPriceKobo:    line.TotalKobo(),
				})
			}
			if err := repo.CreateOrderItems(ctx, items); err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create order items")
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	result, err := s.openCharge(ctx, txn, orderNumbers)
	if err != nil {
		return nil, err
	}

	if err := s.carts.Clear(ctx, sessionID); err != nil {
		// The charge is already open; a stale cart is recoverable.
		s.logg.Warn(s.logg.WithTxnNo(ctx, txnNo), "failed to clear cart after checkout")
	}

	ctx = s.logg.WithTxnNo(ctx, txnNo)
	s.logg.Info(s.logg.WithField(ctx, "orders", len(orderNumbers)), "checkout completed")
	return result, nil
}

func (s *service) Donate(ctx context.Context, input DonationInput) (*Result, error) {
	if input.RegistryID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "registry id required")
	}
	if input.AmountKobo <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "donation amount must be positive")
	}
	if err := validateCustomer(input.Customer); err != nil {
		return nil, err
	}

	registry, err := s.registries.FindRegistry(ctx, input.RegistryID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "registry not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load registry")
	}
	if !registry.IsActive {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "registry is not active")
	}

	txnNo, err := s.numbers.NextTxnNo(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "mint transaction number")
	}

	txn := &models.Transaction{
		TxnNo:           txnNo,
		FirstName:       input.Customer.FirstName,
		LastName:        input.Customer.LastName,
		PhoneNumber:     input.Customer.PhoneNumber,
		Email:           input.Customer.Email,
		Message:         input.Customer.Message,
		Type:            enums.TransactionTypeDonation,
		PaymentStatus:   enums.PaymentStatusUnpaid,
		TotalAmountKobo: input.AmountKobo,
	}

	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		created, err := repo.CreateTransaction(ctx, txn)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create transaction")
		}
		if _, err := repo.CreateDonation(ctx, &models.Donation{
			TransactionID: created.ID,
			RegistryID:    input.RegistryID,
			AmountKobo:    input.AmountKobo,
		}); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create donation")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	result, err := s.openCharge(ctx, txn, nil)
	if err != nil {
		return nil, err
	}

	s.logg.Info(s.logg.WithTxnNo(ctx, txnNo), "donation recorded")
	return result, nil
}

// openCharge opens the gateway charge for a committed transaction and stores
// the provider reference. The transaction stays unpaid if the gateway call
// fails; the giver can retry from the receipt page.
func (s *service) openCharge(ctx context.Context, txn *models.Transaction, orderNumbers []string) (*Result, error) {
	amount := txn.ChargeAmountKobo()

	s.metrics.IncGatewayRequest("initialize")
	auth, err := s.gateway.Initialize(ctx, paystack.InitializeParams{
		Email:      txn.Email,
		AmountKobo: amount,
	})
	if err != nil {
		s.metrics.IncGatewayFailure("initialize")
		return nil, err
	}

	if err := s.repo.UpdateTransaction(ctx, txn.ID, map[string]any{
		"provider_reference": auth.Reference,
	}); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "store provider reference")
	}

	return &Result{
		TxnNo:            txn.TxnNo,
		Reference:        auth.Reference,
		AuthorizationURL: auth.AuthorizationURL,
		AmountKobo:       amount,
		OrderNumbers:     orderNumbers,
	}, nil
}

func validateCustomer(input CustomerInput) error {
	if strings.TrimSpace(input.FirstName) == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "first name required")
	}
	if strings.TrimSpace(input.LastName) == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "last name required")
	}
	if strings.TrimSpace(input.Email) == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "email required")
	}
	return nil
}
