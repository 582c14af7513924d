package checkout

import (
	"context"
	"fmt"
	"io"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/oduntan/giftregistry-backend/internal/cart"
	"github.com/oduntan/giftregistry-backend/internal/discounts"
	"github.com/oduntan/giftregistry-backend/internal/orders"
	"github.com/oduntan/giftregistry-backend/pkg/db/models"
	"github.com/oduntan/giftregistry-backend/pkg/enums"
	pkgerrors "github.com/oduntan/giftregistry-backend/pkg/errors"
	"github.com/oduntan/giftregistry-backend/pkg/logger"
	"github.com/oduntan/giftregistry-backend/pkg/paystack"
)

func setupCheckoutTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{})
	require.NoError(t, err)

	statements := []string{`
CREATE TABLE IF NOT EXISTS transactions (
  id TEXT PRIMARY KEY,
  txn_no TEXT NOT NULL UNIQUE,
  first_name TEXT NOT NULL,
  last_name TEXT NOT NULL,
  phone_number TEXT,
  email TEXT NOT NULL,
  message TEXT,
  type TEXT NOT NULL,
  payment_status TEXT NOT NULL DEFAULT 'unpaid',
  total_amount_kobo INTEGER NOT NULL,
  discount_id TEXT,
  discounted_amount_kobo INTEGER,
  provider_reference TEXT UNIQUE,
  paid_at DATETIME,
  created_at DATETIME,
  updated_at DATETIME
);`, `
CREATE TABLE IF NOT EXISTS orders (
  id TEXT PRIMARY KEY,
  order_number TEXT NOT NULL UNIQUE,
  transaction_id TEXT NOT NULL,
  registry_id TEXT NOT NULL,
  status TEXT NOT NULL DEFAULT 'pending',
  created_at DATETIME,
  updated_at DATETIME
);`, `
CREATE TABLE IF NOT EXISTS order_items (
  id TEXT PRIMARY KEY,
  order_id TEXT NOT NULL,
  registry_product_id TEXT NOT NULL,
  quantity INTEGER NOT NULL DEFAULT 1,
  unit_price_kobo INTEGER NOT NULL,
  total_price_kobo INTEGER NOT NULL,
  created_at DATETIME
);`, `
CREATE TABLE IF NOT EXISTS donations (
  id TEXT PRIMARY KEY,
  transaction_id TEXT NOT NULL,
  registry_id TEXT NOT NULL,
  amount_kobo INTEGER NOT NULL,
  created_at DATETIME
);`}

	for _, stmt := range statements {
		require.NoError(t, db.Exec(stmt).Error)
	}
	return db
}

type stubCarts struct {
	state   cart.State
	cleared bool
}

func (s *stubCarts) Add(context.Context, string, uuid.UUID, int) (*cart.View, error) {
	return nil, nil
}
func (s *stubCarts) Remove(context.Context, string, uuid.UUID) (*cart.View, error) {
	return nil, nil
}
func (s *stubCarts) Get(context.Context, string) (*cart.View, error) { return nil, nil }
func (s *stubCarts) ApplyDiscount(context.Context, string, string) (*cart.View, error) {
	return nil, nil
}
func (s *stubCarts) Load(context.Context, string) (cart.State, error) { return s.state, nil }
func (s *stubCarts) Clear(context.Context, string) error {
	s.cleared = true
	return nil
}

type stubRegistries struct {
	registries map[uuid.UUID]*models.Registry
}

func (s *stubRegistries) FindRegistry(_ context.Context, id uuid.UUID) (*models.Registry, error) {
	reg, ok := s.registries[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return reg, nil
}

type stubDiscounts struct {
	discount *models.Discount
}

func (s *stubDiscounts) Apply(_ context.Context, code string, base int64) (*discounts.Application, error) {
	if s.discount == nil || s.discount.Code != code {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "discount code not found or inactive")
	}
	reduction := s.discount.ReductionKobo(base)
	if reduction > base {
		reduction = base
	}
	return &discounts.Application{
		Discount:       s.discount,
		ReductionKobo:  reduction,
		DiscountedKobo: base - reduction,
	}, nil
}

type stubSequencer struct {
	counts map[string]int64
}

func (s *stubSequencer) NextSequence(_ context.Context, name, day string) (int64, error) {
	if s.counts == nil {
		s.counts = map[string]int64{}
	}
	key := name + ":" + day
	s.counts[key]++
	return s.counts[key], nil
}

type stubGateway struct {
	calls  int
	amount int64
	err    error
}

func (s *stubGateway) Initialize(_ context.Context, params paystack.InitializeParams) (*paystack.Authorization, error) {
	s.calls++
	s.amount = params.AmountKobo
	if s.err != nil {
		return nil, s.err
	}
	ref := fmt.Sprintf("ps_ref_%03d", s.calls)
	return &paystack.Authorization{
		Reference:        ref,
		AuthorizationURL: "https://checkout.paystack.com/" + ref,
	}, nil
}

type testTx struct {
	db *gorm.DB
}

func (t testTx) WithTx(_ context.Context, fn func(tx *gorm.DB) error) error {
	return t.db.Transaction(fn)
}

type checkoutFixture struct {
	db       *gorm.DB
	carts    *stubCarts
	gateway  *stubGateway
	registry *stubRegistries
	svc      Service
}

func newCheckoutFixture(t *testing.T, state cart.State, discount *models.Discount) *checkoutFixture {
	t.Helper()

	db := setupCheckoutTestDB(t)
	carts := &stubCarts{state: state}
	gw := &stubGateway{}
	regs := &stubRegistries{registries: map[uuid.UUID]*models.Registry{}}

	gen, err := orders.NewNumberGenerator(&stubSequencer{})
	require.NoError(t, err)

	logg := logger.New(logger.Options{ServiceName: "checkout-test", Output: io.Discard})
	svc, err := NewService(
		carts,
		orders.NewRepository(db),
		regs,
		gen,
		&stubDiscounts{discount: discount},
		testTx{db: db},
		gw,
		nil,
		logg,
	)
	require.NoError(t, err)

	return &checkoutFixture{db: db, carts: carts, gateway: gw, registry: regs, svc: svc}
}

func testCustomer() CustomerInput {
	return CustomerInput{
		FirstName: "Ada",
		LastName:  "Obi",
		Email:     "ada@example.com",
	}
}

func twoRegistryCart() cart.State {
	registryA := uuid.New()
	registryB := uuid.New()
	return cart.State{
		Lines: []cart.Line{
			{RegistryProductID: uuid.New(), RegistryID: registryA, Quantity: 2, UnitPriceKobo: 150000},
			{RegistryProductID: uuid.New(), RegistryID: registryB, Quantity: 1, UnitPriceKobo: 99000},
			{RegistryProductID: uuid.New(), RegistryID: registryA, Quantity: 1, UnitPriceKobo: 50000},
		},
	}
}

func TestCheckoutCreatesOrderPerRegistry(t *testing.T) {
	f := newCheckoutFixture(t, twoRegistryCart(), nil)

	result, err := f.svc.Checkout(context.Background(), "sess-1", testCustomer())
	require.NoError(t, err)

	assert.Len(t, result.OrderNumbers, 2)
	assert.NotEmpty(t, result.TxnNo)
	assert.NotEmpty(t, result.AuthorizationURL)
	// 2*150000 + 99000 + 50000
	assert.Equal(t, int64(449000), result.AmountKobo)
	assert.True(t, f.carts.cleared)

	var txn models.Transaction
	require.NoError(t, f.db.Where("txn_no = ?", result.TxnNo).First(&txn).Error)
	assert.Equal(t, enums.PaymentStatusUnpaid, txn.PaymentStatus)
	assert.Equal(t, int64(449000), txn.TotalAmountKobo)
	require.NotNil(t, txn.ProviderReference)
	assert.Equal(t, result.Reference, *txn.ProviderReference)

	var orderRows []models.Order
	require.NoError(t, f.db.Where("transaction_id = ?", txn.ID).Find(&orderRows).Error)
	require.Len(t, orderRows, 2)

	var itemCount int64
	require.NoError(t, f.db.Model(&models.OrderItem{}).Count(&itemCount).Error)
	assert.Equal(t, int64(3), itemCount)
}

func TestCheckoutEmptyCart(t *testing.T) {
	f := newCheckoutFixture(t, cart.State{}, nil)

	_, err := f.svc.Checkout(context.Background(), "sess-1", testCustomer())
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeEmptyCart))
}

func TestCheckoutAppliesDiscountToCharge(t *testing.T) {
	pct := 10.0
	discount := &models.Discount{ID: uuid.New(), Code: "SAVE10", Percentage: &pct, IsActive: true}

	state := cart.State{
		DiscountCode: "SAVE10",
		Lines: []cart.Line{
			{RegistryProductID: uuid.New(), RegistryID: uuid.New(), Quantity: 1, UnitPriceKobo: 9900},
		},
	}
	f := newCheckoutFixture(t, state, discount)

	result, err := f.svc.Checkout(context.Background(), "sess-1", testCustomer())
	require.NoError(t, err)

	// 10% of 9900 is 990, charged amount 8910.
	assert.Equal(t, int64(8910), result.AmountKobo)
	assert.Equal(t, int64(8910), f.gateway.amount)

	var txn models.Transaction
	require.NoError(t, f.db.Where("txn_no = ?", result.TxnNo).First(&txn).Error)
	assert.Equal(t, int64(9900), txn.TotalAmountKobo)
	require.NotNil(t, txn.DiscountedAmountKobo)
	assert.Equal(t, int64(8910), *txn.DiscountedAmountKobo)
	require.NotNil(t, txn.DiscountID)
	assert.Equal(t, discount.ID, *txn.DiscountID)
}

func TestCheckoutRevokedDiscountChargesFullAmount(t *testing.T) {
	state := cart.State{
		DiscountCode: "GONE",
		Lines: []cart.Line{
			{RegistryProductID: uuid.New(), RegistryID: uuid.New(), Quantity: 1, UnitPriceKobo: 9900},
		},
	}
	f := newCheckoutFixture(t, state, nil)

	result, err := f.svc.Checkout(context.Background(), "sess-1", testCustomer())
	require.NoError(t, err)
	assert.Equal(t, int64(9900), result.AmountKobo)

	var txn models.Transaction
	require.NoError(t, f.db.Where("txn_no = ?", result.TxnNo).First(&txn).Error)
	assert.Nil(t, txn.DiscountID)
	assert.Nil(t, txn.DiscountedAmountKobo)
}

func TestCheckoutGatewayFailureKeepsTransactionUnpaid(t *testing.T) {
	f := newCheckoutFixture(t, twoRegistryCart(), nil)
	f.gateway.err = pkgerrors.New(pkgerrors.CodeGateway, "paystack request failed")

	_, err := f.svc.Checkout(context.Background(), "sess-1", testCustomer())
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeGateway))

	// The durable record survives for a later retry; the cart is untouched.
	var count int64
	require.NoError(t, f.db.Model(&models.Transaction{}).Count(&count).Error)
	assert.Equal(t, int64(1), count)
	assert.False(t, f.carts.cleared)

	var txn models.Transaction
	require.NoError(t, f.db.First(&txn).Error)
	assert.Equal(t, enums.PaymentStatusUnpaid, txn.PaymentStatus)
	assert.Nil(t, txn.ProviderReference)
}

func TestCheckoutValidatesCustomer(t *testing.T) {
	f := newCheckoutFixture(t, twoRegistryCart(), nil)

	input := testCustomer()
	input.Email = " "
	_, err := f.svc.Checkout(context.Background(), "sess-1", input)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))
}

func TestDonateCreatesTransactionAndDonation(t *testing.T) {
	f := newCheckoutFixture(t, cart.State{}, nil)
	registryID := uuid.New()
	f.registry.registries[registryID] = &models.Registry{ID: registryID, IsActive: true}

	result, err := f.svc.Donate(context.Background(), DonationInput{
		RegistryID: registryID,
		AmountKobo: 500000,
		Customer:   testCustomer(),
	})
	require.NoError(t, err)
	assert.Equal(t, int64(500000), result.AmountKobo)
	assert.Empty(t, result.OrderNumbers)

	var txn models.Transaction
	require.NoError(t, f.db.Where("txn_no = ?", result.TxnNo).First(&txn).Error)
	assert.Equal(t, enums.TransactionTypeDonation, txn.Type)

	var donation models.Donation
	require.NoError(t, f.db.Where("transaction_id = ?", txn.ID).First(&donation).Error)
	assert.Equal(t, registryID, donation.RegistryID)
	assert.Equal(t, int64(500000), donation.AmountKobo)
}

func TestDonateUnknownOrInactiveRegistry(t *testing.T) {
	f := newCheckoutFixture(t, cart.State{}, nil)
	inactiveID := uuid.New()
	f.registry.registries[inactiveID] = &models.Registry{ID: inactiveID, IsActive: false}

	_, err := f.svc.Donate(context.Background(), DonationInput{
		RegistryID: uuid.New(),
		AmountKobo: 1000,
		Customer:   testCustomer(),
	})
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeNotFound))

	_, err = f.svc.Donate(context.Background(), DonationInput{
		RegistryID: inactiveID,
		AmountKobo: 1000,
		Customer:   testCustomer(),
	})
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeNotFound))
}

func TestDonateValidatesAmount(t *testing.T) {
	f := newCheckoutFixture(t, cart.State{}, nil)

	_, err := f.svc.Donate(context.Background(), DonationInput{
		RegistryID: uuid.New(),
		AmountKobo: 0,
		Customer:   testCustomer(),
	})
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))
}
