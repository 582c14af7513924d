package registries

import (
	"context"
	"io"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/oduntan/giftregistry-backend/pkg/db/models"
	"github.com/oduntan/giftregistry-backend/pkg/enums"
	pkgerrors "github.com/oduntan/giftregistry-backend/pkg/errors"
	"github.com/oduntan/giftregistry-backend/pkg/logger"
)

type stubRepo struct {
	registries map[uuid.UUID]*models.Registry
	products   map[uuid.UUID]*models.RegistryProduct
	slugs      map[string]bool
	delivery   map[uuid.UUID]*models.RegistryDeliveryAddress
	funds      map[uuid.UUID]*models.HoneymoonFund
	addErr     error
}

func newStubRepo() *stubRepo {
	return &stubRepo{
		registries: map[uuid.UUID]*models.Registry{},
		products:   map[uuid.UUID]*models.RegistryProduct{},
		slugs:      map[string]bool{},
		delivery:   map[uuid.UUID]*models.RegistryDeliveryAddress{},
		funds:      map[uuid.UUID]*models.HoneymoonFund{},
	}
}

func (s *stubRepo) WithTx(tx *gorm.DB) Repository { return s }

func (s *stubRepo) Create(ctx context.Context, registry *models.Registry) (*models.Registry, error) {
	if registry.ID == uuid.Nil {
		registry.ID = uuid.New()
	}
	s.registries[registry.ID] = registry
	s.slugs[registry.Slug] = true
	return registry, nil
}

func (s *stubRepo) FindRegistry(ctx context.Context, id uuid.UUID) (*models.Registry, error) {
	registry, ok := s.registries[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return registry, nil
}

func (s *stubRepo) FindBySlug(ctx context.Context, slug string) (*models.Registry, error) {
	for _, registry := range s.registries {
		if registry.Slug == slug {
			return registry, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (s *stubRepo) SlugExists(ctx context.Context, slug string) (bool, error) {
	return s.slugs[slug], nil
}

func (s *stubRepo) ListByOwner(ctx context.Context, ownerID uuid.UUID) ([]models.Registry, error) {
	var out []models.Registry
	for _, registry := range s.registries {
		if registry.OwnerID == ownerID {
			out = append(out, *registry)
		}
	}
	return out, nil
}

func (s *stubRepo) Update(ctx context.Context, id uuid.UUID, updates map[string]any) error {
	registry, ok := s.registries[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	if name, ok := updates["name"].(string); ok {
		registry.Name = name
	}
	if active, ok := updates["is_active"].(bool); ok {
		registry.IsActive = active
	}
	return nil
}

func (s *stubRepo) AddProduct(ctx context.Context, rp *models.RegistryProduct) (*models.RegistryProduct, error) {
	if s.addErr != nil {
		return nil, s.addErr
	}
	if rp.ID == uuid.Nil {
		rp.ID = uuid.New()
	}
	s.products[rp.ID] = rp
	return rp, nil
}

func (s *stubRepo) FindProduct(ctx context.Context, registryID, registryProductID uuid.UUID) (*models.RegistryProduct, error) {
	rp, ok := s.products[registryProductID]
	if !ok || rp.RegistryID != registryID {
		return nil, gorm.ErrRecordNotFound
	}
	return rp, nil
}

func (s *stubRepo) RemoveProduct(ctx context.Context, registryProductID uuid.UUID) error {
	delete(s.products, registryProductID)
	return nil
}

func (s *stubRepo) UpsertDeliveryAddress(ctx context.Context, addr *models.RegistryDeliveryAddress) error {
	s.delivery[addr.RegistryID] = addr
	return nil
}

func (s *stubRepo) UpsertFund(ctx context.Context, fund *models.HoneymoonFund) error {
	s.funds[fund.RegistryID] = fund
	return nil
}

type stubProducts struct {
	products map[uuid.UUID]*models.Product
}

func (s *stubProducts) FindProduct(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	product, ok := s.products[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return product, nil
}

type stubDonations struct {
	sums map[uuid.UUID]int64
}

func (s *stubDonations) SumPaidDonations(ctx context.Context, registryID uuid.UUID) (int64, error) {
	return s.sums[registryID], nil
}

type fixture struct {
	svc       Service
	repo      *stubRepo
	products  *stubProducts
	donations *stubDonations
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	repo := newStubRepo()
	products := &stubProducts{products: map[uuid.UUID]*models.Product{}}
	donations := &stubDonations{sums: map[uuid.UUID]int64{}}
	logg := logger.New(logger.Options{ServiceName: "registries-test", Output: io.Discard})
	svc, err := NewService(repo, products, donations, logg)
	require.NoError(t, err)
	return &fixture{svc: svc, repo: repo, products: products, donations: donations}
}

func TestCreateSlugifiesName(t *testing.T) {
	f := newFixture(t)
	owner := uuid.New()

	registry, err := f.svc.Create(context.Background(), owner, CreateInput{
		Name:        "Tolu & Bisi's Big Day!",
		Kind:        enums.RegistryKindWedding,
		Description: "Our wedding registry",
	})
	require.NoError(t, err)

	assert.Equal(t, "tolu-bisi-s-big-day", registry.Slug)
	assert.Equal(t, owner, registry.OwnerID)
	assert.True(t, registry.IsActive)
}

func TestCreateSuffixesTakenSlug(t *testing.T) {
	f := newFixture(t)
	owner := uuid.New()

	first, err := f.svc.Create(context.Background(), owner, CreateInput{
		Name:        "Baby Shower",
		Kind:        enums.RegistryKindBabyShower,
		Description: "first",
	})
	require.NoError(t, err)

	second, err := f.svc.Create(context.Background(), owner, CreateInput{
		Name:        "Baby Shower",
		Kind:        enums.RegistryKindBabyShower,
		Description: "second",
	})
	require.NoError(t, err)

	assert.Equal(t, "baby-shower", first.Slug)
	assert.NotEqual(t, first.Slug, second.Slug)
	assert.Contains(t, second.Slug, "baby-shower-")
}

func TestCreateRejectsUnknownKind(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.Create(context.Background(), uuid.New(), CreateInput{
		Name:        "Mystery Party",
		Kind:        enums.RegistryKind("housewarming"),
		Description: "???",
	})
	require.Error(t, err)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))
}

func TestGetBySlugHidesInactiveRegistries(t *testing.T) {
	f := newFixture(t)
	owner := uuid.New()

	registry, err := f.svc.Create(context.Background(), owner, CreateInput{
		Name:        "Hidden",
		Kind:        enums.RegistryKindBirthday,
		Description: "deactivated",
	})
	require.NoError(t, err)
	registry.IsActive = false

	_, err = f.svc.GetBySlug(context.Background(), registry.Slug)
	require.Error(t, err)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeNotFound))
}

func TestGetBySlugCountsGiftsAndFund(t *testing.T) {
	f := newFixture(t)
	owner := uuid.New()

	registry, err := f.svc.Create(context.Background(), owner, CreateInput{
		Name:        "Counted",
		Kind:        enums.RegistryKindWedding,
		Description: "with fund",
	})
	require.NoError(t, err)

	registry.Products = []models.RegistryProduct{
		{ID: uuid.New(), RegistryID: registry.ID, Purchased: true},
		{ID: uuid.New(), RegistryID: registry.ID},
		{ID: uuid.New(), RegistryID: registry.ID},
	}
	registry.Fund = &models.HoneymoonFund{RegistryID: registry.ID}
	f.donations.sums[registry.ID] = 250000

	view, err := f.svc.GetBySlug(context.Background(), registry.Slug)
	require.NoError(t, err)

	assert.Equal(t, 1, view.PurchasedCount)
	assert.Equal(t, 2, view.RemainingCount)
	assert.Equal(t, int64(250000), view.FundRaisedKobo)
}

func TestUpdateEnforcesOwnership(t *testing.T) {
	f := newFixture(t)
	owner := uuid.New()

	registry, err := f.svc.Create(context.Background(), owner, CreateInput{
		Name:        "Mine",
		Kind:        enums.RegistryKindWedding,
		Description: "owned",
	})
	require.NoError(t, err)

	name := "Taken Over"
	_, err = f.svc.Update(context.Background(), uuid.New(), registry.ID, UpdateInput{Name: &name})
	require.Error(t, err)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeForbidden))

	updated, err := f.svc.Update(context.Background(), owner, registry.ID, UpdateInput{Name: &name})
	require.NoError(t, err)
	assert.Equal(t, "Taken Over", updated.Name)
}

func TestAddProductChecksAvailability(t *testing.T) {
	f := newFixture(t)
	owner := uuid.New()

	registry, err := f.svc.Create(context.Background(), owner, CreateInput{
		Name:        "Wishlist",
		Kind:        enums.RegistryKindBridal,
		Description: "gifts",
	})
	require.NoError(t, err)

	available := &models.Product{ID: uuid.New(), Name: "Blender", IsAvailable: true}
	retired := &models.Product{ID: uuid.New(), Name: "Old Kettle", IsAvailable: false}
	f.products.products[available.ID] = available
	f.products.products[retired.ID] = retired

	rp, err := f.svc.AddProduct(context.Background(), owner, registry.ID, available.ID)
	require.NoError(t, err)
	assert.Equal(t, available.ID, rp.ProductID)

	_, err = f.svc.AddProduct(context.Background(), owner, registry.ID, retired.ID)
	require.Error(t, err)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))

	_, err = f.svc.AddProduct(context.Background(), owner, registry.ID, uuid.New())
	require.Error(t, err)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeNotFound))
}

func TestRemoveProductRefusesPurchasedGifts(t *testing.T) {
	f := newFixture(t)
	owner := uuid.New()

	registry, err := f.svc.Create(context.Background(), owner, CreateInput{
		Name:        "Locked",
		Kind:        enums.RegistryKindWedding,
		Description: "gifts",
	})
	require.NoError(t, err)

	product := &models.Product{ID: uuid.New(), Name: "Toaster", IsAvailable: true}
	f.products.products[product.ID] = product

	rp, err := f.svc.AddProduct(context.Background(), owner, registry.ID, product.ID)
	require.NoError(t, err)

	rp.Purchased = true
	err = f.svc.RemoveProduct(context.Background(), owner, registry.ID, rp.ID)
	require.Error(t, err)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeConflict))

	rp.Purchased = false
	require.NoError(t, f.svc.RemoveProduct(context.Background(), owner, registry.ID, rp.ID))
	assert.Empty(t, f.repo.products)
}

func TestSetDeliveryAddressValidatesFields(t *testing.T) {
	f := newFixture(t)
	owner := uuid.New()

	registry, err := f.svc.Create(context.Background(), owner, CreateInput{
		Name:        "Shipping",
		Kind:        enums.RegistryKindWedding,
		Description: "delivery",
	})
	require.NoError(t, err)

	err = f.svc.SetDeliveryAddress(context.Background(), owner, registry.ID, DeliveryInput{
		Name: "Tolu",
		City: "Lagos",
	})
	require.Error(t, err)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))

	err = f.svc.SetDeliveryAddress(context.Background(), owner, registry.ID, DeliveryInput{
		Name:    "Tolu Oduntan",
		Address: "12 Admiralty Way",
		City:    "Lagos",
		State:   "Lagos",
	})
	require.NoError(t, err)
	require.Contains(t, f.repo.delivery, registry.ID)
	assert.Equal(t, "12 Admiralty Way", f.repo.delivery[registry.ID].Address)
}

func TestSetFundRejectsNonPositiveTarget(t *testing.T) {
	f := newFixture(t)
	owner := uuid.New()

	registry, err := f.svc.Create(context.Background(), owner, CreateInput{
		Name:        "Fund",
		Kind:        enums.RegistryKindWedding,
		Description: "honeymoon",
	})
	require.NoError(t, err)

	zero := int64(0)
	err = f.svc.SetFund(context.Background(), owner, registry.ID, FundInput{TargetAmountKobo: &zero})
	require.Error(t, err)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))

	target := int64(5000000)
	require.NoError(t, f.svc.SetFund(context.Background(), owner, registry.ID, FundInput{TargetAmountKobo: &target}))
	require.Contains(t, f.repo.funds, registry.ID)
	assert.Equal(t, target, *f.repo.funds[registry.ID].TargetAmountKobo)
}
