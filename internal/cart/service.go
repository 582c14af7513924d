package cart

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/oduntan/giftregistry-backend/internal/discounts"
	pkgerrors "github.com/oduntan/giftregistry-backend/pkg/errors"
	"github.com/oduntan/giftregistry-backend/pkg/logger"
	"github.com/oduntan/giftregistry-backend/pkg/session"
)

// View is the priced cart returned to the storefront. Discount math is
// recomputed on every read so a code devalued since it was applied never
// understates the payable amount.
type View struct {
	Lines         []Line `json:"lines"`
	TotalKobo     int64  `json:"total_kobo"`
	DiscountCode  string `json:"discount_code,omitempty"`
	ReductionKobo int64  `json:"reduction_kobo"`
	PayableKobo   int64  `json:"payable_kobo"`
	TotalQuantity int    `json:"total_quantity"`
}

// Service owns the session cart lifecycle.
type Service interface {
	Add(ctx context.Context, sessionID string, registryProductID uuid.UUID, quantity int) (*View, error)
	Remove(ctx context.Context, sessionID string, registryProductID uuid.UUID) (*View, error)
	Clear(ctx context.Context, sessionID string) error
	Get(ctx context.Context, sessionID string) (*View, error)
	ApplyDiscount(ctx context.Context, sessionID, code string) (*View, error)
	// Load returns the raw state for checkout to snapshot.
	Load(ctx context.Context, sessionID string) (State, error)
}

// discountApplier is the slice of the discounts service the cart needs.
type discountApplier interface {
	Apply(ctx context.Context, code string, baseAmountKobo int64) (*discounts.Application, error)
}

type service struct {
	repo      Repository
	store     session.Store
	discounts discountApplier
	logg      *logger.Logger
}

// NewService builds a cart service with the required dependencies.
func NewService(repo Repository, store session.Store, discountSvc discountApplier, logg *logger.Logger) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("cart repository required")
	}
	if store == nil {
		return nil, fmt.Errorf("session store required")
	}
	if discountSvc == nil {
		return nil, fmt.Errorf("discounts service required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &service{repo: repo, store: store, discounts: discountSvc, logg: logg}, nil
}

func (s *service) Add(ctx context.Context, sessionID string, registryProductID uuid.UUID, quantity int) (*View, error) {
	if sessionID == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "session id required")
	}
	if registryProductID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "registry product id required")
	}
	if quantity <= 0 {
		quantity = 1
	}

	rp, err := s.repo.FindRegistryProduct(ctx, registryProductID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "gift not found on any registry")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load registry product")
	}
	if rp.Purchased {
		return nil, pkgerrors.New(pkgerrors.CodeOutOfStock, "gift has already been purchased")
	}
	if rp.Product == nil || rp.Registry == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "registry product missing associations")
	}
	if !rp.Product.IsAvailable {
		return nil, pkgerrors.New(pkgerrors.CodeOutOfStock, "product is no longer available")
	}

	state, err := s.load(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	var imageURL *string
	if img := rp.Product.MainImage(); img != nil {
		imageURL = &img.URL
	}

	if idx := state.findLine(registryProductID); idx >= 0 {
		// Accumulate and re-snapshot the price at the latest add.
		state.Lines[idx].Quantity += quantity
		state.Lines[idx].UnitPriceKobo = rp.Product.PriceKobo
		state.Lines[idx].ImageURL = imageURL
	} else {
		state.Lines = append(state.Lines, Line{
			RegistryProductID: rp.ID,
			RegistryID:        rp.RegistryID,
			RegistryName:      rp.Registry.Name,
			ProductID:         rp.ProductID,
			ProductName:       rp.Product.Name,
			ImageURL:          imageURL,
			Quantity:          quantity,
			UnitPriceKobo:     rp.Product.PriceKobo,
		})
	}

	if err := s.save(ctx, sessionID, state); err != nil {
		return nil, err
	}

	ctx = s.logg.WithSessionID(ctx, sessionID)
	s.logg.Info(s.logg.WithField(ctx, "registry_product_id", registryProductID), "gift added to cart")

	return s.view(ctx, state)
}

func (s *service) Remove(ctx context.Context, sessionID string, registryProductID uuid.UUID) (*View, error) {
	if sessionID == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "session id required")
	}

	state, err := s.load(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	idx := state.findLine(registryProductID)
	if idx < 0 {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "gift is not in the cart")
	}
	state.Lines = append(state.Lines[:idx], state.Lines[idx+1:]...)

	// An emptied cart drops its discount and its session payload.
	if state.IsEmpty() {
		if err := s.store.Clear(ctx, sessionID); err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "clear cart session")
		}
		return &View{Lines: []Line{}}, nil
	}

	if err := s.save(ctx, sessionID, state); err != nil {
		return nil, err
	}
	return s.view(ctx, state)
}

func (s *service) Clear(ctx context.Context, sessionID string) error {
	if sessionID == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "session id required")
	}
	if err := s.store.Clear(ctx, sessionID); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "clear cart session")
	}
	return nil
}

func (s *service) Get(ctx context.Context, sessionID string) (*View, error) {
	state, err := s.load(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	return s.view(ctx, state)
}

func (s *service) ApplyDiscount(ctx context.Context, sessionID, code string) (*View, error) {
	state, err := s.load(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if state.IsEmpty() {
		return nil, pkgerrors.New(pkgerrors.CodeEmptyCart, "cannot apply a discount to an empty cart")
	}

	// Validate the code against the current total before persisting it.
	if _, err := s.discounts.Apply(ctx, code, state.TotalKobo()); err != nil {
		return nil, err
	}

	state.DiscountCode = code
	if err := s.save(ctx, sessionID, state); err != nil {
		return nil, err
	}
	return s.view(ctx, state)
}

func (s *service) Load(ctx context.Context, sessionID string) (State, error) {
	return s.load(ctx, sessionID)
}

func (s *service) load(ctx context.Context, sessionID string) (State, error) {
	payload, ok, err := s.store.Get(ctx, sessionID)
	if err != nil {
		return State{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "read cart session")
	}
	if !ok {
		return State{}, nil
	}
	state, err := decodeState(payload)
	if err != nil {
		return State{}, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "decode cart session")
	}
	return state, nil
}

func (s *service) save(ctx context.Context, sessionID string, state State) error {
	payload, err := encodeState(state)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "encode cart session")
	}
	if err := s.store.Set(ctx, sessionID, payload); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "write cart session")
	}
	return nil
}

func (s *service) view(ctx context.Context, state State) (*View, error) {
	view := &View{
		Lines:     state.Lines,
		TotalKobo: state.TotalKobo(),
	}
	if view.Lines == nil {
		view.Lines = []Line{}
	}
	for _, line := range state.Lines {
		view.TotalQuantity += line.Quantity
	}
	view.PayableKobo = view.TotalKobo

	if state.DiscountCode == "" {
		return view, nil
	}

	app, err := s.discounts.Apply(ctx, state.DiscountCode, view.TotalKobo)
	if err != nil {
		// A code revoked or retired after it was applied prices as no
		// discount.
		if pkgerrors.IsCode(err, pkgerrors.CodeNotFound) || pkgerrors.IsCode(err, pkgerrors.CodeExpired) {
			return view, nil
		}
		return nil, err
	}
	view.DiscountCode = state.DiscountCode
	view.ReductionKobo = app.ReductionKobo
	view.PayableKobo = app.DiscountedKobo
	return view, nil
}
