package discounts

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/oduntan/giftregistry-backend/pkg/db"
	"github.com/oduntan/giftregistry-backend/pkg/db/models"
	pkgerrors "github.com/oduntan/giftregistry-backend/pkg/errors"
)

// Application is the result of pricing a discount against a base amount.
type Application struct {
	Discount       *models.Discount
	ReductionKobo  int64
	DiscountedKobo int64
}

// CreateInput carries admin-supplied fields for a new promo code. Exactly one
// of AmountKobo or Percentage must be set.
type CreateInput struct {
	Code       string   `json:"code" validate:"required"`
	AmountKobo *int64   `json:"amount_kobo,omitempty" validate:"omitempty,gt=0"`
	Percentage *float64 `json:"percentage,omitempty" validate:"omitempty,gt=0,lte=100"`
}

// Service resolves promo codes against a base amount and manages the codes
// themselves.
type Service interface {
	Apply(ctx context.Context, code string, baseAmountKobo int64) (*Application, error)
	Create(ctx context.Context, adminID uuid.UUID, input CreateInput) (*models.Discount, error)
	Deactivate(ctx context.Context, code string) error
}

type service struct {
	repo Repository
}

// NewService builds a discounts service with the required dependencies.
func NewService(repo Repository) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("discounts repository required")
	}
	return &service{repo: repo}, nil
}

// Apply looks up a code and prices it against the base amount. A code that
// was never issued reports not-found; a retired code reports expired so the
// caller can tell the two apart. The discounted amount never drops below zero.
func (s *service) Apply(ctx context.Context, code string, baseAmountKobo int64) (*Application, error) {
	code = strings.ToUpper(strings.TrimSpace(code))
	if code == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "discount code required")
	}
	if baseAmountKobo < 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "base amount cannot be negative")
	}

	discount, err := s.repo.FindByCode(ctx, code)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "discount code not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load discount")
	}
	if !discount.IsActive {
		return nil, pkgerrors.New(pkgerrors.CodeExpired, "discount code is no longer active")
	}

	reduction := discount.ReductionKobo(baseAmountKobo)
	if reduction > baseAmountKobo {
		reduction = baseAmountKobo
	}

	return &Application{
		Discount:       discount,
		ReductionKobo:  reduction,
		DiscountedKobo: baseAmountKobo - reduction,
	}, nil
}

// Create stores a new promo code. A duplicate code is treated as an input
// problem rather than a conflict so the admin form can surface it inline.
func (s *service) Create(ctx context.Context, adminID uuid.UUID, input CreateInput) (*models.Discount, error) {
	code := strings.ToUpper(strings.TrimSpace(input.Code))
	if code == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "discount code required")
	}
	if (input.AmountKobo == nil) == (input.Percentage == nil) {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "set exactly one of amount or percentage")
	}
	if input.AmountKobo != nil && *input.AmountKobo <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "amount must be positive")
	}
	if input.Percentage != nil && (*input.Percentage <= 0 || *input.Percentage > 100) {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "percentage must be between 0 and 100")
	}

	discount, err := s.repo.Create(ctx, &models.Discount{
		Code:        code,
		AmountKobo:  input.AmountKobo,
		Percentage:  input.Percentage,
		IsActive:    true,
		CreatedByID: &adminID,
	})
	if err != nil {
		if db.IsUniqueViolation(err) {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "discount code already exists")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create discount")
	}
	return discount, nil
}

// Deactivate retires a code. Deactivating an unknown or already inactive code
// is a no-op.
func (s *service) Deactivate(ctx context.Context, code string) error {
	code = strings.ToUpper(strings.TrimSpace(code))
	if code == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "discount code required")
	}
	if err := s.repo.Deactivate(ctx, code); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "deactivate discount")
	}
	return nil
}
