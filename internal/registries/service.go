package registries

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/oduntan/giftregistry-backend/pkg/db"
	"github.com/oduntan/giftregistry-backend/pkg/db/models"
	"github.com/oduntan/giftregistry-backend/pkg/enums"
	pkgerrors "github.com/oduntan/giftregistry-backend/pkg/errors"
	"github.com/oduntan/giftregistry-backend/pkg/logger"
	"github.com/oduntan/giftregistry-backend/pkg/slug"
)

type productFinder interface {
	FindProduct(ctx context.Context, id uuid.UUID) (*models.Product, error)
}

type donationSummer interface {
	SumPaidDonations(ctx context.Context, registryID uuid.UUID) (int64, error)
}

// CreateInput carries the owner-supplied fields for a new registry.
type CreateInput struct {
	Name        string             `json:"name" validate:"required"`
	Kind        enums.RegistryKind `json:"kind" validate:"required"`
	Description string             `json:"description" validate:"required"`
	Hashtag     *string            `json:"hashtag,omitempty"`
	ImageURL    *string            `json:"image_url,omitempty"`
}

// UpdateInput carries optional edits; nil fields stay untouched.
type UpdateInput struct {
	Name        *string `json:"name,omitempty"`
	Description *string `json:"description,omitempty"`
	Hashtag     *string `json:"hashtag,omitempty"`
	ImageURL    *string `json:"image_url,omitempty"`
	IsActive    *bool   `json:"is_active,omitempty"`
}

// DeliveryInput is the shipping address gifts for the registry go to.
type DeliveryInput struct {
	Name        string  `json:"name" validate:"required"`
	PhoneNumber *string `json:"phone_number,omitempty"`
	Address     string  `json:"address" validate:"required"`
	City        string  `json:"city" validate:"required"`
	State       string  `json:"state" validate:"required"`
}

// FundInput configures the registry's honeymoon fund.
type FundInput struct {
	Message          *string `json:"message,omitempty"`
	TargetAmountKobo *int64  `json:"target_amount_kobo,omitempty" validate:"omitempty,gt=0"`
}

// PublicView is the guest-facing registry page payload.
type PublicView struct {
	Registry       *models.Registry `json:"registry"`
	FundRaisedKobo int64            `json:"fund_raised_kobo"`
	PurchasedCount int              `json:"purchased_count"`
	RemainingCount int              `json:"remaining_count"`
}

// Service owns registry lifecycle and wishlist management.
type Service interface {
	Create(ctx context.Context, ownerID uuid.UUID, input CreateInput) (*models.Registry, error)
	GetBySlug(ctx context.Context, slug string) (*PublicView, error)
	ListMine(ctx context.Context, ownerID uuid.UUID) ([]models.Registry, error)
	Update(ctx context.Context, ownerID, registryID uuid.UUID, input UpdateInput) (*models.Registry, error)
	AddProduct(ctx context.Context, ownerID, registryID, productID uuid.UUID) (*models.RegistryProduct, error)
	RemoveProduct(ctx context.Context, ownerID, registryID, registryProductID uuid.UUID) error
	SetDeliveryAddress(ctx context.Context, ownerID, registryID uuid.UUID, input DeliveryInput) error
	SetFund(ctx context.Context, ownerID, registryID uuid.UUID, input FundInput) error
}

type service struct {
	repo      Repository
	products  productFinder
	donations donationSummer
	logg      *logger.Logger
}

// NewService builds a registries service with the required dependencies.
func NewService(repo Repository, products productFinder, donations donationSummer, logg *logger.Logger) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("registries repository required")
	}
	if products == nil {
		return nil, fmt.Errorf("product finder required")
	}
	if donations == nil {
		return nil, fmt.Errorf("donation summer required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &service{repo: repo, products: products, donations: donations, logg: logg}, nil
}

func (s *service) Create(ctx context.Context, ownerID uuid.UUID, input CreateInput) (*models.Registry, error) {
	input.Name = strings.TrimSpace(input.Name)
	if input.Name == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "registry name required")
	}
	if !input.Kind.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "unknown registry kind")
	}

	slug, err := s.uniqueSlug(ctx, input.Name)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "generate registry slug")
	}

	registry := &models.Registry{
		Name:        input.Name,
		Slug:        slug,
		Hashtag:     input.Hashtag,
		Kind:        input.Kind,
		Description: strings.TrimSpace(input.Description),
		ImageURL:    input.ImageURL,
		OwnerID:     ownerID,
		IsActive:    true,
	}
	created, err := s.repo.Create(ctx, registry)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create registry")
	}

	ctx = s.logg.WithFields(ctx, map[string]any{
		"registry_id": created.ID.String(),
		"slug":        created.Slug,
	})
	s.logg.Info(ctx, "registry created")
	return created, nil
}

func (s *service) GetBySlug(ctx context.Context, slug string) (*PublicView, error) {
	registry, err := s.repo.FindBySlug(ctx, strings.TrimSpace(slug))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "registry not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load registry")
	}
	if !registry.IsActive {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "registry not found")
	}

	view := &PublicView{Registry: registry}
	for _, rp := range registry.Products {
		if rp.Purchased {
			view.PurchasedCount++
		} else {
			view.RemainingCount++
		}
	}
	if registry.Fund != nil {
		raised, err := s.donations.SumPaidDonations(ctx, registry.ID)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "sum registry donations")
		}
		view.FundRaisedKobo = raised
	}
	return view, nil
}

func (s *service) ListMine(ctx context.Context, ownerID uuid.UUID) ([]models.Registry, error) {
	registries, err := s.repo.ListByOwner(ctx, ownerID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list registries")
	}
	return registries, nil
}

func (s *service) Update(ctx context.Context, ownerID, registryID uuid.UUID, input UpdateInput) (*models.Registry, error) {
	registry, err := s.owned(ctx, ownerID, registryID)
	if err != nil {
		return nil, err
	}

	updates := map[string]any{}
	if input.Name != nil {
		name := strings.TrimSpace(*input.Name)
		if name == "" {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "registry name cannot be blank")
		}
		updates["name"] = name
	}
	if input.Description != nil {
		updates["description"] = strings.TrimSpace(*input.Description)
	}
	if input.Hashtag != nil {
		updates["hashtag"] = *input.Hashtag
	}
	if input.ImageURL != nil {
		updates["image_url"] = *input.ImageURL
	}
	if input.IsActive != nil {
		updates["is_active"] = *input.IsActive
	}
	if len(updates) == 0 {
		return registry, nil
	}

	if err := s.repo.Update(ctx, registry.ID, updates); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update registry")
	}
	updated, err := s.repo.FindRegistry(ctx, registry.ID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "reload registry")
	}
	return updated, nil
}

func (s *service) AddProduct(ctx context.Context, ownerID, registryID, productID uuid.UUID) (*models.RegistryProduct, error) {
	registry, err := s.owned(ctx, ownerID, registryID)
	if err != nil {
		return nil, err
	}

	product, err := s.products.FindProduct(ctx, productID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load product")
	}
	if !product.IsAvailable {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "product is not available")
	}

	rp, err := s.repo.AddProduct(ctx, &models.RegistryProduct{
		RegistryID: registry.ID,
		ProductID:  product.ID,
	})
	if err != nil {
		if db.IsUniqueViolation(err) {
			return nil, pkgerrors.New(pkgerrors.CodeConflict, "product is already on this registry")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "add registry product")
	}
	return rp, nil
}

func (s *service) RemoveProduct(ctx context.Context, ownerID, registryID, registryProductID uuid.UUID) error {
	registry, err := s.owned(ctx, ownerID, registryID)
	if err != nil {
		return err
	}

	rp, err := s.repo.FindProduct(ctx, registry.ID, registryProductID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.New(pkgerrors.CodeNotFound, "registry product not found")
		}
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load registry product")
	}
	if rp.Purchased {
		return pkgerrors.New(pkgerrors.CodeConflict, "purchased gifts cannot be removed")
	}

	if err := s.repo.RemoveProduct(ctx, rp.ID); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "remove registry product")
	}
	return nil
}

func (s *service) SetDeliveryAddress(ctx context.Context, ownerID, registryID uuid.UUID, input DeliveryInput) error {
	registry, err := s.owned(ctx, ownerID, registryID)
	if err != nil {
		return err
	}
	if strings.TrimSpace(input.Name) == "" || strings.TrimSpace(input.Address) == "" ||
		strings.TrimSpace(input.City) == "" || strings.TrimSpace(input.State) == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "name, address, city and state are required")
	}

	err = s.repo.UpsertDeliveryAddress(ctx, &models.RegistryDeliveryAddress{
		RegistryID:  registry.ID,
		Name:        strings.TrimSpace(input.Name),
		PhoneNumber: input.PhoneNumber,
		Address:     strings.TrimSpace(input.Address),
		City:        strings.TrimSpace(input.City),
		State:       strings.TrimSpace(input.State),
	})
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "save delivery address")
	}
	return nil
}

func (s *service) SetFund(ctx context.Context, ownerID, registryID uuid.UUID, input FundInput) error {
	registry, err := s.owned(ctx, ownerID, registryID)
	if err != nil {
		return err
	}
	if input.TargetAmountKobo != nil && *input.TargetAmountKobo <= 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "fund target must be positive")
	}

	err = s.repo.UpsertFund(ctx, &models.HoneymoonFund{
		RegistryID:       registry.ID,
		Message:          input.Message,
		TargetAmountKobo: input.TargetAmountKobo,
	})
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "save honeymoon fund")
	}
	return nil
}

// owned loads a registry and enforces that ownerID owns it.
func (s *service) owned(ctx context.Context, ownerID, registryID uuid.UUID) (*models.Registry, error) {
	registry, err := s.repo.FindRegistry(ctx, registryID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "registry not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load registry")
	}
	if registry.OwnerID != ownerID {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "registry belongs to another user")
	}
	return registry, nil
}

// uniqueSlug slugifies the name and appends a short random suffix when the
// plain slug is already taken.
func (s *service) uniqueSlug(ctx context.Context, name string) (string, error) {
	base := slug.Make(name)
	if base == "" {
		base = "registry"
	}
	taken, err := s.repo.SlugExists(ctx, base)
	if err != nil {
		return "", err
	}
	if !taken {
		return base, nil
	}
	for i := 0; i < 5; i++ {
		candidate := fmt.Sprintf("%s-%s", base, uuid.NewString()[:8])
		taken, err := s.repo.SlugExists(ctx, candidate)
		if err != nil {
			return "", err
		}
		if !taken {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("could not find a free slug for %q", base)
}
