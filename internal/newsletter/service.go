package newsletter

import (
	"context"
	"fmt"
	"net/mail"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/oduntan/giftregistry-backend/pkg/db"
	"github.com/oduntan/giftregistry-backend/pkg/db/models"
	pkgerrors "github.com/oduntan/giftregistry-backend/pkg/errors"
	"github.com/oduntan/giftregistry-backend/pkg/logger"
)

// Repository defines persistence operations for newsletter signups.
type Repository interface {
	Create(ctx context.Context, subscriber *models.NewsletterSubscriber) error
	Count(ctx context.Context) (int64, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository builds a newsletter repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) Create(ctx context.Context, subscriber *models.NewsletterSubscriber) error {
	if subscriber.ID == uuid.Nil {
		subscriber.ID = uuid.New()
	}
	return r.db.WithContext(ctx).Create(subscriber).Error
}

func (r *repository) Count(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.NewsletterSubscriber{}).
		Count(&count).Error
	return count, err
}

// Service records storefront email signups.
type Service interface {
	Subscribe(ctx context.Context, email string) error
}

type service struct {
	repo Repository
	logg *logger.Logger
}

// NewService builds a newsletter service with the required dependencies.
func NewService(repo Repository, logg *logger.Logger) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("newsletter repository required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &service{repo: repo, logg: logg}, nil
}

// Subscribe stores the email. Signing up twice is not an error; the second
// attempt is absorbed so the storefront form stays friendly.
func (s *service) Subscribe(ctx context.Context, email string) error {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "email required")
	}
	if _, err := mail.ParseAddress(email); err != nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "invalid email address")
	}

	err := s.repo.Create(ctx, &models.NewsletterSubscriber{Email: email})
	if err != nil {
		if db.IsUniqueViolation(err) {
			return nil
		}
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "save subscriber")
	}

	s.logg.Info(s.logg.WithField(ctx, "email", email), "newsletter signup")
	return nil
}
