package registration

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"festreg/internal/domain"
	"festreg/internal/modules/payment"
	"festreg/internal/repository"
)

type registrationRepo interface {
	GetByID(ctx context.Context, id int64) (*domain.Registration, error)
	GetByRegistrationID(ctx context.Context, regID string) (*domain.Registration, error)
	List(ctx context.Context, f repository.RegistrationFilter) ([]domain.Registration, error)
	UpdateStatusByRegistrationID(ctx context.Context, regID string, status domain.PaymentStatus, paymentID string) (*domain.Registration, error)
	Delete(ctx context.Context, id int64) error
}

// recordCreator is the single entry point for creating registrations; the
// payment workflow owns validation, deduplication and persistence.
type recordCreator interface {
	CreateRecord(ctx context.Context, in payment.SubmitInput, doc *payment.Document) (*payment.SubmitResult, string, error)
}

type Service struct {
	registrations registrationRepo
	creator       recordCreator
}

func NewService(registrations registrationRepo, creator recordCreator) *Service {
	return &Service{registrations: registrations, creator: creator}
}

// Create persists a registration in pending without opening a payment
// session. Same duplicate rules as the paid flow.
func (s *Service) Create(ctx context.Context, in payment.SubmitInput, doc *payment.Document) (*payment.SubmitResult, error) {
	result, _, err := s.creator.CreateRecord(ctx, in, doc)
	return result, err
}

func (s *Service) GetByID(ctx context.Context, id int64) (*domain.Registration, error) {
	reg, err := s.registrations.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return reg, nil
}

// Verify resolves the human-readable registration id from a scanned receipt
// QR. Only successful registrations verify.
func (s *Service) Verify(ctx context.Context, regID string) (*domain.Registration, error) {
	reg, err := s.registrations.GetByRegistrationID(ctx, regID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if reg.PaymentStatus != domain.PaymentSuccess {
		return nil, ErrNotFound
	}
	return reg, nil
}

func (s *Service) List(ctx context.Context, f repository.RegistrationFilter) ([]domain.Registration, error) {
	return s.registrations.List(ctx, f)
}

// UpdateStatus is the administrative fixup keyed by the human-readable
// registration id.
func (s *Service) UpdateStatus(ctx context.Context, regID string, status string, paymentID string) (*domain.Registration, error) {
	if regID == "" || status == "" {
		return nil, fmt.Errorf("%w: registrationId and paymentStatus are required", ErrValidation)
	}
	st := domain.PaymentStatus(status)
	switch st {
	case domain.PaymentPending, domain.PaymentSuccess, domain.PaymentFailed:
	default:
		return nil, fmt.Errorf("%w: %q", ErrInvalidStatus, status)
	}

	reg, err := s.registrations.UpdateStatusByRegistrationID(ctx, regID, st, paymentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return reg, nil
}

func (s *Service) Delete(ctx context.Context, id int64) error {
	if err := s.registrations.Delete(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotFound
		}
		return err
	}
	return nil
}
