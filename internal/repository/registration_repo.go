package repository

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"festreg/internal/domain"
)

type RegistrationFilter struct {
	CompetitionID int64
	PaymentStatus string
	StartDate     *time.Time
	EndDate       *time.Time
}

type RegistrationRepository struct {
	db *gorm.DB
}

func NewRegistrationRepository(db *gorm.DB) *RegistrationRepository {
	return &RegistrationRepository{db: db}
}

func (r *RegistrationRepository) Create(ctx context.Context, reg *domain.Registration) error {
	return r.db.WithContext(ctx).Create(reg).Error
}

func (r *RegistrationRepository) GetByID(ctx context.Context, id int64) (*domain.Registration, error) {
	var reg domain.Registration
	if err := r.db.WithContext(ctx).First(&reg, id).Error; err != nil {
		return nil, err
	}
	return &reg, nil
}

func (r *RegistrationRepository) GetByRegistrationID(ctx context.Context, regID string) (*domain.Registration, error) {
	var reg domain.Registration
	if err := r.db.WithContext(ctx).Where("registration_id = ?", regID).First(&reg).Error; err != nil {
		return nil, err
	}
	return &reg, nil
}

// FindByContact returns the first registration matching any of email, mobile
// or national id. The three fields form one overlapping uniqueness group: a
// match on any of them against a paid record must block a new submission.
func (r *RegistrationRepository) FindByContact(ctx context.Context, email, mobile, aadhaar string) (*domain.Registration, error) {
	var reg domain.Registration
	err := r.db.WithContext(ctx).
		Where("email = ? OR mobile = ? OR aadhaar_number = ?", email, mobile, aadhaar).
		Order("created_at ASC").
		First(&reg).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &reg, nil
}

func (r *RegistrationRepository) List(ctx context.Context, f RegistrationFilter) ([]domain.Registration, error) {
	q := r.db.WithContext(ctx).Model(&domain.Registration{})
	if f.CompetitionID > 0 {
		q = q.Where("competition_id = ?", f.CompetitionID)
	}
	if f.PaymentStatus != "" {
		q = q.Where("payment_status = ?", f.PaymentStatus)
	}
	if f.StartDate != nil && f.EndDate != nil {
		q = q.Where("created_at BETWEEN ? AND ?", *f.StartDate, *f.EndDate)
	}

	var out []domain.Registration
	if err := q.Order("created_at DESC").Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *RegistrationRepository) SetPaymentRef(ctx context.Context, id int64, paymentID string) error {
	return r.db.WithContext(ctx).Model(&domain.Registration{}).
		Where("id = ?", id).
		Update("payment_id", paymentID).Error
}

func (r *RegistrationRepository) SetStatus(ctx context.Context, id int64, status domain.PaymentStatus) error {
	res := r.db.WithContext(ctx).Model(&domain.Registration{}).
		Where("id = ?", id).
		Update("payment_status", status)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// ResetForRetry moves a non-successful record back to pending and clears the
// stale gateway reference so a fresh session can be attached.
func (r *RegistrationRepository) ResetForRetry(ctx context.Context, id int64) error {
	res := r.db.WithContext(ctx).Model(&domain.Registration{}).
		Where("id = ? AND payment_status <> ?", id, domain.PaymentSuccess).
		Updates(map[string]interface{}{
			"payment_status": domain.PaymentPending,
			"payment_id":     "",
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// MarkSuccessIdempotent marks a registration paid exactly once. It locks the
// row, short-circuits if the record is already successful, and assigns the
// human-readable registration id on the first transition only. Returns whether
// this call performed the transition.
func (r *RegistrationRepository) MarkSuccessIdempotent(ctx context.Context, id int64, regID, paymentID string) (bool, error) {
	var changed bool
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var reg domain.Registration
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&reg, id).Error; err != nil {
			return err
		}
		if reg.PaymentStatus == domain.PaymentSuccess {
			changed = false
			return nil
		}
		updates := map[string]interface{}{
			"payment_status": domain.PaymentSuccess,
		}
		if paymentID != "" {
			updates["payment_id"] = paymentID
		}
		if reg.RegistrationID == "" {
			updates["registration_id"] = regID
		}
		res := tx.Model(&domain.Registration{}).Where("id = ?", id).Updates(updates)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return errors.New("registration row not updated")
		}
		changed = true
		return nil
	})
	return changed, err
}

func (r *RegistrationRepository) UpdateStatusByRegistrationID(ctx context.Context, regID string, status domain.PaymentStatus, paymentID string) (*domain.Registration, error) {
	updates := map[string]interface{}{"payment_status": status}
	if paymentID != "" {
		updates["payment_id"] = paymentID
	}
	res := r.db.WithContext(ctx).Model(&domain.Registration{}).
		Where("registration_id = ?", regID).
		Updates(updates)
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		return nil, gorm.ErrRecordNotFound
	}
	var reg domain.Registration
	if err := r.db.WithContext(ctx).Where("registration_id = ?", regID).First(&reg).Error; err != nil {
		return nil, err
	}
	return &reg, nil
}

func (r *RegistrationRepository) Delete(ctx context.Context, id int64) error {
	res := r.db.WithContext(ctx).Delete(&domain.Registration{}, id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// IsUniqueViolation reports whether err is a unique-constraint failure from
// either backend. Postgres surfaces pgconn.PgError 23505; the modernc sqlite
// driver only gives us the constraint message text.
func IsUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == pgerrcode.UniqueViolation
	}
	if err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed") {
		return true
	}
	return false
}
