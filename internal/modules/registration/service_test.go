package registration

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"testing"
	"time"

	"gorm.io/gorm"

	"festreg/internal/domain"
	"festreg/internal/modules/payment"
	"festreg/internal/repository"
)

type mockRegRepo struct {
	byID      *domain.Registration
	listed    []domain.Registration
	listErr   error
	updated   *domain.Registration
	updateErr error

	lastStatus    domain.PaymentStatus
	lastPaymentID string
	deleteCalls   int
}

func (m *mockRegRepo) GetByID(ctx context.Context, id int64) (*domain.Registration, error) {
	if m.byID == nil || m.byID.ID != id {
		return nil, gorm.ErrRecordNotFound
	}
	return m.byID, nil
}

func (m *mockRegRepo) GetByRegistrationID(ctx context.Context, regID string) (*domain.Registration, error) {
	if m.byID == nil || m.byID.RegistrationID != regID {
		return nil, gorm.ErrRecordNotFound
	}
	return m.byID, nil
}

func (m *mockRegRepo) List(ctx context.Context, f repository.RegistrationFilter) ([]domain.Registration, error) {
	return m.listed, m.listErr
}

func (m *mockRegRepo) UpdateStatusByRegistrationID(ctx context.Context, regID string, status domain.PaymentStatus, paymentID string) (*domain.Registration, error) {
	m.lastStatus = status
	m.lastPaymentID = paymentID
	if m.updateErr != nil {
		return nil, m.updateErr
	}
	return m.updated, nil
}

func (m *mockRegRepo) Delete(ctx context.Context, id int64) error {
	m.deleteCalls++
	return nil
}

type mockCreator struct {
	result *payment.SubmitResult
	err    error
	calls  int
}

func (m *mockCreator) CreateRecord(ctx context.Context, in payment.SubmitInput, doc *payment.Document) (*payment.SubmitResult, string, error) {
	m.calls++
	return m.result, "Brewers Cup", m.err
}

func TestCreate_DelegatesToPaymentWorkflow(t *testing.T) {
	want := &payment.SubmitResult{Registration: &domain.Registration{ID: 5}}
	creator := &mockCreator{result: want}
	svc := NewService(&mockRegRepo{}, creator)

	got, err := svc.Create(context.Background(), payment.SubmitInput{}, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != want || creator.calls != 1 {
		t.Fatalf("expected delegation to the shared intake")
	}
}

func TestGetByID_NotFound(t *testing.T) {
	svc := NewService(&mockRegRepo{}, &mockCreator{})

	_, err := svc.GetByID(context.Background(), 99)
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestVerify(t *testing.T) {
	repo := &mockRegRepo{byID: &domain.Registration{ID: 1, RegistrationID: "REG-TEST-0001", PaymentStatus: domain.PaymentSuccess}}
	svc := NewService(repo, &mockCreator{})

	reg, err := svc.Verify(context.Background(), "REG-TEST-0001")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if reg.RegistrationID != "REG-TEST-0001" {
		t.Fatalf("unexpected registration %+v", reg)
	}
}

func TestVerify_PendingDoesNotVerify(t *testing.T) {
	repo := &mockRegRepo{byID: &domain.Registration{ID: 1, RegistrationID: "REG-TEST-0001", PaymentStatus: domain.PaymentPending}}
	svc := NewService(repo, &mockCreator{})

	if _, err := svc.Verify(context.Background(), "REG-TEST-0001"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound for a non-successful registration, got %v", err)
	}
}

func TestUpdateStatus_RejectsUnknownStatus(t *testing.T) {
	svc := NewService(&mockRegRepo{}, &mockCreator{})

	_, err := svc.UpdateStatus(context.Background(), "REG-X", "refunded", "")
	if !errors.Is(err, ErrInvalidStatus) {
		t.Fatalf("expected ErrInvalidStatus, got %v", err)
	}
}

func TestUpdateStatus_RequiresFields(t *testing.T) {
	svc := NewService(&mockRegRepo{}, &mockCreator{})

	if _, err := svc.UpdateStatus(context.Background(), "", "success", ""); !errors.Is(err, ErrValidation) {
		t.Fatalf("expected ErrValidation, got %v", err)
	}
	if _, err := svc.UpdateStatus(context.Background(), "REG-X", "", ""); !errors.Is(err, ErrValidation) {
		t.Fatalf("expected ErrValidation, got %v", err)
	}
}

func TestUpdateStatus_AppliesChange(t *testing.T) {
	repo := &mockRegRepo{updated: &domain.Registration{ID: 1, RegistrationID: "REG-X", PaymentStatus: domain.PaymentSuccess}}
	svc := NewService(repo, &mockCreator{})

	reg, err := svc.UpdateStatus(context.Background(), "REG-X", "success", "MOJO123")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if repo.lastStatus != domain.PaymentSuccess || repo.lastPaymentID != "MOJO123" {
		t.Fatalf("unexpected update status=%s payment_id=%s", repo.lastStatus, repo.lastPaymentID)
	}
	if reg.RegistrationID != "REG-X" {
		t.Fatalf("unexpected registration %+v", reg)
	}
}

func TestUpdateStatus_UnknownRegistrationID(t *testing.T) {
	repo := &mockRegRepo{updateErr: gorm.ErrRecordNotFound}
	svc := NewService(repo, &mockCreator{})

	_, err := svc.UpdateStatus(context.Background(), "REG-NOPE", "failed", "")
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestExportCSV(t *testing.T) {
	created := time.Date(2026, 2, 14, 9, 30, 0, 0, time.UTC)
	repo := &mockRegRepo{listed: []domain.Registration{{
		ID:              1,
		RegistrationID:  "REG-TEST-0001",
		Name:            "Asha Rao",
		Email:           "asha@example.org",
		Mobile:          "9876543210",
		AadhaarNumber:   "123456789012",
		CompetitionID:   7,
		CompetitionName: "Brewers Cup",
		Amount:          2000,
		PaymentStatus:   domain.PaymentSuccess,
		PaymentID:       "MOJO123",
		CreatedAt:       created,
		UpdatedAt:       created,
	}}}
	svc := NewService(repo, &mockCreator{})

	var buf bytes.Buffer
	n, err := svc.ExportCSV(context.Background(), repository.RegistrationFilter{}, &buf)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if n != 1 {
		t.Fatalf("expected 1 row, got %d", n)
	}

	rows, err := csv.NewReader(&buf).ReadAll()
	if err != nil {
		t.Fatalf("output is not valid csv: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("expected header plus one row, got %d", len(rows))
	}
	if rows[0][0] != "RegistrationID" || rows[0][13] != "PaymentStatus" {
		t.Fatalf("unexpected header %v", rows[0])
	}
	row := rows[1]
	if row[0] != "REG-TEST-0001" || row[9] != "Brewers Cup" || row[12] != "2000.00" || row[13] != "success" {
		t.Fatalf("unexpected row %v", row)
	}
	if row[15] != "2026-02-14 09:30:00" {
		t.Fatalf("unexpected created_at %q", row[15])
	}
}

func TestExportCSV_EmptyResult(t *testing.T) {
	svc := NewService(&mockRegRepo{}, &mockCreator{})

	var buf bytes.Buffer
	_, err := svc.ExportCSV(context.Background(), repository.RegistrationFilter{}, &buf)
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound for empty export, got %v", err)
	}
	if buf.Len() != 0 {
		t.Fatalf("nothing may be written for an empty export")
	}
}
