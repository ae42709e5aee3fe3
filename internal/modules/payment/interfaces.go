package payment

import (
	"context"

	"festreg/internal/domain"
	"festreg/internal/gateway/instamojo"
	"festreg/internal/notification"
)

type competitionReader interface {
	GetByID(ctx context.Context, id int64) (*domain.Competition, error)
}

type registrationRepo interface {
	Create(ctx context.Context, reg *domain.Registration) error
	GetByID(ctx context.Context, id int64) (*domain.Registration, error)
	FindByContact(ctx context.Context, email, mobile, aadhaar string) (*domain.Registration, error)
	SetPaymentRef(ctx context.Context, id int64, paymentID string) error
	SetStatus(ctx context.Context, id int64, status domain.PaymentStatus) error
	ResetForRetry(ctx context.Context, id int64) error
	MarkSuccessIdempotent(ctx context.Context, id int64, regID, paymentID string) (bool, error)
}

type gatewayClient interface {
	CreateSession(ctx context.Context, purpose, amount string, buyer instamojo.Buyer, redirectURL, webhookURL string) (*instamojo.Session, error)
	VerifyPayment(ctx context.Context, paymentID string) (*instamojo.VerifiedPayment, error)
}

type documentUploader interface {
	Upload(ctx context.Context, buf []byte, filename, ownerFolder string) (string, error)
}

type confirmationNotifier interface {
	Enqueue(data notification.ReceiptData)
}
