package payment

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"math/rand"
	"strconv"
	"strings"
	"time"

	"gorm.io/gorm"

	"festreg/internal/config"
	"festreg/internal/domain"
	"festreg/internal/gateway/instamojo"
	"festreg/internal/notification"
	"festreg/internal/repository"
)

// Service orchestrates the registration-and-payment workflow: duplicate
// detection, idempotent session creation, asynchronous confirmation via
// redirect callback and webhook, and the pending/success/failed transitions.
type Service struct {
	competitions  competitionReader
	registrations registrationRepo
	gateway       gatewayClient
	uploader      documentUploader
	notifier      confirmationNotifier
	loggerf       func(format string, args ...interface{})

	backendBaseURL  string
	frontendBaseURL string
	documentPolicy  config.DocumentPolicy

	newRegID func() string
}

func NewService(
	competitions competitionReader,
	registrations registrationRepo,
	gateway gatewayClient,
	uploader documentUploader,
	notifier confirmationNotifier,
	cfg *config.Config,
	loggerf func(format string, args ...interface{}),
) *Service {
	if loggerf == nil {
		loggerf = func(string, ...interface{}) {}
	}
	return &Service{
		competitions:    competitions,
		registrations:   registrations,
		gateway:         gateway,
		uploader:        uploader,
		notifier:        notifier,
		loggerf:         loggerf,
		backendBaseURL:  strings.TrimRight(cfg.BackendBaseURL, "/"),
		frontendBaseURL: strings.TrimRight(cfg.FrontendBaseURL, "/"),
		documentPolicy:  cfg.DocumentPolicy,
		newRegID:        generateRegistrationID,
	}
}

// Submit runs the whole intake: validation, duplicate decision table, optional
// document upload, record creation in pending, and gateway session creation.
func (s *Service) Submit(ctx context.Context, in SubmitInput, doc *Document) (*SubmitResult, error) {
	result, compName, err := s.CreateRecord(ctx, in, doc)
	if err != nil {
		return nil, err
	}
	if result.RetryAllowed {
		return result, nil
	}

	paymentURL, err := s.initiateSession(ctx, result.Registration, compName, false)
	if err != nil {
		return nil, err
	}
	result.PaymentURL = paymentURL
	return result, nil
}

// CreateRecord is the intake without the gateway call: validation, duplicate
// decision table, optional document upload and persistence in pending. The
// plain create endpoint uses it directly; Submit chains a payment session on
// top. Returns the competition name for purpose construction.
func (s *Service) CreateRecord(ctx context.Context, in SubmitInput, doc *Document) (*SubmitResult, string, error) {
	comp, err := s.competitions.GetByID(ctx, in.CompetitionID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, "", fmt.Errorf("%w: competition %d", ErrNotFound, in.CompetitionID)
		}
		return nil, "", err
	}

	in = trimInput(in)
	if err := validateInput(in); err != nil {
		return nil, "", err
	}
	if !amountEqual(in.Amount, formatAmount(comp.Price)) {
		return nil, "", ErrAmountMismatch
	}

	aadhaar := stripSpaces(in.AadhaarNumber)

	existing, err := s.registrations.FindByContact(ctx, in.Email, in.Mobile, aadhaar)
	if err != nil {
		return nil, "", err
	}
	if existing != nil {
		if existing.PaymentStatus == domain.PaymentSuccess {
			return nil, "", fmt.Errorf("%w: email, mobile or id number already used", ErrConflict)
		}
		// An earlier attempt is still pending/failed; hand it back for a
		// retry instead of stacking duplicate pending rows.
		return &SubmitResult{Registration: existing, RetryAllowed: true}, comp.Name, nil
	}

	var passportNumber, passportURL string
	if comp.PassportRequired {
		if s.documentPolicy == config.DocumentRequired {
			if in.PassportNumber == "" {
				return nil, "", fmt.Errorf("%w: passport number is required for this competition", ErrValidation)
			}
			if doc == nil {
				return nil, "", fmt.Errorf("%w: passport file is required for this competition", ErrValidation)
			}
		}
		passportNumber = in.PassportNumber
		if doc != nil {
			url, err := s.uploader.Upload(ctx, doc.Buffer, doc.Filename, in.Name)
			if err != nil {
				// No partial record: the submission aborts before persistence.
				return nil, "", fmt.Errorf("%w: %v", ErrUploadFailed, err)
			}
			passportURL = url
		}
	}

	reg := &domain.Registration{
		Name:            in.Name,
		Email:           in.Email,
		Mobile:          in.Mobile,
		Address:         in.Address,
		State:           in.State,
		Pin:             in.Pin,
		AadhaarNumber:   aadhaar,
		WorkPlace:       in.WorkPlace,
		CompetitionID:   comp.ID,
		CompetitionName: comp.Name,
		PassportNumber:  passportNumber,
		PassportFileURL: passportURL,
		AcceptedTerms:   in.AcceptedTerms,
		Amount:          comp.Price,
		PaymentStatus:   domain.PaymentPending,
	}

	if err := s.registrations.Create(ctx, reg); err != nil {
		if repository.IsUniqueViolation(err) {
			return nil, "", fmt.Errorf("%w: email, mobile or id number already used", ErrConflict)
		}
		return nil, "", err
	}

	return &SubmitResult{Registration: reg}, comp.Name, nil
}

// Retry clears the stale gateway reference on a non-successful record and
// opens a fresh payment session from its already-persisted data.
func (s *Service) Retry(ctx context.Context, recordID int64) (*SubmitResult, error) {
	reg, err := s.registrations.GetByID(ctx, recordID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: registration %d", ErrNotFound, recordID)
		}
		return nil, err
	}
	if reg.PaymentStatus == domain.PaymentSuccess {
		return nil, fmt.Errorf("%w: payment already successful", ErrConflict)
	}

	comp, err := s.competitions.GetByID(ctx, reg.CompetitionID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: competition %d", ErrNotFound, reg.CompetitionID)
		}
		return nil, err
	}

	if err := s.registrations.ResetForRetry(ctx, recordID); err != nil {
		return nil, err
	}
	reg.PaymentStatus = domain.PaymentPending
	reg.PaymentID = ""

	paymentURL, err := s.initiateSession(ctx, reg, comp.Name, true)
	if err != nil {
		return nil, err
	}
	return &SubmitResult{Registration: reg, PaymentURL: paymentURL}, nil
}

func (s *Service) initiateSession(ctx context.Context, reg *domain.Registration, competitionName string, retry bool) (string, error) {
	purpose := "Competition Reg: " + competitionName
	if retry {
		purpose += " (Retry)"
	}
	redirectURL := fmt.Sprintf("%s/api/payment/callback?registration_id=%d", s.backendBaseURL, reg.ID)
	webhookURL := fmt.Sprintf("%s/api/payment/webhook?registration_id=%d", s.backendBaseURL, reg.ID)

	session, err := s.gateway.CreateSession(ctx, purpose, formatAmount(reg.Amount), instamojo.Buyer{
		Name:  reg.Name,
		Email: reg.Email,
		Phone: reg.Mobile,
	}, redirectURL, webhookURL)
	if err != nil {
		// A confirmed initiation failure must not leave the record in
		// pending: nothing can ever confirm a session that was never made.
		if serr := s.registrations.SetStatus(ctx, reg.ID, domain.PaymentFailed); serr != nil {
			s.loggerf("level=error msg=failed to mark registration failed after gateway error id=%d err=%v", reg.ID, serr)
		}
		reg.PaymentStatus = domain.PaymentFailed
		return "", fmt.Errorf("%w: %v", ErrPaymentInitiation, err)
	}

	if err := s.registrations.SetPaymentRef(ctx, reg.ID, session.ID); err != nil {
		return "", err
	}
	reg.PaymentID = session.ID
	return session.LongURL, nil
}

// Confirm handles the gateway's user-redirect callback. It never returns an
// error to the browser: every outcome resolves to a frontend redirect target.
func (s *Service) Confirm(ctx context.Context, recordID int64, params CallbackParams) string {
	reg, err := s.registrations.GetByID(ctx, recordID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			s.loggerf("level=error msg=callback for unknown registration id=%d", recordID)
			return s.frontendBaseURL + "/registration-error?message=RegistrationNotFound"
		}
		s.loggerf("level=error msg=callback load failed id=%d err=%v", recordID, err)
		return s.frontendBaseURL + "/registration-error?message=InternalError"
	}

	// Duplicate callback delivery: already confirmed, do not re-verify and do
	// not send a second confirmation.
	if reg.PaymentStatus == domain.PaymentSuccess {
		return s.successRedirect(reg.ID)
	}

	if params.PaymentID == "" {
		// The participant abandoned or the payment was declined before a
		// payment id existed.
		if err := s.registrations.SetStatus(ctx, reg.ID, domain.PaymentFailed); err != nil {
			s.loggerf("level=error msg=failed to mark registration failed id=%d err=%v", reg.ID, err)
		}
		return s.failureRedirect(reg.ID)
	}

	verified, err := s.gateway.VerifyPayment(ctx, params.PaymentID)
	if err != nil {
		// Verification trouble on our side must not discard a payment that
		// may have gone through; leave the record untouched.
		s.loggerf("level=error msg=payment verification unresolved id=%d payment_id=%s err=%v", reg.ID, params.PaymentID, err)
		return s.failureRedirect(reg.ID)
	}

	paid := verified.Status == instamojo.StatusPaid &&
		verified.PaymentRequestID != "" &&
		verified.PaymentRequestID == instamojo.ExtractID(reg.PaymentID)
	if !paid {
		s.loggerf("level=info msg=payment not confirmed id=%d status=%s request_id=%s", reg.ID, verified.Status, verified.PaymentRequestID)
		if err := s.registrations.SetStatus(ctx, reg.ID, domain.PaymentFailed); err != nil {
			s.loggerf("level=error msg=failed to mark registration failed id=%d err=%v", reg.ID, err)
		}
		return s.failureRedirect(reg.ID)
	}

	s.markSuccess(ctx, reg, params.PaymentID)
	return s.successRedirect(reg.ID)
}

// ConfirmWebhook applies a server-to-server confirmation. The caller has
// already authenticated the payload; nothing here trusts more than the status,
// amount and payment id fields.
func (s *Service) ConfirmWebhook(ctx context.Context, payload WebhookPayload) error {
	reg, err := s.registrations.GetByID(ctx, payload.RecordID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("%w: registration %d", ErrNotFound, payload.RecordID)
		}
		return err
	}

	if reg.PaymentStatus == domain.PaymentSuccess {
		s.loggerf("level=info msg=webhook for already-successful registration id=%d", reg.ID)
		return nil
	}

	if payload.Status != instamojo.StatusPaid {
		s.loggerf("level=info msg=webhook reports non-paid status id=%d status=%s", reg.ID, payload.Status)
		if err := s.registrations.SetStatus(ctx, reg.ID, domain.PaymentFailed); err != nil {
			return err
		}
		return nil
	}
	if !amountEqual(payload.Amount, formatAmount(reg.Amount)) {
		return fmt.Errorf("%w: webhook amount %q does not match stored amount %s", ErrAmountMismatch, payload.Amount, formatAmount(reg.Amount))
	}

	s.markSuccess(ctx, reg, payload.PaymentID)
	return nil
}

// markSuccess performs the one-shot transition to success, assigning the
// human-readable registration id and queueing the confirmation email only when
// this call actually flipped the status.
func (s *Service) markSuccess(ctx context.Context, reg *domain.Registration, paymentID string) {
	regID := reg.RegistrationID
	if regID == "" {
		regID = s.newRegID()
	}
	changed, err := s.registrations.MarkSuccessIdempotent(ctx, reg.ID, regID, paymentID)
	if err != nil {
		s.loggerf("level=error msg=failed to mark registration successful id=%d err=%v", reg.ID, err)
		return
	}
	if !changed {
		s.loggerf("level=info msg=idempotent confirmation, already successful id=%d", reg.ID)
		return
	}

	reg.PaymentStatus = domain.PaymentSuccess
	reg.RegistrationID = regID
	if paymentID != "" {
		reg.PaymentID = paymentID
	}

	if s.notifier != nil {
		s.notifier.Enqueue(notification.ReceiptData{
			RegistrationID:  regID,
			Name:            reg.Name,
			Email:           reg.Email,
			Mobile:          reg.Mobile,
			CompetitionName: reg.CompetitionName,
			Amount:          reg.Amount,
			PaymentID:       reg.PaymentID,
			Date:            time.Now(),
		})
	}
}

func (s *Service) successRedirect(id int64) string {
	return fmt.Sprintf("%s/registration-success?id=%d", s.frontendBaseURL, id)
}

func (s *Service) failureRedirect(id int64) string {
	return fmt.Sprintf("%s/registration-failure?id=%d", s.frontendBaseURL, id)
}

var requiredFields = []struct {
	name string
	get  func(SubmitInput) string
}{
	{"name", func(in SubmitInput) string { return in.Name }},
	{"email", func(in SubmitInput) string { return in.Email }},
	{"mobile", func(in SubmitInput) string { return in.Mobile }},
	{"address", func(in SubmitInput) string { return in.Address }},
	{"state", func(in SubmitInput) string { return in.State }},
	{"pin", func(in SubmitInput) string { return in.Pin }},
	{"aadhaarNumber", func(in SubmitInput) string { return in.AadhaarNumber }},
	{"amount", func(in SubmitInput) string { return in.Amount }},
}

func validateInput(in SubmitInput) error {
	for _, f := range requiredFields {
		if f.get(in) == "" {
			return fmt.Errorf("%w: missing required field %s", ErrValidation, f.name)
		}
	}
	if !in.AcceptedTerms {
		return fmt.Errorf("%w: terms must be accepted", ErrValidation)
	}
	return nil
}

func trimInput(in SubmitInput) SubmitInput {
	in.Name = strings.TrimSpace(in.Name)
	in.Email = strings.ToLower(strings.TrimSpace(in.Email))
	in.Mobile = strings.TrimSpace(in.Mobile)
	in.Address = strings.TrimSpace(in.Address)
	in.State = strings.TrimSpace(in.State)
	in.Pin = strings.TrimSpace(in.Pin)
	in.AadhaarNumber = strings.TrimSpace(in.AadhaarNumber)
	in.WorkPlace = strings.TrimSpace(in.WorkPlace)
	in.PassportNumber = strings.TrimSpace(in.PassportNumber)
	in.Amount = strings.TrimSpace(in.Amount)
	return in
}

func stripSpaces(s string) string {
	return strings.Join(strings.Fields(s), "")
}

func formatAmount(v float64) string {
	return strconv.FormatFloat(v, 'f', 2, 64)
}

func amountEqual(a, b string) bool {
	ar, ok := new(big.Rat).SetString(strings.TrimSpace(a))
	if !ok {
		return false
	}
	br, ok := new(big.Rat).SetString(strings.TrimSpace(b))
	if !ok {
		return false
	}
	return ar.Cmp(br) == 0
}

func generateRegistrationID() string {
	ts := strconv.FormatInt(time.Now().UnixMilli(), 36)
	random := strconv.FormatInt(rand.Int63n(36*36*36*36), 36)
	for len(random) < 4 {
		random = "0" + random
	}
	return strings.ToUpper("REG-" + ts + "-" + random)
}
