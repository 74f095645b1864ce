package service

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/jolanboyev/ehson-backend/internal/models"
	"github.com/jolanboyev/ehson-backend/internal/notify"
	"github.com/jolanboyev/ehson-backend/internal/repository"
)

// Notifier hands confirmation notices off to the bot task.
type Notifier interface {
	Enqueue(n notify.Notice)
}

type PaymentService struct {
	log      *slog.Logger
	users    *repository.UserRepository
	payments *repository.PaymentRepository
	notifier Notifier
}

func NewPaymentService(log *slog.Logger, users *repository.UserRepository, payments *repository.PaymentRepository, notifier Notifier) *PaymentService {
	return &PaymentService{
		log:      log,
		users:    users,
		payments: payments,
		notifier: notifier,
	}
}

// CallbackInput carries the recognized Click callback form fields. Every
// field except UserID is optional on the wire.
type CallbackInput struct {
	UserID        string
	UserName      string
	UserFirstName string
	Amount        string
	ClickTransID  string
	PaymentID     string
	ErrorCode     string
}

// HandleCallback ingests one gateway callback: upserts the user, upserts the
// payment with the derived status, and on success enqueues a confirmation.
// The two writes are sequential and non-atomic; a crash in between leaves a
// user row without a payment row, which is harmless for this domain.
//
// The gateway request is not signature-verified. Click does define a
// sign_time/sign_string scheme; until merchant credentials are provisioned the
// endpoint trusts the caller, so it must not be exposed without the reverse
// proxy restricting it to gateway IPs.
func (s *PaymentService) HandleCallback(ctx context.Context, in CallbackInput) (*models.Payment, error) {
	if strings.TrimSpace(in.UserID) == "" {
		return nil, ErrMissingSubject
	}

	amount := float64(0)
	if in.Amount != "" {
		parsed, err := strconv.ParseFloat(in.Amount, 64)
		if err != nil {
			return nil, invalid("amount", "not a number")
		}
		if parsed < 0 {
			return nil, invalid("amount", "negative")
		}
		amount = parsed
	}

	paymentID := in.PaymentID
	if paymentID == "" {
		paymentID = uuid.NewString()
	}
	clickTransID := in.ClickTransID
	if clickTransID == "" {
		clickTransID = uuid.NewString()
	}

	status := models.PaymentFailed
	if in.ErrorCode == "0" {
		status = models.PaymentSuccess
	}

	now := time.Now()

	user := &models.User{
		UserID:    in.UserID,
		Username:  in.UserName,
		FirstName: in.UserFirstName,
		CreatedAt: now,
	}
	if err := s.users.Upsert(ctx, user); err != nil {
		return nil, fmt.Errorf("callback user upsert: %w", err)
	}

	payment := &models.Payment{
		PaymentID:    paymentID,
		UserID:       in.UserID,
		Amount:       amount,
		Status:       status,
		ClickTransID: clickTransID,
		CreatedAt:    now,
	}
	if err := s.payments.Upsert(ctx, payment); err != nil {
		return nil, fmt.Errorf("callback payment upsert: %w", err)
	}

	if status == models.PaymentSuccess {
		s.log.Info("payment accepted", "payment", paymentID, "user", in.UserID, "amount", amount)
		s.enqueueConfirmation(in.UserID, amount, status)
	} else {
		s.log.Info("payment declined", "payment", paymentID, "user", in.UserID, "error_code", in.ErrorCode)
	}

	return payment, nil
}

func (s *PaymentService) enqueueConfirmation(userID string, amount float64, status models.PaymentStatus) {
	chatID, err := strconv.ParseInt(userID, 10, 64)
	if err != nil {
		s.log.Warn("subject id is not a telegram chat id, skipping confirmation", "user", userID)
		return
	}
	s.notifier.Enqueue(notify.Notice{
		UserID: chatID,
		Amount: amount,
		Status: status,
	})
}

// History lists the caller's own payments for the bot history command.
func (s *PaymentService) History(ctx context.Context, userID string) ([]models.Payment, error) {
	payments, err := s.payments.ListByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("payment history: %w", err)
	}
	return payments, nil
}

// RecordTestPayment injects a synthetic successful payment for manual
// verification via the bot's /test_payment command.
func (s *PaymentService) RecordTestPayment(ctx context.Context, userID string, amount float64) (*models.Payment, error) {
	payment := &models.Payment{
		PaymentID:    uuid.NewString(),
		UserID:       userID,
		Amount:       amount,
		Status:       models.PaymentSuccess,
		ClickTransID: uuid.NewString(),
		CreatedAt:    time.Now(),
	}
	if err := s.payments.Upsert(ctx, payment); err != nil {
		return nil, fmt.Errorf("record test payment: %w", err)
	}
	s.enqueueConfirmation(userID, amount, models.PaymentSuccess)
	return payment, nil
}
