package service

import (
	"context"
	"database/sql"
	"errors"
	"io"
	"log/slog"
	"path/filepath"
	"testing"

	"github.com/jolanboyev/ehson-backend/internal/database"
	"github.com/jolanboyev/ehson-backend/internal/models"
	"github.com/jolanboyev/ehson-backend/internal/notify"
	"github.com/jolanboyev/ehson-backend/internal/repository"
)

type captureNotifier struct {
	notices []notify.Notice
}

func (c *captureNotifier) Enqueue(n notify.Notice) {
	c.notices = append(c.notices, n)
}

func newTestDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := database.Open(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	if err := database.Migrate(context.Background(), db); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

func newPaymentService(t *testing.T) (*PaymentService, *repository.PaymentRepository, *repository.UserRepository, *captureNotifier) {
	t.Helper()
	db := newTestDB(t)
	users := repository.NewUserRepository(db)
	payments := repository.NewPaymentRepository(db)
	notifier := &captureNotifier{}
	log := slog.New(slog.NewJSONHandler(io.Discard, nil))
	return NewPaymentService(log, users, payments, notifier), payments, users, notifier
}

func TestHandleCallbackSuccess(t *testing.T) {
	svc, payments, users, notifier := newPaymentService(t)
	ctx := context.Background()

	payment, err := svc.HandleCallback(ctx, CallbackInput{
		UserID:       "42",
		Amount:       "10000",
		ErrorCode:    "0",
		ClickTransID: "c1",
		PaymentID:    "p1",
	})
	if err != nil {
		t.Fatalf("HandleCallback: %v", err)
	}
	if payment.Status != models.PaymentSuccess {
		t.Errorf("status = %s, want success", payment.Status)
	}

	stored, err := payments.FindByID(ctx, "p1")
	if err != nil {
		t.Fatalf("FindByID: %v", err)
	}
	if stored == nil {
		t.Fatal("payment p1 not persisted")
	}
	if stored.Status != models.PaymentSuccess || stored.Amount != 10000 || stored.ClickTransID != "c1" {
		t.Errorf("stored payment = %+v", stored)
	}

	user, err := users.FindByID(ctx, "42")
	if err != nil {
		t.Fatalf("FindByID user: %v", err)
	}
	if user == nil {
		t.Fatal("user 42 not persisted")
	}

	if len(notifier.notices) != 1 {
		t.Fatalf("notices = %d, want 1", len(notifier.notices))
	}
	if n := notifier.notices[0]; n.UserID != 42 || n.Amount != 10000 || n.Status != models.PaymentSuccess {
		t.Errorf("notice = %+v", n)
	}
}

func TestHandleCallbackFailedStatus(t *testing.T) {
	for _, errorCode := range []string{"1", "-1", ""} {
		t.Run("error_code_"+errorCode, func(t *testing.T) {
			svc, payments, _, notifier := newPaymentService(t)
			ctx := context.Background()

			payment, err := svc.HandleCallback(ctx, CallbackInput{
				UserID:    "42",
				Amount:    "10000",
				ErrorCode: errorCode,
				PaymentID: "p1",
			})
			if err != nil {
				t.Fatalf("HandleCallback: %v", err)
			}
			if payment.Status != models.PaymentFailed {
				t.Errorf("status = %s, want failed", payment.Status)
			}

			stored, err := payments.FindByID(ctx, "p1")
			if err != nil {
				t.Fatalf("FindByID: %v", err)
			}
			if stored.Status != models.PaymentFailed {
				t.Errorf("stored status = %s, want failed", stored.Status)
			}
			if len(notifier.notices) != 0 {
				t.Errorf("notices = %d, want 0", len(notifier.notices))
			}
		})
	}
}

func TestHandleCallbackMissingSubject(t *testing.T) {
	svc, payments, users, notifier := newPaymentService(t)
	ctx := context.Background()

	_, err := svc.HandleCallback(ctx, CallbackInput{
		UserID:    "  ",
		Amount:    "10000",
		ErrorCode: "0",
		PaymentID: "p1",
	})
	if !errors.Is(err, ErrMissingSubject) {
		t.Fatalf("err = %v, want ErrMissingSubject", err)
	}

	stored, err := payments.FindByID(ctx, "p1")
	if err != nil {
		t.Fatalf("FindByID: %v", err)
	}
	if stored != nil {
		t.Error("payment written despite missing subject")
	}
	user, err := users.FindByID(ctx, "42")
	if err != nil {
		t.Fatalf("FindByID user: %v", err)
	}
	if user != nil {
		t.Error("user written despite missing subject")
	}
	if len(notifier.notices) != 0 {
		t.Errorf("notices = %d, want 0", len(notifier.notices))
	}
}

func TestHandleCallbackReplayIsIdempotent(t *testing.T) {
	svc, payments, _, _ := newPaymentService(t)
	ctx := context.Background()

	in := CallbackInput{
		UserID:       "42",
		Amount:       "10000",
		ErrorCode:    "0",
		ClickTransID: "c1",
		PaymentID:    "p1",
	}
	if _, err := svc.HandleCallback(ctx, in); err != nil {
		t.Fatalf("first delivery: %v", err)
	}
	first, err := payments.FindByID(ctx, "p1")
	if err != nil {
		t.Fatalf("FindByID: %v", err)
	}

	for i := 0; i < 3; i++ {
		if _, err := svc.HandleCallback(ctx, in); err != nil {
			t.Fatalf("redelivery %d: %v", i, err)
		}
	}
	replayed, err := payments.FindByID(ctx, "p1")
	if err != nil {
		t.Fatalf("FindByID: %v", err)
	}
	if replayed.Status != first.Status || replayed.Amount != first.Amount || replayed.ClickTransID != first.ClickTransID {
		t.Errorf("replayed = %+v, first = %+v", replayed, first)
	}

	rows, err := payments.ListByUser(ctx, "42")
	if err != nil {
		t.Fatalf("ListByUser: %v", err)
	}
	if len(rows) != 1 {
		t.Errorf("payment rows = %d, want 1", len(rows))
	}
}

func TestHandleCallbackGeneratesPaymentID(t *testing.T) {
	svc, payments, _, _ := newPaymentService(t)
	ctx := context.Background()

	payment, err := svc.HandleCallback(ctx, CallbackInput{
		UserID:    "42",
		ErrorCode: "0",
	})
	if err != nil {
		t.Fatalf("HandleCallback: %v", err)
	}
	if payment.PaymentID == "" || payment.ClickTransID == "" {
		t.Errorf("identifiers not generated: %+v", payment)
	}
	if payment.Amount != 0 {
		t.Errorf("amount = %v, want 0 for absent field", payment.Amount)
	}

	// A redelivery without a payment id gets a fresh id and a duplicate row.
	if _, err := svc.HandleCallback(ctx, CallbackInput{UserID: "42", ErrorCode: "0"}); err != nil {
		t.Fatalf("redelivery: %v", err)
	}
	rows, err := payments.ListByUser(ctx, "42")
	if err != nil {
		t.Fatalf("ListByUser: %v", err)
	}
	if len(rows) != 2 {
		t.Errorf("payment rows = %d, want 2", len(rows))
	}
}

func TestHandleCallbackMalformedAmount(t *testing.T) {
	svc, payments, _, _ := newPaymentService(t)
	ctx := context.Background()

	_, err := svc.HandleCallback(ctx, CallbackInput{
		UserID:    "42",
		Amount:    "not-a-number",
		ErrorCode: "0",
		PaymentID: "p1",
	})
	var ve *ValidationError
	if !errors.As(err, &ve) {
		t.Fatalf("err = %v, want ValidationError", err)
	}
	stored, err := payments.FindByID(ctx, "p1")
	if err != nil {
		t.Fatalf("FindByID: %v", err)
	}
	if stored != nil {
		t.Error("payment written despite malformed amount")
	}
}

func TestRecordTestPayment(t *testing.T) {
	svc, payments, _, notifier := newPaymentService(t)
	ctx := context.Background()

	payment, err := svc.RecordTestPayment(ctx, "42", 15000)
	if err != nil {
		t.Fatalf("RecordTestPayment: %v", err)
	}
	if payment.Status != models.PaymentSuccess {
		t.Errorf("status = %s, want success", payment.Status)
	}
	rows, err := payments.ListByUser(ctx, "42")
	if err != nil {
		t.Fatalf("ListByUser: %v", err)
	}
	if len(rows) != 1 {
		t.Fatalf("payment rows = %d, want 1", len(rows))
	}
	if len(notifier.notices) != 1 {
		t.Errorf("notices = %d, want 1", len(notifier.notices))
	}
}
