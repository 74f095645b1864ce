package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jolanboyev/ehson-backend/internal/models"
)

type PaymentRepository struct {
	db *sql.DB
}

func NewPaymentRepository(db *sql.DB) *PaymentRepository {
	return &PaymentRepository{db: db}
}

// Upsert replaces the payment row keyed by payment id. Gateway redeliveries
// with the same id therefore rewrite the row identically.
func (r *PaymentRepository) Upsert(ctx context.Context, payment *models.Payment) error {
	const query = `
INSERT INTO payments (payment_id, user_id, amount, status, click_trans_id, created_at)
VALUES (?, ?, ?, ?, ?, ?)
ON CONFLICT(payment_id) DO UPDATE SET
    user_id = excluded.user_id,
    amount = excluded.amount,
    status = excluded.status,
    click_trans_id = excluded.click_trans_id,
    created_at = excluded.created_at`
	if _, err := r.db.ExecContext(ctx, query,
		payment.PaymentID, payment.UserID, payment.Amount, string(payment.Status),
		payment.ClickTransID, payment.CreatedAt); err != nil {
		return fmt.Errorf("upsert payment: %w", err)
	}
	return nil
}

func (r *PaymentRepository) FindByID(ctx context.Context, paymentID string) (*models.Payment, error) {
	const query = `
SELECT payment_id, user_id, amount, status, click_trans_id, created_at
FROM payments WHERE payment_id = ?`
	row := r.db.QueryRowContext(ctx, query, paymentID)
	var p models.Payment
	var status string
	if err := row.Scan(&p.PaymentID, &p.UserID, &p.Amount, &status, &p.ClickTransID, &p.CreatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("scan payment: %w", err)
	}
	p.Status = models.PaymentStatus(status)
	return &p, nil
}

func (r *PaymentRepository) ListByUser(ctx context.Context, userID string) ([]models.Payment, error) {
	const query = `
SELECT payment_id, user_id, amount, status, click_trans_id, created_at
FROM payments WHERE user_id = ? ORDER BY created_at`
	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("list payments: %w", err)
	}
	defer rows.Close()

	var payments []models.Payment
	for rows.Next() {
		var p models.Payment
		var status string
		if err := rows.Scan(&p.PaymentID, &p.UserID, &p.Amount, &status, &p.ClickTransID, &p.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan payment: %w", err)
		}
		p.Status = models.PaymentStatus(status)
		payments = append(payments, p)
	}
	return payments, rows.Err()
}
