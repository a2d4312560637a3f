package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/AmrAnter44/sys-body-sub000/internal/models"
)

const paymentColumns = `id, receipt_number, subscription_id, service_type, subscription_number, kind, amount, previous_remaining, new_remaining, staff_name, created_at`

// PaymentRepository applies balance payments and reads receipts.
type PaymentRepository struct {
	db *sqlx.DB
}

// NewPaymentRepository constructs a PaymentRepository.
func NewPaymentRepository(db *sqlx.DB) *PaymentRepository {
	return &PaymentRepository{db: db}
}

// PaymentFilter narrows receipt listings.
type PaymentFilter struct {
	ServiceType    models.ServiceType
	SubscriptionID string
	From           *time.Time
	To             *time.Time
	Page           int
	PageSize       int
}

// ApplyBalancePayment lowers remaining_amount by payment.Amount only if the balance
// covers it, optionally debits loyalty points, and stores the receipt. Nothing is
// written when any step fails.
func (r *PaymentRepository) ApplyBalancePayment(ctx context.Context, subscriptionID string, payment *models.Payment, redemption *models.PointsRedemption) (sub *models.Subscription, err error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin payment transaction: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	query := `UPDATE subscriptions SET remaining_amount = remaining_amount - $2, updated_at = $3
		WHERE id = $1 AND remaining_amount >= $2 RETURNING ` + subscriptionColumns
	var updated models.Subscription
	if err = tx.GetContext(ctx, &updated, query, subscriptionID, payment.Amount, time.Now().UTC()); err != nil {
		if err != sql.ErrNoRows {
			return nil, fmt.Errorf("apply payment: %w", err)
		}
		var exists int
		if lookupErr := tx.GetContext(ctx, &exists, `SELECT 1 FROM subscriptions WHERE id = $1`, subscriptionID); lookupErr != nil {
			if lookupErr == sql.ErrNoRows {
				return nil, sql.ErrNoRows
			}
			return nil, fmt.Errorf("check subscription: %w", lookupErr)
		}
		err = ErrBalanceExceeded
		return nil, err
	}

	if redemption != nil {
		if err = redeemPoints(ctx, tx, *redemption); err != nil {
			return nil, err
		}
	}

	payment.SubscriptionID = updated.ID
	payment.ServiceType = updated.ServiceType
	payment.SubscriptionNumber = updated.Number
	payment.Kind = models.PaymentBalance
	payment.NewRemaining = updated.RemainingAmount
	payment.PreviousRemaining = updated.RemainingAmount.Add(payment.Amount)
	if err = insertPayment(ctx, tx, payment); err != nil {
		return nil, err
	}

	if err = tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit payment: %w", err)
	}
	return &updated, nil
}

// List returns receipts with their method parts, newest first.
func (r *PaymentRepository) List(ctx context.Context, filter PaymentFilter) ([]models.Payment, int, error) {
	base := "FROM payments WHERE service_type = $1"
	args := []interface{}{filter.ServiceType}
	if filter.SubscriptionID != "" {
		args = append(args, filter.SubscriptionID)
		base += fmt.Sprintf(" AND subscription_id = $%d", len(args))
	}
	if filter.From != nil {
		args = append(args, *filter.From)
		base += fmt.Sprintf(" AND created_at >= $%d", len(args))
	}
	if filter.To != nil {
		args = append(args, *filter.To)
		base += fmt.Sprintf(" AND created_at < $%d", len(args))
	}
	_, size, offset := normalizePage(filter.Page, filter.PageSize)

	query := fmt.Sprintf("SELECT %s %s ORDER BY receipt_number DESC LIMIT %d OFFSET %d", paymentColumns, base, size, offset)
	var payments []models.Payment
	if err := r.db.SelectContext(ctx, &payments, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list payments: %w", err)
	}
	var total int
	if err := r.db.GetContext(ctx, &total, "SELECT COUNT(*) "+base, args...); err != nil {
		return nil, 0, fmt.Errorf("count payments: %w", err)
	}
	if err := r.attachParts(ctx, payments); err != nil {
		return nil, 0, err
	}
	return payments, total, nil
}

func (r *PaymentRepository) attachParts(ctx context.Context, payments []models.Payment) error {
	if len(payments) == 0 {
		return nil
	}
	ids := make([]string, len(payments))
	index := make(map[string]int, len(payments))
	for i, p := range payments {
		ids[i] = p.ID
		index[p.ID] = i
	}
	var parts []models.PaymentPart
	const query = `SELECT payment_id, method, amount, points_used FROM payment_parts WHERE payment_id = ANY($1) ORDER BY method`
	if err := r.db.SelectContext(ctx, &parts, query, pq.Array(ids)); err != nil {
		return fmt.Errorf("list payment parts: %w", err)
	}
	for _, part := range parts {
		if i, ok := index[part.PaymentID]; ok {
			payments[i].Parts = append(payments[i].Parts, part)
		}
	}
	return nil
}

// insertPayment stores a receipt and its parts. The receipt number comes from
// receipt_number_seq.
func insertPayment(ctx context.Context, tx *sqlx.Tx, payment *models.Payment) error {
	if payment.ID == "" {
		payment.ID = uuid.NewString()
	}
	if payment.CreatedAt.IsZero() {
		payment.CreatedAt = time.Now().UTC()
	}
	const query = `INSERT INTO payments (id, subscription_id, service_type, subscription_number, kind, amount, previous_remaining, new_remaining, staff_name, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10) RETURNING receipt_number`
	if err := tx.GetContext(ctx, &payment.ReceiptNumber, query, payment.ID, payment.SubscriptionID, payment.ServiceType, payment.SubscriptionNumber,
		payment.Kind, payment.Amount, payment.PreviousRemaining, payment.NewRemaining, payment.StaffName, payment.CreatedAt); err != nil {
		return translatePQ(err, "insert payment")
	}

	const partQuery = `INSERT INTO payment_parts (payment_id, method, amount, points_used) VALUES ($1, $2, $3, $4)`
	for i := range payment.Parts {
		payment.Parts[i].PaymentID = payment.ID
		part := payment.Parts[i]
		if _, err := tx.ExecContext(ctx, partQuery, part.PaymentID, part.Method, part.Amount, part.PointsUsed); err != nil {
			return translatePQ(err, "insert payment part")
		}
	}
	return nil
}

// redeemPoints debits a member only when the balance covers it and writes the negative
// history entry.
func redeemPoints(ctx context.Context, tx *sqlx.Tx, redemption models.PointsRedemption) error {
	if redemption.Points <= 0 {
		return nil
	}
	const debitQuery = `UPDATE members SET points = points - $2, updated_at = $3 WHERE id = $1 AND points >= $2`
	now := time.Now().UTC()
	res, err := tx.ExecContext(ctx, debitQuery, redemption.MemberID, redemption.Points, now)
	if err != nil {
		return fmt.Errorf("debit points: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("debit points rows affected: %w", err)
	}
	if affected == 0 {
		return ErrInsufficientPoints
	}
	return insertPointsEntry(ctx, tx, models.PointsEntry{
		MemberID:    redemption.MemberID,
		Points:      -redemption.Points,
		Action:      models.PointsRedeemed,
		Description: redemption.Description,
		CreatedAt:   now,
	})
}
