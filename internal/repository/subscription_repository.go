package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/AmrAnter44/sys-body-sub000/internal/models"
)

const subscriptionColumns = `id, service_type, subscription_number, client_name, phone, provider_name, member_number, sessions_purchased, sessions_remaining, price_per_session, remaining_amount, start_date, expiry_date, code, created_at, updated_at`

// SubscriptionRepository manages persistence for subscriptions of every service type.
type SubscriptionRepository struct {
	db *sqlx.DB
}

// NewSubscriptionRepository constructs a SubscriptionRepository.
func NewSubscriptionRepository(db *sqlx.DB) *SubscriptionRepository {
	return &SubscriptionRepository{db: db}
}

// CreateSubscriptionParams bundles the side effects of a purchase.
type CreateSubscriptionParams struct {
	// AutoNumber assigns the next free non-negative number for the service type.
	AutoNumber bool
	Codes      CodeSource
	// Payment is the purchase receipt; nil when nothing was paid up front.
	Payment    *models.Payment
	Redemption *models.PointsRedemption
}

// List returns subscriptions matching filters along with total count.
func (r *SubscriptionRepository) List(ctx context.Context, filter models.SubscriptionFilter) ([]models.Subscription, int, error) {
	base := "FROM subscriptions WHERE service_type = $1"
	args := []interface{}{filter.ServiceType}
	var conditions []string

	if filter.Provider != "" {
		conditions = append(conditions, fmt.Sprintf("LOWER(provider_name) = LOWER($%d)", len(args)+1))
		args = append(args, filter.Provider)
	}
	if filter.Search != "" {
		search := "%" + strings.ToLower(filter.Search) + "%"
		conditions = append(conditions, fmt.Sprintf("(LOWER(client_name) LIKE $%d OR phone LIKE $%d OR CAST(subscription_number AS TEXT) = $%d)", len(args)+1, len(args)+1, len(args)+2))
		args = append(args, search, strings.TrimSpace(filter.Search))
	}
	if filter.Band != nil {
		switch *filter.Band {
		case models.BandZero:
			conditions = append(conditions, "sessions_remaining = 0")
		case models.BandLow:
			conditions = append(conditions, "sessions_remaining BETWEEN 1 AND 3")
		case models.BandNormal:
			conditions = append(conditions, "sessions_remaining > 3")
		}
	}
	if filter.Kind != nil {
		if *filter.Kind == models.KindDayUse {
			conditions = append(conditions, "subscription_number < 0")
		} else {
			conditions = append(conditions, "subscription_number >= 0")
		}
	}
	if filter.Status != nil {
		switch *filter.Status {
		case models.StatusExpired:
			conditions = append(conditions, fmt.Sprintf("expiry_date <= $%d", len(args)+1))
			args = append(args, filter.Today)
		case models.StatusExpiringSoon:
			conditions = append(conditions, fmt.Sprintf("expiry_date > $%d AND expiry_date <= $%d", len(args)+1, len(args)+2))
			args = append(args, filter.Today, filter.SoonUntil)
		case models.StatusActive:
			conditions = append(conditions, fmt.Sprintf("(expiry_date IS NULL OR expiry_date > $%d)", len(args)+1))
			args = append(args, filter.SoonUntil)
		}
	}

	if len(conditions) > 0 {
		base += " AND " + strings.Join(conditions, " AND ")
	}

	allowedSorts := map[string]string{
		"number":      "subscription_number",
		"client_name": "client_name",
		"expiry_date": "expiry_date",
		"remaining":   "sessions_remaining",
		"created_at":  "created_at",
	}
	column, ok := allowedSorts[filter.SortBy]
	if !ok {
		column = "created_at"
	}
	order := strings.ToUpper(filter.SortOrder)
	if order != "ASC" && order != "DESC" {
		order = "DESC"
	}
	_, size, offset := normalizePage(filter.Page, filter.PageSize)

	query := fmt.Sprintf("SELECT %s %s ORDER BY %s %s LIMIT %d OFFSET %d", subscriptionColumns, base, column, order, size, offset)
	var subs []models.Subscription
	if err := r.db.SelectContext(ctx, &subs, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list subscriptions: %w", err)
	}

	var total int
	if err := r.db.GetContext(ctx, &total, "SELECT COUNT(*) "+base, args...); err != nil {
		return nil, 0, fmt.Errorf("count subscriptions: %w", err)
	}
	return subs, total, nil
}

// FindByID fetches a subscription by id.
func (r *SubscriptionRepository) FindByID(ctx context.Context, id string) (*models.Subscription, error) {
	query := `SELECT ` + subscriptionColumns + ` FROM subscriptions WHERE id = $1`
	var sub models.Subscription
	if err := r.db.GetContext(ctx, &sub, query, id); err != nil {
		return nil, err
	}
	return &sub, nil
}

// FindByNumber fetches a numbered subscription. Day-Use numbers are not unique and
// must be addressed by id.
func (r *SubscriptionRepository) FindByNumber(ctx context.Context, serviceType models.ServiceType, number int) (*models.Subscription, error) {
	if number < 0 {
		return nil, sql.ErrNoRows
	}
	query := `SELECT ` + subscriptionColumns + ` FROM subscriptions WHERE service_type = $1 AND subscription_number = $2`
	var sub models.Subscription
	if err := r.db.GetContext(ctx, &sub, query, serviceType, number); err != nil {
		return nil, err
	}
	return &sub, nil
}

// Create inserts a subscription, reserves its card code and stores the purchase receipt
// in one transaction.
func (r *SubscriptionRepository) Create(ctx context.Context, sub *models.Subscription, params CreateSubscriptionParams) (err error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin subscription transaction: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	if params.AutoNumber {
		if _, err = tx.ExecContext(ctx, `SELECT pg_advisory_xact_lock(hashtext($1))`, "subscription_number:"+string(sub.ServiceType)); err != nil {
			return fmt.Errorf("lock subscription numbering: %w", err)
		}
		const nextQuery = `SELECT COALESCE(MAX(subscription_number), 0) + 1 FROM subscriptions WHERE service_type = $1 AND subscription_number >= 0`
		if err = tx.GetContext(ctx, &sub.Number, nextQuery, sub.ServiceType); err != nil {
			return fmt.Errorf("next subscription number: %w", err)
		}
	}

	if sub.ID == "" {
		sub.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	sub.CreatedAt = now
	sub.UpdatedAt = now

	sub.Code, err = mintCode(ctx, tx, params.Codes, models.AccessCode{
		Kind:           models.CodeKindSubscription,
		ServiceType:    sub.ServiceType,
		SubscriptionID: sub.ID,
		CreatedAt:      now,
	})
	if err != nil {
		return err
	}

	const insertQuery = `INSERT INTO subscriptions (` + subscriptionColumns + `)
		VALUES (:id, :service_type, :subscription_number, :client_name, :phone, :provider_name, :member_number, :sessions_purchased, :sessions_remaining, :price_per_session, :remaining_amount, :start_date, :expiry_date, :code, :created_at, :updated_at)`
	if _, err = tx.NamedExecContext(ctx, insertQuery, sub); err != nil {
		return translatePQ(err, "insert subscription")
	}

	if params.Redemption != nil {
		if err = redeemPoints(ctx, tx, *params.Redemption); err != nil {
			return err
		}
	}
	if params.Payment != nil {
		params.Payment.SubscriptionID = sub.ID
		params.Payment.ServiceType = sub.ServiceType
		params.Payment.SubscriptionNumber = sub.Number
		if err = insertPayment(ctx, tx, params.Payment); err != nil {
			return err
		}
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit subscription: %w", err)
	}
	return nil
}

// Update applies the non-nil patch fields and returns the stored row. Range violations
// surface as ErrConstraint.
func (r *SubscriptionRepository) Update(ctx context.Context, id string, patch models.SubscriptionPatch) (*models.Subscription, error) {
	var sets []string
	var args []interface{}
	add := func(column string, value interface{}) {
		args = append(args, value)
		sets = append(sets, fmt.Sprintf("%s = $%d", column, len(args)))
	}
	if patch.ClientName != nil {
		add("client_name", *patch.ClientName)
	}
	if patch.Phone != nil {
		add("phone", *patch.Phone)
	}
	if patch.ProviderName != nil {
		add("provider_name", *patch.ProviderName)
	}
	if patch.MemberNumber != nil {
		add("member_number", *patch.MemberNumber)
	}
	if patch.SessionsRemaining != nil {
		add("sessions_remaining", *patch.SessionsRemaining)
	}
	if patch.RemainingAmount != nil {
		add("remaining_amount", *patch.RemainingAmount)
	}
	if patch.StartDate != nil {
		add("start_date", *patch.StartDate)
	}
	if patch.ExpiryDate != nil {
		add("expiry_date", *patch.ExpiryDate)
	}
	add("updated_at", time.Now().UTC())
	args = append(args, id)

	query := fmt.Sprintf("UPDATE subscriptions SET %s WHERE id = $%d RETURNING %s", strings.Join(sets, ", "), len(args), subscriptionColumns)
	var sub models.Subscription
	if err := r.db.GetContext(ctx, &sub, query, args...); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, translatePQ(err, "update subscription")
	}
	return &sub, nil
}

// Delete removes a subscription. Attendance, codes and payments cascade.
func (r *SubscriptionRepository) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM subscriptions WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete subscription: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete subscription rows affected: %w", err)
	}
	if affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// Renew adds sessions and outstanding balance atomically and records the renewal receipt.
func (r *SubscriptionRepository) Renew(ctx context.Context, id string, renewal models.SubscriptionRenewal, payment *models.Payment, redemption *models.PointsRedemption) (sub *models.Subscription, err error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin renewal transaction: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	query := `UPDATE subscriptions SET
		sessions_purchased = sessions_purchased + $2,
		sessions_remaining = sessions_remaining + $2,
		price_per_session = $3,
		remaining_amount = remaining_amount + $4,
		provider_name = COALESCE($5, provider_name),
		start_date = COALESCE($6, start_date),
		expiry_date = COALESCE($7, expiry_date),
		updated_at = $8
		WHERE id = $1 RETURNING ` + subscriptionColumns
	var updated models.Subscription
	if err = tx.GetContext(ctx, &updated, query, id, renewal.AddSessions, renewal.PricePerSession, renewal.AddRemaining,
		renewal.ProviderName, renewal.StartDate, renewal.ExpiryDate, time.Now().UTC()); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, translatePQ(err, "renew subscription")
	}

	if redemption != nil {
		if err = redeemPoints(ctx, tx, *redemption); err != nil {
			return nil, err
		}
	}
	if payment != nil {
		payment.SubscriptionID = updated.ID
		payment.ServiceType = updated.ServiceType
		payment.SubscriptionNumber = updated.Number
		payment.NewRemaining = updated.RemainingAmount
		payment.PreviousRemaining = updated.RemainingAmount.Sub(renewal.AddRemaining)
		if err = insertPayment(ctx, tx, payment); err != nil {
			return nil, err
		}
	}

	if err = tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit renewal: %w", err)
	}
	return &updated, nil
}

// Summary aggregates counts and balances for a service type. today and soonUntil are
// the calendar bounds used for status classification.
func (r *SubscriptionRepository) Summary(ctx context.Context, serviceType models.ServiceType, today, soonUntil time.Time) (*models.SubscriptionSummary, error) {
	const query = `SELECT
		COUNT(*) AS total,
		COUNT(*) FILTER (WHERE expiry_date IS NULL OR expiry_date > $3) AS active,
		COUNT(*) FILTER (WHERE expiry_date > $2 AND expiry_date <= $3) AS expiring_soon,
		COUNT(*) FILTER (WHERE expiry_date <= $2) AS expired,
		COUNT(*) FILTER (WHERE sessions_remaining = 0) AS zero_sessions,
		COUNT(*) FILTER (WHERE sessions_remaining BETWEEN 1 AND 3) AS low_sessions,
		COUNT(*) FILTER (WHERE subscription_number < 0) AS day_use,
		COALESCE(SUM(sessions_remaining), 0) AS sessions_remaining,
		COALESCE(SUM(remaining_amount), 0) AS outstanding_balance,
		COALESCE(SUM(sessions_purchased * price_per_session - remaining_amount), 0) AS revenue
		FROM subscriptions WHERE service_type = $1`
	var summary models.SubscriptionSummary
	if err := r.db.GetContext(ctx, &summary, query, serviceType, today, soonUntil); err != nil {
		return nil, fmt.Errorf("summarise subscriptions: %w", err)
	}
	summary.ServiceType = serviceType
	return &summary, nil
}
