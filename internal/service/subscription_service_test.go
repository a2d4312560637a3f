package service

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AmrAnter44/sys-body-sub000/internal/models"
	"github.com/AmrAnter44/sys-body-sub000/pkg/config"
	appErrors "github.com/AmrAnter44/sys-body-sub000/pkg/errors"
)

func ptPurchase() CreateSubscriptionRequest {
	return CreateSubscriptionRequest{
		ClientName:        "Mona Adel",
		Phone:             "01000000000",
		ProviderName:      "Coach Omar",
		SessionsPurchased: 10,
		PricePerSession:   money("120"),
		RemainingAmount:   money("200"),
		StartDate:         "2025-06-01",
		ExpiryDate:        "2025-07-01",
	}
}

func TestSubscriptionServiceCreateAssignsNumberCodeAndReceipt(t *testing.T) {
	w := newTestWorld()

	created, err := w.subs.Create(context.Background(), models.ServicePT, ptPurchase())
	require.NoError(t, err)

	sub := created.Subscription
	assert.Equal(t, 1, sub.Number)
	assert.Equal(t, 10, sub.SessionsRemaining)
	assert.Len(t, sub.Code, 32)
	assert.Equal(t, models.StatusActive, sub.Status)
	assert.Equal(t, models.BandNormal, sub.Band)
	assert.True(t, sub.PaidAmount.Equal(money("1000")))
	assert.Equal(t, "coach", sub.ProviderLabel)
	assert.Equal(t, strings.ReplaceAll(created.DisplayCode, "-", ""), sub.Code)
	assert.True(t, strings.HasPrefix(created.CodeImage, "data:image/png;base64,"))

	require.NotNil(t, created.Receipt)
	assert.Equal(t, int64(1000), created.Receipt.ReceiptNumber)
	assert.Equal(t, models.PaymentPurchase, created.Receipt.Kind)
	assert.True(t, created.Receipt.PreviousRemaining.Equal(money("1200")))
	assert.True(t, created.Receipt.NewRemaining.Equal(money("200")))
	require.Len(t, created.Receipt.Parts, 1)
	assert.Equal(t, models.MethodCash, created.Receipt.Parts[0].Method)

	second, err := w.subs.Create(context.Background(), models.ServicePT, ptPurchase())
	require.NoError(t, err)
	assert.Equal(t, 2, second.Subscription.Number)
	assert.NotEqual(t, sub.Code, second.Subscription.Code)
}

func TestSubscriptionServiceCreateDayUse(t *testing.T) {
	w := newTestWorld()
	req := CreateSubscriptionRequest{
		ClientName:        "Walk In",
		DayUse:            true,
		SessionsPurchased: 5,
		PricePerSession:   money("150"),
		ExpiryDate:        "2025-06-11",
	}

	first, err := w.subs.Create(context.Background(), models.ServiceGroupClass, req)
	require.NoError(t, err)
	second, err := w.subs.Create(context.Background(), models.ServiceGroupClass, req)
	require.NoError(t, err)

	for _, created := range []models.Subscription{first.Subscription, second.Subscription} {
		assert.Equal(t, models.DayUseNumber, created.Number)
		assert.Equal(t, 1, created.SessionsPurchased)
		assert.Equal(t, 1, created.SessionsRemaining)
		assert.Nil(t, created.ExpiryDate)
		assert.Equal(t, models.KindDayUse, created.Kind)
		assert.Equal(t, "instructor", created.ProviderLabel)
	}
	assert.NotEqual(t, first.Subscription.ID, second.Subscription.ID)

	_, err = w.subs.Get(context.Background(), models.ServiceGroupClass, SubscriptionRef{Number: intPtr(-1)})
	assertErrorCode(t, err, appErrors.ErrValidation)

	got, err := w.subs.Get(context.Background(), models.ServiceGroupClass, SubscriptionRef{ID: first.Subscription.ID})
	require.NoError(t, err)
	assert.Equal(t, first.Subscription.ID, got.ID)

	_, err = w.subs.Renew(context.Background(), models.ServiceGroupClass, RenewSubscriptionRequest{SubscriptionRef: SubscriptionRef{ID: first.Subscription.ID}, Sessions: 4})
	assertErrorCode(t, err, appErrors.ErrValidation)
}

func TestSubscriptionServiceCreateRejections(t *testing.T) {
	w := newTestWorld(withServices(config.ServicesConfig{PhysiotherapyEnabled: true}))
	ctx := context.Background()

	_, err := w.subs.Create(ctx, models.ServiceNutrition, ptPurchase())
	assertErrorCode(t, err, appErrors.ErrServiceDisabled)

	_, err = w.subs.Create(ctx, models.ServiceType("yoga"), ptPurchase())
	assertErrorCode(t, err, appErrors.ErrValidation)

	overdrawn := ptPurchase()
	overdrawn.RemainingAmount = money("1500")
	_, err = w.subs.Create(ctx, models.ServicePT, overdrawn)
	assertErrorCode(t, err, appErrors.ErrInvalidAmount)

	negative := ptPurchase()
	negative.PricePerSession = money("-1")
	_, err = w.subs.Create(ctx, models.ServicePT, negative)
	assertErrorCode(t, err, appErrors.ErrInvalidAmount)

	backwards := ptPurchase()
	backwards.ExpiryDate = "2025-05-01"
	_, err = w.subs.Create(ctx, models.ServicePT, backwards)
	assertErrorCode(t, err, appErrors.ErrValidation)

	numbered := ptPurchase()
	numbered.SubscriptionNumber = intPtr(7)
	_, err = w.subs.Create(ctx, models.ServicePhysiotherapy, numbered)
	require.NoError(t, err)
	_, err = w.subs.Create(ctx, models.ServicePhysiotherapy, numbered)
	assertErrorCode(t, err, appErrors.ErrDuplicateNumber)

	_, err = w.subs.Create(ctx, models.ServicePT, numbered)
	require.NoError(t, err, "numbers are unique per service type only")
}

func TestSubscriptionServiceStatusClassification(t *testing.T) {
	w := newTestWorld()
	ctx := context.Background()
	expiries := map[string]models.SubscriptionStatus{
		"2025-06-14": models.StatusExpiringSoon,
		"2025-06-09": models.StatusExpired,
		"2025-07-01": models.StatusActive,
		"2025-06-10": models.StatusExpired,
	}
	for expiry, want := range expiries {
		req := ptPurchase()
		req.StartDate = "2025-01-01"
		req.ExpiryDate = expiry
		created, err := w.subs.Create(ctx, models.ServicePT, req)
		require.NoError(t, err)
		assert.Equal(t, want, created.Subscription.Status, expiry)
	}

	list, page, err := w.subs.List(ctx, models.SubscriptionFilter{ServiceType: models.ServicePT})
	require.NoError(t, err)
	assert.Len(t, list, 4)
	assert.Equal(t, 4, page.TotalCount)
	for _, sub := range list {
		assert.NotEmpty(t, sub.Status)
	}

	bad := models.SubscriptionStatus("dormant")
	_, _, err = w.subs.List(ctx, models.SubscriptionFilter{ServiceType: models.ServicePT, Status: &bad})
	assertErrorCode(t, err, appErrors.ErrValidation)
}

func TestSubscriptionServiceUpdateCorrections(t *testing.T) {
	w := newTestWorld()
	ctx := context.Background()
	created, err := w.subs.Create(ctx, models.ServicePT, ptPurchase())
	require.NoError(t, err)
	ref := SubscriptionRef{Number: intPtr(created.Subscription.Number)}

	_, err = w.subs.Update(ctx, models.ServicePT, UpdateSubscriptionRequest{SubscriptionRef: ref, SessionsRemaining: intPtr(11)})
	assertErrorCode(t, err, appErrors.ErrValidation)

	updated, err := w.subs.Update(ctx, models.ServicePT, UpdateSubscriptionRequest{SubscriptionRef: ref, SessionsRemaining: intPtr(2)})
	require.NoError(t, err)
	assert.Equal(t, 2, updated.SessionsRemaining)
	assert.Equal(t, models.BandLow, updated.Band)

	raised, err := w.subs.Update(ctx, models.ServicePT, UpdateSubscriptionRequest{SubscriptionRef: ref, SessionsRemaining: intPtr(9)})
	require.NoError(t, err)
	assert.Equal(t, 9, raised.SessionsRemaining)

	tooMuch := money("5000")
	_, err = w.subs.Update(ctx, models.ServicePT, UpdateSubscriptionRequest{SubscriptionRef: ref, RemainingAmount: &tooMuch})
	assertErrorCode(t, err, appErrors.ErrInvalidAmount)

	_, err = w.subs.Update(ctx, models.ServicePT, UpdateSubscriptionRequest{SubscriptionRef: SubscriptionRef{Number: intPtr(99)}, SessionsRemaining: intPtr(1)})
	assertErrorCode(t, err, appErrors.ErrSubscriptionNotFound)
}

func TestSubscriptionServiceRenew(t *testing.T) {
	w := newTestWorld()
	ctx := context.Background()
	created, err := w.subs.Create(ctx, models.ServicePT, ptPurchase())
	require.NoError(t, err)

	price := money("100")
	renewed, err := w.subs.Renew(ctx, models.ServicePT, RenewSubscriptionRequest{
		SubscriptionRef: SubscriptionRef{Number: intPtr(created.Subscription.Number)},
		Sessions:        8,
		PricePerSession: &price,
		RemainingAmount: money("300"),
		ExpiryDate:      "2025-09-01",
		Payment:         PaymentInput{Method: "visa", StaffName: "Reception"},
	})
	require.NoError(t, err)

	assert.Equal(t, 18, renewed.Subscription.SessionsPurchased)
	assert.Equal(t, 18, renewed.Subscription.SessionsRemaining)
	assert.True(t, renewed.Subscription.RemainingAmount.Equal(money("500")))
	assert.Equal(t, models.PaymentRenewal, renewed.Receipt.Kind)
	assert.True(t, renewed.Receipt.Amount.Equal(money("500")))
	assert.True(t, renewed.Receipt.PreviousRemaining.Equal(money("200")))
	assert.Equal(t, models.MethodVisa, renewed.Receipt.Parts[0].Method)
	assert.Equal(t, int64(1001), renewed.Receipt.ReceiptNumber)

	_, err = w.subs.Renew(ctx, models.ServicePT, RenewSubscriptionRequest{
		SubscriptionRef: SubscriptionRef{Number: intPtr(created.Subscription.Number)},
		Sessions:        2,
		RemainingAmount: money("1000"),
	})
	assertErrorCode(t, err, appErrors.ErrInvalidAmount)
}

func TestSubscriptionServiceDurationMonthsDefaultsExpiry(t *testing.T) {
	w := newTestWorld()
	ctx := context.Background()

	req := ptPurchase()
	req.StartDate, req.ExpiryDate, req.DurationMonths = "2025-01-31", "", 1
	created, err := w.subs.Create(ctx, models.ServicePT, req)
	require.NoError(t, err)
	require.NotNil(t, created.Subscription.ExpiryDate)
	assert.Equal(t, "2025-03-03", created.Subscription.ExpiryDate.Format("2006-01-02"))

	req = ptPurchase()
	req.StartDate, req.ExpiryDate, req.DurationMonths = "", "", 3
	fromToday, err := w.subs.Create(ctx, models.ServicePT, req)
	require.NoError(t, err)
	require.NotNil(t, fromToday.Subscription.StartDate)
	assert.Equal(t, "2025-06-10", fromToday.Subscription.StartDate.Format("2006-01-02"))
	assert.Equal(t, "2025-09-10", fromToday.Subscription.ExpiryDate.Format("2006-01-02"))

	req = ptPurchase()
	req.DurationMonths = 6
	explicit, err := w.subs.Create(ctx, models.ServicePT, req)
	require.NoError(t, err)
	assert.Equal(t, "2025-07-01", explicit.Subscription.ExpiryDate.Format("2006-01-02"))

	renewed, err := w.subs.Renew(ctx, models.ServicePT, RenewSubscriptionRequest{
		SubscriptionRef: SubscriptionRef{Number: intPtr(explicit.Subscription.Number)},
		Sessions:        4,
		RemainingAmount: money("200"),
		DurationMonths:  2,
		Payment:         PaymentInput{Method: "cash", StaffName: "Reception"},
	})
	require.NoError(t, err)
	assert.Equal(t, "2025-06-10", renewed.Subscription.StartDate.Format("2006-01-02"))
	assert.Equal(t, "2025-08-10", renewed.Subscription.ExpiryDate.Format("2006-01-02"))
}

func TestSubscriptionServiceDeleteCascades(t *testing.T) {
	w := newTestWorld()
	ctx := context.Background()
	created, err := w.subs.Create(ctx, models.ServicePT, ptPurchase())
	require.NoError(t, err)
	ref := SubscriptionRef{Number: intPtr(created.Subscription.Number)}
	_, err = w.checkIn.RegisterSession(ctx, models.ServicePT, RegisterSessionRequest{SubscriptionRef: ref}, "Coach Omar")
	require.NoError(t, err)

	require.NoError(t, w.subs.Delete(ctx, models.ServicePT, ref))
	assert.Zero(t, w.ledger.attendanceFor(created.Subscription.ID))

	_, err = w.checkIn.CheckIn(ctx, checkInRequest(created.Subscription.Code), "")
	assertErrorCode(t, err, appErrors.ErrCodeNotFound)

	err = w.subs.Delete(ctx, models.ServicePT, ref)
	assertErrorCode(t, err, appErrors.ErrSubscriptionNotFound)
}

func TestSubscriptionServiceSummaryCachedUntilWrite(t *testing.T) {
	w := newTestWorld()
	ctx := context.Background()
	_, err := w.subs.Create(ctx, models.ServicePT, ptPurchase())
	require.NoError(t, err)

	first, err := w.subs.Summary(ctx, models.ServicePT)
	require.NoError(t, err)
	assert.Equal(t, 1, first.Total)
	_, err = w.subs.Summary(ctx, models.ServicePT)
	require.NoError(t, err)
	assert.Equal(t, 1, w.ledger.summaryCalls)

	_, err = w.subs.Create(ctx, models.ServicePT, ptPurchase())
	require.NoError(t, err)
	again, err := w.subs.Summary(ctx, models.ServicePT)
	require.NoError(t, err)
	assert.Equal(t, 2, again.Total)
	assert.Equal(t, 2, w.ledger.summaryCalls)
}

func TestStatusRulesBoundsUseLocation(t *testing.T) {
	cairo := time.FixedZone("EET", 3*60*60)
	rules := StatusRules{Location: cairo, Now: func() time.Time { return time.Date(2025, 6, 9, 22, 30, 0, 0, time.UTC) }}
	today, soon := rules.bounds()
	assert.Equal(t, time.Date(2025, 6, 10, 0, 0, 0, 0, time.UTC), today)
	assert.Equal(t, time.Date(2025, 6, 17, 0, 0, 0, 0, time.UTC), soon)
}
