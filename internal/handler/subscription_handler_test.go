package handler

import (
	"context"
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AmrAnter44/sys-body-sub000/internal/dto"
	"github.com/AmrAnter44/sys-body-sub000/internal/middleware"
	"github.com/AmrAnter44/sys-body-sub000/internal/models"
	"github.com/AmrAnter44/sys-body-sub000/internal/repository"
	"github.com/AmrAnter44/sys-body-sub000/internal/service"
	appErrors "github.com/AmrAnter44/sys-body-sub000/pkg/errors"
)

type ledgerMock struct {
	lastFilter  models.SubscriptionFilter
	lastCreate  service.CreateSubscriptionRequest
	lastType    models.ServiceType
	deletedRef  service.SubscriptionRef
	getResp     *models.Subscription
	createErr   error
	summaryResp *models.SubscriptionSummary
}

func (m *ledgerMock) List(ctx context.Context, filter models.SubscriptionFilter) ([]models.Subscription, *models.Pagination, error) {
	m.lastFilter = filter
	return []models.Subscription{}, &models.Pagination{Page: filter.Page, PageSize: filter.PageSize}, nil
}

func (m *ledgerMock) Get(ctx context.Context, serviceType models.ServiceType, ref service.SubscriptionRef) (*models.Subscription, error) {
	if m.getResp == nil {
		return nil, appErrors.Clone(appErrors.ErrSubscriptionNotFound, "subscription not found")
	}
	return m.getResp, nil
}

func (m *ledgerMock) Create(ctx context.Context, serviceType models.ServiceType, req service.CreateSubscriptionRequest) (*dto.SubscriptionCreated, error) {
	m.lastType, m.lastCreate = serviceType, req
	if m.createErr != nil {
		return nil, m.createErr
	}
	return &dto.SubscriptionCreated{Subscription: models.Subscription{Number: 1, ServiceType: serviceType}}, nil
}

func (m *ledgerMock) Update(ctx context.Context, serviceType models.ServiceType, req service.UpdateSubscriptionRequest) (*models.Subscription, error) {
	return &models.Subscription{}, nil
}

func (m *ledgerMock) Delete(ctx context.Context, serviceType models.ServiceType, ref service.SubscriptionRef) error {
	m.deletedRef = ref
	return nil
}

func (m *ledgerMock) Renew(ctx context.Context, serviceType models.ServiceType, req service.RenewSubscriptionRequest) (*dto.SubscriptionRenewed, error) {
	return &dto.SubscriptionRenewed{}, nil
}

func (m *ledgerMock) Summary(ctx context.Context, serviceType models.ServiceType) (*models.SubscriptionSummary, error) {
	return m.summaryResp, nil
}

type reconcilerMock struct {
	lastPay    service.PayRemainingRequest
	lastFilter repository.PaymentFilter
	payErr     error
}

func (m *reconcilerMock) PayRemaining(ctx context.Context, serviceType models.ServiceType, req service.PayRemainingRequest) (*dto.PaymentApplied, error) {
	m.lastPay = req
	if m.payErr != nil {
		return nil, m.payErr
	}
	return &dto.PaymentApplied{}, nil
}

func (m *reconcilerMock) ListReceipts(ctx context.Context, filter repository.PaymentFilter) ([]models.Payment, *models.Pagination, error) {
	m.lastFilter = filter
	return []models.Payment{}, &models.Pagination{}, nil
}

func withServiceType(c *gin.Context, st string) {
	c.Params = gin.Params{{Key: "serviceType", Value: st}}
}

func TestSubscriptionHandlerListFilters(t *testing.T) {
	ledger := &ledgerMock{}
	h := NewSubscriptionHandler(ledger, &reconcilerMock{})

	c, w := newContext(http.MethodGet, "/subscriptions/pt?band=low&kind=day_use&status=expiring_soon&search=%20mona%20&limit=50", "")
	withServiceType(c, "pt")
	h.List(c)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, models.ServicePT, ledger.lastFilter.ServiceType)
	assert.Equal(t, "mona", ledger.lastFilter.Search)
	assert.Equal(t, models.BandLow, *ledger.lastFilter.Band)
	assert.Equal(t, models.KindDayUse, *ledger.lastFilter.Kind)
	assert.Equal(t, models.StatusExpiringSoon, *ledger.lastFilter.Status)
	assert.Equal(t, 50, ledger.lastFilter.PageSize)

	c, w = newContext(http.MethodGet, "/subscriptions/pt?band=many", "")
	withServiceType(c, "pt")
	h.List(c)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestSubscriptionHandlerCreateStampsOperator(t *testing.T) {
	ledger := &ledgerMock{}
	h := NewSubscriptionHandler(ledger, &reconcilerMock{})

	c, w := newContext(http.MethodPost, "/subscriptions/physio", `{"client_name":"Mona","sessions_purchased":8,"price_per_session":"150","remaining_amount":"200","payment":{"method":"cash"}}`)
	withServiceType(c, "physio")
	c.Set(middleware.ContextOperatorKey, &models.JWTClaims{UserID: "op-1", Name: "Salma", Role: models.RoleReception})
	h.Create(c)

	require.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, models.ServicePhysiotherapy, ledger.lastType)
	assert.Equal(t, "Salma", ledger.lastCreate.Payment.StaffName)
	assert.True(t, decimal.RequireFromString("150").Equal(ledger.lastCreate.PricePerSession))
}

func TestSubscriptionHandlerCreateDisabledService(t *testing.T) {
	ledger := &ledgerMock{createErr: appErrors.Clone(appErrors.ErrServiceDisabled, "Nutrition is disabled")}
	h := NewSubscriptionHandler(ledger, &reconcilerMock{})

	c, w := newContext(http.MethodPost, "/subscriptions/nutrition", `{"client_name":"Mona","sessions_purchased":1}`)
	withServiceType(c, "nutrition")
	h.Create(c)

	assert.Equal(t, http.StatusForbidden, w.Code)
	code, _ := decodeError(t, w)
	assert.Equal(t, appErrors.ErrServiceDisabled.Code, code)
}

func TestSubscriptionHandlerDeleteNeedsReference(t *testing.T) {
	ledger := &ledgerMock{}
	h := NewSubscriptionHandler(ledger, &reconcilerMock{})

	c, w := newContext(http.MethodDelete, "/subscriptions/pt", "")
	withServiceType(c, "pt")
	h.Delete(c)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	c, _ = newContext(http.MethodDelete, "/subscriptions/pt?number=12", "")
	withServiceType(c, "pt")
	h.Delete(c)
	assert.Equal(t, http.StatusNoContent, c.Writer.Status())
	require.NotNil(t, ledger.deletedRef.Number)
	assert.Equal(t, 12, *ledger.deletedRef.Number)

	c, w = newContext(http.MethodDelete, "/subscriptions/pt?number=twelve", "")
	withServiceType(c, "pt")
	h.Delete(c)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestSubscriptionHandlerPayRemaining(t *testing.T) {
	payments := &reconcilerMock{}
	h := NewSubscriptionHandler(&ledgerMock{}, payments)

	c, w := newContext(http.MethodPost, "/subscriptions/pt/pay-remaining", `{"number":3,"amount":"300","methods":[{"method":"cash","amount":"200"},{"method":"visa","amount":"100"}]}`)
	withServiceType(c, "pt")
	c.Set(middleware.ContextOperatorKey, &models.JWTClaims{UserID: "op-9", Role: models.RoleReception})
	h.PayRemaining(c)

	require.Equal(t, http.StatusOK, w.Code)
	require.NotNil(t, payments.lastPay.Number)
	assert.Equal(t, 3, *payments.lastPay.Number)
	assert.Len(t, payments.lastPay.Methods, 2)
	assert.Equal(t, "op-9", payments.lastPay.StaffName)

	payments.payErr = appErrors.Clone(appErrors.ErrInvalidAmount, "payment exceeds remaining amount")
	c, w = newContext(http.MethodPost, "/subscriptions/pt/pay-remaining", `{"number":3,"amount":"9000","method":"cash"}`)
	withServiceType(c, "pt")
	h.PayRemaining(c)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestSubscriptionHandlerReceiptsBySubscription(t *testing.T) {
	payments := &reconcilerMock{}
	h := NewSubscriptionHandler(&ledgerMock{getResp: &models.Subscription{ID: "sub-1"}}, payments)

	c, w := newContext(http.MethodGet, "/subscriptions/pt/payments?number=5&from=2025-06-01", "")
	withServiceType(c, "pt")
	h.Receipts(c)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "sub-1", payments.lastFilter.SubscriptionID)
	require.NotNil(t, payments.lastFilter.From)
	assert.Nil(t, payments.lastFilter.To)

	missing := NewSubscriptionHandler(&ledgerMock{}, payments)
	c, w = newContext(http.MethodGet, "/subscriptions/pt/payments?number=99", "")
	withServiceType(c, "pt")
	missing.Receipts(c)
	assert.Equal(t, http.StatusNotFound, w.Code)
}
