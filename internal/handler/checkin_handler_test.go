package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AmrAnter44/sys-body-sub000/internal/dto"
	"github.com/AmrAnter44/sys-body-sub000/internal/middleware"
	"github.com/AmrAnter44/sys-body-sub000/internal/models"
	"github.com/AmrAnter44/sys-body-sub000/internal/service"
	appErrors "github.com/AmrAnter44/sys-body-sub000/pkg/errors"
)

type checkInEngineMock struct {
	checkInResp  *dto.CheckInResult
	checkInErr   error
	lastRequest  dto.CheckInRequest
	lastOperator string
	previewType  models.ServiceType
	lastFilter   models.SessionAttendanceFilter
	deletedID    string
}

func (m *checkInEngineMock) CheckIn(ctx context.Context, req dto.CheckInRequest, operator string) (*dto.CheckInResult, error) {
	m.lastRequest, m.lastOperator = req, operator
	return m.checkInResp, m.checkInErr
}

func (m *checkInEngineMock) Preview(ctx context.Context, raw string, serviceType models.ServiceType) (*dto.CodePreview, error) {
	m.previewType = serviceType
	return &dto.CodePreview{Code: raw, CanCheckIn: true}, nil
}

func (m *checkInEngineMock) RegisterSession(ctx context.Context, serviceType models.ServiceType, req service.RegisterSessionRequest, operator string) (*dto.SessionRegistration, error) {
	m.lastOperator = operator
	return &dto.SessionRegistration{Code: "code"}, nil
}

func (m *checkInEngineMock) ListSessions(ctx context.Context, filter models.SessionAttendanceFilter) ([]models.SessionAttendance, *models.Pagination, error) {
	m.lastFilter = filter
	return []models.SessionAttendance{}, &models.Pagination{Page: filter.Page, PageSize: filter.PageSize}, nil
}

func (m *checkInEngineMock) DeleteSession(ctx context.Context, serviceType models.ServiceType, id string) error {
	m.deletedID = id
	return nil
}

type subscriptionGetterMock struct {
	sub *models.Subscription
	err error
	ref service.SubscriptionRef
}

func (m *subscriptionGetterMock) Get(ctx context.Context, serviceType models.ServiceType, ref service.SubscriptionRef) (*models.Subscription, error) {
	m.ref = ref
	return m.sub, m.err
}

func newContext(method, target, body string) (*gin.Context, *httptest.ResponseRecorder) {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	req, _ := http.NewRequest(method, target, bytes.NewBufferString(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	c.Request = req
	return c, w
}

func decodeError(t *testing.T, w *httptest.ResponseRecorder) (string, map[string]interface{}) {
	t.Helper()
	var payload struct {
		Error struct {
			Code string `json:"code"`
		} `json:"error"`
		Meta map[string]interface{} `json:"meta"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &payload))
	return payload.Error.Code, payload.Meta
}

func TestCheckInHandlerAnonymousScan(t *testing.T) {
	engine := &checkInEngineMock{checkInResp: &dto.CheckInResult{Kind: "client", Action: dto.ActionSessionConsumed}}
	h := NewCheckInHandler(engine, &subscriptionGetterMock{})

	c, w := newContext(http.MethodPost, "/check-in", `{"code":"ABCD"}`)
	h.CheckIn(c)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "ABCD", engine.lastRequest.Code)
	assert.Empty(t, engine.lastOperator)
}

func TestCheckInHandlerOperatorName(t *testing.T) {
	engine := &checkInEngineMock{checkInResp: &dto.CheckInResult{}}
	h := NewCheckInHandler(engine, &subscriptionGetterMock{})

	c, _ := newContext(http.MethodPost, "/check-in", `{"code":"100000007"}`)
	c.Set(middleware.ContextOperatorKey, &models.JWTClaims{UserID: "op-1", Name: "Front Desk", Role: models.RoleReception})
	h.CheckIn(c)

	assert.Equal(t, "Front Desk", engine.lastOperator)
}

func TestCheckInHandlerRejectionIsNotRetryable(t *testing.T) {
	engine := &checkInEngineMock{checkInErr: appErrors.Clone(appErrors.ErrNoSessionsRemaining, "no sessions remaining")}
	h := NewCheckInHandler(engine, &subscriptionGetterMock{})

	c, w := newContext(http.MethodPost, "/check-in", `{"code":"ABCD"}`)
	h.CheckIn(c)

	require.Equal(t, http.StatusConflict, w.Code)
	code, meta := decodeError(t, w)
	assert.Equal(t, appErrors.ErrNoSessionsRemaining.Code, code)
	assert.Equal(t, false, meta["retryable"])
}

func TestCheckInHandlerBadBody(t *testing.T) {
	h := NewCheckInHandler(&checkInEngineMock{}, &subscriptionGetterMock{})

	c, w := newContext(http.MethodPost, "/check-in", `{"code":`)
	h.CheckIn(c)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestCheckInHandlerPreview(t *testing.T) {
	engine := &checkInEngineMock{}
	h := NewCheckInHandler(engine, &subscriptionGetterMock{})

	c, w := newContext(http.MethodGet, "/check-in?code=12&service_type=group-classes", "")
	h.Preview(c)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, models.ServiceGroupClass, engine.previewType)

	c, w = newContext(http.MethodGet, "/check-in", "")
	h.Preview(c)
	code, _ := decodeError(t, w)
	assert.Equal(t, appErrors.ErrMalformedCode.Code, code)
}

func TestCheckInHandlerListSessionsResolvesNumber(t *testing.T) {
	engine := &checkInEngineMock{}
	subs := &subscriptionGetterMock{sub: &models.Subscription{ID: "sub-7"}}
	h := NewCheckInHandler(engine, subs)

	c, w := newContext(http.MethodGet, "/subscriptions/pt/sessions?number=7&from=2025-06-01&to=2025-06-30&page=2", "")
	c.Params = gin.Params{{Key: "serviceType", Value: "pt"}}
	h.ListSessions(c)

	require.Equal(t, http.StatusOK, w.Code)
	require.NotNil(t, subs.ref.Number)
	assert.Equal(t, 7, *subs.ref.Number)
	assert.Equal(t, "sub-7", engine.lastFilter.SubscriptionID)
	assert.Equal(t, 2, engine.lastFilter.Page)
	assert.Equal(t, 1, engine.lastFilter.To.Day())
}

func TestCheckInHandlerUnknownServiceType(t *testing.T) {
	h := NewCheckInHandler(&checkInEngineMock{}, &subscriptionGetterMock{})

	c, w := newContext(http.MethodPost, "/subscriptions/yoga/sessions", `{"number":1}`)
	c.Params = gin.Params{{Key: "serviceType", Value: "yoga"}}
	h.RegisterSession(c)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestCheckInHandlerDeleteSession(t *testing.T) {
	engine := &checkInEngineMock{}
	h := NewCheckInHandler(engine, &subscriptionGetterMock{})

	c, _ := newContext(http.MethodDelete, "/subscriptions/nutrition/sessions/att-1", "")
	c.Params = gin.Params{{Key: "serviceType", Value: "nutrition"}, {Key: "id", Value: "att-1"}}
	h.DeleteSession(c)

	assert.Equal(t, http.StatusNoContent, c.Writer.Status())
	assert.Equal(t, "att-1", engine.deletedID)
}
