package handler

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/AmrAnter44/sys-body-sub000/internal/dto"
	"github.com/AmrAnter44/sys-body-sub000/internal/models"
	"github.com/AmrAnter44/sys-body-sub000/internal/service"
	appErrors "github.com/AmrAnter44/sys-body-sub000/pkg/errors"
	"github.com/AmrAnter44/sys-body-sub000/pkg/response"
)

type checkInEngine interface {
	CheckIn(ctx context.Context, req dto.CheckInRequest, operator string) (*dto.CheckInResult, error)
	Preview(ctx context.Context, raw string, serviceType models.ServiceType) (*dto.CodePreview, error)
	RegisterSession(ctx context.Context, serviceType models.ServiceType, req service.RegisterSessionRequest, operator string) (*dto.SessionRegistration, error)
	ListSessions(ctx context.Context, filter models.SessionAttendanceFilter) ([]models.SessionAttendance, *models.Pagination, error)
	DeleteSession(ctx context.Context, serviceType models.ServiceType, id string) error
}

type subscriptionGetter interface {
	Get(ctx context.Context, serviceType models.ServiceType, ref service.SubscriptionRef) (*models.Subscription, error)
}

// CheckInHandler exposes the scanner endpoints and session history.
type CheckInHandler struct {
	engine checkInEngine
	subs   subscriptionGetter
}

// NewCheckInHandler constructs a CheckInHandler.
func NewCheckInHandler(engine checkInEngine, subs subscriptionGetter) *CheckInHandler {
	return &CheckInHandler{engine: engine, subs: subs}
}

// CheckIn godoc
// @Summary Apply a scanned code
// @Description Staff badges toggle the shift; client codes consume one session. Callable without a token for self check-in.
// @Tags Check-In
// @Accept json
// @Produce json
// @Param payload body dto.CheckInRequest true "Scanned code"
// @Success 200 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /check-in [post]
func (h *CheckInHandler) CheckIn(c *gin.Context) {
	var req dto.CheckInRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, bindError(err, "check-in"))
		return
	}
	result, err := h.engine.CheckIn(c.Request.Context(), req, operatorName(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, result, nil)
}

// Preview godoc
// @Summary Validate a code without consuming it
// @Tags Check-In
// @Produce json
// @Param code query string true "Scanned or typed code"
// @Param service_type query string false "Service type for short numeric codes"
// @Success 200 {object} response.Envelope
// @Router /check-in [get]
func (h *CheckInHandler) Preview(c *gin.Context) {
	code := strings.TrimSpace(c.Query("code"))
	if code == "" {
		response.Error(c, appErrors.Clone(appErrors.ErrMalformedCode, "code is required"))
		return
	}
	var st models.ServiceType
	if raw := c.Query("service_type"); raw != "" {
		parsed, err := models.ParseServiceType(raw)
		if err != nil {
			response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "unknown service type"))
			return
		}
		st = parsed
	}
	preview, err := h.engine.Preview(c.Request.Context(), code, st)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, preview, nil)
}

// RegisterSession godoc
// @Summary Register a session by subscription number
// @Tags Sessions
// @Accept json
// @Produce json
// @Param serviceType path string true "Service type"
// @Param payload body service.RegisterSessionRequest true "Session payload"
// @Success 201 {object} response.Envelope
// @Router /subscriptions/{serviceType}/sessions [post]
func (h *CheckInHandler) RegisterSession(c *gin.Context) {
	st, err := serviceTypeParam(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	var req service.RegisterSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, bindError(err, "session"))
		return
	}
	registration, err := h.engine.RegisterSession(c.Request.Context(), st, req, operatorName(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, registration)
}

// ListSessions godoc
// @Summary Session history
// @Tags Sessions
// @Produce json
// @Param serviceType path string true "Service type"
// @Param number query int false "Subscription number"
// @Param id query string false "Subscription id"
// @Param provider query string false "Provider name"
// @Param from query string false "First day (YYYY-MM-DD)"
// @Param to query string false "Last day (YYYY-MM-DD)"
// @Param page query int false "Page number"
// @Param limit query int false "Page size"
// @Success 200 {object} response.Envelope
// @Router /subscriptions/{serviceType}/sessions [get]
func (h *CheckInHandler) ListSessions(c *gin.Context) {
	st, err := serviceTypeParam(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	filter := models.SessionAttendanceFilter{ServiceType: st, Provider: strings.TrimSpace(c.Query("provider"))}
	if c.Query("id") != "" || c.Query("number") != "" {
		ref, err := subscriptionRef(c)
		if err != nil {
			response.Error(c, err)
			return
		}
		sub, err := h.subs.Get(c.Request.Context(), st, ref)
		if err != nil {
			response.Error(c, err)
			return
		}
		filter.SubscriptionID = sub.ID
	}
	if filter.From, filter.To, err = dateRange(c); err != nil {
		response.Error(c, err)
		return
	}
	filter.Page, filter.PageSize = pageParams(c)

	rows, pagination, err := h.engine.ListSessions(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, rows, pagination)
}

// DeleteSession godoc
// @Summary Delete a session record
// @Description The consumed session is not restored.
// @Tags Sessions
// @Param serviceType path string true "Service type"
// @Param id path string true "Attendance id"
// @Success 204
// @Router /subscriptions/{serviceType}/sessions/{id} [delete]
func (h *CheckInHandler) DeleteSession(c *gin.Context) {
	st, err := serviceTypeParam(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	if err := h.engine.DeleteSession(c.Request.Context(), st, c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}
