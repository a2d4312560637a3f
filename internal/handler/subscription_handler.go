package handler

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/AmrAnter44/sys-body-sub000/internal/dto"
	"github.com/AmrAnter44/sys-body-sub000/internal/models"
	"github.com/AmrAnter44/sys-body-sub000/internal/repository"
	"github.com/AmrAnter44/sys-body-sub000/internal/service"
	appErrors "github.com/AmrAnter44/sys-body-sub000/pkg/errors"
	"github.com/AmrAnter44/sys-body-sub000/pkg/response"
)

type subscriptionLedger interface {
	List(ctx context.Context, filter models.SubscriptionFilter) ([]models.Subscription, *models.Pagination, error)
	Get(ctx context.Context, serviceType models.ServiceType, ref service.SubscriptionRef) (*models.Subscription, error)
	Create(ctx context.Context, serviceType models.ServiceType, req service.CreateSubscriptionRequest) (*dto.SubscriptionCreated, error)
	Update(ctx context.Context, serviceType models.ServiceType, req service.UpdateSubscriptionRequest) (*models.Subscription, error)
	Delete(ctx context.Context, serviceType models.ServiceType, ref service.SubscriptionRef) error
	Renew(ctx context.Context, serviceType models.ServiceType, req service.RenewSubscriptionRequest) (*dto.SubscriptionRenewed, error)
	Summary(ctx context.Context, serviceType models.ServiceType) (*models.SubscriptionSummary, error)
}

type paymentReconciler interface {
	PayRemaining(ctx context.Context, serviceType models.ServiceType, req service.PayRemainingRequest) (*dto.PaymentApplied, error)
	ListReceipts(ctx context.Context, filter repository.PaymentFilter) ([]models.Payment, *models.Pagination, error)
}

// SubscriptionHandler exposes the subscription ledger and its payments.
type SubscriptionHandler struct {
	ledger   subscriptionLedger
	payments paymentReconciler
}

// NewSubscriptionHandler constructs a SubscriptionHandler.
func NewSubscriptionHandler(ledger subscriptionLedger, payments paymentReconciler) *SubscriptionHandler {
	return &SubscriptionHandler{ledger: ledger, payments: payments}
}

// List godoc
// @Summary List subscriptions
// @Tags Subscriptions
// @Produce json
// @Param serviceType path string true "Service type (pt, nutrition, physiotherapy, group_class)"
// @Param search query string false "Client name, phone or number"
// @Param provider query string false "Coach / provider name"
// @Param band query string false "Remaining sessions band (zero, low, normal)"
// @Param kind query string false "regular or day_use"
// @Param status query string false "active, expiring_soon or expired"
// @Param sort query string false "Sort field"
// @Param order query string false "asc or desc"
// @Param page query int false "Page number"
// @Param limit query int false "Page size"
// @Success 200 {object} response.Envelope
// @Router /subscriptions/{serviceType} [get]
func (h *SubscriptionHandler) List(c *gin.Context) {
	st, err := serviceTypeParam(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	filter := models.SubscriptionFilter{
		ServiceType: st,
		Search:      strings.TrimSpace(c.Query("search")),
		Provider:    strings.TrimSpace(c.Query("provider")),
		SortBy:      c.Query("sort"),
		SortOrder:   c.Query("order"),
	}
	if raw := c.Query("band"); raw != "" {
		band := models.SessionBand(raw)
		if !band.Valid() {
			response.Error(c, appErrors.Clone(appErrors.ErrValidation, "band must be zero, low or normal"))
			return
		}
		filter.Band = &band
	}
	if raw := c.Query("kind"); raw != "" {
		kind := models.SubscriptionKind(raw)
		if !kind.Valid() {
			response.Error(c, appErrors.Clone(appErrors.ErrValidation, "kind must be regular or day_use"))
			return
		}
		filter.Kind = &kind
	}
	if raw := c.Query("status"); raw != "" {
		status := models.SubscriptionStatus(raw)
		if !status.Valid() {
			response.Error(c, appErrors.Clone(appErrors.ErrValidation, "status must be active, expiring_soon or expired"))
			return
		}
		filter.Status = &status
	}
	filter.Page, filter.PageSize = pageParams(c)

	subs, pagination, err := h.ledger.List(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, subs, pagination)
}

// Get godoc
// @Summary Get a subscription by number or id
// @Tags Subscriptions
// @Produce json
// @Param serviceType path string true "Service type"
// @Param number query int false "Subscription number"
// @Param id query string false "Subscription id (required for Day-Use)"
// @Success 200 {object} response.Envelope
// @Router /subscriptions/{serviceType}/lookup [get]
func (h *SubscriptionHandler) Get(c *gin.Context) {
	st, err := serviceTypeParam(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	ref, err := subscriptionRef(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	sub, err := h.ledger.Get(c.Request.Context(), st, ref)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, sub, nil)
}

// Create godoc
// @Summary Sell a subscription
// @Tags Subscriptions
// @Accept json
// @Produce json
// @Param serviceType path string true "Service type"
// @Param payload body service.CreateSubscriptionRequest true "Subscription payload"
// @Success 201 {object} response.Envelope
// @Router /subscriptions/{serviceType} [post]
func (h *SubscriptionHandler) Create(c *gin.Context) {
	st, err := serviceTypeParam(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	var req service.CreateSubscriptionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, bindError(err, "subscription"))
		return
	}
	if req.Payment.StaffName == "" {
		req.Payment.StaffName = operatorName(c)
	}
	created, err := h.ledger.Create(c.Request.Context(), st, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, created)
}

// Update godoc
// @Summary Correct a subscription
// @Tags Subscriptions
// @Accept json
// @Produce json
// @Param serviceType path string true "Service type"
// @Param payload body service.UpdateSubscriptionRequest true "Fields to change"
// @Success 200 {object} response.Envelope
// @Router /subscriptions/{serviceType} [put]
func (h *SubscriptionHandler) Update(c *gin.Context) {
	st, err := serviceTypeParam(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	var req service.UpdateSubscriptionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, bindError(err, "subscription"))
		return
	}
	sub, err := h.ledger.Update(c.Request.Context(), st, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, sub, nil)
}

// Delete godoc
// @Summary Delete a subscription with its history
// @Tags Subscriptions
// @Param serviceType path string true "Service type"
// @Param number query int false "Subscription number"
// @Param id query string false "Subscription id"
// @Success 204
// @Router /subscriptions/{serviceType} [delete]
func (h *SubscriptionHandler) Delete(c *gin.Context) {
	st, err := serviceTypeParam(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	ref, err := subscriptionRef(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	if err := h.ledger.Delete(c.Request.Context(), st, ref); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// Renew godoc
// @Summary Add sessions to a subscription
// @Tags Subscriptions
// @Accept json
// @Produce json
// @Param serviceType path string true "Service type"
// @Param payload body service.RenewSubscriptionRequest true "Renewal payload"
// @Success 200 {object} response.Envelope
// @Router /subscriptions/{serviceType}/renew [post]
func (h *SubscriptionHandler) Renew(c *gin.Context) {
	st, err := serviceTypeParam(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	var req service.RenewSubscriptionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, bindError(err, "renewal"))
		return
	}
	if req.Payment.StaffName == "" {
		req.Payment.StaffName = operatorName(c)
	}
	renewed, err := h.ledger.Renew(c.Request.Context(), st, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, renewed, nil)
}

// Summary godoc
// @Summary Subscription counts and outstanding balance
// @Tags Subscriptions
// @Produce json
// @Param serviceType path string true "Service type"
// @Success 200 {object} response.Envelope
// @Router /subscriptions/{serviceType}/summary [get]
func (h *SubscriptionHandler) Summary(c *gin.Context) {
	st, err := serviceTypeParam(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	summary, err := h.ledger.Summary(c.Request.Context(), st)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, summary, nil)
}

// PayRemaining godoc
// @Summary Pay against the outstanding balance
// @Tags Payments
// @Accept json
// @Produce json
// @Param serviceType path string true "Service type"
// @Param payload body service.PayRemainingRequest true "Payment payload"
// @Success 200 {object} response.Envelope
// @Router /subscriptions/{serviceType}/pay-remaining [post]
func (h *SubscriptionHandler) PayRemaining(c *gin.Context) {
	st, err := serviceTypeParam(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	var req service.PayRemainingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, bindError(err, "payment"))
		return
	}
	if req.StaffName == "" {
		req.StaffName = operatorName(c)
	}
	applied, err := h.payments.PayRemaining(c.Request.Context(), st, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, applied, nil)
}

// Receipts godoc
// @Summary List payment receipts
// @Tags Payments
// @Produce json
// @Param serviceType path string true "Service type"
// @Param number query int false "Only receipts of this subscription"
// @Param id query string false "Only receipts of this subscription id"
// @Param from query string false "First day (YYYY-MM-DD)"
// @Param to query string false "Last day (YYYY-MM-DD)"
// @Param page query int false "Page number"
// @Param limit query int false "Page size"
// @Success 200 {object} response.Envelope
// @Router /subscriptions/{serviceType}/payments [get]
func (h *SubscriptionHandler) Receipts(c *gin.Context) {
	st, err := serviceTypeParam(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	filter := repository.PaymentFilter{ServiceType: st}
	if c.Query("id") != "" || c.Query("number") != "" {
		ref, err := subscriptionRef(c)
		if err != nil {
			response.Error(c, err)
			return
		}
		sub, err := h.ledger.Get(c.Request.Context(), st, ref)
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

	receipts, pagination, err := h.payments.ListReceipts(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, receipts, pagination)
}
