package handler

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/AmrAnter44/sys-body-sub000/internal/dto"
	"github.com/AmrAnter44/sys-body-sub000/internal/models"
	"github.com/AmrAnter44/sys-body-sub000/internal/service"
	"github.com/AmrAnter44/sys-body-sub000/pkg/response"
)

type staffRegistry interface {
	List(ctx context.Context, filter models.StaffFilter) ([]models.Staff, *models.Pagination, error)
	Get(ctx context.Context, id string) (*models.Staff, error)
	Create(ctx context.Context, req service.CreateStaffRequest) (*models.Staff, error)
	Update(ctx context.Context, id string, req service.UpdateStaffRequest) (*models.Staff, error)
	Deactivate(ctx context.Context, id string) error
	ListAttendance(ctx context.Context, filter models.StaffAttendanceFilter) ([]dto.StaffShift, *models.Pagination, error)
	DeleteAttendance(ctx context.Context, id string) error
}

// StaffHandler wires the staff registry and shift history to HTTP routes.
type StaffHandler struct {
	staff staffRegistry
}

// NewStaffHandler constructs a StaffHandler.
func NewStaffHandler(staff staffRegistry) *StaffHandler {
	return &StaffHandler{staff: staff}
}

// List godoc
// @Summary List staff
// @Tags Staff
// @Produce json
// @Param search query string false "Name or phone"
// @Param position query string false "Position"
// @Param active query bool false "Filter by active flag"
// @Param page query int false "Page number"
// @Param limit query int false "Page size"
// @Success 200 {object} response.Envelope
// @Router /staff [get]
func (h *StaffHandler) List(c *gin.Context) {
	filter := models.StaffFilter{
		Search:   strings.TrimSpace(c.Query("search")),
		Position: strings.TrimSpace(c.Query("position")),
		Active:   boolQuery(c, "active"),
	}
	filter.Page, filter.PageSize = pageParams(c)

	staff, pagination, err := h.staff.List(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, staff, pagination)
}

// Get godoc
// @Summary Get a staff member
// @Tags Staff
// @Produce json
// @Param id path string true "Staff ID"
// @Success 200 {object} response.Envelope
// @Router /staff/{id} [get]
func (h *StaffHandler) Get(c *gin.Context) {
	member, err := h.staff.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, member, nil)
}

// Create godoc
// @Summary Add a staff member
// @Tags Staff
// @Accept json
// @Produce json
// @Param payload body service.CreateStaffRequest true "Staff payload"
// @Success 201 {object} response.Envelope
// @Router /staff [post]
func (h *StaffHandler) Create(c *gin.Context) {
	var req service.CreateStaffRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, bindError(err, "staff"))
		return
	}
	member, err := h.staff.Create(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, member)
}

// Update godoc
// @Summary Update a staff member
// @Tags Staff
// @Accept json
// @Produce json
// @Param id path string true "Staff ID"
// @Param payload body service.UpdateStaffRequest true "Staff payload"
// @Success 200 {object} response.Envelope
// @Router /staff/{id} [put]
func (h *StaffHandler) Update(c *gin.Context) {
	var req service.UpdateStaffRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, bindError(err, "staff"))
		return
	}
	member, err := h.staff.Update(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, member, nil)
}

// Deactivate godoc
// @Summary Deactivate a staff member
// @Tags Staff
// @Param id path string true "Staff ID"
// @Success 204
// @Router /staff/{id} [delete]
func (h *StaffHandler) Deactivate(c *gin.Context) {
	if err := h.staff.Deactivate(c.Request.Context(), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// Attendance godoc
// @Summary Staff shift history
// @Tags Staff
// @Produce json
// @Param staff_id query string false "Staff ID"
// @Param from query string false "First day (YYYY-MM-DD)"
// @Param to query string false "Last day (YYYY-MM-DD)"
// @Param open query bool false "Only open shifts"
// @Param page query int false "Page number"
// @Param limit query int false "Page size"
// @Success 200 {object} response.Envelope
// @Router /staff/attendance [get]
func (h *StaffHandler) Attendance(c *gin.Context) {
	filter := models.StaffAttendanceFilter{StaffID: strings.TrimSpace(c.Query("staff_id"))}
	if open := boolQuery(c, "open"); open != nil {
		filter.OpenOnly = *open
	}
	var err error
	if filter.From, filter.To, err = dateRange(c); err != nil {
		response.Error(c, err)
		return
	}
	filter.Page, filter.PageSize = pageParams(c)

	shifts, pagination, err := h.staff.ListAttendance(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, shifts, pagination)
}

// DeleteAttendance godoc
// @Summary Delete a shift record
// @Tags Staff
// @Param id path string true "Shift ID"
// @Success 204
// @Router /staff/attendance/{id} [delete]
func (h *StaffHandler) DeleteAttendance(c *gin.Context) {
	if err := h.staff.DeleteAttendance(c.Request.Context(), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}
