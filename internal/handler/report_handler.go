package handler

import (
	"context"

	"github.com/gin-gonic/gin"

	"github.com/AmrAnter44/sys-body-sub000/internal/models"
	"github.com/AmrAnter44/sys-body-sub000/internal/service"
	"github.com/AmrAnter44/sys-body-sub000/pkg/response"
)

type reportExporter interface {
	StaffAttendance(ctx context.Context, req service.ReportRequest) (*service.ExportFile, error)
	Sessions(ctx context.Context, serviceType models.ServiceType, req service.ReportRequest) (*service.ExportFile, error)
}

// ReportHandler streams report downloads.
type ReportHandler struct {
	exports reportExporter
}

// NewReportHandler constructs handler.
func NewReportHandler(exports reportExporter) *ReportHandler {
	return &ReportHandler{exports: exports}
}

// StaffAttendance godoc
// @Summary Staff timesheet export
// @Tags Reports
// @Produce octet-stream
// @Param format query string false "csv, pdf or xlsx"
// @Param from query string false "First day (YYYY-MM-DD), defaults to the start of the month"
// @Param to query string false "Last day (YYYY-MM-DD), defaults to today"
// @Success 200 {file} file
// @Router /reports/staff-attendance [get]
func (h *ReportHandler) StaffAttendance(c *gin.Context) {
	var req service.ReportRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.Error(c, bindError(err, "report"))
		return
	}
	file, err := h.exports.StaffAttendance(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Attachment(c, file.Filename, file.ContentType, file.Data)
}

// Sessions godoc
// @Summary Session report export
// @Tags Reports
// @Produce octet-stream
// @Param serviceType path string true "Service type"
// @Param format query string false "csv, pdf or xlsx"
// @Param from query string false "First day (YYYY-MM-DD)"
// @Param to query string false "Last day (YYYY-MM-DD)"
// @Success 200 {file} file
// @Router /reports/sessions/{serviceType} [get]
func (h *ReportHandler) Sessions(c *gin.Context) {
	st, err := serviceTypeParam(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	var req service.ReportRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.Error(c, bindError(err, "report"))
		return
	}
	file, err := h.exports.Sessions(c.Request.Context(), st, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Attachment(c, file.Filename, file.ContentType, file.Data)
}
