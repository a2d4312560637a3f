package service

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/AmrAnter44/sys-body-sub000/internal/models"
	"github.com/AmrAnter44/sys-body-sub000/pkg/codes"
	appErrors "github.com/AmrAnter44/sys-body-sub000/pkg/errors"
	"github.com/AmrAnter44/sys-body-sub000/pkg/export"
)

const exportPageSize = 100

type shiftLister interface {
	List(ctx context.Context, filter models.StaffAttendanceFilter) ([]models.StaffAttendance, int, error)
}

type sessionLister interface {
	List(ctx context.Context, filter models.SessionAttendanceFilter) ([]models.SessionAttendance, int, error)
}

// ReportRequest selects the report window and file type. Dates are inclusive calendar
// days in the gym's time zone; an empty range covers the current month.
type ReportRequest struct {
	From   string `form:"from"`
	To     string `form:"to"`
	Format string `form:"format"`
}

// ExportFile is a rendered report ready to stream.
type ExportFile struct {
	Filename    string
	ContentType string
	Data        []byte
}

// ExportService renders staff timesheets and session reports.
type ExportService struct {
	shifts    shiftLister
	sessions  sessionLister
	gate      *ServiceGate
	renderers export.Renderers
	location  *time.Location
	now       func() time.Time
	logger    *zap.Logger
}

// NewExportService constructs an ExportService.
func NewExportService(shifts shiftLister, sessions sessionLister, gate *ServiceGate, renderers export.Renderers, location *time.Location, logger *zap.Logger) *ExportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if renderers == nil {
		renderers = export.DefaultRenderers()
	}
	if location == nil {
		location = time.UTC
	}
	return &ExportService{
		shifts:    shifts,
		sessions:  sessions,
		gate:      gate,
		renderers: renderers,
		location:  location,
		now:       time.Now,
		logger:    logger,
	}
}

// StaffAttendance renders every shift that started inside the window with per-shift
// durations and a total row.
func (s *ExportService) StaffAttendance(ctx context.Context, req ReportRequest) (*ExportFile, error) {
	format, from, to, err := s.parse(req)
	if err != nil {
		return nil, err
	}

	var rows []models.StaffAttendance
	for page := 1; ; page++ {
		batch, total, err := s.shifts.List(ctx, models.StaffAttendanceFilter{From: &from, To: &to, Page: page, PageSize: exportPageSize})
		if err != nil {
			return nil, internalError(err, "failed to load staff attendance")
		}
		rows = append(rows, batch...)
		if len(batch) == 0 || len(rows) >= total {
			break
		}
	}

	now := s.now().UTC()
	dataset := export.Dataset{
		Title:   fmt.Sprintf("Staff attendance %s to %s", from.Format(dateLayout), to.AddDate(0, 0, -1).Format(dateLayout)),
		Headers: []string{"Staff", "Code", "Check in", "Check out", "Minutes", "Auto closed"},
	}
	totalMinutes := 0
	for _, row := range rows {
		minutes := int(row.Duration(now).Minutes())
		totalMinutes += minutes
		checkOut := "present"
		if row.CheckOut != nil {
			checkOut = s.stamp(*row.CheckOut)
		}
		dataset.Rows = append(dataset.Rows, map[string]string{
			"Staff":       row.StaffName,
			"Code":        codes.StaffCode(row.StaffNumber),
			"Check in":    s.stamp(row.CheckIn),
			"Check out":   checkOut,
			"Minutes":     strconv.Itoa(minutes),
			"Auto closed": yesNo(row.AutoClosed),
		})
	}
	dataset.Totals = map[string]string{
		"Staff":   fmt.Sprintf("%d shifts", len(rows)),
		"Minutes": strconv.Itoa(totalMinutes),
	}
	return s.render(format, "staff_attendance", from, to, dataset)
}

// Sessions renders the attendance rows of one service type inside the window.
func (s *ExportService) Sessions(ctx context.Context, serviceType models.ServiceType, req ReportRequest) (*ExportFile, error) {
	if err := s.gate.Check(serviceType); err != nil {
		return nil, err
	}
	format, from, to, err := s.parse(req)
	if err != nil {
		return nil, err
	}

	var rows []models.SessionAttendance
	for page := 1; ; page++ {
		batch, total, err := s.sessions.List(ctx, models.SessionAttendanceFilter{ServiceType: serviceType, From: &from, To: &to, Page: page, PageSize: exportPageSize})
		if err != nil {
			return nil, internalError(err, "failed to load sessions")
		}
		rows = append(rows, batch...)
		if len(batch) == 0 || len(rows) >= total {
			break
		}
	}

	provider := serviceType.ProviderLabel()
	dataset := export.Dataset{
		Title:   fmt.Sprintf("%s sessions %s to %s", serviceType.DisplayName(), from.Format(dateLayout), to.AddDate(0, 0, -1).Format(dateLayout)),
		Headers: []string{"Date", "Subscription", "Client", provider, "Attended by", "Notes"},
	}
	perProvider := make(map[string]int)
	for _, row := range rows {
		perProvider[row.ProviderName]++
		number := strconv.Itoa(row.SubscriptionNumber)
		if row.SubscriptionNumber < 0 {
			number = "day use"
		}
		dataset.Rows = append(dataset.Rows, map[string]string{
			"Date":         s.stamp(row.SessionDate),
			"Subscription": number,
			"Client":       row.ClientName,
			provider:       row.ProviderName,
			"Attended by":  deref(row.AttendedBy),
			"Notes":        deref(row.Notes),
		})
	}
	dataset.Totals = map[string]string{
		"Date":         "Total",
		"Subscription": strconv.Itoa(len(rows)),
		provider:       fmt.Sprintf("%d providers", len(perProvider)),
	}
	return s.render(format, string(serviceType)+"_sessions", from, to, dataset)
}

func (s *ExportService) parse(req ReportRequest) (export.Format, time.Time, time.Time, error) {
	format, err := export.ParseFormat(req.Format)
	if err != nil {
		return "", time.Time{}, time.Time{}, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "format must be csv, pdf or xlsx")
	}
	now := s.now().In(s.location)
	from := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, s.location)
	to := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, s.location).AddDate(0, 0, 1)
	if req.From != "" {
		if from, err = time.ParseInLocation(dateLayout, req.From, s.location); err != nil {
			return "", time.Time{}, time.Time{}, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "from must use YYYY-MM-DD")
		}
	}
	if req.To != "" {
		day, err := time.ParseInLocation(dateLayout, req.To, s.location)
		if err != nil {
			return "", time.Time{}, time.Time{}, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "to must use YYYY-MM-DD")
		}
		to = day.AddDate(0, 0, 1)
	}
	if !to.After(from) {
		return "", time.Time{}, time.Time{}, appErrors.Clone(appErrors.ErrValidation, "to must not be before from")
	}
	return format, from, to, nil
}

func (s *ExportService) render(format export.Format, name string, from, to time.Time, dataset export.Dataset) (*ExportFile, error) {
	data, err := s.renderers.Render(format, dataset)
	if err != nil {
		return nil, internalError(err, "failed to render report")
	}
	filename := fmt.Sprintf("%s_%s_%s.%s", name, from.Format("20060102"), to.AddDate(0, 0, -1).Format("20060102"), format)
	s.logger.Info("report rendered", zap.String("report", name), zap.String("format", string(format)), zap.Int("rows", len(dataset.Rows)))
	return &ExportFile{Filename: strings.ToLower(filename), ContentType: format.ContentType(), Data: data}, nil
}

func (s *ExportService) stamp(t time.Time) string {
	return t.In(s.location).Format("2006-01-02 15:04")
}

func yesNo(v bool) string {
	if v {
		return "yes"
	}
	return "no"
}
