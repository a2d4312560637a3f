package handler

import (
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	"github.com/AmrAnter44/sys-body-sub000/internal/middleware"
	"github.com/AmrAnter44/sys-body-sub000/internal/models"
	"github.com/AmrAnter44/sys-body-sub000/internal/service"
	"github.com/AmrAnter44/sys-body-sub000/pkg/logger"
	corsmiddleware "github.com/AmrAnter44/sys-body-sub000/pkg/middleware/cors"
	reqidmiddleware "github.com/AmrAnter44/sys-body-sub000/pkg/middleware/requestid"
)

// RouterConfig carries everything the HTTP surface is built from.
type RouterConfig struct {
	APIPrefix      string
	AllowedOrigins []string
	EnableDocs     bool
	Logger         *zap.Logger
	Auth           middleware.TokenValidator
	Metrics        *service.MetricsService

	Subscriptions *SubscriptionHandler
	CheckIn       *CheckInHandler
	Staff         *StaffHandler
	Members       *MemberHandler
	Reports       *ReportHandler
	Observability *MetricsHandler
}

// NewRouter registers every route on a fresh gin engine.
func NewRouter(cfg RouterConfig) *gin.Engine {
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(cfg.Logger))
	r.Use(corsmiddleware.New(cfg.AllowedOrigins))
	r.Use(middleware.Metrics(cfg.Metrics))

	r.GET("/health", cfg.Observability.Health)
	r.GET("/ready", cfg.Observability.Ready)
	r.GET("/metrics", cfg.Observability.Prometheus)
	if cfg.EnableDocs {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	api := r.Group(cfg.APIPrefix)

	// The kiosk scans without a token; desk scanners send one.
	api.POST("/check-in", middleware.OptionalJWT(cfg.Auth), cfg.CheckIn.CheckIn)

	secured := api.Group("", middleware.JWT(cfg.Auth))
	secured.GET("/check-in", cfg.CheckIn.Preview)

	admin := middleware.RequireRoles(models.RoleAdmin)
	desk := middleware.RequireRoles(models.RoleAdmin, models.RoleReception)

	subs := secured.Group("/subscriptions/:serviceType")
	subs.GET("", cfg.Subscriptions.List)
	subs.GET("/lookup", cfg.Subscriptions.Get)
	subs.GET("/summary", cfg.Subscriptions.Summary)
	subs.POST("", desk, cfg.Subscriptions.Create)
	subs.PUT("", desk, cfg.Subscriptions.Update)
	subs.DELETE("", admin, cfg.Subscriptions.Delete)
	subs.POST("/renew", desk, cfg.Subscriptions.Renew)
	subs.POST("/pay-remaining", desk, cfg.Subscriptions.PayRemaining)
	subs.GET("/payments", desk, cfg.Subscriptions.Receipts)
	subs.GET("/sessions", cfg.CheckIn.ListSessions)
	subs.POST("/sessions", cfg.CheckIn.RegisterSession)
	subs.DELETE("/sessions/:id", desk, cfg.CheckIn.DeleteSession)

	staff := secured.Group("/staff", admin)
	staff.GET("", cfg.Staff.List)
	staff.POST("", cfg.Staff.Create)
	staff.GET("/attendance", cfg.Staff.Attendance)
	staff.DELETE("/attendance/:id", cfg.Staff.DeleteAttendance)
	staff.GET("/:id", cfg.Staff.Get)
	staff.PUT("/:id", cfg.Staff.Update)
	staff.DELETE("/:id", cfg.Staff.Deactivate)

	members := secured.Group("/members", desk)
	members.POST("", cfg.Members.Create)
	members.GET("/:number/points", cfg.Members.Points)
	members.POST("/:number/points", cfg.Members.Award)

	reports := secured.Group("/reports", admin)
	reports.GET("/staff-attendance", cfg.Reports.StaffAttendance)
	reports.GET("/sessions/:serviceType", cfg.Reports.Sessions)

	return r
}
