package http

import (
	"context"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	handlers "github.com/stashway/stashway-backend/internal/adapter/handler/http"
	"github.com/stashway/stashway-backend/internal/config"
	"github.com/stashway/stashway-backend/internal/middleware/auth"
	"github.com/stashway/stashway-backend/pkg/logger"
	"go.uber.org/zap"
)

// multipartOverhead is headroom above the screenshot limit for form boundaries and headers
const multipartOverhead = 64 << 10

// Handlers groups the HTTP handlers mounted by the server
type Handlers struct {
	Payment *handlers.PaymentHandler
	Admin   *handlers.AdminHandler
}

type Server struct {
	config   *config.Config
	logger   *zap.Logger
	echo     *echo.Echo
	handlers Handlers
	policy   auth.AdminPolicy
}

func NewServer(cfg *config.Config, logger *zap.Logger, h Handlers, policy auth.AdminPolicy) *Server {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = handlers.NewRequestValidator()

	s := &Server{
		config:   cfg,
		logger:   logger,
		echo:     e,
		handlers: h,
		policy:   policy,
	}
	s.setupMiddleware()
	s.setupRoutes()
	return s
}

func (s *Server) setupMiddleware() {
	logger.WithEchoLogger(s.echo, s.logger)

	s.echo.Use(middleware.Recover())
	s.echo.Use(middleware.RequestID())
	s.echo.Use(logger.NewEchoRequestLogger(s.logger))

	allowOrigins := []string{"*"}
	if s.config.Service.ClientURL != "" {
		allowOrigins = []string{s.config.Service.ClientURL}
	}
	s.echo.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: allowOrigins,
		AllowMethods: []string{echo.GET, echo.POST, echo.PUT, echo.DELETE},
		AllowHeaders: []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAuthorization},
	}))

	limit := s.config.MMG.MaxUploadBytes + multipartOverhead
	s.echo.Use(middleware.BodyLimit(fmt.Sprintf("%dK", limit>>10)))
}

// Handler exposes the router for tests
func (s *Server) Handler() http.Handler {
	return s.echo
}

func (s *Server) Start() error {
	addr := fmt.Sprintf("%s:%d", s.config.Server.HTTP.Host, s.config.Server.HTTP.Port)
	s.logger.Info("Starting HTTP server", zap.String("address", addr))

	return s.echo.Start(addr)
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.echo.Shutdown(ctx)
}

func (s *Server) setupRoutes() {
	s.echo.GET("/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{
			"status":  "healthy",
			"service": s.config.Service.Name,
		})
	})

	jwtConfig := auth.JWTConfig{
		Secret: s.config.JWT.Secret,
		Logger: s.logger,
	}

	v1 := s.echo.Group("/api/v1", auth.JWTMiddleware(jwtConfig))

	// Payer routes
	mmg := v1.Group("/mmg")
	mmg.POST("/requests", s.handlers.Payment.CreateRequest)
	mmg.GET("/requests", s.handlers.Payment.ListRequests)
	mmg.GET("/requests/:id", s.handlers.Payment.GetRequest)
	mmg.POST("/requests/:id/screenshot", s.handlers.Payment.UploadScreenshot)
	mmg.GET("/subscription", s.handlers.Payment.GetSubscription)
	mmg.GET("/notifications", s.handlers.Payment.ListNotifications)

	// Admin routes
	admin := v1.Group("/admin/mmg", auth.RequireAdmin(s.policy, s.logger))
	admin.GET("/requests", s.handlers.Admin.ListRequests)
	admin.GET("/requests/export", s.handlers.Admin.ExportRequests)
	admin.GET("/requests/:id", s.handlers.Admin.GetRequest)
	admin.POST("/requests/:id/screenshot", s.handlers.Admin.UploadScreenshot)
	admin.POST("/requests/:id/reconcile", s.handlers.Admin.Reconcile)
}
