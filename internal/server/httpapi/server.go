// Package httpapi exposes the backend over HTTP with echo. Status codes are
// part of the client contract: 401 strictly means "bearer token rejected",
// 403 covers refresh rotation rejections, and other 4xx are domain
// rejections the client will not retry.
package httpapi

import (
	"context"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/roamsync/roamsync/internal/logging"
	"github.com/roamsync/roamsync/internal/server/models"
	"github.com/roamsync/roamsync/internal/server/services"
)

// AuthService is the slice of the auth service the HTTP layer needs.
type AuthService interface {
	Register(ctx context.Context, email, password, username, name string) (*services.AuthResult, error)
	Login(ctx context.Context, email, password string) (*services.AuthResult, error)
	Refresh(ctx context.Context, refreshToken string) (*services.AuthResult, error)
	Logout(ctx context.Context, userID, refreshToken string) error
	Profile(ctx context.Context, userID string) (*models.PublicUser, error)
	AccessSecret() []byte
}

// TripService is the minimal trip surface the API exposes.
type TripService interface {
	List(ctx context.Context, userID string) []models.Trip
	Create(ctx context.Context, userID string, trip models.Trip) models.Trip
	Update(ctx context.Context, userID, tripID string, trip models.Trip) (models.Trip, error)
	Delete(ctx context.Context, userID, tripID string) error
}

type Server struct {
	echo  *echo.Echo
	log   logging.Logger
	auth  AuthService
	trips TripService
}

func NewServer(log logging.Logger, auth AuthService, trips TripService) *Server {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Use(middleware.Recover())

	s := &Server{echo: e, log: log, auth: auth, trips: trips}
	s.routes()
	return s
}

func (s *Server) routes() {
	s.echo.GET("/health", s.health)

	s.echo.POST("/auth/login", s.login)
	s.echo.POST("/auth/register", s.register)
	s.echo.POST("/auth/refresh", s.refresh)

	authed := s.echo.Group("", s.bearerAuth)
	authed.POST("/auth/logout", s.logout)
	authed.GET("/me", s.me)
	authed.GET("/trips", s.listTrips)
	authed.POST("/trips", s.createTrip)
	authed.PUT("/trips/:id", s.updateTrip)
	authed.DELETE("/trips/:id", s.deleteTrip)
}

// Handler returns the underlying http.Handler, mainly for tests.
func (s *Server) Handler() http.Handler { return s.echo }

// Start blocks serving on addr until Shutdown is called.
func (s *Server) Start(addr string) error {
	return s.echo.Start(addr)
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.echo.Shutdown(ctx)
}

func (s *Server) health(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]bool{"ok": true})
}
