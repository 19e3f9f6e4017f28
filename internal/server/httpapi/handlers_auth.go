package httpapi

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/roamsync/roamsync/internal/common"
	"github.com/roamsync/roamsync/internal/server/services"
)

func (s *Server) login(c echo.Context) error {
	var req loginRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, errorResponse{Error: "invalid request body"})
	}
	if req.Email == "" || req.Password == "" {
		return c.JSON(http.StatusBadRequest, errorResponse{Error: "email and password are required"})
	}

	res, err := s.auth.Login(c.Request().Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, common.ErrorUnauthorized) {
			return c.JSON(http.StatusUnauthorized, errorResponse{Error: "invalid credentials"})
		}
		s.log.Error(c.Request().Context(), "login failed", "err", err)
		return c.JSON(http.StatusInternalServerError, errorResponse{Error: "internal error"})
	}

	return c.JSON(http.StatusOK, toAuthResponse(res))
}

func (s *Server) register(c echo.Context) error {
	var req registerRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, errorResponse{Error: "invalid request body"})
	}

	res, err := s.auth.Register(c.Request().Context(), req.Email, req.Password, req.Username, req.Name)
	if err != nil {
		switch {
		case errors.Is(err, common.ErrorValidation):
			return c.JSON(http.StatusBadRequest, errorResponse{Error: err.Error()})
		case errors.Is(err, common.ErrorAlreadyExists):
			return c.JSON(http.StatusConflict, errorResponse{Error: err.Error()})
		}
		s.log.Error(c.Request().Context(), "register failed", "err", err)
		return c.JSON(http.StatusInternalServerError, errorResponse{Error: "internal error"})
	}

	return c.JSON(http.StatusCreated, toAuthResponse(res))
}

func (s *Server) refresh(c echo.Context) error {
	var req refreshRequest
	if err := c.Bind(&req); err != nil || req.RefreshToken == "" {
		return c.JSON(http.StatusBadRequest, errorResponse{Error: "refresh token is required"})
	}

	res, err := s.auth.Refresh(c.Request().Context(), req.RefreshToken)
	if err != nil {
		switch {
		case errors.Is(err, common.ErrInvalidRefreshToken),
			errors.Is(err, common.ErrRefreshExpired),
			errors.Is(err, common.ErrTokenMismatch):
			return c.JSON(http.StatusForbidden, errorResponse{Error: err.Error()})
		case errors.Is(err, common.ErrorNotFound):
			return c.JSON(http.StatusNotFound, errorResponse{Error: "user not found"})
		}
		s.log.Error(c.Request().Context(), "refresh failed", "err", err)
		return c.JSON(http.StatusInternalServerError, errorResponse{Error: "internal error"})
	}

	return c.JSON(http.StatusOK, toAuthResponse(res))
}

func (s *Server) logout(c echo.Context) error {
	var req logoutRequest
	_ = c.Bind(&req) // body is optional

	if err := s.auth.Logout(c.Request().Context(), currentUserID(c), req.RefreshToken); err != nil {
		s.log.Error(c.Request().Context(), "logout failed", "err", err)
		return c.JSON(http.StatusInternalServerError, errorResponse{Error: "internal error"})
	}
	return c.JSON(http.StatusOK, messageResponse{Message: "Logged out successfully"})
}

func (s *Server) me(c echo.Context) error {
	user, err := s.auth.Profile(c.Request().Context(), currentUserID(c))
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return c.JSON(http.StatusNotFound, errorResponse{Error: "user not found"})
		}
		return c.JSON(http.StatusInternalServerError, errorResponse{Error: "internal error"})
	}
	return c.JSON(http.StatusOK, echo.Map{"user": user})
}

func toAuthResponse(res *services.AuthResult) authResponse {
	return authResponse{
		AccessToken:  res.AccessToken,
		RefreshToken: res.RefreshToken,
		ExpiresIn:    res.ExpiresIn,
		User:         res.User,
	}
}
