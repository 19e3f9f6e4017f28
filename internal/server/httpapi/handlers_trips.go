package httpapi

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/roamsync/roamsync/internal/common"
	"github.com/roamsync/roamsync/internal/server/models"
)

func (s *Server) listTrips(c echo.Context) error {
	trips := s.trips.List(c.Request().Context(), currentUserID(c))
	return c.JSON(http.StatusOK, echo.Map{"trips": trips})
}

func (s *Server) createTrip(c echo.Context) error {
	var trip models.Trip
	if err := c.Bind(&trip); err != nil {
		return c.JSON(http.StatusBadRequest, errorResponse{Error: "invalid request body"})
	}
	if trip.Title == "" {
		return c.JSON(http.StatusBadRequest, errorResponse{Error: "title is required"})
	}

	created := s.trips.Create(c.Request().Context(), currentUserID(c), trip)
	return c.JSON(http.StatusCreated, echo.Map{"trip": created})
}

func (s *Server) updateTrip(c echo.Context) error {
	var trip models.Trip
	if err := c.Bind(&trip); err != nil {
		return c.JSON(http.StatusBadRequest, errorResponse{Error: "invalid request body"})
	}

	updated, err := s.trips.Update(c.Request().Context(), currentUserID(c), c.Param("id"), trip)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return c.JSON(http.StatusNotFound, errorResponse{Error: "trip not found"})
		}
		return c.JSON(http.StatusInternalServerError, errorResponse{Error: "internal error"})
	}
	return c.JSON(http.StatusOK, echo.Map{"trip": updated})
}

func (s *Server) deleteTrip(c echo.Context) error {
	if err := s.trips.Delete(c.Request().Context(), currentUserID(c), c.Param("id")); err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return c.JSON(http.StatusNotFound, errorResponse{Error: "trip not found"})
		}
		return c.JSON(http.StatusInternalServerError, errorResponse{Error: "internal error"})
	}
	return c.JSON(http.StatusOK, messageResponse{Message: "Trip deleted"})
}
