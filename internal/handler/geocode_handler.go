package handler

import (
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"campuseats/internal/errors"
	"campuseats/internal/service"
)

// GeocodeHandler proxies address lookups near a campus.
type GeocodeHandler struct {
	geocodeService service.GeocodeService
}

// NewGeocodeHandler creates a new geocode handler.
func NewGeocodeHandler(geocodeService service.GeocodeService) *GeocodeHandler {
	return &GeocodeHandler{geocodeService: geocodeService}
}

// Search godoc
// @Summary Search addresses near a campus
// @Tags geocode
// @Produce json
// @Security BearerAuth
// @Param q query string true "Address query"
// @Param campus_id query string true "Campus ID"
// @Success 200 {array} service.GeocodeResult
// @Failure 400 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Router /geocode [get]
func (h *GeocodeHandler) Search(c echo.Context) error {
	query := strings.TrimSpace(c.QueryParam("q"))
	if query == "" {
		return echo.NewHTTPError(http.StatusBadRequest, errors.ErrorResponse{
			Error: "query is required",
			Code:  "INVALID_REQUEST",
		})
	}

	campusID, err := uuid.Parse(c.QueryParam("campus_id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, errors.ErrorResponse{
			Error: "invalid campus_id",
			Code:  "INVALID_UUID",
		})
	}

	results, err := h.geocodeService.Search(c.Request().Context(), query, campusID)
	if err != nil {
		httpErr := errors.MapErrorToHTTP(err)
		return echo.NewHTTPError(httpErr.StatusCode, httpErr.ToErrorResponse())
	}
	return c.JSON(http.StatusOK, results)
}
