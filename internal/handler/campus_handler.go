package handler

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"campuseats/internal/errors"
	"campuseats/internal/service"
)

// CampusHandler handles campus directory endpoints.
type CampusHandler struct {
	campusService service.CampusService
}

// NewCampusHandler creates a new campus handler.
func NewCampusHandler(campusService service.CampusService) *CampusHandler {
	return &CampusHandler{campusService: campusService}
}

// Search godoc
// @Summary Search campuses by name, city, or state
// @Tags campuses
// @Produce json
// @Param q query string false "Free-text query"
// @Success 200 {array} model.Campus
// @Failure 500 {object} errors.ErrorResponse
// @Router /campuses/search [get]
func (h *CampusHandler) Search(c echo.Context) error {
	results, err := h.campusService.Search(c.Request().Context(), c.QueryParam("q"))
	if err != nil {
		httpErr := errors.MapErrorToHTTP(err)
		return echo.NewHTTPError(httpErr.StatusCode, httpErr.ToErrorResponse())
	}
	return c.JSON(http.StatusOK, results)
}

// Get godoc
// @Summary Get a campus by id
// @Tags campuses
// @Produce json
// @Param id path string true "Campus ID"
// @Success 200 {object} model.Campus
// @Failure 400 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Router /campuses/{id} [get]
func (h *CampusHandler) Get(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, errors.ErrorResponse{
			Error: "invalid campus id",
			Code:  "INVALID_UUID",
		})
	}

	campus, err := h.campusService.Get(c.Request().Context(), id)
	if err != nil {
		httpErr := errors.MapErrorToHTTP(err)
		return echo.NewHTTPError(httpErr.StatusCode, httpErr.ToErrorResponse())
	}
	return c.JSON(http.StatusOK, campus)
}
