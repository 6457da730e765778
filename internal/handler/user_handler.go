package handler

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"campuseats/internal/errors"
	"campuseats/internal/service"
)

// UserHandler handles profile and preference endpoints.
type UserHandler struct {
	userService service.UserService
}

// NewUserHandler creates a new user handler.
func NewUserHandler(userService service.UserService) *UserHandler {
	return &UserHandler{userService: userService}
}

// UpdateProfileRequest represents a profile patch.
type UpdateProfileRequest struct {
	Name     *string `json:"name" validate:"omitempty,min=1,max=255"`
	CampusID *string `json:"campus_id" validate:"omitempty,uuid"`
}

// UpdatePreferencesRequest replaces the caller's taste profile.
type UpdatePreferencesRequest struct {
	CuisinePreferences  map[string]int `json:"cuisine_preferences" validate:"required"`
	DietaryRestrictions []string       `json:"dietary_restrictions"`
}

// Me godoc
// @Summary Get the current user
// @Tags users
// @Produce json
// @Security BearerAuth
// @Success 200 {object} model.User
// @Failure 401 {object} errors.ErrorResponse
// @Router /me [get]
func (h *UserHandler) Me(c echo.Context) error {
	user, err := CurrentUser(c)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, user)
}

// UpdateProfile godoc
// @Summary Update the current user's profile
// @Tags users
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body UpdateProfileRequest true "Profile fields"
// @Success 200 {object} model.User
// @Failure 400 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Router /me/profile [put]
func (h *UserHandler) UpdateProfile(c echo.Context) error {
	user, err := CurrentUser(c)
	if err != nil {
		return err
	}

	var req UpdateProfileRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, errors.ErrorResponse{
			Error: "invalid request body",
			Code:  "INVALID_REQUEST",
		})
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, errors.ErrorResponse{
			Error: err.Error(),
			Code:  "VALIDATION_ERROR",
		})
	}

	input := service.UpdateProfileInput{Name: req.Name}
	if req.CampusID != nil {
		campusID, err := uuid.Parse(*req.CampusID)
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, errors.ErrorResponse{
				Error: "invalid campus_id",
				Code:  "INVALID_UUID",
			})
		}
		input.CampusID = &campusID
	}

	updated, err := h.userService.UpdateProfile(c.Request().Context(), user, input)
	if err != nil {
		httpErr := errors.MapErrorToHTTP(err)
		return echo.NewHTTPError(httpErr.StatusCode, httpErr.ToErrorResponse())
	}
	return c.JSON(http.StatusOK, updated)
}

// UpdatePreferences godoc
// @Summary Replace the current user's cuisine and dietary preferences
// @Tags users
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body UpdatePreferencesRequest true "Preference data"
// @Success 200 {object} model.User
// @Failure 400 {object} errors.ErrorResponse
// @Router /me/preferences [put]
func (h *UserHandler) UpdatePreferences(c echo.Context) error {
	user, err := CurrentUser(c)
	if err != nil {
		return err
	}

	var req UpdatePreferencesRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, errors.ErrorResponse{
			Error: "invalid request body",
			Code:  "INVALID_REQUEST",
		})
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, errors.ErrorResponse{
			Error: err.Error(),
			Code:  "VALIDATION_ERROR",
		})
	}

	updated, err := h.userService.UpdatePreferences(c.Request().Context(), user, service.UpdatePreferencesInput{
		CuisinePreferences:  req.CuisinePreferences,
		DietaryRestrictions: req.DietaryRestrictions,
	})
	if err != nil {
		httpErr := errors.MapErrorToHTTP(err)
		return echo.NewHTTPError(httpErr.StatusCode, httpErr.ToErrorResponse())
	}
	return c.JSON(http.StatusOK, updated)
}
