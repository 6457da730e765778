package handler

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"campuseats/internal/errors"
	"campuseats/internal/service"
)

// ReviewHandler handles review endpoints.
type ReviewHandler struct {
	reviewService service.ReviewService
}

// NewReviewHandler creates a new review handler.
func NewReviewHandler(reviewService service.ReviewService) *ReviewHandler {
	return &ReviewHandler{reviewService: reviewService}
}

// UpsertReviewRequest represents a review submission.
type UpsertReviewRequest struct {
	Rating  int    `json:"rating" validate:"required,min=1,max=5"`
	Comment string `json:"comment" validate:"omitempty,max=2000"`
	ImageID string `json:"image_id"`
}

// Upsert godoc
// @Summary Create or replace the caller's review of a post
// @Tags reviews
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Post ID"
// @Param request body UpsertReviewRequest true "Review data"
// @Success 200 {object} model.Review
// @Failure 400 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Router /posts/{id}/review [put]
func (h *ReviewHandler) Upsert(c echo.Context) error {
	user, err := CurrentUser(c)
	if err != nil {
		return err
	}

	postID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, errors.ErrorResponse{
			Error: "invalid post id",
			Code:  "INVALID_UUID",
		})
	}

	var req UpsertReviewRequest
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

	review, err := h.reviewService.Upsert(c.Request().Context(), user, postID, service.UpsertReviewInput{
		Rating:  req.Rating,
		Comment: req.Comment,
		ImageID: req.ImageID,
	})
	if err != nil {
		httpErr := errors.MapErrorToHTTP(err)
		return echo.NewHTTPError(httpErr.StatusCode, httpErr.ToErrorResponse())
	}
	return c.JSON(http.StatusOK, review)
}

// List godoc
// @Summary List a post's reviews
// @Tags reviews
// @Produce json
// @Security BearerAuth
// @Param id path string true "Post ID"
// @Success 200 {array} service.ReviewView
// @Failure 400 {object} errors.ErrorResponse
// @Router /posts/{id}/reviews [get]
func (h *ReviewHandler) List(c echo.Context) error {
	postID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, errors.ErrorResponse{
			Error: "invalid post id",
			Code:  "INVALID_UUID",
		})
	}

	views, err := h.reviewService.ListByPost(c.Request().Context(), postID)
	if err != nil {
		httpErr := errors.MapErrorToHTTP(err)
		return echo.NewHTTPError(httpErr.StatusCode, httpErr.ToErrorResponse())
	}
	return c.JSON(http.StatusOK, views)
}

// Delete godoc
// @Summary Delete the caller's review of a post
// @Tags reviews
// @Produce json
// @Security BearerAuth
// @Param id path string true "Post ID"
// @Success 200 {object} map[string]string
// @Failure 404 {object} errors.ErrorResponse
// @Router /posts/{id}/review [delete]
func (h *ReviewHandler) Delete(c echo.Context) error {
	user, err := CurrentUser(c)
	if err != nil {
		return err
	}

	postID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, errors.ErrorResponse{
			Error: "invalid post id",
			Code:  "INVALID_UUID",
		})
	}

	if err := h.reviewService.Delete(c.Request().Context(), user, postID); err != nil {
		httpErr := errors.MapErrorToHTTP(err)
		return echo.NewHTTPError(httpErr.StatusCode, httpErr.ToErrorResponse())
	}
	return c.JSON(http.StatusOK, map[string]string{
		"message": "review deleted",
	})
}
