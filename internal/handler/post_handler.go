package handler

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"campuseats/internal/errors"
	"campuseats/internal/service"
)

// PostHandler handles food post endpoints.
type PostHandler struct {
	postService service.PostService
}

// NewPostHandler creates a new post handler.
func NewPostHandler(postService service.PostService) *PostHandler {
	return &PostHandler{postService: postService}
}

// CreatePostRequest represents a food post creation request.
type CreatePostRequest struct {
	Title           string   `json:"title" validate:"required,max=255"`
	Description     string   `json:"description"`
	FoodType        string   `json:"food_type" validate:"required"`
	CampusID        string   `json:"campus_id" validate:"required,uuid"`
	LocationName    string   `json:"location_name" validate:"required,max=255"`
	Latitude        float64  `json:"latitude" validate:"required,latitude"`
	Longitude       float64  `json:"longitude" validate:"required,longitude"`
	DurationMinutes int      `json:"duration_minutes" validate:"required,min=1,max=1440"`
	ImageID         string   `json:"image_id"`
	DietaryTags     []string `json:"dietary_tags"`
}

// UpdatePostRequest represents a partial post patch.
type UpdatePostRequest struct {
	Title         *string  `json:"title" validate:"omitempty,max=255"`
	Description   *string  `json:"description"`
	FoodType      *string  `json:"food_type"`
	LocationName  *string  `json:"location_name" validate:"omitempty,max=255"`
	Latitude      *float64 `json:"latitude" validate:"omitempty,latitude"`
	Longitude     *float64 `json:"longitude" validate:"omitempty,longitude"`
	ImageID       *string  `json:"image_id"`
	DietaryTags   []string `json:"dietary_tags"`
	ExtendMinutes int      `json:"extend_minutes" validate:"omitempty,min=0,max=1440"`
}

// Create godoc
// @Summary Create a food post (moderation gated)
// @Tags posts
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body CreatePostRequest true "Post data"
// @Success 201 {object} model.FoodPost
// @Failure 400 {object} errors.ErrorResponse
// @Failure 401 {object} errors.ErrorResponse
// @Failure 422 {object} errors.ErrorResponse
// @Router /posts [post]
func (h *PostHandler) Create(c echo.Context) error {
	user, err := CurrentUser(c)
	if err != nil {
		return err
	}

	var req CreatePostRequest
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

	campusID, err := uuid.Parse(req.CampusID)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, errors.ErrorResponse{
			Error: "invalid campus_id",
			Code:  "INVALID_UUID",
		})
	}

	post, err := h.postService.Create(c.Request().Context(), user, service.CreatePostInput{
		Title:           req.Title,
		Description:     req.Description,
		FoodType:        req.FoodType,
		CampusID:        campusID,
		LocationName:    req.LocationName,
		Latitude:        req.Latitude,
		Longitude:       req.Longitude,
		DurationMinutes: req.DurationMinutes,
		ImageID:         req.ImageID,
		DietaryTags:     req.DietaryTags,
	})
	if err != nil {
		httpErr := errors.MapErrorToHTTP(err)
		return echo.NewHTTPError(httpErr.StatusCode, httpErr.ToErrorResponse())
	}
	return c.JSON(http.StatusCreated, post)
}

// Feed godoc
// @Summary List a campus's available posts, ranked for the viewer
// @Tags posts
// @Produce json
// @Security BearerAuth
// @Param campus_id query string true "Campus ID"
// @Success 200 {array} service.PostView
// @Failure 400 {object} errors.ErrorResponse
// @Failure 401 {object} errors.ErrorResponse
// @Router /posts [get]
func (h *PostHandler) Feed(c echo.Context) error {
	user, err := CurrentUser(c)
	if err != nil {
		return err
	}

	campusID, err := uuid.Parse(c.QueryParam("campus_id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, errors.ErrorResponse{
			Error: "invalid campus_id",
			Code:  "INVALID_UUID",
		})
	}

	views, err := h.postService.Feed(c.Request().Context(), campusID, user)
	if err != nil {
		httpErr := errors.MapErrorToHTTP(err)
		return echo.NewHTTPError(httpErr.StatusCode, httpErr.ToErrorResponse())
	}
	return c.JSON(http.StatusOK, views)
}

// Get godoc
// @Summary Get a single post
// @Tags posts
// @Produce json
// @Security BearerAuth
// @Param id path string true "Post ID"
// @Success 200 {object} service.PostView
// @Failure 400 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Router /posts/{id} [get]
func (h *PostHandler) Get(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, errors.ErrorResponse{
			Error: "invalid post id",
			Code:  "INVALID_UUID",
		})
	}

	view, err := h.postService.Get(c.Request().Context(), id)
	if err != nil {
		httpErr := errors.MapErrorToHTTP(err)
		return echo.NewHTTPError(httpErr.StatusCode, httpErr.ToErrorResponse())
	}
	return c.JSON(http.StatusOK, view)
}

// ListMine godoc
// @Summary List the caller's own posts
// @Tags posts
// @Produce json
// @Security BearerAuth
// @Success 200 {array} service.PostView
// @Failure 401 {object} errors.ErrorResponse
// @Router /posts/mine [get]
func (h *PostHandler) ListMine(c echo.Context) error {
	user, err := CurrentUser(c)
	if err != nil {
		return err
	}

	views, err := h.postService.ListMine(c.Request().Context(), user)
	if err != nil {
		httpErr := errors.MapErrorToHTTP(err)
		return echo.NewHTTPError(httpErr.StatusCode, httpErr.ToErrorResponse())
	}
	return c.JSON(http.StatusOK, views)
}

// Update godoc
// @Summary Patch a post (creator only)
// @Tags posts
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Post ID"
// @Param request body UpdatePostRequest true "Fields to change"
// @Success 200 {object} model.FoodPost
// @Failure 400 {object} errors.ErrorResponse
// @Failure 403 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Router /posts/{id} [patch]
func (h *PostHandler) Update(c echo.Context) error {
	user, err := CurrentUser(c)
	if err != nil {
		return err
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, errors.ErrorResponse{
			Error: "invalid post id",
			Code:  "INVALID_UUID",
		})
	}

	var req UpdatePostRequest
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

	post, err := h.postService.Update(c.Request().Context(), user, id, service.UpdatePostInput{
		Title:         req.Title,
		Description:   req.Description,
		FoodType:      req.FoodType,
		LocationName:  req.LocationName,
		Latitude:      req.Latitude,
		Longitude:     req.Longitude,
		ImageID:       req.ImageID,
		DietaryTags:   req.DietaryTags,
		ExtendMinutes: req.ExtendMinutes,
	})
	if err != nil {
		httpErr := errors.MapErrorToHTTP(err)
		return echo.NewHTTPError(httpErr.StatusCode, httpErr.ToErrorResponse())
	}
	return c.JSON(http.StatusOK, post)
}

// MarkGone godoc
// @Summary Mark a post's food as gone (creator only)
// @Tags posts
// @Produce json
// @Security BearerAuth
// @Param id path string true "Post ID"
// @Success 200 {object} model.FoodPost
// @Failure 403 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Failure 409 {object} errors.ErrorResponse
// @Router /posts/{id}/gone [post]
func (h *PostHandler) MarkGone(c echo.Context) error {
	user, err := CurrentUser(c)
	if err != nil {
		return err
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, errors.ErrorResponse{
			Error: "invalid post id",
			Code:  "INVALID_UUID",
		})
	}

	post, err := h.postService.MarkGone(c.Request().Context(), user, id)
	if err != nil {
		httpErr := errors.MapErrorToHTTP(err)
		return echo.NewHTTPError(httpErr.StatusCode, httpErr.ToErrorResponse())
	}
	return c.JSON(http.StatusOK, post)
}

// ReportGone godoc
// @Summary Toggle a gone-report on a post (non-creators only)
// @Tags posts
// @Produce json
// @Security BearerAuth
// @Param id path string true "Post ID"
// @Success 200 {object} model.FoodPost
// @Failure 403 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Router /posts/{id}/report-gone [post]
func (h *PostHandler) ReportGone(c echo.Context) error {
	user, err := CurrentUser(c)
	if err != nil {
		return err
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, errors.ErrorResponse{
			Error: "invalid post id",
			Code:  "INVALID_UUID",
		})
	}

	post, err := h.postService.ReportGone(c.Request().Context(), user, id)
	if err != nil {
		httpErr := errors.MapErrorToHTTP(err)
		return echo.NewHTTPError(httpErr.StatusCode, httpErr.ToErrorResponse())
	}
	return c.JSON(http.StatusOK, post)
}
