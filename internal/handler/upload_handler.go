package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"campuseats/internal/errors"
	"campuseats/internal/storage"
)

// UploadHandler issues presigned upload URLs for post and review images.
type UploadHandler struct {
	store storage.ObjectStore
}

// NewUploadHandler creates a new upload handler.
func NewUploadHandler(store storage.ObjectStore) *UploadHandler {
	return &UploadHandler{store: store}
}

// CreateUploadRequest represents an upload URL request.
type CreateUploadRequest struct {
	FileName string `json:"file_name" validate:"required,max=255"`
}

// CreateUploadResponse carries the presigned URL and the key the client
// should store on the post or review after uploading.
type CreateUploadResponse struct {
	ImageID   string `json:"image_id"`
	UploadURL string `json:"upload_url"`
}

// Create godoc
// @Summary Generate a presigned image upload URL
// @Tags uploads
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body CreateUploadRequest true "Upload data"
// @Success 200 {object} CreateUploadResponse
// @Failure 400 {object} errors.ErrorResponse
// @Failure 401 {object} errors.ErrorResponse
// @Router /uploads [post]
func (h *UploadHandler) Create(c echo.Context) error {
	if _, err := CurrentUser(c); err != nil {
		return err
	}

	var req CreateUploadRequest
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

	key, uploadURL, err := h.store.PresignUpload(c.Request().Context(), req.FileName)
	if err != nil {
		httpErr := errors.MapErrorToHTTP(err)
		return echo.NewHTTPError(httpErr.StatusCode, httpErr.ToErrorResponse())
	}
	return c.JSON(http.StatusOK, CreateUploadResponse{
		ImageID:   key,
		UploadURL: uploadURL,
	})
}
