package errors

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	// ErrUnauthenticated is returned when no identity accompanies the request.
	ErrUnauthenticated = errors.New("authentication required")
	// ErrCampusNotFound is returned when a campus is not found.
	ErrCampusNotFound = errors.New("campus not found")
	// ErrUserNotFound is returned when a user is not found.
	ErrUserNotFound = errors.New("user not found")
	// ErrPostNotFound is returned when a food post is not found.
	ErrPostNotFound = errors.New("food post not found")
	// ErrReviewNotFound is returned when a review is not found.
	ErrReviewNotFound = errors.New("review not found")
	// ErrNotificationNotFound is returned when a notification is not found.
	ErrNotificationNotFound = errors.New("notification not found")
	// ErrNotPostCreator is returned when a non-creator attempts a creator-only action.
	ErrNotPostCreator = errors.New("only the post creator may perform this action")
	// ErrOwnPost is returned when a creator attempts an action reserved for other users.
	ErrOwnPost = errors.New("action not allowed on your own post")
	// ErrPostInactive is returned when mutating a post that is already gone or expired.
	ErrPostInactive = errors.New("food post is no longer active")
	// ErrInvalidRating is returned when a review rating is outside 1-5.
	ErrInvalidRating = errors.New("rating must be between 1 and 5")
	// ErrSelfReview is returned when a creator tries to review their own post.
	ErrSelfReview = errors.New("you cannot review your own post")
	// ErrInvalidFoodType is returned when a food type is not one of the known values.
	ErrInvalidFoodType = errors.New("unknown food type")
	// ErrInvalidDietaryTag is returned when a dietary tag is not one of the known values.
	ErrInvalidDietaryTag = errors.New("unknown dietary tag")
)

// ModerationError is returned when the content classifier rejects a post.
// It carries the human-readable reason surfaced to the user.
type ModerationError struct {
	Reason string
}

func (e *ModerationError) Error() string {
	return fmt.Sprintf("post rejected: %s", e.Reason)
}

// NewModerationError creates a moderation rejection with the given reason.
func NewModerationError(reason string) *ModerationError {
	return &ModerationError{Reason: reason}
}

// ErrorResponse represents a standardized error response.
type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

// HTTPError represents an HTTP error with status code.
type HTTPError struct {
	StatusCode int
	Message    string
	Code       string
}

func (e *HTTPError) Error() string {
	return e.Message
}

// NewHTTPError creates a new HTTP error.
func NewHTTPError(statusCode int, message, code string) *HTTPError {
	return &HTTPError{
		StatusCode: statusCode,
		Message:    message,
		Code:       code,
	}
}

// ToErrorResponse converts an HTTPError to ErrorResponse.
func (e *HTTPError) ToErrorResponse() ErrorResponse {
	return ErrorResponse{
		Error: e.Message,
		Code:  e.Code,
	}
}

// MapErrorToHTTP maps domain errors to HTTP errors.
func MapErrorToHTTP(err error) *HTTPError {
	var modErr *ModerationError
	if errors.As(err, &modErr) {
		return NewHTTPError(http.StatusUnprocessableEntity, modErr.Reason, "MODERATION_REJECTED")
	}

	switch {
	case errors.Is(err, ErrUnauthenticated):
		return NewHTTPError(http.StatusUnauthorized, err.Error(), "AUTH_REQUIRED")
	case errors.Is(err, ErrCampusNotFound):
		return NewHTTPError(http.StatusNotFound, err.Error(), "CAMPUS_NOT_FOUND")
	case errors.Is(err, ErrUserNotFound):
		return NewHTTPError(http.StatusNotFound, err.Error(), "USER_NOT_FOUND")
	case errors.Is(err, ErrPostNotFound):
		return NewHTTPError(http.StatusNotFound, err.Error(), "POST_NOT_FOUND")
	case errors.Is(err, ErrReviewNotFound):
		return NewHTTPError(http.StatusNotFound, err.Error(), "REVIEW_NOT_FOUND")
	case errors.Is(err, ErrNotificationNotFound):
		return NewHTTPError(http.StatusNotFound, err.Error(), "NOTIFICATION_NOT_FOUND")
	case errors.Is(err, ErrNotPostCreator):
		return NewHTTPError(http.StatusForbidden, err.Error(), "NOT_POST_CREATOR")
	case errors.Is(err, ErrOwnPost):
		return NewHTTPError(http.StatusForbidden, err.Error(), "OWN_POST")
	case errors.Is(err, ErrPostInactive):
		return NewHTTPError(http.StatusConflict, err.Error(), "POST_INACTIVE")
	case errors.Is(err, ErrInvalidRating):
		return NewHTTPError(http.StatusBadRequest, err.Error(), "INVALID_RATING")
	case errors.Is(err, ErrSelfReview):
		return NewHTTPError(http.StatusBadRequest, err.Error(), "SELF_REVIEW")
	case errors.Is(err, ErrInvalidFoodType):
		return NewHTTPError(http.StatusBadRequest, err.Error(), "INVALID_FOOD_TYPE")
	case errors.Is(err, ErrInvalidDietaryTag):
		return NewHTTPError(http.StatusBadRequest, err.Error(), "INVALID_DIETARY_TAG")
	default:
		return NewHTTPError(http.StatusInternalServerError, "internal server error", "INTERNAL_ERROR")
	}
}
