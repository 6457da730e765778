package handler

import (
	"net/http"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"

	"campuseats/internal/auth"
	"campuseats/internal/errors"
	"campuseats/internal/model"
	"campuseats/internal/service"
)

const currentUserKey = "currentUser"

// IdentityMiddleware turns the route guard's verified JWT into a local user
// record. Runs after echo-jwt, so the token is already validated; this layer
// only derives the identity and lazily provisions the User row.
func IdentityMiddleware(userService service.UserService) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			token, ok := c.Get("user").(*jwt.Token)
			if !ok {
				return echo.NewHTTPError(http.StatusUnauthorized, errors.ErrorResponse{
					Error: errors.ErrUnauthenticated.Error(),
					Code:  "AUTH_REQUIRED",
				})
			}
			claims, ok := token.Claims.(*auth.Claims)
			if !ok {
				return echo.NewHTTPError(http.StatusUnauthorized, errors.ErrorResponse{
					Error: "invalid token claims",
					Code:  "AUTH_REQUIRED",
				})
			}
			identity, err := claims.Identity()
			if err != nil {
				return echo.NewHTTPError(http.StatusUnauthorized, errors.ErrorResponse{
					Error: err.Error(),
					Code:  "AUTH_REQUIRED",
				})
			}

			user, err := userService.EnsureUser(c.Request().Context(), identity)
			if err != nil {
				httpErr := errors.MapErrorToHTTP(err)
				return echo.NewHTTPError(httpErr.StatusCode, httpErr.ToErrorResponse())
			}

			c.Set(currentUserKey, user)
			return next(c)
		}
	}
}

// CurrentUser returns the authenticated user set by IdentityMiddleware.
func CurrentUser(c echo.Context) (*model.User, error) {
	user, ok := c.Get(currentUserKey).(*model.User)
	if !ok || user == nil {
		return nil, echo.NewHTTPError(http.StatusUnauthorized, errors.ErrorResponse{
			Error: errors.ErrUnauthenticated.Error(),
			Code:  "AUTH_REQUIRED",
		})
	}
	return user, nil
}
