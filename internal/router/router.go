package router

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/golang-jwt/jwt/v5"
	echojwt "github.com/labstack/echo-jwt/v4"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	echoSwagger "github.com/swaggo/echo-swagger"

	"campuseats/internal/auth"
	"campuseats/internal/config"
	"campuseats/internal/handler"
	"campuseats/internal/service"
)

// Register wires routes and middleware.
func Register(
	e *echo.Echo,
	cfg *config.Config,
	userService service.UserService,
	campusHandler *handler.CampusHandler,
	userHandler *handler.UserHandler,
	postHandler *handler.PostHandler,
	reviewHandler *handler.ReviewHandler,
	notificationHandler *handler.NotificationHandler,
	uploadHandler *handler.UploadHandler,
	geocodeHandler *handler.GeocodeHandler,
) {
	e.Use(middleware.Logger())
	e.Use(middleware.Recover())
	e.Use(middleware.CORS())

	// Add validator
	e.Validator = &CustomValidator{validator: validator.New()}

	e.GET("/healthz", func(c echo.Context) error {
		return c.String(http.StatusOK, "ok")
	})

	e.GET("/swagger/*", echoSwagger.WrapHandler)

	api := e.Group("/api")

	// Public routes: the campus directory is browsable before sign-in.
	api.GET("/campuses/search", campusHandler.Search)
	api.GET("/campuses/:id", campusHandler.Get)

	// Secured routes (require an identity-provider JWT)
	secured := api.Group("", echojwt.WithConfig(echojwt.Config{
		SigningKey:  []byte(cfg.IdentityJWTSecret),
		TokenLookup: "header:" + echo.HeaderAuthorization,
		NewClaimsFunc: func(c echo.Context) jwt.Claims {
			return new(auth.Claims)
		},
	}), handler.IdentityMiddleware(userService))

	// User routes
	secured.GET("/me", userHandler.Me)
	secured.PUT("/me/profile", userHandler.UpdateProfile)
	secured.PUT("/me/preferences", userHandler.UpdatePreferences)

	// Post routes
	secured.POST("/posts", postHandler.Create)
	secured.GET("/posts", postHandler.Feed)
	secured.GET("/posts/mine", postHandler.ListMine)
	secured.GET("/posts/:id", postHandler.Get)
	secured.PATCH("/posts/:id", postHandler.Update)
	secured.POST("/posts/:id/gone", postHandler.MarkGone)
	secured.POST("/posts/:id/report-gone", postHandler.ReportGone)

	// Review routes
	secured.PUT("/posts/:id/review", reviewHandler.Upsert)
	secured.DELETE("/posts/:id/review", reviewHandler.Delete)
	secured.GET("/posts/:id/reviews", reviewHandler.List)

	// Notification routes
	secured.GET("/notifications", notificationHandler.List)
	secured.GET("/notifications/unread-count", notificationHandler.UnreadCount)
	secured.POST("/notifications/:id/read", notificationHandler.MarkRead)
	secured.POST("/notifications/read-all", notificationHandler.MarkAllRead)

	// Upload and geocode routes
	secured.POST("/uploads", uploadHandler.Create)
	secured.GET("/geocode", geocodeHandler.Search)
}

// CustomValidator wraps validator for Echo.
type CustomValidator struct {
	validator *validator.Validate
}

// Validate implements echo.Validator interface.
func (cv *CustomValidator) Validate(i interface{}) error {
	return cv.validator.Struct(i)
}
