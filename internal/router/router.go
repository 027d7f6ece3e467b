package router

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	echojwt "github.com/labstack/echo-jwt/v4"
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	echoSwagger "github.com/swaggo/echo-swagger"

	"workshop/internal/auth"
	"workshop/internal/cache"
	"workshop/internal/config"
	apperrors "workshop/internal/errors"
	"workshop/internal/handler"
	"workshop/internal/middleware"
	"workshop/internal/model"
	"workshop/internal/repository"
	"workshop/internal/service"
)

// Handlers groups the HTTP handlers mounted under /api.
type Handlers struct {
	Auth          *handler.AuthHandler
	Profile       *handler.ProfileHandler
	Users         *handler.UserHandler
	Customers     *handler.CustomerHandler
	Vehicles      *handler.VehicleHandler
	Orders        *handler.OrderHandler
	Appointments  *handler.AppointmentHandler
	Parts         *handler.PartHandler
	Invoices      *handler.InvoiceHandler
	Messages      *handler.MessageHandler
	Notifications *handler.NotificationHandler
}

// Deps are the collaborators the middleware chain needs.
type Deps struct {
	Store       repository.Store
	JWT         *auth.JWTService
	AuthService service.AuthService
	Cache       *cache.Client
}

// ipExtractor decides where RealIP comes from. Without a trusted proxy in
// front, a client could rotate X-Forwarded-For to dodge the rate limiter, so
// only the socket peer counts.
func ipExtractor(cfg *config.Config) echo.IPExtractor {
	if cfg.TrustProxy {
		return echo.ExtractIPFromXFFHeader()
	}
	return echo.ExtractIPDirect()
}

// Register wires routes and middleware.
func Register(e *echo.Echo, cfg *config.Config, deps Deps, h Handlers) {
	e.HideBanner = true
	e.HTTPErrorHandler = ErrorHandler
	e.Binder = &StrictBinder{}
	e.Validator = NewValidator()
	e.IPExtractor = ipExtractor(cfg)

	e.Use(echomw.RequestIDWithConfig(echomw.RequestIDConfig{Generator: uuid.NewString}))
	e.Use(echomw.Logger())
	e.Use(echomw.Recover())

	e.GET("/healthz", func(c echo.Context) error {
		if err := deps.Store.Ping(c.Request().Context()); err != nil {
			return echo.NewHTTPError(http.StatusServiceUnavailable, "database unavailable")
		}
		return c.String(http.StatusOK, "ok")
	})

	e.GET("/swagger/*", echoSwagger.WrapHandler)

	api := e.Group("/api")

	jwtGuard := echojwt.WithConfig(echojwt.Config{
		ContextKey: middleware.ClaimsKey,
		ParseTokenFunc: func(c echo.Context, token string) (interface{}, error) {
			return deps.JWT.ValidateToken(token)
		},
		ErrorHandler: func(c echo.Context, err error) error {
			return apperrors.Unauthorized("invalid or missing token")
		},
	})
	authenticate := middleware.Authenticate(deps.AuthService)

	// Public routes
	authGroup := api.Group("/auth", middleware.RateLimit(deps.Cache, "ratelimit:auth", cfg.AuthRateLimit, time.Minute))
	authGroup.POST("/register", h.Auth.Register)
	authGroup.POST("/login", h.Auth.Login)
	authGroup.POST("/reset/request", h.Auth.RequestReset)
	authGroup.POST("/reset", h.Auth.ResetPassword)
	authGroup.POST("/logout", h.Auth.Logout, jwtGuard, authenticate)

	// Secured routes (require JWT authentication)
	secured := api.Group("", jwtGuard, authenticate)

	secured.GET("/me", h.Profile.Me)
	secured.PATCH("/me", h.Profile.UpdateMe)
	secured.POST("/me/password", h.Profile.ChangePassword)

	secured.GET("/customers", h.Customers.List)
	secured.POST("/customers", h.Customers.Create)
	secured.GET("/customers/:id", h.Customers.Get)
	secured.PATCH("/customers/:id", h.Customers.Update)
	secured.DELETE("/customers/:id", h.Customers.Delete)

	secured.GET("/vehicles", h.Vehicles.List)
	secured.POST("/vehicles", h.Vehicles.Create)
	secured.GET("/vehicles/:id", h.Vehicles.Get)
	secured.PATCH("/vehicles/:id", h.Vehicles.Update)
	secured.DELETE("/vehicles/:id", h.Vehicles.Delete)

	secured.GET("/orders", h.Orders.List)
	secured.POST("/orders", h.Orders.Create)
	secured.GET("/orders/:id", h.Orders.Get)
	secured.PATCH("/orders/:id", h.Orders.Update)
	secured.DELETE("/orders/:id", h.Orders.Delete)

	secured.GET("/appointments", h.Appointments.List)
	secured.POST("/appointments", h.Appointments.Create)
	secured.GET("/appointments/:id", h.Appointments.Get)
	secured.PATCH("/appointments/:id", h.Appointments.Update)
	secured.DELETE("/appointments/:id", h.Appointments.Delete)

	secured.GET("/parts", h.Parts.List)
	secured.GET("/parts/low-stock", h.Parts.LowStock)
	secured.POST("/parts", h.Parts.Create)
	secured.GET("/parts/:id", h.Parts.Get)
	secured.PATCH("/parts/:id", h.Parts.Update)
	secured.DELETE("/parts/:id", h.Parts.Delete)
	secured.POST("/parts/:id/reserve", h.Parts.Reserve)
	secured.POST("/parts/:id/restock", h.Parts.Restock)

	secured.GET("/invoices", h.Invoices.List)
	secured.POST("/invoices", h.Invoices.Create)
	secured.GET("/invoices/:id", h.Invoices.Get)
	secured.PATCH("/invoices/:id", h.Invoices.Update)
	secured.DELETE("/invoices/:id", h.Invoices.Delete)

	secured.GET("/messages/threads", h.Messages.ListThreads)
	secured.POST("/messages/threads", h.Messages.CreateThread)
	secured.GET("/messages/threads/:id", h.Messages.GetThread)
	secured.PATCH("/messages/threads/:id", h.Messages.RenameThread)
	secured.DELETE("/messages/threads/:id", h.Messages.DeleteThread)
	secured.GET("/messages/threads/:id/messages", h.Messages.ListMessages)
	secured.POST("/messages/threads/:id/messages", h.Messages.SendMessage)

	secured.GET("/notifications", h.Notifications.List)
	secured.POST("/notifications", h.Notifications.Create)
	secured.POST("/notifications/read-all", h.Notifications.MarkAllRead)
	secured.POST("/notifications/:id/read", h.Notifications.MarkRead)
	secured.DELETE("/notifications/:id", h.Notifications.Delete)

	admin := secured.Group("/admin", middleware.RequireRole(model.RoleAdmin))
	admin.GET("/users", h.Users.ListUsers)
	admin.POST("/users", h.Users.CreateUser)
	admin.GET("/users/:id", h.Users.GetUser)
	admin.PATCH("/users/:id", h.Users.UpdateUser)
	admin.POST("/users/:id/password", h.Users.ResetPassword)
}

// ErrorHandler renders every failure as the error envelope. Typed domain
// errors keep their message; anything else is reported as a 500 without
// details and logged.
func ErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	var resp apperrors.ErrorResponse
	var status int
	var typed *apperrors.Error
	var he *echo.HTTPError
	switch {
	case errors.As(err, &typed):
		httpErr := apperrors.MapErrorToHTTP(typed)
		status = httpErr.StatusCode
		resp = httpErr.ToErrorResponse()
	case errors.As(err, &he):
		status = he.Code
		resp = apperrors.ErrorResponse{Message: fmt.Sprint(he.Message), Code: statusCode(he.Code)}
		if status >= http.StatusInternalServerError {
			resp.Message = http.StatusText(status)
		}
	default:
		httpErr := apperrors.MapErrorToHTTP(err)
		status = httpErr.StatusCode
		resp = httpErr.ToErrorResponse()
	}
	if status >= http.StatusInternalServerError {
		c.Logger().Errorf("%s %s: %v", c.Request().Method, c.Request().URL.Path, err)
	}

	if c.Request().Method == http.MethodHead {
		err = c.NoContent(status)
	} else {
		err = c.JSON(status, resp)
	}
	if err != nil {
		c.Logger().Error(err)
	}
}

// statusCode turns an HTTP status into an error code, e.g. 429 becomes
// TOO_MANY_REQUESTS.
func statusCode(status int) string {
	switch status {
	case http.StatusInternalServerError:
		return apperrors.KindServer.String()
	case http.StatusServiceUnavailable:
		return "SERVICE_UNAVAILABLE"
	}
	text := http.StatusText(status)
	if text == "" {
		return apperrors.KindServer.String()
	}
	return strings.ToUpper(strings.ReplaceAll(text, " ", "_"))
}

// StrictBinder decodes JSON request bodies and rejects fields the target
// struct does not declare. Path and query values are read by the handlers.
type StrictBinder struct{}

// Bind implements echo.Binder.
func (b *StrictBinder) Bind(i interface{}, c echo.Context) error {
	req := c.Request()
	switch req.Method {
	case http.MethodGet, http.MethodDelete, http.MethodHead:
		return nil
	}
	if req.ContentLength == 0 {
		return nil
	}
	ctype := req.Header.Get(echo.HeaderContentType)
	if !strings.HasPrefix(ctype, echo.MIMEApplicationJSON) {
		return apperrors.BadRequest("content type must be %s", echo.MIMEApplicationJSON)
	}

	dec := json.NewDecoder(req.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(i); err != nil {
		if errors.Is(err, io.EOF) {
			return nil
		}
		var typed *apperrors.Error
		if errors.As(err, &typed) {
			return typed
		}
		return apperrors.BadRequest("invalid request body: %v", err)
	}
	return nil
}

// CustomValidator wraps validator for Echo.
type CustomValidator struct {
	validator *validator.Validate
}

// NewValidator returns a validator that reports fields by their JSON name.
func NewValidator() *CustomValidator {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return &CustomValidator{validator: v}
}

// Validate implements echo.Validator interface.
func (cv *CustomValidator) Validate(i interface{}) error {
	err := cv.validator.Struct(i)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return apperrors.BadRequest("invalid request: %v", err)
	}

	var missing, problems []string
	for _, fe := range verrs {
		if fe.Tag() == "required" {
			missing = append(missing, fe.Field())
			continue
		}
		problems = append(problems, describe(fe))
	}
	if len(missing) > 0 {
		return apperrors.BadRequest("missing required fields: %s", strings.Join(missing, ", "))
	}
	return apperrors.BadRequest("%s", strings.Join(problems, "; "))
}

func describe(fe validator.FieldError) string {
	switch fe.Tag() {
	case "email":
		return fe.Field() + " must be a valid email address"
	case "min":
		return fmt.Sprintf("%s must be at least %s characters", fe.Field(), fe.Param())
	case "max":
		return fmt.Sprintf("%s must be at most %s characters", fe.Field(), fe.Param())
	case "gt":
		return fmt.Sprintf("%s must be greater than %s", fe.Field(), fe.Param())
	default:
		return fmt.Sprintf("%s is invalid", fe.Field())
	}
}
