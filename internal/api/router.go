package api

import (
	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/redis/go-redis/v9"
	echoswagger "github.com/swaggo/echo-swagger"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/storefront/auth-system/internal/api/handler"
	"github.com/storefront/auth-system/internal/api/middleware"
	"github.com/storefront/auth-system/internal/core/ports"
	"github.com/storefront/auth-system/pkg/logger"
)

// Dependencies carries everything the router needs wired in.
type Dependencies struct {
	OTPService    ports.OTPService
	AuthService   ports.AuthService
	MongoDB       *mongo.Database
	Redis         *redis.Client
	SecureCookies bool
}

// NewRouter builds and returns the Echo instance with all routes registered.
func NewRouter(deps Dependencies) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = NewHTTPErrorHandler(logger.Get())

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(echomiddleware.Logger())
	e.Use(echoprometheus.NewMiddleware("storefront_auth"))

	// --- Handlers ---
	otpHandler := handler.NewOTPHandler(deps.OTPService)
	authHandler := handler.NewAuthHandler(deps.AuthService, deps.SecureCookies)
	dashboardHandler := handler.NewDashboardHandler()
	sessionRequired := middleware.Session(deps.AuthService)

	// --- Public auth flow ---
	e.POST("/request-otp", otpHandler.RequestOTP)
	e.POST("/verify-otp", otpHandler.VerifyOTP)
	e.POST("/signup", authHandler.Signup)
	e.POST("/login", authHandler.Login)

	// Logout and refresh read the cookie themselves: logout must stay
	// idempotent for stale cookies, and refresh reports its own 401.
	e.POST("/logout", authHandler.Logout)
	e.POST("/refresh-token", authHandler.RefreshToken)

	// --- Session-guarded routes ---
	e.GET("/profile", authHandler.Profile, sessionRequired)
	e.GET("/dashboard", dashboardHandler.Dashboard, sessionRequired)

	// --- Health probes (no auth required) ---
	healthHandler := handler.NewHealthHandler()
	healthDepsHandler := handler.NewHealthDependenciesHandler(deps.MongoDB, deps.Redis)

	e.GET("/health", healthHandler.Liveness)            // liveness  – is the process alive?
	e.GET("/health/ready", healthDepsHandler.Readiness) // readiness – are dependencies up?

	// --- Operational endpoints ---
	e.GET("/metrics", echoprometheus.NewHandler())
	e.GET("/docs/*", echoswagger.WrapHandler)

	return e
}
