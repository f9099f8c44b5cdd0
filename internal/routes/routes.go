package routes

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gramseva/admin-backend/internal/config"
	"github.com/gramseva/admin-backend/internal/handlers"
	"github.com/gramseva/admin-backend/internal/middleware"
	"github.com/gramseva/admin-backend/internal/services"
)

func Setup(
	app *fiber.App,
	cfg *config.Config,
	accounts *services.AccountService,
	authHandler *handlers.AuthHandler,
	userHandler *handlers.UserHandler,
	unitHandler *handlers.UnitHandler,
	healthHandler *handlers.HealthHandler,
) {
	api := app.Group("/api")

	// General API rate limiter: 60 req/min per IP
	api.Use(limiter.New(limiter.Config{
		Max:               60,
		Expiration:        1 * time.Minute,
		LimiterMiddleware: limiter.SlidingWindow{},
		KeyGenerator:      func(c *fiber.Ctx) string { return c.IP() },
	}))

	api.Get("/health", healthHandler.Check)

	// Auth is public with a stricter rate limit: 10 req/min per IP
	auth := api.Group("/auth")
	auth.Use(limiter.New(limiter.Config{
		Max:               10,
		Expiration:        1 * time.Minute,
		LimiterMiddleware: limiter.SlidingWindow{},
		KeyGenerator:      func(c *fiber.Ctx) string { return c.IP() },
	}))
	auth.Post("/login", authHandler.Login)

	// Everything below requires a valid token and an active user.
	guard := []fiber.Handler{
		middleware.JWTProtected(cfg),
		middleware.LoadCurrentUser(accounts),
	}

	users := api.Group("/users", guard...)
	users.Post("/", userHandler.Register)
	users.Get("/", userHandler.List)
	users.Get("/me", userHandler.Me)
	users.Put("/me/profile", userHandler.UpdateMyProfile)
	users.Put("/me/password", userHandler.ChangeMyPassword)
	users.Get("/:id", userHandler.Get)
	users.Put("/:id", userHandler.Update)
	users.Delete("/:id", userHandler.Delete)
	users.Put("/:id/status", userHandler.SetStatus)
	users.Put("/:id/role", userHandler.SetRole)
	users.Get("/:id/audit-log", userHandler.AuditLog)

	units := api.Group("/units", guard...)
	units.Post("/", unitHandler.Create)
	units.Get("/", unitHandler.List)
	units.Get("/scope", unitHandler.Scope)
	units.Get("/:id", unitHandler.Get)
	units.Put("/:id", unitHandler.Update)
	units.Delete("/:id", unitHandler.Delete)
	units.Get("/:id/children", unitHandler.Children)
	units.Get("/:id/ancestors", unitHandler.Ancestors)
}
