// Package server assembles the fiber application and its route table.
package server

import (
	"strings"

	"github.com/Jirapat-K-F/SLEEP-FINAL-PROJECT/internal/audit"
	"github.com/Jirapat-K-F/SLEEP-FINAL-PROJECT/internal/auth"
	"github.com/Jirapat-K-F/SLEEP-FINAL-PROJECT/internal/config"
	"github.com/Jirapat-K-F/SLEEP-FINAL-PROJECT/internal/dashboard"
	"github.com/Jirapat-K-F/SLEEP-FINAL-PROJECT/internal/httpx"
	"github.com/Jirapat-K-F/SLEEP-FINAL-PROJECT/internal/mail"
	"github.com/Jirapat-K-F/SLEEP-FINAL-PROJECT/internal/middleware"
	"github.com/Jirapat-K-F/SLEEP-FINAL-PROJECT/internal/models"
	"github.com/Jirapat-K-F/SLEEP-FINAL-PROJECT/internal/reservation"
	"github.com/Jirapat-K-F/SLEEP-FINAL-PROJECT/internal/venue"

	"github.com/goccy/go-json"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	fiberlogger "github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"gorm.io/gorm"
)

// New builds the application. Every handler shares db.
func New(db *gorm.DB, cfg *config.Config, mailer mail.Mailer) *fiber.App {
	app := fiber.New(fiber.Config{
		AppName:      "reservation-api",
		JSONEncoder:  json.Marshal,
		JSONDecoder:  json.Unmarshal,
		ErrorHandler: httpx.ErrorHandler,
	})

	app.Use(recover.New())
	app.Use(requestid.New())
	if !cfg.IsProduction() || cfg.LogLevel == "debug" {
		app.Use(fiberlogger.New(fiberlogger.Config{
			Format: "${time} ${locals:requestid} ${status} ${method} ${path} ${latency}\n",
		}))
	}

	corsOrigins := strings.Split(cfg.CORSOrigins, ",")
	for i := range corsOrigins {
		corsOrigins[i] = strings.TrimSpace(corsOrigins[i])
	}
	origins := strings.Join(corsOrigins, ",")
	app.Use(cors.New(cors.Config{
		AllowOrigins: origins,
		AllowHeaders: "Origin, Content-Type, Accept, Authorization",
		AllowMethods: "GET,POST,PUT,DELETE,OPTIONS",
		// fiber refuses credentials with a wildcard origin
		AllowCredentials: origins != "*",
	}))

	api := app.Group("/api/v1")
	limiter := middleware.RateLimit(middleware.NewRateLimiter(cfg.RateLimitRPS, cfg.RateLimitBurst))
	protect := auth.JWTMiddleware(cfg)
	adminOnly := auth.RequireRole(models.RoleAdmin)

	// auth
	api.Post("/auth/register", limiter, auth.RegisterHandler(db, cfg))
	api.Post("/auth/login", limiter, auth.LoginHandler(db, cfg))
	api.Get("/auth/logout", auth.LogoutHandler())
	api.Get("/auth/me", protect, auth.MeHandler(db))
	api.Post("/auth/forgotpassword", limiter, auth.ForgotPasswordHandler(db, cfg, mailer))
	api.Put("/auth/resetpassword/:token", auth.ResetPasswordHandler(db))

	// venues
	api.Get("/venues", venue.ListVenuesHandler(db))
	api.Post("/venues", protect, adminOnly, venue.CreateVenueHandler(db))
	api.Get("/venues/:id", venue.GetVenueHandler(db))
	api.Put("/venues/:id", protect, adminOnly, venue.UpdateVenueHandler(db))
	api.Delete("/venues/:id", protect, adminOnly, venue.DeleteVenueHandler(db))

	// reservations
	api.Get("/venues/:venueId/reservations", protect, reservation.ListReservationsHandler(db))
	api.Post("/venues/:venueId/reservations", protect, reservation.CreateReservationHandler(db))

	// export is registered before :id so it is not read as an id
	api.Get("/reservations/export", protect, adminOnly, reservation.ExportReservationsHandler(db))
	api.Get("/reservations", protect, reservation.ListReservationsHandler(db))
	api.Get("/reservations/:id", protect, reservation.GetReservationHandler(db))
	api.Put("/reservations/:id", protect, reservation.UpdateReservationHandler(db))
	api.Delete("/reservations/:id", protect, reservation.DeleteReservationHandler(db))

	// admin views
	api.Get("/audit-logs", protect, adminOnly, audit.ListAuditLogsHandler(db))
	api.Get("/dashboard/reservations", protect, adminOnly, dashboard.ReservationChartHandler(db))

	return app
}
