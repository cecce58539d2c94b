// internal/routes/auth_routes.go
package routes

import (
	"database/sql"

	"github.com/go-chi/chi/v5"

	"siscoca/internal/config"
	"siscoca/internal/handlers"
	"siscoca/internal/middleware"
	"siscoca/internal/services"
)

func RegisterAuthRoutes(router chi.Router, db *sql.DB, cfg *config.Config) {
	mailer := &services.SMTPSender{
		Host:   cfg.SMTPHost,
		Port:   cfg.SMTPPort,
		User:   cfg.SMTPUser,
		Pass:   cfg.SMTPPass,
		From:   cfg.SMTPFrom,
		UseTLS: cfg.SMTPUseTLS,
	}
	authHandler := handlers.NewAuthHandler(db, cfg, mailer)

	router.Route("/auth", func(r chi.Router) {
		r.Post("/login", authHandler.Login)
		r.Post("/forgot-password", authHandler.ForgotPassword)
		r.Post("/reset-password", authHandler.ResetPassword)

		r.Group(func(r chi.Router) {
			r.Use(middleware.JWTAuth(cfg.JWTSecret))
			r.Post("/change-password", authHandler.ChangePassword)
		})
	})
}
