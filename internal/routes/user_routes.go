// internal/routes/user_routes.go
package routes

import (
	"database/sql"

	"github.com/go-chi/chi/v5"

	"siscoca/internal/handlers"
	"siscoca/internal/middleware"
	"siscoca/internal/repository"
	"siscoca/internal/services"
)

func RegisterUserRoutes(router chi.Router, db *sql.DB, audit *services.AuditLogger) {
	userRepo := repository.NewUserRepository(db)
	campaignRepo := repository.NewCampaignRepository(db)
	userHandler := handlers.NewUserHandler(userRepo, campaignRepo, audit)

	router.Route("/users", func(r chi.Router) {
		r.Get("/me", userHandler.GetCurrentUser)

		// User management is admin only.
		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireRole("admin"))
			r.Get("/", userHandler.ListUsers)
			r.Post("/", userHandler.CreateUser)
			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", userHandler.GetUser)
				r.Put("/", userHandler.UpdateUser)
				r.Delete("/", userHandler.DeleteUser)
			})
		})
	})
}
