// internal/routes/audit_routes.go
package routes

import (
	"database/sql"

	"github.com/go-chi/chi/v5"

	"siscoca/internal/handlers"
	"siscoca/internal/repository"
)

func RegisterAuditRoutes(router chi.Router, db *sql.DB) {
	auditHandler := handlers.NewAuditHandler(repository.NewAuditRepository(db))

	router.Get("/audit", auditHandler.ListAuditEntries)
}
