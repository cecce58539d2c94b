// internal/handlers/audit_handler.go
package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"

	"siscoca/internal/models"
	"siscoca/internal/repository"
)

type AuditHandler struct {
	repo repository.AuditRepository
}

func NewAuditHandler(repo repository.AuditRepository) *AuditHandler {
	return &AuditHandler{repo: repo}
}

// ListAuditEntries handles GET /api/v1/audit with optional entity, entity_id
// and limit query filters.
func (h *AuditHandler) ListAuditEntries(w http.ResponseWriter, r *http.Request) {
	limit := 100
	if raw := r.URL.Query().Get("limit"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil && n > 0 && n <= 500 {
			limit = n
		}
	}

	entries, err := h.repo.List(r.Context(), r.URL.Query().Get("entity"), r.URL.Query().Get("entity_id"), limit)
	if err != nil {
		writeJSONErrorResponse(w, http.StatusInternalServerError, "list_audit_failed", "Failed to list audit entries")
		return
	}
	if entries == nil {
		entries = []*models.AuditEntry{}
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(entries)
}
