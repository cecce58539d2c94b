// internal/services/audit_logger.go
package services

import (
	"context"
	"encoding/json"
	"log"

	"siscoca/internal/models"
	"siscoca/internal/repository"
)

// AuditLogger writes change-history entries on a best-effort basis. A failed
// audit write is logged and swallowed so it never blocks the mutation that
// triggered it.
type AuditLogger struct {
	repo repository.AuditRepository
}

func NewAuditLogger(repo repository.AuditRepository) *AuditLogger {
	return &AuditLogger{repo: repo}
}

// Record persists one audit entry. details, when non-nil, is marshalled to
// JSON; marshal failures fall back to an empty details document.
func (a *AuditLogger) Record(ctx context.Context, entity models.AuditEntity, action, entityID, summary, actor string, details interface{}) {
	if a == nil || a.repo == nil {
		return
	}

	entry := &models.AuditEntry{
		Entity:   entity,
		Action:   action,
		EntityID: entityID,
		Summary:  summary,
		Actor:    actor,
	}
	if details != nil {
		if raw, err := json.Marshal(details); err == nil {
			entry.Details = string(raw)
		} else {
			log.Printf("audit: marshalling details for %s/%s: %v", entity, action, err)
		}
	}

	if err := a.repo.Create(ctx, entry); err != nil {
		log.Printf("audit: recording %s %s on %s: %v", action, entity, entityID, err)
	}
}
