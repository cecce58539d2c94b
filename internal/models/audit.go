package models

import "time"

type AuditEntity string

const (
	AuditEntityCampaigns AuditEntity = "campaigns"
	AuditEntityCreatives AuditEntity = "creatives"
	AuditEntityHistory   AuditEntity = "history"
	AuditEntityUsers     AuditEntity = "users"
	AuditEntityChat      AuditEntity = "chat"
)

// AuditEntry records one mutation for the change-history view. Details holds
// a free-form JSON document (before/after summaries and the like).
type AuditEntry struct {
	ID        string      `json:"id"`
	Entity    AuditEntity `json:"entity"`
	Action    string      `json:"action"`
	EntityID  string      `json:"entity_id"`
	Summary   string      `json:"summary"`
	Details   string      `json:"details,omitempty"`
	Actor     string      `json:"actor,omitempty"`
	CreatedAt time.Time   `json:"created_at"`
}
