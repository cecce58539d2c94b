package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"siscoca/internal/models"
)

type AuditRepository interface {
	Create(ctx context.Context, entry *models.AuditEntry) error
	List(ctx context.Context, entity string, entityID string, limit int) ([]*models.AuditEntry, error)
}

type auditRepository struct {
	db *sql.DB
}

func NewAuditRepository(db *sql.DB) AuditRepository {
	return &auditRepository{db: db}
}

func (r *auditRepository) Create(ctx context.Context, entry *models.AuditEntry) error {
	if entry.ID == "" {
		entry.ID = uuid.NewString()
	}
	query := `
		INSERT INTO audit_entries (id, entity, action, entity_id, summary, details, actor)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING created_at
	`

	return r.db.QueryRowContext(
		ctx,
		query,
		entry.ID,
		entry.Entity,
		entry.Action,
		entry.EntityID,
		entry.Summary,
		nullStr(entry.Details),
		nullStr(entry.Actor),
	).Scan(&entry.CreatedAt)
}

func (r *auditRepository) List(ctx context.Context, entity string, entityID string, limit int) ([]*models.AuditEntry, error) {
	query := `
		SELECT id, entity, action, entity_id, summary, details, actor, created_at
		FROM audit_entries
		WHERE 1=1
	`

	var args []interface{}
	var whereClauses []string
	argPos := 1

	if entity != "" {
		whereClauses = append(whereClauses, fmt.Sprintf("entity = $%d", argPos))
		args = append(args, entity)
		argPos++
	}

	if entityID != "" {
		whereClauses = append(whereClauses, fmt.Sprintf("entity_id = $%d", argPos))
		args = append(args, entityID)
		argPos++
	}

	if len(whereClauses) > 0 {
		query += " AND " + strings.Join(whereClauses, " AND ")
	}

	query += " ORDER BY created_at DESC"

	if limit > 0 {
		query += fmt.Sprintf(" LIMIT $%d", argPos)
		args = append(args, limit)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []*models.AuditEntry
	for rows.Next() {
		var e models.AuditEntry
		var details, actor sql.NullString
		if err := rows.Scan(&e.ID, &e.Entity, &e.Action, &e.EntityID, &e.Summary, &details, &actor, &e.CreatedAt); err != nil {
			return nil, err
		}
		e.Details = details.String
		e.Actor = actor.String
		entries = append(entries, &e)
	}
	return entries, rows.Err()
}
