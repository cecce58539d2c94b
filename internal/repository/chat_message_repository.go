package repository

import (
	"context"
	"database/sql"

	"github.com/google/uuid"
	"siscoca/internal/models"
)

type ChatMessageRepository interface {
	Create(ctx context.Context, message *models.ChatMessage) error
	ListByCampaign(ctx context.Context, campaignID string) ([]*models.ChatMessage, error)
	ListUnreadForUser(ctx context.Context, sender string) ([]*models.ChatMessage, error)
	CountUnreadByCampaign(ctx context.Context, campaignID string) (int64, error)
	CountCampaignsWithUnread(ctx context.Context, sender string) (int64, error)
	CountAllUnread(ctx context.Context) (int64, error)
	UnreadCountsByCampaign(ctx context.Context) (map[string]int64, error)
	MarkRead(ctx context.Context, id string) error
	MarkCampaignRead(ctx context.Context, campaignID string, reader string) (int64, error)
}

type chatMessageRepository struct {
	db *sql.DB
}

func NewChatMessageRepository(db *sql.DB) ChatMessageRepository {
	return &chatMessageRepository{db: db}
}

const chatMessageColumns = `id, campaign_id, sender, message, urgent, read, created_at`

func scanChatMessage(row rowScanner) (*models.ChatMessage, error) {
	var m models.ChatMessage
	err := row.Scan(&m.ID, &m.CampaignID, &m.Sender, &m.Message, &m.Urgent, &m.Read, &m.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &m, nil
}

func (r *chatMessageRepository) Create(ctx context.Context, message *models.ChatMessage) error {
	if message.ID == "" {
		message.ID = uuid.NewString()
	}

	query := `
		INSERT INTO chat_messages (id, campaign_id, sender, message, urgent, read)
		VALUES ($1, $2, $3, $4, $5, FALSE)
		RETURNING created_at
	`
	return r.db.QueryRowContext(ctx, query,
		message.ID, message.CampaignID, message.Sender, message.Message, message.Urgent,
	).Scan(&message.CreatedAt)
}

func (r *chatMessageRepository) ListByCampaign(ctx context.Context, campaignID string) ([]*models.ChatMessage, error) {
	query := `SELECT ` + chatMessageColumns + ` FROM chat_messages WHERE campaign_id = $1 ORDER BY created_at ASC`
	return r.list(ctx, query, campaignID)
}

// ListUnreadForUser returns unread messages from everyone except the user;
// your own messages are never unread for you.
func (r *chatMessageRepository) ListUnreadForUser(ctx context.Context, sender string) ([]*models.ChatMessage, error) {
	query := `SELECT ` + chatMessageColumns + ` FROM chat_messages WHERE read = FALSE AND sender <> $1 ORDER BY created_at ASC`
	return r.list(ctx, query, sender)
}

func (r *chatMessageRepository) list(ctx context.Context, query string, args ...any) ([]*models.ChatMessage, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var messages []*models.ChatMessage
	for rows.Next() {
		m, err := scanChatMessage(rows)
		if err != nil {
			return nil, err
		}
		messages = append(messages, m)
	}
	return messages, rows.Err()
}

func (r *chatMessageRepository) CountUnreadByCampaign(ctx context.Context, campaignID string) (int64, error) {
	var count int64
	err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM chat_messages WHERE campaign_id = $1 AND read = FALSE`,
		campaignID,
	).Scan(&count)
	return count, err
}

// CountCampaignsWithUnread counts distinct campaigns holding messages the
// user has not read. Feeds the header badge.
func (r *chatMessageRepository) CountCampaignsWithUnread(ctx context.Context, sender string) (int64, error) {
	var count int64
	err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(DISTINCT campaign_id) FROM chat_messages WHERE read = FALSE AND sender <> $1`,
		sender,
	).Scan(&count)
	return count, err
}

func (r *chatMessageRepository) CountAllUnread(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM chat_messages WHERE read = FALSE`).Scan(&count)
	return count, err
}

// UnreadCountsByCampaign fetches every campaign's unread count in one query.
func (r *chatMessageRepository) UnreadCountsByCampaign(ctx context.Context) (map[string]int64, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT campaign_id, COUNT(*) FROM chat_messages WHERE read = FALSE GROUP BY campaign_id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	counts := make(map[string]int64)
	for rows.Next() {
		var campaignID string
		var count int64
		if err := rows.Scan(&campaignID, &count); err != nil {
			return nil, err
		}
		counts[campaignID] = count
	}
	return counts, rows.Err()
}

func (r *chatMessageRepository) MarkRead(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `UPDATE chat_messages SET read = TRUE WHERE id = $1`, id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// MarkCampaignRead marks the campaign's messages read, skipping the reader's
// own messages, and reports how many changed.
func (r *chatMessageRepository) MarkCampaignRead(ctx context.Context, campaignID string, reader string) (int64, error) {
	res, err := r.db.ExecContext(ctx,
		`UPDATE chat_messages SET read = TRUE WHERE campaign_id = $1 AND read = FALSE AND sender <> $2`,
		campaignID, reader,
	)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
