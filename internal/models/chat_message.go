// internal/models/chat_message.go
package models

import "time"

// ChatMessage is one note on a campaign's discussion thread between the
// trafficker and the campaign owner. Read is a single shared flag, not
// per-recipient; the sender's own messages never count as unread for them.
type ChatMessage struct {
	ID         string    `json:"id"`
	CampaignID string    `json:"campaign_id"`
	Sender     string    `json:"sender"`
	Message    string    `json:"message"`
	Urgent     bool      `json:"urgent"`
	Read       bool      `json:"read"`
	CreatedAt  time.Time `json:"created_at"`
}

type SendChatMessageRequest struct {
	CampaignID string `json:"campaign_id" validate:"required"`
	Message    string `json:"message" validate:"required"`
	Urgent     bool   `json:"urgent"`
}
