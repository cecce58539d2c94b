// internal/handlers/chat_handler.go
package handlers

import (
	"database/sql"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"siscoca/internal/interfaces"
	"siscoca/internal/middleware"
	"siscoca/internal/models"
	"siscoca/internal/repository"
	"siscoca/internal/services"
)

// ChatHandler serves the per-campaign discussion thread and the unread
// counters the client polls for its header badge.
type ChatHandler struct {
	repo      repository.ChatMessageRepository
	campaigns interfaces.CampaignRepository
	audit     *services.AuditLogger
	validator *validator.Validate
}

func NewChatHandler(repo repository.ChatMessageRepository, campaigns interfaces.CampaignRepository, audit *services.AuditLogger) *ChatHandler {
	return &ChatHandler{
		repo:      repo,
		campaigns: campaigns,
		audit:     audit,
		validator: validator.New(),
	}
}

// SendMessage handles POST /api/v1/chat/send
func (h *ChatHandler) SendMessage(w http.ResponseWriter, r *http.Request) {
	var req models.SendChatMessageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSONErrorResponse(w, http.StatusBadRequest, "invalid_request", "Invalid request body")
		return
	}
	if err := h.validator.Struct(&req); err != nil {
		writeJSONErrorResponse(w, http.StatusBadRequest, "validation_failed", err.Error())
		return
	}

	if _, err := h.campaigns.GetByID(r.Context(), req.CampaignID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			writeJSONErrorResponse(w, http.StatusNotFound, "campaign_not_found", "Campaign not found")
			return
		}
		writeJSONErrorResponse(w, http.StatusInternalServerError, "fetch_campaign_failed", "Failed to fetch campaign")
		return
	}

	message := &models.ChatMessage{
		CampaignID: req.CampaignID,
		Sender:     middleware.ActorFromContext(r.Context()),
		Message:    req.Message,
		Urgent:     req.Urgent,
	}
	if err := h.repo.Create(r.Context(), message); err != nil {
		writeJSONErrorResponse(w, http.StatusInternalServerError, "send_message_failed", "Failed to send message")
		return
	}

	h.audit.Record(r.Context(), models.AuditEntityChat, "send", message.ID,
		"Message sent to campaign", message.Sender,
		map[string]any{"campaign_id": message.CampaignID, "urgent": message.Urgent})

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(message)
}

// ListByCampaign handles GET /api/v1/chat/campaign/{campaignID}
func (h *ChatHandler) ListByCampaign(w http.ResponseWriter, r *http.Request) {
	messages, err := h.repo.ListByCampaign(r.Context(), chi.URLParam(r, "campaignID"))
	if err != nil {
		writeJSONErrorResponse(w, http.StatusInternalServerError, "list_messages_failed", "Failed to list messages")
		return
	}
	if messages == nil {
		messages = []*models.ChatMessage{}
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(messages)
}

// MarkMessageRead handles PUT /api/v1/chat/messages/{id}/read
func (h *ChatHandler) MarkMessageRead(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := h.repo.MarkRead(r.Context(), id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			writeJSONErrorResponse(w, http.StatusNotFound, "message_not_found", "Message not found")
			return
		}
		writeJSONErrorResponse(w, http.StatusInternalServerError, "mark_read_failed", "Failed to mark message as read")
		return
	}
	writeJSONMessage(w, http.StatusOK, "Message marked as read")
}

// MarkCampaignRead handles PUT /api/v1/chat/campaign/{campaignID}/read-all.
// The reader's own messages stay untouched.
func (h *ChatHandler) MarkCampaignRead(w http.ResponseWriter, r *http.Request) {
	campaignID := chi.URLParam(r, "campaignID")
	reader := middleware.ActorFromContext(r.Context())

	marked, err := h.repo.MarkCampaignRead(r.Context(), campaignID, reader)
	if err != nil {
		writeJSONErrorResponse(w, http.StatusInternalServerError, "mark_read_failed", "Failed to mark messages as read")
		return
	}

	if marked > 0 {
		h.audit.Record(r.Context(), models.AuditEntityChat, "read_all", campaignID,
			"Campaign messages marked as read", reader, map[string]any{"marked": marked})
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]int64{"marked": marked})
}

// GetUnreadCount handles GET /api/v1/chat/unread: the number of campaigns
// with messages the caller has not read, polled by the header badge.
func (h *ChatHandler) GetUnreadCount(w http.ResponseWriter, r *http.Request) {
	count, err := h.repo.CountCampaignsWithUnread(r.Context(), middleware.ActorFromContext(r.Context()))
	if err != nil {
		writeJSONErrorResponse(w, http.StatusInternalServerError, "count_unread_failed", "Failed to count unread messages")
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]int64{"unread": count})
}

// GetCampaignUnreadCount handles GET /api/v1/chat/campaign/{campaignID}/unread
func (h *ChatHandler) GetCampaignUnreadCount(w http.ResponseWriter, r *http.Request) {
	count, err := h.repo.CountUnreadByCampaign(r.Context(), chi.URLParam(r, "campaignID"))
	if err != nil {
		writeJSONErrorResponse(w, http.StatusInternalServerError, "count_unread_failed", "Failed to count unread messages")
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]int64{"unread": count})
}

// ListUnreadMessages handles GET /api/v1/chat/unread/messages
func (h *ChatHandler) ListUnreadMessages(w http.ResponseWriter, r *http.Request) {
	messages, err := h.repo.ListUnreadForUser(r.Context(), middleware.ActorFromContext(r.Context()))
	if err != nil {
		writeJSONErrorResponse(w, http.StatusInternalServerError, "list_messages_failed", "Failed to list unread messages")
		return
	}
	if messages == nil {
		messages = []*models.ChatMessage{}
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(messages)
}

// GetUnreadCountsByCampaign handles GET /api/v1/chat/unread/by-campaign,
// one query for every campaign badge in the list view.
func (h *ChatHandler) GetUnreadCountsByCampaign(w http.ResponseWriter, r *http.Request) {
	counts, err := h.repo.UnreadCountsByCampaign(r.Context())
	if err != nil {
		writeJSONErrorResponse(w, http.StatusInternalServerError, "count_unread_failed", "Failed to count unread messages")
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(counts)
}
