package handlers

import (
	"context"
	"database/sql"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"

	"siscoca/internal/middleware"
	"siscoca/internal/models"
	"siscoca/internal/repository"
)

type mockChatRepo struct {
	messages    []*models.ChatMessage
	markedRead  []string
	readAllArgs []string // campaignID, reader pairs
}

var _ repository.ChatMessageRepository = (*mockChatRepo)(nil)

func (m *mockChatRepo) Create(ctx context.Context, message *models.ChatMessage) error {
	message.ID = "msg-1"
	m.messages = append(m.messages, message)
	return nil
}

func (m *mockChatRepo) ListByCampaign(ctx context.Context, campaignID string) ([]*models.ChatMessage, error) {
	var out []*models.ChatMessage
	for _, msg := range m.messages {
		if msg.CampaignID == campaignID {
			out = append(out, msg)
		}
	}
	return out, nil
}

func (m *mockChatRepo) ListUnreadForUser(ctx context.Context, sender string) ([]*models.ChatMessage, error) {
	var out []*models.ChatMessage
	for _, msg := range m.messages {
		if !msg.Read && msg.Sender != sender {
			out = append(out, msg)
		}
	}
	return out, nil
}

func (m *mockChatRepo) CountUnreadByCampaign(ctx context.Context, campaignID string) (int64, error) {
	var n int64
	for _, msg := range m.messages {
		if msg.CampaignID == campaignID && !msg.Read {
			n++
		}
	}
	return n, nil
}

func (m *mockChatRepo) CountCampaignsWithUnread(ctx context.Context, sender string) (int64, error) {
	seen := map[string]bool{}
	for _, msg := range m.messages {
		if !msg.Read && msg.Sender != sender {
			seen[msg.CampaignID] = true
		}
	}
	return int64(len(seen)), nil
}

func (m *mockChatRepo) CountAllUnread(ctx context.Context) (int64, error) {
	var n int64
	for _, msg := range m.messages {
		if !msg.Read {
			n++
		}
	}
	return n, nil
}

func (m *mockChatRepo) UnreadCountsByCampaign(ctx context.Context) (map[string]int64, error) {
	counts := map[string]int64{}
	for _, msg := range m.messages {
		if !msg.Read {
			counts[msg.CampaignID]++
		}
	}
	return counts, nil
}

func (m *mockChatRepo) MarkRead(ctx context.Context, id string) error {
	for _, msg := range m.messages {
		if msg.ID == id {
			msg.Read = true
			m.markedRead = append(m.markedRead, id)
			return nil
		}
	}
	return sql.ErrNoRows
}

func (m *mockChatRepo) MarkCampaignRead(ctx context.Context, campaignID string, reader string) (int64, error) {
	m.readAllArgs = append(m.readAllArgs, campaignID, reader)
	var n int64
	for _, msg := range m.messages {
		if msg.CampaignID == campaignID && !msg.Read && msg.Sender != reader {
			msg.Read = true
			n++
		}
	}
	return n, nil
}

func setupChatRouter(chat *mockChatRepo, campaigns *mockCampaignRepo, actor string) *chi.Mux {
	h := NewChatHandler(chat, campaigns, nil)
	r := chi.NewRouter()
	if actor != "" {
		r.Use(func(next http.Handler) http.Handler {
			return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
				ctx := context.WithValue(req.Context(), middleware.CtxName, actor)
				next.ServeHTTP(w, req.WithContext(ctx))
			})
		})
	}
	r.Post("/chat/send", h.SendMessage)
	r.Get("/chat/unread", h.GetUnreadCount)
	r.Get("/chat/unread/by-campaign", h.GetUnreadCountsByCampaign)
	r.Get("/chat/campaign/{campaignID}", h.ListByCampaign)
	r.Put("/chat/campaign/{campaignID}/read-all", h.MarkCampaignRead)
	r.Put("/chat/messages/{id}/read", h.MarkMessageRead)
	return r
}

func TestSendMessageCreatesUnread(t *testing.T) {
	chat := &mockChatRepo{}
	campaigns := &mockCampaignRepo{campaign: newTestCampaign()}
	r := setupChatRouter(chat, campaigns, "Gabriela")

	body := `{"campaign_id": "c1", "message": "please refresh the creative", "urgent": true}`
	req := httptest.NewRequest(http.MethodPost, "/chat/send", strings.NewReader(body))
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusCreated {
		t.Fatalf("expected 201 got %d (%s)", w.Code, w.Body.String())
	}
	var resp models.ChatMessage
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if resp.Sender != "Gabriela" || !resp.Urgent || resp.Read {
		t.Fatalf("unexpected message %+v", resp)
	}
}

func TestSendMessageToMissingCampaign(t *testing.T) {
	r := setupChatRouter(&mockChatRepo{}, &mockCampaignRepo{}, "Gabriela")

	body := `{"campaign_id": "nope", "message": "hello"}`
	req := httptest.NewRequest(http.MethodPost, "/chat/send", strings.NewReader(body))
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusNotFound {
		t.Fatalf("expected 404 got %d (%s)", w.Code, w.Body.String())
	}
}

func TestUnreadCountExcludesOwnMessages(t *testing.T) {
	chat := &mockChatRepo{messages: []*models.ChatMessage{
		{ID: "m1", CampaignID: "c1", Sender: "Gabriela", Message: "mine"},
		{ID: "m2", CampaignID: "c1", Sender: "Juan", Message: "theirs"},
		{ID: "m3", CampaignID: "c2", Sender: "Juan", Message: "theirs too", Read: true},
	}}
	r := setupChatRouter(chat, &mockCampaignRepo{campaign: newTestCampaign()}, "Gabriela")

	req := httptest.NewRequest(http.MethodGet, "/chat/unread", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d (%s)", w.Code, w.Body.String())
	}
	var resp map[string]int64
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	// Only Juan's unread message on c1 counts; m1 is Gabriela's own and m3
	// is already read.
	if resp["unread"] != 1 {
		t.Fatalf("expected 1 campaign with unread messages, got %d", resp["unread"])
	}
}

func TestMarkCampaignReadSkipsOwnMessages(t *testing.T) {
	chat := &mockChatRepo{messages: []*models.ChatMessage{
		{ID: "m1", CampaignID: "c1", Sender: "Gabriela", Message: "mine"},
		{ID: "m2", CampaignID: "c1", Sender: "Juan", Message: "theirs"},
	}}
	r := setupChatRouter(chat, &mockCampaignRepo{campaign: newTestCampaign()}, "Gabriela")

	req := httptest.NewRequest(http.MethodPut, "/chat/campaign/c1/read-all", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d (%s)", w.Code, w.Body.String())
	}
	var resp map[string]int64
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if resp["marked"] != 1 {
		t.Fatalf("expected 1 message marked, got %d", resp["marked"])
	}
	if chat.messages[0].Read {
		t.Fatal("reader's own message must stay unread for others")
	}
	if !chat.messages[1].Read {
		t.Fatal("expected the other sender's message to be marked read")
	}
}

func TestUnreadCountsByCampaign(t *testing.T) {
	chat := &mockChatRepo{messages: []*models.ChatMessage{
		{ID: "m1", CampaignID: "c1", Sender: "Juan"},
		{ID: "m2", CampaignID: "c1", Sender: "Juan"},
		{ID: "m3", CampaignID: "c2", Sender: "Juan"},
	}}
	r := setupChatRouter(chat, &mockCampaignRepo{}, "Gabriela")

	req := httptest.NewRequest(http.MethodGet, "/chat/unread/by-campaign", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d (%s)", w.Code, w.Body.String())
	}
	var resp map[string]int64
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if resp["c1"] != 2 || resp["c2"] != 1 {
		t.Fatalf("unexpected counts %v", resp)
	}
}
