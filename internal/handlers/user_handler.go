// internal/handlers/user_handler.go
package handlers

import (
	"database/sql"
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"siscoca/internal/interfaces"
	"siscoca/internal/middleware"
	"siscoca/internal/models"
	"siscoca/internal/repository"
	"siscoca/internal/services"
)

type UserHandler struct {
	users     repository.UserRepository
	campaigns interfaces.CampaignRepository
	audit     *services.AuditLogger
	v         *validator.Validate
}

func NewUserHandler(users repository.UserRepository, campaigns interfaces.CampaignRepository, audit *services.AuditLogger) *UserHandler {
	return &UserHandler{
		users:     users,
		campaigns: campaigns,
		audit:     audit,
		v:         validator.New(),
	}
}

// CreateUser handles POST /api/v1/users (admin only)
func (h *UserHandler) CreateUser(w http.ResponseWriter, r *http.Request) {
	var req models.CreateUserRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSONErrorResponse(w, http.StatusBadRequest, "invalid_request", "Invalid request body")
		return
	}
	if err := h.v.Struct(req); err != nil {
		writeJSONErrorResponse(w, http.StatusBadRequest, "validation_error", err.Error())
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		writeJSONErrorResponse(w, http.StatusInternalServerError, "create_user_failed", "Failed to create user")
		return
	}

	initials := req.Initials
	if initials == "" {
		initials = models.InitialsFromName(req.Name)
	}

	u := &models.User{
		ID:           uuid.NewString(),
		Email:        req.Email,
		Name:         req.Name,
		Initials:     initials,
		Role:         models.Role(req.Role),
		PasswordHash: string(hash),
		CreatedAt:    time.Now().UTC(),
	}

	if err := h.users.Create(r.Context(), u); err != nil {
		writeJSONErrorResponse(w, http.StatusInternalServerError, "create_user_failed", "Failed to create user")
		return
	}

	h.audit.Record(r.Context(), models.AuditEntityUsers, "create", u.ID,
		"Created user "+u.Email, middleware.ActorFromContext(r.Context()), nil)

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(u)
}

// GetUser handles GET /api/v1/users/{id}
func (h *UserHandler) GetUser(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	u, err := h.users.GetByID(r.Context(), id)
	if err != nil {
		if err == sql.ErrNoRows {
			writeJSONErrorResponse(w, http.StatusNotFound, "not_found", "User not found")
			return
		}
		writeJSONErrorResponse(w, http.StatusInternalServerError, "fetch_user_failed", "Failed to fetch user")
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(u)
}

// GetCurrentUser handles GET /api/v1/users/me
func (h *UserHandler) GetCurrentUser(w http.ResponseWriter, r *http.Request) {
	userID, _ := r.Context().Value(middleware.CtxUserID).(string)
	if userID == "" {
		writeJSONErrorResponse(w, http.StatusUnauthorized, "unauthorized", "Missing authenticated user")
		return
	}

	u, err := h.users.GetByID(r.Context(), userID)
	if err != nil {
		writeJSONErrorResponse(w, http.StatusNotFound, "not_found", "User not found")
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(u)
}

// ListUsers handles GET /api/v1/users
func (h *UserHandler) ListUsers(w http.ResponseWriter, r *http.Request) {
	users, err := h.users.List(r.Context(), 100, 0)
	if err != nil {
		writeJSONErrorResponse(w, http.StatusInternalServerError, "list_users_failed", "Failed to list users")
		return
	}
	if users == nil {
		users = []models.User{}
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(users)
}

// UpdateUser handles PUT /api/v1/users/{id}
func (h *UserHandler) UpdateUser(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var req models.UpdateUserRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSONErrorResponse(w, http.StatusBadRequest, "invalid_request", "Invalid request body")
		return
	}
	if err := h.v.Struct(req); err != nil {
		writeJSONErrorResponse(w, http.StatusBadRequest, "validation_error", err.Error())
		return
	}

	if err := h.users.UpdateProfile(r.Context(), id, &req); err != nil {
		if err == sql.ErrNoRows {
			writeJSONErrorResponse(w, http.StatusNotFound, "not_found", "User not found")
			return
		}
		writeJSONErrorResponse(w, http.StatusInternalServerError, "update_user_failed", "Failed to update user")
		return
	}

	u, err := h.users.GetByID(r.Context(), id)
	if err != nil {
		writeJSONErrorResponse(w, http.StatusInternalServerError, "fetch_user_failed", "Failed to fetch user")
		return
	}

	h.audit.Record(r.Context(), models.AuditEntityUsers, "update", id,
		"Updated user "+u.Email, middleware.ActorFromContext(r.Context()), req)

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(u)
}

// DeleteUser handles DELETE /api/v1/users/{id}. Deletion is blocked while the
// user still owns campaigns; the response lists the blocking references.
func (h *UserHandler) DeleteUser(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	u, err := h.users.GetByID(r.Context(), id)
	if err != nil {
		if err == sql.ErrNoRows {
			writeJSONErrorResponse(w, http.StatusNotFound, "not_found", "User not found")
			return
		}
		writeJSONErrorResponse(w, http.StatusInternalServerError, "fetch_user_failed", "Failed to fetch user")
		return
	}

	owned, err := h.campaigns.CountByOwner(r.Context(), u.Name)
	if err != nil {
		writeJSONErrorResponse(w, http.StatusInternalServerError, "delete_user_failed", "Failed to delete user")
		return
	}
	if owned > 0 {
		blocked := &interfaces.DeletionBlockedError{
			Resource:   "user",
			References: map[string]int64{"campaigns": int64(owned)},
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusConflict)
		json.NewEncoder(w).Encode(map[string]any{
			"error":      "deletion_blocked",
			"message":    "User still owns campaigns",
			"references": blocked.References,
		})
		return
	}

	if err := h.users.Delete(r.Context(), id); err != nil {
		writeJSONErrorResponse(w, http.StatusInternalServerError, "delete_user_failed", "Failed to delete user")
		return
	}

	h.audit.Record(r.Context(), models.AuditEntityUsers, "delete", id,
		"Deleted user "+u.Email, middleware.ActorFromContext(r.Context()), nil)

	writeJSONMessage(w, http.StatusOK, "User deleted")
}
