// internal/handlers/creative_handler.go
package handlers

import (
	"database/sql"
	"encoding/base64"
	"encoding/json"
	"log"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"siscoca/internal/config"
	"siscoca/internal/interfaces"
	"siscoca/internal/middleware"
	"siscoca/internal/models"
	"siscoca/internal/repository"
	"siscoca/internal/services"
)

type CreativeHandler struct {
	repo          repository.CreativeRepository
	campaignRepo  interfaces.CampaignRepository
	audit         *services.AuditLogger
	s3Client      *s3.Client
	bucket        string
	publicBaseURL string
	validator     *validator.Validate
}

// NewCreativeHandler wires creative storage. s3Config may be nil; uploads are
// rejected then but URL and inline creatives still work.
func NewCreativeHandler(repo repository.CreativeRepository, campaignRepo interfaces.CampaignRepository, s3Config *config.S3Config, audit *services.AuditLogger) *CreativeHandler {
	h := &CreativeHandler{
		repo:         repo,
		campaignRepo: campaignRepo,
		audit:        audit,
		validator:    validator.New(),
	}
	if s3Config != nil {
		h.s3Client = s3Config.Client
		h.bucket = s3Config.Bucket
		h.publicBaseURL = s3Config.PublicBaseURL
	}
	return h
}

// CreateCreative handles POST /api/v1/campaigns/{id}/creatives with a JSON
// body carrying either a base64 file or an external URL.
func (h *CreativeHandler) CreateCreative(w http.ResponseWriter, r *http.Request) {
	campaignID := chi.URLParam(r, "id")

	var req models.CreateCreativeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSONErrorResponse(w, http.StatusBadRequest, "invalid_request", "Invalid request body")
		return
	}
	if err := h.validator.Struct(req); err != nil {
		writeJSONErrorResponse(w, http.StatusBadRequest, "validation_error", err.Error())
		return
	}
	if req.File == "" && req.ExternalURL == "" {
		writeJSONErrorResponse(w, http.StatusBadRequest, "validation_error", "Either file or external_url is required")
		return
	}

	campaign, err := h.campaignRepo.GetByID(r.Context(), campaignID)
	if err != nil {
		if err == sql.ErrNoRows {
			writeJSONErrorResponse(w, http.StatusNotFound, "not_found", "Campaign not found")
			return
		}
		writeJSONErrorResponse(w, http.StatusInternalServerError, "fetch_campaign_failed", "Failed to fetch campaign")
		return
	}

	active := true
	if req.Active != nil {
		active = *req.Active
	}
	if active {
		if ok := h.checkActiveCap(w, r, campaignID); !ok {
			return
		}
	}

	creative := &models.Creative{
		ID:          uuid.NewString(),
		CampaignID:  campaignID,
		File:        req.File,
		FileName:    req.FileName,
		ExternalURL: req.ExternalURL,
		Active:      active,
	}
	if req.Order != nil {
		creative.Order = *req.Order
	}

	if err := h.repo.Create(r.Context(), creative); err != nil {
		log.Println("Error creating creative:", err)
		writeJSONErrorResponse(w, http.StatusInternalServerError, "create_creative_failed", "Failed to create creative")
		return
	}

	h.syncCampaignState(r, campaign)

	h.audit.Record(r.Context(), models.AuditEntityCreatives, "create", creative.ID,
		"Added creative to campaign "+campaign.Name, middleware.ActorFromContext(r.Context()), nil)

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(creative)
}

// UploadCreatives handles POST /api/v1/campaigns/{id}/creatives/upload,
// sending multipart files to S3.
func (h *CreativeHandler) UploadCreatives(w http.ResponseWriter, r *http.Request) {
	campaignID := chi.URLParam(r, "id")

	if h.s3Client == nil || h.bucket == "" {
		writeJSONErrorResponse(w, http.StatusServiceUnavailable, "storage_unavailable", "File storage is not configured")
		return
	}

	const maxMemory = 32 << 20
	if err := r.ParseMultipartForm(maxMemory); err != nil {
		writeJSONErrorResponse(w, http.StatusBadRequest, "invalid_request", "Failed to parse form")
		return
	}

	campaign, err := h.campaignRepo.GetByID(r.Context(), campaignID)
	if err != nil {
		if err == sql.ErrNoRows {
			writeJSONErrorResponse(w, http.StatusNotFound, "not_found", "Campaign not found")
			return
		}
		writeJSONErrorResponse(w, http.StatusInternalServerError, "fetch_campaign_failed", "Failed to fetch campaign")
		return
	}

	files := r.MultipartForm.File["files"]
	if len(files) == 0 {
		writeJSONErrorResponse(w, http.StatusBadRequest, "validation_error", "No files uploaded")
		return
	}

	activeCount, err := h.repo.CountActiveByCampaign(r.Context(), campaignID)
	if err != nil {
		writeJSONErrorResponse(w, http.StatusInternalServerError, "count_creatives_failed", "Failed to count active creatives")
		return
	}
	if activeCount+len(files) > models.MaxActiveCreatives {
		writeJSONErrorResponse(w, http.StatusUnprocessableEntity, "too_many_creatives",
			"A campaign can have at most 5 active creatives")
		return
	}

	var uploaded []*models.Creative
	uploader := manager.NewUploader(h.s3Client)

	for _, fileHeader := range files {
		file, err := fileHeader.Open()
		if err != nil {
			log.Printf("Failed to open file %s: %v", fileHeader.Filename, err)
			continue
		}

		creative := &models.Creative{
			ID:         uuid.NewString(),
			CampaignID: campaignID,
			FileName:   fileHeader.Filename,
			Active:     true,
			Order:      activeCount + len(uploaded),
		}

		key := filepath.Join("creatives", creative.ID+filepath.Ext(fileHeader.Filename))
		_, err = uploader.Upload(r.Context(), &s3.PutObjectInput{
			Bucket: aws.String(h.bucket),
			Key:    aws.String(key),
			Body:   file,
		})
		file.Close()
		if err != nil {
			log.Printf("Failed to upload file %s to S3: %v", fileHeader.Filename, err)
			continue
		}

		creative.StorageURL = strings.TrimRight(h.publicBaseURL, "/") + "/" + key

		if err := h.repo.Create(r.Context(), creative); err != nil {
			log.Printf("Failed to save creative %s: %v", fileHeader.Filename, err)
			continue
		}
		uploaded = append(uploaded, creative)
	}

	if len(uploaded) == 0 {
		writeJSONErrorResponse(w, http.StatusInternalServerError, "upload_failed", "Failed to upload any files")
		return
	}

	h.syncCampaignState(r, campaign)

	h.audit.Record(r.Context(), models.AuditEntityCreatives, "upload", campaignID,
		"Uploaded creatives to campaign "+campaign.Name, middleware.ActorFromContext(r.Context()), nil)

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(uploaded)
}

// ListCreatives handles GET /api/v1/campaigns/{id}/creatives
func (h *CreativeHandler) ListCreatives(w http.ResponseWriter, r *http.Request) {
	campaignID := chi.URLParam(r, "id")

	var (
		creatives []*models.Creative
		err       error
	)
	if raw := r.URL.Query().Get("active"); raw != "" {
		creatives, err = h.repo.ListByCampaignAndActive(r.Context(), campaignID, raw == "true")
	} else {
		creatives, err = h.repo.ListByCampaign(r.Context(), campaignID)
	}
	if err != nil {
		writeJSONErrorResponse(w, http.StatusInternalServerError, "list_creatives_failed", "Failed to list creatives")
		return
	}
	if creatives == nil {
		creatives = []*models.Creative{}
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(creatives)
}

// UpdateCreative handles PATCH /api/v1/creatives/{id}
func (h *CreativeHandler) UpdateCreative(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var req models.UpdateCreativeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSONErrorResponse(w, http.StatusBadRequest, "invalid_request", "Invalid request body")
		return
	}
	if err := h.validator.Struct(req); err != nil {
		writeJSONErrorResponse(w, http.StatusBadRequest, "validation_error", err.Error())
		return
	}

	creative, err := h.repo.GetByID(r.Context(), id)
	if err != nil {
		if err == sql.ErrNoRows {
			writeJSONErrorResponse(w, http.StatusNotFound, "not_found", "Creative not found")
			return
		}
		writeJSONErrorResponse(w, http.StatusInternalServerError, "fetch_creative_failed", "Failed to fetch creative")
		return
	}

	if req.Active != nil && *req.Active && !creative.Active {
		if ok := h.checkActiveCap(w, r, creative.CampaignID); !ok {
			return
		}
	}

	if err := h.repo.Update(r.Context(), id, &req); err != nil {
		writeJSONErrorResponse(w, http.StatusInternalServerError, "update_creative_failed", "Failed to update creative")
		return
	}

	updated, err := h.repo.GetByID(r.Context(), id)
	if err != nil {
		writeJSONErrorResponse(w, http.StatusInternalServerError, "fetch_creative_failed", "Failed to fetch creative")
		return
	}

	h.audit.Record(r.Context(), models.AuditEntityCreatives, "update", id,
		"Updated creative", middleware.ActorFromContext(r.Context()), req)

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(updated)
}

// ActivateCreative handles POST /api/v1/creatives/{id}/activate
func (h *CreativeHandler) ActivateCreative(w http.ResponseWriter, r *http.Request) {
	h.setCreativeActive(w, r, true)
}

// DiscardCreative handles POST /api/v1/creatives/{id}/discard
func (h *CreativeHandler) DiscardCreative(w http.ResponseWriter, r *http.Request) {
	h.setCreativeActive(w, r, false)
}

func (h *CreativeHandler) setCreativeActive(w http.ResponseWriter, r *http.Request, active bool) {
	id := chi.URLParam(r, "id")

	creative, err := h.repo.GetByID(r.Context(), id)
	if err != nil {
		if err == sql.ErrNoRows {
			writeJSONErrorResponse(w, http.StatusNotFound, "not_found", "Creative not found")
			return
		}
		writeJSONErrorResponse(w, http.StatusInternalServerError, "fetch_creative_failed", "Failed to fetch creative")
		return
	}

	if active && !creative.Active {
		if ok := h.checkActiveCap(w, r, creative.CampaignID); !ok {
			return
		}
	}

	if err := h.repo.SetActive(r.Context(), id, active); err != nil {
		writeJSONErrorResponse(w, http.StatusInternalServerError, "update_creative_failed", "Failed to update creative")
		return
	}
	creative.Active = active

	if campaign, err := h.campaignRepo.GetByID(r.Context(), creative.CampaignID); err == nil {
		h.syncCampaignState(r, campaign)
	}

	action := "discard"
	summary := "Discarded creative"
	if active {
		action = "activate"
		summary = "Activated creative"
	}
	h.audit.Record(r.Context(), models.AuditEntityCreatives, action, id,
		summary, middleware.ActorFromContext(r.Context()), nil)

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(creative)
}

// SetCreativeOrder handles PATCH /api/v1/creatives/{id}/order
func (h *CreativeHandler) SetCreativeOrder(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var req struct {
		Order int `json:"order" validate:"min=0"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSONErrorResponse(w, http.StatusBadRequest, "invalid_request", "Invalid request body")
		return
	}
	if err := h.validator.Struct(req); err != nil {
		writeJSONErrorResponse(w, http.StatusBadRequest, "validation_error", err.Error())
		return
	}

	if err := h.repo.SetOrder(r.Context(), id, req.Order); err != nil {
		if err == sql.ErrNoRows {
			writeJSONErrorResponse(w, http.StatusNotFound, "not_found", "Creative not found")
			return
		}
		writeJSONErrorResponse(w, http.StatusInternalServerError, "update_creative_failed", "Failed to update creative order")
		return
	}

	writeJSONMessage(w, http.StatusOK, "Creative order updated")
}

// DownloadCreative handles GET /api/v1/creatives/{id}/download. Inline files
// are decoded and served; stored or external files redirect.
func (h *CreativeHandler) DownloadCreative(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	creative, err := h.repo.GetByID(r.Context(), id)
	if err != nil {
		if err == sql.ErrNoRows {
			writeJSONErrorResponse(w, http.StatusNotFound, "not_found", "Creative not found")
			return
		}
		writeJSONErrorResponse(w, http.StatusInternalServerError, "fetch_creative_failed", "Failed to fetch creative")
		return
	}

	switch {
	case creative.File != "":
		payload := creative.File
		// Tolerate data-URI prefixes from browser uploads.
		if i := strings.Index(payload, ";base64,"); i >= 0 {
			payload = payload[i+len(";base64,"):]
		}
		data, err := base64.StdEncoding.DecodeString(payload)
		if err != nil {
			writeJSONErrorResponse(w, http.StatusInternalServerError, "decode_failed", "Failed to decode creative file")
			return
		}
		name := creative.FileName
		if name == "" {
			name = creative.ID
		}
		w.Header().Set("Content-Type", "application/octet-stream")
		w.Header().Set("Content-Disposition", `attachment; filename="`+name+`"`)
		w.Write(data)
	case creative.StorageURL != "":
		http.Redirect(w, r, creative.StorageURL, http.StatusFound)
	case creative.ExternalURL != "":
		http.Redirect(w, r, creative.ExternalURL, http.StatusFound)
	default:
		writeJSONErrorResponse(w, http.StatusNotFound, "no_payload", "Creative has no file or URL")
	}
}

// DeleteCreative handles DELETE /api/v1/creatives/{id}
func (h *CreativeHandler) DeleteCreative(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	creative, err := h.repo.GetByID(r.Context(), id)
	if err != nil {
		if err == sql.ErrNoRows {
			writeJSONErrorResponse(w, http.StatusNotFound, "not_found", "Creative not found")
			return
		}
		writeJSONErrorResponse(w, http.StatusInternalServerError, "fetch_creative_failed", "Failed to fetch creative")
		return
	}

	if err := h.repo.Delete(r.Context(), id); err != nil {
		writeJSONErrorResponse(w, http.StatusInternalServerError, "delete_creative_failed", "Failed to delete creative")
		return
	}

	if campaign, err := h.campaignRepo.GetByID(r.Context(), creative.CampaignID); err == nil {
		h.syncCampaignState(r, campaign)
	}

	h.audit.Record(r.Context(), models.AuditEntityCreatives, "delete", id,
		"Deleted creative", middleware.ActorFromContext(r.Context()), nil)

	writeJSONMessage(w, http.StatusOK, "Creative deleted")
}

// SyncCampaignState handles POST /api/v1/campaigns/{id}/creatives/sync-state
func (h *CreativeHandler) SyncCampaignState(w http.ResponseWriter, r *http.Request) {
	campaignID := chi.URLParam(r, "id")

	campaign, err := h.campaignRepo.GetByID(r.Context(), campaignID)
	if err != nil {
		if err == sql.ErrNoRows {
			writeJSONErrorResponse(w, http.StatusNotFound, "not_found", "Campaign not found")
			return
		}
		writeJSONErrorResponse(w, http.StatusInternalServerError, "fetch_campaign_failed", "Failed to fetch campaign")
		return
	}

	h.syncCampaignState(r, campaign)

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(campaign)
}

// checkActiveCap rejects when a campaign already carries the maximum number
// of active creatives. Returns false after writing the error response.
func (h *CreativeHandler) checkActiveCap(w http.ResponseWriter, r *http.Request, campaignID string) bool {
	count, err := h.repo.CountActiveByCampaign(r.Context(), campaignID)
	if err != nil {
		writeJSONErrorResponse(w, http.StatusInternalServerError, "count_creatives_failed", "Failed to count active creatives")
		return false
	}
	if count >= models.MaxActiveCreatives {
		writeJSONErrorResponse(w, http.StatusUnprocessableEntity, "too_many_creatives",
			"A campaign can have at most 5 active creatives")
		return false
	}
	return true
}

// syncCampaignState aligns the campaign lifecycle with its active creatives:
// a pending campaign with active creatives moves to creative_sent, and a
// campaign whose creatives were all discarded falls back to pending.
func (h *CreativeHandler) syncCampaignState(r *http.Request, campaign *models.Campaign) {
	count, err := h.repo.CountActiveByCampaign(r.Context(), campaign.ID)
	if err != nil {
		log.Println("Error counting active creatives:", err)
		return
	}

	var next models.CampaignState
	switch {
	case count > 0 && campaign.State == models.CampaignStatePending:
		next = models.CampaignStateCreativeSent
	case count == 0 && (campaign.State == models.CampaignStateCreativeSent || campaign.State == models.CampaignStateActive):
		next = models.CampaignStatePending
	default:
		return
	}

	if err := h.campaignRepo.UpdateState(r.Context(), campaign.ID, next); err != nil {
		log.Println("Error syncing campaign state:", err)
		return
	}
	campaign.State = next
}
