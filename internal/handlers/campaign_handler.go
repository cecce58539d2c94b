// internal/handlers/campaign_handler.go
package handlers

import (
	"database/sql"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/lib/pq"

	"siscoca/internal/interfaces"
	"siscoca/internal/middleware"
	"siscoca/internal/models"
	"siscoca/internal/services"
)

type CampaignHandler struct {
	repo      interfaces.CampaignRepository
	records   interfaces.WeeklyRecordRepository
	audit     *services.AuditLogger
	validator *validator.Validate
}

func NewCampaignHandler(repo interfaces.CampaignRepository, records interfaces.WeeklyRecordRepository, audit *services.AuditLogger) *CampaignHandler {
	return &CampaignHandler{
		repo:      repo,
		records:   records,
		audit:     audit,
		validator: validator.New(),
	}
}

// CreateCampaign handles POST /api/v1/campaigns
func (h *CampaignHandler) CreateCampaign(w http.ResponseWriter, r *http.Request) {
	var req models.CreateCampaignRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSONErrorResponse(w, http.StatusBadRequest, "invalid_request", "Invalid request body")
		return
	}

	if err := h.validator.Struct(req); err != nil {
		writeJSONErrorResponse(w, http.StatusBadRequest, "validation_error", err.Error())
		return
	}

	country, err := models.ParseCountry(req.Country)
	if err != nil {
		writeJSONErrorResponse(w, http.StatusBadRequest, "invalid_country", err.Error())
		return
	}
	vertical, err := models.ParseVertical(req.Vertical)
	if err != nil {
		writeJSONErrorResponse(w, http.StatusBadRequest, "invalid_vertical", err.Error())
		return
	}
	platform, err := models.ParsePlatform(req.Platform)
	if err != nil {
		writeJSONErrorResponse(w, http.StatusBadRequest, "invalid_platform", err.Error())
		return
	}
	segment, err := models.ParseSegment(req.Segment)
	if err != nil {
		writeJSONErrorResponse(w, http.StatusBadRequest, "invalid_segment", err.Error())
		return
	}

	ownerName := req.OwnerName
	if ownerName == "" {
		ownerName = middleware.ActorFromContext(r.Context())
	}
	ownerInitials := req.OwnerInitials
	if ownerInitials == "" {
		ownerInitials = models.InitialsFromName(ownerName)
	}

	campaign := &models.Campaign{
		ID:                 uuid.NewString(),
		Country:            country,
		Vertical:           vertical,
		Platform:           platform,
		Segment:            segment,
		ExternalPlatformID: req.ExternalPlatformID,
		OwnerName:          ownerName,
		OwnerInitials:      ownerInitials,
		ShortDescription:   req.ShortDescription,
		Objective:          req.Objective,
		Benefit:            req.Benefit,
		Description:        req.Description,
		LandingType:        models.LandingType(req.LandingType),
		LandingURL:         req.LandingURL,
		State:              models.CampaignStatePending,
		// New campaigns report against the week before creation.
		ISOWeek: services.PreviousISOWeek(time.Now().UTC()),
	}

	sequence, err := h.repo.Count(r.Context())
	if err != nil {
		writeJSONErrorResponse(w, http.StatusInternalServerError, "create_campaign_failed", "Failed to create campaign")
		return
	}
	campaign.Name = models.ResolveName(req.Name, "", campaign, sequence+1)

	if err := h.repo.Create(r.Context(), campaign); err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == "23505" {
			writeJSONErrorResponse(w, http.StatusConflict, "duplicate_campaign", "A campaign with that name or external ID already exists")
			return
		}
		log.Println("Error creating campaign:", err)
		writeJSONErrorResponse(w, http.StatusInternalServerError, "create_campaign_failed", "Failed to create campaign")
		return
	}

	h.audit.Record(r.Context(), models.AuditEntityCampaigns, "create", campaign.ID,
		"Created campaign "+campaign.Name, middleware.ActorFromContext(r.Context()), nil)

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(campaign)
}

// GetCampaign handles GET /api/v1/campaigns/{id}
func (h *CampaignHandler) GetCampaign(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		writeJSONErrorResponse(w, http.StatusBadRequest, "missing_id", "Campaign ID is required")
		return
	}

	campaign, err := h.repo.GetByID(r.Context(), id)
	if err != nil {
		if err == sql.ErrNoRows {
			writeJSONErrorResponse(w, http.StatusNotFound, "not_found", "Campaign not found")
			return
		}
		writeJSONErrorResponse(w, http.StatusInternalServerError, "fetch_campaign_failed", "Failed to fetch campaign")
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(campaign)
}

// ListCampaigns handles GET /api/v1/campaigns with optional state, owner,
// country, vertical and platform query filters.
func (h *CampaignHandler) ListCampaigns(w http.ResponseWriter, r *http.Request) {
	filter := interfaces.CampaignFilter{
		OwnerName: r.URL.Query().Get("owner"),
		Country:   r.URL.Query().Get("country"),
		Vertical:  r.URL.Query().Get("vertical"),
		Platform:  r.URL.Query().Get("platform"),
		Limit:     100,
	}

	if raw := r.URL.Query().Get("state"); raw != "" {
		state, err := models.ParseCampaignState(raw)
		if err != nil {
			writeJSONErrorResponse(w, http.StatusBadRequest, "invalid_state", err.Error())
			return
		}
		filter.State = string(state)
	}
	if raw := r.URL.Query().Get("limit"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil && n > 0 {
			filter.Limit = n
		}
	}
	if raw := r.URL.Query().Get("offset"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil && n > 0 {
			filter.Offset = n
		}
	}

	campaigns, err := h.repo.List(r.Context(), filter)
	if err != nil {
		writeJSONErrorResponse(w, http.StatusInternalServerError, "list_campaigns_failed", "Failed to list campaigns")
		return
	}
	if campaigns == nil {
		campaigns = []*models.Campaign{}
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(campaigns)
}

// ListCampaignsByState handles GET /api/v1/campaigns/state/{state}
func (h *CampaignHandler) ListCampaignsByState(w http.ResponseWriter, r *http.Request) {
	state, err := models.ParseCampaignState(chi.URLParam(r, "state"))
	if err != nil {
		writeJSONErrorResponse(w, http.StatusBadRequest, "invalid_state", err.Error())
		return
	}

	campaigns, err := h.repo.List(r.Context(), interfaces.CampaignFilter{State: string(state)})
	if err != nil {
		writeJSONErrorResponse(w, http.StatusInternalServerError, "list_campaigns_failed", "Failed to list campaigns")
		return
	}
	if campaigns == nil {
		campaigns = []*models.Campaign{}
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(campaigns)
}

// ListCampaignsByOwner handles GET /api/v1/campaigns/owner/{name}
func (h *CampaignHandler) ListCampaignsByOwner(w http.ResponseWriter, r *http.Request) {
	owner := chi.URLParam(r, "name")
	if owner == "" {
		writeJSONErrorResponse(w, http.StatusBadRequest, "missing_owner", "Owner name is required")
		return
	}

	campaigns, err := h.repo.List(r.Context(), interfaces.CampaignFilter{OwnerName: owner})
	if err != nil {
		writeJSONErrorResponse(w, http.StatusInternalServerError, "list_campaigns_failed", "Failed to list campaigns")
		return
	}
	if campaigns == nil {
		campaigns = []*models.Campaign{}
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(campaigns)
}

// UpdateCampaign handles PUT /api/v1/campaigns/{id}
func (h *CampaignHandler) UpdateCampaign(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		writeJSONErrorResponse(w, http.StatusBadRequest, "missing_id", "Campaign ID is required")
		return
	}

	var req models.UpdateCampaignRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSONErrorResponse(w, http.StatusBadRequest, "invalid_request", "Invalid request body")
		return
	}
	if err := h.validator.Struct(req); err != nil {
		writeJSONErrorResponse(w, http.StatusBadRequest, "validation_error", err.Error())
		return
	}

	campaign, err := h.repo.GetByID(r.Context(), id)
	if err != nil {
		if err == sql.ErrNoRows {
			writeJSONErrorResponse(w, http.StatusNotFound, "not_found", "Campaign not found")
			return
		}
		writeJSONErrorResponse(w, http.StatusInternalServerError, "fetch_campaign_failed", "Failed to fetch campaign")
		return
	}

	if req.Name != nil {
		campaign.Name = *req.Name
	}
	if req.ExternalPlatformID != nil {
		campaign.ExternalPlatformID = *req.ExternalPlatformID
	}
	if req.OwnerName != nil {
		campaign.OwnerName = *req.OwnerName
	}
	if req.OwnerInitials != nil {
		campaign.OwnerInitials = *req.OwnerInitials
	}
	if req.ShortDescription != nil {
		campaign.ShortDescription = *req.ShortDescription
	}
	if req.Objective != nil {
		campaign.Objective = *req.Objective
	}
	if req.Benefit != nil {
		campaign.Benefit = *req.Benefit
	}
	if req.Description != nil {
		campaign.Description = *req.Description
	}
	if req.LandingType != nil {
		campaign.LandingType = models.LandingType(*req.LandingType)
	}
	if req.LandingURL != nil {
		campaign.LandingURL = *req.LandingURL
	}
	if req.CreativeFile != nil {
		campaign.CreativeFile = *req.CreativeFile
	}
	if req.CreativeFileName != nil {
		campaign.CreativeFileName = *req.CreativeFileName
	}
	if req.ExternalCreativeURL != nil {
		campaign.ExternalCreativeURL = *req.ExternalCreativeURL
	}
	if req.ReportURL != nil {
		campaign.ReportURL = *req.ReportURL
	}
	if req.State != nil {
		state, err := models.ParseCampaignState(*req.State)
		if err != nil {
			writeJSONErrorResponse(w, http.StatusBadRequest, "invalid_state", err.Error())
			return
		}
		if state != campaign.State {
			if !campaign.State.CanTransitionTo(state) {
				writeJSONErrorResponse(w, http.StatusUnprocessableEntity, "invalid_transition",
					"Cannot transition from "+string(campaign.State)+" to "+string(state))
				return
			}
			campaign.State = state
		}
	}

	if err := h.repo.Update(r.Context(), id, campaign); err != nil {
		log.Println("Error updating campaign:", err)
		writeJSONErrorResponse(w, http.StatusInternalServerError, "update_campaign_failed", "Failed to update campaign")
		return
	}

	h.audit.Record(r.Context(), models.AuditEntityCampaigns, "update", campaign.ID,
		"Updated campaign "+campaign.Name, middleware.ActorFromContext(r.Context()), req)

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(campaign)
}

// DeleteCampaign handles DELETE /api/v1/campaigns/{id}
func (h *CampaignHandler) DeleteCampaign(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		writeJSONErrorResponse(w, http.StatusBadRequest, "missing_id", "Campaign ID is required")
		return
	}

	if err := h.repo.Delete(r.Context(), id); err != nil {
		if err == sql.ErrNoRows {
			writeJSONErrorResponse(w, http.StatusNotFound, "not_found", "Campaign not found")
			return
		}
		writeJSONErrorResponse(w, http.StatusInternalServerError, "delete_campaign_failed", "Failed to delete campaign")
		return
	}

	h.audit.Record(r.Context(), models.AuditEntityCampaigns, "delete", id,
		"Deleted campaign", middleware.ActorFromContext(r.Context()), nil)

	writeJSONMessage(w, http.StatusOK, "Campaign deleted")
}

// SubmitTraffickerMetrics handles PUT /api/v1/campaigns/{id}/metrics/trafficker.
// Funnel violations reject before anything is written.
func (h *CampaignHandler) SubmitTraffickerMetrics(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var req models.TraffickerMetricsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSONErrorResponse(w, http.StatusBadRequest, "invalid_request", "Invalid request body")
		return
	}
	if err := h.validator.Struct(req); err != nil {
		writeJSONErrorResponse(w, http.StatusBadRequest, "validation_error", err.Error())
		return
	}
	if err := req.Validate(); err != nil {
		writeJSONErrorResponse(w, http.StatusUnprocessableEntity, "funnel_violation", err.Error())
		return
	}

	campaign, err := h.repo.GetByID(r.Context(), id)
	if err != nil {
		if err == sql.ErrNoRows {
			writeJSONErrorResponse(w, http.StatusNotFound, "not_found", "Campaign not found")
			return
		}
		writeJSONErrorResponse(w, http.StatusInternalServerError, "fetch_campaign_failed", "Failed to fetch campaign")
		return
	}

	campaign.Reach = &req.Reach
	campaign.Clicks = &req.Clicks
	campaign.Leads = &req.Leads
	campaign.WeeklyCost = &req.WeeklyCost
	if req.CostPerLead != nil {
		campaign.CostPerLead = req.CostPerLead
	} else {
		cpl := models.CostPerLead(req.WeeklyCost, req.Leads)
		campaign.CostPerLead = &cpl
	}
	if req.ReportURL != "" {
		campaign.ReportURL = req.ReportURL
	}
	campaign.ComputeCostPerDriver()

	if err := h.repo.Update(r.Context(), id, campaign); err != nil {
		log.Println("Error saving trafficker metrics:", err)
		writeJSONErrorResponse(w, http.StatusInternalServerError, "update_metrics_failed", "Failed to save metrics")
		return
	}

	h.mirrorMetricsToHistory(r, campaign)

	h.audit.Record(r.Context(), models.AuditEntityCampaigns, "trafficker_metrics", campaign.ID,
		"Submitted trafficker metrics for "+campaign.Name, middleware.ActorFromContext(r.Context()), req)

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(campaign)
}

// SubmitOwnerMetrics handles PUT /api/v1/campaigns/{id}/metrics/owner.
// Trafficker metrics must already carry a positive weekly cost; otherwise the
// request fails before any write happens.
func (h *CampaignHandler) SubmitOwnerMetrics(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var req models.OwnerMetricsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSONErrorResponse(w, http.StatusBadRequest, "invalid_request", "Invalid request body")
		return
	}
	if err := h.validator.Struct(req); err != nil {
		writeJSONErrorResponse(w, http.StatusBadRequest, "validation_error", err.Error())
		return
	}
	if err := req.Validate(); err != nil {
		writeJSONErrorResponse(w, http.StatusUnprocessableEntity, "funnel_violation", err.Error())
		return
	}

	campaign, err := h.repo.GetByID(r.Context(), id)
	if err != nil {
		if err == sql.ErrNoRows {
			writeJSONErrorResponse(w, http.StatusNotFound, "not_found", "Campaign not found")
			return
		}
		writeJSONErrorResponse(w, http.StatusInternalServerError, "fetch_campaign_failed", "Failed to fetch campaign")
		return
	}

	if campaign.WeeklyCost == nil || *campaign.WeeklyCost <= 0 {
		writeJSONErrorResponse(w, http.StatusUnprocessableEntity, "trafficker_metrics_missing",
			models.ErrTraffickerFirst.Error())
		return
	}

	campaign.RegisteredDrivers = &req.RegisteredDrivers
	campaign.FirstTripDrivers = &req.FirstTripDrivers
	cprd := models.CostPerDriver(*campaign.WeeklyCost, req.RegisteredDrivers)
	cpft := models.CostPerDriver(*campaign.WeeklyCost, req.FirstTripDrivers)
	campaign.CostPerRegisteredDriver = &cprd
	campaign.CostPerFirstTripDriver = &cpft
	campaign.ComputeCostPerDriver()

	if err := h.repo.Update(r.Context(), id, campaign); err != nil {
		log.Println("Error saving owner metrics:", err)
		writeJSONErrorResponse(w, http.StatusInternalServerError, "update_metrics_failed", "Failed to save metrics")
		return
	}

	h.mirrorMetricsToHistory(r, campaign)

	h.audit.Record(r.Context(), models.AuditEntityCampaigns, "owner_metrics", campaign.ID,
		"Submitted owner metrics for "+campaign.Name, middleware.ActorFromContext(r.Context()), req)

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(campaign)
}

// ChangeState handles PATCH /api/v1/campaigns/{id}/state. Archiving goes
// through the same snapshot path as the archive endpoint.
func (h *CampaignHandler) ChangeState(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var req models.ChangeStateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSONErrorResponse(w, http.StatusBadRequest, "invalid_request", "Invalid request body")
		return
	}
	if err := h.validator.Struct(req); err != nil {
		writeJSONErrorResponse(w, http.StatusBadRequest, "validation_error", err.Error())
		return
	}

	next, err := models.ParseCampaignState(req.State)
	if err != nil {
		writeJSONErrorResponse(w, http.StatusBadRequest, "invalid_state", err.Error())
		return
	}

	campaign, err := h.repo.GetByID(r.Context(), id)
	if err != nil {
		if err == sql.ErrNoRows {
			writeJSONErrorResponse(w, http.StatusNotFound, "not_found", "Campaign not found")
			return
		}
		writeJSONErrorResponse(w, http.StatusInternalServerError, "fetch_campaign_failed", "Failed to fetch campaign")
		return
	}

	if !campaign.State.CanTransitionTo(next) {
		writeJSONErrorResponse(w, http.StatusUnprocessableEntity, "invalid_transition",
			"Cannot transition from "+string(campaign.State)+" to "+string(next))
		return
	}

	if next == models.CampaignStateArchived {
		h.archiveCampaign(w, r, campaign)
		return
	}

	if err := h.repo.UpdateState(r.Context(), id, next); err != nil {
		writeJSONErrorResponse(w, http.StatusInternalServerError, "update_state_failed", "Failed to update state")
		return
	}
	campaign.State = next

	h.audit.Record(r.Context(), models.AuditEntityCampaigns, "state_change", campaign.ID,
		"Changed state of "+campaign.Name+" to "+string(next), middleware.ActorFromContext(r.Context()), nil)

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(campaign)
}

// ArchiveCampaign handles POST /api/v1/campaigns/{id}/archive
func (h *CampaignHandler) ArchiveCampaign(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	campaign, err := h.repo.GetByID(r.Context(), id)
	if err != nil {
		if err == sql.ErrNoRows {
			writeJSONErrorResponse(w, http.StatusNotFound, "not_found", "Campaign not found")
			return
		}
		writeJSONErrorResponse(w, http.StatusInternalServerError, "fetch_campaign_failed", "Failed to fetch campaign")
		return
	}

	if !campaign.State.CanTransitionTo(models.CampaignStateArchived) {
		writeJSONErrorResponse(w, http.StatusUnprocessableEntity, "invalid_transition",
			"Cannot archive a campaign in state "+string(campaign.State))
		return
	}

	h.archiveCampaign(w, r, campaign)
}

// archiveCampaign snapshots the campaign's live metrics into the previous ISO
// week's history record, then flips the state. The snapshot merges onto any
// existing record for that week.
func (h *CampaignHandler) archiveCampaign(w http.ResponseWriter, r *http.Request, campaign *models.Campaign) {
	if err := campaign.CanArchive(); err != nil {
		writeJSONErrorResponse(w, http.StatusUnprocessableEntity, "archive_blocked", err.Error())
		return
	}

	week := services.PreviousISOWeek(time.Now().UTC())
	record := &models.WeeklyRecord{
		CampaignID:              campaign.ID,
		ISOWeek:                 week,
		Reach:                   campaign.Reach,
		Clicks:                  campaign.Clicks,
		Leads:                   campaign.Leads,
		WeeklyCost:              campaign.WeeklyCost,
		CostPerLead:             campaign.CostPerLead,
		RegisteredDrivers:       campaign.RegisteredDrivers,
		FirstTripDrivers:        campaign.FirstTripDrivers,
		CostPerRegisteredDriver: campaign.CostPerRegisteredDriver,
		CostPerFirstTripDriver:  campaign.CostPerFirstTripDriver,
		RecordedBy:              middleware.ActorFromContext(r.Context()),
	}
	if _, err := h.records.Upsert(r.Context(), record); err != nil {
		log.Println("Error snapshotting metrics on archive:", err)
		writeJSONErrorResponse(w, http.StatusInternalServerError, "archive_failed", "Failed to snapshot campaign metrics")
		return
	}

	if err := h.repo.UpdateState(r.Context(), campaign.ID, models.CampaignStateArchived); err != nil {
		writeJSONErrorResponse(w, http.StatusInternalServerError, "archive_failed", "Failed to archive campaign")
		return
	}
	campaign.State = models.CampaignStateArchived

	h.audit.Record(r.Context(), models.AuditEntityCampaigns, "archive", campaign.ID,
		"Archived campaign "+campaign.Name, middleware.ActorFromContext(r.Context()), nil)

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(campaign)
}

// ReactivateCampaign handles POST /api/v1/campaigns/{id}/reactivate
func (h *CampaignHandler) ReactivateCampaign(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	campaign, err := h.repo.GetByID(r.Context(), id)
	if err != nil {
		if err == sql.ErrNoRows {
			writeJSONErrorResponse(w, http.StatusNotFound, "not_found", "Campaign not found")
			return
		}
		writeJSONErrorResponse(w, http.StatusInternalServerError, "fetch_campaign_failed", "Failed to fetch campaign")
		return
	}

	if !campaign.State.CanTransitionTo(models.CampaignStateActive) {
		writeJSONErrorResponse(w, http.StatusUnprocessableEntity, "invalid_transition",
			"Cannot reactivate a campaign in state "+string(campaign.State))
		return
	}

	if err := h.repo.UpdateState(r.Context(), id, models.CampaignStateActive); err != nil {
		writeJSONErrorResponse(w, http.StatusInternalServerError, "reactivate_failed", "Failed to reactivate campaign")
		return
	}
	campaign.State = models.CampaignStateActive

	h.audit.Record(r.Context(), models.AuditEntityCampaigns, "reactivate", campaign.ID,
		"Reactivated campaign "+campaign.Name, middleware.ActorFromContext(r.Context()), nil)

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(campaign)
}

// GetWeeklyRollup handles GET /api/v1/campaigns/{id}/weekly?weeks=N
func (h *CampaignHandler) GetWeeklyRollup(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	campaign, err := h.repo.GetByID(r.Context(), id)
	if err != nil {
		if err == sql.ErrNoRows {
			writeJSONErrorResponse(w, http.StatusNotFound, "not_found", "Campaign not found")
			return
		}
		writeJSONErrorResponse(w, http.StatusInternalServerError, "fetch_campaign_failed", "Failed to fetch campaign")
		return
	}

	weeks := services.DefaultRollupWeeks
	if raw := r.URL.Query().Get("weeks"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil && n > 0 && n <= 26 {
			weeks = n
		}
	}

	records, err := h.records.ListByCampaign(r.Context(), id)
	if err != nil {
		writeJSONErrorResponse(w, http.StatusInternalServerError, "fetch_history_failed", "Failed to fetch campaign history")
		return
	}

	rollup := services.BuildWeeklyRollup(campaign, records, weeks, time.Now().UTC())

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(rollup)
}

// GetPreviousWeek handles GET /api/v1/campaigns/weeks/previous
func (h *CampaignHandler) GetPreviousWeek(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]int{"iso_week": services.PreviousISOWeek(time.Now().UTC())})
}

// mirrorMetricsToHistory keeps the history record in sync with the
// campaign's live metrics. Submissions report on the week that just closed,
// so the record lands on the previous ISO week. Best effort, same as audit
// logging.
func (h *CampaignHandler) mirrorMetricsToHistory(r *http.Request, campaign *models.Campaign) {
	record := &models.WeeklyRecord{
		CampaignID:              campaign.ID,
		ISOWeek:                 services.PreviousISOWeek(time.Now().UTC()),
		Reach:                   campaign.Reach,
		Clicks:                  campaign.Clicks,
		Leads:                   campaign.Leads,
		WeeklyCost:              campaign.WeeklyCost,
		CostPerLead:             campaign.CostPerLead,
		RegisteredDrivers:       campaign.RegisteredDrivers,
		FirstTripDrivers:        campaign.FirstTripDrivers,
		CostPerRegisteredDriver: campaign.CostPerRegisteredDriver,
		CostPerFirstTripDriver:  campaign.CostPerFirstTripDriver,
		RecordedBy:              middleware.ActorFromContext(r.Context()),
	}
	if _, err := h.records.Upsert(r.Context(), record); err != nil {
		log.Println("Error mirroring metrics to history:", err)
	}
}
