// internal/handlers/history_handler.go
package handlers

import (
	"database/sql"
	"encoding/json"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"siscoca/internal/interfaces"
	"siscoca/internal/middleware"
	"siscoca/internal/models"
	"siscoca/internal/services"
)

type HistoryHandler struct {
	records   interfaces.WeeklyRecordRepository
	importer  *services.HistoryImporter
	audit     *services.AuditLogger
	validator *validator.Validate
}

func NewHistoryHandler(records interfaces.WeeklyRecordRepository, importer *services.HistoryImporter, audit *services.AuditLogger) *HistoryHandler {
	return &HistoryHandler{
		records:   records,
		importer:  importer,
		audit:     audit,
		validator: validator.New(),
	}
}

// ListHistory handles GET /api/v1/history
func (h *HistoryHandler) ListHistory(w http.ResponseWriter, r *http.Request) {
	records, err := h.records.ListAll(r.Context())
	if err != nil {
		writeJSONErrorResponse(w, http.StatusInternalServerError, "list_history_failed", "Failed to list history")
		return
	}
	if records == nil {
		records = []*models.WeeklyRecord{}
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(records)
}

// GetRecord handles GET /api/v1/history/{id}
func (h *HistoryHandler) GetRecord(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	record, err := h.records.GetByID(r.Context(), id)
	if err != nil {
		if err == sql.ErrNoRows {
			writeJSONErrorResponse(w, http.StatusNotFound, "not_found", "History record not found")
			return
		}
		writeJSONErrorResponse(w, http.StatusInternalServerError, "fetch_record_failed", "Failed to fetch record")
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(record)
}

// ListByCampaign handles GET /api/v1/history/campaign/{campaignID}
func (h *HistoryHandler) ListByCampaign(w http.ResponseWriter, r *http.Request) {
	campaignID := chi.URLParam(r, "campaignID")

	records, err := h.records.ListByCampaign(r.Context(), campaignID)
	if err != nil {
		writeJSONErrorResponse(w, http.StatusInternalServerError, "list_history_failed", "Failed to list campaign history")
		return
	}
	if records == nil {
		records = []*models.WeeklyRecord{}
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(records)
}

// ListByWeek handles GET /api/v1/history/week/{week}
func (h *HistoryHandler) ListByWeek(w http.ResponseWriter, r *http.Request) {
	week, err := strconv.Atoi(chi.URLParam(r, "week"))
	if err != nil || week < 1 || week > 53 {
		writeJSONErrorResponse(w, http.StatusBadRequest, "invalid_week", "Week must be between 1 and 53")
		return
	}

	records, err := h.records.ListByWeek(r.Context(), week)
	if err != nil {
		writeJSONErrorResponse(w, http.StatusInternalServerError, "list_history_failed", "Failed to list week history")
		return
	}
	if records == nil {
		records = []*models.WeeklyRecord{}
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(records)
}

// UpsertRecord handles POST /api/v1/history. One record exists per campaign
// and week; repeated posts merge non-nil fields onto it.
func (h *HistoryHandler) UpsertRecord(w http.ResponseWriter, r *http.Request) {
	var req models.UpsertWeeklyRecordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSONErrorResponse(w, http.StatusBadRequest, "invalid_request", "Invalid request body")
		return
	}
	if err := h.validator.Struct(req); err != nil {
		writeJSONErrorResponse(w, http.StatusBadRequest, "validation_error", err.Error())
		return
	}

	record := &models.WeeklyRecord{
		CampaignID:        req.CampaignID,
		ISOWeek:           req.ISOWeek,
		Reach:             req.Reach,
		Clicks:            req.Clicks,
		Leads:             req.Leads,
		WeeklyCost:        req.WeeklyCost,
		CostPerLead:       req.CostPerLead,
		RegisteredDrivers: req.RegisteredDrivers,
		FirstTripDrivers:  req.FirstTripDrivers,
		RecordedBy:        req.RecordedBy,
	}
	if req.WeekDate != nil {
		record.WeekDate = *req.WeekDate
	}
	if record.ISOWeek == 0 {
		if record.WeekDate.IsZero() {
			record.ISOWeek = services.ISOWeek(time.Now().UTC())
		} else {
			record.ISOWeek = services.ISOWeek(record.WeekDate)
		}
	}
	if record.RecordedBy == "" {
		record.RecordedBy = middleware.ActorFromContext(r.Context())
	}
	if record.CostPerLead == nil && record.WeeklyCost != nil && record.Leads != nil {
		cpl := models.CostPerLead(*record.WeeklyCost, *record.Leads)
		record.CostPerLead = &cpl
	}

	created, err := h.records.Upsert(r.Context(), record)
	if err != nil {
		log.Println("Error upserting history record:", err)
		writeJSONErrorResponse(w, http.StatusInternalServerError, "upsert_record_failed", "Failed to save record")
		return
	}

	h.audit.Record(r.Context(), models.AuditEntityHistory, "upsert", record.ID,
		"Saved weekly record for campaign "+record.CampaignID, middleware.ActorFromContext(r.Context()), nil)

	status := http.StatusOK
	if created {
		status = http.StatusCreated
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(record)
}

// UpdateRecord handles PUT /api/v1/history/{id}
func (h *HistoryHandler) UpdateRecord(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var req models.UpsertWeeklyRecordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSONErrorResponse(w, http.StatusBadRequest, "invalid_request", "Invalid request body")
		return
	}

	record, err := h.records.GetByID(r.Context(), id)
	if err != nil {
		if err == sql.ErrNoRows {
			writeJSONErrorResponse(w, http.StatusNotFound, "not_found", "History record not found")
			return
		}
		writeJSONErrorResponse(w, http.StatusInternalServerError, "fetch_record_failed", "Failed to fetch record")
		return
	}

	incoming := &models.WeeklyRecord{
		Reach:             req.Reach,
		Clicks:            req.Clicks,
		Leads:             req.Leads,
		WeeklyCost:        req.WeeklyCost,
		CostPerLead:       req.CostPerLead,
		RegisteredDrivers: req.RegisteredDrivers,
		FirstTripDrivers:  req.FirstTripDrivers,
		RecordedBy:        req.RecordedBy,
	}
	if req.WeekDate != nil {
		incoming.WeekDate = *req.WeekDate
	}
	record.MergeFrom(incoming)

	if err := h.records.Update(r.Context(), id, record); err != nil {
		writeJSONErrorResponse(w, http.StatusInternalServerError, "update_record_failed", "Failed to update record")
		return
	}

	h.audit.Record(r.Context(), models.AuditEntityHistory, "update", id,
		"Updated weekly record", middleware.ActorFromContext(r.Context()), req)

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(record)
}

// UpdateRecordWeek handles PATCH /api/v1/history/{id}/week, reassigning a
// record to a different ISO week.
func (h *HistoryHandler) UpdateRecordWeek(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var req struct {
		ISOWeek int `json:"iso_week" validate:"required,min=1,max=53"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSONErrorResponse(w, http.StatusBadRequest, "invalid_request", "Invalid request body")
		return
	}
	if err := h.validator.Struct(req); err != nil {
		writeJSONErrorResponse(w, http.StatusBadRequest, "validation_error", err.Error())
		return
	}

	if err := h.records.UpdateISOWeek(r.Context(), id, req.ISOWeek); err != nil {
		if err == sql.ErrNoRows {
			writeJSONErrorResponse(w, http.StatusNotFound, "not_found", "History record not found")
			return
		}
		writeJSONErrorResponse(w, http.StatusInternalServerError, "update_record_failed", "Failed to update record week")
		return
	}

	h.audit.Record(r.Context(), models.AuditEntityHistory, "reassign_week", id,
		"Moved weekly record to week "+strconv.Itoa(req.ISOWeek), middleware.ActorFromContext(r.Context()), nil)

	writeJSONMessage(w, http.StatusOK, "Record week updated")
}

// DeleteRecord handles DELETE /api/v1/history/{id}
func (h *HistoryHandler) DeleteRecord(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	if err := h.records.Delete(r.Context(), id); err != nil {
		if err == sql.ErrNoRows {
			writeJSONErrorResponse(w, http.StatusNotFound, "not_found", "History record not found")
			return
		}
		writeJSONErrorResponse(w, http.StatusInternalServerError, "delete_record_failed", "Failed to delete record")
		return
	}

	h.audit.Record(r.Context(), models.AuditEntityHistory, "delete", id,
		"Deleted weekly record", middleware.ActorFromContext(r.Context()), nil)

	writeJSONMessage(w, http.StatusOK, "Record deleted")
}

// ImportHistory handles POST /api/v1/history/import. Rows fail individually;
// the response always reports per-row outcomes.
func (h *HistoryHandler) ImportHistory(w http.ResponseWriter, r *http.Request) {
	var rows []models.ImportRow
	if err := json.NewDecoder(r.Body).Decode(&rows); err != nil {
		writeJSONErrorResponse(w, http.StatusBadRequest, "invalid_request", "Invalid request body")
		return
	}
	if len(rows) == 0 {
		writeJSONErrorResponse(w, http.StatusBadRequest, "empty_import", "No rows to import")
		return
	}

	result := h.importer.Import(r.Context(), rows, time.Now().UTC())

	h.audit.Record(r.Context(), models.AuditEntityHistory, "import", "",
		"Imported history rows", middleware.ActorFromContext(r.Context()), result)

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(result)
}
