// internal/handlers/ideal_metric_handler.go
package handlers

import (
	"database/sql"
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"siscoca/internal/models"
	"siscoca/internal/repository"
)

type IdealMetricHandler struct {
	repo      repository.IdealMetricRepository
	validator *validator.Validate
}

func NewIdealMetricHandler(repo repository.IdealMetricRepository) *IdealMetricHandler {
	return &IdealMetricHandler{repo: repo, validator: validator.New()}
}

// CreateIdealMetric handles POST /api/v1/ideal-metrics
func (h *IdealMetricHandler) CreateIdealMetric(w http.ResponseWriter, r *http.Request) {
	var req models.CreateIdealMetricRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSONErrorResponse(w, http.StatusBadRequest, "invalid_request", "Invalid request body")
		return
	}
	if err := h.validator.Struct(req); err != nil {
		writeJSONErrorResponse(w, http.StatusBadRequest, "validation_error", err.Error())
		return
	}

	metric := &models.IdealMetric{
		ID:         uuid.NewString(),
		Name:       req.Name,
		IdealValue: req.IdealValue,
		MinValue:   req.MinValue,
		MaxValue:   req.MaxValue,
		Unit:       req.Unit,
		Category:   models.MetricCategory(req.Category),
		Active:     true,
	}

	if req.Vertical != "" {
		v, err := models.ParseVertical(req.Vertical)
		if err != nil {
			writeJSONErrorResponse(w, http.StatusBadRequest, "invalid_vertical", err.Error())
			return
		}
		metric.Vertical = &v
	}
	if req.Country != "" {
		c, err := models.ParseCountry(req.Country)
		if err != nil {
			writeJSONErrorResponse(w, http.StatusBadRequest, "invalid_country", err.Error())
			return
		}
		metric.Country = &c
	}
	if req.Platform != "" {
		p, err := models.ParsePlatform(req.Platform)
		if err != nil {
			writeJSONErrorResponse(w, http.StatusBadRequest, "invalid_platform", err.Error())
			return
		}
		metric.Platform = &p
	}
	if req.Segment != "" {
		s, err := models.ParseSegment(req.Segment)
		if err != nil {
			writeJSONErrorResponse(w, http.StatusBadRequest, "invalid_segment", err.Error())
			return
		}
		metric.Segment = &s
	}

	if err := h.repo.Create(r.Context(), metric); err != nil {
		writeJSONErrorResponse(w, http.StatusInternalServerError, "create_metric_failed", "Failed to create ideal metric")
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(metric)
}

// GetIdealMetric handles GET /api/v1/ideal-metrics/{id}
func (h *IdealMetricHandler) GetIdealMetric(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	metric, err := h.repo.GetByID(r.Context(), id)
	if err != nil {
		if err == sql.ErrNoRows {
			writeJSONErrorResponse(w, http.StatusNotFound, "not_found", "Ideal metric not found")
			return
		}
		writeJSONErrorResponse(w, http.StatusInternalServerError, "fetch_metric_failed", "Failed to fetch ideal metric")
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(metric)
}

// ListIdealMetrics handles GET /api/v1/ideal-metrics?active=true
func (h *IdealMetricHandler) ListIdealMetrics(w http.ResponseWriter, r *http.Request) {
	var (
		metrics []*models.IdealMetric
		err     error
	)
	if r.URL.Query().Get("active") == "true" {
		metrics, err = h.repo.ListActive(r.Context())
	} else {
		metrics, err = h.repo.List(r.Context())
	}
	if err != nil {
		writeJSONErrorResponse(w, http.StatusInternalServerError, "list_metrics_failed", "Failed to list ideal metrics")
		return
	}
	if metrics == nil {
		metrics = []*models.IdealMetric{}
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(metrics)
}

// UpdateIdealMetric handles PATCH /api/v1/ideal-metrics/{id}
func (h *IdealMetricHandler) UpdateIdealMetric(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var req models.UpdateIdealMetricRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSONErrorResponse(w, http.StatusBadRequest, "invalid_request", "Invalid request body")
		return
	}
	if err := h.validator.Struct(req); err != nil {
		writeJSONErrorResponse(w, http.StatusBadRequest, "validation_error", err.Error())
		return
	}

	if err := h.repo.Update(r.Context(), id, &req); err != nil {
		if err == sql.ErrNoRows {
			writeJSONErrorResponse(w, http.StatusNotFound, "not_found", "Ideal metric not found")
			return
		}
		writeJSONErrorResponse(w, http.StatusInternalServerError, "update_metric_failed", "Failed to update ideal metric")
		return
	}

	metric, err := h.repo.GetByID(r.Context(), id)
	if err != nil {
		writeJSONErrorResponse(w, http.StatusInternalServerError, "fetch_metric_failed", "Failed to fetch ideal metric")
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(metric)
}

// DeleteIdealMetric handles DELETE /api/v1/ideal-metrics/{id}
func (h *IdealMetricHandler) DeleteIdealMetric(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	if err := h.repo.Delete(r.Context(), id); err != nil {
		if err == sql.ErrNoRows {
			writeJSONErrorResponse(w, http.StatusNotFound, "not_found", "Ideal metric not found")
			return
		}
		writeJSONErrorResponse(w, http.StatusInternalServerError, "delete_metric_failed", "Failed to delete ideal metric")
		return
	}

	writeJSONMessage(w, http.StatusOK, "Ideal metric deleted")
}
