// internal/handlers/metrics_handler.go
package handlers

import (
	"database/sql"
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"siscoca/internal/interfaces"
	"siscoca/internal/models"
	"siscoca/internal/repository"
)

// MetricsHandler serves aggregated performance views: per-campaign totals
// with ideal-metric evaluations, and the cross-campaign dashboard summary.
type MetricsHandler struct {
	campaigns interfaces.CampaignRepository
	records   interfaces.WeeklyRecordRepository
	ideals    repository.IdealMetricRepository
}

func NewMetricsHandler(campaigns interfaces.CampaignRepository, records interfaces.WeeklyRecordRepository, ideals repository.IdealMetricRepository) *MetricsHandler {
	return &MetricsHandler{campaigns: campaigns, records: records, ideals: ideals}
}

// GetCampaignMetrics handles GET /api/v1/metrics/campaigns/{id}. Totals sum
// the campaign's history plus its live metrics; each active ideal metric in
// scope contributes one evaluation.
func (h *MetricsHandler) GetCampaignMetrics(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	campaign, err := h.campaigns.GetByID(r.Context(), id)
	if err != nil {
		if err == sql.ErrNoRows {
			writeJSONErrorResponse(w, http.StatusNotFound, "not_found", "Campaign not found")
			return
		}
		writeJSONErrorResponse(w, http.StatusInternalServerError, "fetch_campaign_failed", "Failed to fetch campaign")
		return
	}

	records, err := h.records.ListByCampaign(r.Context(), id)
	if err != nil {
		writeJSONErrorResponse(w, http.StatusInternalServerError, "fetch_history_failed", "Failed to fetch campaign history")
		return
	}

	metrics := buildGlobalMetrics(campaign, records)

	ideals, err := h.ideals.ListActive(r.Context())
	if err != nil {
		writeJSONErrorResponse(w, http.StatusInternalServerError, "fetch_ideals_failed", "Failed to fetch ideal metrics")
		return
	}
	for _, ideal := range ideals {
		if !ideal.Matches(campaign) {
			continue
		}
		actual, ok := actualForCategory(metrics, ideal.Category)
		if !ok {
			continue
		}
		metrics.Evaluations = append(metrics.Evaluations, ideal.Evaluate(ideal.Name, actual))
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(metrics)
}

// GetGlobalMetrics handles GET /api/v1/metrics/global, the dashboard totals
// across every campaign and its history.
func (h *MetricsHandler) GetGlobalMetrics(w http.ResponseWriter, r *http.Request) {
	campaigns, err := h.campaigns.List(r.Context(), interfaces.CampaignFilter{})
	if err != nil {
		writeJSONErrorResponse(w, http.StatusInternalServerError, "list_campaigns_failed", "Failed to list campaigns")
		return
	}

	records, err := h.records.ListAll(r.Context())
	if err != nil {
		writeJSONErrorResponse(w, http.StatusInternalServerError, "fetch_history_failed", "Failed to fetch history")
		return
	}

	byCampaign := make(map[string][]*models.WeeklyRecord)
	for _, rec := range records {
		byCampaign[rec.CampaignID] = append(byCampaign[rec.CampaignID], rec)
	}

	total := &models.GlobalMetrics{Evaluations: []models.MetricEvaluation{}}
	for _, c := range campaigns {
		m := buildGlobalMetrics(c, byCampaign[c.ID])
		total.TotalCost += m.TotalCost
		total.TotalReach += m.TotalReach
		total.TotalLeads += m.TotalLeads
		total.TotalDrivers += m.TotalDrivers
	}
	finishGlobalMetrics(total)

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(total)
}

// buildGlobalMetrics sums history records plus live campaign metrics. Live
// metrics are excluded for archived campaigns, whose final week was already
// snapshotted into history.
func buildGlobalMetrics(campaign *models.Campaign, records []*models.WeeklyRecord) *models.GlobalMetrics {
	m := &models.GlobalMetrics{Evaluations: []models.MetricEvaluation{}}

	for _, rec := range records {
		if rec.WeeklyCost != nil {
			m.TotalCost += *rec.WeeklyCost
		}
		if rec.Reach != nil {
			m.TotalReach += *rec.Reach
		}
		if rec.Leads != nil {
			m.TotalLeads += *rec.Leads
		}
		if rec.FirstTripDrivers != nil {
			m.TotalDrivers += *rec.FirstTripDrivers
		}
	}

	if campaign.State != models.CampaignStateArchived {
		if campaign.WeeklyCost != nil {
			m.TotalCost += *campaign.WeeklyCost
		}
		if campaign.Reach != nil {
			m.TotalReach += *campaign.Reach
		}
		if campaign.Leads != nil {
			m.TotalLeads += *campaign.Leads
		}
		if campaign.FirstTripDrivers != nil {
			m.TotalDrivers += *campaign.FirstTripDrivers
		}
	}

	finishGlobalMetrics(m)
	return m
}

func finishGlobalMetrics(m *models.GlobalMetrics) {
	m.TotalCost = models.Round2(m.TotalCost)
	if m.TotalLeads > 0 && m.TotalCost > 0 {
		v := models.Round2(m.TotalCost / float64(m.TotalLeads))
		m.AvgCostPerLead = &v
	}
	if m.TotalDrivers > 0 && m.TotalCost > 0 {
		v := models.Round2(m.TotalCost / float64(m.TotalDrivers))
		m.AvgCostPerDriver = &v
	}
	if m.TotalCost > 0 {
		v := models.Round2(float64(m.TotalDrivers) * 100 / m.TotalCost)
		m.ROI = &v
	}
}

func actualForCategory(m *models.GlobalMetrics, category models.MetricCategory) (float64, bool) {
	switch category {
	case models.MetricCategoryReach:
		return float64(m.TotalReach), true
	case models.MetricCategoryLeads:
		return float64(m.TotalLeads), true
	case models.MetricCategoryCost:
		return m.TotalCost, true
	case models.MetricCategoryDrivers:
		return float64(m.TotalDrivers), true
	case models.MetricCategoryConversion:
		if m.TotalLeads == 0 {
			return 0, false
		}
		return models.Round2(float64(m.TotalDrivers) * 100 / float64(m.TotalLeads)), true
	}
	return 0, false
}
