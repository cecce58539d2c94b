// internal/models/ideal_metric.go
package models

import "time"

type MetricCategory string

const (
	MetricCategoryReach      MetricCategory = "reach"
	MetricCategoryLeads      MetricCategory = "leads"
	MetricCategoryCost       MetricCategory = "cost"
	MetricCategoryDrivers    MetricCategory = "drivers"
	MetricCategoryConversion MetricCategory = "conversion"
)

// IdealMetric is a performance target, optionally scoped to a
// vertical/country/platform/segment combination. Unscoped fields match any
// campaign.
type IdealMetric struct {
	ID         string         `json:"id"`
	Name       string         `json:"name"`
	IdealValue float64        `json:"ideal_value"`
	MinValue   *float64       `json:"min_value,omitempty"`
	MaxValue   *float64       `json:"max_value,omitempty"`
	Unit       string         `json:"unit,omitempty"`
	Category   MetricCategory `json:"category"`
	Vertical   *Vertical      `json:"vertical,omitempty"`
	Country    *Country       `json:"country,omitempty"`
	Platform   *Platform      `json:"platform,omitempty"`
	Segment    *Segment       `json:"segment,omitempty"`
	Active     bool           `json:"active"`
	CreatedAt  time.Time      `json:"created_at"`
	UpdatedAt  time.Time      `json:"updated_at"`
}

type CreateIdealMetricRequest struct {
	Name       string   `json:"name" validate:"required"`
	IdealValue float64  `json:"ideal_value" validate:"required,gt=0"`
	MinValue   *float64 `json:"min_value,omitempty"`
	MaxValue   *float64 `json:"max_value,omitempty"`
	Unit       string   `json:"unit,omitempty"`
	Category   string   `json:"category" validate:"required,oneof=reach leads cost drivers conversion"`
	Vertical   string   `json:"vertical,omitempty"`
	Country    string   `json:"country,omitempty"`
	Platform   string   `json:"platform,omitempty"`
	Segment    string   `json:"segment,omitempty"`
}

type UpdateIdealMetricRequest struct {
	Name       *string  `json:"name,omitempty"`
	IdealValue *float64 `json:"ideal_value,omitempty" validate:"omitempty,gt=0"`
	MinValue   *float64 `json:"min_value,omitempty"`
	MaxValue   *float64 `json:"max_value,omitempty"`
	Unit       *string  `json:"unit,omitempty"`
	Active     *bool    `json:"active,omitempty"`
}

// MetricEvaluation compares an actual campaign value against its ideal.
type MetricEvaluation struct {
	Metric         string  `json:"metric"`
	ActualValue    float64 `json:"actual_value"`
	IdealValue     float64 `json:"ideal_value"`
	Status         string  `json:"status"`
	PercentOfIdeal float64 `json:"percent_of_ideal"`
	Recommendation string  `json:"recommendation"`
}

// GlobalMetrics is the per-campaign rollup served by the metrics endpoint.
type GlobalMetrics struct {
	TotalCost        float64            `json:"total_cost"`
	TotalReach       int64              `json:"total_reach"`
	TotalLeads       int64              `json:"total_leads"`
	TotalDrivers     int64              `json:"total_drivers"`
	AvgCostPerLead   *float64           `json:"avg_cost_per_lead,omitempty"`
	AvgCostPerDriver *float64           `json:"avg_cost_per_driver,omitempty"`
	ROI              *float64           `json:"roi,omitempty"`
	Evaluations      []MetricEvaluation `json:"evaluations"`
}

// Matches reports whether the ideal metric's scope applies to the campaign.
func (m *IdealMetric) Matches(c *Campaign) bool {
	if m.Vertical != nil && *m.Vertical != c.Vertical {
		return false
	}
	if m.Country != nil && *m.Country != c.Country {
		return false
	}
	if m.Platform != nil && *m.Platform != c.Platform {
		return false
	}
	if m.Segment != nil && *m.Segment != c.Segment {
		return false
	}
	return true
}

// Evaluate grades an actual value against the ideal. Thresholds follow the
// percent-of-ideal bands 90/70/50/30.
func (m *IdealMetric) Evaluate(name string, actual float64) MetricEvaluation {
	pct := 0.0
	if m.IdealValue > 0 {
		pct = Round2(actual / m.IdealValue * 100)
	}

	var status, recommendation string
	switch {
	case pct >= 90:
		status, recommendation = "excellent", "On target"
	case pct >= 70:
		status, recommendation = "good", "Close to target, room to improve"
	case pct >= 50:
		status, recommendation = "regular", "Needs optimization"
	case pct >= 30:
		status, recommendation = "poor", "Underperforming, needs attention"
	default:
		status, recommendation = "critical", "Far below target, review the campaign"
	}

	return MetricEvaluation{
		Metric:         name,
		ActualValue:    actual,
		IdealValue:     m.IdealValue,
		Status:         status,
		PercentOfIdeal: pct,
		Recommendation: recommendation,
	}
}
