// internal/models/weekly_record.go
package models

import "time"

// WeeklyRecord is one campaign-week metric snapshot. At most one record
// exists per (CampaignID, ISOWeek); re-submissions merge onto it.
type WeeklyRecord struct {
	ID         string `json:"id"`
	CampaignID string `json:"campaign_id"`
	ISOWeek    int    `json:"iso_week"`

	Reach       *int64   `json:"reach"`
	Clicks      *int64   `json:"clicks"`
	Leads       *int64   `json:"leads"`
	WeeklyCost  *float64 `json:"weekly_cost"`
	CostPerLead *float64 `json:"cost_per_lead"`

	RegisteredDrivers       *int64   `json:"registered_drivers"`
	FirstTripDrivers        *int64   `json:"first_trip_drivers"`
	CostPerRegisteredDriver *float64 `json:"cost_per_registered_driver"`
	CostPerFirstTripDriver  *float64 `json:"cost_per_first_trip_driver"`

	WeekDate   time.Time `json:"week_date"`
	RecordedAt time.Time `json:"recorded_at"`
	RecordedBy string    `json:"recorded_by"`
}

// MergeFrom overlays non-nil metric fields from other onto r, keeping r's
// RecordedAt. RecordedBy follows the latest writer when set.
func (r *WeeklyRecord) MergeFrom(other *WeeklyRecord) {
	if other.Reach != nil {
		r.Reach = other.Reach
	}
	if other.Clicks != nil {
		r.Clicks = other.Clicks
	}
	if other.Leads != nil {
		r.Leads = other.Leads
	}
	if other.WeeklyCost != nil {
		r.WeeklyCost = other.WeeklyCost
	}
	if other.CostPerLead != nil {
		r.CostPerLead = other.CostPerLead
	}
	if other.RegisteredDrivers != nil {
		r.RegisteredDrivers = other.RegisteredDrivers
	}
	if other.FirstTripDrivers != nil {
		r.FirstTripDrivers = other.FirstTripDrivers
	}
	if other.CostPerRegisteredDriver != nil {
		r.CostPerRegisteredDriver = other.CostPerRegisteredDriver
	}
	if other.CostPerFirstTripDriver != nil {
		r.CostPerFirstTripDriver = other.CostPerFirstTripDriver
	}
	if !other.WeekDate.IsZero() {
		r.WeekDate = other.WeekDate
	}
	if other.RecordedBy != "" {
		r.RecordedBy = other.RecordedBy
	}
}

type UpsertWeeklyRecordRequest struct {
	CampaignID string `json:"campaign_id" validate:"required"`
	ISOWeek    int    `json:"iso_week" validate:"omitempty,min=1,max=53"`

	Reach       *int64   `json:"reach,omitempty" validate:"omitempty,min=0"`
	Clicks      *int64   `json:"clicks,omitempty" validate:"omitempty,min=0"`
	Leads       *int64   `json:"leads,omitempty" validate:"omitempty,min=0"`
	WeeklyCost  *float64 `json:"weekly_cost,omitempty" validate:"omitempty,min=0"`
	CostPerLead *float64 `json:"cost_per_lead,omitempty" validate:"omitempty,min=0"`

	RegisteredDrivers *int64 `json:"registered_drivers,omitempty" validate:"omitempty,min=0"`
	FirstTripDrivers  *int64 `json:"first_trip_drivers,omitempty" validate:"omitempty,min=0"`

	WeekDate   *time.Time `json:"week_date,omitempty"`
	RecordedBy string     `json:"recorded_by,omitempty"`
}

// ImportRow is one untrusted row from a bulk history import. Numeric fields
// arrive as loose strings ("$2,500.00", "", "1 234") and are parsed at the
// import boundary rather than coerced in place.
type ImportRow struct {
	CampaignID         string `json:"campaign_id,omitempty"`
	ExternalPlatformID string `json:"external_platform_id,omitempty"`
	CampaignName       string `json:"campaign_name,omitempty"`
	ISOWeek            *int   `json:"iso_week,omitempty"`
	WeekDate           string `json:"week_date,omitempty"` // dd/mm/yyyy[ HH:MM]

	Reach                   string `json:"reach,omitempty"`
	Clicks                  string `json:"clicks,omitempty"`
	Leads                   string `json:"leads,omitempty"`
	WeeklyCost              string `json:"weekly_cost,omitempty"`
	CostPerLead             string `json:"cost_per_lead,omitempty"`
	RegisteredDrivers       string `json:"registered_drivers,omitempty"`
	FirstTripDrivers        string `json:"first_trip_drivers,omitempty"`
	CostPerRegisteredDriver string `json:"cost_per_registered_driver,omitempty"`
	CostPerFirstTripDriver  string `json:"cost_per_first_trip_driver,omitempty"`

	RecordedBy string `json:"recorded_by,omitempty"`
}

type ImportResult struct {
	Processed int      `json:"processed"`
	Created   int      `json:"created"`
	Updated   int      `json:"updated"`
	Errors    []string `json:"errors"`
}
