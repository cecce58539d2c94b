// internal/services/rollup.go
package services

import (
	"time"

	"siscoca/internal/models"
)

// WeekRollup is one bar of the trailing-window chart: summed campaign-week
// metrics plus funnel conversion percentages between adjacent stages.
type WeekRollup struct {
	ISOWeek   int       `json:"iso_week"`
	WeekStart time.Time `json:"week_start"`

	Reach             int64   `json:"reach"`
	Clicks            int64   `json:"clicks"`
	Leads             int64   `json:"leads"`
	Cost              float64 `json:"cost"`
	RegisteredDrivers int64   `json:"registered_drivers"`
	FirstTripDrivers  int64   `json:"first_trip_drivers"`

	ClickRate        float64 `json:"click_rate"`         // clicks/reach
	LeadRate         float64 `json:"lead_rate"`          // leads/clicks
	RegistrationRate float64 `json:"registration_rate"`  // registrations/leads
	FirstTripRate    float64 `json:"first_trip_rate"`    // first trips/registrations
}

// DefaultRollupWeeks is the detail-view window; the dashboard asks for 4.
const DefaultRollupWeeks = 5

// BuildWeeklyRollup computes a trailing weeks-long window ending at the week
// containing now. Each slot sums the campaign's history records for that ISO
// week (matched by week number, or by week_date falling inside the range).
// The most recent slot additionally folds in the campaign's live metrics,
// which stay on the campaign row until it is archived. Pure function of its
// inputs; recomputed per request.
func BuildWeeklyRollup(campaign *models.Campaign, records []*models.WeeklyRecord, weeks int, now time.Time) []WeekRollup {
	if weeks <= 0 {
		weeks = DefaultRollupWeeks
	}

	rollups := make([]WeekRollup, 0, weeks)
	for i := 0; i < weeks; i++ {
		weekTime := now.AddDate(0, 0, -7*(weeks-1-i))
		start, end := WeekBounds(weekTime)
		isoWeek := ISOWeek(start)

		var r WeekRollup
		r.ISOWeek = isoWeek
		r.WeekStart = start

		for _, rec := range records {
			if rec.CampaignID != campaign.ID {
				continue
			}
			// iso_week is authoritative when set; the date range only
			// places legacy records that never got a week number.
			if rec.ISOWeek != 0 {
				if rec.ISOWeek != isoWeek {
					continue
				}
			} else if rec.WeekDate.IsZero() || rec.WeekDate.Before(start) || rec.WeekDate.After(end) {
				continue
			}
			r.Reach += deref(rec.Reach)
			r.Clicks += deref(rec.Clicks)
			r.Leads += deref(rec.Leads)
			r.Cost += derefF(rec.WeeklyCost)
			r.RegisteredDrivers += deref(rec.RegisteredDrivers)
			r.FirstTripDrivers += deref(rec.FirstTripDrivers)
		}

		// Live metrics only count toward the current week. An archived
		// campaign's final metrics already live in its snapshot record.
		if i == weeks-1 && campaign.State != models.CampaignStateArchived {
			r.Reach += deref(campaign.Reach)
			r.Clicks += deref(campaign.Clicks)
			r.Leads += deref(campaign.Leads)
			r.Cost += derefF(campaign.WeeklyCost)
			r.RegisteredDrivers += deref(campaign.RegisteredDrivers)
			r.FirstTripDrivers += deref(campaign.FirstTripDrivers)
		}

		r.ClickRate = stagePct(r.Clicks, r.Reach)
		r.LeadRate = stagePct(r.Leads, r.Clicks)
		r.RegistrationRate = stagePct(r.RegisteredDrivers, r.Leads)
		r.FirstTripRate = stagePct(r.FirstTripDrivers, r.RegisteredDrivers)

		rollups = append(rollups, r)
	}

	return rollups
}

func stagePct(stage, previous int64) float64 {
	if previous == 0 {
		return 0
	}
	return models.Round2(100 * float64(stage) / float64(previous))
}

func deref(v *int64) int64 {
	if v == nil {
		return 0
	}
	return *v
}

func derefF(v *float64) float64 {
	if v == nil {
		return 0
	}
	return *v
}
