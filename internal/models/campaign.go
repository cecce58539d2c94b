// internal/models/campaign.go
package models

import (
	"errors"
	"fmt"
	"math"
	"strings"
	"time"
)

type CampaignState string

const (
	CampaignStatePending      CampaignState = "pending"
	CampaignStateCreativeSent CampaignState = "creative_sent"
	CampaignStateActive       CampaignState = "active"
	CampaignStateArchived     CampaignState = "archived"
)

// allowedTransitions is the lifecycle edge set. Archived is terminal but
// reversible through reactivation.
var allowedTransitions = map[CampaignState][]CampaignState{
	CampaignStatePending:      {CampaignStateCreativeSent},
	CampaignStateCreativeSent: {CampaignStateActive, CampaignStatePending},
	CampaignStateActive:       {CampaignStateArchived, CampaignStatePending},
	CampaignStateArchived:     {CampaignStateActive},
}

func ParseCampaignState(value string) (CampaignState, error) {
	switch strings.ToLower(strings.ReplaceAll(strings.TrimSpace(value), " ", "_")) {
	case "pending", "pendiente":
		return CampaignStatePending, nil
	case "creative_sent", "creativo_enviado":
		return CampaignStateCreativeSent, nil
	case "active", "activa":
		return CampaignStateActive, nil
	case "archived", "archivada":
		return CampaignStateArchived, nil
	}
	return "", fmt.Errorf("unknown campaign state %q", value)
}

func (s CampaignState) CanTransitionTo(next CampaignState) bool {
	for _, t := range allowedTransitions[s] {
		if t == next {
			return true
		}
	}
	return false
}

type Campaign struct {
	ID                 string      `json:"id"`
	Name               string      `json:"name"`
	Country            Country     `json:"country"`
	Vertical           Vertical    `json:"vertical"`
	Platform           Platform    `json:"platform"`
	Segment            Segment     `json:"segment"`
	ExternalPlatformID string      `json:"external_platform_id,omitempty"`
	OwnerName          string      `json:"owner_name"`
	OwnerInitials      string      `json:"owner_initials"`
	ShortDescription   string      `json:"short_description"`
	Objective          string      `json:"objective"`
	Benefit            string      `json:"benefit"`
	Description        string      `json:"description"`
	LandingType        LandingType `json:"landing_type,omitempty"`
	LandingURL         string      `json:"landing_url,omitempty"`

	State CampaignState `json:"state"`

	CreativeFile        string `json:"creative_file,omitempty"`
	CreativeFileName    string `json:"creative_file_name,omitempty"`
	ExternalCreativeURL string `json:"external_creative_url,omitempty"`
	ReportURL           string `json:"report_url,omitempty"`

	// Trafficker metrics, nil until submitted.
	Reach       *int64   `json:"reach"`
	Clicks      *int64   `json:"clicks"`
	Leads       *int64   `json:"leads"`
	WeeklyCost  *float64 `json:"weekly_cost"`
	CostPerLead *float64 `json:"cost_per_lead"`

	// Owner metrics, nil until submitted.
	RegisteredDrivers       *int64   `json:"registered_drivers"`
	FirstTripDrivers        *int64   `json:"first_trip_drivers"`
	CostPerRegisteredDriver *float64 `json:"cost_per_registered_driver"`
	CostPerFirstTripDriver  *float64 `json:"cost_per_first_trip_driver"`

	// CostPerDriver is computed per response, never stored.
	CostPerDriver *float64 `json:"cost_per_driver,omitempty"`

	ISOWeek   int       `json:"iso_week"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type CreateCampaignRequest struct {
	Name               string `json:"name"`
	Country            string `json:"country" validate:"required"`
	Vertical           string `json:"vertical" validate:"required"`
	Platform           string `json:"platform" validate:"required"`
	Segment            string `json:"segment" validate:"required"`
	ExternalPlatformID string `json:"external_platform_id"`
	OwnerName          string `json:"owner_name"`
	OwnerInitials      string `json:"owner_initials"`
	ShortDescription   string `json:"short_description" validate:"required"`
	Objective          string `json:"objective" validate:"required"`
	Benefit            string `json:"benefit" validate:"required"`
	Description        string `json:"description" validate:"required,min=10"`
	LandingType        string `json:"landing_type"`
	LandingURL         string `json:"landing_url" validate:"omitempty,url"`
}

type UpdateCampaignRequest struct {
	Name                *string `json:"name,omitempty"`
	ExternalPlatformID  *string `json:"external_platform_id,omitempty"`
	OwnerName           *string `json:"owner_name,omitempty"`
	OwnerInitials       *string `json:"owner_initials,omitempty"`
	ShortDescription    *string `json:"short_description,omitempty"`
	Objective           *string `json:"objective,omitempty"`
	Benefit             *string `json:"benefit,omitempty"`
	Description         *string `json:"description,omitempty"`
	LandingType         *string `json:"landing_type,omitempty"`
	LandingURL          *string `json:"landing_url,omitempty" validate:"omitempty,url"`
	State               *string `json:"state,omitempty"`
	CreativeFile        *string `json:"creative_file,omitempty"`
	CreativeFileName    *string `json:"creative_file_name,omitempty"`
	ExternalCreativeURL *string `json:"external_creative_url,omitempty"`
	ReportURL           *string `json:"report_url,omitempty"`
}

type TraffickerMetricsRequest struct {
	Reach       int64    `json:"reach" validate:"min=0"`
	Clicks      int64    `json:"clicks" validate:"min=0"`
	Leads       int64    `json:"leads" validate:"min=0"`
	WeeklyCost  float64  `json:"weekly_cost" validate:"min=0"`
	CostPerLead *float64 `json:"cost_per_lead,omitempty" validate:"omitempty,min=0"`
	ReportURL   string   `json:"report_url" validate:"omitempty,url"`
}

type OwnerMetricsRequest struct {
	RegisteredDrivers int64 `json:"registered_drivers" validate:"min=0"`
	FirstTripDrivers  int64 `json:"first_trip_drivers" validate:"min=0"`
}

type ChangeStateRequest struct {
	State string `json:"state" validate:"required"`
}

var (
	ErrClicksExceedReach = errors.New("clicks cannot exceed reach")
	ErrLeadsExceedClicks = errors.New("leads cannot exceed clicks")
	ErrDriversExceedRegs = errors.New("first-trip drivers cannot exceed registered drivers")
	ErrTraffickerFirst   = errors.New("trafficker metrics must be submitted first")
	ErrArchiveNotReady   = errors.New("campaign needs both trafficker and owner metrics before archiving")
	ErrNegativeMetrics   = errors.New("campaign has negative metric values")
)

// Validate enforces the trafficker funnel: Reach >= Clicks >= Leads.
func (r *TraffickerMetricsRequest) Validate() error {
	if r.Clicks > r.Reach {
		return ErrClicksExceedReach
	}
	if r.Leads > r.Clicks {
		return ErrLeadsExceedClicks
	}
	return nil
}

// Validate enforces the owner funnel: RegisteredDrivers >= FirstTripDrivers.
func (r *OwnerMetricsRequest) Validate() error {
	if r.FirstTripDrivers > r.RegisteredDrivers {
		return ErrDriversExceedRegs
	}
	return nil
}

// Round2 rounds to two decimals (multiply, round, divide).
func Round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// CostPerLead derives the per-lead cost; zero leads or zero cost yield 0.
func CostPerLead(weeklyCost float64, leads int64) float64 {
	if leads <= 0 || weeklyCost == 0 {
		return 0
	}
	return Round2(weeklyCost / float64(leads))
}

// CostPerDriver derives the per-driver cost over first-trip drivers.
func CostPerDriver(weeklyCost float64, firstTripDrivers int64) float64 {
	if firstTripDrivers <= 0 || weeklyCost == 0 {
		return 0
	}
	return Round2(weeklyCost / float64(firstTripDrivers))
}

// HasTraffickerMetrics reports whether ad-ops metrics were ever submitted.
// Presence is non-nil, so a reported reach of 0 still counts.
func (c *Campaign) HasTraffickerMetrics() bool {
	return c.Reach != nil
}

// HasOwnerMetrics reports whether conversion metrics were ever submitted.
func (c *Campaign) HasOwnerMetrics() bool {
	return c.RegisteredDrivers != nil
}

// CanArchive gates archiving: both metric sets must exist at least once and
// no stored metric may be negative.
func (c *Campaign) CanArchive() error {
	if !c.HasTraffickerMetrics() || !c.HasOwnerMetrics() {
		return ErrArchiveNotReady
	}
	if (c.WeeklyCost != nil && *c.WeeklyCost < 0) ||
		(c.RegisteredDrivers != nil && *c.RegisteredDrivers < 0) ||
		(c.FirstTripDrivers != nil && *c.FirstTripDrivers < 0) {
		return ErrNegativeMetrics
	}
	return nil
}

// ComputeCostPerDriver refreshes the derived field for responses.
func (c *Campaign) ComputeCostPerDriver() {
	if c.WeeklyCost != nil && c.FirstTripDrivers != nil && *c.FirstTripDrivers > 0 {
		v := Round2(*c.WeeklyCost / float64(*c.FirstTripDrivers))
		c.CostPerDriver = &v
	} else {
		c.CostPerDriver = nil
	}
}

// GenerateCampaignName builds the deterministic fallback name
// {country}-{vertical}-{platform}-{segmentAbbrev}-{sequence}-{initials}-{shortDescription}
// with a zero-padded 3-digit sequence and upper-cased owner initials.
func GenerateCampaignName(country Country, vertical Vertical, platform Platform, segment Segment, sequence int, ownerInitials, shortDescription string) string {
	return fmt.Sprintf("%s-%s-%s-%s-%03d-%s-%s",
		country, vertical, platform, segment.Abbrev(), sequence,
		strings.ToUpper(ownerInitials), shortDescription)
}

// ResolveName picks the campaign name with priority: explicit manual name,
// then a pre-generated name, then the deterministic template.
func ResolveName(manual, generated string, c *Campaign, sequence int) string {
	if s := strings.TrimSpace(manual); s != "" {
		return s
	}
	if s := strings.TrimSpace(generated); s != "" {
		return s
	}
	return GenerateCampaignName(c.Country, c.Vertical, c.Platform, c.Segment, sequence, c.OwnerInitials, c.ShortDescription)
}

// InitialsFromName derives owner initials from a full name, first plus last
// word ("Juan Pérez" -> "JP").
func InitialsFromName(name string) string {
	parts := strings.Fields(strings.TrimSpace(name))
	if len(parts) == 0 {
		return ""
	}
	initials := string([]rune(parts[0])[0])
	if len(parts) > 1 {
		initials += string([]rune(parts[len(parts)-1])[0])
	}
	return strings.ToUpper(initials)
}
