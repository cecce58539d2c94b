package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTraffickerFunnelValidation(t *testing.T) {
	req := &TraffickerMetricsRequest{Reach: 100, Clicks: 150, Leads: 10, WeeklyCost: 500}
	assert.ErrorIs(t, req.Validate(), ErrClicksExceedReach)

	req = &TraffickerMetricsRequest{Reach: 1000, Clicks: 100, Leads: 200, WeeklyCost: 500}
	assert.ErrorIs(t, req.Validate(), ErrLeadsExceedClicks)

	req = &TraffickerMetricsRequest{Reach: 1000, Clicks: 100, Leads: 50, WeeklyCost: 500}
	assert.NoError(t, req.Validate())

	// Equality at each stage is allowed.
	req = &TraffickerMetricsRequest{Reach: 100, Clicks: 100, Leads: 100, WeeklyCost: 0}
	assert.NoError(t, req.Validate())
}

func TestOwnerFunnelValidation(t *testing.T) {
	req := &OwnerMetricsRequest{RegisteredDrivers: 10, FirstTripDrivers: 20}
	assert.ErrorIs(t, req.Validate(), ErrDriversExceedRegs)

	req = &OwnerMetricsRequest{RegisteredDrivers: 20, FirstTripDrivers: 20}
	assert.NoError(t, req.Validate())
}

func TestCostPerLead(t *testing.T) {
	assert.Equal(t, 50.00, CostPerLead(2500.00, 50))
	assert.Equal(t, 0.0, CostPerLead(2500.00, 0))
	assert.Equal(t, 0.0, CostPerLead(0, 50))
	assert.Equal(t, 33.33, CostPerLead(100, 3))
}

func TestCostPerDriver(t *testing.T) {
	assert.Equal(t, 125.00, CostPerDriver(2500.00, 20))
	assert.Equal(t, 0.0, CostPerDriver(2500.00, 0))
}

func TestRound2(t *testing.T) {
	assert.Equal(t, 33.33, Round2(33.3333))
	assert.Equal(t, 33.34, Round2(33.336))
	assert.Equal(t, 125.0, Round2(125))
	assert.Equal(t, 0.0, Round2(0))
}

func TestGenerateCampaignName(t *testing.T) {
	name := GenerateCampaignName(CountryPE, VerticalMotoPersona, PlatformFacebook, SegmentAcquisition, 1, "gf", "Verano2025")
	assert.Equal(t, "PE-MOTOPER-FB-ADQ-001-GF-Verano2025", name)

	// Same inputs always produce the same name.
	again := GenerateCampaignName(CountryPE, VerticalMotoPersona, PlatformFacebook, SegmentAcquisition, 1, "gf", "Verano2025")
	assert.Equal(t, name, again)

	// Segments without a dedicated abbreviation fall back to XXX.
	name = GenerateCampaignName(CountryCO, VerticalCargo, PlatformTikTok, SegmentMoreViews, 12, "JP", "Flota")
	assert.Equal(t, "CO-CARGO-TT-XXX-012-JP-Flota", name)
}

func TestResolveNamePriority(t *testing.T) {
	c := &Campaign{
		Country:          CountryPE,
		Vertical:         VerticalMotoPersona,
		Platform:         PlatformFacebook,
		Segment:          SegmentAcquisition,
		OwnerInitials:    "GF",
		ShortDescription: "Verano2025",
	}

	assert.Equal(t, "manual", ResolveName("manual", "generated", c, 1))
	assert.Equal(t, "generated", ResolveName("", "generated", c, 1))
	assert.Equal(t, "PE-MOTOPER-FB-ADQ-001-GF-Verano2025", ResolveName("", "", c, 1))
	assert.Equal(t, "PE-MOTOPER-FB-ADQ-001-GF-Verano2025", ResolveName("  ", "", c, 1))
}

func TestInitialsFromName(t *testing.T) {
	assert.Equal(t, "JP", InitialsFromName("Juan Pérez"))
	assert.Equal(t, "G", InitialsFromName("Gabriela"))
	assert.Equal(t, "AC", InitialsFromName("Ana María Castro"))
	assert.Equal(t, "", InitialsFromName("  "))
}

func TestStateTransitions(t *testing.T) {
	assert.True(t, CampaignStatePending.CanTransitionTo(CampaignStateCreativeSent))
	assert.False(t, CampaignStatePending.CanTransitionTo(CampaignStateActive))
	assert.False(t, CampaignStatePending.CanTransitionTo(CampaignStateArchived))

	assert.True(t, CampaignStateCreativeSent.CanTransitionTo(CampaignStateActive))
	assert.True(t, CampaignStateCreativeSent.CanTransitionTo(CampaignStatePending))

	assert.True(t, CampaignStateActive.CanTransitionTo(CampaignStateArchived))
	assert.True(t, CampaignStateActive.CanTransitionTo(CampaignStatePending))
	assert.False(t, CampaignStateActive.CanTransitionTo(CampaignStateCreativeSent))

	assert.True(t, CampaignStateArchived.CanTransitionTo(CampaignStateActive))
	assert.False(t, CampaignStateArchived.CanTransitionTo(CampaignStatePending))
}

func TestParseCampaignState(t *testing.T) {
	for raw, want := range map[string]CampaignState{
		"pending":          CampaignStatePending,
		"Pendiente":        CampaignStatePending,
		"creative_sent":    CampaignStateCreativeSent,
		"Creativo Enviado": CampaignStateCreativeSent,
		"ACTIVA":           CampaignStateActive,
		"archived":         CampaignStateArchived,
	} {
		got, err := ParseCampaignState(raw)
		require.NoError(t, err, raw)
		assert.Equal(t, want, got, raw)
	}

	_, err := ParseCampaignState("paused")
	assert.Error(t, err)
}

func TestCanArchive(t *testing.T) {
	c := &Campaign{State: CampaignStateActive}
	assert.ErrorIs(t, c.CanArchive(), ErrArchiveNotReady)

	// Zero values still count as submitted metrics.
	zero := int64(0)
	c.Reach = &zero
	assert.ErrorIs(t, c.CanArchive(), ErrArchiveNotReady)

	c.RegisteredDrivers = &zero
	assert.NoError(t, c.CanArchive())

	neg := int64(-5)
	c.RegisteredDrivers = &neg
	assert.ErrorIs(t, c.CanArchive(), ErrNegativeMetrics)
}

func TestComputeCostPerDriver(t *testing.T) {
	cost := 2500.0
	trips := int64(20)
	c := &Campaign{WeeklyCost: &cost, FirstTripDrivers: &trips}
	c.ComputeCostPerDriver()
	require.NotNil(t, c.CostPerDriver)
	assert.Equal(t, 125.00, *c.CostPerDriver)

	zero := int64(0)
	c.FirstTripDrivers = &zero
	c.ComputeCostPerDriver()
	assert.Nil(t, c.CostPerDriver)
}

func TestParseEnumsLoose(t *testing.T) {
	seg, err := ParseSegment("adquisicion")
	require.NoError(t, err)
	assert.Equal(t, SegmentAcquisition, seg)

	seg, err = ParseSegment("Más Vistas del Perfil")
	require.NoError(t, err)
	assert.Equal(t, SegmentMoreProfileView, seg)

	country, err := ParseCountry("peru")
	require.NoError(t, err)
	assert.Equal(t, CountryPE, country)

	platform, err := ParsePlatform("Facebook Ads")
	require.NoError(t, err)
	assert.Equal(t, PlatformFacebook, platform)

	_, err = ParseVertical("BICICLETA")
	assert.Error(t, err)
}

func TestSegmentAbbrev(t *testing.T) {
	assert.Equal(t, "ADQ", SegmentAcquisition.Abbrev())
	assert.Equal(t, "RET", SegmentRetention.Abbrev())
	assert.Equal(t, "RTO", SegmentReturn.Abbrev())
	assert.Equal(t, "XXX", SegmentMoreFollowers.Abbrev())
}
