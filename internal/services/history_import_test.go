package services

import (
	"context"
	"database/sql"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"siscoca/internal/interfaces"
	"siscoca/internal/models"
)

type stubCampaignRepo struct {
	byID       map[string]*models.Campaign
	byExternal map[string]*models.Campaign
	byName     map[string]*models.Campaign
}

var _ interfaces.CampaignRepository = (*stubCampaignRepo)(nil)

func (s *stubCampaignRepo) lookup(m map[string]*models.Campaign, key string) (*models.Campaign, error) {
	if c, ok := m[key]; ok {
		return c, nil
	}
	return nil, sql.ErrNoRows
}

func (s *stubCampaignRepo) GetByID(_ context.Context, id string) (*models.Campaign, error) {
	return s.lookup(s.byID, id)
}

func (s *stubCampaignRepo) GetByExternalPlatformID(_ context.Context, ext string) (*models.Campaign, error) {
	return s.lookup(s.byExternal, ext)
}

func (s *stubCampaignRepo) GetByName(_ context.Context, name string) (*models.Campaign, error) {
	return s.lookup(s.byName, name)
}

func (s *stubCampaignRepo) Create(context.Context, *models.Campaign) error { return nil }
func (s *stubCampaignRepo) List(context.Context, interfaces.CampaignFilter) ([]*models.Campaign, error) {
	return nil, nil
}
func (s *stubCampaignRepo) Count(context.Context) (int, error)                  { return 0, nil }
func (s *stubCampaignRepo) CountByOwner(context.Context, string) (int, error)   { return 0, nil }
func (s *stubCampaignRepo) Update(context.Context, string, *models.Campaign) error {
	return nil
}
func (s *stubCampaignRepo) UpdateState(context.Context, string, models.CampaignState) error {
	return nil
}
func (s *stubCampaignRepo) Delete(context.Context, string) error { return nil }

type stubRecordRepo struct {
	upserts  []*models.WeeklyRecord
	existing map[string]bool // campaignID:week pairs that already have a row
}

var _ interfaces.WeeklyRecordRepository = (*stubRecordRepo)(nil)

func (s *stubRecordRepo) Upsert(_ context.Context, record *models.WeeklyRecord) (bool, error) {
	s.upserts = append(s.upserts, record)
	key := fmt.Sprintf("%s:%d", record.CampaignID, record.ISOWeek)
	return !s.existing[key], nil
}

func (s *stubRecordRepo) GetByID(context.Context, string) (*models.WeeklyRecord, error) {
	return nil, sql.ErrNoRows
}
func (s *stubRecordRepo) GetByCampaignAndWeek(context.Context, string, int) (*models.WeeklyRecord, error) {
	return nil, sql.ErrNoRows
}
func (s *stubRecordRepo) ListAll(context.Context) ([]*models.WeeklyRecord, error)       { return nil, nil }
func (s *stubRecordRepo) ListByCampaign(context.Context, string) ([]*models.WeeklyRecord, error) {
	return nil, nil
}
func (s *stubRecordRepo) ListByWeek(context.Context, int) ([]*models.WeeklyRecord, error) {
	return nil, nil
}
func (s *stubRecordRepo) Update(context.Context, string, *models.WeeklyRecord) error { return nil }
func (s *stubRecordRepo) UpdateISOWeek(context.Context, string, int) error           { return nil }
func (s *stubRecordRepo) Delete(context.Context, string) error                       { return nil }

func TestParseLooseNumbers(t *testing.T) {
	v, err := parseLooseFloat("$2,500.00", "weekly_cost")
	require.NoError(t, err)
	require.NotNil(t, v)
	assert.Equal(t, 2500.0, *v)

	v, err = parseLooseFloat("  ", "weekly_cost")
	require.NoError(t, err)
	assert.Nil(t, v)

	n, err := parseLooseInt("120.0", "reach")
	require.NoError(t, err)
	require.NotNil(t, n)
	assert.Equal(t, int64(120), *n)

	n, err = parseLooseInt("1 234", "reach")
	require.NoError(t, err)
	assert.Equal(t, int64(1234), *n)

	_, err = parseLooseInt("abc", "reach")
	assert.Error(t, err)
}

func TestParseImportDate(t *testing.T) {
	d, err := ParseImportDate("15/03/2025 14:30")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2025, time.March, 15, 14, 30, 0, 0, time.UTC), d)

	d, err = ParseImportDate("15/03/2025")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2025, time.March, 15, 0, 0, 0, 0, time.UTC), d)

	_, err = ParseImportDate("2025-03-15")
	assert.Error(t, err)
}

func TestBuildRecordFromImportRow(t *testing.T) {
	now := time.Date(2025, time.June, 10, 0, 0, 0, 0, time.UTC)
	row := models.ImportRow{
		WeekDate:   "10/03/2025",
		Reach:      "1,000",
		Clicks:     "100",
		Leads:      "50",
		WeeklyCost: "$2,500.00",
	}

	record, err := BuildRecordFromImportRow(row, "c1", now)
	require.NoError(t, err)

	assert.Equal(t, "c1", record.CampaignID)
	assert.Equal(t, 11, record.ISOWeek) // derived from the week date
	assert.Equal(t, ImportRecordedBy, record.RecordedBy)

	require.NotNil(t, record.CostPerLead)
	assert.Equal(t, 50.00, *record.CostPerLead) // 2500 / 50, derived

	// Blank cells stay nil so the upsert merge leaves stored values alone.
	assert.Nil(t, record.RegisteredDrivers)
	assert.Nil(t, record.CostPerRegisteredDriver)
}

func TestImportResolvesCampaignsAndCollectsRowErrors(t *testing.T) {
	campaigns := &stubCampaignRepo{
		byID:       map[string]*models.Campaign{"c1": {ID: "c1"}},
		byExternal: map[string]*models.Campaign{"fb-123": {ID: "c1"}},
		byName:     map[string]*models.Campaign{"PE-MOTOPER-FB-ADQ-001-GF-Verano2025": {ID: "c2"}},
	}
	records := &stubRecordRepo{existing: map[string]bool{}}
	importer := NewHistoryImporter(campaigns, records)

	now := time.Date(2025, time.March, 12, 0, 0, 0, 0, time.UTC)
	rows := []models.ImportRow{
		{ExternalPlatformID: "fb-123", Reach: "100"},
		{CampaignName: "PE-MOTOPER-FB-ADQ-001-GF-Verano2025", Leads: "5"},
		{CampaignName: "does-not-exist", Reach: "1"},
		{CampaignID: "c1", Reach: "not-a-number"},
	}

	result := importer.Import(context.Background(), rows, now)

	assert.Equal(t, 4, result.Processed)
	assert.Equal(t, 2, result.Created)
	assert.Equal(t, 0, result.Updated)
	require.Len(t, result.Errors, 2)
	assert.Contains(t, result.Errors[0], "row 3")
	assert.Contains(t, result.Errors[1], "row 4")

	require.Len(t, records.upserts, 2)
	assert.Equal(t, "c1", records.upserts[0].CampaignID)
	assert.Equal(t, "c2", records.upserts[1].CampaignID)
}
