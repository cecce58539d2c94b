package handlers

import (
	"context"
	"database/sql"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"

	"siscoca/internal/interfaces"
	"siscoca/internal/models"
	"siscoca/internal/services"
)

type mockCampaignRepo struct {
	campaign     *models.Campaign
	updateCalls  int
	stateChanges []models.CampaignState
}

var _ interfaces.CampaignRepository = (*mockCampaignRepo)(nil)

func (m *mockCampaignRepo) Create(ctx context.Context, campaign *models.Campaign) error { return nil }
func (m *mockCampaignRepo) GetByID(ctx context.Context, id string) (*models.Campaign, error) {
	if m.campaign == nil || m.campaign.ID != id {
		return nil, sql.ErrNoRows
	}
	return m.campaign, nil
}
func (m *mockCampaignRepo) GetByExternalPlatformID(ctx context.Context, externalID string) (*models.Campaign, error) {
	return nil, sql.ErrNoRows
}
func (m *mockCampaignRepo) GetByName(ctx context.Context, name string) (*models.Campaign, error) {
	return nil, sql.ErrNoRows
}
func (m *mockCampaignRepo) List(ctx context.Context, filter interfaces.CampaignFilter) ([]*models.Campaign, error) {
	return []*models.Campaign{}, nil
}
func (m *mockCampaignRepo) Count(ctx context.Context) (int, error)                    { return 0, nil }
func (m *mockCampaignRepo) CountByOwner(ctx context.Context, owner string) (int, error) { return 0, nil }
func (m *mockCampaignRepo) Update(ctx context.Context, id string, campaign *models.Campaign) error {
	m.updateCalls++
	m.campaign = campaign
	return nil
}
func (m *mockCampaignRepo) UpdateState(ctx context.Context, id string, state models.CampaignState) error {
	m.stateChanges = append(m.stateChanges, state)
	m.campaign.State = state
	return nil
}
func (m *mockCampaignRepo) Delete(ctx context.Context, id string) error { return nil }

type mockWeeklyRecordRepo struct {
	upserts []*models.WeeklyRecord
}

var _ interfaces.WeeklyRecordRepository = (*mockWeeklyRecordRepo)(nil)

func (m *mockWeeklyRecordRepo) Upsert(ctx context.Context, record *models.WeeklyRecord) (bool, error) {
	m.upserts = append(m.upserts, record)
	return true, nil
}
func (m *mockWeeklyRecordRepo) GetByID(ctx context.Context, id string) (*models.WeeklyRecord, error) {
	return nil, sql.ErrNoRows
}
func (m *mockWeeklyRecordRepo) GetByCampaignAndWeek(ctx context.Context, campaignID string, isoWeek int) (*models.WeeklyRecord, error) {
	return nil, sql.ErrNoRows
}
func (m *mockWeeklyRecordRepo) ListAll(ctx context.Context) ([]*models.WeeklyRecord, error) {
	return nil, nil
}
func (m *mockWeeklyRecordRepo) ListByCampaign(ctx context.Context, campaignID string) ([]*models.WeeklyRecord, error) {
	return nil, nil
}
func (m *mockWeeklyRecordRepo) ListByWeek(ctx context.Context, isoWeek int) ([]*models.WeeklyRecord, error) {
	return nil, nil
}
func (m *mockWeeklyRecordRepo) Update(ctx context.Context, id string, record *models.WeeklyRecord) error {
	return nil
}
func (m *mockWeeklyRecordRepo) UpdateISOWeek(ctx context.Context, id string, isoWeek int) error {
	return nil
}
func (m *mockWeeklyRecordRepo) Delete(ctx context.Context, id string) error { return nil }

func newTestCampaign() *models.Campaign {
	return &models.Campaign{
		ID:       "c1",
		Name:     "PE-MOTOPER-FB-ADQ-001-GF-Verano2025",
		Country:  models.CountryPE,
		Vertical: models.VerticalMotoPersona,
		Platform: models.PlatformFacebook,
		Segment:  models.SegmentAcquisition,
		State:    models.CampaignStateActive,
	}
}

func setupCampaignRouter(repo *mockCampaignRepo, records *mockWeeklyRecordRepo) *chi.Mux {
	h := NewCampaignHandler(repo, records, nil)
	r := chi.NewRouter()
	r.Put("/campaigns/{id}/metrics/trafficker", h.SubmitTraffickerMetrics)
	r.Put("/campaigns/{id}/metrics/owner", h.SubmitOwnerMetrics)
	r.Patch("/campaigns/{id}/state", h.ChangeState)
	r.Post("/campaigns/{id}/archive", h.ArchiveCampaign)
	r.Post("/campaigns/{id}/reactivate", h.ReactivateCampaign)
	return r
}

func TestSubmitTraffickerMetricsRejectsFunnelViolation(t *testing.T) {
	repo := &mockCampaignRepo{campaign: newTestCampaign()}
	records := &mockWeeklyRecordRepo{}
	r := setupCampaignRouter(repo, records)

	body := `{"reach": 100, "clicks": 150, "leads": 10, "weekly_cost": 500}`
	req := httptest.NewRequest(http.MethodPut, "/campaigns/c1/metrics/trafficker", strings.NewReader(body))
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422 got %d (%s)", w.Code, w.Body.String())
	}
	if repo.updateCalls != 0 {
		t.Fatalf("expected no writes, got %d", repo.updateCalls)
	}
	if len(records.upserts) != 0 {
		t.Fatalf("expected no history writes, got %d", len(records.upserts))
	}
}

func TestSubmitTraffickerMetricsComputesCostPerLead(t *testing.T) {
	repo := &mockCampaignRepo{campaign: newTestCampaign()}
	records := &mockWeeklyRecordRepo{}
	r := setupCampaignRouter(repo, records)

	body := `{"reach": 10000, "clicks": 300, "leads": 50, "weekly_cost": 2500}`
	req := httptest.NewRequest(http.MethodPut, "/campaigns/c1/metrics/trafficker", strings.NewReader(body))
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d (%s)", w.Code, w.Body.String())
	}
	var resp models.Campaign
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if resp.CostPerLead == nil || *resp.CostPerLead != 50.00 {
		t.Fatalf("expected cost_per_lead 50.00, got %v", resp.CostPerLead)
	}
	if len(records.upserts) != 1 {
		t.Fatalf("expected metrics mirrored to history, got %d upserts", len(records.upserts))
	}
}

func TestSubmitTraffickerMetricsMirrorsToPreviousWeek(t *testing.T) {
	repo := &mockCampaignRepo{campaign: newTestCampaign()}
	records := &mockWeeklyRecordRepo{}
	r := setupCampaignRouter(repo, records)

	body := `{"reach": 10000, "clicks": 300, "leads": 50, "weekly_cost": 2500}`
	req := httptest.NewRequest(http.MethodPut, "/campaigns/c1/metrics/trafficker", strings.NewReader(body))
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d (%s)", w.Code, w.Body.String())
	}
	if len(records.upserts) != 1 {
		t.Fatalf("expected one history write, got %d", len(records.upserts))
	}
	// Submissions report on the week that just closed, not the one in
	// progress; the rollup's newest bar already shows the live metrics.
	want := services.PreviousISOWeek(time.Now().UTC())
	if got := records.upserts[0].ISOWeek; got != want {
		t.Fatalf("record stored for ISO week %d, want previous week %d", got, want)
	}
	if records.upserts[0].Reach == nil || *records.upserts[0].Reach != 10000 {
		t.Fatalf("expected mirrored reach 10000, got %v", records.upserts[0].Reach)
	}
}

func TestSubmitTraffickerMetricsAcceptsLargeCostPerLead(t *testing.T) {
	repo := &mockCampaignRepo{campaign: newTestCampaign()}
	r := setupCampaignRouter(repo, &mockWeeklyRecordRepo{})

	body := `{"reach": 10000, "clicks": 300, "leads": 1, "weekly_cost": 12000, "cost_per_lead": 12000}`
	req := httptest.NewRequest(http.MethodPut, "/campaigns/c1/metrics/trafficker", strings.NewReader(body))
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d (%s)", w.Code, w.Body.String())
	}
	var resp models.Campaign
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if resp.CostPerLead == nil || *resp.CostPerLead != 12000 {
		t.Fatalf("expected cost_per_lead 12000, got %v", resp.CostPerLead)
	}
}

func TestSubmitOwnerMetricsRequiresTraffickerFirst(t *testing.T) {
	repo := &mockCampaignRepo{campaign: newTestCampaign()}
	records := &mockWeeklyRecordRepo{}
	r := setupCampaignRouter(repo, records)

	body := `{"registered_drivers": 40, "first_trip_drivers": 20}`
	req := httptest.NewRequest(http.MethodPut, "/campaigns/c1/metrics/owner", strings.NewReader(body))
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422 got %d (%s)", w.Code, w.Body.String())
	}
	if repo.updateCalls != 0 {
		t.Fatalf("expected no writes before trafficker metrics, got %d", repo.updateCalls)
	}
	if len(records.upserts) != 0 {
		t.Fatalf("expected no history writes, got %d", len(records.upserts))
	}
}

func TestSubmitOwnerMetricsComputesDriverCosts(t *testing.T) {
	campaign := newTestCampaign()
	reach, clicks, leads, cost := int64(10000), int64(300), int64(50), 2500.0
	campaign.Reach, campaign.Clicks, campaign.Leads, campaign.WeeklyCost = &reach, &clicks, &leads, &cost
	repo := &mockCampaignRepo{campaign: campaign}
	records := &mockWeeklyRecordRepo{}
	r := setupCampaignRouter(repo, records)

	body := `{"registered_drivers": 40, "first_trip_drivers": 20}`
	req := httptest.NewRequest(http.MethodPut, "/campaigns/c1/metrics/owner", strings.NewReader(body))
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d (%s)", w.Code, w.Body.String())
	}
	var resp models.Campaign
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if resp.CostPerFirstTripDriver == nil || *resp.CostPerFirstTripDriver != 125.00 {
		t.Fatalf("expected cost_per_first_trip_driver 125.00, got %v", resp.CostPerFirstTripDriver)
	}
	if resp.CostPerDriver == nil || *resp.CostPerDriver != 125.00 {
		t.Fatalf("expected cost_per_driver 125.00, got %v", resp.CostPerDriver)
	}
}

func TestOwnerFunnelViolationRejected(t *testing.T) {
	campaign := newTestCampaign()
	cost := 2500.0
	campaign.WeeklyCost = &cost
	repo := &mockCampaignRepo{campaign: campaign}
	r := setupCampaignRouter(repo, &mockWeeklyRecordRepo{})

	body := `{"registered_drivers": 10, "first_trip_drivers": 20}`
	req := httptest.NewRequest(http.MethodPut, "/campaigns/c1/metrics/owner", strings.NewReader(body))
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422 got %d (%s)", w.Code, w.Body.String())
	}
	if repo.updateCalls != 0 {
		t.Fatalf("expected no writes, got %d", repo.updateCalls)
	}
}

func TestArchiveBlockedWithoutMetrics(t *testing.T) {
	repo := &mockCampaignRepo{campaign: newTestCampaign()}
	records := &mockWeeklyRecordRepo{}
	r := setupCampaignRouter(repo, records)

	req := httptest.NewRequest(http.MethodPost, "/campaigns/c1/archive", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422 got %d (%s)", w.Code, w.Body.String())
	}
	if len(records.upserts) != 0 {
		t.Fatalf("expected no snapshot, got %d", len(records.upserts))
	}
	if len(repo.stateChanges) != 0 {
		t.Fatalf("expected no state change, got %v", repo.stateChanges)
	}
}

func TestArchiveAllowsZeroMetricValues(t *testing.T) {
	campaign := newTestCampaign()
	zero := int64(0)
	cost := 0.0
	campaign.Reach = &zero
	campaign.WeeklyCost = &cost
	campaign.RegisteredDrivers = &zero
	repo := &mockCampaignRepo{campaign: campaign}
	records := &mockWeeklyRecordRepo{}
	r := setupCampaignRouter(repo, records)

	req := httptest.NewRequest(http.MethodPost, "/campaigns/c1/archive", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d (%s)", w.Code, w.Body.String())
	}
}

func TestArchiveSnapshotsMetricsAndFlipsState(t *testing.T) {
	campaign := newTestCampaign()
	reach, clicks, leads := int64(10000), int64(300), int64(50)
	regs, trips := int64(40), int64(20)
	cost := 2500.0
	campaign.Reach, campaign.Clicks, campaign.Leads = &reach, &clicks, &leads
	campaign.WeeklyCost = &cost
	campaign.RegisteredDrivers, campaign.FirstTripDrivers = &regs, &trips
	repo := &mockCampaignRepo{campaign: campaign}
	records := &mockWeeklyRecordRepo{}
	r := setupCampaignRouter(repo, records)

	req := httptest.NewRequest(http.MethodPost, "/campaigns/c1/archive", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d (%s)", w.Code, w.Body.String())
	}
	if len(records.upserts) != 1 {
		t.Fatalf("expected one history snapshot, got %d", len(records.upserts))
	}
	snap := records.upserts[0]
	if snap.CampaignID != "c1" || snap.ISOWeek == 0 {
		t.Fatalf("unexpected snapshot %+v", snap)
	}
	if snap.WeeklyCost == nil || *snap.WeeklyCost != 2500 {
		t.Fatalf("expected snapshot cost 2500, got %v", snap.WeeklyCost)
	}
	if repo.campaign.State != models.CampaignStateArchived {
		t.Fatalf("expected archived, got %s", repo.campaign.State)
	}
}

func TestChangeStateRejectsInvalidTransition(t *testing.T) {
	campaign := newTestCampaign()
	campaign.State = models.CampaignStatePending
	repo := &mockCampaignRepo{campaign: campaign}
	r := setupCampaignRouter(repo, &mockWeeklyRecordRepo{})

	body := `{"state": "active"}`
	req := httptest.NewRequest(http.MethodPatch, "/campaigns/c1/state", strings.NewReader(body))
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422 got %d (%s)", w.Code, w.Body.String())
	}
	if len(repo.stateChanges) != 0 {
		t.Fatalf("expected no state change, got %v", repo.stateChanges)
	}
}

func TestReactivateArchivedCampaign(t *testing.T) {
	campaign := newTestCampaign()
	campaign.State = models.CampaignStateArchived
	repo := &mockCampaignRepo{campaign: campaign}
	r := setupCampaignRouter(repo, &mockWeeklyRecordRepo{})

	req := httptest.NewRequest(http.MethodPost, "/campaigns/c1/reactivate", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d (%s)", w.Code, w.Body.String())
	}
	if repo.campaign.State != models.CampaignStateActive {
		t.Fatalf("expected active, got %s", repo.campaign.State)
	}
}

func TestGetCampaignNotFoundReturnsJSON(t *testing.T) {
	h := NewCampaignHandler(&mockCampaignRepo{}, &mockWeeklyRecordRepo{}, nil)
	r := chi.NewRouter()
	r.Get("/campaigns/{id}", h.GetCampaign)

	req := httptest.NewRequest(http.MethodGet, "/campaigns/missing", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusNotFound {
		t.Fatalf("expected 404 got %d (%s)", w.Code, w.Body.String())
	}
	var resp map[string]any
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if resp["error"] == nil {
		t.Fatalf("expected error field, got %v", resp)
	}
}
