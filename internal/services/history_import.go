// internal/services/history_import.go
package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"siscoca/internal/interfaces"
	"siscoca/internal/models"
)

// ImportRecordedBy tags history rows created through the bulk import path.
const ImportRecordedBy = "csv import"

// HistoryImporter turns loose import rows into upserted weekly records.
// Rows fail individually; one bad row never aborts the batch.
type HistoryImporter struct {
	campaignRepo interfaces.CampaignRepository
	recordRepo   interfaces.WeeklyRecordRepository
}

func NewHistoryImporter(campaignRepo interfaces.CampaignRepository, recordRepo interfaces.WeeklyRecordRepository) *HistoryImporter {
	return &HistoryImporter{campaignRepo: campaignRepo, recordRepo: recordRepo}
}

// Import processes every row and reports per-row outcomes. Campaigns are
// resolved by internal ID first, then external platform ID, then exact name.
func (h *HistoryImporter) Import(ctx context.Context, rows []models.ImportRow, now time.Time) *models.ImportResult {
	result := &models.ImportResult{Errors: []string{}}

	for i, row := range rows {
		result.Processed++

		campaign, err := h.resolveCampaign(ctx, row)
		if err != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("row %d: %v", i+1, err))
			continue
		}

		record, err := BuildRecordFromImportRow(row, campaign.ID, now)
		if err != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("row %d: %v", i+1, err))
			continue
		}

		created, err := h.recordRepo.Upsert(ctx, record)
		if err != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("row %d: saving record: %v", i+1, err))
			continue
		}
		if created {
			result.Created++
		} else {
			result.Updated++
		}
	}

	return result
}

func (h *HistoryImporter) resolveCampaign(ctx context.Context, row models.ImportRow) (*models.Campaign, error) {
	if id := strings.TrimSpace(row.CampaignID); id != "" {
		campaign, err := h.campaignRepo.GetByID(ctx, id)
		if err == nil {
			return campaign, nil
		}
		if !errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
	}
	if ext := strings.TrimSpace(row.ExternalPlatformID); ext != "" {
		campaign, err := h.campaignRepo.GetByExternalPlatformID(ctx, ext)
		if err == nil {
			return campaign, nil
		}
		if !errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
	}
	if name := strings.TrimSpace(row.CampaignName); name != "" {
		campaign, err := h.campaignRepo.GetByName(ctx, name)
		if err == nil {
			return campaign, nil
		}
		if !errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
	}
	return nil, fmt.Errorf("no matching campaign (id=%q external=%q name=%q)",
		row.CampaignID, row.ExternalPlatformID, row.CampaignName)
}

// BuildRecordFromImportRow parses one loose row into a WeeklyRecord. Blank
// numeric cells become nil so the upsert merge leaves existing values alone.
func BuildRecordFromImportRow(row models.ImportRow, campaignID string, now time.Time) (*models.WeeklyRecord, error) {
	record := &models.WeeklyRecord{
		CampaignID: campaignID,
		RecordedBy: strings.TrimSpace(row.RecordedBy),
	}
	if record.RecordedBy == "" {
		record.RecordedBy = ImportRecordedBy
	}

	weekDate := now
	if strings.TrimSpace(row.WeekDate) != "" {
		parsed, err := ParseImportDate(row.WeekDate)
		if err != nil {
			return nil, err
		}
		weekDate = parsed
	}
	record.WeekDate = weekDate

	if row.ISOWeek != nil && *row.ISOWeek >= 1 && *row.ISOWeek <= 53 {
		record.ISOWeek = *row.ISOWeek
	} else {
		record.ISOWeek = ISOWeek(weekDate)
	}

	var err error
	if record.Reach, err = parseLooseInt(row.Reach, "reach"); err != nil {
		return nil, err
	}
	if record.Clicks, err = parseLooseInt(row.Clicks, "clicks"); err != nil {
		return nil, err
	}
	if record.Leads, err = parseLooseInt(row.Leads, "leads"); err != nil {
		return nil, err
	}
	if record.RegisteredDrivers, err = parseLooseInt(row.RegisteredDrivers, "registered_drivers"); err != nil {
		return nil, err
	}
	if record.FirstTripDrivers, err = parseLooseInt(row.FirstTripDrivers, "first_trip_drivers"); err != nil {
		return nil, err
	}
	if record.WeeklyCost, err = parseLooseFloat(row.WeeklyCost, "weekly_cost"); err != nil {
		return nil, err
	}
	if record.CostPerLead, err = parseLooseFloat(row.CostPerLead, "cost_per_lead"); err != nil {
		return nil, err
	}
	if record.CostPerRegisteredDriver, err = parseLooseFloat(row.CostPerRegisteredDriver, "cost_per_registered_driver"); err != nil {
		return nil, err
	}
	if record.CostPerFirstTripDriver, err = parseLooseFloat(row.CostPerFirstTripDriver, "cost_per_first_trip_driver"); err != nil {
		return nil, err
	}

	// Derive per-unit costs the sheet left blank.
	if record.CostPerLead == nil && record.WeeklyCost != nil && record.Leads != nil {
		v := models.CostPerLead(*record.WeeklyCost, *record.Leads)
		record.CostPerLead = &v
	}
	if record.CostPerRegisteredDriver == nil && record.WeeklyCost != nil && record.RegisteredDrivers != nil {
		v := models.CostPerDriver(*record.WeeklyCost, *record.RegisteredDrivers)
		record.CostPerRegisteredDriver = &v
	}
	if record.CostPerFirstTripDriver == nil && record.WeeklyCost != nil && record.FirstTripDrivers != nil {
		v := models.CostPerDriver(*record.WeeklyCost, *record.FirstTripDrivers)
		record.CostPerFirstTripDriver = &v
	}

	return record, nil
}

// ParseImportDate accepts dd/mm/yyyy with an optional HH:MM tail.
func ParseImportDate(raw string) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	for _, layout := range []string{"02/01/2006 15:04", "02/01/2006"} {
		if t, err := time.ParseInLocation(layout, raw, time.UTC); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("invalid date %q, expected dd/mm/yyyy", raw)
}

func cleanNumeric(raw string) string {
	raw = strings.TrimSpace(raw)
	raw = strings.ReplaceAll(raw, "$", "")
	raw = strings.ReplaceAll(raw, ",", "")
	raw = strings.ReplaceAll(raw, " ", "")
	return raw
}

func parseLooseInt(raw, field string) (*int64, error) {
	cleaned := cleanNumeric(raw)
	if cleaned == "" {
		return nil, nil
	}
	// Sheets export whole counts as "120.0" sometimes.
	if f, err := strconv.ParseFloat(cleaned, 64); err == nil {
		v := int64(f)
		return &v, nil
	}
	return nil, fmt.Errorf("invalid %s value %q", field, raw)
}

func parseLooseFloat(raw, field string) (*float64, error) {
	cleaned := cleanNumeric(raw)
	if cleaned == "" {
		return nil, nil
	}
	v, err := strconv.ParseFloat(cleaned, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid %s value %q", field, raw)
	}
	return &v, nil
}
