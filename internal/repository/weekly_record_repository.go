package repository

import (
	"context"
	"database/sql"

	"github.com/google/uuid"
	"siscoca/internal/interfaces"
	"siscoca/internal/models"
)

type weeklyRecordRepository struct {
	db *sql.DB
}

func NewWeeklyRecordRepository(db *sql.DB) interfaces.WeeklyRecordRepository {
	return &weeklyRecordRepository{db: db}
}

const weeklyRecordColumns = `
	id, campaign_id, iso_week,
	reach, clicks, leads, weekly_cost, cost_per_lead,
	registered_drivers, first_trip_drivers, cost_per_registered_driver, cost_per_first_trip_driver,
	week_date, recorded_at, recorded_by
`

func scanWeeklyRecord(row rowScanner) (*models.WeeklyRecord, error) {
	var rec models.WeeklyRecord
	var recordedBy sql.NullString
	err := row.Scan(
		&rec.ID,
		&rec.CampaignID,
		&rec.ISOWeek,
		&rec.Reach,
		&rec.Clicks,
		&rec.Leads,
		&rec.WeeklyCost,
		&rec.CostPerLead,
		&rec.RegisteredDrivers,
		&rec.FirstTripDrivers,
		&rec.CostPerRegisteredDriver,
		&rec.CostPerFirstTripDriver,
		&rec.WeekDate,
		&rec.RecordedAt,
		&recordedBy,
	)
	if err != nil {
		return nil, err
	}
	rec.RecordedBy = recordedBy.String
	return &rec, nil
}

// Upsert inserts or merges one record per (campaign_id, iso_week). On
// conflict, incoming NULLs keep the stored value; recorded_at and an
// already-stored week_date are never overwritten by a defaulted one.
func (r *weeklyRecordRepository) Upsert(ctx context.Context, record *models.WeeklyRecord) (bool, error) {
	if record.ID == "" {
		record.ID = uuid.NewString()
	}

	query := `
		INSERT INTO weekly_records (
			id, campaign_id, iso_week,
			reach, clicks, leads, weekly_cost, cost_per_lead,
			registered_drivers, first_trip_drivers, cost_per_registered_driver, cost_per_first_trip_driver,
			week_date, recorded_by
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, COALESCE($13, now()), $14)
		ON CONFLICT (campaign_id, iso_week) DO UPDATE SET
			reach = COALESCE(EXCLUDED.reach, weekly_records.reach),
			clicks = COALESCE(EXCLUDED.clicks, weekly_records.clicks),
			leads = COALESCE(EXCLUDED.leads, weekly_records.leads),
			weekly_cost = COALESCE(EXCLUDED.weekly_cost, weekly_records.weekly_cost),
			cost_per_lead = COALESCE(EXCLUDED.cost_per_lead, weekly_records.cost_per_lead),
			registered_drivers = COALESCE(EXCLUDED.registered_drivers, weekly_records.registered_drivers),
			first_trip_drivers = COALESCE(EXCLUDED.first_trip_drivers, weekly_records.first_trip_drivers),
			cost_per_registered_driver = COALESCE(EXCLUDED.cost_per_registered_driver, weekly_records.cost_per_registered_driver),
			cost_per_first_trip_driver = COALESCE(EXCLUDED.cost_per_first_trip_driver, weekly_records.cost_per_first_trip_driver),
			week_date = COALESCE($13, weekly_records.week_date),
			recorded_by = COALESCE(NULLIF(EXCLUDED.recorded_by, ''), weekly_records.recorded_by)
		RETURNING id, recorded_at, week_date, (xmax = 0) AS inserted
	`

	var inserted bool
	err := r.db.QueryRowContext(
		ctx,
		query,
		record.ID,
		record.CampaignID,
		record.ISOWeek,
		record.Reach,
		record.Clicks,
		record.Leads,
		record.WeeklyCost,
		record.CostPerLead,
		record.RegisteredDrivers,
		record.FirstTripDrivers,
		record.CostPerRegisteredDriver,
		record.CostPerFirstTripDriver,
		nullTime(record.WeekDate),
		nullStr(record.RecordedBy),
	).Scan(&record.ID, &record.RecordedAt, &record.WeekDate, &inserted)
	return inserted, err
}

func (r *weeklyRecordRepository) GetByID(ctx context.Context, id string) (*models.WeeklyRecord, error) {
	query := `SELECT ` + weeklyRecordColumns + ` FROM weekly_records WHERE id = $1`
	return scanWeeklyRecord(r.db.QueryRowContext(ctx, query, id))
}

func (r *weeklyRecordRepository) GetByCampaignAndWeek(ctx context.Context, campaignID string, isoWeek int) (*models.WeeklyRecord, error) {
	query := `SELECT ` + weeklyRecordColumns + ` FROM weekly_records WHERE campaign_id = $1 AND iso_week = $2`
	return scanWeeklyRecord(r.db.QueryRowContext(ctx, query, campaignID, isoWeek))
}

func (r *weeklyRecordRepository) ListAll(ctx context.Context) ([]*models.WeeklyRecord, error) {
	query := `SELECT ` + weeklyRecordColumns + ` FROM weekly_records ORDER BY iso_week DESC, week_date DESC`
	return r.list(ctx, query)
}

func (r *weeklyRecordRepository) ListByCampaign(ctx context.Context, campaignID string) ([]*models.WeeklyRecord, error) {
	query := `SELECT ` + weeklyRecordColumns + ` FROM weekly_records WHERE campaign_id = $1 ORDER BY iso_week DESC`
	return r.list(ctx, query, campaignID)
}

func (r *weeklyRecordRepository) ListByWeek(ctx context.Context, isoWeek int) ([]*models.WeeklyRecord, error) {
	query := `SELECT ` + weeklyRecordColumns + ` FROM weekly_records WHERE iso_week = $1 ORDER BY week_date DESC`
	return r.list(ctx, query, isoWeek)
}

func (r *weeklyRecordRepository) list(ctx context.Context, query string, args ...any) ([]*models.WeeklyRecord, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []*models.WeeklyRecord
	for rows.Next() {
		rec, err := scanWeeklyRecord(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}

func (r *weeklyRecordRepository) Update(ctx context.Context, id string, record *models.WeeklyRecord) error {
	query := `
		UPDATE weekly_records
		SET iso_week = $1,
			reach = COALESCE($2, reach),
			clicks = COALESCE($3, clicks),
			leads = COALESCE($4, leads),
			weekly_cost = COALESCE($5, weekly_cost),
			cost_per_lead = COALESCE($6, cost_per_lead),
			registered_drivers = COALESCE($7, registered_drivers),
			first_trip_drivers = COALESCE($8, first_trip_drivers),
			cost_per_registered_driver = COALESCE($9, cost_per_registered_driver),
			cost_per_first_trip_driver = COALESCE($10, cost_per_first_trip_driver),
			recorded_by = COALESCE(NULLIF($11, ''), recorded_by)
		WHERE id = $12
	`

	res, err := r.db.ExecContext(
		ctx,
		query,
		record.ISOWeek,
		record.Reach,
		record.Clicks,
		record.Leads,
		record.WeeklyCost,
		record.CostPerLead,
		record.RegisteredDrivers,
		record.FirstTripDrivers,
		record.CostPerRegisteredDriver,
		record.CostPerFirstTripDriver,
		record.RecordedBy,
		id,
	)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return sql.ErrNoRows
	}
	return nil
}

func (r *weeklyRecordRepository) UpdateISOWeek(ctx context.Context, id string, isoWeek int) error {
	res, err := r.db.ExecContext(ctx, "UPDATE weekly_records SET iso_week = $1 WHERE id = $2", isoWeek, id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return sql.ErrNoRows
	}
	return nil
}

func (r *weeklyRecordRepository) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, "DELETE FROM weekly_records WHERE id = $1", id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return sql.ErrNoRows
	}
	return nil
}
