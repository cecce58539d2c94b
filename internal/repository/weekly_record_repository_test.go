package repository

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"

	"siscoca/internal/models"
)

func TestWeeklyRecordUpsertInserts(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	defer db.Close()

	recordedAt := time.Date(2025, time.March, 10, 8, 0, 0, 0, time.UTC)
	weekDate := time.Date(2025, time.March, 10, 0, 0, 0, 0, time.UTC)
	reach := int64(1000)
	cost := 2500.0

	mock.ExpectQuery("INSERT INTO weekly_records").
		WillReturnRows(sqlmock.NewRows([]string{"id", "recorded_at", "week_date", "inserted"}).
			AddRow("rec-1", recordedAt, weekDate, true))

	repo := NewWeeklyRecordRepository(db)
	record := &models.WeeklyRecord{
		CampaignID: "c1",
		ISOWeek:    11,
		Reach:      &reach,
		WeeklyCost: &cost,
		WeekDate:   weekDate,
		RecordedBy: "trafficker",
	}

	created, err := repo.Upsert(context.Background(), record)
	if err != nil {
		t.Fatalf("Upsert() error = %v", err)
	}
	if !created {
		t.Error("expected created=true for a fresh (campaign, week) pair")
	}
	if record.ID != "rec-1" {
		t.Errorf("ID = %q, want rec-1", record.ID)
	}
	if !record.RecordedAt.Equal(recordedAt) {
		t.Errorf("RecordedAt = %v, want %v", record.RecordedAt, recordedAt)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

func TestWeeklyRecordUpsertMergesExistingRow(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	defer db.Close()

	// xmax != 0 signals the ON CONFLICT update branch ran. The merge sends
	// NULL for the unset week date, so the stored one survives and comes
	// back in the RETURNING clause.
	original := time.Date(2025, time.March, 3, 9, 0, 0, 0, time.UTC)
	storedWeekDate := time.Date(2025, time.March, 3, 0, 0, 0, 0, time.UTC)
	leads := int64(40)
	mock.ExpectQuery("INSERT INTO weekly_records").
		WithArgs(
			sqlmock.AnyArg(), "c1", 11,
			nil, nil, &leads, nil, nil,
			nil, nil, nil, nil,
			nil, nil,
		).
		WillReturnRows(sqlmock.NewRows([]string{"id", "recorded_at", "week_date", "inserted"}).
			AddRow("rec-1", original, storedWeekDate, false))

	repo := NewWeeklyRecordRepository(db)
	record := &models.WeeklyRecord{
		CampaignID: "c1",
		ISOWeek:    11,
		Leads:      &leads,
	}
	created, err := repo.Upsert(context.Background(), record)
	if err != nil {
		t.Fatalf("Upsert() error = %v", err)
	}
	if created {
		t.Error("expected created=false when the row already existed")
	}
	if !record.WeekDate.Equal(storedWeekDate) {
		t.Errorf("WeekDate = %v, want stored %v", record.WeekDate, storedWeekDate)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

func TestWeeklyRecordGetByID(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	defer db.Close()

	cols := []string{
		"id", "campaign_id", "iso_week",
		"reach", "clicks", "leads", "weekly_cost", "cost_per_lead",
		"registered_drivers", "first_trip_drivers", "cost_per_registered_driver", "cost_per_first_trip_driver",
		"week_date", "recorded_at", "recorded_by",
	}
	now := time.Now()
	mock.ExpectQuery("SELECT (.+) FROM weekly_records WHERE id").
		WithArgs("rec-1").
		WillReturnRows(sqlmock.NewRows(cols).
			AddRow("rec-1", "c1", 11, 1000, 100, 50, 2500.0, 50.0, nil, nil, nil, nil, now, now, "trafficker"))

	repo := NewWeeklyRecordRepository(db)
	rec, err := repo.GetByID(context.Background(), "rec-1")
	if err != nil {
		t.Fatalf("GetByID() error = %v", err)
	}
	if rec.ISOWeek != 11 {
		t.Errorf("ISOWeek = %d, want 11", rec.ISOWeek)
	}
	if rec.Reach == nil || *rec.Reach != 1000 {
		t.Errorf("Reach = %v, want 1000", rec.Reach)
	}
	if rec.RegisteredDrivers != nil {
		t.Errorf("RegisteredDrivers = %v, want nil", rec.RegisteredDrivers)
	}
	if rec.RecordedBy != "trafficker" {
		t.Errorf("RecordedBy = %q, want trafficker", rec.RecordedBy)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

func TestWeeklyRecordDeleteMissingRow(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	defer db.Close()

	mock.ExpectExec("DELETE FROM weekly_records").
		WithArgs("nope").
		WillReturnResult(sqlmock.NewResult(0, 0))

	repo := NewWeeklyRecordRepository(db)
	if err := repo.Delete(context.Background(), "nope"); !errors.Is(err, sql.ErrNoRows) {
		t.Errorf("Delete() error = %v, want sql.ErrNoRows", err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}
