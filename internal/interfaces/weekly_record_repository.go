// internal/interfaces/weekly_record_repository.go
package interfaces

import (
	"context"

	"siscoca/internal/models"
)

// WeeklyRecordRepository defines the interface for weekly history operations.
// Upsert is the only write path that creates records; it merges non-nil
// fields onto any existing (campaign, week) row and preserves the original
// recorded_at.
type WeeklyRecordRepository interface {
	Upsert(ctx context.Context, record *models.WeeklyRecord) (created bool, err error)
	GetByID(ctx context.Context, id string) (*models.WeeklyRecord, error)
	GetByCampaignAndWeek(ctx context.Context, campaignID string, isoWeek int) (*models.WeeklyRecord, error)
	ListAll(ctx context.Context) ([]*models.WeeklyRecord, error)
	ListByCampaign(ctx context.Context, campaignID string) ([]*models.WeeklyRecord, error)
	ListByWeek(ctx context.Context, isoWeek int) ([]*models.WeeklyRecord, error)
	Update(ctx context.Context, id string, record *models.WeeklyRecord) error
	UpdateISOWeek(ctx context.Context, id string, isoWeek int) error
	Delete(ctx context.Context, id string) error
}
