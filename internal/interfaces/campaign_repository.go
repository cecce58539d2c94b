// internal/interfaces/campaign_repository.go
package interfaces

import (
	"context"

	"siscoca/internal/models"
)

// CampaignFilter defines the filter criteria for listing campaigns
type CampaignFilter struct {
	State     string
	OwnerName string
	Country   string
	Vertical  string
	Platform  string
	Limit     int
	Offset    int
}

// CampaignRepository defines the interface for campaign data operations
type CampaignRepository interface {
	Create(ctx context.Context, campaign *models.Campaign) error
	GetByID(ctx context.Context, id string) (*models.Campaign, error)
	GetByExternalPlatformID(ctx context.Context, externalID string) (*models.Campaign, error)
	GetByName(ctx context.Context, name string) (*models.Campaign, error)
	List(ctx context.Context, filter CampaignFilter) ([]*models.Campaign, error)
	Count(ctx context.Context) (int, error)
	CountByOwner(ctx context.Context, ownerName string) (int, error)
	Update(ctx context.Context, id string, campaign *models.Campaign) error
	UpdateState(ctx context.Context, id string, state models.CampaignState) error
	Delete(ctx context.Context, id string) error
}
