package repository

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"strings"
	"time"

	"siscoca/internal/interfaces"
	"siscoca/internal/models"
)

type campaignRepository struct {
	db *sql.DB
}

func NewCampaignRepository(db *sql.DB) interfaces.CampaignRepository {
	return &campaignRepository{db: db}
}

const campaignColumns = `
	id, name, country, vertical, platform, segment, external_platform_id,
	owner_name, owner_initials, short_description, objective, benefit, description,
	landing_type, landing_url, state,
	creative_file, creative_file_name, external_creative_url, report_url,
	reach, clicks, leads, weekly_cost, cost_per_lead,
	registered_drivers, first_trip_drivers, cost_per_registered_driver, cost_per_first_trip_driver,
	iso_week, created_at, updated_at
`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanCampaign(row rowScanner) (*models.Campaign, error) {
	var c models.Campaign
	var externalID, landingType, landingURL sql.NullString
	var creativeFile, creativeFileName, externalCreativeURL, reportURL sql.NullString

	err := row.Scan(
		&c.ID,
		&c.Name,
		&c.Country,
		&c.Vertical,
		&c.Platform,
		&c.Segment,
		&externalID,
		&c.OwnerName,
		&c.OwnerInitials,
		&c.ShortDescription,
		&c.Objective,
		&c.Benefit,
		&c.Description,
		&landingType,
		&landingURL,
		&c.State,
		&creativeFile,
		&creativeFileName,
		&externalCreativeURL,
		&reportURL,
		&c.Reach,
		&c.Clicks,
		&c.Leads,
		&c.WeeklyCost,
		&c.CostPerLead,
		&c.RegisteredDrivers,
		&c.FirstTripDrivers,
		&c.CostPerRegisteredDriver,
		&c.CostPerFirstTripDriver,
		&c.ISOWeek,
		&c.CreatedAt,
		&c.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	c.ExternalPlatformID = externalID.String
	c.LandingType = models.LandingType(landingType.String)
	c.LandingURL = landingURL.String
	c.CreativeFile = creativeFile.String
	c.CreativeFileName = creativeFileName.String
	c.ExternalCreativeURL = externalCreativeURL.String
	c.ReportURL = reportURL.String
	c.ComputeCostPerDriver()
	return &c, nil
}

func nullStr(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

func nullTime(t time.Time) sql.NullTime {
	return sql.NullTime{Time: t, Valid: !t.IsZero()}
}

func (r *campaignRepository) Create(ctx context.Context, campaign *models.Campaign) error {
	query := `
		INSERT INTO campaigns (
			id, name, country, vertical, platform, segment, external_platform_id,
			owner_name, owner_initials, short_description, objective, benefit, description,
			landing_type, landing_url, state, iso_week
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17)
		RETURNING created_at, updated_at
	`

	err := r.db.QueryRowContext(
		ctx,
		query,
		campaign.ID,
		campaign.Name,
		campaign.Country,
		campaign.Vertical,
		campaign.Platform,
		campaign.Segment,
		nullStr(campaign.ExternalPlatformID),
		campaign.OwnerName,
		campaign.OwnerInitials,
		campaign.ShortDescription,
		campaign.Objective,
		campaign.Benefit,
		campaign.Description,
		nullStr(string(campaign.LandingType)),
		nullStr(campaign.LandingURL),
		campaign.State,
		campaign.ISOWeek,
	).Scan(&campaign.CreatedAt, &campaign.UpdatedAt)
	return err
}

func (r *campaignRepository) GetByID(ctx context.Context, id string) (*models.Campaign, error) {
	query := `SELECT ` + campaignColumns + ` FROM campaigns WHERE id = $1`

	c, err := scanCampaign(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, sql.ErrNoRows
		}
		log.Println("Error fetching campaign with ID:", id, "Error:", err)
		return nil, err
	}
	return c, nil
}

func (r *campaignRepository) GetByExternalPlatformID(ctx context.Context, externalID string) (*models.Campaign, error) {
	query := `SELECT ` + campaignColumns + ` FROM campaigns WHERE external_platform_id = $1`
	return scanCampaign(r.db.QueryRowContext(ctx, query, externalID))
}

func (r *campaignRepository) GetByName(ctx context.Context, name string) (*models.Campaign, error) {
	query := `SELECT ` + campaignColumns + ` FROM campaigns WHERE name = $1`
	return scanCampaign(r.db.QueryRowContext(ctx, query, name))
}

// List retrieves campaigns matching the filter, newest first.
func (r *campaignRepository) List(ctx context.Context, filter interfaces.CampaignFilter) ([]*models.Campaign, error) {
	query := `SELECT ` + campaignColumns + ` FROM campaigns WHERE 1=1`

	var args []interface{}
	var whereClauses []string
	argPos := 1

	if filter.State != "" {
		whereClauses = append(whereClauses, fmt.Sprintf("state = $%d", argPos))
		args = append(args, filter.State)
		argPos++
	}

	if filter.OwnerName != "" {
		whereClauses = append(whereClauses, fmt.Sprintf("owner_name = $%d", argPos))
		args = append(args, filter.OwnerName)
		argPos++
	}

	if filter.Country != "" {
		whereClauses = append(whereClauses, fmt.Sprintf("country = $%d", argPos))
		args = append(args, filter.Country)
		argPos++
	}

	if filter.Vertical != "" {
		whereClauses = append(whereClauses, fmt.Sprintf("vertical = $%d", argPos))
		args = append(args, filter.Vertical)
		argPos++
	}

	if filter.Platform != "" {
		whereClauses = append(whereClauses, fmt.Sprintf("platform = $%d", argPos))
		args = append(args, filter.Platform)
		argPos++
	}

	if len(whereClauses) > 0 {
		query += " AND " + strings.Join(whereClauses, " AND ")
	}

	query += " ORDER BY created_at DESC"

	if filter.Limit > 0 {
		query += fmt.Sprintf(" LIMIT $%d", argPos)
		args = append(args, filter.Limit)
		argPos++
	}

	if filter.Offset > 0 {
		query += fmt.Sprintf(" OFFSET $%d", argPos)
		args = append(args, filter.Offset)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var campaigns []*models.Campaign
	for rows.Next() {
		c, err := scanCampaign(rows)
		if err != nil {
			return nil, err
		}
		campaigns = append(campaigns, c)
	}

	return campaigns, rows.Err()
}

func (r *campaignRepository) Count(ctx context.Context) (int, error) {
	var n int
	err := r.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM campaigns").Scan(&n)
	return n, err
}

func (r *campaignRepository) CountByOwner(ctx context.Context, ownerName string) (int, error) {
	var n int
	err := r.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM campaigns WHERE owner_name = $1", ownerName).Scan(&n)
	return n, err
}

// Update writes the full campaign row with the given ID.
func (r *campaignRepository) Update(ctx context.Context, id string, campaign *models.Campaign) error {
	query := `
		UPDATE campaigns
		SET name = $1,
			external_platform_id = $2,
			owner_name = $3,
			owner_initials = $4,
			short_description = $5,
			objective = $6,
			benefit = $7,
			description = $8,
			landing_type = $9,
			landing_url = $10,
			state = $11,
			creative_file = $12,
			creative_file_name = $13,
			external_creative_url = $14,
			report_url = $15,
			reach = $16,
			clicks = $17,
			leads = $18,
			weekly_cost = $19,
			cost_per_lead = $20,
			registered_drivers = $21,
			first_trip_drivers = $22,
			cost_per_registered_driver = $23,
			cost_per_first_trip_driver = $24,
			iso_week = $25,
			updated_at = NOW() AT TIME ZONE 'UTC'
		WHERE id = $26
		RETURNING updated_at
	`

	err := r.db.QueryRowContext(
		ctx,
		query,
		campaign.Name,
		nullStr(campaign.ExternalPlatformID),
		campaign.OwnerName,
		campaign.OwnerInitials,
		campaign.ShortDescription,
		campaign.Objective,
		campaign.Benefit,
		campaign.Description,
		nullStr(string(campaign.LandingType)),
		nullStr(campaign.LandingURL),
		campaign.State,
		nullStr(campaign.CreativeFile),
		nullStr(campaign.CreativeFileName),
		nullStr(campaign.ExternalCreativeURL),
		nullStr(campaign.ReportURL),
		campaign.Reach,
		campaign.Clicks,
		campaign.Leads,
		campaign.WeeklyCost,
		campaign.CostPerLead,
		campaign.RegisteredDrivers,
		campaign.FirstTripDrivers,
		campaign.CostPerRegisteredDriver,
		campaign.CostPerFirstTripDriver,
		campaign.ISOWeek,
		id,
	).Scan(&campaign.UpdatedAt)

	if err != nil {
		if err == sql.ErrNoRows {
			return fmt.Errorf("campaign not found")
		}
		return fmt.Errorf("failed to update campaign: %w", err)
	}

	return nil
}

func (r *campaignRepository) UpdateState(ctx context.Context, id string, state models.CampaignState) error {
	query := `
		UPDATE campaigns
		SET state = $1,
			updated_at = NOW() AT TIME ZONE 'UTC'
		WHERE id = $2
	`

	res, err := r.db.ExecContext(ctx, query, state, id)
	if err != nil {
		return err
	}

	rows, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// Delete removes a campaign by ID; creatives and history cascade in the schema.
func (r *campaignRepository) Delete(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, "DELETE FROM campaigns WHERE id = $1", id)
	if err != nil {
		return err
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}

	if rowsAffected == 0 {
		return sql.ErrNoRows
	}

	return nil
}
