package repository

import (
	"context"
	"database/sql"
	"fmt"

	"siscoca/internal/models"
)

type CreativeRepository interface {
	Create(ctx context.Context, creative *models.Creative) error
	GetByID(ctx context.Context, id string) (*models.Creative, error)
	ListByCampaign(ctx context.Context, campaignID string) ([]*models.Creative, error)
	ListByCampaignAndActive(ctx context.Context, campaignID string, active bool) ([]*models.Creative, error)
	CountActiveByCampaign(ctx context.Context, campaignID string) (int, error)
	Update(ctx context.Context, id string, req *models.UpdateCreativeRequest) error
	SetActive(ctx context.Context, id string, active bool) error
	SetOrder(ctx context.Context, id string, order int) error
	Delete(ctx context.Context, id string) error
}

type creativeRepository struct {
	db *sql.DB
}

func NewCreativeRepository(db *sql.DB) CreativeRepository {
	return &creativeRepository{db: db}
}

const creativeColumns = `id, campaign_id, file, file_name, external_url, storage_url, active, display_order, created_at, updated_at`

func scanCreative(row rowScanner) (*models.Creative, error) {
	var c models.Creative
	var file, fileName, externalURL, storageURL sql.NullString
	err := row.Scan(
		&c.ID,
		&c.CampaignID,
		&file,
		&fileName,
		&externalURL,
		&storageURL,
		&c.Active,
		&c.Order,
		&c.CreatedAt,
		&c.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	c.File = file.String
	c.FileName = fileName.String
	c.ExternalURL = externalURL.String
	c.StorageURL = storageURL.String
	return &c, nil
}

func (r *creativeRepository) Create(ctx context.Context, creative *models.Creative) error {
	query := `
		INSERT INTO creatives (
			id, campaign_id, file, file_name, external_url, storage_url, active, display_order
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING created_at
	`

	return r.db.QueryRowContext(
		ctx,
		query,
		creative.ID,
		creative.CampaignID,
		nullStr(creative.File),
		nullStr(creative.FileName),
		nullStr(creative.ExternalURL),
		nullStr(creative.StorageURL),
		creative.Active,
		creative.Order,
	).Scan(&creative.CreatedAt)
}

func (r *creativeRepository) GetByID(ctx context.Context, id string) (*models.Creative, error) {
	query := `SELECT ` + creativeColumns + ` FROM creatives WHERE id = $1`
	c, err := scanCreative(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, sql.ErrNoRows
		}
		return nil, fmt.Errorf("failed to fetch creative: %w", err)
	}
	return c, nil
}

func (r *creativeRepository) ListByCampaign(ctx context.Context, campaignID string) ([]*models.Creative, error) {
	query := `SELECT ` + creativeColumns + ` FROM creatives WHERE campaign_id = $1 ORDER BY display_order ASC, created_at ASC`
	return r.list(ctx, query, campaignID)
}

func (r *creativeRepository) ListByCampaignAndActive(ctx context.Context, campaignID string, active bool) ([]*models.Creative, error) {
	query := `SELECT ` + creativeColumns + ` FROM creatives WHERE campaign_id = $1 AND active = $2 ORDER BY display_order ASC, created_at ASC`
	return r.list(ctx, query, campaignID, active)
}

func (r *creativeRepository) CountActiveByCampaign(ctx context.Context, campaignID string) (int, error) {
	var n int
	err := r.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM creatives WHERE campaign_id = $1 AND active = TRUE", campaignID).Scan(&n)
	return n, err
}

func (r *creativeRepository) list(ctx context.Context, query string, args ...any) ([]*models.Creative, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var creatives []*models.Creative
	for rows.Next() {
		c, err := scanCreative(rows)
		if err != nil {
			return nil, err
		}
		creatives = append(creatives, c)
	}
	return creatives, rows.Err()
}

func (r *creativeRepository) Update(ctx context.Context, id string, req *models.UpdateCreativeRequest) error {
	query := `
		UPDATE creatives
		SET file = COALESCE($1, file),
			file_name = COALESCE($2, file_name),
			external_url = COALESCE($3, external_url),
			active = COALESCE($4, active),
			display_order = COALESCE($5, display_order),
			updated_at = NOW() AT TIME ZONE 'UTC'
		WHERE id = $6
	`

	res, err := r.db.ExecContext(ctx, query, req.File, req.FileName, req.ExternalURL, req.Active, req.Order, id)
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

func (r *creativeRepository) SetActive(ctx context.Context, id string, active bool) error {
	res, err := r.db.ExecContext(ctx,
		"UPDATE creatives SET active = $1, updated_at = NOW() AT TIME ZONE 'UTC' WHERE id = $2", active, id)
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

func (r *creativeRepository) SetOrder(ctx context.Context, id string, order int) error {
	res, err := r.db.ExecContext(ctx,
		"UPDATE creatives SET display_order = $1, updated_at = NOW() AT TIME ZONE 'UTC' WHERE id = $2", order, id)
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

func (r *creativeRepository) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, "DELETE FROM creatives WHERE id = $1", id)
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
