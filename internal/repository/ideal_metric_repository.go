package repository

import (
	"context"
	"database/sql"

	"siscoca/internal/models"
)

type IdealMetricRepository interface {
	Create(ctx context.Context, metric *models.IdealMetric) error
	GetByID(ctx context.Context, id string) (*models.IdealMetric, error)
	ListActive(ctx context.Context) ([]*models.IdealMetric, error)
	List(ctx context.Context) ([]*models.IdealMetric, error)
	Update(ctx context.Context, id string, req *models.UpdateIdealMetricRequest) error
	Delete(ctx context.Context, id string) error
}

type idealMetricRepository struct {
	db *sql.DB
}

func NewIdealMetricRepository(db *sql.DB) IdealMetricRepository {
	return &idealMetricRepository{db: db}
}

const idealMetricColumns = `id, name, ideal_value, min_value, max_value, unit, category, vertical, country, platform, segment, active, created_at, updated_at`

func scanIdealMetric(row rowScanner) (*models.IdealMetric, error) {
	var m models.IdealMetric
	var unit, vertical, country, platform, segment sql.NullString
	err := row.Scan(
		&m.ID,
		&m.Name,
		&m.IdealValue,
		&m.MinValue,
		&m.MaxValue,
		&unit,
		&m.Category,
		&vertical,
		&country,
		&platform,
		&segment,
		&m.Active,
		&m.CreatedAt,
		&m.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	m.Unit = unit.String
	if vertical.Valid {
		v := models.Vertical(vertical.String)
		m.Vertical = &v
	}
	if country.Valid {
		c := models.Country(country.String)
		m.Country = &c
	}
	if platform.Valid {
		p := models.Platform(platform.String)
		m.Platform = &p
	}
	if segment.Valid {
		s := models.Segment(segment.String)
		m.Segment = &s
	}
	return &m, nil
}

func (r *idealMetricRepository) Create(ctx context.Context, metric *models.IdealMetric) error {
	query := `
		INSERT INTO ideal_metrics (
			id, name, ideal_value, min_value, max_value, unit, category,
			vertical, country, platform, segment, active
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		RETURNING created_at, updated_at
	`

	var vertical, country, platform, segment sql.NullString
	if metric.Vertical != nil {
		vertical = nullStr(string(*metric.Vertical))
	}
	if metric.Country != nil {
		country = nullStr(string(*metric.Country))
	}
	if metric.Platform != nil {
		platform = nullStr(string(*metric.Platform))
	}
	if metric.Segment != nil {
		segment = nullStr(string(*metric.Segment))
	}

	return r.db.QueryRowContext(
		ctx,
		query,
		metric.ID,
		metric.Name,
		metric.IdealValue,
		metric.MinValue,
		metric.MaxValue,
		nullStr(metric.Unit),
		metric.Category,
		vertical,
		country,
		platform,
		segment,
		metric.Active,
	).Scan(&metric.CreatedAt, &metric.UpdatedAt)
}

func (r *idealMetricRepository) GetByID(ctx context.Context, id string) (*models.IdealMetric, error) {
	query := `SELECT ` + idealMetricColumns + ` FROM ideal_metrics WHERE id = $1`
	return scanIdealMetric(r.db.QueryRowContext(ctx, query, id))
}

func (r *idealMetricRepository) ListActive(ctx context.Context) ([]*models.IdealMetric, error) {
	query := `SELECT ` + idealMetricColumns + ` FROM ideal_metrics WHERE active = TRUE ORDER BY created_at DESC`
	return r.list(ctx, query)
}

func (r *idealMetricRepository) List(ctx context.Context) ([]*models.IdealMetric, error) {
	query := `SELECT ` + idealMetricColumns + ` FROM ideal_metrics ORDER BY created_at DESC`
	return r.list(ctx, query)
}

func (r *idealMetricRepository) list(ctx context.Context, query string, args ...any) ([]*models.IdealMetric, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var metrics []*models.IdealMetric
	for rows.Next() {
		m, err := scanIdealMetric(rows)
		if err != nil {
			return nil, err
		}
		metrics = append(metrics, m)
	}
	return metrics, rows.Err()
}

func (r *idealMetricRepository) Update(ctx context.Context, id string, req *models.UpdateIdealMetricRequest) error {
	query := `
		UPDATE ideal_metrics
		SET name = COALESCE($1, name),
			ideal_value = COALESCE($2, ideal_value),
			min_value = COALESCE($3, min_value),
			max_value = COALESCE($4, max_value),
			unit = COALESCE($5, unit),
			active = COALESCE($6, active),
			updated_at = NOW() AT TIME ZONE 'UTC'
		WHERE id = $7
	`

	res, err := r.db.ExecContext(ctx, query, req.Name, req.IdealValue, req.MinValue, req.MaxValue, req.Unit, req.Active, id)
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

func (r *idealMetricRepository) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, "DELETE FROM ideal_metrics WHERE id = $1", id)
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
