package pgrepo

import (
	"context"

	"github.com/azorastack/market/internal/domain"
	"github.com/azorastack/market/pkg/uow"
)

type SettingsRepository struct {
	db uow.DBTX
}

func NewSettingsRepository(db uow.DBTX) *SettingsRepository {
	return &SettingsRepository{db: db}
}

func (r *SettingsRepository) Get(ctx context.Context, key string) (*domain.Setting, error) {
	var s domain.Setting
	err := r.db.QueryRow(ctx,
		`SELECT key, value, updated_at FROM settings WHERE key = $1`, key).
		Scan(&s.Key, &s.Value, &s.UpdatedAt)
	if err != nil {
		return nil, convertErr(err, "getting setting `%s`", key)
	}
	return &s, nil
}

func (r *SettingsRepository) Set(ctx context.Context, key, value string) error {
	_, err := r.db.Exec(ctx, `
		INSERT INTO settings (key, value) VALUES ($1, $2)
		ON CONFLICT (key) DO UPDATE SET value = excluded.value, updated_at = now()`,
		key, value)
	if err != nil {
		return convertErr(err, "setting `%s`", key)
	}
	return nil
}

func (r *SettingsRepository) GetAll(ctx context.Context) ([]domain.Setting, error) {
	rows, err := r.db.Query(ctx, `SELECT key, value, updated_at FROM settings ORDER BY key`)
	if err != nil {
		return nil, convertErr(err, "listing settings")
	}
	defer rows.Close()

	var settings []domain.Setting
	for rows.Next() {
		var s domain.Setting
		if scanErr := rows.Scan(&s.Key, &s.Value, &s.UpdatedAt); scanErr != nil {
			return nil, convertErr(scanErr, "listing settings")
		}
		settings = append(settings, s)
	}
	if rowsErr := rows.Err(); rowsErr != nil {
		return nil, convertErr(rowsErr, "listing settings")
	}
	return settings, nil
}
