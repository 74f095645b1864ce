package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jolanboyev/ehson-backend/internal/models"
)

// SettingsRepository manages the single settings row. The schema constrains
// the table to id = 1.
type SettingsRepository struct {
	db *sql.DB
}

func NewSettingsRepository(db *sql.DB) *SettingsRepository {
	return &SettingsRepository{db: db}
}

func (r *SettingsRepository) Get(ctx context.Context) (*models.AdSettings, error) {
	const query = `SELECT data FROM settings WHERE id = 1`
	var data string
	if err := r.db.QueryRowContext(ctx, query).Scan(&data); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("read settings: %w", err)
	}
	var s models.AdSettings
	if err := json.Unmarshal([]byte(data), &s); err != nil {
		return nil, fmt.Errorf("decode settings: %w", err)
	}
	return &s, nil
}

func (r *SettingsRepository) Set(ctx context.Context, s models.AdSettings) error {
	data, err := json.Marshal(s)
	if err != nil {
		return fmt.Errorf("encode settings: %w", err)
	}
	const query = `
INSERT INTO settings (id, data) VALUES (1, ?)
ON CONFLICT(id) DO UPDATE SET data = excluded.data`
	if _, err := r.db.ExecContext(ctx, query, string(data)); err != nil {
		return fmt.Errorf("write settings: %w", err)
	}
	return nil
}
