package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/jolanboyev/ehson-backend/internal/models"
)

type AdRepository struct {
	db *sql.DB
}

func NewAdRepository(db *sql.DB) *AdRepository {
	return &AdRepository{db: db}
}

func (r *AdRepository) List(ctx context.Context) ([]models.Ad, error) {
	const query = `
SELECT id, type, title, description, link_url, contact, show_duration, banner, created_at
FROM ads ORDER BY created_at`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list ads: %w", err)
	}
	defer rows.Close()

	ads := make([]models.Ad, 0)
	for rows.Next() {
		var a models.Ad
		var banner int
		if err := rows.Scan(&a.ID, &a.Type, &a.Title, &a.Description, &a.LinkURL, &a.Contact,
			&a.ShowDuration, &banner, &a.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan ad: %w", err)
		}
		a.Banner = banner != 0
		ads = append(ads, a)
	}
	return ads, rows.Err()
}

func (r *AdRepository) Upsert(ctx context.Context, a *models.Ad) error {
	const query = `
INSERT INTO ads (id, type, title, description, link_url, contact, show_duration, banner, created_at)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
ON CONFLICT(id) DO UPDATE SET
    type = excluded.type,
    title = excluded.title,
    description = excluded.description,
    link_url = excluded.link_url,
    contact = excluded.contact,
    show_duration = excluded.show_duration,
    banner = excluded.banner,
    created_at = excluded.created_at`
	banner := 0
	if a.Banner {
		banner = 1
	}
	if _, err := r.db.ExecContext(ctx, query, a.ID, a.Type, a.Title, a.Description, a.LinkURL,
		a.Contact, a.ShowDuration, banner, a.CreatedAt); err != nil {
		return fmt.Errorf("upsert ad: %w", err)
	}
	return nil
}

func (r *AdRepository) Delete(ctx context.Context, id string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM ads WHERE id = ?`, id); err != nil {
		return fmt.Errorf("delete ad: %w", err)
	}
	return nil
}

func (r *AdRepository) DeleteAll(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM ads`); err != nil {
		return fmt.Errorf("delete ads: %w", err)
	}
	return nil
}
