package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/jolanboyev/ehson-backend/internal/models"
)

type CampaignRepository struct {
	db *sql.DB
}

func NewCampaignRepository(db *sql.DB) *CampaignRepository {
	return &CampaignRepository{db: db}
}

func (r *CampaignRepository) List(ctx context.Context) ([]models.Campaign, error) {
	const query = `
SELECT id, title, category, description, target_amount, current_amount, donors, days_left, urgent,
       card_number, card_owner, contact_phone, contact_name, image, created_by, created_at
FROM campaigns ORDER BY created_at`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list campaigns: %w", err)
	}
	defer rows.Close()

	campaigns := make([]models.Campaign, 0)
	for rows.Next() {
		var c models.Campaign
		var category string
		var urgent int
		if err := rows.Scan(&c.ID, &c.Title, &category, &c.Description, &c.TargetAmount, &c.CurrentAmount,
			&c.Donors, &c.DaysLeft, &urgent, &c.CardNumber, &c.CardOwner, &c.ContactPhone, &c.ContactName,
			&c.Image, &c.CreatedBy, &c.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan campaign: %w", err)
		}
		c.Category = models.CampaignCategory(category)
		c.Urgent = urgent != 0
		campaigns = append(campaigns, c)
	}
	return campaigns, rows.Err()
}

func (r *CampaignRepository) Upsert(ctx context.Context, c *models.Campaign) error {
	const query = `
INSERT INTO campaigns (id, title, category, description, target_amount, current_amount, donors, days_left, urgent,
                       card_number, card_owner, contact_phone, contact_name, image, created_by, created_at)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
ON CONFLICT(id) DO UPDATE SET
    title = excluded.title,
    category = excluded.category,
    description = excluded.description,
    target_amount = excluded.target_amount,
    current_amount = excluded.current_amount,
    donors = excluded.donors,
    days_left = excluded.days_left,
    urgent = excluded.urgent,
    card_number = excluded.card_number,
    card_owner = excluded.card_owner,
    contact_phone = excluded.contact_phone,
    contact_name = excluded.contact_name,
    image = excluded.image,
    created_by = excluded.created_by,
    created_at = excluded.created_at`
	urgent := 0
	if c.Urgent {
		urgent = 1
	}
	if _, err := r.db.ExecContext(ctx, query, c.ID, c.Title, string(c.Category), c.Description,
		c.TargetAmount, c.CurrentAmount, c.Donors, c.DaysLeft, urgent, c.CardNumber, c.CardOwner,
		c.ContactPhone, c.ContactName, c.Image, c.CreatedBy, c.CreatedAt); err != nil {
		return fmt.Errorf("upsert campaign: %w", err)
	}
	return nil
}

func (r *CampaignRepository) Delete(ctx context.Context, id string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM campaigns WHERE id = ?`, id); err != nil {
		return fmt.Errorf("delete campaign: %w", err)
	}
	return nil
}

func (r *CampaignRepository) DeleteAll(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM campaigns`); err != nil {
		return fmt.Errorf("delete campaigns: %w", err)
	}
	return nil
}
