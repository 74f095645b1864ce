package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/jolanboyev/ehson-backend/internal/models"
)

type TeamRepository struct {
	db *sql.DB
}

func NewTeamRepository(db *sql.DB) *TeamRepository {
	return &TeamRepository{db: db}
}

func (r *TeamRepository) List(ctx context.Context) ([]models.TeamMember, error) {
	const query = `SELECT id, name, role, description, image, socials FROM team ORDER BY id`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list team: %w", err)
	}
	defer rows.Close()

	team := make([]models.TeamMember, 0)
	for rows.Next() {
		var m models.TeamMember
		var socials string
		if err := rows.Scan(&m.ID, &m.Name, &m.Role, &m.Description, &m.Image, &socials); err != nil {
			return nil, fmt.Errorf("scan team member: %w", err)
		}
		if err := json.Unmarshal([]byte(socials), &m.Socials); err != nil {
			return nil, fmt.Errorf("decode socials for member %d: %w", m.ID, err)
		}
		team = append(team, m)
	}
	return team, rows.Err()
}

func (r *TeamRepository) Upsert(ctx context.Context, m *models.TeamMember) error {
	socials, err := json.Marshal(m.Socials)
	if err != nil {
		return fmt.Errorf("encode socials: %w", err)
	}
	const query = `
INSERT INTO team (id, name, role, description, image, socials)
VALUES (?, ?, ?, ?, ?, ?)
ON CONFLICT(id) DO UPDATE SET
    name = excluded.name,
    role = excluded.role,
    description = excluded.description,
    image = excluded.image,
    socials = excluded.socials`
	if _, err := r.db.ExecContext(ctx, query, m.ID, m.Name, m.Role, m.Description, m.Image, string(socials)); err != nil {
		return fmt.Errorf("upsert team member: %w", err)
	}
	return nil
}

func (r *TeamRepository) Delete(ctx context.Context, id int64) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM team WHERE id = ?`, id); err != nil {
		return fmt.Errorf("delete team member: %w", err)
	}
	return nil
}

func (r *TeamRepository) DeleteAll(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM team`); err != nil {
		return fmt.Errorf("delete team: %w", err)
	}
	return nil
}
