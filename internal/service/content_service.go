package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jolanboyev/ehson-backend/internal/database"
	"github.com/jolanboyev/ehson-backend/internal/models"
	"github.com/jolanboyev/ehson-backend/internal/repository"
)

// ContentService owns the admin-editable collections: campaigns, ads, team
// and the settings singleton.
type ContentService struct {
	campaigns *repository.CampaignRepository
	ads       *repository.AdRepository
	team      *repository.TeamRepository
	settings  *repository.SettingsRepository
}

func NewContentService(campaigns *repository.CampaignRepository, ads *repository.AdRepository, team *repository.TeamRepository, settings *repository.SettingsRepository) *ContentService {
	return &ContentService{
		campaigns: campaigns,
		ads:       ads,
		team:      team,
		settings:  settings,
	}
}

func (s *ContentService) Campaigns(ctx context.Context) ([]models.Campaign, error) {
	return s.campaigns.List(ctx)
}

func (s *ContentService) SaveCampaign(ctx context.Context, c models.Campaign) error {
	if strings.TrimSpace(c.ID) == "" {
		return invalid("id", "required")
	}
	if strings.TrimSpace(c.Title) == "" {
		return invalid("title", "required")
	}
	if !c.Category.Valid() {
		return invalid("category", "unknown category "+string(c.Category))
	}
	if c.TargetAmount < 0 {
		return invalid("targetAmount", "negative")
	}
	if c.CurrentAmount < 0 {
		return invalid("currentAmount", "negative")
	}
	if c.Donors < 0 {
		return invalid("donors", "negative")
	}
	if c.DaysLeft < 0 {
		return invalid("daysLeft", "negative")
	}
	if c.CreatedAt == "" {
		c.CreatedAt = time.Now().Format(time.RFC3339)
	}
	return s.campaigns.Upsert(ctx, &c)
}

func (s *ContentService) DeleteCampaign(ctx context.Context, id string) error {
	return s.campaigns.Delete(ctx, id)
}

func (s *ContentService) Ads(ctx context.Context) ([]models.Ad, error) {
	return s.ads.List(ctx)
}

func (s *ContentService) SaveAd(ctx context.Context, a models.Ad) error {
	if strings.TrimSpace(a.ID) == "" {
		return invalid("id", "required")
	}
	if strings.TrimSpace(a.Title) == "" {
		return invalid("title", "required")
	}
	if a.ShowDuration <= 0 {
		return invalid("showDuration", "must be positive")
	}
	if a.Type == "" {
		a.Type = "banner"
	}
	if a.CreatedAt == "" {
		a.CreatedAt = time.Now().Format(time.RFC3339)
	}
	return s.ads.Upsert(ctx, &a)
}

func (s *ContentService) DeleteAd(ctx context.Context, id string) error {
	return s.ads.Delete(ctx, id)
}

func (s *ContentService) Team(ctx context.Context) ([]models.TeamMember, error) {
	return s.team.List(ctx)
}

func (s *ContentService) SaveTeamMember(ctx context.Context, m models.TeamMember) error {
	if m.ID <= 0 {
		return invalid("id", "must be positive")
	}
	if strings.TrimSpace(m.Name) == "" {
		return invalid("name", "required")
	}
	if m.Socials == nil {
		m.Socials = map[string]string{}
	}
	return s.team.Upsert(ctx, &m)
}

func (s *ContentService) DeleteTeamMember(ctx context.Context, id int64) error {
	return s.team.Delete(ctx, id)
}

// Settings returns the singleton, falling back to the defaults when the row
// has not been seeded yet.
func (s *ContentService) Settings(ctx context.Context) (models.AdSettings, error) {
	stored, err := s.settings.Get(ctx)
	if err != nil {
		return models.AdSettings{}, err
	}
	if stored == nil {
		return database.DefaultAdSettings, nil
	}
	return *stored, nil
}

func (s *ContentService) SaveSettings(ctx context.Context, settings models.AdSettings) error {
	if settings.OverlayDuration <= 0 {
		return invalid("overlayDuration", "must be positive")
	}
	if settings.SkipAfter < 0 {
		return invalid("skipAfter", "negative")
	}
	return s.settings.Set(ctx, settings)
}

// Clear wipes campaigns, ads and team and resets settings to defaults.
func (s *ContentService) Clear(ctx context.Context) error {
	if err := s.campaigns.DeleteAll(ctx); err != nil {
		return fmt.Errorf("clear campaigns: %w", err)
	}
	if err := s.ads.DeleteAll(ctx); err != nil {
		return fmt.Errorf("clear ads: %w", err)
	}
	if err := s.team.DeleteAll(ctx); err != nil {
		return fmt.Errorf("clear team: %w", err)
	}
	if err := s.settings.Set(ctx, database.DefaultAdSettings); err != nil {
		return fmt.Errorf("reset settings: %w", err)
	}
	return nil
}

// Export bundles every collection into one document.
type Export struct {
	Campaigns []models.Campaign   `json:"campaigns"`
	Ads       []models.Ad         `json:"ads"`
	Team      []models.TeamMember `json:"team"`
	Settings  models.AdSettings   `json:"settings"`
}

func (s *ContentService) Export(ctx context.Context) (*Export, error) {
	campaigns, err := s.campaigns.List(ctx)
	if err != nil {
		return nil, err
	}
	ads, err := s.ads.List(ctx)
	if err != nil {
		return nil, err
	}
	team, err := s.team.List(ctx)
	if err != nil {
		return nil, err
	}
	settings, err := s.Settings(ctx)
	if err != nil {
		return nil, err
	}
	return &Export{
		Campaigns: campaigns,
		Ads:       ads,
		Team:      team,
		Settings:  settings,
	}, nil
}
