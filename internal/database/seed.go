package database

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jolanboyev/ehson-backend/internal/models"
)

// DefaultAdSettings is what a fresh install (and /api/clear) starts from.
var DefaultAdSettings = models.AdSettings{
	OverlayDuration: 8,
	SkipAfter:       3,
	ShowBanner:      true,
	BannerText:      "🎯 Maxsus Taklif! Eng Yaxshi Xizmatlar",
}

func defaultCampaigns(now string) []models.Campaign {
	return []models.Campaign{
		{
			ID:            "campaign_1",
			Title:         "Anvar's Yurak Operatsiyasi",
			Category:      models.CategoryMedical,
			Description:   "7 yoshli Anvarning yurak operatsiyasi uchun yordam kerak. Oila imkoniyatlari cheklangan.",
			TargetAmount:  50000000,
			CurrentAmount: 35000000,
			Donors:        234,
			DaysLeft:      15,
			Urgent:        true,
			CardNumber:    "8600 1234 5678 9012",
			CardOwner:     "ANVAR OTASI KARIM UMAROV",
			ContactPhone:  "+998-95-888-38-51",
			ContactName:   "Karim Umarov (Anvar otasi)",
			Image:         "🏥",
			CreatedBy:     "Admin",
			CreatedAt:     now,
		},
		{
			ID:            "campaign_2",
			Title:         "Maryam's Onkologiya Davolash",
			Category:      models.CategoryMedical,
			Description:   "45 yoshli Maryam onaning onkologiya kasalligi uchun kimyoterapiya kursi kerak.",
			TargetAmount:  80000000,
			CurrentAmount: 25000000,
			Donors:        156,
			DaysLeft:      30,
			Urgent:        true,
			CardNumber:    "8600 2345 6789 0123",
			CardOwner:     "MARYAM QIZI FOTIMA KARIMOVA",
			ContactPhone:  "+998-95-888-38-51",
			ContactName:   "Fotima Karimova (Maryam qizi)",
			Image:         "🏥",
			CreatedBy:     "Admin",
			CreatedAt:     now,
		},
		{
			ID:            "campaign_3",
			Title:         "Nogironlik Aravachasi",
			Category:      models.CategoryDisability,
			Description:   "Harakat qilish imkoniyati cheklangan Dilshod uchun elektr aravachasi kerak.",
			TargetAmount:  15000000,
			CurrentAmount: 8500000,
			Donors:        89,
			DaysLeft:      25,
			Urgent:        false,
			CardNumber:    "8600 6789 0123 4567",
			CardOwner:     "DILSHOD ONASI NARGIZA UMAROVA",
			ContactPhone:  "+998-95-888-38-51",
			ContactName:   "Nargiza Umarova (Dilshod onasi)",
			Image:         "♿",
			CreatedBy:     "Admin",
			CreatedAt:     now,
		},
	}
}

func defaultAds(now string) []models.Ad {
	return []models.Ad{
		{
			ID:           "ad_1",
			Type:         "banner",
			Title:        "🏥 Zamonaviy Tibbiy Markaz - Eng Yaxshi Xizmatlar!",
			Description:  "Eng yaxshi tibbiy xizmatlar va zamonaviy uskunalar",
			LinkURL:      "https://t.me/serinaqu",
			Contact:      "@serinaqu",
			ShowDuration: 12,
			Banner:       true,
			CreatedAt:    now,
		},
		{
			ID:           "ad_2",
			Type:         "banner",
			Title:        "⚖️ Bepul Yuridik Maslahat - 24/7 Xizmat!",
			Description:  "Har qanday huquqiy masalalar bo'yicha bepul maslahat",
			LinkURL:      "https://t.me/serinaqu",
			Contact:      "@serinaqu",
			ShowDuration: 15,
			Banner:       true,
			CreatedAt:    now,
		},
	}
}

func defaultTeam() []models.TeamMember {
	return []models.TeamMember{
		{
			ID:          1,
			Name:        "Jasurbek Jo'lanboyev",
			Role:        "CEO & Founder",
			Description: "Platformani yaratish va boshqarishda yetakchi rol o'ynaydi.",
			Image:       "https://via.placeholder.com/400x200?text=CEO",
			Socials: map[string]string{
				"telegram": "https://t.me/Vscoderr",
				"youtube":  "https://www.youtube.com/@Jasurbek_Jolanboyev",
			},
		},
		{
			ID:          2,
			Name:        "Ism Familiya",
			Role:        "CTO",
			Description: "Texnik rivojlantirish va infratuzilmani boshqaradi.",
			Image:       "https://via.placeholder.com/400x200?text=CTO",
			Socials: map[string]string{
				"telegram": "https://t.me/Vscoderr",
			},
		},
		{
			ID:          3,
			Name:        "Ism Familiya",
			Role:        "Developer",
			Description: "Frontend va backend rivojlantirishda ishtirok etadi.",
			Image:       "https://via.placeholder.com/400x200?text=Developer",
			Socials: map[string]string{
				"tiktok": "https://tiktok.com/@jasurbek_jolanboyev",
			},
		},
	}
}

// Seed inserts default campaigns, ads, team members and the settings singleton,
// but only into tables that are still empty.
func Seed(ctx context.Context, db *sql.DB) error {
	now := time.Now().Format(time.RFC3339)

	empty, err := tableEmpty(ctx, db, "campaigns")
	if err != nil {
		return err
	}
	if empty {
		for _, c := range defaultCampaigns(now) {
			urgent := 0
			if c.Urgent {
				urgent = 1
			}
			if _, err := db.ExecContext(ctx, `
INSERT INTO campaigns (id, title, category, description, target_amount, current_amount, donors, days_left, urgent, card_number, card_owner, contact_phone, contact_name, image, created_by, created_at)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
				c.ID, c.Title, string(c.Category), c.Description, c.TargetAmount, c.CurrentAmount,
				c.Donors, c.DaysLeft, urgent, c.CardNumber, c.CardOwner, c.ContactPhone, c.ContactName,
				c.Image, c.CreatedBy, c.CreatedAt); err != nil {
				return fmt.Errorf("seed campaign %s: %w", c.ID, err)
			}
		}
	}

	empty, err = tableEmpty(ctx, db, "ads")
	if err != nil {
		return err
	}
	if empty {
		for _, a := range defaultAds(now) {
			banner := 0
			if a.Banner {
				banner = 1
			}
			if _, err := db.ExecContext(ctx, `
INSERT INTO ads (id, type, title, description, link_url, contact, show_duration, banner, created_at)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
				a.ID, a.Type, a.Title, a.Description, a.LinkURL, a.Contact, a.ShowDuration, banner, a.CreatedAt); err != nil {
				return fmt.Errorf("seed ad %s: %w", a.ID, err)
			}
		}
	}

	empty, err = tableEmpty(ctx, db, "team")
	if err != nil {
		return err
	}
	if empty {
		for _, m := range defaultTeam() {
			socials, err := json.Marshal(m.Socials)
			if err != nil {
				return fmt.Errorf("marshal socials: %w", err)
			}
			if _, err := db.ExecContext(ctx, `
INSERT INTO team (id, name, role, description, image, socials) VALUES (?, ?, ?, ?, ?, ?)`,
				m.ID, m.Name, m.Role, m.Description, m.Image, string(socials)); err != nil {
				return fmt.Errorf("seed team member %d: %w", m.ID, err)
			}
		}
	}

	empty, err = tableEmpty(ctx, db, "settings")
	if err != nil {
		return err
	}
	if empty {
		data, err := json.Marshal(DefaultAdSettings)
		if err != nil {
			return fmt.Errorf("marshal settings: %w", err)
		}
		if _, err := db.ExecContext(ctx, `INSERT INTO settings (id, data) VALUES (1, ?)`, string(data)); err != nil {
			return fmt.Errorf("seed settings: %w", err)
		}
	}

	return nil
}

func tableEmpty(ctx context.Context, db *sql.DB, table string) (bool, error) {
	var count int
	if err := db.QueryRowContext(ctx, `SELECT COUNT(*) FROM `+table).Scan(&count); err != nil {
		return false, fmt.Errorf("count %s: %w", table, err)
	}
	return count == 0, nil
}
