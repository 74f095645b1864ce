package models

import "time"

type PaymentStatus string

const (
	PaymentPending PaymentStatus = "pending"
	PaymentSuccess PaymentStatus = "success"
	PaymentFailed  PaymentStatus = "failed"
)

type CampaignCategory string

const (
	CategoryMedical    CampaignCategory = "tibbiyot"
	CategoryDisability CampaignCategory = "nogironlik"
	CategoryEducation  CampaignCategory = "talim"
	CategoryHousing    CampaignCategory = "uy-joy"
	CategoryAnimals    CampaignCategory = "hayvonlar"
	CategorySocial     CampaignCategory = "ijtimoiy"
	CategoryWomen      CampaignCategory = "ayollar"
	CategoryOrphans    CampaignCategory = "yetimlar"
)

// Categories lists every category the front-end knows how to filter by.
var Categories = []CampaignCategory{
	CategoryMedical,
	CategoryDisability,
	CategoryEducation,
	CategoryHousing,
	CategoryAnimals,
	CategorySocial,
	CategoryWomen,
	CategoryOrphans,
}

func (c CampaignCategory) Valid() bool {
	for _, known := range Categories {
		if c == known {
			return true
		}
	}
	return false
}

// User is keyed by the Telegram user id kept as text, which is also what the
// Click gateway sends back as merchant_user_id.
type User struct {
	UserID    string    `json:"user_id"`
	Username  string    `json:"username"`
	FirstName string    `json:"first_name"`
	CreatedAt time.Time `json:"created_at"`
}

type Payment struct {
	PaymentID    string        `json:"payment_id"`
	UserID       string        `json:"user_id"`
	Amount       float64       `json:"amount"`
	Status       PaymentStatus `json:"status"`
	ClickTransID string        `json:"click_trans_id"`
	CreatedAt    time.Time     `json:"created_at"`
}

// Campaign JSON tags keep the camelCase names the mini-app front-end was
// written against.
type Campaign struct {
	ID            string           `json:"id"`
	Title         string           `json:"title"`
	Category      CampaignCategory `json:"category"`
	Description   string           `json:"description"`
	TargetAmount  float64          `json:"targetAmount"`
	CurrentAmount float64          `json:"currentAmount"`
	Donors        int              `json:"donors"`
	DaysLeft      int              `json:"daysLeft"`
	Urgent        bool             `json:"urgent"`
	CardNumber    string           `json:"cardNumber"`
	CardOwner     string           `json:"cardOwner"`
	ContactPhone  string           `json:"contactPhone"`
	ContactName   string           `json:"contactName"`
	Image         string           `json:"image"`
	CreatedBy     string           `json:"createdBy"`
	CreatedAt     string           `json:"createdAt"`
}

type Ad struct {
	ID           string `json:"id"`
	Type         string `json:"type"`
	Title        string `json:"title"`
	Description  string `json:"description"`
	LinkURL      string `json:"linkUrl"`
	Contact      string `json:"contact"`
	ShowDuration int    `json:"showDuration"`
	Banner       bool   `json:"banner"`
	CreatedAt    string `json:"createdAt"`
}

type TeamMember struct {
	ID          int64             `json:"id"`
	Name        string            `json:"name"`
	Role        string            `json:"role"`
	Description string            `json:"description"`
	Image       string            `json:"image"`
	Socials     map[string]string `json:"socials"`
}

// AdSettings is the singleton overlay/banner configuration.
type AdSettings struct {
	OverlayDuration int    `json:"overlayDuration"`
	SkipAfter       int    `json:"skipAfter"`
	ShowBanner      bool   `json:"showBanner"`
	BannerText      string `json:"bannerText"`
}
