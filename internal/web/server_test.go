package web

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"path/filepath"
	"strings"
	"testing"

	"github.com/jolanboyev/ehson-backend/internal/auth"
	"github.com/jolanboyev/ehson-backend/internal/config"
	"github.com/jolanboyev/ehson-backend/internal/database"
	"github.com/jolanboyev/ehson-backend/internal/models"
	"github.com/jolanboyev/ehson-backend/internal/notify"
	"github.com/jolanboyev/ehson-backend/internal/repository"
	"github.com/jolanboyev/ehson-backend/internal/service"
)

const testAdminID = "admin123"

type captureNotifier struct {
	notices []notify.Notice
}

func (c *captureNotifier) Enqueue(n notify.Notice) {
	c.notices = append(c.notices, n)
}

type testEnv struct {
	server   *Server
	payments *repository.PaymentRepository
	users    *repository.UserRepository
	notifier *captureNotifier
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	db, err := database.Open(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	if err := database.Migrate(context.Background(), db); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	log := slog.New(slog.NewJSONHandler(io.Discard, nil))
	userRepo := repository.NewUserRepository(db)
	paymentRepo := repository.NewPaymentRepository(db)
	notifier := &captureNotifier{}

	paymentSvc := service.NewPaymentService(log, userRepo, paymentRepo, notifier)
	contentSvc := service.NewContentService(
		repository.NewCampaignRepository(db),
		repository.NewAdRepository(db),
		repository.NewTeamRepository(db),
		repository.NewSettingsRepository(db),
	)

	cfg := config.Config{
		AdminID:         testAdminID,
		BaseURL:         "http://127.0.0.1:8000",
		ListenAddr:      ":0",
		PaymentFormPath: "/payment",
		TestMode:        true,
	}

	return &testEnv{
		server:   NewServer(cfg, log, auth.NewStaticAdmin(testAdminID), paymentSvc, contentSvc, nil),
		payments: paymentRepo,
		users:    userRepo,
		notifier: notifier,
	}
}

func (e *testEnv) postCallback(t *testing.T, form url.Values) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/click/callback", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec := httptest.NewRecorder()
	e.server.Handler().ServeHTTP(rec, req)
	return rec
}

func (e *testEnv) doJSON(t *testing.T, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var rd io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		rd = bytes.NewReader(data)
	}
	req := httptest.NewRequest(method, path, rd)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	e.server.Handler().ServeHTTP(rec, req)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder, v any) {
	t.Helper()
	if err := json.Unmarshal(rec.Body.Bytes(), v); err != nil {
		t.Fatalf("decode response %q: %v", rec.Body.String(), err)
	}
}

func TestClickCallbackSuccess(t *testing.T) {
	env := newTestEnv(t)

	rec := env.postCallback(t, url.Values{
		"merchant_user_id": {"42"},
		"amount":           {"10000"},
		"error":            {"0"},
		"click_trans_id":   {"c1"},
		"payment_id":       {"p1"},
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200, body %s", rec.Code, rec.Body.String())
	}
	var resp map[string]any
	decodeBody(t, rec, &resp)
	if resp["error"] != float64(0) {
		t.Errorf("ack = %v, want error 0", resp)
	}

	payment, err := env.payments.FindByID(context.Background(), "p1")
	if err != nil {
		t.Fatalf("FindByID: %v", err)
	}
	if payment == nil || payment.Status != models.PaymentSuccess || payment.Amount != 10000 {
		t.Errorf("payment = %+v", payment)
	}
	if len(env.notifier.notices) != 1 || env.notifier.notices[0].UserID != 42 {
		t.Errorf("notices = %+v", env.notifier.notices)
	}
}

func TestClickCallbackDeclined(t *testing.T) {
	env := newTestEnv(t)

	rec := env.postCallback(t, url.Values{
		"merchant_user_id": {"42"},
		"amount":           {"10000"},
		"error":            {"1"},
		"click_trans_id":   {"c1"},
		"payment_id":       {"p1"},
	})
	// A declined payment is still an accepted callback.
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}

	payment, err := env.payments.FindByID(context.Background(), "p1")
	if err != nil {
		t.Fatalf("FindByID: %v", err)
	}
	if payment == nil || payment.Status != models.PaymentFailed {
		t.Errorf("payment = %+v", payment)
	}
	if len(env.notifier.notices) != 0 {
		t.Errorf("notices = %+v, want none", env.notifier.notices)
	}
}

func TestClickCallbackMissingSubject(t *testing.T) {
	env := newTestEnv(t)

	rec := env.postCallback(t, url.Values{
		"amount": {"10000"},
		"error":  {"0"},
	})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
	var resp map[string]any
	decodeBody(t, rec, &resp)
	if resp["error"] != float64(-1) {
		t.Errorf("ack = %v, want error -1", resp)
	}

	user, err := env.users.FindByID(context.Background(), "42")
	if err != nil {
		t.Fatalf("FindByID: %v", err)
	}
	if user != nil {
		t.Error("user written despite rejected callback")
	}
}

func testCampaign(id string) models.Campaign {
	return models.Campaign{
		ID:           id,
		Title:        "Test Kampaniya",
		Category:     models.CategoryMedical,
		Description:  "Sinov uchun",
		TargetAmount: 1000000,
		DaysLeft:     10,
		CardNumber:   "8600 0000 0000 0000",
		ContactPhone: "+998-90-000-00-00",
	}
}

func TestAdminSaveCampaign(t *testing.T) {
	env := newTestEnv(t)

	body := map[string]any{"user_id": testAdminID}
	data, _ := json.Marshal(testCampaign("c_test"))
	_ = json.Unmarshal(data, &body)
	body["user_id"] = testAdminID

	rec := env.doJSON(t, http.MethodPost, "/api/campaigns", body)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200, body %s", rec.Code, rec.Body.String())
	}

	listRec := env.doJSON(t, http.MethodGet, "/api/campaigns", nil)
	var campaigns []models.Campaign
	decodeBody(t, listRec, &campaigns)
	found := false
	for _, c := range campaigns {
		if c.ID == "c_test" {
			found = true
		}
	}
	if !found {
		t.Errorf("campaign c_test missing from list: %+v", campaigns)
	}
}

func TestAdminSaveCampaignUnauthorized(t *testing.T) {
	env := newTestEnv(t)

	body := map[string]any{}
	data, _ := json.Marshal(testCampaign("c_test"))
	_ = json.Unmarshal(data, &body)
	body["user_id"] = "not-the-admin"

	rec := env.doJSON(t, http.MethodPost, "/api/campaigns", body)
	if rec.Code != http.StatusForbidden {
		t.Fatalf("status = %d, want 403", rec.Code)
	}

	listRec := env.doJSON(t, http.MethodGet, "/api/campaigns", nil)
	var campaigns []models.Campaign
	decodeBody(t, listRec, &campaigns)
	if len(campaigns) != 0 {
		t.Errorf("campaigns = %+v, want empty", campaigns)
	}
}

func TestAdminSaveAdValidation(t *testing.T) {
	env := newTestEnv(t)

	rec := env.doJSON(t, http.MethodPost, "/api/ads", map[string]any{
		"user_id":      testAdminID,
		"id":           "ad_test",
		"title":        "Sinov",
		"showDuration": 0,
	})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400, body %s", rec.Code, rec.Body.String())
	}
	var resp map[string]any
	decodeBody(t, rec, &resp)
	if msg, _ := resp["error"].(string); !strings.Contains(msg, "showDuration") {
		t.Errorf("error = %v, want showDuration mention", resp["error"])
	}
}

func TestAdminDeleteUnauthorizedLeavesRow(t *testing.T) {
	env := newTestEnv(t)

	body := map[string]any{}
	data, _ := json.Marshal(testCampaign("c_keep"))
	_ = json.Unmarshal(data, &body)
	body["user_id"] = testAdminID
	if rec := env.doJSON(t, http.MethodPost, "/api/campaigns", body); rec.Code != http.StatusOK {
		t.Fatalf("seed campaign: %d", rec.Code)
	}

	rec := env.doJSON(t, http.MethodDelete, "/api/campaigns/c_keep", map[string]any{"user_id": "intruder"})
	if rec.Code != http.StatusForbidden {
		t.Fatalf("status = %d, want 403", rec.Code)
	}

	listRec := env.doJSON(t, http.MethodGet, "/api/campaigns", nil)
	var campaigns []models.Campaign
	decodeBody(t, listRec, &campaigns)
	if len(campaigns) != 1 {
		t.Errorf("campaigns = %+v, want the kept row", campaigns)
	}
}

func TestSettingsDefaultAndClear(t *testing.T) {
	env := newTestEnv(t)

	rec := env.doJSON(t, http.MethodGet, "/api/settings", nil)
	var settings models.AdSettings
	decodeBody(t, rec, &settings)
	if settings != database.DefaultAdSettings {
		t.Errorf("settings = %+v, want defaults", settings)
	}

	saveRec := env.doJSON(t, http.MethodPost, "/api/settings", map[string]any{
		"user_id":         testAdminID,
		"overlayDuration": 20,
		"skipAfter":       5,
		"showBanner":      false,
		"bannerText":      "o'zgartirildi",
	})
	if saveRec.Code != http.StatusOK {
		t.Fatalf("save settings: %d, body %s", saveRec.Code, saveRec.Body.String())
	}

	rec = env.doJSON(t, http.MethodGet, "/api/settings", nil)
	decodeBody(t, rec, &settings)
	if settings.OverlayDuration != 20 || settings.ShowBanner {
		t.Errorf("settings after save = %+v", settings)
	}

	clearRec := env.doJSON(t, http.MethodPost, "/api/clear", map[string]any{"user_id": testAdminID})
	if clearRec.Code != http.StatusOK {
		t.Fatalf("clear: %d", clearRec.Code)
	}

	rec = env.doJSON(t, http.MethodGet, "/api/settings", nil)
	decodeBody(t, rec, &settings)
	if settings != database.DefaultAdSettings {
		t.Errorf("settings after clear = %+v, want defaults", settings)
	}
}

func TestExportAggregatesCollections(t *testing.T) {
	env := newTestEnv(t)

	rec := env.doJSON(t, http.MethodGet, "/api/export", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	var export struct {
		Campaigns []models.Campaign   `json:"campaigns"`
		Ads       []models.Ad         `json:"ads"`
		Team      []models.TeamMember `json:"team"`
		Settings  models.AdSettings   `json:"settings"`
	}
	decodeBody(t, rec, &export)
	if export.Campaigns == nil || export.Ads == nil || export.Team == nil {
		t.Errorf("export collections should be arrays, got %s", rec.Body.String())
	}
	if export.Settings.OverlayDuration == 0 {
		t.Errorf("export settings = %+v", export.Settings)
	}
}

func TestMockClickPostAcknowledgedNotRouted(t *testing.T) {
	env := newTestEnv(t)

	req := httptest.NewRequest(http.MethodPost, "/mock_click", strings.NewReader(""))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec := httptest.NewRecorder()
	env.server.Handler().ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200, body %s", rec.Code, rec.Body.String())
	}
	var resp map[string]any
	decodeBody(t, rec, &resp)
	if resp["error"] != float64(-1) {
		t.Errorf("ack = %v, want error -1", resp)
	}
	if resp["message"] != "Invalid method" {
		t.Errorf("message = %v, want %q", resp["message"], "Invalid method")
	}
}

func TestUploadUnconfigured(t *testing.T) {
	env := newTestEnv(t)

	rec := env.doJSON(t, http.MethodPost, "/api/upload", nil)
	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("status = %d, want 503", rec.Code)
	}
}
