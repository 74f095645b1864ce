package web

import (
	"embed"
	"encoding/json"
	"html/template"
	"net/http"
	"net/url"
	"strings"

	"github.com/google/uuid"
)

//go:embed templates/*.html
var templateFS embed.FS

var pageTemplates = template.Must(template.ParseFS(templateFS, "templates/*.html"))

func (s *Server) handlePaymentForm(w http.ResponseWriter, r *http.Request) {
	formAction := s.cfg.ClickPayURL
	if s.cfg.TestMode {
		formAction = s.cfg.BaseURL + "/mock_click"
	}

	userID := r.URL.Query().Get("user_id")
	if userID == "" {
		userID = "guest"
	}

	data := map[string]any{
		"FormAction": formAction,
		"UserID":     userID,
		"CampaignID": r.URL.Query().Get("campaign_id"),
		"BaseURL":    s.cfg.BaseURL,
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := pageTemplates.ExecuteTemplate(w, "payment.html", data); err != nil {
		s.log.Error("render payment form", "err", err)
	}
}

func (s *Server) handleSuccess(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]any{"message": "To'lov muvaffaqiyatli!"})
}

func (s *Server) handleWebApp(w http.ResponseWriter, r *http.Request) {
	data := map[string]any{
		"AdminID": s.cfg.AdminID,
		"BaseURL": s.cfg.BaseURL,
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := pageTemplates.ExecuteTemplate(w, "webapp.html", data); err != nil {
		s.log.Error("render webapp", "err", err)
	}
}

// handleMockClick simulates a successful gateway redirect by posting a
// synthetic callback to our own ingestion endpoint. Registered only in test
// mode. Only GET triggers the simulation; the gateway never posts here, so
// POST is acknowledged with the usual failure envelope.
func (s *Server) handleMockClick(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.writeJSON(w, http.StatusOK, map[string]any{"error": -1, "message": "Invalid method"})
		return
	}

	q := r.URL.Query()
	amount := q.Get("amount")
	if amount == "" {
		amount = "10000"
	}

	form := url.Values{}
	form.Set("merchant_user_id", q.Get("merchant_user_id"))
	form.Set("amount", amount)
	form.Set("error", "0")
	form.Set("click_trans_id", uuid.NewString())
	form.Set("payment_id", uuid.NewString())

	resp, err := s.client.Post(
		s.cfg.BaseURL+"/click/callback",
		"application/x-www-form-urlencoded",
		strings.NewReader(form.Encode()),
	)
	if err != nil {
		s.internalError(w, err)
		return
	}
	defer resp.Body.Close()

	var callbackResponse json.RawMessage
	if err := json.NewDecoder(resp.Body).Decode(&callbackResponse); err != nil {
		callbackResponse = json.RawMessage(`null`)
	}
	s.writeJSON(w, http.StatusOK, map[string]any{
		"status":            "Mock payment processed",
		"callback_response": callbackResponse,
	})
}
