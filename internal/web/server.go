package web

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/cors"

	"github.com/jolanboyev/ehson-backend/internal/auth"
	"github.com/jolanboyev/ehson-backend/internal/config"
	"github.com/jolanboyev/ehson-backend/internal/models"
	"github.com/jolanboyev/ehson-backend/internal/service"
)

// MediaUploader stores an image and returns its public URL.
type MediaUploader interface {
	Upload(ctx context.Context, data []byte, contentType string) (string, error)
}

const maxUploadBytes = 10 << 20

type Server struct {
	cfg      config.Config
	log      *slog.Logger
	authz    auth.Authorizer
	payments *service.PaymentService
	content  *service.ContentService
	uploader MediaUploader
	router   *chi.Mux
	client   *http.Client
}

// NewServer wires the public web surface: the gateway callback, the content
// API consumed by the mini-app, and the payment/webapp pages. uploader may be
// nil when S3 is not configured.
func NewServer(cfg config.Config, log *slog.Logger, authz auth.Authorizer, payments *service.PaymentService, content *service.ContentService, uploader MediaUploader) *Server {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(cors.New(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodDelete, http.MethodOptions},
		AllowedHeaders: []string{"*"},
	}).Handler)

	s := &Server{
		cfg:      cfg,
		log:      log,
		authz:    authz,
		payments: payments,
		content:  content,
		uploader: uploader,
		router:   r,
		client:   &http.Client{Timeout: 30 * time.Second},
	}

	r.Post("/click/callback", s.handleClickCallback)

	r.Route("/api", func(r chi.Router) {
		r.Get("/campaigns", s.handleListCampaigns)
		r.Post("/campaigns", s.handleSaveCampaign)
		r.Delete("/campaigns/{id}", s.handleDeleteCampaign)
		r.Get("/ads", s.handleListAds)
		r.Post("/ads", s.handleSaveAd)
		r.Delete("/ads/{id}", s.handleDeleteAd)
		r.Get("/team", s.handleListTeam)
		r.Post("/team", s.handleSaveTeamMember)
		r.Delete("/team/{id}", s.handleDeleteTeamMember)
		r.Get("/settings", s.handleGetSettings)
		r.Post("/settings", s.handleSaveSettings)
		r.Post("/clear", s.handleClear)
		r.Get("/export", s.handleExport)
		r.Post("/upload", s.handleUpload)
	})

	r.Get(cfg.PaymentFormPath, s.handlePaymentForm)
	r.Get("/success", s.handleSuccess)
	r.Get("/webapp", s.handleWebApp)
	if cfg.TestMode {
		r.Get("/mock_click", s.handleMockClick)
		r.Post("/mock_click", s.handleMockClick)
	}

	return s
}

func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:         s.cfg.ListenAddr,
		Handler:      s.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			s.log.Error("web server shutdown error", "err", err)
		}
	}()

	s.log.Info("web server listening", "addr", s.cfg.ListenAddr)
	if err := srv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("web listen: %w", err)
	}
	return nil
}

// Handler exposes the router for tests.
func (s *Server) Handler() http.Handler {
	return s.router
}

// handleClickCallback ingests the gateway notification. The positive
// acknowledgment means "callback received", not "payment accepted": a failed
// payment still acks with error 0 once its row is written.
func (s *Server) handleClickCallback(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		s.writeAckError(w, http.StatusBadRequest, "malformed form body")
		return
	}

	in := service.CallbackInput{
		UserID:        r.PostFormValue("merchant_user_id"),
		UserName:      r.PostFormValue("merchant_user_name"),
		UserFirstName: r.PostFormValue("merchant_user_first_name"),
		Amount:        r.PostFormValue("amount"),
		ClickTransID:  r.PostFormValue("click_trans_id"),
		PaymentID:     r.PostFormValue("payment_id"),
		ErrorCode:     r.PostFormValue("error"),
	}

	if _, err := s.payments.HandleCallback(r.Context(), in); err != nil {
		var ve *service.ValidationError
		switch {
		case errors.Is(err, service.ErrMissingSubject):
			s.log.Error("callback without merchant_user_id")
			s.writeAckError(w, http.StatusBadRequest, "merchant_user_id is required")
		case errors.As(err, &ve):
			s.writeAckError(w, http.StatusBadRequest, ve.Error())
		default:
			s.log.Error("callback persistence failed", "err", err)
			s.writeAckError(w, http.StatusInternalServerError, "internal error")
		}
		return
	}

	s.writeJSON(w, http.StatusOK, map[string]any{"error": 0})
}

func (s *Server) handleListCampaigns(w http.ResponseWriter, r *http.Request) {
	campaigns, err := s.content.Campaigns(r.Context())
	if err != nil {
		s.internalError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, campaigns)
}

type campaignRequest struct {
	UserID string `json:"user_id"`
	models.Campaign
}

func (s *Server) handleSaveCampaign(w http.ResponseWriter, r *http.Request) {
	var req campaignRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeJSON(w, http.StatusBadRequest, map[string]any{"error": "invalid json"})
		return
	}
	if !s.authorize(w, req.UserID) {
		return
	}
	if err := s.content.SaveCampaign(r.Context(), req.Campaign); err != nil {
		s.mutationError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]any{"success": true})
}

func (s *Server) handleDeleteCampaign(w http.ResponseWriter, r *http.Request) {
	if !s.authorizeBody(w, r) {
		return
	}
	if err := s.content.DeleteCampaign(r.Context(), chi.URLParam(r, "id")); err != nil {
		s.internalError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]any{"success": true})
}

func (s *Server) handleListAds(w http.ResponseWriter, r *http.Request) {
	ads, err := s.content.Ads(r.Context())
	if err != nil {
		s.internalError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, ads)
}

type adRequest struct {
	UserID string `json:"user_id"`
	models.Ad
}

func (s *Server) handleSaveAd(w http.ResponseWriter, r *http.Request) {
	var req adRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeJSON(w, http.StatusBadRequest, map[string]any{"error": "invalid json"})
		return
	}
	if !s.authorize(w, req.UserID) {
		return
	}
	if err := s.content.SaveAd(r.Context(), req.Ad); err != nil {
		s.mutationError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]any{"success": true})
}

func (s *Server) handleDeleteAd(w http.ResponseWriter, r *http.Request) {
	if !s.authorizeBody(w, r) {
		return
	}
	if err := s.content.DeleteAd(r.Context(), chi.URLParam(r, "id")); err != nil {
		s.internalError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]any{"success": true})
}

func (s *Server) handleListTeam(w http.ResponseWriter, r *http.Request) {
	team, err := s.content.Team(r.Context())
	if err != nil {
		s.internalError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, team)
}

type teamRequest struct {
	UserID string `json:"user_id"`
	models.TeamMember
}

func (s *Server) handleSaveTeamMember(w http.ResponseWriter, r *http.Request) {
	var req teamRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeJSON(w, http.StatusBadRequest, map[string]any{"error": "invalid json"})
		return
	}
	if !s.authorize(w, req.UserID) {
		return
	}
	if err := s.content.SaveTeamMember(r.Context(), req.TeamMember); err != nil {
		s.mutationError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]any{"success": true})
}

func (s *Server) handleDeleteTeamMember(w http.ResponseWriter, r *http.Request) {
	if !s.authorizeBody(w, r) {
		return
	}
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		s.writeJSON(w, http.StatusBadRequest, map[string]any{"error": "invalid id"})
		return
	}
	if err := s.content.DeleteTeamMember(r.Context(), id); err != nil {
		s.internalError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]any{"success": true})
}

func (s *Server) handleGetSettings(w http.ResponseWriter, r *http.Request) {
	settings, err := s.content.Settings(r.Context())
	if err != nil {
		s.internalError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, settings)
}

type settingsRequest struct {
	UserID string `json:"user_id"`
	models.AdSettings
}

func (s *Server) handleSaveSettings(w http.ResponseWriter, r *http.Request) {
	var req settingsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeJSON(w, http.StatusBadRequest, map[string]any{"error": "invalid json"})
		return
	}
	if !s.authorize(w, req.UserID) {
		return
	}
	if err := s.content.SaveSettings(r.Context(), req.AdSettings); err != nil {
		s.mutationError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]any{"success": true})
}

func (s *Server) handleClear(w http.ResponseWriter, r *http.Request) {
	if !s.authorizeBody(w, r) {
		return
	}
	if err := s.content.Clear(r.Context()); err != nil {
		s.internalError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]any{"success": true})
}

func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	export, err := s.content.Export(r.Context())
	if err != nil {
		s.internalError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, export)
}

func (s *Server) handleUpload(w http.ResponseWriter, r *http.Request) {
	if s.uploader == nil {
		s.writeJSON(w, http.StatusServiceUnavailable, map[string]any{"error": "uploads not configured"})
		return
	}
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		s.writeJSON(w, http.StatusBadRequest, map[string]any{"error": "malformed multipart body"})
		return
	}
	if !s.authorize(w, r.FormValue("user_id")) {
		return
	}
	file, header, err := r.FormFile("file")
	if err != nil {
		s.writeJSON(w, http.StatusBadRequest, map[string]any{"error": "file field is required"})
		return
	}
	defer file.Close()

	data, err := io.ReadAll(io.LimitReader(file, maxUploadBytes))
	if err != nil {
		s.internalError(w, err)
		return
	}
	url, err := s.uploader.Upload(r.Context(), data, header.Header.Get("Content-Type"))
	if err != nil {
		s.internalError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]any{"url": url})
}

func (s *Server) authorize(w http.ResponseWriter, credential string) bool {
	if err := s.authz.Authorize(credential); err != nil {
		s.writeJSON(w, http.StatusForbidden, map[string]any{"error": "Unauthorized"})
		return false
	}
	return true
}

// authorizeBody reads the identity field from a JSON body, for requests whose
// payload carries nothing else (deletes, clear).
func (s *Server) authorizeBody(w http.ResponseWriter, r *http.Request) bool {
	var body struct {
		UserID string `json:"user_id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		s.writeJSON(w, http.StatusBadRequest, map[string]any{"error": "invalid json"})
		return false
	}
	return s.authorize(w, body.UserID)
}

func (s *Server) mutationError(w http.ResponseWriter, err error) {
	var ve *service.ValidationError
	if errors.As(err, &ve) {
		s.writeJSON(w, http.StatusBadRequest, map[string]any{"error": ve.Error()})
		return
	}
	s.internalError(w, err)
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func (s *Server) writeAckError(w http.ResponseWriter, status int, message string) {
	s.writeJSON(w, status, map[string]any{"error": -1, "message": message})
}

func (s *Server) internalError(w http.ResponseWriter, err error) {
	s.log.Error("web handler error", "err", err)
	s.writeJSON(w, http.StatusInternalServerError, map[string]any{"error": "internal error"})
}
