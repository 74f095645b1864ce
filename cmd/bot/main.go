package main

import (
	"context"
	"errors"
	"log"
	"os/signal"
	"syscall"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/jolanboyev/ehson-backend/internal/auth"
	"github.com/jolanboyev/ehson-backend/internal/config"
	"github.com/jolanboyev/ehson-backend/internal/database"
	"github.com/jolanboyev/ehson-backend/internal/notify"
	"github.com/jolanboyev/ehson-backend/internal/repository"
	"github.com/jolanboyev/ehson-backend/internal/service"
	"github.com/jolanboyev/ehson-backend/internal/storage"
	"github.com/jolanboyev/ehson-backend/internal/telegram"
	"github.com/jolanboyev/ehson-backend/internal/web"
	"github.com/jolanboyev/ehson-backend/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	logr := logger.New(cfg.LogLevel)

	db, err := database.Open(cfg.SQLitePath)
	if err != nil {
		log.Fatalf("database open: %v", err)
	}
	defer db.Close()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := database.Migrate(ctx, db); err != nil {
		log.Fatalf("database migrate: %v", err)
	}
	if err := database.Seed(ctx, db); err != nil {
		log.Fatalf("database seed: %v", err)
	}

	botAPI, err := tgbotapi.NewBotAPI(cfg.BotToken)
	if err != nil {
		log.Fatalf("telegram bot: %v", err)
	}

	userRepo := repository.NewUserRepository(db)
	paymentRepo := repository.NewPaymentRepository(db)
	campaignRepo := repository.NewCampaignRepository(db)
	adRepo := repository.NewAdRepository(db)
	teamRepo := repository.NewTeamRepository(db)
	settingsRepo := repository.NewSettingsRepository(db)

	dispatcher := notify.NewDispatcher(logr)

	userService := service.NewUserService(userRepo)
	paymentService := service.NewPaymentService(logr, userRepo, paymentRepo, dispatcher)
	contentService := service.NewContentService(campaignRepo, adRepo, teamRepo, settingsRepo)

	var uploader web.MediaUploader
	if cfg.S3Configured() {
		up, err := storage.NewUploader(storage.Config{
			Endpoint:      cfg.S3Endpoint,
			Region:        cfg.S3Region,
			AccessKey:     cfg.S3AccessKey,
			SecretKey:     cfg.S3SecretKey,
			Bucket:        cfg.S3Bucket,
			PublicBaseURL: cfg.S3PublicBaseURL,
			UsePathStyle:  cfg.S3UsePathStyle,
			Prefix:        cfg.S3Prefix,
		})
		if err != nil {
			log.Fatalf("storage uploader: %v", err)
		}
		uploader = up
	} else {
		logr.Info("s3 not configured, media uploads disabled")
	}

	adminAuth := auth.NewStaticAdmin(cfg.AdminID)

	server := web.NewServer(cfg, logr, adminAuth, paymentService, contentService, uploader)
	go func() {
		if err := server.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
			logr.Error("web server stopped", "err", err)
		}
	}()

	bot := telegram.NewBot(cfg, botAPI, logr, userService, paymentService, dispatcher.Notices())
	if err := bot.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		logr.Error("bot stopped", "err", err)
	}
}
