package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// Config aggregates runtime configuration for the bot and the web server.
type Config struct {
	BotToken        string
	AdminID         string
	SQLitePath      string
	BaseURL         string
	ListenAddr      string
	PaymentFormPath string
	ClickPayURL     string
	TestMode        bool
	LogLevel        string

	S3Endpoint      string
	S3Region        string
	S3AccessKey     string
	S3SecretKey     string
	S3Bucket        string
	S3PublicBaseURL string
	S3UsePathStyle  bool
	S3Prefix        string
}

// S3Configured reports whether the optional image uploader can be wired.
func (c Config) S3Configured() bool {
	return c.S3Region != "" && c.S3AccessKey != "" && c.S3SecretKey != "" && c.S3Bucket != "" && c.S3PublicBaseURL != ""
}

// Load reads configuration from environment variables, applying sane defaults.
func Load() (Config, error) {
	if err := loadEnvFile(); err != nil {
		return Config{}, err
	}

	cfg := Config{
		SQLitePath:      getEnv("SQLITE_PATH", "ehson.db"),
		BaseURL:         strings.TrimSuffix(getEnv("BASE_URL", "http://127.0.0.1:8000"), "/"),
		ListenAddr:      getEnv("LISTEN_ADDR", ":8000"),
		PaymentFormPath: getEnv("PAYMENT_FORM_PATH", "/payment"),
		ClickPayURL:     getEnv("CLICK_PAY_URL", "https://my.click.uz/services/pay"),
		TestMode:        getBool("TEST_MODE", false),
		LogLevel:        getEnv("LOG_LEVEL", "info"),
		S3Endpoint:      getEnv("S3_ENDPOINT", ""),
		S3Region:        os.Getenv("S3_REGION"),
		S3AccessKey:     os.Getenv("S3_ACCESS_KEY"),
		S3SecretKey:     os.Getenv("S3_SECRET_KEY"),
		S3Bucket:        os.Getenv("S3_BUCKET"),
		S3PublicBaseURL: os.Getenv("S3_PUBLIC_BASE_URL"),
		S3UsePathStyle:  getBool("S3_USE_PATH_STYLE", false),
		S3Prefix:        getEnv("S3_PREFIX", "media"),
	}

	cfg.BotToken = os.Getenv("BOT_TOKEN")
	cfg.AdminID = os.Getenv("ADMIN_ID")

	var missing []string
	if cfg.BotToken == "" {
		missing = append(missing, "BOT_TOKEN")
	}
	if cfg.AdminID == "" {
		missing = append(missing, "ADMIN_ID")
	}
	if len(missing) > 0 {
		return Config{}, fmt.Errorf("missing required environment variables: %v", missing)
	}

	if !strings.HasPrefix(cfg.PaymentFormPath, "/") {
		cfg.PaymentFormPath = "/" + cfg.PaymentFormPath
	}

	return cfg, nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getBool(key string, fallback bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return fallback
	}
	return b
}

func loadEnvFile() error {
	candidates := []string{}
	if custom, ok := os.LookupEnv("CONFIG_ENV_PATH"); ok && custom != "" {
		candidates = append(candidates, custom)
	}
	candidates = append(candidates,
		filepath.Join("configs", ".env"),
		".env",
	)

	for _, path := range candidates {
		info, err := os.Stat(path)
		if err != nil {
			if errors.Is(err, os.ErrNotExist) {
				continue
			}
			return fmt.Errorf("access env file %s: %w", path, err)
		}
		if info.IsDir() {
			continue
		}
		if err := godotenv.Overload(path); err != nil {
			return fmt.Errorf("load env file %s: %w", path, err)
		}
		return nil
	}
	// Running without an env file is fine when the variables are already set.
	return nil
}
