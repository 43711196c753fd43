package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
)

var validate = validator.New()

// AppConfig is the configuration surface the core consumes. All values
// come from the environment; thresholds and radii are never baked into
// the components that use them.
type AppConfig struct {
	Port        string
	DBPath      string
	HTTPTimeout time.Duration

	// PollInterval controls how often the forecast tick runs.
	PollInterval time.Duration

	// SummaryHour is the UTC hour of the once-daily morning summary.
	SummaryHour int `validate:"min=0,max=23"`

	// WarningWindow is the lead time before a predicted freeze within
	// which a warning becomes eligible.
	WarningWindow time.Duration

	// FreezeThresholdC is the temperature at or below which a sample
	// counts as freezing.
	FreezeThresholdC float64

	// CacheRadiusMeters is the distance within which nearby locations
	// share one cached forecast.
	CacheRadiusMeters float64 `validate:"gt=0"`

	// CacheTTL is how long a fetched forecast stays valid.
	CacheTTL time.Duration

	// SweepInterval controls how often expired cache entries are removed.
	SweepInterval time.Duration

	// WebhookURL, when set, switches delivery from the log to a webhook.
	WebhookURL string `validate:"omitempty,url"`

	// GeocoderAPIKey enables registering locations by street address.
	GeocoderAPIKey string
}

// Load reads configuration from environment with sensible defaults.
func Load() (*AppConfig, error) {
	if err := godotenv.Load(); err != nil {
		log.Printf("INFO: No .env file found or error loading it: %v", err)
	}

	cfg := &AppConfig{
		Port:           getenvDefault("PORT", "8080"),
		DBPath:         getenvDefault("DB_PATH", "frostwatch.db"),
		SummaryHour:    getenvInt("SUMMARY_HOUR", 7),
		WebhookURL:     os.Getenv("WEBHOOK_URL"),
		GeocoderAPIKey: os.Getenv("GEOCODER_API_KEY"),
	}

	var err error
	if cfg.HTTPTimeout, err = getenvDuration("HTTP_TIMEOUT", "30s"); err != nil {
		return nil, err
	}
	if cfg.PollInterval, err = getenvDuration("POLL_INTERVAL", "15m"); err != nil {
		return nil, err
	}
	if cfg.WarningWindow, err = getenvDuration("WARNING_WINDOW", "6h"); err != nil {
		return nil, err
	}
	if cfg.CacheTTL, err = getenvDuration("CACHE_TTL", "30m"); err != nil {
		return nil, err
	}
	if cfg.SweepInterval, err = getenvDuration("SWEEP_INTERVAL", "10m"); err != nil {
		return nil, err
	}

	cfg.FreezeThresholdC = getenvFloat("FREEZE_THRESHOLD_C", 0)
	cfg.CacheRadiusMeters = getenvFloat("CACHE_RADIUS_METERS", 5000)

	if err := validate.Struct(cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

func getenvDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getenvInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		n, err := strconv.Atoi(v)
		if err == nil {
			return n
		}
	}
	return def
}

func getenvFloat(key string, def float64) float64 {
	if v := os.Getenv(key); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err == nil {
			return f
		}
	}
	return def
}

func getenvDuration(key, def string) (time.Duration, error) {
	d, err := time.ParseDuration(getenvDefault(key, def))
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return d, nil
}
