package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/kelvins/geocoder"
)

// Default reference point: Crystal Mountain base area, WA.
const (
	defaultLat = 46.932517
	defaultLon = -121.48067
)

var validate = validator.New()

// AppConfig is the full runtime configuration, loaded from the environment.
// Optional credentials that are absent disable their sources rather than
// erroring.
type AppConfig struct {
	// Reference point and radius for distance filtering.
	Latitude    float64 `validate:"latitude"`
	Longitude   float64 `validate:"longitude"`
	RadiusMiles float64 `validate:"gt=0"`

	// Upstream credentials and feeds; all optional.
	WSDOTAccessCode string
	AvalancheCenter string
	AvalancheZone   string
	LiftsFeedURL    string `validate:"omitempty,url"`
	PassReportURL   string `validate:"omitempty,url"`
	PrimaryPassID   string

	// Contact user agent sent with every upstream request (NWS requires one).
	UserAgent string `validate:"required"`

	// Cache and timeout tuning.
	StateTTL      time.Duration
	PassReportTTL time.Duration
	HTTPTimeout   time.Duration
	FetchTimeout  time.Duration

	// RefreshInterval enables the background cache warmer when > 0.
	RefreshInterval time.Duration

	// Server.
	StaticDir string
	Port      string `validate:"numeric"`
}

// Load reads configuration from the environment with sensible defaults.
func Load() (*AppConfig, error) {
	if err := godotenv.Load(); err != nil {
		log.Printf("INFO: No .env file found or error loading it: %v", err)
	}

	cfg := &AppConfig{
		WSDOTAccessCode: os.Getenv("WSDOT_ACCESS_CODE"),
		AvalancheCenter: getenvDefault("AVALANCHE_CENTER", "NWAC"),
		AvalancheZone:   os.Getenv("AVALANCHE_ZONE"),
		LiftsFeedURL:    os.Getenv("LIFTS_FEED_URL"),
		PassReportURL:   getenvDefault("PASS_REPORT_URL", "https://wsdot.com/travel/real-time/mountainpasses"),
		PrimaryPassID:   getenvDefault("PRIMARY_PASS_ID", "chinook"),
		UserAgent:       getenvDefault("CONTACT_USER_AGENT", "crystaldash/1.0"),
		StaticDir:       getenvDefault("STATIC_DIR", "./client/dist"),
		Port:            getenvDefault("PORT", "8080"),
	}

	lat, lon, err := loadReferencePoint()
	if err != nil {
		return nil, err
	}
	cfg.Latitude = lat
	cfg.Longitude = lon

	cfg.RadiusMiles = getenvFloat("RADIUS_MILES", 40)

	for _, d := range []struct {
		dst *time.Duration
		key string
		def string
	}{
		{&cfg.StateTTL, "STATE_TTL", "60s"},
		{&cfg.PassReportTTL, "PASS_REPORT_TTL", "15m"},
		{&cfg.HTTPTimeout, "HTTP_TIMEOUT", "9s"},
		{&cfg.FetchTimeout, "FETCH_TIMEOUT", "8s"},
		{&cfg.RefreshInterval, "REFRESH_INTERVAL", "0s"},
	} {
		v, err := time.ParseDuration(getenvDefault(d.key, d.def))
		if err != nil {
			return nil, fmt.Errorf("invalid %s: %w", d.key, err)
		}
		*d.dst = v
	}

	if err := validate.Struct(cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// loadReferencePoint resolves the dashboard's coordinates. Explicit
// CRYSTAL_LAT/CRYSTAL_LON win; otherwise a configured place name is
// geocoded; otherwise the built-in default applies.
func loadReferencePoint() (float64, float64, error) {
	latStr, lonStr := os.Getenv("CRYSTAL_LAT"), os.Getenv("CRYSTAL_LON")
	if latStr != "" || lonStr != "" {
		lat, err := strconv.ParseFloat(latStr, 64)
		if err != nil {
			return 0, 0, fmt.Errorf("invalid CRYSTAL_LAT: %w", err)
		}
		lon, err := strconv.ParseFloat(lonStr, 64)
		if err != nil {
			return 0, 0, fmt.Errorf("invalid CRYSTAL_LON: %w", err)
		}
		return lat, lon, nil
	}

	place := os.Getenv("LOCATION_PLACE")
	apiKey := os.Getenv("GEOCODER_API_KEY")
	if place != "" && apiKey != "" {
		geocoder.ApiKey = apiKey
		loc, err := geocoder.Geocoding(geocoder.Address{City: place, Country: "United States"})
		if err != nil {
			return 0, 0, fmt.Errorf("geocoding %q: %w", place, err)
		}
		return loc.Latitude, loc.Longitude, nil
	}

	return defaultLat, defaultLon, nil
}

func getenvDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
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
