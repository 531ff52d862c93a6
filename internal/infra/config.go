package infra

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config represents application configuration loaded from environment variables,
// optionally layered over the file named by CONFIG_FILE.
type Config struct {
	AppEnv               string
	Port                 string
	DatabaseURL          string
	DBMaxConns           int32
	DBMinConns           int32
	AutoMigrate          bool
	JWTSecret            string
	AccessTokenTTL       time.Duration
	StoragePath          string
	StorageBaseURL       string
	GeoIPDBPath          string
	GeminiAPIKey         string
	GeminiModel          string
	DefaultLocale        string
	CORSAllowedOrigins   []string
	HTTPReadTimeout      time.Duration
	HTTPWriteTimeout     time.Duration
	HTTPIdleTimeout      time.Duration
	RateLimitPerMin      int
	SessionBootstrapWait time.Duration
	SessionIdleTTL       time.Duration
	SweepInterval        time.Duration
	MaxUploadBytes       int64
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("APP_ENV", "development")
	v.SetDefault("PORT", "8080")
	v.SetDefault("AUTO_MIGRATE", false)
	v.SetDefault("DB_MAX_CONNS", 10)
	v.SetDefault("DB_MIN_CONNS", 1)
	v.SetDefault("ACCESS_TOKEN_TTL_MINUTES", 60)
	v.SetDefault("STORAGE_PATH", "./storage")
	v.SetDefault("GEMINI_MODEL", "gemini-2.5-flash")
	v.SetDefault("DEFAULT_LOCALE", "pt")
	v.SetDefault("HTTP_READ_TIMEOUT_SECONDS", 15)
	v.SetDefault("HTTP_WRITE_TIMEOUT_SECONDS", 30)
	v.SetDefault("HTTP_IDLE_TIMEOUT_SECONDS", 60)
	v.SetDefault("RATE_LIMIT_PER_MINUTE", 60)
	v.SetDefault("SESSION_BOOTSTRAP_TIMEOUT_MS", 6000)
	v.SetDefault("SESSION_IDLE_TTL_MINUTES", 30)
	v.SetDefault("SWEEP_INTERVAL_SECONDS", 60)
	v.SetDefault("MAX_UPLOAD_BYTES", 5<<20)
}

// LoadConfig loads configuration and applies defaults where needed.
func LoadConfig() (*Config, error) {
	v := viper.New()
	setDefaults(v)
	v.AutomaticEnv()
	if file := strings.TrimSpace(os.Getenv("CONFIG_FILE")); file != "" {
		v.SetConfigFile(file)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config file: %w", err)
		}
	}

	port := strings.TrimSpace(v.GetString("PORT"))
	if port == "" {
		port = "8080"
	}
	storageBaseURL := strings.TrimRight(strings.TrimSpace(v.GetString("STORAGE_BASE_URL")), "/")
	if storageBaseURL == "" {
		storageBaseURL = "http://localhost:" + port + "/static"
	}

	cfg := &Config{
		AppEnv:               v.GetString("APP_ENV"),
		Port:                 port,
		DatabaseURL:          strings.TrimSpace(v.GetString("DATABASE_URL")),
		DBMaxConns:           v.GetInt32("DB_MAX_CONNS"),
		DBMinConns:           v.GetInt32("DB_MIN_CONNS"),
		AutoMigrate:          v.GetBool("AUTO_MIGRATE"),
		JWTSecret:            v.GetString("JWT_SECRET"),
		AccessTokenTTL:       time.Minute * time.Duration(v.GetInt("ACCESS_TOKEN_TTL_MINUTES")),
		StoragePath:          v.GetString("STORAGE_PATH"),
		StorageBaseURL:       storageBaseURL,
		GeoIPDBPath:          v.GetString("GEOIP_DB_PATH"),
		GeminiAPIKey:         strings.TrimSpace(v.GetString("GEMINI_API_KEY")),
		GeminiModel:          v.GetString("GEMINI_MODEL"),
		DefaultLocale:        v.GetString("DEFAULT_LOCALE"),
		CORSAllowedOrigins:   splitList(v.GetString("CORS_ALLOWED_ORIGINS")),
		HTTPReadTimeout:      time.Second * time.Duration(v.GetInt("HTTP_READ_TIMEOUT_SECONDS")),
		HTTPWriteTimeout:     time.Second * time.Duration(v.GetInt("HTTP_WRITE_TIMEOUT_SECONDS")),
		HTTPIdleTimeout:      time.Second * time.Duration(v.GetInt("HTTP_IDLE_TIMEOUT_SECONDS")),
		RateLimitPerMin:      v.GetInt("RATE_LIMIT_PER_MINUTE"),
		SessionBootstrapWait: time.Millisecond * time.Duration(v.GetInt("SESSION_BOOTSTRAP_TIMEOUT_MS")),
		SessionIdleTTL:       time.Minute * time.Duration(v.GetInt("SESSION_IDLE_TTL_MINUTES")),
		SweepInterval:        time.Second * time.Duration(v.GetInt("SWEEP_INTERVAL_SECONDS")),
		MaxUploadBytes:       v.GetInt64("MAX_UPLOAD_BYTES"),
	}

	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is required")
	}

	if cfg.JWTSecret == "" {
		return nil, fmt.Errorf("JWT_SECRET is required")
	}

	return cfg, nil
}

func splitList(raw string) []string {
	var out []string
	seen := make(map[string]struct{})
	for _, part := range strings.Split(raw, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		if _, ok := seen[part]; ok {
			continue
		}
		seen[part] = struct{}{}
		out = append(out, part)
	}
	return out
}
