package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
	_ "time/tzdata" // distrolessイメージでもTIMEZONEを解決できるようにする

	"github.com/hitoshi/meetplan/internal/database"
)

// Config はアプリケーション全体の設定を保持する。
// 環境変数から起動時に1回読み込み、イミュータブルとして扱う。
type Config struct {
	// Database
	DatabaseURL string
	DBPool      database.PoolConfig

	// Scheduling
	TimeZone               *time.Location
	MaxSuggestionAttendees int

	// Rate Limit（req/min/client）
	RateLimitGeneral int
	RateLimitSuggest int

	// Cleanup worker
	MeetingRetentionDays int
	CleanupInterval      time.Duration

	// Server
	ServerPort string

	// CORS（空の場合はCORSヘッダーを付与しない）
	CORSAllowedOrigin string
}

// Load は環境変数からConfigを読み込む。
// 必須環境変数が未設定の場合やタイムゾーン名が不正な場合はエラーを返す。
func Load() (*Config, error) {
	cfg := &Config{}

	cfg.DatabaseURL = os.Getenv("DATABASE_URL")
	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("required environment variables are not set: %v", []string{"DATABASE_URL"})
	}

	tzName := getEnvString("TIMEZONE", "UTC")
	loc, err := time.LoadLocation(tzName)
	if err != nil {
		return nil, fmt.Errorf("invalid TIMEZONE %q: %w", tzName, err)
	}
	cfg.TimeZone = loc

	// Optional fields with defaults
	defaultPool := database.DefaultPoolConfig()
	cfg.DBPool = database.PoolConfig{
		MaxOpenConns:    getEnvInt("DB_MAX_OPEN_CONNS", defaultPool.MaxOpenConns),
		MaxIdleConns:    getEnvInt("DB_MAX_IDLE_CONNS", defaultPool.MaxIdleConns),
		ConnMaxLifetime: getEnvDuration("DB_CONN_MAX_LIFETIME", defaultPool.ConnMaxLifetime),
	}
	cfg.MaxSuggestionAttendees = getEnvInt("MAX_SUGGESTION_ATTENDEES", 50)
	cfg.RateLimitGeneral = getEnvInt("RATE_LIMIT_GENERAL", 120)
	cfg.RateLimitSuggest = getEnvInt("RATE_LIMIT_SUGGEST", 30)
	cfg.MeetingRetentionDays = getEnvInt("MEETING_RETENTION_DAYS", 365)
	cfg.CleanupInterval = getEnvDuration("CLEANUP_INTERVAL", 24*time.Hour)
	cfg.ServerPort = getEnvString("SERVER_PORT", "8080")
	cfg.CORSAllowedOrigin = getEnvString("CORS_ALLOWED_ORIGIN", "")

	return cfg, nil
}

func getEnvString(key, defaultVal string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultVal
}

func getEnvInt(key string, defaultVal int) int {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		return defaultVal
	}
	return i
}

func getEnvDuration(key string, defaultVal time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return defaultVal
	}
	return d
}
