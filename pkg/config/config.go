package config

import (
	"errors"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	EnvDevelopment = "development"
	EnvProduction  = "production"
)

type Config struct {
	Env       string
	Port      int
	APIPrefix string

	Database  DatabaseConfig
	Redis     RedisConfig
	CORS      CORSConfig
	Log       LogConfig
	Timetable TimetableConfig
	Lookup    LookupConfig
}

type DatabaseConfig struct {
	Host         string
	Port         int
	User         string
	Password     string
	Name         string
	SSLMode      string
	MaxOpenConns int
	MaxIdleConns int
}

type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
}

type CORSConfig struct {
	AllowedOrigins []string
}

type LogConfig struct {
	Level  string
	Format string
}

// TimetableConfig tunes the period layout and the auto-build engine.
type TimetableConfig struct {
	DayStartHour       int
	DayStartMinute     int
	PeriodMinutes      int
	BreakMinutes       int
	StrictAvailability bool
	BuildTimeout       time.Duration
}

// LookupConfig governs cache behaviour for master-data lookups.
type LookupConfig struct {
	CacheEnabled bool
	CacheTTL     time.Duration
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.SetConfigFile(".env")
	v.SetConfigType("env")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, err
		}
	}

	cfg := &Config{}

	cfg.Env = v.GetString("ENV")
	cfg.Port = v.GetInt("PORT")
	cfg.APIPrefix = v.GetString("API_PREFIX")

	cfg.Database = DatabaseConfig{
		Host:         v.GetString("DB_HOST"),
		Port:         v.GetInt("DB_PORT"),
		User:         v.GetString("DB_USER"),
		Password:     v.GetString("DB_PASSWORD"),
		Name:         v.GetString("DB_NAME"),
		SSLMode:      v.GetString("DB_SSL_MODE"),
		MaxOpenConns: v.GetInt("DB_MAX_OPEN_CONNS"),
		MaxIdleConns: v.GetInt("DB_MAX_IDLE_CONNS"),
	}

	cfg.Redis = RedisConfig{
		Host:     v.GetString("REDIS_HOST"),
		Port:     v.GetInt("REDIS_PORT"),
		Password: v.GetString("REDIS_PASSWORD"),
		DB:       v.GetInt("REDIS_DB"),
	}

	cfg.CORS = CORSConfig{AllowedOrigins: splitAndTrim(v.GetString("ALLOWED_ORIGINS"))}

	cfg.Log = LogConfig{
		Level:  v.GetString("LOG_LEVEL"),
		Format: v.GetString("LOG_FORMAT"),
	}

	startHour, startMinute := parseClock(v.GetString("TIMETABLE_DAY_START"), 8, 0)
	cfg.Timetable = TimetableConfig{
		DayStartHour:       startHour,
		DayStartMinute:     startMinute,
		PeriodMinutes:      v.GetInt("TIMETABLE_PERIOD_MINUTES"),
		BreakMinutes:       v.GetInt("TIMETABLE_BREAK_MINUTES"),
		StrictAvailability: v.GetBool("TIMETABLE_STRICT_AVAILABILITY"),
		BuildTimeout:       parseDuration(v.GetString("TIMETABLE_BUILD_TIMEOUT"), 5*time.Second),
	}

	cfg.Lookup = LookupConfig{
		CacheEnabled: v.GetBool("LOOKUP_CACHE_ENABLED"),
		CacheTTL:     parseDuration(v.GetString("LOOKUP_CACHE_TTL"), 5*time.Minute),
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("ENV", EnvDevelopment)
	v.SetDefault("PORT", 4000)
	v.SetDefault("API_PREFIX", "/api/v1")

	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_PORT", 5432)
	v.SetDefault("DB_USER", "postgres")
	v.SetDefault("DB_PASSWORD", "postgres")
	v.SetDefault("DB_NAME", "teachflow")
	v.SetDefault("DB_SSL_MODE", "disable")
	v.SetDefault("DB_MAX_OPEN_CONNS", 10)
	v.SetDefault("DB_MAX_IDLE_CONNS", 5)

	v.SetDefault("REDIS_HOST", "localhost")
	v.SetDefault("REDIS_PORT", 6379)
	v.SetDefault("REDIS_PASSWORD", "")
	v.SetDefault("REDIS_DB", 0)

	v.SetDefault("ALLOWED_ORIGINS", "")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "json")

	v.SetDefault("TIMETABLE_DAY_START", "08:00")
	v.SetDefault("TIMETABLE_PERIOD_MINUTES", 50)
	v.SetDefault("TIMETABLE_BREAK_MINUTES", 25)
	v.SetDefault("TIMETABLE_STRICT_AVAILABILITY", false)
	v.SetDefault("TIMETABLE_BUILD_TIMEOUT", "5s")

	v.SetDefault("LOOKUP_CACHE_ENABLED", false)
	v.SetDefault("LOOKUP_CACHE_TTL", "5m")
}

func parseDuration(raw string, fallback time.Duration) time.Duration {
	if raw == "" {
		return fallback
	}

	d, err := time.ParseDuration(raw)
	if err != nil {
		return fallback
	}

	return d
}

// parseClock reads an HH:MM string, falling back on malformed input.
func parseClock(raw string, fallbackHour, fallbackMinute int) (int, int) {
	parts := strings.SplitN(strings.TrimSpace(raw), ":", 2)
	if len(parts) != 2 {
		return fallbackHour, fallbackMinute
	}
	t, err := time.Parse("15:04", parts[0]+":"+parts[1])
	if err != nil {
		return fallbackHour, fallbackMinute
	}
	return t.Hour(), t.Minute()
}

func splitAndTrim(raw string) []string {
	if raw == "" {
		return nil
	}

	parts := strings.Split(raw, ",")
	result := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			result = append(result, trimmed)
		}
	}

	return result
}
