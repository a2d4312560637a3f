package config

import (
	"errors"
	"io/fs"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
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

	Database DatabaseConfig
	Redis    RedisConfig
	JWT      JWTConfig
	CORS     CORSConfig
	Log      LogConfig
	Services ServicesConfig
	Points   PointsConfig
	CheckIn  CheckInConfig
	Staff    StaffConfig
	Ledger   LedgerConfig
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
	AutoMigrate  bool

	// ConnMaxLifetime recycles pooled connections; zero keeps them forever.
	ConnMaxLifetime time.Duration
}

type RedisConfig struct {
	Enabled  bool
	Host     string
	Port     int
	Password string
	DB       int
}

type JWTConfig struct {
	Secret     string
	Expiration time.Duration
	Issuer     string
}

type CORSConfig struct {
	AllowedOrigins []string
}

type LogConfig struct {
	Level  string
	Format string
}

// ServicesConfig gates the optional service types. Personal training is always on.
type ServicesConfig struct {
	NutritionEnabled     bool
	PhysiotherapyEnabled bool
	GroupClassEnabled    bool
}

// PointsConfig controls loyalty points redemption.
type PointsConfig struct {
	Enabled    bool
	ValueInEGP decimal.Decimal
}

// CheckInConfig tunes the scanner facing endpoints.
type CheckInConfig struct {
	ScanTimeout  time.Duration
	DedupeWindow time.Duration
}

// StaffConfig holds the clock-in/out shift rules.
type StaffConfig struct {
	MaxShift         time.Duration
	CheckoutCooldown time.Duration
	SweepInterval    time.Duration
}

// LedgerConfig holds subscription status and summary settings.
type LedgerConfig struct {
	ExpiringSoonWindow time.Duration
	Location           *time.Location
	SummaryCacheTTL    time.Duration
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
		if !errors.As(err, &notFound) && !isMissingFile(err) {
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
		AutoMigrate:  v.GetBool("DB_AUTO_MIGRATE"),

		ConnMaxLifetime: parseDuration(v.GetString("DB_CONN_MAX_LIFETIME"), time.Hour),
	}

	cfg.Redis = RedisConfig{
		Enabled:  v.GetBool("ENABLE_REDIS"),
		Host:     v.GetString("REDIS_HOST"),
		Port:     v.GetInt("REDIS_PORT"),
		Password: v.GetString("REDIS_PASSWORD"),
		DB:       v.GetInt("REDIS_DB"),
	}

	cfg.JWT = JWTConfig{
		Secret:     v.GetString("JWT_SECRET"),
		Expiration: parseDuration(v.GetString("JWT_EXPIRATION"), 12*time.Hour),
		Issuer:     v.GetString("JWT_ISSUER"),
	}

	cfg.CORS = CORSConfig{AllowedOrigins: splitAndTrim(v.GetString("ALLOWED_ORIGINS"))}

	cfg.Log = LogConfig{
		Level:  v.GetString("LOG_LEVEL"),
		Format: v.GetString("LOG_FORMAT"),
	}

	cfg.Services = ServicesConfig{
		NutritionEnabled:     v.GetBool("ENABLE_NUTRITION"),
		PhysiotherapyEnabled: v.GetBool("ENABLE_PHYSIOTHERAPY"),
		GroupClassEnabled:    v.GetBool("ENABLE_GROUP_CLASS"),
	}

	cfg.Points = PointsConfig{
		Enabled:    v.GetBool("POINTS_ENABLED"),
		ValueInEGP: parseDecimal(v.GetString("POINTS_VALUE_IN_EGP"), decimal.RequireFromString("0.1")),
	}

	cfg.CheckIn = CheckInConfig{
		ScanTimeout:  parseDuration(v.GetString("CHECKIN_SCAN_TIMEOUT"), 5*time.Second),
		DedupeWindow: parseDuration(v.GetString("CHECKIN_DEDUPE_WINDOW"), 3*time.Second),
	}

	cfg.Staff = StaffConfig{
		MaxShift:         parseDuration(v.GetString("STAFF_MAX_SHIFT"), 12*time.Hour),
		CheckoutCooldown: parseDuration(v.GetString("STAFF_CHECKOUT_COOLDOWN"), 10*time.Minute),
		SweepInterval:    parseDuration(v.GetString("STAFF_SWEEP_INTERVAL"), 15*time.Minute),
	}

	location, err := time.LoadLocation(v.GetString("TIMEZONE"))
	if err != nil {
		return nil, err
	}
	cfg.Ledger = LedgerConfig{
		ExpiringSoonWindow: parseDuration(v.GetString("EXPIRING_SOON_WINDOW"), 7*24*time.Hour),
		Location:           location,
		SummaryCacheTTL:    parseDuration(v.GetString("SUMMARY_CACHE_TTL"), 2*time.Minute),
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("ENV", EnvDevelopment)
	v.SetDefault("PORT", 8080)
	v.SetDefault("API_PREFIX", "/api/v1")

	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_PORT", 5432)
	v.SetDefault("DB_USER", "postgres")
	v.SetDefault("DB_PASSWORD", "postgres")
	v.SetDefault("DB_NAME", "gym_backoffice")
	v.SetDefault("DB_SSL_MODE", "disable")
	v.SetDefault("DB_MAX_OPEN_CONNS", 10)
	v.SetDefault("DB_MAX_IDLE_CONNS", 5)
	v.SetDefault("DB_AUTO_MIGRATE", true)
	v.SetDefault("DB_CONN_MAX_LIFETIME", "1h")

	v.SetDefault("ENABLE_REDIS", false)
	v.SetDefault("REDIS_HOST", "localhost")
	v.SetDefault("REDIS_PORT", 6379)
	v.SetDefault("REDIS_PASSWORD", "")
	v.SetDefault("REDIS_DB", 0)

	v.SetDefault("JWT_SECRET", "dev_secret")
	v.SetDefault("JWT_EXPIRATION", "12h")
	v.SetDefault("JWT_ISSUER", "gym-backoffice")

	v.SetDefault("ALLOWED_ORIGINS", "")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "json")

	v.SetDefault("ENABLE_NUTRITION", true)
	v.SetDefault("ENABLE_PHYSIOTHERAPY", true)
	v.SetDefault("ENABLE_GROUP_CLASS", true)

	v.SetDefault("POINTS_ENABLED", true)
	v.SetDefault("POINTS_VALUE_IN_EGP", "0.1")

	v.SetDefault("CHECKIN_SCAN_TIMEOUT", "5s")
	v.SetDefault("CHECKIN_DEDUPE_WINDOW", "3s")
	v.SetDefault("STAFF_MAX_SHIFT", "12h")
	v.SetDefault("STAFF_CHECKOUT_COOLDOWN", "10m")
	v.SetDefault("STAFF_SWEEP_INTERVAL", "15m")
	v.SetDefault("EXPIRING_SOON_WINDOW", "168h")
	v.SetDefault("TIMEZONE", "Africa/Cairo")
	v.SetDefault("SUMMARY_CACHE_TTL", "2m")
}

func isMissingFile(err error) bool {
	return errors.Is(err, fs.ErrNotExist)
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

func parseDecimal(raw string, fallback decimal.Decimal) decimal.Decimal {
	if raw == "" {
		return fallback
	}
	d, err := decimal.NewFromString(raw)
	if err != nil || d.Sign() <= 0 {
		return fallback
	}
	return d
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
