package config

import (
	"errors"
	"io/fs"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	EnvDevelopment = "development"
	EnvProduction  = "production"
)

// Snapshot cache backends.
const (
	SnapshotNone  = "none"
	SnapshotRedis = "redis"
	SnapshotBolt  = "bolt"
)

// Catalog persistence backends for the reference API.
const (
	BackendMemory   = "memory"
	BackendPostgres = "postgres"
)

type Config struct {
	Env string

	API      APIConfig
	Catalog  CatalogConfig
	Snapshot SnapshotConfig
	Server   ServerConfig
	Database DatabaseConfig
	Redis    RedisConfig
	JWT      JWTConfig
	CORS     CORSConfig
	Export   ExportConfig
	Log      LogConfig
}

// APIConfig points the client transports at the remote catalog.
type APIConfig struct {
	BaseURL string
	Token   string
	Timeout time.Duration
}

// CatalogConfig tunes catalog store reconciliation.
type CatalogConfig struct {
	RefreshJoinedOnWrite bool
}

// SnapshotConfig selects where last-fetched views are kept between runs.
type SnapshotConfig struct {
	Backend  string
	TTL      time.Duration
	BoltPath string
}

// ServerConfig configures the reference catalog API.
type ServerConfig struct {
	Port      int
	APIPrefix string
	Backend   string
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

type JWTConfig struct {
	Secret     string
	Expiration time.Duration
	Issuer     string
}

type CORSConfig struct {
	AllowedOrigins []string
}

// ExportConfig controls where the CLI writes CSV/PDF listings.
type ExportConfig struct {
	Dir string
}

type LogConfig struct {
	Level  string
	Format string
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

	return fromViper(v), nil
}

func fromViper(v *viper.Viper) *Config {
	cfg := &Config{}

	cfg.Env = v.GetString("ENV")

	cfg.API = APIConfig{
		BaseURL: strings.TrimRight(v.GetString("CATALOG_API_URL"), "/"),
		Token:   v.GetString("CATALOG_API_TOKEN"),
		Timeout: parseDuration(v.GetString("CATALOG_API_TIMEOUT"), 10*time.Second),
	}

	cfg.Catalog = CatalogConfig{
		RefreshJoinedOnWrite: v.GetBool("CATALOG_REFRESH_JOINED_ON_WRITE"),
	}

	cfg.Snapshot = SnapshotConfig{
		Backend:  normalizeChoice(v.GetString("SNAPSHOT_BACKEND"), SnapshotNone, SnapshotNone, SnapshotRedis, SnapshotBolt),
		TTL:      parseDuration(v.GetString("SNAPSHOT_TTL"), 24*time.Hour),
		BoltPath: v.GetString("SNAPSHOT_BOLT_PATH"),
	}

	cfg.Server = ServerConfig{
		Port:      v.GetInt("PORT"),
		APIPrefix: v.GetString("API_PREFIX"),
		Backend:   normalizeChoice(v.GetString("CATALOG_BACKEND"), BackendMemory, BackendMemory, BackendPostgres),
	}

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

	cfg.JWT = JWTConfig{
		Secret:     v.GetString("JWT_SECRET"),
		Expiration: parseDuration(v.GetString("JWT_EXPIRATION"), 24*time.Hour),
		Issuer:     v.GetString("JWT_ISSUER"),
	}

	cfg.CORS = CORSConfig{AllowedOrigins: splitAndTrim(v.GetString("ALLOWED_ORIGINS"))}

	cfg.Export = ExportConfig{Dir: v.GetString("EXPORT_DIR")}

	cfg.Log = LogConfig{
		Level:  v.GetString("LOG_LEVEL"),
		Format: v.GetString("LOG_FORMAT"),
	}

	return cfg
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("ENV", EnvDevelopment)

	v.SetDefault("CATALOG_API_URL", "http://localhost:8080/api")
	v.SetDefault("CATALOG_API_TOKEN", "")
	v.SetDefault("CATALOG_API_TIMEOUT", "10s")
	v.SetDefault("CATALOG_REFRESH_JOINED_ON_WRITE", true)

	v.SetDefault("SNAPSHOT_BACKEND", SnapshotNone)
	v.SetDefault("SNAPSHOT_TTL", "24h")
	v.SetDefault("SNAPSHOT_BOLT_PATH", "./catalog-snapshot.bolt")

	v.SetDefault("PORT", 8080)
	v.SetDefault("API_PREFIX", "/api")
	v.SetDefault("CATALOG_BACKEND", BackendMemory)

	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_PORT", 5432)
	v.SetDefault("DB_USER", "postgres")
	v.SetDefault("DB_PASSWORD", "postgres")
	v.SetDefault("DB_NAME", "college_catalog")
	v.SetDefault("DB_SSL_MODE", "disable")
	v.SetDefault("DB_MAX_OPEN_CONNS", 10)
	v.SetDefault("DB_MAX_IDLE_CONNS", 5)

	v.SetDefault("REDIS_HOST", "localhost")
	v.SetDefault("REDIS_PORT", 6379)
	v.SetDefault("REDIS_PASSWORD", "")
	v.SetDefault("REDIS_DB", 0)

	v.SetDefault("JWT_SECRET", "dev_secret")
	v.SetDefault("JWT_EXPIRATION", "24h")
	v.SetDefault("JWT_ISSUER", "college-catalog")

	v.SetDefault("ALLOWED_ORIGINS", "")
	v.SetDefault("EXPORT_DIR", "./exports")

	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "json")
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

func normalizeChoice(raw, fallback string, allowed ...string) string {
	value := strings.ToLower(strings.TrimSpace(raw))
	for _, a := range allowed {
		if value == a {
			return value
		}
	}
	return fallback
}

// viper reports a missing explicit config file as a plain fs error rather than
// ConfigFileNotFoundError.
func isMissingFile(err error) bool {
	return errors.Is(err, fs.ErrNotExist)
}
