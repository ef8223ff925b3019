package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

const (
	EnvPrefix = "feriaverde"

	AppEnvDev     = "dev"
	AppEnvStaging = "staging"
	AppEnvProd    = "prod"

	EnvDBDSN  = "FERIAVERDE_DB_DSN"
	EnvDBHost = "FERIAVERDE_DB_HOST"
	EnvDBUser = "FERIAVERDE_DB_USER"
	EnvDBName = "FERIAVERDE_DB_NAME"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}

type Config struct {
	App          AppConfig
	DB           DBConfig
	Redis        RedisConfig
	JWT          JWTConfig
	Catalog      CatalogConfig
	FeatureFlags FeatureFlagsConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.DB.ensureDSN(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

type AppConfig struct {
	Env          string `envconfig:"FERIAVERDE_APP_ENV" required:"true"`
	Port         string `envconfig:"FERIAVERDE_APP_PORT" required:"true"`
	LogLevel     string `envconfig:"FERIAVERDE_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"FERIAVERDE_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type DBConfig struct {
	DSN    string `envconfig:"FERIAVERDE_DB_DSN"`
	Driver string `envconfig:"FERIAVERDE_DB_DRIVER" default:"postgres"`

	LegacyHost     string `envconfig:"FERIAVERDE_DB_HOST"`
	LegacyPort     int    `envconfig:"FERIAVERDE_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"FERIAVERDE_DB_USER"`
	LegacyPassword string `envconfig:"FERIAVERDE_DB_PASSWORD"`
	LegacyName     string `envconfig:"FERIAVERDE_DB_NAME"`
	LegacySSLMode  string `envconfig:"FERIAVERDE_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"FERIAVERDE_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"FERIAVERDE_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"FERIAVERDE_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"FERIAVERDE_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

type RedisConfig struct {
	URL          string        `envconfig:"FERIAVERDE_REDIS_URL" required:"true"`
	PoolSize     int           `envconfig:"FERIAVERDE_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"FERIAVERDE_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"FERIAVERDE_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"FERIAVERDE_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"FERIAVERDE_REDIS_WRITE_TIMEOUT" default:"5s"`
}

type JWTConfig struct {
	Secret            string `envconfig:"FERIAVERDE_JWT_SECRET" required:"true"`
	Issuer            string `envconfig:"FERIAVERDE_JWT_ISSUER" required:"true"`
	ExpirationMinutes int    `envconfig:"FERIAVERDE_JWT_EXPIRATION_MINUTES" default:"60"`
}

// CatalogConfig tunes the public read side.
type CatalogConfig struct {
	SnapshotTTL     time.Duration `envconfig:"FERIAVERDE_CATALOG_SNAPSHOT_TTL" default:"5m"`
	DefaultPageSize int           `envconfig:"FERIAVERDE_CATALOG_DEFAULT_PAGE_SIZE" default:"20"`
	MaxPageSize     int           `envconfig:"FERIAVERDE_CATALOG_MAX_PAGE_SIZE" default:"100"`
}

type FeatureFlagsConfig struct {
	UseSQLite   bool `envconfig:"FERIAVERDE_USE_SQLITE" default:"false"`
	AutoMigrate bool `envconfig:"FERIAVERDE_AUTO_MIGRATE" default:"false"`
}

func (db *DBConfig) ensureDSN() error {
	if db.DSN != "" {
		return nil
	}

	missing := []string{}
	legacyValues := map[string]string{
		EnvDBHost: db.LegacyHost,
		EnvDBUser: db.LegacyUser,
		EnvDBName: db.LegacyName,
	}
	for _, env := range legacyDBEnvVars {
		if legacyValues[env] == "" {
			missing = append(missing, env)
		}
	}

	if len(missing) > 0 {
		return fmt.Errorf("either %s or %s are required", EnvDBDSN, strings.Join(missing, ", "))
	}

	userInfo := url.User(db.LegacyUser)
	if db.LegacyPassword != "" {
		userInfo = url.UserPassword(db.LegacyUser, db.LegacyPassword)
	}

	u := &url.URL{
		Scheme: "postgres",
		User:   userInfo,
		Host:   fmt.Sprintf("%s:%d", db.LegacyHost, db.LegacyPort),
		Path:   db.LegacyName,
	}

	if db.LegacySSLMode != "" {
		q := u.Query()
		q.Set("sslmode", db.LegacySSLMode)
		u.RawQuery = q.Encode()
	}

	db.DSN = u.String()
	return nil
}
