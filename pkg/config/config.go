package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	App          AppConfig
	Service      ServiceConfig
	DB           DBConfig
	Redis        RedisConfig
	JWT          JWTConfig
	FeatureFlags FeatureFlagsConfig
	Cart         CartConfig
	Status       StatusConfig
	Cloudinary   CloudinaryConfig
	DoorDash     DoorDashConfig
	Uber         UberConfig
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
	Env          string `envconfig:"FORKLINE_APP_ENV" required:"true"`
	Port         string `envconfig:"FORKLINE_APP_PORT" required:"true"`
	LogLevel     string `envconfig:"FORKLINE_LOG_LEVEL" default:"info"`
	LogFormat    string `envconfig:"FORKLINE_LOG_FORMAT" default:"json"`
	LogWarnStack bool   `envconfig:"FORKLINE_LOG_WARN_STACK" default:"false"`

	CORSAllowedOrigins []string `envconfig:"FORKLINE_CORS_ALLOWED_ORIGINS" default:"http://localhost:3000"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd) || strings.EqualFold(a.Env, "production")
}

type ServiceConfig struct {
	Kind string `envconfig:"FORKLINE_SERVICE_KIND" default:"api"`
}

type DBConfig struct {
	DSN    string `envconfig:"FORKLINE_DB_DSN"`
	Driver string `envconfig:"FORKLINE_DB_DRIVER" default:"postgres"`

	LegacyHost     string `envconfig:"FORKLINE_DB_HOST"`
	LegacyPort     int    `envconfig:"FORKLINE_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"FORKLINE_DB_USER"`
	LegacyPassword string `envconfig:"FORKLINE_DB_PASSWORD"`
	LegacyName     string `envconfig:"FORKLINE_DB_NAME"`
	LegacySSLMode  string `envconfig:"FORKLINE_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"FORKLINE_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"FORKLINE_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"FORKLINE_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"FORKLINE_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

type RedisConfig struct {
	URL          string        `envconfig:"FORKLINE_REDIS_URL" required:"true"`
	Address      string        `envconfig:"FORKLINE_REDIS_ADDR"`
	Password     string        `envconfig:"FORKLINE_REDIS_PASSWORD"`
	DB           int           `envconfig:"FORKLINE_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"FORKLINE_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"FORKLINE_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"FORKLINE_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"FORKLINE_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"FORKLINE_REDIS_WRITE_TIMEOUT" default:"5s"`
}

// JWTConfig verifies admin bearer tokens minted by the identity provider.
type JWTConfig struct {
	Secret            string `envconfig:"FORKLINE_JWT_SECRET" required:"true"`
	Issuer            string `envconfig:"FORKLINE_JWT_ISSUER" required:"true"`
	ExpirationMinutes int    `envconfig:"FORKLINE_JWT_EXPIRATION_MINUTES" default:"60"`
}

type FeatureFlagsConfig struct {
	UseSQLite   bool `envconfig:"FORKLINE_USE_SQLITE" default:"false"`
	AutoMigrate bool `envconfig:"FORKLINE_AUTO_MIGRATE" default:"false"`
}

type CartConfig struct {
	SessionTTL time.Duration `envconfig:"FORKLINE_CART_SESSION_TTL" default:"720h"`
}

type StatusConfig struct {
	RefreshInterval time.Duration `envconfig:"FORKLINE_STATUS_REFRESH_INTERVAL" default:"60s"`
	SnapshotTTL     time.Duration `envconfig:"FORKLINE_STATUS_SNAPSHOT_TTL" default:"5m"`
	LockTTL         time.Duration `envconfig:"FORKLINE_STATUS_LOCK_TTL" default:"55s"`
}

type CloudinaryConfig struct {
	CloudName string `envconfig:"FORKLINE_CLOUDINARY_CLOUD_NAME"`
	APIKey    string `envconfig:"FORKLINE_CLOUDINARY_API_KEY"`
	APISecret string `envconfig:"FORKLINE_CLOUDINARY_API_SECRET"`
	Folder    string `envconfig:"FORKLINE_CLOUDINARY_FOLDER" default:"forkline"`
	MaxUpload int64  `envconfig:"FORKLINE_MAX_UPLOAD_MB" default:"10"`
}

// Enabled reports whether image uploads can be proxied.
func (c CloudinaryConfig) Enabled() bool {
	return c.CloudName != "" && c.APIKey != "" && c.APISecret != ""
}

type DoorDashConfig struct {
	DeveloperID   string `envconfig:"FORKLINE_DOORDASH_DEVELOPER_ID"`
	KeyID         string `envconfig:"FORKLINE_DOORDASH_KEY_ID"`
	SigningSecret string `envconfig:"FORKLINE_DOORDASH_SIGNING_SECRET"`
	BaseURL       string `envconfig:"FORKLINE_DOORDASH_BASE_URL" default:"https://openapi.doordash.com"`
}

func (c DoorDashConfig) Enabled() bool {
	return c.DeveloperID != "" && c.KeyID != "" && c.SigningSecret != ""
}

type UberConfig struct {
	CustomerID   string `envconfig:"FORKLINE_UBER_CUSTOMER_ID"`
	ClientID     string `envconfig:"FORKLINE_UBER_CLIENT_ID"`
	ClientSecret string `envconfig:"FORKLINE_UBER_CLIENT_SECRET"`
	BaseURL      string `envconfig:"FORKLINE_UBER_BASE_URL" default:"https://api.uber.com/v1"`
	TokenURL     string `envconfig:"FORKLINE_UBER_TOKEN_URL" default:"https://auth.uber.com/oauth/v2/token"`
}

func (c UberConfig) Enabled() bool {
	return c.CustomerID != "" && c.ClientID != "" && c.ClientSecret != ""
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
