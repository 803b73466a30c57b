package config

const (
	EnvPrefix = "FORKLINE"

	AppEnvDev  = "dev"
	AppEnvProd = "prod"
)

const (
	EnvAppEnv    = "FORKLINE_APP_ENV"
	EnvPort      = "FORKLINE_APP_PORT"
	EnvDBDSN     = "FORKLINE_DB_DSN"
	EnvDBHost    = "FORKLINE_DB_HOST"
	EnvDBUser    = "FORKLINE_DB_USER"
	EnvDBName    = "FORKLINE_DB_NAME"
	EnvRedisURL  = "FORKLINE_REDIS_URL"
	EnvJWTSecret = "FORKLINE_JWT_SECRET"
	EnvJWTIssuer = "FORKLINE_JWT_ISSUER"

	EnvCartSessionTTL        = "FORKLINE_CART_SESSION_TTL"
	EnvStatusRefreshInterval = "FORKLINE_STATUS_REFRESH_INTERVAL"
	EnvCloudinaryCloudName   = "FORKLINE_CLOUDINARY_CLOUD_NAME"
	EnvCloudinaryAPIKey      = "FORKLINE_CLOUDINARY_API_KEY"
	EnvCloudinaryAPISecret   = "FORKLINE_CLOUDINARY_API_SECRET"
	EnvDoorDashDeveloperID   = "FORKLINE_DOORDASH_DEVELOPER_ID"
	EnvDoorDashKeyID         = "FORKLINE_DOORDASH_KEY_ID"
	EnvDoorDashSigningSecret = "FORKLINE_DOORDASH_SIGNING_SECRET"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}
