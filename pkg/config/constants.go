package config

const (
	EnvPrefix = "WISHBOARD"

	AppEnvDev  = "dev"
	AppEnvProd = "prod"
)

const (
	EnvAppEnv          = "WISHBOARD_APP_ENV"
	EnvPort            = "WISHBOARD_APP_PORT"
	EnvCORSOrigins     = "WISHBOARD_CORS_ALLOWED_ORIGINS"
	EnvDBDSN           = "WISHBOARD_DB_DSN"
	EnvDBDriver        = "WISHBOARD_DB_DRIVER"
	EnvDBHost          = "WISHBOARD_DB_HOST"
	EnvDBUser          = "WISHBOARD_DB_USER"
	EnvDBName          = "WISHBOARD_DB_NAME"
	EnvRedisURL        = "WISHBOARD_REDIS_URL"
	EnvJWTSecret       = "WISHBOARD_JWT_SECRET"
	EnvJWTIssuer       = "WISHBOARD_JWT_ISSUER"
	EnvJWTExpMins      = "WISHBOARD_JWT_EXPIRATION_MINUTES"
	EnvRefreshTokenTTL = "WISHBOARD_REFRESH_TOKEN_TTL_MINUTES"
	EnvGoogleClientID  = "WISHBOARD_GOOGLE_CLIENT_ID"
	EnvUploadDir       = "WISHBOARD_UPLOAD_DIR"
	EnvMaxUploadMB     = "WISHBOARD_MAX_UPLOAD_MB"
	EnvUseSQLite       = "WISHBOARD_USE_SQLITE"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}
