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
	HTTP         HTTPConfig
	DB           DBConfig
	Redis        RedisConfig
	JWT          JWTConfig
	Google       GoogleConfig
	Uploads      UploadsConfig
	RateLimit    RateLimitConfig
	FeatureFlags FeatureFlagsConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if cfg.FeatureFlags.UseSQLite {
		cfg.DB.Driver = DBDriverSQLite
	}
	if err := cfg.DB.ensureDSN(); err != nil {
		return nil, err
	}
	if cfg.Uploads.MaxUploadMB <= 0 {
		return nil, fmt.Errorf("%s must be positive", EnvMaxUploadMB)
	}
	return &cfg, nil
}

type AppConfig struct {
	Env          string `envconfig:"WISHBOARD_APP_ENV" required:"true"`
	Port         string `envconfig:"WISHBOARD_APP_PORT" required:"true"`
	LogLevel     string `envconfig:"WISHBOARD_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"WISHBOARD_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type HTTPConfig struct {
	ReadTimeout     time.Duration `envconfig:"WISHBOARD_HTTP_READ_TIMEOUT" default:"30s"`
	WriteTimeout    time.Duration `envconfig:"WISHBOARD_HTTP_WRITE_TIMEOUT" default:"30s"`
	ShutdownTimeout time.Duration `envconfig:"WISHBOARD_SHUTDOWN_TIMEOUT" default:"15s"`
	CORSOrigins     []string      `envconfig:"WISHBOARD_CORS_ALLOWED_ORIGINS" default:"http://localhost:3000"`
}

const (
	DBDriverPostgres = "postgres"
	DBDriverSQLite   = "sqlite"
)

type DBConfig struct {
	DSN    string `envconfig:"WISHBOARD_DB_DSN"`
	Driver string `envconfig:"WISHBOARD_DB_DRIVER" default:"postgres"`

	LegacyHost     string `envconfig:"WISHBOARD_DB_HOST"`
	LegacyPort     int    `envconfig:"WISHBOARD_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"WISHBOARD_DB_USER"`
	LegacyPassword string `envconfig:"WISHBOARD_DB_PASSWORD"`
	LegacyName     string `envconfig:"WISHBOARD_DB_NAME"`
	LegacySSLMode  string `envconfig:"WISHBOARD_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"WISHBOARD_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"WISHBOARD_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"WISHBOARD_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"WISHBOARD_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

// IsSQLite reports whether the configured driver is sqlite.
func (db DBConfig) IsSQLite() bool {
	return strings.EqualFold(db.Driver, DBDriverSQLite)
}

type RedisConfig struct {
	URL          string        `envconfig:"WISHBOARD_REDIS_URL" required:"true"`
	Address      string        `envconfig:"WISHBOARD_REDIS_ADDR"`
	Password     string        `envconfig:"WISHBOARD_REDIS_PASSWORD"`
	DB           int           `envconfig:"WISHBOARD_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"WISHBOARD_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"WISHBOARD_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"WISHBOARD_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"WISHBOARD_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"WISHBOARD_REDIS_WRITE_TIMEOUT" default:"5s"`
}

type JWTConfig struct {
	Secret                 string `envconfig:"WISHBOARD_JWT_SECRET" required:"true"`
	Issuer                 string `envconfig:"WISHBOARD_JWT_ISSUER" required:"true"`
	ExpirationMinutes      int    `envconfig:"WISHBOARD_JWT_EXPIRATION_MINUTES" required:"true"`
	RefreshTokenTTLMinutes int    `envconfig:"WISHBOARD_REFRESH_TOKEN_TTL_MINUTES" default:"43200"`
}

// AccessTokenTTL returns the access token lifetime.
func (j JWTConfig) AccessTokenTTL() time.Duration {
	if j.ExpirationMinutes <= 0 {
		return 0
	}
	return time.Duration(j.ExpirationMinutes) * time.Minute
}

// RefreshTokenTTL returns the refresh token TTL configured in minutes.
func (j JWTConfig) RefreshTokenTTL() time.Duration {
	if j.RefreshTokenTTLMinutes <= 0 {
		return 0
	}
	return time.Duration(j.RefreshTokenTTLMinutes) * time.Minute
}

type GoogleConfig struct {
	ClientID string `envconfig:"WISHBOARD_GOOGLE_CLIENT_ID" required:"true"`
}

type UploadsConfig struct {
	Dir         string `envconfig:"WISHBOARD_UPLOAD_DIR" default:"public/uploads"`
	URLPrefix   string `envconfig:"WISHBOARD_UPLOAD_URL_PREFIX" default:"/uploads"`
	MaxUploadMB int    `envconfig:"WISHBOARD_MAX_UPLOAD_MB" default:"10"`
}

// MaxBytes returns the upload size ceiling in bytes.
func (u UploadsConfig) MaxBytes() int64 {
	return int64(u.MaxUploadMB) << 20
}

type RateLimitConfig struct {
	SignInWindow    time.Duration `envconfig:"WISHBOARD_RATE_LIMIT_SIGNIN_WINDOW" default:"1m"`
	SignInIPLimit   int           `envconfig:"WISHBOARD_RATE_LIMIT_SIGNIN_IP_LIMIT" default:"20"`
	UploadWindow    time.Duration `envconfig:"WISHBOARD_RATE_LIMIT_UPLOAD_WINDOW" default:"1m"`
	UploadUserLimit int           `envconfig:"WISHBOARD_RATE_LIMIT_UPLOAD_USER_LIMIT" default:"60"`
}

type FeatureFlagsConfig struct {
	UseSQLite   bool `envconfig:"WISHBOARD_USE_SQLITE" default:"false"`
	AutoMigrate bool `envconfig:"WISHBOARD_AUTO_MIGRATE" default:"false"`
}

func (db *DBConfig) ensureDSN() error {
	if db.DSN != "" {
		return nil
	}
	if db.IsSQLite() {
		db.DSN = "file:wishboard.db?_foreign_keys=on"
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
