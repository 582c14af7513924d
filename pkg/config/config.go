package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

const (
	EnvPrefix = ""

	AppEnvDev  = "dev"
	AppEnvProd = "prod"

	EnvAppEnv         = "GIFTREGISTRY_APP_ENV"
	EnvPort           = "GIFTREGISTRY_APP_PORT"
	EnvDBDSN          = "GIFTREGISTRY_DB_DSN"
	EnvDBHost         = "GIFTREGISTRY_DB_HOST"
	EnvDBUser         = "GIFTREGISTRY_DB_USER"
	EnvDBName         = "GIFTREGISTRY_DB_NAME"
	EnvRedisURL       = "GIFTREGISTRY_REDIS_URL"
	EnvJWTSecret      = "GIFTREGISTRY_JWT_SECRET"
	EnvJWTIssuer      = "GIFTREGISTRY_JWT_ISSUER"
	EnvPaystackSecret = "GIFTREGISTRY_PAYSTACK_SECRET_KEY"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}

type Config struct {
	App          AppConfig
	DB           DBConfig
	Redis        RedisConfig
	Session      SessionConfig
	JWT          JWTConfig
	Paystack     PaystackConfig
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
	Env          string `envconfig:"GIFTREGISTRY_APP_ENV" required:"true"`
	Port         string `envconfig:"GIFTREGISTRY_APP_PORT" required:"true"`
	LogLevel     string `envconfig:"GIFTREGISTRY_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"GIFTREGISTRY_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type DBConfig struct {
	DSN    string `envconfig:"GIFTREGISTRY_DB_DSN"`
	Driver string `envconfig:"GIFTREGISTRY_DB_DRIVER" default:"postgres"`

	LegacyHost     string `envconfig:"GIFTREGISTRY_DB_HOST"`
	LegacyPort     int    `envconfig:"GIFTREGISTRY_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"GIFTREGISTRY_DB_USER"`
	LegacyPassword string `envconfig:"GIFTREGISTRY_DB_PASSWORD"`
	LegacyName     string `envconfig:"GIFTREGISTRY_DB_NAME"`
	LegacySSLMode  string `envconfig:"GIFTREGISTRY_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"GIFTREGISTRY_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"GIFTREGISTRY_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"GIFTREGISTRY_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"GIFTREGISTRY_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

type RedisConfig struct {
	URL          string        `envconfig:"GIFTREGISTRY_REDIS_URL" required:"true"`
	Address      string        `envconfig:"GIFTREGISTRY_REDIS_ADDR"`
	Password     string        `envconfig:"GIFTREGISTRY_REDIS_PASSWORD"`
	DB           int           `envconfig:"GIFTREGISTRY_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"GIFTREGISTRY_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"GIFTREGISTRY_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"GIFTREGISTRY_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"GIFTREGISTRY_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"GIFTREGISTRY_REDIS_WRITE_TIMEOUT" default:"5s"`
}

// SessionConfig controls the anonymous browser session that backs the cart.
type SessionConfig struct {
	CookieName   string        `envconfig:"GIFTREGISTRY_SESSION_COOKIE" default:"gr_session"`
	TTL          time.Duration `envconfig:"GIFTREGISTRY_SESSION_TTL" default:"168h"`
	CookieSecure bool          `envconfig:"GIFTREGISTRY_SESSION_COOKIE_SECURE" default:"false"`
}

type JWTConfig struct {
	Secret            string `envconfig:"GIFTREGISTRY_JWT_SECRET" required:"true"`
	Issuer            string `envconfig:"GIFTREGISTRY_JWT_ISSUER" required:"true"`
	ExpirationMinutes int    `envconfig:"GIFTREGISTRY_JWT_EXPIRATION_MINUTES" default:"1440"`
}

type PaystackConfig struct {
	BaseURL     string        `envconfig:"GIFTREGISTRY_PAYSTACK_BASE_URL" default:"https://api.paystack.co"`
	SecretKey   string        `envconfig:"GIFTREGISTRY_PAYSTACK_SECRET_KEY" required:"true"`
	CallbackURL string        `envconfig:"GIFTREGISTRY_PAYSTACK_CALLBACK_URL"`
	Timeout     time.Duration `envconfig:"GIFTREGISTRY_PAYSTACK_TIMEOUT" default:"10s"`
	MaxRetries  int           `envconfig:"GIFTREGISTRY_PAYSTACK_MAX_RETRIES" default:"3"`
}

type FeatureFlagsConfig struct {
	AutoMigrate bool `envconfig:"GIFTREGISTRY_AUTO_MIGRATE" default:"false"`
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
