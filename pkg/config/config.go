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
	DB           DBConfig
	Redis        RedisConfig
	Session      SessionConfig
	Store        StoreConfig
	Mail         MailConfig
	Operator     OperatorConfig
	FeatureFlags FeatureFlagsConfig
	CORS         CORSConfig
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
	Env          string `envconfig:"GARDENAQUA_APP_ENV" required:"true"`
	Port         string `envconfig:"GARDENAQUA_APP_PORT" required:"true"`
	LogLevel     string `envconfig:"GARDENAQUA_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"GARDENAQUA_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type DBConfig struct {
	DSN    string `envconfig:"GARDENAQUA_DB_DSN"`
	Driver string `envconfig:"GARDENAQUA_DB_DRIVER" default:"postgres"`

	LegacyHost     string `envconfig:"GARDENAQUA_DB_HOST"`
	LegacyPort     int    `envconfig:"GARDENAQUA_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"GARDENAQUA_DB_USER"`
	LegacyPassword string `envconfig:"GARDENAQUA_DB_PASSWORD"`
	LegacyName     string `envconfig:"GARDENAQUA_DB_NAME"`
	LegacySSLMode  string `envconfig:"GARDENAQUA_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"GARDENAQUA_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"GARDENAQUA_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"GARDENAQUA_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"GARDENAQUA_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

type RedisConfig struct {
	URL          string        `envconfig:"GARDENAQUA_REDIS_URL" required:"true"`
	Address      string        `envconfig:"GARDENAQUA_REDIS_ADDR"`
	Password     string        `envconfig:"GARDENAQUA_REDIS_PASSWORD"`
	DB           int           `envconfig:"GARDENAQUA_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"GARDENAQUA_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"GARDENAQUA_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"GARDENAQUA_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"GARDENAQUA_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"GARDENAQUA_REDIS_WRITE_TIMEOUT" default:"5s"`
}

type SessionConfig struct {
	CookieName string        `envconfig:"GARDENAQUA_SESSION_COOKIE_NAME" default:"ga_session"`
	TTL        time.Duration `envconfig:"GARDENAQUA_SESSION_TTL" default:"336h"`
	Secure     bool          `envconfig:"GARDENAQUA_SESSION_COOKIE_SECURE" default:"true"`
}

// StoreConfig carries storefront identity used in notifications and links.
type StoreConfig struct {
	SiteName       string `envconfig:"GARDENAQUA_SITE_NAME" default:"GardenAqua"`
	SiteURL        string `envconfig:"GARDENAQUA_SITE_URL" default:"https://gardenaqua.pe"`
	CurrencySymbol string `envconfig:"GARDENAQUA_CURRENCY_SYMBOL" default:"S/"`
	WhatsAppNumber string `envconfig:"GARDENAQUA_WHATSAPP_NUMBER"`
}

type MailConfig struct {
	APIKey     string `envconfig:"GARDENAQUA_RESEND_API_KEY"`
	BaseURL    string `envconfig:"GARDENAQUA_RESEND_BASE_URL" default:"https://api.resend.com"`
	FromEmail  string `envconfig:"GARDENAQUA_RESEND_FROM_EMAIL"`
	ReplyTo    string `envconfig:"GARDENAQUA_RESEND_REPLY_TO"`
	AdminEmail string `envconfig:"GARDENAQUA_ADMIN_EMAIL"`
}

// Enabled reports whether outbound mail is configured at all.
func (m MailConfig) Enabled() bool {
	return strings.TrimSpace(m.APIKey) != "" && strings.TrimSpace(m.FromEmail) != ""
}

// OperatorConfig guards the order-status endpoint with a shared token.
type OperatorConfig struct {
	Token string `envconfig:"GARDENAQUA_OPERATOR_TOKEN"`
}

type FeatureFlagsConfig struct {
	AutoMigrate bool `envconfig:"GARDENAQUA_AUTO_MIGRATE" default:"false"`
}

type CORSConfig struct {
	AllowedOrigins []string `envconfig:"GARDENAQUA_CORS_ALLOWED_ORIGINS" default:"*"`
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
