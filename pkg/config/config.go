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

	EnvDBDSN  = "AVIDERS_DB_DSN"
	EnvDBHost = "AVIDERS_DB_HOST"
	EnvDBUser = "AVIDERS_DB_USER"
	EnvDBName = "AVIDERS_DB_NAME"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}

type Config struct {
	App          AppConfig
	Service      ServiceConfig
	DB           DBConfig
	Redis        RedisConfig
	Firebase     FirebaseConfig
	Basket       BasketConfig
	Worker       WorkerConfig
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
	Env          string `envconfig:"AVIDERS_APP_ENV" required:"true"`
	Port         string `envconfig:"AVIDERS_APP_PORT" default:"8080"`
	LogLevel     string `envconfig:"AVIDERS_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"AVIDERS_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type ServiceConfig struct {
	Kind string `envconfig:"AVIDERS_SERVICE_KIND" default:"api"`
}

type DBConfig struct {
	DSN    string `envconfig:"AVIDERS_DB_DSN"`
	Driver string `envconfig:"AVIDERS_DB_DRIVER" default:"postgres"`

	LegacyHost     string `envconfig:"AVIDERS_DB_HOST"`
	LegacyPort     int    `envconfig:"AVIDERS_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"AVIDERS_DB_USER"`
	LegacyPassword string `envconfig:"AVIDERS_DB_PASSWORD"`
	LegacyName     string `envconfig:"AVIDERS_DB_NAME"`
	LegacySSLMode  string `envconfig:"AVIDERS_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"AVIDERS_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"AVIDERS_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"AVIDERS_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"AVIDERS_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

type RedisConfig struct {
	URL          string        `envconfig:"AVIDERS_REDIS_URL"`
	Address      string        `envconfig:"AVIDERS_REDIS_ADDR"`
	Password     string        `envconfig:"AVIDERS_REDIS_PASSWORD"`
	DB           int           `envconfig:"AVIDERS_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"AVIDERS_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"AVIDERS_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"AVIDERS_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"AVIDERS_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"AVIDERS_REDIS_WRITE_TIMEOUT" default:"5s"`
}

// FirebaseConfig holds credentials for the FCM push sender. When both fields
// are empty the SDK falls back to application default credentials.
type FirebaseConfig struct {
	ProjectID       string `envconfig:"AVIDERS_FIREBASE_PROJECT_ID"`
	CredentialsJSON string `envconfig:"AVIDERS_FIREBASE_CREDENTIALS_JSON"`
}

type BasketConfig struct {
	// WishlistIDs is the fixed rotation of share-wishlist handles used for
	// quick-buy checkouts.
	WishlistIDs       []string      `envconfig:"AVIDERS_BASKET_WISHLIST_IDS" default:"2UXWTCZV1NEL2,KRF7Z0109CDU,24VB0A2VMIWFX,1A37JWTZP80MQ,2MW3NMKMDBM4B"`
	ReminderLookahead time.Duration `envconfig:"AVIDERS_BASKET_REMINDER_LOOKAHEAD" default:"24h"`
}

type WorkerConfig struct {
	Interval time.Duration `envconfig:"AVIDERS_WORKER_INTERVAL" default:"24h"`
}

type FeatureFlagsConfig struct {
	AutoMigrate bool `envconfig:"AVIDERS_AUTO_MIGRATE" default:"false"`
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
