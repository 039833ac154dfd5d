package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

const (
	EnvPrefix = ""

	AppEnvDev  = "dev"
	AppEnvProd = "prod"

	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"

	EnvAppEnv    = "BOM_APP_ENV"
	EnvPort      = "BOM_APP_PORT"
	EnvLogLevel  = "BOM_LOG_LEVEL"
	EnvLogFormat = "BOM_LOG_FORMAT"
	EnvDBDriver  = "BOM_DB_DRIVER"
	EnvDBDSN     = "BOM_DB_DSN"
	EnvDBHost    = "BOM_DB_HOST"
)

type Config struct {
	App  AppConfig
	DB   DBConfig
	HTTP HTTPConfig
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
	Env       string `envconfig:"BOM_APP_ENV" default:"dev"`
	Name      string `envconfig:"BOM_APP_NAME" default:"BOM Graph Service v1.0"`
	Port      string `envconfig:"BOM_APP_PORT" default:"3000"`
	LogLevel  string `envconfig:"BOM_LOG_LEVEL" default:"info"`
	LogFormat string `envconfig:"BOM_LOG_FORMAT" default:"json"`
	WarnStack bool   `envconfig:"BOM_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type DBConfig struct {
	Driver string `envconfig:"BOM_DB_DRIVER" default:"postgres"`
	DSN    string `envconfig:"BOM_DB_DSN"`

	Host     string `envconfig:"BOM_DB_HOST"`
	Port     int    `envconfig:"BOM_DB_PORT" default:"5432"`
	User     string `envconfig:"BOM_DB_USER"`
	Password string `envconfig:"BOM_DB_PASSWORD"`
	Name     string `envconfig:"BOM_DB_NAME"`
	SSLMode  string `envconfig:"BOM_DB_SSLMODE" default:"disable"`
	TimeZone string `envconfig:"BOM_DB_TIMEZONE" default:"UTC"`

	// Postgres poolers in transaction mode reject implicit prepared statements.
	PreferSimpleProtocol bool `envconfig:"BOM_DB_SIMPLE_PROTOCOL" default:"true"`

	AutoMigrate bool          `envconfig:"BOM_DB_AUTO_MIGRATE" default:"true"`
	LogSQL      bool          `envconfig:"BOM_DB_LOG_SQL" default:"false"`
	SlowQuery   time.Duration `envconfig:"BOM_DB_SLOW_QUERY" default:"1s"`

	MaxOpenConns    int           `envconfig:"BOM_DB_MAX_OPEN_CONNS" default:"100"`
	MaxIdleConns    int           `envconfig:"BOM_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"BOM_DB_CONN_MAX_LIFETIME" default:"1h"`
}

func (db *DBConfig) ensureDSN() error {
	db.Driver = strings.ToLower(strings.TrimSpace(db.Driver))
	switch db.Driver {
	case DriverPostgres:
		if db.DSN != "" {
			return nil
		}
		if db.Host == "" {
			return fmt.Errorf("%s or %s is required for the postgres driver", EnvDBDSN, EnvDBHost)
		}
		db.DSN = fmt.Sprintf(
			"host=%s user=%s password=%s dbname=%s port=%d sslmode=%s TimeZone=%s",
			db.Host, db.User, db.Password, db.Name, db.Port, db.SSLMode, db.TimeZone,
		)
		return nil
	case DriverSQLite:
		if db.DSN == "" {
			db.DSN = "file:bom.db?_foreign_keys=on"
		}
		return nil
	default:
		return fmt.Errorf("unsupported %s %q", EnvDBDriver, db.Driver)
	}
}

type HTTPConfig struct {
	CORSOrigins     string        `envconfig:"BOM_HTTP_CORS_ORIGINS" default:"*"`
	EnableWebsocket bool          `envconfig:"BOM_HTTP_ENABLE_WS" default:"true"`
	ShutdownTimeout time.Duration `envconfig:"BOM_HTTP_SHUTDOWN_TIMEOUT" default:"10s"`
	ActivityMaxDays int           `envconfig:"BOM_HTTP_ACTIVITY_MAX_DAYS" default:"90"`
}
