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
	JWT          JWTConfig
	Engine       EngineConfig
	RateLimit    RateLimitConfig
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
	Env          string   `envconfig:"PRICEMATRIX_APP_ENV" required:"true"`
	Port         string   `envconfig:"PRICEMATRIX_APP_PORT" required:"true"`
	LogLevel     string   `envconfig:"PRICEMATRIX_LOG_LEVEL" default:"info"`
	LogWarnStack bool     `envconfig:"PRICEMATRIX_LOG_WARN_STACK" default:"false"`
	CORSOrigins  []string `envconfig:"PRICEMATRIX_CORS_ORIGINS" default:"http://localhost:3000,http://localhost:5173"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type DBConfig struct {
	DSN string `envconfig:"PRICEMATRIX_DB_DSN"`
	// Driver selects the gorm dialector. sqlite exists for local work
	// without a Postgres instance; deployments run postgres.
	Driver string `envconfig:"PRICEMATRIX_DB_DRIVER" default:"postgres"`

	LegacyHost     string `envconfig:"PRICEMATRIX_DB_HOST"`
	LegacyPort     int    `envconfig:"PRICEMATRIX_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"PRICEMATRIX_DB_USER"`
	LegacyPassword string `envconfig:"PRICEMATRIX_DB_PASSWORD"`
	LegacyName     string `envconfig:"PRICEMATRIX_DB_NAME"`
	LegacySSLMode  string `envconfig:"PRICEMATRIX_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"PRICEMATRIX_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"PRICEMATRIX_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"PRICEMATRIX_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"PRICEMATRIX_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

type RedisConfig struct {
	URL          string        `envconfig:"PRICEMATRIX_REDIS_URL" required:"true"`
	Address      string        `envconfig:"PRICEMATRIX_REDIS_ADDR"`
	Password     string        `envconfig:"PRICEMATRIX_REDIS_PASSWORD"`
	DB           int           `envconfig:"PRICEMATRIX_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"PRICEMATRIX_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"PRICEMATRIX_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"PRICEMATRIX_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"PRICEMATRIX_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"PRICEMATRIX_REDIS_WRITE_TIMEOUT" default:"5s"`
}

type JWTConfig struct {
	Secret            string `envconfig:"PRICEMATRIX_JWT_SECRET" required:"true"`
	Issuer            string `envconfig:"PRICEMATRIX_JWT_ISSUER" required:"true"`
	ExpirationMinutes int    `envconfig:"PRICEMATRIX_JWT_EXPIRATION_MINUTES" required:"true"`
}

// Expiration returns the access token lifetime configured in minutes.
func (j JWTConfig) Expiration() time.Duration {
	if j.ExpirationMinutes <= 0 {
		return 0
	}
	return time.Duration(j.ExpirationMinutes) * time.Minute
}

type EngineConfig struct {
	SessionTTL  time.Duration `envconfig:"PRICEMATRIX_ENGINE_SESSION_TTL" default:"24h"`
	MaxCSVBytes int64         `envconfig:"PRICEMATRIX_ENGINE_MAX_CSV_BYTES" default:"10485760"`
}

// RateLimitConfig throttles the ingest surface; uploads are the only
// expensive write path. Zero window or limits disable throttling.
type RateLimitConfig struct {
	IngestWindow       time.Duration `envconfig:"PRICEMATRIX_RATE_LIMIT_INGEST_WINDOW" default:"1m"`
	IngestIPLimit      int           `envconfig:"PRICEMATRIX_RATE_LIMIT_INGEST_IP_LIMIT" default:"30"`
	IngestSubjectLimit int           `envconfig:"PRICEMATRIX_RATE_LIMIT_INGEST_SUBJECT_LIMIT" default:"20"`
}

type FeatureFlagsConfig struct {
	AutoMigrate bool `envconfig:"PRICEMATRIX_AUTO_MIGRATE" default:"false"`
}

func (db *DBConfig) ensureDSN() error {
	if db.DSN != "" {
		return nil
	}
	if strings.EqualFold(db.Driver, DriverSQLite) {
		return fmt.Errorf("%s is required when %s=sqlite", EnvDBDSN, EnvDBDriver)
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
