package config

// EnvPrefix namespaces every environment variable the service reads.
const EnvPrefix = "pricematrix"

const (
	AppEnvDev  = "dev"
	AppEnvProd = "production"
)

// Supported PRICEMATRIX_DB_DRIVER values.
const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

const (
	EnvAppEnv   = "PRICEMATRIX_APP_ENV"
	EnvPort     = "PRICEMATRIX_APP_PORT"
	EnvLogLevel = "PRICEMATRIX_LOG_LEVEL"

	EnvDBDSN    = "PRICEMATRIX_DB_DSN"
	EnvDBDriver = "PRICEMATRIX_DB_DRIVER"
	EnvDBHost   = "PRICEMATRIX_DB_HOST"
	EnvDBUser   = "PRICEMATRIX_DB_USER"
	EnvDBName   = "PRICEMATRIX_DB_NAME"

	EnvRedisURL = "PRICEMATRIX_REDIS_URL"

	EnvJWTSecret  = "PRICEMATRIX_JWT_SECRET"
	EnvJWTIssuer  = "PRICEMATRIX_JWT_ISSUER"
	EnvJWTExpMins = "PRICEMATRIX_JWT_EXPIRATION_MINUTES"
)

// legacyDBEnvVars are the discrete connection vars accepted when a DSN is absent.
var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}
