package config

// EnvPrefix is the envconfig prefix shared by all configuration structs.
const EnvPrefix = "giftly"

const (
	AppEnvDev  = "development"
	AppEnvProd = "production"
)

// Supported database drivers.
const (
	DBDriverPostgres = "postgres"
	DBDriverSQLite   = "sqlite"
)

// Environment variable names referenced outside struct tags.
const (
	EnvAppEnv                 = "GIFTLY_APP_ENV"
	EnvPort                   = "GIFTLY_APP_PORT"
	EnvDBDSN                  = "GIFTLY_DB_DSN"
	EnvDBHost                 = "GIFTLY_DB_HOST"
	EnvDBUser                 = "GIFTLY_DB_USER"
	EnvDBName                 = "GIFTLY_DB_NAME"
	EnvRedisURL               = "GIFTLY_REDIS_URL"
	EnvJWTSecret              = "GIFTLY_JWT_SECRET"
	EnvJWTIssuer              = "GIFTLY_JWT_ISSUER"
	EnvJWTExpMins             = "GIFTLY_JWT_EXPIRATION_MINUTES"
	EnvRefreshTokenTTLMinutes = "GIFTLY_REFRESH_TOKEN_TTL_MINUTES"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}
