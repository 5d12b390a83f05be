package config

const EnvPrefix = "MEDSUPPLY"

const (
	AppEnvDev  = "dev"
	AppEnvProd = "prod"
)

const (
	EnvAppEnv    = "MEDSUPPLY_APP_ENV"
	EnvPort      = "MEDSUPPLY_APP_PORT"
	EnvLogLevel  = "MEDSUPPLY_LOG_LEVEL"
	EnvDBDSN     = "MEDSUPPLY_DB_DSN"
	EnvDBHost    = "MEDSUPPLY_DB_HOST"
	EnvDBPort    = "MEDSUPPLY_DB_PORT"
	EnvDBUser    = "MEDSUPPLY_DB_USER"
	EnvDBPass    = "MEDSUPPLY_DB_PASSWORD"
	EnvDBName    = "MEDSUPPLY_DB_NAME"
	EnvUseSQLite = "MEDSUPPLY_USE_SQLITE"
	EnvRedisURL  = "MEDSUPPLY_REDIS_URL"
	EnvJWTSecret = "MEDSUPPLY_JWT_SECRET"
	EnvJWTIssuer = "MEDSUPPLY_JWT_ISSUER"
	EnvJWTExpMin = "MEDSUPPLY_JWT_EXPIRATION_MINUTES"
	EnvCORS      = "MEDSUPPLY_CORS_ALLOWED_ORIGINS"
)

// Required when MEDSUPPLY_DB_DSN is empty.
var dsnPartEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}
