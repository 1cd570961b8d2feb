package config

// EnvPrefix namespaces every configuration variable.
const EnvPrefix = "SMS"

const (
	AppEnvDev  = "dev"
	AppEnvProd = "prod"
)

const (
	EnvAppEnv   = "SMS_APP_ENV"
	EnvDBDSN    = "SMS_DB_DSN"
	EnvDBHost   = "SMS_DB_HOST"
	EnvDBUser   = "SMS_DB_USER"
	EnvDBName   = "SMS_DB_NAME"
	EnvRedisURL = "SMS_REDIS_URL"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}
