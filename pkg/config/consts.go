package config

// EnvPrefix scopes every environment variable read by envconfig.
const EnvPrefix = "MERCHPORTAL"

const (
	AppEnvDev  = "dev"
	AppEnvProd = "prod"
)

const (
	EnvDBDSN  = "MERCHPORTAL_DB_DSN"
	EnvDBHost = "MERCHPORTAL_DB_HOST"
	EnvDBUser = "MERCHPORTAL_DB_USER"
	EnvDBName = "MERCHPORTAL_DB_NAME"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}
