package config

const (
	// EnvPrefix is the envconfig prefix shared by every setting.
	EnvPrefix = "GARDENAQUA"

	AppEnvDev  = "dev"
	AppEnvProd = "prod"

	EnvDBDSN  = "GARDENAQUA_DB_DSN"
	EnvDBHost = "GARDENAQUA_DB_HOST"
	EnvDBUser = "GARDENAQUA_DB_USER"
	EnvDBName = "GARDENAQUA_DB_NAME"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}
