package config

const (
	// EnvPrefix is the envconfig prefix shared by every Brewline variable.
	EnvPrefix = ""

	AppEnvDev  = "dev"
	AppEnvProd = "prod"

	EnvDBDSN  = "BREWLINE_DB_DSN"
	EnvDBHost = "BREWLINE_DB_HOST"
	EnvDBUser = "BREWLINE_DB_USER"
	EnvDBName = "BREWLINE_DB_NAME"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}
