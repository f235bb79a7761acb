package internal

const (
	ConfigFile    = "config.json"
	DotEnvPath    = "./.env"
	MigrationsDir = "migrations"
	APIKeyHeader  = "X-Composer-API-Key"
	YAMLMIMEType  = "application/yaml"
	// RenderFileExt names the files rendered from several definitions at once.
	RenderFileExt = ".gitlab-ci.yml"
	// DBTimestampLayout is how timestamps are written to the database, in UTC.
	DBTimestampLayout = "2006-01-02 15:04:05"
)
