package config

// Environment variable names used by tests and tooling.
const (
	EnvAppEnv     = "YOUSCORE_APP_ENV"
	EnvPort       = "YOUSCORE_APP_PORT"
	EnvDBDSN      = "YOUSCORE_DB_DSN"
	EnvRedisURL   = "YOUSCORE_REDIS_URL"
	EnvJWTSecret  = "YOUSCORE_JWT_SECRET"
	EnvJWTIssuer  = "YOUSCORE_JWT_ISSUER"
	EnvJWTExpMins = "YOUSCORE_JWT_EXPIRATION_MINUTES"
)
