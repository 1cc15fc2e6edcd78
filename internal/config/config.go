package config

import "time"

// Config holds runtime configuration for the SOAP directory service.
type Config struct {
	Environment        string
	Addr               string
	DatabaseURL        string
	MigrationsDir      string
	UserContractPath   string
	PostContractPath   string
	DispatchTimeout    time.Duration
	RateLimitRedisAddr string
	RateLimitRedisPass string
	RateLimitRedisDB   int
}

// Load constructs a Config from environment variables.
func Load() Config {
	return Config{
		Environment:        GetString("APP_ENV", "development"),
		Addr:               GetString("API_ADDR", ":8000"),
		DatabaseURL:        GetString("DATABASE_URL", "postgres://soapdir:soapdir@db:5432/soapdir?sslmode=disable"),
		MigrationsDir:      GetString("DB_MIGRATIONS_DIR", "db/migrations"),
		UserContractPath:   GetString("USER_WSDL_PATH", "api/contracts/user-service.wsdl"),
		PostContractPath:   GetString("POST_WSDL_PATH", "api/contracts/post-service.wsdl"),
		DispatchTimeout:    time.Duration(GetInt("DISPATCH_TIMEOUT_SECONDS", 15)) * time.Second,
		RateLimitRedisAddr: GetString("RATE_LIMIT_REDIS_ADDR", ""),
		RateLimitRedisPass: GetString("RATE_LIMIT_REDIS_PASSWORD", ""),
		RateLimitRedisDB:   GetInt("RATE_LIMIT_REDIS_DB", 0),
	}
}
