package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

const (
	EnvPrefix = ""

	AppEnvDev  = "dev"
	AppEnvProd = "prod"
)

type Config struct {
	App          AppConfig
	DB           DBConfig
	Redis        RedisConfig
	JWT          JWTConfig
	Password     PasswordConfig
	Access       AccessConfig
	Admin        AdminConfig
	AuthThrottle AuthThrottleConfig
	FeatureFlags FeatureFlagsConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	return &cfg, nil
}

type AppConfig struct {
	Env          string `envconfig:"YOUSCORE_APP_ENV" required:"true"`
	Port         string `envconfig:"YOUSCORE_APP_PORT" default:"8090"`
	LogLevel     string `envconfig:"YOUSCORE_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"YOUSCORE_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type DBConfig struct {
	DSN string `envconfig:"YOUSCORE_DB_DSN" required:"true"`

	MaxOpenConns    int           `envconfig:"YOUSCORE_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"YOUSCORE_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"YOUSCORE_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"YOUSCORE_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

type RedisConfig struct {
	URL          string        `envconfig:"YOUSCORE_REDIS_URL"`
	Address      string        `envconfig:"YOUSCORE_REDIS_ADDR"`
	Password     string        `envconfig:"YOUSCORE_REDIS_PASSWORD"`
	DB           int           `envconfig:"YOUSCORE_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"YOUSCORE_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"YOUSCORE_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"YOUSCORE_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"YOUSCORE_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"YOUSCORE_REDIS_WRITE_TIMEOUT" default:"5s"`
}

type JWTConfig struct {
	Secret                 string `envconfig:"YOUSCORE_JWT_SECRET" required:"true"`
	Issuer                 string `envconfig:"YOUSCORE_JWT_ISSUER" required:"true"`
	ExpirationMinutes      int    `envconfig:"YOUSCORE_JWT_EXPIRATION_MINUTES" default:"30"`
	RefreshTokenTTLMinutes int    `envconfig:"YOUSCORE_REFRESH_TOKEN_TTL_MINUTES" default:"43200"`
}

// RefreshTokenTTL returns the refresh token TTL configured in minutes.
func (j JWTConfig) RefreshTokenTTL() time.Duration {
	if j.RefreshTokenTTLMinutes <= 0 {
		return 0
	}
	return time.Duration(j.RefreshTokenTTLMinutes) * time.Minute
}

type PasswordConfig struct {
	ArgonMemoryKB    int `envconfig:"YOUSCORE_ARGON_MEMORY_KB" default:"65536"`
	ArgonTime        int `envconfig:"YOUSCORE_ARGON_TIME" default:"3"`
	ArgonParallelism int `envconfig:"YOUSCORE_ARGON_PARALLELISM" default:"2"`
	ArgonSaltLen     int `envconfig:"YOUSCORE_ARGON_SALT_LEN" default:"16"`
	ArgonKeyLen      int `envconfig:"YOUSCORE_ARGON_KEY_LEN" default:"32"`
}

// AccessConfig tunes the subscription gating behavior.
type AccessConfig struct {
	// DeviceLimit caps concurrent device records per user.
	DeviceLimit int `envconfig:"YOUSCORE_DEVICE_LIMIT" default:"2"`
	// ExpiryWarning is how far ahead of subscription expiry the
	// expiring-soon notification is synthesized.
	ExpiryWarning time.Duration `envconfig:"YOUSCORE_EXPIRY_WARNING" default:"72h"`
	// FreeAccessAnchor offsets the guarantee grant anchor from the grading moment.
	FreeAccessAnchor time.Duration `envconfig:"YOUSCORE_FREE_ACCESS_ANCHOR" default:"168h"`
}

type AdminConfig struct {
	Email     string `envconfig:"YOUSCORE_ADMIN_EMAIL" default:"admin@protips.com"`
	Password  string `envconfig:"YOUSCORE_ADMIN_PASSWORD" default:"admin123"`
	ForceSync bool   `envconfig:"YOUSCORE_FORCE_ADMIN_SYNC" default:"false"`
}

// AuthThrottleConfig limits login/register attempts per client IP.
// A zero window or limit disables the throttle.
type AuthThrottleConfig struct {
	Window        time.Duration `envconfig:"YOUSCORE_AUTH_THROTTLE_WINDOW" default:"1m"`
	LoginLimit    int           `envconfig:"YOUSCORE_AUTH_THROTTLE_LOGIN_LIMIT" default:"10"`
	RegisterLimit int           `envconfig:"YOUSCORE_AUTH_THROTTLE_REGISTER_LIMIT" default:"5"`
}

type FeatureFlagsConfig struct {
	AutoMigrate bool `envconfig:"YOUSCORE_AUTO_MIGRATE" default:"false"`
}
