package config

import (
	"fmt"
	"net"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	App           AppConfig
	DB            DBConfig
	Redis         RedisConfig
	JWT           JWTConfig
	Password      PasswordConfig
	AuthRateLimit AuthRateLimitConfig
	Idempotency   IdempotencyConfig
	FeatureFlags  FeatureFlagsConfig
	CORS          CORSConfig
	Company       CompanyConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if cfg.FeatureFlags.UseSQLite {
		return &cfg, nil
	}
	if err := cfg.DB.resolveDSN(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// LoadPassword reads only the argon2id parameters, for tools that hash
// passwords without a database.
func LoadPassword() (PasswordConfig, error) {
	var cfg PasswordConfig
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return cfg, fmt.Errorf("parsing password config: %w", err)
	}
	return cfg, nil
}

type AppConfig struct {
	Env          string `envconfig:"MEDSUPPLY_APP_ENV" required:"true"`
	Port         string `envconfig:"MEDSUPPLY_APP_PORT" default:"3000"`
	LogLevel     string `envconfig:"MEDSUPPLY_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"MEDSUPPLY_LOG_WARN_STACK" default:"false"`
	LogFormat    string `envconfig:"MEDSUPPLY_LOG_FORMAT" default:"json"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev) || strings.EqualFold(a.Env, "development")
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd) || strings.EqualFold(a.Env, "production")
}

type DBConfig struct {
	DSN    string `envconfig:"MEDSUPPLY_DB_DSN"`
	Driver string `envconfig:"MEDSUPPLY_DB_DRIVER" default:"postgres"`

	// Used to assemble DSN when it is empty.
	Host     string `envconfig:"MEDSUPPLY_DB_HOST"`
	Port     int    `envconfig:"MEDSUPPLY_DB_PORT" default:"5432"`
	User     string `envconfig:"MEDSUPPLY_DB_USER"`
	Password string `envconfig:"MEDSUPPLY_DB_PASSWORD"`
	Name     string `envconfig:"MEDSUPPLY_DB_NAME"`
	SSLMode  string `envconfig:"MEDSUPPLY_DB_SSLMODE" default:"disable"`

	SQLitePath string `envconfig:"MEDSUPPLY_SQLITE_PATH" default:"medsupply.db"`

	MaxOpenConns    int           `envconfig:"MEDSUPPLY_DB_MAX_OPEN_CONNS" default:"10"`
	MaxIdleConns    int           `envconfig:"MEDSUPPLY_DB_MAX_IDLE_CONNS" default:"5"`
	ConnMaxLifetime time.Duration `envconfig:"MEDSUPPLY_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"MEDSUPPLY_DB_CONN_MAX_IDLE_TIME" default:"10m"`

	SlowQueryThreshold time.Duration `envconfig:"MEDSUPPLY_DB_SLOW_QUERY_THRESHOLD" default:"500ms"`
}

// RedisConfig is optional: an empty URL and address disables the limiter and
// idempotency stores.
type RedisConfig struct {
	URL          string        `envconfig:"MEDSUPPLY_REDIS_URL"`
	Address      string        `envconfig:"MEDSUPPLY_REDIS_ADDR"`
	Password     string        `envconfig:"MEDSUPPLY_REDIS_PASSWORD"`
	DB           int           `envconfig:"MEDSUPPLY_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"MEDSUPPLY_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"MEDSUPPLY_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"MEDSUPPLY_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"MEDSUPPLY_REDIS_READ_TIMEOUT" default:"3s"`
	WriteTimeout time.Duration `envconfig:"MEDSUPPLY_REDIS_WRITE_TIMEOUT" default:"3s"`
}

func (r RedisConfig) Enabled() bool {
	return strings.TrimSpace(r.URL) != "" || strings.TrimSpace(r.Address) != ""
}

type JWTConfig struct {
	Secret            string `envconfig:"MEDSUPPLY_JWT_SECRET" required:"true"`
	Issuer            string `envconfig:"MEDSUPPLY_JWT_ISSUER" default:"medsupply-api"`
	ExpirationMinutes int    `envconfig:"MEDSUPPLY_JWT_EXPIRATION_MINUTES" default:"1440"`
}

func (j JWTConfig) Expiration() time.Duration {
	if j.ExpirationMinutes <= 0 {
		return 24 * time.Hour
	}
	return time.Duration(j.ExpirationMinutes) * time.Minute
}

type PasswordConfig struct {
	ArgonMemoryKB    int `envconfig:"MEDSUPPLY_ARGON_MEMORY_KB" default:"65536"`
	ArgonTime        int `envconfig:"MEDSUPPLY_ARGON_TIME" default:"3"`
	ArgonParallelism int `envconfig:"MEDSUPPLY_ARGON_PARALLELISM" default:"2"`
	ArgonSaltLen     int `envconfig:"MEDSUPPLY_ARGON_SALT_LEN" default:"16"`
	ArgonKeyLen      int `envconfig:"MEDSUPPLY_ARGON_KEY_LEN" default:"32"`
}

type AuthRateLimitConfig struct {
	LoginWindow        time.Duration `envconfig:"MEDSUPPLY_AUTH_RATE_LIMIT_LOGIN_WINDOW" default:"1m"`
	LoginUsernameLimit int           `envconfig:"MEDSUPPLY_AUTH_RATE_LIMIT_LOGIN_USERNAME_LIMIT" default:"5"`
	LoginIPLimit       int           `envconfig:"MEDSUPPLY_AUTH_RATE_LIMIT_LOGIN_IP_LIMIT" default:"20"`
}

type IdempotencyConfig struct {
	TTL time.Duration `envconfig:"MEDSUPPLY_IDEMPOTENCY_TTL" default:"24h"`
}

type FeatureFlagsConfig struct {
	UseSQLite   bool `envconfig:"MEDSUPPLY_USE_SQLITE" default:"false"`
	AutoMigrate bool `envconfig:"MEDSUPPLY_AUTO_MIGRATE" default:"false"`
}

type CORSConfig struct {
	AllowedOrigins []string `envconfig:"MEDSUPPLY_CORS_ALLOWED_ORIGINS" default:"*"`
}

// CompanyConfig is printed in the header of quotation documents.
type CompanyConfig struct {
	Name    string `envconfig:"MEDSUPPLY_COMPANY_NAME" default:"Insumos Medicos"`
	RUT     string `envconfig:"MEDSUPPLY_COMPANY_RUT"`
	Address string `envconfig:"MEDSUPPLY_COMPANY_ADDRESS"`
	Phone   string `envconfig:"MEDSUPPLY_COMPANY_PHONE"`
	Email   string `envconfig:"MEDSUPPLY_COMPANY_EMAIL"`
}

// resolveDSN fills DSN from the discrete connection settings. An explicit
// DSN always wins.
func (db *DBConfig) resolveDSN() error {
	if db.DSN != "" {
		return nil
	}

	parts := map[string]string{EnvDBHost: db.Host, EnvDBUser: db.User, EnvDBName: db.Name}
	var missing []string
	for _, env := range dsnPartEnvVars {
		if parts[env] == "" {
			missing = append(missing, env)
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("%s is not set and neither is %s", EnvDBDSN, strings.Join(missing, ", "))
	}

	user := url.User(db.User)
	if db.Password != "" {
		user = url.UserPassword(db.User, db.Password)
	}
	dsn := url.URL{
		Scheme: "postgres",
		User:   user,
		Host:   net.JoinHostPort(db.Host, strconv.Itoa(db.Port)),
		Path:   db.Name,
	}
	if db.SSLMode != "" {
		dsn.RawQuery = url.Values{"sslmode": {db.SSLMode}}.Encode()
	}
	db.DSN = dsn.String()
	return nil
}
