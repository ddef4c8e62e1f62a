package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	App           AppConfig
	Service       ServiceConfig
	DB            DBConfig
	Redis         RedisConfig
	JWT           JWTConfig
	Password      PasswordConfig
	AuthRateLimit AuthRateLimitConfig
	FeatureFlags  FeatureFlagsConfig
	Orders        OrdersConfig
	Cron          CronConfig
	GCP           GCPConfig
	PubSub        PubSubConfig
	Outbox        OutboxConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.DB.ensureDSN(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

type AppConfig struct {
	Env          string `envconfig:"BREWLINE_APP_ENV" required:"true"`
	Port         string `envconfig:"BREWLINE_APP_PORT" required:"true"`
	LogLevel     string `envconfig:"BREWLINE_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"BREWLINE_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type ServiceConfig struct {
	Kind string `envconfig:"BREWLINE_SERVICE_KIND" default:"api"`
}

type DBConfig struct {
	DSN    string `envconfig:"BREWLINE_DB_DSN"`
	Driver string `envconfig:"BREWLINE_DB_DRIVER" default:"postgres"`

	LegacyHost     string `envconfig:"BREWLINE_DB_HOST"`
	LegacyPort     int    `envconfig:"BREWLINE_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"BREWLINE_DB_USER"`
	LegacyPassword string `envconfig:"BREWLINE_DB_PASSWORD"`
	LegacyName     string `envconfig:"BREWLINE_DB_NAME"`
	LegacySSLMode  string `envconfig:"BREWLINE_DB_SSLMODE" default:"disable"`

	MaxOpenConns     int           `envconfig:"BREWLINE_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns     int           `envconfig:"BREWLINE_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime  time.Duration `envconfig:"BREWLINE_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime  time.Duration `envconfig:"BREWLINE_DB_CONN_MAX_IDLE_TIME" default:"10m"`
	StatementTimeout time.Duration `envconfig:"BREWLINE_DB_STATEMENT_TIMEOUT" default:"5s"`
}

type RedisConfig struct {
	URL          string        `envconfig:"BREWLINE_REDIS_URL" required:"true"`
	Address      string        `envconfig:"BREWLINE_REDIS_ADDR"`
	Password     string        `envconfig:"BREWLINE_REDIS_PASSWORD"`
	DB           int           `envconfig:"BREWLINE_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"BREWLINE_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"BREWLINE_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"BREWLINE_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"BREWLINE_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"BREWLINE_REDIS_WRITE_TIMEOUT" default:"5s"`
}

type JWTConfig struct {
	Secret                 string `envconfig:"BREWLINE_JWT_SECRET" required:"true"`
	Issuer                 string `envconfig:"BREWLINE_JWT_ISSUER" required:"true"`
	ExpirationMinutes      int    `envconfig:"BREWLINE_JWT_EXPIRATION_MINUTES" required:"true"`
	RefreshTokenTTLMinutes int    `envconfig:"BREWLINE_REFRESH_TOKEN_TTL_MINUTES" default:"43200"`
}

// RefreshTokenTTL returns the refresh token TTL configured in minutes.
func (j JWTConfig) RefreshTokenTTL() time.Duration {
	if j.RefreshTokenTTLMinutes <= 0 {
		return 0
	}
	return time.Duration(j.RefreshTokenTTLMinutes) * time.Minute
}

type PasswordConfig struct {
	ArgonMemoryKB    int `envconfig:"BREWLINE_ARGON_MEMORY_KB" default:"65536"`
	ArgonTime        int `envconfig:"BREWLINE_ARGON_TIME" default:"3"`
	ArgonParallelism int `envconfig:"BREWLINE_ARGON_PARALLELISM" default:"2"`
	ArgonSaltLen     int `envconfig:"BREWLINE_ARGON_SALT_LEN" default:"16"`
	ArgonKeyLen      int `envconfig:"BREWLINE_ARGON_KEY_LEN" default:"32"`
}

type AuthRateLimitConfig struct {
	LoginWindow     time.Duration `envconfig:"BREWLINE_AUTH_RATE_LIMIT_LOGIN_WINDOW" default:"1m"`
	LoginEmailLimit int           `envconfig:"BREWLINE_AUTH_RATE_LIMIT_LOGIN_EMAIL_LIMIT" default:"5"`
	LoginIPLimit    int           `envconfig:"BREWLINE_AUTH_RATE_LIMIT_LOGIN_IP_LIMIT" default:"20"`
}

type FeatureFlagsConfig struct {
	AutoMigrate bool `envconfig:"BREWLINE_AUTO_MIGRATE" default:"false"`
}

// OrdersConfig tunes the order lifecycle engine.
type OrdersConfig struct {
	// TransitionMaxRetries bounds how often a transition is retried after a
	// storage serialization conflict before surfacing CONFLICT.
	TransitionMaxRetries int `envconfig:"BREWLINE_ORDER_TRANSITION_MAX_RETRIES" default:"3"`
	// StaleCreatedTTL is how long an order may sit in CREATED before the
	// cron worker expires it.
	StaleCreatedTTL time.Duration `envconfig:"BREWLINE_ORDER_STALE_CREATED_TTL" default:"4h"`
}

// CronConfig tunes the scheduled worker.
type CronConfig struct {
	Interval        time.Duration `envconfig:"BREWLINE_CRON_INTERVAL" default:"15m"`
	LockTTL         time.Duration `envconfig:"BREWLINE_CRON_LOCK_TTL" default:"14m"`
	ExpiryBatchSize int           `envconfig:"BREWLINE_CRON_EXPIRY_BATCH_SIZE" default:"200"`
}

type GCPConfig struct {
	ProjectID              string `envconfig:"BREWLINE_GCP_PROJECT_ID"`
	CredentialsJSON        string `envconfig:"BREWLINE_GCP_CREDENTIALS_JSON"`
	ApplicationCredentials string `envconfig:"BREWLINE_GOOGLE_APPLICATION_CREDENTIALS"`
}

type PubSubConfig struct {
	OrdersTopic        string `envconfig:"BREWLINE_PUBSUB_ORDERS_TOPIC" default:"bl-order-events"`
	OrdersSubscription string `envconfig:"BREWLINE_PUBSUB_ORDERS_SUBSCRIPTION"`
}

type OutboxConfig struct {
	BatchSize      int `envconfig:"BREWLINE_OUTBOX_PUBLISH_BATCH_SIZE" default:"50"`
	PollIntervalMS int `envconfig:"BREWLINE_OUTBOX_PUBLISH_POLL_MS" default:"500"`
	MaxAttempts    int `envconfig:"BREWLINE_OUTBOX_MAX_ATTEMPTS" default:"10"`
}

func (db *DBConfig) ensureDSN() error {
	if db.DSN != "" {
		return nil
	}

	missing := []string{}
	legacyValues := map[string]string{
		EnvDBHost: db.LegacyHost,
		EnvDBUser: db.LegacyUser,
		EnvDBName: db.LegacyName,
	}
	for _, env := range legacyDBEnvVars {
		if legacyValues[env] == "" {
			missing = append(missing, env)
		}
	}

	if len(missing) > 0 {
		return fmt.Errorf("either %s or %s are required", EnvDBDSN, strings.Join(missing, ", "))
	}

	userInfo := url.User(db.LegacyUser)
	if db.LegacyPassword != "" {
		userInfo = url.UserPassword(db.LegacyUser, db.LegacyPassword)
	}

	u := &url.URL{
		Scheme: "postgres",
		User:   userInfo,
		Host:   fmt.Sprintf("%s:%d", db.LegacyHost, db.LegacyPort),
		Path:   db.LegacyName,
	}

	if db.LegacySSLMode != "" {
		q := u.Query()
		q.Set("sslmode", db.LegacySSLMode)
		u.RawQuery = q.Encode()
	}

	db.DSN = u.String()
	return nil
}
