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
	GCP           GCPConfig
	PubSub        PubSubConfig
	Outbox        OutboxConfig
	Cron          CronConfig
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
	Env          string `envconfig:"MERCHPORTAL_APP_ENV" required:"true"`
	Port         string `envconfig:"MERCHPORTAL_APP_PORT" required:"true"`
	LogLevel     string `envconfig:"MERCHPORTAL_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"MERCHPORTAL_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type ServiceConfig struct {
	Kind string `envconfig:"MERCHPORTAL_SERVICE_KIND" default:"api"`
}

type DBConfig struct {
	DSN    string `envconfig:"MERCHPORTAL_DB_DSN"`
	Driver string `envconfig:"MERCHPORTAL_DB_DRIVER" default:"postgres"`

	LegacyHost     string `envconfig:"MERCHPORTAL_DB_HOST"`
	LegacyPort     int    `envconfig:"MERCHPORTAL_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"MERCHPORTAL_DB_USER"`
	LegacyPassword string `envconfig:"MERCHPORTAL_DB_PASSWORD"`
	LegacyName     string `envconfig:"MERCHPORTAL_DB_NAME"`
	LegacySSLMode  string `envconfig:"MERCHPORTAL_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"MERCHPORTAL_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"MERCHPORTAL_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"MERCHPORTAL_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"MERCHPORTAL_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

type RedisConfig struct {
	URL          string        `envconfig:"MERCHPORTAL_REDIS_URL" required:"true"`
	Address      string        `envconfig:"MERCHPORTAL_REDIS_ADDR"`
	Password     string        `envconfig:"MERCHPORTAL_REDIS_PASSWORD"`
	DB           int           `envconfig:"MERCHPORTAL_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"MERCHPORTAL_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"MERCHPORTAL_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"MERCHPORTAL_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"MERCHPORTAL_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"MERCHPORTAL_REDIS_WRITE_TIMEOUT" default:"5s"`
}

type JWTConfig struct {
	Secret                 string `envconfig:"MERCHPORTAL_JWT_SECRET" required:"true"`
	Issuer                 string `envconfig:"MERCHPORTAL_JWT_ISSUER" required:"true"`
	ExpirationMinutes      int    `envconfig:"MERCHPORTAL_JWT_EXPIRATION_MINUTES" required:"true"`
	RefreshTokenTTLMinutes int    `envconfig:"MERCHPORTAL_REFRESH_TOKEN_TTL_MINUTES" default:"43200"`
}

// RefreshTokenTTL returns the refresh token TTL configured in minutes.
func (j JWTConfig) RefreshTokenTTL() time.Duration {
	if j.RefreshTokenTTLMinutes <= 0 {
		return 0
	}
	return time.Duration(j.RefreshTokenTTLMinutes) * time.Minute
}

type PasswordConfig struct {
	ArgonMemoryKB    int `envconfig:"MERCHPORTAL_ARGON_MEMORY_KB" default:"65536"`
	ArgonTime        int `envconfig:"MERCHPORTAL_ARGON_TIME" default:"3"`
	ArgonParallelism int `envconfig:"MERCHPORTAL_ARGON_PARALLELISM" default:"2"`
	ArgonSaltLen     int `envconfig:"MERCHPORTAL_ARGON_SALT_LEN" default:"16"`
	ArgonKeyLen      int `envconfig:"MERCHPORTAL_ARGON_KEY_LEN" default:"32"`
}

type AuthRateLimitConfig struct {
	LoginWindow        time.Duration `envconfig:"MERCHPORTAL_AUTH_RATE_LIMIT_LOGIN_WINDOW" default:"1m"`
	LoginEmailLimit    int           `envconfig:"MERCHPORTAL_AUTH_RATE_LIMIT_LOGIN_EMAIL_LIMIT" default:"5"`
	LoginIPLimit       int           `envconfig:"MERCHPORTAL_AUTH_RATE_LIMIT_LOGIN_IP_LIMIT" default:"20"`
	RegisterWindow     time.Duration `envconfig:"MERCHPORTAL_AUTH_RATE_LIMIT_REGISTER_WINDOW" default:"5m"`
	RegisterEmailLimit int           `envconfig:"MERCHPORTAL_AUTH_RATE_LIMIT_REGISTER_EMAIL_LIMIT" default:"3"`
	RegisterIPLimit    int           `envconfig:"MERCHPORTAL_AUTH_RATE_LIMIT_REGISTER_IP_LIMIT" default:"20"`
}

type FeatureFlagsConfig struct {
	UseSQLite   bool `envconfig:"MERCHPORTAL_USE_SQLITE" default:"false"`
	AutoMigrate bool `envconfig:"MERCHPORTAL_AUTO_MIGRATE" default:"false"`
}

type GCPConfig struct {
	ProjectID              string `envconfig:"MERCHPORTAL_GCP_PROJECT_ID"`
	CredentialsJSON        string `envconfig:"MERCHPORTAL_GCP_CREDENTIALS_JSON"`
	ApplicationCredentials string `envconfig:"MERCHPORTAL_GOOGLE_APPLICATION_CREDENTIALS"`
}

type PubSubConfig struct {
	OrdersTopic               string `envconfig:"MERCHPORTAL_PUBSUB_ORDERS_TOPIC" default:"mp-order-events"`
	OrdersSubscription        string `envconfig:"MERCHPORTAL_PUBSUB_ORDERS_SUBSCRIPTION"`
	NotificationsTopic        string `envconfig:"MERCHPORTAL_PUBSUB_NOTIFICATIONS_TOPIC" default:"mp-notification-events"`
	NotificationsSubscription string `envconfig:"MERCHPORTAL_PUBSUB_NOTIFICATIONS_SUBSCRIPTION"`
}

type OutboxConfig struct {
	BatchSize      int `envconfig:"MERCHPORTAL_OUTBOX_PUBLISH_BATCH_SIZE" default:"50"`
	PollIntervalMS int `envconfig:"MERCHPORTAL_OUTBOX_PUBLISH_POLL_MS" default:"500"`
	MaxAttempts    int `envconfig:"MERCHPORTAL_OUTBOX_MAX_ATTEMPTS" default:"10"`
}

type CronConfig struct {
	Interval           time.Duration `envconfig:"MERCHPORTAL_CRON_INTERVAL" default:"24h"`
	PendingOrderTTLDay int           `envconfig:"MERCHPORTAL_CRON_PENDING_ORDER_TTL_DAYS" default:"14"`
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
