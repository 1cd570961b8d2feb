package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	App          AppConfig
	Service      ServiceConfig
	DB           DBConfig
	Redis        RedisConfig
	Scheduler    SchedulerConfig
	Verification VerificationConfig
	Ops          OpsConfig
	FeatureFlags FeatureFlagsConfig
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
	Env          string `envconfig:"SMS_APP_ENV" required:"true"`
	LogLevel     string `envconfig:"SMS_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"SMS_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

// CronLockKey derives the per-environment Redis lock namespace shared by the
// cron worker and the manual trigger CLI.
func (a AppConfig) CronLockKey() string {
	env := a.Env
	if env == "" {
		env = "local"
	}
	return fmt.Sprintf("sms:cron-worker:lock:%s", env)
}

type ServiceConfig struct {
	Kind string `envconfig:"SMS_SERVICE_KIND" default:"cron-worker"`
}

type DBConfig struct {
	DSN    string `envconfig:"SMS_DB_DSN"`
	Driver string `envconfig:"SMS_DB_DRIVER" default:"postgres"`

	LegacyHost     string `envconfig:"SMS_DB_HOST"`
	LegacyPort     int    `envconfig:"SMS_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"SMS_DB_USER"`
	LegacyPassword string `envconfig:"SMS_DB_PASSWORD"`
	LegacyName     string `envconfig:"SMS_DB_NAME"`
	LegacySSLMode  string `envconfig:"SMS_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"SMS_DB_MAX_OPEN_CONNS" default:"10"`
	MaxIdleConns    int           `envconfig:"SMS_DB_MAX_IDLE_CONNS" default:"5"`
	ConnMaxLifetime time.Duration `envconfig:"SMS_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"SMS_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

type RedisConfig struct {
	URL          string        `envconfig:"SMS_REDIS_URL" required:"true"`
	Address      string        `envconfig:"SMS_REDIS_ADDR"`
	Password     string        `envconfig:"SMS_REDIS_PASSWORD"`
	DB           int           `envconfig:"SMS_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"SMS_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"SMS_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"SMS_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"SMS_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"SMS_REDIS_WRITE_TIMEOUT" default:"5s"`
}

// SchedulerConfig carries the wall-clock firing times for the two daily jobs.
// Times are explicit hour/minute pairs rather than cron strings so the timer
// implementation stays swappable.
type SchedulerConfig struct {
	Timezone           string        `envconfig:"SMS_SCHEDULER_TIMEZONE" default:"UTC"`
	NotificationHour   int           `envconfig:"SMS_SCHEDULER_NOTIFICATION_HOUR" default:"8"`
	NotificationMinute int           `envconfig:"SMS_SCHEDULER_NOTIFICATION_MINUTE" default:"0"`
	DegradationHour    int           `envconfig:"SMS_SCHEDULER_DEGRADATION_HOUR" default:"2"`
	DegradationMinute  int           `envconfig:"SMS_SCHEDULER_DEGRADATION_MINUTE" default:"0"`
	JobTimeout         time.Duration `envconfig:"SMS_SCHEDULER_JOB_TIMEOUT" default:"10m"`
}

// Location resolves the configured timezone.
func (s SchedulerConfig) Location() (*time.Location, error) {
	if s.Timezone == "" {
		return time.UTC, nil
	}
	loc, err := time.LoadLocation(s.Timezone)
	if err != nil {
		return nil, fmt.Errorf("parsing scheduler timezone: %w", err)
	}
	return loc, nil
}

type VerificationConfig struct {
	LookaheadDays          int `envconfig:"SMS_VERIFICATION_LOOKAHEAD_DAYS" default:"30"`
	CriticalOverdueDays    int `envconfig:"SMS_VERIFICATION_CRITICAL_OVERDUE_DAYS" default:"30"`
	DefaultDegradationRate int `envconfig:"SMS_VERIFICATION_DEFAULT_DEGRADATION_RATE" default:"5"`
	DefaultIntervalDays    int `envconfig:"SMS_VERIFICATION_DEFAULT_INTERVAL_DAYS" default:"90"`
}

type OpsConfig struct {
	Port string `envconfig:"SMS_OPS_PORT" default:"9090"`
}

type FeatureFlagsConfig struct {
	AutoMigrate bool `envconfig:"SMS_AUTO_MIGRATE" default:"false"`
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
