package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/mitchellh/mapstructure"
	"github.com/spf13/viper"
)

const (
	SessionDriverMemory   = "memory"
	SessionDriverRedis    = "redis"
	SessionDriverPostgres = "postgres"
)

type HTTPConfig struct {
	Host         string
	Port         int
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration
}

type GatewayConfig struct {
	BaseURL      string
	ImageBaseURL string
	Timeout      time.Duration
}

type SessionConfig struct {
	Driver       string
	TTL          time.Duration
	CookieName   string
	CookieSecret string
	SecureCookie bool
	FlashTTL     time.Duration
}

type PostgresConfig struct {
	DSN             string
	MaxOpen         int
	MaxIdle         int
	ConnMaxLifetime time.Duration
}

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

type StorageConfig struct {
	Enabled       bool
	Endpoint      string
	AccessKey     string
	SecretKey     string
	BucketAvatars string
	UseSSL        bool
	Region        string
	PresignTTL    time.Duration
}

type SecurityConfig struct {
	CSRFSecret     string
	MaxAvatarBytes int64
}

type PaymentConfig struct {
	Currency      string
	MinAmount     int
	PresetAmounts []int
	MerchantName  string
}

type JobsConfig struct {
	ProbeSchedule string
	SweepSchedule string
}

type LogConfig struct {
	Level string
}

type AppConfig struct {
	Environment      string
	HTTP             HTTPConfig
	Gateway          GatewayConfig
	Session          SessionConfig
	Postgres         PostgresConfig
	Redis            RedisConfig
	Storage          StorageConfig
	Security         SecurityConfig
	Payment          PaymentConfig
	Jobs             JobsConfig
	Log              LogConfig
	AllowCORSOrigins []string
}

func Load() (*AppConfig, error) {
	// .env is optional; real deployments pass the environment directly.
	_ = godotenv.Load()

	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	v.AddConfigPath("../config")

	v.SetEnvPrefix("PORTAL")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("load config file: %w", err)
		}
	}

	cfg, err := decode(v)
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func decode(v *viper.Viper) (*AppConfig, error) {
	var cfg AppConfig
	if err := v.Unmarshal(&cfg, func(dc *mapstructure.DecoderConfig) {
		dc.TagName = "mapstructure"
		dc.WeaklyTypedInput = true
		dc.DecodeHook = mapstructure.ComposeDecodeHookFunc(
			mapstructure.StringToTimeDurationHookFunc(),
			mapstructure.StringToSliceHookFunc(","),
		)
	}); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	return &cfg, nil
}

func (c *AppConfig) Validate() error {
	switch c.Session.Driver {
	case SessionDriverMemory, SessionDriverRedis, SessionDriverPostgres:
	default:
		return fmt.Errorf("unknown session driver %q", c.Session.Driver)
	}
	if c.Session.Driver == SessionDriverPostgres && c.Postgres.DSN == "" {
		return errors.New("postgres.dsn is required for the postgres session driver")
	}
	if c.Gateway.BaseURL == "" {
		return errors.New("gateway.baseurl is required")
	}
	if c.Session.TTL <= 0 {
		return errors.New("session.ttl must be positive")
	}
	if c.Environment == "production" {
		if c.Session.CookieSecret == "" || c.Session.CookieSecret == devSecret {
			return errors.New("session.cookiesecret must be set in production")
		}
		if c.Security.CSRFSecret == "" || c.Security.CSRFSecret == devSecret {
			return errors.New("security.csrfsecret must be set in production")
		}
	}
	return nil
}

const devSecret = "dev-secret-change-me"

func setDefaults(v *viper.Viper) {
	v.SetDefault("environment", "development")

	v.SetDefault("http.host", "0.0.0.0")
	v.SetDefault("http.port", 3000)
	v.SetDefault("http.readtimeout", "10s")
	v.SetDefault("http.writetimeout", "15s")
	v.SetDefault("http.idletimeout", "60s")

	v.SetDefault("gateway.baseurl", "http://localhost:5000/api/")
	v.SetDefault("gateway.imagebaseurl", "http://localhost:5000/")
	v.SetDefault("gateway.timeout", "15s")

	v.SetDefault("session.driver", SessionDriverMemory)
	v.SetDefault("session.ttl", "1h")
	v.SetDefault("session.cookiename", "scholarhub_sid")
	v.SetDefault("session.cookiesecret", devSecret)
	v.SetDefault("session.securecookie", false)
	v.SetDefault("session.flashttl", "10m")

	v.SetDefault("postgres.maxopen", 10)
	v.SetDefault("postgres.maxidle", 2)
	v.SetDefault("postgres.connmaxlifetime", "30m")

	v.SetDefault("redis.addr", "127.0.0.1:6379")
	v.SetDefault("redis.db", 0)

	v.SetDefault("storage.enabled", false)
	v.SetDefault("storage.bucketavatars", "scholarhub-avatars")
	v.SetDefault("storage.usessl", false)
	v.SetDefault("storage.region", "us-east-1")
	v.SetDefault("storage.presignttl", "15m")

	v.SetDefault("security.csrfsecret", devSecret)
	v.SetDefault("security.maxavatarbytes", 2<<20)

	v.SetDefault("payment.currency", "INR")
	v.SetDefault("payment.minamount", 100)
	v.SetDefault("payment.presetamounts", "500,1000,2500,5000,10000")
	v.SetDefault("payment.merchantname", "Ankur Vidyarthi Foundation")

	v.SetDefault("jobs.probeschedule", "*/30 * * * * *")
	v.SetDefault("jobs.sweepschedule", "0 */5 * * * *")

	v.SetDefault("log.level", "info")
}
