package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const (
	ProviderDatabase = "database"
	ProviderGoTrue   = "gotrue"

	ChannelEmail = "email"
	ChannelSMS   = "sms"

	minSecretLength = 32
)

type AppConfig struct {
	Port            int    `yaml:"port"`
	GinMode         string `yaml:"gin_mode"`
	ReadTimeout     string `yaml:"read_timeout"`
	WriteTimeout    string `yaml:"write_timeout"`
	ShutdownTimeout string `yaml:"shutdown_timeout"`
}

type DatabaseConfig struct {
	MaxOpenConns    int    `yaml:"max_open_conns"`
	MaxIdleConns    int    `yaml:"max_idle_conns"`
	ConnMaxLifetime string `yaml:"conn_max_lifetime"`
	AutoMigrate     bool   `yaml:"auto_migrate"`
	LogQueries      bool   `yaml:"log_queries"`
}

type RedisConfig struct {
	Addr        string `yaml:"addr"`
	DB          int    `yaml:"db"`
	DialTimeout string `yaml:"dial_timeout"`
	ReadTimeout string `yaml:"read_timeout"`
}

type JWTConfig struct {
	Issuer     string `yaml:"issuer"`
	AccessTTL  string `yaml:"access_ttl"`
	PendingTTL string `yaml:"pending_ttl"`
}

type OTPConfig struct {
	TTL         string `yaml:"ttl"`
	Length      int    `yaml:"length"`
	MaxAttempts int    `yaml:"max_attempts"`
	Retention   string `yaml:"retention"`
	Channel     string `yaml:"channel"`
}

type AuthConfig struct {
	Provider     string `yaml:"provider"`
	RoleCacheTTL string `yaml:"role_cache_ttl"`
	ResetURL     string `yaml:"reset_url"`
	ResetTTL     string `yaml:"reset_ttl"`
	HTTPTimeout  string `yaml:"http_timeout"`
}

type SMTPConfig struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
	From string `yaml:"from"`
}

type AuditConfig struct {
	Queue        string `yaml:"queue"`
	WriteTimeout string `yaml:"write_timeout"`
}

type RateLimitConfig struct {
	PerSecond float64 `yaml:"per_second"`
	Burst     int     `yaml:"burst"`
}

type ConfigFile struct {
	App       AppConfig       `yaml:"app"`
	Database  DatabaseConfig  `yaml:"database"`
	Redis     RedisConfig     `yaml:"redis"`
	JWT       JWTConfig       `yaml:"jwt"`
	OTP       OTPConfig       `yaml:"otp"`
	Auth      AuthConfig      `yaml:"auth"`
	SMTP      SMTPConfig      `yaml:"smtp"`
	Audit     AuditConfig     `yaml:"audit"`
	RateLimit RateLimitConfig `yaml:"rate_limit"`
}

type Config struct {
	Port            string
	GinMode         string
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	ShutdownTimeout time.Duration

	DSN             string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
	AutoMigrate     bool
	LogQueries      bool

	RedisAddr        string
	RedisPassword    string
	RedisDB          int
	RedisDialTimeout time.Duration
	RedisReadTimeout time.Duration

	JWTSecret  string
	JWTIssuer  string
	AccessTTL  time.Duration
	PendingTTL time.Duration

	OTP_TTL         time.Duration
	OTP_Length      int
	OTP_MaxAttempts int
	OTP_Retention   time.Duration
	OTP_Channel     string

	AuthProvider    string
	RoleCacheTTL    time.Duration
	ResetURL        string
	ResetTTL        time.Duration
	AuthHTTPTimeout time.Duration
	SupabaseURL     string
	SupabaseKey     string

	SMTPHost     string
	SMTPPort     int
	SMTPFrom     string
	SMTPUser     string
	SMTPPassword string

	TwilioSID   string
	TwilioToken string
	TwilioFrom  string

	RecordKeys      string
	RecordActiveKey string

	AMQPURL           string
	AuditQueue        string
	AuditWriteTimeout time.Duration

	RateLimitPerSecond float64
	RateLimitBurst     int
}

func env(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

// Load reads the yaml file, overlays secrets from the environment and validates the result
func Load() (*Config, error) {
	// .env is optional; real deployments inject the environment directly
	_ = godotenv.Load()

	path := env("CLINIC_CONFIG", "config/config.yml")
	configFile, err := loadConfigFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to load config file: %w", err)
	}

	cfg, err := FromFile(configFile)
	if err != nil {
		return nil, err
	}
	applyEnv(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Defaults returns the configuration used when no yaml file is present
func Defaults() *ConfigFile {
	return &ConfigFile{
		App: AppConfig{
			Port:            8080,
			GinMode:         "release",
			ReadTimeout:     "10s",
			WriteTimeout:    "15s",
			ShutdownTimeout: "15s",
		},
		Database: DatabaseConfig{
			MaxOpenConns:    20,
			MaxIdleConns:    5,
			ConnMaxLifetime: "30m",
		},
		Redis: RedisConfig{
			Addr:        "localhost:6379",
			DialTimeout: "2s",
			ReadTimeout: "1s",
		},
		JWT: JWTConfig{
			Issuer:     "clinic-cms",
			AccessTTL:  "1h",
			PendingTTL: "5m",
		},
		OTP: OTPConfig{
			TTL:         "5m",
			Length:      6,
			MaxAttempts: 5,
			Retention:   "1h",
			Channel:     ChannelEmail,
		},
		Auth: AuthConfig{
			Provider:     ProviderDatabase,
			RoleCacheTTL: "30s",
			ResetURL:     "http://localhost:3000/reset-password",
			ResetTTL:     "30m",
			HTTPTimeout:  "10s",
		},
		SMTP: SMTPConfig{
			Host: "smtp.gmail.com",
			Port: 587,
		},
		Audit: AuditConfig{
			Queue:        "clinic.audit",
			WriteTimeout: "5s",
		},
		RateLimit: RateLimitConfig{
			PerSecond: 1,
			Burst:     5,
		},
	}
}

func loadConfigFile(path string) (*ConfigFile, error) {
	config := Defaults()

	bytes, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) && os.Getenv("CLINIC_CONFIG") == "" {
			return config, nil
		}
		return nil, fmt.Errorf("could not read config file at %s: %w", path, err)
	}

	if err := yaml.Unmarshal(bytes, config); err != nil {
		return nil, fmt.Errorf("could not parse config yaml: %w", err)
	}

	return config, nil
}

// FromFile resolves durations and copies the file settings; secrets are left empty
func FromFile(f *ConfigFile) (*Config, error) {
	var errs []error
	dur := func(name, value string) time.Duration {
		d, err := time.ParseDuration(value)
		if err != nil {
			errs = append(errs, fmt.Errorf("invalid %s %q: %w", name, value, err))
		}
		return d
	}

	cfg := &Config{
		Port:            strconv.Itoa(f.App.Port),
		GinMode:         f.App.GinMode,
		ReadTimeout:     dur("app.read_timeout", f.App.ReadTimeout),
		WriteTimeout:    dur("app.write_timeout", f.App.WriteTimeout),
		ShutdownTimeout: dur("app.shutdown_timeout", f.App.ShutdownTimeout),

		MaxOpenConns:    f.Database.MaxOpenConns,
		MaxIdleConns:    f.Database.MaxIdleConns,
		ConnMaxLifetime: dur("database.conn_max_lifetime", f.Database.ConnMaxLifetime),
		AutoMigrate:     f.Database.AutoMigrate,
		LogQueries:      f.Database.LogQueries,

		RedisAddr:        f.Redis.Addr,
		RedisDB:          f.Redis.DB,
		RedisDialTimeout: dur("redis.dial_timeout", f.Redis.DialTimeout),
		RedisReadTimeout: dur("redis.read_timeout", f.Redis.ReadTimeout),

		JWTIssuer:  f.JWT.Issuer,
		AccessTTL:  dur("jwt.access_ttl", f.JWT.AccessTTL),
		PendingTTL: dur("jwt.pending_ttl", f.JWT.PendingTTL),

		OTP_TTL:         dur("otp.ttl", f.OTP.TTL),
		OTP_Length:      f.OTP.Length,
		OTP_MaxAttempts: f.OTP.MaxAttempts,
		OTP_Retention:   dur("otp.retention", f.OTP.Retention),
		OTP_Channel:     f.OTP.Channel,

		AuthProvider:    f.Auth.Provider,
		RoleCacheTTL:    dur("auth.role_cache_ttl", f.Auth.RoleCacheTTL),
		ResetURL:        f.Auth.ResetURL,
		ResetTTL:        dur("auth.reset_ttl", f.Auth.ResetTTL),
		AuthHTTPTimeout: dur("auth.http_timeout", f.Auth.HTTPTimeout),

		SMTPHost: f.SMTP.Host,
		SMTPPort: f.SMTP.Port,
		SMTPFrom: f.SMTP.From,

		AuditQueue:        f.Audit.Queue,
		AuditWriteTimeout: dur("audit.write_timeout", f.Audit.WriteTimeout),

		RateLimitPerSecond: f.RateLimit.PerSecond,
		RateLimitBurst:     f.RateLimit.Burst,
	}

	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}
	return cfg, nil
}

func applyEnv(cfg *Config) {
	cfg.Port = env("PORT", cfg.Port)
	cfg.DSN = os.Getenv("DATABASE_URL")
	cfg.RedisAddr = env("REDIS_ADDR", cfg.RedisAddr)
	cfg.RedisPassword = os.Getenv("REDIS_PASSWORD")
	cfg.JWTSecret = os.Getenv("JWT_SECRET")
	cfg.AuthProvider = env("AUTH_PROVIDER", cfg.AuthProvider)
	cfg.SupabaseURL = strings.TrimRight(os.Getenv("SUPABASE_URL"), "/")
	cfg.SupabaseKey = os.Getenv("SUPABASE_KEY")
	cfg.SMTPUser = os.Getenv("SMTP_USER")
	cfg.SMTPPassword = os.Getenv("SMTP_PASSWORD")
	if cfg.SMTPFrom == "" {
		cfg.SMTPFrom = cfg.SMTPUser
	}
	cfg.TwilioSID = os.Getenv("TWILIO_ACCOUNT_SID")
	cfg.TwilioToken = os.Getenv("TWILIO_AUTH_TOKEN")
	cfg.TwilioFrom = os.Getenv("TWILIO_FROM_NUMBER")
	cfg.RecordKeys = os.Getenv("RECORD_KEYS")
	cfg.RecordActiveKey = os.Getenv("RECORD_ACTIVE_KEY")
	cfg.AMQPURL = os.Getenv("AMQP_URL")
}

// Validate fails fast on missing secrets and inconsistent settings
func (c *Config) Validate() error {
	var errs []error
	require := func(name, value string) {
		if strings.TrimSpace(value) == "" {
			errs = append(errs, fmt.Errorf("missing required env var: %s", name))
		}
	}

	require("JWT_SECRET", c.JWTSecret)
	if c.JWTSecret != "" && len(c.JWTSecret) < minSecretLength {
		errs = append(errs, fmt.Errorf("JWT_SECRET must be at least %d bytes", minSecretLength))
	}
	require("DATABASE_URL", c.DSN)
	require("SMTP_USER", c.SMTPUser)
	require("SMTP_PASSWORD", c.SMTPPassword)
	require("RECORD_KEYS", c.RecordKeys)
	require("RECORD_ACTIVE_KEY", c.RecordActiveKey)

	switch c.AuthProvider {
	case ProviderDatabase:
	case ProviderGoTrue:
		require("SUPABASE_URL", c.SupabaseURL)
		require("SUPABASE_KEY", c.SupabaseKey)
	default:
		errs = append(errs, fmt.Errorf("unsupported auth provider %q", c.AuthProvider))
	}

	switch c.OTP_Channel {
	case ChannelEmail:
	case ChannelSMS:
		require("TWILIO_ACCOUNT_SID", c.TwilioSID)
		require("TWILIO_AUTH_TOKEN", c.TwilioToken)
		require("TWILIO_FROM_NUMBER", c.TwilioFrom)
	default:
		errs = append(errs, fmt.Errorf("unsupported otp channel %q", c.OTP_Channel))
	}

	if c.OTP_Length < 6 {
		errs = append(errs, errors.New("otp.length must be at least 6"))
	}
	if c.OTP_MaxAttempts < 1 {
		errs = append(errs, errors.New("otp.max_attempts must be positive"))
	}
	if c.OTP_Retention < c.OTP_TTL {
		errs = append(errs, errors.New("otp.retention must not be shorter than otp.ttl"))
	}
	switch c.GinMode {
	case "", "debug", "release", "test":
	default:
		errs = append(errs, fmt.Errorf("unsupported gin mode %q", c.GinMode))
	}
	if c.AccessTTL <= 0 || c.PendingTTL <= 0 {
		errs = append(errs, errors.New("jwt ttls must be positive"))
	}

	return errors.Join(errs...)
}
