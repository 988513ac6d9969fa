package config

import (
	"errors"
	"io/fs"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	App       AppConfig
	DB        DBConfig
	Redis     RedisConfig
	JWT       JWTConfig
	OTP       OTPConfig
	Auth      AuthConfig
	Email     EmailConfig
	NATS      NATSConfig
	Events    EventsConfig
	Bootstrap BootstrapConfig
}

type AppConfig struct {
	Port        string
	Env         string
	CORSOrigins []string // empty allows any origin
}

type DBConfig struct {
	Host          string
	Port          string
	User          string
	Password      string
	Name          string
	RunMigrations bool
}

type RedisConfig struct {
	Host     string
	Port     string
	Password string
	DB       int
}

type JWTConfig struct {
	Secret string
}

// OTPConfig controls the one-time password window and verification attempts.
type OTPConfig struct {
	ExpireMinutes int
	MaxAttempts   int
}

func (c OTPConfig) Window() time.Duration {
	return time.Duration(c.ExpireMinutes) * time.Minute
}

type AuthConfig struct {
	TokenCacheTTL time.Duration
}

type EmailConfig struct {
	Provider      string // log, smtp or mailersend
	FromEmail     string
	FromName      string
	SMTPHost      string
	SMTPPort      int
	SMTPUser      string
	SMTPPassword  string
	SMTPUseTLS    bool
	MailerSendKey string
}

// NATSConfig is optional; an empty URL selects the in-process event bus.
type NATSConfig struct {
	URL string
}

type EventsConfig struct {
	Workers   int
	QueueSize int
}

// BootstrapConfig describes the admin account ensured on startup.
type BootstrapConfig struct {
	AdminUsername string
	AdminPassword string
	AdminEmail    string
}

func LoadConfig() (*Config, error) {
	viper.SetConfigFile(".env")
	viper.SetConfigType("env")
	viper.AutomaticEnv()
	setDefaults()

	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !errors.Is(err, fs.ErrNotExist) {
			return nil, err
		}
	}

	tokenCacheTTL, err := time.ParseDuration(viper.GetString("TOKEN_CACHE_TTL"))
	if err != nil {
		tokenCacheTTL = 15 * time.Minute
	}

	config := &Config{
		App: AppConfig{
			Port:        viper.GetString("APP_PORT"),
			Env:         viper.GetString("APP_ENV"),
			CORSOrigins: splitList(viper.GetString("CORS_ALLOWED_ORIGINS")),
		},
		DB: DBConfig{
			Host:          viper.GetString("DB_HOST"),
			Port:          viper.GetString("DB_PORT"),
			User:          viper.GetString("DB_USER"),
			Password:      viper.GetString("DB_PASSWORD"),
			Name:          viper.GetString("DB_NAME"),
			RunMigrations: viper.GetBool("DB_RUN_MIGRATIONS"),
		},
		Redis: RedisConfig{
			Host:     viper.GetString("REDIS_HOST"),
			Port:     viper.GetString("REDIS_PORT"),
			Password: viper.GetString("REDIS_PASSWORD"),
			DB:       viper.GetInt("REDIS_DB"),
		},
		JWT: JWTConfig{
			Secret: viper.GetString("JWT_SECRET"),
		},
		OTP: OTPConfig{
			ExpireMinutes: viper.GetInt("OTP_EXPIRE_MINUTES"),
			MaxAttempts:   viper.GetInt("OTP_MAX_ATTEMPTS"),
		},
		Auth: AuthConfig{
			TokenCacheTTL: tokenCacheTTL,
		},
		Email: EmailConfig{
			Provider:      viper.GetString("EMAIL_PROVIDER"),
			FromEmail:     viper.GetString("DEFAULT_FROM_EMAIL"),
			FromName:      viper.GetString("EMAIL_FROM_NAME"),
			SMTPHost:      viper.GetString("SMTP_HOST"),
			SMTPPort:      viper.GetInt("SMTP_PORT"),
			SMTPUser:      viper.GetString("SMTP_USER"),
			SMTPPassword:  viper.GetString("SMTP_PASSWORD"),
			SMTPUseTLS:    viper.GetBool("SMTP_USE_TLS"),
			MailerSendKey: viper.GetString("MAILERSEND_API_KEY"),
		},
		NATS: NATSConfig{
			URL: viper.GetString("NATS_URL"),
		},
		Events: EventsConfig{
			Workers:   viper.GetInt("EVENT_WORKERS"),
			QueueSize: viper.GetInt("EVENT_QUEUE_SIZE"),
		},
		Bootstrap: BootstrapConfig{
			AdminUsername: viper.GetString("ADMIN_USERNAME"),
			AdminPassword: viper.GetString("ADMIN_PASSWORD"),
			AdminEmail:    viper.GetString("ADMIN_EMAIL"),
		},
	}

	if config.JWT.Secret == "" {
		return nil, errors.New("JWT_SECRET is required")
	}

	return config, nil
}

func setDefaults() {
	viper.SetDefault("APP_PORT", "8080")
	viper.SetDefault("APP_ENV", "development")
	viper.SetDefault("DB_HOST", "localhost")
	viper.SetDefault("DB_PORT", "5432")
	viper.SetDefault("DB_RUN_MIGRATIONS", true)
	viper.SetDefault("REDIS_HOST", "localhost")
	viper.SetDefault("REDIS_PORT", "6379")
	viper.SetDefault("OTP_EXPIRE_MINUTES", 5)
	viper.SetDefault("OTP_MAX_ATTEMPTS", 5)
	viper.SetDefault("TOKEN_CACHE_TTL", "15m")
	viper.SetDefault("EMAIL_PROVIDER", "log")
	viper.SetDefault("DEFAULT_FROM_EMAIL", "noreply@health.local")
	viper.SetDefault("EMAIL_FROM_NAME", "Health System")
	viper.SetDefault("SMTP_PORT", 1025)
	viper.SetDefault("EVENT_WORKERS", 4)
	viper.SetDefault("EVENT_QUEUE_SIZE", 256)
}

func splitList(raw string) []string {
	var out []string
	for _, item := range strings.Split(raw, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}
