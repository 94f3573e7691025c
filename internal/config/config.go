package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/viper"
)

// Config хранит все настройки сервиса
type Config struct {
	Environment string `mapstructure:"ENVIRONMENT"`
	HTTPPort    string `mapstructure:"HTTP_PORT"`
	GRPCPort    string `mapstructure:"GRPC_PORT"`
	GatewayPort string `mapstructure:"GATEWAY_PORT"`

	// Логирование
	LogLevel  string `mapstructure:"LOG_LEVEL"`
	LogFormat string `mapstructure:"LOG_FORMAT"`
	LogFile   string `mapstructure:"LOG_FILE"`

	// База данных
	DBHost         string `mapstructure:"DB_HOST"`
	DBPort         string `mapstructure:"DB_PORT"`
	DBUser         string `mapstructure:"DB_USER"`
	DBPassword     string `mapstructure:"DB_PASSWORD"`
	DBName         string `mapstructure:"DB_NAME"`
	DBSSLMode      string `mapstructure:"DB_SSLMODE"`
	DBMaxConns     int32  `mapstructure:"DB_MAX_CONNS"`
	DBMinConns     int32  `mapstructure:"DB_MIN_CONNS"`
	MigrationsPath string `mapstructure:"MIGRATIONS_PATH"`

	// RabbitMQ
	RabbitMQUser     string `mapstructure:"RABBITMQ_USER"`
	RabbitMQPassword string `mapstructure:"RABBITMQ_PASSWORD"`
	RabbitMQHost     string `mapstructure:"RABBITMQ_HOST"`
	RabbitMQPort     string `mapstructure:"RABBITMQ_PORT"`
	AuditQueue       string `mapstructure:"AUDIT_QUEUE"`

	// Redis
	RedisAddr     string        `mapstructure:"REDIS_ADDR"`
	RedisPassword string        `mapstructure:"REDIS_PASSWORD"`
	RedisDB       int           `mapstructure:"REDIS_DB"`
	TasksCacheTTL time.Duration `mapstructure:"TASKS_CACHE_TTL"`

	// Доска
	BoardVariant string `mapstructure:"BOARD_VARIANT"`

	// JWT
	JWTSecret       string        `mapstructure:"JWT_SECRET"`
	AccessTokenTTL  time.Duration `mapstructure:"ACCESS_TOKEN_TTL"`
	RefreshTokenTTL time.Duration `mapstructure:"REFRESH_TOKEN_TTL"`

	TokenCleanupInterval time.Duration `mapstructure:"TOKEN_CLEANUP_INTERVAL"`

	// Трейсинг
	TracingEnabled bool `mapstructure:"TRACING_ENABLED"`

	// Файловое хранилище
	// file:///dir, gs://bucket или azblob://container
	StorageURL string `mapstructure:"STORAGE_URL"`

	// LLM
	OpenAIAPIKey       string `mapstructure:"OPENAI_API_KEY"`
	OpenAIBaseURL      string `mapstructure:"OPENAI_BASE_URL"`
	TitleModel         string `mapstructure:"TITLE_MODEL"`
	TranscriptionModel string `mapstructure:"TRANSCRIPTION_MODEL"`

	// Почта
	ResendAPIKey string `mapstructure:"RESEND_API_KEY"`
	MailFrom     string `mapstructure:"MAIL_FROM"`

	CORSOrigins []string `mapstructure:"CORS_ORIGINS"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("ENVIRONMENT", "development")
	v.SetDefault("HTTP_PORT", "8080")
	v.SetDefault("GRPC_PORT", "9090")
	v.SetDefault("GATEWAY_PORT", "8081")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "text")
	v.SetDefault("LOG_FILE", "")
	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_PORT", "5432")
	v.SetDefault("DB_USER", "postgres")
	v.SetDefault("DB_PASSWORD", "postgres")
	v.SetDefault("DB_NAME", "command_center")
	v.SetDefault("DB_SSLMODE", "disable")
	v.SetDefault("DB_MAX_CONNS", 20)
	v.SetDefault("DB_MIN_CONNS", 5)
	v.SetDefault("MIGRATIONS_PATH", "file://migrations")
	v.SetDefault("RABBITMQ_USER", "guest")
	v.SetDefault("RABBITMQ_PASSWORD", "guest")
	v.SetDefault("RABBITMQ_HOST", "localhost")
	v.SetDefault("RABBITMQ_PORT", "5672")
	v.SetDefault("AUDIT_QUEUE", "task_audit_logs")
	v.SetDefault("REDIS_ADDR", "localhost:6379")
	v.SetDefault("REDIS_PASSWORD", "")
	v.SetDefault("REDIS_DB", 0)
	v.SetDefault("TASKS_CACHE_TTL", time.Minute)
	v.SetDefault("BOARD_VARIANT", "pipeline")
	v.SetDefault("JWT_SECRET", "")
	v.SetDefault("ACCESS_TOKEN_TTL", 15*time.Minute)
	v.SetDefault("REFRESH_TOKEN_TTL", 7*24*time.Hour)
	v.SetDefault("TOKEN_CLEANUP_INTERVAL", time.Hour)
	v.SetDefault("TRACING_ENABLED", false)
	v.SetDefault("STORAGE_URL", "file:///var/lib/command-center/files?create_dir=true")
	v.SetDefault("OPENAI_API_KEY", "")
	v.SetDefault("OPENAI_BASE_URL", "")
	v.SetDefault("TITLE_MODEL", "gpt-4o-mini")
	v.SetDefault("TRANSCRIPTION_MODEL", "whisper-1")
	v.SetDefault("RESEND_API_KEY", "")
	v.SetDefault("MAIL_FROM", "Sagan Command Center <noreply@example.com>")
	v.SetDefault("CORS_ORIGINS", []string{"http://localhost:5173"})
}

// Load читает конфиг из файла (если задан или найден .env) и переменных окружения
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.AddConfigPath(".")
		v.SetConfigName(".env")
		v.SetConfigType("env")
	}
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		// файла может не быть, тогда берем только окружение
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) || path != "" {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}

	if cfg.JWTSecret == "" {
		if cfg.Environment == "production" {
			return nil, errors.New("JWT_SECRET is required in production")
		}
		cfg.JWTSecret = "dev-secret-change-in-production"
	}

	return &cfg, nil
}

// DatabaseURL возвращает строку подключения к postgres
func (c *Config) DatabaseURL() string {
	return fmt.Sprintf("postgresql://%s:%s@%s:%s/%s?sslmode=%s",
		c.DBUser, c.DBPassword, c.DBHost, c.DBPort, c.DBName, c.DBSSLMode)
}

// RabbitMQURL возвращает адрес брокера
func (c *Config) RabbitMQURL() string {
	return fmt.Sprintf("amqp://%s:%s@%s:%s/",
		c.RabbitMQUser, c.RabbitMQPassword, c.RabbitMQHost, c.RabbitMQPort)
}
