package config

import (
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
	"github.com/joho/godotenv"
)

// Режимы кэша access token'ов.
const (
	TokenCacheNone   = "none"
	TokenCacheMemory = "memory"
	TokenCacheRedis  = "redis"
)

type Config struct {
	Env        string `yaml:"env" env:"APP_ENV" env-default:"production"`
	SecretsDir string `yaml:"secrets_dir" env:"SECRETS_DIR" env-default:"/run/secrets"`

	Server     ServerConfig     `yaml:"server"`
	Database   DatabaseConfig   `yaml:"database"`
	FCM        FCMConfig        `yaml:"fcm"`
	TokenCache TokenCacheConfig `yaml:"token_cache"`
	RabbitMQ   RabbitMQConfig   `yaml:"rabbitmq"`
	Webhook    WebhookConfig    `yaml:"webhook"`
	Log        LogConfig        `yaml:"log"`
}

type ServerConfig struct {
	Port            string        `yaml:"port" env:"SERVER_PORT" env-default:"8080"`
	ReadTimeout     time.Duration `yaml:"read_timeout" env:"SERVER_READ_TIMEOUT" env-default:"15s"`
	WriteTimeout    time.Duration `yaml:"write_timeout" env:"SERVER_WRITE_TIMEOUT" env-default:"30s"`
	IdleTimeout     time.Duration `yaml:"idle_timeout" env:"SERVER_IDLE_TIMEOUT" env-default:"60s"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" env:"SERVER_SHUTDOWN_TIMEOUT" env-default:"10s"`
}

type DatabaseConfig struct {
	URL            string        `yaml:"url" env:"DATABASE_URL"` // или секрет database_url
	MaxConns       int           `yaml:"max_conns" env:"DB_MAX_CONNS" env-default:"10"`
	IdleTimeout    time.Duration `yaml:"idle_timeout" env:"DB_IDLE_TIMEOUT" env-default:"5m"`
	ConnectRetries int           `yaml:"connect_retries" env:"DB_CONNECT_RETRIES" env-default:"50"`
	RetryDelay     time.Duration `yaml:"retry_delay" env:"DB_RETRY_DELAY" env-default:"3s"`
	MigrateOnStart bool          `yaml:"migrate_on_start" env:"MIGRATE_ON_START" env-default:"false"`
}

type FCMConfig struct {
	CredentialsPath string        `yaml:"credentials_path" env:"FCM_CREDENTIALS_PATH" env-default:"service-account.json"`
	Sender          string        `yaml:"sender" env:"FCM_SENDER" env-default:"rest"` // rest, sdk или stub
	Endpoint        string        `yaml:"endpoint" env:"FCM_ENDPOINT"`                // пусто - боевой FCM
	TokenURL        string        `yaml:"token_url" env:"FCM_TOKEN_URL"`              // пусто - token_uri из ключа
	TokenTimeout    time.Duration `yaml:"token_timeout" env:"FCM_TOKEN_TIMEOUT" env-default:"10s"`
	SendTimeout     time.Duration `yaml:"send_timeout" env:"FCM_SEND_TIMEOUT" env-default:"10s"`
	Concurrency     int           `yaml:"concurrency" env:"FCM_CONCURRENCY" env-default:"10"`
}

type TokenCacheConfig struct {
	Mode          string        `yaml:"mode" env:"TOKEN_CACHE_MODE" env-default:"none"`
	Skew          time.Duration `yaml:"skew" env:"TOKEN_CACHE_SKEW" env-default:"60s"`
	RedisAddr     string        `yaml:"redis_addr" env:"REDIS_ADDR" env-default:"localhost:6379"`
	RedisPassword string        `yaml:"redis_password" env:"REDIS_PASSWORD"` // или секрет redis_password
	RedisDB       int           `yaml:"redis_db" env:"REDIS_DB" env-default:"0"`
}

type RabbitMQConfig struct {
	URI            string        `yaml:"uri" env:"RABBITMQ_URI"` // пусто - консьюмер не запускается
	EventsQueue    string        `yaml:"events_queue" env:"RABBITMQ_EVENTS_QUEUE" env-default:"order_change_events"`
	CleanupQueue   string        `yaml:"cleanup_queue" env:"RABBITMQ_CLEANUP_QUEUE" env-default:"fcm_token_cleanup"`
	Concurrency    int           `yaml:"concurrency" env:"RABBITMQ_CONCURRENCY" env-default:"4"`
	ProcessTimeout time.Duration `yaml:"process_timeout" env:"RABBITMQ_PROCESS_TIMEOUT" env-default:"30s"`
	ConnectRetries int           `yaml:"connect_retries" env:"RABBITMQ_CONNECT_RETRIES" env-default:"50"`
	RetryDelay     time.Duration `yaml:"retry_delay" env:"RABBITMQ_RETRY_DELAY" env-default:"5s"`
}

type WebhookConfig struct {
	Secret       string `yaml:"secret" env:"WEBHOOK_JWT_SECRET"` // или секрет webhook_jwt_secret; пусто - без аутентификации
	RequiredRole string `yaml:"required_role" env:"WEBHOOK_REQUIRED_ROLE"`
}

type LogConfig struct {
	Level    string `yaml:"level" env:"LOG_LEVEL" env-default:"info"`
	Encoding string `yaml:"encoding" env:"LOG_ENCODING" env-default:"json"`
}

// LoadConfig читает .env (если есть), затем config.yml (если есть) или только окружение,
// после чего подставляет секреты из SecretsDir для незаданных значений.
func LoadConfig(configPath, envFilePath string) (*Config, error) {
	if envFilePath != "" {
		if _, err := os.Stat(envFilePath); err == nil {
			if err := godotenv.Load(envFilePath); err != nil {
				log.Printf("Warning: Could not load %s file: %v", envFilePath, err)
			}
		} else if !os.IsNotExist(err) {
			log.Printf("Warning: Error checking %s file: %v", envFilePath, err)
		}
	}

	var cfg Config
	if _, err := os.Stat(configPath); configPath != "" && err == nil {
		if err := cleanenv.ReadConfig(configPath, &cfg); err != nil {
			return nil, fmt.Errorf("ошибка чтения файла конфигурации '%s': %w", configPath, err)
		}
	} else if err := cleanenv.ReadEnv(&cfg); err != nil {
		return nil, fmt.Errorf("ошибка загрузки конфигурации: %w", err)
	}

	cfg.Database.URL = optionalSecret(cfg.SecretsDir, "database_url", cfg.Database.URL)
	cfg.Webhook.Secret = optionalSecret(cfg.SecretsDir, "webhook_jwt_secret", cfg.Webhook.Secret)
	cfg.TokenCache.RedisPassword = optionalSecret(cfg.SecretsDir, "redis_password", cfg.TokenCache.RedisPassword)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate проверяет значения, которые нельзя выразить тегами cleanenv.
func (c *Config) Validate() error {
	var errs []error
	if c.Database.URL == "" {
		errs = append(errs, errors.New("DATABASE_URL (or secret database_url) is required"))
	}
	if c.FCM.CredentialsPath == "" {
		errs = append(errs, errors.New("FCM_CREDENTIALS_PATH is required"))
	}
	switch c.FCM.Sender {
	case "rest", "sdk", "stub":
	default:
		errs = append(errs, fmt.Errorf("unknown FCM_SENDER %q (rest, sdk, stub)", c.FCM.Sender))
	}
	switch c.TokenCache.Mode {
	case TokenCacheNone, TokenCacheMemory, TokenCacheRedis:
	default:
		errs = append(errs, fmt.Errorf("unknown TOKEN_CACHE_MODE %q (none, memory, redis)", c.TokenCache.Mode))
	}
	return errors.Join(errs...)
}

// ReadSecret читает секрет из файла dir/name (Docker Secrets).
func ReadSecret(dir, name string) (string, error) {
	filePath := filepath.Join(dir, name)
	secretBytes, err := os.ReadFile(filePath)
	if err != nil {
		return "", fmt.Errorf("failed to read secret file %s: %w", filePath, err)
	}
	secret := strings.TrimSpace(string(secretBytes))
	if secret == "" {
		return "", fmt.Errorf("secret file %s is empty", filePath)
	}
	return secret, nil
}

// optionalSecret возвращает current, если он задан, иначе значение секрета (или пустую строку).
func optionalSecret(dir, name, current string) string {
	if current != "" {
		return current
	}
	secret, err := ReadSecret(dir, name)
	if err != nil {
		return ""
	}
	log.Printf("Secret '%s' loaded from %s", name, dir)
	return secret
}
