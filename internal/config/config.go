package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all application configuration.
type Config struct {
	Server     ServerConfig
	DB         DBConfig
	S3         S3Config
	Classifier ClassifierConfig
	OCR        OCRConfig
	Queue      QueueConfig
	CORS       CORSConfig
	Log        LogConfig
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port         string        `mapstructure:"port"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
	Environment  string        `mapstructure:"environment"`
}

// DBConfig holds PostgreSQL connection settings.
type DBConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	Name     string `mapstructure:"name"`
	SSLMode  string `mapstructure:"sslmode"`
	MaxOpen  int    `mapstructure:"max_open"`
	MaxIdle  int    `mapstructure:"max_idle"`
}

// DSN returns the PostgreSQL connection string.
func (d *DBConfig) DSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		d.User, d.Password, d.Host, d.Port, d.Name, d.SSLMode,
	)
}

// S3Config holds object storage settings for uploaded statements.
type S3Config struct {
	Region        string `mapstructure:"region"`
	Bucket        string `mapstructure:"bucket"`
	Endpoint      string `mapstructure:"endpoint"`
	AccessKey     string `mapstructure:"access_key"`
	SecretKey     string `mapstructure:"secret_key"`
	MaxFileSizeMB int64  `mapstructure:"max_file_size_mb"`
	PresignExpiry int64  `mapstructure:"presign_expiry"`
}

// ClassifierConfig holds settings for the header-classification LLM call.
type ClassifierConfig struct {
	APIKey      string `mapstructure:"api_key"`
	Model       string `mapstructure:"model"`
	TimeoutSecs int    `mapstructure:"timeout_secs"`
}

// OCRConfig holds Tesseract settings for scanned-statement fallback.
type OCRConfig struct {
	TessdataPrefix string `mapstructure:"tessdata_prefix"`
	Language       string `mapstructure:"language"`
	MaxWorkers     int    `mapstructure:"max_workers"`
}

// QueueConfig holds parse queue worker settings.
type QueueConfig struct {
	PollIntervalSecs int `mapstructure:"poll_interval_secs"`
	MaxRetries       int `mapstructure:"max_retries"`
	Concurrency      int `mapstructure:"concurrency"`
}

// CORSConfig holds CORS settings.
type CORSConfig struct {
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// Load reads configuration from environment variables with the TAXDESK_ prefix.
func Load() (*Config, error) {
	v := viper.New()
	v.SetEnvPrefix("TAXDESK")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Server defaults
	v.SetDefault("server.port", ":8080")
	v.SetDefault("server.read_timeout", "15s")
	v.SetDefault("server.write_timeout", "15s")
	v.SetDefault("server.environment", "development")

	// DB defaults
	v.SetDefault("db.host", "localhost")
	v.SetDefault("db.port", 5432)
	v.SetDefault("db.user", "taxdesk")
	v.SetDefault("db.password", "taxdesk_secret")
	v.SetDefault("db.name", "taxdesk_db")
	v.SetDefault("db.sslmode", "disable")
	v.SetDefault("db.max_open", 25)
	v.SetDefault("db.max_idle", 10)

	// S3 defaults
	v.SetDefault("s3.region", "us-east-1")
	v.SetDefault("s3.bucket", "taxdesk-statements")
	v.SetDefault("s3.endpoint", "")
	v.SetDefault("s3.max_file_size_mb", 50)
	v.SetDefault("s3.presign_expiry", 3600)

	// Classifier defaults
	v.SetDefault("classifier.api_key", "")
	v.SetDefault("classifier.model", "gpt-4o-mini")
	v.SetDefault("classifier.timeout_secs", 60)

	// OCR defaults
	v.SetDefault("ocr.tessdata_prefix", "")
	v.SetDefault("ocr.language", "eng")
	v.SetDefault("ocr.max_workers", 3)

	// Queue defaults
	v.SetDefault("queue.poll_interval_secs", 10)
	v.SetDefault("queue.max_retries", 3)
	v.SetDefault("queue.concurrency", 4)

	// CORS defaults (localhost origins for development)
	v.SetDefault("cors.allowed_origins", "http://localhost:3000,http://127.0.0.1:3000")

	// Log defaults
	v.SetDefault("log.level", "debug")
	v.SetDefault("log.format", "console")

	// Bind environment variables explicitly for nested keys
	envBindings := map[string]string{
		"server.port":              "TAXDESK_SERVER_PORT",
		"server.read_timeout":      "TAXDESK_SERVER_READ_TIMEOUT",
		"server.write_timeout":     "TAXDESK_SERVER_WRITE_TIMEOUT",
		"server.environment":       "TAXDESK_SERVER_ENVIRONMENT",
		"db.host":                  "TAXDESK_DB_HOST",
		"db.port":                  "TAXDESK_DB_PORT",
		"db.user":                  "TAXDESK_DB_USER",
		"db.password":              "TAXDESK_DB_PASSWORD",
		"db.name":                  "TAXDESK_DB_NAME",
		"db.sslmode":               "TAXDESK_DB_SSLMODE",
		"db.max_open":              "TAXDESK_DB_MAX_OPEN",
		"db.max_idle":              "TAXDESK_DB_MAX_IDLE",
		"s3.region":                "TAXDESK_S3_REGION",
		"s3.bucket":                "TAXDESK_S3_BUCKET",
		"s3.endpoint":              "TAXDESK_S3_ENDPOINT",
		"s3.access_key":            "TAXDESK_S3_ACCESS_KEY",
		"s3.secret_key":            "TAXDESK_S3_SECRET_KEY",
		"s3.max_file_size_mb":      "TAXDESK_S3_MAX_FILE_SIZE_MB",
		"s3.presign_expiry":        "TAXDESK_S3_PRESIGN_EXPIRY",
		"classifier.api_key":       "TAXDESK_CLASSIFIER_API_KEY",
		"classifier.model":         "TAXDESK_CLASSIFIER_MODEL",
		"classifier.timeout_secs":  "TAXDESK_CLASSIFIER_TIMEOUT_SECS",
		"ocr.tessdata_prefix":      "TAXDESK_OCR_TESSDATA_PREFIX",
		"ocr.language":             "TAXDESK_OCR_LANGUAGE",
		"ocr.max_workers":          "TAXDESK_OCR_MAX_WORKERS",
		"queue.poll_interval_secs": "TAXDESK_QUEUE_POLL_INTERVAL_SECS",
		"queue.max_retries":        "TAXDESK_QUEUE_MAX_RETRIES",
		"queue.concurrency":        "TAXDESK_QUEUE_CONCURRENCY",
		"cors.allowed_origins":     "TAXDESK_CORS_ALLOWED_ORIGINS",
		"log.level":                "TAXDESK_LOG_LEVEL",
		"log.format":               "TAXDESK_LOG_FORMAT",
	}
	for key, env := range envBindings {
		_ = v.BindEnv(key, env)
	}

	cfg := &Config{}

	// Railway/Heroku/Render set a PORT env var. Use it if TAXDESK_SERVER_PORT
	// is not explicitly set.
	serverPort := v.GetString("server.port")
	if port := os.Getenv("PORT"); port != "" && os.Getenv("TAXDESK_SERVER_PORT") == "" {
		serverPort = ":" + port
	}

	cfg.Server = ServerConfig{
		Port:         serverPort,
		ReadTimeout:  v.GetDuration("server.read_timeout"),
		WriteTimeout: v.GetDuration("server.write_timeout"),
		Environment:  v.GetString("server.environment"),
	}
	cfg.DB = DBConfig{
		Host:     v.GetString("db.host"),
		Port:     v.GetInt("db.port"),
		User:     v.GetString("db.user"),
		Password: v.GetString("db.password"),
		Name:     v.GetString("db.name"),
		SSLMode:  v.GetString("db.sslmode"),
		MaxOpen:  v.GetInt("db.max_open"),
		MaxIdle:  v.GetInt("db.max_idle"),
	}
	cfg.S3 = S3Config{
		Region:        v.GetString("s3.region"),
		Bucket:        v.GetString("s3.bucket"),
		Endpoint:      v.GetString("s3.endpoint"),
		AccessKey:     v.GetString("s3.access_key"),
		SecretKey:     v.GetString("s3.secret_key"),
		MaxFileSizeMB: v.GetInt64("s3.max_file_size_mb"),
		PresignExpiry: v.GetInt64("s3.presign_expiry"),
	}
	cfg.Classifier = ClassifierConfig{
		APIKey:      v.GetString("classifier.api_key"),
		Model:       v.GetString("classifier.model"),
		TimeoutSecs: v.GetInt("classifier.timeout_secs"),
	}
	cfg.OCR = OCRConfig{
		TessdataPrefix: v.GetString("ocr.tessdata_prefix"),
		Language:       v.GetString("ocr.language"),
		MaxWorkers:     v.GetInt("ocr.max_workers"),
	}
	cfg.Queue = QueueConfig{
		PollIntervalSecs: v.GetInt("queue.poll_interval_secs"),
		MaxRetries:       v.GetInt("queue.max_retries"),
		Concurrency:      v.GetInt("queue.concurrency"),
	}

	var corsOrigins []string
	for _, o := range strings.Split(v.GetString("cors.allowed_origins"), ",") {
		o = strings.TrimSpace(o)
		if o != "" {
			corsOrigins = append(corsOrigins, o)
		}
	}
	cfg.CORS = CORSConfig{AllowedOrigins: corsOrigins}

	cfg.Log = LogConfig{
		Level:  v.GetString("log.level"),
		Format: v.GetString("log.format"),
	}

	return cfg, nil
}
