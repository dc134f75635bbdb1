package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	EnvDevelopment = "development"
	EnvProduction  = "production"
)

type Config struct {
	Env string

	API     APIConfig
	Session SessionConfig
	Uploads UploadConfig
	Booking BookingConfig
	Chat    ChatConfig
	Gateway GatewayConfig
	Receipt ReceiptConfig
	Metrics MetricsConfig
	Log     LogConfig
}

// APIConfig points the client at the backend origin.
type APIConfig struct {
	BaseURL   string
	Timeout   time.Duration
	CSRFPath  string
	UserAgent string
}

// SessionConfig controls where the persisted session document lives.
type SessionConfig struct {
	Path string
}

// UploadConfig carries the client-side file validation ceilings.
type UploadConfig struct {
	AttachmentMaxBytes int64
	GalleryMaxBytes    int64
	AllowedMIMEs       []string
}

// BookingConfig bounds the appointment booking window.
type BookingConfig struct {
	OpenHour  int
	CloseHour int
}

// ChatConfig selects and tunes the realtime message transport.
type ChatConfig struct {
	Transport    string // "poll" or "redis"
	PollInterval time.Duration
	Redis        RedisConfig
}

type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
}

// GatewayConfig configures the payment-gateway redirect flow.
type GatewayConfig struct {
	EsewaURL     string
	MerchantCode string
	CallbackAddr string
	CallbackPath string
	AwaitTimeout time.Duration
}

// MetricsConfig controls the request-metrics dump written on exit.
type MetricsConfig struct {
	DumpOnExit bool
}

// ReceiptConfig controls ticket receipt output.
type ReceiptConfig struct {
	OutputDir string
}

type LogConfig struct {
	Level  string
	Format string
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.SetConfigFile(".env")
	v.SetConfigType("env")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			if _, statErr := os.Stat(".env"); statErr == nil {
				return nil, err
			}
		}
	}

	cfg := &Config{}

	cfg.Env = v.GetString("ENV")

	cfg.API = APIConfig{
		BaseURL:   v.GetString("API_BASE_URL"),
		Timeout:   parseDuration(v.GetString("API_TIMEOUT"), 15*time.Second),
		CSRFPath:  v.GetString("API_CSRF_PATH"),
		UserAgent: v.GetString("API_USER_AGENT"),
	}

	cfg.Session = SessionConfig{
		Path: v.GetString("SESSION_PATH"),
	}

	cfg.Uploads = UploadConfig{
		AttachmentMaxBytes: v.GetInt64("UPLOAD_ATTACHMENT_MAX_BYTES"),
		GalleryMaxBytes:    v.GetInt64("UPLOAD_GALLERY_MAX_BYTES"),
		AllowedMIMEs:       splitAndTrim(v.GetString("UPLOAD_ALLOWED_MIME_TYPES")),
	}

	cfg.Booking = BookingConfig{
		OpenHour:  v.GetInt("BOOKING_OPEN_HOUR"),
		CloseHour: v.GetInt("BOOKING_CLOSE_HOUR"),
	}

	cfg.Chat = ChatConfig{
		Transport:    v.GetString("CHAT_TRANSPORT"),
		PollInterval: parseDuration(v.GetString("CHAT_POLL_INTERVAL"), 3*time.Second),
		Redis: RedisConfig{
			Host:     v.GetString("REDIS_HOST"),
			Port:     v.GetInt("REDIS_PORT"),
			Password: v.GetString("REDIS_PASSWORD"),
			DB:       v.GetInt("REDIS_DB"),
		},
	}

	cfg.Gateway = GatewayConfig{
		EsewaURL:     v.GetString("ESEWA_URL"),
		MerchantCode: v.GetString("ESEWA_MERCHANT_CODE"),
		CallbackAddr: v.GetString("GATEWAY_CALLBACK_ADDR"),
		CallbackPath: v.GetString("GATEWAY_CALLBACK_PATH"),
		AwaitTimeout: parseDuration(v.GetString("GATEWAY_AWAIT_TIMEOUT"), 5*time.Minute),
	}

	cfg.Receipt = ReceiptConfig{
		OutputDir: v.GetString("RECEIPT_OUTPUT_DIR"),
	}

	cfg.Metrics = MetricsConfig{
		DumpOnExit: v.GetBool("METRICS_DUMP"),
	}

	cfg.Log = LogConfig{
		Level:  v.GetString("LOG_LEVEL"),
		Format: v.GetString("LOG_FORMAT"),
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("ENV", EnvDevelopment)

	v.SetDefault("API_BASE_URL", "http://localhost:8000/api")
	v.SetDefault("API_TIMEOUT", "15s")
	v.SetDefault("API_CSRF_PATH", "/sanctum/csrf-cookie")
	v.SetDefault("API_USER_AGENT", "studioctl/1.0")

	v.SetDefault("SESSION_PATH", defaultSessionPath())

	v.SetDefault("UPLOAD_ATTACHMENT_MAX_BYTES", 5*1024*1024)
	v.SetDefault("UPLOAD_GALLERY_MAX_BYTES", 10*1024*1024)
	v.SetDefault("UPLOAD_ALLOWED_MIME_TYPES", "image/jpeg,image/png,image/gif")

	v.SetDefault("BOOKING_OPEN_HOUR", 9)
	v.SetDefault("BOOKING_CLOSE_HOUR", 19)

	v.SetDefault("CHAT_TRANSPORT", "poll")
	v.SetDefault("CHAT_POLL_INTERVAL", "3s")
	v.SetDefault("REDIS_HOST", "localhost")
	v.SetDefault("REDIS_PORT", 6379)
	v.SetDefault("REDIS_PASSWORD", "")
	v.SetDefault("REDIS_DB", 0)

	v.SetDefault("ESEWA_URL", "https://uat.esewa.com.np/epay/main")
	v.SetDefault("ESEWA_MERCHANT_CODE", "EPAYTEST")
	v.SetDefault("GATEWAY_CALLBACK_ADDR", "127.0.0.1:8765")
	v.SetDefault("GATEWAY_CALLBACK_PATH", "/payment/callback")
	v.SetDefault("GATEWAY_AWAIT_TIMEOUT", "5m")

	v.SetDefault("RECEIPT_OUTPUT_DIR", "./receipts")

	v.SetDefault("METRICS_DUMP", false)

	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "console")
}

func defaultSessionPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "session.json"
	}
	return filepath.Join(dir, "studioctl", "session.json")
}

func parseDuration(raw string, fallback time.Duration) time.Duration {
	if raw == "" {
		return fallback
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		return fallback
	}
	return d
}

func splitAndTrim(raw string) []string {
	if raw == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
