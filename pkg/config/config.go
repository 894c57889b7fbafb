package config

import (
	"errors"
	"io/fs"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	EnvDevelopment = "development"
	EnvProduction  = "production"
)

const (
	StorageDriverSupabase = "supabase"
	StorageDriverLocal    = "local"
)

type Config struct {
	Env       string
	Port      int
	APIPrefix string

	Database  DatabaseConfig
	Redis     RedisConfig
	CORS      CORSConfig
	Log       LogConfig
	Admin     AdminConfig
	Storage   StorageConfig
	Upload    UploadConfig
	Notify    NotifyConfig
	Community CommunityConfig
	Browse    BrowseConfig
	Stream    StreamConfig
}

type DatabaseConfig struct {
	Host         string
	Port         int
	User         string
	Password     string
	Name         string
	SSLMode      string
	MaxOpenConns int
	MaxIdleConns int
}

type RedisConfig struct {
	Enabled  bool
	Host     string
	Port     int
	Password string
	DB       int
}

type CORSConfig struct {
	AllowedOrigins []string
}

type LogConfig struct {
	Level  string
	Format string
}

// AdminConfig holds the shared moderation password and session signing parameters.
type AdminConfig struct {
	Password      string
	SessionSecret string
	SessionTTL    time.Duration
}

// StorageConfig selects and configures the object store backing uploaded files.
type StorageConfig struct {
	Driver         string
	Bucket         string
	SupabaseURL    string
	ServiceRoleKey string
	LocalDir       string
	LocalPublicURL string
	RequestTimeout time.Duration
}

// UploadConfig bounds accepted uploads.
type UploadConfig struct {
	MaxFileSizeBytes int64
	AllowedMIMEs     []string
}

// NotifyConfig configures the out-of-band moderator webhook.
type NotifyConfig struct {
	WebhookURL string
	APIKey     string
	Phone      string
	AppURL     string
	Timeout    time.Duration
	QueueSize  int
}

// CommunityConfig controls the community board listing and screening.
type CommunityConfig struct {
	Window            time.Duration
	ProfanityFilter   bool
	ProfanityWordlist string
}

// BrowseConfig tunes catalog caching.
type BrowseConfig struct {
	CacheTTL time.Duration
}

// StreamConfig tunes server-sent event live views.
type StreamConfig struct {
	Heartbeat time.Duration
	Buffer    int
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
		if !errors.As(err, &notFound) && !errors.Is(err, fs.ErrNotExist) {
			return nil, err
		}
	}

	cfg := &Config{}

	cfg.Env = v.GetString("ENV")
	cfg.Port = v.GetInt("PORT")
	cfg.APIPrefix = v.GetString("API_PREFIX")

	cfg.Database = DatabaseConfig{
		Host:         v.GetString("DB_HOST"),
		Port:         v.GetInt("DB_PORT"),
		User:         v.GetString("DB_USER"),
		Password:     v.GetString("DB_PASSWORD"),
		Name:         v.GetString("DB_NAME"),
		SSLMode:      v.GetString("DB_SSL_MODE"),
		MaxOpenConns: v.GetInt("DB_MAX_OPEN_CONNS"),
		MaxIdleConns: v.GetInt("DB_MAX_IDLE_CONNS"),
	}

	cfg.Redis = RedisConfig{
		Enabled:  v.GetBool("REDIS_ENABLED"),
		Host:     v.GetString("REDIS_HOST"),
		Port:     v.GetInt("REDIS_PORT"),
		Password: v.GetString("REDIS_PASSWORD"),
		DB:       v.GetInt("REDIS_DB"),
	}

	cfg.CORS = CORSConfig{AllowedOrigins: splitAndTrim(v.GetString("ALLOWED_ORIGINS"))}

	cfg.Log = LogConfig{
		Level:  v.GetString("LOG_LEVEL"),
		Format: v.GetString("LOG_FORMAT"),
	}

	cfg.Admin = AdminConfig{
		Password:      v.GetString("ADMIN_PASSWORD"),
		SessionSecret: v.GetString("ADMIN_SESSION_SECRET"),
		SessionTTL:    parseDuration(v.GetString("ADMIN_SESSION_TTL"), 12*time.Hour),
	}

	cfg.Storage = StorageConfig{
		Driver:         strings.ToLower(v.GetString("STORAGE_DRIVER")),
		Bucket:         v.GetString("STORAGE_BUCKET"),
		SupabaseURL:    strings.TrimRight(v.GetString("SUPABASE_URL"), "/"),
		ServiceRoleKey: v.GetString("SUPABASE_SERVICE_ROLE_KEY"),
		LocalDir:       v.GetString("LOCAL_STORAGE_DIR"),
		LocalPublicURL: strings.TrimRight(v.GetString("LOCAL_PUBLIC_URL"), "/"),
		RequestTimeout: parseDuration(v.GetString("STORAGE_REQUEST_TIMEOUT"), 30*time.Second),
	}

	maxUpload := v.GetInt64("UPLOAD_MAX_FILE_SIZE")
	if maxUpload <= 0 {
		maxUpload = 15 * 1024 * 1024
	}
	cfg.Upload = UploadConfig{
		MaxFileSizeBytes: maxUpload,
		AllowedMIMEs:     splitAndTrim(v.GetString("UPLOAD_ALLOWED_MIME_TYPES")),
	}

	cfg.Notify = NotifyConfig{
		WebhookURL: v.GetString("NOTIFY_WEBHOOK_URL"),
		APIKey:     v.GetString("CALLMEBOT_API_KEY"),
		Phone:      v.GetString("ADMIN_WHATSAPP_PHONE"),
		AppURL:     strings.TrimRight(v.GetString("APP_URL"), "/"),
		Timeout:    parseDuration(v.GetString("NOTIFY_TIMEOUT"), 10*time.Second),
		QueueSize:  v.GetInt("NOTIFY_QUEUE_SIZE"),
	}

	cfg.Community = CommunityConfig{
		Window:            parseDuration(v.GetString("COMMUNITY_WINDOW"), 60*24*time.Hour),
		ProfanityFilter:   v.GetBool("PROFANITY_FILTER"),
		ProfanityWordlist: v.GetString("PROFANITY_WORDLIST"),
	}

	cfg.Browse = BrowseConfig{
		CacheTTL: parseDuration(v.GetString("BROWSE_CACHE_TTL"), 2*time.Minute),
	}

	cfg.Stream = StreamConfig{
		Heartbeat: parseDuration(v.GetString("SSE_HEARTBEAT"), 25*time.Second),
		Buffer:    v.GetInt("SSE_BUFFER"),
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("ENV", EnvDevelopment)
	v.SetDefault("PORT", 8080)
	v.SetDefault("API_PREFIX", "/api/v1")

	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_PORT", 5432)
	v.SetDefault("DB_USER", "postgres")
	v.SetDefault("DB_PASSWORD", "postgres")
	v.SetDefault("DB_NAME", "study_vault")
	v.SetDefault("DB_SSL_MODE", "disable")
	v.SetDefault("DB_MAX_OPEN_CONNS", 10)
	v.SetDefault("DB_MAX_IDLE_CONNS", 5)

	v.SetDefault("REDIS_ENABLED", false)
	v.SetDefault("REDIS_HOST", "localhost")
	v.SetDefault("REDIS_PORT", 6379)
	v.SetDefault("REDIS_PASSWORD", "")
	v.SetDefault("REDIS_DB", 0)

	v.SetDefault("ALLOWED_ORIGINS", "")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "json")

	v.SetDefault("ADMIN_PASSWORD", "bitconnect2026")
	v.SetDefault("ADMIN_SESSION_SECRET", "dev_admin_session_secret")
	v.SetDefault("ADMIN_SESSION_TTL", "12h")

	v.SetDefault("STORAGE_DRIVER", StorageDriverLocal)
	v.SetDefault("STORAGE_BUCKET", "resources")
	v.SetDefault("SUPABASE_URL", "")
	v.SetDefault("SUPABASE_SERVICE_ROLE_KEY", "")
	v.SetDefault("LOCAL_STORAGE_DIR", "./uploads")
	v.SetDefault("LOCAL_PUBLIC_URL", "http://localhost:8080/storage/v1")
	v.SetDefault("STORAGE_REQUEST_TIMEOUT", "30s")

	v.SetDefault("UPLOAD_MAX_FILE_SIZE", 15*1024*1024)
	v.SetDefault("UPLOAD_ALLOWED_MIME_TYPES", "application/pdf,image/png,image/jpeg,image/jpg")

	v.SetDefault("NOTIFY_WEBHOOK_URL", "https://api.callmebot.com/whatsapp.php")
	v.SetDefault("CALLMEBOT_API_KEY", "")
	v.SetDefault("ADMIN_WHATSAPP_PHONE", "")
	v.SetDefault("APP_URL", "http://localhost:3000")
	v.SetDefault("NOTIFY_TIMEOUT", "10s")
	v.SetDefault("NOTIFY_QUEUE_SIZE", 32)

	v.SetDefault("COMMUNITY_WINDOW", "1440h")
	v.SetDefault("PROFANITY_FILTER", true)
	v.SetDefault("PROFANITY_WORDLIST", "")

	v.SetDefault("BROWSE_CACHE_TTL", "2m")
	v.SetDefault("SSE_HEARTBEAT", "25s")
	v.SetDefault("SSE_BUFFER", 16)
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
	result := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			result = append(result, trimmed)
		}
	}

	return result
}
