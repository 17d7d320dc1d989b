package config

import (
	"errors"
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
	Env       string
	Port      int
	APIPrefix string
	PublicURL string

	Database DatabaseConfig
	Redis    RedisConfig
	JWT      JWTConfig
	CORS     CORSConfig
	Log      LogConfig
	Search   SearchConfig
	Session  SessionConfig
	Storage  StorageConfig
	AI       AIConfig
	HomeFeed HomeFeedConfig
	Reports  ReportsConfig
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
	Host     string
	Port     int
	Password string
	DB       int
}

type JWTConfig struct {
	Secret            string
	Expiration        time.Duration
	RefreshExpiration time.Duration
}

type CORSConfig struct {
	AllowedOrigins []string
}

type LogConfig struct {
	Level  string
	Format string
}

// SearchConfig tunes the multi-entity search pipeline.
type SearchConfig struct {
	SearchDebounce     time.Duration
	SuggestionDebounce time.Duration
	AllTabLimit        int
	SingleTabLimit     int
	SuggestionPerTable int
	SuggestionTotal    int
	SuggestionCacheTTL time.Duration
}

// SessionConfig governs profile rehydration after auth events.
type SessionConfig struct {
	ProfileFetchRetries int
	ProfileFetchDelay   time.Duration
}

// StorageConfig controls bucket storage and signed downloads.
type StorageConfig struct {
	BaseDir          string
	SignedURLSecret  string
	SignedURLTTL     time.Duration
	MaxFileSizeBytes int64
	AllowedMIMEs     []string
}

// AIConfig configures the generative AI integration.
type AIConfig struct {
	Enabled        bool
	APIKey         string
	Model          string
	RequestTimeout time.Duration
	Temperature    float32
	QuizPassScore  int
}

// HomeFeedConfig governs home feed composition and caching.
type HomeFeedConfig struct {
	Enabled          bool
	CacheTTL         time.Duration
	RecommendedLimit int
	ActiveCoursesMax int
}

// ReportsConfig configures asynchronous application exports.
type ReportsConfig struct {
	Enabled           bool
	StorageDir        string
	SignedURLSecret   string
	SignedURLTTL      time.Duration
	CleanupInterval   time.Duration
	WorkerConcurrency int
	WorkerRetries     int
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
			return nil, err
		}
	}

	cfg := &Config{}

	cfg.Env = v.GetString("ENV")
	cfg.Port = v.GetInt("PORT")
	cfg.APIPrefix = v.GetString("API_PREFIX")
	cfg.PublicURL = v.GetString("PUBLIC_URL")

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
		Host:     v.GetString("REDIS_HOST"),
		Port:     v.GetInt("REDIS_PORT"),
		Password: v.GetString("REDIS_PASSWORD"),
		DB:       v.GetInt("REDIS_DB"),
	}

	cfg.JWT = JWTConfig{
		Secret:            v.GetString("JWT_SECRET"),
		Expiration:        parseDuration(v.GetString("JWT_EXPIRATION"), 24*time.Hour),
		RefreshExpiration: parseDuration(v.GetString("REFRESH_TOKEN_EXPIRATION"), 7*24*time.Hour),
	}

	cfg.CORS = CORSConfig{AllowedOrigins: splitAndTrim(v.GetString("ALLOWED_ORIGINS"))}

	cfg.Log = LogConfig{
		Level:  v.GetString("LOG_LEVEL"),
		Format: v.GetString("LOG_FORMAT"),
	}

	cfg.Search = SearchConfig{
		SearchDebounce:     parseDuration(v.GetString("SEARCH_DEBOUNCE"), 300*time.Millisecond),
		SuggestionDebounce: parseDuration(v.GetString("SUGGESTION_DEBOUNCE"), 200*time.Millisecond),
		AllTabLimit:        v.GetInt("SEARCH_ALL_TAB_LIMIT"),
		SingleTabLimit:     v.GetInt("SEARCH_SINGLE_TAB_LIMIT"),
		SuggestionPerTable: v.GetInt("SUGGESTION_PER_TABLE"),
		SuggestionTotal:    v.GetInt("SUGGESTION_TOTAL"),
		SuggestionCacheTTL: parseDuration(v.GetString("SUGGESTION_CACHE_TTL"), 30*time.Second),
	}

	cfg.Session = SessionConfig{
		ProfileFetchRetries: v.GetInt("SESSION_PROFILE_RETRIES"),
		ProfileFetchDelay:   parseDuration(v.GetString("SESSION_PROFILE_RETRY_DELAY"), 500*time.Millisecond),
	}

	maxUploadSize := v.GetInt64("STORAGE_MAX_FILE_SIZE")
	if maxUploadSize <= 0 {
		maxUploadSize = 10 * 1024 * 1024
	}
	cfg.Storage = StorageConfig{
		BaseDir:          v.GetString("STORAGE_BASE_DIR"),
		SignedURLSecret:  v.GetString("STORAGE_SIGNED_URL_SECRET"),
		SignedURLTTL:     parseDuration(v.GetString("STORAGE_SIGNED_URL_TTL"), 15*time.Minute),
		MaxFileSizeBytes: maxUploadSize,
		AllowedMIMEs:     splitAndTrim(v.GetString("STORAGE_ALLOWED_MIME_TYPES")),
	}

	cfg.AI = AIConfig{
		Enabled:        v.GetBool("ENABLE_AI"),
		APIKey:         v.GetString("GEMINI_API_KEY"),
		Model:          v.GetString("GEMINI_MODEL"),
		RequestTimeout: parseDuration(v.GetString("AI_REQUEST_TIMEOUT"), 30*time.Second),
		Temperature:    float32(v.GetFloat64("AI_TEMPERATURE")),
		QuizPassScore:  v.GetInt("QUIZ_PASS_SCORE"),
	}

	cfg.HomeFeed = HomeFeedConfig{
		Enabled:          v.GetBool("ENABLE_HOME_FEED"),
		CacheTTL:         parseDuration(v.GetString("HOME_FEED_CACHE_TTL"), 5*time.Minute),
		RecommendedLimit: v.GetInt("HOME_FEED_RECOMMENDED_LIMIT"),
		ActiveCoursesMax: v.GetInt("HOME_FEED_ACTIVE_COURSES_MAX"),
	}

	cfg.Reports = ReportsConfig{
		Enabled:           v.GetBool("ENABLE_REPORTS"),
		StorageDir:        v.GetString("REPORTS_STORAGE_DIR"),
		SignedURLSecret:   v.GetString("REPORTS_SIGNED_URL_SECRET"),
		SignedURLTTL:      parseDuration(v.GetString("REPORTS_SIGNED_URL_TTL"), 24*time.Hour),
		CleanupInterval:   parseDuration(v.GetString("REPORTS_CLEANUP_INTERVAL"), time.Hour),
		WorkerConcurrency: v.GetInt("REPORTS_WORKER_CONCURRENCY"),
		WorkerRetries:     v.GetInt("REPORTS_WORKER_RETRIES"),
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("ENV", EnvDevelopment)
	v.SetDefault("PORT", 8080)
	v.SetDefault("API_PREFIX", "/api/v1")
	v.SetDefault("PUBLIC_URL", "http://localhost:8080")

	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_PORT", 5432)
	v.SetDefault("DB_USER", "postgres")
	v.SetDefault("DB_PASSWORD", "postgres")
	v.SetDefault("DB_NAME", "skillbridge")
	v.SetDefault("DB_SSL_MODE", "disable")
	v.SetDefault("DB_MAX_OPEN_CONNS", 10)
	v.SetDefault("DB_MAX_IDLE_CONNS", 5)

	v.SetDefault("REDIS_HOST", "localhost")
	v.SetDefault("REDIS_PORT", 6379)
	v.SetDefault("REDIS_PASSWORD", "")
	v.SetDefault("REDIS_DB", 0)

	v.SetDefault("JWT_SECRET", "dev_secret")
	v.SetDefault("JWT_EXPIRATION", "24h")
	v.SetDefault("REFRESH_TOKEN_EXPIRATION", "168h")

	v.SetDefault("ALLOWED_ORIGINS", "")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "json")

	v.SetDefault("SEARCH_DEBOUNCE", "300ms")
	v.SetDefault("SUGGESTION_DEBOUNCE", "200ms")
	v.SetDefault("SEARCH_ALL_TAB_LIMIT", 5)
	v.SetDefault("SEARCH_SINGLE_TAB_LIMIT", 10)
	v.SetDefault("SUGGESTION_PER_TABLE", 2)
	v.SetDefault("SUGGESTION_TOTAL", 5)
	v.SetDefault("SUGGESTION_CACHE_TTL", "30s")

	v.SetDefault("SESSION_PROFILE_RETRIES", 5)
	v.SetDefault("SESSION_PROFILE_RETRY_DELAY", "500ms")

	v.SetDefault("STORAGE_BASE_DIR", "./storage")
	v.SetDefault("STORAGE_SIGNED_URL_SECRET", "dev_storage_secret")
	v.SetDefault("STORAGE_SIGNED_URL_TTL", "15m")
	v.SetDefault("STORAGE_MAX_FILE_SIZE", 10*1024*1024)
	v.SetDefault("STORAGE_ALLOWED_MIME_TYPES", "application/pdf,image/png,image/jpeg,image/webp")

	v.SetDefault("ENABLE_AI", false)
	v.SetDefault("GEMINI_API_KEY", "")
	v.SetDefault("GEMINI_MODEL", "gemini-1.5-pro-latest")
	v.SetDefault("AI_REQUEST_TIMEOUT", "30s")
	v.SetDefault("AI_TEMPERATURE", 0.4)
	v.SetDefault("QUIZ_PASS_SCORE", 70)

	v.SetDefault("ENABLE_HOME_FEED", true)
	v.SetDefault("HOME_FEED_CACHE_TTL", "5m")
	v.SetDefault("HOME_FEED_RECOMMENDED_LIMIT", 10)
	v.SetDefault("HOME_FEED_ACTIVE_COURSES_MAX", 5)

	v.SetDefault("ENABLE_REPORTS", false)
	v.SetDefault("REPORTS_STORAGE_DIR", "./exports")
	v.SetDefault("REPORTS_SIGNED_URL_SECRET", "dev_reports_secret")
	v.SetDefault("REPORTS_SIGNED_URL_TTL", "24h")
	v.SetDefault("REPORTS_CLEANUP_INTERVAL", "1h")
	v.SetDefault("REPORTS_WORKER_CONCURRENCY", 1)
	v.SetDefault("REPORTS_WORKER_RETRIES", 3)
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
