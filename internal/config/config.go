package config

import (
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all application configuration.
type Config struct {
	Server    ServerConfig
	Log       LogConfig
	Model     ModelConfig
	Storage   StorageConfig
	S3        S3Config
	Upload    UploadConfig
	CORS      CORSConfig
	RateLimit RateLimitConfig
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port         string        `mapstructure:"port"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
	Environment  string        `mapstructure:"environment"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// ModelConfig holds settings for the hosted model used to assess claims.
type ModelConfig struct {
	Provider        string  `mapstructure:"provider"`
	APIKey          string  `mapstructure:"api_key"`
	DefaultModel    string  `mapstructure:"default_model"`
	DisplayName     string  `mapstructure:"display_name"`
	Project         string  `mapstructure:"project"`
	Location        string  `mapstructure:"location"`
	Endpoint        string  `mapstructure:"endpoint"`
	BaseURL         string  `mapstructure:"base_url"`
	TimeoutSecs     int     `mapstructure:"timeout_secs"`
	MaxPromptChars  int     `mapstructure:"max_prompt_chars"`
	Temperature     float32 `mapstructure:"temperature"`
	MaxOutputTokens int     `mapstructure:"max_output_tokens"`
}

// Timeout returns the per-call model timeout, defaulting to 30s.
func (m *ModelConfig) Timeout() time.Duration {
	if m.TimeoutSecs <= 0 {
		return 30 * time.Second
	}
	return time.Duration(m.TimeoutSecs) * time.Second
}

// ModelID returns the identifier reported in responses. Vertex deployments
// are identified by their endpoint.
func (m *ModelConfig) ModelID() string {
	if m.DisplayName != "" {
		return m.DisplayName
	}
	if m.Provider == "vertex" && m.Endpoint != "" {
		return m.Endpoint
	}
	if m.DefaultModel != "" {
		return m.DefaultModel
	}
	return m.Endpoint
}

// StorageConfig selects the temp document store.
type StorageConfig struct {
	Backend string `mapstructure:"backend"`
	TempDir string `mapstructure:"temp_dir"`
}

// S3Config holds AWS S3 settings for the s3 storage backend.
type S3Config struct {
	Region    string `mapstructure:"region"`
	Bucket    string `mapstructure:"bucket"`
	Endpoint  string `mapstructure:"endpoint"`
	AccessKey string `mapstructure:"access_key"`
	SecretKey string `mapstructure:"secret_key"`
	Prefix    string `mapstructure:"prefix"`
}

// UploadConfig holds upload limits.
type UploadConfig struct {
	MaxFileSizeMB int64 `mapstructure:"max_file_size_mb"`
}

// MaxBytes returns the upload limit in bytes.
func (u *UploadConfig) MaxBytes() int64 {
	return u.MaxFileSizeMB * 1024 * 1024
}

// CORSConfig holds CORS settings.
type CORSConfig struct {
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

// RateLimitConfig throttles POST /analyze. Zero RequestsPerSecond disables it.
type RateLimitConfig struct {
	RequestsPerSecond float64 `mapstructure:"requests_per_second"`
	Burst             int     `mapstructure:"burst"`
}

// Load reads configuration from environment variables with the CLAIMRISK_ prefix.
func Load() (*Config, error) {
	v := viper.New()
	v.SetEnvPrefix("CLAIMRISK")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Server defaults
	v.SetDefault("server.port", ":8080")
	v.SetDefault("server.read_timeout", "30s")
	v.SetDefault("server.write_timeout", "90s")
	v.SetDefault("server.environment", "development")

	// Log defaults
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")

	// Model defaults
	v.SetDefault("model.provider", "gemini")
	v.SetDefault("model.api_key", "")
	v.SetDefault("model.default_model", "gemini-2.0-flash")
	v.SetDefault("model.display_name", "")
	v.SetDefault("model.project", "")
	v.SetDefault("model.location", "us-central1")
	v.SetDefault("model.endpoint", "")
	v.SetDefault("model.base_url", "")
	v.SetDefault("model.timeout_secs", 30)
	v.SetDefault("model.max_prompt_chars", 3000)
	v.SetDefault("model.temperature", 0.2)
	v.SetDefault("model.max_output_tokens", 512)

	// Storage defaults
	v.SetDefault("storage.backend", "local")
	v.SetDefault("storage.temp_dir", "")

	// S3 defaults
	v.SetDefault("s3.region", "us-east-1")
	v.SetDefault("s3.bucket", "claimrisk-staging")
	v.SetDefault("s3.endpoint", "")
	v.SetDefault("s3.prefix", "claims")

	// Upload defaults
	v.SetDefault("upload.max_file_size_mb", 20)

	v.SetDefault("cors.allowed_origins", "http://localhost:3000,http://127.0.0.1:3000")

	v.SetDefault("ratelimit.requests_per_second", 0)
	v.SetDefault("ratelimit.burst", 5)

	// Bind environment variables explicitly for nested keys
	envBindings := map[string]string{
		"server.port":                   "CLAIMRISK_SERVER_PORT",
		"server.read_timeout":           "CLAIMRISK_SERVER_READ_TIMEOUT",
		"server.write_timeout":          "CLAIMRISK_SERVER_WRITE_TIMEOUT",
		"server.environment":            "CLAIMRISK_SERVER_ENVIRONMENT",
		"log.level":                     "CLAIMRISK_LOG_LEVEL",
		"log.format":                    "CLAIMRISK_LOG_FORMAT",
		"model.provider":                "CLAIMRISK_MODEL_PROVIDER",
		"model.api_key":                 "CLAIMRISK_MODEL_API_KEY",
		"model.default_model":           "CLAIMRISK_MODEL_DEFAULT_MODEL",
		"model.display_name":            "CLAIMRISK_MODEL_DISPLAY_NAME",
		"model.project":                 "CLAIMRISK_MODEL_PROJECT",
		"model.location":                "CLAIMRISK_MODEL_LOCATION",
		"model.endpoint":                "CLAIMRISK_MODEL_ENDPOINT",
		"model.base_url":                "CLAIMRISK_MODEL_BASE_URL",
		"model.timeout_secs":            "CLAIMRISK_MODEL_TIMEOUT_SECS",
		"model.max_prompt_chars":        "CLAIMRISK_MODEL_MAX_PROMPT_CHARS",
		"model.temperature":             "CLAIMRISK_MODEL_TEMPERATURE",
		"model.max_output_tokens":       "CLAIMRISK_MODEL_MAX_OUTPUT_TOKENS",
		"storage.backend":               "CLAIMRISK_STORAGE_BACKEND",
		"storage.temp_dir":              "CLAIMRISK_STORAGE_TEMP_DIR",
		"s3.region":                     "CLAIMRISK_S3_REGION",
		"s3.bucket":                     "CLAIMRISK_S3_BUCKET",
		"s3.endpoint":                   "CLAIMRISK_S3_ENDPOINT",
		"s3.access_key":                 "CLAIMRISK_S3_ACCESS_KEY",
		"s3.secret_key":                 "CLAIMRISK_S3_SECRET_KEY",
		"s3.prefix":                     "CLAIMRISK_S3_PREFIX",
		"upload.max_file_size_mb":       "CLAIMRISK_UPLOAD_MAX_FILE_SIZE_MB",
		"cors.allowed_origins":          "CLAIMRISK_CORS_ALLOWED_ORIGINS",
		"ratelimit.requests_per_second": "CLAIMRISK_RATELIMIT_REQUESTS_PER_SECOND",
		"ratelimit.burst":               "CLAIMRISK_RATELIMIT_BURST",
	}
	for key, env := range envBindings {
		_ = v.BindEnv(key, env)
	}

	cfg := &Config{}

	// Cloud Run sets PORT. Use it unless CLAIMRISK_SERVER_PORT is explicitly set.
	serverPort := v.GetString("server.port")
	if port := os.Getenv("PORT"); port != "" && os.Getenv("CLAIMRISK_SERVER_PORT") == "" {
		serverPort = ":" + port
	}

	cfg.Server = ServerConfig{
		Port:         serverPort,
		ReadTimeout:  v.GetDuration("server.read_timeout"),
		WriteTimeout: v.GetDuration("server.write_timeout"),
		Environment:  v.GetString("server.environment"),
	}
	cfg.Log = LogConfig{
		Level:  v.GetString("log.level"),
		Format: v.GetString("log.format"),
	}
	cfg.Model = ModelConfig{
		Provider:        v.GetString("model.provider"),
		APIKey:          v.GetString("model.api_key"),
		DefaultModel:    v.GetString("model.default_model"),
		DisplayName:     v.GetString("model.display_name"),
		Project:         v.GetString("model.project"),
		Location:        v.GetString("model.location"),
		Endpoint:        v.GetString("model.endpoint"),
		BaseURL:         v.GetString("model.base_url"),
		TimeoutSecs:     v.GetInt("model.timeout_secs"),
		MaxPromptChars:  v.GetInt("model.max_prompt_chars"),
		Temperature:     float32(v.GetFloat64("model.temperature")),
		MaxOutputTokens: v.GetInt("model.max_output_tokens"),
	}
	cfg.Storage = StorageConfig{
		Backend: v.GetString("storage.backend"),
		TempDir: v.GetString("storage.temp_dir"),
	}
	cfg.S3 = S3Config{
		Region:    v.GetString("s3.region"),
		Bucket:    v.GetString("s3.bucket"),
		Endpoint:  v.GetString("s3.endpoint"),
		AccessKey: v.GetString("s3.access_key"),
		SecretKey: v.GetString("s3.secret_key"),
		Prefix:    v.GetString("s3.prefix"),
	}
	cfg.Upload = UploadConfig{
		MaxFileSizeMB: v.GetInt64("upload.max_file_size_mb"),
	}

	// Parse CORS allowed origins from comma-separated string
	var corsOrigins []string
	for _, o := range strings.Split(v.GetString("cors.allowed_origins"), ",") {
		o = strings.TrimSpace(o)
		if o != "" {
			corsOrigins = append(corsOrigins, o)
		}
	}
	cfg.CORS = CORSConfig{AllowedOrigins: corsOrigins}

	cfg.RateLimit = RateLimitConfig{
		RequestsPerSecond: v.GetFloat64("ratelimit.requests_per_second"),
		Burst:             v.GetInt("ratelimit.burst"),
	}

	return cfg, nil
}
