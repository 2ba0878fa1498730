package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"pdf-webhook/internal/domain"

	"gopkg.in/yaml.v3"
)

const (
	defaultPort             = "5000"
	defaultUploadPath       = "/tmp/uploads"
	defaultMaxContentLength = 16 * 1024 * 1024 // 16MB
	defaultLogLevel         = "INFO"
	defaultLogFormat        = "json"
	defaultServiceName      = "pdf-webhook"
	defaultTextEngine       = "mupdf"
	defaultRateBurst        = 10
)

// AppConfig implements the domain.Config interface
type AppConfig struct {
	ServerPort         string   `yaml:"port"`
	UploadPath         string   `yaml:"upload_folder"`
	MaxContentLength   int64    `yaml:"max_content_length"`
	LogLevel           string   `yaml:"log_level"`
	LogFormat          string   `yaml:"log_format"`
	AllowedExtensions  []string `yaml:"allowed_extensions"`
	BasePath           string   `yaml:"base_path"`
	ServiceName        string   `yaml:"service_name"`
	TextEngine         string   `yaml:"text_engine"`
	CORSAllowedOrigins []string `yaml:"cors_allowed_origins"`
	RateLimit          float64  `yaml:"rate_limit_rps"`
	RateBurst          int      `yaml:"rate_limit_burst"`
}

func defaultConfig() *AppConfig {
	return &AppConfig{
		ServerPort:         defaultPort,
		UploadPath:         defaultUploadPath,
		MaxContentLength:   defaultMaxContentLength,
		LogLevel:           defaultLogLevel,
		LogFormat:          defaultLogFormat,
		AllowedExtensions:  []string{"pdf"},
		ServiceName:        defaultServiceName,
		TextEngine:         defaultTextEngine,
		CORSAllowedOrigins: []string{"*"},
		RateBurst:          defaultRateBurst,
	}
}

// LoadConfig layers an optional YAML file between the defaults and the
// environment. An empty path skips the file.
func LoadConfig(path string) (domain.Config, error) {
	cfg := defaultConfig()
	if path != "" {
		raw, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		if err := yaml.Unmarshal(raw, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
		}
	}
	cfg.applyEnv()
	cfg.normalize()
	return cfg, nil
}

func (c *AppConfig) applyEnv() {
	c.ServerPort = getEnvOrDefault("PORT", c.ServerPort)
	c.UploadPath = getEnvOrDefault("UPLOAD_FOLDER", c.UploadPath)
	c.MaxContentLength = getEnvInt64OrDefault("MAX_CONTENT_LENGTH", c.MaxContentLength)
	c.LogLevel = getEnvOrDefault("LOG_LEVEL", c.LogLevel)
	c.LogFormat = getEnvOrDefault("LOG_FORMAT", c.LogFormat)
	c.AllowedExtensions = getEnvListOrDefault("ALLOWED_EXTENSIONS", c.AllowedExtensions)
	c.BasePath = getEnvOrDefault("BASE_PATH", c.BasePath)
	c.ServiceName = getEnvOrDefault("SERVICE_NAME", c.ServiceName)
	c.TextEngine = getEnvOrDefault("PDF_TEXT_ENGINE", c.TextEngine)
	c.CORSAllowedOrigins = getEnvListOrDefault("CORS_ALLOWED_ORIGINS", c.CORSAllowedOrigins)
	c.RateLimit = getEnvFloatOrDefault("RATE_LIMIT_RPS", c.RateLimit)
	c.RateBurst = getEnvIntOrDefault("RATE_LIMIT_BURST", c.RateBurst)
}

func (c *AppConfig) normalize() {
	if c.ServerPort == "" {
		c.ServerPort = defaultPort
	}
	if c.MaxContentLength <= 0 {
		c.MaxContentLength = defaultMaxContentLength
	}

	exts := make([]string, 0, len(c.AllowedExtensions))
	for _, ext := range c.AllowedExtensions {
		ext = strings.ToLower(strings.TrimPrefix(strings.TrimSpace(ext), "."))
		if ext != "" {
			exts = append(exts, ext)
		}
	}
	if len(exts) == 0 {
		exts = []string{"pdf"}
	}
	c.AllowedExtensions = exts

	c.BasePath = strings.TrimRight(strings.TrimSpace(c.BasePath), "/")
	if c.BasePath != "" && !strings.HasPrefix(c.BasePath, "/") {
		c.BasePath = "/" + c.BasePath
	}

	c.TextEngine = strings.ToLower(strings.TrimSpace(c.TextEngine))
	if len(c.CORSAllowedOrigins) == 0 {
		c.CORSAllowedOrigins = []string{"*"}
	}
	if c.RateLimit < 0 {
		c.RateLimit = 0
	}
	if c.RateBurst < 1 {
		c.RateBurst = defaultRateBurst
	}
}

// GetServerPort returns the server port
func (c *AppConfig) GetServerPort() string {
	return c.ServerPort
}

// GetUploadPath returns the upload directory path
func (c *AppConfig) GetUploadPath() string {
	return c.UploadPath
}

// GetMaxContentLength returns the maximum accepted request body size
func (c *AppConfig) GetMaxContentLength() int64 {
	return c.MaxContentLength
}

// GetLogLevel returns the logging level
func (c *AppConfig) GetLogLevel() string {
	return c.LogLevel
}

// GetLogFormat returns the log encoder, json or console
func (c *AppConfig) GetLogFormat() string {
	return c.LogFormat
}

// GetAllowedExtensions returns the accepted upload extensions without dots
func (c *AppConfig) GetAllowedExtensions() []string {
	return c.AllowedExtensions
}

func (c *AppConfig) GetBasePath() string {
	return c.BasePath
}

func (c *AppConfig) GetServiceName() string {
	return c.ServiceName
}

// GetTextEngine returns the page text source (mupdf or plain)
func (c *AppConfig) GetTextEngine() string {
	return c.TextEngine
}

func (c *AppConfig) GetCORSAllowedOrigins() []string {
	return c.CORSAllowedOrigins
}

// GetRateLimit returns requests per second for the webhook routes; 0 disables limiting
func (c *AppConfig) GetRateLimit() float64 {
	return c.RateLimit
}

func (c *AppConfig) GetRateBurst() int {
	return c.RateBurst
}

// Helper functions for environment variable handling
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt64OrDefault(key string, defaultValue int64) int64 {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.ParseInt(value, 10, 64); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvIntOrDefault(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvFloatOrDefault(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatValue, err := strconv.ParseFloat(value, 64); err == nil {
			return floatValue
		}
	}
	return defaultValue
}

// getEnvListOrDefault splits a comma separated variable
func getEnvListOrDefault(key string, defaultValue []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	var out []string
	for _, item := range strings.Split(value, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	if len(out) == 0 {
		return defaultValue
	}
	return out
}
