package config

import (
	"encoding/json"
	"log"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// AppConfig holds environment driven configuration values.
// Sensitive data should never have defaults inside code and must be provided via env files or the environment.
type AppConfig struct {
	AppPort            string
	JWTSecret          string
	PublicBaseURL      string
	RateLimitPerMinute int
	AllowedOrigins     []string
	GinMode            string
	GinPath            string

	DatabaseURI string
	DBHost      string
	DBPort      string
	DBUser      string
	DBPassword  string
	DBName      string

	RedisHost     string
	RedisPort     int
	RedisDB       int
	RedisPassword string

	// SMTP for verification mail
	SMTPHost     string
	SMTPPort     int
	SMTPUsername string
	SMTPPassword string
	SMTPFrom     string
	SMTPFromName string
	SMTPTLS      bool

	// Object storage for uploaded images
	StorageBackend  string // "s3" or "local"
	S3Bucket        string
	S3Region        string
	S3PublicBaseURL string
	UploadDir       string

	LogLevel      string
	LogPath       string
	LogMaxSizeMB  int
	LogMaxBackups int
	LogMaxAgeDays int
	LogCompress   bool

	// Frontend process
	WebPort       string
	BackendAPIURL string
}

var cfg AppConfig
var loaded bool

// Load loads the application configuration once during boot.
// Precedence: config/config.json -> defaults -> environment variable overrides.
func Load() AppConfig {
	if loaded {
		return cfg
	}

	_ = loadJSONConfig(filepath.Join("config", "config.json"), &cfg)
	applyDefaults(&cfg)
	applyEnvOverrides(&cfg)

	if cfg.JWTSecret == "" {
		log.Fatal("JWT_SECRET must be set in environment variables")
	}

	loaded = true
	return cfg
}

// Get returns the cached configuration, loading it if necessary.
func Get() AppConfig {
	if !loaded {
		return Load()
	}
	return cfg
}

// loadJSONConfig reads a grouped JSON file into out if present. Returns error only for invalid JSON.
func loadJSONConfig(path string, out *AppConfig) error {
	f, err := os.Open(path)
	if err != nil {
		return nil // silently ignore missing file
	}
	defer f.Close()

	var raw map[string]map[string]any
	if err := json.NewDecoder(f).Decode(&raw); err != nil {
		return err
	}

	getString := func(section, key string) string {
		if m, ok := raw[section]; ok {
			if s, ok := m[key].(string); ok {
				return s
			}
		}
		return ""
	}
	getInt := func(section, key string) int {
		if m, ok := raw[section]; ok {
			switch t := m[key].(type) {
			case float64:
				return int(t)
			case json.Number:
				i, _ := t.Int64()
				return int(i)
			}
		}
		return 0
	}
	getBool := func(section, key string) bool {
		if m, ok := raw[section]; ok {
			if b, ok := m[key].(bool); ok {
				return b
			}
		}
		return false
	}
	getStringSlice := func(section, key string) []string {
		if m, ok := raw[section]; ok {
			if arr, ok := m[key].([]any); ok {
				res := make([]string, 0, len(arr))
				for _, it := range arr {
					if s, ok := it.(string); ok {
						res = append(res, s)
					}
				}
				return res
			}
		}
		return nil
	}

	out.AppPort = getString("app", "AppPort")
	out.JWTSecret = getString("app", "JWTSecret")
	out.PublicBaseURL = getString("app", "PublicBaseURL")
	out.RateLimitPerMinute = getInt("app", "RateLimitPerMinute")
	out.AllowedOrigins = getStringSlice("app", "AllowedOrigins")
	out.GinMode = getString("app", "GinMode")
	out.GinPath = getString("app", "GinPath")

	out.DatabaseURI = getString("database", "DatabaseURI")
	out.DBHost = getString("database", "DBHost")
	out.DBPort = getString("database", "DBPort")
	out.DBUser = getString("database", "DBUser")
	out.DBPassword = getString("database", "DBPassword")
	out.DBName = getString("database", "DBName")

	out.RedisHost = getString("redis", "RedisHost")
	out.RedisPort = getInt("redis", "RedisPort")
	out.RedisDB = getInt("redis", "RedisDB")
	out.RedisPassword = getString("redis", "RedisPassword")

	out.SMTPHost = getString("smtp", "SMTPHost")
	out.SMTPPort = getInt("smtp", "SMTPPort")
	out.SMTPUsername = getString("smtp", "SMTPUsername")
	out.SMTPPassword = getString("smtp", "SMTPPassword")
	out.SMTPFrom = getString("smtp", "SMTPFrom")
	out.SMTPFromName = getString("smtp", "SMTPFromName")
	out.SMTPTLS = getBool("smtp", "SMTPTLS")

	out.StorageBackend = getString("storage", "Backend")
	out.S3Bucket = getString("storage", "S3Bucket")
	out.S3Region = getString("storage", "S3Region")
	out.S3PublicBaseURL = getString("storage", "S3PublicBaseURL")
	out.UploadDir = getString("storage", "UploadDir")

	out.LogLevel = getString("log", "Level")
	out.LogPath = getString("log", "Path")
	out.LogMaxSizeMB = getInt("log", "MaxSizeMB")
	out.LogMaxBackups = getInt("log", "MaxBackups")
	out.LogMaxAgeDays = getInt("log", "MaxAgeDays")
	out.LogCompress = getBool("log", "Compress")

	out.WebPort = getString("web", "WebPort")
	out.BackendAPIURL = getString("web", "BackendAPIURL")

	return nil
}

// applyDefaults sets sane defaults for zero-value fields.
func applyDefaults(c *AppConfig) {
	if c.AppPort == "" {
		c.AppPort = "8080"
	}
	if c.PublicBaseURL == "" {
		c.PublicBaseURL = "http://localhost:" + c.AppPort
	}
	if c.GinMode == "" {
		c.GinMode = "release"
	}
	if c.GinPath == "" {
		c.GinPath = "logs/go_gin.log"
	}
	if c.RateLimitPerMinute == 0 {
		c.RateLimitPerMinute = 60
	}
	if len(c.AllowedOrigins) == 0 {
		c.AllowedOrigins = []string{"*"}
	}
	if c.DBHost == "" {
		c.DBHost = "127.0.0.1"
	}
	if c.DBPort == "" {
		c.DBPort = "3306"
	}
	if c.DBUser == "" {
		c.DBUser = "root"
	}
	if c.DBName == "" {
		c.DBName = "manproject"
	}
	if c.RedisHost == "" {
		c.RedisHost = "127.0.0.1"
	}
	if c.RedisPort == 0 {
		c.RedisPort = 6379
	}
	if c.SMTPPort == 0 {
		c.SMTPPort = 587
	}
	if c.StorageBackend == "" {
		c.StorageBackend = "local"
	}
	if c.UploadDir == "" {
		c.UploadDir = filepath.Join("static", "uploads")
	}
	if c.LogLevel == "" {
		c.LogLevel = "info"
	}
	if c.LogMaxSizeMB == 0 {
		c.LogMaxSizeMB = 100
	}
	if c.LogMaxBackups == 0 {
		c.LogMaxBackups = 3
	}
	if c.LogMaxAgeDays == 0 {
		c.LogMaxAgeDays = 7
	}
	if c.WebPort == "" {
		c.WebPort = "8000"
	}
	if c.BackendAPIURL == "" {
		c.BackendAPIURL = "http://localhost:" + c.AppPort + "/api"
	}
}

// applyEnvOverrides maps known environment variables onto config values when present.
func applyEnvOverrides(c *AppConfig) {
	setString(&c.AppPort, "APP_PORT")
	setString(&c.JWTSecret, "JWT_SECRET")
	setString(&c.PublicBaseURL, "PUBLIC_BASE_URL")
	setInt(&c.RateLimitPerMinute, "RATE_LIMIT_PER_MINUTE")
	setList(&c.AllowedOrigins, "CORS_ALLOWED_ORIGINS")
	setString(&c.GinMode, "GIN_MODE")
	setString(&c.GinPath, "GIN_PATH")

	setString(&c.DatabaseURI, "DATABASE_URI")
	setString(&c.DBHost, "DB_HOST")
	setString(&c.DBPort, "DB_PORT")
	setString(&c.DBUser, "DB_USER")
	setString(&c.DBPassword, "DB_PASSWORD")
	setString(&c.DBName, "DB_NAME")

	setString(&c.RedisHost, "REDIS_HOST")
	setInt(&c.RedisPort, "REDIS_PORT")
	setInt(&c.RedisDB, "REDIS_DB")
	setString(&c.RedisPassword, "REDIS_PASSWORD")

	setString(&c.SMTPHost, "SMTP_HOST")
	setInt(&c.SMTPPort, "SMTP_PORT")
	setString(&c.SMTPUsername, "SMTP_USERNAME")
	setString(&c.SMTPPassword, "SMTP_PASSWORD")
	setString(&c.SMTPFrom, "SMTP_FROM")
	setString(&c.SMTPFromName, "SMTP_FROM_NAME")
	setBool(&c.SMTPTLS, "SMTP_TLS")

	setString(&c.StorageBackend, "STORAGE_BACKEND")
	setString(&c.S3Bucket, "S3_BUCKET")
	setString(&c.S3Region, "S3_REGION")
	setString(&c.S3PublicBaseURL, "S3_PUBLIC_BASE_URL")
	setString(&c.UploadDir, "UPLOAD_DIR")

	setString(&c.LogLevel, "LOG_LEVEL")
	setString(&c.LogPath, "LOG_PATH")
	setInt(&c.LogMaxSizeMB, "LOG_MAX_SIZE_MB")
	setInt(&c.LogMaxBackups, "LOG_MAX_BACKUPS")
	setInt(&c.LogMaxAgeDays, "LOG_MAX_AGE_DAYS")
	setBool(&c.LogCompress, "LOG_COMPRESS")

	setString(&c.WebPort, "WEB_PORT")
	setString(&c.BackendAPIURL, "BACKEND_API_URL")
}

func setString(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

func setInt(dst *int, key string) {
	if v := os.Getenv(key); v != "" {
		i, err := strconv.Atoi(v)
		if err != nil {
			log.Fatalf("invalid integer value for %s: %v", key, err)
		}
		*dst = i
	}
}

func setBool(dst *bool, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v == "true" || v == "1"
	}
}

func setList(dst *[]string, key string) {
	raw := os.Getenv(key)
	if raw == "" {
		return
	}
	items := []string{}
	for _, item := range strings.Split(raw, ",") {
		if trimmed := strings.TrimSpace(item); trimmed != "" {
			items = append(items, trimmed)
		}
	}
	if len(items) > 0 {
		*dst = items
	}
}
