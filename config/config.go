package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// DefaultConfigPath is where Load looks for the JSON configuration file.
var DefaultConfigPath = filepath.Join("config", "config.json")

// AppConfig holds environment driven configuration values.
// Secrets have no defaults inside code and must come from the config file or the environment.
type AppConfig struct {
	AppPort    string
	AppVersion string
	// Gin framework configuration
	GinMode string
	GinPath string
	// Database
	DatabaseURI string
	DBHost      string
	DBPort      string
	DBUser      string
	DBPassword  string
	DBName      string
	// JWT
	JWTSecret        string
	JWTIssuer        string
	JWTAudience      string
	JWTExpiryMinutes int
	// HTTP
	AllowedOrigins     []string
	RateLimitPerMinute int
	// TimeZone is the IANA zone used to decide what "today" is for check-in dates.
	TimeZone string
	// Redis for caching and token revocation; disabled when RedisHost is empty.
	RedisHost     string
	RedisPort     int
	RedisDB       int
	RedisPassword string
	// Logging configuration
	LogLevel      string
	LogPath       string
	LogMaxSizeMB  int
	LogMaxBackups int
	LogMaxAgeDays int
	LogCompress   bool
}

// Load builds the configuration.
// Precedence: .env (dev only) -> config/config.json -> defaults -> environment variable overrides.
func Load(path string) (AppConfig, error) {
	if strings.EqualFold(os.Getenv("ENV"), "dev") {
		_ = godotenv.Load()
	}

	var cfg AppConfig
	if path == "" {
		path = DefaultConfigPath
	}
	if err := loadJSONConfig(path, &cfg); err != nil {
		return AppConfig{}, fmt.Errorf("read %s: %w", path, err)
	}

	applyDefaults(&cfg)

	if err := applyEnvOverrides(&cfg); err != nil {
		return AppConfig{}, err
	}

	if cfg.JWTSecret == "" {
		return AppConfig{}, errors.New("JWT_SECRET must be set in the config file or environment")
	}
	return cfg, nil
}

func getEnv(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

// loadJSONConfig reads the grouped JSON file into out if present. Returns error only for invalid JSON.
func loadJSONConfig(path string, out *AppConfig) error {
	f, err := os.Open(path)
	if err != nil {
		return nil // silently ignore missing file
	}
	defer f.Close()

	var raw map[string]any
	if err := json.NewDecoder(f).Decode(&raw); err != nil {
		return err
	}

	getString := func(m map[string]any, key string) string {
		if v, ok := m[key]; ok {
			if s, ok := v.(string); ok {
				return s
			}
		}
		return ""
	}
	getInt := func(m map[string]any, key string) int {
		if v, ok := m[key]; ok {
			switch t := v.(type) {
			case float64:
				return int(t)
			case int:
				return t
			}
		}
		return 0
	}
	getBool := func(m map[string]any, key string) bool {
		if v, ok := m[key]; ok {
			if b, ok := v.(bool); ok {
				return b
			}
		}
		return false
	}
	getStringSlice := func(m map[string]any, key string) []string {
		if v, ok := m[key]; ok {
			if arr, ok := v.([]any); ok {
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

	if app, ok := raw["app"].(map[string]any); ok {
		out.AppPort = getString(app, "AppPort")
		out.AppVersion = getString(app, "Version")
		out.TimeZone = getString(app, "TimeZone")
		out.RateLimitPerMinute = getInt(app, "RateLimitPerMinute")
		out.AllowedOrigins = getStringSlice(app, "AllowedOrigins")
	}

	if g, ok := raw["gin"].(map[string]any); ok {
		out.GinMode = getString(g, "Mode")
		out.GinPath = getString(g, "LogPath")
	}

	if jw, ok := raw["jwt"].(map[string]any); ok {
		out.JWTSecret = getString(jw, "Secret")
		out.JWTIssuer = getString(jw, "Issuer")
		out.JWTAudience = getString(jw, "Audience")
		out.JWTExpiryMinutes = getInt(jw, "ExpiryMinutes")
	}

	if dbs, ok := raw["database"].(map[string]any); ok {
		out.DatabaseURI = getString(dbs, "DatabaseURI")
		out.DBHost = getString(dbs, "DBHost")
		out.DBPort = getString(dbs, "DBPort")
		out.DBUser = getString(dbs, "DBUser")
		out.DBPassword = getString(dbs, "DBPassword")
		out.DBName = getString(dbs, "DBName")
	}

	if rds, ok := raw["redis"].(map[string]any); ok {
		out.RedisHost = getString(rds, "RedisHost")
		out.RedisPort = getInt(rds, "RedisPort")
		out.RedisDB = getInt(rds, "RedisDB")
		out.RedisPassword = getString(rds, "RedisPassword")
	}

	if lg, ok := raw["log"].(map[string]any); ok {
		out.LogLevel = getString(lg, "Level")
		out.LogPath = getString(lg, "Path")
		out.LogMaxSizeMB = getInt(lg, "MaxSizeMB")
		out.LogMaxBackups = getInt(lg, "MaxBackups")
		out.LogMaxAgeDays = getInt(lg, "MaxAgeDays")
		out.LogCompress = getBool(lg, "Compress")
	}

	return nil
}

// applyDefaults sets sane defaults for zero-value fields.
func applyDefaults(c *AppConfig) {
	if c.AppPort == "" {
		c.AppPort = "8080"
	}
	if c.AppVersion == "" {
		c.AppVersion = "1.0.0"
	}
	if c.GinMode == "" {
		c.GinMode = "release"
	}
	if c.GinPath == "" {
		c.GinPath = "logs/gin.log"
	}
	if c.JWTIssuer == "" {
		c.JWTIssuer = "vitalog-api"
	}
	if c.JWTAudience == "" {
		c.JWTAudience = "vitalog-client"
	}
	if c.JWTExpiryMinutes == 0 {
		c.JWTExpiryMinutes = 10080
	}
	if c.RateLimitPerMinute == 0 {
		c.RateLimitPerMinute = 60
	}
	if len(c.AllowedOrigins) == 0 {
		c.AllowedOrigins = []string{"http://localhost:3000"}
	}
	if c.TimeZone == "" {
		c.TimeZone = "UTC"
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
		c.DBName = "vitalog"
	}
	if c.RedisPort == 0 {
		c.RedisPort = 6379
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
}

// applyEnvOverrides maps known environment variables onto config values when present.
func applyEnvOverrides(c *AppConfig) error {
	var err error
	setInt := func(key string, dst *int) {
		v := getEnv(key, "")
		if v == "" || err != nil {
			return
		}
		n, convErr := strconv.Atoi(v)
		if convErr != nil {
			err = fmt.Errorf("invalid integer value for %s: %q", key, v)
			return
		}
		*dst = n
	}

	if v := getEnv("APP_PORT", ""); v != "" {
		c.AppPort = v
	}
	if v := getEnv("PORT", ""); v != "" {
		c.AppPort = v
	}
	if v := getEnv("APP_VERSION", ""); v != "" {
		c.AppVersion = v
	}
	if v := getEnv("GIN_MODE", ""); v != "" {
		c.GinMode = v
	}
	if v := getEnv("GIN_PATH", ""); v != "" {
		c.GinPath = v
	}
	if v := getEnv("JWT_SECRET", ""); v != "" {
		c.JWTSecret = v
	}
	if v := getEnv("JWT_ISSUER", ""); v != "" {
		c.JWTIssuer = v
	}
	if v := getEnv("JWT_AUDIENCE", ""); v != "" {
		c.JWTAudience = v
	}
	setInt("JWT_EXPIRY_MINUTES", &c.JWTExpiryMinutes)
	if v := getEnv("DATABASE_URI", ""); v != "" {
		c.DatabaseURI = v
	}
	if v := getEnv("DB_HOST", ""); v != "" {
		c.DBHost = v
	}
	if v := getEnv("DB_PORT", ""); v != "" {
		c.DBPort = v
	}
	if v := getEnv("DB_USER", ""); v != "" {
		c.DBUser = v
	}
	if v := getEnv("DB_PASSWORD", ""); v != "" {
		c.DBPassword = v
	}
	if v := getEnv("DB_NAME", ""); v != "" {
		c.DBName = v
	}
	setInt("RATE_LIMIT_PER_MINUTE", &c.RateLimitPerMinute)
	if v := getEnv("CORS_ALLOWED_ORIGINS", ""); v != "" {
		c.AllowedOrigins = splitAndTrim(v)
	}
	if v := getEnv("TIME_ZONE", ""); v != "" {
		c.TimeZone = v
	}
	if v := getEnv("REDIS_HOST", ""); v != "" {
		c.RedisHost = v
	}
	setInt("REDIS_PORT", &c.RedisPort)
	setInt("REDIS_DB", &c.RedisDB)
	if v := getEnv("REDIS_PASSWORD", ""); v != "" {
		c.RedisPassword = v
	}
	if v := getEnv("LOG_LEVEL", ""); v != "" {
		c.LogLevel = v
	}
	if v := getEnv("LOG_PATH", ""); v != "" {
		c.LogPath = v
	}
	setInt("LOG_MAX_SIZE_MB", &c.LogMaxSizeMB)
	setInt("LOG_MAX_BACKUPS", &c.LogMaxBackups)
	setInt("LOG_MAX_AGE_DAYS", &c.LogMaxAgeDays)
	if v := getEnv("LOG_COMPRESS", ""); v != "" {
		c.LogCompress = v == "true"
	}
	return err
}

func splitAndTrim(raw string) []string {
	items := []string{}
	for _, item := range strings.Split(raw, ",") {
		if trimmed := strings.TrimSpace(item); trimmed != "" {
			items = append(items, trimmed)
		}
	}
	return items
}
