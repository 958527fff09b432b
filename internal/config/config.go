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
	Server ServerConfig
	DB     DBConfig
	JWT    JWTConfig
	Social SocialConfig
	CORS   CORSConfig
	Log    LogConfig
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

// JWTConfig holds session token signing and expiry settings.
type JWTConfig struct {
	Secret             string        `mapstructure:"secret"`
	AccessTokenExpiry  time.Duration `mapstructure:"access_expiry"`
	RefreshTokenExpiry time.Duration `mapstructure:"refresh_expiry"`
	Issuer             string        `mapstructure:"issuer"`
}

// SocialConfig holds social sign-in settings.
type SocialConfig struct {
	GoogleClientID string        `mapstructure:"google_client_id"`
	AppleClientID  string        `mapstructure:"apple_client_id"`
	JWKSRefresh    time.Duration `mapstructure:"jwks_refresh"`
	FetchTimeout   time.Duration `mapstructure:"fetch_timeout"`
	// IncludeUser controls whether sign-in responses carry the user object.
	// A deployment-level switch, not a per-request decision.
	IncludeUser bool `mapstructure:"include_user"`
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

// Load reads configuration from environment variables with the HUDDL_ prefix.
func Load() (*Config, error) {
	v := viper.New()
	v.SetEnvPrefix("HUDDL")
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
	v.SetDefault("db.user", "huddl")
	v.SetDefault("db.password", "huddl_secret")
	v.SetDefault("db.name", "huddl_db")
	v.SetDefault("db.sslmode", "disable")
	v.SetDefault("db.max_open", 25)
	v.SetDefault("db.max_idle", 10)

	// JWT defaults
	v.SetDefault("jwt.secret", "change-me-in-production")
	v.SetDefault("jwt.access_expiry", "15m")
	v.SetDefault("jwt.refresh_expiry", "168h")
	v.SetDefault("jwt.issuer", "huddl")

	// Social sign-in defaults
	v.SetDefault("social.google_client_id", "")
	v.SetDefault("social.apple_client_id", "")
	v.SetDefault("social.jwks_refresh", "1h")
	v.SetDefault("social.fetch_timeout", "10s")
	v.SetDefault("social.include_user", true)

	// Log defaults
	v.SetDefault("log.level", "debug")
	v.SetDefault("log.format", "console")

	// CORS defaults (localhost origins for development)
	v.SetDefault("cors.allowed_origins", "http://localhost:3000,http://127.0.0.1:3000")

	// Bind environment variables explicitly for nested keys
	envBindings := map[string]string{
		"server.port":             "HUDDL_SERVER_PORT",
		"server.read_timeout":     "HUDDL_SERVER_READ_TIMEOUT",
		"server.write_timeout":    "HUDDL_SERVER_WRITE_TIMEOUT",
		"server.environment":      "HUDDL_SERVER_ENVIRONMENT",
		"db.host":                 "HUDDL_DB_HOST",
		"db.port":                 "HUDDL_DB_PORT",
		"db.user":                 "HUDDL_DB_USER",
		"db.password":             "HUDDL_DB_PASSWORD",
		"db.name":                 "HUDDL_DB_NAME",
		"db.sslmode":              "HUDDL_DB_SSLMODE",
		"db.max_open":             "HUDDL_DB_MAX_OPEN",
		"db.max_idle":             "HUDDL_DB_MAX_IDLE",
		"jwt.secret":              "HUDDL_JWT_SECRET",
		"jwt.access_expiry":       "HUDDL_JWT_ACCESS_EXPIRY",
		"jwt.refresh_expiry":      "HUDDL_JWT_REFRESH_EXPIRY",
		"jwt.issuer":              "HUDDL_JWT_ISSUER",
		"social.google_client_id": "HUDDL_SOCIAL_GOOGLE_CLIENT_ID",
		"social.apple_client_id":  "HUDDL_SOCIAL_APPLE_CLIENT_ID",
		"social.jwks_refresh":     "HUDDL_SOCIAL_JWKS_REFRESH",
		"social.fetch_timeout":    "HUDDL_SOCIAL_FETCH_TIMEOUT",
		"social.include_user":     "HUDDL_SOCIAL_INCLUDE_USER",
		"log.level":               "HUDDL_LOG_LEVEL",
		"log.format":              "HUDDL_LOG_FORMAT",
		"cors.allowed_origins":    "HUDDL_CORS_ALLOWED_ORIGINS",
	}
	for key, env := range envBindings {
		_ = v.BindEnv(key, env)
	}

	cfg := &Config{}

	// Railway/Heroku/Render set a PORT env var. Use it if HUDDL_SERVER_PORT
	// is not explicitly set.
	serverPort := v.GetString("server.port")
	if port := os.Getenv("PORT"); port != "" && os.Getenv("HUDDL_SERVER_PORT") == "" {
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
	cfg.JWT = JWTConfig{
		Secret:             v.GetString("jwt.secret"),
		AccessTokenExpiry:  v.GetDuration("jwt.access_expiry"),
		RefreshTokenExpiry: v.GetDuration("jwt.refresh_expiry"),
		Issuer:             v.GetString("jwt.issuer"),
	}
	cfg.Social = SocialConfig{
		GoogleClientID: v.GetString("social.google_client_id"),
		AppleClientID:  v.GetString("social.apple_client_id"),
		JWKSRefresh:    v.GetDuration("social.jwks_refresh"),
		FetchTimeout:   v.GetDuration("social.fetch_timeout"),
		IncludeUser:    v.GetBool("social.include_user"),
	}
	cfg.Log = LogConfig{
		Level:  v.GetString("log.level"),
		Format: v.GetString("log.format"),
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

	return cfg, nil
}
