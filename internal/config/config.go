package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Server ServerConfig `json:"server"`

	// MongoDB holds messages, jobs, users, sessions and attachments
	MongoDB MongoDBConfig `json:"mongodb"`

	// Database is the MySQL notification inbox
	Database DatabaseConfig `json:"database"`

	Session SessionConfig `json:"session"`

	Chat ChatConfig `json:"chat"`

	Notification NotificationConfig `json:"notification"`

	Logging LoggingConfig `json:"logging"`
}

// ServerConfig contains server-related configuration
type ServerConfig struct {
	Host           string   `json:"host"`
	Port           string   `json:"port"`
	HealthGRPCPort string   `json:"health_grpc_port"`
	ReadTimeout    int      `json:"read_timeout"`
	WriteTimeout   int      `json:"write_timeout"`
	AllowedOrigins []string `json:"allowed_origins"`
	Environment    string   `json:"environment"` // development, staging, production
}

type MongoDBConfig struct {
	URI                    string        `json:"uri"` // overrides the host/port fields when set
	Host                   string        `json:"host"`
	Port                   string        `json:"port"`
	Username               string        `json:"username"`
	Password               string        `json:"password"`
	Database               string        `json:"database"`
	ServerSelectionTimeout time.Duration `json:"server_selection_timeout"`
}

// DatabaseConfig contains database connection configuration
type DatabaseConfig struct {
	Host         string `json:"host"`
	Port         string `json:"port"`
	Username     string `json:"username"`
	Password     string `json:"password"`
	DatabaseName string `json:"database_name"`
	MaxOpenConns int    `json:"max_open_conns"`
	MaxIdleConns int    `json:"max_idle_conns"`
}

// SessionConfig describes how realtime connections are tied back to a login.
type SessionConfig struct {
	CookieName string `json:"cookie_name"`
	Secret     string `json:"-"`
	Collection string `json:"collection"`
	JWTSecret  string `json:"-"`
	JWTIssuer  string `json:"jwt_issuer"`
}

type ChatConfig struct {
	HistoryLimit   int           `json:"history_limit"`
	SendBuffer     int           `json:"send_buffer"`
	StoreTimeout   time.Duration `json:"store_timeout"`
	MaxBodyLength  int           `json:"max_body_length"`
	MaxUploadBytes int64         `json:"max_upload_bytes"`
	MaxFrameBytes  int64         `json:"max_frame_bytes"`
	WriteWait      time.Duration `json:"write_wait"`
	PongWait       time.Duration `json:"pong_wait"`
}

// NotificationConfig contains notification system configuration
type NotificationConfig struct {
	Workers           int  `json:"workers"`             // Number of worker goroutines
	ChannelBufferSize int  `json:"channel_buffer_size"` // Channel buffer size
	Enabled           bool `json:"enabled"`
}

// LoggingConfig contains logging configuration
type LoggingConfig struct {
	Level      string `json:"level"`       // debug, info, warn, error
	Format     string `json:"format"`      // json, text
	OutputPath string `json:"output_path"` // stdout, stderr, or file path
}

func LoadConfig() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using system environment variables")
	}

	return &Config{
		Server: ServerConfig{
			Host:           getEnv("SERVER_HOST", "0.0.0.0"),
			Port:           getEnv("PORT", "3000"),
			HealthGRPCPort: getEnv("GRPC_HEALTH_PORT", "7005"),
			ReadTimeout:    getEnvAsInt("SERVER_READ_TIMEOUT", 15),
			WriteTimeout:   getEnvAsInt("SERVER_WRITE_TIMEOUT", 15),
			AllowedOrigins: getEnvAsList("ALLOWED_ORIGINS", nil),
			Environment:    getEnv("NODE_ENV", "development"),
		},
		MongoDB: MongoDBConfig{
			URI:                    getEnv("MONGODB_URI", ""),
			Host:                   getEnv("MONGO_HOST", "localhost"),
			Port:                   getEnv("MONGO_PORT", "27017"),
			Username:               getEnv("MONGO_USERNAME", ""),
			Password:               getEnv("MONGO_PASSWORD", ""),
			Database:               getEnv("MONGO_DATABASE", "skillnest-dev"),
			ServerSelectionTimeout: getEnvAsDuration("MONGO_SERVER_SELECTION_TIMEOUT", 5*time.Second),
		},
		Database: DatabaseConfig{
			Host:         getEnv("MYSQL_HOST", "localhost"),
			Port:         getEnv("MYSQL_PORT", "3306"),
			Username:     getEnv("MYSQL_USERNAME", "skillnest"),
			Password:     getEnv("MYSQL_PASSWORD", "skillnest"),
			DatabaseName: getEnv("MYSQL_DATABASE", "skillnest"),
			MaxOpenConns: getEnvAsInt("MYSQL_MAX_OPEN_CONNS", 25),
			MaxIdleConns: getEnvAsInt("MYSQL_MAX_IDLE_CONNS", 5),
		},
		Session: SessionConfig{
			CookieName: getEnv("SESSION_COOKIE_NAME", "connect.sid"),
			Secret:     getEnv("SESSION_SECRET", "skillnest_secret"),
			Collection: getEnv("SESSION_COLLECTION", "sessions"),
			JWTSecret:  getEnv("JWT_SECRET", ""),
			JWTIssuer:  getEnv("JWT_ISSUER", "skillnest"),
		},
		Chat: ChatConfig{
			HistoryLimit:   getEnvAsInt("CHAT_HISTORY_LIMIT", 50),
			SendBuffer:     getEnvAsInt("CHAT_SEND_BUFFER", 64),
			StoreTimeout:   getEnvAsDuration("CHAT_STORE_TIMEOUT", 10*time.Second),
			MaxBodyLength:  getEnvAsInt("CHAT_MAX_BODY_LENGTH", 4000),
			MaxUploadBytes: int64(getEnvAsInt("CHAT_MAX_UPLOAD_BYTES", 10*1024*1024)),
			MaxFrameBytes:  int64(getEnvAsInt("CHAT_MAX_FRAME_BYTES", 64*1024)),
			WriteWait:      getEnvAsDuration("CHAT_WRITE_WAIT", 10*time.Second),
			PongWait:       getEnvAsDuration("CHAT_PONG_WAIT", 60*time.Second),
		},
		Notification: NotificationConfig{
			Workers:           getEnvAsInt("NOTIFICATION_WORKERS", 5),
			ChannelBufferSize: getEnvAsInt("NOTIFICATION_BUFFER", 1000),
			Enabled:           getEnvAsBool("NOTIFICATION_ENABLED", true),
		},
		Logging: LoggingConfig{
			Level:      getEnv("LOG_LEVEL", "info"),
			Format:     getEnv("LOG_FORMAT", "text"),
			OutputPath: getEnv("LOG_OUTPUT", "stdout"),
		},
	}
}

func (cfg *Config) DSN() string {
	if cfg.Database.Host == "" {
		cfg.Database.Host = "localhost"
	}
	if cfg.Database.Port == "" {
		cfg.Database.Port = "3306"
	}

	return fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?charset=utf8mb4&parseTime=True&loc=UTC",
		cfg.Database.Username,
		cfg.Database.Password,
		cfg.Database.Host,
		cfg.Database.Port,
		cfg.Database.DatabaseName,
	)
}

func (cfg *Config) GetMongoURI() string {
	if cfg.MongoDB.URI != "" {
		return cfg.MongoDB.URI
	}
	if cfg.MongoDB.Username == "" {
		return fmt.Sprintf("mongodb://%s:%s/%s", cfg.MongoDB.Host, cfg.MongoDB.Port, cfg.MongoDB.Database)
	}
	return fmt.Sprintf("mongodb://%s:%s@%s:%s/%s?authSource=admin",
		cfg.MongoDB.Username,
		cfg.MongoDB.Password,
		cfg.MongoDB.Host,
		cfg.MongoDB.Port,
		cfg.MongoDB.Database,
	)
}

// Addr is the HTTP listen address.
func (cfg *Config) Addr() string {
	return fmt.Sprintf("%s:%s", cfg.Server.Host, cfg.Server.Port)
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	value, err := strconv.Atoi(getEnv(key, ""))
	if err != nil {
		return defaultValue
	}
	return value
}

func getEnvAsBool(key string, defaultValue bool) bool {
	value, err := strconv.ParseBool(getEnv(key, ""))
	if err != nil {
		return defaultValue
	}
	return value
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	value, err := time.ParseDuration(getEnv(key, ""))
	if err != nil {
		return defaultValue
	}
	return value
}

func getEnvAsList(key string, defaultValue []string) []string {
	raw := getEnv(key, "")
	if raw == "" {
		return defaultValue
	}
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
