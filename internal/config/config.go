package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

const defaultUploadMaxBytes = 5 << 20

// AppConfig 汇总运行服务所需的基础配置。
type AppConfig struct {
	ListenAddr        string
	Port              string
	DatabaseDriver    string
	DatabaseDSN       string
	SessionSecret     string
	GinMode           string
	LogLevel          string
	StorageBackend    string
	UploadDir         string
	UploadURLPath     string
	UploadMaxBytes    int64
	S3                S3Config
	SuperRootUserName string
	SuperRootPassword string
}

// S3Config holds bucket settings used when StorageBackend is "s3".
type S3Config struct {
	Endpoint  string
	Bucket    string
	Region    string
	AccessKey string
	SecretKey string
	PublicURL string
}

// Load 读取可选的 .env 文件后，从环境变量读取应用配置，并为缺失项提供安全的默认值。
func Load() AppConfig {
	// .env 只用于本地开发，缺失时忽略
	_ = godotenv.Load()
	return FromEnv()
}

// FromEnv builds the configuration from the current process environment only.
func FromEnv() AppConfig {
	port := envOr("PORT", "8080")
	listenAddr := envOr("LISTEN_ADDR", fmt.Sprintf(":%s", port))

	driver := strings.ToLower(envOr("DATABASE_DRIVER", "sqlite"))
	dsn := strings.TrimSpace(os.Getenv("DATABASE_DSN"))
	if dsn == "" {
		dsn = envOr("DATABASE_PATH", "contentgallery.db")
	}

	return AppConfig{
		ListenAddr:     listenAddr,
		Port:           port,
		DatabaseDriver: driver,
		DatabaseDSN:    dsn,
		SessionSecret:  envOr("SESSION_SECRET", "contentgallery-dev-secret"),
		GinMode:        envOr("GIN_MODE", "release"),
		LogLevel:       strings.ToLower(envOr("LOG_LEVEL", "info")),
		StorageBackend: strings.ToLower(envOr("STORAGE_BACKEND", "local")),
		UploadDir:      envOr("UPLOAD_DIR", "media/gallery"),
		UploadURLPath:  strings.TrimRight(envOr("UPLOAD_URL_PATH", "/media/gallery"), "/"),
		UploadMaxBytes: envInt64("UPLOAD_MAX_BYTES", defaultUploadMaxBytes),
		S3: S3Config{
			Endpoint:  strings.TrimSpace(os.Getenv("S3_ENDPOINT")),
			Bucket:    strings.TrimSpace(os.Getenv("S3_BUCKET")),
			Region:    envOr("S3_REGION", "us-east-1"),
			AccessKey: strings.TrimSpace(os.Getenv("S3_ACCESS_KEY")),
			SecretKey: strings.TrimSpace(os.Getenv("S3_SECRET_KEY")),
			PublicURL: strings.TrimRight(strings.TrimSpace(os.Getenv("S3_PUBLIC_URL")), "/"),
		},
		SuperRootUserName: strings.TrimSpace(os.Getenv("SUPER_ROOT_USER_NAME")),
		SuperRootPassword: strings.TrimSpace(os.Getenv("SUPER_ROOT_PASSWORD")),
	}
}

func envOr(key, fallback string) string {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return fallback
	}
	return value
}

func envInt64(key string, fallback int64) int64 {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return fallback
	}
	parsed, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || parsed <= 0 {
		return fallback
	}
	return parsed
}
