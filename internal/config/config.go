package config

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/xxxsen/common/logger"
)

const (
	DedupScopeGlobal = "global"
	DedupScopeOwner  = "owner"

	DefaultCleanupCron = "0 3 * * *"
	// CleanupCronOff disables the scheduled sweep.
	CleanupCronOff = "off"
)

type Config struct {
	Port             int              `json:"port"`
	JWTSecret        string           `json:"jwt_secret"`
	AdminUserIDs     []string         `json:"admin_user_ids"`
	CORSOrigins      []string         `json:"cors_origins"`
	RateLimitSeconds int              `json:"rate_limit_seconds"`
	Database         DatabaseConfig   `json:"database"`
	LogConfig        logger.LogConfig `json:"log_config"`
	AI               AIConfig         `json:"ai"`
	Cache            CacheConfig      `json:"cache"`
	Upload           UploadConfig     `json:"upload"`
	FileStore        FileStoreConfig  `json:"file_store"`
}

type DatabaseConfig struct {
	DSN      string `json:"dsn"`
	Host     string `json:"host"`
	Port     int    `json:"port"`
	User     string `json:"user"`
	Password string `json:"password"`
	DBName   string `json:"dbname"`
	SSLMode  string `json:"sslmode"`
}

type AIConfig struct {
	Provider    string      `json:"provider"`
	Model       string      `json:"model"`
	Timeout     int         `json:"timeout"`
	MaxAttempts int         `json:"max_attempts"`
	BaseDelayMs int         `json:"base_delay_ms"`
	MaxDelayMs  int         `json:"max_delay_ms"`
	Data        interface{} `json:"data"`
}

type CacheConfig struct {
	RetentionDays        int    `json:"retention_days"`
	DedupScope           string `json:"dedup_scope"`
	CleanupCron          string `json:"cleanup_cron"`
	ExtractLRUSize       int    `json:"extract_lru_size"`
	ExtractLRUTTLSeconds int    `json:"extract_lru_ttl_seconds"`
	SingleFlight         *bool  `json:"singleflight"`
}

func (c CacheConfig) SingleFlightEnabled() bool {
	return c.SingleFlight == nil || *c.SingleFlight
}

type UploadConfig struct {
	MaxBytes int64 `json:"max_bytes"`
}

type FileStoreConfig struct {
	Type string   `json:"type"`
	Dir  string   `json:"dir"`
	S3   S3Config `json:"s3"`
}

type S3Config struct {
	Endpoint  string `json:"endpoint"`
	SecretID  string `json:"secret_id"`
	SecretKey string `json:"secret_key"`
	Bucket    string `json:"bucket"`
	Region    string `json:"region"`
	Prefix    string `json:"prefix"`
	UseSSL    bool   `json:"use_ssl"`
}

// Load reads the JSON config at path, applies environment overrides (a .env
// file next to the working directory is honoured) and fills defaults.
func Load(path string) (*Config, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open config: %w", err)
	}
	defer file.Close()

	var cfg Config
	if err := json.NewDecoder(file).Decode(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	_ = godotenv.Load()
	applyEnv(&cfg)
	if err := cfg.normalize(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func applyEnv(cfg *Config) {
	if v := strings.TrimSpace(os.Getenv("RESUMATCH_DB_DSN")); v != "" {
		cfg.Database.DSN = v
	}
	if v := strings.TrimSpace(os.Getenv("RESUMATCH_JWT_SECRET")); v != "" {
		cfg.JWTSecret = v
	}
	if v := strings.TrimSpace(os.Getenv("RESUMATCH_AI_API_KEY")); v != "" {
		data, ok := cfg.AI.Data.(map[string]interface{})
		if !ok || data == nil {
			data = map[string]interface{}{}
		}
		data["api_key"] = v
		cfg.AI.Data = data
	}
}

func (cfg *Config) normalize() error {
	if cfg.Port == 0 {
		return fmt.Errorf("port is required")
	}
	if cfg.JWTSecret == "" {
		return fmt.Errorf("jwt_secret is required")
	}
	if cfg.Database.DSN == "" && cfg.Database.Host == "" {
		return fmt.Errorf("database.dsn or database.host is required")
	}
	if cfg.Database.Port == 0 {
		cfg.Database.Port = 5432
	}
	if cfg.LogConfig.Level == "" {
		cfg.LogConfig.Level = "info"
	}
	if strings.TrimSpace(cfg.AI.Provider) == "" {
		cfg.AI.Provider = "mock"
	}
	if cfg.AI.Timeout <= 0 {
		cfg.AI.Timeout = 60
	}
	if cfg.AI.MaxAttempts <= 0 {
		cfg.AI.MaxAttempts = 3
	}
	if cfg.AI.BaseDelayMs <= 0 {
		cfg.AI.BaseDelayMs = 2000
	}
	if cfg.AI.MaxDelayMs <= 0 {
		cfg.AI.MaxDelayMs = 10000
	}
	if cfg.Cache.RetentionDays <= 0 {
		cfg.Cache.RetentionDays = 30
	}
	switch strings.TrimSpace(cfg.Cache.CleanupCron) {
	case "":
		cfg.Cache.CleanupCron = DefaultCleanupCron
	case CleanupCronOff:
		cfg.Cache.CleanupCron = ""
	}
	switch cfg.Cache.DedupScope {
	case "":
		cfg.Cache.DedupScope = DedupScopeGlobal
	case DedupScopeGlobal, DedupScopeOwner:
	default:
		return fmt.Errorf("cache.dedup_scope must be global or owner")
	}
	if cfg.Cache.ExtractLRUSize == 0 {
		cfg.Cache.ExtractLRUSize = 256
	}
	if cfg.Cache.ExtractLRUTTLSeconds == 0 {
		cfg.Cache.ExtractLRUTTLSeconds = 3600
	}
	if cfg.Upload.MaxBytes <= 0 {
		cfg.Upload.MaxBytes = 10 * 1024 * 1024
	}
	if cfg.FileStore.Type == "" {
		cfg.FileStore.Type = "local"
	}
	switch cfg.FileStore.Type {
	case "local":
		if cfg.FileStore.Dir == "" {
			cfg.FileStore.Dir = "./data/uploads"
		}
	case "s3":
		s3 := cfg.FileStore.S3
		if s3.Endpoint == "" || s3.Bucket == "" || s3.SecretID == "" || s3.SecretKey == "" {
			return fmt.Errorf("file_store.s3 endpoint/bucket/secret_id/secret_key are required for s3 store")
		}
		if s3.Region == "" {
			cfg.FileStore.S3.Region = "us-east-1"
		}
	case "none":
	default:
		return fmt.Errorf("file_store.type must be local, s3 or none")
	}
	return nil
}
