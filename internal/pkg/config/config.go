package config

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/sethvargo/go-envconfig"
)

// Storage backends accepted by VPA_STORAGE.
const (
	StorageFile   = "file"
	StorageMemory = "memory"
	StorageRedis  = "redis"
	StorageMongo  = "mongo"
)

// Config is the parking client configuration.
type Config struct {
	APIBase        string        `env:"VPA_API_BASE,        default=http://127.0.0.1:5000/api"`
	LogLevel       string        `env:"LOG_LEVEL,           default=info"`
	LogPretty      bool          `env:"LOG_PRETTY,          default=true"`
	RestoreSession bool          `env:"VPA_RESTORE_SESSION, default=false"`
	MetricsAddr    string        `env:"VPA_METRICS_ADDR"`
	HTTPTimeout    time.Duration `env:"VPA_HTTP_TIMEOUT,    default=0s"`

	Storage StorageConfig
}

// StorageConfig selects where the credential ("vpa_token") is persisted.
type StorageConfig struct {
	Backend  string `env:"VPA_STORAGE,      default=file"`
	FilePath string `env:"VPA_STORAGE_FILE"`

	Redis RedisConfig
	Mongo MongoConfig
}

type RedisConfig struct {
	Addr     string `env:"REDIS_ADDR,     default=localhost:6379"`
	Password string `env:"REDIS_PASSWORD"`
	DB       int    `env:"REDIS_DB,       default=0"`
}

type MongoConfig struct {
	URI      string `env:"MONGO_URI, default=mongodb://localhost:27017"`
	Database string `env:"MONGO_DB,  default=vpa_client"`
}

// DevAPIConfig configures cmd/vpa-devapi.
type DevAPIConfig struct {
	Port          string `env:"PORT,                  default=5000"`
	JWTSecret     string `env:"JWT_SECRET,            default=vpa-dev-secret"`
	LogLevel      string `env:"LOG_LEVEL,             default=info"`
	RequireAuth   bool   `env:"DEVAPI_REQUIRE_AUTH,   default=false"`
	ExportWorkers int    `env:"DEVAPI_EXPORT_WORKERS, default=2"`
	ExportDir     string `env:"DEVAPI_EXPORT_DIR"`
	AdminEmail    string `env:"DEVAPI_ADMIN_EMAIL,    default=admin@gmail.com"`
	AdminPassword string `env:"DEVAPI_ADMIN_PASSWORD, default=admin123"`
}

// Load reads the client configuration from the process environment.
func Load() *Config {
	cfg, err := LoadWith(context.Background(), envconfig.OsLookuper())
	if err != nil {
		panic(fmt.Sprintf("config: failed to load configuration: %v", err))
	}
	return cfg
}

// LoadWith reads the client configuration through l and fills derived defaults.
func LoadWith(ctx context.Context, l envconfig.Lookuper) (*Config, error) {
	var cfg Config
	if err := envconfig.ProcessWith(ctx, &envconfig.Config{Target: &cfg, Lookuper: l}); err != nil {
		return nil, err
	}

	switch cfg.Storage.Backend {
	case StorageFile, StorageMemory, StorageRedis, StorageMongo:
	default:
		return nil, fmt.Errorf("unknown storage backend %q", cfg.Storage.Backend)
	}

	if cfg.Storage.Backend == StorageFile && cfg.Storage.FilePath == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("resolve storage file: %w", err)
		}
		cfg.Storage.FilePath = filepath.Join(home, ".vpa", "storage.json")
	}
	return &cfg, nil
}

// LoadDevAPI reads the dev API configuration from the process environment.
func LoadDevAPI() *DevAPIConfig {
	cfg, err := LoadDevAPIWith(context.Background(), envconfig.OsLookuper())
	if err != nil {
		panic(fmt.Sprintf("config: failed to load dev api configuration: %v", err))
	}
	return cfg
}

func LoadDevAPIWith(ctx context.Context, l envconfig.Lookuper) (*DevAPIConfig, error) {
	var cfg DevAPIConfig
	if err := envconfig.ProcessWith(ctx, &envconfig.Config{Target: &cfg, Lookuper: l}); err != nil {
		return nil, err
	}
	if cfg.ExportWorkers <= 0 {
		cfg.ExportWorkers = 1
	}
	if cfg.ExportDir == "" {
		cfg.ExportDir = filepath.Join(os.TempDir(), "vpa-exports")
	}
	return &cfg, nil
}
