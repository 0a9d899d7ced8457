package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/JoeShih716/go-mem-accounting/pkg/logger"
	"github.com/JoeShih716/go-mem-accounting/pkg/mysql"
)

// DefaultPath 預設設定檔位置，可用環境變數 CONFIG_PATH 覆寫
const DefaultPath = "config/config.yaml"

// PathEnv 指定設定檔路徑的環境變數
const PathEnv = "CONFIG_PATH"

// Backend 帳戶儲存後端
type Backend string

const (
	BackendMemory  Backend = "memory"  // 純記憶體，Persist 為 no-op
	BackendJournal Backend = "journal" // 記憶體 + WAL，重啟時由 WAL 還原
	BackendMySQL   Backend = "mysql"   // 記憶體 + MySQL upsert，重啟時由資料表還原
)

type Config struct {
	Server  ServerConfig  `yaml:"server"`
	Storage StorageConfig `yaml:"storage"`
	MySQL   mysql.Config  `yaml:"mysql"`
	Log     logger.Config `yaml:"log"`
}

type ServerConfig struct {
	GRPCAddr        string        `yaml:"grpc_addr"`
	HTTPAddr        string        `yaml:"http_addr"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
}

type StorageConfig struct {
	Backend Backend `yaml:"backend"`
	WALPath string  `yaml:"wal_path"`
}

// Path 回傳要讀取的設定檔路徑
func Path() string {
	if p := os.Getenv(PathEnv); p != "" {
		return p
	}
	return DefaultPath
}

// Load 讀取並解析 YAML 設定檔，補上預設值後驗證
//
// 參數:
//
//	path: 設定檔路徑
//
// 回傳值:
//
//	Config: 完整設定
//	error: 讀檔、解析或驗證失敗
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("read config %s: %w", path, err)
	}
	return Parse(data)
}

// Parse 解析 YAML 內容
func Parse(data []byte) (Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("parse config: %w", err)
	}
	cfg.applyDefaults()
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c *Config) applyDefaults() {
	if c.Server.GRPCAddr == "" {
		c.Server.GRPCAddr = ":50051"
	}
	if c.Server.HTTPAddr == "" {
		c.Server.HTTPAddr = ":8080"
	}
	if c.Server.ShutdownTimeout == 0 {
		c.Server.ShutdownTimeout = 10 * time.Second
	}
	if c.Storage.Backend == "" {
		c.Storage.Backend = BackendMemory
	}
	if c.Storage.Backend == BackendJournal && c.Storage.WALPath == "" {
		c.Storage.WALPath = "wal.log"
	}
	if c.Storage.Backend == BackendMySQL {
		c.MySQL.ApplyDefaults()
	}
}

// Validate 檢查設定是否可用
func (c *Config) Validate() error {
	var errs []error
	switch c.Storage.Backend {
	case BackendMemory, BackendJournal:
	case BackendMySQL:
		if c.MySQL.Host == "" {
			errs = append(errs, errors.New("mysql.host is required for mysql backend"))
		}
		if c.MySQL.DBName == "" {
			errs = append(errs, errors.New("mysql.dbname is required for mysql backend"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown storage backend %q", c.Storage.Backend))
	}
	if c.Server.ShutdownTimeout < 0 {
		errs = append(errs, errors.New("server.shutdown_timeout must not be negative"))
	}
	if err := errors.Join(errs...); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}
