// пакет config отвечает за настройки приложения.
// значения по умолчанию могут быть переопределены флагами,
// переменные окружения имеют приоритет над флагами
package config

import (
	"fmt"
	"path/filepath"

	"github.com/caarlos0/env/v6"
)

// имена используемых переменных окружения
const (
	EnvServerAddress = "MIAO_SERVER_ADDRESS"
	EnvUploadDir     = "MIAO_UPLOAD_DIR"
	EnvOrderFile     = "MIAO_ORDER_FILE"
	EnvRulesFile     = "MIAO_RULES_FILE"
	EnvMaxLogs       = "MIAO_MAX_LOGS"
	EnvMaxFileSize   = "MIAO_MAX_FILE_SIZE"
	EnvAllowedTypes  = "MIAO_ALLOWED_TYPES"
	EnvLogLevel      = "MIAO_LOG_LEVEL"
)

const (
	defaultAddress     = ":3000"
	defaultUploadDir   = "public/uploads"
	defaultRulesFile   = "forward-rules.json"
	defaultMaxLogs     = 1000
	defaultMaxFileSize = 10 << 20
	defaultLogLevel    = "info"

	// orderFileName имя файла с порядком коллекций внутри каталога загрузок
	orderFileName = ".collections-order.json"
)

// defaultAllowedTypes типы файлов, разрешенные к загрузке
var defaultAllowedTypes = []string{
	"image/jpeg",
	"image/png",
	"image/gif",
	"image/webp",
	"image/svg+xml",
}

type Config struct {
	Address      string   `env:"MIAO_SERVER_ADDRESS"`
	UploadDir    string   `env:"MIAO_UPLOAD_DIR"`
	OrderFile    string   `env:"MIAO_ORDER_FILE"`
	RulesFile    string   `env:"MIAO_RULES_FILE"`
	MaxLogs      int      `env:"MIAO_MAX_LOGS"`
	MaxFileSize  int64    `env:"MIAO_MAX_FILE_SIZE"`
	AllowedTypes []string `env:"MIAO_ALLOWED_TYPES" envSeparator:","`
	LogLevel     string   `env:"MIAO_LOG_LEVEL"`
}

type ConfigParam func(c *Config)

func ConfigAddress(address string) ConfigParam {
	return func(c *Config) {
		c.Address = address
	}
}
func ConfigUploadDir(uploadDir string) ConfigParam {
	return func(c *Config) {
		c.UploadDir = uploadDir
	}
}
func ConfigOrderFile(orderFile string) ConfigParam {
	return func(c *Config) {
		c.OrderFile = orderFile
	}
}
func ConfigRulesFile(rulesFile string) ConfigParam {
	return func(c *Config) {
		c.RulesFile = rulesFile
	}
}
func ConfigMaxLogs(maxLogs int) ConfigParam {
	return func(c *Config) {
		c.MaxLogs = maxLogs
	}
}
func ConfigLogLevel(logLevel string) ConfigParam {
	return func(c *Config) {
		c.LogLevel = logLevel
	}
}
func NewConfig(configs ...ConfigParam) (Config, error) {
	cfg := Config{
		Address:      defaultAddress,
		UploadDir:    defaultUploadDir,
		RulesFile:    defaultRulesFile,
		MaxLogs:      defaultMaxLogs,
		MaxFileSize:  defaultMaxFileSize,
		AllowedTypes: defaultAllowedTypes,
		LogLevel:     defaultLogLevel,
	}
	for _, c := range configs {
		c(&cfg)
	}
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("разбор переменных окружения. %w", err)
	}
	if cfg.OrderFile == "" {
		cfg.OrderFile = filepath.Join(cfg.UploadDir, orderFileName)
	}
	if cfg.MaxLogs <= 0 {
		cfg.MaxLogs = defaultMaxLogs
	}
	if cfg.MaxFileSize <= 0 {
		cfg.MaxFileSize = defaultMaxFileSize
	}
	return cfg, nil
}

// AllowedType проверяет, что mime-тип файла входит в список разрешенных
func (c Config) AllowedType(mimeType string) bool {
	for _, t := range c.AllowedTypes {
		if t == mimeType {
			return true
		}
	}
	return false
}
