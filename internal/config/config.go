package config

import (
	"os"
	"path/filepath"
	"strconv"

	"github.com/pelletier/go-toml/v2"
)

// AppConfig 应用配置
type AppConfig struct {
	Server ServerConfig `toml:"server"`
	Data   DataConfig   `toml:"data"`
	Source SourceConfig `toml:"source"`
	Upload UploadConfig `toml:"upload"`
}

// ServerConfig 服务器配置
type ServerConfig struct {
	Port    int  `toml:"port"`
	DevMode bool `toml:"dev_mode"`
}

// DataConfig 数据配置
type DataConfig struct {
	DataDir string `toml:"data_dir"`
}

// SourceConfig 外部表格数据源配置
// WorkbookPath 非空时使用本地工作簿数据源，否则使用 HTTP 网关
type SourceConfig struct {
	URL             string   `toml:"url"`
	APIKey          string   `toml:"api_key"`
	WorkbookPath    string   `toml:"workbook_path"`
	ExcludedSheets  []string `toml:"excluded_sheets"`
	PollIntervalSec int      `toml:"poll_interval_sec"`
	TimeoutSec      int      `toml:"timeout_sec"`
}

// UploadConfig 上传配置
type UploadConfig struct {
	MaxFileSizeMB int `toml:"max_file_size_mb"`
}

// DefaultConfig 默认配置
func DefaultConfig() *AppConfig {
	return &AppConfig{
		Server: ServerConfig{
			Port:    18090,
			DevMode: false,
		},
		Data: DataConfig{
			DataDir: "data",
		},
		Source: SourceConfig{
			ExcludedSheets: []string{
				"Feasibilities",
				"Campagin Managers' - Updates",
				"HTMLs & Feedback",
			},
			PollIntervalSec: 60,
			TimeoutSec:      30,
		},
		Upload: UploadConfig{
			MaxFileSizeMB: 10,
		},
	}
}

// GetExeDir 获取可执行文件所在目录
func GetExeDir() (string, error) {
	exe, err := os.Executable()
	if err != nil {
		return "", err
	}
	return filepath.Dir(exe), nil
}

// LoadConfig 从可执行文件同目录的 config.toml 加载配置
// 配置文件不存在时使用默认配置；环境变量可覆盖数据源设置
func LoadConfig() (*AppConfig, error) {
	config := DefaultConfig()

	exeDir, err := GetExeDir()
	if err != nil {
		exeDir = "."
	}

	configPath := filepath.Join(exeDir, "config.toml")

	data, err := os.ReadFile(configPath)
	if err != nil {
		if os.IsNotExist(err) {
			applyEnvOverrides(config)
			return config, nil
		}
		return nil, err
	}

	if err := toml.Unmarshal(data, config); err != nil {
		return nil, err
	}

	applyEnvOverrides(config)
	return config, nil
}

// applyEnvOverrides 环境变量覆盖（用于 E2E / 本地运行）
func applyEnvOverrides(config *AppConfig) {
	if v := os.Getenv("CAMPBOARD_SOURCE_URL"); v != "" {
		config.Source.URL = v
	}
	if v := os.Getenv("CAMPBOARD_SOURCE_API_KEY"); v != "" {
		config.Source.APIKey = v
	}
	if v := os.Getenv("CAMPBOARD_SOURCE_WORKBOOK"); v != "" {
		config.Source.WorkbookPath = v
	}
	if v := os.Getenv("CAMPBOARD_POLL_INTERVAL_SEC"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			config.Source.PollIntervalSec = n
		}
	}
}

// SaveConfig 保存配置到 config.toml
func SaveConfig(config *AppConfig) error {
	exeDir, err := GetExeDir()
	if err != nil {
		exeDir = "."
	}

	configPath := filepath.Join(exeDir, "config.toml")

	data, err := toml.Marshal(config)
	if err != nil {
		return err
	}

	return os.WriteFile(configPath, data, 0644)
}

// EnsureDataDir 确保数据目录及其子目录存在
func EnsureDataDir(config *AppConfig) (string, error) {
	exeDir, err := GetExeDir()
	if err != nil {
		exeDir = "."
	}

	dataDir := config.Data.DataDir
	if !filepath.IsAbs(dataDir) {
		dataDir = filepath.Join(exeDir, dataDir)
	}

	if err := os.MkdirAll(dataDir, 0755); err != nil {
		return "", err
	}

	subdirs := []string{"uploads", "attachments"}
	for _, subdir := range subdirs {
		path := filepath.Join(dataDir, subdir)
		if err := os.MkdirAll(path, 0755); err != nil {
			return "", err
		}
	}

	return dataDir, nil
}
