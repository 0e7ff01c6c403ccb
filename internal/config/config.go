// Package config 加载 TOML 配置。
package config

import (
	"fmt"
	"os"

	"github.com/pelletier/go-toml/v2"

	"chartcore/internal/analysis/indicator"
)

type Config struct {
	LogLevel string   `toml:"log_level"`
	Server   Server   `toml:"server"`
	Store    Store    `toml:"store"`
	Provider Provider `toml:"provider"`
	Compute  Compute  `toml:"compute"`
}

// Provider 行情接入配置。BaseURL 为空时用交易所默认入口。
type Provider struct {
	BaseURL string `toml:"base_url"`
}

type Server struct {
	Addr    string `toml:"addr"`
	Workers int    `toml:"workers"`
}

// Store K 线存储。SQLitePath 留空时 serve 退回内存存储，MaxBars 是
// 内存存储按 symbol+interval 保留的上限。
type Store struct {
	SQLitePath string `toml:"sqlite_path"`
	MaxBars    int    `toml:"max_bars"`
}

type Compute struct {
	// HVAnnualization 历史波动率年化系数。这是对标图表输出拟合出的
	// 校准常数，不是交易日数，按需覆盖。
	HVAnnualization float64 `toml:"hv_annualization"`
}

func Default() Config {
	return Config{
		LogLevel: "info",
		Server:   Server{Addr: ":9980", Workers: 4},
		Store:    Store{SQLitePath: "chartcore.db", MaxBars: 5000},
		Compute:  Compute{HVAnnualization: indicator.DefaultHVAnnualization},
	}
}

// Load 读取 TOML 文件并覆盖默认值；path 为空时直接用默认配置。
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("read config: %w", err)
	}
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse config: %w", err)
	}
	return cfg, nil
}
