// Package config 提供配置管理
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/paigong/paigong/pkg/model"
)

// Config 应用配置
type Config struct {
	App      AppConfig      `yaml:"app"`
	Database DatabaseConfig `yaml:"database"`
	API      APIConfig      `yaml:"api"`
	Engine   EngineConfig   `yaml:"engine"`
	Planner  PlannerConfig  `yaml:"planner"`
	Metrics  MetricsConfig  `yaml:"metrics"`
}

// AppConfig 应用基础配置
type AppConfig struct {
	Name     string `yaml:"name"`
	Env      string `yaml:"env"`
	Port     int    `yaml:"port"`
	LogLevel string `yaml:"log_level"`
}

// DatabaseConfig 数据库配置
type DatabaseConfig struct {
	Host            string        `yaml:"host"`
	Port            int           `yaml:"port"`
	Name            string        `yaml:"name"`
	User            string        `yaml:"user"`
	Password        string        `yaml:"password"`
	SSLMode         string        `yaml:"ssl_mode"`
	MaxOpenConns    int           `yaml:"max_open_conns"`
	MaxIdleConns    int           `yaml:"max_idle_conns"`
	ConnMaxLifetime time.Duration `yaml:"conn_max_lifetime"`
}

// DSN 返回数据库连接字符串
func (c *DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.Name, c.SSLMode,
	)
}

// APIConfig API配置
type APIConfig struct {
	Timeout time.Duration `yaml:"timeout"`
	APIKeys []string      `yaml:"api_keys"` // 为空表示不启用认证
}

// EngineConfig 派工引擎默认设置
type EngineConfig struct {
	OverCapacityThreshold int    `yaml:"over_capacity_threshold"` // 分钟
	AssignmentStartTime   string `yaml:"assignment_start_time"`   // HH:mm
	TieBreakSeed          string `yaml:"tie_break_seed"`
}

// PlannerConfig 自动补班配置
type PlannerConfig struct {
	PlanningPeriodDays int `yaml:"planning_period_days"`
}

// MetricsConfig 监控配置
type MetricsConfig struct {
	Enabled bool   `yaml:"enabled"`
	Path    string `yaml:"path"`
}

// Load 从环境变量加载配置
func Load() (*Config, error) {
	cfg := &Config{
		App: AppConfig{
			Name:     getEnv("APP_NAME", "paigong"),
			Env:      getEnv("APP_ENV", "development"),
			Port:     getEnvInt("APP_PORT", 7021),
			LogLevel: getEnv("APP_LOG_LEVEL", "info"),
		},
		Database: DatabaseConfig{
			Host:            getEnv("DB_HOST", "localhost"),
			Port:            getEnvInt("DB_PORT", 5432),
			Name:            getEnv("DB_NAME", "paigong"),
			User:            getEnv("DB_USER", "paigong"),
			Password:        getEnv("DB_PASSWORD", "paigong123"),
			SSLMode:         getEnv("DB_SSL_MODE", "disable"),
			MaxOpenConns:    getEnvInt("DB_MAX_OPEN_CONNS", 25),
			MaxIdleConns:    getEnvInt("DB_MAX_IDLE_CONNS", 5),
			ConnMaxLifetime: getEnvDuration("DB_CONN_MAX_LIFETIME", 5*time.Minute),
		},
		API: APIConfig{
			Timeout: getEnvDuration("API_TIMEOUT", 30*time.Second),
			APIKeys: getEnvList("API_KEYS"),
		},
		Engine: EngineConfig{
			OverCapacityThreshold: getEnvInt("ENGINE_OVER_CAPACITY_THRESHOLD", 30),
			AssignmentStartTime:   getEnv("ENGINE_ASSIGNMENT_START_TIME", "09:00"),
			TieBreakSeed:          getEnv("ENGINE_TIE_BREAK_SEED", "paigong"),
		},
		Planner: PlannerConfig{
			PlanningPeriodDays: getEnvInt("PLANNER_PERIOD_DAYS", 7),
		},
		Metrics: MetricsConfig{
			Enabled: getEnvBool("METRICS_ENABLED", true),
			Path:    getEnv("METRICS_PATH", "/metrics"),
		},
	}

	if _, err := model.ParseClock(cfg.Engine.AssignmentStartTime); err != nil {
		return nil, fmt.Errorf("ENGINE_ASSIGNMENT_START_TIME 无效: %w", err)
	}

	return cfg, nil
}

// ManagerSettings 由配置构建派工全局设置
func (c *Config) ManagerSettings() model.ManagerSettings {
	return model.ManagerSettings{
		OverCapacityThreshold: c.Engine.OverCapacityThreshold,
		TieBreakSeed:          c.Engine.TieBreakSeed,
		AssignmentStartTime:   c.Engine.AssignmentStartTime,
		PlanningPeriodDays:    c.Planner.PlanningPeriodDays,
	}
}

// IsDevelopment 检查是否为开发环境
func (c *Config) IsDevelopment() bool {
	return c.App.Env == "development"
}

// IsProduction 检查是否为生产环境
func (c *Config) IsProduction() bool {
	return c.App.Env == "production"
}

// 辅助函数
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}

func getEnvList(key string) []string {
	value := os.Getenv(key)
	if value == "" {
		return nil
	}
	var out []string
	for _, item := range strings.Split(value, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}
