// Package logger 提供统一的日志框架
package logger

import (
	"context"
	"io"
	"os"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

var (
	once   sync.Once
	logger zerolog.Logger
)

// Level 日志级别
type Level = zerolog.Level

const (
	DebugLevel = zerolog.DebugLevel
	InfoLevel  = zerolog.InfoLevel
	WarnLevel  = zerolog.WarnLevel
	ErrorLevel = zerolog.ErrorLevel
	FatalLevel = zerolog.FatalLevel
)

// Config 日志配置
type Config struct {
	Level      string `yaml:"level" json:"level"`
	Format     string `yaml:"format" json:"format"` // json/console
	Output     string `yaml:"output" json:"output"` // stdout/stderr/file
	FilePath   string `yaml:"file_path,omitempty" json:"file_path,omitempty"`
	TimeFormat string `yaml:"time_format,omitempty" json:"time_format,omitempty"`
}

// DefaultConfig 返回默认配置
func DefaultConfig() Config {
	return Config{
		Level:      "info",
		Format:     "console",
		Output:     "stdout",
		TimeFormat: time.RFC3339,
	}
}

// Init 初始化日志器
func Init(cfg Config) {
	once.Do(func() {
		level := parseLevel(cfg.Level)
		zerolog.SetGlobalLevel(level)

		var output io.Writer
		switch cfg.Output {
		case "stderr":
			output = os.Stderr
		case "file":
			if cfg.FilePath != "" {
				f, err := os.OpenFile(cfg.FilePath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
				if err == nil {
					output = f
				} else {
					output = os.Stdout
				}
			} else {
				output = os.Stdout
			}
		default:
			output = os.Stdout
		}

		if cfg.Format == "console" {
			output = zerolog.ConsoleWriter{
				Out:        output,
				TimeFormat: cfg.TimeFormat,
			}
		}

		logger = zerolog.New(output).With().Timestamp().Logger()
	})
}

// parseLevel 解析日志级别
func parseLevel(level string) zerolog.Level {
	switch level {
	case "debug":
		return zerolog.DebugLevel
	case "info":
		return zerolog.InfoLevel
	case "warn", "warning":
		return zerolog.WarnLevel
	case "error":
		return zerolog.ErrorLevel
	case "fatal":
		return zerolog.FatalLevel
	default:
		return zerolog.InfoLevel
	}
}

// Get 获取日志器
func Get() *zerolog.Logger {
	if logger.GetLevel() == zerolog.Disabled {
		Init(DefaultConfig())
	}
	return &logger
}

// WithContext 从上下文创建日志器
func WithContext(ctx context.Context) *zerolog.Logger {
	l := Get().With().Logger()

	// 添加请求ID
	if reqID, ok := ctx.Value("request_id").(string); ok {
		l = l.With().Str("request_id", reqID).Logger()
	}

	return &l
}

// Debug 记录调试日志
func Debug() *zerolog.Event {
	return Get().Debug()
}

// Info 记录信息日志
func Info() *zerolog.Event {
	return Get().Info()
}

// Warn 记录警告日志
func Warn() *zerolog.Event {
	return Get().Warn()
}

// Error 记录错误日志
func Error() *zerolog.Event {
	return Get().Error()
}

// Fatal 记录致命错误日志
func Fatal() *zerolog.Event {
	return Get().Fatal()
}

// WithError 添加错误信息
func WithError(err error) *zerolog.Event {
	return Get().Error().Err(err)
}

// WithField 添加字段
func WithField(key string, value interface{}) *zerolog.Logger {
	l := Get().With().Interface(key, value).Logger()
	return &l
}

// EngineLogger 派工引擎专用日志器
type EngineLogger struct {
	base *zerolog.Logger
}

// NewEngineLogger 创建派工引擎日志器
func NewEngineLogger() *EngineLogger {
	l := Get().With().Str("component", "engine").Logger()
	return &EngineLogger{base: &l}
}

// StartGeneration 记录派工开始
func (l *EngineLogger) StartGeneration(date string, members, tasks int) {
	l.base.Info().
		Str("date", date).
		Int("members", members).
		Int("tasks", tasks).
		Msg("开始生成任务分配")
}

// NoStaffToday 记录当日无排班短路
func (l *EngineLogger) NoStaffToday(date string, tasks int) {
	l.base.Warn().
		Str("date", date).
		Int("tasks", tasks).
		Msg("当日无班次记录，全部任务标记为未分配")
}

// RuleSkipped 记录规则被跳过
func (l *EngineLogger) RuleSkipped(taskID, reason string) {
	l.base.Warn().
		Str("task_id", taskID).
		Str("reason", reason).
		Msg("分配规则无效，已跳过")
}

// GenerationComplete 记录派工完成
func (l *EngineLogger) GenerationComplete(date string, duration time.Duration, assigned, unassigned int) {
	l.base.Info().
		Str("date", date).
		Dur("duration", duration).
		Int("assigned", assigned).
		Int("unassigned", unassigned).
		Msg("任务分配生成完成")
}

// PlannerLogger 自动补班日志器
type PlannerLogger struct {
	base *zerolog.Logger
}

// NewPlannerLogger 创建自动补班日志器
func NewPlannerLogger() *PlannerLogger {
	l := Get().With().Str("component", "planner").Logger()
	return &PlannerLogger{base: &l}
}

// StartAutoFill 记录补班开始
func (l *PlannerLogger) StartAutoFill(dates, targets int) {
	l.base.Info().
		Int("dates", dates).
		Int("targets", targets).
		Msg("开始自动补班")
}

// GapFilled 记录缺口填补
func (l *PlannerLogger) GapFilled(date, area string, filled, shortage int) {
	l.base.Debug().
		Str("date", date).
		Str("area", area).
		Int("filled", filled).
		Int("shortage", shortage).
		Msg("人力缺口已处理")
}

// AutoFillComplete 记录补班完成
func (l *PlannerLogger) AutoFillComplete(duration time.Duration, generated, conflicts int) {
	l.base.Info().
		Dur("duration", duration).
		Int("generated", generated).
		Int("conflicts", conflicts).
		Msg("自动补班完成")
}
