// Package model 定义派工引擎的核心数据模型
package model

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// BaseModel 基础模型（包含通用字段）
type BaseModel struct {
	ID        uuid.UUID  `json:"id" db:"id"`
	CreatedAt time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt time.Time  `json:"updated_at" db:"updated_at"`
	DeletedAt *time.Time `json:"-" db:"deleted_at"`
}

// NewBaseModel 创建新的基础模型
func NewBaseModel() BaseModel {
	now := time.Now()
	return BaseModel{
		ID:        uuid.New(),
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// ManagerSettings 派工全局设置
type ManagerSettings struct {
	OverCapacityThreshold int    `json:"over_capacity_threshold"` // 软性超载余量（分钟）
	TieBreakSeed          string `json:"tie_break_seed"`          // 确定性随机种子
	AssignmentStartTime   string `json:"assignment_start_time"`   // 默认任务开始时间 HH:mm
	PlanningPeriodDays    int    `json:"planning_period_days"`    // 排班规划周期（天）
}

// DefaultManagerSettings 返回默认设置
func DefaultManagerSettings() ManagerSettings {
	return ManagerSettings{
		OverCapacityThreshold: 30,
		TieBreakSeed:          "paigong",
		AssignmentStartTime:   "09:00",
		PlanningPeriodDays:    7,
	}
}

// ClockRange 一天内的时间窗口（HH:mm）
type ClockRange struct {
	Start string `json:"start"`
	End   string `json:"end"`
}

// ParseClock 解析 HH:mm 为当日分钟数
func ParseClock(s string) (int, error) {
	t, err := time.Parse("15:04", s)
	if err != nil {
		return 0, fmt.Errorf("时间格式无效 %q: %w", s, err)
	}
	return t.Hour()*60 + t.Minute(), nil
}

// MustClock 解析 HH:mm，解析失败返回 -1
func MustClock(s string) int {
	m, err := ParseClock(s)
	if err != nil {
		return -1
	}
	return m
}

// Minutes 返回时间窗口的时长（分钟），结束早于开始视为跨日
func (r ClockRange) Minutes() int {
	start := MustClock(r.Start)
	end := MustClock(r.End)
	if start < 0 || end < 0 {
		return 0
	}
	if end <= start {
		end += 24 * 60
	}
	return end - start
}

// Overlaps 检查两个时间窗口是否重叠
func (r ClockRange) Overlaps(other ClockRange) bool {
	s1, e1 := MustClock(r.Start), MustClock(r.End)
	s2, e2 := MustClock(other.Start), MustClock(other.End)
	if s1 < 0 || e1 < 0 || s2 < 0 || e2 < 0 {
		return false
	}
	if e1 <= s1 {
		e1 += 24 * 60
	}
	if e2 <= s2 {
		e2 += 24 * 60
	}
	return s1 < e2 && s2 < e1
}

// ContainsRange 检查时间窗口是否完全包含另一个窗口
func (r ClockRange) ContainsRange(other ClockRange) bool {
	s1, e1 := MustClock(r.Start), MustClock(r.End)
	s2, e2 := MustClock(other.Start), MustClock(other.End)
	if s1 < 0 || e1 < 0 || s2 < 0 || e2 < 0 {
		return false
	}
	if e1 <= s1 {
		e1 += 24 * 60
	}
	if e2 <= s2 {
		e2 += 24 * 60
	}
	return s1 <= s2 && e2 <= e1
}

// DateWeekday 解析 YYYY-MM-DD 日期的星期
func DateWeekday(date string) (time.Weekday, error) {
	t, err := time.Parse("2006-01-02", date)
	if err != nil {
		return 0, fmt.Errorf("日期格式无效 %q: %w", date, err)
	}
	return t.Weekday(), nil
}

// WeekdayName 返回星期的小写全称（monday）
func WeekdayName(w time.Weekday) string {
	return strings.ToLower(w.String())
}

// WeekdayShort 返回星期的三字母缩写（mon）
func WeekdayShort(w time.Weekday) string {
	return WeekdayName(w)[:3]
}

// MatchWeekday 检查名称是否匹配星期（接受全称或三字母缩写，不区分大小写）
func MatchWeekday(name string, w time.Weekday) bool {
	n := strings.ToLower(strings.TrimSpace(name))
	return n == WeekdayName(w) || n == WeekdayShort(w)
}

// IsWeekend 检查是否为周末
func IsWeekend(w time.Weekday) bool {
	return w == time.Saturday || w == time.Sunday
}
