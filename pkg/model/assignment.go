// Package model 定义派工引擎的核心数据模型
package model

import (
	"github.com/google/uuid"
)

// ScheduleShift 员工某日的在岗班次（每日容量的唯一来源）
type ScheduleShift struct {
	BaseModel
	MemberID uuid.UUID  `json:"member_id" db:"member_id"`
	Date     string     `json:"date" db:"date"` // YYYY-MM-DD
	Window   ClockRange `json:"window" db:"window"`
}

// Minutes 返回班次时长（分钟）
func (s *ScheduleShift) Minutes() int {
	return s.Window.Minutes()
}

// AssignmentStatus 分配状态
type AssignmentStatus string

const (
	StatusAssigned     AssignmentStatus = "assigned"
	StatusUnassigned   AssignmentStatus = "unassigned"
	StatusOverCapacity AssignmentStatus = "over-capacity"
	StatusConflict     AssignmentStatus = "conflict"
)

// Assignment 任务分配（任务-员工-日期绑定）
type Assignment struct {
	BaseModel
	TaskID   uuid.UUID `json:"task_id" db:"task_id"`
	MemberID uuid.UUID `json:"member_id" db:"member_id"`
	Date     string    `json:"date" db:"date"`

	StartTime string `json:"start_time" db:"start_time"` // HH:mm
	EndTime   string `json:"end_time" db:"end_time"`     // HH:mm
	Duration  int    `json:"duration" db:"duration"`     // 分钟

	Reason string           `json:"reason,omitempty" db:"reason"`
	Locked bool             `json:"locked" db:"locked"` // 锁定的分配不参与重新生成
	Status AssignmentStatus `json:"status" db:"status"`
}

// IsOnDate 检查分配是否在指定日期
func (a *Assignment) IsOnDate(date string) bool {
	return a.Date == date
}

// DailyWorkload 员工单日工作量
// TotalDuration 仅统计非保养任务的时长
type DailyWorkload struct {
	MemberID       uuid.UUID     `json:"member_id"`
	MemberName     string        `json:"member_name,omitempty"`
	Date           string        `json:"date"`
	Capacity       int           `json:"capacity"`        // 可用工作容量（分钟）
	TotalDuration  int           `json:"total_duration"`  // 已分配时长（不含保养）
	UpkeepDuration int           `json:"upkeep_duration"` // 保养任务时长
	Assignments    []*Assignment `json:"assignments"`
}

// CanFit 检查在软性超载余量内能否再容纳指定时长
func (w *DailyWorkload) CanFit(duration, overCapacityThreshold int) bool {
	return w.TotalDuration+duration <= w.Capacity+overCapacityThreshold
}

// Add 记录一笔分配并累计相应时长
func (w *DailyWorkload) Add(a *Assignment, upkeep bool) {
	w.Assignments = append(w.Assignments, a)
	if upkeep {
		w.UpkeepDuration += a.Duration
	} else {
		w.TotalDuration += a.Duration
	}
}

// Excess 返回超出容量的分钟数（未超出为 0）
func (w *DailyWorkload) Excess() int {
	if w.TotalDuration > w.Capacity {
		return w.TotalDuration - w.Capacity
	}
	return 0
}

// UnassignedReason 未分配原因码（封闭枚举，供前端映射为提示文案）
type UnassignedReason string

const (
	ReasonNoStaffToday      UnassignedReason = "no_staff_today"
	ReasonNoSkill           UnassignedReason = "no_skill"
	ReasonCapacityFull      UnassignedReason = "capacity_full"
	ReasonNoSkillOrCapacity UnassignedReason = "no_skill_or_capacity"
)

// UnassignedTask 未分配任务及其原因集合
type UnassignedTask struct {
	TaskID   uuid.UUID          `json:"task_id"`
	TaskName string             `json:"task_name"`
	TaskCode string             `json:"task_code,omitempty"`
	Reasons  []UnassignedReason `json:"reasons"`
	Details  string             `json:"details,omitempty"`
}

// AddReason 追加原因码（去重）
func (u *UnassignedTask) AddReason(r UnassignedReason) {
	for _, existing := range u.Reasons {
		if existing == r {
			return
		}
	}
	u.Reasons = append(u.Reasons, r)
}

// OverCapacityMember 超载员工标记
type OverCapacityMember struct {
	MemberID      uuid.UUID `json:"member_id"`
	MemberName    string    `json:"member_name,omitempty"`
	Date          string    `json:"date"`
	Capacity      int       `json:"capacity"`
	TotalDuration int       `json:"total_duration"`
	ExcessMinutes int       `json:"excess_minutes"`
}
