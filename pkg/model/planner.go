// Package model 定义派工引擎的核心数据模型
package model

import (
	"time"

	"github.com/google/uuid"
)

// Area 工作区域
type Area struct {
	BaseModel
	Name        string `json:"name" db:"name"`
	Description string `json:"description,omitempty" db:"description"`
}

// StaffingTarget 人力配置目标（某星期某区域某时段所需人数）
type StaffingTarget struct {
	BaseModel
	Weekday  time.Weekday `json:"weekday" db:"weekday"`
	AreaID   uuid.UUID    `json:"area_id" db:"area_id"`
	Window   ClockRange   `json:"window" db:"window"`
	Required int          `json:"required" db:"required"`
}

// PlannedShiftSource 计划班次来源
type PlannedShiftSource string

const (
	SourcePlanner  PlannedShiftSource = "planner"
	SourceTemplate PlannedShiftSource = "template"
	SourceManual   PlannedShiftSource = "manual"
	SourceAutoFill PlannedShiftSource = "autofill"
)

// PlannedShiftStatus 计划班次状态
type PlannedShiftStatus string

const (
	ShiftDraft     PlannedShiftStatus = "draft"
	ShiftPublished PlannedShiftStatus = "published"
	ShiftConflict  PlannedShiftStatus = "conflict"
)

// PlannedShift 计划班次
type PlannedShift struct {
	BaseModel
	MemberID uuid.UUID          `json:"member_id" db:"member_id"`
	Date     string             `json:"date" db:"date"` // YYYY-MM-DD
	Window   ClockRange         `json:"window" db:"window"`
	AreaID   *uuid.UUID         `json:"area_id,omitempty" db:"area_id"`
	Source   PlannedShiftSource `json:"source" db:"source"`
	Status   PlannedShiftStatus `json:"status" db:"status"`
	Reason   string             `json:"reason,omitempty" db:"reason"`
}

// Minutes 返回班次时长（分钟）
func (p *PlannedShift) Minutes() int {
	return p.Window.Minutes()
}

// CoversArea 检查班次是否归属指定区域
func (p *PlannedShift) CoversArea(areaID uuid.UUID) bool {
	return p.AreaID != nil && *p.AreaID == areaID
}

// ConflictType 排班冲突类型
type ConflictType string

const (
	ConflictUnderCoverage         ConflictType = "under-coverage"
	ConflictOverCoverage          ConflictType = "over-coverage"
	ConflictAvailabilityViolation ConflictType = "availability-violation"
	ConflictOvertimeRisk          ConflictType = "overtime-risk"
	ConflictBreakViolation        ConflictType = "break-violation"
)

// ConflictSeverity 冲突严重程度
type ConflictSeverity string

const (
	SeverityLow    ConflictSeverity = "low"
	SeverityMedium ConflictSeverity = "medium"
	SeverityHigh   ConflictSeverity = "high"
)

// PlannerConflict 排班冲突
type PlannerConflict struct {
	Type     ConflictType     `json:"type"`
	Severity ConflictSeverity `json:"severity"`
	Date     string           `json:"date,omitempty"`
	Weekday  time.Weekday     `json:"weekday"`
	AreaID   *uuid.UUID       `json:"area_id,omitempty"`
	MemberID *uuid.UUID       `json:"member_id,omitempty"`
	Details  string           `json:"details"`
}

// ShiftClass 班次类型（由开始时间与星期推导，用于偏好评分）
type ShiftClass string

const (
	ClassOpening   ShiftClass = "opening"
	ClassMidShift  ShiftClass = "mid-shift"
	ClassClosing   ShiftClass = "closing"
	ClassOvernight ShiftClass = "overnight"
	ClassWeekend   ShiftClass = "weekend"
	ClassGeneral   ShiftClass = "general"
)

// ClassifyShift 推导班次类型
// 周六周日统一为 weekend；22:00 后开始为 overnight；
// 9:00 前开始为 opening，14:00 及以后为 closing，其余为 mid-shift
func ClassifyShift(start string, weekday time.Weekday) ShiftClass {
	if IsWeekend(weekday) {
		return ClassWeekend
	}
	m := MustClock(start)
	if m < 0 {
		return ClassGeneral
	}
	switch {
	case m >= 22*60:
		return ClassOvernight
	case m < 9*60:
		return ClassOpening
	case m >= 14*60:
		return ClassClosing
	default:
		return ClassMidShift
	}
}
