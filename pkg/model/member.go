// Package model 定义派工引擎的核心数据模型
package model

import (
	"time"

	"github.com/google/uuid"
)

// Skill 技能
type Skill struct {
	BaseModel
	Name        string `json:"name" db:"name"`
	Description string `json:"description,omitempty" db:"description"`
}

// Member 员工
type Member struct {
	BaseModel
	Name   string `json:"name" db:"name"`
	Code   string `json:"code" db:"code"`
	Status string `json:"status" db:"status"` // active/inactive/leave

	// 派工相关
	RoleTags []string    `json:"role_tags,omitempty" db:"role_tags"`
	SkillIDs []uuid.UUID `json:"skill_ids,omitempty" db:"skill_ids"`

	// 容量约束
	FixedCommitmentMinutes int `json:"fixed_commitment_minutes" db:"fixed_commitment_minutes"` // 每日固定非任务时间（分钟）
	MaxDailyMinutes        int `json:"max_daily_minutes,omitempty" db:"max_daily_minutes"`     // 0 表示无限制
	MaxWeeklyMinutes       int `json:"max_weekly_minutes,omitempty" db:"max_weekly_minutes"`   // 0 表示无限制

	// 班次偏好
	ShiftClassPrefs []ShiftClass `json:"shift_class_prefs,omitempty" db:"shift_class_prefs"`
}

// IsActive 检查员工是否在职
func (m *Member) IsActive() bool {
	return m.Status == "active"
}

// HasSkill 检查员工是否具备某技能
func (m *Member) HasSkill(skillID uuid.UUID) bool {
	for _, s := range m.SkillIDs {
		if s == skillID {
			return true
		}
	}
	return false
}

// HasAllSkills 检查员工是否具备全部所需技能
func (m *Member) HasAllSkills(skillIDs []uuid.UUID) bool {
	for _, s := range skillIDs {
		if !m.HasSkill(s) {
			return false
		}
	}
	return true
}

// HasRoleTag 检查员工是否具备某角色标签
func (m *Member) HasRoleTag(tag string) bool {
	for _, t := range m.RoleTags {
		if t == tag {
			return true
		}
	}
	return false
}

// PrefersShiftClass 检查员工是否偏好某班次类型
func (m *Member) PrefersShiftClass(class ShiftClass) bool {
	for _, p := range m.ShiftClassPrefs {
		if p == class {
			return true
		}
	}
	return false
}

// Availability 员工每周可用时间窗口
type Availability struct {
	BaseModel
	MemberID uuid.UUID    `json:"member_id" db:"member_id"`
	Weekday  time.Weekday `json:"weekday" db:"weekday"`
	Window   ClockRange   `json:"window" db:"window"`
}
