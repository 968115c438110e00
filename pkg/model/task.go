// Package model 定义派工引擎的核心数据模型
package model

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
)

// TaskType 任务类型
type TaskType string

const (
	TaskStandard TaskType = "standard" // 常规任务
	TaskUpkeep   TaskType = "upkeep"   // 持续保养任务（不计入容量）
	TaskProject  TaskType = "project"  // 项目任务
)

// Recurrence 重复周期
type Recurrence string

const (
	RecurDaily   Recurrence = "daily"
	RecurWeekly  Recurrence = "weekly"
	RecurMonthly Recurrence = "monthly"
	RecurOneTime Recurrence = "one_time"
)

// 特殊截止时间取值
const (
	DueEOD        = "EOD"        // 当日结束前
	DueContinuous = "Continuous" // 无截止时间（持续）
)

// DueClass 截止时间类别（排序用，数值越小越紧迫）
type DueClass int

const (
	DueClassTimed DueClass = iota // 具体时刻 HH:mm
	DueClassEOD                   // 当日结束
	DueClassNone                  // Continuous 或未指定
)

// Task 任务
type Task struct {
	BaseModel
	Name string `json:"name" db:"name"`
	Code string `json:"code" db:"code"`
	Type TaskType `json:"type" db:"type"`

	// 技能与时长
	RequiredSkillIDs []uuid.UUID `json:"required_skill_ids,omitempty" db:"required_skill_ids"`
	Duration         int         `json:"duration" db:"duration"` // 预计时长（分钟）

	// 优先级与周期
	PriorityWeight   float64    `json:"priority_weight" db:"priority_weight"`
	Recurrence       Recurrence `json:"recurrence" db:"recurrence"`
	RecurrenceDetail string     `json:"recurrence_detail,omitempty" db:"recurrence_detail"` // weekly 时为星期名

	// 时间窗口
	EarliestStart string `json:"earliest_start,omitempty" db:"earliest_start"` // HH:mm
	DueBy         string `json:"due_by,omitempty" db:"due_by"`                 // HH:mm / EOD / Continuous

	// 分配标志
	IsMustRun        bool `json:"is_must_run" db:"is_must_run"`
	MinCoverage      int  `json:"min_coverage" db:"min_coverage"`
	AllowMultiAssign bool `json:"allow_multi_assign" db:"allow_multi_assign"`
}

// IsUpkeep 检查是否为保养任务（不计入容量，不参与截止紧迫度）
func (t *Task) IsUpkeep() bool {
	return t.Type == TaskUpkeep
}

// OccursOn 检查任务是否在指定星期自动生效
// daily 任务每天生效；weekly 任务仅在 RecurrenceDetail 匹配的星期生效；
// monthly 和 one_time 不进入自动派工池
func (t *Task) OccursOn(weekday time.Weekday) bool {
	switch t.Recurrence {
	case RecurDaily:
		return true
	case RecurWeekly:
		return MatchWeekday(t.RecurrenceDetail, weekday)
	default:
		return false
	}
}

// DueClass 返回截止时间类别
func (t *Task) DueClass() DueClass {
	switch t.DueBy {
	case "", DueContinuous:
		return DueClassNone
	case DueEOD:
		return DueClassEOD
	default:
		if _, err := ParseClock(t.DueBy); err != nil {
			return DueClassNone
		}
		return DueClassTimed
	}
}

// DueMinutes 返回截止时刻的当日分钟数，非具体时刻返回 -1
func (t *Task) DueMinutes() int {
	if t.DueClass() != DueClassTimed {
		return -1
	}
	return MustClock(t.DueBy)
}

// CodeNumericToken 提取任务编号的前导数字，无前导数字返回 -1
func (t *Task) CodeNumericToken() int {
	code := strings.TrimSpace(t.Code)
	i := 0
	for i < len(code) && code[i] >= '0' && code[i] <= '9' {
		i++
	}
	if i == 0 {
		return -1
	}
	n, err := strconv.Atoi(code[:i])
	if err != nil {
		return -1
	}
	return n
}

// SelectorKind 选择器类型
type SelectorKind string

const (
	SelectorMember  SelectorKind = "member"
	SelectorSkill   SelectorKind = "skill"
	SelectorRoleTag SelectorKind = "role_tag"
)

// Selector 候选人选择器（指定员工 / 技能 / 角色标签）
type Selector interface {
	Kind() SelectorKind

	// ResolveCandidates 解析出候选员工ID集合
	ResolveCandidates(members []*Member) []uuid.UUID

	// Describe 返回选择器的可读描述（用于分配理由）
	Describe() string
}

// MemberSelector 指定员工选择器
type MemberSelector struct {
	MemberID uuid.UUID `json:"member_id"`
}

// Kind 返回选择器类型
func (s MemberSelector) Kind() SelectorKind { return SelectorMember }

// ResolveCandidates 解析候选员工
func (s MemberSelector) ResolveCandidates(members []*Member) []uuid.UUID {
	for _, m := range members {
		if m.ID == s.MemberID && m.IsActive() {
			return []uuid.UUID{m.ID}
		}
	}
	return nil
}

// Describe 返回可读描述
func (s MemberSelector) Describe() string {
	return fmt.Sprintf("指定员工 %s", s.MemberID)
}

// SkillSelector 技能选择器
type SkillSelector struct {
	SkillID   uuid.UUID `json:"skill_id"`
	SkillName string    `json:"skill_name,omitempty"`
}

// Kind 返回选择器类型
func (s SkillSelector) Kind() SelectorKind { return SelectorSkill }

// ResolveCandidates 解析候选员工
func (s SkillSelector) ResolveCandidates(members []*Member) []uuid.UUID {
	var ids []uuid.UUID
	for _, m := range members {
		if m.IsActive() && m.HasSkill(s.SkillID) {
			ids = append(ids, m.ID)
		}
	}
	return ids
}

// Describe 返回可读描述
func (s SkillSelector) Describe() string {
	if s.SkillName != "" {
		return fmt.Sprintf("技能 %s", s.SkillName)
	}
	return fmt.Sprintf("技能 %s", s.SkillID)
}

// RoleTagSelector 角色标签选择器
type RoleTagSelector struct {
	Tag string `json:"tag"`
}

// Kind 返回选择器类型
func (s RoleTagSelector) Kind() SelectorKind { return SelectorRoleTag }

// ResolveCandidates 解析候选员工
func (s RoleTagSelector) ResolveCandidates(members []*Member) []uuid.UUID {
	var ids []uuid.UUID
	for _, m := range members {
		if m.IsActive() && m.HasRoleTag(s.Tag) {
			ids = append(ids, m.ID)
		}
	}
	return ids
}

// Describe 返回可读描述
func (s RoleTagSelector) Describe() string {
	return fmt.Sprintf("角色 %s", s.Tag)
}

// SelectorSpec 选择器的存储/传输形态
type SelectorSpec struct {
	Kind  SelectorKind `json:"kind"`
	Value string       `json:"value"`          // member/skill 为 UUID，role_tag 为标签文本
	Label string       `json:"label,omitempty"` // 可选的显示名（如技能名）
}

// Decode 解码为选择器
func (s SelectorSpec) Decode() (Selector, error) {
	switch s.Kind {
	case SelectorMember:
		id, err := uuid.Parse(s.Value)
		if err != nil {
			return nil, fmt.Errorf("员工选择器ID无效 %q: %w", s.Value, err)
		}
		return MemberSelector{MemberID: id}, nil
	case SelectorSkill:
		id, err := uuid.Parse(s.Value)
		if err != nil {
			return nil, fmt.Errorf("技能选择器ID无效 %q: %w", s.Value, err)
		}
		return SkillSelector{SkillID: id, SkillName: s.Label}, nil
	case SelectorRoleTag:
		if s.Value == "" {
			return nil, fmt.Errorf("角色选择器标签为空")
		}
		return RoleTagSelector{Tag: s.Value}, nil
	default:
		return nil, fmt.Errorf("未知选择器类型 %q", s.Kind)
	}
}

// ExplicitRule 显式分配规则
// 主选择器优先，按顺序回退；首个命中至少一名合格员工的选择器生效
type ExplicitRule struct {
	BaseModel
	TaskID           uuid.UUID      `json:"task_id" db:"task_id"`
	Primary          SelectorSpec   `json:"primary" db:"primary"`
	Fallbacks        []SelectorSpec `json:"fallbacks,omitempty" db:"fallbacks"`
	ExcludedWeekdays []string       `json:"excluded_weekdays,omitempty" db:"excluded_weekdays"` // 星期名（全称或缩写）
	ReasonTemplate   string         `json:"reason_template,omitempty" db:"reason_template"`
}

// ExcludesWeekday 检查规则是否在指定星期排除该任务
func (r *ExplicitRule) ExcludesWeekday(w time.Weekday) bool {
	for _, name := range r.ExcludedWeekdays {
		if MatchWeekday(name, w) {
			return true
		}
	}
	return false
}

// Selectors 按解析顺序返回全部选择器（主选择器在前）
func (r *ExplicitRule) Selectors() ([]Selector, error) {
	specs := append([]SelectorSpec{r.Primary}, r.Fallbacks...)
	selectors := make([]Selector, 0, len(specs))
	for _, spec := range specs {
		sel, err := spec.Decode()
		if err != nil {
			return nil, err
		}
		selectors = append(selectors, sel)
	}
	return selectors, nil
}
