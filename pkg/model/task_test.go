package model

import (
	"testing"
	"time"

	"github.com/google/uuid"
)

func TestTask_OccursOn(t *testing.T) {
	tests := []struct {
		name     string
		task     Task
		weekday  time.Weekday
		expected bool
	}{
		{"每日任务任何星期都生效", Task{Recurrence: RecurDaily}, time.Wednesday, true},
		{"每周任务匹配星期", Task{Recurrence: RecurWeekly, RecurrenceDetail: "monday"}, time.Monday, true},
		{"每周任务匹配缩写", Task{Recurrence: RecurWeekly, RecurrenceDetail: "fri"}, time.Friday, true},
		{"每周任务不匹配", Task{Recurrence: RecurWeekly, RecurrenceDetail: "monday"}, time.Tuesday, false},
		{"每月任务不进入自动派工", Task{Recurrence: RecurMonthly}, time.Monday, false},
		{"一次性任务不进入自动派工", Task{Recurrence: RecurOneTime}, time.Monday, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.task.OccursOn(tt.weekday); got != tt.expected {
				t.Errorf("OccursOn(%v) = %v, expected %v", tt.weekday, got, tt.expected)
			}
		})
	}
}

func TestTask_DueClass(t *testing.T) {
	tests := []struct {
		name     string
		dueBy    string
		expected DueClass
	}{
		{"具体时刻", "11:00", DueClassTimed},
		{"当日结束", DueEOD, DueClassEOD},
		{"持续任务", DueContinuous, DueClassNone},
		{"未指定", "", DueClassNone},
		{"无法解析退化为无截止", "soon", DueClassNone},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			task := &Task{DueBy: tt.dueBy}
			if got := task.DueClass(); got != tt.expected {
				t.Errorf("DueClass() = %v, expected %v", got, tt.expected)
			}
		})
	}
}

func TestTask_DueMinutes(t *testing.T) {
	timed := &Task{DueBy: "11:30"}
	if got := timed.DueMinutes(); got != 690 {
		t.Errorf("DueMinutes() = %d, expected 690", got)
	}

	eod := &Task{DueBy: DueEOD}
	if got := eod.DueMinutes(); got != -1 {
		t.Errorf("EOD任务 DueMinutes() = %d, expected -1", got)
	}
}

func TestTask_CodeNumericToken(t *testing.T) {
	tests := []struct {
		name     string
		code     string
		expected int
	}{
		{"纯数字前缀", "03-开店巡检", 3},
		{"多位数字", "12B", 12},
		{"无前导数字", "ABC", -1},
		{"空编号", "", -1},
		{"带空格", " 7-盘点", 7},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			task := &Task{Code: tt.code}
			if got := task.CodeNumericToken(); got != tt.expected {
				t.Errorf("CodeNumericToken() = %d, expected %d", got, tt.expected)
			}
		})
	}
}

func TestMember_HasSkill(t *testing.T) {
	skillA := uuid.New()
	skillB := uuid.New()
	m := &Member{SkillIDs: []uuid.UUID{skillA}}

	if !m.HasSkill(skillA) {
		t.Error("应具备已登记的技能")
	}
	if m.HasSkill(skillB) {
		t.Error("不应具备未登记的技能")
	}
	if !m.HasAllSkills(nil) {
		t.Error("空技能要求应视为满足")
	}
	if m.HasAllSkills([]uuid.UUID{skillA, skillB}) {
		t.Error("缺少任一技能时 HasAllSkills 应为 false")
	}
}

func TestSelectorSpec_Decode(t *testing.T) {
	memberID := uuid.New()

	tests := []struct {
		name    string
		spec    SelectorSpec
		kind    SelectorKind
		wantErr bool
	}{
		{"员工选择器", SelectorSpec{Kind: SelectorMember, Value: memberID.String()}, SelectorMember, false},
		{"技能选择器", SelectorSpec{Kind: SelectorSkill, Value: uuid.New().String(), Label: "咖啡制作"}, SelectorSkill, false},
		{"角色选择器", SelectorSpec{Kind: SelectorRoleTag, Value: "store_manager"}, SelectorRoleTag, false},
		{"员工ID无效", SelectorSpec{Kind: SelectorMember, Value: "not-a-uuid"}, "", true},
		{"角色标签为空", SelectorSpec{Kind: SelectorRoleTag, Value: ""}, "", true},
		{"未知类型", SelectorSpec{Kind: "group", Value: "x"}, "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sel, err := tt.spec.Decode()
			if (err != nil) != tt.wantErr {
				t.Fatalf("Decode() error = %v, wantErr %v", err, tt.wantErr)
			}
			if !tt.wantErr && sel.Kind() != tt.kind {
				t.Errorf("Kind() = %v, expected %v", sel.Kind(), tt.kind)
			}
		})
	}
}

func TestSelector_ResolveCandidates(t *testing.T) {
	skillID := uuid.New()
	active := &Member{BaseModel: NewBaseModel(), Name: "张三", Status: "active",
		SkillIDs: []uuid.UUID{skillID}, RoleTags: []string{"barista"}}
	inactive := &Member{BaseModel: NewBaseModel(), Name: "李四", Status: "inactive",
		SkillIDs: []uuid.UUID{skillID}, RoleTags: []string{"barista"}}
	noSkill := &Member{BaseModel: NewBaseModel(), Name: "王五", Status: "active"}
	members := []*Member{active, inactive, noSkill}

	t.Run("员工选择器跳过离职员工", func(t *testing.T) {
		got := MemberSelector{MemberID: inactive.ID}.ResolveCandidates(members)
		if len(got) != 0 {
			t.Errorf("离职员工不应入选，got %v", got)
		}
	})

	t.Run("技能选择器仅返回在职持证者", func(t *testing.T) {
		got := SkillSelector{SkillID: skillID}.ResolveCandidates(members)
		if len(got) != 1 || got[0] != active.ID {
			t.Errorf("ResolveCandidates() = %v, expected [%v]", got, active.ID)
		}
	})

	t.Run("角色选择器按标签匹配", func(t *testing.T) {
		got := RoleTagSelector{Tag: "barista"}.ResolveCandidates(members)
		if len(got) != 1 || got[0] != active.ID {
			t.Errorf("ResolveCandidates() = %v, expected [%v]", got, active.ID)
		}
	})
}

func TestExplicitRule_ExcludesWeekday(t *testing.T) {
	rule := &ExplicitRule{ExcludedWeekdays: []string{"monday", "wed"}}

	if !rule.ExcludesWeekday(time.Monday) {
		t.Error("monday 应被排除")
	}
	if !rule.ExcludesWeekday(time.Wednesday) {
		t.Error("缩写 wed 应被排除")
	}
	if rule.ExcludesWeekday(time.Friday) {
		t.Error("friday 不应被排除")
	}
}
