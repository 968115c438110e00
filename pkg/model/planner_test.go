package model

import (
	"testing"
	"time"
)

func TestClassifyShift(t *testing.T) {
	tests := []struct {
		name     string
		start    string
		weekday  time.Weekday
		expected ShiftClass
	}{
		{"周六统一为周末班", "10:00", time.Saturday, ClassWeekend},
		{"周日深夜也是周末班", "23:00", time.Sunday, ClassWeekend},
		{"22点后为夜班", "22:00", time.Monday, ClassOvernight},
		{"23点半为夜班", "23:30", time.Friday, ClassOvernight},
		{"9点前为开店班", "06:00", time.Tuesday, ClassOpening},
		{"8点59为开店班", "08:59", time.Wednesday, ClassOpening},
		{"9点整为中班", "09:00", time.Thursday, ClassMidShift},
		{"午后13点为中班", "13:59", time.Monday, ClassMidShift},
		{"14点起为闭店班", "14:00", time.Monday, ClassClosing},
		{"傍晚为闭店班", "18:00", time.Friday, ClassClosing},
		{"非法时间退化为通用", "??", time.Monday, ClassGeneral},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ClassifyShift(tt.start, tt.weekday); got != tt.expected {
				t.Errorf("ClassifyShift(%q, %v) = %v, expected %v", tt.start, tt.weekday, got, tt.expected)
			}
		})
	}
}

func TestMember_PrefersShiftClass(t *testing.T) {
	m := &Member{ShiftClassPrefs: []ShiftClass{ClassOpening, ClassWeekend}}

	if !m.PrefersShiftClass(ClassOpening) {
		t.Error("应偏好开店班")
	}
	if m.PrefersShiftClass(ClassClosing) {
		t.Error("不应偏好闭店班")
	}

	empty := &Member{}
	if empty.PrefersShiftClass(ClassOpening) {
		t.Error("无偏好记录时应返回 false")
	}
}

func TestPlannedShift_CoversArea(t *testing.T) {
	area := NewBaseModel().ID

	withArea := &PlannedShift{AreaID: &area}
	if !withArea.CoversArea(area) {
		t.Error("应覆盖自身归属的区域")
	}

	other := NewBaseModel().ID
	if withArea.CoversArea(other) {
		t.Error("不应覆盖其他区域")
	}

	noArea := &PlannedShift{}
	if noArea.CoversArea(area) {
		t.Error("CoversArea 对无区域班次应为 false")
	}
}

func TestDailyWorkload_CanFit(t *testing.T) {
	wl := &DailyWorkload{Capacity: 480, TotalDuration: 450}

	if !wl.CanFit(30, 0) {
		t.Error("恰好占满容量应允许")
	}
	if wl.CanFit(31, 0) {
		t.Error("无余量时超出容量应拒绝")
	}
	if !wl.CanFit(60, 30) {
		t.Error("软性余量内应允许")
	}
	if wl.CanFit(61, 30) {
		t.Error("超出软性余量应拒绝")
	}
}

func TestDailyWorkload_Add(t *testing.T) {
	wl := &DailyWorkload{Capacity: 480}

	wl.Add(&Assignment{Duration: 60}, false)
	wl.Add(&Assignment{Duration: 30}, true)

	if wl.TotalDuration != 60 {
		t.Errorf("保养时长不应计入 TotalDuration，got %d, expected 60", wl.TotalDuration)
	}
	if wl.UpkeepDuration != 30 {
		t.Errorf("UpkeepDuration = %d, expected 30", wl.UpkeepDuration)
	}
	if len(wl.Assignments) != 2 {
		t.Errorf("Assignments 数量 = %d, expected 2", len(wl.Assignments))
	}
}

func TestUnassignedTask_AddReason(t *testing.T) {
	u := &UnassignedTask{}
	u.AddReason(ReasonNoSkill)
	u.AddReason(ReasonNoSkill)
	u.AddReason(ReasonCapacityFull)

	if len(u.Reasons) != 2 {
		t.Errorf("重复原因应去重，got %v", u.Reasons)
	}
}
