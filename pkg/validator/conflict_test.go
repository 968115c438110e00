package validator

import (
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/paigong/paigong/pkg/model"
)

const testDate = "2026-08-24" // 星期一

func newMember(name string) *model.Member {
	return &model.Member{
		BaseModel: model.NewBaseModel(),
		Name:      name,
		Code:      name,
		Status:    "active",
	}
}

func newShift(memberID uuid.UUID, areaID *uuid.UUID, start, end string) *model.PlannedShift {
	return &model.PlannedShift{
		BaseModel: model.NewBaseModel(),
		MemberID:  memberID,
		Date:      testDate,
		Window:    model.ClockRange{Start: start, End: end},
		AreaID:    areaID,
		Source:    model.SourcePlanner,
		Status:    model.ShiftPublished,
	}
}

func allDayAvailability(memberID uuid.UUID) *model.Availability {
	return &model.Availability{
		BaseModel: model.NewBaseModel(),
		MemberID:  memberID,
		Weekday:   time.Monday,
		Window:    model.ClockRange{Start: "08:00", End: "22:00"},
	}
}

func filterByType(conflicts []*model.PlannerConflict, t model.ConflictType) []*model.PlannerConflict {
	var out []*model.PlannerConflict
	for _, c := range conflicts {
		if c.Type == t {
			out = append(out, c)
		}
	}
	return out
}

func TestCalculatePlannerConflicts_UnderCoverage(t *testing.T) {
	areaID := uuid.New()
	m := newMember("甲")
	target := &model.StaffingTarget{
		BaseModel: model.NewBaseModel(),
		Weekday:   time.Monday,
		AreaID:    areaID,
		Window:    model.ClockRange{Start: "09:00", End: "17:00"},
		Required:  2,
	}
	shifts := []*model.PlannedShift{newShift(m.ID, &areaID, "09:00", "17:00")}

	d := NewConflictDetector(map[uuid.UUID]string{areaID: "前台"})
	conflicts := d.CalculatePlannerConflicts(shifts,
		[]*model.StaffingTarget{target}, []*model.Member{m},
		[]*model.Availability{allDayAvailability(m.ID)}, []string{testDate})

	under := filterByType(conflicts, model.ConflictUnderCoverage)
	if len(under) != 1 {
		t.Fatalf("应检出1个人力不足冲突，got %d", len(under))
	}
	c := under[0]
	if c.Severity != model.SeverityMedium {
		t.Errorf("严重度 = %s, expected medium", c.Severity)
	}
	if c.Date != testDate || c.AreaID == nil || *c.AreaID != areaID {
		t.Error("冲突应标注日期与区域")
	}
	if !strings.Contains(c.Details, "前台") {
		t.Errorf("详情应包含区域名，got %q", c.Details)
	}
}

func TestCalculatePlannerConflicts_OverCoverage(t *testing.T) {
	areaID := uuid.New()
	a := newMember("甲")
	b := newMember("乙")
	target := &model.StaffingTarget{
		BaseModel: model.NewBaseModel(),
		Weekday:   time.Monday,
		AreaID:    areaID,
		Window:    model.ClockRange{Start: "09:00", End: "17:00"},
		Required:  1,
	}
	shifts := []*model.PlannedShift{
		newShift(a.ID, &areaID, "09:00", "17:00"),
		newShift(b.ID, &areaID, "09:00", "17:00"),
	}

	d := NewConflictDetector(nil)
	conflicts := d.CalculatePlannerConflicts(shifts,
		[]*model.StaffingTarget{target}, []*model.Member{a, b},
		[]*model.Availability{allDayAvailability(a.ID), allDayAvailability(b.ID)},
		[]string{testDate})

	over := filterByType(conflicts, model.ConflictOverCoverage)
	if len(over) != 1 {
		t.Fatalf("应检出1个过度覆盖冲突，got %d", len(over))
	}
	if over[0].Severity != model.SeverityLow {
		t.Errorf("严重度 = %s, expected low", over[0].Severity)
	}
}

func TestCalculatePlannerConflicts_NilAreaCoversAnyTarget(t *testing.T) {
	areaID := uuid.New()
	m := newMember("甲")
	target := &model.StaffingTarget{
		BaseModel: model.NewBaseModel(),
		Weekday:   time.Monday,
		AreaID:    areaID,
		Window:    model.ClockRange{Start: "09:00", End: "17:00"},
		Required:  1,
	}
	// 未标区域的班次可覆盖任何目标
	shifts := []*model.PlannedShift{newShift(m.ID, nil, "09:00", "17:00")}

	d := NewConflictDetector(nil)
	conflicts := d.CalculatePlannerConflicts(shifts,
		[]*model.StaffingTarget{target}, []*model.Member{m},
		[]*model.Availability{allDayAvailability(m.ID)}, []string{testDate})

	if len(filterByType(conflicts, model.ConflictUnderCoverage)) != 0 {
		t.Error("未标区域的班次应计入任意目标的覆盖")
	}
}

func TestCalculatePlannerConflicts_AvailabilityMissing(t *testing.T) {
	m := newMember("甲")
	shifts := []*model.PlannedShift{newShift(m.ID, nil, "09:00", "17:00")}

	d := NewConflictDetector(nil)
	conflicts := d.CalculatePlannerConflicts(shifts, nil,
		[]*model.Member{m}, nil, []string{testDate})

	viol := filterByType(conflicts, model.ConflictAvailabilityViolation)
	if len(viol) != 1 {
		t.Fatalf("无可用登记应检出违规，got %d", len(viol))
	}
	c := viol[0]
	if c.Severity != model.SeverityHigh {
		t.Errorf("严重度 = %s, expected high", c.Severity)
	}
	if c.MemberID == nil || *c.MemberID != m.ID {
		t.Error("冲突应标注员工")
	}
	if !strings.Contains(c.Details, "周一") {
		t.Errorf("详情应包含星期中文名，got %q", c.Details)
	}
}

func TestCalculatePlannerConflicts_AvailabilityNotContained(t *testing.T) {
	m := newMember("甲")
	shifts := []*model.PlannedShift{newShift(m.ID, nil, "09:00", "18:00")}
	avail := []*model.Availability{{
		BaseModel: model.NewBaseModel(),
		MemberID:  m.ID,
		Weekday:   time.Monday,
		Window:    model.ClockRange{Start: "09:00", End: "17:00"},
	}}

	d := NewConflictDetector(nil)
	conflicts := d.CalculatePlannerConflicts(shifts, nil, []*model.Member{m}, avail, []string{testDate})

	viol := filterByType(conflicts, model.ConflictAvailabilityViolation)
	if len(viol) != 1 {
		t.Fatalf("班次超出可用窗口应检出违规，got %d", len(viol))
	}
	if viol[0].Severity != model.SeverityHigh {
		t.Errorf("严重度 = %s, expected high", viol[0].Severity)
	}
}

func TestCalculatePlannerConflicts_WeeklyOvertime(t *testing.T) {
	m := newMember("甲")
	m.MaxWeeklyMinutes = 900

	// 周一周二各 480，共 960 > 900
	monday := newShift(m.ID, nil, "09:00", "17:00")
	tuesday := newShift(m.ID, nil, "09:00", "17:00")
	tuesday.Date = "2026-08-25"

	avail := []*model.Availability{allDayAvailability(m.ID), {
		BaseModel: model.NewBaseModel(),
		MemberID:  m.ID,
		Weekday:   time.Tuesday,
		Window:    model.ClockRange{Start: "08:00", End: "22:00"},
	}}

	d := NewConflictDetector(nil)
	conflicts := d.CalculatePlannerConflicts(
		[]*model.PlannedShift{monday, tuesday}, nil,
		[]*model.Member{m}, avail, []string{testDate, "2026-08-25"})

	over := filterByType(conflicts, model.ConflictOvertimeRisk)
	if len(over) != 1 {
		t.Fatalf("应检出1个周超时风险，got %d", len(over))
	}
	if over[0].Severity != model.SeverityMedium {
		t.Errorf("严重度 = %s, expected medium", over[0].Severity)
	}
	if !strings.Contains(over[0].Details, "960") {
		t.Errorf("详情应包含累计分钟数，got %q", over[0].Details)
	}
}

func TestCalculatePlannerConflicts_DailyOvertime(t *testing.T) {
	m := newMember("甲")
	m.MaxDailyMinutes = 600

	shifts := []*model.PlannedShift{
		newShift(m.ID, nil, "08:00", "14:00"),
		newShift(m.ID, nil, "15:00", "21:00"), // 当日共 720 > 600
	}

	d := NewConflictDetector(nil)
	conflicts := d.CalculatePlannerConflicts(shifts, nil, []*model.Member{m},
		[]*model.Availability{allDayAvailability(m.ID)}, []string{testDate})

	over := filterByType(conflicts, model.ConflictOvertimeRisk)
	if len(over) != 1 {
		t.Fatalf("应检出1个日超时风险，got %d", len(over))
	}
	if over[0].Date != testDate {
		t.Error("日超时冲突应标注日期")
	}
}

func TestCalculatePlannerConflicts_OutOfScopeIgnored(t *testing.T) {
	m := newMember("甲")
	outside := newShift(m.ID, nil, "09:00", "17:00")
	outside.Date = "2026-09-01"

	d := NewConflictDetector(nil)
	conflicts := d.CalculatePlannerConflicts(
		[]*model.PlannedShift{outside}, nil, []*model.Member{m}, nil, []string{testDate})

	if len(conflicts) != 0 {
		t.Errorf("检测范围外的班次不应产生冲突，got %d", len(conflicts))
	}
}

func TestCalculatePlannerConflicts_CleanSchedule(t *testing.T) {
	areaID := uuid.New()
	m := newMember("甲")
	target := &model.StaffingTarget{
		BaseModel: model.NewBaseModel(),
		Weekday:   time.Monday,
		AreaID:    areaID,
		Window:    model.ClockRange{Start: "09:00", End: "17:00"},
		Required:  1,
	}
	shifts := []*model.PlannedShift{newShift(m.ID, &areaID, "09:00", "17:00")}

	d := NewConflictDetector(map[uuid.UUID]string{areaID: "前台"})
	conflicts := d.CalculatePlannerConflicts(shifts,
		[]*model.StaffingTarget{target}, []*model.Member{m},
		[]*model.Availability{allDayAvailability(m.ID)}, []string{testDate})

	if len(conflicts) != 0 {
		t.Errorf("合规排班不应检出冲突，got %+v", conflicts)
	}
}
