package stats

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/paigong/paigong/pkg/model"
)

const testDate = "2026-08-24" // 星期一

func newShift(memberID uuid.UUID, areaID *uuid.UUID, date, start, end string) *model.PlannedShift {
	return &model.PlannedShift{
		BaseModel: model.NewBaseModel(),
		MemberID:  memberID,
		Date:      date,
		Window:    model.ClockRange{Start: start, End: end},
		AreaID:    areaID,
		Source:    model.SourcePlanner,
		Status:    model.ShiftPublished,
	}
}

func newTarget(areaID uuid.UUID, weekday time.Weekday, start, end string, required int) *model.StaffingTarget {
	return &model.StaffingTarget{
		BaseModel: model.NewBaseModel(),
		Weekday:   weekday,
		AreaID:    areaID,
		Window:    model.ClockRange{Start: start, End: end},
		Required:  required,
	}
}

func TestCoverageAnalyzer_FullCoverage(t *testing.T) {
	areaID := uuid.New()
	target := newTarget(areaID, time.Monday, "09:00", "17:00", 1)
	shifts := []*model.PlannedShift{newShift(uuid.New(), &areaID, testDate, "09:00", "17:00")}

	c := NewCoverageAnalyzer(map[uuid.UUID]string{areaID: "前台"})
	m := c.Analyze(shifts, []*model.StaffingTarget{target}, []string{testDate})

	if m.TotalTargets != 1 || m.MetTargets != 1 {
		t.Fatalf("目标统计 = %d/%d, expected 1/1", m.MetTargets, m.TotalTargets)
	}
	if m.OverallCoverage != 100 {
		t.Errorf("整体覆盖率 = %v, expected 100", m.OverallCoverage)
	}
	if len(m.Gaps) != 0 {
		t.Errorf("不应有覆盖缺口，got %d", len(m.Gaps))
	}
	if m.AreaCoverage["前台"] != 100 {
		t.Errorf("区域覆盖率 = %v, expected 100", m.AreaCoverage["前台"])
	}
	day := m.DailyCoverage[testDate]
	if day.PlannedShifts != 1 || day.TotalHours != 8 {
		t.Errorf("每日统计 = %d 班 %.1f 小时, expected 1 班 8.0 小时", day.PlannedShifts, day.TotalHours)
	}
}

func TestCoverageAnalyzer_Gap(t *testing.T) {
	areaID := uuid.New()
	target := newTarget(areaID, time.Monday, "09:00", "17:00", 2)
	shifts := []*model.PlannedShift{newShift(uuid.New(), &areaID, testDate, "09:00", "17:00")}

	c := NewCoverageAnalyzer(map[uuid.UUID]string{areaID: "后厨"})
	m := c.Analyze(shifts, []*model.StaffingTarget{target}, []string{testDate})

	if m.OverallCoverage != 0 {
		t.Errorf("整体覆盖率 = %v, expected 0", m.OverallCoverage)
	}
	if len(m.Gaps) != 1 {
		t.Fatalf("应有1个覆盖缺口，got %d", len(m.Gaps))
	}
	gap := m.Gaps[0]
	if gap.AreaName != "后厨" || gap.Required != 2 || gap.Planned != 1 || gap.Shortage != 1 {
		t.Errorf("缺口明细不正确: %+v", gap)
	}
	if gap.Window != "09:00-17:00" {
		t.Errorf("缺口时段 = %s, expected 09:00-17:00", gap.Window)
	}
}

func TestCoverageAnalyzer_TargetOnOtherWeekdaySkipped(t *testing.T) {
	areaID := uuid.New()
	target := newTarget(areaID, time.Friday, "09:00", "17:00", 1)

	c := NewCoverageAnalyzer(nil)
	m := c.Analyze(nil, []*model.StaffingTarget{target}, []string{testDate})

	if m.TotalTargets != 0 {
		t.Errorf("周五目标不应计入周一的统计, got %d", m.TotalTargets)
	}
	if m.OverallCoverage != 100 {
		t.Errorf("无适用目标时覆盖率 = %v, expected 100", m.OverallCoverage)
	}
}

func TestCoverageAnalyzer_MultiDay(t *testing.T) {
	areaID := uuid.New()
	target := newTarget(areaID, time.Monday, "09:00", "17:00", 1)
	tueTarget := newTarget(areaID, time.Tuesday, "09:00", "17:00", 1)

	// 周一有人，周二无人
	shifts := []*model.PlannedShift{newShift(uuid.New(), &areaID, testDate, "09:00", "17:00")}

	c := NewCoverageAnalyzer(nil)
	m := c.Analyze(shifts, []*model.StaffingTarget{target, tueTarget},
		[]string{testDate, "2026-08-25"})

	if m.TotalTargets != 2 || m.MetTargets != 1 {
		t.Fatalf("目标统计 = %d/%d, expected 1/2", m.MetTargets, m.TotalTargets)
	}
	if m.OverallCoverage != 50 {
		t.Errorf("整体覆盖率 = %v, expected 50", m.OverallCoverage)
	}
	if m.DailyCoverage[testDate].CoverageRate != 100 {
		t.Error("周一覆盖率应为 100")
	}
	if m.DailyCoverage["2026-08-25"].CoverageRate != 0 {
		t.Error("周二覆盖率应为 0")
	}
}

func TestCoverageAnalyzer_EmptyDates(t *testing.T) {
	c := NewCoverageAnalyzer(nil)
	m := c.Analyze(nil, nil, nil)
	if m.OverallCoverage != 100 {
		t.Errorf("空输入覆盖率 = %v, expected 100", m.OverallCoverage)
	}
}
