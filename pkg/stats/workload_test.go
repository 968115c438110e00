package stats

import (
	"math"
	"testing"

	"github.com/google/uuid"
	"github.com/paigong/paigong/pkg/model"
)

func workload(name string, capacity, total, upkeep, taskCount int) *model.DailyWorkload {
	wl := &model.DailyWorkload{
		MemberID:       uuid.New(),
		MemberName:     name,
		Date:           testDate,
		Capacity:       capacity,
		TotalDuration:  total,
		UpkeepDuration: upkeep,
	}
	for i := 0; i < taskCount; i++ {
		wl.Assignments = append(wl.Assignments, &model.Assignment{BaseModel: model.NewBaseModel()})
	}
	return wl
}

func TestAnalyzeWorkloads_Empty(t *testing.T) {
	m := AnalyzeWorkloads(nil)
	if len(m.MemberStats) != 0 || m.AvgMinutes != 0 {
		t.Error("空输入应返回零值指标")
	}
}

func TestAnalyzeWorkloads_Aggregates(t *testing.T) {
	a := workload("甲", 480, 240, 0, 2)
	b := workload("乙", 480, 360, 30, 3)

	m := AnalyzeWorkloads(map[uuid.UUID]*model.DailyWorkload{a.MemberID: a, b.MemberID: b})

	if m.AvgMinutes != 300 {
		t.Errorf("人均分钟 = %v, expected 300", m.AvgMinutes)
	}
	if m.MaxMinutes != 360 || m.MinMinutes != 240 {
		t.Errorf("极值 = %d/%d, expected 360/240", m.MaxMinutes, m.MinMinutes)
	}
	if m.MinutesRange != 120 {
		t.Errorf("极差 = %d, expected 120", m.MinutesRange)
	}
	if math.Abs(m.StdDev-60) > 0.001 {
		t.Errorf("标准差 = %v, expected 60", m.StdDev)
	}
	// 利用率 (50% + 75%) / 2
	if math.Abs(m.AvgUtilization-62.5) > 0.001 {
		t.Errorf("平均利用率 = %v, expected 62.5", m.AvgUtilization)
	}
	if len(m.MemberStats) != 2 {
		t.Fatalf("员工统计数 = %d, expected 2", len(m.MemberStats))
	}
}

func TestAnalyzeWorkloads_ZeroCapacityExcludedFromUtilization(t *testing.T) {
	onShift := workload("甲", 480, 480, 0, 1)
	offShift := workload("乙", 0, 0, 0, 0)

	m := AnalyzeWorkloads(map[uuid.UUID]*model.DailyWorkload{
		onShift.MemberID: onShift, offShift.MemberID: offShift,
	})

	// 无班次员工不计入利用率均值
	if m.AvgUtilization != 100 {
		t.Errorf("平均利用率 = %v, expected 100", m.AvgUtilization)
	}
	for _, stat := range m.MemberStats {
		if stat.MemberName == "乙" && stat.Utilization != 0 {
			t.Error("零容量员工利用率应为 0")
		}
	}
}

func TestAnalyzeWorkloads_StableOrder(t *testing.T) {
	a := workload("甲", 480, 100, 0, 1)
	b := workload("乙", 480, 200, 0, 1)
	c := workload("丙", 480, 300, 0, 1)
	in := map[uuid.UUID]*model.DailyWorkload{a.MemberID: a, b.MemberID: b, c.MemberID: c}

	first := AnalyzeWorkloads(in)
	for i := 0; i < 5; i++ {
		again := AnalyzeWorkloads(in)
		for j := range first.MemberStats {
			if first.MemberStats[j].MemberID != again.MemberStats[j].MemberID {
				t.Fatal("员工统计应按ID稳定排序")
			}
		}
	}
	for i := 1; i < len(first.MemberStats); i++ {
		if first.MemberStats[i-1].MemberID.String() > first.MemberStats[i].MemberID.String() {
			t.Fatal("员工统计未按ID升序排列")
		}
	}
}

func TestAnalyzeWorkloads_TaskCount(t *testing.T) {
	wl := workload("甲", 480, 180, 60, 4)
	m := AnalyzeWorkloads(map[uuid.UUID]*model.DailyWorkload{wl.MemberID: wl})

	stat := m.MemberStats[0]
	if stat.TaskCount != 4 {
		t.Errorf("任务数 = %d, expected 4", stat.TaskCount)
	}
	if stat.UpkeepDuration != 60 {
		t.Errorf("保养时长 = %d, expected 60", stat.UpkeepDuration)
	}
}
