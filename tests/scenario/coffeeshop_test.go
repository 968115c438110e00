// Package scenario 提供场景测试
package scenario

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/paigong/paigong/pkg/engine"
	"github.com/paigong/paigong/pkg/model"
)

// TestCoffeeShopDailyDispatch 咖啡店单日派工测试
func TestCoffeeShopDailyDispatch(t *testing.T) {
	barista := createSkill("咖啡制作")
	cashier := createSkill("收银")

	// 创建员工
	manager := createMember("张店长", []uuid.UUID{barista.ID, cashier.ID}, []string{"store_manager"})
	senior := createMember("李师傅", []uuid.UUID{barista.ID}, nil)
	junior := createMember("王小新", []uuid.UUID{cashier.ID}, nil)
	members := []*model.Member{manager, senior, junior}

	// 当日班次：全员 09:00-17:00
	var shifts []*model.ScheduleShift
	for _, m := range members {
		shifts = append(shifts, createShift(m.ID, "2026-08-24", "09:00", "17:00"))
	}

	// 创建任务
	tasks := []*model.Task{
		createTask("01-开店巡检", "01-开店巡检", 30, func(tk *model.Task) {
			tk.IsMustRun = true
			tk.EarliestStart = "09:00"
			tk.DueBy = "09:30"
		}),
		createTask("咖啡机清洗", "05-咖啡机清洗", 45, func(tk *model.Task) {
			tk.RequiredSkillIDs = []uuid.UUID{barista.ID}
		}),
		createTask("收银对账", "08-收银对账", 60, func(tk *model.Task) {
			tk.RequiredSkillIDs = []uuid.UUID{cashier.ID}
			tk.DueBy = "EOD"
		}),
		createTask("环境保养", "09-环境保养", 120, func(tk *model.Task) {
			tk.Type = model.TaskUpkeep
		}),
	}

	// 显式规则：咖啡机清洗固定由李师傅负责
	rules := []*model.ExplicitRule{{
		BaseModel: model.NewBaseModel(),
		TaskID:    tasks[1].ID,
		Primary:   model.SelectorSpec{Kind: model.SelectorMember, Value: senior.ID.String()},
	}}

	e := engine.New()
	result, err := e.GenerateAssignments(context.Background(), &engine.Input{
		Members:     members,
		Tasks:       tasks,
		Rules:       rules,
		DaySchedule: shifts,
		Settings:    model.DefaultManagerSettings(),
		TargetDate:  "2026-08-24",
	})
	if err != nil {
		t.Fatalf("派工执行失败: %v", err)
	}

	t.Logf("分配数: %d", len(result.Assignments))
	t.Logf("未分配数: %d", len(result.Unassigned))

	if len(result.Assignments) != len(tasks) {
		t.Fatalf("全部任务应被分配，got %d/%d", len(result.Assignments), len(tasks))
	}
	if len(result.Unassigned) != 0 {
		t.Errorf("不应有未分配任务: %+v", result.Unassigned)
	}

	byTask := make(map[uuid.UUID]*model.Assignment)
	for _, a := range result.Assignments {
		byTask[a.TaskID] = a
	}

	// 规则约束：咖啡机清洗必须是李师傅
	if got := byTask[tasks[1].ID]; got.MemberID != senior.ID {
		t.Error("咖啡机清洗应由规则指定的李师傅承接")
	}
	// 技能约束：收银对账只能落在持收银技能的员工上
	if got := byTask[tasks[2].ID]; got.MemberID == senior.ID {
		t.Error("收银对账不应分配给无收银技能的员工")
	}

	// 工作量不应超过硬性容量加软性余量
	threshold := model.DefaultManagerSettings().OverCapacityThreshold
	for _, wl := range result.Workloads {
		t.Logf("员工 %s 负载: %d/%d 分钟", wl.MemberName, wl.TotalDuration, wl.Capacity)
		if wl.TotalDuration > wl.Capacity+threshold {
			t.Errorf("员工 %s 负载 %d 超出软性上限", wl.MemberName, wl.TotalDuration)
		}
	}
}

// TestCoffeeShopLockedAssignmentRerun 锁定后重算测试
func TestCoffeeShopLockedAssignmentRerun(t *testing.T) {
	a := createMember("甲", nil, nil)
	b := createMember("乙", nil, nil)
	members := []*model.Member{a, b}
	shifts := []*model.ScheduleShift{
		createShift(a.ID, "2026-08-24", "09:00", "17:00"),
		createShift(b.ID, "2026-08-24", "09:00", "17:00"),
	}
	task := createTask("盘点", "03-盘点", 90, nil)

	e := engine.New()
	input := &engine.Input{
		Members:     members,
		Tasks:       []*model.Task{task},
		DaySchedule: shifts,
		Settings:    model.DefaultManagerSettings(),
		TargetDate:  "2026-08-24",
	}

	first, err := e.GenerateAssignments(context.Background(), input)
	if err != nil {
		t.Fatalf("派工执行失败: %v", err)
	}
	if len(first.Assignments) != 1 {
		t.Fatal("应产生1笔分配")
	}

	// 店长手工锁定到另一名员工后重算
	locked := first.Assignments[0]
	if locked.MemberID == a.ID {
		locked.MemberID = b.ID
	} else {
		locked.MemberID = a.ID
	}
	locked.Locked = true
	locked.Reason = "店长指定"
	input.LockedAssignments = []*model.Assignment{locked}

	second, err := e.GenerateAssignments(context.Background(), input)
	if err != nil {
		t.Fatalf("重算失败: %v", err)
	}

	if len(second.Assignments) != 1 {
		t.Fatalf("锁定任务不应重复分配，got %d", len(second.Assignments))
	}
	got := second.Assignments[0]
	if got.MemberID != locked.MemberID || got.Reason != "店长指定" {
		t.Error("锁定的分配在重算后应原样保留")
	}
}

// 辅助函数

func createSkill(name string) *model.Skill {
	return &model.Skill{BaseModel: model.NewBaseModel(), Name: name}
}

func createMember(name string, skillIDs []uuid.UUID, roleTags []string) *model.Member {
	return &model.Member{
		BaseModel: model.NewBaseModel(),
		Name:      name,
		Code:      name,
		Status:    "active",
		SkillIDs:  skillIDs,
		RoleTags:  roleTags,
	}
}

func createShift(memberID uuid.UUID, date, start, end string) *model.ScheduleShift {
	return &model.ScheduleShift{
		BaseModel: model.NewBaseModel(),
		MemberID:  memberID,
		Date:      date,
		Window:    model.ClockRange{Start: start, End: end},
	}
}

func createTask(name, code string, duration int, mutate func(*model.Task)) *model.Task {
	task := &model.Task{
		BaseModel:  model.NewBaseModel(),
		Name:       name,
		Code:       code,
		Type:       model.TaskStandard,
		Recurrence: model.RecurDaily,
		Duration:   duration,
	}
	if mutate != nil {
		mutate(task)
	}
	return task
}
