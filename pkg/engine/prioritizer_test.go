package engine

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/paigong/paigong/pkg/model"
)

func namedTask(name string, mutate func(*model.Task)) *model.Task {
	t := newTask(name, 30)
	if mutate != nil {
		mutate(t)
	}
	return t
}

func taskNames(tasks []*model.Task) []string {
	names := make([]string, len(tasks))
	for i, t := range tasks {
		names[i] = t.Name
	}
	return names
}

func assertOrder(t *testing.T, got []*model.Task, want []string) {
	t.Helper()
	names := taskNames(got)
	if len(names) != len(want) {
		t.Fatalf("任务数量 = %d, expected %d (%v)", len(names), len(want), names)
	}
	for i := range want {
		if names[i] != want[i] {
			t.Fatalf("排序 = %v, expected %v", names, want)
		}
	}
}

func TestPrioritizeTasks_MustRunFirst(t *testing.T) {
	normal := namedTask("普通", func(tk *model.Task) { tk.PriorityWeight = 100 })
	mustRun := namedTask("必做", func(tk *model.Task) { tk.IsMustRun = true })

	got := PrioritizeTasks([]*model.Task{normal, mustRun}, nil, time.Monday,
		model.DefaultManagerSettings(), nil)
	assertOrder(t, got, []string{"必做", "普通"})
}

func TestPrioritizeTasks_DueClassOrdering(t *testing.T) {
	timed := namedTask("定时", func(tk *model.Task) { tk.DueBy = "11:00" })
	eod := namedTask("日终", func(tk *model.Task) { tk.DueBy = "EOD" })
	open := namedTask("持续", nil)

	got := PrioritizeTasks([]*model.Task{open, eod, timed}, nil, time.Monday,
		model.DefaultManagerSettings(), nil)
	assertOrder(t, got, []string{"定时", "日终", "持续"})
}

func TestPrioritizeTasks_EarlierDueFirst(t *testing.T) {
	late := namedTask("晚", func(tk *model.Task) { tk.DueBy = "16:00" })
	early := namedTask("早", func(tk *model.Task) { tk.DueBy = "10:00" })

	got := PrioritizeTasks([]*model.Task{late, early}, nil, time.Monday,
		model.DefaultManagerSettings(), nil)
	assertOrder(t, got, []string{"早", "晚"})
}

func TestPrioritizeTasks_WeeklyFilter(t *testing.T) {
	daily := namedTask("每日", nil)
	mondayOnly := namedTask("周一", func(tk *model.Task) {
		tk.Recurrence = model.RecurWeekly
		tk.RecurrenceDetail = "monday"
	})
	fridayOnly := namedTask("周五", func(tk *model.Task) {
		tk.Recurrence = model.RecurWeekly
		tk.RecurrenceDetail = "friday"
	})
	oneTime := namedTask("一次性", func(tk *model.Task) { tk.Recurrence = model.RecurOneTime })

	got := PrioritizeTasks([]*model.Task{daily, mondayOnly, fridayOnly, oneTime}, nil,
		time.Monday, model.DefaultManagerSettings(), nil)

	names := taskNames(got)
	if len(names) != 2 {
		t.Fatalf("周一应只保留两个任务，got %v", names)
	}
	for _, n := range names {
		if n == "周五" || n == "一次性" {
			t.Errorf("任务 %s 不应出现在周一任务池中", n)
		}
	}
}

func TestPrioritizeTasks_RuleExcludedWeekday(t *testing.T) {
	a := namedTask("A", nil)
	b := namedTask("B", nil)
	rules := []*model.ExplicitRule{{
		BaseModel:        model.NewBaseModel(),
		TaskID:           b.ID,
		Primary:          model.SelectorSpec{Kind: model.SelectorRoleTag, Value: "any"},
		ExcludedWeekdays: []string{"monday"},
	}}

	got := PrioritizeTasks([]*model.Task{a, b}, rules, time.Monday,
		model.DefaultManagerSettings(), nil)
	assertOrder(t, got, []string{"A"})

	// 其他星期不受影响
	got = PrioritizeTasks([]*model.Task{a, b}, rules, time.Tuesday,
		model.DefaultManagerSettings(), nil)
	if len(got) != 2 {
		t.Errorf("周二应保留两个任务，got %v", taskNames(got))
	}
}

func TestPrioritizeTasks_PriorityWeight(t *testing.T) {
	low := namedTask("低", func(tk *model.Task) { tk.PriorityWeight = 10 })
	high := namedTask("高", func(tk *model.Task) { tk.PriorityWeight = 50 })

	got := PrioritizeTasks([]*model.Task{low, high}, nil, time.Monday,
		model.DefaultManagerSettings(), nil)
	assertOrder(t, got, []string{"高", "低"})
}

func TestPrioritizeTasks_OrderHints(t *testing.T) {
	a := namedTask("A", nil)
	b := namedTask("B", nil)
	c := namedTask("C", nil)

	got := PrioritizeTasks([]*model.Task{a, b, c}, nil, time.Monday,
		model.DefaultManagerSettings(), []uuid.UUID{c.ID, a.ID})
	assertOrder(t, got, []string{"C", "A", "B"})
}

func TestPrioritizeTasks_DueSoonBonus(t *testing.T) {
	// 默认开始时间 09:00，11:30 截止在 180 分钟窗口内
	soon := namedTask("紧迫", func(tk *model.Task) { tk.DueBy = "11:30" })
	soon.PriorityWeight = 0
	later := namedTask("宽裕", func(tk *model.Task) { tk.DueBy = "11:30" })
	later.PriorityWeight = 0

	hintIndex := map[uuid.UUID]int{}
	start := model.MustClock("09:00")
	if scoreTask(soon, hintIndex, start) != scoreTask(later, hintIndex, start) {
		t.Fatal("同配置任务得分应一致")
	}

	far := namedTask("远期", func(tk *model.Task) { tk.DueBy = "15:00" })
	far.PriorityWeight = 0
	if scoreTask(soon, hintIndex, start) <= scoreTask(far, hintIndex, start) {
		t.Error("临近截止任务应获得紧迫加分")
	}
}

func TestScoreTask_CodeNumericBonus(t *testing.T) {
	early := namedTask("开店", func(tk *model.Task) { tk.Code = "01-开店" })
	late := namedTask("收尾", func(tk *model.Task) { tk.Code = "09-收尾" })
	early.PriorityWeight = 0
	late.PriorityWeight = 0

	hintIndex := map[uuid.UUID]int{}
	if scoreTask(early, hintIndex, -1) <= scoreTask(late, hintIndex, -1) {
		t.Error("编号靠前的任务应获得更高加分")
	}
}

func TestScoreTask_HintFloor(t *testing.T) {
	task := namedTask("末位", nil)
	task.PriorityWeight = 0
	hintIndex := map[uuid.UUID]int{task.ID: 50}

	// 位置加分最低为 1，不会变成负数
	if got := scoreTask(task, hintIndex, -1); got != 1 {
		t.Errorf("得分 = %v, expected 1", got)
	}
}

func TestEffectiveDueClass_UpkeepIgnoresDue(t *testing.T) {
	upkeep := namedTask("保养", func(tk *model.Task) {
		tk.Type = model.TaskUpkeep
		tk.DueBy = "10:00"
	})
	if got := effectiveDueClass(upkeep); got != model.DueClassNone {
		t.Errorf("保养任务截止类别 = %v, expected none", got)
	}
}
