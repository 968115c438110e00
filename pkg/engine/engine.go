package engine

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/paigong/paigong/pkg/errors"
	"github.com/paigong/paigong/pkg/logger"
	"github.com/paigong/paigong/pkg/model"
)

// 默认分配理由
const defaultReason = "按技能与负载均衡分配"

// Input 每日派工输入快照（引擎不修改任何输入）
type Input struct {
	Members           []*model.Member
	Tasks             []*model.Task
	Rules             []*model.ExplicitRule
	DaySchedule       []*model.ScheduleShift
	LockedAssignments []*model.Assignment
	Settings          model.ManagerSettings
	TargetDate        string      // YYYY-MM-DD
	OrderHints        []uuid.UUID // 显式排序提示（可为空）
}

// Result 每日派工输出
type Result struct {
	Date         string                             `json:"date"`
	Assignments  []*model.Assignment                `json:"assignments"`
	Workloads    map[uuid.UUID]*model.DailyWorkload `json:"workloads"`
	Unassigned   []*model.UnassignedTask            `json:"unassigned"`
	OverCapacity []*model.OverCapacityMember        `json:"over_capacity"`
	Duration     time.Duration                      `json:"duration"`
}

// Engine 每日任务派工引擎
// 纯函数式：每次调用在输入快照上完整重算，不保留内部状态
type Engine struct {
	log *logger.EngineLogger
}

// New 创建派工引擎
func New() *Engine {
	return &Engine{log: logger.NewEngineLogger()}
}

// GenerateAssignments 生成目标日期的任务分配
// 业务不可行（无人、无容量、无排班）以数据形式返回，不作为错误；
// 返回错误仅见于输入日期非法或上下文取消。
func (e *Engine) GenerateAssignments(ctx context.Context, input *Input) (*Result, error) {
	startTime := time.Now()

	weekday, err := model.DateWeekday(input.TargetDate)
	if err != nil {
		return nil, errors.Wrap(err, errors.CodeInvalidInput, "目标日期无效")
	}

	e.log.StartGeneration(input.TargetDate, len(input.Members), len(input.Tasks))

	result := &Result{
		Date:        input.TargetDate,
		Assignments: make([]*model.Assignment, 0),
		Workloads:   make(map[uuid.UUID]*model.DailyWorkload),
		Unassigned:  make([]*model.UnassignedTask, 0),
	}

	// 终止情形：当日无任何班次记录，全部任务以 no_staff_today 返回
	dayShifts := shiftsOnDate(input.DaySchedule, input.TargetDate)
	if len(dayShifts) == 0 {
		for _, t := range input.Tasks {
			result.Unassigned = append(result.Unassigned, &model.UnassignedTask{
				TaskID:   t.ID,
				TaskName: t.Name,
				TaskCode: t.Code,
				Reasons:  []model.UnassignedReason{model.ReasonNoStaffToday},
				Details:  "当日无班次记录",
			})
		}
		result.Duration = time.Since(startTime)
		e.log.NoStaffToday(input.TargetDate, len(input.Tasks))
		return result, nil
	}

	taskByID := make(map[uuid.UUID]*model.Task, len(input.Tasks))
	for _, t := range input.Tasks {
		taskByID[t.ID] = t
	}

	// 引用了不存在任务的规则属配置错误：记录后跳过，不中断整体派工
	rules := make([]*model.ExplicitRule, 0, len(input.Rules))
	for _, r := range input.Rules {
		if _, ok := taskByID[r.TaskID]; !ok {
			e.log.RuleSkipped(r.TaskID.String(), "规则引用的任务不存在")
			continue
		}
		rules = append(rules, r)
	}

	result.Workloads = BuildWorkloads(input.Members, dayShifts, input.TargetDate)

	// 锁定的分配原样保留：占用任务并预载对应工作量
	lockedTasks := make(map[uuid.UUID]bool)
	for _, a := range input.LockedAssignments {
		if !a.Locked || !a.IsOnDate(input.TargetDate) {
			continue
		}
		replay := *a
		result.Assignments = append(result.Assignments, &replay)
		lockedTasks[a.TaskID] = true
		if wl, ok := result.Workloads[a.MemberID]; ok {
			t := taskByID[a.TaskID]
			wl.Add(&replay, t != nil && t.IsUpkeep())
		}
	}

	ordered := PrioritizeTasks(input.Tasks, rules, weekday, input.Settings, input.OrderHints)

	threshold := input.Settings.OverCapacityThreshold
	for _, task := range ordered {
		if ctx.Err() != nil {
			return result, ctx.Err()
		}
		if lockedTasks[task.ID] {
			continue
		}

		// 逐员工做技能与容量校验，同时记录落选原因用于诊断
		eligible := make(map[uuid.UUID]bool)
		failReasons := make(map[uuid.UUID]model.UnassignedReason)
		for _, m := range input.Members {
			if !m.IsActive() {
				continue
			}
			wl := result.Workloads[m.ID]
			if wl == nil {
				continue
			}
			skillOK := m.HasAllSkills(task.RequiredSkillIDs)
			capOK := task.IsUpkeep() || wl.CanFit(task.Duration, threshold)
			switch {
			case skillOK && capOK:
				eligible[m.ID] = true
			case !skillOK && !capOK:
				failReasons[m.ID] = model.ReasonNoSkillOrCapacity
			case !skillOK:
				failReasons[m.ID] = model.ReasonNoSkill
			default:
				failReasons[m.ID] = model.ReasonCapacityFull
			}
		}

		// 规则命中时将候选池缩小到规则指定范围
		reason := defaultReason
		var candidates []uuid.UUID
		if res := ResolveRule(task, weekday, rules, input.Members, eligible, e.log.RuleSkipped); res != nil {
			candidates = res.Candidates
			reason = res.Reason
		} else {
			for id := range eligible {
				candidates = append(candidates, id)
			}
		}

		// 负载均衡：当前负载低者优先，同负载按员工ID保证确定性
		sort.Slice(candidates, func(i, j int) bool {
			wi := result.Workloads[candidates[i]]
			wj := result.Workloads[candidates[j]]
			if wi.TotalDuration != wj.TotalDuration {
				return wi.TotalDuration < wj.TotalDuration
			}
			return candidates[i].String() < candidates[j].String()
		})

		needed := 1
		if task.AllowMultiAssign || task.MinCoverage > 1 {
			if task.MinCoverage > 1 {
				needed = task.MinCoverage
			}
		}

		assigned := 0
		for _, id := range candidates {
			if assigned >= needed {
				break
			}
			wl := result.Workloads[id]
			// 多人分配时逐次复核容量
			if !task.IsUpkeep() && !wl.CanFit(task.Duration, threshold) {
				failReasons[id] = model.ReasonCapacityFull
				continue
			}
			a := e.buildAssignment(task, id, input, reason)
			result.Assignments = append(result.Assignments, a)
			wl.Add(a, task.IsUpkeep())
			assigned++
		}

		if assigned == 0 {
			result.Unassigned = append(result.Unassigned, unassignedEntry(task, failReasons))
		}
	}

	// 收尾：标记超出硬性容量的员工
	for _, wl := range result.Workloads {
		if excess := wl.Excess(); excess > 0 {
			result.OverCapacity = append(result.OverCapacity, &model.OverCapacityMember{
				MemberID:      wl.MemberID,
				MemberName:    wl.MemberName,
				Date:          wl.Date,
				Capacity:      wl.Capacity,
				TotalDuration: wl.TotalDuration,
				ExcessMinutes: excess,
			})
		}
	}
	sort.Slice(result.OverCapacity, func(i, j int) bool {
		return result.OverCapacity[i].MemberID.String() < result.OverCapacity[j].MemberID.String()
	})

	result.Duration = time.Since(startTime)
	e.log.GenerationComplete(input.TargetDate, result.Duration, len(result.Assignments), len(result.Unassigned))

	return result, nil
}

// buildAssignment 构造一笔分配
func (e *Engine) buildAssignment(task *model.Task, memberID uuid.UUID, input *Input, reason string) *model.Assignment {
	start := task.EarliestStart
	if start == "" {
		start = input.Settings.AssignmentStartTime
	}
	return &model.Assignment{
		BaseModel: model.BaseModel{ID: uuid.New()},
		TaskID:    task.ID,
		MemberID:  memberID,
		Date:      input.TargetDate,
		StartTime: start,
		EndTime:   addClockMinutes(start, task.Duration),
		Duration:  task.Duration,
		Reason:    reason,
		Status:    model.StatusAssigned,
	}
}

// unassignedEntry 汇总任务落选原因（并集，去重）
func unassignedEntry(task *model.Task, failReasons map[uuid.UUID]model.UnassignedReason) *model.UnassignedTask {
	entry := &model.UnassignedTask{
		TaskID:   task.ID,
		TaskName: task.Name,
		TaskCode: task.Code,
	}
	// 按固定顺序收集原因码，保证输出可复现
	for _, r := range []model.UnassignedReason{model.ReasonNoSkill, model.ReasonCapacityFull, model.ReasonNoSkillOrCapacity} {
		for _, got := range failReasons {
			if got == r {
				entry.AddReason(r)
				break
			}
		}
	}
	if len(entry.Reasons) == 0 {
		entry.AddReason(model.ReasonNoSkillOrCapacity)
	}
	entry.Details = fmt.Sprintf("共 %d 名员工不符合条件", len(failReasons))
	return entry
}

// shiftsOnDate 过滤指定日期的班次
func shiftsOnDate(shifts []*model.ScheduleShift, date string) []*model.ScheduleShift {
	var out []*model.ScheduleShift
	for _, s := range shifts {
		if s.Date == date {
			out = append(out, s)
		}
	}
	return out
}

// addClockMinutes 在 HH:mm 上加分钟数（跨日回绕）
func addClockMinutes(start string, minutes int) string {
	m := model.MustClock(start)
	if m < 0 {
		return start
	}
	m = (m + minutes) % (24 * 60)
	return fmt.Sprintf("%02d:%02d", m/60, m%60)
}
