package engine

import (
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/paigong/paigong/pkg/model"
)

// 优先级加分
const (
	mustRunBonus    = 30.0 // 必做任务
	dueSoonBonus    = 15.0 // 临近截止
	dueSoonWindow   = 180  // 临近截止窗口（分钟）
	positionBase    = 20.0 // 显式排序首位加分
	codeNumericBase = 10.0 // 编号前导数字加分上限
)

// PrioritizeTasks 过滤并排序适用于目标日期的任务
// 过滤：daily 任务全部生效，weekly 任务匹配星期生效，其余周期不进入自动派工池；
// 显式规则在该星期排除的任务整体剔除。
// 排序（稳定全序）：必做优先 → 截止类别（具体时刻 < EOD < 持续），
// 具体时刻内截止早者优先 → 综合得分降序 → 任务编号 → 任务名称。
func PrioritizeTasks(tasks []*model.Task, rules []*model.ExplicitRule, weekday time.Weekday, settings model.ManagerSettings, orderHints []uuid.UUID) []*model.Task {
	excluded := make(map[uuid.UUID]bool)
	for _, r := range rules {
		if r.ExcludesWeekday(weekday) {
			excluded[r.TaskID] = true
		}
	}

	hintIndex := make(map[uuid.UUID]int, len(orderHints))
	for i, id := range orderHints {
		if _, seen := hintIndex[id]; !seen {
			hintIndex[id] = i
		}
	}

	var pool []*model.Task
	for _, t := range tasks {
		if !t.OccursOn(weekday) {
			continue
		}
		if excluded[t.ID] {
			continue
		}
		pool = append(pool, t)
	}

	startMinutes := model.MustClock(settings.AssignmentStartTime)
	scores := make(map[uuid.UUID]float64, len(pool))
	for _, t := range pool {
		scores[t.ID] = scoreTask(t, hintIndex, startMinutes)
	}

	sort.SliceStable(pool, func(i, j int) bool {
		a, b := pool[i], pool[j]

		if a.IsMustRun != b.IsMustRun {
			return a.IsMustRun
		}

		ca, cb := effectiveDueClass(a), effectiveDueClass(b)
		if ca != cb {
			return ca < cb
		}
		if ca == model.DueClassTimed {
			da, db := a.DueMinutes(), b.DueMinutes()
			if da != db {
				return da < db
			}
		}

		if scores[a.ID] != scores[b.ID] {
			return scores[a.ID] > scores[b.ID]
		}

		if a.Code != b.Code {
			return a.Code < b.Code
		}
		return a.Name < b.Name
	})

	return pool
}

// scoreTask 计算任务综合得分
// score = 位置加分 + 优先级权重 + 必做加分 + 临近截止加分 + 编号加分
func scoreTask(t *model.Task, hintIndex map[uuid.UUID]int, startMinutes int) float64 {
	score := t.PriorityWeight

	if idx, ok := hintIndex[t.ID]; ok {
		bonus := positionBase - float64(idx)
		if bonus < 1 {
			bonus = 1
		}
		score += bonus
	}

	if t.IsMustRun {
		score += mustRunBonus
	}

	// 保养任务不参与截止紧迫度
	if !t.IsUpkeep() && startMinutes >= 0 {
		if due := t.DueMinutes(); due >= 0 && due-startMinutes <= dueSoonWindow {
			score += dueSoonBonus
		}
	}

	if n := t.CodeNumericToken(); n >= 0 {
		bonus := codeNumericBase - float64(n)
		if bonus > 0 {
			score += bonus
		}
	}

	return score
}

// effectiveDueClass 返回排序用截止类别（保养任务视为无截止）
func effectiveDueClass(t *model.Task) model.DueClass {
	if t.IsUpkeep() {
		return model.DueClassNone
	}
	return t.DueClass()
}
