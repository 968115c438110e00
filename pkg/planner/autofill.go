// Package planner 提供基于人力配置目标的自动补班
package planner

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/paigong/paigong/pkg/engine"
	"github.com/paigong/paigong/pkg/errors"
	"github.com/paigong/paigong/pkg/logger"
	"github.com/paigong/paigong/pkg/model"
	"github.com/paigong/paigong/pkg/validator"
)

// 候选人评分
const (
	baseScore        = 100.0 // 基础分
	areaAffinityBonus = 50.0 // 技能/特长匹配目标区域
	classPrefBonus   = 30.0  // 班次类型偏好匹配
	loadPenaltyRate  = 0.1   // 每分钟已排周工时的压力扣分
)

// Input 自动补班输入快照
type Input struct {
	Members        []*model.Member
	Skills         []*model.Skill
	Areas          []*model.Area
	Targets        []*model.StaffingTarget
	Availability   []*model.Availability
	ExistingShifts []*model.PlannedShift
	Settings       model.ManagerSettings
	TargetDates    []string // YYYY-MM-DD
}

// Result 自动补班输出
type Result struct {
	Generated []*model.PlannedShift    `json:"generated"`
	Conflicts []*model.PlannerConflict `json:"conflicts"`
	Duration  time.Duration            `json:"duration"`
}

// Planner 自动补班规划器
type Planner struct {
	log *logger.PlannerLogger
}

// New 创建自动补班规划器
func New() *Planner {
	return &Planner{log: logger.NewPlannerLogger()}
}

// AutoFillSchedule 针对目标日期逐个填补人力缺口
// 每个目标按开始时间升序处理；生成的班次立即计入后续目标看到的
// 负载与占用。最后对既有班次与新班次的并集做一次冲突检测。
func (p *Planner) AutoFillSchedule(ctx context.Context, input *Input) (*Result, error) {
	startTime := time.Now()
	p.log.StartAutoFill(len(input.TargetDates), len(input.Targets))

	result := &Result{
		Generated: make([]*model.PlannedShift, 0),
		Conflicts: make([]*model.PlannerConflict, 0),
	}

	areaNames := make(map[uuid.UUID]string, len(input.Areas))
	for _, a := range input.Areas {
		areaNames[a.ID] = a.Name
	}
	skillNames := make(map[uuid.UUID]string, len(input.Skills))
	for _, s := range input.Skills {
		skillNames[s.ID] = s.Name
	}
	availByMember := make(map[uuid.UUID][]*model.Availability)
	for _, av := range input.Availability {
		availByMember[av.MemberID] = append(availByMember[av.MemberID], av)
	}

	// 运行中的负载与占用跟踪，后续目标实时可见
	tracker := newLoadTracker(input.ExistingShifts)

	for _, date := range input.TargetDates {
		if ctx.Err() != nil {
			return result, ctx.Err()
		}

		weekday, err := model.DateWeekday(date)
		if err != nil {
			return nil, errors.Wrap(err, errors.CodeInvalidInput, "目标日期无效")
		}

		rng := engine.NewTieBreakRand(input.Settings.TieBreakSeed, date)

		targets := targetsOnWeekday(input.Targets, weekday)
		for _, target := range targets {
			coverage := tracker.coverage(date, target)
			shortage := target.Required - coverage
			if shortage <= 0 {
				continue
			}

			// 构建合格候选池
			var candidates []*model.Member
			for _, m := range input.Members {
				if !m.IsActive() {
					continue
				}
				if tracker.hasOverlap(m.ID, date, target.Window) {
					continue
				}
				if !availabilityContains(availByMember[m.ID], weekday, target.Window) {
					continue
				}
				minutes := target.Window.Minutes()
				if m.MaxDailyMinutes > 0 && tracker.dailyMinutes(m.ID, date)+minutes > m.MaxDailyMinutes {
					continue
				}
				if m.MaxWeeklyMinutes > 0 && tracker.weeklyMinutes(m.ID)+minutes > m.MaxWeeklyMinutes {
					continue
				}
				candidates = append(candidates, m)
			}

			// 同分候选人次序由种子随机源打散后保持稳定
			rng.Shuffle(len(candidates), func(i, j int) {
				candidates[i], candidates[j] = candidates[j], candidates[i]
			})
			scores := make(map[uuid.UUID]float64, len(candidates))
			for _, m := range candidates {
				scores[m.ID] = p.scoreCandidate(m, target, weekday, areaNames, skillNames, tracker)
			}
			sort.SliceStable(candidates, func(i, j int) bool {
				return scores[candidates[i].ID] > scores[candidates[j].ID]
			})

			filled := 0
			for _, m := range candidates {
				if filled >= shortage {
					break
				}
				areaID := target.AreaID
				shift := &model.PlannedShift{
					BaseModel: model.BaseModel{ID: uuid.New()},
					MemberID:  m.ID,
					Date:      date,
					Window:    target.Window,
					AreaID:    &areaID,
					Source:    model.SourceAutoFill,
					Status:    model.ShiftDraft,
					Reason:    fmt.Sprintf("自动补班：覆盖区域 %s", areaNames[target.AreaID]),
				}
				result.Generated = append(result.Generated, shift)
				tracker.add(shift)
				filled++
			}

			p.log.GapFilled(date, areaNames[target.AreaID], filled, shortage)
		}
	}

	// 对既有与新生成班次的并集重新推导冲突
	combined := make([]*model.PlannedShift, 0, len(input.ExistingShifts)+len(result.Generated))
	combined = append(combined, input.ExistingShifts...)
	combined = append(combined, result.Generated...)
	detector := validator.NewConflictDetector(areaNames)
	result.Conflicts = detector.CalculatePlannerConflicts(combined, input.Targets, input.Members, input.Availability, input.TargetDates)

	result.Duration = time.Since(startTime)
	p.log.AutoFillComplete(result.Duration, len(result.Generated), len(result.Conflicts))

	return result, nil
}

// scoreCandidate 计算候选人得分
// 基础 100 分；技能/特长含目标区域名 +50；班次类型偏好匹配 +30；
// 按已排周工时扣除负载压力分
func (p *Planner) scoreCandidate(m *model.Member, target *model.StaffingTarget, weekday time.Weekday, areaNames map[uuid.UUID]string, skillNames map[uuid.UUID]string, tracker *loadTracker) float64 {
	score := baseScore

	areaName := areaNames[target.AreaID]
	if areaName != "" && memberKnowsArea(m, areaName, skillNames) {
		score += areaAffinityBonus
	}

	class := model.ClassifyShift(target.Window.Start, weekday)
	if m.PrefersShiftClass(class) {
		score += classPrefBonus
	}

	score -= float64(tracker.weeklyMinutes(m.ID)) * loadPenaltyRate

	return score
}

// memberKnowsArea 检查员工技能或角色标签是否匹配区域名
func memberKnowsArea(m *model.Member, areaName string, skillNames map[uuid.UUID]string) bool {
	for _, id := range m.SkillIDs {
		if strings.EqualFold(skillNames[id], areaName) {
			return true
		}
	}
	for _, tag := range m.RoleTags {
		if strings.EqualFold(tag, areaName) {
			return true
		}
	}
	return false
}

// availabilityContains 检查员工是否在指定星期有完全覆盖目标时段的可用窗口
func availabilityContains(entries []*model.Availability, weekday time.Weekday, window model.ClockRange) bool {
	for _, av := range entries {
		if av.Weekday == weekday && av.Window.ContainsRange(window) {
			return true
		}
	}
	return false
}

// targetsOnWeekday 过滤并按开始时间升序排列指定星期的目标
func targetsOnWeekday(targets []*model.StaffingTarget, weekday time.Weekday) []*model.StaffingTarget {
	var out []*model.StaffingTarget
	for _, t := range targets {
		if t.Weekday == weekday {
			out = append(out, t)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		si, sj := model.MustClock(out[i].Window.Start), model.MustClock(out[j].Window.Start)
		if si != sj {
			return si < sj
		}
		return out[i].AreaID.String() < out[j].AreaID.String()
	})
	return out
}

// loadTracker 运行中的班次负载跟踪
type loadTracker struct {
	shifts map[uuid.UUID][]*model.PlannedShift // 按员工
	daily  map[string]int                       // member|date → 分钟
	weekly map[uuid.UUID]int                    // member → 分钟
}

func newLoadTracker(existing []*model.PlannedShift) *loadTracker {
	t := &loadTracker{
		shifts: make(map[uuid.UUID][]*model.PlannedShift),
		daily:  make(map[string]int),
		weekly: make(map[uuid.UUID]int),
	}
	for _, s := range existing {
		t.add(s)
	}
	return t
}

func (t *loadTracker) add(s *model.PlannedShift) {
	t.shifts[s.MemberID] = append(t.shifts[s.MemberID], s)
	t.daily[dailyKey(s.MemberID, s.Date)] += s.Minutes()
	t.weekly[s.MemberID] += s.Minutes()
}

func (t *loadTracker) dailyMinutes(memberID uuid.UUID, date string) int {
	return t.daily[dailyKey(memberID, date)]
}

func (t *loadTracker) weeklyMinutes(memberID uuid.UUID) int {
	return t.weekly[memberID]
}

// hasOverlap 检查员工当日是否已有与窗口重叠的班次
func (t *loadTracker) hasOverlap(memberID uuid.UUID, date string, window model.ClockRange) bool {
	for _, s := range t.shifts[memberID] {
		if s.Date == date && s.Window.Overlaps(window) {
			return true
		}
	}
	return false
}

// coverage 统计与目标重叠的当日班次数
// 未标区域的班次视为可覆盖任意区域
func (t *loadTracker) coverage(date string, target *model.StaffingTarget) int {
	count := 0
	for _, shifts := range t.shifts {
		for _, s := range shifts {
			if s.Date != date {
				continue
			}
			if s.AreaID != nil && *s.AreaID != target.AreaID {
				continue
			}
			if s.Window.Overlaps(target.Window) {
				count++
			}
		}
	}
	return count
}

func dailyKey(memberID uuid.UUID, date string) string {
	return memberID.String() + "|" + date
}
