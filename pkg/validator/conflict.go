// Package validator 提供排班冲突检测
package validator

import (
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/paigong/paigong/pkg/model"
)

// ConflictDetector 排班冲突检测器
// 每次调用在给定的班次集合上独立重算，不依赖自动补班是否运行过，
// 也不持久化任何结果
type ConflictDetector struct {
	areaNames map[uuid.UUID]string
}

// NewConflictDetector 创建冲突检测器
func NewConflictDetector(areaNames map[uuid.UUID]string) *ConflictDetector {
	if areaNames == nil {
		areaNames = make(map[uuid.UUID]string)
	}
	return &ConflictDetector{areaNames: areaNames}
}

// CalculatePlannerConflicts 检测全部排班冲突
// 覆盖检查逐日期逐目标进行；可用性与工时检查逐班次/逐员工进行
func (d *ConflictDetector) CalculatePlannerConflicts(
	shifts []*model.PlannedShift,
	targets []*model.StaffingTarget,
	members []*model.Member,
	availability []*model.Availability,
	dates []string,
) []*model.PlannerConflict {
	conflicts := make([]*model.PlannerConflict, 0)

	inScope := make(map[string]bool, len(dates))
	for _, date := range dates {
		inScope[date] = true
	}
	var scoped []*model.PlannedShift
	for _, s := range shifts {
		if inScope[s.Date] {
			scoped = append(scoped, s)
		}
	}

	memberByID := make(map[uuid.UUID]*model.Member, len(members))
	for _, m := range members {
		memberByID[m.ID] = m
	}
	availByMember := make(map[uuid.UUID][]*model.Availability)
	for _, av := range availability {
		availByMember[av.MemberID] = append(availByMember[av.MemberID], av)
	}

	conflicts = append(conflicts, d.detectCoverage(scoped, targets, dates)...)
	conflicts = append(conflicts, d.detectAvailability(scoped, availByMember)...)
	conflicts = append(conflicts, d.detectOvertime(scoped, memberByID)...)

	return conflicts
}

// detectCoverage 检测覆盖不足与过度覆盖
func (d *ConflictDetector) detectCoverage(shifts []*model.PlannedShift, targets []*model.StaffingTarget, dates []string) []*model.PlannerConflict {
	var conflicts []*model.PlannerConflict

	for _, date := range dates {
		weekday, err := model.DateWeekday(date)
		if err != nil {
			continue
		}
		for _, target := range targets {
			if target.Weekday != weekday {
				continue
			}

			coverage := 0
			for _, s := range shifts {
				if s.Date != date {
					continue
				}
				// 未标区域的班次视为可覆盖任意区域
				if s.AreaID != nil && *s.AreaID != target.AreaID {
					continue
				}
				if s.Window.Overlaps(target.Window) {
					coverage++
				}
			}

			areaID := target.AreaID
			areaName := d.areaNames[areaID]
			if areaName == "" {
				areaName = areaID.String()
			}
			switch {
			case coverage < target.Required:
				conflicts = append(conflicts, &model.PlannerConflict{
					Type:     model.ConflictUnderCoverage,
					Severity: model.SeverityMedium,
					Date:     date,
					Weekday:  weekday,
					AreaID:   &areaID,
					Details:  fmt.Sprintf("区域 %s %s-%s 需要 %d 人，仅有 %d 人", areaName, target.Window.Start, target.Window.End, target.Required, coverage),
				})
			case coverage > target.Required:
				conflicts = append(conflicts, &model.PlannerConflict{
					Type:     model.ConflictOverCoverage,
					Severity: model.SeverityLow,
					Date:     date,
					Weekday:  weekday,
					AreaID:   &areaID,
					Details:  fmt.Sprintf("区域 %s %s-%s 需要 %d 人，排了 %d 人", areaName, target.Window.Start, target.Window.End, target.Required, coverage),
				})
			}
		}
	}

	return conflicts
}

// detectAvailability 检测可用性违规
// 员工在该星期无可用登记，或班次超出登记窗口，均为高严重度冲突
func (d *ConflictDetector) detectAvailability(shifts []*model.PlannedShift, availByMember map[uuid.UUID][]*model.Availability) []*model.PlannerConflict {
	var conflicts []*model.PlannerConflict

	for _, s := range shifts {
		weekday, err := model.DateWeekday(s.Date)
		if err != nil {
			continue
		}

		var dayEntries []*model.Availability
		for _, av := range availByMember[s.MemberID] {
			if av.Weekday == weekday {
				dayEntries = append(dayEntries, av)
			}
		}

		memberID := s.MemberID
		if len(dayEntries) == 0 {
			conflicts = append(conflicts, &model.PlannerConflict{
				Type:     model.ConflictAvailabilityViolation,
				Severity: model.SeverityHigh,
				Date:     s.Date,
				Weekday:  weekday,
				MemberID: &memberID,
				Details:  fmt.Sprintf("员工在%s无可用时间登记", weekdayZh(weekday)),
			})
			continue
		}

		contained := false
		for _, av := range dayEntries {
			if av.Window.ContainsRange(s.Window) {
				contained = true
				break
			}
		}
		if !contained {
			conflicts = append(conflicts, &model.PlannerConflict{
				Type:     model.ConflictAvailabilityViolation,
				Severity: model.SeverityHigh,
				Date:     s.Date,
				Weekday:  weekday,
				MemberID: &memberID,
				Details:  fmt.Sprintf("班次 %s-%s 超出可用窗口 %s-%s", s.Window.Start, s.Window.End, dayEntries[0].Window.Start, dayEntries[0].Window.End),
			})
		}
	}

	return conflicts
}

// detectOvertime 检测超时风险
// 周累计超过 max_weekly_minutes，或任一日累计超过 max_daily_minutes
func (d *ConflictDetector) detectOvertime(shifts []*model.PlannedShift, memberByID map[uuid.UUID]*model.Member) []*model.PlannerConflict {
	var conflicts []*model.PlannerConflict

	daily := make(map[uuid.UUID]map[string]int)
	weekly := make(map[uuid.UUID]int)
	for _, s := range shifts {
		if daily[s.MemberID] == nil {
			daily[s.MemberID] = make(map[string]int)
		}
		daily[s.MemberID][s.Date] += s.Minutes()
		weekly[s.MemberID] += s.Minutes()
	}

	// 固定遍历顺序保证输出可复现
	memberIDs := make([]uuid.UUID, 0, len(weekly))
	for id := range weekly {
		memberIDs = append(memberIDs, id)
	}
	sort.Slice(memberIDs, func(i, j int) bool {
		return memberIDs[i].String() < memberIDs[j].String()
	})

	for _, id := range memberIDs {
		m := memberByID[id]
		if m == nil {
			continue
		}
		memberID := id

		if m.MaxWeeklyMinutes > 0 && weekly[id] > m.MaxWeeklyMinutes {
			conflicts = append(conflicts, &model.PlannerConflict{
				Type:     model.ConflictOvertimeRisk,
				Severity: model.SeverityMedium,
				MemberID: &memberID,
				Details:  fmt.Sprintf("员工 %s 周计划 %d 分钟，超过上限 %d 分钟", m.Name, weekly[id], m.MaxWeeklyMinutes),
			})
		}

		if m.MaxDailyMinutes > 0 {
			dateKeys := make([]string, 0, len(daily[id]))
			for date := range daily[id] {
				dateKeys = append(dateKeys, date)
			}
			sort.Strings(dateKeys)
			for _, date := range dateKeys {
				minutes := daily[id][date]
				if minutes > m.MaxDailyMinutes {
					conflicts = append(conflicts, &model.PlannerConflict{
						Type:     model.ConflictOvertimeRisk,
						Severity: model.SeverityMedium,
						Date:     date,
						MemberID: &memberID,
						Details:  fmt.Sprintf("员工 %s 在 %s 计划 %d 分钟，超过上限 %d 分钟", m.Name, date, minutes, m.MaxDailyMinutes),
					})
				}
			}
		}
	}

	return conflicts
}

// weekdayZh 返回星期的中文名
func weekdayZh(w time.Weekday) string {
	names := [...]string{"周日", "周一", "周二", "周三", "周四", "周五", "周六"}
	return names[int(w)]
}
