// Package engine 提供每日任务派工引擎
package engine

import (
	"github.com/google/uuid"
	"github.com/paigong/paigong/pkg/model"
)

// BuildWorkloads 根据当日班次计算每位员工的初始工作量
// 可用容量 = 当日班次总时长 - 固定非任务时间，向下取 0
func BuildWorkloads(members []*model.Member, shifts []*model.ScheduleShift, date string) map[uuid.UUID]*model.DailyWorkload {
	shiftMinutes := make(map[uuid.UUID]int)
	for _, s := range shifts {
		if s.Date != date {
			continue
		}
		shiftMinutes[s.MemberID] += s.Minutes()
	}

	workloads := make(map[uuid.UUID]*model.DailyWorkload, len(members))
	for _, m := range members {
		capacity := shiftMinutes[m.ID] - m.FixedCommitmentMinutes
		if capacity < 0 {
			capacity = 0
		}
		workloads[m.ID] = &model.DailyWorkload{
			MemberID:   m.ID,
			MemberName: m.Name,
			Date:       date,
			Capacity:   capacity,
		}
	}
	return workloads
}
