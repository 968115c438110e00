package stats

import (
	"math"
	"sort"

	"github.com/google/uuid"
	"github.com/paigong/paigong/pkg/model"
)

// WorkloadMetrics 工作量均衡指标
type WorkloadMetrics struct {
	AvgMinutes     float64 `json:"avg_minutes"`     // 人均已派分钟数
	MaxMinutes     int     `json:"max_minutes"`     // 最大已派分钟数
	MinMinutes     int     `json:"min_minutes"`     // 最小已派分钟数
	MinutesRange   int     `json:"minutes_range"`   // 极差
	StdDev         float64 `json:"std_dev"`         // 标准差
	AvgUtilization float64 `json:"avg_utilization"` // 平均容量利用率 (%)

	MemberStats []MemberWorkloadStat `json:"member_stats"`
}

// MemberWorkloadStat 员工工作量统计
type MemberWorkloadStat struct {
	MemberID       uuid.UUID `json:"member_id"`
	MemberName     string    `json:"member_name"`
	Capacity       int       `json:"capacity"`
	TotalDuration  int       `json:"total_duration"`
	UpkeepDuration int       `json:"upkeep_duration"`
	Utilization    float64   `json:"utilization"` // TotalDuration/Capacity (%)
	TaskCount      int       `json:"task_count"`
}

// AnalyzeWorkloads 分析一次派工结果的工作量均衡情况
func AnalyzeWorkloads(workloads map[uuid.UUID]*model.DailyWorkload) *WorkloadMetrics {
	metrics := &WorkloadMetrics{MemberStats: make([]MemberWorkloadStat, 0, len(workloads))}
	if len(workloads) == 0 {
		return metrics
	}

	for _, wl := range workloads {
		stat := MemberWorkloadStat{
			MemberID:       wl.MemberID,
			MemberName:     wl.MemberName,
			Capacity:       wl.Capacity,
			TotalDuration:  wl.TotalDuration,
			UpkeepDuration: wl.UpkeepDuration,
			TaskCount:      len(wl.Assignments),
		}
		if wl.Capacity > 0 {
			stat.Utilization = float64(wl.TotalDuration) / float64(wl.Capacity) * 100
		}
		metrics.MemberStats = append(metrics.MemberStats, stat)
	}
	sort.Slice(metrics.MemberStats, func(i, j int) bool {
		return metrics.MemberStats[i].MemberID.String() < metrics.MemberStats[j].MemberID.String()
	})

	total := 0
	utilSum := 0.0
	utilCount := 0
	metrics.MinMinutes = metrics.MemberStats[0].TotalDuration
	for _, stat := range metrics.MemberStats {
		total += stat.TotalDuration
		if stat.TotalDuration > metrics.MaxMinutes {
			metrics.MaxMinutes = stat.TotalDuration
		}
		if stat.TotalDuration < metrics.MinMinutes {
			metrics.MinMinutes = stat.TotalDuration
		}
		if stat.Capacity > 0 {
			utilSum += stat.Utilization
			utilCount++
		}
	}
	metrics.MinutesRange = metrics.MaxMinutes - metrics.MinMinutes
	metrics.AvgMinutes = float64(total) / float64(len(metrics.MemberStats))
	if utilCount > 0 {
		metrics.AvgUtilization = utilSum / float64(utilCount)
	}

	variance := 0.0
	for _, stat := range metrics.MemberStats {
		d := float64(stat.TotalDuration) - metrics.AvgMinutes
		variance += d * d
	}
	metrics.StdDev = math.Sqrt(variance / float64(len(metrics.MemberStats)))

	return metrics
}
