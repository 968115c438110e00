// Package stats 提供派工与排班统计分析功能
package stats

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/paigong/paigong/pkg/model"
)

// CoverageMetrics 人力覆盖指标
type CoverageMetrics struct {
	TotalTargets    int     `json:"total_targets"`    // 目标总数（日期 × 目标）
	MetTargets      int     `json:"met_targets"`      // 满足的目标数
	OverallCoverage float64 `json:"overall_coverage"` // 整体覆盖率 (%)

	DailyCoverage map[string]DayCoverage `json:"daily_coverage"` // 每日覆盖情况
	AreaCoverage  map[string]float64     `json:"area_coverage"`  // 按区域覆盖率 (%)

	Gaps []CoverageGap `json:"gaps"` // 未满足目标明细
}

// DayCoverage 每日覆盖情况
type DayCoverage struct {
	Date          string  `json:"date"`
	Targets       int     `json:"targets"`
	Met           int     `json:"met"`
	CoverageRate  float64 `json:"coverage_rate"`
	PlannedShifts int     `json:"planned_shifts"`
	TotalHours    float64 `json:"total_hours"`
}

// CoverageGap 覆盖缺口
type CoverageGap struct {
	Date     string `json:"date"`
	AreaName string `json:"area_name"`
	Window   string `json:"window"`
	Required int    `json:"required"`
	Planned  int    `json:"planned"`
	Shortage int    `json:"shortage"`
}

// CoverageAnalyzer 覆盖率分析器
type CoverageAnalyzer struct {
	areaNames map[uuid.UUID]string
}

// NewCoverageAnalyzer 创建覆盖率分析器
func NewCoverageAnalyzer(areaNames map[uuid.UUID]string) *CoverageAnalyzer {
	if areaNames == nil {
		areaNames = make(map[uuid.UUID]string)
	}
	return &CoverageAnalyzer{areaNames: areaNames}
}

// Analyze 分析计划班次对人力配置目标的覆盖情况
func (c *CoverageAnalyzer) Analyze(shifts []*model.PlannedShift, targets []*model.StaffingTarget, dates []string) *CoverageMetrics {
	metrics := &CoverageMetrics{
		DailyCoverage: make(map[string]DayCoverage),
		AreaCoverage:  make(map[string]float64),
		Gaps:          make([]CoverageGap, 0),
	}
	if len(dates) == 0 {
		metrics.OverallCoverage = 100
		return metrics
	}

	areaRequired := make(map[string]int)
	areaMet := make(map[string]int)

	for _, date := range dates {
		weekday, err := model.DateWeekday(date)
		if err != nil {
			continue
		}

		day := DayCoverage{Date: date}
		for _, s := range shifts {
			if s.Date == date {
				day.PlannedShifts++
				day.TotalHours += float64(s.Minutes()) / 60.0
			}
		}

		for _, target := range targets {
			if target.Weekday != weekday {
				continue
			}
			metrics.TotalTargets++
			day.Targets++

			planned := 0
			for _, s := range shifts {
				if s.Date != date {
					continue
				}
				if s.AreaID != nil && *s.AreaID != target.AreaID {
					continue
				}
				if s.Window.Overlaps(target.Window) {
					planned++
				}
			}

			areaName := c.areaName(target.AreaID)
			areaRequired[areaName]++
			if planned >= target.Required {
				metrics.MetTargets++
				day.Met++
				areaMet[areaName]++
			} else {
				metrics.Gaps = append(metrics.Gaps, CoverageGap{
					Date:     date,
					AreaName: areaName,
					Window:   fmt.Sprintf("%s-%s", target.Window.Start, target.Window.End),
					Required: target.Required,
					Planned:  planned,
					Shortage: target.Required - planned,
				})
			}
		}

		if day.Targets > 0 {
			day.CoverageRate = float64(day.Met) / float64(day.Targets) * 100
		} else {
			day.CoverageRate = 100
		}
		metrics.DailyCoverage[date] = day
	}

	if metrics.TotalTargets > 0 {
		metrics.OverallCoverage = float64(metrics.MetTargets) / float64(metrics.TotalTargets) * 100
	} else {
		metrics.OverallCoverage = 100
	}
	for area, total := range areaRequired {
		metrics.AreaCoverage[area] = float64(areaMet[area]) / float64(total) * 100
	}

	return metrics
}

// areaName 返回区域名，未知区域回退为ID
func (c *CoverageAnalyzer) areaName(id uuid.UUID) string {
	if name, ok := c.areaNames[id]; ok && name != "" {
		return name
	}
	return id.String()
}
