package handler

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/paigong/paigong/internal/metrics"
	"github.com/paigong/paigong/internal/repository"
	"github.com/paigong/paigong/pkg/engine"
	"github.com/paigong/paigong/pkg/errors"
	"github.com/paigong/paigong/pkg/model"
	"github.com/paigong/paigong/pkg/stats"
)

// StatsHandler 统计分析处理器
type StatsHandler struct {
	members       *repository.MemberRepository
	tasks         *repository.TaskRepository
	shifts        *repository.ScheduleShiftRepository
	assignments   *repository.AssignmentRepository
	areas         *repository.AreaRepository
	targets       *repository.StaffingTargetRepository
	plannedShifts *repository.PlannedShiftRepository
}

// NewStatsHandler 创建统计分析处理器
func NewStatsHandler(
	members *repository.MemberRepository,
	tasks *repository.TaskRepository,
	shifts *repository.ScheduleShiftRepository,
	assignments *repository.AssignmentRepository,
	areas *repository.AreaRepository,
	targets *repository.StaffingTargetRepository,
	plannedShifts *repository.PlannedShiftRepository,
) *StatsHandler {
	return &StatsHandler{
		members:       members,
		tasks:         tasks,
		shifts:        shifts,
		assignments:   assignments,
		areas:         areas,
		targets:       targets,
		plannedShifts: plannedShifts,
	}
}

// Coverage 计划排班对人力配置目标的覆盖分析
func (h *StatsHandler) Coverage(w http.ResponseWriter, r *http.Request) {
	startDate := r.URL.Query().Get("start_date")
	endDate := r.URL.Query().Get("end_date")
	if startDate == "" {
		respondError(w, errors.New(errors.CodeInvalidInput, "start_date参数不能为空"))
		return
	}
	if endDate == "" {
		endDate = startDate
	}

	dates, err := datesInRange(startDate, endDate)
	if err != nil {
		respondError(w, errors.Wrap(err, errors.CodeInvalidInput, "日期范围无效"))
		return
	}

	ctx := r.Context()

	areas, err := h.areas.ListAll(ctx)
	if err != nil {
		respondError(w, errors.Wrap(err, errors.CodeDatabaseError, "加载区域失败"))
		return
	}
	targets, err := h.targets.ListAll(ctx)
	if err != nil {
		respondError(w, errors.Wrap(err, errors.CodeDatabaseError, "加载配置目标失败"))
		return
	}
	shifts, err := h.plannedShifts.ListByDateRange(ctx, startDate, endDate)
	if err != nil {
		respondError(w, errors.Wrap(err, errors.CodeDatabaseError, "加载计划班次失败"))
		return
	}

	areaNames := make(map[uuid.UUID]string, len(areas))
	for _, a := range areas {
		areaNames[a.ID] = a.Name
	}

	result := stats.NewCoverageAnalyzer(areaNames).Analyze(shifts, targets, dates)
	metrics.SetCoverageRate(result.OverallCoverage)

	respondJSON(w, http.StatusOK, result)
}

// Workload 某日员工工作量分析
// 按当日排班与已有派工结果重建工作量后统计。
func (h *StatsHandler) Workload(w http.ResponseWriter, r *http.Request) {
	date := r.URL.Query().Get("date")
	if date == "" {
		respondError(w, errors.New(errors.CodeInvalidInput, "date参数不能为空"))
		return
	}
	if _, err := model.DateWeekday(date); err != nil {
		respondError(w, errors.New(errors.CodeInvalidInput, "日期格式无效，应为YYYY-MM-DD"))
		return
	}

	ctx := r.Context()

	members, err := h.members.ListActive(ctx)
	if err != nil {
		respondError(w, errors.Wrap(err, errors.CodeDatabaseError, "加载员工失败"))
		return
	}
	daySchedule, err := h.shifts.ListByDate(ctx, date)
	if err != nil {
		respondError(w, errors.Wrap(err, errors.CodeDatabaseError, "加载排班失败"))
		return
	}
	assignments, err := h.assignments.ListByDate(ctx, date)
	if err != nil {
		respondError(w, errors.Wrap(err, errors.CodeDatabaseError, "加载派工结果失败"))
		return
	}
	tasks, err := h.tasks.ListAll(ctx)
	if err != nil {
		respondError(w, errors.Wrap(err, errors.CodeDatabaseError, "加载任务失败"))
		return
	}

	upkeep := make(map[uuid.UUID]bool, len(tasks))
	for _, t := range tasks {
		upkeep[t.ID] = t.IsUpkeep()
	}

	workloads := engine.BuildWorkloads(members, daySchedule, date)
	for _, a := range assignments {
		if wl, ok := workloads[a.MemberID]; ok {
			wl.Add(a, upkeep[a.TaskID])
		}
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"date":      date,
		"workload":  stats.AnalyzeWorkloads(workloads),
		"workloads": workloads,
	})
}
