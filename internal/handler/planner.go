package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/paigong/paigong/internal/metrics"
	"github.com/paigong/paigong/internal/repository"
	"github.com/paigong/paigong/pkg/errors"
	"github.com/paigong/paigong/pkg/model"
	"github.com/paigong/paigong/pkg/planner"
	"github.com/paigong/paigong/pkg/validator"
)

// PlannerHandler 排班规划处理器
type PlannerHandler struct {
	members       *repository.MemberRepository
	skills        *repository.SkillRepository
	areas         *repository.AreaRepository
	targets       *repository.StaffingTargetRepository
	availability  *repository.AvailabilityRepository
	plannedShifts *repository.PlannedShiftRepository
	planner       *planner.Planner
	settings      model.ManagerSettings
}

// NewPlannerHandler 创建排班规划处理器
func NewPlannerHandler(
	members *repository.MemberRepository,
	skills *repository.SkillRepository,
	areas *repository.AreaRepository,
	targets *repository.StaffingTargetRepository,
	availability *repository.AvailabilityRepository,
	plannedShifts *repository.PlannedShiftRepository,
	settings model.ManagerSettings,
) *PlannerHandler {
	return &PlannerHandler{
		members:       members,
		skills:        skills,
		areas:         areas,
		targets:       targets,
		availability:  availability,
		plannedShifts: plannedShifts,
		planner:       planner.New(),
		settings:      settings,
	}
}

// AutoFillRequest 自动补班请求
type AutoFillRequest struct {
	StartDate string `json:"start_date"`          // YYYY-MM-DD
	EndDate   string `json:"end_date,omitempty"`  // 可选，默认按规划周期展开
	Persist   bool   `json:"persist,omitempty"`   // 是否写入数据库
}

// AutoFillResponse 自动补班响应
type AutoFillResponse struct {
	Success   bool                     `json:"success"`
	Generated []*PlannedShiftOutput    `json:"generated"`
	Conflicts []*model.PlannerConflict `json:"conflicts,omitempty"`
	Duration  string                   `json:"duration"`
}

// PlannedShiftOutput 计划班次输出（附带推导的班次类型）
type PlannedShiftOutput struct {
	*model.PlannedShift
	ShiftClass model.ShiftClass `json:"shift_class"`
}

// AutoFill 针对人力缺口自动生成补班
func (h *PlannerHandler) AutoFill(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		respondError(w, errors.New(errors.CodeInvalidInput, "仅支持POST方法"))
		return
	}

	var req AutoFillRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, errors.Wrap(err, errors.CodeInvalidInput, "解析请求失败"))
		return
	}

	if req.StartDate == "" {
		respondError(w, errors.New(errors.CodeInvalidInput, "start_date不能为空"))
		return
	}
	endDate := req.EndDate
	if endDate == "" {
		start, err := time.Parse("2006-01-02", req.StartDate)
		if err != nil {
			respondError(w, errors.New(errors.CodeInvalidInput, "日期格式无效，应为YYYY-MM-DD"))
			return
		}
		endDate = start.AddDate(0, 0, h.settings.PlanningPeriodDays-1).Format("2006-01-02")
	}

	dates, err := datesInRange(req.StartDate, endDate)
	if err != nil {
		respondError(w, errors.Wrap(err, errors.CodeInvalidInput, "日期范围无效"))
		return
	}

	ctx := r.Context()

	input, appErr := h.loadPlannerInput(ctx, req.StartDate, endDate)
	if appErr != nil {
		respondError(w, appErr)
		return
	}
	input.TargetDates = dates

	result, err := h.planner.AutoFillSchedule(ctx, input)
	if err != nil {
		metrics.RecordAutoFill(false, 0)
		respondAnyError(w, err)
		return
	}

	if req.Persist {
		if err := h.plannedShifts.DeleteDraftsByDateRange(ctx, req.StartDate, endDate); err != nil {
			respondError(w, errors.Wrap(err, errors.CodeDatabaseError, "清除草稿班次失败"))
			return
		}
		if err := h.plannedShifts.BulkCreate(ctx, result.Generated); err != nil {
			respondError(w, errors.Wrap(err, errors.CodeDatabaseError, "写入计划班次失败"))
			return
		}
	}

	metrics.RecordAutoFill(true, len(result.Generated))
	for _, c := range result.Conflicts {
		metrics.RecordPlannerConflict(string(c.Type), string(c.Severity))
	}

	respondJSON(w, http.StatusOK, &AutoFillResponse{
		Success:   true,
		Generated: decorateShifts(result.Generated),
		Conflicts: result.Conflicts,
		Duration:  result.Duration.String(),
	})
}

// Conflicts 检测日期区间内计划排班的冲突
func (h *PlannerHandler) Conflicts(w http.ResponseWriter, r *http.Request) {
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

	input, appErr := h.loadPlannerInput(ctx, startDate, endDate)
	if appErr != nil {
		respondError(w, appErr)
		return
	}

	areaNames := make(map[uuid.UUID]string, len(input.Areas))
	for _, a := range input.Areas {
		areaNames[a.ID] = a.Name
	}

	detector := validator.NewConflictDetector(areaNames)
	conflicts := detector.CalculatePlannerConflicts(
		input.ExistingShifts, input.Targets, input.Members, input.Availability, dates)

	for _, c := range conflicts {
		metrics.RecordPlannerConflict(string(c.Type), string(c.Severity))
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"start_date": startDate,
		"end_date":   endDate,
		"conflicts":  conflicts,
		"total":      len(conflicts),
	})
}

// ListShifts 查询日期区间内的计划班次
func (h *PlannerHandler) ListShifts(w http.ResponseWriter, r *http.Request) {
	startDate := r.URL.Query().Get("start_date")
	endDate := r.URL.Query().Get("end_date")
	if startDate == "" {
		respondError(w, errors.New(errors.CodeInvalidInput, "start_date参数不能为空"))
		return
	}
	if endDate == "" {
		endDate = startDate
	}

	shifts, err := h.plannedShifts.ListByDateRange(r.Context(), startDate, endDate)
	if err != nil {
		respondError(w, errors.Wrap(err, errors.CodeDatabaseError, "查询计划班次失败"))
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"shifts": decorateShifts(shifts),
		"total":  len(shifts),
	})
}

// loadPlannerInput 加载规划所需的全部数据
func (h *PlannerHandler) loadPlannerInput(ctx context.Context, startDate, endDate string) (*planner.Input, *errors.AppError) {
	members, err := h.members.ListActive(ctx)
	if err != nil {
		return nil, errors.Wrap(err, errors.CodeDatabaseError, "加载员工失败")
	}
	skills, err := h.skills.ListAll(ctx)
	if err != nil {
		return nil, errors.Wrap(err, errors.CodeDatabaseError, "加载技能失败")
	}
	areas, err := h.areas.ListAll(ctx)
	if err != nil {
		return nil, errors.Wrap(err, errors.CodeDatabaseError, "加载区域失败")
	}
	targets, err := h.targets.ListAll(ctx)
	if err != nil {
		return nil, errors.Wrap(err, errors.CodeDatabaseError, "加载配置目标失败")
	}
	availability, err := h.availability.ListAll(ctx)
	if err != nil {
		return nil, errors.Wrap(err, errors.CodeDatabaseError, "加载可用时间失败")
	}
	existing, err := h.plannedShifts.ListByDateRange(ctx, startDate, endDate)
	if err != nil {
		return nil, errors.Wrap(err, errors.CodeDatabaseError, "加载计划班次失败")
	}

	return &planner.Input{
		Members:        members,
		Skills:         skills,
		Areas:          areas,
		Targets:        targets,
		Availability:   availability,
		ExistingShifts: existing,
		Settings:       h.settings,
	}, nil
}

// decorateShifts 为班次附加推导的班次类型
func decorateShifts(shifts []*model.PlannedShift) []*PlannedShiftOutput {
	out := make([]*PlannedShiftOutput, 0, len(shifts))
	for _, s := range shifts {
		weekday, err := model.DateWeekday(s.Date)
		class := model.ClassGeneral
		if err == nil {
			class = model.ClassifyShift(s.Window.Start, weekday)
		}
		out = append(out, &PlannedShiftOutput{PlannedShift: s, ShiftClass: class})
	}
	return out
}
