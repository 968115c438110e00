// Package handler 提供HTTP请求处理器
package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/paigong/paigong/internal/metrics"
	"github.com/paigong/paigong/internal/repository"
	"github.com/paigong/paigong/pkg/engine"
	"github.com/paigong/paigong/pkg/errors"
	"github.com/paigong/paigong/pkg/model"
	"github.com/paigong/paigong/pkg/stats"
)

// AssignHandler 派工处理器
type AssignHandler struct {
	members     *repository.MemberRepository
	tasks       *repository.TaskRepository
	rules       *repository.RuleRepository
	shifts      *repository.ScheduleShiftRepository
	assignments *repository.AssignmentRepository
	engine      *engine.Engine
	settings    model.ManagerSettings
}

// NewAssignHandler 创建派工处理器
func NewAssignHandler(
	members *repository.MemberRepository,
	tasks *repository.TaskRepository,
	rules *repository.RuleRepository,
	shifts *repository.ScheduleShiftRepository,
	assignments *repository.AssignmentRepository,
	settings model.ManagerSettings,
) *AssignHandler {
	return &AssignHandler{
		members:     members,
		tasks:       tasks,
		rules:       rules,
		shifts:      shifts,
		assignments: assignments,
		engine:      engine.New(),
		settings:    settings,
	}
}

// GenerateRequest 派工生成请求
type GenerateRequest struct {
	Date       string   `json:"date"`                  // YYYY-MM-DD
	EndDate    string   `json:"end_date,omitempty"`    // 可选，多日生成
	OrderHints []string `json:"order_hints,omitempty"` // 任务ID列表，越靠前优先级加成越高
	Persist    bool     `json:"persist,omitempty"`     // 是否写入数据库
}

// GenerateResponse 派工生成响应
type GenerateResponse struct {
	Success  bool         `json:"success"`
	Days     []*DayResult `json:"days"`
	Duration string       `json:"duration"`
}

// DayResult 单日派工结果
type DayResult struct {
	Date         string                      `json:"date"`
	Assignments  []*model.Assignment         `json:"assignments"`
	Unassigned   []*model.UnassignedTask     `json:"unassigned,omitempty"`
	OverCapacity []*model.OverCapacityMember `json:"over_capacity,omitempty"`
	Workload     *stats.WorkloadMetrics      `json:"workload,omitempty"`
}

// Generate 生成派工
// 多日生成时逐日独立运行，前一日的结果不影响后一日；
// 每日的已锁定分配在重新生成时原样保留。
func (h *AssignHandler) Generate(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		respondError(w, errors.New(errors.CodeInvalidInput, "仅支持POST方法"))
		return
	}

	var req GenerateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, errors.Wrap(err, errors.CodeInvalidInput, "解析请求失败"))
		return
	}

	if appErr := validateGenerateRequest(&req); appErr != nil {
		respondError(w, appErr)
		return
	}

	dates, err := datesInRange(req.Date, req.EndDate)
	if err != nil {
		respondError(w, errors.Wrap(err, errors.CodeInvalidInput, "日期范围无效"))
		return
	}

	hints, appErr := parseOrderHints(req.OrderHints)
	if appErr != nil {
		respondError(w, appErr)
		return
	}

	ctx := r.Context()
	startTime := time.Now()

	members, err := h.members.ListActive(ctx)
	if err != nil {
		respondError(w, errors.Wrap(err, errors.CodeDatabaseError, "加载员工失败"))
		return
	}
	tasks, err := h.tasks.ListAll(ctx)
	if err != nil {
		respondError(w, errors.Wrap(err, errors.CodeDatabaseError, "加载任务失败"))
		return
	}
	rules, err := h.rules.ListAll(ctx)
	if err != nil {
		respondError(w, errors.Wrap(err, errors.CodeDatabaseError, "加载规则失败"))
		return
	}

	resp := &GenerateResponse{Success: true}

	for _, date := range dates {
		daySchedule, err := h.shifts.ListByDate(ctx, date)
		if err != nil {
			respondError(w, errors.Wrap(err, errors.CodeDatabaseError, "加载排班失败"))
			return
		}
		locked, err := h.assignments.ListLockedByDate(ctx, date)
		if err != nil {
			respondError(w, errors.Wrap(err, errors.CodeDatabaseError, "加载锁定分配失败"))
			return
		}

		result, err := h.engine.GenerateAssignments(ctx, &engine.Input{
			Members:           members,
			Tasks:             tasks,
			Rules:             rules,
			DaySchedule:       daySchedule,
			LockedAssignments: locked,
			Settings:          h.settings,
			TargetDate:        date,
			OrderHints:        hints,
		})
		if err != nil {
			metrics.RecordAssignmentGeneration(false, time.Since(startTime))
			respondAnyError(w, err)
			return
		}

		if req.Persist {
			if err := h.persistDay(ctx, date, result); err != nil {
				respondError(w, errors.Wrap(err, errors.CodeDatabaseError, "写入派工结果失败"))
				return
			}
		}

		recordDayMetrics(result)

		resp.Days = append(resp.Days, &DayResult{
			Date:         result.Date,
			Assignments:  result.Assignments,
			Unassigned:   result.Unassigned,
			OverCapacity: result.OverCapacity,
			Workload:     stats.AnalyzeWorkloads(result.Workloads),
		})
	}

	metrics.RecordAssignmentGeneration(true, time.Since(startTime))
	resp.Duration = time.Since(startTime).String()
	respondJSON(w, http.StatusOK, resp)
}

// persistDay 清除未锁定的旧结果后写入新结果
func (h *AssignHandler) persistDay(ctx context.Context, date string, result *engine.Result) error {
	if err := h.assignments.DeleteUnlockedByDate(ctx, date); err != nil {
		return err
	}
	return h.assignments.BulkUpsert(ctx, result.Assignments)
}

// LockRequest 锁定请求
type LockRequest struct {
	IDs    []string `json:"ids"`
	Locked bool     `json:"locked"`
}

// Lock 设置分配的锁定状态
func (h *AssignHandler) Lock(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		respondError(w, errors.New(errors.CodeInvalidInput, "仅支持POST方法"))
		return
	}

	var req LockRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, errors.Wrap(err, errors.CodeInvalidInput, "解析请求失败"))
		return
	}
	if len(req.IDs) == 0 {
		respondError(w, errors.New(errors.CodeInvalidInput, "ID列表不能为空"))
		return
	}

	ids := make([]uuid.UUID, 0, len(req.IDs))
	for _, raw := range req.IDs {
		id, err := uuid.Parse(raw)
		if err != nil {
			respondError(w, errors.Wrap(err, errors.CodeInvalidInput, "无效的分配ID格式"))
			return
		}
		ids = append(ids, id)
	}

	if err := h.assignments.SetLocked(r.Context(), ids, req.Locked); err != nil {
		respondError(w, errors.Wrap(err, errors.CodeDatabaseError, "更新锁定状态失败"))
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{"success": true, "updated": len(ids)})
}

// ListByDate 查询某日的派工结果
func (h *AssignHandler) ListByDate(w http.ResponseWriter, r *http.Request) {
	date := r.URL.Query().Get("date")
	if date == "" {
		respondError(w, errors.New(errors.CodeInvalidInput, "date参数不能为空"))
		return
	}
	if _, err := time.Parse("2006-01-02", date); err != nil {
		respondError(w, errors.New(errors.CodeInvalidInput, "日期格式无效，应为YYYY-MM-DD"))
		return
	}

	assignments, err := h.assignments.ListByDate(r.Context(), date)
	if err != nil {
		respondError(w, errors.Wrap(err, errors.CodeDatabaseError, "查询派工结果失败"))
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"date":        date,
		"assignments": assignments,
		"total":       len(assignments),
	})
}

// validateGenerateRequest 验证派工生成请求
func validateGenerateRequest(req *GenerateRequest) *errors.AppError {
	ve := &errors.ValidationErrors{}

	if req.Date == "" {
		ve.Add("date", "日期不能为空")
	} else if _, err := time.Parse("2006-01-02", req.Date); err != nil {
		ve.Add("date", "日期格式无效，应为YYYY-MM-DD")
	}

	if req.EndDate != "" {
		if _, err := time.Parse("2006-01-02", req.EndDate); err != nil {
			ve.Add("end_date", "日期格式无效，应为YYYY-MM-DD")
		} else if req.EndDate < req.Date {
			ve.Add("end_date", "结束日期不能早于开始日期")
		}
	}

	if ve.HasErrors() {
		return ve.ToAppError()
	}
	return nil
}

// parseOrderHints 解析排序提示中的任务ID
func parseOrderHints(raw []string) ([]uuid.UUID, *errors.AppError) {
	if len(raw) == 0 {
		return nil, nil
	}
	hints := make([]uuid.UUID, 0, len(raw))
	for _, s := range raw {
		id, err := uuid.Parse(s)
		if err != nil {
			return nil, errors.Wrap(err, errors.CodeInvalidInput, "无效的任务ID格式").WithField("order_hint", s)
		}
		hints = append(hints, id)
	}
	return hints, nil
}

// recordDayMetrics 记录单日生成指标
func recordDayMetrics(result *engine.Result) {
	byReason := make(map[string]int)
	for _, u := range result.Unassigned {
		for _, reason := range u.Reasons {
			byReason[string(reason)]++
		}
	}
	for reason, count := range byReason {
		metrics.SetUnassignedTasks(reason, count)
	}
	metrics.SetOverCapacityMembers(len(result.OverCapacity))
}
