package handler

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/paigong/paigong/internal/repository"
	"github.com/paigong/paigong/pkg/errors"
	"github.com/paigong/paigong/pkg/model"
)

// AdminHandler 基础数据维护处理器
type AdminHandler struct {
	members      *repository.MemberRepository
	skills       *repository.SkillRepository
	tasks        *repository.TaskRepository
	rules        *repository.RuleRepository
	areas        *repository.AreaRepository
	targets      *repository.StaffingTargetRepository
	availability *repository.AvailabilityRepository
	shifts       *repository.ScheduleShiftRepository
}

// NewAdminHandler 创建基础数据维护处理器
func NewAdminHandler(
	members *repository.MemberRepository,
	skills *repository.SkillRepository,
	tasks *repository.TaskRepository,
	rules *repository.RuleRepository,
	areas *repository.AreaRepository,
	targets *repository.StaffingTargetRepository,
	availability *repository.AvailabilityRepository,
	shifts *repository.ScheduleShiftRepository,
) *AdminHandler {
	return &AdminHandler{
		members:      members,
		skills:       skills,
		tasks:        tasks,
		rules:        rules,
		areas:        areas,
		targets:      targets,
		availability: availability,
		shifts:       shifts,
	}
}

// Members 员工集合端点：GET列表 / POST创建
func (h *AdminHandler) Members(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		filter := listFilterFromQuery(r)
		members, total, err := h.members.List(r.Context(), filter)
		if err != nil {
			respondError(w, errors.Wrap(err, errors.CodeDatabaseError, "查询员工失败"))
			return
		}
		respondJSON(w, http.StatusOK, map[string]interface{}{"members": members, "total": total})

	case http.MethodPost:
		var m model.Member
		if err := json.NewDecoder(r.Body).Decode(&m); err != nil {
			respondError(w, errors.Wrap(err, errors.CodeInvalidInput, "解析请求失败"))
			return
		}
		if appErr := validateMember(&m); appErr != nil {
			respondError(w, appErr)
			return
		}
		if m.Status == "" {
			m.Status = "active"
		}
		if err := h.members.Create(r.Context(), &m); err != nil {
			respondError(w, errors.Wrap(err, errors.CodeDatabaseError, "创建员工失败"))
			return
		}
		respondJSON(w, http.StatusCreated, &m)

	default:
		respondError(w, errors.New(errors.CodeInvalidInput, "不支持的方法"))
	}
}

// Member 单个员工端点：GET / PUT / DELETE
func (h *AdminHandler) Member(w http.ResponseWriter, r *http.Request) {
	id, appErr := pathID(r, "/api/v1/members/")
	if appErr != nil {
		respondError(w, appErr)
		return
	}

	switch r.Method {
	case http.MethodGet:
		m, err := h.members.GetByID(r.Context(), id)
		if err != nil {
			respondError(w, errors.Wrap(err, errors.CodeNotFound, "员工不存在"))
			return
		}
		respondJSON(w, http.StatusOK, m)

	case http.MethodPut:
		var m model.Member
		if err := json.NewDecoder(r.Body).Decode(&m); err != nil {
			respondError(w, errors.Wrap(err, errors.CodeInvalidInput, "解析请求失败"))
			return
		}
		m.ID = id
		if appErr := validateMember(&m); appErr != nil {
			respondError(w, appErr)
			return
		}
		if err := h.members.Update(r.Context(), &m); err != nil {
			respondError(w, errors.Wrap(err, errors.CodeDatabaseError, "更新员工失败"))
			return
		}
		respondJSON(w, http.StatusOK, &m)

	case http.MethodDelete:
		if err := h.members.Delete(r.Context(), id); err != nil {
			respondError(w, errors.Wrap(err, errors.CodeDatabaseError, "删除员工失败"))
			return
		}
		respondJSON(w, http.StatusOK, map[string]interface{}{"success": true})

	default:
		respondError(w, errors.New(errors.CodeInvalidInput, "不支持的方法"))
	}
}

// MemberAvailability 员工可用时间端点：PUT整体替换
func (h *AdminHandler) MemberAvailability(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPut {
		respondError(w, errors.New(errors.CodeInvalidInput, "仅支持PUT方法"))
		return
	}

	path := strings.TrimPrefix(r.URL.Path, "/api/v1/members/")
	path = strings.TrimSuffix(path, "/availability")
	id, err := uuid.Parse(path)
	if err != nil {
		respondError(w, errors.Wrap(err, errors.CodeInvalidInput, "无效的员工ID格式"))
		return
	}

	var entries []*model.Availability
	if err := json.NewDecoder(r.Body).Decode(&entries); err != nil {
		respondError(w, errors.Wrap(err, errors.CodeInvalidInput, "解析请求失败"))
		return
	}
	for _, av := range entries {
		if av.Window.Minutes() <= 0 {
			respondError(w, errors.InvalidTimeRange(av.Window.Start, av.Window.End))
			return
		}
	}

	if err := h.availability.ReplaceForMember(r.Context(), id, entries); err != nil {
		respondError(w, errors.Wrap(err, errors.CodeDatabaseError, "保存可用时间失败"))
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{"success": true, "count": len(entries)})
}

// Skills 技能集合端点：GET列表 / POST创建
func (h *AdminHandler) Skills(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		skills, err := h.skills.ListAll(r.Context())
		if err != nil {
			respondError(w, errors.Wrap(err, errors.CodeDatabaseError, "查询技能失败"))
			return
		}
		respondJSON(w, http.StatusOK, map[string]interface{}{"skills": skills, "total": len(skills)})

	case http.MethodPost:
		var s model.Skill
		if err := json.NewDecoder(r.Body).Decode(&s); err != nil {
			respondError(w, errors.Wrap(err, errors.CodeInvalidInput, "解析请求失败"))
			return
		}
		if s.Name == "" {
			respondError(w, errors.InvalidInput("name", "技能名称不能为空"))
			return
		}
		if err := h.skills.Create(r.Context(), &s); err != nil {
			respondError(w, errors.Wrap(err, errors.CodeDatabaseError, "创建技能失败"))
			return
		}
		respondJSON(w, http.StatusCreated, &s)

	default:
		respondError(w, errors.New(errors.CodeInvalidInput, "不支持的方法"))
	}
}

// Tasks 任务集合端点：GET列表 / POST创建
func (h *AdminHandler) Tasks(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		filter := listFilterFromQuery(r)
		tasks, total, err := h.tasks.List(r.Context(), filter)
		if err != nil {
			respondError(w, errors.Wrap(err, errors.CodeDatabaseError, "查询任务失败"))
			return
		}
		respondJSON(w, http.StatusOK, map[string]interface{}{"tasks": tasks, "total": total})

	case http.MethodPost:
		var t model.Task
		if err := json.NewDecoder(r.Body).Decode(&t); err != nil {
			respondError(w, errors.Wrap(err, errors.CodeInvalidInput, "解析请求失败"))
			return
		}
		if appErr := validateTask(&t); appErr != nil {
			respondError(w, appErr)
			return
		}
		if err := h.tasks.Create(r.Context(), &t); err != nil {
			respondError(w, errors.Wrap(err, errors.CodeDatabaseError, "创建任务失败"))
			return
		}
		respondJSON(w, http.StatusCreated, &t)

	default:
		respondError(w, errors.New(errors.CodeInvalidInput, "不支持的方法"))
	}
}

// Task 单个任务端点：GET / PUT / DELETE
func (h *AdminHandler) Task(w http.ResponseWriter, r *http.Request) {
	id, appErr := pathID(r, "/api/v1/tasks/")
	if appErr != nil {
		respondError(w, appErr)
		return
	}

	switch r.Method {
	case http.MethodGet:
		t, err := h.tasks.GetByID(r.Context(), id)
		if err != nil {
			respondError(w, errors.Wrap(err, errors.CodeNotFound, "任务不存在"))
			return
		}
		respondJSON(w, http.StatusOK, t)

	case http.MethodPut:
		var t model.Task
		if err := json.NewDecoder(r.Body).Decode(&t); err != nil {
			respondError(w, errors.Wrap(err, errors.CodeInvalidInput, "解析请求失败"))
			return
		}
		t.ID = id
		if appErr := validateTask(&t); appErr != nil {
			respondError(w, appErr)
			return
		}
		if err := h.tasks.Update(r.Context(), &t); err != nil {
			respondError(w, errors.Wrap(err, errors.CodeDatabaseError, "更新任务失败"))
			return
		}
		respondJSON(w, http.StatusOK, &t)

	case http.MethodDelete:
		if err := h.tasks.Delete(r.Context(), id); err != nil {
			respondError(w, errors.Wrap(err, errors.CodeDatabaseError, "删除任务失败"))
			return
		}
		respondJSON(w, http.StatusOK, map[string]interface{}{"success": true})

	default:
		respondError(w, errors.New(errors.CodeInvalidInput, "不支持的方法"))
	}
}

// Rules 指派规则集合端点：GET列表 / POST创建
func (h *AdminHandler) Rules(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		rules, err := h.rules.ListAll(r.Context())
		if err != nil {
			respondError(w, errors.Wrap(err, errors.CodeDatabaseError, "查询规则失败"))
			return
		}
		respondJSON(w, http.StatusOK, map[string]interface{}{"rules": rules, "total": len(rules)})

	case http.MethodPost:
		var rule model.ExplicitRule
		if err := json.NewDecoder(r.Body).Decode(&rule); err != nil {
			respondError(w, errors.Wrap(err, errors.CodeInvalidInput, "解析请求失败"))
			return
		}
		if appErr := validateRule(&rule); appErr != nil {
			respondError(w, appErr)
			return
		}
		if err := h.rules.Create(r.Context(), &rule); err != nil {
			respondError(w, errors.Wrap(err, errors.CodeDatabaseError, "创建规则失败"))
			return
		}
		respondJSON(w, http.StatusCreated, &rule)

	default:
		respondError(w, errors.New(errors.CodeInvalidInput, "不支持的方法"))
	}
}

// Areas 区域集合端点：GET列表 / POST创建
func (h *AdminHandler) Areas(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		areas, err := h.areas.ListAll(r.Context())
		if err != nil {
			respondError(w, errors.Wrap(err, errors.CodeDatabaseError, "查询区域失败"))
			return
		}
		respondJSON(w, http.StatusOK, map[string]interface{}{"areas": areas, "total": len(areas)})

	case http.MethodPost:
		var a model.Area
		if err := json.NewDecoder(r.Body).Decode(&a); err != nil {
			respondError(w, errors.Wrap(err, errors.CodeInvalidInput, "解析请求失败"))
			return
		}
		if a.Name == "" {
			respondError(w, errors.InvalidInput("name", "区域名称不能为空"))
			return
		}
		if err := h.areas.Create(r.Context(), &a); err != nil {
			respondError(w, errors.Wrap(err, errors.CodeDatabaseError, "创建区域失败"))
			return
		}
		respondJSON(w, http.StatusCreated, &a)

	default:
		respondError(w, errors.New(errors.CodeInvalidInput, "不支持的方法"))
	}
}

// Targets 人力配置目标集合端点：GET列表 / POST创建
func (h *AdminHandler) Targets(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		targets, err := h.targets.ListAll(r.Context())
		if err != nil {
			respondError(w, errors.Wrap(err, errors.CodeDatabaseError, "查询配置目标失败"))
			return
		}
		respondJSON(w, http.StatusOK, map[string]interface{}{"targets": targets, "total": len(targets)})

	case http.MethodPost:
		var t model.StaffingTarget
		if err := json.NewDecoder(r.Body).Decode(&t); err != nil {
			respondError(w, errors.Wrap(err, errors.CodeInvalidInput, "解析请求失败"))
			return
		}
		if t.Required <= 0 {
			respondError(w, errors.InvalidInput("required", "所需人数必须大于0"))
			return
		}
		if t.Window.Minutes() <= 0 {
			respondError(w, errors.InvalidTimeRange(t.Window.Start, t.Window.End))
			return
		}
		if err := h.targets.Create(r.Context(), &t); err != nil {
			respondError(w, errors.Wrap(err, errors.CodeDatabaseError, "创建配置目标失败"))
			return
		}
		respondJSON(w, http.StatusCreated, &t)

	default:
		respondError(w, errors.New(errors.CodeInvalidInput, "不支持的方法"))
	}
}

// DaySchedule 当日排班端点：GET查询 / PUT整体替换
func (h *AdminHandler) DaySchedule(w http.ResponseWriter, r *http.Request) {
	date := r.URL.Query().Get("date")
	if date == "" {
		respondError(w, errors.New(errors.CodeInvalidInput, "date参数不能为空"))
		return
	}
	if _, err := model.DateWeekday(date); err != nil {
		respondError(w, errors.New(errors.CodeInvalidInput, "日期格式无效，应为YYYY-MM-DD"))
		return
	}

	switch r.Method {
	case http.MethodGet:
		shifts, err := h.shifts.ListByDate(r.Context(), date)
		if err != nil {
			respondError(w, errors.Wrap(err, errors.CodeDatabaseError, "查询排班失败"))
			return
		}
		respondJSON(w, http.StatusOK, map[string]interface{}{"date": date, "shifts": shifts})

	case http.MethodPut:
		var shifts []*model.ScheduleShift
		if err := json.NewDecoder(r.Body).Decode(&shifts); err != nil {
			respondError(w, errors.Wrap(err, errors.CodeInvalidInput, "解析请求失败"))
			return
		}
		for _, s := range shifts {
			if s.Window.Minutes() <= 0 {
				respondError(w, errors.InvalidTimeRange(s.Window.Start, s.Window.End))
				return
			}
		}
		if err := h.shifts.ReplaceForDate(r.Context(), date, shifts); err != nil {
			respondError(w, errors.Wrap(err, errors.CodeDatabaseError, "保存排班失败"))
			return
		}
		respondJSON(w, http.StatusOK, map[string]interface{}{"success": true, "count": len(shifts)})

	default:
		respondError(w, errors.New(errors.CodeInvalidInput, "不支持的方法"))
	}
}

// pathID 从路径中提取UUID
func pathID(r *http.Request, prefix string) (uuid.UUID, *errors.AppError) {
	raw := strings.TrimPrefix(r.URL.Path, prefix)
	raw = strings.TrimSuffix(raw, "/")
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, errors.Wrap(err, errors.CodeInvalidInput, "无效的ID格式")
	}
	return id, nil
}

// listFilterFromQuery 从查询参数构建过滤器
func listFilterFromQuery(r *http.Request) repository.ListFilter {
	filter := repository.DefaultListFilter()
	q := r.URL.Query()

	if status := q.Get("status"); status != "" {
		filter = filter.WithStatus(status)
	}
	if t := q.Get("type"); t != "" {
		filter = filter.WithType(t)
	}
	if search := q.Get("search"); search != "" {
		filter.Search = search
	}
	if limit, err := strconv.Atoi(q.Get("limit")); err == nil && limit > 0 {
		filter = filter.WithLimit(limit)
	}
	if offset, err := strconv.Atoi(q.Get("offset")); err == nil && offset >= 0 {
		filter = filter.WithOffset(offset)
	}

	return filter
}

// validateMember 验证员工输入
func validateMember(m *model.Member) *errors.AppError {
	ve := &errors.ValidationErrors{}

	if m.Name == "" {
		ve.Add("name", "姓名不能为空")
	}
	if m.Code == "" {
		ve.Add("code", "工号不能为空")
	}
	if m.FixedCommitmentMinutes < 0 {
		ve.Add("fixed_commitment_minutes", "固定承诺时间不能为负")
	}
	if m.MaxDailyMinutes < 0 {
		ve.Add("max_daily_minutes", "单日上限不能为负")
	}
	if m.MaxWeeklyMinutes < 0 {
		ve.Add("max_weekly_minutes", "每周上限不能为负")
	}

	if ve.HasErrors() {
		return ve.ToAppError()
	}
	return nil
}

// validateTask 验证任务输入
func validateTask(t *model.Task) *errors.AppError {
	ve := &errors.ValidationErrors{}

	if t.Name == "" {
		ve.Add("name", "任务名称不能为空")
	}
	if t.Duration <= 0 {
		ve.Add("duration", "任务时长必须大于0")
	}
	switch t.Type {
	case "", model.TaskStandard, model.TaskUpkeep, model.TaskProject:
	default:
		ve.Add("type", "未知的任务类型")
	}
	if t.DueBy != "" && t.DueBy != model.DueEOD && t.DueBy != model.DueContinuous {
		if _, err := model.ParseClock(t.DueBy); err != nil {
			ve.Add("due_by", "截止时间应为HH:mm、EOD或Continuous")
		}
	}
	if t.EarliestStart != "" {
		if _, err := model.ParseClock(t.EarliestStart); err != nil {
			ve.Add("earliest_start", "最早开始时间格式无效，应为HH:mm")
		}
	}

	if ve.HasErrors() {
		return ve.ToAppError()
	}
	return nil
}

// validateRule 验证规则输入
func validateRule(rule *model.ExplicitRule) *errors.AppError {
	ve := &errors.ValidationErrors{}

	if rule.TaskID == uuid.Nil {
		ve.Add("task_id", "任务ID不能为空")
	}
	if _, err := rule.Primary.Decode(); err != nil {
		ve.Add("primary", err.Error())
	}
	for _, fb := range rule.Fallbacks {
		if _, err := fb.Decode(); err != nil {
			ve.Add("fallbacks", err.Error())
			break
		}
	}

	if ve.HasErrors() {
		return ve.ToAppError()
	}
	return nil
}
