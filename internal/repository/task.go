package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/paigong/paigong/pkg/model"
)

// TaskRepository 任务仓储
type TaskRepository struct {
	db DB
}

// NewTaskRepository 创建任务仓储
func NewTaskRepository(db DB) *TaskRepository {
	return &TaskRepository{db: db}
}

// Create 创建任务
func (r *TaskRepository) Create(ctx context.Context, t *model.Task) error {
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}
	now := time.Now()
	t.CreatedAt = now
	t.UpdatedAt = now

	skillsJSON, _ := json.Marshal(t.RequiredSkillIDs)

	query := `
		INSERT INTO tasks (
			id, name, code, task_type, required_skill_ids, duration,
			priority_weight, recurrence, recurrence_detail, earliest_start, due_by,
			is_must_run, min_coverage, allow_multi_assign, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)
	`

	_, err := r.db.ExecContext(ctx, query,
		t.ID, t.Name, t.Code, t.Type, skillsJSON, t.Duration,
		t.PriorityWeight, t.Recurrence, t.RecurrenceDetail, t.EarliestStart, t.DueBy,
		t.IsMustRun, t.MinCoverage, t.AllowMultiAssign, t.CreatedAt, t.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("创建任务失败: %w", err)
	}

	return nil
}

// GetByID 根据ID获取任务
func (r *TaskRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Task, error) {
	query := taskSelect + ` WHERE id = $1 AND deleted_at IS NULL`
	return r.scanTask(r.db.QueryRowContext(ctx, query, id))
}

// Update 更新任务
func (r *TaskRepository) Update(ctx context.Context, t *model.Task) error {
	t.UpdatedAt = time.Now()

	skillsJSON, _ := json.Marshal(t.RequiredSkillIDs)

	query := `
		UPDATE tasks SET
			name = $2, code = $3, task_type = $4, required_skill_ids = $5,
			duration = $6, priority_weight = $7, recurrence = $8,
			recurrence_detail = $9, earliest_start = $10, due_by = $11,
			is_must_run = $12, min_coverage = $13, allow_multi_assign = $14,
			updated_at = $15
		WHERE id = $1 AND deleted_at IS NULL
	`

	result, err := r.db.ExecContext(ctx, query,
		t.ID, t.Name, t.Code, t.Type, skillsJSON,
		t.Duration, t.PriorityWeight, t.Recurrence,
		t.RecurrenceDetail, t.EarliestStart, t.DueBy,
		t.IsMustRun, t.MinCoverage, t.AllowMultiAssign,
		t.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("更新任务失败: %w", err)
	}

	rows, _ := result.RowsAffected()
	if rows == 0 {
		return fmt.Errorf("任务不存在")
	}

	return nil
}

// Delete 软删除任务
func (r *TaskRepository) Delete(ctx context.Context, id uuid.UUID) error {
	query := `UPDATE tasks SET deleted_at = $2 WHERE id = $1 AND deleted_at IS NULL`

	result, err := r.db.ExecContext(ctx, query, id, time.Now())
	if err != nil {
		return fmt.Errorf("删除任务失败: %w", err)
	}

	rows, _ := result.RowsAffected()
	if rows == 0 {
		return fmt.Errorf("任务不存在")
	}

	return nil
}

// List 查询任务列表
func (r *TaskRepository) List(ctx context.Context, filter ListFilter) ([]*model.Task, int, error) {
	var conditions []string
	var args []interface{}
	argIndex := 1

	conditions = append(conditions, "deleted_at IS NULL")

	if filter.Type != "" {
		conditions = append(conditions, fmt.Sprintf("task_type = $%d", argIndex))
		args = append(args, filter.Type)
		argIndex++
	}

	if filter.Search != "" {
		conditions = append(conditions, fmt.Sprintf("(name ILIKE $%d OR code ILIKE $%d)", argIndex, argIndex))
		args = append(args, "%"+filter.Search+"%")
		argIndex++
	}

	whereClause := strings.Join(conditions, " AND ")

	countQuery := fmt.Sprintf("SELECT COUNT(*) FROM tasks WHERE %s", whereClause)
	var total int
	if err := r.db.QueryRowContext(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("查询总数失败: %w", err)
	}

	orderBy := filter.OrderBy
	if orderBy == "" {
		orderBy = "code"
	}
	orderDir := filter.OrderDir
	if orderDir == "" {
		orderDir = "asc"
	}

	query := fmt.Sprintf(`%s WHERE %s ORDER BY %s %s LIMIT $%d OFFSET $%d`,
		taskSelect, whereClause, orderBy, orderDir, argIndex, argIndex+1)
	args = append(args, filter.Limit, filter.Offset)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("查询列表失败: %w", err)
	}
	defer rows.Close()

	var tasks []*model.Task
	for rows.Next() {
		t, err := r.scanTask(rows)
		if err != nil {
			return nil, 0, err
		}
		tasks = append(tasks, t)
	}

	return tasks, total, nil
}

// ListAll 查询全部任务
func (r *TaskRepository) ListAll(ctx context.Context) ([]*model.Task, error) {
	query := taskSelect + ` WHERE deleted_at IS NULL ORDER BY code`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("查询任务失败: %w", err)
	}
	defer rows.Close()

	var tasks []*model.Task
	for rows.Next() {
		t, err := r.scanTask(rows)
		if err != nil {
			return nil, err
		}
		tasks = append(tasks, t)
	}

	return tasks, nil
}

const taskSelect = `
	SELECT id, name, code, task_type, required_skill_ids, duration,
		priority_weight, recurrence, recurrence_detail, earliest_start, due_by,
		is_must_run, min_coverage, allow_multi_assign, created_at, updated_at
	FROM tasks`

// scanTask 扫描任务行
func (r *TaskRepository) scanTask(s Scanner) (*model.Task, error) {
	var t model.Task
	var skillsJSON []byte

	err := s.Scan(
		&t.ID, &t.Name, &t.Code, &t.Type, &skillsJSON, &t.Duration,
		&t.PriorityWeight, &t.Recurrence, &t.RecurrenceDetail, &t.EarliestStart, &t.DueBy,
		&t.IsMustRun, &t.MinCoverage, &t.AllowMultiAssign, &t.CreatedAt, &t.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("任务不存在")
	}
	if err != nil {
		return nil, fmt.Errorf("扫描任务失败: %w", err)
	}

	json.Unmarshal(skillsJSON, &t.RequiredSkillIDs)

	return &t, nil
}

// RuleRepository 指派规则仓储
type RuleRepository struct {
	db DB
}

// NewRuleRepository 创建规则仓储
func NewRuleRepository(db DB) *RuleRepository {
	return &RuleRepository{db: db}
}

// Create 创建规则
func (r *RuleRepository) Create(ctx context.Context, rule *model.ExplicitRule) error {
	if rule.ID == uuid.Nil {
		rule.ID = uuid.New()
	}
	now := time.Now()
	rule.CreatedAt = now
	rule.UpdatedAt = now

	primaryJSON, _ := json.Marshal(rule.Primary)
	fallbacksJSON, _ := json.Marshal(rule.Fallbacks)
	excludedJSON, _ := json.Marshal(rule.ExcludedWeekdays)

	query := `
		INSERT INTO assignment_rules (
			id, task_id, primary_selector, fallback_selectors,
			excluded_weekdays, reason_template, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`

	_, err := r.db.ExecContext(ctx, query,
		rule.ID, rule.TaskID, primaryJSON, fallbacksJSON,
		excludedJSON, rule.ReasonTemplate, rule.CreatedAt, rule.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("创建规则失败: %w", err)
	}

	return nil
}

// Delete 软删除规则
func (r *RuleRepository) Delete(ctx context.Context, id uuid.UUID) error {
	query := `UPDATE assignment_rules SET deleted_at = $2 WHERE id = $1 AND deleted_at IS NULL`

	result, err := r.db.ExecContext(ctx, query, id, time.Now())
	if err != nil {
		return fmt.Errorf("删除规则失败: %w", err)
	}

	rows, _ := result.RowsAffected()
	if rows == 0 {
		return fmt.Errorf("规则不存在")
	}

	return nil
}

// ListAll 查询全部规则（按创建时间排序，先建的规则优先生效）
func (r *RuleRepository) ListAll(ctx context.Context) ([]*model.ExplicitRule, error) {
	query := `
		SELECT id, task_id, primary_selector, fallback_selectors,
			excluded_weekdays, reason_template, created_at, updated_at
		FROM assignment_rules WHERE deleted_at IS NULL ORDER BY created_at
	`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("查询规则失败: %w", err)
	}
	defer rows.Close()

	var rules []*model.ExplicitRule
	for rows.Next() {
		var rule model.ExplicitRule
		var primaryJSON, fallbacksJSON, excludedJSON []byte

		err := rows.Scan(
			&rule.ID, &rule.TaskID, &primaryJSON, &fallbacksJSON,
			&excludedJSON, &rule.ReasonTemplate, &rule.CreatedAt, &rule.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("扫描规则失败: %w", err)
		}

		json.Unmarshal(primaryJSON, &rule.Primary)
		json.Unmarshal(fallbacksJSON, &rule.Fallbacks)
		json.Unmarshal(excludedJSON, &rule.ExcludedWeekdays)

		rules = append(rules, &rule)
	}

	return rules, nil
}
