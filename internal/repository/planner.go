package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/paigong/paigong/pkg/model"
)

// AreaRepository 工作区域仓储
type AreaRepository struct {
	db DB
}

// NewAreaRepository 创建区域仓储
func NewAreaRepository(db DB) *AreaRepository {
	return &AreaRepository{db: db}
}

// Create 创建区域
func (r *AreaRepository) Create(ctx context.Context, a *model.Area) error {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	now := time.Now()
	a.CreatedAt = now
	a.UpdatedAt = now

	query := `INSERT INTO areas (id, name, description, created_at, updated_at) VALUES ($1, $2, $3, $4, $5)`
	if _, err := r.db.ExecContext(ctx, query, a.ID, a.Name, a.Description, a.CreatedAt, a.UpdatedAt); err != nil {
		return fmt.Errorf("创建区域失败: %w", err)
	}
	return nil
}

// GetByID 根据ID获取区域
func (r *AreaRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Area, error) {
	query := `SELECT id, name, description, created_at, updated_at FROM areas WHERE id = $1 AND deleted_at IS NULL`
	var a model.Area
	err := r.db.QueryRowContext(ctx, query, id).Scan(&a.ID, &a.Name, &a.Description, &a.CreatedAt, &a.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("区域不存在")
	}
	if err != nil {
		return nil, fmt.Errorf("查询区域失败: %w", err)
	}
	return &a, nil
}

// ListAll 查询全部区域
func (r *AreaRepository) ListAll(ctx context.Context) ([]*model.Area, error) {
	query := `SELECT id, name, description, created_at, updated_at FROM areas WHERE deleted_at IS NULL ORDER BY name`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("查询区域失败: %w", err)
	}
	defer rows.Close()

	var areas []*model.Area
	for rows.Next() {
		var a model.Area
		if err := rows.Scan(&a.ID, &a.Name, &a.Description, &a.CreatedAt, &a.UpdatedAt); err != nil {
			return nil, fmt.Errorf("扫描区域失败: %w", err)
		}
		areas = append(areas, &a)
	}

	return areas, nil
}

// StaffingTargetRepository 人员配置目标仓储
type StaffingTargetRepository struct {
	db DB
}

// NewStaffingTargetRepository 创建配置目标仓储
func NewStaffingTargetRepository(db DB) *StaffingTargetRepository {
	return &StaffingTargetRepository{db: db}
}

// Create 创建配置目标
func (r *StaffingTargetRepository) Create(ctx context.Context, t *model.StaffingTarget) error {
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}
	now := time.Now()
	t.CreatedAt = now
	t.UpdatedAt = now

	query := `
		INSERT INTO staffing_targets (id, weekday, area_id, window_start, window_end, required, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`
	_, err := r.db.ExecContext(ctx, query,
		t.ID, t.Weekday, t.AreaID, t.Window.Start, t.Window.End, t.Required, t.CreatedAt, t.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("创建配置目标失败: %w", err)
	}
	return nil
}

// Delete 软删除配置目标
func (r *StaffingTargetRepository) Delete(ctx context.Context, id uuid.UUID) error {
	query := `UPDATE staffing_targets SET deleted_at = $2 WHERE id = $1 AND deleted_at IS NULL`
	result, err := r.db.ExecContext(ctx, query, id, time.Now())
	if err != nil {
		return fmt.Errorf("删除配置目标失败: %w", err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return fmt.Errorf("配置目标不存在")
	}
	return nil
}

// ListAll 查询全部配置目标
func (r *StaffingTargetRepository) ListAll(ctx context.Context) ([]*model.StaffingTarget, error) {
	query := `
		SELECT id, weekday, area_id, window_start, window_end, required, created_at, updated_at
		FROM staffing_targets WHERE deleted_at IS NULL ORDER BY weekday, window_start
	`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("查询配置目标失败: %w", err)
	}
	defer rows.Close()

	var targets []*model.StaffingTarget
	for rows.Next() {
		var t model.StaffingTarget
		if err := rows.Scan(&t.ID, &t.Weekday, &t.AreaID, &t.Window.Start, &t.Window.End, &t.Required, &t.CreatedAt, &t.UpdatedAt); err != nil {
			return nil, fmt.Errorf("扫描配置目标失败: %w", err)
		}
		targets = append(targets, &t)
	}

	return targets, nil
}

// PlannedShiftRepository 计划班次仓储
type PlannedShiftRepository struct {
	db DB
}

// NewPlannedShiftRepository 创建计划班次仓储
func NewPlannedShiftRepository(db DB) *PlannedShiftRepository {
	return &PlannedShiftRepository{db: db}
}

// ListByDateRange 查询日期区间内的计划班次
func (r *PlannedShiftRepository) ListByDateRange(ctx context.Context, startDate, endDate string) ([]*model.PlannedShift, error) {
	query := plannedShiftSelect + ` WHERE shift_date >= $1 AND shift_date <= $2 AND deleted_at IS NULL ORDER BY shift_date, start_time, member_id`
	return r.queryShifts(ctx, query, startDate, endDate)
}

// ListByDate 查询某日的计划班次
func (r *PlannedShiftRepository) ListByDate(ctx context.Context, date string) ([]*model.PlannedShift, error) {
	query := plannedShiftSelect + ` WHERE shift_date = $1 AND deleted_at IS NULL ORDER BY start_time, member_id`
	return r.queryShifts(ctx, query, date)
}

// BulkCreate 批量写入计划班次
func (r *PlannedShiftRepository) BulkCreate(ctx context.Context, shifts []*model.PlannedShift) error {
	if len(shifts) == 0 {
		return nil
	}

	now := time.Now()
	query := `
		INSERT INTO planned_shifts (
			id, member_id, shift_date, start_time, end_time, area_id,
			source, status, reason, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`

	for _, s := range shifts {
		if s.ID == uuid.Nil {
			s.ID = uuid.New()
		}
		_, err := r.db.ExecContext(ctx, query,
			s.ID, s.MemberID, s.Date, s.Window.Start, s.Window.End, s.AreaID,
			s.Source, s.Status, s.Reason, now, now,
		)
		if err != nil {
			return fmt.Errorf("写入计划班次失败: %w", err)
		}
	}

	return nil
}

// UpdateStatus 更新计划班次状态
func (r *PlannedShiftRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status model.PlannedShiftStatus) error {
	query := `UPDATE planned_shifts SET status = $2, updated_at = $3 WHERE id = $1 AND deleted_at IS NULL`
	result, err := r.db.ExecContext(ctx, query, id, status, time.Now())
	if err != nil {
		return fmt.Errorf("更新班次状态失败: %w", err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return fmt.Errorf("计划班次不存在")
	}
	return nil
}

// DeleteDraftsByDateRange 删除日期区间内来自自动补班的草稿班次
func (r *PlannedShiftRepository) DeleteDraftsByDateRange(ctx context.Context, startDate, endDate string) error {
	query := `
		UPDATE planned_shifts SET deleted_at = $3
		WHERE shift_date >= $1 AND shift_date <= $2
			AND source = 'autofill' AND status = 'draft' AND deleted_at IS NULL
	`
	if _, err := r.db.ExecContext(ctx, query, startDate, endDate, time.Now()); err != nil {
		return fmt.Errorf("清除草稿班次失败: %w", err)
	}
	return nil
}

const plannedShiftSelect = `
	SELECT id, member_id, shift_date, start_time, end_time, area_id,
		source, status, reason, created_at, updated_at
	FROM planned_shifts`

func (r *PlannedShiftRepository) queryShifts(ctx context.Context, query string, args ...interface{}) ([]*model.PlannedShift, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("查询计划班次失败: %w", err)
	}
	defer rows.Close()

	var shifts []*model.PlannedShift
	for rows.Next() {
		var s model.PlannedShift
		err := rows.Scan(
			&s.ID, &s.MemberID, &s.Date, &s.Window.Start, &s.Window.End, &s.AreaID,
			&s.Source, &s.Status, &s.Reason, &s.CreatedAt, &s.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("扫描计划班次失败: %w", err)
		}
		shifts = append(shifts, &s)
	}

	return shifts, nil
}
