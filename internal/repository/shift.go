package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/paigong/paigong/pkg/model"
)

// ScheduleShiftRepository 当日排班仓储
type ScheduleShiftRepository struct {
	db DB
}

// NewScheduleShiftRepository 创建排班仓储
func NewScheduleShiftRepository(db DB) *ScheduleShiftRepository {
	return &ScheduleShiftRepository{db: db}
}

// ListByDate 查询某日的排班
func (r *ScheduleShiftRepository) ListByDate(ctx context.Context, date string) ([]*model.ScheduleShift, error) {
	query := `
		SELECT id, member_id, shift_date, start_time, end_time, created_at, updated_at
		FROM schedule_shifts WHERE shift_date = $1 AND deleted_at IS NULL ORDER BY member_id
	`

	rows, err := r.db.QueryContext(ctx, query, date)
	if err != nil {
		return nil, fmt.Errorf("查询排班失败: %w", err)
	}
	defer rows.Close()

	var shifts []*model.ScheduleShift
	for rows.Next() {
		var s model.ScheduleShift
		if err := rows.Scan(&s.ID, &s.MemberID, &s.Date, &s.Window.Start, &s.Window.End, &s.CreatedAt, &s.UpdatedAt); err != nil {
			return nil, fmt.Errorf("扫描排班失败: %w", err)
		}
		shifts = append(shifts, &s)
	}

	return shifts, nil
}

// ReplaceForDate 替换某日的全部排班
func (r *ScheduleShiftRepository) ReplaceForDate(ctx context.Context, date string, shifts []*model.ScheduleShift) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM schedule_shifts WHERE shift_date = $1`, date); err != nil {
		return fmt.Errorf("清除排班失败: %w", err)
	}

	now := time.Now()
	query := `
		INSERT INTO schedule_shifts (id, member_id, shift_date, start_time, end_time, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`
	for _, s := range shifts {
		if s.ID == uuid.Nil {
			s.ID = uuid.New()
		}
		s.Date = date
		if _, err := r.db.ExecContext(ctx, query, s.ID, s.MemberID, s.Date, s.Window.Start, s.Window.End, now, now); err != nil {
			return fmt.Errorf("写入排班失败: %w", err)
		}
	}

	return nil
}

// AssignmentRepository 派工结果仓储
type AssignmentRepository struct {
	db DB
}

// NewAssignmentRepository 创建派工结果仓储
func NewAssignmentRepository(db DB) *AssignmentRepository {
	return &AssignmentRepository{db: db}
}

// ListByDate 查询某日的派工结果
func (r *AssignmentRepository) ListByDate(ctx context.Context, date string) ([]*model.Assignment, error) {
	query := assignmentSelect + ` WHERE assign_date = $1 AND deleted_at IS NULL ORDER BY member_id, start_time`
	return r.queryAssignments(ctx, query, date)
}

// ListLockedByDate 查询某日已锁定的派工结果
func (r *AssignmentRepository) ListLockedByDate(ctx context.Context, date string) ([]*model.Assignment, error) {
	query := assignmentSelect + ` WHERE assign_date = $1 AND locked = TRUE AND deleted_at IS NULL ORDER BY member_id, start_time`
	return r.queryAssignments(ctx, query, date)
}

// ListByDateRange 查询日期区间内的派工结果
func (r *AssignmentRepository) ListByDateRange(ctx context.Context, startDate, endDate string) ([]*model.Assignment, error) {
	query := assignmentSelect + ` WHERE assign_date >= $1 AND assign_date <= $2 AND deleted_at IS NULL ORDER BY assign_date, member_id`
	return r.queryAssignments(ctx, query, startDate, endDate)
}

// BulkUpsert 批量写入派工结果（按任务+员工+日期去重覆盖）
func (r *AssignmentRepository) BulkUpsert(ctx context.Context, assignments []*model.Assignment) error {
	if len(assignments) == 0 {
		return nil
	}

	now := time.Now()
	query := `
		INSERT INTO assignments (
			id, task_id, member_id, assign_date, start_time, end_time,
			duration_minutes, reason, locked, status, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		ON CONFLICT (task_id, member_id, assign_date) DO UPDATE SET
			start_time = EXCLUDED.start_time,
			end_time = EXCLUDED.end_time,
			duration_minutes = EXCLUDED.duration_minutes,
			reason = EXCLUDED.reason,
			locked = EXCLUDED.locked,
			status = EXCLUDED.status,
			updated_at = EXCLUDED.updated_at,
			deleted_at = NULL
	`

	for _, a := range assignments {
		if a.ID == uuid.Nil {
			a.ID = uuid.New()
		}
		_, err := r.db.ExecContext(ctx, query,
			a.ID, a.TaskID, a.MemberID, a.Date, a.StartTime, a.EndTime,
			a.Duration, a.Reason, a.Locked, a.Status, now, now,
		)
		if err != nil {
			return fmt.Errorf("写入派工结果失败: %w", err)
		}
	}

	return nil
}

// DeleteUnlockedByDate 删除某日未锁定的派工结果（重新生成前调用）
func (r *AssignmentRepository) DeleteUnlockedByDate(ctx context.Context, date string) error {
	query := `UPDATE assignments SET deleted_at = $2 WHERE assign_date = $1 AND locked = FALSE AND deleted_at IS NULL`
	if _, err := r.db.ExecContext(ctx, query, date, time.Now()); err != nil {
		return fmt.Errorf("清除派工结果失败: %w", err)
	}
	return nil
}

// SetLocked 设置派工结果的锁定状态
func (r *AssignmentRepository) SetLocked(ctx context.Context, ids []uuid.UUID, locked bool) error {
	if len(ids) == 0 {
		return nil
	}

	placeholders := make([]string, len(ids))
	args := make([]interface{}, 0, len(ids)+2)
	args = append(args, locked, time.Now())
	for i, id := range ids {
		placeholders[i] = fmt.Sprintf("$%d", i+3)
		args = append(args, id)
	}

	query := fmt.Sprintf(
		`UPDATE assignments SET locked = $1, updated_at = $2 WHERE id IN (%s) AND deleted_at IS NULL`,
		strings.Join(placeholders, ", "),
	)
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("更新锁定状态失败: %w", err)
	}

	return nil
}

const assignmentSelect = `
	SELECT id, task_id, member_id, assign_date, start_time, end_time,
		duration_minutes, reason, locked, status, created_at, updated_at
	FROM assignments`

func (r *AssignmentRepository) queryAssignments(ctx context.Context, query string, args ...interface{}) ([]*model.Assignment, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("查询派工结果失败: %w", err)
	}
	defer rows.Close()

	var assignments []*model.Assignment
	for rows.Next() {
		var a model.Assignment
		err := rows.Scan(
			&a.ID, &a.TaskID, &a.MemberID, &a.Date, &a.StartTime, &a.EndTime,
			&a.Duration, &a.Reason, &a.Locked, &a.Status, &a.CreatedAt, &a.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("扫描派工结果失败: %w", err)
		}
		assignments = append(assignments, &a)
	}

	return assignments, nil
}
