// Package repository 提供数据访问层
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

// MemberRepository 员工仓储
type MemberRepository struct {
	db DB
}

// NewMemberRepository 创建员工仓储
func NewMemberRepository(db DB) *MemberRepository {
	return &MemberRepository{db: db}
}

// Create 创建员工
func (r *MemberRepository) Create(ctx context.Context, m *model.Member) error {
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	now := time.Now()
	m.CreatedAt = now
	m.UpdatedAt = now

	tagsJSON, _ := json.Marshal(m.RoleTags)
	skillsJSON, _ := json.Marshal(m.SkillIDs)
	prefsJSON, _ := json.Marshal(m.ShiftClassPrefs)

	query := `
		INSERT INTO members (
			id, name, code, status, role_tags, skill_ids,
			fixed_commitment_minutes, max_daily_minutes, max_weekly_minutes,
			shift_class_prefs, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
	`

	_, err := r.db.ExecContext(ctx, query,
		m.ID, m.Name, m.Code, m.Status, tagsJSON, skillsJSON,
		m.FixedCommitmentMinutes, m.MaxDailyMinutes, m.MaxWeeklyMinutes,
		prefsJSON, m.CreatedAt, m.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("创建员工失败: %w", err)
	}

	return nil
}

// GetByID 根据ID获取员工
func (r *MemberRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Member, error) {
	query := memberSelect + ` WHERE id = $1 AND deleted_at IS NULL`
	return r.scanMember(r.db.QueryRowContext(ctx, query, id))
}

// GetByCode 根据工号获取员工
func (r *MemberRepository) GetByCode(ctx context.Context, code string) (*model.Member, error) {
	query := memberSelect + ` WHERE code = $1 AND deleted_at IS NULL`
	return r.scanMember(r.db.QueryRowContext(ctx, query, code))
}

// Update 更新员工
func (r *MemberRepository) Update(ctx context.Context, m *model.Member) error {
	m.UpdatedAt = time.Now()

	tagsJSON, _ := json.Marshal(m.RoleTags)
	skillsJSON, _ := json.Marshal(m.SkillIDs)
	prefsJSON, _ := json.Marshal(m.ShiftClassPrefs)

	query := `
		UPDATE members SET
			name = $2, code = $3, status = $4, role_tags = $5, skill_ids = $6,
			fixed_commitment_minutes = $7, max_daily_minutes = $8,
			max_weekly_minutes = $9, shift_class_prefs = $10, updated_at = $11
		WHERE id = $1 AND deleted_at IS NULL
	`

	result, err := r.db.ExecContext(ctx, query,
		m.ID, m.Name, m.Code, m.Status, tagsJSON, skillsJSON,
		m.FixedCommitmentMinutes, m.MaxDailyMinutes, m.MaxWeeklyMinutes,
		prefsJSON, m.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("更新员工失败: %w", err)
	}

	rows, _ := result.RowsAffected()
	if rows == 0 {
		return fmt.Errorf("员工不存在")
	}

	return nil
}

// Delete 软删除员工
func (r *MemberRepository) Delete(ctx context.Context, id uuid.UUID) error {
	query := `UPDATE members SET deleted_at = $2 WHERE id = $1 AND deleted_at IS NULL`

	result, err := r.db.ExecContext(ctx, query, id, time.Now())
	if err != nil {
		return fmt.Errorf("删除员工失败: %w", err)
	}

	rows, _ := result.RowsAffected()
	if rows == 0 {
		return fmt.Errorf("员工不存在")
	}

	return nil
}

// List 查询员工列表
func (r *MemberRepository) List(ctx context.Context, filter ListFilter) ([]*model.Member, int, error) {
	var conditions []string
	var args []interface{}
	argIndex := 1

	conditions = append(conditions, "deleted_at IS NULL")

	if filter.Status != "" {
		conditions = append(conditions, fmt.Sprintf("status = $%d", argIndex))
		args = append(args, filter.Status)
		argIndex++
	}

	if filter.Search != "" {
		conditions = append(conditions, fmt.Sprintf("(name ILIKE $%d OR code ILIKE $%d)", argIndex, argIndex))
		args = append(args, "%"+filter.Search+"%")
		argIndex++
	}

	whereClause := strings.Join(conditions, " AND ")

	countQuery := fmt.Sprintf("SELECT COUNT(*) FROM members WHERE %s", whereClause)
	var total int
	if err := r.db.QueryRowContext(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("查询总数失败: %w", err)
	}

	orderBy := filter.OrderBy
	if orderBy == "" {
		orderBy = "created_at"
	}
	orderDir := filter.OrderDir
	if orderDir == "" {
		orderDir = "desc"
	}

	query := fmt.Sprintf(`%s WHERE %s ORDER BY %s %s LIMIT $%d OFFSET $%d`,
		memberSelect, whereClause, orderBy, orderDir, argIndex, argIndex+1)
	args = append(args, filter.Limit, filter.Offset)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("查询列表失败: %w", err)
	}
	defer rows.Close()

	var members []*model.Member
	for rows.Next() {
		m, err := r.scanMember(rows)
		if err != nil {
			return nil, 0, err
		}
		members = append(members, m)
	}

	return members, total, nil
}

// ListActive 查询全部在职员工
func (r *MemberRepository) ListActive(ctx context.Context) ([]*model.Member, error) {
	query := memberSelect + ` WHERE status = 'active' AND deleted_at IS NULL ORDER BY code`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("查询在职员工失败: %w", err)
	}
	defer rows.Close()

	var members []*model.Member
	for rows.Next() {
		m, err := r.scanMember(rows)
		if err != nil {
			return nil, err
		}
		members = append(members, m)
	}

	return members, nil
}

const memberSelect = `
	SELECT id, name, code, status, role_tags, skill_ids,
		fixed_commitment_minutes, max_daily_minutes, max_weekly_minutes,
		shift_class_prefs, created_at, updated_at
	FROM members`

// scanMember 扫描员工行
func (r *MemberRepository) scanMember(s Scanner) (*model.Member, error) {
	var m model.Member
	var tagsJSON, skillsJSON, prefsJSON []byte

	err := s.Scan(
		&m.ID, &m.Name, &m.Code, &m.Status, &tagsJSON, &skillsJSON,
		&m.FixedCommitmentMinutes, &m.MaxDailyMinutes, &m.MaxWeeklyMinutes,
		&prefsJSON, &m.CreatedAt, &m.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("员工不存在")
	}
	if err != nil {
		return nil, fmt.Errorf("扫描员工失败: %w", err)
	}

	json.Unmarshal(tagsJSON, &m.RoleTags)
	json.Unmarshal(skillsJSON, &m.SkillIDs)
	json.Unmarshal(prefsJSON, &m.ShiftClassPrefs)

	return &m, nil
}

// SkillRepository 技能仓储
type SkillRepository struct {
	db DB
}

// NewSkillRepository 创建技能仓储
func NewSkillRepository(db DB) *SkillRepository {
	return &SkillRepository{db: db}
}

// Create 创建技能
func (r *SkillRepository) Create(ctx context.Context, s *model.Skill) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	now := time.Now()
	s.CreatedAt = now
	s.UpdatedAt = now

	query := `INSERT INTO skills (id, name, description, created_at, updated_at) VALUES ($1, $2, $3, $4, $5)`
	if _, err := r.db.ExecContext(ctx, query, s.ID, s.Name, s.Description, s.CreatedAt, s.UpdatedAt); err != nil {
		return fmt.Errorf("创建技能失败: %w", err)
	}
	return nil
}

// GetByID 根据ID获取技能
func (r *SkillRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Skill, error) {
	query := `SELECT id, name, description, created_at, updated_at FROM skills WHERE id = $1 AND deleted_at IS NULL`
	var s model.Skill
	err := r.db.QueryRowContext(ctx, query, id).Scan(&s.ID, &s.Name, &s.Description, &s.CreatedAt, &s.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("技能不存在")
	}
	if err != nil {
		return nil, fmt.Errorf("查询技能失败: %w", err)
	}
	return &s, nil
}

// Delete 软删除技能
func (r *SkillRepository) Delete(ctx context.Context, id uuid.UUID) error {
	query := `UPDATE skills SET deleted_at = $2 WHERE id = $1 AND deleted_at IS NULL`
	result, err := r.db.ExecContext(ctx, query, id, time.Now())
	if err != nil {
		return fmt.Errorf("删除技能失败: %w", err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return fmt.Errorf("技能不存在")
	}
	return nil
}

// ListAll 查询全部技能
func (r *SkillRepository) ListAll(ctx context.Context) ([]*model.Skill, error) {
	query := `SELECT id, name, description, created_at, updated_at FROM skills WHERE deleted_at IS NULL ORDER BY name`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("查询技能失败: %w", err)
	}
	defer rows.Close()

	var skills []*model.Skill
	for rows.Next() {
		var s model.Skill
		if err := rows.Scan(&s.ID, &s.Name, &s.Description, &s.CreatedAt, &s.UpdatedAt); err != nil {
			return nil, fmt.Errorf("扫描技能失败: %w", err)
		}
		skills = append(skills, &s)
	}

	return skills, nil
}

// AvailabilityRepository 员工可用时间仓储
type AvailabilityRepository struct {
	db DB
}

// NewAvailabilityRepository 创建可用时间仓储
func NewAvailabilityRepository(db DB) *AvailabilityRepository {
	return &AvailabilityRepository{db: db}
}

// ListAll 查询全部可用时间登记
func (r *AvailabilityRepository) ListAll(ctx context.Context) ([]*model.Availability, error) {
	query := `
		SELECT id, member_id, weekday, window_start, window_end, created_at, updated_at
		FROM availability WHERE deleted_at IS NULL ORDER BY member_id, weekday
	`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("查询可用时间失败: %w", err)
	}
	defer rows.Close()

	var entries []*model.Availability
	for rows.Next() {
		var av model.Availability
		if err := rows.Scan(&av.ID, &av.MemberID, &av.Weekday, &av.Window.Start, &av.Window.End, &av.CreatedAt, &av.UpdatedAt); err != nil {
			return nil, fmt.Errorf("扫描可用时间失败: %w", err)
		}
		entries = append(entries, &av)
	}

	return entries, nil
}

// ReplaceForMember 替换某员工的全部可用时间登记
func (r *AvailabilityRepository) ReplaceForMember(ctx context.Context, memberID uuid.UUID, entries []*model.Availability) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM availability WHERE member_id = $1`, memberID); err != nil {
		return fmt.Errorf("清除可用时间失败: %w", err)
	}

	now := time.Now()
	query := `
		INSERT INTO availability (id, member_id, weekday, window_start, window_end, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`
	for _, av := range entries {
		if av.ID == uuid.Nil {
			av.ID = uuid.New()
		}
		av.MemberID = memberID
		if _, err := r.db.ExecContext(ctx, query, av.ID, av.MemberID, av.Weekday, av.Window.Start, av.Window.End, now, now); err != nil {
			return fmt.Errorf("写入可用时间失败: %w", err)
		}
	}

	return nil
}
