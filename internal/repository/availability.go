package repository

import (
	"context"

	"github.com/taskee-dev/taskee/backend/internal/domain"
)

// TIME 类型统一格式化为 HH24:MI:SS，避免驱动返回带微秒的字符串
const windowColumns = `
	aw.id,
	aw.user_id,
	aw.weekday,
	to_char(aw.start_time, 'HH24:MI:SS'),
	to_char(aw.end_time, 'HH24:MI:SS'),
	aw.location,
	aw.created_at,
	aw.version
`

func scanWindow(row interface{ Scan(...any) error }, w *domain.AvailabilityWindow) error {
	dst := []any{&w.ID, &w.UserID, &w.Weekday, &w.StartTime, &w.EndTime, &w.Location, &w.CreatedAt, &w.Version}
	return row.Scan(dst...)
}

func (r *Repository) GetAvailabilityWindowsByUserID(ctx context.Context, userID int64) ([]*domain.AvailabilityWindow, error) {
	query := `
		SELECT ` + windowColumns + `
		FROM availability_windows aw
		WHERE aw.user_id = $1
		ORDER BY aw.weekday, aw.start_time
	`

	ctx, cancel := r.queryContext(ctx)
	defer cancel()

	rows, err := r.dbpool.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	windows := make([]*domain.AvailabilityWindow, 0)
	for rows.Next() {
		w := &domain.AvailabilityWindow{}
		if err := scanWindow(rows, w); err != nil {
			return nil, err
		}
		windows = append(windows, w)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return windows, nil
}

// GetAvailabilityWindowsByOrganizationAndWeekday 获取组织内所有员工在某一天的空闲时间
func (r *Repository) GetAvailabilityWindowsByOrganizationAndWeekday(ctx context.Context, organizationID int64, weekday int32) ([]*domain.AvailabilityWindow, error) {
	query := `
		SELECT ` + windowColumns + `
		FROM availability_windows aw
		JOIN users u ON u.id = aw.user_id
		WHERE u.organization_id = $1 AND aw.weekday = $2
	`

	ctx, cancel := r.queryContext(ctx)
	defer cancel()

	rows, err := r.dbpool.QueryContext(ctx, query, organizationID, weekday)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	windows := make([]*domain.AvailabilityWindow, 0)
	for rows.Next() {
		w := &domain.AvailabilityWindow{}
		if err := scanWindow(rows, w); err != nil {
			return nil, err
		}
		windows = append(windows, w)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return windows, nil
}

func (r *Repository) GetAvailabilityWindowByID(ctx context.Context, id int64) (*domain.AvailabilityWindow, error) {
	query := `SELECT ` + windowColumns + ` FROM availability_windows aw WHERE aw.id = $1`

	ctx, cancel := r.queryContext(ctx)
	defer cancel()

	w := &domain.AvailabilityWindow{}
	if err := scanWindow(r.dbpool.QueryRowContext(ctx, query, id), w); err != nil {
		return nil, err
	}

	return w, nil
}

func (r *Repository) CreateAvailabilityWindow(ctx context.Context, w *domain.AvailabilityWindow) error {
	query := `
		INSERT INTO availability_windows (user_id, weekday, start_time, end_time, location)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at, version
	`

	ctx, cancel := r.queryContext(ctx)
	defer cancel()

	args := []any{w.UserID, w.Weekday, w.StartTime, w.EndTime, w.Location}
	if err := r.dbpool.QueryRowContext(ctx, query, args...).Scan(&w.ID, &w.CreatedAt, &w.Version); err != nil {
		return err
	}

	return nil
}

func (r *Repository) DeleteAvailabilityWindow(ctx context.Context, id int64) error {
	query := `DELETE FROM availability_windows WHERE id = $1`

	ctx, cancel := r.queryContext(ctx)
	defer cancel()

	if _, err := r.dbpool.ExecContext(ctx, query, id); err != nil {
		return err
	}

	return nil
}

// ReplaceAvailabilityWindows 在一个事务中替换多个用户的空闲时间，任何一个用户失败时整体回滚
func (r *Repository) ReplaceAvailabilityWindows(ctx context.Context, windowsByUser map[int64][]*domain.AvailabilityWindow) error {
	ctx, cancel := r.transactionContext(ctx)
	defer cancel()

	tx, err := r.dbpool.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		_ = tx.Rollback()
	}()

	query := `
		INSERT INTO availability_windows (user_id, weekday, start_time, end_time, location)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at, version
	`
	for userID, windows := range windowsByUser {
		// 先把原先的记录删除再插入
		if _, err := tx.ExecContext(ctx, `DELETE FROM availability_windows WHERE user_id = $1`, userID); err != nil {
			return err
		}

		for _, w := range windows {
			w.UserID = userID
			args := []any{w.UserID, w.Weekday, w.StartTime, w.EndTime, w.Location}
			if err := tx.QueryRowContext(ctx, query, args...).Scan(&w.ID, &w.CreatedAt, &w.Version); err != nil {
				return err
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return err
	}

	return nil
}
