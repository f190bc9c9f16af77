package repository

import (
	"context"
	"time"

	"github.com/taskee-dev/taskee/backend/internal/domain"
)

func (r *Repository) CreateReminder(ctx context.Context, reminder *domain.Reminder) error {
	query := `
		INSERT INTO reminders (user_id, task_id, title, remind_at)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at
	`

	ctx, cancel := r.queryContext(ctx)
	defer cancel()

	args := []any{reminder.UserID, reminder.TaskID, reminder.Title, reminder.RemindAt}
	if err := r.dbpool.QueryRowContext(ctx, query, args...).Scan(&reminder.ID, &reminder.CreatedAt); err != nil {
		return err
	}

	return nil
}

func (r *Repository) GetRemindersByUserID(ctx context.Context, userID int64) ([]*domain.Reminder, error) {
	query := `
		SELECT id, user_id, task_id, title, remind_at, sent_at, attempts, last_attempt_at, created_at
		FROM reminders
		WHERE user_id = $1
		ORDER BY remind_at
	`

	ctx, cancel := r.queryContext(ctx)
	defer cancel()

	rows, err := r.dbpool.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	reminders := make([]*domain.Reminder, 0)
	for rows.Next() {
		rm := &domain.Reminder{}
		if err := rows.Scan(&rm.ID, &rm.UserID, &rm.TaskID, &rm.Title, &rm.RemindAt, &rm.SentAt, &rm.Attempts, &rm.LastAttemptAt, &rm.CreatedAt); err != nil {
			return nil, err
		}
		reminders = append(reminders, rm)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return reminders, nil
}

// DeleteReminder 只删除属于该用户的提醒，返回是否删除成功
func (r *Repository) DeleteReminder(ctx context.Context, id int64, userID int64) (bool, error) {
	ctx, cancel := r.queryContext(ctx)
	defer cancel()

	res, err := r.dbpool.ExecContext(ctx, `DELETE FROM reminders WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		return false, err
	}

	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}

	return n > 0, nil
}

// GetDueReminders 优先返回从未尝试过的提醒，反复失败的提醒排在最后，避免占满整批
func (r *Repository) GetDueReminders(ctx context.Context, now time.Time, limit int) ([]*domain.DueReminder, error) {
	query := `
		SELECT r.id, r.user_id, r.task_id, r.title, r.remind_at, r.attempts, r.last_attempt_at, r.created_at, u.email, u.full_name
		FROM reminders r
		JOIN users u ON u.id = r.user_id
		WHERE r.sent_at IS NULL AND r.remind_at <= $1 AND u.is_active
		ORDER BY r.last_attempt_at NULLS FIRST, r.remind_at
		LIMIT $2
	`

	ctx, cancel := r.queryContext(ctx)
	defer cancel()

	rows, err := r.dbpool.QueryContext(ctx, query, now, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	reminders := make([]*domain.DueReminder, 0)
	for rows.Next() {
		rm := &domain.DueReminder{}
		dst := []any{&rm.ID, &rm.UserID, &rm.TaskID, &rm.Title, &rm.RemindAt, &rm.Attempts, &rm.LastAttemptAt, &rm.CreatedAt, &rm.Email, &rm.FullName}
		if err := rows.Scan(dst...); err != nil {
			return nil, err
		}
		reminders = append(reminders, rm)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return reminders, nil
}

func (r *Repository) MarkReminderSent(ctx context.Context, id int64, sentAt time.Time) error {
	ctx, cancel := r.queryContext(ctx)
	defer cancel()

	if _, err := r.dbpool.ExecContext(ctx, `UPDATE reminders SET sent_at = $1 WHERE id = $2`, sentAt, id); err != nil {
		return err
	}

	return nil
}

func (r *Repository) MarkReminderFailed(ctx context.Context, id int64, attemptedAt time.Time) error {
	ctx, cancel := r.queryContext(ctx)
	defer cancel()

	query := `UPDATE reminders SET attempts = attempts + 1, last_attempt_at = $1 WHERE id = $2`
	if _, err := r.dbpool.ExecContext(ctx, query, attemptedAt, id); err != nil {
		return err
	}

	return nil
}
