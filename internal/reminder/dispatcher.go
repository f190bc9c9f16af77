package reminder

import (
	"context"
	"log/slog"
	"time"

	"github.com/taskee-dev/taskee/backend/internal/domain"
)

type Store interface {
	GetDueReminders(ctx context.Context, now time.Time, limit int) ([]*domain.DueReminder, error)
	MarkReminderSent(ctx context.Context, id int64, sentAt time.Time) error
	// MarkReminderFailed 记录一次失败的投递，GetDueReminders 会把它排到未尝试过的提醒之后
	MarkReminderFailed(ctx context.Context, id int64, attemptedAt time.Time) error
}

type Publisher interface {
	Publish(ctx context.Context, msg domain.MailMessage) error
}

// Dispatcher 定期把到期的提醒投递到邮件队列
type Dispatcher struct {
	store     Store
	publisher Publisher
	interval  time.Duration
	batchSize int
	logger    *slog.Logger
	now       func() time.Time
}

func NewDispatcher(store Store, publisher Publisher, interval time.Duration, batchSize int, logger *slog.Logger) *Dispatcher {
	return &Dispatcher{
		store:     store,
		publisher: publisher,
		interval:  interval,
		batchSize: batchSize,
		logger:    logger,
		now:       time.Now,
	}
}

// Run 阻塞运行直到 ctx 被取消
func (d *Dispatcher) Run(ctx context.Context) {
	ticker := time.NewTicker(d.interval)
	defer ticker.Stop()

	for {
		if _, err := d.DispatchDue(ctx); err != nil {
			d.logger.Error("提醒投递失败", slog.String("error", err.Error()))
		}

		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

// DispatchDue 投递一批到期的提醒并返回成功投递的数量
// 投递失败的提醒不会被标记为已发送，会在下一轮重试，但排在其他提醒之后
func (d *Dispatcher) DispatchDue(ctx context.Context) (int, error) {
	now := d.now()

	reminders, err := d.store.GetDueReminders(ctx, now, d.batchSize)
	if err != nil {
		return 0, err
	}

	sent := 0
	for _, r := range reminders {
		msg := domain.MailMessage{
			Type: domain.MailTypeReminder,
			To:   r.Email,
			Data: domain.ReminderMailData{
				FullName: r.FullName,
				Title:    r.Title,
				RemindAt: r.RemindAt,
			},
		}

		if err := d.publisher.Publish(ctx, msg); err != nil {
			d.logger.Error("无法投递提醒", slog.Int64("reminderID", r.ID), slog.Int("attempts", r.Attempts+1), slog.String("error", err.Error()))
			if err := d.store.MarkReminderFailed(ctx, r.ID, now); err != nil {
				d.logger.Error("无法记录提醒投递失败", slog.Int64("reminderID", r.ID), slog.String("error", err.Error()))
			}
			continue
		}

		if err := d.store.MarkReminderSent(ctx, r.ID, now); err != nil {
			// 邮件已经入队，这里失败只会导致下一轮重复发送
			d.logger.Error("无法标记提醒为已发送", slog.Int64("reminderID", r.ID), slog.String("error", err.Error()))
			continue
		}
		sent++
	}

	if sent > 0 {
		d.logger.Info("已投递提醒", slog.Int("count", sent))
	}

	return sent, nil
}
