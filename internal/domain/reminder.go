package domain

import "time"

type Reminder struct {
	ID        int64      `json:"id"`
	UserID    int64      `json:"userID"`
	TaskID    *int64     `json:"taskID"`
	Title     string     `json:"title"`
	RemindAt  time.Time  `json:"remindAt"`
	SentAt    *time.Time `json:"sentAt"`
	// 投递失败的次数和最后一次尝试的时间
	Attempts      int        `json:"attempts"`
	LastAttemptAt *time.Time `json:"lastAttemptAt"`
	CreatedAt     time.Time  `json:"createdAt"`
}

// DueReminder 是待发送的提醒，附带了收件人信息
type DueReminder struct {
	Reminder
	Email    string
	FullName string
}
