package domain

import "time"

// AvailabilityWindow 表示员工每周固定的空闲时间段，Weekday 取值 0~6（周日为 0）
type AvailabilityWindow struct {
	ID        int64     `json:"id"`
	UserID    int64     `json:"userID"`
	Weekday   int32     `json:"weekday"`
	StartTime string    `json:"startTime"`
	EndTime   string    `json:"endTime"`
	Location  string    `json:"location"`
	CreatedAt time.Time `json:"createdAt"`
	Version   int32     `json:"-"`
}
