package utils

import (
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"github.com/taskee-dev/taskee/backend/internal/domain"
)

var clockLayouts = []string{"15:04:05", "15:04"}

// ParseClock 把 "HH:MM" 或 "HH:MM:SS" 解析为当天零点起的秒数
func ParseClock(s string) (int, error) {
	for _, layout := range clockLayouts {
		t, err := time.Parse(layout, s)
		if err == nil {
			return t.Hour()*3600 + t.Minute()*60 + t.Second(), nil
		}
	}
	return 0, fmt.Errorf("时间 %q 格式错误", s)
}

// FormatClock 统一输出 "HH:MM:SS"，与数据库中 TIME 类型的文本格式一致
func FormatClock(seconds int) string {
	return fmt.Sprintf("%02d:%02d:%02d", seconds/3600, seconds%3600/60, seconds%60)
}

func ValidateWindowTime(w *domain.AvailabilityWindow) error {
	if w.Weekday < 0 || w.Weekday > 6 {
		return fmt.Errorf("星期 %d 不合法", w.Weekday)
	}

	start, err := ParseClock(w.StartTime)
	if err != nil {
		return errors.New("开始时间格式错误")
	}
	end, err := ParseClock(w.EndTime)
	if err != nil {
		return errors.New("结束时间格式错误")
	}
	if start >= end {
		return errors.New("结束时间必须晚于开始时间")
	}

	w.StartTime = FormatClock(start)
	w.EndTime = FormatClock(end)
	return nil
}

func ValidateEntryQuantity(entry *domain.ApprovableEntry) error {
	if entry.Quantity().LessThanOrEqual(decimal.Zero) {
		switch entry.Kind {
		case domain.EntryKindTime:
			return errors.New("工时必须大于 0")
		case domain.EntryKindTrip:
			return errors.New("出行距离必须大于 0")
		default:
			return errors.New("报销金额必须大于 0")
		}
	}
	return nil
}
