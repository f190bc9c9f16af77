package planner

import (
	"fmt"
	"sort"
	"strings"

	"github.com/taskee-dev/taskee/backend/internal/domain"
	"github.com/taskee-dev/taskee/backend/internal/utils"
)

// candidate 表示某个员工在请求当天可以覆盖整个请求时间段的一个空闲时间段
type candidate struct {
	user            *domain.User
	window          *domain.AvailabilityWindow
	start           int
	locationMatched bool
}

// Suggest 根据员工的每周空闲时间为请求的时间段给出候选员工，按当天已分配任务数升序排列
//
// 当偏好员工中没有人有空时，会退回到所有有空的员工，而不是返回空列表。
// 地点只是软偏好：地点匹配的候选在任务数相同时排在前面，但不匹配的候选仍然会被返回。
func Suggest(req *domain.PlanningRequest, employees []*domain.User, windows []*domain.AvailabilityWindow, sameDayTaskCounts map[int64]int) ([]*domain.PlanningSuggestion, error) {
	reqStart, err := utils.ParseClock(req.StartTime)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrInvalidWindow, err)
	}
	reqEnd, err := utils.ParseClock(req.EndTime)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrInvalidWindow, err)
	}
	if reqStart >= reqEnd {
		return nil, fmt.Errorf("%w: 开始时间必须早于结束时间", domain.ErrInvalidWindow)
	}

	weekday := int32(req.Date.Weekday())
	location := normalizeLocation(req.Location)

	usersMap := make(map[int64]*domain.User, len(employees))
	for _, u := range employees {
		usersMap[u.ID] = u
	}

	// 每个员工只保留一个最合适的空闲时间段
	candidates := make(map[int64]*candidate)
	for _, w := range windows {
		if w.Weekday != weekday {
			continue
		}
		user, ok := usersMap[w.UserID]
		if !ok {
			continue
		}

		start, err := utils.ParseClock(w.StartTime)
		if err != nil {
			continue
		}
		end, err := utils.ParseClock(w.EndTime)
		if err != nil {
			continue
		}
		// 必须完整覆盖请求的时间段，部分重叠不算
		if start > reqStart || end < reqEnd {
			continue
		}

		c := &candidate{
			user:            user,
			window:          w,
			start:           start,
			locationMatched: location != "" && normalizeLocation(w.Location) == location,
		}
		if prev, exists := candidates[user.ID]; !exists || betterWindow(c, prev) {
			candidates[user.ID] = c
		}
	}

	pool := make([]*candidate, 0, len(candidates))
	if len(req.PreferredUserIDs) > 0 {
		for _, id := range req.PreferredUserIDs {
			if c, ok := candidates[id]; ok {
				pool = append(pool, c)
				delete(candidates, id) // 防止重复的偏好 ID 产生重复的结果
			}
		}
		if len(pool) == 0 {
			// 偏好员工中没人有空时退回到全部候选
			pool = collect(candidates)
		}
	} else {
		pool = collect(candidates)
	}

	sort.SliceStable(pool, func(i, j int) bool {
		ci, cj := sameDayTaskCounts[pool[i].user.ID], sameDayTaskCounts[pool[j].user.ID]
		if ci != cj {
			return ci < cj
		}
		if pool[i].locationMatched != pool[j].locationMatched {
			return pool[i].locationMatched
		}
		return pool[i].user.ID < pool[j].user.ID
	})

	suggestions := make([]*domain.PlanningSuggestion, 0, len(pool))
	for _, c := range pool {
		suggestions = append(suggestions, &domain.PlanningSuggestion{
			UserID:                    c.user.ID,
			FullName:                  c.user.FullName,
			AvailableFrom:             c.window.StartTime,
			AvailableUntil:            c.window.EndTime,
			Location:                  c.window.Location,
			AssignedTasksThatDayCount: sameDayTaskCounts[c.user.ID],
		})
	}

	return suggestions, nil
}

func collect(candidates map[int64]*candidate) []*candidate {
	pool := make([]*candidate, 0, len(candidates))
	for _, c := range candidates {
		pool = append(pool, c)
	}
	return pool
}

// betterWindow 判断同一个员工的两个空闲时间段中 a 是否优于 b：地点匹配优先，其次开始时间更早，最后 ID 更小
func betterWindow(a, b *candidate) bool {
	if a.locationMatched != b.locationMatched {
		return a.locationMatched
	}
	if a.start != b.start {
		return a.start < b.start
	}
	return a.window.ID < b.window.ID
}

func normalizeLocation(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
