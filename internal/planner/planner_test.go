package planner

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/taskee-dev/taskee/backend/internal/domain"
)

// 2025-01-06 是周一
var monday = time.Date(2025, 1, 6, 0, 0, 0, 0, time.UTC)

func users(ids ...int64) []*domain.User {
	res := make([]*domain.User, 0, len(ids))
	for _, id := range ids {
		res = append(res, &domain.User{ID: id, FullName: "user", Role: domain.RoleEmployee, IsActive: true})
	}
	return res
}

func window(id, userID int64, weekday int32, start, end, location string) *domain.AvailabilityWindow {
	return &domain.AvailabilityWindow{ID: id, UserID: userID, Weekday: weekday, StartTime: start, EndTime: end, Location: location}
}

func userIDs(suggestions []*domain.PlanningSuggestion) []int64 {
	ids := make([]int64, 0, len(suggestions))
	for _, s := range suggestions {
		ids = append(ids, s.UserID)
	}
	return ids
}

func TestSuggest_FullContainmentOnly(t *testing.T) {
	windows := []*domain.AvailabilityWindow{
		window(1, 1, 1, "09:00:00", "17:00:00", "Clinic North"),
		window(2, 2, 1, "10:00:00", "12:00:00", "Clinic South"),
	}
	req := &domain.PlanningRequest{Date: monday, StartTime: "09:00", EndTime: "12:00"}

	got, err := Suggest(req, users(1, 2), windows, nil)
	require.NoError(t, err)
	assert.Equal(t, []int64{1}, userIDs(got))
	assert.Equal(t, "09:00:00", got[0].AvailableFrom)
	assert.Equal(t, "17:00:00", got[0].AvailableUntil)
	assert.Equal(t, "Clinic North", got[0].Location)
	assert.Equal(t, 0, got[0].AssignedTasksThatDayCount)

	// 地点只是软偏好，B 依然因为时间不覆盖而被排除
	req.Location = "Clinic South"
	got, err = Suggest(req, users(1, 2), windows, nil)
	require.NoError(t, err)
	assert.Equal(t, []int64{1}, userIDs(got))
}

func TestSuggest_BoundariesAreInclusiveOfExactFit(t *testing.T) {
	windows := []*domain.AvailabilityWindow{
		window(1, 1, 1, "09:00:00", "12:00:00", ""),
		window(2, 2, 1, "09:00:01", "12:00:00", ""),
		window(3, 3, 1, "09:00:00", "11:59:59", ""),
	}
	req := &domain.PlanningRequest{Date: monday, StartTime: "09:00:00", EndTime: "12:00:00"}

	got, err := Suggest(req, users(1, 2, 3), windows, nil)
	require.NoError(t, err)
	assert.Equal(t, []int64{1}, userIDs(got))
}

func TestSuggest_WrongWeekdayIsIgnored(t *testing.T) {
	windows := []*domain.AvailabilityWindow{
		window(1, 1, 2, "08:00:00", "18:00:00", ""),
	}
	req := &domain.PlanningRequest{Date: monday, StartTime: "09:00", EndTime: "10:00"}

	got, err := Suggest(req, users(1), windows, nil)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestSuggest_InvalidWindow(t *testing.T) {
	cases := []struct {
		name       string
		start, end string
	}{
		{"equal", "10:00", "10:00"},
		{"reversed", "12:00", "09:00"},
		{"garbage", "noon", "13:00"},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			req := &domain.PlanningRequest{Date: monday, StartTime: c.start, EndTime: c.end}
			_, err := Suggest(req, users(1), nil, nil)
			assert.ErrorIs(t, err, domain.ErrInvalidWindow)
		})
	}
}

func TestSuggest_SortedByTaskCountThenID(t *testing.T) {
	windows := []*domain.AvailabilityWindow{
		window(1, 4, 1, "08:00:00", "18:00:00", ""),
		window(2, 3, 1, "08:00:00", "18:00:00", ""),
		window(3, 2, 1, "08:00:00", "18:00:00", ""),
		window(4, 1, 1, "08:00:00", "18:00:00", ""),
	}
	counts := map[int64]int{1: 2, 2: 0, 3: 1, 4: 0}
	req := &domain.PlanningRequest{Date: monday, StartTime: "09:00", EndTime: "10:00"}

	got, err := Suggest(req, users(1, 2, 3, 4), windows, counts)
	require.NoError(t, err)
	assert.Equal(t, []int64{2, 4, 3, 1}, userIDs(got))

	for i := 1; i < len(got); i++ {
		assert.LessOrEqual(t, got[i-1].AssignedTasksThatDayCount, got[i].AssignedTasksThatDayCount)
	}
}

func TestSuggest_Deterministic(t *testing.T) {
	windows := []*domain.AvailabilityWindow{}
	for id := int64(1); id <= 20; id++ {
		windows = append(windows, window(id, id, 1, "08:00:00", "18:00:00", ""))
	}
	counts := map[int64]int{3: 1, 7: 1, 11: 2}
	req := &domain.PlanningRequest{Date: monday, StartTime: "09:00", EndTime: "10:00"}
	employees := users(1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11, 12, 13, 14, 15, 16, 17, 18, 19, 20)

	first, err := Suggest(req, employees, windows, counts)
	require.NoError(t, err)
	for i := 0; i < 10; i++ {
		again, err := Suggest(req, employees, windows, counts)
		require.NoError(t, err)
		assert.Equal(t, userIDs(first), userIDs(again))
	}
}

func TestSuggest_PreferredEmployees(t *testing.T) {
	windows := []*domain.AvailabilityWindow{
		window(1, 1, 1, "08:00:00", "18:00:00", ""),
		window(2, 2, 1, "08:00:00", "18:00:00", ""),
		window(3, 3, 1, "10:00:00", "11:00:00", ""),
	}
	req := &domain.PlanningRequest{Date: monday, StartTime: "09:00", EndTime: "10:00", PreferredUserIDs: []int64{2, 2}}

	got, err := Suggest(req, users(1, 2, 3), windows, nil)
	require.NoError(t, err)
	assert.Equal(t, []int64{2}, userIDs(got))

	// 偏好的员工都没空时退回到全部候选
	req.PreferredUserIDs = []int64{3, 99}
	got, err = Suggest(req, users(1, 2, 3), windows, nil)
	require.NoError(t, err)
	assert.Equal(t, []int64{1, 2}, userIDs(got))
}

func TestSuggest_LocationIsSoftPreference(t *testing.T) {
	windows := []*domain.AvailabilityWindow{
		window(1, 1, 1, "08:00:00", "18:00:00", "Clinic North"),
		window(2, 2, 1, "08:00:00", "18:00:00", "clinic south "),
		window(3, 3, 1, "08:00:00", "18:00:00", "Clinic South"),
	}
	counts := map[int64]int{3: 1}
	req := &domain.PlanningRequest{Date: monday, StartTime: "09:00", EndTime: "10:00", Location: "CLINIC SOUTH"}

	got, err := Suggest(req, users(1, 2, 3), windows, counts)
	require.NoError(t, err)
	// 任务数优先，其次地点匹配，最后 ID
	assert.Equal(t, []int64{2, 1, 3}, userIDs(got))
}

func TestSuggest_OneSuggestionPerEmployee(t *testing.T) {
	windows := []*domain.AvailabilityWindow{
		window(1, 1, 1, "08:00:00", "18:00:00", "Head Office"),
		window(2, 1, 1, "07:00:00", "12:00:00", "Clinic North"),
		window(3, 1, 1, "06:00:00", "11:00:00", "Head Office"),
	}
	req := &domain.PlanningRequest{Date: monday, StartTime: "09:00", EndTime: "10:00", Location: "clinic north"}

	got, err := Suggest(req, users(1), windows, nil)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "Clinic North", got[0].Location)

	// 没有地点偏好时选最早开始的时间段
	req.Location = ""
	got, err = Suggest(req, users(1), windows, nil)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "06:00:00", got[0].AvailableFrom)
}

func TestSuggest_UnknownEmployeesAreSkipped(t *testing.T) {
	windows := []*domain.AvailabilityWindow{
		window(1, 1, 1, "08:00:00", "18:00:00", ""),
		window(2, 42, 1, "08:00:00", "18:00:00", ""),
	}
	req := &domain.PlanningRequest{Date: monday, StartTime: "09:00", EndTime: "10:00"}

	got, err := Suggest(req, users(1), windows, map[int64]int{42: 0})
	require.NoError(t, err)
	assert.Equal(t, []int64{1}, userIDs(got))
}
