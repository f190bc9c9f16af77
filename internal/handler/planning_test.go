package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/taskee-dev/taskee/backend/internal/domain"
)

type stubPlanningStore struct {
	users   []*domain.User
	windows []*domain.AvailabilityWindow
	counts  map[int64]int

	orgIDs   []int64
	weekdays []int32
	dates    []time.Time
	err      error
}

func (s *stubPlanningStore) GetActiveUsersByOrganization(_ context.Context, organizationID int64) ([]*domain.User, error) {
	s.orgIDs = append(s.orgIDs, organizationID)
	return s.users, s.err
}

func (s *stubPlanningStore) GetAvailabilityWindowsByOrganizationAndWeekday(_ context.Context, organizationID int64, weekday int32) ([]*domain.AvailabilityWindow, error) {
	s.weekdays = append(s.weekdays, weekday)
	res := []*domain.AvailabilityWindow{}
	for _, w := range s.windows {
		if w.Weekday == weekday {
			res = append(res, w)
		}
	}
	return res, nil
}

func (s *stubPlanningStore) CountTasksByAssigneeOnDate(_ context.Context, organizationID int64, date time.Time) (map[int64]int, error) {
	s.dates = append(s.dates, date)
	return s.counts, nil
}

func postSuggestions(t *testing.T, h *Handler, body string) *httptest.ResponseRecorder {
	t.Helper()
	manager := &domain.Actor{UserID: 1, Role: domain.RoleManager, OrganizationID: 7}
	req := withActor(httptest.NewRequest(http.MethodPost, "/planning/suggestions", strings.NewReader(body)), manager)
	rec := httptest.NewRecorder()
	h.SuggestEmployees(rec, req)
	return rec
}

func TestSuggestEmployees_UsesWeekdayAndTaskCounts(t *testing.T) {
	store := &stubPlanningStore{
		users: []*domain.User{
			{ID: 2, OrganizationID: 7, FullName: "Anna de Vries", IsActive: true},
			{ID: 3, OrganizationID: 7, FullName: "Bram Jansen", IsActive: true},
		},
		windows: []*domain.AvailabilityWindow{
			{ID: 10, UserID: 2, Weekday: 1, StartTime: "08:00", EndTime: "17:00", Location: "Utrecht"},
			{ID: 11, UserID: 3, Weekday: 1, StartTime: "09:00", EndTime: "12:00", Location: "Utrecht"},
			// 周二的时间段不应该被使用
			{ID: 12, UserID: 3, Weekday: 2, StartTime: "00:00", EndTime: "23:59"},
		},
		counts: map[int64]int{2: 3, 3: 1},
	}
	h := newTestHandler(t, 5)
	h.planning = store

	// 2025-04-07 是周一
	rec := postSuggestions(t, h, `{"date":"2025-04-07","startTime":"09:00","endTime":"11:00"}`)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Success bool                         `json:"success"`
		Message string                       `json:"message"`
		Data    []*domain.PlanningSuggestion `json:"data"`
	}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	require.True(t, resp.Success, resp.Message)

	assert.Equal(t, []int64{7}, store.orgIDs)
	assert.Equal(t, []int32{1}, store.weekdays)
	require.Len(t, store.dates, 1)
	assert.Equal(t, "2025-04-07", store.dates[0].Format(time.DateOnly))

	// 当天任务少的员工排在前面
	require.Len(t, resp.Data, 2)
	assert.Equal(t, int64(3), resp.Data[0].UserID)
	assert.Equal(t, 1, resp.Data[0].AssignedTasksThatDayCount)
	assert.Equal(t, "09:00", resp.Data[0].AvailableFrom)
	assert.Equal(t, int64(2), resp.Data[1].UserID)
	assert.Equal(t, 3, resp.Data[1].AssignedTasksThatDayCount)
}

func TestSuggestEmployees_InvalidWindow(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"start after end", `{"date":"2025-04-07","startTime":"12:00","endTime":"09:00"}`},
		{"start equals end", `{"date":"2025-04-07","startTime":"09:00","endTime":"09:00"}`},
		{"unparseable clock", `{"date":"2025-04-07","startTime":"9 uur","endTime":"11:00"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newTestHandler(t, 5)
			h.planning = &stubPlanningStore{}

			rec := postSuggestions(t, h, tt.body)
			require.Equal(t, http.StatusOK, rec.Code)
			resp := decodeResponse(t, rec)
			assert.False(t, resp.Success)
			assert.Equal(t, "时间段无效，开始时间必须早于结束时间", resp.Message)
		})
	}
}

func TestSuggestEmployees_StoreFailure(t *testing.T) {
	h := newTestHandler(t, 5)
	h.planning = &stubPlanningStore{err: errors.New("connection refused")}

	rec := postSuggestions(t, h, `{"date":"2025-04-07","startTime":"09:00","endTime":"11:00"}`)
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	resp := decodeResponse(t, rec)
	assert.False(t, resp.Success)
}
