package handler

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/taskee-dev/taskee/backend/internal/domain"
)

func TestCreateTask_EmployeeCannotAssignOthers(t *testing.T) {
	h := newTestHandler(t, 5)
	employee := &domain.Actor{UserID: 3, Role: domain.RoleEmployee, OrganizationID: 7}

	body := `{"title":"Voorraad tellen","assigneeID":4}`
	req := withActor(httptest.NewRequest(http.MethodPost, "/tasks", strings.NewReader(body)), employee)
	rec := httptest.NewRecorder()
	h.CreateTask(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	resp := decodeResponse(t, rec)
	assert.False(t, resp.Success)
	assert.Equal(t, "权限不足", resp.Message)
}

func TestUpdateTask_EmployeeLimitedToOwnStatus(t *testing.T) {
	h := newTestHandler(t, 5)
	employee := &domain.Actor{UserID: 3, Role: domain.RoleEmployee, OrganizationID: 7}
	other := int64(4)
	own := int64(3)

	tests := []struct {
		name string
		task *domain.Task
		body string
	}{
		{"status of someone else's task", &domain.Task{ID: 1, OrganizationID: 7, AssigneeID: &other}, `{"status":"done"}`},
		{"title of own task", &domain.Task{ID: 2, OrganizationID: 7, AssigneeID: &own}, `{"title":"nieuw"}`},
		{"reassign own task", &domain.Task{ID: 3, OrganizationID: 7, AssigneeID: &own}, `{"assigneeID":4}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := withActor(httptest.NewRequest(http.MethodPatch, "/tasks/1", strings.NewReader(tt.body)), employee)
			req = req.WithContext(context.WithValue(req.Context(), TaskCtx, tt.task))
			rec := httptest.NewRecorder()
			h.UpdateTask(rec, req)

			resp := decodeResponse(t, rec)
			assert.False(t, resp.Success)
			assert.Equal(t, "权限不足", resp.Message)
		})
	}
}
