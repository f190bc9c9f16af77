package approval

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/taskee-dev/taskee/backend/internal/domain"
)

type fakeStore struct {
	entries map[domain.EntryKind]map[int64]*domain.ApprovableEntry
	nextID  int64
	updates int
}

func newFakeStore() *fakeStore {
	return &fakeStore{entries: map[domain.EntryKind]map[int64]*domain.ApprovableEntry{}}
}

func (f *fakeStore) CreateEntry(_ context.Context, entry *domain.ApprovableEntry) error {
	f.nextID++
	entry.ID = f.nextID
	if f.entries[entry.Kind] == nil {
		f.entries[entry.Kind] = map[int64]*domain.ApprovableEntry{}
	}
	copied := *entry
	f.entries[entry.Kind][entry.ID] = &copied
	return nil
}

func (f *fakeStore) GetEntry(_ context.Context, kind domain.EntryKind, id int64) (*domain.ApprovableEntry, error) {
	e, ok := f.entries[kind][id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	copied := *e
	return &copied, nil
}

func (f *fakeStore) ListEntries(_ context.Context, filter domain.EntryFilter) ([]*domain.ApprovableEntry, error) {
	res := []*domain.ApprovableEntry{}
	for id := int64(1); id <= f.nextID; id++ {
		e, ok := f.entries[filter.Kind][id]
		if !ok || e.OrganizationID != filter.OrganizationID {
			continue
		}
		if filter.UserID != nil && e.UserID != *filter.UserID {
			continue
		}
		if filter.Approved != nil && e.Approved != *filter.Approved {
			continue
		}
		res = append(res, e)
	}
	return res, nil
}

func (f *fakeStore) UpdateEntryApproval(_ context.Context, entry *domain.ApprovableEntry) error {
	e, ok := f.entries[entry.Kind][entry.ID]
	if !ok {
		return sql.ErrNoRows
	}
	f.updates++
	e.Approved = entry.Approved
	e.UpdatedAt = entry.UpdatedAt
	return nil
}

func (f *fakeStore) DeleteEntry(_ context.Context, kind domain.EntryKind, id int64) error {
	if _, ok := f.entries[kind][id]; !ok {
		return sql.ErrNoRows
	}
	delete(f.entries[kind], id)
	return nil
}

var (
	manager      = &domain.Actor{UserID: 1, Role: domain.RoleManager, OrganizationID: 10}
	employee     = &domain.Actor{UserID: 2, Role: domain.RoleEmployee, OrganizationID: 10}
	colleague    = &domain.Actor{UserID: 3, Role: domain.RoleEmployee, OrganizationID: 10}
	otherManager = &domain.Actor{UserID: 9, Role: domain.RoleManager, OrganizationID: 20}
)

func newService(t *testing.T) (*Service, *fakeStore) {
	t.Helper()
	store := newFakeStore()
	svc := New(store)
	svc.now = func() time.Time { return time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC) }
	return svc, store
}

func submitTime(t *testing.T, svc *Service, actor *domain.Actor, minutes int64) *domain.ApprovableEntry {
	t.Helper()
	entry := &domain.ApprovableEntry{Kind: domain.EntryKindTime, Date: time.Date(2025, 2, 28, 0, 0, 0, 0, time.UTC)}
	entry.SetQuantity(decimal.NewFromInt(minutes))
	require.NoError(t, svc.Submit(context.Background(), actor, entry))
	return entry
}

func TestSubmit_CreatesPendingEntryOwnedByActor(t *testing.T) {
	svc, store := newService(t)
	entry := &domain.ApprovableEntry{Kind: domain.EntryKindTime, UserID: 99, OrganizationID: 99, Approved: true}
	entry.SetQuantity(decimal.NewFromInt(60))

	require.NoError(t, svc.Submit(context.Background(), employee, entry))

	stored := store.entries[domain.EntryKindTime][entry.ID]
	assert.Equal(t, employee.UserID, stored.UserID)
	assert.Equal(t, employee.OrganizationID, stored.OrganizationID)
	assert.False(t, stored.Approved)
}

func TestSetApproval_ApproveAndRevert(t *testing.T) {
	svc, store := newService(t)
	entry := submitTime(t, svc, employee, 90)

	approved, err := svc.SetApproval(context.Background(), manager, domain.EntryKindTime, entry.ID, true)
	require.NoError(t, err)
	assert.True(t, approved.Approved)
	assert.Equal(t, svc.now(), approved.UpdatedAt)
	assert.True(t, store.entries[domain.EntryKindTime][entry.ID].Approved)

	reverted, err := svc.SetApproval(context.Background(), manager, domain.EntryKindTime, entry.ID, false)
	require.NoError(t, err)
	assert.False(t, reverted.Approved)
	assert.Equal(t, 2, store.updates)
}

func TestSetApproval_Idempotent(t *testing.T) {
	svc, store := newService(t)
	entry := submitTime(t, svc, employee, 30)

	first, err := svc.SetApproval(context.Background(), manager, domain.EntryKindTime, entry.ID, true)
	require.NoError(t, err)
	second, err := svc.SetApproval(context.Background(), manager, domain.EntryKindTime, entry.ID, true)
	require.NoError(t, err)

	assert.Equal(t, first.Approved, second.Approved)
	assert.Equal(t, 1, store.updates)

	// 对未审批的记录再次设置为未审批同样是空操作
	other := submitTime(t, svc, employee, 30)
	_, err = svc.SetApproval(context.Background(), manager, domain.EntryKindTime, other.ID, false)
	require.NoError(t, err)
	assert.Equal(t, 1, store.updates)
}

func TestSetApproval_NonManagerAlwaysForbidden(t *testing.T) {
	svc, _ := newService(t)
	entry := submitTime(t, svc, employee, 30)

	for _, approve := range []bool{true, false} {
		_, err := svc.SetApproval(context.Background(), employee, domain.EntryKindTime, entry.ID, approve)
		assert.ErrorIs(t, err, domain.ErrForbidden)
	}

	// 即使记录不存在也是 Forbidden，而不是 NotFound
	_, err := svc.SetApproval(context.Background(), colleague, domain.EntryKindTime, 12345, true)
	assert.ErrorIs(t, err, domain.ErrForbidden)
}

func TestSetApproval_NotFound(t *testing.T) {
	svc, _ := newService(t)
	entry := submitTime(t, svc, employee, 30)

	_, err := svc.SetApproval(context.Background(), manager, domain.EntryKindTime, 12345, true)
	assert.ErrorIs(t, err, domain.ErrNotFound)

	// 其他组织的管理员看不到这条记录
	_, err = svc.SetApproval(context.Background(), otherManager, domain.EntryKindTime, entry.ID, true)
	assert.ErrorIs(t, err, domain.ErrNotFound)

	// 种类不同也视为不存在
	_, err = svc.SetApproval(context.Background(), manager, domain.EntryKindExpense, entry.ID, true)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestList_ScopedByRole(t *testing.T) {
	svc, _ := newService(t)
	mine := submitTime(t, svc, employee, 30)
	theirs := submitTime(t, svc, colleague, 45)
	_, err := svc.SetApproval(context.Background(), manager, domain.EntryKindTime, theirs.ID, true)
	require.NoError(t, err)

	// 员工即使指定了别人的 ID 也只能看到自己的记录
	other := colleague.UserID
	entries, err := svc.List(context.Background(), employee, domain.EntryKindTime, &other, nil)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, mine.ID, entries[0].ID)

	entries, err = svc.List(context.Background(), manager, domain.EntryKindTime, nil, nil)
	require.NoError(t, err)
	assert.Len(t, entries, 2)

	approved := true
	entries, err = svc.List(context.Background(), manager, domain.EntryKindTime, nil, &approved)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, theirs.ID, entries[0].ID)

	entries, err = svc.List(context.Background(), otherManager, domain.EntryKindTime, nil, nil)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestTotals(t *testing.T) {
	svc, _ := newService(t)
	submitTime(t, svc, employee, 30)
	approvedEntry := submitTime(t, svc, employee, 45)
	_, err := svc.SetApproval(context.Background(), manager, domain.EntryKindTime, approvedEntry.ID, true)
	require.NoError(t, err)

	totals, err := svc.Totals(context.Background(), employee, domain.EntryKindTime, nil, nil)
	require.NoError(t, err)
	assert.Equal(t, 2, totals.Count)
	assert.Equal(t, 1, totals.ApprovedCount)
	assert.True(t, totals.Total.Equal(decimal.NewFromInt(75)))
	assert.True(t, totals.ApprovedTotal.Equal(decimal.NewFromInt(45)))
}

func TestDelete(t *testing.T) {
	svc, store := newService(t)
	entry := submitTime(t, svc, employee, 30)

	assert.ErrorIs(t, svc.Delete(context.Background(), employee, domain.EntryKindTime, entry.ID), domain.ErrForbidden)
	assert.ErrorIs(t, svc.Delete(context.Background(), otherManager, domain.EntryKindTime, entry.ID), domain.ErrNotFound)

	require.NoError(t, svc.Delete(context.Background(), manager, domain.EntryKindTime, entry.ID))
	assert.Empty(t, store.entries[domain.EntryKindTime])
}
