package approval

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/shopspring/decimal"
	"github.com/taskee-dev/taskee/backend/internal/domain"
)

// Store 是审批所需的持久化接口，由 repository.Repository 实现
type Store interface {
	CreateEntry(ctx context.Context, entry *domain.ApprovableEntry) error
	GetEntry(ctx context.Context, kind domain.EntryKind, id int64) (*domain.ApprovableEntry, error)
	ListEntries(ctx context.Context, filter domain.EntryFilter) ([]*domain.ApprovableEntry, error)
	UpdateEntryApproval(ctx context.Context, entry *domain.ApprovableEntry) error
	DeleteEntry(ctx context.Context, kind domain.EntryKind, id int64) error
}

// Service 管理工时、出行、报销记录的审批状态
//
// 审批状态只有 approved 一个布尔值：false 既表示待审批也表示被驳回。
type Service struct {
	store Store
	now   func() time.Time
}

func New(store Store) *Service {
	return &Service{
		store: store,
		now:   time.Now,
	}
}

// Submit 由记录的所有者提交一条新记录，新记录总是处于未审批状态
func (s *Service) Submit(ctx context.Context, actor *domain.Actor, entry *domain.ApprovableEntry) error {
	entry.UserID = actor.UserID
	entry.OrganizationID = actor.OrganizationID
	entry.Approved = false

	return s.store.CreateEntry(ctx, entry)
}

// SetApproval 把记录的审批状态设置为 approve
//
// 非管理员无论记录状态如何都会得到 ErrForbidden；记录不存在或不属于操作者所在的组织时返回 ErrNotFound，
// 以免泄露其他组织的数据。重复设置同一状态不会报错，也不会写数据库。
func (s *Service) SetApproval(ctx context.Context, actor *domain.Actor, kind domain.EntryKind, id int64, approve bool) (*domain.ApprovableEntry, error) {
	if !actor.IsManager() {
		return nil, domain.ErrForbidden
	}

	entry, err := s.getInOrganization(ctx, actor, kind, id)
	if err != nil {
		return nil, err
	}

	if entry.Approved == approve {
		return entry, nil
	}

	entry.Approved = approve
	entry.UpdatedAt = s.now()
	if err := s.store.UpdateEntryApproval(ctx, entry); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}

	return entry, nil
}

// List 返回操作者可见的记录：普通员工只能看到自己的记录，管理员可以看到整个组织的记录
func (s *Service) List(ctx context.Context, actor *domain.Actor, kind domain.EntryKind, userID *int64, approved *bool) ([]*domain.ApprovableEntry, error) {
	filter := domain.EntryFilter{
		Kind:           kind,
		OrganizationID: actor.OrganizationID,
		UserID:         userID,
		Approved:       approved,
	}
	if !actor.IsManager() {
		self := actor.UserID
		filter.UserID = &self
	}

	return s.store.ListEntries(ctx, filter)
}

// Totals 在读取时对记录求和，汇总值不会被存储
func (s *Service) Totals(ctx context.Context, actor *domain.Actor, kind domain.EntryKind, userID *int64, approved *bool) (*domain.EntryTotals, error) {
	entries, err := s.List(ctx, actor, kind, userID, approved)
	if err != nil {
		return nil, err
	}

	totals := &domain.EntryTotals{
		Kind:          kind,
		Total:         decimal.Zero,
		ApprovedTotal: decimal.Zero,
	}
	for _, e := range entries {
		q := e.Quantity()
		totals.Count++
		totals.Total = totals.Total.Add(q)
		if e.Approved {
			totals.ApprovedCount++
			totals.ApprovedTotal = totals.ApprovedTotal.Add(q)
		}
	}

	return totals, nil
}

// Delete 只有管理员可以删除记录，员工提交后不能再删除
func (s *Service) Delete(ctx context.Context, actor *domain.Actor, kind domain.EntryKind, id int64) error {
	if !actor.IsManager() {
		return domain.ErrForbidden
	}

	if _, err := s.getInOrganization(ctx, actor, kind, id); err != nil {
		return err
	}

	if err := s.store.DeleteEntry(ctx, kind, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.ErrNotFound
		}
		return err
	}

	return nil
}

func (s *Service) getInOrganization(ctx context.Context, actor *domain.Actor, kind domain.EntryKind, id int64) (*domain.ApprovableEntry, error) {
	entry, err := s.store.GetEntry(ctx, kind, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}

	if entry.OrganizationID != actor.OrganizationID {
		return nil, domain.ErrNotFound
	}

	return entry, nil
}
