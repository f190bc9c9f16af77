package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/taskee-dev/taskee/backend/internal/domain"
)

// 三种记录分别存放在不同的表中，只有数量列不同
var entryTables = map[domain.EntryKind]struct {
	table    string
	quantity string
}{
	domain.EntryKindTime:    {table: "time_entries", quantity: "duration_minutes"},
	domain.EntryKindTrip:    {table: "trips", quantity: "distance_km"},
	domain.EntryKindExpense: {table: "expenses", quantity: "amount"},
}

func entryTable(kind domain.EntryKind) (string, string, error) {
	t, ok := entryTables[kind]
	if !ok {
		return "", "", fmt.Errorf("未知的记录类型 %q", kind)
	}
	return t.table, t.quantity, nil
}

func entrySelect(kind domain.EntryKind) (string, error) {
	table, quantity, err := entryTable(kind)
	if err != nil {
		return "", err
	}

	return fmt.Sprintf(`
		SELECT
			e.id,
			e.user_id,
			u.organization_id,
			e.date,
			e.%s,
			e.description,
			e.approved,
			e.created_at,
			e.updated_at,
			e.version
		FROM %s e
		JOIN users u ON u.id = e.user_id
	`, quantity, table), nil
}

func scanEntry(row interface{ Scan(...any) error }, kind domain.EntryKind) (*domain.ApprovableEntry, error) {
	entry := &domain.ApprovableEntry{Kind: kind}
	var quantity decimal.Decimal

	dst := []any{
		&entry.ID,
		&entry.UserID,
		&entry.OrganizationID,
		&entry.Date,
		&quantity,
		&entry.Description,
		&entry.Approved,
		&entry.CreatedAt,
		&entry.UpdatedAt,
		&entry.Version,
	}
	if err := row.Scan(dst...); err != nil {
		return nil, err
	}
	entry.SetQuantity(quantity)

	return entry, nil
}

func (r *Repository) CreateEntry(ctx context.Context, entry *domain.ApprovableEntry) error {
	table, quantity, err := entryTable(entry.Kind)
	if err != nil {
		return err
	}

	query := fmt.Sprintf(`
		INSERT INTO %s (user_id, date, %s, description)
		VALUES ($1, $2, $3, $4)
		RETURNING id, approved, created_at, updated_at, version
	`, table, quantity)

	ctx, cancel := r.queryContext(ctx)
	defer cancel()

	args := []any{entry.UserID, entry.Date, entry.Quantity().String(), entry.Description}
	dst := []any{&entry.ID, &entry.Approved, &entry.CreatedAt, &entry.UpdatedAt, &entry.Version}
	if err := r.dbpool.QueryRowContext(ctx, query, args...).Scan(dst...); err != nil {
		return err
	}

	return nil
}

func (r *Repository) GetEntry(ctx context.Context, kind domain.EntryKind, id int64) (*domain.ApprovableEntry, error) {
	query, err := entrySelect(kind)
	if err != nil {
		return nil, err
	}
	query += ` WHERE e.id = $1`

	ctx, cancel := r.queryContext(ctx)
	defer cancel()

	return scanEntry(r.dbpool.QueryRowContext(ctx, query, id), kind)
}

func (r *Repository) ListEntries(ctx context.Context, filter domain.EntryFilter) ([]*domain.ApprovableEntry, error) {
	query, err := entrySelect(filter.Kind)
	if err != nil {
		return nil, err
	}

	conditions := []string{"u.organization_id = $1"}
	args := []any{filter.OrganizationID}
	if filter.UserID != nil {
		args = append(args, *filter.UserID)
		conditions = append(conditions, fmt.Sprintf("e.user_id = $%d", len(args)))
	}
	if filter.Approved != nil {
		args = append(args, *filter.Approved)
		conditions = append(conditions, fmt.Sprintf("e.approved = $%d", len(args)))
	}
	query += ` WHERE ` + strings.Join(conditions, " AND ") + ` ORDER BY e.date DESC, e.id DESC`

	ctx, cancel := r.queryContext(ctx)
	defer cancel()

	rows, err := r.dbpool.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	entries := make([]*domain.ApprovableEntry, 0)
	for rows.Next() {
		entry, err := scanEntry(rows, filter.Kind)
		if err != nil {
			return nil, err
		}
		entries = append(entries, entry)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return entries, nil
}

// UpdateEntryApproval 只更新审批状态和更新时间，并发修改时以最后一次写入为准
func (r *Repository) UpdateEntryApproval(ctx context.Context, entry *domain.ApprovableEntry) error {
	table, _, err := entryTable(entry.Kind)
	if err != nil {
		return err
	}

	query := fmt.Sprintf(`
		UPDATE %s
		SET
			approved = $1,
			updated_at = $2,
			version = version + 1
		WHERE id = $3
		RETURNING version
	`, table)

	ctx, cancel := r.queryContext(ctx)
	defer cancel()

	if err := r.dbpool.QueryRowContext(ctx, query, entry.Approved, entry.UpdatedAt, entry.ID).Scan(&entry.Version); err != nil {
		return err
	}

	return nil
}

func (r *Repository) DeleteEntry(ctx context.Context, kind domain.EntryKind, id int64) error {
	table, _, err := entryTable(kind)
	if err != nil {
		return err
	}

	ctx, cancel := r.queryContext(ctx)
	defer cancel()

	res, err := r.dbpool.ExecContext(ctx, fmt.Sprintf(`DELETE FROM %s WHERE id = $1`, table), id)
	if err != nil {
		return err
	}

	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return sql.ErrNoRows
	}

	return nil
}
