package repository

import (
	"context"

	"github.com/taskee-dev/taskee/backend/internal/domain"
)

// EnsureOrganization 按名称获取组织，不存在时创建
func (r *Repository) EnsureOrganization(ctx context.Context, name string) (*domain.Organization, error) {
	ctx, cancel := r.queryContext(ctx)
	defer cancel()

	query := `
		INSERT INTO organizations (name)
		VALUES ($1)
		ON CONFLICT (name) DO UPDATE SET name = EXCLUDED.name
		RETURNING id, name, created_at
	`

	org := &domain.Organization{}
	if err := r.dbpool.QueryRowContext(ctx, query, name).Scan(&org.ID, &org.Name, &org.CreatedAt); err != nil {
		return nil, err
	}

	return org, nil
}
