package repository

import (
	"context"

	"github.com/taskee-dev/taskee/backend/internal/domain"
)

const userColumns = `id, organization_id, username, password_hash, full_name, email, role, is_active, created_at, version`

func scanUser(row interface{ Scan(...any) error }, user *domain.User) error {
	dst := []any{&user.ID, &user.OrganizationID, &user.Username, &user.PasswordHash, &user.FullName, &user.Email, &user.Role, &user.IsActive, &user.CreatedAt, &user.Version}
	return row.Scan(dst...)
}

func (r *Repository) GetUserByID(ctx context.Context, id int64) (*domain.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1`

	ctx, cancel := r.queryContext(ctx)
	defer cancel()

	user := &domain.User{}
	if err := scanUser(r.dbpool.QueryRowContext(ctx, query, id), user); err != nil {
		return nil, err
	}

	return user, nil
}

func (r *Repository) GetUserByUsername(ctx context.Context, username string) (*domain.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE username = $1`

	ctx, cancel := r.queryContext(ctx)
	defer cancel()

	user := &domain.User{}
	if err := scanUser(r.dbpool.QueryRowContext(ctx, query, username), user); err != nil {
		return nil, err
	}

	return user, nil
}

func (r *Repository) UpdateUser(ctx context.Context, user *domain.User) error {
	query := `
		UPDATE users 
		SET
			password_hash = $1,
			full_name = $2,
			email = $3,
			role = $4,
			is_active = $5,
			version = version + 1
		WHERE id = $6 AND version = $7
		RETURNING username, created_at, version
	`

	ctx, cancel := r.queryContext(ctx)
	defer cancel()

	args := []any{user.PasswordHash, user.FullName, user.Email, user.Role, user.IsActive, user.ID, user.Version}
	dst := []any{&user.Username, &user.CreatedAt, &user.Version}
	if err := r.dbpool.QueryRowContext(ctx, query, args...).Scan(dst...); err != nil {
		return err
	}

	return nil
}

func (r *Repository) GetUsersByOrganization(ctx context.Context, organizationID int64) ([]*domain.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE organization_id = $1 ORDER BY id`

	ctx, cancel := r.queryContext(ctx)
	defer cancel()

	rows, err := r.dbpool.QueryContext(ctx, query, organizationID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	users := make([]*domain.User, 0)
	for rows.Next() {
		user := &domain.User{}
		if err := scanUser(rows, user); err != nil {
			return nil, err
		}
		users = append(users, user)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return users, nil
}

// GetActiveUsersByOrganization 只返回在职的员工，用于排班建议
func (r *Repository) GetActiveUsersByOrganization(ctx context.Context, organizationID int64) ([]*domain.User, error) {
	users, err := r.GetUsersByOrganization(ctx, organizationID)
	if err != nil {
		return nil, err
	}

	active := make([]*domain.User, 0, len(users))
	for _, u := range users {
		if u.IsActive {
			active = append(active, u)
		}
	}

	return active, nil
}

func (r *Repository) DeleteUser(ctx context.Context, id int64) error {
	query := `DELETE FROM users WHERE id = $1`

	ctx, cancel := r.queryContext(ctx)
	defer cancel()

	if _, err := r.dbpool.ExecContext(ctx, query, id); err != nil {
		return err
	}

	return nil
}

func (r *Repository) CreateUser(ctx context.Context, user *domain.User) error {
	ctx, cancel := r.queryContext(ctx)
	defer cancel()

	query := `
		INSERT INTO users (organization_id, username, password_hash, full_name, email, role)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, is_active, created_at, version
	`

	args := []any{user.OrganizationID, user.Username, user.PasswordHash, user.FullName, user.Email, user.Role}
	if err := r.dbpool.QueryRowContext(ctx, query, args...).Scan(&user.ID, &user.IsActive, &user.CreatedAt, &user.Version); err != nil {
		return err
	}

	return nil
}
