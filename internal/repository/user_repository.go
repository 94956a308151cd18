package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/outagetrack/outage-service/internal/domain"
	"github.com/outagetrack/outage-service/internal/policy"
)

// UserFilter narrows user listings.
type UserFilter struct {
	Scope  policy.UserScope
	Roles  []domain.Role
	Search string
	Limit  int
	Offset int
}

// UserRepository defines persistence access for accounts.
type UserRepository interface {
	Create(ctx context.Context, user *domain.User) error
	Update(ctx context.Context, user *domain.User) error
	Delete(ctx context.Context, id string) error
	GetByID(ctx context.Context, id string) (*domain.User, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	List(ctx context.Context, filter UserFilter) ([]domain.User, int, error)
}

type userRepository struct {
	db DBTX
}

const userColumns = `id, email, first_name, last_name, role, phone_number, is_active, password_hash, date_joined, updated_at`

func (r *userRepository) Create(ctx context.Context, user *domain.User) error {
	if user.ID == "" {
		user.ID = NewID()
	}
	const query = `
        INSERT INTO users (id, email, first_name, last_name, role, phone_number, is_active, password_hash)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
        RETURNING date_joined, updated_at`
	err := r.db.QueryRow(ctx, query,
		user.ID,
		user.Email,
		user.FirstName,
		user.LastName,
		user.Role,
		user.PhoneNumber,
		user.IsActive,
		user.PasswordHash,
	).Scan(&user.DateJoined, &user.UpdatedAt)
	return translate(err, "create user")
}

func (r *userRepository) Update(ctx context.Context, user *domain.User) error {
	const query = `
        UPDATE users SET email=$1, first_name=$2, last_name=$3, role=$4, phone_number=$5,
            is_active=$6, password_hash=$7, updated_at=NOW()
        WHERE id=$8
        RETURNING updated_at`
	err := r.db.QueryRow(ctx, query,
		user.Email,
		user.FirstName,
		user.LastName,
		user.Role,
		user.PhoneNumber,
		user.IsActive,
		user.PasswordHash,
		user.ID,
	).Scan(&user.UpdatedAt)
	return translate(err, "update user")
}

// Delete removes the account; foreign keys null out location and audit references.
func (r *userRepository) Delete(ctx context.Context, id string) error {
	cmd, err := r.db.Exec(ctx, `DELETE FROM users WHERE id=$1`, id)
	if err != nil {
		return translate(err, "delete user")
	}
	if cmd.RowsAffected() == 0 {
		return translate(pgx.ErrNoRows, "delete user")
	}
	return nil
}

func (r *userRepository) GetByID(ctx context.Context, id string) (*domain.User, error) {
	return r.fetchSingle(ctx, `SELECT `+userColumns+` FROM users WHERE id=$1`, id)
}

func (r *userRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	return r.fetchSingle(ctx, `SELECT `+userColumns+` FROM users WHERE email=$1`, domain.NormalizeEmail(email))
}

func (r *userRepository) fetchSingle(ctx context.Context, query string, arg any) (*domain.User, error) {
	var user domain.User
	if err := scanUser(r.db.QueryRow(ctx, query, arg), &user); err != nil {
		return nil, translate(err, "get user")
	}
	return &user, nil
}

func (r *userRepository) List(ctx context.Context, filter UserFilter) ([]domain.User, int, error) {
	clauses := []string{}
	args := []any{}

	if !filter.Scope.All {
		scoped := []string{}
		if filter.Scope.SelfID != "" {
			args = append(args, filter.Scope.SelfID)
			scoped = append(scoped, fmt.Sprintf("id=$%d", len(args)))
		}
		if len(filter.Scope.Roles) > 0 {
			args = append(args, rolesArg(filter.Scope.Roles))
			scoped = append(scoped, fmt.Sprintf("role = ANY($%d)", len(args)))
		}
		if len(scoped) == 0 {
			scoped = append(scoped, "FALSE")
		}
		clauses = append(clauses, "("+strings.Join(scoped, " OR ")+")")
	}
	if len(filter.Roles) > 0 {
		args = append(args, rolesArg(filter.Roles))
		clauses = append(clauses, fmt.Sprintf("role = ANY($%d)", len(args)))
	}
	if term := strings.TrimSpace(filter.Search); term != "" {
		args = append(args, "%"+strings.ToLower(term)+"%")
		p := fmt.Sprintf("$%d", len(args))
		clauses = append(clauses, fmt.Sprintf("(LOWER(email) LIKE %s OR LOWER(first_name) LIKE %s OR LOWER(last_name) LIKE %s)", p, p, p))
	}
	where := "TRUE"
	if len(clauses) > 0 {
		where = strings.Join(clauses, " AND ")
	}

	var total int
	if err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM users WHERE `+where, args...).Scan(&total); err != nil {
		return nil, 0, translate(err, "count users")
	}

	limit, offset := normalizePage(filter.Limit, filter.Offset)
	query := fmt.Sprintf(`SELECT %s FROM users WHERE %s ORDER BY date_joined DESC, id LIMIT %d OFFSET %d`,
		userColumns, where, limit, offset)
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, translate(err, "list users")
	}
	defer rows.Close()

	var result []domain.User
	for rows.Next() {
		var user domain.User
		if err := scanUser(rows, &user); err != nil {
			return nil, 0, translate(err, "scan user")
		}
		result = append(result, user)
	}
	return result, total, translate(rows.Err(), "list users")
}

func scanUser(row pgx.Row, user *domain.User) error {
	return row.Scan(
		&user.ID,
		&user.Email,
		&user.FirstName,
		&user.LastName,
		&user.Role,
		&user.PhoneNumber,
		&user.IsActive,
		&user.PasswordHash,
		&user.DateJoined,
		&user.UpdatedAt,
	)
}

func rolesArg(roles []domain.Role) []string {
	out := make([]string, len(roles))
	for i, r := range roles {
		out[i] = string(r)
	}
	return out
}
