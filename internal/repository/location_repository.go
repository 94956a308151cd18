package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/outagetrack/outage-service/internal/domain"
	"github.com/outagetrack/outage-service/internal/policy"
)

// LocationFilter captures list parameters; Scope is always applied.
type LocationFilter struct {
	Scope        policy.Scope
	Statuses     []domain.LocationStatus
	Priorities   []domain.LocationPriority
	AssignedToID *string
	SearchTerm   *string
	Limit        int
	Offset       int
}

// LocationRepository encapsulates location persistence.
type LocationRepository interface {
	Create(ctx context.Context, loc *domain.Location) error
	Update(ctx context.Context, loc *domain.Location) error
	Delete(ctx context.Context, id string) error
	// GetByID loads the row together with its assignee and reporter.
	GetByID(ctx context.Context, id string) (*domain.Location, error)
	List(ctx context.Context, filter LocationFilter) ([]domain.Location, int, error)
}

type locationRepository struct {
	db DBTX
}

const locationSelect = `
        SELECT l.id, l.name, l.address, l.city, l.state, l.zip_code, l.latitude, l.longitude,
               l.status, l.priority, l.description, l.estimated_customers_affected,
               l.assigned_to_id, l.reported_by_id, l.reporter_email, l.reporter_phone,
               l.created_at, l.updated_at, l.reported_at, l.estimated_restoration, l.actual_restoration,
               a.email, a.first_name, a.last_name, a.role, a.phone_number, a.is_active,
               r.email, r.first_name, r.last_name, r.role, r.phone_number, r.is_active
        FROM locations l
        LEFT JOIN users a ON a.id = l.assigned_to_id
        LEFT JOIN users r ON r.id = l.reported_by_id`

func (r *locationRepository) Create(ctx context.Context, loc *domain.Location) error {
	if loc.ID == "" {
		loc.ID = NewID()
	}
	if loc.ReportedAt.IsZero() {
		loc.ReportedAt = time.Now().UTC()
	}
	const query = `
        INSERT INTO locations (id, name, address, city, state, zip_code, latitude, longitude, status, priority,
            description, estimated_customers_affected, assigned_to_id, reported_by_id, reporter_email,
            reporter_phone, reported_at, estimated_restoration, actual_restoration)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17,$18,$19)
        RETURNING created_at, updated_at`
	err := r.db.QueryRow(ctx, query,
		loc.ID,
		loc.Name,
		loc.Address,
		loc.City,
		loc.State,
		loc.ZipCode,
		loc.Latitude,
		loc.Longitude,
		loc.Status,
		loc.Priority,
		loc.Description,
		loc.EstimatedCustomersAffected,
		loc.AssignedToID,
		loc.ReportedByID,
		loc.ReporterEmail,
		loc.ReporterPhone,
		loc.ReportedAt,
		loc.EstimatedRestoration,
		loc.ActualRestoration,
	).Scan(&loc.CreatedAt, &loc.UpdatedAt)
	return translate(err, "create location")
}

func (r *locationRepository) Update(ctx context.Context, loc *domain.Location) error {
	const query = `
        UPDATE locations SET name=$1, address=$2, city=$3, state=$4, zip_code=$5, latitude=$6, longitude=$7,
            status=$8, priority=$9, description=$10, estimated_customers_affected=$11, assigned_to_id=$12,
            reported_by_id=$13, reporter_email=$14, reporter_phone=$15, estimated_restoration=$16,
            actual_restoration=$17, updated_at=NOW()
        WHERE id=$18
        RETURNING updated_at`
	err := r.db.QueryRow(ctx, query,
		loc.Name,
		loc.Address,
		loc.City,
		loc.State,
		loc.ZipCode,
		loc.Latitude,
		loc.Longitude,
		loc.Status,
		loc.Priority,
		loc.Description,
		loc.EstimatedCustomersAffected,
		loc.AssignedToID,
		loc.ReportedByID,
		loc.ReporterEmail,
		loc.ReporterPhone,
		loc.EstimatedRestoration,
		loc.ActualRestoration,
		loc.ID,
	).Scan(&loc.UpdatedAt)
	return translate(err, "update location")
}

// Delete removes the location; its updates go with it (ON DELETE CASCADE).
func (r *locationRepository) Delete(ctx context.Context, id string) error {
	cmd, err := r.db.Exec(ctx, `DELETE FROM locations WHERE id=$1`, id)
	if err != nil {
		return translate(err, "delete location")
	}
	if cmd.RowsAffected() == 0 {
		return translate(pgx.ErrNoRows, "delete location")
	}
	return nil
}

func (r *locationRepository) GetByID(ctx context.Context, id string) (*domain.Location, error) {
	loc, err := scanLocation(r.db.QueryRow(ctx, locationSelect+` WHERE l.id=$1`, id))
	if err != nil {
		return nil, translate(err, "get location")
	}
	return loc, nil
}

func (r *locationRepository) List(ctx context.Context, filter LocationFilter) ([]domain.Location, int, error) {
	args := []any{}
	clauses := []string{scopeClause(filter.Scope, &args)}

	if len(filter.Statuses) > 0 {
		placeholders := make([]string, len(filter.Statuses))
		for i, status := range filter.Statuses {
			args = append(args, status)
			placeholders[i] = fmt.Sprintf("$%d", len(args))
		}
		clauses = append(clauses, fmt.Sprintf("l.status IN (%s)", strings.Join(placeholders, ",")))
	}
	if len(filter.Priorities) > 0 {
		placeholders := make([]string, len(filter.Priorities))
		for i, pr := range filter.Priorities {
			args = append(args, pr)
			placeholders[i] = fmt.Sprintf("$%d", len(args))
		}
		clauses = append(clauses, fmt.Sprintf("l.priority IN (%s)", strings.Join(placeholders, ",")))
	}
	if filter.AssignedToID != nil {
		args = append(args, *filter.AssignedToID)
		clauses = append(clauses, fmt.Sprintf("l.assigned_to_id=$%d", len(args)))
	}
	if filter.SearchTerm != nil && strings.TrimSpace(*filter.SearchTerm) != "" {
		args = append(args, "%"+strings.ToLower(strings.TrimSpace(*filter.SearchTerm))+"%")
		p := fmt.Sprintf("$%d", len(args))
		clauses = append(clauses, fmt.Sprintf("(LOWER(l.name) LIKE %s OR LOWER(l.address) LIKE %s OR LOWER(l.city) LIKE %s)", p, p, p))
	}
	where := strings.Join(clauses, " AND ")

	var total int
	countQuery := `SELECT COUNT(*) FROM locations l LEFT JOIN users a ON a.id = l.assigned_to_id WHERE ` + where
	if err := r.db.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, translate(err, "count locations")
	}

	limit, offset := normalizePage(filter.Limit, filter.Offset)
	query := fmt.Sprintf(`%s WHERE %s ORDER BY l.created_at DESC, l.id LIMIT %d OFFSET %d`, locationSelect, where, limit, offset)
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, translate(err, "list locations")
	}
	defer rows.Close()

	var result []domain.Location
	for rows.Next() {
		loc, err := scanLocation(rows)
		if err != nil {
			return nil, 0, translate(err, "scan location")
		}
		result = append(result, *loc)
	}
	return result, total, translate(rows.Err(), "list locations")
}

// scopeClause renders policy.Scope as a SQL predicate over locations l joined
// to assignee a.
func scopeClause(scope policy.Scope, args *[]any) string {
	if scope.All {
		return "TRUE"
	}
	parts := []string{}
	if scope.AssignedTo != "" {
		*args = append(*args, scope.AssignedTo)
		parts = append(parts, fmt.Sprintf("l.assigned_to_id=$%d", len(*args)))
	}
	if scope.ReportedBy != "" {
		*args = append(*args, scope.ReportedBy)
		parts = append(parts, fmt.Sprintf("l.reported_by_id=$%d", len(*args)))
	}
	if scope.Unassigned {
		parts = append(parts, "l.assigned_to_id IS NULL")
	}
	if len(scope.AssigneeRoles) > 0 {
		*args = append(*args, rolesArg(scope.AssigneeRoles))
		parts = append(parts, fmt.Sprintf("a.role = ANY($%d)", len(*args)))
	}
	if len(parts) == 0 {
		return "FALSE"
	}
	return "(" + strings.Join(parts, " OR ") + ")"
}

// joinedUser receives the nullable columns of a LEFT JOIN on users.
type joinedUser struct {
	Email     *string
	FirstName *string
	LastName  *string
	Role      *domain.Role
	Phone     *string
	IsActive  *bool
}

func (j joinedUser) toUser(id *string) *domain.User {
	if id == nil || j.Email == nil {
		return nil
	}
	u := &domain.User{ID: *id, Email: *j.Email}
	if j.FirstName != nil {
		u.FirstName = *j.FirstName
	}
	if j.LastName != nil {
		u.LastName = *j.LastName
	}
	if j.Role != nil {
		u.Role = *j.Role
	}
	if j.Phone != nil {
		u.PhoneNumber = *j.Phone
	}
	if j.IsActive != nil {
		u.IsActive = *j.IsActive
	}
	return u
}

func scanLocation(row pgx.Row) (*domain.Location, error) {
	var (
		loc                domain.Location
		assignee, reporter joinedUser
	)
	if err := row.Scan(
		&loc.ID,
		&loc.Name,
		&loc.Address,
		&loc.City,
		&loc.State,
		&loc.ZipCode,
		&loc.Latitude,
		&loc.Longitude,
		&loc.Status,
		&loc.Priority,
		&loc.Description,
		&loc.EstimatedCustomersAffected,
		&loc.AssignedToID,
		&loc.ReportedByID,
		&loc.ReporterEmail,
		&loc.ReporterPhone,
		&loc.CreatedAt,
		&loc.UpdatedAt,
		&loc.ReportedAt,
		&loc.EstimatedRestoration,
		&loc.ActualRestoration,
		&assignee.Email, &assignee.FirstName, &assignee.LastName, &assignee.Role, &assignee.Phone, &assignee.IsActive,
		&reporter.Email, &reporter.FirstName, &reporter.LastName, &reporter.Role, &reporter.Phone, &reporter.IsActive,
	); err != nil {
		return nil, err
	}
	loc.AssignedTo = assignee.toUser(loc.AssignedToID)
	loc.ReportedBy = reporter.toUser(loc.ReportedByID)
	return &loc, nil
}
