package repository

import (
	"context"
	"fmt"

	"github.com/outagetrack/outage-service/internal/domain"
)

// LocationUpdateRepository stores audit entries. It is append-only: there is
// deliberately no Update or Delete.
type LocationUpdateRepository interface {
	Create(ctx context.Context, update *domain.LocationUpdate) error
	ListByLocation(ctx context.Context, locationID string, limit, offset int) ([]domain.LocationUpdate, int, error)
}

type locationUpdateRepository struct {
	db DBTX
}

func (r *locationUpdateRepository) Create(ctx context.Context, update *domain.LocationUpdate) error {
	if update.ID == "" {
		update.ID = NewID()
	}
	const query = `
        INSERT INTO location_updates (id, location_id, updated_by_id, update_type, previous_status, new_status, notes)
        VALUES ($1,$2,$3,$4,$5,$6,$7)
        RETURNING created_at`
	err := r.db.QueryRow(ctx, query,
		update.ID,
		update.LocationID,
		update.UpdatedByID,
		update.UpdateType,
		update.PreviousStatus,
		update.NewStatus,
		update.Notes,
	).Scan(&update.CreatedAt)
	return translate(err, "create location update")
}

// ListByLocation returns entries newest first.
func (r *locationUpdateRepository) ListByLocation(ctx context.Context, locationID string, limit, offset int) ([]domain.LocationUpdate, int, error) {
	var total int
	if err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM location_updates WHERE location_id=$1`, locationID).Scan(&total); err != nil {
		return nil, 0, translate(err, "count location updates")
	}

	limit, offset = normalizePage(limit, offset)
	query := fmt.Sprintf(`
        SELECT u.id, u.location_id, u.updated_by_id, u.update_type, u.previous_status, u.new_status, u.notes, u.created_at,
               b.email, b.first_name, b.last_name, b.role, b.phone_number, b.is_active
        FROM location_updates u
        LEFT JOIN users b ON b.id = u.updated_by_id
        WHERE u.location_id=$1
        ORDER BY u.created_at DESC, u.seq DESC
        LIMIT %d OFFSET %d`, limit, offset)
	rows, err := r.db.Query(ctx, query, locationID)
	if err != nil {
		return nil, 0, translate(err, "list location updates")
	}
	defer rows.Close()

	var result []domain.LocationUpdate
	for rows.Next() {
		var (
			update  domain.LocationUpdate
			updater joinedUser
		)
		if err := rows.Scan(
			&update.ID,
			&update.LocationID,
			&update.UpdatedByID,
			&update.UpdateType,
			&update.PreviousStatus,
			&update.NewStatus,
			&update.Notes,
			&update.CreatedAt,
			&updater.Email, &updater.FirstName, &updater.LastName, &updater.Role, &updater.Phone, &updater.IsActive,
		); err != nil {
			return nil, 0, translate(err, "scan location update")
		}
		update.UpdatedBy = updater.toUser(update.UpdatedByID)
		result = append(result, update)
	}
	return result, total, translate(rows.Err(), "list location updates")
}
