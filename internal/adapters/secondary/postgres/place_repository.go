package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/bedic/places-backend/internal/core/domain"
	apperrors "github.com/bedic/places-backend/internal/core/errors"
	"github.com/bedic/places-backend/internal/core/ports"
)

// PlaceRepository is the secondary adapter for place persistence.
type PlaceRepository struct {
	pool *pgxpool.Pool
}

var _ ports.PlaceRepository = (*PlaceRepository)(nil)

// NewPlaceRepository creates a new place repository.
func NewPlaceRepository(pool *pgxpool.Pool) ports.PlaceRepository {
	return &PlaceRepository{pool: pool}
}

func (r *PlaceRepository) db(ctx context.Context) querier {
	return queryEngine(ctx, r.pool)
}

const placeColumns = `id, name, category, description, department, city, latitude, longitude, owner_id, verified, created_at, updated_at`

func scanPlace(row pgx.Row) (*domain.Place, error) {
	var (
		id        pgtype.UUID
		place     domain.Place
		ownerID   pgtype.UUID
		createdAt pgtype.Timestamptz
		updatedAt pgtype.Timestamptz
	)

	err := row.Scan(&id, &place.Name, &place.Category, &place.Description,
		&place.Department, &place.City, &place.Latitude, &place.Longitude,
		&ownerID, &place.Verified, &createdAt, &updatedAt)
	if err != nil {
		return nil, err
	}

	place.ID = id.Bytes
	place.CreatedAt = createdAt.Time
	if ownerID.Valid {
		owner := uuid.UUID(ownerID.Bytes)
		place.OwnerID = &owner
	}
	if updatedAt.Valid {
		place.UpdatedAt = &updatedAt.Time
	}
	return &place, nil
}

// Create persists a new place.
func (r *PlaceRepository) Create(ctx context.Context, place *domain.Place) (*domain.Place, error) {
	row := r.db(ctx).QueryRow(ctx, `
		INSERT INTO places (id, name, category, description, department, city, latitude, longitude, owner_id, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING `+placeColumns,
		place.ID, place.Name, place.Category, place.Description, place.Department,
		place.City, place.Latitude, place.Longitude, place.OwnerID, place.CreatedAt,
	)
	return scanPlace(row)
}

// GetByID retrieves a place by id.
func (r *PlaceRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Place, error) {
	row := r.db(ctx).QueryRow(ctx, `SELECT `+placeColumns+` FROM places WHERE id = $1`, id)

	place, err := scanPlace(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrPlaceNotFound
		}
		return nil, err
	}
	return place, nil
}

// List retrieves places matching the filter, newest first.
func (r *PlaceRepository) List(ctx context.Context, filter ports.ListPlacesFilter) ([]*domain.Place, error) {
	query := `SELECT ` + placeColumns + ` FROM places WHERE 1=1`
	args := []any{}

	if filter.Category != nil {
		args = append(args, *filter.Category)
		query += fmt.Sprintf(" AND category = $%d", len(args))
	}
	if filter.City != nil {
		args = append(args, *filter.City)
		query += fmt.Sprintf(" AND city = $%d", len(args))
	}
	if filter.Verified != nil {
		args = append(args, *filter.Verified)
		query += fmt.Sprintf(" AND verified = $%d", len(args))
	}
	if filter.OwnerID != nil {
		args = append(args, *filter.OwnerID)
		query += fmt.Sprintf(" AND owner_id = $%d", len(args))
	}

	args = append(args, filter.Limit)
	query += fmt.Sprintf(" ORDER BY created_at DESC LIMIT $%d", len(args))
	args = append(args, filter.Offset)
	query += fmt.Sprintf(" OFFSET $%d", len(args))

	rows, err := r.db(ctx).Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var places []*domain.Place
	for rows.Next() {
		place, err := scanPlace(rows)
		if err != nil {
			return nil, err
		}
		places = append(places, place)
	}
	return places, rows.Err()
}

// Update persists changes to an existing place.
func (r *PlaceRepository) Update(ctx context.Context, place *domain.Place) (*domain.Place, error) {
	row := r.db(ctx).QueryRow(ctx, `
		UPDATE places
		SET name = $2, category = $3, description = $4, department = $5, city = $6,
		    latitude = $7, longitude = $8, verified = $9, updated_at = $10
		WHERE id = $1
		RETURNING `+placeColumns,
		place.ID, place.Name, place.Category, place.Description, place.Department,
		place.City, place.Latitude, place.Longitude, place.Verified, place.UpdatedAt,
	)

	updated, err := scanPlace(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrPlaceNotFound
		}
		return nil, err
	}
	return updated, nil
}

// Delete removes a place.
func (r *PlaceRepository) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.db(ctx).Exec(ctx, `DELETE FROM places WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrPlaceNotFound
	}
	return nil
}

// DeleteDuplicates removes places that share name and city with an older
// row. The oldest row of each group survives; ties break on id.
func (r *PlaceRepository) DeleteDuplicates(ctx context.Context) (int64, error) {
	tag, err := r.db(ctx).Exec(ctx, `
		DELETE FROM places p
		USING places keeper
		WHERE p.name = keeper.name
		  AND p.city = keeper.city
		  AND (keeper.created_at < p.created_at
		       OR (keeper.created_at = p.created_at AND keeper.id < p.id))`)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}
