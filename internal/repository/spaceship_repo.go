package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"spaceship-manager/internal/model"
)

const spaceshipColumns = "id, name, category, origin, capacity, is_deleted"

// SpaceshipRepository is the Postgres SpaceshipStore. Soft deletion is a flag
// on the row; deleted rows are retained but filtered from every read except
// GetAny.
type SpaceshipRepository struct {
	pool *pgxpool.Pool
}

func NewSpaceshipRepository(pool *pgxpool.Pool) *SpaceshipRepository {
	return &SpaceshipRepository{pool: pool}
}

func (r *SpaceshipRepository) Get(ctx context.Context, id int64) (model.Spaceship, error) {
	row := r.pool.QueryRow(ctx,
		`SELECT `+spaceshipColumns+` FROM spaceships WHERE id = $1 AND is_deleted = false`, id)
	return scanSpaceship(row, "get spaceship")
}

// GetAny returns the row regardless of the deletion flag. Store-level
// inspection only; the service read path never calls it.
func (r *SpaceshipRepository) GetAny(ctx context.Context, id int64) (model.Spaceship, error) {
	row := r.pool.QueryRow(ctx,
		`SELECT `+spaceshipColumns+` FROM spaceships WHERE id = $1`, id)
	return scanSpaceship(row, "get spaceship any")
}

func (r *SpaceshipRepository) List(ctx context.Context, spec model.PageSpec) (model.SpaceshipPage, error) {
	spec = normalizePageSpec(spec)
	column, descending := parseSort(spec.Sort)
	direction := "ASC"
	if descending {
		direction = "DESC"
	}

	var total int64
	if err := r.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM spaceships WHERE is_deleted = false`).Scan(&total); err != nil {
		return model.SpaceshipPage{}, fmt.Errorf("count spaceships: %w", err)
	}

	// column and direction come from the whitelist in parseSort, never from
	// caller input directly.
	query := fmt.Sprintf(
		`SELECT %s FROM spaceships WHERE is_deleted = false ORDER BY %s %s, id ASC LIMIT $1 OFFSET $2`,
		spaceshipColumns, column, direction)

	rows, err := r.pool.Query(ctx, query, spec.Size, spec.Page*spec.Size)
	if err != nil {
		return model.SpaceshipPage{}, fmt.Errorf("list spaceships: %w", err)
	}
	defer rows.Close()

	items, err := collectSpaceships(rows)
	if err != nil {
		return model.SpaceshipPage{}, err
	}

	return model.SpaceshipPage{
		Content:       items,
		PageNumber:    spec.Page,
		PageSize:      spec.Size,
		TotalElements: total,
		TotalPages:    totalPages(total, spec.Size),
	}, nil
}

// SearchByName matches case-insensitively (ILIKE) on a substring of the name,
// over non-deleted rows only.
func (r *SpaceshipRepository) SearchByName(ctx context.Context, term string) ([]model.Spaceship, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+spaceshipColumns+` FROM spaceships
		 WHERE is_deleted = false AND name ILIKE '%' || $1 || '%'
		 ORDER BY id ASC`, term)
	if err != nil {
		return nil, fmt.Errorf("search spaceships: %w", err)
	}
	defer rows.Close()

	return collectSpaceships(rows)
}

// Save inserts when the id is unset, otherwise overwrites the mutable fields
// of the live row. Both paths run in a transaction scoped to the one record.
func (r *SpaceshipRepository) Save(ctx context.Context, s model.Spaceship) (model.Spaceship, error) {
	saved := s
	err := pgx.BeginFunc(ctx, r.pool, func(tx pgx.Tx) error {
		if s.ID == 0 {
			return tx.QueryRow(ctx,
				`INSERT INTO spaceships (name, category, origin, capacity)
				 VALUES ($1, $2, $3, $4) RETURNING id`,
				s.Name, s.Category, s.Origin, s.Capacity).Scan(&saved.ID)
		}

		tag, err := tx.Exec(ctx,
			`UPDATE spaceships SET name = $2, category = $3, origin = $4, capacity = $5
			 WHERE id = $1 AND is_deleted = false`,
			s.ID, s.Name, s.Category, s.Origin, s.Capacity)
		if err != nil {
			return err
		}
		if tag.RowsAffected() == 0 {
			return model.ErrSpaceshipNotFound
		}
		return nil
	})
	if errors.Is(err, model.ErrSpaceshipNotFound) {
		return model.Spaceship{}, model.ErrSpaceshipNotFound
	}
	if err != nil {
		return model.Spaceship{}, fmt.Errorf("save spaceship: %w", err)
	}

	return saved, nil
}

func (r *SpaceshipRepository) SoftDelete(ctx context.Context, id int64) error {
	err := pgx.BeginFunc(ctx, r.pool, func(tx pgx.Tx) error {
		tag, err := tx.Exec(ctx,
			`UPDATE spaceships SET is_deleted = true WHERE id = $1 AND is_deleted = false`, id)
		if err != nil {
			return err
		}
		if tag.RowsAffected() == 0 {
			return model.ErrSpaceshipNotFound
		}
		return nil
	})
	if errors.Is(err, model.ErrSpaceshipNotFound) {
		return model.ErrSpaceshipNotFound
	}
	if err != nil {
		return fmt.Errorf("soft delete spaceship: %w", err)
	}
	return nil
}

func scanSpaceship(row pgx.Row, op string) (model.Spaceship, error) {
	var s model.Spaceship
	err := row.Scan(&s.ID, &s.Name, &s.Category, &s.Origin, &s.Capacity, &s.Deleted)
	if errors.Is(err, pgx.ErrNoRows) {
		return model.Spaceship{}, model.ErrSpaceshipNotFound
	}
	if err != nil {
		return model.Spaceship{}, fmt.Errorf("%s: %w", op, err)
	}
	return s, nil
}

func collectSpaceships(rows pgx.Rows) ([]model.Spaceship, error) {
	items := make([]model.Spaceship, 0)
	for rows.Next() {
		var s model.Spaceship
		if err := rows.Scan(&s.ID, &s.Name, &s.Category, &s.Origin, &s.Capacity, &s.Deleted); err != nil {
			return nil, fmt.Errorf("scan spaceship: %w", err)
		}
		items = append(items, s)
	}
	return items, rows.Err()
}
