package postgres

import (
	"context"
	"database/sql"
	"strings"

	"plant-photo-gallery/internal/domain/plants"
)

type PlantsRepo struct {
	db *sql.DB
}

func NewPlantsRepo(db *sql.DB) *PlantsRepo {
	return &PlantsRepo{db: db}
}

// Create es upsert por id: un retry del mismo create no duplica registros.
func (r *PlantsRepo) Create(ctx context.Context, p plants.Plant) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO plants (
			id, owner_id,
			name, description, image_url,
			created_at
		) VALUES ($1,$2,$3,$4,$5,$6)
		ON CONFLICT (id) DO NOTHING
	`,
		p.ID,
		p.OwnerID,
		p.Name,
		p.Description,
		p.ImageURL,
		p.CreatedAt,
	)
	return err
}

func (r *PlantsRepo) ListByOwner(ctx context.Context, ownerID string) ([]plants.Plant, error) {
	ownerID = strings.TrimSpace(ownerID)
	if ownerID == "" {
		return nil, nil
	}

	rows, err := r.db.QueryContext(ctx, `
		SELECT
			id, owner_id,
			name, description, image_url,
			created_at
		FROM plants
		WHERE owner_id = $1
		ORDER BY created_at ASC, id ASC
	`, ownerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]plants.Plant, 0)
	for rows.Next() {
		var p plants.Plant
		if err := rows.Scan(
			&p.ID,
			&p.OwnerID,
			&p.Name,
			&p.Description,
			&p.ImageURL,
			&p.CreatedAt,
		); err != nil {
			return nil, err
		}
		out = append(out, p)
	}

	return out, rows.Err()
}

func (r *PlantsRepo) UpdateDescription(ctx context.Context, id, description string) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE plants
		SET description = $2
		WHERE id = $1
	`, id, description)
	if err != nil {
		return err
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return ErrNotFound
	}
	return nil
}
