package postgres

import (
	"context"
	"database/sql"
	"strings"

	"plant-photo-gallery/internal/domain/activity"
)

type ActivityRepo struct {
	db *sql.DB
}

func NewActivityRepo(db *sql.DB) *ActivityRepo {
	return &ActivityRepo{db: db}
}

func (r *ActivityRepo) Create(ctx context.Context, e activity.Entry) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO activity (
			id, owner_id, kind, plant_id, slot_index, recorded_at
		) VALUES ($1,$2,$3,$4,$5,$6)
	`,
		e.ID,
		e.OwnerID,
		string(e.Kind),
		e.PlantID,
		e.SlotIndex,
		e.RecordedAt,
	)
	return err
}

func (r *ActivityRepo) ListByOwner(ctx context.Context, ownerID string) ([]activity.Entry, error) {
	ownerID = strings.TrimSpace(ownerID)
	if ownerID == "" {
		return nil, nil
	}

	rows, err := r.db.QueryContext(ctx, `
		SELECT id, owner_id, kind, plant_id, slot_index, recorded_at
		FROM activity
		WHERE owner_id = $1
		ORDER BY recorded_at DESC, id ASC
	`, ownerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]activity.Entry, 0)
	for rows.Next() {
		var e activity.Entry
		var kind string
		if err := rows.Scan(
			&e.ID,
			&e.OwnerID,
			&kind,
			&e.PlantID,
			&e.SlotIndex,
			&e.RecordedAt,
		); err != nil {
			return nil, err
		}
		e.Kind = activity.Kind(kind)
		out = append(out, e)
	}

	return out, rows.Err()
}
