package postgres

import (
	"context"
	"database/sql"

	"emailscheduler/internal/model"
	"emailscheduler/internal/repository"
)

var _ repository.RecipientRepository = (*RecipientRepository)(nil)

// RecipientRepository provides PostgreSQL backed recipient operations.
type RecipientRepository struct {
	db *sql.DB
}

// NewRecipientRepository creates a new repository instance.
func NewRecipientRepository(db *sql.DB) *RecipientRepository {
	return &RecipientRepository{db: db}
}

func (r *RecipientRepository) Create(ctx context.Context, email string) (model.Recipient, error) {
	rec := model.Recipient{Email: email}
	err := r.db.QueryRowContext(ctx, `INSERT INTO recipients (email) VALUES ($1) RETURNING id`, email).Scan(&rec.ID)
	if err != nil {
		return model.Recipient{}, err
	}
	return rec, nil
}

func (r *RecipientRepository) List(ctx context.Context) ([]model.Recipient, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT id, email FROM recipients ORDER BY id ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var recipients []model.Recipient
	for rows.Next() {
		var rec model.Recipient
		if err := rows.Scan(&rec.ID, &rec.Email); err != nil {
			return nil, err
		}
		recipients = append(recipients, rec)
	}

	return recipients, rows.Err()
}

func (r *RecipientRepository) Delete(ctx context.Context, id int64) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM recipients WHERE id = $1`, id)
	return err
}
