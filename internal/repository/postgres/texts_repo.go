package postgres

import (
	"context"

	"github.com/google/uuid"

	"github.com/baharkarakas/typing-backend/internal/db"
	"github.com/baharkarakas/typing-backend/internal/models"
)

type textsRepo struct{ q db.DBTX }

func scanText(s rowScanner) (models.Text, error) {
	var t models.Text
	err := s.Scan(&t.ID, &t.Text, &t.Date, &t.Language, &t.DifficultyLevel)
	return t, err
}

func (r *textsRepo) Create(ctx context.Context, t *models.Text) error {
	if t.ID == "" {
		t.ID = uuid.NewString()
	}
	_, err := r.q.ExecContext(ctx,
		`INSERT INTO texts (id, body, date, language, difficulty_level) VALUES ($1, $2, $3, $4, $5)`,
		t.ID, t.Text, t.Date, t.Language, t.DifficultyLevel,
	)
	return mapErr(err)
}

// Random picks one text; empty filter fields are ignored.
func (r *textsRepo) Random(ctx context.Context, f models.TextFilter) (models.Text, error) {
	t, err := scanText(r.q.QueryRowContext(ctx,
		`SELECT id, body, date, language, difficulty_level
		   FROM texts
		  WHERE ($1::text = '' OR language = $1)
		    AND ($2::text = '' OR difficulty_level = $2)
		  ORDER BY random()
		  LIMIT 1`,
		f.Language, f.DifficultyLevel,
	))
	return t, mapErr(err)
}

func (r *textsRepo) List(ctx context.Context) ([]models.Text, error) {
	rows, err := r.q.QueryContext(ctx,
		`SELECT id, body, date, language, difficulty_level FROM texts ORDER BY date DESC`)
	if err != nil {
		return nil, mapErr(err)
	}
	defer rows.Close()

	out := []models.Text{}
	for rows.Next() {
		t, err := scanText(rows)
		if err != nil {
			return nil, mapErr(err)
		}
		out = append(out, t)
	}
	return out, mapErr(rows.Err())
}

func (r *textsRepo) Update(ctx context.Context, id string, upd models.TextUpdate) (models.Text, error) {
	out, err := scanText(r.q.QueryRowContext(ctx,
		`UPDATE texts
		    SET body = COALESCE($2, body),
		        date = COALESCE($3, date),
		        language = COALESCE($4, language),
		        difficulty_level = COALESCE($5, difficulty_level)
		  WHERE id = $1
		  RETURNING id, body, date, language, difficulty_level`,
		id, upd.Text, upd.Date, upd.Language, upd.DifficultyLevel,
	))
	return out, mapErr(err)
}

func (r *textsRepo) Delete(ctx context.Context, id string) error {
	res, err := r.q.ExecContext(ctx, `DELETE FROM texts WHERE id = $1`, id)
	if err != nil {
		return mapErr(err)
	}
	return affectedOne(res)
}
