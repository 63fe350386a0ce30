package postgres

import (
	"context"
	"database/sql"

	"github.com/google/uuid"

	"github.com/baharkarakas/typing-backend/internal/db"
	"github.com/baharkarakas/typing-backend/internal/models"
)

type certificatesRepo struct{ q db.DBTX }

const selectCertificate = `SELECT id, user_id, user_name, cpm, accuracy, mistakes, language, difficulty_level, time_sec, validation_id, issued_at
  FROM certificates`

func scanCertificate(s rowScanner) (models.Certificate, error) {
	var (
		c       models.Certificate
		timeSec sql.NullFloat64
	)
	err := s.Scan(&c.ID, &c.UserID, &c.UserName, &c.CPM, &c.Accuracy, &c.Mistakes, &c.Language,
		&c.DifficultyLevel, &timeSec, &c.ValidationID, &c.IssuedAt)
	if err != nil {
		return models.Certificate{}, err
	}
	c.Time = floatPtr(timeSec)
	return c, nil
}

func (r *certificatesRepo) Create(ctx context.Context, c *models.Certificate) error {
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	err := r.q.QueryRowContext(ctx,
		`INSERT INTO certificates (id, user_id, user_name, cpm, accuracy, mistakes, language, difficulty_level, time_sec, validation_id)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		 RETURNING issued_at`,
		c.ID, c.UserID, c.UserName, c.CPM, c.Accuracy, c.Mistakes, c.Language, c.DifficultyLevel,
		nullFloat(c.Time), c.ValidationID,
	).Scan(&c.IssuedAt)
	return mapErr(err)
}

func (r *certificatesRepo) GetByValidationID(ctx context.Context, validationID string) (models.Certificate, error) {
	c, err := scanCertificate(r.q.QueryRowContext(ctx, selectCertificate+`
 WHERE validation_id = $1`, validationID))
	return c, mapErr(err)
}

func (r *certificatesRepo) ListByUser(ctx context.Context, userID string) ([]models.Certificate, error) {
	rows, err := r.q.QueryContext(ctx, selectCertificate+`
 WHERE user_id = $1
 ORDER BY issued_at ASC`, userID)
	if err != nil {
		return nil, mapErr(err)
	}
	defer rows.Close()

	out := []models.Certificate{}
	for rows.Next() {
		c, err := scanCertificate(rows)
		if err != nil {
			return nil, mapErr(err)
		}
		out = append(out, c)
	}
	return out, mapErr(rows.Err())
}
