package postgres

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"

	"github.com/baharkarakas/typing-backend/internal/db"
	"github.com/baharkarakas/typing-backend/internal/models"
)

type typingTestsRepo struct{ q db.DBTX }

const selectTypingTest = `SELECT t.id, t.user_id, u.name, u.email, t.wpm, t.cpm, t.accuracy, t.mistakes,
       t.text_language, t.difficulty_level, t.duration_sec, t.text_id, t.created_at
  FROM typing_tests t
  JOIN users u ON u.id = t.user_id`

func scanTypingTest(s rowScanner) (models.TypingTest, error) {
	var (
		t        models.TypingTest
		ref      models.UserRef
		duration sql.NullFloat64
		textID   sql.NullString
	)
	err := s.Scan(&t.ID, &t.UserID, &ref.Name, &ref.Email, &t.WPM, &t.CPM, &t.Accuracy, &t.Mistakes,
		&t.TextLanguage, &t.DifficultyLevel, &duration, &textID, &t.CreatedAt)
	if err != nil {
		return models.TypingTest{}, err
	}
	ref.ID = t.UserID
	t.DurationSec = floatPtr(duration)
	t.TextID = stringPtr(textID)
	t.Owner(&ref)
	return t, nil
}

func (r *typingTestsRepo) Create(ctx context.Context, t *models.TypingTest) error {
	if t.ID == "" {
		t.ID = uuid.NewString()
	}
	err := r.q.QueryRowContext(ctx,
		`INSERT INTO typing_tests (id, user_id, wpm, cpm, accuracy, mistakes, text_language, difficulty_level, duration_sec, text_id)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		 RETURNING created_at`,
		t.ID, t.UserID, t.WPM, t.CPM, t.Accuracy, t.Mistakes, t.TextLanguage, t.DifficultyLevel,
		nullFloat(t.DurationSec), nullString(t.TextID),
	).Scan(&t.CreatedAt)
	if err != nil {
		return mapErr(err)
	}
	t.Owner(nil)
	return nil
}

func (r *typingTestsRepo) list(ctx context.Context, query string, args ...any) ([]models.TypingTest, error) {
	rows, err := r.q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, mapErr(err)
	}
	defer rows.Close()

	out := []models.TypingTest{}
	for rows.Next() {
		t, err := scanTypingTest(rows)
		if err != nil {
			return nil, mapErr(err)
		}
		out = append(out, t)
	}
	return out, mapErr(rows.Err())
}

func (r *typingTestsRepo) ListByUser(ctx context.Context, userID string, limit int) ([]models.TypingTest, error) {
	return r.list(ctx, selectTypingTest+`
 WHERE t.user_id = $1
 ORDER BY t.created_at DESC
 LIMIT $2`, userID, limit)
}

func (r *typingTestsRepo) Leaders(ctx context.Context, limit int) ([]models.TypingTest, error) {
	return r.list(ctx, selectTypingTest+`
 ORDER BY t.cpm DESC, t.created_at ASC
 LIMIT $1`, limit)
}

func (r *typingTestsRepo) Summary(ctx context.Context, userID string, since time.Time) (models.Summary, error) {
	var s models.Summary
	err := r.q.QueryRowContext(ctx,
		`SELECT COALESCE(ROUND(AVG(wpm)::numeric, 2), 0)::float8,
		        COALESCE(ROUND(AVG(accuracy)::numeric, 2), 0)::float8,
		        COUNT(*)
		   FROM typing_tests
		  WHERE user_id = $1 AND created_at >= $2`,
		userID, since,
	).Scan(&s.AvgWPM, &s.AvgAccuracy, &s.TotalTests)
	if err != nil {
		return models.Summary{}, mapErr(err)
	}
	return s, nil
}

func (r *typingTestsRepo) CPMStatistics(ctx context.Context, userID, language string, since time.Time, limit int) ([]models.CPMPoint, error) {
	rows, err := r.q.QueryContext(ctx,
		`SELECT cpm, mistakes, created_at, text_language
		   FROM typing_tests
		  WHERE user_id = $1 AND text_language = $2 AND created_at >= $3
		  ORDER BY created_at DESC
		  LIMIT $4`,
		userID, language, since, limit,
	)
	if err != nil {
		return nil, mapErr(err)
	}
	defer rows.Close()

	out := []models.CPMPoint{}
	for rows.Next() {
		var p models.CPMPoint
		if err := rows.Scan(&p.CPM, &p.Mistakes, &p.CreatedAt, &p.TextLanguage); err != nil {
			return nil, mapErr(err)
		}
		out = append(out, p)
	}
	return out, mapErr(rows.Err())
}
