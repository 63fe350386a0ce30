package repository

import (
	"context"
	"errors"
	"time"

	"github.com/baharkarakas/typing-backend/internal/models"
)

var (
	ErrNotFound = errors.New("not found")
	ErrConflict = errors.New("conflict")
)

type Users interface {
	Create(ctx context.Context, u *models.User) error
	GetByID(ctx context.Context, id string) (models.User, error)
	GetByEmail(ctx context.Context, email string) (models.User, error)
	List(ctx context.Context) ([]models.User, error)
	Update(ctx context.Context, id string, upd models.UserUpdate) (models.User, error)
	SetBlocked(ctx context.Context, id string, blocked bool) (models.User, error)
	SetRole(ctx context.Context, id, role string) error
	Delete(ctx context.Context, id string) error

	BestCPM(ctx context.Context, id string) (float64, error)
	// RaiseBestCPM stores cpm only if it is strictly greater than the stored
	// value and reports whether the row changed.
	RaiseBestCPM(ctx context.Context, id string, cpm float64) (bool, error)
}

type TypingTests interface {
	Create(ctx context.Context, t *models.TypingTest) error
	ListByUser(ctx context.Context, userID string, limit int) ([]models.TypingTest, error)
	Leaders(ctx context.Context, limit int) ([]models.TypingTest, error)
	Summary(ctx context.Context, userID string, since time.Time) (models.Summary, error)
	CPMStatistics(ctx context.Context, userID, language string, since time.Time, limit int) ([]models.CPMPoint, error)
}

type Certificates interface {
	Create(ctx context.Context, c *models.Certificate) error
	GetByValidationID(ctx context.Context, validationID string) (models.Certificate, error)
	ListByUser(ctx context.Context, userID string) ([]models.Certificate, error)
}

type Texts interface {
	Create(ctx context.Context, t *models.Text) error
	Random(ctx context.Context, f models.TextFilter) (models.Text, error)
	List(ctx context.Context) ([]models.Text, error)
	Update(ctx context.Context, id string, upd models.TextUpdate) (models.Text, error)
	Delete(ctx context.Context, id string) error
}

type Repositories struct {
	Users        Users
	TypingTests  TypingTests
	Certificates Certificates
	Texts        Texts
}

// Store hands out repositories bound either to the pool or to a single
// transaction.
type Store interface {
	Repos() Repositories
	WithTx(ctx context.Context, fn func(ctx context.Context, r Repositories) error) error
}
