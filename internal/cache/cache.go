package cache

import (
	"context"
	"errors"

	"github.com/baharkarakas/typing-backend/internal/models"
)

var ErrCacheMiss = errors.New("cache miss")

// Leaderboard caches leaderboard pages keyed by limit.
//
// Get also reports the generation it read under, on a miss as well. Set stores
// a page for that generation only; Invalidate starts a new generation, so a
// page loaded before an invalidation is never served after it.
type Leaderboard interface {
	Get(ctx context.Context, limit int) ([]models.TypingTest, int64, error)
	Set(ctx context.Context, gen int64, limit int, tests []models.TypingTest) error
	Invalidate(ctx context.Context) error
}

// Noop never stores anything.
type Noop struct{}

func (Noop) Get(context.Context, int) ([]models.TypingTest, int64, error) {
	return nil, 0, ErrCacheMiss
}

func (Noop) Set(context.Context, int64, int, []models.TypingTest) error { return nil }

func (Noop) Invalidate(context.Context) error { return nil }
