package services

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"log/slog"
	"math"
	"strings"
	"time"

	"github.com/baharkarakas/typing-backend/internal/api/validate"
	"github.com/baharkarakas/typing-backend/internal/cache"
	"github.com/baharkarakas/typing-backend/internal/metrics"
	"github.com/baharkarakas/typing-backend/internal/models"
	repo "github.com/baharkarakas/typing-backend/internal/repository"
)

const (
	DefaultLimit  = 50
	MaxLimit      = 100
	SummaryWindow = 7 * 24 * time.Hour
	StatsWindow   = 20 * 24 * time.Hour
	StatsLimit    = 20
)

// ClampLimit maps non-positive values to DefaultLimit and caps at MaxLimit.
func ClampLimit(n int) int {
	if n <= 0 {
		return DefaultLimit
	}
	if n > MaxLimit {
		return MaxLimit
	}
	return n
}

// NewValidationID returns 16 hex characters from 8 random bytes.
func NewValidationID() (string, error) {
	b := make([]byte, 8)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}

type SubmitInput struct {
	WPM             *float64 `json:"wpm"`
	CPM             *float64 `json:"cpm"`
	Accuracy        *float64 `json:"accuracy"`
	Mistakes        *float64 `json:"mistakes"`
	DifficultyLevel string   `json:"difficultyLevel"`
	DurationSec     *float64 `json:"durationSec"`
	TextID          *string  `json:"textId"`
	TextLanguage    string   `json:"textLanguage"`
}

// submitMessages holds the client-facing message for each payload field.
var submitMessages = map[string]string{
	"wpm":             "WPM must be a non-negative number",
	"cpm":             "CPM must be a non-negative number",
	"accuracy":        "Accuracy must be a number between 0 and 100",
	"mistakes":        "Mistakes must be a non-negative number",
	"textLanguage":    "textLanguage is required and must be a non-empty string",
	"difficultyLevel": "difficultyLevel is required and must be a non-empty string",
}

// MaxMistakes is the largest mistakes count the store can hold.
const MaxMistakes = math.MaxInt32

func (in SubmitInput) Validate() error {
	return validate.First(
		validate.NonNegative("wpm", in.WPM, submitMessages["wpm"]),
		validate.NonNegative("cpm", in.CPM, submitMessages["cpm"]),
		validate.Between("accuracy", in.Accuracy, 0, 100, submitMessages["accuracy"]),
		validate.Between("mistakes", in.Mistakes, 0, MaxMistakes, submitMessages["mistakes"]),
		validate.Required("textLanguage", in.TextLanguage, submitMessages["textLanguage"]),
		validate.Required("difficultyLevel", in.DifficultyLevel, submitMessages["difficultyLevel"]),
	)
}

// SubmitFieldError returns the validation error for a payload field that has
// the wrong JSON type, or nil when the field has no dedicated message.
func SubmitFieldError(field string) error {
	msg, ok := submitMessages[field]
	if !ok {
		return nil
	}
	return validate.Errs{{Field: field, Msg: msg}}
}

type SubmitResult struct {
	Test        models.TypingTest
	Certificate *models.Certificate
}

type TypingTestService struct {
	store        repo.Store
	leaders      cache.Leaderboard
	log          *slog.Logger
	now          func() time.Time
	validationID func() (string, error)
}

func NewTypingTestService(store repo.Store, leaders cache.Leaderboard, log *slog.Logger) *TypingTestService {
	if leaders == nil {
		leaders = cache.Noop{}
	}
	return &TypingTestService{
		store:        store,
		leaders:      leaders,
		log:          log,
		now:          time.Now,
		validationID: NewValidationID,
	}
}

// Submit stores a result and, when it beats the user's best cpm with at least
// 90% accuracy, raises the best score and issues a certificate. All writes
// share one transaction.
func (s *TypingTestService) Submit(ctx context.Context, userID string, in SubmitInput) (SubmitResult, error) {
	if err := in.Validate(); err != nil {
		return SubmitResult{}, err
	}

	lang := strings.TrimSpace(in.TextLanguage)
	test := models.TypingTest{
		UserID:          userID,
		WPM:             *in.WPM,
		CPM:             *in.CPM,
		Accuracy:        *in.Accuracy,
		Mistakes:        int(*in.Mistakes),
		TextLanguage:    lang,
		DifficultyLevel: in.DifficultyLevel,
		DurationSec:     in.DurationSec,
		TextID:          in.TextID,
	}

	var cert *models.Certificate
	err := s.store.WithTx(ctx, func(ctx context.Context, r repo.Repositories) error {
		if err := r.TypingTests.Create(ctx, &test); err != nil {
			return err
		}
		best, err := r.Users.BestCPM(ctx, userID)
		if err != nil {
			return err
		}
		if !models.Qualifies(test.CPM, test.Accuracy, best) {
			return nil
		}
		// A concurrent submission may have raised the best score since it was read.
		raised, err := r.Users.RaiseBestCPM(ctx, userID, test.CPM)
		if err != nil || !raised {
			return err
		}

		u, err := r.Users.GetByID(ctx, userID)
		if err != nil {
			return err
		}
		vid, err := s.validationID()
		if err != nil {
			return err
		}
		c := models.Certificate{
			UserID:          userID,
			UserName:        u.Name,
			CPM:             test.CPM,
			Accuracy:        test.Accuracy,
			Mistakes:        test.Mistakes,
			Language:        lang,
			DifficultyLevel: test.DifficultyLevel,
			Time:            test.DurationSec,
			ValidationID:    vid,
		}
		if err := r.Certificates.Create(ctx, &c); err != nil {
			return err
		}
		cert = &c
		return nil
	})
	if err != nil {
		return SubmitResult{}, userErr(err)
	}

	metrics.TypingTestsSubmitted.WithLabelValues(lang).Inc()
	if cert != nil {
		metrics.CertificatesIssued.Inc()
		s.log.Info("certificate issued", "user_id", userID, "cpm", cert.CPM, "validation_id", cert.ValidationID)
	}
	if err := s.leaders.Invalidate(ctx); err != nil {
		s.log.Warn("leaderboard cache invalidation failed", "err", err)
	}
	return SubmitResult{Test: test, Certificate: cert}, nil
}

func (s *TypingTestService) List(ctx context.Context, userID string, limit int) ([]models.TypingTest, error) {
	return s.store.Repos().TypingTests.ListByUser(ctx, userID, ClampLimit(limit))
}

// Leaders returns the top results by cpm, served from cache when possible.
// A page is cached only for the generation observed before the store read.
func (s *TypingTestService) Leaders(ctx context.Context, limit int) ([]models.TypingTest, error) {
	limit = ClampLimit(limit)

	tests, gen, err := s.leaders.Get(ctx, limit)
	cacheable := false
	switch {
	case err == nil:
		metrics.LeadersCacheLookups.WithLabelValues("hit").Inc()
		return tests, nil
	case errors.Is(err, cache.ErrCacheMiss):
		metrics.LeadersCacheLookups.WithLabelValues("miss").Inc()
		cacheable = true
	default:
		metrics.LeadersCacheLookups.WithLabelValues("error").Inc()
		s.log.Warn("leaderboard cache read failed", "err", err)
	}

	tests, err = s.store.Repos().TypingTests.Leaders(ctx, limit)
	if err != nil {
		return nil, err
	}
	if cacheable {
		if err := s.leaders.Set(ctx, gen, limit, tests); err != nil {
			s.log.Warn("leaderboard cache write failed", "err", err)
		}
	}
	return tests, nil
}

func (s *TypingTestService) Summary(ctx context.Context, userID string) (models.Summary, error) {
	return s.store.Repos().TypingTests.Summary(ctx, userID, s.now().Add(-SummaryWindow))
}

func (s *TypingTestService) CPMStatistics(ctx context.Context, userID, language string) ([]models.CPMPoint, error) {
	language = strings.TrimSpace(language)
	if err := validate.First(validate.Required("language", language, "Language query parameter is required")); err != nil {
		return nil, err
	}
	return s.store.Repos().TypingTests.CPMStatistics(ctx, userID, language, s.now().Add(-StatsWindow), StatsLimit)
}
