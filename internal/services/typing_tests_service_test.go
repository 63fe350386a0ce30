package services

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/baharkarakas/typing-backend/internal/api/validate"
	"github.com/baharkarakas/typing-backend/internal/models"
)

func f(v float64) *float64 { return &v }

func submission(cpm, accuracy float64) SubmitInput {
	return SubmitInput{
		WPM:             f(cpm / 5),
		CPM:             f(cpm),
		Accuracy:        f(accuracy),
		Mistakes:        f(2),
		DifficultyLevel: "easy",
		TextLanguage:    "  english ",
		DurationSec:     f(60),
	}
}

func newTypingSvc(t *testing.T) (*TypingTestService, *memStore, *memLeaders) {
	t.Helper()
	store := newMemStore()
	leaders := newMemLeaders()
	return NewTypingTestService(store, leaders, discardLogger()), store, leaders
}

func TestSubmit_IssuesCertificateOnNewBest(t *testing.T) {
	svc, store, leaders := newTypingSvc(t)
	u := store.addUser(models.User{Name: "Ann", Email: "ann@example.com", BestCPM: 200})

	res, err := svc.Submit(context.Background(), u.ID, submission(250, 95))
	require.NoError(t, err)

	assert.Equal(t, "english", res.Test.TextLanguage)
	require.NotNil(t, res.Certificate)
	assert.Equal(t, "Ann", res.Certificate.UserName)
	assert.Equal(t, 250.0, res.Certificate.CPM)
	assert.Equal(t, "english", res.Certificate.Language)
	assert.Len(t, res.Certificate.ValidationID, 16)
	require.NotNil(t, res.Certificate.Time)
	assert.Equal(t, 60.0, *res.Certificate.Time)

	got := store.user(u.ID)
	assert.Equal(t, 250.0, got.BestCPM)
	assert.Equal(t, []string{res.Certificate.ID}, got.Certificates)
	assert.Equal(t, 1, leaders.invalidated)
}

func TestSubmit_NoCertificateBelowBest(t *testing.T) {
	svc, store, _ := newTypingSvc(t)
	u := store.addUser(models.User{Name: "Ann", Email: "ann@example.com", BestCPM: 250})

	res, err := svc.Submit(context.Background(), u.ID, submission(240, 92))
	require.NoError(t, err)
	assert.Nil(t, res.Certificate)
	assert.Equal(t, 250.0, store.user(u.ID).BestCPM)
	assert.Len(t, store.state.tests, 1)
}

func TestSubmit_ThresholdEdges(t *testing.T) {
	tests := []struct {
		name     string
		cpm, acc float64
		wantCert bool
	}{
		{"equal to best", 200, 99, false},
		{"accuracy exactly 90", 201, 90, true},
		{"accuracy just below 90", 300, 89.99, false},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			svc, store, _ := newTypingSvc(t)
			u := store.addUser(models.User{Name: "Ann", Email: "a@example.com", BestCPM: 200})

			res, err := svc.Submit(context.Background(), u.ID, submission(tc.cpm, tc.acc))
			require.NoError(t, err)
			assert.Equal(t, tc.wantCert, res.Certificate != nil)
		})
	}
}

func TestSubmit_ValidationStoresNothing(t *testing.T) {
	tests := []struct {
		name string
		mut  func(*SubmitInput)
		msg  string
	}{
		{"negative accuracy", func(in *SubmitInput) { in.Accuracy = f(-1) }, "Accuracy must be a number between 0 and 100"},
		{"accuracy over 100", func(in *SubmitInput) { in.Accuracy = f(100.5) }, "Accuracy must be a number between 0 and 100"},
		{"missing wpm", func(in *SubmitInput) { in.WPM = nil }, "WPM must be a non-negative number"},
		{"negative cpm", func(in *SubmitInput) { in.CPM = f(-3) }, "CPM must be a non-negative number"},
		{"negative mistakes", func(in *SubmitInput) { in.Mistakes = f(-1) }, "Mistakes must be a non-negative number"},
		{"mistakes beyond column range", func(in *SubmitInput) { in.Mistakes = f(1e20) }, "Mistakes must be a non-negative number"},
		{"blank language", func(in *SubmitInput) { in.TextLanguage = "   " }, "textLanguage is required and must be a non-empty string"},
		{"missing difficulty", func(in *SubmitInput) { in.DifficultyLevel = "" }, "difficultyLevel is required and must be a non-empty string"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			svc, store, _ := newTypingSvc(t)
			u := store.addUser(models.User{Name: "Ann", Email: "a@example.com"})

			in := submission(250, 95)
			tc.mut(&in)
			_, err := svc.Submit(context.Background(), u.ID, in)

			var errs validate.Errs
			require.True(t, errors.As(err, &errs))
			assert.Equal(t, tc.msg, errs.Message())
			assert.Empty(t, store.state.tests)
		})
	}
}

func TestSubmit_UnknownUser(t *testing.T) {
	svc, _, _ := newTypingSvc(t)
	_, err := svc.Submit(context.Background(), "ghost", submission(250, 95))
	assert.ErrorIs(t, err, ErrUserNotFound)
}

func TestSubmit_RollsBackOnCertificateFailure(t *testing.T) {
	svc, store, _ := newTypingSvc(t)
	u := store.addUser(models.User{Name: "Ann", Email: "a@example.com", BestCPM: 100})
	store.failCertCreate = errors.New("disk full")

	_, err := svc.Submit(context.Background(), u.ID, submission(250, 95))
	require.Error(t, err)

	assert.Empty(t, store.state.tests)
	assert.Equal(t, 100.0, store.user(u.ID).BestCPM)
}

func TestSubmit_ConcurrentBestIsMonotonic(t *testing.T) {
	svc, store, _ := newTypingSvc(t)
	u := store.addUser(models.User{Name: "Ann", Email: "a@example.com", BestCPM: 100})

	var wg sync.WaitGroup
	for _, cpm := range []float64{300, 250, 400, 150, 350} {
		wg.Add(1)
		go func(cpm float64) {
			defer wg.Done()
			_, err := svc.Submit(context.Background(), u.ID, submission(cpm, 95))
			assert.NoError(t, err)
		}(cpm)
	}
	wg.Wait()

	assert.Equal(t, 400.0, store.user(u.ID).BestCPM)
	for _, c := range store.state.certs {
		assert.Greater(t, c.CPM, 100.0)
	}
}

func TestClampLimit(t *testing.T) {
	assert.Equal(t, 50, ClampLimit(0))
	assert.Equal(t, 50, ClampLimit(-4))
	assert.Equal(t, 10, ClampLimit(10))
	assert.Equal(t, 100, ClampLimit(500))
}

func TestLeaders_CapsLimitAndCaches(t *testing.T) {
	svc, store, leaders := newTypingSvc(t)
	u := store.addUser(models.User{Name: "Ann", Email: "a@example.com", BestCPM: 1000})
	for i := 0; i < 120; i++ {
		_, err := svc.Submit(context.Background(), u.ID, submission(float64(i), 50))
		require.NoError(t, err)
	}

	tests, err := svc.Leaders(context.Background(), 500)
	require.NoError(t, err)
	require.Len(t, tests, 100)
	assert.Equal(t, 119.0, tests[0].CPM)

	cached, ok := leaders.pages[100]
	require.True(t, ok)
	assert.Len(t, cached, 100)

	leaders.pages[100] = cached[:1]
	again, err := svc.Leaders(context.Background(), 100)
	require.NoError(t, err)
	assert.Len(t, again, 1)
}

func TestLeaders_CacheErrorFallsBackToStore(t *testing.T) {
	svc, store, leaders := newTypingSvc(t)
	u := store.addUser(models.User{Name: "Ann", Email: "a@example.com"})
	_, err := svc.Submit(context.Background(), u.ID, submission(10, 50))
	require.NoError(t, err)
	leaders.getErr = errors.New("redis down")

	tests, err := svc.Leaders(context.Background(), 0)
	require.NoError(t, err)
	assert.Len(t, tests, 1)
}

func TestLeaders_SubmitDuringMissIsNotHiddenByCache(t *testing.T) {
	svc, store, leaders := newTypingSvc(t)
	u := store.addUser(models.User{Name: "Ann", Email: "a@example.com", BestCPM: 1000})
	_, err := svc.Submit(context.Background(), u.ID, submission(100, 50))
	require.NoError(t, err)

	store.afterLeaders = func() {
		_, err := svc.Submit(context.Background(), u.ID, submission(500, 50))
		require.NoError(t, err)
	}
	stale, err := svc.Leaders(context.Background(), 10)
	require.NoError(t, err)
	require.Len(t, stale, 1)
	assert.Empty(t, leaders.pages)

	fresh, err := svc.Leaders(context.Background(), 10)
	require.NoError(t, err)
	require.Len(t, fresh, 2)
	assert.Equal(t, 500.0, fresh[0].CPM)
}

func TestLeaders_CacheErrorSkipsWrite(t *testing.T) {
	svc, store, leaders := newTypingSvc(t)
	u := store.addUser(models.User{Name: "Ann", Email: "a@example.com"})
	_, err := svc.Submit(context.Background(), u.ID, submission(10, 50))
	require.NoError(t, err)
	leaders.getErr = errors.New("redis down")

	_, err = svc.Leaders(context.Background(), 10)
	require.NoError(t, err)
	assert.Empty(t, leaders.pages)
}

func TestSummary_UsesSevenDayWindow(t *testing.T) {
	svc, store, _ := newTypingSvc(t)
	u := store.addUser(models.User{Name: "Ann", Email: "a@example.com", BestCPM: 1000})
	_, err := svc.Submit(context.Background(), u.ID, submission(250, 90))
	require.NoError(t, err)
	_, err = svc.Submit(context.Background(), u.ID, submission(300, 100))
	require.NoError(t, err)

	old := store.state.tests[0]
	old.CreatedAt = time.Now().Add(-8 * 24 * time.Hour)
	store.state.tests[0] = old

	s, err := svc.Summary(context.Background(), u.ID)
	require.NoError(t, err)
	assert.Equal(t, models.Summary{AvgWPM: 60, AvgAccuracy: 100, TotalTests: 1}, s)

	empty, err := svc.Summary(context.Background(), "nobody")
	require.NoError(t, err)
	assert.Equal(t, models.Summary{}, empty)
}

func TestCPMStatistics(t *testing.T) {
	svc, store, _ := newTypingSvc(t)
	u := store.addUser(models.User{Name: "Ann", Email: "a@example.com", BestCPM: 1000})
	for i := 0; i < 25; i++ {
		_, err := svc.Submit(context.Background(), u.ID, submission(float64(100+i), 95))
		require.NoError(t, err)
	}
	in := submission(999, 95)
	in.TextLanguage = "french"
	_, err := svc.Submit(context.Background(), u.ID, in)
	require.NoError(t, err)

	pts, err := svc.CPMStatistics(context.Background(), u.ID, "english")
	require.NoError(t, err)
	require.Len(t, pts, StatsLimit)
	assert.Equal(t, 124.0, pts[0].CPM)

	_, err = svc.CPMStatistics(context.Background(), u.ID, " ")
	var errs validate.Errs
	require.True(t, errors.As(err, &errs))
	assert.Equal(t, "Language query parameter is required", errs.Message())
}

func TestNewValidationID(t *testing.T) {
	a, err := NewValidationID()
	require.NoError(t, err)
	b, err := NewValidationID()
	require.NoError(t, err)

	assert.Regexp(t, `^[0-9a-f]{16}$`, a)
	assert.NotEqual(t, a, b)
}

func TestSubmit_MistakesUpperBound(t *testing.T) {
	svc, store, _ := newTypingSvc(t)
	u := store.addUser(models.User{Name: "Ann", Email: "a@example.com"})

	in := submission(250, 95)
	in.Mistakes = f(MaxMistakes)
	res, err := svc.Submit(context.Background(), u.ID, in)
	require.NoError(t, err)
	assert.Equal(t, MaxMistakes, res.Test.Mistakes)

	in.Mistakes = f(MaxMistakes + 1)
	_, err = svc.Submit(context.Background(), u.ID, in)
	var errs validate.Errs
	require.True(t, errors.As(err, &errs))
	assert.Len(t, store.state.tests, 1)
}

func TestSubmitFieldError(t *testing.T) {
	var errs validate.Errs
	require.True(t, errors.As(SubmitFieldError("accuracy"), &errs))
	assert.Equal(t, "Accuracy must be a number between 0 and 100", errs.Message())
	require.True(t, errors.As(SubmitFieldError("textLanguage"), &errs))
	assert.Equal(t, "textLanguage is required and must be a non-empty string", errs.Message())
	assert.NoError(t, SubmitFieldError("durationSec"))
}
