package services

import (
	"context"
	"io"
	"log/slog"
	"sort"
	"strconv"
	"sync"
	"time"

	"github.com/baharkarakas/typing-backend/internal/cache"
	"github.com/baharkarakas/typing-backend/internal/mailer"
	"github.com/baharkarakas/typing-backend/internal/models"
	repo "github.com/baharkarakas/typing-backend/internal/repository"
)

func discardLogger() *slog.Logger { return slog.New(slog.NewTextHandler(io.Discard, nil)) }

type memState struct {
	users  map[string]models.User
	tests  []models.TypingTest
	certs  []models.Certificate
	texts  map[string]models.Text
	nextID int
}

func (s *memState) clone() memState {
	c := memState{
		users:  map[string]models.User{},
		tests:  append([]models.TypingTest(nil), s.tests...),
		certs:  append([]models.Certificate(nil), s.certs...),
		texts:  map[string]models.Text{},
		nextID: s.nextID,
	}
	for k, v := range s.users {
		v.Certificates = append([]string(nil), v.Certificates...)
		c.users[k] = v
	}
	for k, v := range s.texts {
		c.texts[k] = v
	}
	return c
}

func (s *memState) id(prefix string) string {
	s.nextID++
	return prefix + "-" + strconv.Itoa(s.nextID)
}

// memStore is an in-memory repo.Store; WithTx restores state when fn fails.
type memStore struct {
	mu    sync.Mutex
	state memState

	failCertCreate error
	// afterLeaders runs once a leaderboard read has been taken.
	afterLeaders func()
}

func newMemStore() *memStore {
	return &memStore{state: memState{users: map[string]models.User{}, texts: map[string]models.Text{}}}
}

func (m *memStore) Repos() repo.Repositories {
	return repo.Repositories{
		Users:        memUsers{m},
		TypingTests:  memTests{m},
		Certificates: memCerts{m},
		Texts:        memTexts{m},
	}
}

func (m *memStore) WithTx(ctx context.Context, fn func(ctx context.Context, r repo.Repositories) error) error {
	m.mu.Lock()
	snap := m.state.clone()
	m.mu.Unlock()

	if err := fn(ctx, m.Repos()); err != nil {
		m.mu.Lock()
		m.state = snap
		m.mu.Unlock()
		return err
	}
	return nil
}

func (m *memStore) addUser(u models.User) models.User {
	m.mu.Lock()
	defer m.mu.Unlock()
	if u.ID == "" {
		u.ID = m.state.id("u")
	}
	if u.Role == "" {
		u.Role = models.RoleUser
	}
	if u.Certificates == nil {
		u.Certificates = []string{}
	}
	m.state.users[u.ID] = u
	return u
}

func (m *memStore) user(id string) models.User {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state.users[id]
}

type memUsers struct{ m *memStore }

func (r memUsers) Create(_ context.Context, u *models.User) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	for _, x := range r.m.state.users {
		if x.Email == u.Email {
			return repo.ErrConflict
		}
	}
	u.ID = r.m.state.id("u")
	u.Registered = time.Now()
	u.Certificates = []string{}
	r.m.state.users[u.ID] = *u
	return nil
}

func (r memUsers) GetByID(_ context.Context, id string) (models.User, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	u, ok := r.m.state.users[id]
	if !ok {
		return models.User{}, repo.ErrNotFound
	}
	return u, nil
}

func (r memUsers) GetByEmail(_ context.Context, email string) (models.User, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	for _, u := range r.m.state.users {
		if u.Email == email {
			return u, nil
		}
	}
	return models.User{}, repo.ErrNotFound
}

func (r memUsers) List(_ context.Context) ([]models.User, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	out := []models.User{}
	for _, u := range r.m.state.users {
		out = append(out, u)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r memUsers) Update(_ context.Context, id string, upd models.UserUpdate) (models.User, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	u, ok := r.m.state.users[id]
	if !ok {
		return models.User{}, repo.ErrNotFound
	}
	if upd.Email != nil {
		for _, x := range r.m.state.users {
			if x.ID != id && x.Email == *upd.Email {
				return models.User{}, repo.ErrConflict
			}
		}
		u.Email = *upd.Email
	}
	if upd.Name != nil {
		u.Name = *upd.Name
	}
	if upd.IsVerified != nil {
		u.IsVerified = *upd.IsVerified
	}
	r.m.state.users[id] = u
	return u, nil
}

func (r memUsers) SetBlocked(_ context.Context, id string, blocked bool) (models.User, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	u, ok := r.m.state.users[id]
	if !ok {
		return models.User{}, repo.ErrNotFound
	}
	u.IsBlocked = blocked
	r.m.state.users[id] = u
	return u, nil
}

func (r memUsers) SetRole(_ context.Context, id, role string) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	u, ok := r.m.state.users[id]
	if !ok {
		return repo.ErrNotFound
	}
	u.Role = role
	r.m.state.users[id] = u
	return nil
}

func (r memUsers) Delete(_ context.Context, id string) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	if _, ok := r.m.state.users[id]; !ok {
		return repo.ErrNotFound
	}
	delete(r.m.state.users, id)
	return nil
}

func (r memUsers) BestCPM(_ context.Context, id string) (float64, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	u, ok := r.m.state.users[id]
	if !ok {
		return 0, repo.ErrNotFound
	}
	return u.BestCPM, nil
}

func (r memUsers) RaiseBestCPM(_ context.Context, id string, cpm float64) (bool, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	u, ok := r.m.state.users[id]
	if !ok || u.BestCPM >= cpm {
		return false, nil
	}
	u.BestCPM = cpm
	r.m.state.users[id] = u
	return true, nil
}

type memTests struct{ m *memStore }

func (r memTests) Create(_ context.Context, t *models.TypingTest) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	if _, ok := r.m.state.users[t.UserID]; !ok {
		return repo.ErrNotFound
	}
	t.ID = r.m.state.id("t")
	t.CreatedAt = time.Now()
	t.Owner(nil)
	r.m.state.tests = append(r.m.state.tests, *t)
	return nil
}

func (r memTests) ListByUser(_ context.Context, userID string, limit int) ([]models.TypingTest, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	out := []models.TypingTest{}
	for i := len(r.m.state.tests) - 1; i >= 0 && len(out) < limit; i-- {
		if r.m.state.tests[i].UserID == userID {
			out = append(out, r.m.state.tests[i])
		}
	}
	return out, nil
}

func (r memTests) Leaders(_ context.Context, limit int) ([]models.TypingTest, error) {
	r.m.mu.Lock()
	out := append([]models.TypingTest(nil), r.m.state.tests...)
	hook := r.m.afterLeaders
	r.m.afterLeaders = nil
	r.m.mu.Unlock()

	sort.SliceStable(out, func(i, j int) bool { return out[i].CPM > out[j].CPM })
	if len(out) > limit {
		out = out[:limit]
	}
	if hook != nil {
		hook()
	}
	return out, nil
}

func (r memTests) Summary(_ context.Context, userID string, since time.Time) (models.Summary, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	var s models.Summary
	var wpm, acc float64
	for _, t := range r.m.state.tests {
		if t.UserID == userID && !t.CreatedAt.Before(since) {
			s.TotalTests++
			wpm += t.WPM
			acc += t.Accuracy
		}
	}
	if s.TotalTests > 0 {
		s.AvgWPM = wpm / float64(s.TotalTests)
		s.AvgAccuracy = acc / float64(s.TotalTests)
	}
	return s, nil
}

func (r memTests) CPMStatistics(_ context.Context, userID, language string, since time.Time, limit int) ([]models.CPMPoint, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	out := []models.CPMPoint{}
	for i := len(r.m.state.tests) - 1; i >= 0 && len(out) < limit; i-- {
		t := r.m.state.tests[i]
		if t.UserID == userID && t.TextLanguage == language && !t.CreatedAt.Before(since) {
			out = append(out, models.CPMPoint{CPM: t.CPM, Mistakes: t.Mistakes, CreatedAt: t.CreatedAt, TextLanguage: t.TextLanguage})
		}
	}
	return out, nil
}

type memCerts struct{ m *memStore }

func (r memCerts) Create(_ context.Context, c *models.Certificate) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	if r.m.failCertCreate != nil {
		return r.m.failCertCreate
	}
	c.ID = r.m.state.id("c")
	c.IssuedAt = time.Now()
	r.m.state.certs = append(r.m.state.certs, *c)
	u := r.m.state.users[c.UserID]
	u.Certificates = append(u.Certificates, c.ID)
	r.m.state.users[c.UserID] = u
	return nil
}

func (r memCerts) GetByValidationID(_ context.Context, validationID string) (models.Certificate, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	for _, c := range r.m.state.certs {
		if c.ValidationID == validationID {
			return c, nil
		}
	}
	return models.Certificate{}, repo.ErrNotFound
}

func (r memCerts) ListByUser(_ context.Context, userID string) ([]models.Certificate, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	out := []models.Certificate{}
	for _, c := range r.m.state.certs {
		if c.UserID == userID {
			out = append(out, c)
		}
	}
	return out, nil
}

type memTexts struct{ m *memStore }

func (r memTexts) Create(_ context.Context, t *models.Text) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	t.ID = r.m.state.id("x")
	r.m.state.texts[t.ID] = *t
	return nil
}

func (r memTexts) Random(_ context.Context, f models.TextFilter) (models.Text, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	for _, t := range r.m.state.texts {
		if (f.Language == "" || t.Language == f.Language) && (f.DifficultyLevel == "" || t.DifficultyLevel == f.DifficultyLevel) {
			return t, nil
		}
	}
	return models.Text{}, repo.ErrNotFound
}

func (r memTexts) List(_ context.Context) ([]models.Text, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	out := []models.Text{}
	for _, t := range r.m.state.texts {
		out = append(out, t)
	}
	return out, nil
}

func (r memTexts) Update(_ context.Context, id string, upd models.TextUpdate) (models.Text, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	cur, ok := r.m.state.texts[id]
	if !ok {
		return models.Text{}, repo.ErrNotFound
	}
	if upd.Text != nil {
		cur.Text = *upd.Text
	}
	if upd.Date != nil {
		cur.Date = *upd.Date
	}
	if upd.Language != nil {
		cur.Language = *upd.Language
	}
	if upd.DifficultyLevel != nil {
		cur.DifficultyLevel = *upd.DifficultyLevel
	}
	r.m.state.texts[id] = cur
	return cur, nil
}

func (r memTexts) Delete(_ context.Context, id string) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	if _, ok := r.m.state.texts[id]; !ok {
		return repo.ErrNotFound
	}
	delete(r.m.state.texts, id)
	return nil
}

// syncJobs runs submitted work inline.
type syncJobs struct{ err error }

func (j syncJobs) Submit(f func()) error {
	if j.err != nil {
		return j.err
	}
	f()
	return nil
}

type recordingMailer struct {
	mu   sync.Mutex
	sent []mailer.Message
	err  error
}

func (r *recordingMailer) Send(_ context.Context, m mailer.Message) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sent = append(r.sent, m)
	return r.err
}

// memLeaders is an in-memory cache.Leaderboard with generations.
type memLeaders struct {
	mu          sync.Mutex
	gen         int64
	pages       map[int][]models.TypingTest
	invalidated int
	getErr      error
}

func newMemLeaders() *memLeaders { return &memLeaders{pages: map[int][]models.TypingTest{}} }

func (c *memLeaders) Get(_ context.Context, limit int) ([]models.TypingTest, int64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.getErr != nil {
		return nil, 0, c.getErr
	}
	p, ok := c.pages[limit]
	if !ok {
		return nil, c.gen, cache.ErrCacheMiss
	}
	return p, c.gen, nil
}

func (c *memLeaders) Set(_ context.Context, gen int64, limit int, tests []models.TypingTest) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if gen != c.gen {
		return nil
	}
	c.pages[limit] = tests
	return nil
}

func (c *memLeaders) Invalidate(context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.pages = map[int][]models.TypingTest{}
	c.gen++
	c.invalidated++
	return nil
}
