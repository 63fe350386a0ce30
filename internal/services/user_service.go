package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"strings"
	"time"

	"github.com/baharkarakas/typing-backend/internal/api/validate"
	"github.com/baharkarakas/typing-backend/internal/auth"
	"github.com/baharkarakas/typing-backend/internal/mailer"
	"github.com/baharkarakas/typing-backend/internal/models"
	repo "github.com/baharkarakas/typing-backend/internal/repository"
)

const mailTimeout = 15 * time.Second

// Enqueuer runs work in the background.
type Enqueuer interface {
	Submit(f func()) error
}

type UserService struct {
	store       repo.Store
	tm          *auth.TokenManager
	mail        mailer.Mailer
	jobs        Enqueuer
	frontendURL string
	log         *slog.Logger
}

func NewUserService(store repo.Store, tm *auth.TokenManager, mail mailer.Mailer, jobs Enqueuer, frontendURL string, log *slog.Logger) *UserService {
	return &UserService{
		store:       store,
		tm:          tm,
		mail:        mail,
		jobs:        jobs,
		frontendURL: strings.TrimRight(frontendURL, "/"),
		log:         log,
	}
}

// Register creates a User-role account and returns a 7-day access token.
func (s *UserService) Register(ctx context.Context, name, email, password string) (string, models.User, error) {
	name, email = strings.TrimSpace(name), strings.TrimSpace(email)
	const msg = "Name, email and password are required"
	if err := validate.First(
		validate.Required("name", name, msg),
		validate.Required("email", email, msg),
		validate.Required("password", password, msg),
		validate.Email("email", email, "Email is invalid"),
	); err != nil {
		return "", models.User{}, err
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		return "", models.User{}, err
	}
	u := models.User{Name: name, Email: email, PasswordHash: hash, Role: models.RoleUser}
	if err := u.Validate(); err != nil {
		return "", models.User{}, validate.Errs{{Field: "user", Msg: err.Error()}}
	}
	if err := s.store.Repos().Users.Create(ctx, &u); err != nil {
		if errors.Is(err, repo.ErrConflict) {
			return "", models.User{}, ErrEmailTaken
		}
		return "", models.User{}, err
	}

	tok, err := s.tm.Issue(u.ID, u.Role, auth.PurposeAccess, auth.UserTokenTTL)
	if err != nil {
		return "", models.User{}, err
	}
	s.log.Info("user registered", "user_id", u.ID)
	return tok, u, nil
}

func (s *UserService) Login(ctx context.Context, email, password string) (string, models.User, error) {
	u, err := s.byEmail(ctx, email)
	if err != nil {
		return "", models.User{}, err
	}
	if auth.VerifyPassword(password, u.PasswordHash) != nil {
		return "", models.User{}, ErrInvalidCredentials
	}
	if u.IsBlocked {
		return "", models.User{}, ErrUserBlocked
	}
	tok, err := s.tm.Issue(u.ID, u.Role, auth.PurposeAccess, auth.UserTokenTTL)
	if err != nil {
		return "", models.User{}, err
	}
	return tok, u, nil
}

// AdminLogin issues a 1-hour Admin token. Unknown emails and non-admins get ErrNotAdmin.
func (s *UserService) AdminLogin(ctx context.Context, email, password string) (string, error) {
	u, err := s.byEmail(ctx, email)
	if errors.Is(err, ErrUserNotFound) {
		return "", ErrNotAdmin
	}
	if err != nil {
		return "", err
	}
	if !u.IsAdmin() {
		return "", ErrNotAdmin
	}
	if auth.VerifyPassword(password, u.PasswordHash) != nil {
		return "", ErrInvalidCredentials
	}
	return s.tm.Issue(u.ID, models.RoleAdmin, auth.PurposeAccess, auth.AdminTokenTTL)
}

func (s *UserService) Profile(ctx context.Context, id string) (models.User, error) {
	u, err := s.store.Repos().Users.GetByID(ctx, id)
	return u, userErr(err)
}

// RequestMagicLogin queues a sign-in link for a known email. It reports false
// for unknown addresses so callers can answer generically.
func (s *UserService) RequestMagicLogin(ctx context.Context, email string) (bool, error) {
	email = strings.TrimSpace(email)
	if err := validate.First(validate.Required("email", email, "Email is required")); err != nil {
		return false, err
	}
	u, err := s.byEmail(ctx, email)
	if errors.Is(err, ErrUserNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}

	tok, err := s.tm.Issue(u.ID, "", auth.PurposeMagicLogin, auth.MagicLinkTTL)
	if err != nil {
		return false, err
	}
	link := fmt.Sprintf("%s/magic-login?token=%s", s.frontendURL, url.QueryEscape(tok))
	msg := mailer.Message{
		To:      u.Email,
		Subject: "Your magic login link",
		HTML:    fmt.Sprintf(`<p>Click here: <a href="%s">%s</a></p>`, link, link),
	}

	err = s.jobs.Submit(func() {
		ctx, cancel := context.WithTimeout(context.Background(), mailTimeout)
		defer cancel()
		if err := s.mail.Send(ctx, msg); err != nil {
			s.log.Error("magic link delivery failed", "user_id", u.ID, "err", err)
		}
	})
	if err != nil {
		return false, err
	}
	return true, nil
}

// VerifyMagicLogin exchanges a magic-login token for a 7-day access token.
func (s *UserService) VerifyMagicLogin(ctx context.Context, token string) (string, error) {
	if err := validate.First(validate.Required("token", token, "Token is required")); err != nil {
		return "", err
	}
	claims, err := s.tm.Parse(token, auth.PurposeMagicLogin)
	if err != nil {
		return "", ErrInvalidToken
	}
	u, err := s.store.Repos().Users.GetByID(ctx, claims.UserID)
	if errors.Is(err, repo.ErrNotFound) {
		return "", ErrInvalidToken
	}
	if err != nil {
		return "", err
	}
	if u.IsBlocked {
		return "", ErrUserBlocked
	}
	return s.tm.Issue(u.ID, u.Role, auth.PurposeAccess, auth.UserTokenTTL)
}

func (s *UserService) List(ctx context.Context) ([]models.User, error) {
	return s.store.Repos().Users.List(ctx)
}

func (s *UserService) Update(ctx context.Context, id string, upd models.UserUpdate) (models.User, error) {
	if upd.Name != nil {
		n := strings.TrimSpace(*upd.Name)
		if err := validate.First(validate.Required("name", n, "Name cannot be empty")); err != nil {
			return models.User{}, err
		}
		upd.Name = &n
	}
	if upd.Email != nil {
		e := strings.TrimSpace(*upd.Email)
		if err := validate.First(validate.Email("email", e, "Email is invalid")); err != nil {
			return models.User{}, err
		}
		upd.Email = &e
	}
	u, err := s.store.Repos().Users.Update(ctx, id, upd)
	if errors.Is(err, repo.ErrConflict) {
		return models.User{}, ErrEmailTaken
	}
	return u, userErr(err)
}

func (s *UserService) SetBlocked(ctx context.Context, id string, blocked bool) (models.User, error) {
	u, err := s.store.Repos().Users.SetBlocked(ctx, id, blocked)
	if err == nil {
		s.log.Info("user block changed", "user_id", id, "blocked", blocked)
	}
	return u, userErr(err)
}

func (s *UserService) Delete(ctx context.Context, id string) error {
	if err := userErr(s.store.Repos().Users.Delete(ctx, id)); err != nil {
		return err
	}
	s.log.Info("user deleted", "user_id", id)
	return nil
}

// EnsureAdmin creates an Admin account, or promotes the existing account with that email.
func (s *UserService) EnsureAdmin(ctx context.Context, name, email, password string) (models.User, bool, error) {
	var (
		out     models.User
		created bool
	)
	err := s.store.WithTx(ctx, func(ctx context.Context, r repo.Repositories) error {
		u, err := r.Users.GetByEmail(ctx, strings.TrimSpace(email))
		switch {
		case err == nil:
			if err := r.Users.SetRole(ctx, u.ID, models.RoleAdmin); err != nil {
				return err
			}
			u.Role = models.RoleAdmin
			out = u
			return nil
		case !errors.Is(err, repo.ErrNotFound):
			return err
		}

		if password == "" {
			return validate.Errs{{Field: "password", Msg: "password is required for a new admin"}}
		}
		hash, err := auth.HashPassword(password)
		if err != nil {
			return err
		}
		u = models.User{Name: strings.TrimSpace(name), Email: strings.TrimSpace(email), PasswordHash: hash, Role: models.RoleAdmin, IsVerified: true}
		if err := u.Validate(); err != nil {
			return validate.Errs{{Field: "user", Msg: err.Error()}}
		}
		if err := r.Users.Create(ctx, &u); err != nil {
			return err
		}
		out, created = u, true
		return nil
	})
	return out, created, err
}

func (s *UserService) byEmail(ctx context.Context, email string) (models.User, error) {
	u, err := s.store.Repos().Users.GetByEmail(ctx, strings.TrimSpace(email))
	return u, userErr(err)
}

func userErr(err error) error {
	if errors.Is(err, repo.ErrNotFound) {
		return ErrUserNotFound
	}
	return err
}
