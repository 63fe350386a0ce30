package handlers

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/baharkarakas/typing-backend/internal/api/httpx"
	"github.com/baharkarakas/typing-backend/internal/api/validate"
	"github.com/baharkarakas/typing-backend/internal/middleware"
	"github.com/baharkarakas/typing-backend/internal/models"
	"github.com/baharkarakas/typing-backend/internal/services"
)

type UserService interface {
	Register(ctx context.Context, name, email, password string) (string, models.User, error)
	Login(ctx context.Context, email, password string) (string, models.User, error)
	AdminLogin(ctx context.Context, email, password string) (string, error)
	Profile(ctx context.Context, id string) (models.User, error)
	RequestMagicLogin(ctx context.Context, email string) (bool, error)
	VerifyMagicLogin(ctx context.Context, token string) (string, error)
	List(ctx context.Context) ([]models.User, error)
	Update(ctx context.Context, id string, upd models.UserUpdate) (models.User, error)
	SetBlocked(ctx context.Context, id string, blocked bool) (models.User, error)
	Delete(ctx context.Context, id string) error
}

type TypingTestService interface {
	Submit(ctx context.Context, userID string, in services.SubmitInput) (services.SubmitResult, error)
	List(ctx context.Context, userID string, limit int) ([]models.TypingTest, error)
	Leaders(ctx context.Context, limit int) ([]models.TypingTest, error)
	Summary(ctx context.Context, userID string) (models.Summary, error)
	CPMStatistics(ctx context.Context, userID, language string) ([]models.CPMPoint, error)
}

type TextService interface {
	Create(ctx context.Context, in services.TextInput) (models.Text, error)
	Random(ctx context.Context, language, difficulty string) (models.Text, error)
	List(ctx context.Context) ([]models.Text, error)
	Update(ctx context.Context, id string, p services.TextPatch) (models.Text, error)
	Delete(ctx context.Context, id string) error
}

type CertificateService interface {
	ListByUser(ctx context.Context, userID string) ([]models.Certificate, error)
	Verify(ctx context.Context, validationID string) (models.Certificate, error)
}

type message struct {
	Message string `json:"message"`
}

// writeErr maps service errors to status codes. Unknown errors are logged and hidden.
func writeErr(w http.ResponseWriter, r *http.Request, log *slog.Logger, err error) {
	var verrs validate.Errs
	switch {
	case errors.As(err, &verrs):
		httpx.WriteError(w, http.StatusBadRequest, verrs.Message())
	case errors.Is(err, httpx.ErrInvalidBody):
		httpx.WriteError(w, http.StatusBadRequest, "Invalid request body")
	case errors.Is(err, services.ErrUserNotFound):
		httpx.WriteError(w, http.StatusNotFound, "User not found")
	case errors.Is(err, services.ErrEmailTaken):
		httpx.WriteError(w, http.StatusConflict, "Email is already in use")
	case errors.Is(err, services.ErrInvalidCredentials):
		httpx.WriteError(w, http.StatusUnauthorized, "Invalid credentials")
	case errors.Is(err, services.ErrNotAdmin):
		httpx.WriteError(w, http.StatusUnauthorized, "Unauthorized")
	case errors.Is(err, services.ErrUserBlocked):
		httpx.WriteError(w, http.StatusForbidden, "User is blocked")
	case errors.Is(err, services.ErrInvalidToken):
		httpx.WriteError(w, http.StatusBadRequest, "Invalid or expired token")
	case errors.Is(err, services.ErrTextNotFound):
		httpx.WriteError(w, http.StatusNotFound, "Text not found")
	case errors.Is(err, services.ErrCertificateNotFound):
		httpx.WriteError(w, http.StatusNotFound, "Certificate not found")
	default:
		log.Error("request failed",
			"request_id", middleware.RequestIDFrom(r.Context()),
			"method", r.Method,
			"path", r.URL.Path,
			"err", err,
		)
		httpx.WriteError(w, http.StatusInternalServerError, "Internal server error")
	}
}

// pathID returns the {id} URL param when it is a uuid.
func pathID(r *http.Request) (string, bool) {
	id := chi.URLParam(r, "id")
	if _, err := uuid.Parse(id); err != nil {
		return "", false
	}
	return id, true
}

// queryLimit returns 0 for a missing or malformed limit; services apply the default.
func queryLimit(r *http.Request) int {
	n, err := strconv.Atoi(r.URL.Query().Get("limit"))
	if err != nil {
		return 0
	}
	return n
}

// callerID is set by middleware.Auth on every authenticated route.
func callerID(r *http.Request) string {
	id, _ := middleware.UserID(r.Context())
	return id
}
