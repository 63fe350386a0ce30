package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/baharkarakas/typing-backend/internal/api/validate"
	"github.com/baharkarakas/typing-backend/internal/models"
	repo "github.com/baharkarakas/typing-backend/internal/repository"
)

// AnyFilter disables a random-text filter, like an empty value.
const AnyFilter = "Any"

type TextInput struct {
	Text            string     `json:"text"`
	Date            *time.Time `json:"date"`
	Language        string     `json:"language"`
	DifficultyLevel string     `json:"difficultyLevel"`
}

func (in TextInput) Validate() error {
	const msg = "Text, language and difficultyLevel are required"
	return validate.First(
		validate.Required("text", in.Text, msg),
		validate.Required("language", in.Language, msg),
		validate.Required("difficultyLevel", in.DifficultyLevel, msg),
	)
}

// TextPatch is a partial text update; omitted fields keep their value.
type TextPatch struct {
	Text            *string    `json:"text"`
	Date            *time.Time `json:"date"`
	Language        *string    `json:"language"`
	DifficultyLevel *string    `json:"difficultyLevel"`
}

func (p TextPatch) Validate() error {
	const msg = "Text, language and difficultyLevel cannot be empty"
	check := func(field string, v *string) *validate.ErrField {
		if v == nil {
			return nil
		}
		return validate.Required(field, *v, msg)
	}
	return validate.First(
		check("text", p.Text),
		check("language", p.Language),
		check("difficultyLevel", p.DifficultyLevel),
	)
}

type TextService struct {
	store repo.Store
	now   func() time.Time
}

func NewTextService(store repo.Store) *TextService {
	return &TextService{store: store, now: time.Now}
}

func (s *TextService) Create(ctx context.Context, in TextInput) (models.Text, error) {
	if err := in.Validate(); err != nil {
		return models.Text{}, err
	}
	t := models.Text{
		Text:            in.Text,
		Date:            s.now().UTC(),
		Language:        strings.TrimSpace(in.Language),
		DifficultyLevel: strings.TrimSpace(in.DifficultyLevel),
	}
	if in.Date != nil {
		t.Date = *in.Date
	}
	if err := s.store.Repos().Texts.Create(ctx, &t); err != nil {
		return models.Text{}, err
	}
	return t, nil
}

// Import inserts texts in one transaction; a single invalid entry aborts all.
func (s *TextService) Import(ctx context.Context, in []TextInput) (int, error) {
	for _, t := range in {
		if err := t.Validate(); err != nil {
			return 0, err
		}
	}
	err := s.store.WithTx(ctx, func(ctx context.Context, r repo.Repositories) error {
		for _, ti := range in {
			t := models.Text{
				Text:            ti.Text,
				Date:            s.now().UTC(),
				Language:        strings.TrimSpace(ti.Language),
				DifficultyLevel: strings.TrimSpace(ti.DifficultyLevel),
			}
			if ti.Date != nil {
				t.Date = *ti.Date
			}
			if err := r.Texts.Create(ctx, &t); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return len(in), nil
}

func (s *TextService) Random(ctx context.Context, language, difficulty string) (models.Text, error) {
	f := models.TextFilter{Language: filterValue(language), DifficultyLevel: filterValue(difficulty)}
	t, err := s.store.Repos().Texts.Random(ctx, f)
	return t, textErr(err)
}

func (s *TextService) List(ctx context.Context) ([]models.Text, error) {
	return s.store.Repos().Texts.List(ctx)
}

func (s *TextService) Update(ctx context.Context, id string, p TextPatch) (models.Text, error) {
	if err := p.Validate(); err != nil {
		return models.Text{}, err
	}
	t, err := s.store.Repos().Texts.Update(ctx, id, models.TextUpdate{
		Text:            p.Text,
		Date:            p.Date,
		Language:        trimmed(p.Language),
		DifficultyLevel: trimmed(p.DifficultyLevel),
	})
	return t, textErr(err)
}

func trimmed(v *string) *string {
	if v == nil {
		return nil
	}
	t := strings.TrimSpace(*v)
	return &t
}

func (s *TextService) Delete(ctx context.Context, id string) error {
	return textErr(s.store.Repos().Texts.Delete(ctx, id))
}

func filterValue(v string) string {
	v = strings.TrimSpace(v)
	if strings.EqualFold(v, AnyFilter) {
		return ""
	}
	return v
}

func textErr(err error) error {
	if errors.Is(err, repo.ErrNotFound) {
		return ErrTextNotFound
	}
	return err
}
