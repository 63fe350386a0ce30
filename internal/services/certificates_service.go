package services

import (
	"context"
	"errors"

	"github.com/baharkarakas/typing-backend/internal/models"
	repo "github.com/baharkarakas/typing-backend/internal/repository"
)

type CertificateService struct {
	store repo.Store
}

func NewCertificateService(store repo.Store) *CertificateService {
	return &CertificateService{store: store}
}

func (s *CertificateService) ListByUser(ctx context.Context, userID string) ([]models.Certificate, error) {
	return s.store.Repos().Certificates.ListByUser(ctx, userID)
}

// Verify looks a certificate up by its public validation id.
func (s *CertificateService) Verify(ctx context.Context, validationID string) (models.Certificate, error) {
	c, err := s.store.Repos().Certificates.GetByValidationID(ctx, validationID)
	if errors.Is(err, repo.ErrNotFound) {
		return models.Certificate{}, ErrCertificateNotFound
	}
	return c, err
}
