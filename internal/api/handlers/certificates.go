package handlers

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/baharkarakas/typing-backend/internal/api/httpx"
	"github.com/baharkarakas/typing-backend/internal/models"
)

type CertificateHandler struct {
	Certs CertificateService
	Log   *slog.Logger
}

func NewCertificateHandler(cs CertificateService, log *slog.Logger) *CertificateHandler {
	return &CertificateHandler{Certs: cs, Log: log}
}

func (h *CertificateHandler) List(w http.ResponseWriter, r *http.Request) {
	certs, err := h.Certs.ListByUser(r.Context(), callerID(r))
	if err != nil {
		writeErr(w, r, h.Log, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, map[string][]models.Certificate{"certificates": certs})
}

func (h *CertificateHandler) Verify(w http.ResponseWriter, r *http.Request) {
	c, err := h.Certs.Verify(r.Context(), chi.URLParam(r, "validationId"))
	if err != nil {
		writeErr(w, r, h.Log, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, map[string]models.Certificate{"certificate": c})
}
