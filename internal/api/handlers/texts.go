package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/baharkarakas/typing-backend/internal/api/httpx"
	"github.com/baharkarakas/typing-backend/internal/services"
)

type TextHandler struct {
	Texts TextService
	Log   *slog.Logger
}

func NewTextHandler(ts TextService, log *slog.Logger) *TextHandler {
	return &TextHandler{Texts: ts, Log: log}
}

func (h *TextHandler) Create(w http.ResponseWriter, r *http.Request) {
	var in services.TextInput
	if err := httpx.DecodeJSON(r, &in); err != nil {
		writeErr(w, r, h.Log, err)
		return
	}
	t, err := h.Texts.Create(r.Context(), in)
	if err != nil {
		writeErr(w, r, h.Log, err)
		return
	}
	httpx.WriteJSON(w, http.StatusCreated, t)
}

// Random keeps the {error} body clients of this endpoint expect.
func (h *TextHandler) Random(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	t, err := h.Texts.Random(r.Context(), q.Get("lang"), q.Get("difficultyLevel"))
	if errors.Is(err, services.ErrTextNotFound) {
		httpx.WriteJSON(w, http.StatusNotFound, map[string]string{"error": "No matching texts found"})
		return
	}
	if err != nil {
		writeErr(w, r, h.Log, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, t)
}

func (h *TextHandler) List(w http.ResponseWriter, r *http.Request) {
	texts, err := h.Texts.List(r.Context())
	if err != nil {
		writeErr(w, r, h.Log, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, texts)
}

func (h *TextHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		httpx.WriteError(w, http.StatusNotFound, "Text not found")
		return
	}
	var p services.TextPatch
	if err := httpx.DecodeJSON(r, &p); err != nil {
		writeErr(w, r, h.Log, err)
		return
	}
	t, err := h.Texts.Update(r.Context(), id, p)
	if err != nil {
		writeErr(w, r, h.Log, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, t)
}

func (h *TextHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		httpx.WriteError(w, http.StatusNotFound, "Text not found")
		return
	}
	if err := h.Texts.Delete(r.Context(), id); err != nil {
		writeErr(w, r, h.Log, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, message{Message: "Text deleted successfully"})
}
