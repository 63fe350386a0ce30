package handlers

import (
	"log/slog"
	"net/http"

	"github.com/baharkarakas/typing-backend/internal/api/httpx"
	"github.com/baharkarakas/typing-backend/internal/models"
	"github.com/baharkarakas/typing-backend/internal/services"
)

type TypingTestHandler struct {
	Tests TypingTestService
	Log   *slog.Logger
}

func NewTypingTestHandler(ts TypingTestService, log *slog.Logger) *TypingTestHandler {
	return &TypingTestHandler{Tests: ts, Log: log}
}

type submitResp struct {
	Message     string              `json:"message"`
	Test        models.TypingTest   `json:"test"`
	Certificate *models.Certificate `json:"certificate"`
}

type testsResp struct {
	Tests []models.TypingTest `json:"tests"`
}

func (h *TypingTestHandler) Submit(w http.ResponseWriter, r *http.Request) {
	var in services.SubmitInput
	if err := httpx.DecodeJSON(r, &in); err != nil {
		if field, ok := httpx.MistypedField(err); ok {
			if ferr := services.SubmitFieldError(field); ferr != nil {
				err = ferr
			}
		}
		writeErr(w, r, h.Log, err)
		return
	}
	res, err := h.Tests.Submit(r.Context(), callerID(r), in)
	if err != nil {
		writeErr(w, r, h.Log, err)
		return
	}
	httpx.WriteJSON(w, http.StatusCreated, submitResp{Message: "Test saved", Test: res.Test, Certificate: res.Certificate})
}

func (h *TypingTestHandler) List(w http.ResponseWriter, r *http.Request) {
	tests, err := h.Tests.List(r.Context(), callerID(r), queryLimit(r))
	if err != nil {
		writeErr(w, r, h.Log, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, testsResp{Tests: tests})
}

func (h *TypingTestHandler) Leaders(w http.ResponseWriter, r *http.Request) {
	tests, err := h.Tests.Leaders(r.Context(), queryLimit(r))
	if err != nil {
		writeErr(w, r, h.Log, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, testsResp{Tests: tests})
}

func (h *TypingTestHandler) Summary(w http.ResponseWriter, r *http.Request) {
	s, err := h.Tests.Summary(r.Context(), callerID(r))
	if err != nil {
		writeErr(w, r, h.Log, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, map[string]models.Summary{"summary": s})
}

func (h *TypingTestHandler) CPMStatistics(w http.ResponseWriter, r *http.Request) {
	pts, err := h.Tests.CPMStatistics(r.Context(), callerID(r), r.URL.Query().Get("language"))
	if err != nil {
		writeErr(w, r, h.Log, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, pts)
}
