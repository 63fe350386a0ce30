package handlers

import (
	"log/slog"
	"net/http"

	"github.com/baharkarakas/typing-backend/internal/api/httpx"
	"github.com/baharkarakas/typing-backend/internal/models"
)

type AdminHandler struct {
	Users UserService
	Log   *slog.Logger
}

func NewAdminHandler(us UserService, log *slog.Logger) *AdminHandler {
	return &AdminHandler{Users: us, Log: log}
}

func (h *AdminHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req credentialsReq
	if err := httpx.DecodeJSON(r, &req); err != nil {
		writeErr(w, r, h.Log, err)
		return
	}
	tok, err := h.Users.AdminLogin(r.Context(), req.Email, req.Password)
	if err != nil {
		writeErr(w, r, h.Log, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, map[string]string{"token": tok})
}

func (h *AdminHandler) ListUsers(w http.ResponseWriter, r *http.Request) {
	users, err := h.Users.List(r.Context())
	if err != nil {
		writeErr(w, r, h.Log, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, map[string][]models.User{"users": users})
}

func (h *AdminHandler) UpdateUser(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		httpx.WriteError(w, http.StatusNotFound, "User not found")
		return
	}
	var req struct {
		Name       *string `json:"name"`
		Email      *string `json:"email"`
		IsVerified *bool   `json:"isVerified"`
	}
	if err := httpx.DecodeJSON(r, &req); err != nil {
		writeErr(w, r, h.Log, err)
		return
	}
	u, err := h.Users.Update(r.Context(), id, models.UserUpdate{Name: req.Name, Email: req.Email, IsVerified: req.IsVerified})
	if err != nil {
		writeErr(w, r, h.Log, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, u)
}

func (h *AdminHandler) BlockUser(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		httpx.WriteError(w, http.StatusNotFound, "User not found")
		return
	}
	var req struct {
		Block *bool `json:"block"`
	}
	if err := httpx.DecodeJSON(r, &req); err != nil {
		writeErr(w, r, h.Log, err)
		return
	}
	if req.Block == nil {
		httpx.WriteError(w, http.StatusBadRequest, "block must be a boolean")
		return
	}
	u, err := h.Users.SetBlocked(r.Context(), id, *req.Block)
	if err != nil {
		writeErr(w, r, h.Log, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, u)
}

func (h *AdminHandler) DeleteUser(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		httpx.WriteError(w, http.StatusNotFound, "User not found")
		return
	}
	if err := h.Users.Delete(r.Context(), id); err != nil {
		writeErr(w, r, h.Log, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, message{Message: "User deleted successfully"})
}
