package handlers

import (
	"log/slog"
	"net/http"

	"github.com/baharkarakas/typing-backend/internal/api/httpx"
	"github.com/baharkarakas/typing-backend/internal/models"
)

type AuthHandler struct {
	Users UserService
	Log   *slog.Logger
}

func NewAuthHandler(us UserService, log *slog.Logger) *AuthHandler {
	return &AuthHandler{Users: us, Log: log}
}

type credentialsReq struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type authResp struct {
	Message string         `json:"message"`
	Token   string         `json:"token"`
	User    models.UserRef `json:"user"`
}

func ref(u models.User) models.UserRef {
	return models.UserRef{ID: u.ID, Name: u.Name, Email: u.Email}
}

func (h *AuthHandler) SignUp(w http.ResponseWriter, r *http.Request) {
	var req credentialsReq
	if err := httpx.DecodeJSON(r, &req); err != nil {
		writeErr(w, r, h.Log, err)
		return
	}
	tok, u, err := h.Users.Register(r.Context(), req.Name, req.Email, req.Password)
	if err != nil {
		writeErr(w, r, h.Log, err)
		return
	}
	httpx.WriteJSON(w, http.StatusCreated, authResp{Message: "User created successfully", Token: tok, User: ref(u)})
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req credentialsReq
	if err := httpx.DecodeJSON(r, &req); err != nil {
		writeErr(w, r, h.Log, err)
		return
	}
	tok, u, err := h.Users.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		writeErr(w, r, h.Log, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, authResp{Message: "Login successful", Token: tok, User: ref(u)})
}

func (h *AuthHandler) Profile(w http.ResponseWriter, r *http.Request) {
	u, err := h.Users.Profile(r.Context(), callerID(r))
	if err != nil {
		writeErr(w, r, h.Log, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, map[string]models.User{"user": u})
}

func (h *AuthHandler) MagicLogin(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email string `json:"email"`
	}
	if err := httpx.DecodeJSON(r, &req); err != nil {
		writeErr(w, r, h.Log, err)
		return
	}
	sent, err := h.Users.RequestMagicLogin(r.Context(), req.Email)
	if err != nil {
		writeErr(w, r, h.Log, err)
		return
	}
	msg := "If that email exists, a magic login link was sent."
	if sent {
		msg = "Magic login link sent."
	}
	httpx.WriteJSON(w, http.StatusOK, message{Message: msg})
}

func (h *AuthHandler) VerifyMagicLogin(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Token string `json:"token"`
	}
	if err := httpx.DecodeJSON(r, &req); err != nil {
		writeErr(w, r, h.Log, err)
		return
	}
	tok, err := h.Users.VerifyMagicLogin(r.Context(), req.Token)
	if err != nil {
		writeErr(w, r, h.Log, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, map[string]string{"token": tok})
}
