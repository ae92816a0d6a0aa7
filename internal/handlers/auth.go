package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/mlecomte/papote/internal/auth"
	"github.com/mlecomte/papote/internal/service"
)

type Credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type AuthHandler struct {
	Service *service.ChatService
}

func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var creds Credentials
	if err := json.NewDecoder(r.Body).Decode(&creds); err != nil {
		respondError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if creds.Email == "" || creds.Password == "" {
		respondError(w, http.StatusBadRequest, "email and password are required")
		return
	}

	if err := h.Service.Register(creds.Email, creds.Password); err != nil {
		serviceError(w, err)
		return
	}

	respondJSON(w, http.StatusCreated, map[string]string{"message": "Registration successful!"})
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var creds Credentials
	if err := json.NewDecoder(r.Body).Decode(&creds); err != nil {
		respondError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if creds.Email == "" || creds.Password == "" {
		respondError(w, http.StatusBadRequest, "email and password are required")
		return
	}

	user, err := h.Service.Login(creds.Email, creds.Password)
	if err != nil {
		serviceError(w, err)
		return
	}

	// Signed session cookie; the sender fallback for POST /messages and the
	// websocket handshake read it back.
	http.SetCookie(w, &http.Cookie{
		Name:  auth.CookieName,
		Value: auth.SignCookie(user.Email),
		Path:  "/",
	})

	respondJSON(w, http.StatusOK, map[string]string{
		"message":   "Login successful!",
		"userEmail": user.Email,
	})
}
