package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/taskhub/student-task-service/internal/entity"
	"github.com/taskhub/student-task-service/internal/usecase"
)

type AuthHandler struct {
	authService *usecase.AuthService
}

func NewAuthHandler(authService *usecase.AuthService) *AuthHandler {
	return &AuthHandler{
		authService: authService,
	}
}

func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req entity.RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondMessage(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	resp, err := h.authService.Register(r.Context(), &req)
	if err != nil {
		switch err {
		case entity.ErrInvalidUserData:
			respondMessage(w, http.StatusBadRequest, "Name, email and password (8+ chars) are required")
		case entity.ErrUserExists:
			respondMessage(w, http.StatusConflict, "User with this email already exists")
		default:
			respondMessage(w, http.StatusInternalServerError, "Failed to register")
		}
		return
	}

	respondJSON(w, http.StatusCreated, resp)
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req entity.LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondMessage(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	resp, err := h.authService.Login(r.Context(), &req)
	if err != nil {
		switch err {
		case entity.ErrInvalidCredentials:
			respondMessage(w, http.StatusUnauthorized, "Invalid email or password")
		default:
			respondMessage(w, http.StatusInternalServerError, "Failed to login")
		}
		return
	}

	respondJSON(w, http.StatusOK, resp)
}

func (h *AuthHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	var req entity.RefreshTokenRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondMessage(w, http.StatusBadRequest, "Invalid JSON")
		return
	}
	if req.RefreshToken == "" {
		respondMessage(w, http.StatusBadRequest, "Refresh token is required")
		return
	}

	resp, err := h.authService.RefreshToken(r.Context(), req.RefreshToken)
	if err != nil {
		switch err {
		case entity.ErrTokenExpired, entity.ErrTokenInvalid:
			respondMessage(w, http.StatusUnauthorized, "Invalid or expired refresh token")
		default:
			respondMessage(w, http.StatusInternalServerError, "Failed to refresh token")
		}
		return
	}

	respondJSON(w, http.StatusOK, resp)
}
