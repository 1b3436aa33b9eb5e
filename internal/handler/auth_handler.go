package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/Raymond9734/customer-directory-api/internal/service"
)

// AuthHandler handles authentication HTTP requests
type AuthHandler struct {
	customerService service.CustomerService
	logger          *slog.Logger
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(customerService service.CustomerService, logger *slog.Logger) *AuthHandler {
	return &AuthHandler{
		customerService: customerService,
		logger:          logger,
	}
}

// LoginRequest holds login credentials
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginResponse carries the issued token and the authenticated customer
type LoginResponse struct {
	Token    string                `json:"token"`
	Customer *service.CustomerView `json:"customer"`
}

// Login handles POST /api/v1/auth/login
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest

	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "INVALID_JSON", "Invalid JSON format")
		return
	}

	if req.Email == "" || req.Password == "" {
		respondError(w, http.StatusBadRequest, "INVALID_INPUT", "email and password are required")
		return
	}

	customer, tokenString, err := h.customerService.Authenticate(r.Context(), req.Email, req.Password)
	if err != nil {
		handleError(w, err, h.logger)
		return
	}

	w.Header().Set("Authorization", tokenString)
	respondSuccess(w, LoginResponse{
		Token:    tokenString,
		Customer: customer,
	})
}
