package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/Raymond9734/customer-directory-api/internal/models"
	"github.com/Raymond9734/customer-directory-api/internal/service"
)

// CustomerHandler handles customer HTTP requests
type CustomerHandler struct {
	customerService service.CustomerService
	logger          *slog.Logger
}

// NewCustomerHandler creates a new customer handler
func NewCustomerHandler(customerService service.CustomerService, logger *slog.Logger) *CustomerHandler {
	return &CustomerHandler{
		customerService: customerService,
		logger:          logger,
	}
}

// ListCustomers handles GET /api/v1/customers
func (h *CustomerHandler) ListCustomers(w http.ResponseWriter, r *http.Request) {
	customers, err := h.customerService.List(r.Context())
	if err != nil {
		handleError(w, err, h.logger)
		return
	}

	respondSuccess(w, customers)
}

// GetCustomer handles GET /api/v1/customers/{id}
func (h *CustomerHandler) GetCustomer(w http.ResponseWriter, r *http.Request) {
	id, err := customerID(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, "INVALID_ID", "Invalid customer ID")
		return
	}

	customer, err := h.customerService.Get(r.Context(), id)
	if err != nil {
		handleError(w, err, h.logger)
		return
	}

	respondSuccess(w, customer)
}

// RegisterCustomer handles POST /api/v1/customers.
// The issued token travels back in the Authorization response header.
func (h *CustomerHandler) RegisterCustomer(w http.ResponseWriter, r *http.Request) {
	var req models.RegistrationRequest

	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "INVALID_JSON", "Invalid JSON format")
		return
	}

	customer, tokenString, err := h.customerService.Register(r.Context(), &req)
	if err != nil {
		handleError(w, err, h.logger)
		return
	}

	w.Header().Set("Authorization", tokenString)
	respondCreated(w, customer)
}

// UpdateCustomer handles PUT /api/v1/customers/{id}
func (h *CustomerHandler) UpdateCustomer(w http.ResponseWriter, r *http.Request) {
	id, err := customerID(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, "INVALID_ID", "Invalid customer ID")
		return
	}

	var req models.UpdateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "INVALID_JSON", "Invalid JSON format")
		return
	}

	if err := h.customerService.Update(r.Context(), id, &req); err != nil {
		handleError(w, err, h.logger)
		return
	}

	respondNoContent(w)
}

// DeleteCustomer handles DELETE /api/v1/customers/{id}
func (h *CustomerHandler) DeleteCustomer(w http.ResponseWriter, r *http.Request) {
	id, err := customerID(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, "INVALID_ID", "Invalid customer ID")
		return
	}

	if err := h.customerService.Delete(r.Context(), id); err != nil {
		handleError(w, err, h.logger)
		return
	}

	respondNoContent(w)
}

// customerID extracts the numeric customer ID from the route
func customerID(r *http.Request) (int64, error) {
	return strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
}
