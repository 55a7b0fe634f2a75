package handlers

import (
	"database/sql"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/go-playground/validator/v10"

	"networth/internal/middleware"
	"networth/internal/models"
	"networth/internal/repository"
)

type UserHandler struct {
	users repository.UserRepository
	v     *validator.Validate
}

func NewUserHandler(db *sql.DB) *UserHandler {
	return &UserHandler{
		users: repository.NewUserRepository(db),
		v:     validator.New(),
	}
}

// GetCurrency godoc
// @Tags User
// @Summary Preferred display currency of the signed-in user
// @Produce json
// @Success 200 {object} object
// @Router /user/currency [get]
func (h *UserHandler) GetCurrency(w http.ResponseWriter, r *http.Request) {
	userID := middleware.UserID(r.Context())

	user, err := h.users.GetByID(r.Context(), userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			writeJSONError(w, http.StatusNotFound, "User not found")
			return
		}
		writeJSONError(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"currency": user.Currency})
}

// UpdateCurrency godoc
// @Tags User
// @Summary Update the preferred display currency
// @Accept json
// @Produce json
// @Success 200 {object} object
// @Router /user/currency [patch]
func (h *UserHandler) UpdateCurrency(w http.ResponseWriter, r *http.Request) {
	userID := middleware.UserID(r.Context())

	var req models.UpdateCurrencyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSONError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	currency := strings.ToUpper(strings.TrimSpace(req.Currency))
	if err := h.v.Var(currency, "required,len=3,alpha"); err != nil {
		writeJSONError(w, http.StatusBadRequest, "Invalid currency code")
		return
	}

	if err := h.users.UpdateCurrency(r.Context(), userID, currency); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			writeJSONError(w, http.StatusNotFound, "User not found")
			return
		}
		writeJSONError(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"currency": currency})
}
