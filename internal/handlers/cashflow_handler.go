package handlers

import (
	"database/sql"
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"

	"networth/internal/middleware"
	"networth/internal/models"
	"networth/internal/repository"
)

type CashFlowHandler struct {
	cashflows repository.CashFlowRepository
	users     repository.UserRepository
	v         *validator.Validate
}

func NewCashFlowHandler(db *sql.DB) *CashFlowHandler {
	return &CashFlowHandler{
		cashflows: repository.NewCashFlowRepository(db),
		users:     repository.NewUserRepository(db),
		v:         validator.New(),
	}
}

// currentFiscalYear follows the April-to-March convention: January through
// March belong to the year that started the previous April.
func currentFiscalYear(now time.Time) int {
	if now.Month() < time.April {
		return now.Year() - 1
	}
	return now.Year()
}

// List godoc
// @Tags CashFlow
// @Summary Cash flow entries for a fiscal year
// @Param year query int false "Fiscal year (defaults to the current one)"
// @Produce json
// @Success 200 {array} models.CashFlowEntry
// @Router /cashflow [get]
func (h *CashFlowHandler) List(w http.ResponseWriter, r *http.Request) {
	userID := middleware.UserID(r.Context())

	year := currentFiscalYear(time.Now())
	if raw := r.URL.Query().Get("year"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil {
			writeJSONError(w, http.StatusBadRequest, "Invalid year")
			return
		}
		year = parsed
	}

	entries, err := h.cashflows.ListByYear(r.Context(), userID, year)
	if err != nil {
		writeJSONError(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	writeJSON(w, http.StatusOK, entries)
}

// Save godoc
// @Tags CashFlow
// @Summary Replace the cash flow statement for a fiscal year
// @Accept json
// @Produce json
// @Success 200 {array} models.CashFlowEntry
// @Router /cashflow [post]
func (h *CashFlowHandler) Save(w http.ResponseWriter, r *http.Request) {
	userID := middleware.UserID(r.Context())

	var req models.SaveCashFlowRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSONError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if err := h.v.Struct(req); err != nil {
		writeJSONError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	// A token can outlive its user row (dropped database, deleted account);
	// writing rows for a missing user would only fail later on the FK.
	exists, err := h.users.Exists(r.Context(), userID)
	if err != nil {
		writeJSONError(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	if !exists {
		writeJSONError(w, http.StatusUnauthorized, "Your session has expired. Please sign out and sign in again.")
		return
	}

	saved, err := h.cashflows.ReplaceYear(r.Context(), userID, req.FiscalYear, req.Entries)
	if err != nil {
		writeJSONError(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	writeJSON(w, http.StatusOK, saved)
}
