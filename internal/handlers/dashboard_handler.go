package handlers

import (
	"context"
	"database/sql"
	"net/http"
	"strings"
	"sync"

	"networth/internal/middleware"
	"networth/internal/models"
	"networth/internal/repository"
	"networth/internal/services"
)

type DashboardHandler struct {
	assets       repository.AssetRepository
	users        repository.UserRepository
	converter    *services.Converter
	homeCurrency string
}

func NewDashboardHandler(db *sql.DB, converter *services.Converter, homeCurrency string) *DashboardHandler {
	return &DashboardHandler{
		assets:       repository.NewAssetRepository(db),
		users:        repository.NewUserRepository(db),
		converter:    converter,
		homeCurrency: homeCurrency,
	}
}

// displayCurrency picks, in order: explicit query param, the user's saved
// preference, the configured home currency.
func (h *DashboardHandler) displayCurrency(r *http.Request, userID string) string {
	if c := strings.ToUpper(strings.TrimSpace(r.URL.Query().Get("currency"))); c != "" {
		return c
	}
	if user, err := h.users.GetByID(r.Context(), userID); err == nil && user.Currency != "" {
		return strings.ToUpper(user.Currency)
	}
	return strings.ToUpper(h.homeCurrency)
}

// rateTable prefetches one conversion rate per distinct source currency. The
// fetches run concurrently so a slow quote for one currency does not serialize
// the rest of the dashboard.
func (h *DashboardHandler) rateTable(ctx context.Context, currencies map[string]struct{}, display string) map[string]float64 {
	rates := map[string]float64{display: 1}

	var wg sync.WaitGroup
	var mu sync.Mutex
	for currency := range currencies {
		if currency == display {
			continue
		}
		wg.Add(1)
		go func(from string) {
			defer wg.Done()
			rate := h.converter.Rate(ctx, from, display)
			mu.Lock()
			rates[from] = rate
			mu.Unlock()
		}(currency)
	}
	wg.Wait()

	return rates
}

// Summary godoc
// @Tags Dashboard
// @Summary Net-worth summary across all asset types
// @Param currency query string false "Display currency (defaults to the user's preference)"
// @Produce json
// @Success 200 {object} models.DashboardSummary
// @Router /dashboard [get]
func (h *DashboardHandler) Summary(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := middleware.UserID(ctx)
	display := h.displayCurrency(r, userID)

	holdings, err := h.assets.ListHoldings(ctx, userID)
	if err != nil {
		writeJSONError(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	loans, err := h.assets.ListLoans(ctx, userID)
	if err != nil {
		writeJSONError(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	policies, err := h.assets.ListInsurance(ctx, userID)
	if err != nil {
		writeJSONError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	currencies := make(map[string]struct{})
	for _, hld := range holdings {
		currencies[strings.ToUpper(hld.Currency)] = struct{}{}
	}
	for _, l := range loans {
		currencies[strings.ToUpper(l.Currency)] = struct{}{}
	}
	for _, p := range policies {
		currencies[strings.ToUpper(p.Currency)] = struct{}{}
	}
	rates := h.rateTable(ctx, currencies, display)

	convert := func(amount float64, from string) float64 {
		rate, ok := rates[strings.ToUpper(from)]
		if !ok {
			rate = 1
		}
		return amount * rate
	}

	var breakdown models.DashboardBreakdown
	for _, hld := range holdings {
		value := convert(hld.Value, hld.Currency)
		switch hld.Category {
		case models.CategoryBankAccounts:
			breakdown.BankAccounts += value
		case models.CategoryTermDeposits:
			breakdown.TermDeposits += value
		case models.CategoryStocks:
			breakdown.Stocks += value
		case models.CategoryMetals:
			breakdown.Metals += value
		case models.CategoryRealEstate:
			breakdown.RealEstate += value
		case models.CategoryPension:
			breakdown.Pension += value
		}
	}

	loansByType := make(map[string]float64)
	for _, l := range loans {
		value := convert(l.Outstanding, l.Currency)
		breakdown.Loans += value
		loansByType[l.LoanType] += value
	}

	lifeCoverByPerson := make(map[string]float64)
	var lifeCover float64
	for _, p := range policies {
		breakdown.InsuranceValue += convert(p.PayoutValue, p.Currency)
		if strings.EqualFold(p.PolicyType, "Life") {
			cover := convert(p.SumAssured, p.Currency)
			lifeCover += cover
			lifeCoverByPerson[p.InsuredName] += cover
		}
	}

	totalAssets := breakdown.BankAccounts + breakdown.TermDeposits + breakdown.Stocks +
		breakdown.Metals + breakdown.RealEstate + breakdown.Pension

	summary := models.DashboardSummary{
		NetAssetValue:         totalAssets + breakdown.InsuranceValue - breakdown.Loans,
		TotalAssets:           totalAssets,
		TotalLiabilities:      breakdown.Loans,
		QuickLiquidAssets:     breakdown.BankAccounts + breakdown.TermDeposits + breakdown.Stocks + breakdown.Metals,
		LifeInsuranceCover:    lifeCover,
		LifeInsuranceByPerson: lifeCoverByPerson,
		LoansByType:           loansByType,
		DisplayCurrency:       display,
		Breakdown:             breakdown,
	}
	writeJSON(w, http.StatusOK, summary)
}
