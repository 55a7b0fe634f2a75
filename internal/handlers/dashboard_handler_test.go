package handlers

import (
	"context"
	"encoding/json"
	"math"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"

	"networth/internal/middleware"
	"networth/internal/models"
	"networth/internal/services"
)

type fixedRates struct {
	rates map[string]float64
}

func (f *fixedRates) Price(ctx context.Context, symbol string) (float64, error) {
	return f.rates[symbol], nil
}

func dashboardRequest(target string) *http.Request {
	req := httptest.NewRequest(http.MethodGet, target, nil)
	return req.WithContext(context.WithValue(req.Context(), middleware.CtxUserID, "u1"))
}

func TestDashboardSummaryConvertsAndTotals(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	mock.ExpectQuery(`SELECT 'bankAccounts' AS category`).
		WithArgs("u1").
		WillReturnRows(sqlmock.NewRows([]string{"category", "currency", "value"}).
			AddRow(models.CategoryBankAccounts, "USD", 1000.0).
			AddRow(models.CategoryBankAccounts, "GBP", 200.0).
			AddRow(models.CategoryStocks, "USD", 500.0).
			AddRow(models.CategoryPension, "USD", 2000.0))
	mock.ExpectQuery(`SELECT loan_type, currency, outstanding_balance FROM loans`).
		WithArgs("u1").
		WillReturnRows(sqlmock.NewRows([]string{"loan_type", "currency", "outstanding_balance"}).
			AddRow("Mortgage", "USD", 1500.0).
			AddRow("Car", "USD", 300.0))
	mock.ExpectQuery(`SELECT policy_type, insured_name`).
		WithArgs("u1").
		WillReturnRows(sqlmock.NewRows([]string{"policy_type", "insured_name", "currency", "sum_assured", "current_payout_value"}).
			AddRow("Life", "Ana", "USD", 100000.0, 250.0).
			AddRow("Vehicle", "Ana", "USD", 0.0, 0.0))

	converter := services.NewConverter(&fixedRates{rates: map[string]float64{"GBPUSD=X": 1.25}})
	h := NewDashboardHandler(db, converter, "USD")

	w := httptest.NewRecorder()
	h.Summary(w, dashboardRequest("/api/v1/dashboard?currency=USD"))

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d (%s)", w.Code, w.Body.String())
	}
	var summary models.DashboardSummary
	if err := json.Unmarshal(w.Body.Bytes(), &summary); err != nil {
		t.Fatalf("invalid json: %v", err)
	}

	// 1000 + 200*1.25 = 1250 bank, 500 stocks, 2000 pension.
	if math.Abs(summary.Breakdown.BankAccounts-1250) > 1e-9 {
		t.Fatalf("bankAccounts = %v", summary.Breakdown.BankAccounts)
	}
	if math.Abs(summary.TotalAssets-3750) > 1e-9 {
		t.Fatalf("totalAssets = %v", summary.TotalAssets)
	}
	if math.Abs(summary.TotalLiabilities-1800) > 1e-9 {
		t.Fatalf("totalLiabilities = %v", summary.TotalLiabilities)
	}
	// assets + insurance payout - loans.
	if math.Abs(summary.NetAssetValue-(3750+250-1800)) > 1e-9 {
		t.Fatalf("netAssetValue = %v", summary.NetAssetValue)
	}
	if math.Abs(summary.QuickLiquidAssets-1750) > 1e-9 {
		t.Fatalf("quickLiquidAssets = %v", summary.QuickLiquidAssets)
	}
	if summary.LifeInsuranceCover != 100000 {
		t.Fatalf("lifeInsuranceCover = %v", summary.LifeInsuranceCover)
	}
	if summary.LifeInsuranceByPerson["Ana"] != 100000 {
		t.Fatalf("lifeInsuranceByPerson = %v", summary.LifeInsuranceByPerson)
	}
	if summary.LoansByType["Mortgage"] != 1500 || summary.LoansByType["Car"] != 300 {
		t.Fatalf("loansByType = %v", summary.LoansByType)
	}
	if summary.DisplayCurrency != "USD" {
		t.Fatalf("displayCurrency = %q", summary.DisplayCurrency)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestDashboardFallsBackToUserPreference(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	mock.ExpectQuery(`SELECT id, email, mobile, password_hash, country, currency, created_at\s+FROM users\s+WHERE id = \$1`).
		WithArgs("u1").
		WillReturnRows(sqlmock.NewRows([]string{"id", "email", "mobile", "password_hash", "country", "currency", "created_at"}).
			AddRow("u1", "a@b.com", nil, "hash", "GB", "gbp", time.Now().UTC()))
	mock.ExpectQuery(`SELECT 'bankAccounts' AS category`).
		WillReturnRows(sqlmock.NewRows([]string{"category", "currency", "value"}))
	mock.ExpectQuery(`SELECT loan_type`).
		WillReturnRows(sqlmock.NewRows([]string{"loan_type", "currency", "outstanding_balance"}))
	mock.ExpectQuery(`SELECT policy_type`).
		WillReturnRows(sqlmock.NewRows([]string{"policy_type", "insured_name", "currency", "sum_assured", "current_payout_value"}))

	converter := services.NewConverter(&fixedRates{rates: map[string]float64{}})
	h := NewDashboardHandler(db, converter, "USD")

	w := httptest.NewRecorder()
	h.Summary(w, dashboardRequest("/api/v1/dashboard"))

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d (%s)", w.Code, w.Body.String())
	}
	var summary models.DashboardSummary
	if err := json.Unmarshal(w.Body.Bytes(), &summary); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if summary.DisplayCurrency != "GBP" {
		t.Fatalf("displayCurrency = %q, want GBP", summary.DisplayCurrency)
	}
}
