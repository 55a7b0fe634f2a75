package models

// Holding is a single asset row reduced to what aggregation needs: which
// category it belongs to, its source currency and its current value.
type Holding struct {
	Category string
	Currency string
	Value    float64
}

// Holding categories produced by the repository's aggregation queries.
const (
	CategoryBankAccounts = "bankAccounts"
	CategoryTermDeposits = "termDeposits"
	CategoryStocks       = "stocks"
	CategoryMetals       = "metals"
	CategoryRealEstate   = "realEstate"
	CategoryPension      = "pension"
)

type LoanEntry struct {
	LoanType    string
	Currency    string
	Outstanding float64
}

type InsuranceEntry struct {
	PolicyType  string
	InsuredName string
	Currency    string
	PayoutValue float64
	SumAssured  float64
}

type DashboardBreakdown struct {
	BankAccounts   float64 `json:"bankAccounts"`
	TermDeposits   float64 `json:"termDeposits"`
	Stocks         float64 `json:"stocks"`
	Metals         float64 `json:"metals"`
	RealEstate     float64 `json:"realEstate"`
	Pension        float64 `json:"pension"`
	Loans          float64 `json:"loans"`
	InsuranceValue float64 `json:"insuranceValue"`
}

type DashboardSummary struct {
	NetAssetValue         float64            `json:"netAssetValue"`
	TotalAssets           float64            `json:"totalAssets"`
	TotalLiabilities      float64            `json:"totalLiabilities"`
	QuickLiquidAssets     float64            `json:"quickLiquidAssets"`
	LifeInsuranceCover    float64            `json:"lifeInsuranceCover"`
	LifeInsuranceByPerson map[string]float64 `json:"lifeInsuranceByPerson"`
	LoansByType           map[string]float64 `json:"loansByType"`
	DisplayCurrency       string             `json:"displayCurrency"`
	Breakdown             DashboardBreakdown `json:"breakdown"`
}
