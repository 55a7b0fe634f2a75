package models

import "time"

// CashFlowEntry holds one income or expense category for a fiscal year, with
// an amount per month (April through March).
type CashFlowEntry struct {
	ID           string    `json:"id"`
	UserID       string    `json:"-"`
	Type         string    `json:"type"`
	Category     string    `json:"category"`
	CategoryType *string   `json:"categoryType,omitempty"`
	FiscalYear   int       `json:"fiscalYear"`
	Apr          float64   `json:"apr"`
	May          float64   `json:"may"`
	Jun          float64   `json:"jun"`
	Jul          float64   `json:"jul"`
	Aug          float64   `json:"aug"`
	Sep          float64   `json:"sep"`
	Oct          float64   `json:"oct"`
	Nov          float64   `json:"nov"`
	Dec          float64   `json:"dec"`
	Jan          float64   `json:"jan"`
	Feb          float64   `json:"feb"`
	Mar          float64   `json:"mar"`
	CreatedAt    time.Time `json:"created_at"`
}

type SaveCashFlowRequest struct {
	FiscalYear int             `json:"fiscalYear" validate:"required,gte=1970,lte=2200"`
	Entries    []CashFlowEntry `json:"entries" validate:"required,dive"`
}
