package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Expense is a single reimbursable cost entry. The delegation reference is
// assigned at creation and never changes. PLNAmount and ExchangeRate are a
// snapshot taken when the expense is created or edited; they are never
// recomputed from live rates afterwards.
type Expense struct {
	ID           int64           `json:"id"`
	DelegationID int64           `json:"delegation_id"`
	Explanation  string          `json:"explanation,omitempty"`
	Amount       decimal.Decimal `json:"amount"`
	PLNAmount    decimal.Decimal `json:"pln_amount"`
	ExchangeRate decimal.Decimal `json:"exchange_rate"`
	CurrencyID   int64           `json:"currency_id"`
	CategoryID   int64           `json:"category_id"`
	Status       string          `json:"status"`
	PayedAt      *time.Time      `json:"payed_at,omitempty"`
	CreatedAt    time.Time       `json:"created_at"`
	ClosedAt     *time.Time      `json:"closed_at,omitempty"`
}

// Currency is read-only reference data
type Currency struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// ExpenseCategory is read-only reference data
type ExpenseCategory struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// ExchangeRateEntry is a dated conversion rate to the base currency
type ExchangeRateEntry struct {
	ID         int64           `json:"id"`
	CurrencyID int64           `json:"currency_id"`
	RateToPLN  decimal.Decimal `json:"rate_to_pln"`
	DateSet    time.Time       `json:"date_set"`
}
