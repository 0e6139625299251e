package models

// Currency is one of the two fixed ledger currencies
type Currency string

const (
	// CurrencyEUR tracks daily living expenses
	CurrencyEUR Currency = "EUR"
	// CurrencyNTD tracks crypto trading performance
	CurrencyNTD Currency = "NTD"
)

// Transaction is an append-only financial ledger entry. It is immutable once
// created except for deletion.
type Transaction struct {
	ID       string   `json:"id"`
	Date     string   `json:"date"` // ISO timestamp
	Amount   float64  `json:"amount"`
	Currency Currency `json:"currency"`
	Category string   `json:"category"`
	IsProfit *bool    `json:"isProfit,omitempty"` // meaningful only for NTD
	Notes    string   `json:"notes,omitempty"`
}
