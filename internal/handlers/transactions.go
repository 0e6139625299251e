package handlers

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/mux"

	"github.com/zenithflow/zenithflow/internal/hub"
	"github.com/zenithflow/zenithflow/internal/models"
	"github.com/zenithflow/zenithflow/internal/validation"
)

// TransactionHandler handles the append-only finance ledger. Entries are
// never edited in place; the only mutations are append and delete, and
// neither participates in undo.
type TransactionHandler struct {
	hub *hub.Hub
}

// NewTransactionHandler creates a new transaction handler
func NewTransactionHandler(hb *hub.Hub) *TransactionHandler {
	return &TransactionHandler{hub: hb}
}

// RegisterRoutes registers transaction routes on the given router
// The router should already have the /transactions prefix
func (h *TransactionHandler) RegisterRoutes(r *mux.Router) {
	r.HandleFunc("", h.ListTransactions).Methods("GET")
	r.HandleFunc("", h.CreateTransaction).Methods("POST")
	r.HandleFunc("/{id}", h.DeleteTransaction).Methods("DELETE")
}

// CreateTransactionRequest represents a create transaction request
type CreateTransactionRequest struct {
	Date     string  `json:"date" validate:"required"`
	Amount   float64 `json:"amount" validate:"required"`
	Currency string  `json:"currency" validate:"required,currency"`
	Category string  `json:"category" validate:"required,max=200"`
	IsProfit *bool   `json:"isProfit,omitempty"`
	Notes    string  `json:"notes" validate:"max=10000"`
}

// ListTransactions returns ledger entries, optionally filtered by month
// (YYYY-MM).
func (h *TransactionHandler) ListTransactions(w http.ResponseWriter, r *http.Request) {
	ws, ok := workspaceFor(w, r, h.hub)
	if !ok {
		return
	}

	st := ws.Store.State()
	month := r.URL.Query().Get("month")
	if month == "" {
		respondJSON(w, http.StatusOK, st.Transactions)
		return
	}

	entries := make([]models.Transaction, 0)
	for _, tx := range st.Transactions {
		if strings.HasPrefix(tx.Date, month) {
			entries = append(entries, tx)
		}
	}
	respondJSON(w, http.StatusOK, entries)
}

// CreateTransaction appends a ledger entry. The profit flag only means
// anything for NTD entries and is dropped otherwise.
func (h *TransactionHandler) CreateTransaction(w http.ResponseWriter, r *http.Request) {
	ws, ok := workspaceFor(w, r, h.hub)
	if !ok {
		return
	}

	var req CreateTransactionRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if !validateStruct(w, req) {
		return
	}
	if err := validation.ValidateDate(req.Date); err != nil {
		respondJSONError(w, http.StatusBadRequest, "Bad Request", err.Error())
		return
	}

	isProfit := req.IsProfit
	if models.Currency(req.Currency) != models.CurrencyNTD {
		isProfit = nil
	}
	tx := models.Transaction{
		ID:       fmt.Sprintf("tx-%d", time.Now().UnixMilli()),
		Date:     req.Date,
		Amount:   req.Amount,
		Currency: models.Currency(req.Currency),
		Category: validation.SanitizeText(req.Category),
		IsProfit: isProfit,
		Notes:    validation.SanitizeText(req.Notes),
	}
	ws.Store.AddTransaction(tx)

	respondJSON(w, http.StatusCreated, tx)
}

// DeleteTransaction removes a ledger entry
func (h *TransactionHandler) DeleteTransaction(w http.ResponseWriter, r *http.Request) {
	ws, ok := workspaceFor(w, r, h.hub)
	if !ok {
		return
	}

	id := mux.Vars(r)["id"]
	if !ws.Store.DeleteTransaction(id) {
		respondJSONError(w, http.StatusNotFound, "Not Found", "Transaction not found")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
