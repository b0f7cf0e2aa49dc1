package model

import (
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"
)

// Transaction is the canonical, normalized form of one bank-statement
// line. OccurredAt is a plain calendar date (YYYY-MM-DD); Amount is
// negative for expenses and positive for income. Raw keeps the source
// row untouched for audit.
type Transaction struct {
	ID             string            `json:"id,omitempty"`
	UserID         string            `json:"user_id,omitempty"`
	OccurredAt     string            `json:"occurred_at"`
	Amount         float64           `json:"amount"`
	Currency       string            `json:"currency"`
	Description    string            `json:"description,omitempty"`
	Counterparty   string            `json:"counterparty,omitempty"`
	Category       string            `json:"category,omitempty"`
	BudgetCategory string            `json:"budget_category,omitempty"`
	Raw            map[string]string `json:"raw,omitempty"`
	CreatedAt      *time.Time        `json:"created_at,omitempty"`
}

// GenerateID assigns a new UUID if the transaction does not have one yet.
func (t *Transaction) GenerateID() {
	if t.ID == "" {
		t.ID = uuid.New().String()
	}
}

// Validate checks the assembled record against the canonical schema.
// A failure here means an upstream invariant was violated.
func (t *Transaction) Validate() error {
	if _, err := time.Parse("2006-01-02", t.OccurredAt); err != nil {
		return fmt.Errorf("occurred_at %q is not a calendar date", t.OccurredAt)
	}
	if math.IsNaN(t.Amount) || math.IsInf(t.Amount, 0) {
		return fmt.Errorf("amount is not a finite number")
	}
	if t.Currency == "" {
		return fmt.Errorf("currency is empty")
	}
	return nil
}

// TransactionFilter narrows transaction queries. Dates are inclusive
// YYYY-MM-DD bounds on occurred_at.
type TransactionFilter struct {
	StartDate string
	EndDate   string
	Category  string
	Search    string
	Limit     int
	Offset    int
}

// TransactionUpdate is one partial update in a bulk categorization
// write. Only fields that are present (non-nil) are touched; an
// explicit empty string stores SQL NULL rather than being skipped.
type TransactionUpdate struct {
	ID             string  `json:"id"`
	Category       *string `json:"category,omitempty"`
	BudgetCategory *string `json:"budget_category,omitempty"`
}
