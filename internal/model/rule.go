package model

import (
	"fmt"
	"time"
)

// Rule auto-classifies transactions whose description or counterparty
// contains Pattern. Category and BudgetCategory are both optional, but
// a rule with neither has no effect. Rules are evaluated in creation
// order; the first match wins.
//
// CreatedAt is a pointer so an unset time is omitted from insert
// payloads and the database default stamps it. Rule ordering rides on
// that column.
type Rule struct {
	ID             string     `json:"id,omitempty"`
	UserID         string     `json:"user_id,omitempty"`
	Pattern        string     `json:"pattern"`
	Category       string     `json:"category,omitempty"`
	BudgetCategory string     `json:"budget_category,omitempty"`
	Enabled        bool       `json:"enabled"`
	CreatedAt      *time.Time `json:"created_at,omitempty"`
}

// Validate rejects rules that could never classify anything.
func (r *Rule) Validate() error {
	if r.Pattern == "" {
		return fmt.Errorf("rule pattern is empty")
	}
	if r.Category == "" && r.BudgetCategory == "" {
		return fmt.Errorf("rule needs a category or a budget category")
	}
	return nil
}
