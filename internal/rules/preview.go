package rules

import (
	"strings"

	"github.com/ivanoskov/budget_manager/internal/model"
)

// Change records what applying the active rules would do to one stored
// transaction. A field only counts as changed when the rules produce a
// non-empty value that differs from the stored one; a rule matching
// but reproducing the current value is not a change.
type Change struct {
	ID              string `json:"id"`
	OccurredAt      string `json:"occurred_at"`
	Description     string `json:"description"`
	Counterparty    string `json:"counterparty"`
	OldCategory     string `json:"old_category"`
	NewCategory     string `json:"new_category"`
	CategoryChanged bool   `json:"category_changed"`
	OldBudget       string `json:"old_budget"`
	NewBudget       string `json:"new_budget"`
	BudgetChanged   bool   `json:"budget_changed"`
}

// Preview computes, without writing anything, the set of transactions
// whose stored category or budget category would change under the
// given rules.
func (e *Engine) Preview(txs []model.Transaction, ruleList []model.Rule) []Change {
	categoryRules := filterActive(ruleList, func(r model.Rule) string { return r.Category })
	budgetRules := filterActive(ruleList, func(r model.Rule) string { return r.BudgetCategory })
	if len(categoryRules) == 0 && len(budgetRules) == 0 {
		return nil
	}

	var changes []Change
	for _, tx := range txs {
		var newCategory, newBudget string
		if len(categoryRules) > 0 {
			newCategory = e.ApplyCategory(tx.Description, tx.Counterparty, categoryRules)
		}
		if len(budgetRules) > 0 {
			newBudget = e.ApplyBudgetCategory(tx.Description, tx.Counterparty, budgetRules)
		}
		categoryChanged := newCategory != "" && newCategory != tx.Category
		budgetChanged := newBudget != "" && newBudget != tx.BudgetCategory
		if !categoryChanged && !budgetChanged {
			continue
		}
		change := Change{
			ID:              tx.ID,
			OccurredAt:      tx.OccurredAt,
			Description:     tx.Description,
			Counterparty:    tx.Counterparty,
			OldCategory:     tx.Category,
			NewCategory:     tx.Category,
			CategoryChanged: categoryChanged,
			OldBudget:       tx.BudgetCategory,
			NewBudget:       tx.BudgetCategory,
			BudgetChanged:   budgetChanged,
		}
		if categoryChanged {
			change.NewCategory = newCategory
		}
		if budgetChanged {
			change.NewBudget = newBudget
		}
		changes = append(changes, change)
	}
	return changes
}

// Updates converts previewed changes into the partial-update payloads
// the bulk-update collaborator expects. Only changed fields are
// present; a blank new value is carried as an explicit empty string so
// it is stored as "no value" rather than skipped.
func Updates(changes []Change) []model.TransactionUpdate {
	updates := make([]model.TransactionUpdate, 0, len(changes))
	for _, c := range changes {
		if c.ID == "" || (!c.CategoryChanged && !c.BudgetChanged) {
			continue
		}
		u := model.TransactionUpdate{ID: c.ID}
		if c.CategoryChanged {
			v := strings.TrimSpace(c.NewCategory)
			u.Category = &v
		}
		if c.BudgetChanged {
			v := strings.TrimSpace(c.NewBudget)
			u.BudgetCategory = &v
		}
		updates = append(updates, u)
	}
	return updates
}

func filterActive(ruleList []model.Rule, target func(model.Rule) string) []model.Rule {
	var active []model.Rule
	for _, r := range ruleList {
		if r.Enabled && r.Pattern != "" && target(r) != "" {
			active = append(active, r)
		}
	}
	return active
}
