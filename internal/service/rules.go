package service

import (
	"context"
	"fmt"
	"time"

	"github.com/ivanoskov/budget_manager/internal/model"
	"github.com/ivanoskov/budget_manager/internal/rules"
)

// RuleScope selects which stored transactions a rule preview or commit
// runs over: one calendar month (YYYY-MM) or everything.
type RuleScope struct {
	Month string `json:"month,omitempty"`
	All   bool   `json:"all,omitempty"`
}

// scopeLimit caps bulk rule application; "all" scopes get a higher cap
// than a single month.
const (
	monthScopeLimit = 5000
	allScopeLimit   = 10000
)

func (s *BudgetTracker) ListRules(ctx context.Context) ([]model.Rule, error) {
	return s.fetchRules(ctx)
}

func (s *BudgetTracker) CreateRule(ctx context.Context, rule *model.Rule) error {
	if err := rule.Validate(); err != nil {
		return err
	}
	if err := s.repo.CreateRule(ctx, rule); err != nil {
		return err
	}
	s.engine.Invalidate()
	return nil
}

func (s *BudgetTracker) SetRuleEnabled(ctx context.Context, id string, enabled bool) error {
	if err := s.repo.SetRuleEnabled(ctx, id, enabled); err != nil {
		return err
	}
	s.engine.Invalidate()
	return nil
}

func (s *BudgetTracker) DeleteRule(ctx context.Context, id string) error {
	if err := s.repo.DeleteRule(ctx, id); err != nil {
		return err
	}
	s.engine.Invalidate()
	return nil
}

// PreviewRuleChanges computes, for every transaction in scope, whether
// the active rules would change its stored category or budget
// category. Nothing is written; the caller shows the result before a
// commit.
func (s *BudgetTracker) PreviewRuleChanges(ctx context.Context, scope RuleScope) ([]rules.Change, error) {
	ruleList, err := s.fetchRules(ctx)
	if err != nil {
		return nil, err
	}

	filter, err := scopeFilter(scope)
	if err != nil {
		return nil, err
	}
	txs, err := s.repo.GetTransactions(ctx, filter)
	if err != nil {
		return nil, err
	}

	return s.engine.Preview(txs, ruleList), nil
}

// CommitRuleChanges writes a previewed change set, batched by
// identical target payload. Returns how many rows the backend
// reported updated.
func (s *BudgetTracker) CommitRuleChanges(ctx context.Context, changes []rules.Change) (int, error) {
	updates := rules.Updates(changes)
	if len(updates) == 0 {
		return 0, nil
	}
	return s.repo.UpdateTransactionCategories(ctx, updates)
}

// ApplyRulesOverlay resolves the display category for each transaction
// at render time: a matching rule overrides the stored value, rows
// with no match keep theirs. Nothing is persisted.
func (s *BudgetTracker) ApplyRulesOverlay(ctx context.Context, txs []model.Transaction) ([]model.Transaction, error) {
	ruleList, err := s.fetchRules(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]model.Transaction, len(txs))
	for i, tx := range txs {
		if c := s.engine.ApplyCategory(tx.Description, tx.Counterparty, ruleList); c != "" {
			tx.Category = c
		}
		if b := s.engine.ApplyBudgetCategory(tx.Description, tx.Counterparty, ruleList); b != "" {
			tx.BudgetCategory = b
		}
		out[i] = tx
	}
	return out, nil
}

// fetchRules refetches the rule list and drops the pattern cache
// wholesale, the only invalidation trigger the engine has.
func (s *BudgetTracker) fetchRules(ctx context.Context) ([]model.Rule, error) {
	ruleList, err := s.repo.FetchRules(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch rules: %w", err)
	}
	s.engine.Invalidate()
	return ruleList, nil
}

func scopeFilter(scope RuleScope) (model.TransactionFilter, error) {
	if scope.All {
		return model.TransactionFilter{Limit: allScopeLimit}, nil
	}
	month := scope.Month
	if month == "" {
		month = time.Now().Format("2006-01")
	}
	start, err := time.Parse("2006-01", month)
	if err != nil {
		return model.TransactionFilter{}, fmt.Errorf("invalid month %q", month)
	}
	end := start.AddDate(0, 1, -1)
	return model.TransactionFilter{
		StartDate: start.Format("2006-01-02"),
		EndDate:   end.Format("2006-01-02"),
		Limit:     monthScopeLimit,
	}, nil
}
