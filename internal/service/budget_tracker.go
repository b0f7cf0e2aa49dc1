package service

import (
	"context"

	"github.com/ivanoskov/budget_manager/internal/model"
	"github.com/ivanoskov/budget_manager/internal/normalizer"
	"github.com/ivanoskov/budget_manager/internal/rules"
)

// BudgetTracker ties the import pipeline, the rule engine and the
// storage collaborator together for one user session.
type BudgetTracker struct {
	repo   Repository
	norm   *normalizer.Normalizer
	engine *rules.Engine
}

// Repository is the storage collaborator the tracker depends on.
type Repository interface {
	FetchRules(ctx context.Context) ([]model.Rule, error)
	CreateRule(ctx context.Context, rule *model.Rule) error
	SetRuleEnabled(ctx context.Context, id string, enabled bool) error
	DeleteRule(ctx context.Context, id string) error

	InsertTransactions(ctx context.Context, userID string, txs []model.Transaction) error
	GetTransactions(ctx context.Context, filter model.TransactionFilter) ([]model.Transaction, error)
	UpdateTransactionCategories(ctx context.Context, updates []model.TransactionUpdate) (int, error)
	DeleteTransaction(ctx context.Context, id string) error
}

// NewBudgetTracker creates a tracker for a deployment with a fixed
// currency. The rule-pattern cache lives and dies with the tracker.
func NewBudgetTracker(repo Repository, currency string) *BudgetTracker {
	return &BudgetTracker{
		repo:   repo,
		norm:   normalizer.New(currency),
		engine: rules.NewEngine(),
	}
}

func (s *BudgetTracker) GetTransactions(ctx context.Context, filter model.TransactionFilter) ([]model.Transaction, error) {
	return s.repo.GetTransactions(ctx, filter)
}

func (s *BudgetTracker) DeleteTransaction(ctx context.Context, id string) error {
	return s.repo.DeleteTransaction(ctx, id)
}

// UpdateCategories relays a bulk partial update; grouping by payload
// happens in the repository.
func (s *BudgetTracker) UpdateCategories(ctx context.Context, updates []model.TransactionUpdate) (int, error) {
	return s.repo.UpdateTransactionCategories(ctx, updates)
}

// IngestTransactions validates and stores pre-normalized rows tagged
// with their owner. The batch is all-or-nothing.
func (s *BudgetTracker) IngestTransactions(ctx context.Context, userID string, txs []model.Transaction) error {
	for i := range txs {
		if err := txs[i].Validate(); err != nil {
			return err
		}
	}
	return s.repo.InsertTransactions(ctx, userID, txs)
}
