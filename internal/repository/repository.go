package repository

import (
	"context"

	"github.com/ivanoskov/budget_manager/internal/model"
)

type Repository interface {
	// Rules, ordered by creation time ascending. The order is load
	// bearing: it is the rule engine's first-match-wins order.
	FetchRules(ctx context.Context) ([]model.Rule, error)
	CreateRule(ctx context.Context, rule *model.Rule) error
	SetRuleEnabled(ctx context.Context, id string, enabled bool) error
	DeleteRule(ctx context.Context, id string) error

	// Transactions
	InsertTransactions(ctx context.Context, userID string, txs []model.Transaction) error
	GetTransactions(ctx context.Context, filter model.TransactionFilter) ([]model.Transaction, error)
	UpdateTransactionCategories(ctx context.Context, updates []model.TransactionUpdate) (int, error)
	DeleteTransaction(ctx context.Context, id string) error
}
