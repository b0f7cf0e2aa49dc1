package service

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ivanoskov/budget_manager/internal/model"
)

// fakeRepo is an in-memory Repository for service tests.
type fakeRepo struct {
	rules        []model.Rule
	transactions []model.Transaction

	insertedUserID string
	inserted       []model.Transaction
	updates        []model.TransactionUpdate
	updatedCount   int
	deletedIDs     []string
	lastFilter     model.TransactionFilter

	fetchRulesErr error
	insertErr     error
}

func (f *fakeRepo) FetchRules(ctx context.Context) ([]model.Rule, error) {
	if f.fetchRulesErr != nil {
		return nil, f.fetchRulesErr
	}
	return f.rules, nil
}

func (f *fakeRepo) CreateRule(ctx context.Context, rule *model.Rule) error {
	if rule.ID == "" {
		rule.ID = fmt.Sprintf("rule-%d", len(f.rules)+1)
	}
	f.rules = append(f.rules, *rule)
	return nil
}

func (f *fakeRepo) SetRuleEnabled(ctx context.Context, id string, enabled bool) error {
	for i := range f.rules {
		if f.rules[i].ID == id {
			f.rules[i].Enabled = enabled
			return nil
		}
	}
	return errors.New("rule not found")
}

func (f *fakeRepo) DeleteRule(ctx context.Context, id string) error {
	for i := range f.rules {
		if f.rules[i].ID == id {
			f.rules = append(f.rules[:i], f.rules[i+1:]...)
			return nil
		}
	}
	return errors.New("rule not found")
}

func (f *fakeRepo) InsertTransactions(ctx context.Context, userID string, txs []model.Transaction) error {
	if f.insertErr != nil {
		return f.insertErr
	}
	f.insertedUserID = userID
	f.inserted = append(f.inserted, txs...)
	return nil
}

func (f *fakeRepo) GetTransactions(ctx context.Context, filter model.TransactionFilter) ([]model.Transaction, error) {
	f.lastFilter = filter
	return f.transactions, nil
}

func (f *fakeRepo) UpdateTransactionCategories(ctx context.Context, updates []model.TransactionUpdate) (int, error) {
	f.updates = append(f.updates, updates...)
	if f.updatedCount > 0 {
		return f.updatedCount, nil
	}
	return len(updates), nil
}

func (f *fakeRepo) DeleteTransaction(ctx context.Context, id string) error {
	f.deletedIDs = append(f.deletedIDs, id)
	return nil
}

func newTestTracker(repo *fakeRepo) *BudgetTracker {
	return NewBudgetTracker(repo, "EUR")
}

func TestIngestTransactions(t *testing.T) {
	repo := &fakeRepo{}
	tracker := newTestTracker(repo)
	txs := []model.Transaction{
		{OccurredAt: "2024-03-05", Amount: -45, Currency: "EUR", Description: "CARREFOUR"},
	}

	err := tracker.IngestTransactions(context.Background(), "user-1", txs)
	require.NoError(t, err)
	assert.Equal(t, "user-1", repo.insertedUserID)
	require.Len(t, repo.inserted, 1)
}

func TestIngestTransactions_InvalidRowAbortsBatch(t *testing.T) {
	repo := &fakeRepo{}
	tracker := newTestTracker(repo)
	txs := []model.Transaction{
		{OccurredAt: "2024-03-05", Amount: -45, Currency: "EUR"},
		{OccurredAt: "not a date", Amount: 1, Currency: "EUR"},
	}

	err := tracker.IngestTransactions(context.Background(), "user-1", txs)
	require.Error(t, err)
	assert.Empty(t, repo.inserted)
}

func TestDeleteTransaction(t *testing.T) {
	repo := &fakeRepo{}
	tracker := newTestTracker(repo)

	require.NoError(t, tracker.DeleteTransaction(context.Background(), "t1"))
	assert.Equal(t, []string{"t1"}, repo.deletedIDs)
}
