package rules

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ivanoskov/budget_manager/internal/model"
)

func tx(id, description, category, budget string) model.Transaction {
	return model.Transaction{
		ID:             id,
		OccurredAt:     "2024-03-05",
		Description:    description,
		Category:       category,
		BudgetCategory: budget,
	}
}

func TestPreview_ReportsOnlyRealChanges(t *testing.T) {
	e := NewEngine()
	ruleList := []model.Rule{rule("r1", "uber", "Transport", "")}
	txs := []model.Transaction{
		tx("t1", "UBER TRIP", "", ""),          // empty -> Transport: change
		tx("t2", "UBER TRIP", "Transport", ""), // already Transport: no change
		tx("t3", "CARREFOUR", "", ""),          // no match: no change
	}

	changes := e.Preview(txs, ruleList)
	require.Len(t, changes, 1)
	c := changes[0]
	assert.Equal(t, "t1", c.ID)
	assert.True(t, c.CategoryChanged)
	assert.Empty(t, c.OldCategory)
	assert.Equal(t, "Transport", c.NewCategory)
	assert.False(t, c.BudgetChanged)
}

func TestPreview_BudgetOnlyChange(t *testing.T) {
	e := NewEngine()
	ruleList := []model.Rule{rule("r1", "edf", "Utilities", "Fixed")}
	txs := []model.Transaction{tx("t1", "PRLV EDF", "Utilities", "")}

	changes := e.Preview(txs, ruleList)
	require.Len(t, changes, 1)
	c := changes[0]
	assert.False(t, c.CategoryChanged)
	assert.Equal(t, "Utilities", c.NewCategory)
	assert.True(t, c.BudgetChanged)
	assert.Equal(t, "Fixed", c.NewBudget)
}

func TestPreview_OverwritesDifferentStoredValue(t *testing.T) {
	e := NewEngine()
	ruleList := []model.Rule{rule("r1", "uber", "Transport", "")}
	txs := []model.Transaction{tx("t1", "UBER TRIP", "Misc", "")}

	changes := e.Preview(txs, ruleList)
	require.Len(t, changes, 1)
	assert.Equal(t, "Misc", changes[0].OldCategory)
	assert.Equal(t, "Transport", changes[0].NewCategory)
}

func TestPreview_NoActiveRules(t *testing.T) {
	e := NewEngine()
	disabled := rule("r1", "uber", "Transport", "")
	disabled.Enabled = false

	assert.Nil(t, e.Preview([]model.Transaction{tx("t1", "UBER", "", "")}, nil))
	assert.Nil(t, e.Preview([]model.Transaction{tx("t1", "UBER", "", "")}, []model.Rule{disabled}))
}

func TestUpdates_OnlyChangedFieldsPresent(t *testing.T) {
	changes := []Change{
		{ID: "t1", NewCategory: "Transport", CategoryChanged: true, NewBudget: "kept", BudgetChanged: false},
		{ID: "t2", NewBudget: "Fixed", BudgetChanged: true},
		// Nothing changed, and a change without an id: both dropped.
		{ID: "t3"},
		{NewCategory: "Transport", CategoryChanged: true},
	}

	updates := Updates(changes)
	require.Len(t, updates, 2)

	require.NotNil(t, updates[0].Category)
	assert.Equal(t, "Transport", *updates[0].Category)
	assert.Nil(t, updates[0].BudgetCategory)

	assert.Nil(t, updates[1].Category)
	require.NotNil(t, updates[1].BudgetCategory)
	assert.Equal(t, "Fixed", *updates[1].BudgetCategory)
}

func TestUpdates_BlankChangeCarriedAsEmptyString(t *testing.T) {
	changes := []Change{{ID: "t1", NewCategory: "  ", CategoryChanged: true}}

	updates := Updates(changes)
	require.Len(t, updates, 1)
	require.NotNil(t, updates[0].Category)
	assert.Equal(t, "", *updates[0].Category)
}
