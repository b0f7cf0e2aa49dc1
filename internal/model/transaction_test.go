package model

import (
	"encoding/json"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTransactionValidate(t *testing.T) {
	tx := Transaction{OccurredAt: "2024-03-05", Amount: -45, Currency: "EUR"}
	require.NoError(t, tx.Validate())

	bad := tx
	bad.OccurredAt = "05/03/2024"
	assert.Error(t, bad.Validate())

	bad = tx
	bad.Amount = math.NaN()
	assert.Error(t, bad.Validate())

	bad = tx
	bad.Currency = ""
	assert.Error(t, bad.Validate())
}

func TestGenerateID(t *testing.T) {
	tx := Transaction{}
	tx.GenerateID()
	require.NotEmpty(t, tx.ID)

	id := tx.ID
	tx.GenerateID()
	assert.Equal(t, id, tx.ID)
}

// Insert payloads must not carry created_at when it was never set; an
// explicit zero timestamp would override the database default and make
// every rule tie in the creation order the engine depends on.
func TestRuleInsertPayloadLeavesCreatedAtToDatabase(t *testing.T) {
	raw, err := json.Marshal(&Rule{Pattern: "uber", Category: "Transport", Enabled: true})
	require.NoError(t, err)
	assert.NotContains(t, string(raw), "created_at")

	now := time.Now()
	raw, err = json.Marshal(&Rule{Pattern: "uber", Category: "Transport", Enabled: true, CreatedAt: &now})
	require.NoError(t, err)
	assert.Contains(t, string(raw), "created_at")
}

func TestTransactionInsertPayloadLeavesCreatedAtToDatabase(t *testing.T) {
	raw, err := json.Marshal(&Transaction{OccurredAt: "2024-03-05", Amount: -45, Currency: "EUR"})
	require.NoError(t, err)
	assert.NotContains(t, string(raw), "created_at")
}

func TestRuleValidate(t *testing.T) {
	require.NoError(t, (&Rule{Pattern: "uber", Category: "Transport"}).Validate())
	require.NoError(t, (&Rule{Pattern: "uber", BudgetCategory: "Variable"}).Validate())
	assert.Error(t, (&Rule{Category: "Transport"}).Validate())
	assert.Error(t, (&Rule{Pattern: "uber"}).Validate())
}
