package normalizer

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGuessMapping_FrenchBankExport(t *testing.T) {
	headers := []string{
		"Date opération",
		"Date de valeur",
		"Libellé opération",
		"Libellé simplifié",
		"Type opération",
		"Montant",
	}

	got := GuessMapping(headers)
	assert.Equal(t, "Date opération", got.Date)
	assert.Equal(t, "Montant", got.Amount)
	assert.Equal(t, "Libellé opération", got.Description)
	assert.Equal(t, "Libellé simplifié", got.Counterparty)
	assert.Equal(t, "Type opération", got.Type)
}

func TestGuessMapping_DatePrefersOperationOverValeur(t *testing.T) {
	got := GuessMapping([]string{"Date de valeur", "Date opération"})
	assert.Equal(t, "Date opération", got.Date)
}

func TestGuessMapping_DateSkipsValeurWhenNoOperation(t *testing.T) {
	got := GuessMapping([]string{"Date de valeur", "Date"})
	assert.Equal(t, "Date", got.Date)
}

func TestGuessMapping_DateLastResort(t *testing.T) {
	got := GuessMapping([]string{"Date de valeur"})
	assert.Equal(t, "Date de valeur", got.Date)
}

func TestGuessMapping_EnglishExport(t *testing.T) {
	headers := []string{"Date", "Description", "Amount", "Merchant"}

	got := GuessMapping(headers)
	assert.Equal(t, "Date", got.Date)
	assert.Equal(t, "Amount", got.Amount)
	assert.Equal(t, "Description", got.Description)
	assert.Equal(t, "Merchant", got.Counterparty)
}

func TestGuessMapping_NoMatches(t *testing.T) {
	got := GuessMapping([]string{"Foo", "Bar"})
	assert.Equal(t, ColumnMap{}, got)
}

func TestMerge_OverlaysNonEmptyOnly(t *testing.T) {
	base := ColumnMap{Date: "Date", Amount: "Montant", Description: "Libellé"}
	base.Merge(ColumnMap{Amount: "Amount", Counterparty: "Payee"})

	assert.Equal(t, "Date", base.Date)
	assert.Equal(t, "Amount", base.Amount)
	assert.Equal(t, "Libellé", base.Description)
	assert.Equal(t, "Payee", base.Counterparty)
}

func TestResolveConflict_ClearsCounterparty(t *testing.T) {
	m := ColumnMap{Description: "Libellé", Counterparty: "Libellé"}
	m.ResolveConflict()
	assert.Equal(t, "Libellé", m.Description)
	assert.Empty(t, m.Counterparty)
}

func TestResolveConflict_NoopWhenDistinct(t *testing.T) {
	m := ColumnMap{Description: "Libellé", Counterparty: "Payee"}
	m.ResolveConflict()
	assert.Equal(t, "Payee", m.Counterparty)
}
