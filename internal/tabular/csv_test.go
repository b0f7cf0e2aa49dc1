package tabular

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse_CommaDelimited(t *testing.T) {
	in := "Date,Amount,Description\n2024-03-05,-45.00,CARREFOUR\n"

	tbl, err := Parse(strings.NewReader(in))
	require.NoError(t, err)
	assert.Equal(t, ',', tbl.Delimiter)
	assert.Equal(t, []string{"Date", "Amount", "Description"}, tbl.Headers)
	require.Len(t, tbl.Rows, 1)
	assert.Equal(t, "CARREFOUR", tbl.Rows[0]["Description"])
}

func TestParse_SemicolonDelimited(t *testing.T) {
	in := "Date opération;Montant;Libellé\n05/03/2024;-45,00;CARREFOUR\n"

	tbl, err := Parse(strings.NewReader(in))
	require.NoError(t, err)
	assert.Equal(t, ';', tbl.Delimiter)
	require.Len(t, tbl.Rows, 1)
	assert.Equal(t, "-45,00", tbl.Rows[0]["Montant"])
}

func TestParse_TabDelimited(t *testing.T) {
	in := "Date\tAmount\n2024-03-05\t12.50\n"

	tbl, err := Parse(strings.NewReader(in))
	require.NoError(t, err)
	assert.Equal(t, '\t', tbl.Delimiter)
	assert.Equal(t, "12.50", tbl.Rows[0]["Amount"])
}

func TestParse_DelimiterInsideQuotesIgnored(t *testing.T) {
	in := "\"Date; valeur\";Montant\n05/03/2024;1,00\n"

	tbl, err := Parse(strings.NewReader(in))
	require.NoError(t, err)
	assert.Equal(t, ';', tbl.Delimiter)
	assert.Equal(t, []string{"Date; valeur", "Montant"}, tbl.Headers)
}

func TestParse_StripsBOM(t *testing.T) {
	in := "\xEF\xBB\xBFDate,Amount\n2024-03-05,1\n"

	tbl, err := Parse(strings.NewReader(in))
	require.NoError(t, err)
	assert.Equal(t, "Date", tbl.Headers[0])
	assert.Equal(t, "2024-03-05", tbl.Rows[0]["Date"])
}

func TestParse_ShortRowsPadded(t *testing.T) {
	in := "Date,Amount,Description\n2024-03-05,1\n"

	tbl, err := Parse(strings.NewReader(in))
	require.NoError(t, err)
	require.Len(t, tbl.Rows, 1)
	val, exists := tbl.Rows[0]["Description"]
	assert.True(t, exists)
	assert.Equal(t, "", val)
}

func TestParse_SkipsEmptyRows(t *testing.T) {
	in := "Date,Amount\n2024-03-05,1\n,\n2024-03-06,2\n"

	tbl, err := Parse(strings.NewReader(in))
	require.NoError(t, err)
	require.Len(t, tbl.Rows, 2)
	assert.Equal(t, "2024-03-06", tbl.Rows[1]["Date"])
}

func TestParse_EmptyFile(t *testing.T) {
	_, err := Parse(strings.NewReader(""))
	require.Error(t, err)

	_, err = Parse(strings.NewReader("   \n  \n"))
	require.Error(t, err)
}

func TestParse_HeaderOnly(t *testing.T) {
	tbl, err := Parse(strings.NewReader("Date,Amount\n"))
	require.NoError(t, err)
	assert.Empty(t, tbl.Rows)
}
