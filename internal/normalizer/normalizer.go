package normalizer

import (
	"fmt"
	"math"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"
	"unicode"

	"github.com/ivanoskov/budget_manager/internal/model"
)

// DateError reports a raw value that matched neither the strict
// DD/MM/YYYY form nor any of the fallback layouts.
type DateError struct {
	Value string
}

func (e *DateError) Error() string {
	return fmt.Sprintf("invalid date %q", e.Value)
}

// AmountError reports a row whose amount could not be resolved by any
// strategy. Column is the mapped source column, or a placeholder when
// no amount column was mapped at all.
type AmountError struct {
	Column string
	Value  string
}

func (e *AmountError) Error() string {
	return fmt.Sprintf("invalid amount (column %q, value %q)", e.Column, e.Value)
}

var dmyRe = regexp.MustCompile(`^(\d{1,2})/(\d{1,2})/(\d{4})$`)

// fallbackLayouts are tried in order when the input is not DD/MM/YYYY.
// Whatever matches is truncated to its calendar-date portion.
var fallbackLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
	"2006/01/02",
	"02-01-2006",
	"02 Jan 2006",
	"Jan 2, 2006",
	"January 2, 2006",
}

// ToISODate converts a raw date cell to YYYY-MM-DD. DD/MM/YYYY is
// converted literally rather than through generic parsing so the
// day/month order is never subject to locale guessing.
func ToISODate(raw string) (string, error) {
	v := strings.TrimSpace(raw)
	if m := dmyRe.FindStringSubmatch(v); m != nil {
		day, _ := strconv.Atoi(m[1])
		month, _ := strconv.Atoi(m[2])
		iso := fmt.Sprintf("%s-%02d-%02d", m[3], month, day)
		if _, err := time.Parse("2006-01-02", iso); err != nil {
			return "", &DateError{Value: raw}
		}
		return iso, nil
	}
	for _, layout := range fallbackLayouts {
		if t, err := time.Parse(layout, v); err == nil {
			return t.Format("2006-01-02"), nil
		}
	}
	return "", &DateError{Value: raw}
}

// ParseAmount converts a raw amount cell to a float. ok is false when
// the cell is empty or does not resolve to a finite number.
//
// Separator heuristic: with both "," and "." present, the period is
// taken as a thousands separator and stripped (European style); any
// remaining comma becomes the decimal point. A lone comma is therefore
// always decimal. That choice misreads US-style "1,234" and is kept
// deliberately; see DESIGN.md before touching it.
func ParseAmount(raw string) (amount float64, ok bool) {
	s := strings.Map(func(r rune) rune {
		if r == '€' || unicode.IsSpace(r) {
			return -1
		}
		return r
	}, raw)
	if s == "" {
		return 0, false
	}
	if strings.ContainsRune(s, ',') && strings.ContainsRune(s, '.') {
		s = strings.ReplaceAll(s, ".", "")
	}
	s = strings.ReplaceAll(s, ",", ".")
	n, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(n) || math.IsInf(n, 0) {
		return 0, false
	}
	return n, true
}

var (
	debitMarkers  = []string{"débit", "debit"}
	creditMarkers = []string{"crédit", "credit"}

	// Substring hints inspected in a mapped type/direction column.
	// The expense set is checked first.
	expenseHints = []string{"debit", "déb", "sortie", "retrait", "prél", "prelev", "paiement", "cb", "carte"}
	incomeHints  = []string{"credit", "créd", "entrée", "virement reçu", "recu", "reçu"}
)

// Normalizer turns raw tabular rows into canonical transactions for a
// deployment with a fixed currency.
type Normalizer struct {
	currency string
}

func New(currency string) *Normalizer {
	return &Normalizer{currency: currency}
}

// NormalizeRow converts one raw row plus its column mapping into
// exactly one canonical transaction, or fails with a precise reason.
func (n *Normalizer) NormalizeRow(row map[string]string, cmap ColumnMap) (model.Transaction, error) {
	occurredAt, err := ToISODate(row[cmap.Date])
	if err != nil {
		return model.Transaction{}, err
	}

	var amount float64
	ok := false
	if cmap.Amount != "" {
		amount, ok = ParseAmount(row[cmap.Amount])
	}

	// Debit/credit pair fallback: the columns are looked up in the row
	// itself, not in the mapping. A non-zero credit wins over a debit.
	if !ok {
		debitKey := findRowKey(row, debitMarkers)
		creditKey := findRowKey(row, creditMarkers)
		if c, cok := ParseAmount(row[creditKey]); creditKey != "" && cok && c != 0 {
			amount, ok = c, true
		} else if d, dok := ParseAmount(row[debitKey]); debitKey != "" && dok && d != 0 {
			amount, ok = -math.Abs(d), true
		}
	}

	// A mapped direction column can override the sign, never the value:
	// zero stays zero.
	if ok && amount != 0 && cmap.Type != "" {
		typeVal := strings.ToLower(row[cmap.Type])
		if containsAny(typeVal, expenseHints) {
			amount = -math.Abs(amount)
		} else if containsAny(typeVal, incomeHints) {
			amount = math.Abs(amount)
		}
	}

	if !ok {
		col := cmap.Amount
		if col == "" {
			col = "(amount column not mapped)"
		}
		return model.Transaction{}, &AmountError{Column: col, Value: row[cmap.Amount]}
	}

	tx := model.Transaction{
		OccurredAt:     occurredAt,
		Amount:         amount,
		Currency:       n.currency,
		Description:    mappedField(row, cmap.Description),
		Counterparty:   mappedField(row, cmap.Counterparty),
		Category:       mappedField(row, cmap.Category),
		BudgetCategory: mappedField(row, cmap.BudgetCategory),
		Raw:            row,
	}
	if err := tx.Validate(); err != nil {
		return model.Transaction{}, err
	}
	return tx, nil
}

// NormalizeRows normalizes a whole batch in input order, aborting at
// the first failing row. The error is annotated with the 1-based line
// number so the user can locate the row in the source file.
func (n *Normalizer) NormalizeRows(rows []map[string]string, cmap ColumnMap) ([]model.Transaction, error) {
	out := make([]model.Transaction, 0, len(rows))
	for i, row := range rows {
		tx, err := n.NormalizeRow(row, cmap)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", i+1, err)
		}
		out = append(out, tx)
	}
	return out, nil
}

// findRowKey returns the first row key (in stable sorted order)
// containing one of the markers. Matching is case-insensitive but
// deliberately not accent-insensitive: both accented and plain marker
// spellings are listed instead.
func findRowKey(row map[string]string, markers []string) string {
	keys := make([]string, 0, len(row))
	for k := range row {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		l := strings.ToLower(k)
		for _, m := range markers {
			if strings.Contains(l, m) {
				return k
			}
		}
	}
	return ""
}

func containsAny(s string, subs []string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}

func mappedField(row map[string]string, column string) string {
	if column == "" {
		return ""
	}
	return strings.TrimSpace(row[column])
}
