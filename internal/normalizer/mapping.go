package normalizer

import "strings"

// ColumnMap binds each canonical field to a source column header. An
// empty value means "not mapped": downstream code either asks the user
// or falls back (the amount field falls back to a debit/credit pair).
type ColumnMap struct {
	Date           string `json:"date"`
	Amount         string `json:"amount"`
	Description    string `json:"description"`
	Counterparty   string `json:"counterparty"`
	Type           string `json:"type"`
	Category       string `json:"category,omitempty"`
	BudgetCategory string `json:"budget_category,omitempty"`
}

// Merge overlays the non-empty fields of o onto m. Used to apply
// explicit user choices on top of a heuristic guess.
func (m *ColumnMap) Merge(o ColumnMap) {
	if o.Date != "" {
		m.Date = o.Date
	}
	if o.Amount != "" {
		m.Amount = o.Amount
	}
	if o.Description != "" {
		m.Description = o.Description
	}
	if o.Counterparty != "" {
		m.Counterparty = o.Counterparty
	}
	if o.Type != "" {
		m.Type = o.Type
	}
	if o.Category != "" {
		m.Category = o.Category
	}
	if o.BudgetCategory != "" {
		m.BudgetCategory = o.BudgetCategory
	}
}

// ResolveConflict clears the counterparty binding when it points at
// the same source column as the description. The same column cannot
// feed both fields.
func (m *ColumnMap) ResolveConflict() {
	if m.Description != "" && m.Description == m.Counterparty {
		m.Counterparty = ""
	}
}

// header pairs the original header text with its lowercase form so
// matches stay case-insensitive while the map keeps the exact header.
type header struct {
	raw   string
	lower string
}

// GuessMapping inspects the column headers of an uploaded file and
// proposes a best-effort ColumnMap. Every match is a case-insensitive
// "header contains keyword" test; for each field the keyword tiers are
// tried in order and within a tier the first header wins. Fields with
// no match are left empty for the user to fill in.
func GuessMapping(headers []string) ColumnMap {
	lowered := make([]header, len(headers))
	for i, h := range headers {
		lowered[i] = header{raw: h, lower: strings.ToLower(h)}
	}

	date := findFirst(lowered,
		func(l string) bool {
			return strings.Contains(l, "date") && (strings.Contains(l, "opér") || strings.Contains(l, "oper"))
		},
		func(l string) bool {
			return strings.Contains(l, "date") && !(strings.Contains(l, "valeur") || strings.Contains(l, "comptab"))
		},
		func(l string) bool { return strings.Contains(l, "date") },
	)

	// No generic amount column is fine: normalization falls back to a
	// debit/credit column pair found in the row itself.
	amount := findAny(lowered, "montant", "amount", "prix", "value", "sum")

	description := findFirst(lowered,
		func(l string) bool {
			return strings.Contains(l, "libell") && (strings.Contains(l, "opér") || strings.Contains(l, "oper"))
		},
		func(l string) bool { return strings.Contains(l, "description") },
		func(l string) bool { return strings.Contains(l, "libell") },
		func(l string) bool {
			return strings.Contains(l, "informations compl") || strings.Contains(l, "info compl")
		},
	)

	counterparty := findFirst(lowered,
		func(l string) bool { return strings.Contains(l, "libell") && strings.Contains(l, "simpl") },
		func(l string) bool {
			return strings.Contains(l, "payee") || strings.Contains(l, "bénéfic") || strings.Contains(l, "benefic")
		},
		func(l string) bool {
			return strings.Contains(l, "merchant") || strings.Contains(l, "fournisseur")
		},
	)

	typ := findAny(lowered, "type operation", "type d'opération", "type", "sens", "debit/credit", "dr/cr", "nature")

	return ColumnMap{
		Date:         date,
		Amount:       amount,
		Description:  description,
		Counterparty: counterparty,
		Type:         typ,
	}
}

func findAny(headers []header, keywords ...string) string {
	for _, h := range headers {
		for _, kw := range keywords {
			if strings.Contains(h.lower, kw) {
				return h.raw
			}
		}
	}
	return ""
}

// findFirst checks one predicate tier at a time; a later tier is only
// consulted when no header satisfied the earlier one.
func findFirst(headers []header, tiers ...func(string) bool) string {
	for _, pred := range tiers {
		for _, h := range headers {
			if pred(h.lower) {
				return h.raw
			}
		}
	}
	return ""
}
