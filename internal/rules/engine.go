package rules

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"

	"github.com/ivanoskov/budget_manager/internal/model"
)

// stripDiacritics decomposes to NFD and drops combining marks, so
// "Café" and "cafe" compare equal after lowercasing.
var stripDiacritics = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// Normalize lowercases a value and strips diacritics. It is applied to
// both rule patterns and candidate field values before matching.
func Normalize(v string) string {
	lowered := strings.ToLower(v)
	out, _, err := transform.String(stripDiacritics, lowered)
	if err != nil {
		return lowered
	}
	return out
}

type cacheEntry struct {
	raw        string
	normalized string
}

// Engine matches transactions against an ordered rule list. Normalized
// patterns are cached per rule id; the cache is owned by the engine
// instance and must be invalidated whenever the backing rule list is
// refetched. Lookups never fail: no match is a normal, silent outcome.
type Engine struct {
	cache map[string]cacheEntry
}

func NewEngine() *Engine {
	return &Engine{cache: make(map[string]cacheEntry)}
}

// Invalidate drops every cached pattern. Called wholesale after any
// rule create, update or delete; entries are never diffed one by one.
func (e *Engine) Invalidate() {
	e.cache = make(map[string]cacheEntry)
}

func (e *Engine) normalizedPattern(r model.Rule) string {
	if ent, ok := e.cache[r.ID]; ok && ent.raw == r.Pattern {
		return ent.normalized
	}
	normalized := Normalize(r.Pattern)
	e.cache[r.ID] = cacheEntry{raw: r.Pattern, normalized: normalized}
	return normalized
}

// ApplyCategory resolves the category for a transaction's text fields:
// rules are scanned in their given order and the first enabled rule
// with a category whose pattern is contained in the normalized
// description or counterparty wins. Returns "" when nothing matches.
func (e *Engine) ApplyCategory(description, counterparty string, rules []model.Rule) string {
	return e.apply(description, counterparty, rules, func(r model.Rule) string { return r.Category })
}

// ApplyBudgetCategory is ApplyCategory for the budget_category field;
// the two fields are always resolved independently.
func (e *Engine) ApplyBudgetCategory(description, counterparty string, rules []model.Rule) string {
	return e.apply(description, counterparty, rules, func(r model.Rule) string { return r.BudgetCategory })
}

func (e *Engine) apply(description, counterparty string, rules []model.Rule, target func(model.Rule) string) string {
	if len(rules) == 0 {
		return ""
	}
	desc := Normalize(description)
	cp := Normalize(counterparty)
	for _, r := range rules {
		if !r.Enabled || target(r) == "" {
			continue
		}
		pattern := e.normalizedPattern(r)
		if pattern == "" {
			continue
		}
		if strings.Contains(desc, pattern) || strings.Contains(cp, pattern) {
			return target(r)
		}
	}
	return ""
}
