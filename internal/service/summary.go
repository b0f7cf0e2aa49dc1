package service

import (
	"context"
	"fmt"
	"sort"

	"github.com/ivanoskov/budget_manager/internal/model"
)

// CategoryTotal is one slice of the spending breakdown: total spent
// (absolute value) and transaction count for a category.
type CategoryTotal struct {
	Category string  `json:"category"`
	Total    float64 `json:"total"`
	Count    int     `json:"count"`
}

// MonthFlow is the income/expense pair of one calendar month.
type MonthFlow struct {
	Month    string  `json:"month"`
	Income   float64 `json:"income"`
	Expenses float64 `json:"expenses"`
}

// Summary is the spending overview for a month or a full year. Chart
// rendering is the consumer's job; this is data only.
type Summary struct {
	Period             string          `json:"period"`
	TotalIncome        float64         `json:"total_income"`
	TotalExpenses      float64         `json:"total_expenses"`
	Saving             float64         `json:"saving"`
	MonthlyAvgIncome   float64         `json:"monthly_avg_income,omitempty"`
	MonthlyAvgExpenses float64         `json:"monthly_avg_expenses,omitempty"`
	Months             []MonthFlow     `json:"months,omitempty"`
	TopCategories      []CategoryTotal `json:"top_categories"`
}

const topCategoryCount = 8

// GetSummary computes the spending overview for a year, or for one
// month of it when month is 1..12. Categories reflect the live rule
// overlay, so uncategorized rows land under their rule-derived label.
func (s *BudgetTracker) GetSummary(ctx context.Context, year, month int) (*Summary, error) {
	txs, err := s.repo.GetTransactions(ctx, model.TransactionFilter{
		StartDate: fmt.Sprintf("%04d-01-01", year),
		EndDate:   fmt.Sprintf("%04d-12-31", year),
	})
	if err != nil {
		return nil, err
	}
	overlaid, err := s.ApplyRulesOverlay(ctx, txs)
	if err != nil {
		return nil, err
	}

	byMonth := GroupByMonth(overlaid)

	if month >= 1 && month <= 12 {
		key := fmt.Sprintf("%04d-%02d", year, month)
		rows := byMonth[key]
		return &Summary{
			Period:        key,
			TotalIncome:   SumIncome(rows),
			TotalExpenses: SumExpenses(rows),
			Saving:        Saving(rows),
			TopCategories: TopCategories(rows, topCategoryCount),
		}, nil
	}

	summary := &Summary{
		Period:        fmt.Sprintf("%04d", year),
		TotalIncome:   SumIncome(overlaid),
		TotalExpenses: SumExpenses(overlaid),
		Saving:        Saving(overlaid),
		TopCategories: TopCategories(overlaid, topCategoryCount),
	}
	summary.MonthlyAvgIncome = summary.TotalIncome / 12
	summary.MonthlyAvgExpenses = summary.TotalExpenses / 12
	for m := 1; m <= 12; m++ {
		key := fmt.Sprintf("%04d-%02d", year, m)
		rows := byMonth[key]
		summary.Months = append(summary.Months, MonthFlow{
			Month:    key,
			Income:   SumIncome(rows),
			Expenses: SumExpenses(rows),
		})
	}
	return summary, nil
}

// SumIncome totals the positive amounts.
func SumIncome(txs []model.Transaction) float64 {
	total := 0.0
	for _, t := range txs {
		if t.Amount > 0 {
			total += t.Amount
		}
	}
	return total
}

// SumExpenses totals the negative amounts as a positive number.
func SumExpenses(txs []model.Transaction) float64 {
	total := 0.0
	for _, t := range txs {
		if t.Amount < 0 {
			total += -t.Amount
		}
	}
	return total
}

// Saving is income minus expenses; negative when the period overspent.
func Saving(txs []model.Transaction) float64 {
	return SumIncome(txs) - SumExpenses(txs)
}

// GroupByMonth buckets transactions by the YYYY-MM prefix of their
// date.
func GroupByMonth(txs []model.Transaction) map[string][]model.Transaction {
	grouped := make(map[string][]model.Transaction)
	for _, t := range txs {
		if len(t.OccurredAt) < 7 {
			continue
		}
		key := t.OccurredAt[:7]
		grouped[key] = append(grouped[key], t)
	}
	return grouped
}

// TopCategories ranks expense categories by total spent. Income rows
// are ignored; uncategorized spending appears under the empty label.
func TopCategories(txs []model.Transaction, n int) []CategoryTotal {
	sums := make(map[string]*CategoryTotal)
	order := make([]string, 0)
	for _, t := range txs {
		if t.Amount >= 0 {
			continue
		}
		entry, ok := sums[t.Category]
		if !ok {
			entry = &CategoryTotal{Category: t.Category}
			sums[t.Category] = entry
			order = append(order, t.Category)
		}
		entry.Total += -t.Amount
		entry.Count++
	}

	out := make([]CategoryTotal, 0, len(order))
	for _, key := range order {
		out = append(out, *sums[key])
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Total > out[j].Total
	})
	if n > 0 && len(out) > n {
		out = out[:n]
	}
	return out
}
