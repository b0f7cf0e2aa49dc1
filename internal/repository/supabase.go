package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/supabase-community/supabase-go"

	"github.com/ivanoskov/budget_manager/internal/model"
)

type SupabaseRepository struct {
	client *supabase.Client
}

func NewSupabaseRepository(url, key string) (*SupabaseRepository, error) {
	client, err := supabase.NewClient(url, key, &supabase.ClientOptions{})
	if err != nil {
		return nil, err
	}

	return &SupabaseRepository{
		client: client,
	}, nil
}

// NewSupabaseRepositoryWithToken builds a repository whose requests
// carry the user's access token, so row-level security scopes every
// query to that user.
func NewSupabaseRepositoryWithToken(url, key, accessToken string) (*SupabaseRepository, error) {
	client, err := supabase.NewClient(url, key, &supabase.ClientOptions{
		Headers: map[string]string{
			"Authorization": "Bearer " + accessToken,
		},
	})
	if err != nil {
		return nil, err
	}

	return &SupabaseRepository{
		client: client,
	}, nil
}

// AuthenticatedUser resolves the access token to the owning user id.
func (r *SupabaseRepository) AuthenticatedUser(ctx context.Context, accessToken string) (string, error) {
	resp, err := r.client.Auth.WithToken(accessToken).GetUser()
	if err != nil {
		return "", fmt.Errorf("failed to resolve user: %w", err)
	}
	return resp.ID.String(), nil
}

const ruleColumns = "id, pattern, category, budget_category, enabled, created_at"

// legacyRuleColumns is used when the deployment's rules table predates
// the budget_category column; the field is backfilled empty so
// callers never see the difference.
const legacyRuleColumns = "id, pattern, category, enabled, created_at"

func (r *SupabaseRepository) FetchRules(ctx context.Context) ([]model.Rule, error) {
	data, _, err := r.client.From("rules").
		Select(ruleColumns, "", false).
		Order("created_at.asc", nil).
		Execute()
	if err != nil && strings.Contains(err.Error(), "budget_category") {
		data, _, err = r.client.From("rules").
			Select(legacyRuleColumns, "", false).
			Order("created_at.asc", nil).
			Execute()
	}
	if err != nil {
		return nil, fmt.Errorf("failed to fetch rules: %w", err)
	}

	var rules []model.Rule
	if err := json.Unmarshal(data, &rules); err != nil {
		return nil, fmt.Errorf("failed to parse rules: %w", err)
	}
	return rules, nil
}

func (r *SupabaseRepository) CreateRule(ctx context.Context, rule *model.Rule) error {
	data, _, err := r.client.From("rules").Insert(rule, false, "", "", "").Execute()
	if err != nil {
		return fmt.Errorf("failed to create rule: %w", err)
	}

	var created []model.Rule
	if err := json.Unmarshal(data, &created); err != nil {
		return fmt.Errorf("failed to parse created rule: %w", err)
	}
	if len(created) > 0 {
		rule.ID = created[0].ID
		rule.CreatedAt = created[0].CreatedAt
	}
	return nil
}

func (r *SupabaseRepository) SetRuleEnabled(ctx context.Context, id string, enabled bool) error {
	_, _, err := r.client.From("rules").
		Update(map[string]interface{}{"enabled": enabled}, "", "").
		Eq("id", id).
		Execute()
	if err != nil {
		return fmt.Errorf("failed to update rule: %w", err)
	}
	return nil
}

func (r *SupabaseRepository) DeleteRule(ctx context.Context, id string) error {
	_, _, err := r.client.From("rules").
		Delete("", "").
		Eq("id", id).
		Execute()
	if err != nil {
		return fmt.Errorf("failed to delete rule: %w", err)
	}
	return nil
}

// InsertTransactions writes a whole import batch tagged with its
// owner. The backend rejects the batch as a unit on any row error.
func (r *SupabaseRepository) InsertTransactions(ctx context.Context, userID string, txs []model.Transaction) error {
	payload := make([]model.Transaction, len(txs))
	for i, tx := range txs {
		tx.UserID = userID
		tx.GenerateID()
		payload[i] = tx
	}

	_, _, err := r.client.From("transactions").Insert(payload, false, "", "", "").Execute()
	if err != nil {
		return fmt.Errorf("failed to insert transactions: %w", err)
	}
	return nil
}

func (r *SupabaseRepository) GetTransactions(ctx context.Context, filter model.TransactionFilter) ([]model.Transaction, error) {
	query := r.client.From("transactions").Select("*", "", false)

	if filter.StartDate != "" {
		query = query.Gte("occurred_at", filter.StartDate)
	}
	if filter.EndDate != "" {
		query = query.Lte("occurred_at", filter.EndDate)
	}
	if filter.Category != "" {
		query = query.Eq("category", filter.Category)
	}
	if filter.Search != "" {
		esc := escapeLike(filter.Search)
		query = query.Or(fmt.Sprintf("description.ilike.%%%s%%,counterparty.ilike.%%%s%%", esc, esc), "")
	}

	query = query.Order("occurred_at.desc", nil)

	if filter.Limit > 0 {
		if filter.Offset > 0 {
			query = query.Range(filter.Offset, filter.Offset+filter.Limit-1, "")
		} else {
			query = query.Limit(filter.Limit, "")
		}
	}

	data, _, err := query.Execute()
	if err != nil {
		return nil, fmt.Errorf("failed to get transactions: %w", err)
	}

	var txs []model.Transaction
	if err := json.Unmarshal(data, &txs); err != nil {
		return nil, fmt.Errorf("failed to parse transactions: %w", err)
	}
	return txs, nil
}

// UpdateTransactionCategories applies partial updates, one PostgREST
// request per distinct payload so a thousand rows moving to the same
// category cost a single call. Present-but-empty fields are written as
// NULL rather than skipped.
func (r *SupabaseRepository) UpdateTransactionCategories(ctx context.Context, updates []model.TransactionUpdate) (int, error) {
	type group struct {
		ids     []string
		payload map[string]interface{}
	}

	groups := make(map[string]*group)
	order := make([]string, 0)
	for _, u := range updates {
		if u.ID == "" || (u.Category == nil && u.BudgetCategory == nil) {
			continue
		}
		payload := make(map[string]interface{})
		if u.Category != nil {
			payload["category"] = nullable(*u.Category)
		}
		if u.BudgetCategory != nil {
			payload["budget_category"] = nullable(*u.BudgetCategory)
		}
		key := payloadKey(u)
		g, ok := groups[key]
		if !ok {
			g = &group{payload: payload}
			groups[key] = g
			order = append(order, key)
		}
		g.ids = append(g.ids, u.ID)
	}

	updated := 0
	for _, key := range order {
		g := groups[key]
		data, _, err := r.client.From("transactions").
			Update(g.payload, "", "").
			In("id", g.ids).
			Execute()
		if err != nil {
			return updated, fmt.Errorf("failed to update transactions: %w", err)
		}
		var rows []struct {
			ID string `json:"id"`
		}
		if err := json.Unmarshal(data, &rows); err == nil && len(rows) > 0 {
			updated += len(rows)
		} else {
			updated += len(g.ids)
		}
	}
	return updated, nil
}

func (r *SupabaseRepository) DeleteTransaction(ctx context.Context, id string) error {
	_, _, err := r.client.From("transactions").
		Delete("", "").
		Eq("id", id).
		Execute()
	if err != nil {
		return fmt.Errorf("failed to delete transaction: %w", err)
	}
	return nil
}

// nullable maps a blank value to SQL NULL.
func nullable(v string) interface{} {
	trimmed := strings.TrimSpace(v)
	if trimmed == "" {
		return nil
	}
	return trimmed
}

// payloadKey identifies a distinct update payload. Absent and empty
// fields produce different keys: absent means "leave alone", empty
// means "clear".
func payloadKey(u model.TransactionUpdate) string {
	var b strings.Builder
	if u.Category != nil {
		b.WriteString("c=")
		b.WriteString(strings.TrimSpace(*u.Category))
	}
	b.WriteByte('|')
	if u.BudgetCategory != nil {
		b.WriteString("b=")
		b.WriteString(strings.TrimSpace(*u.BudgetCategory))
	}
	return b.String()
}

// escapeLike escapes the PostgREST ilike wildcards in user input.
func escapeLike(s string) string {
	s = strings.ReplaceAll(s, "%", "\\%")
	s = strings.ReplaceAll(s, "_", "\\_")
	return s
}
