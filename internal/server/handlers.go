package server

import (
	"encoding/json"
	"errors"
	"mime/multipart"
	"net/http"
	"strconv"
	"time"

	"github.com/ivanoskov/budget_manager/internal/model"
	"github.com/ivanoskov/budget_manager/internal/normalizer"
	"github.com/ivanoskov/budget_manager/internal/rules"
	"github.com/ivanoskov/budget_manager/internal/service"
)

const (
	defaultPageSize  = 40
	maxUploadBytes   = 10 << 20
	importPreviewCap = 20
)

// handleIngest accepts a batch of already-normalized rows, tags them
// with the owner and stores them all-or-nothing.
func (s *Server) handleIngest(w http.ResponseWriter, r *http.Request, tracker *service.BudgetTracker, userID string) {
	var body struct {
		Rows []model.Transaction `json:"rows"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil || body.Rows == nil {
		writeError(w, http.StatusBadRequest, "expected a rows array")
		return
	}
	if err := tracker.IngestTransactions(r.Context(), userID, body.Rows); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// handleImport runs the full pipeline on an uploaded CSV file. Row
// errors come back as 422 with the line-annotated message.
func (s *Server) handleImport(w http.ResponseWriter, r *http.Request, tracker *service.BudgetTracker, userID string) {
	file, overrides, ok := importUpload(w, r)
	if !ok {
		return
	}
	defer file.Close()

	result, err := tracker.ImportCSV(r.Context(), userID, file, overrides)
	if err != nil {
		writeError(w, importStatus(err), err.Error())
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (s *Server) handleImportPreview(w http.ResponseWriter, r *http.Request, tracker *service.BudgetTracker, _ string) {
	file, overrides, ok := importUpload(w, r)
	if !ok {
		return
	}
	defer file.Close()

	preview, err := tracker.PreviewCSV(file, overrides, importPreviewCap)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, preview)
}

func (s *Server) handleListTransactions(w http.ResponseWriter, r *http.Request, tracker *service.BudgetTracker, _ string) {
	q := r.URL.Query()
	filter := model.TransactionFilter{
		StartDate: q.Get("start"),
		EndDate:   q.Get("end"),
		Category:  q.Get("category"),
		Search:    q.Get("search"),
		Limit:     intParam(q.Get("limit"), defaultPageSize),
		Offset:    intParam(q.Get("offset"), 0),
	}

	txs, err := tracker.GetTransactions(r.Context(), filter)
	if err != nil {
		writeError(w, http.StatusBadGateway, err.Error())
		return
	}
	if q.Get("overlay") == "1" {
		txs, err = tracker.ApplyRulesOverlay(r.Context(), txs)
		if err != nil {
			writeError(w, http.StatusBadGateway, err.Error())
			return
		}
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"transactions": txs})
}

func (s *Server) handleDeleteTransaction(w http.ResponseWriter, r *http.Request, tracker *service.BudgetTracker, _ string) {
	if err := tracker.DeleteTransaction(r.Context(), r.PathValue("id")); err != nil {
		writeError(w, http.StatusBadGateway, err.Error())
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleUpdateCategories(w http.ResponseWriter, r *http.Request, tracker *service.BudgetTracker, _ string) {
	var body struct {
		Updates []model.TransactionUpdate `json:"updates"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil || len(body.Updates) == 0 {
		writeError(w, http.StatusBadRequest, "expected a non-empty updates array")
		return
	}
	updated, err := tracker.UpdateCategories(r.Context(), body.Updates)
	if err != nil {
		writeError(w, http.StatusBadGateway, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]int{"updated": updated})
}

func (s *Server) handleListRules(w http.ResponseWriter, r *http.Request, tracker *service.BudgetTracker, _ string) {
	ruleList, err := tracker.ListRules(r.Context())
	if err != nil {
		writeError(w, http.StatusBadGateway, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"rules": ruleList})
}

func (s *Server) handleCreateRule(w http.ResponseWriter, r *http.Request, tracker *service.BudgetTracker, userID string) {
	var rule model.Rule
	if err := json.NewDecoder(r.Body).Decode(&rule); err != nil {
		writeError(w, http.StatusBadRequest, "invalid rule payload")
		return
	}
	rule.UserID = userID
	if err := rule.Validate(); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := tracker.CreateRule(r.Context(), &rule); err != nil {
		writeError(w, http.StatusBadGateway, err.Error())
		return
	}
	writeJSON(w, http.StatusCreated, rule)
}

func (s *Server) handleUpdateRule(w http.ResponseWriter, r *http.Request, tracker *service.BudgetTracker, _ string) {
	var body struct {
		Enabled *bool `json:"enabled"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil || body.Enabled == nil {
		writeError(w, http.StatusBadRequest, "expected an enabled flag")
		return
	}
	if err := tracker.SetRuleEnabled(r.Context(), r.PathValue("id"), *body.Enabled); err != nil {
		writeError(w, http.StatusBadGateway, err.Error())
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleDeleteRule(w http.ResponseWriter, r *http.Request, tracker *service.BudgetTracker, _ string) {
	if err := tracker.DeleteRule(r.Context(), r.PathValue("id")); err != nil {
		writeError(w, http.StatusBadGateway, err.Error())
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleRulesPreview(w http.ResponseWriter, r *http.Request, tracker *service.BudgetTracker, _ string) {
	var scope service.RuleScope
	if err := json.NewDecoder(r.Body).Decode(&scope); err != nil {
		writeError(w, http.StatusBadRequest, "invalid scope payload")
		return
	}
	changes, err := tracker.PreviewRuleChanges(r.Context(), scope)
	if err != nil {
		writeError(w, http.StatusBadGateway, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"count":   len(changes),
		"changes": changes,
	})
}

func (s *Server) handleRulesCommit(w http.ResponseWriter, r *http.Request, tracker *service.BudgetTracker, _ string) {
	var body struct {
		Changes []rules.Change `json:"changes"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid changes payload")
		return
	}
	updated, err := tracker.CommitRuleChanges(r.Context(), body.Changes)
	if err != nil {
		writeError(w, http.StatusBadGateway, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]int{"updated": updated})
}

func (s *Server) handleSummary(w http.ResponseWriter, r *http.Request, tracker *service.BudgetTracker, _ string) {
	q := r.URL.Query()
	year := intParam(q.Get("year"), time.Now().Year())
	month := intParam(q.Get("month"), 0)

	summary, err := tracker.GetSummary(r.Context(), year, month)
	if err != nil {
		writeError(w, http.StatusBadGateway, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, summary)
}

// importUpload pulls the CSV file and optional mapping overrides out
// of a multipart form. Writes the error response itself when ok is
// false.
func importUpload(w http.ResponseWriter, r *http.Request) (file multipart.File, overrides *normalizer.ColumnMap, ok bool) {
	// ParseMultipartForm only bounds what is held in memory; the
	// reader bound cuts an oversized body off entirely.
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		writeError(w, http.StatusBadRequest, "expected a multipart upload")
		return nil, nil, false
	}
	f, _, err := r.FormFile("file")
	if err != nil {
		writeError(w, http.StatusBadRequest, "missing file field")
		return nil, nil, false
	}
	if raw := r.FormValue("mapping"); raw != "" {
		var cmap normalizer.ColumnMap
		if err := json.Unmarshal([]byte(raw), &cmap); err != nil {
			f.Close()
			writeError(w, http.StatusBadRequest, "invalid mapping payload")
			return nil, nil, false
		}
		overrides = &cmap
	}
	return f, overrides, true
}

// importStatus distinguishes row-level data errors (422, fix the
// file) from everything else (400).
func importStatus(err error) int {
	var dateErr *normalizer.DateError
	var amountErr *normalizer.AmountError
	if errors.As(err, &dateErr) || errors.As(err, &amountErr) {
		return http.StatusUnprocessableEntity
	}
	return http.StatusBadRequest
}

func intParam(raw string, fallback int) int {
	if raw == "" {
		return fallback
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		return fallback
	}
	return n
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
