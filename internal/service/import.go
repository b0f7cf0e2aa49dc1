package service

import (
	"context"
	"fmt"
	"io"

	"github.com/ivanoskov/budget_manager/internal/model"
	"github.com/ivanoskov/budget_manager/internal/normalizer"
	"github.com/ivanoskov/budget_manager/internal/tabular"
)

// ImportResult summarizes a completed CSV import.
type ImportResult struct {
	Rows      int                  `json:"rows"`
	Delimiter string               `json:"delimiter"`
	Mapping   normalizer.ColumnMap `json:"mapping"`
}

// PreviewRow is one row of an import preview: either a normalized
// transaction or the reason the row would fail.
type PreviewRow struct {
	Transaction *model.Transaction `json:"transaction,omitempty"`
	Error       string             `json:"error,omitempty"`
}

// ImportPreview shows what an import would do before anything is
// written: the sniffed delimiter, the guessed (or overridden) mapping
// and the first rows pushed through the normalizer.
type ImportPreview struct {
	Delimiter string               `json:"delimiter"`
	Headers   []string             `json:"headers"`
	Mapping   normalizer.ColumnMap `json:"mapping"`
	TotalRows int                  `json:"total_rows"`
	Rows      []PreviewRow         `json:"rows"`
}

// ImportCSV runs the whole pipeline server-side: sniff the file, guess
// the column mapping, overlay explicit user choices, normalize every
// row and store the batch. The first failing row aborts the import
// with its line number; nothing is written in that case.
func (s *BudgetTracker) ImportCSV(ctx context.Context, userID string, r io.Reader, overrides *normalizer.ColumnMap) (*ImportResult, error) {
	table, err := tabular.Parse(r)
	if err != nil {
		return nil, err
	}

	cmap := s.resolveMapping(table.Headers, overrides)
	if cmap.Date == "" {
		return nil, fmt.Errorf("no date column mapped")
	}

	txs, err := s.norm.NormalizeRows(table.Rows, cmap)
	if err != nil {
		return nil, err
	}
	if err := s.repo.InsertTransactions(ctx, userID, txs); err != nil {
		return nil, err
	}

	return &ImportResult{
		Rows:      len(txs),
		Delimiter: string(table.Delimiter),
		Mapping:   cmap,
	}, nil
}

// PreviewCSV normalizes the first limit rows without writing anything.
// Unlike the import itself, the preview is lenient: a bad row shows
// its error instead of aborting the preview.
func (s *BudgetTracker) PreviewCSV(r io.Reader, overrides *normalizer.ColumnMap, limit int) (*ImportPreview, error) {
	table, err := tabular.Parse(r)
	if err != nil {
		return nil, err
	}

	cmap := s.resolveMapping(table.Headers, overrides)

	if limit <= 0 || limit > len(table.Rows) {
		limit = len(table.Rows)
	}
	preview := &ImportPreview{
		Delimiter: string(table.Delimiter),
		Headers:   table.Headers,
		Mapping:   cmap,
		TotalRows: len(table.Rows),
	}
	for _, row := range table.Rows[:limit] {
		tx, err := s.norm.NormalizeRow(row, cmap)
		if err != nil {
			preview.Rows = append(preview.Rows, PreviewRow{Error: err.Error()})
			continue
		}
		preview.Rows = append(preview.Rows, PreviewRow{Transaction: &tx})
	}
	return preview, nil
}

func (s *BudgetTracker) resolveMapping(headers []string, overrides *normalizer.ColumnMap) normalizer.ColumnMap {
	cmap := normalizer.GuessMapping(headers)
	if overrides != nil {
		cmap.Merge(*overrides)
	}
	cmap.ResolveConflict()
	return cmap
}
