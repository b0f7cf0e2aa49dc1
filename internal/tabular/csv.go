package tabular

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"strings"
)

// Table is the output of the generic tabular parser: the header row in
// file order plus one map per data row, keyed by those headers. The
// normalization pipeline consumes this shape and never touches file
// bytes itself.
type Table struct {
	Headers   []string
	Rows      []map[string]string
	Delimiter rune
}

var candidateDelimiters = []rune{',', ';', '\t'}

// Parse reads a delimited text file, sniffing the delimiter from the
// header line. Rows shorter than the header are padded with empty
// cells; fully empty lines are skipped.
func Parse(r io.Reader) (*Table, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("reading file: %w", err)
	}
	data = bytes.TrimPrefix(data, []byte{0xEF, 0xBB, 0xBF})
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, fmt.Errorf("empty file")
	}

	delimiter := sniffDelimiter(firstLine(data))

	cr := csv.NewReader(bytes.NewReader(data))
	cr.Comma = delimiter
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true
	cr.TrimLeadingSpace = true

	records, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("reading csv: %w", err)
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("empty file")
	}

	headers := make([]string, len(records[0]))
	for i, h := range records[0] {
		headers[i] = strings.TrimSpace(h)
	}

	rows := make([]map[string]string, 0, len(records)-1)
	for _, rec := range records[1:] {
		if isEmptyRecord(rec) {
			continue
		}
		row := make(map[string]string, len(headers))
		for i, h := range headers {
			if h == "" {
				continue
			}
			if i < len(rec) {
				row[h] = rec[i]
			} else {
				row[h] = ""
			}
		}
		rows = append(rows, row)
	}

	return &Table{Headers: headers, Rows: rows, Delimiter: delimiter}, nil
}

// sniffDelimiter picks the candidate appearing most often outside
// quoted sections of the header line. Comma wins ties and is the
// default when nothing appears.
func sniffDelimiter(line string) rune {
	best := ','
	bestCount := 0
	for _, cand := range candidateDelimiters {
		count := 0
		inQuotes := false
		for _, r := range line {
			switch {
			case r == '"':
				inQuotes = !inQuotes
			case r == cand && !inQuotes:
				count++
			}
		}
		if count > bestCount {
			best = cand
			bestCount = count
		}
	}
	return best
}

func firstLine(data []byte) string {
	if i := bytes.IndexByte(data, '\n'); i >= 0 {
		return string(data[:i])
	}
	return string(data)
}

func isEmptyRecord(rec []string) bool {
	for _, cell := range rec {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}
