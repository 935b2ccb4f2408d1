// Package source loads the job source file: a tabular document with a
// keyword column, one keyword per row. CSV and XLSX encodings are
// supported; anything else is a fatal format error.
package source

import (
	"encoding/csv"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/pratama/articleforge/internal/domain"
)

var (
	ErrUnsupportedFormat = errors.New("unsupported job source format")
	ErrMissingColumn     = errors.New("job source has no keyword column")
	ErrNoKeywords        = errors.New("job source contains no keywords")
)

// Load reads the job source file and returns a deduplicated, ordered
// list of pending job items. All errors here are fatal to the run.
func Load(path string) ([]domain.JobItem, error) {
	var rows [][]string
	var err error

	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv":
		rows, err = readCSV(path)
	case ".xlsx":
		rows, err = readXLSX(path)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, filepath.Ext(path))
	}
	if err != nil {
		return nil, err
	}

	return itemsFromRows(rows)
}

func readCSV(path string) ([][]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open job source: %w", err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1 // rows may be ragged, the keyword column is all we need
	rows, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to parse csv job source: %w", err)
	}
	return rows, nil
}

func readXLSX(path string) ([][]string, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open xlsx job source: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, ErrNoKeywords
	}
	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("failed to read xlsx sheet: %w", err)
	}
	return rows, nil
}

// itemsFromRows finds the keyword column in the header row and builds
// the ordered, deduplicated item list.
func itemsFromRows(rows [][]string) ([]domain.JobItem, error) {
	if len(rows) == 0 {
		return nil, ErrNoKeywords
	}

	col := keywordColumn(rows[0])
	if col < 0 {
		return nil, ErrMissingColumn
	}

	seen := make(map[string]struct{})
	var items []domain.JobItem
	for _, row := range rows[1:] {
		if col >= len(row) {
			continue
		}
		keyword := strings.TrimSpace(row[col])
		if keyword == "" {
			continue
		}
		if _, ok := seen[keyword]; ok {
			continue
		}
		seen[keyword] = struct{}{}
		items = append(items, domain.NewJobItem(keyword))
	}

	if len(items) == 0 {
		return nil, ErrNoKeywords
	}
	return items, nil
}

// keywordColumn returns the index of the keyword column, matched
// case-insensitively; the plural spelling is accepted too.
func keywordColumn(header []string) int {
	for i, name := range header {
		switch strings.ToLower(strings.TrimSpace(name)) {
		case "keyword", "keywords":
			return i
		}
	}
	return -1
}
