package dictionary

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"
)

// ImportConfig defines the wordlist import configuration.
type ImportConfig struct {
	WordColumn        int    // 0-based column with the word
	TranslationColumn int    // 0-based column with the translation
	SheetName         string // name of the sheet to import (XLSX only)
	StartRow          int    // the row to start importing from (1-based)
}

// DefaultImportConfig returns the default import configuration.
func DefaultImportConfig() ImportConfig {
	return ImportConfig{
		WordColumn:        0,
		TranslationColumn: 1,
		SheetName:         "Sheet1",
		StartRow:          2, // start from the second row (skip header)
	}
}

// ImportResult holds the result of a wordlist import.
type ImportResult struct {
	TotalProcessed int
	Created        int
	Updated        int
	Skipped        int
	Errors         []string
}

// ImportFile merges a wordlist file into the dictionary. The format is
// chosen by extension: .csv is read as CSV, everything else as XLSX.
func (d *Dictionary) ImportFile(path string, cfg ImportConfig) (*ImportResult, error) {
	ext := strings.ToLower(filepath.Ext(path))
	if ext == ".csv" {
		return d.importFromCSV(path, cfg)
	}
	return d.importFromExcel(path, cfg)
}

// importFromExcel merges word/translation pairs from an XLSX sheet.
func (d *Dictionary) importFromExcel(path string, cfg ImportConfig) (*ImportResult, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open Excel file: %w", err)
	}
	defer f.Close()

	rows, err := f.GetRows(cfg.SheetName)
	if err != nil {
		return nil, fmt.Errorf("failed to get rows: %w", err)
	}

	result := &ImportResult{Errors: make([]string, 0)}
	for i, row := range rows {
		// Skip header rows
		if i < cfg.StartRow-1 {
			continue
		}
		result.TotalProcessed++
		if err := d.mergeRow(row, cfg, result); err != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("Row %d: %v", i+1, err))
		}
	}
	return result, nil
}

// importFromCSV merges word/translation pairs from a CSV file.
func (d *Dictionary) importFromCSV(path string, cfg ImportConfig) (*ImportResult, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open CSV file: %w", err)
	}
	defer file.Close()

	reader := csv.NewReader(file)
	reader.FieldsPerRecord = -1 // allow variable number of fields
	reader.LazyQuotes = true

	result := &ImportResult{Errors: make([]string, 0)}
	rowNum := 0
	for {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("error reading CSV: %w", err)
		}

		rowNum++
		if rowNum < cfg.StartRow {
			continue
		}

		result.TotalProcessed++
		if err := d.mergeRow(row, cfg, result); err != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("Row %d: %v", rowNum, err))
		}
	}
	return result, nil
}

// mergeRow stores one row's word/translation pair. Rows without both cells
// are counted as skipped, not errors.
func (d *Dictionary) mergeRow(row []string, cfg ImportConfig, result *ImportResult) error {
	w := cell(row, cfg.WordColumn)
	tr := cell(row, cfg.TranslationColumn)
	if w == "" || tr == "" {
		result.Skipped++
		return nil
	}

	existed, err := d.set(w, tr)
	if err != nil {
		result.Skipped++
		return err
	}
	if existed {
		result.Updated++
	} else {
		result.Created++
	}
	return nil
}

func cell(row []string, col int) string {
	if col < 0 || col >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[col])
}
