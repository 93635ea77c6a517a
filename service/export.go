package service

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"time"

	"github.com/rightsdesk/backend/model"
)

var csvHeader = []string{"filename", "analysis", "status", "upload_date"}

// ExportCSV renders the record list as CSV, one row per record in the
// given order, columns filename/analysis/status/upload_date.
func ExportCSV(records []*model.ContractRecord) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	if err := w.Write(csvHeader); err != nil {
		return nil, fmt.Errorf("failed to write CSV header: %w", err)
	}

	for _, r := range records {
		row := []string{
			r.Filename,
			r.Analysis.FlatText(),
			r.Status,
			r.UploadedAt.Format("2006-01-02"),
		}
		if err := w.Write(row); err != nil {
			return nil, fmt.Errorf("failed to write CSV row: %w", err)
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return nil, fmt.Errorf("failed to flush CSV: %w", err)
	}
	return buf.Bytes(), nil
}

// ImportCSV parses a CSV produced by ExportCSV back into records.
// Filename, analysis text, status and upload date round-trip; derived
// fields beyond status are left for the classifier to recompute.
func ImportCSV(r io.Reader) ([]*model.ContractRecord, error) {
	reader := csv.NewReader(r)

	rows, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to parse CSV: %w", err)
	}

	var records []*model.ContractRecord
	for i, row := range rows {
		if i == 0 {
			continue // header
		}
		if len(row) < 4 {
			return nil, fmt.Errorf("row %d: expected 4 columns, got %d", i+1, len(row))
		}

		record := &model.ContractRecord{
			Filename: row[0],
			Analysis: &model.Analysis{Text: row[1]},
			Status:   row[2],
		}
		if t, err := time.Parse("2006-01-02", row[3]); err == nil {
			record.UploadedAt = t
		}
		records = append(records, record)
	}
	return records, nil
}
