package service

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/xuri/excelize/v2"

	"github.com/rightsdesk/backend/model"
)

const sheetName = "Contracts"

var sheetHeaders = []string{
	"ID",
	"Filename",
	"Uploaded By",
	"Upload Date",
	"Agreement Type",
	"Territory",
	"Rights",
	"Renewal Dates",
	"Summary",
	"Analysis",
}

// SheetStore persists records in an XLSX workbook, one row per
// record. Every append re-reads the whole table and rewrites it with
// one more row, the way the original spreadsheet logger worked. The
// mutex serializes appends within this process; concurrent writers
// from other processes still race on the file, which is a known
// limitation of the design.
type SheetStore struct {
	mu   sync.Mutex
	path string
}

func NewSheetStore(path string) (*SheetStore, error) {
	s := &SheetStore{path: path}

	if _, err := os.Stat(path); os.IsNotExist(err) {
		if err := s.writeAll(nil); err != nil {
			return nil, fmt.Errorf("failed to create sheet: %w", err)
		}
		slog.Info("sheet store created", "path", path)
	}

	return s, nil
}

func (s *SheetStore) Append(ctx context.Context, record *model.ContractRecord) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if record.ID == "" {
		record.ID = uuid.New().String()
	}
	if record.UploadedAt.IsZero() {
		record.UploadedAt = time.Now()
	}

	// Fetch-all, add one row, rewrite-all.
	records, err := s.readAll()
	if err != nil {
		return "", err
	}
	records = append(records, record)
	if err := s.writeAll(records); err != nil {
		return "", err
	}

	slog.Debug("record appended to sheet", "record_id", record.ID, "path", s.path)
	return record.ID, nil
}

func (s *SheetStore) List(ctx context.Context) ([]*model.ContractRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.readAll()
}

func (s *SheetStore) Filter(ctx context.Context, q FilterQuery) ([]*model.ContractRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	records, err := s.readAll()
	if err != nil {
		return nil, err
	}
	return filterRecords(records, q), nil
}

func (s *SheetStore) readAll() ([]*model.ContractRecord, error) {
	f, err := excelize.OpenFile(s.path)
	if err != nil {
		return nil, fmt.Errorf("failed to open sheet: %w", err)
	}
	defer f.Close()

	rows, err := f.GetRows(sheetName)
	if err != nil {
		return nil, fmt.Errorf("failed to read sheet rows: %w", err)
	}

	var records []*model.ContractRecord
	for i, row := range rows {
		if i == 0 {
			continue // header
		}
		records = append(records, rowToRecord(row))
	}
	return records, nil
}

func (s *SheetStore) writeAll(records []*model.ContractRecord) error {
	f := excelize.NewFile()
	defer f.Close()

	index, err := f.NewSheet(sheetName)
	if err != nil {
		return fmt.Errorf("failed to create sheet: %w", err)
	}
	f.SetActiveSheet(index)
	if err := f.DeleteSheet("Sheet1"); err != nil {
		return fmt.Errorf("failed to drop default sheet: %w", err)
	}

	for col, header := range sheetHeaders {
		cell, _ := excelize.CoordinatesToCellName(col+1, 1)
		if err := f.SetCellValue(sheetName, cell, header); err != nil {
			return fmt.Errorf("failed to write header: %w", err)
		}
	}

	for i, record := range records {
		values := recordToRow(record)
		for col, value := range values {
			cell, _ := excelize.CoordinatesToCellName(col+1, i+2)
			if err := f.SetCellValue(sheetName, cell, value); err != nil {
				return fmt.Errorf("failed to write row %d: %w", i+2, err)
			}
		}
	}

	if err := f.SaveAs(s.path); err != nil {
		return fmt.Errorf("failed to save sheet: %w", err)
	}
	return nil
}

func recordToRow(r *model.ContractRecord) []string {
	var agreementType, territory, rights, renewals, summary string
	if r.Analysis != nil && r.Analysis.Structured != nil {
		st := r.Analysis.Structured
		agreementType = st.AgreementType
		territory = st.Territory
		rights = st.Rights
		renewals = st.RenewalDates
		summary = st.ComplianceSummary
	} else if r.Analysis != nil {
		summary = r.Analysis.Text
	}

	analysisJSON := ""
	if r.Analysis != nil {
		if b, err := json.Marshal(r.Analysis); err == nil {
			analysisJSON = string(b)
		}
	}

	return []string{
		r.ID,
		r.Filename,
		r.UploadedBy,
		r.UploadedAt.Format("2006-01-02"),
		agreementType,
		territory,
		rights,
		renewals,
		summary,
		analysisJSON,
	}
}

func rowToRecord(row []string) *model.ContractRecord {
	get := func(i int) string {
		if i < len(row) {
			return row[i]
		}
		return ""
	}

	record := &model.ContractRecord{
		ID:         get(0),
		Filename:   get(1),
		UploadedBy: get(2),
	}
	if t, err := time.Parse("2006-01-02", get(3)); err == nil {
		record.UploadedAt = t
	}
	if raw := get(9); raw != "" {
		var a model.Analysis
		if err := json.Unmarshal([]byte(raw), &a); err == nil {
			record.Analysis = &a
		}
	}
	if record.Analysis == nil && get(8) != "" {
		record.Analysis = &model.Analysis{Text: get(8)}
	}
	return record
}
