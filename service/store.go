package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/rightsdesk/backend/config"
	"github.com/rightsdesk/backend/model"
)

// FilterQuery selects records by filename substring (case-insensitive)
// and/or upload date. Zero values match everything.
type FilterQuery struct {
	NameContains string
	Date         string // YYYY-MM-DD
}

// RecordStore holds analyzed contract records. Append is the only
// mutator; records are never updated or removed, and List returns
// them in insertion order.
type RecordStore interface {
	Append(ctx context.Context, record *model.ContractRecord) (string, error)
	List(ctx context.Context) ([]*model.ContractRecord, error)
	Filter(ctx context.Context, q FilterQuery) ([]*model.ContractRecord, error)
}

// NewRecordStore builds the store backend named in config.
func NewRecordStore(cfg *config.StoreConfig) (RecordStore, error) {
	switch cfg.Backend {
	case config.StoreSheet:
		return NewSheetStore(cfg.SheetPath)
	case config.StoreMemory, "":
		return NewMemoryStore(), nil
	default:
		return nil, fmt.Errorf("unknown store backend %q", cfg.Backend)
	}
}

// MemoryStore is the in-memory record store. Lifetime is bounded by
// process lifetime. The mutex is a deliberate addition over the
// original single-user design so concurrent sessions cannot lose
// appends.
type MemoryStore struct {
	mu      sync.RWMutex
	records []*model.ContractRecord
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func (s *MemoryStore) Append(ctx context.Context, record *model.ContractRecord) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if record.ID == "" {
		record.ID = uuid.New().String()
	}
	if record.UploadedAt.IsZero() {
		record.UploadedAt = time.Now()
	}
	s.records = append(s.records, record)

	slog.Debug("record appended", "record_id", record.ID, "filename", record.Filename)
	return record.ID, nil
}

// List returns detached shallow copies. Callers recompute Status and
// RiskScore on the copies, so those writes never touch stored records.
func (s *MemoryStore) List(ctx context.Context) ([]*model.ContractRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return copyRecords(s.records), nil
}

func (s *MemoryStore) Filter(ctx context.Context, q FilterQuery) ([]*model.ContractRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return copyRecords(filterRecords(s.records, q)), nil
}

// Count returns the number of stored records.
func (s *MemoryStore) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.records)
}

// copyRecords makes shallow per-record copies so concurrent readers
// can reclassify without racing each other on the shared records.
func copyRecords(records []*model.ContractRecord) []*model.ContractRecord {
	result := make([]*model.ContractRecord, len(records))
	for i, r := range records {
		c := *r
		result[i] = &c
	}
	return result
}

// filterRecords applies a FilterQuery to an ordered record slice. An
// empty result is a valid outcome, not an error.
func filterRecords(records []*model.ContractRecord, q FilterQuery) []*model.ContractRecord {
	result := []*model.ContractRecord{}
	needle := strings.ToLower(q.NameContains)
	for _, r := range records {
		if needle != "" && !strings.Contains(strings.ToLower(r.Filename), needle) {
			continue
		}
		if q.Date != "" && r.UploadedAt.Format("2006-01-02") != q.Date {
			continue
		}
		result = append(result, r)
	}
	return result
}
