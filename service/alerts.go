package service

import (
	"log/slog"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/rightsdesk/backend/model"
)

// AlertScheduler records (title, expiry date) reminder pairs for
// contracts. The list is append-only and unbounded; duplicates are
// legal and accumulate.
//
// ListUpcoming returns the full list without comparing against the
// current time. That matches the observed behavior of the original
// dashboard, where the "upcoming" framing in the UI was never backed
// by date filtering.
type AlertScheduler struct {
	mu      sync.RWMutex
	entries []model.AlertEntry
	cron    *cron.Cron
}

func NewAlertScheduler() *AlertScheduler {
	return &AlertScheduler{}
}

// Schedule appends one reminder pair.
func (s *AlertScheduler) Schedule(title string, expiryDate time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.entries = append(s.entries, model.AlertEntry{Title: title, ExpiryDate: expiryDate})
	slog.Debug("alert scheduled", "title", title, "expiry_date", expiryDate.Format("2006-01-02"))
}

// ListUpcoming returns every scheduled entry, past dates included.
func (s *AlertScheduler) ListUpcoming() []model.AlertEntry {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]model.AlertEntry, len(s.entries))
	copy(result, s.entries)
	return result
}

// StartCron runs a periodic job that logs how many scheduled alerts
// have passed their expiry date. It only observes the list; no
// time-based triggering or cleanup happens.
func (s *AlertScheduler) StartCron(spec string) error {
	c := cron.New()

	_, err := c.AddFunc(spec, func() {
		lapsed := 0
		now := time.Now()
		for _, entry := range s.ListUpcoming() {
			if entry.ExpiryDate.Before(now) {
				lapsed++
			}
		}
		slog.Info("alert sweep", "total", len(s.ListUpcoming()), "lapsed", lapsed)
	})
	if err != nil {
		return err
	}

	c.Start()
	s.cron = c
	return nil
}

// StopCron stops the periodic sweep, if one is running.
func (s *AlertScheduler) StopCron() {
	if s.cron != nil {
		s.cron.Stop()
	}
}
