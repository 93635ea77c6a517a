package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/rightsdesk/backend/config"
	"github.com/rightsdesk/backend/model"
)

// Pipeline is the contract intake sequence: extract text, build the
// prompt, call the analysis service, classify, persist, and schedule
// an expiry alert when warranted. One pipeline instance serves all
// deployments; the prompt template and classification strategy are
// picked by configuration instead of forking the flow.
type Pipeline struct {
	analysis *AnalysisService
	strategy ClassificationStrategy
	store    RecordStore
	alerts   *AlertScheduler
	template string
}

func NewPipeline(cfg *config.AnalysisConfig, store RecordStore, alerts *AlertScheduler) *Pipeline {
	return &Pipeline{
		analysis: NewAnalysisService(cfg),
		strategy: StrategyFor(cfg.Strategy),
		store:    store,
		alerts:   alerts,
		template: cfg.Template,
	}
}

// Process runs the whole pipeline synchronously for one upload and
// returns the stored record. An empty extraction result is processed
// normally and yields a degenerate analysis record.
func (p *Pipeline) Process(ctx context.Context, filename, uploadedBy string, data []byte) (*model.ContractRecord, error) {
	kind := KindForFilename(filename)

	text, err := ExtractText(data, kind)
	if err != nil {
		return nil, err
	}

	prompt := BuildPrompt(text, p.template)

	analysis, err := p.analysis.Analyze(ctx, prompt)
	if err != nil {
		return nil, err
	}

	record := &model.ContractRecord{
		Filename:   filename,
		UploadedBy: uploadedBy,
		RawText:    text,
		Analysis:   analysis,
		UploadedAt: time.Now(),
	}
	p.Classify(record)

	// Append assigns the ID under the store lock; the record must not
	// be written after it is published.
	if _, err := p.store.Append(ctx, record); err != nil {
		return nil, err
	}

	p.maybeScheduleAlert(record)

	slog.Info("contract analyzed",
		"record_id", record.ID,
		"filename", record.Filename,
		"status", record.Status,
		"risk_score", record.RiskScore,
		"text_len", len(text),
	)
	return record, nil
}

// Classify recomputes the derived status and risk score for a record.
// Both are pure functions of the analysis, so this is called on every
// read path as well as at creation.
func (p *Pipeline) Classify(record *model.ContractRecord) {
	record.Status, record.RiskScore = p.strategy.Classify(record.Analysis)
}

// maybeScheduleAlert records a reminder for contracts the analysis
// marks as expired or that carry a renewal date.
func (p *Pipeline) maybeScheduleAlert(record *model.ContractRecord) {
	if p.alerts == nil {
		return
	}

	if record.Analysis != nil && record.Analysis.Structured != nil {
		if renewal := record.Analysis.Structured.RenewalDates; renewal != "" {
			if t, err := time.Parse("2006-01-02", renewal); err == nil {
				p.alerts.Schedule(record.Filename, t)
				return
			}
		}
	}

	if record.Status == model.StatusExpired {
		p.alerts.Schedule(record.Filename, record.UploadedAt)
	}
}
