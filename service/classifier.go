package service

import (
	"strings"

	"github.com/rightsdesk/backend/config"
	"github.com/rightsdesk/backend/model"
)

// ClassificationStrategy derives a status tag and a risk score in
// [0,100] from an analysis. Both are pure functions of the analysis
// content and are recomputed on every read.
type ClassificationStrategy interface {
	Classify(a *model.Analysis) (status string, riskScore int)
}

// KeywordStrategy classifies by literal substring matching. It is a
// deliberately crude compatibility heuristic, preserved exactly:
// "expired" anywhere in the text marks the contract Expired, and
// "termination" raises the score to 87, otherwise 45.
type KeywordStrategy struct{}

func (KeywordStrategy) Classify(a *model.Analysis) (string, int) {
	text := strings.ToLower(a.FlatText())

	status := model.StatusActive
	if strings.Contains(text, "expired") {
		status = model.StatusExpired
	}

	score := 45
	if strings.Contains(text, "termination") {
		score = 87
	}

	return status, score
}

// StructuredStrategy scores a parsed risk report by its high-risk
// clause count: min(100, 50 + 10 per high-risk clause). A missing or
// empty heatmap scores 50. The status test is the same "expired"
// substring check applied to the flattened report.
type StructuredStrategy struct{}

func (StructuredStrategy) Classify(a *model.Analysis) (string, int) {
	status := model.StatusActive
	if strings.Contains(strings.ToLower(a.FlatText()), "expired") {
		status = model.StatusExpired
	}

	highCount := 0
	if a != nil && a.Structured != nil {
		for _, clause := range a.Structured.ClauseRiskHeatmap {
			if clause.RiskLevel == "high" {
				highCount++
			}
		}
	}

	score := 50 + 10*highCount
	if score > 100 {
		score = 100
	}

	return status, score
}

// StrategyFor returns the classification strategy named in config.
// Unknown names fall back to the keyword strategy.
func StrategyFor(name string) ClassificationStrategy {
	if name == config.StrategyStructured {
		return StructuredStrategy{}
	}
	return KeywordStrategy{}
}
