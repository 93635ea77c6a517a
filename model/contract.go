package model

import (
	"encoding/json"
	"time"
)

// ContractRecord represents one analyzed contract document.
// Records are append-only: Analysis is never mutated after creation,
// and Status/RiskScore are derived from Analysis at read time.
type ContractRecord struct {
	ID         string    `json:"id"`
	Filename   string    `json:"filename"`
	UploadedBy string    `json:"uploaded_by,omitempty"`
	RawText    string    `json:"raw_text,omitempty"`
	Analysis   *Analysis `json:"analysis"`
	UploadedAt time.Time `json:"uploaded_at"`
	Status     string    `json:"status"`
	RiskScore  int       `json:"risk_score"`
}

// ContractRecord status constants
const (
	StatusActive  = "Active"
	StatusExpired = "Expired"
)

// Analysis holds the output of the analysis service for one document.
// Exactly one of Text or Structured is populated, depending on which
// prompt template the deployment is configured with.
type Analysis struct {
	Text       string              `json:"text,omitempty"`
	Structured *StructuredAnalysis `json:"structured,omitempty"`
}

// StructuredAnalysis is the JSON risk report returned by the
// structured prompt template.
type StructuredAnalysis struct {
	ComplianceSummary string              `json:"Compliance Summary"`
	ClauseRiskHeatmap []ClauseRisk        `json:"Clause Risk Heatmap"`
	CategoryRisks     map[string][]string `json:"Category-wise Clause Risk Analysis"`

	// Optional licensing fields carried to the sheet store.
	AgreementType string `json:"Agreement Type,omitempty"`
	Territory     string `json:"Territory,omitempty"`
	Rights        string `json:"Rights,omitempty"`
	RenewalDates  string `json:"Renewal Dates,omitempty"`

	// Error is the degrade-not-crash sentinel set when the service
	// response could not be parsed as JSON.
	Error string `json:"error,omitempty"`
}

// ClauseRisk is one entry of the clause risk heatmap.
type ClauseRisk struct {
	Clause    string `json:"clause"`
	RiskLevel string `json:"risk_level"`
}

// FlatText returns the analysis as a single string, for keyword
// classification and CSV export. Structured analyses are rendered as
// compact JSON so the substring heuristics still see every field.
func (a *Analysis) FlatText() string {
	if a == nil {
		return ""
	}
	if a.Structured != nil {
		b, err := json.Marshal(a.Structured)
		if err != nil {
			return a.Text
		}
		return string(b)
	}
	return a.Text
}

// AlertEntry is a scheduled (title, date) reminder pair. Entries have
// no identifier and are never deduplicated.
type AlertEntry struct {
	Title      string    `json:"title"`
	ExpiryDate time.Time `json:"expiry_date"`
}
