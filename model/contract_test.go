package model

import (
	"strings"
	"testing"
	"time"
)

func TestContractRecordStruct(t *testing.T) {
	record := &ContractRecord{
		ID:         "test-id",
		Filename:   "license.pdf",
		UploadedBy: "alice",
		RawText:    "This agreement...",
		Analysis:   &Analysis{Text: "Key clauses: ..."},
		UploadedAt: time.Now(),
		Status:     StatusActive,
		RiskScore:  45,
	}

	if record.ID != "test-id" {
		t.Errorf("Expected ID 'test-id', got '%s'", record.ID)
	}
	if record.Status != StatusActive {
		t.Errorf("Expected status '%s', got '%s'", StatusActive, record.Status)
	}
}

func TestStatusConstants(t *testing.T) {
	statuses := []string{StatusActive, StatusExpired}
	expected := []string{"Active", "Expired"}

	for i, status := range statuses {
		if status != expected[i] {
			t.Errorf("Expected '%s', got '%s'", expected[i], status)
		}
	}
}

func TestAnalysisFlatTextFreeForm(t *testing.T) {
	a := &Analysis{Text: "The contract is expired."}
	if a.FlatText() != "The contract is expired." {
		t.Errorf("Expected verbatim text, got '%s'", a.FlatText())
	}
}

func TestAnalysisFlatTextStructured(t *testing.T) {
	a := &Analysis{
		Structured: &StructuredAnalysis{
			ComplianceSummary: "Mostly compliant",
			ClauseRiskHeatmap: []ClauseRisk{
				{Clause: "Termination", RiskLevel: "high"},
			},
		},
	}

	flat := a.FlatText()
	if !strings.Contains(flat, "Mostly compliant") {
		t.Errorf("Expected flattened text to contain summary, got '%s'", flat)
	}
	if !strings.Contains(flat, "Termination") {
		t.Errorf("Expected flattened text to contain clause name, got '%s'", flat)
	}
}

func TestAnalysisFlatTextNil(t *testing.T) {
	var a *Analysis
	if a.FlatText() != "" {
		t.Error("Expected empty string for nil analysis")
	}
}
