package service

import (
	"github.com/rightsdesk/backend/config"
)

const summaryInstructions = `Analyze the following contract. Highlight key clauses, renewal terms, rights granted, restrictions, and expiration dates. Answer as a bullet-format legal summary.

Contract text:
`

const structuredInstructions = `You are a contract compliance analyst. Analyze the following contract and return ONLY a JSON object with exactly these keys:
- "Compliance Summary": a short string summarizing overall compliance posture.
- "Clause Risk Heatmap": a list of objects, each {"clause": string, "risk_level": "low"|"medium"|"high"}.
- "Category-wise Clause Risk Analysis": an object mapping category names to lists of risk-description strings.
You may additionally include "Agreement Type", "Territory", "Rights" and "Renewal Dates" as strings when the contract states them.

Contract text:
`

// BuildPrompt formats the extracted text plus a fixed instruction
// block into a single request payload. The text is appended verbatim;
// no size bounding or sanitization is performed.
func BuildPrompt(text, templateKind string) string {
	switch templateKind {
	case config.TemplateStructured:
		return structuredInstructions + text
	default:
		return summaryInstructions + text
	}
}
