package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/rightsdesk/backend/config"
	"github.com/rightsdesk/backend/model"
)

// AnalysisService sends prompts to the hosted inference endpoint and
// returns the response as free text or a parsed structured report.
type AnalysisService struct {
	config     *config.AnalysisConfig
	httpClient *http.Client
}

// generateRequest is the wire format of a generateContent call.
type generateRequest struct {
	Contents []generateContent `json:"contents"`
}

type generateContent struct {
	Parts []generatePart `json:"parts"`
}

type generatePart struct {
	Text string `json:"text"`
}

// generateResponse is the wire format of the model's answer.
type generateResponse struct {
	Candidates []struct {
		Content struct {
			Parts []generatePart `json:"parts"`
		} `json:"content"`
	} `json:"candidates"`
	Error *struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

func NewAnalysisService(cfg *config.AnalysisConfig) *AnalysisService {
	return &AnalysisService{
		config: cfg,
		httpClient: &http.Client{
			Timeout: cfg.Timeout(),
		},
	}
}

// Analyze sends the prompt and shapes the response according to the
// configured template. Transport failures, timeouts and non-2xx
// statuses come back wrapped in ErrServiceUnavailable. A structured
// response that fails to parse degrades to the sentinel analysis
// {"error": "Invalid response format"} rather than an error.
func (s *AnalysisService) Analyze(ctx context.Context, prompt string) (*model.Analysis, error) {
	raw, err := s.generate(ctx, prompt)
	if err != nil {
		return nil, err
	}

	if s.config.Template == config.TemplateStructured {
		return &model.Analysis{Structured: s.parseStructured(raw)}, nil
	}
	return &model.Analysis{Text: raw}, nil
}

// generate performs one generateContent call and returns the raw
// textual response.
func (s *AnalysisService) generate(ctx context.Context, prompt string) (string, error) {
	reqBody := generateRequest{
		Contents: []generateContent{
			{Parts: []generatePart{{Text: prompt}}},
		},
	}

	jsonData, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("failed to marshal request: %w", err)
	}

	url := fmt.Sprintf("%s/v1beta/models/%s:generateContent",
		strings.TrimRight(s.config.APIURL, "/"), s.config.Model)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewBuffer(jsonData))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-goog-api-key", s.config.APIKey)

	start := time.Now()
	resp, err := s.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrServiceUnavailable, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("%w: failed to read response: %v", ErrServiceUnavailable, err)
	}

	slog.Debug("analysis service response",
		"status", resp.StatusCode,
		"bytes", len(body),
		"elapsed_ms", time.Since(start).Milliseconds(),
	)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", fmt.Errorf("%w: status %d: %s", ErrServiceUnavailable, resp.StatusCode, string(body))
	}

	var result generateResponse
	if err := json.Unmarshal(body, &result); err != nil {
		return "", fmt.Errorf("%w: failed to parse response envelope: %v", ErrServiceUnavailable, err)
	}
	if result.Error != nil {
		return "", fmt.Errorf("%w: API error %d: %s", ErrServiceUnavailable, result.Error.Code, result.Error.Message)
	}
	if len(result.Candidates) == 0 || len(result.Candidates[0].Content.Parts) == 0 {
		return "", fmt.Errorf("%w: no candidates in response", ErrServiceUnavailable)
	}

	return result.Candidates[0].Content.Parts[0].Text, nil
}

// parseStructured parses the model output as a JSON risk report.
// Models tend to wrap JSON in markdown fences, so those are stripped
// first. Any parse or schema failure degrades to the sentinel result.
func (s *AnalysisService) parseStructured(raw string) *model.StructuredAnalysis {
	jsonStr := strings.TrimSpace(raw)
	jsonStr = strings.TrimPrefix(jsonStr, "```json")
	jsonStr = strings.TrimPrefix(jsonStr, "```")
	jsonStr = strings.TrimSuffix(jsonStr, "```")
	jsonStr = strings.TrimSpace(jsonStr)

	if s.config.ValidateSchema {
		if err := ValidateStructuredResponse([]byte(jsonStr)); err != nil {
			slog.Warn("structured response failed schema validation", "error", err)
			return &model.StructuredAnalysis{Error: "Invalid response format"}
		}
	}

	var parsed model.StructuredAnalysis
	if err := json.Unmarshal([]byte(jsonStr), &parsed); err != nil {
		slog.Warn("structured response is not valid JSON", "error", err)
		return &model.StructuredAnalysis{Error: "Invalid response format"}
	}

	return &parsed
}
