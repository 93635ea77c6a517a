package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/rightsdesk/backend/config"
	"github.com/rightsdesk/backend/model"
	"github.com/rightsdesk/backend/service"
)

// newTestEnv builds a handler backed by an in-memory store and a fake
// model endpoint that always answers with responseText.
func newTestEnv(t *testing.T, responseText string) (*ContractHandler, *service.MemoryStore, *service.AlertScheduler) {
	t.Helper()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{
			"candidates": []map[string]any{
				{"content": map[string]any{"parts": []map[string]any{{"text": responseText}}}},
			},
		})
	}))
	t.Cleanup(server.Close)

	cfg := &config.AnalysisConfig{
		APIURL:   server.URL,
		APIKey:   "test-key",
		Model:    "gemini-pro",
		Template: config.TemplateSummary,
		Strategy: config.StrategyKeyword,
	}

	store := service.NewMemoryStore()
	alerts := service.NewAlertScheduler()
	pipeline := service.NewPipeline(cfg, store, alerts)
	return NewContractHandler(pipeline, store, nil), store, alerts
}

func multipartFile(t *testing.T, filename, content string) (*bytes.Buffer, string) {
	t.Helper()

	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	part, err := writer.CreateFormFile("file", filename)
	if err != nil {
		t.Fatalf("Failed to create form file: %v", err)
	}
	part.Write([]byte(content))
	writer.Close()
	return body, writer.FormDataContentType()
}

func TestContractHandlerUpload(t *testing.T) {
	handler, store, _ := newTestEnv(t, "Summary: termination clause present.")

	router := gin.New()
	router.POST("/upload", func(c *gin.Context) {
		c.Set("username", "alice")
		handler.Upload(c)
	})

	body, contentType := multipartFile(t, "deal.txt", "Licensing agreement text.")
	req := httptest.NewRequest("POST", "/upload", body)
	req.Header.Set("Content-Type", contentType)
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d: %s", w.Code, w.Body.String())
	}

	var response map[string]interface{}
	if err := json.Unmarshal(w.Body.Bytes(), &response); err != nil {
		t.Fatalf("Failed to parse response: %v", err)
	}
	if response["id"] == "" {
		t.Error("Expected record id in response")
	}
	if response["filename"] != "deal.txt" {
		t.Errorf("Expected filename 'deal.txt', got '%v'", response["filename"])
	}
	if response["uploaded_by"] != "alice" {
		t.Errorf("Expected uploaded_by 'alice', got '%v'", response["uploaded_by"])
	}
	if response["status"] != model.StatusActive {
		t.Errorf("Expected Active status, got '%v'", response["status"])
	}
	if response["risk_score"] != float64(87) {
		t.Errorf("Expected risk score 87, got %v", response["risk_score"])
	}

	if store.Count() != 1 {
		t.Errorf("Expected 1 stored record, got %d", store.Count())
	}
}

func TestContractHandlerUploadNoFile(t *testing.T) {
	handler, _, _ := newTestEnv(t, "anything")

	router := gin.New()
	router.POST("/upload", handler.Upload)

	req := httptest.NewRequest("POST", "/upload", nil)
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Errorf("Expected status 400, got %d", w.Code)
	}

	var response map[string]string
	json.Unmarshal(w.Body.Bytes(), &response)
	if response["error"] != "No file provided" {
		t.Errorf("Expected 'No file provided' error, got '%s'", response["error"])
	}
}

func TestContractHandlerUploadInvalidType(t *testing.T) {
	handler, store, _ := newTestEnv(t, "anything")

	router := gin.New()
	router.POST("/upload", handler.Upload)

	body, contentType := multipartFile(t, "report.docx", "binary stuff")
	req := httptest.NewRequest("POST", "/upload", body)
	req.Header.Set("Content-Type", contentType)
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Errorf("Expected status 400, got %d", w.Code)
	}
	if store.Count() != 0 {
		t.Error("Rejected upload must not be stored")
	}
}

func TestContractHandlerUploadServiceDown(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	cfg := &config.AnalysisConfig{
		APIURL:   server.URL,
		Model:    "gemini-pro",
		Template: config.TemplateSummary,
		Strategy: config.StrategyKeyword,
	}
	store := service.NewMemoryStore()
	pipeline := service.NewPipeline(cfg, store, nil)
	handler := NewContractHandler(pipeline, store, nil)

	router := gin.New()
	router.POST("/upload", handler.Upload)

	body, contentType := multipartFile(t, "deal.txt", "text")
	req := httptest.NewRequest("POST", "/upload", body)
	req.Header.Set("Content-Type", contentType)
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	if w.Code != http.StatusServiceUnavailable {
		t.Errorf("Expected status 503, got %d", w.Code)
	}
	if store.Count() != 0 {
		t.Error("Failed upload must not be stored")
	}
}

func TestContractHandlerList(t *testing.T) {
	handler, store, _ := newTestEnv(t, "ok")

	store.Append(context.Background(), &model.ContractRecord{
		Filename:   "first.txt",
		Analysis:   &model.Analysis{Text: "this one has expired"},
		UploadedAt: time.Date(2026, 1, 10, 0, 0, 0, 0, time.UTC),
	})
	store.Append(context.Background(), &model.ContractRecord{
		Filename:   "second.txt",
		Analysis:   &model.Analysis{Text: "termination on notice"},
		UploadedAt: time.Date(2026, 2, 20, 0, 0, 0, 0, time.UTC),
	})

	router := gin.New()
	router.GET("/contracts", handler.List)

	req := httptest.NewRequest("GET", "/contracts", nil)
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", w.Code)
	}

	var response map[string][]map[string]interface{}
	if err := json.Unmarshal(w.Body.Bytes(), &response); err != nil {
		t.Fatalf("Failed to parse response: %v", err)
	}

	contracts := response["contracts"]
	if len(contracts) != 2 {
		t.Fatalf("Expected 2 contracts, got %d", len(contracts))
	}
	if contracts[0]["filename"] != "first.txt" {
		t.Errorf("Expected insertion order, got '%v' first", contracts[0]["filename"])
	}
	// Status and score are recomputed on read.
	if contracts[0]["status"] != model.StatusExpired {
		t.Errorf("Expected Expired status for first record, got '%v'", contracts[0]["status"])
	}
	if contracts[1]["risk_score"] != float64(87) {
		t.Errorf("Expected risk score 87 for second record, got %v", contracts[1]["risk_score"])
	}
}

func TestContractHandlerListEmpty(t *testing.T) {
	handler, _, _ := newTestEnv(t, "ok")

	router := gin.New()
	router.GET("/contracts", handler.List)

	req := httptest.NewRequest("GET", "/contracts", nil)
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("Expected status 200, got %d", w.Code)
	}

	var response map[string][]map[string]interface{}
	if err := json.Unmarshal(w.Body.Bytes(), &response); err != nil {
		t.Fatalf("Failed to parse response: %v", err)
	}
	if len(response["contracts"]) != 0 {
		t.Errorf("Expected 0 contracts, got %d", len(response["contracts"]))
	}
}

func TestContractHandlerGet(t *testing.T) {
	handler, store, _ := newTestEnv(t, "ok")

	id, _ := store.Append(context.Background(), &model.ContractRecord{
		Filename: "deal.txt",
		RawText:  "full agreement text",
		Analysis: &model.Analysis{Text: "summary"},
	})

	tests := []struct {
		name           string
		id             string
		expectedStatus int
	}{
		{name: "valid get", id: id, expectedStatus: http.StatusOK},
		{name: "non-existent", id: "non-existent", expectedStatus: http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router := gin.New()
			router.GET("/contracts/:id", handler.Get)

			req := httptest.NewRequest("GET", "/contracts/"+tt.id, nil)
			w := httptest.NewRecorder()

			router.ServeHTTP(w, req)

			if w.Code != tt.expectedStatus {
				t.Errorf("Expected status %d, got %d", tt.expectedStatus, w.Code)
			}

			if tt.expectedStatus == http.StatusOK {
				var response map[string]interface{}
				if err := json.Unmarshal(w.Body.Bytes(), &response); err != nil {
					t.Fatalf("Failed to parse response: %v", err)
				}
				if response["raw_text"] != "full agreement text" {
					t.Errorf("Expected raw text in detail view, got '%v'", response["raw_text"])
				}
			}
		})
	}
}

func TestContractHandlerFilter(t *testing.T) {
	handler, store, _ := newTestEnv(t, "ok")

	store.Append(context.Background(), &model.ContractRecord{
		Filename:   "Label_Deal.txt",
		Analysis:   &model.Analysis{Text: "ok"},
		UploadedAt: time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC),
	})
	store.Append(context.Background(), &model.ContractRecord{
		Filename:   "venue.pdf",
		Analysis:   &model.Analysis{Text: "ok"},
		UploadedAt: time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC),
	})

	tests := []struct {
		name           string
		query          string
		expectedStatus int
		expectedCount  int
	}{
		{name: "by name", query: "name=label", expectedStatus: http.StatusOK, expectedCount: 1},
		{name: "by date", query: "date=2026-03-02", expectedStatus: http.StatusOK, expectedCount: 1},
		{name: "no match", query: "name=nothing", expectedStatus: http.StatusOK, expectedCount: 0},
		{name: "no params", query: "", expectedStatus: http.StatusOK, expectedCount: 2},
		{name: "bad date", query: "date=03/02/2026", expectedStatus: http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router := gin.New()
			router.GET("/contracts/filter", handler.Filter)

			req := httptest.NewRequest("GET", "/contracts/filter?"+tt.query, nil)
			w := httptest.NewRecorder()

			router.ServeHTTP(w, req)

			if w.Code != tt.expectedStatus {
				t.Fatalf("Expected status %d, got %d", tt.expectedStatus, w.Code)
			}
			if tt.expectedStatus != http.StatusOK {
				return
			}

			var response map[string][]map[string]interface{}
			if err := json.Unmarshal(w.Body.Bytes(), &response); err != nil {
				t.Fatalf("Failed to parse response: %v", err)
			}
			if len(response["contracts"]) != tt.expectedCount {
				t.Errorf("Expected %d contracts, got %d", tt.expectedCount, len(response["contracts"]))
			}
		})
	}
}

func TestContractHandlerExport(t *testing.T) {
	handler, store, _ := newTestEnv(t, "ok")

	store.Append(context.Background(), &model.ContractRecord{
		Filename:   "deal.txt",
		Analysis:   &model.Analysis{Text: "brief summary"},
		UploadedAt: time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC),
	})

	router := gin.New()
	router.GET("/contracts/export", handler.Export)

	req := httptest.NewRequest("GET", "/contracts/export", nil)
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", w.Code)
	}
	if ct := w.Header().Get("Content-Type"); !strings.Contains(ct, "text/csv") {
		t.Errorf("Expected text/csv content type, got '%s'", ct)
	}
	if cd := w.Header().Get("Content-Disposition"); !strings.Contains(cd, "contracts.csv") {
		t.Errorf("Expected attachment disposition, got '%s'", cd)
	}

	body := w.Body.String()
	if !strings.HasPrefix(body, "filename,analysis,status,upload_date") {
		t.Errorf("Unexpected CSV header: %q", body)
	}
	if !strings.Contains(body, "deal.txt,brief summary") {
		t.Errorf("Expected record row in CSV, got %q", body)
	}
}

func TestNewContractHandler(t *testing.T) {
	handler := NewContractHandler(nil, nil, nil)
	if handler == nil {
		t.Fatal("Expected non-nil handler")
	}
}
