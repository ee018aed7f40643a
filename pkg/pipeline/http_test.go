package pipeline

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gorilla/mux"

	"github.com/ayushbridge/platform/pkg/common/models"
	"github.com/ayushbridge/platform/pkg/stats"
	"github.com/ayushbridge/platform/pkg/terminology"
)

func newTestRouter(t *testing.T) *mux.Router {
	t.Helper()
	svc := NewService(terminology.New(), stats.NewCumulative(), nil, nil, nil, nil)
	router := mux.NewRouter()
	NewHTTPHandler(svc, nil, 1<<20).Register(router)
	return router
}

func multipartUpload(t *testing.T, filename, content string) (*bytes.Buffer, string) {
	t.Helper()
	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	part, err := writer.CreateFormFile("file", filename)
	if err != nil {
		t.Fatalf("CreateFormFile: %v", err)
	}
	if _, err := part.Write([]byte(content)); err != nil {
		t.Fatalf("write part: %v", err)
	}
	writer.Close()
	return &body, writer.FormDataContentType()
}

func TestHandleIngestCSV(t *testing.T) {
	router := newTestRouter(t)

	csv := "patient_id,tm2_code,condition_name,system_type,severity,diagnosis_date,practitioner_id\n" +
		"PAT001,TM2.A01.01,ज्वर,आयुर्वेद,मध्यम,2024-01-15,DOC123\n"
	body, contentType := multipartUpload(t, "batch.csv", csv)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/ingest/trigger", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}

	var result models.BatchResult
	if err := json.Unmarshal(rec.Body.Bytes(), &result); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if result.Status != models.BatchCompleted {
		t.Errorf("batch status = %q", result.Status)
	}
	if result.Summary.Cleaning.RecordsCleaned != 1 {
		t.Errorf("records cleaned = %d, want 1", result.Summary.Cleaning.RecordsCleaned)
	}
}

func TestHandleIngestRejectsMissingFile(t *testing.T) {
	router := newTestRouter(t)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/ingest/trigger", strings.NewReader("{}"))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
}

func TestHandleIngestRejectsUnreadableWorkbook(t *testing.T) {
	router := newTestRouter(t)

	body, contentType := multipartUpload(t, "data.xlsx", "not a workbook")
	req := httptest.NewRequest(http.MethodPost, "/api/v1/ingest/trigger", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
	var result models.BatchResult
	if err := json.Unmarshal(rec.Body.Bytes(), &result); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if result.Status != models.BatchFailed {
		t.Errorf("batch status = %q, want failed", result.Status)
	}
}

func TestHandlePreview(t *testing.T) {
	router := newTestRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/emr/preview", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var payload struct {
		EMROutput models.EMRRecord `json:"emr_output"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &payload); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if len(payload.EMROutput.Patients) != 2 {
		t.Errorf("preview patients = %d, want 2", len(payload.EMROutput.Patients))
	}
}

func TestHandleAddMapping(t *testing.T) {
	router := newTestRouter(t)

	body := `{"category":"condition","native_term":"परीक्षण","english_term":"Test Condition"}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/terminology/mappings", strings.NewReader(body))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}

	bad := `{"category":"planet","native_term":"x","english_term":"y"}`
	req = httptest.NewRequest(http.MethodPost, "/api/v1/terminology/mappings", strings.NewReader(bad))
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400 for unknown category", rec.Code)
	}
}

func TestHandleStatusAndMetrics(t *testing.T) {
	router := newTestRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/status", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("status endpoint = %d", rec.Code)
	}

	req = httptest.NewRequest(http.MethodGet, "/metrics", nil)
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("metrics endpoint = %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "ayushbridge_batches_completed_total") {
		t.Error("metrics output missing batch counter")
	}
}

func TestHandleHistoryNotConfigured(t *testing.T) {
	router := newTestRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/history", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	if rec.Code != http.StatusNotImplemented {
		t.Fatalf("status = %d, want 501 without a history store", rec.Code)
	}
}
