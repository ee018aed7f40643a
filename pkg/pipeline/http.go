package pipeline

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"

	"github.com/ayushbridge/platform/pkg/common/logger"
	"github.com/ayushbridge/platform/pkg/common/models"
	"github.com/ayushbridge/platform/pkg/observability/metrics"
	"github.com/ayushbridge/platform/pkg/terminology"
)

// HistoryReader is the read side of the run history, kept separate from the
// HistoryStore the orchestrator writes through.
type HistoryReader interface {
	Get(ctx context.Context, id string) (*Run, error)
	Recent(ctx context.Context, limit int) ([]Run, error)
}

type HTTPHandler struct {
	service *Service
	history HistoryReader
	maxBody int64
}

func NewHTTPHandler(service *Service, history HistoryReader, maxBody int64) *HTTPHandler {
	return &HTTPHandler{service: service, history: history, maxBody: maxBody}
}

func (h *HTTPHandler) Register(router *mux.Router) {
	api := router.PathPrefix("/api/v1").Subrouter()
	api.HandleFunc("/ingest/trigger", h.handleIngest).Methods(http.MethodPost)
	api.HandleFunc("/status", h.handleStatus).Methods(http.MethodGet)
	api.HandleFunc("/data/cleanup-stats", h.handleCleanupStats).Methods(http.MethodGet)
	api.HandleFunc("/emr/preview", h.handlePreview).Methods(http.MethodGet)
	api.HandleFunc("/terminology/mappings", h.handleAddMapping).Methods(http.MethodPost)
	api.HandleFunc("/terminology/stats", h.handleTerminologyStats).Methods(http.MethodGet)
	api.HandleFunc("/history", h.handleHistory).Methods(http.MethodGet)
	api.HandleFunc("/history/{id}", h.handleHistoryEntry).Methods(http.MethodGet)

	router.HandleFunc("/health", h.handleHealth).Methods(http.MethodGet)
	router.HandleFunc("/metrics", h.handleMetrics).Methods(http.MethodGet)
}

func (h *HTTPHandler) handleIngest(w http.ResponseWriter, r *http.Request) {
	if h.maxBody > 0 {
		r.Body = http.MaxBytesReader(w, r.Body, h.maxBody)
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		logger.Log.WithError(err).Warn("ingestion request missing file upload")
		http.Error(w, "multipart form must include a 'file' part", http.StatusBadRequest)
		return
	}
	defer file.Close()

	result, err := h.service.ProcessFile(r.Context(), header.Filename, file)
	if err != nil {
		if IsBatchError(err) {
			writeJSON(w, http.StatusBadRequest, result)
			return
		}
		logger.Log.WithError(err).Error("failed to process batch")
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, result)
}

func (h *HTTPHandler) handleStatus(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"status":               "operational",
		"timestamp":            time.Now().UTC(),
		"cumulative_stats":     h.service.CumulativeStats(),
		"terminology_mappings": h.service.Translator().Stats(),
	})
}

func (h *HTTPHandler) handleCleanupStats(w http.ResponseWriter, r *http.Request) {
	summary, err := h.service.LatestSummary(r.Context())
	if err != nil {
		http.Error(w, "no batches processed yet", http.StatusNotFound)
		return
	}
	writeJSON(w, http.StatusOK, summary)
}

// handlePreview runs the pipeline on a fixed demonstration sample without
// touching the cumulative totals, the history store or downstream systems.
func (h *HTTPHandler) handlePreview(w http.ResponseWriter, r *http.Request) {
	sample := []models.RawRecord{
		{
			PatientID:      "PAT001",
			TM2Code:        "TM2.A01.01",
			ConditionName:  "Chronic Insomnia",
			SystemType:     "Ayurveda",
			Severity:       "Moderate",
			DiagnosisDate:  "2024-01-15",
			PractitionerID: "DOC123",
		},
		{
			PatientID:      "PAT002",
			TM2Code:        "TM2.B02.03",
			ConditionName:  "Digestive Disorders",
			SystemType:     "Siddha",
			Severity:       "Mild",
			DiagnosisDate:  "2024-02-20",
			PractitionerID: "DOC456",
		},
	}

	result, err := h.service.Preview(r.Context(), sample)
	if err != nil {
		logger.Log.WithError(err).Error("failed to generate conversion preview")
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"sample_input": sample,
		"summary":      result.Summary,
		"emr_output":   result.EMROutput,
	})
}

type addMappingRequest struct {
	Category string `json:"category"`
	Native   string `json:"native_term"`
	English  string `json:"english_term"`
}

func (h *HTTPHandler) handleAddMapping(w http.ResponseWriter, r *http.Request) {
	var req addMappingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	if err := h.service.Translator().AddMapping(terminology.Category(req.Category), req.Native, req.English); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	writeJSON(w, http.StatusCreated, map[string]interface{}{
		"message":  "mapping registered",
		"category": req.Category,
		"native":   req.Native,
		"english":  req.English,
	})
}

func (h *HTTPHandler) handleTerminologyStats(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"mappings":     h.service.Translator().Stats(),
		"match_tiers":  h.service.Translator().TierCounts(),
		"generated_at": time.Now().UTC(),
	})
}

func (h *HTTPHandler) handleHistory(w http.ResponseWriter, r *http.Request) {
	if h.history == nil {
		http.Error(w, "run history not configured", http.StatusNotImplemented)
		return
	}

	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 0 {
			http.Error(w, "limit must be a non-negative integer", http.StatusBadRequest)
			return
		}
		limit = parsed
	}

	runs, err := h.history.Recent(r.Context(), limit)
	if err != nil {
		logger.Log.WithError(err).Error("failed to list run history")
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, runs)
}

func (h *HTTPHandler) handleHistoryEntry(w http.ResponseWriter, r *http.Request) {
	if h.history == nil {
		http.Error(w, "run history not configured", http.StatusNotImplemented)
		return
	}

	run, err := h.history.Get(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		if errors.Is(err, ErrRunNotFound) {
			http.Error(w, "run not found", http.StatusNotFound)
			return
		}
		logger.Log.WithError(err).Error("failed to fetch run")
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, run)
}

func (h *HTTPHandler) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "healthy", "service": eventSource})
}

func (h *HTTPHandler) handleMetrics(w http.ResponseWriter, r *http.Request) {
	metrics.WritePrometheus(w)
}

func writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(payload)
}
