package pipeline

import (
	"context"
	"strings"
	"sync"
	"testing"

	"github.com/ayushbridge/platform/pkg/common/models"
	"github.com/ayushbridge/platform/pkg/stats"
	"github.com/ayushbridge/platform/pkg/terminology"
)

type stubSubmitter struct {
	mu     sync.Mutex
	graphs []*models.EMRRecord
	err    error
}

func (s *stubSubmitter) Submit(ctx context.Context, graph *models.EMRRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.graphs = append(s.graphs, graph)
	return s.err
}

type stubHistory struct {
	mu   sync.Mutex
	runs []*Run
}

func (s *stubHistory) Save(ctx context.Context, run *Run) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.runs = append(s.runs, run)
	return nil
}

type stubEvents struct {
	mu      sync.Mutex
	results []*models.BatchResult
}

func (s *stubEvents) PublishBatchCompleted(ctx context.Context, result *models.BatchResult) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.results = append(s.results, result)
	return nil
}

func newTestService() (*Service, *stubSubmitter, *stubHistory, *stubEvents) {
	submitter := &stubSubmitter{}
	history := &stubHistory{}
	events := &stubEvents{}
	svc := NewService(terminology.New(), stats.NewCumulative(), nil, submitter, history, events)
	return svc, submitter, history, events
}

func sampleRows() []models.RawRecord {
	return []models.RawRecord{
		{
			PatientID:      "  PAT001  ",
			TM2Code:        "TM2.A01.01",
			ConditionName:  "ज्वर",
			SystemType:     "आयुर्वेद",
			Severity:       "मध्यम",
			DiagnosisDate:  "2024-01-15",
			PractitionerID: "DOC123",
		},
		{
			PatientID:      "PAT001",
			TM2Code:        "TM2.A01.01",
			ConditionName:  "Fever",
			SystemType:     "Ayurveda",
			Severity:       "Moderate",
			DiagnosisDate:  "2024/01/15",
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
		{
			PatientID:     "",
			TM2Code:       "TM2.C03.01",
			ConditionName: "Headache",
			DiagnosisDate: "2024-03-01",
		},
	}
}

func TestProcessEndToEnd(t *testing.T) {
	svc, submitter, history, events := newTestService()

	result, err := svc.Process(context.Background(), "batch.csv", sampleRows())
	if err != nil {
		t.Fatalf("Process: %v", err)
	}
	if result.Status != models.BatchCompleted {
		t.Fatalf("status = %q, want %q", result.Status, models.BatchCompleted)
	}

	cleaning := result.Summary.Cleaning
	if cleaning.RecordsProcessed != 4 {
		t.Errorf("records processed = %d, want 4", cleaning.RecordsProcessed)
	}
	if cleaning.RecordsCleaned != 2 {
		t.Errorf("records cleaned = %d, want 2", cleaning.RecordsCleaned)
	}
	if cleaning.DuplicatesRemoved != 1 {
		t.Errorf("duplicates removed = %d, want 1", cleaning.DuplicatesRemoved)
	}
	if cleaning.InvalidRecordsRemoved != 1 {
		t.Errorf("invalid removed = %d, want 1", cleaning.InvalidRecordsRemoved)
	}

	if result.EMROutput == nil {
		t.Fatal("expected an EMR graph on the result")
	}
	if got := len(result.EMROutput.Patients); got != 2 {
		t.Errorf("patients = %d, want 2", got)
	}
	if got := len(result.EMROutput.Conditions); got != 2 {
		t.Errorf("conditions = %d, want 2", got)
	}
	if result.EMROutput.Metadata["processing_id"] != result.ProcessingID {
		t.Error("graph metadata missing the processing id")
	}

	if len(submitter.graphs) != 1 {
		t.Errorf("submitter called %d times, want 1", len(submitter.graphs))
	}
	if len(history.runs) != 1 {
		t.Fatalf("history saved %d runs, want 1", len(history.runs))
	}
	if history.runs[0].Status != models.BatchCompleted {
		t.Errorf("persisted run status = %q", history.runs[0].Status)
	}
	if len(events.results) != 1 {
		t.Fatalf("published %d batch events, want 1", len(events.results))
	}
	if events.results[0].ProcessingID != result.ProcessingID {
		t.Error("published event carries the wrong batch")
	}

	cum := svc.CumulativeStats()
	if cum.BatchesProcessed != 1 {
		t.Errorf("cumulative batches = %d, want 1", cum.BatchesProcessed)
	}
	if cum.RecordsProcessed != 4 {
		t.Errorf("cumulative records = %d, want 4", cum.RecordsProcessed)
	}
}

func TestProcessFileRejectsUnreadableInput(t *testing.T) {
	svc, submitter, history, _ := newTestService()

	result, err := svc.ProcessFile(context.Background(), "data.xlsx", strings.NewReader("not a workbook"))
	if err == nil {
		t.Fatal("expected an error for an unreadable file")
	}
	if !IsBatchError(err) {
		t.Fatalf("expected a BatchError, got %T", err)
	}
	if result.Status != models.BatchFailed {
		t.Errorf("status = %q, want %q", result.Status, models.BatchFailed)
	}

	if len(submitter.graphs) != 0 {
		t.Error("nothing should be submitted for a failed batch")
	}
	if len(history.runs) != 1 || history.runs[0].Status != models.BatchFailed {
		t.Errorf("expected one failed run in history, got %+v", history.runs)
	}
	if cum := svc.CumulativeStats(); cum.BatchesFailed != 1 {
		t.Errorf("cumulative failures = %d, want 1", cum.BatchesFailed)
	}
}

func TestPreviewHasNoSideEffects(t *testing.T) {
	svc, submitter, history, events := newTestService()

	result, err := svc.Preview(context.Background(), sampleRows())
	if err != nil {
		t.Fatalf("Preview: %v", err)
	}
	if result.Status != models.BatchCompleted {
		t.Fatalf("status = %q, want %q", result.Status, models.BatchCompleted)
	}
	if result.EMROutput == nil || len(result.EMROutput.Patients) != 2 {
		t.Error("preview should still build the full graph")
	}

	if len(submitter.graphs) != 0 || len(history.runs) != 0 || len(events.results) != 0 {
		t.Error("preview must not touch downstream collaborators")
	}
	if cum := svc.CumulativeStats(); cum.BatchesProcessed != 0 {
		t.Errorf("preview counted against cumulative totals: %+v", cum)
	}
	if _, err := svc.LatestSummary(context.Background()); err == nil {
		t.Error("preview must not become the latest batch summary")
	}
}

func TestProcessEmptyBatch(t *testing.T) {
	svc, _, _, _ := newTestService()

	result, err := svc.Process(context.Background(), "empty.csv", nil)
	if err != nil {
		t.Fatalf("Process: %v", err)
	}
	if result.Status != models.BatchCompleted {
		t.Fatalf("status = %q, want %q", result.Status, models.BatchCompleted)
	}
	if result.Summary.Cleaning.DataQualityScore != 0 {
		t.Errorf("quality score = %v, want 0 for an empty batch", result.Summary.Cleaning.DataQualityScore)
	}
	if len(result.EMROutput.Patients) != 0 {
		t.Error("empty batch should produce an empty graph")
	}
}

func TestLatestSummaryAfterProcess(t *testing.T) {
	svc, _, _, _ := newTestService()

	if _, err := svc.LatestSummary(context.Background()); err == nil {
		t.Fatal("expected a cache miss before any batch")
	}

	if _, err := svc.Process(context.Background(), "batch.csv", sampleRows()); err != nil {
		t.Fatalf("Process: %v", err)
	}

	summary, err := svc.LatestSummary(context.Background())
	if err != nil {
		t.Fatalf("LatestSummary: %v", err)
	}
	if summary.Cleaning.RecordsProcessed != 4 {
		t.Errorf("latest summary records = %d, want 4", summary.Cleaning.RecordsProcessed)
	}
}

func TestSubmitterFailureDoesNotFailBatch(t *testing.T) {
	svc, submitter, _, _ := newTestService()
	submitter.err = context.DeadlineExceeded

	result, err := svc.Process(context.Background(), "batch.csv", sampleRows())
	if err != nil {
		t.Fatalf("Process: %v", err)
	}
	if result.Status != models.BatchCompleted {
		t.Errorf("status = %q, submission errors must not fail the batch", result.Status)
	}
}
