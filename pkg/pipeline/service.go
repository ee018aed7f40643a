package pipeline

import (
	"context"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/ayushbridge/platform/pkg/cleaning"
	"github.com/ayushbridge/platform/pkg/common/logger"
	"github.com/ayushbridge/platform/pkg/common/models"
	"github.com/ayushbridge/platform/pkg/emr"
	"github.com/ayushbridge/platform/pkg/intake"
	"github.com/ayushbridge/platform/pkg/observability/metrics"
	"github.com/ayushbridge/platform/pkg/stats"
	"github.com/ayushbridge/platform/pkg/terminology"
)

// External collaborators. The orchestrator is the only component that knows
// about them; each is optional and a nil value disables it.

type Submitter interface {
	Submit(ctx context.Context, graph *models.EMRRecord) error
}

type HistoryStore interface {
	Save(ctx context.Context, run *Run) error
}

type EventPublisher interface {
	PublishBatchCompleted(ctx context.Context, result *models.BatchResult) error
}

const eventSource = "emr-bridge"

// Service sequences one batch through
// Received -> Validating -> Cleaning -> Translating -> Converting, ending at
// Completed or, for a fatal batch-wide error, Failed. Per-record rejections
// never fail a batch; partial success is the normal case.
type Service struct {
	translator *terminology.Translator
	cleaner    *cleaning.Cleaner
	builder    *emr.Builder
	cumulative *stats.Cumulative
	cache      *stats.BatchCache
	submitter  Submitter
	history    HistoryStore
	events     EventPublisher

	mu          sync.Mutex
	lastSummary *models.BatchSummary
}

func NewService(
	translator *terminology.Translator,
	cumulative *stats.Cumulative,
	cache *stats.BatchCache,
	submitter Submitter,
	history HistoryStore,
	events EventPublisher,
) *Service {
	return &Service{
		translator: translator,
		cleaner:    cleaning.NewCleaner(translator),
		builder:    emr.NewBuilder(),
		cumulative: cumulative,
		cache:      cache,
		submitter:  submitter,
		history:    history,
		events:     events,
	}
}

func (s *Service) Translator() *terminology.Translator {
	return s.translator
}

// ProcessFile parses an uploaded file and runs the batch. A file that cannot
// be read as tabular data is the one upstream condition that fails the whole
// batch.
func (s *Service) ProcessFile(ctx context.Context, filename string, file io.Reader) (*models.BatchResult, error) {
	rows, err := intake.Parse(filename, file)
	if err != nil {
		berr := BatchError{Stage: models.BatchReceived, Err: err}
		return s.recordFailure(ctx, uuid.New().String(), filename, berr, 0), berr
	}
	return s.Process(ctx, filename, rows)
}

// Process runs one parsed batch end to end and hands the finished graph to
// the external collaborators exactly once.
func (s *Service) Process(ctx context.Context, filename string, rows []models.RawRecord) (*models.BatchResult, error) {
	return s.run(ctx, filename, rows, false)
}

// Preview runs the full pipeline on a caller-supplied sample without any
// external side effects: nothing is submitted, persisted, published or
// counted against the cumulative totals.
func (s *Service) Preview(ctx context.Context, rows []models.RawRecord) (*models.BatchResult, error) {
	return s.run(ctx, "", rows, true)
}

func (s *Service) run(ctx context.Context, filename string, rows []models.RawRecord, dryRun bool) (*models.BatchResult, error) {
	start := time.Now()
	processingID := uuid.New().String()

	log := logger.Log.WithFields(logrus.Fields{
		"processing_id": processingID,
		"filename":      filename,
		"records":       len(rows),
		"dry_run":       dryRun,
	})
	transition := func(state string) {
		log.WithField("state", state).Info("batch state transition")
	}

	transition(models.BatchReceived)

	transition(models.BatchValidating)
	valid, invalid := s.cleaner.Validate(rows)

	transition(models.BatchCleaning)
	deduped, duplicates := s.cleaner.Deduplicate(valid)

	transition(models.BatchTranslating)
	cleaned, tiers := s.cleaner.Normalize(deduped)
	cleanStats := s.cleaner.Summarize(len(rows), cleaned, invalid, duplicates)

	transition(models.BatchConverting)
	graph, emrStats, err := s.builder.Convert(cleaned, cleanStats.DataQualityScore)
	if err != nil {
		berr := BatchError{Stage: models.BatchConverting, Err: err}
		if dryRun {
			return failedResult(processingID, filename, berr, time.Since(start).Seconds()), berr
		}
		return s.recordFailure(ctx, processingID, filename, berr, time.Since(start).Seconds()), berr
	}
	graph.Metadata["processing_id"] = processingID

	summary := stats.Merge(cleanStats, emrStats, tiers)
	result := &models.BatchResult{
		ProcessingID: processingID,
		Filename:     filename,
		Status:       models.BatchCompleted,
		Message: fmt.Sprintf("processed %d records: %d cleaned, %d duplicates removed, %d invalid, %d conversion errors",
			len(rows), cleanStats.RecordsCleaned, cleanStats.DuplicatesRemoved,
			cleanStats.InvalidRecordsRemoved, emrStats.ConversionErrors),
		Summary:               summary,
		EMROutput:             graph,
		ProcessingTimeSeconds: time.Since(start).Seconds(),
	}

	if dryRun {
		transition(models.BatchCompleted)
		return result, nil
	}

	s.cumulative.Apply(summary)
	s.setLastSummary(summary)
	metrics.ObserveBatch(summary)

	if err := s.cache.StoreLatest(ctx, summary); err != nil {
		log.WithError(err).Warn("failed to cache latest batch summary")
	}
	if err := s.cache.StoreCumulative(ctx, s.cumulative.Snapshot()); err != nil {
		log.WithError(err).Warn("failed to cache cumulative statistics")
	}

	if s.submitter != nil {
		if err := s.submitter.Submit(ctx, graph); err != nil {
			log.WithError(err).Error("EMR submission failed")
		}
	}
	if s.history != nil {
		if err := s.history.Save(ctx, runFromResult(result, nil)); err != nil {
			log.WithError(err).Error("failed to persist run history")
		}
	}
	if s.events != nil {
		if err := s.events.PublishBatchCompleted(ctx, result); err != nil {
			log.WithError(err).Error("failed to publish batch-completed event")
		}
	}

	transition(models.BatchCompleted)
	return result, nil
}

func (s *Service) recordFailure(ctx context.Context, processingID, filename string, berr BatchError, elapsed float64) *models.BatchResult {
	result := failedResult(processingID, filename, berr, elapsed)

	s.cumulative.ApplyFailure()
	metrics.ObserveFailure()

	logger.Log.WithFields(logrus.Fields{
		"processing_id": processingID,
		"filename":      filename,
		"stage":         berr.Stage,
	}).WithError(berr.Err).Error("batch failed")

	if s.history != nil {
		if err := s.history.Save(ctx, runFromResult(result, berr)); err != nil {
			logger.Log.WithError(err).Error("failed to persist failed run")
		}
	}
	return result
}

func failedResult(processingID, filename string, berr BatchError, elapsed float64) *models.BatchResult {
	return &models.BatchResult{
		ProcessingID:          processingID,
		Filename:              filename,
		Status:                models.BatchFailed,
		Message:               berr.Error(),
		ProcessingTimeSeconds: elapsed,
	}
}

func (s *Service) setLastSummary(summary models.BatchSummary) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastSummary = &summary
}

// CumulativeStats exposes the process-lifetime totals for status reporting.
func (s *Service) CumulativeStats() models.CumulativeStats {
	return s.cumulative.Snapshot()
}

// LatestSummary returns the most recent batch's statistics, falling back to
// the redis cache when this process has not handled a batch yet.
func (s *Service) LatestSummary(ctx context.Context) (*models.BatchSummary, error) {
	s.mu.Lock()
	last := s.lastSummary
	s.mu.Unlock()
	if last != nil {
		copied := *last
		return &copied, nil
	}
	return s.cache.Latest(ctx)
}
