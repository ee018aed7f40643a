package stats

import (
	"sync"
	"time"

	"github.com/ayushbridge/platform/pkg/common/models"
)

// Merge folds one batch's cleaning, conversion and translation statistics
// into a single reportable summary.
func Merge(cleaning models.CleaningStatistics, conversion models.EMRStatistics, translation models.TranslationStats) models.BatchSummary {
	return models.BatchSummary{
		Cleaning:    cleaning,
		Conversion:  conversion,
		Translation: translation,
	}
}

// Cumulative is the additive, process-lifetime statistics view. A batch's
// counts are applied as one indivisible increment so concurrent readers
// never observe a partially applied batch. It only resets on process
// restart.
type Cumulative struct {
	mu     sync.Mutex
	totals models.CumulativeStats
}

func NewCumulative() *Cumulative {
	return &Cumulative{
		totals: models.CumulativeStats{StartedAt: time.Now().UTC()},
	}
}

// Apply adds one completed batch's summary to the lifetime totals.
func (c *Cumulative) Apply(summary models.BatchSummary) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.totals.BatchesProcessed++
	c.totals.RecordsProcessed += int64(summary.Cleaning.RecordsProcessed)
	c.totals.RecordsCleaned += int64(summary.Cleaning.RecordsCleaned)
	c.totals.DuplicatesRemoved += int64(summary.Cleaning.DuplicatesRemoved)
	c.totals.InvalidRecordsRemoved += int64(summary.Cleaning.InvalidRecordsRemoved)
	c.totals.PatientsCreated += int64(summary.Conversion.PatientsCreated)
	c.totals.ConditionsCreated += int64(summary.Conversion.ConditionsCreated)
	c.totals.EncountersCreated += int64(summary.Conversion.EncountersCreated)
	c.totals.ObservationsCreated += int64(summary.Conversion.ObservationsCreated)
	c.totals.ConversionErrors += int64(summary.Conversion.ConversionErrors)
	c.totals.LastBatchAt = time.Now().UTC()
}

// ApplyFailure records a batch that failed before producing output.
func (c *Cumulative) ApplyFailure() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.totals.BatchesFailed++
	c.totals.LastBatchAt = time.Now().UTC()
}

// Snapshot returns a copy of the lifetime totals.
func (c *Cumulative) Snapshot() models.CumulativeStats {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.totals
}
