package metrics

import (
	"fmt"
	"net/http"
	"sync/atomic"

	"github.com/ayushbridge/platform/pkg/common/models"
)

var (
	batchesCompleted  atomic.Int64
	batchesFailed     atomic.Int64
	recordsProcessed  atomic.Int64
	recordsCleaned    atomic.Int64
	duplicatesRemoved atomic.Int64
	invalidRemoved    atomic.Int64
	conversionErrors  atomic.Int64
	patientsCreated   atomic.Int64
	conditionsCreated atomic.Int64
)

func ObserveBatch(summary models.BatchSummary) {
	batchesCompleted.Add(1)
	recordsProcessed.Add(int64(summary.Cleaning.RecordsProcessed))
	recordsCleaned.Add(int64(summary.Cleaning.RecordsCleaned))
	duplicatesRemoved.Add(int64(summary.Cleaning.DuplicatesRemoved))
	invalidRemoved.Add(int64(summary.Cleaning.InvalidRecordsRemoved))
	conversionErrors.Add(int64(summary.Conversion.ConversionErrors))
	patientsCreated.Add(int64(summary.Conversion.PatientsCreated))
	conditionsCreated.Add(int64(summary.Conversion.ConditionsCreated))
}

func ObserveFailure() {
	batchesFailed.Add(1)
}

func WritePrometheus(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "text/plain; version=0.0.4")
	fmt.Fprintf(w, "# HELP ayushbridge_batches_completed_total Number of batches processed to completion.\n")
	fmt.Fprintf(w, "# TYPE ayushbridge_batches_completed_total counter\n")
	fmt.Fprintf(w, "ayushbridge_batches_completed_total %d\n", batchesCompleted.Load())

	fmt.Fprintf(w, "# HELP ayushbridge_batches_failed_total Number of batches that failed before producing a graph.\n")
	fmt.Fprintf(w, "# TYPE ayushbridge_batches_failed_total counter\n")
	fmt.Fprintf(w, "ayushbridge_batches_failed_total %d\n", batchesFailed.Load())

	fmt.Fprintf(w, "# HELP ayushbridge_records_processed_total Number of raw records received across all batches.\n")
	fmt.Fprintf(w, "# TYPE ayushbridge_records_processed_total counter\n")
	fmt.Fprintf(w, "ayushbridge_records_processed_total %d\n", recordsProcessed.Load())

	fmt.Fprintf(w, "# HELP ayushbridge_records_cleaned_total Number of records surviving validation and deduplication.\n")
	fmt.Fprintf(w, "# TYPE ayushbridge_records_cleaned_total counter\n")
	fmt.Fprintf(w, "ayushbridge_records_cleaned_total %d\n", recordsCleaned.Load())

	fmt.Fprintf(w, "# HELP ayushbridge_duplicates_removed_total Number of duplicate records dropped.\n")
	fmt.Fprintf(w, "# TYPE ayushbridge_duplicates_removed_total counter\n")
	fmt.Fprintf(w, "ayushbridge_duplicates_removed_total %d\n", duplicatesRemoved.Load())

	fmt.Fprintf(w, "# HELP ayushbridge_invalid_records_total Number of records rejected during validation.\n")
	fmt.Fprintf(w, "# TYPE ayushbridge_invalid_records_total counter\n")
	fmt.Fprintf(w, "ayushbridge_invalid_records_total %d\n", invalidRemoved.Load())

	fmt.Fprintf(w, "# HELP ayushbridge_conversion_errors_total Number of cleaned records that could not be converted to EMR entities.\n")
	fmt.Fprintf(w, "# TYPE ayushbridge_conversion_errors_total counter\n")
	fmt.Fprintf(w, "ayushbridge_conversion_errors_total %d\n", conversionErrors.Load())

	fmt.Fprintf(w, "# HELP ayushbridge_patients_created_total Number of patient entities created.\n")
	fmt.Fprintf(w, "# TYPE ayushbridge_patients_created_total counter\n")
	fmt.Fprintf(w, "ayushbridge_patients_created_total %d\n", patientsCreated.Load())

	fmt.Fprintf(w, "# HELP ayushbridge_conditions_created_total Number of condition entities created.\n")
	fmt.Fprintf(w, "# TYPE ayushbridge_conditions_created_total counter\n")
	fmt.Fprintf(w, "ayushbridge_conditions_created_total %d\n", conditionsCreated.Load())
}
