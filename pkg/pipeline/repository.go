package pipeline

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/ayushbridge/platform/pkg/common/models"
)

var ErrRunNotFound = errors.New("processing run not found")

// Run is one persisted pipeline invocation: the batch's identity, outcome
// and summary statistics, kept for the status/history endpoints and audit.
type Run struct {
	ID                    string            `json:"id" gorm:"primaryKey;column:id"`
	Filename              string            `json:"filename" gorm:"column:filename"`
	Status                string            `json:"status" gorm:"column:status"`
	Message               string            `json:"message" gorm:"column:message"`
	RecordsProcessed      int               `json:"records_processed" gorm:"column:records_processed"`
	RecordsCleaned        int               `json:"records_cleaned" gorm:"column:records_cleaned"`
	DuplicatesRemoved     int               `json:"duplicates_removed" gorm:"column:duplicates_removed"`
	InvalidRecordsRemoved int               `json:"invalid_records_removed" gorm:"column:invalid_records_removed"`
	ConversionErrors      int               `json:"conversion_errors" gorm:"column:conversion_errors"`
	DataQualityScore      float64           `json:"data_quality_score" gorm:"column:data_quality_score"`
	Summary               datatypes.JSONMap `json:"summary" gorm:"column:summary"`
	Error                 string            `json:"error,omitempty" gorm:"column:error"`
	ProcessingTimeSeconds float64           `json:"processing_time_seconds" gorm:"column:processing_time_seconds"`
	CreatedAt             time.Time         `json:"created_at" gorm:"column:created_at"`
}

func (Run) TableName() string {
	return "processing_runs"
}

type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

func (r *Repository) AutoMigrate() error {
	return r.db.AutoMigrate(&Run{})
}

func (r *Repository) Save(ctx context.Context, run *Run) error {
	if run.CreatedAt.IsZero() {
		run.CreatedAt = time.Now().UTC()
	}
	return r.db.WithContext(ctx).Create(run).Error
}

func (r *Repository) Get(ctx context.Context, id string) (*Run, error) {
	var run Run
	result := r.db.WithContext(ctx).First(&run, "id = ?", id)
	if errors.Is(result.Error, gorm.ErrRecordNotFound) {
		return nil, ErrRunNotFound
	}
	return &run, result.Error
}

func (r *Repository) Recent(ctx context.Context, limit int) ([]Run, error) {
	if limit <= 0 {
		limit = 20
	}
	var runs []Run
	err := r.db.WithContext(ctx).Order("created_at DESC").Limit(limit).Find(&runs).Error
	return runs, err
}

func (r *Repository) CleanupExpired(ctx context.Context, ttl time.Duration) error {
	if ttl <= 0 {
		return nil
	}
	cutoff := time.Now().UTC().Add(-ttl)
	return r.db.WithContext(ctx).Where("created_at < ?", cutoff).Delete(&Run{}).Error
}

func runFromResult(result *models.BatchResult, failure error) *Run {
	run := &Run{
		ID:                    result.ProcessingID,
		Filename:              result.Filename,
		Status:                result.Status,
		Message:               result.Message,
		RecordsProcessed:      result.Summary.Cleaning.RecordsProcessed,
		RecordsCleaned:        result.Summary.Cleaning.RecordsCleaned,
		DuplicatesRemoved:     result.Summary.Cleaning.DuplicatesRemoved,
		InvalidRecordsRemoved: result.Summary.Cleaning.InvalidRecordsRemoved,
		ConversionErrors:      result.Summary.Conversion.ConversionErrors,
		DataQualityScore:      result.Summary.Cleaning.DataQualityScore,
		Summary:               summaryJSON(result.Summary),
		ProcessingTimeSeconds: result.ProcessingTimeSeconds,
	}
	if failure != nil {
		run.Error = failure.Error()
	}
	return run
}

func summaryJSON(summary models.BatchSummary) datatypes.JSONMap {
	payload, err := json.Marshal(summary)
	if err != nil {
		return datatypes.JSONMap{}
	}
	var out map[string]interface{}
	if err := json.Unmarshal(payload, &out); err != nil {
		return datatypes.JSONMap{}
	}
	return datatypes.JSONMap(out)
}
