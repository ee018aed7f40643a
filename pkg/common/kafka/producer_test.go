package kafka

import (
	"testing"

	"github.com/ayushbridge/platform/pkg/common/models"
)

func TestNewProducerDefaultsToPipelineTopic(t *testing.T) {
	p := NewProducer("")
	defer p.Close()
	if p.writer.Topic != "pipeline-events" {
		t.Errorf("topic = %q, want pipeline-events", p.writer.Topic)
	}

	named := NewProducer("custom-topic")
	defer named.Close()
	if named.writer.Topic != "custom-topic" {
		t.Errorf("topic = %q, want custom-topic", named.writer.Topic)
	}
}

func TestBatchEventDataCarriesHeadlineCounts(t *testing.T) {
	result := &models.BatchResult{
		ProcessingID: "abc-123",
		Filename:     "batch.csv",
		Status:       models.BatchCompleted,
		Summary: models.BatchSummary{
			Cleaning: models.CleaningStatistics{
				RecordsProcessed:      10,
				RecordsCleaned:        7,
				DuplicatesRemoved:     2,
				InvalidRecordsRemoved: 1,
				DataQualityScore:      88.5,
			},
			Conversion: models.EMRStatistics{
				PatientsCreated:   5,
				ConditionsCreated: 7,
			},
		},
	}

	data := batchEventData(result)

	if data["processing_id"] != "abc-123" {
		t.Errorf("processing_id = %v", data["processing_id"])
	}
	if data["records_processed"] != 10 || data["records_cleaned"] != 7 {
		t.Errorf("record counts = %v / %v", data["records_processed"], data["records_cleaned"])
	}
	if data["duplicates_removed"] != 2 || data["invalid_removed"] != 1 {
		t.Errorf("removal counts = %v / %v", data["duplicates_removed"], data["invalid_removed"])
	}
	if data["patients_created"] != 5 || data["conditions_created"] != 7 {
		t.Errorf("entity counts = %v / %v", data["patients_created"], data["conditions_created"])
	}
	if data["data_quality_score"] != 88.5 {
		t.Errorf("quality score = %v", data["data_quality_score"])
	}
}
