// Package kafka publishes pipeline lifecycle events for downstream
// analytics consumers. One event type exists today: batch-completed,
// emitted once per batch that reaches the completed state.
package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/segmentio/kafka-go"

	"github.com/ayushbridge/platform/pkg/common/config"
	"github.com/ayushbridge/platform/pkg/common/logger"
	"github.com/ayushbridge/platform/pkg/common/models"
)

const (
	eventTypeBatchCompleted = "batch-completed"
	eventSource             = "emr-bridge"
)

type Producer struct {
	writer *kafka.Writer
}

// NewProducer builds a producer for the given topic, falling back to the
// configured pipeline events topic when none is given.
func NewProducer(topic string) *Producer {
	cfg := config.Load()
	if topic == "" {
		topic = cfg.PipelineTopic
	}
	writer := &kafka.Writer{
		Addr:         kafka.TCP(cfg.KafkaBrokers...),
		Topic:        topic,
		Balancer:     &kafka.LeastBytes{},
		RequiredAcks: kafka.RequireAll,
		Async:        false,
		BatchSize:    1,
		BatchTimeout: 10 * time.Millisecond,
	}

	return &Producer{writer: writer}
}

// PublishBatchCompleted emits one event per finished batch carrying the
// headline counts consumers chart. The message key is the processing id so
// replays of the same batch land on the same partition.
func (p *Producer) PublishBatchCompleted(ctx context.Context, result *models.BatchResult) error {
	event := models.Event{
		ID:        uuid.New().String(),
		Type:      eventTypeBatchCompleted,
		Source:    eventSource,
		Data:      batchEventData(result),
		Timestamp: time.Now(),
	}

	eventBytes, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal batch event: %w", err)
	}

	message := kafka.Message{
		Key:   []byte(result.ProcessingID),
		Value: eventBytes,
		Headers: []kafka.Header{
			{Key: "event-type", Value: []byte(eventTypeBatchCompleted)},
			{Key: "source", Value: []byte(eventSource)},
			{Key: "processing-id", Value: []byte(result.ProcessingID)},
		},
	}

	if err := p.writer.WriteMessages(ctx, message); err != nil {
		logger.Log.WithError(err).WithFields(map[string]interface{}{
			"event_id":      event.ID,
			"processing_id": result.ProcessingID,
		}).Error("Failed to publish batch event")
		return err
	}

	logger.Log.WithFields(map[string]interface{}{
		"event_id":      event.ID,
		"processing_id": result.ProcessingID,
		"topic":         p.writer.Topic,
	}).Info("Batch event published")

	return nil
}

func batchEventData(result *models.BatchResult) map[string]interface{} {
	cleaning := result.Summary.Cleaning
	conversion := result.Summary.Conversion
	return map[string]interface{}{
		"processing_id":      result.ProcessingID,
		"filename":           result.Filename,
		"records_processed":  cleaning.RecordsProcessed,
		"records_cleaned":    cleaning.RecordsCleaned,
		"duplicates_removed": cleaning.DuplicatesRemoved,
		"invalid_removed":    cleaning.InvalidRecordsRemoved,
		"patients_created":   conversion.PatientsCreated,
		"conditions_created": conversion.ConditionsCreated,
		"data_quality_score": cleaning.DataQualityScore,
	}
}

func (p *Producer) Close() error {
	return p.writer.Close()
}
