package models

import (
	"time"
)

// RawRecord is one row of an uploaded TM2 dataset exactly as it arrived:
// every field is a raw string in whatever script the source used, any of
// them possibly blank or malformed. Raw records are discarded after cleaning.
type RawRecord struct {
	PatientID      string `json:"patient_id"`
	TM2Code        string `json:"tm2_code"`
	ConditionName  string `json:"condition_name"`
	SystemType     string `json:"system_type"`
	Severity       string `json:"severity"`
	DiagnosisDate  string `json:"diagnosis_date"`
	PractitionerID string `json:"practitioner_id"`
}

// CleanedRecord is a RawRecord that survived validation and deduplication:
// trimmed, date parsed, vocabulary translated to English. PatientID, TM2Code
// and ConditionName are always non-empty and DiagnosisDate is always set.
type CleanedRecord struct {
	PatientID      string    `json:"patient_id"`
	TM2Code        string    `json:"tm2_code"`
	ConditionName  string    `json:"condition_name"`
	SystemType     string    `json:"system_type"`
	Severity       string    `json:"severity"`
	DiagnosisDate  time.Time `json:"diagnosis_date"`
	PractitionerID string    `json:"practitioner_id"`
}

// RecordError describes one rejected input row: which row failed, which
// fields, and a reason per failing field. Kept on the cleaning statistics
// for audit.
type RecordError struct {
	Row     int               `json:"row"`
	Fields  []string          `json:"fields"`
	Reasons map[string]string `json:"reasons"`
}

type DateRange struct {
	Earliest time.Time `json:"earliest"`
	Latest   time.Time `json:"latest"`
}

type CleaningStatistics struct {
	RecordsProcessed       int                `json:"records_processed"`
	RecordsCleaned         int                `json:"records_cleaned"`
	DuplicatesRemoved      int                `json:"duplicates_removed"`
	InvalidRecordsRemoved  int                `json:"invalid_records_removed"`
	InvalidRecordDetails   []RecordError      `json:"invalid_record_details,omitempty"`
	FieldCompleteness      map[string]float64 `json:"field_completeness"`
	SeverityDistribution   map[string]int     `json:"severity_distribution"`
	SystemTypeDistribution map[string]int     `json:"system_type_distribution"`
	DateRange              *DateRange         `json:"date_range,omitempty"`
	DataQualityScore       float64            `json:"data_quality_score"`
}

// TranslationStats counts how terms resolved across the translator's match
// tiers for one batch. Partial and unmatched counts are the audit trail for
// the least reliable lookups.
type TranslationStats struct {
	ExactMatches           int `json:"exact_matches"`
	CaseInsensitiveMatches int `json:"case_insensitive_matches"`
	PartialMatches         int `json:"partial_matches"`
	Unmatched              int `json:"unmatched"`
}

// EMR entity models. All cross-references are by identifier so the graph can
// be serialized and partially re-submitted.

type EMRPatient struct {
	PatientID   string     `json:"patient_id"`
	GivenName   string     `json:"given_name,omitempty"`
	FamilyName  string     `json:"family_name,omitempty"`
	Gender      string     `json:"gender,omitempty"`
	BirthDate   *time.Time `json:"birth_date,omitempty"`
	Address     string     `json:"address,omitempty"`
	PhoneNumber string     `json:"phone_number,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
}

type EMRCondition struct {
	ConditionID    string    `json:"condition_id"`
	PatientID      string    `json:"patient_id"`
	ConditionName  string    `json:"condition_name"`
	ICDCode        string    `json:"icd_code,omitempty"`
	TM2Code        string    `json:"tm2_code"`
	SystemType     string    `json:"system_type"`
	Severity       string    `json:"severity"`
	DiagnosisDate  time.Time `json:"diagnosis_date"`
	PractitionerID string    `json:"practitioner_id"`
	Status         string    `json:"status"`
	Notes          string    `json:"notes,omitempty"`
	CreatedAt      time.Time `json:"created_at"`
}

type EMREncounter struct {
	EncounterID    string    `json:"encounter_id"`
	PatientID      string    `json:"patient_id"`
	EncounterType  string    `json:"encounter_type"`
	EncounterDate  time.Time `json:"encounter_date"`
	PractitionerID string    `json:"practitioner_id"`
	Location       string    `json:"location,omitempty"`
	Conditions     []string  `json:"conditions"`
	Observations   []string  `json:"observations,omitempty"`
	CreatedAt      time.Time `json:"created_at"`
}

type EMRObservation struct {
	ObservationID   string      `json:"observation_id"`
	PatientID       string      `json:"patient_id"`
	EncounterID     string      `json:"encounter_id,omitempty"`
	Concept         string      `json:"concept"`
	Value           interface{} `json:"value"`
	Units           string      `json:"units,omitempty"`
	ObservationDate time.Time   `json:"observation_date"`
	PractitionerID  string      `json:"practitioner_id"`
	CreatedAt       time.Time   `json:"created_at"`
}

// EMRRecord is the full entity graph built from one batch. Every condition,
// encounter and observation references a patient present in Patients.
type EMRRecord struct {
	Patients     []EMRPatient           `json:"patients"`
	Conditions   []EMRCondition         `json:"conditions"`
	Encounters   []EMREncounter         `json:"encounters"`
	Observations []EMRObservation       `json:"observations"`
	Metadata     map[string]interface{} `json:"metadata,omitempty"`
	CreatedAt    time.Time              `json:"created_at"`
}

type EMRStatistics struct {
	TotalRecordsProcessed int     `json:"total_records_processed"`
	PatientsCreated       int     `json:"patients_created"`
	ConditionsCreated     int     `json:"conditions_created"`
	EncountersCreated     int     `json:"encounters_created"`
	ObservationsCreated   int     `json:"observations_created"`
	ConversionErrors      int     `json:"conversion_errors"`
	DataQualityScore      float64 `json:"data_quality_score"`
	ProcessingTimeSeconds float64 `json:"processing_time_seconds"`
}

// BatchSummary merges the cleaning, conversion and translation statistics of
// one batch into a single reportable structure.
type BatchSummary struct {
	Cleaning    CleaningStatistics `json:"cleaning"`
	Conversion  EMRStatistics      `json:"conversion"`
	Translation TranslationStats   `json:"translation"`
}

// CumulativeStats is the additive, process-lifetime view of everything the
// pipeline has handled since service start.
type CumulativeStats struct {
	BatchesProcessed      int64     `json:"batches_processed"`
	BatchesFailed         int64     `json:"batches_failed"`
	RecordsProcessed      int64     `json:"records_processed"`
	RecordsCleaned        int64     `json:"records_cleaned"`
	DuplicatesRemoved     int64     `json:"duplicates_removed"`
	InvalidRecordsRemoved int64     `json:"invalid_records_removed"`
	PatientsCreated       int64     `json:"patients_created"`
	ConditionsCreated     int64     `json:"conditions_created"`
	EncountersCreated     int64     `json:"encounters_created"`
	ObservationsCreated   int64     `json:"observations_created"`
	ConversionErrors      int64     `json:"conversion_errors"`
	LastBatchAt           time.Time `json:"last_batch_at,omitempty"`
	StartedAt             time.Time `json:"started_at"`
}

// Batch lifecycle states, in processing order.
const (
	BatchReceived    = "received"
	BatchValidating  = "validating"
	BatchCleaning    = "cleaning"
	BatchTranslating = "translating"
	BatchConverting  = "converting"
	BatchCompleted   = "completed"
	BatchFailed      = "failed"
)

// BatchResult is what a pipeline run returns regardless of how many
// individual rows were rejected. Partial success is the normal case; only a
// batch-wide failure yields Status == BatchFailed.
type BatchResult struct {
	ProcessingID          string       `json:"processing_id"`
	Filename              string       `json:"filename,omitempty"`
	Status                string       `json:"status"`
	Message               string       `json:"message"`
	Summary               BatchSummary `json:"summary"`
	EMROutput             *EMRRecord   `json:"emr_output,omitempty"`
	ProcessingTimeSeconds float64      `json:"processing_time_seconds"`
}

// Event is the envelope published to the event bus when a batch finishes.
type Event struct {
	ID        string                 `json:"id"`
	Type      string                 `json:"type"`
	Source    string                 `json:"source"`
	Data      map[string]interface{} `json:"data"`
	Timestamp time.Time              `json:"timestamp"`
	Metadata  map[string]string      `json:"metadata,omitempty"`
}
