package emr

import (
	"fmt"
	"time"

	"github.com/ayushbridge/platform/pkg/common/logger"
	"github.com/ayushbridge/platform/pkg/common/models"
)

const (
	encounterType          = "traditional_medicine_consultation"
	severityConcept        = "severity-assessment"
	defaultConditionStatus = "active"

	maxConditionNameLen = 255
	maxTM2CodeLen       = 64
)

// Builder constructs the EMR entity graph from cleaned records. Conversion
// is per-record: an unmappable row increments conversion_errors and is
// skipped without aborting the batch. The only fatal condition is an
// identifier collision, which indicates conflicting natural keys.
type Builder struct{}

func NewBuilder() *Builder {
	return &Builder{}
}

// Convert builds the graph. qualityScore is inherited from the cleaning
// stage; conversion never recomputes data quality.
func (b *Builder) Convert(records []models.CleanedRecord, qualityScore float64) (*models.EMRRecord, models.EMRStatistics, error) {
	start := time.Now()
	now := start.UTC()

	graph := &models.EMRRecord{
		Patients:     []models.EMRPatient{},
		Conditions:   []models.EMRCondition{},
		Encounters:   []models.EMREncounter{},
		Observations: []models.EMRObservation{},
		CreatedAt:    now,
	}
	stats := models.EMRStatistics{
		TotalRecordsProcessed: len(records),
		DataQualityScore:      qualityScore,
	}

	patientIndex := make(map[string]int, len(records))
	encounterIndex := make(map[string]int, len(records))
	conditionIDs := make(map[string]struct{}, len(records))

	for _, rec := range records {
		if err := checkFieldConstraints(rec); err != nil {
			stats.ConversionErrors++
			logger.Log.WithFields(map[string]interface{}{
				"patient_id": rec.PatientID,
				"tm2_code":   rec.TM2Code,
			}).WithError(err).Warn("record excluded from EMR conversion")
			continue
		}

		date := rec.DiagnosisDate.Format("2006-01-02")

		conditionID := ConditionID(rec.PatientID, rec.TM2Code, date, rec.PractitionerID)
		if _, exists := conditionIDs[conditionID]; exists {
			return nil, stats, fmt.Errorf("condition id collision for patient %s code %s on %s", rec.PatientID, rec.TM2Code, date)
		}
		conditionIDs[conditionID] = struct{}{}

		// Patient: first-seen wins; TM2 rows carry no demographics so the
		// optional attributes stay unset.
		if _, ok := patientIndex[rec.PatientID]; !ok {
			patientIndex[rec.PatientID] = len(graph.Patients)
			graph.Patients = append(graph.Patients, models.EMRPatient{
				PatientID: rec.PatientID,
				CreatedAt: now,
			})
			stats.PatientsCreated++
		}

		graph.Conditions = append(graph.Conditions, models.EMRCondition{
			ConditionID:    conditionID,
			PatientID:      rec.PatientID,
			ConditionName:  rec.ConditionName,
			TM2Code:        rec.TM2Code,
			SystemType:     rec.SystemType,
			Severity:       rec.Severity,
			DiagnosisDate:  rec.DiagnosisDate,
			PractitionerID: rec.PractitionerID,
			Status:         defaultConditionStatus,
			CreatedAt:      now,
		})
		stats.ConditionsCreated++

		encounterKey := rec.PatientID + "\x1f" + date + "\x1f" + rec.PractitionerID
		idx, ok := encounterIndex[encounterKey]
		if !ok {
			idx = len(graph.Encounters)
			encounterIndex[encounterKey] = idx
			graph.Encounters = append(graph.Encounters, models.EMREncounter{
				EncounterID:    EncounterID(rec.PatientID, date, rec.PractitionerID),
				PatientID:      rec.PatientID,
				EncounterType:  encounterType,
				EncounterDate:  rec.DiagnosisDate,
				PractitionerID: rec.PractitionerID,
				Conditions:     []string{},
				CreatedAt:      now,
			})
			stats.EncountersCreated++
		}
		graph.Encounters[idx].Conditions = append(graph.Encounters[idx].Conditions, conditionID)

		if rec.Severity != "" {
			observationID := ObservationID(rec.PatientID, rec.TM2Code, date, rec.PractitionerID)
			graph.Observations = append(graph.Observations, models.EMRObservation{
				ObservationID:   observationID,
				PatientID:       rec.PatientID,
				EncounterID:     graph.Encounters[idx].EncounterID,
				Concept:         severityConcept,
				Value:           rec.Severity,
				ObservationDate: rec.DiagnosisDate,
				PractitionerID:  rec.PractitionerID,
				CreatedAt:       now,
			})
			graph.Encounters[idx].Observations = append(graph.Encounters[idx].Observations, observationID)
			stats.ObservationsCreated++
		}
	}

	graph.Metadata = map[string]interface{}{
		"source_records": len(records),
		"generated_at":   now.Format(time.RFC3339),
	}
	stats.ProcessingTimeSeconds = time.Since(start).Seconds()

	return graph, stats, nil
}

// checkFieldConstraints enforces the EMR field limits a record must satisfy
// before any of its entities are created.
func checkFieldConstraints(rec models.CleanedRecord) error {
	if rec.PatientID == "" || rec.TM2Code == "" || rec.ConditionName == "" {
		return fmt.Errorf("cleaned record missing required fields")
	}
	if len(rec.ConditionName) > maxConditionNameLen {
		return fmt.Errorf("condition name exceeds %d bytes", maxConditionNameLen)
	}
	if len(rec.TM2Code) > maxTM2CodeLen {
		return fmt.Errorf("tm2 code exceeds %d bytes", maxTM2CodeLen)
	}
	if rec.DiagnosisDate.IsZero() {
		return fmt.Errorf("cleaned record has no diagnosis date")
	}
	return nil
}
