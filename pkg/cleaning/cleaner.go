package cleaning

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/ayushbridge/platform/pkg/common/logger"
	"github.com/ayushbridge/platform/pkg/common/models"
	"github.com/ayushbridge/platform/pkg/terminology"
)

// Date formats seen in TM2 exports.
var diagnosisDateLayouts = []string{
	"2006-01-02",
	"2006/01/02",
	"02-01-2006",
	"02/01/2006",
	time.RFC3339,
}

// ParseDiagnosisDate parses a raw diagnosis date trying each accepted layout
// in order.
func ParseDiagnosisDate(value string) (time.Time, error) {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return time.Time{}, fmt.Errorf("diagnosis date is blank")
	}
	for _, layout := range diagnosisDateLayouts {
		if parsed, err := time.Parse(layout, trimmed); err == nil {
			return parsed, nil
		}
	}
	return time.Time{}, fmt.Errorf("unparseable diagnosis date %q", trimmed)
}

// Cleaner validates, deduplicates and normalizes raw TM2 rows. Malformed
// rows never fail the batch; they are excluded and tallied with per-field
// detail.
type Cleaner struct {
	translator *terminology.Translator
}

func NewCleaner(translator *terminology.Translator) *Cleaner {
	return &Cleaner{translator: translator}
}

// Validate splits records into structurally valid rows and per-row rejection
// details. Required: non-blank patient_id, tm2_code, condition_name and a
// parseable diagnosis_date.
func (c *Cleaner) Validate(records []models.RawRecord) ([]models.RawRecord, []models.RecordError) {
	valid := make([]models.RawRecord, 0, len(records))
	var invalid []models.RecordError

	for i, rec := range records {
		var failed []string
		reasons := map[string]string{}
		fail := func(field, reason string) {
			failed = append(failed, field)
			reasons[field] = reason
		}

		if strings.TrimSpace(rec.PatientID) == "" {
			fail("patient_id", "required field blank")
		}
		if strings.TrimSpace(rec.TM2Code) == "" {
			fail("tm2_code", "required field blank")
		}
		if strings.TrimSpace(rec.ConditionName) == "" {
			fail("condition_name", "required field blank")
		}
		if _, err := ParseDiagnosisDate(rec.DiagnosisDate); err != nil {
			fail("diagnosis_date", err.Error())
		}

		if len(failed) > 0 {
			invalid = append(invalid, models.RecordError{
				Row:     i + 1,
				Fields:  failed,
				Reasons: reasons,
			})
			continue
		}
		valid = append(valid, rec)
	}

	return valid, invalid
}

// Deduplicate drops later rows that repeat an earlier row's
// (patient_id, tm2_code, diagnosis_date, practitioner_id) key. First
// occurrence wins so the earliest submission stays authoritative.
// Records must have passed Validate.
func (c *Cleaner) Deduplicate(records []models.RawRecord) ([]models.RawRecord, int) {
	seen := make(map[string]struct{}, len(records))
	kept := make([]models.RawRecord, 0, len(records))
	removed := 0

	for _, rec := range records {
		key := dedupKey(rec)
		if _, dup := seen[key]; dup {
			removed++
			continue
		}
		seen[key] = struct{}{}
		kept = append(kept, rec)
	}

	return kept, removed
}

func dedupKey(rec models.RawRecord) string {
	date := strings.TrimSpace(rec.DiagnosisDate)
	if parsed, err := ParseDiagnosisDate(rec.DiagnosisDate); err == nil {
		date = parsed.Format("2006-01-02")
	}
	return strings.Join([]string{
		strings.TrimSpace(rec.PatientID),
		strings.TrimSpace(rec.TM2Code),
		date,
		strings.TrimSpace(rec.PractitionerID),
	}, "\x1f")
}

// Normalize trims every field, parses the diagnosis date and translates the
// vocabulary fields, reporting per-batch translation tier counts. Records
// must have passed Validate.
func (c *Cleaner) Normalize(records []models.RawRecord) ([]models.CleanedRecord, models.TranslationStats) {
	cleaned := make([]models.CleanedRecord, 0, len(records))
	var tiers models.TranslationStats

	for _, rec := range records {
		date, err := ParseDiagnosisDate(rec.DiagnosisDate)
		if err != nil {
			logger.Log.WithField("patient_id", rec.PatientID).Warn("unvalidated record reached normalization; skipping")
			continue
		}

		condition, tier := c.translator.TranslateWithTier(rec.ConditionName, terminology.CategoryCondition)
		countTier(&tiers, tier)
		systemType, tier := c.translator.TranslateWithTier(rec.SystemType, terminology.CategorySystemType)
		countTier(&tiers, tier)
		severity, tier := c.translator.TranslateWithTier(rec.Severity, terminology.CategorySeverity)
		countTier(&tiers, tier)

		cleaned = append(cleaned, models.CleanedRecord{
			PatientID:      strings.TrimSpace(rec.PatientID),
			TM2Code:        strings.TrimSpace(rec.TM2Code),
			ConditionName:  condition,
			SystemType:     systemType,
			Severity:       severity,
			DiagnosisDate:  date,
			PractitionerID: strings.TrimSpace(rec.PractitionerID),
		})
	}

	return cleaned, tiers
}

func countTier(stats *models.TranslationStats, tier terminology.Tier) {
	switch tier {
	case terminology.TierExact:
		stats.ExactMatches++
	case terminology.TierCaseInsensitive:
		stats.CaseInsensitiveMatches++
	case terminology.TierPartial:
		stats.PartialMatches++
	case terminology.TierNone:
		stats.Unmatched++
	}
}

// Summarize computes the cleaning statistics over the surviving set.
func (c *Cleaner) Summarize(totalInput int, cleaned []models.CleanedRecord, invalid []models.RecordError, duplicates int) models.CleaningStatistics {
	stats := models.CleaningStatistics{
		RecordsProcessed:       totalInput,
		RecordsCleaned:         len(cleaned),
		DuplicatesRemoved:      duplicates,
		InvalidRecordsRemoved:  len(invalid),
		InvalidRecordDetails:   invalid,
		FieldCompleteness:      fieldCompleteness(cleaned),
		SeverityDistribution:   map[string]int{},
		SystemTypeDistribution: map[string]int{},
	}

	for _, rec := range cleaned {
		if rec.Severity != "" {
			stats.SeverityDistribution[rec.Severity]++
		}
		if rec.SystemType != "" {
			stats.SystemTypeDistribution[rec.SystemType]++
		}
	}

	if len(cleaned) > 0 {
		earliest, latest := cleaned[0].DiagnosisDate, cleaned[0].DiagnosisDate
		for _, rec := range cleaned[1:] {
			if rec.DiagnosisDate.Before(earliest) {
				earliest = rec.DiagnosisDate
			}
			if rec.DiagnosisDate.After(latest) {
				latest = rec.DiagnosisDate
			}
		}
		stats.DateRange = &models.DateRange{Earliest: earliest, Latest: latest}
	}

	stats.DataQualityScore = qualityScore(totalInput, len(cleaned), stats.FieldCompleteness)
	return stats
}

// Clean runs the full cleaning stage: validation, deduplication and field
// normalization, in that order.
func (c *Cleaner) Clean(records []models.RawRecord) ([]models.CleanedRecord, models.CleaningStatistics) {
	valid, invalid := c.Validate(records)
	deduped, duplicates := c.Deduplicate(valid)
	cleaned, _ := c.Normalize(deduped)
	return cleaned, c.Summarize(len(records), cleaned, invalid, duplicates)
}

var completenessFields = []string{
	"patient_id", "tm2_code", "condition_name", "system_type",
	"severity", "diagnosis_date", "practitioner_id",
}

func fieldCompleteness(cleaned []models.CleanedRecord) map[string]float64 {
	completeness := make(map[string]float64, len(completenessFields))
	for _, f := range completenessFields {
		completeness[f] = 0
	}
	if len(cleaned) == 0 {
		return completeness
	}

	counts := make(map[string]int, len(completenessFields))
	for _, rec := range cleaned {
		if rec.PatientID != "" {
			counts["patient_id"]++
		}
		if rec.TM2Code != "" {
			counts["tm2_code"]++
		}
		if rec.ConditionName != "" {
			counts["condition_name"]++
		}
		if rec.SystemType != "" {
			counts["system_type"]++
		}
		if rec.Severity != "" {
			counts["severity"]++
		}
		if !rec.DiagnosisDate.IsZero() {
			counts["diagnosis_date"]++
		}
		if rec.PractitionerID != "" {
			counts["practitioner_id"]++
		}
	}

	for _, f := range completenessFields {
		completeness[f] = round2(float64(counts[f]) / float64(len(cleaned)) * 100)
	}
	return completeness
}

// qualityScore combines average field completeness with the fraction of
// input rows that survived cleaning. Both factors only decrease when fields
// go missing or records are removed, so the score is monotonic; a complete,
// duplicate-free, fully valid batch scores 100.
func qualityScore(totalInput, cleanedCount int, completeness map[string]float64) float64 {
	if totalInput == 0 || cleanedCount == 0 {
		return 0
	}

	var sum float64
	for _, pct := range completeness {
		sum += pct
	}
	avgCompleteness := sum / float64(len(completeness))
	retention := float64(cleanedCount) / float64(totalInput)

	return round2(0.7*avgCompleteness + 30*retention)
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
