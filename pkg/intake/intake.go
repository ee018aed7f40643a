// Package intake parses uploaded TM2 dataset files into raw records. It is
// the structural boundary: a file that cannot be read as tabular data at all
// is a fatal, batch-wide error; individual bad rows are passed through for
// the cleaning stage to reject and tally.
package intake

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/ayushbridge/platform/pkg/common/models"
)

var (
	ErrUnsupportedFormat = errors.New("unsupported file format")
	ErrMalformedInput    = errors.New("input is not readable as tabular data")
)

var columnNames = []string{
	"patient_id", "tm2_code", "condition_name", "system_type",
	"severity", "diagnosis_date", "practitioner_id",
}

// Parse dispatches on the uploaded file's extension.
func Parse(filename string, r io.Reader) ([]models.RawRecord, error) {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".csv":
		return ParseCSV(r)
	case ".xlsx":
		return ParseXLSX(r)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, filepath.Ext(filename))
	}
}

// ParseCSV reads a TM2 CSV export. The header row maps columns by name so
// column order does not matter; at minimum the patient_id, tm2_code and
// condition_name columns must be present.
func ParseCSV(r io.Reader) ([]models.RawRecord, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedInput, err)
	}
	indices, err := columnIndices(header)
	if err != nil {
		return nil, err
	}

	var records []models.RawRecord
	for {
		row, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrMalformedInput, err)
		}
		records = append(records, rowToRecord(row, indices))
	}
	return records, nil
}

// ParseXLSX reads the first sheet of a TM2 spreadsheet export with the same
// header conventions as CSV.
func ParseXLSX(r io.Reader) ([]models.RawRecord, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedInput, err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("%w: workbook has no sheets", ErrMalformedInput)
	}
	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedInput, err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("%w: sheet %s is empty", ErrMalformedInput, sheets[0])
	}

	indices, err := columnIndices(rows[0])
	if err != nil {
		return nil, err
	}

	records := make([]models.RawRecord, 0, len(rows)-1)
	for _, row := range rows[1:] {
		records = append(records, rowToRecord(row, indices))
	}
	return records, nil
}

func columnIndices(header []string) (map[string]int, error) {
	indices := make(map[string]int, len(columnNames))
	for i, name := range header {
		indices[strings.ToLower(strings.TrimSpace(name))] = i
	}
	for _, required := range []string{"patient_id", "tm2_code", "condition_name"} {
		if _, ok := indices[required]; !ok {
			return nil, fmt.Errorf("%w: missing %s column", ErrMalformedInput, required)
		}
	}
	return indices, nil
}

func cell(row []string, indices map[string]int, name string) string {
	idx, ok := indices[name]
	if !ok || idx >= len(row) {
		return ""
	}
	return row[idx]
}

func rowToRecord(row []string, indices map[string]int) models.RawRecord {
	return models.RawRecord{
		PatientID:      cell(row, indices, "patient_id"),
		TM2Code:        cell(row, indices, "tm2_code"),
		ConditionName:  cell(row, indices, "condition_name"),
		SystemType:     cell(row, indices, "system_type"),
		Severity:       cell(row, indices, "severity"),
		DiagnosisDate:  cell(row, indices, "diagnosis_date"),
		PractitionerID: cell(row, indices, "practitioner_id"),
	}
}
