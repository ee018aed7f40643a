package intake

import (
	"errors"
	"strings"
	"testing"
)

const sampleCSV = `patient_id,tm2_code,condition_name,system_type,severity,diagnosis_date,practitioner_id
PAT001,TM2.A01.01,अनिद्रा,आयुर्वेद,मध्यम,2024-01-15,DOC123
PAT002,TM2.B02.03,ज्वर,सिद्ध,मृदु,2024-02-20,DOC456
`

func TestParseCSV(t *testing.T) {
	records, err := ParseCSV(strings.NewReader(sampleCSV))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("expected 2 records, got %d", len(records))
	}
	if records[0].PatientID != "PAT001" || records[0].ConditionName != "अनिद्रा" {
		t.Fatalf("unexpected first record: %+v", records[0])
	}
	if records[1].DiagnosisDate != "2024-02-20" {
		t.Fatalf("unexpected diagnosis date: %q", records[1].DiagnosisDate)
	}
}

func TestParseCSVColumnOrderIndependent(t *testing.T) {
	shuffled := `severity,patient_id,condition_name,tm2_code,diagnosis_date,practitioner_id,system_type
मध्यम,PAT001,अनिद्रा,TM2.A01.01,2024-01-15,DOC123,आयुर्वेद
`
	records, err := ParseCSV(strings.NewReader(shuffled))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if records[0].TM2Code != "TM2.A01.01" || records[0].Severity != "मध्यम" {
		t.Fatalf("column mapping broken: %+v", records[0])
	}
}

func TestParseCSVMissingRequiredColumn(t *testing.T) {
	_, err := ParseCSV(strings.NewReader("severity,diagnosis_date\nमध्यम,2024-01-15\n"))
	if !errors.Is(err, ErrMalformedInput) {
		t.Fatalf("expected ErrMalformedInput, got %v", err)
	}
}

func TestParseCSVEmptyInput(t *testing.T) {
	_, err := ParseCSV(strings.NewReader(""))
	if !errors.Is(err, ErrMalformedInput) {
		t.Fatalf("expected ErrMalformedInput for empty input, got %v", err)
	}
}

func TestParseCSVHeaderOnly(t *testing.T) {
	records, err := ParseCSV(strings.NewReader("patient_id,tm2_code,condition_name\n"))
	if err != nil {
		t.Fatalf("header-only file is a valid empty batch: %v", err)
	}
	if len(records) != 0 {
		t.Fatalf("expected empty batch, got %d records", len(records))
	}
}

func TestParseCSVShortRow(t *testing.T) {
	short := "patient_id,tm2_code,condition_name,diagnosis_date\nPAT001,TM2.A01.01\n"
	records, err := ParseCSV(strings.NewReader(short))
	if err != nil {
		t.Fatalf("short rows are a cleaning concern, not a parse error: %v", err)
	}
	if records[0].DiagnosisDate != "" {
		t.Fatalf("expected blank for missing cells, got %q", records[0].DiagnosisDate)
	}
}

func TestParseDispatchesOnExtension(t *testing.T) {
	if _, err := Parse("data.pdf", strings.NewReader("x")); !errors.Is(err, ErrUnsupportedFormat) {
		t.Fatalf("expected ErrUnsupportedFormat, got %v", err)
	}
	if _, err := Parse("data.CSV", strings.NewReader(sampleCSV)); err != nil {
		t.Fatalf("extension match must be case-insensitive: %v", err)
	}
}

func TestParseXLSXRejectsGarbage(t *testing.T) {
	_, err := ParseXLSX(strings.NewReader("definitely not a zip archive"))
	if !errors.Is(err, ErrMalformedInput) {
		t.Fatalf("expected ErrMalformedInput, got %v", err)
	}
}
