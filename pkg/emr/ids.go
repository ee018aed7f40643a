package emr

import (
	"strings"

	"github.com/google/uuid"
)

// Entity identifiers are SHA1 UUIDs over the record's natural keys, so
// re-running a batch produces the same ids and retries never create
// duplicate entities downstream.
var (
	conditionNamespace   = uuid.NewSHA1(uuid.NameSpaceURL, []byte("https://ayushbridge.io/emr/condition"))
	encounterNamespace   = uuid.NewSHA1(uuid.NameSpaceURL, []byte("https://ayushbridge.io/emr/encounter"))
	observationNamespace = uuid.NewSHA1(uuid.NameSpaceURL, []byte("https://ayushbridge.io/emr/observation"))
)

func naturalKey(parts ...string) []byte {
	return []byte(strings.Join(parts, "|"))
}

func ConditionID(patientID, tm2Code, diagnosisDate, practitionerID string) string {
	return uuid.NewSHA1(conditionNamespace, naturalKey(patientID, tm2Code, diagnosisDate, practitionerID)).String()
}

func EncounterID(patientID, diagnosisDate, practitionerID string) string {
	return uuid.NewSHA1(encounterNamespace, naturalKey(patientID, diagnosisDate, practitionerID)).String()
}

func ObservationID(patientID, tm2Code, diagnosisDate, practitionerID string) string {
	return uuid.NewSHA1(observationNamespace, naturalKey(patientID, tm2Code, diagnosisDate, practitionerID)).String()
}
