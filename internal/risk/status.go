package risk

import (
	"fmt"

	dErrors "safereturn/pkg/domain-errors"
)

// HousingStatus is the self-reported housing situation for a month.
type HousingStatus string

const (
	HousingStable     HousingStatus = "stable"
	HousingTemporary  HousingStatus = "temporary"
	HousingWithFamily HousingStatus = "with_family"
	HousingHomeless   HousingStatus = "homeless"
)

// JobStatus is the self-reported employment situation for a month.
type JobStatus string

const (
	JobEmployed     JobStatus = "employed"
	JobSelfEmployed JobStatus = "self_employed"
	JobSearching    JobStatus = "searching"
	JobUnemployed   JobStatus = "unemployed"
	JobTraining     JobStatus = "training"
)

// MentalState is the self-reported mental state for a month.
type MentalState string

const (
	MentalGood     MentalState = "good"
	MentalModerate MentalState = "moderate"
	MentalStressed MentalState = "stressed"
	MentalBad      MentalState = "bad"
)

// FamilyStatus is the self-reported family relationship for a month.
type FamilyStatus string

const (
	FamilySupportive  FamilyStatus = "supportive"
	FamilyNeutral     FamilyStatus = "neutral"
	FamilyProblematic FamilyStatus = "problematic"
	FamilyNoContact   FamilyStatus = "no_contact"
)

var (
	HousingStatuses = []HousingStatus{HousingStable, HousingTemporary, HousingWithFamily, HousingHomeless}
	JobStatuses     = []JobStatus{JobEmployed, JobSelfEmployed, JobSearching, JobUnemployed, JobTraining}
	MentalStates    = []MentalState{MentalGood, MentalModerate, MentalStressed, MentalBad}
	FamilyStatuses  = []FamilyStatus{FamilySupportive, FamilyNeutral, FamilyProblematic, FamilyNoContact}
)

func ParseHousingStatus(s string) (HousingStatus, error) {
	return parseEnum("housing_status", s, HousingStatuses)
}

func ParseJobStatus(s string) (JobStatus, error) {
	return parseEnum("job_status", s, JobStatuses)
}

func ParseMentalState(s string) (MentalState, error) {
	return parseEnum("mental_state", s, MentalStates)
}

func ParseFamilyStatus(s string) (FamilyStatus, error) {
	return parseEnum("family_status", s, FamilyStatuses)
}

func parseEnum[T ~string](field, s string, allowed []T) (T, error) {
	for _, v := range allowed {
		if string(v) == s {
			return v, nil
		}
	}
	var zero T
	return zero, dErrors.New(dErrors.CodeInvalidEnum, fmt.Sprintf("%s: unknown value %q", field, s))
}

// Assessment is the four statuses reported in one check-in.
type Assessment struct {
	Housing HousingStatus
	Job     JobStatus
	Mental  MentalState
	Family  FamilyStatus
}

// ParseAssessment parses the raw statuses in field order and stops at the
// first unknown value.
func ParseAssessment(housing, job, mental, family string) (Assessment, error) {
	var (
		a   Assessment
		err error
	)
	if a.Housing, err = ParseHousingStatus(housing); err != nil {
		return Assessment{}, err
	}
	if a.Job, err = ParseJobStatus(job); err != nil {
		return Assessment{}, err
	}
	if a.Mental, err = ParseMentalState(mental); err != nil {
		return Assessment{}, err
	}
	if a.Family, err = ParseFamilyStatus(family); err != nil {
		return Assessment{}, err
	}
	return a, nil
}

// AllAssessments enumerates every combination of the four statuses in
// housing, job, mental, family order.
func AllAssessments() []Assessment {
	out := make([]Assessment, 0, len(HousingStatuses)*len(JobStatuses)*len(MentalStates)*len(FamilyStatuses))
	for _, h := range HousingStatuses {
		for _, j := range JobStatuses {
			for _, m := range MentalStates {
				for _, f := range FamilyStatuses {
					out = append(out, Assessment{Housing: h, Job: j, Mental: m, Family: f})
				}
			}
		}
	}
	return out
}
