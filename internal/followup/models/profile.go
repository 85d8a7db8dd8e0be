package models

import (
	"fmt"
	"time"

	id "safereturn/pkg/domain"
	dErrors "safereturn/pkg/domain-errors"
)

// FollowUpDays is the length of the reentry program counted from release.
const FollowUpDays = 365

// City is the beneficiary's city of residence.
type City string

const (
	CityRiyadh City = "riyadh"
	CityJeddah City = "jeddah"
	CityMecca  City = "mecca"
	CityMedina City = "medina"
	CityDammam City = "dammam"
	CityKhobar City = "khobar"
	CityTaif   City = "taif"
	CityTabuk  City = "tabuk"
	CityOther  City = "other"
)

var Cities = []City{CityRiyadh, CityJeddah, CityMecca, CityMedina, CityDammam, CityKhobar, CityTaif, CityTabuk, CityOther}

func ParseCity(s string) (City, error) {
	for _, c := range Cities {
		if string(c) == s {
			return c, nil
		}
	}
	return "", dErrors.New(dErrors.CodeInvalidEnum, fmt.Sprintf("city: unknown value %q", s))
}

// ReleaseProfile is a released individual enrolled in the follow-up program.
// Profiles are never deleted; a completed plan is the archived state.
type ReleaseProfile struct {
	ID                id.ProfileID
	NationalID        id.NationalID
	FullName          string
	City              City
	ReleaseDate       time.Time
	EndOfFollowUpDate time.Time
	AssignedWorker    *id.WorkerID
	Plan              FollowUpPlan
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

// NewReleaseProfile enrolls a beneficiary with an active plan at month 1.
func NewReleaseProfile(nationalID id.NationalID, fullName string, city City, releaseDate, now time.Time) (*ReleaseProfile, error) {
	if fullName == "" {
		return nil, dErrors.New(dErrors.CodeValidation, "full_name is required")
	}
	if releaseDate.IsZero() {
		return nil, dErrors.New(dErrors.CodeValidation, "release_date is required")
	}
	releaseDate = releaseDate.UTC().Truncate(24 * time.Hour)
	return &ReleaseProfile{
		ID:                id.NewProfileID(),
		NationalID:        nationalID,
		FullName:          fullName,
		City:              city,
		ReleaseDate:       releaseDate,
		EndOfFollowUpDate: releaseDate.AddDate(0, 0, FollowUpDays),
		Plan:              NewFollowUpPlan(releaseDate),
		CreatedAt:         now,
		UpdatedAt:         now,
	}, nil
}

// Assign sets the responsible case worker. Reassignment is allowed.
func (p *ReleaseProfile) Assign(worker id.WorkerID, now time.Time) error {
	if worker.IsNil() {
		return dErrors.New(dErrors.CodeValidation, "worker_id is required")
	}
	p.AssignedWorker = &worker
	p.UpdatedAt = now
	return nil
}

// DaysSinceRelease counts whole days from release to at; negative before release.
func (p *ReleaseProfile) DaysSinceRelease(at time.Time) int {
	return int(at.UTC().Sub(p.ReleaseDate).Hours() / 24)
}
