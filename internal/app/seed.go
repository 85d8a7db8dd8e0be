package app

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"safereturn/internal/followup/models"
	followupService "safereturn/internal/followup/service"
	id "safereturn/pkg/domain"
)

const seedDateLayout = "2006-01-02"

// SeedFile lists profiles to enroll, each with the check-ins to replay in
// month order.
type SeedFile struct {
	Profiles []SeedProfile `yaml:"profiles"`
}

type SeedProfile struct {
	NationalID       string        `yaml:"national_id"`
	FullName         string        `yaml:"full_name"`
	City             string        `yaml:"city"`
	ReleaseDate      string        `yaml:"release_date"`
	AssignedWorkerID string        `yaml:"assigned_worker_id,omitempty"`
	CheckIns         []SeedCheckIn `yaml:"checkins,omitempty"`
}

// SeedCheckIn is one monthly submission. SubmittedAt defaults to noon on the
// day the month opens.
type SeedCheckIn struct {
	Housing     string     `yaml:"housing"`
	Job         string     `yaml:"job"`
	Mental      string     `yaml:"mental"`
	Family      string     `yaml:"family"`
	Notes       string     `yaml:"notes,omitempty"`
	SubmittedAt *time.Time `yaml:"submitted_at,omitempty"`
}

// SeedResult summarizes what a seed run wrote.
type SeedResult struct {
	Profiles int
	CheckIns int
	Tickets  int
}

// LoadSeedFile reads and strictly decodes a YAML seed file.
func LoadSeedFile(path string) (*SeedFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read seed file: %w", err)
	}
	return ParseSeed(data)
}

// ParseSeed decodes seed YAML, rejecting unknown keys.
func ParseSeed(data []byte) (*SeedFile, error) {
	var f SeedFile
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&f); err != nil {
		return nil, fmt.Errorf("parse seed file: %w", err)
	}
	return &f, nil
}

// Seed enrolls every profile and submits its check-ins through the service,
// so seeded data passes the same validation, classification and ticketing
// as live traffic.
func Seed(ctx context.Context, svc *followupService.Service, f *SeedFile) (SeedResult, error) {
	var res SeedResult
	for i, sp := range f.Profiles {
		release, err := time.Parse(seedDateLayout, sp.ReleaseDate)
		if err != nil {
			return res, fmt.Errorf("profile %d: release_date must be YYYY-MM-DD: %w", i+1, err)
		}
		in := followupService.CreateProfileInput{
			NationalID:  sp.NationalID,
			FullName:    sp.FullName,
			City:        sp.City,
			ReleaseDate: release,
		}
		if sp.AssignedWorkerID != "" {
			w, err := id.ParseWorkerID(sp.AssignedWorkerID)
			if err != nil {
				return res, fmt.Errorf("profile %d: %w", i+1, err)
			}
			in.AssignedWorker = &w
		}
		p, err := svc.CreateProfile(ctx, in)
		if err != nil {
			return res, fmt.Errorf("profile %d (%s): %w", i+1, sp.NationalID, err)
		}
		res.Profiles++

		for j, c := range sp.CheckIns {
			month := j + 1
			submitted := p.Plan.StartDate.AddDate(0, 0, (month-1)*30).Add(12 * time.Hour)
			if c.SubmittedAt != nil {
				submitted = c.SubmittedAt.UTC()
			}
			out, err := svc.SubmitCheckIn(ctx, models.Submission{
				ProfileID:   p.ID,
				MonthIndex:  month,
				Housing:     c.Housing,
				Job:         c.Job,
				Mental:      c.Mental,
				Family:      c.Family,
				Notes:       c.Notes,
				SubmittedAt: submitted,
			})
			if err != nil {
				return res, fmt.Errorf("profile %s month %d: %w", sp.NationalID, month, err)
			}
			res.CheckIns++
			res.Tickets += len(out.TicketsCreated)
		}
	}
	return res, nil
}
