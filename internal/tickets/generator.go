// Package tickets derives support tickets from classified check-ins.
package tickets

import (
	"fmt"
	"time"

	"safereturn/internal/risk"
	"safereturn/internal/tickets/models"
	id "safereturn/pkg/domain"
)

// Source is the check-in a batch of tickets is derived from.
type Source struct {
	ProfileID  id.ProfileID
	CheckInID  id.CheckInID
	MonthIndex int
	Assessment risk.Assessment
}

type trigger struct {
	category models.Category
	matches  func(risk.Assessment) bool
	note     string
}

var triggers = []trigger{
	{models.CategoryPsychological, func(a risk.Assessment) bool { return a.Mental == risk.MentalBad }, "mental state reported bad"},
	{models.CategoryHousing, func(a risk.Assessment) bool { return a.Housing == risk.HousingHomeless }, "reported homeless"},
	{models.CategoryJob, func(a risk.Assessment) bool { return a.Job == risk.JobUnemployed }, "reported unemployed"},
	{models.CategorySocial, func(a risk.Assessment) bool { return a.Family == risk.FamilyProblematic }, "family problems reported"},
}

// Generator turns check-in conditions into tickets, one per condition.
type Generator struct {
	dedup bool
}

// NewGenerator returns a generator. With dedup set, a category that already
// has a pending ticket for the profile is skipped.
func NewGenerator(dedup bool) *Generator {
	return &Generator{dedup: dedup}
}

// Dedup reports whether pending categories are consulted.
func (g *Generator) Dedup() bool {
	return g.dedup
}

// Generate returns 0-4 open, unassigned, auto-generated tickets. pending is
// only consulted when dedup is on and may be nil otherwise.
func (g *Generator) Generate(src Source, pending map[models.Category]bool, now time.Time) []*models.SupportTicket {
	var out []*models.SupportTicket
	for _, tr := range triggers {
		if !tr.matches(src.Assessment) {
			continue
		}
		if g.dedup && pending[tr.category] {
			continue
		}
		checkInID := src.CheckInID
		out = append(out, &models.SupportTicket{
			ID:            id.NewTicketID(),
			ProfileID:     src.ProfileID,
			CheckInID:     &checkInID,
			Category:      tr.category,
			Status:        models.StatusOpen,
			AutoGenerated: true,
			Notes:         fmt.Sprintf("auto: %s in month %d", tr.note, src.MonthIndex),
			CreatedAt:     now,
			UpdatedAt:     now,
		})
	}
	return out
}
