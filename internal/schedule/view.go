package schedule

import (
	"sort"
	"time"

	"github.com/planbar-app/planbar/internal/model"
)

const (
	unknownClient  = "Unknown client"
	unknownProject = "Unknown project"
)

// BookingsForWeek filters records to those starting within the week and
// joins client and project display names onto each. Records referencing a
// missing client or project keep a placeholder name rather than being
// dropped: the calendar should still show the session.
func BookingsForWeek(week []time.Time, records []model.Booking, clients []model.Client, projects []model.Project) []model.Booking {
	if len(week) == 0 {
		return nil
	}
	first := week[0]
	last := week[len(week)-1]
	windowStart := time.Date(first.Year(), first.Month(), first.Day(), 0, 0, 0, 0, first.Location())
	windowEnd := time.Date(last.Year(), last.Month(), last.Day(), 0, 0, 0, 0, last.Location()).AddDate(0, 0, 1)

	clientNames := make(map[string]string, len(clients))
	for _, c := range clients {
		clientNames[c.ID] = c.Name
	}
	projectNames := make(map[string]string, len(projects))
	for _, p := range projects {
		projectNames[p.ID] = p.Name
	}

	var out []model.Booking
	for _, rec := range records {
		if rec.Start.Before(windowStart) || !rec.Start.Before(windowEnd) {
			continue
		}
		b := rec
		b.ClientName = clientNames[b.ClientID]
		if b.ClientName == "" {
			b.ClientName = unknownClient
		}
		b.ProjectName = projectNames[b.ProjectID]
		if b.ProjectName == "" {
			b.ProjectName = unknownProject
		}
		if b.Title == "" {
			b.Title = b.ProjectName + " / " + b.ClientName
		}
		out = append(out, b)
	}

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Start.Before(out[j].Start)
	})
	return out
}
