package service

import (
	"sort"

	"github.com/medrota/clerkship-api/internal/models"
)

// resolveFallback fills a requirement's remaining days from preceptors outside
// the primary team plus fallback-only members, in priority order. It only ever
// consumes dates the student has not used, re-checking capacity per placement.
// Passes repeat while progress is made, bounded by maxPasses. Returned
// assignments are flagged as fallback placements.
func resolveFallback(sctx *scheduleContext, remaining int, maxPasses int) []models.ScheduleAssignment {
	if remaining <= 0 {
		return nil
	}
	if maxPasses <= 0 {
		maxPasses = 1
	}

	pool := fallbackPool(sctx)
	if len(pool) == 0 {
		return nil
	}

	var assignments []models.ScheduleAssignment
	needed := remaining

	for pass := 0; pass < maxPasses && needed > 0; pass++ {
		progress := false
		for _, c := range pool {
			if needed == 0 {
				break
			}
			for _, d := range sctx.dates {
				if needed == 0 {
					break
				}
				if sctx.state.studentBooked(sctx.student.ID, d) {
					continue
				}
				if !c.availableOn(d) {
					continue
				}
				if !sctx.state.canAssign(c.preceptor.ID, d, c.capacity) {
					continue
				}
				sctx.state.reserve(sctx.student.ID, c.preceptor.ID, d)
				assignment := newAssignment(sctx, c.preceptor.ID, d, nil)
				assignment.Fallback = true
				assignments = append(assignments, assignment)
				needed--
				progress = true
			}
		}
		if !progress {
			break
		}
	}

	return assignments
}

// fallbackPool selects and orders the fallback candidates: members of other
// teams first (non-fallback-only by priority), then fallback-only members by
// priority. Cross-system members are excluded unless the clerkship allows it.
func fallbackPool(sctx *scheduleContext) []*candidatePreceptor {
	var primaryTeamID string
	if len(sctx.teams) > 0 {
		primaryTeamID = sctx.teams[0].ID
	}

	referenceSystem := primaryHealthSystem(sctx, primaryTeamID)

	var regular, fallbackOnly []*candidatePreceptor
	for _, c := range sctx.candidates {
		outsidePrimary := c.teamID != primaryTeamID
		if !outsidePrimary && !c.fallbackOnly {
			continue
		}
		if !sctx.clerkship.FallbackCrossSystem && referenceSystem != "" && c.preceptor.HealthSystemID != referenceSystem {
			continue
		}
		if c.fallbackOnly {
			fallbackOnly = append(fallbackOnly, c)
		} else {
			regular = append(regular, c)
		}
	}

	byPriority := func(list []*candidatePreceptor) {
		sort.SliceStable(list, func(i, j int) bool { return list[i].priority < list[j].priority })
	}
	byPriority(regular)
	byPriority(fallbackOnly)

	return append(regular, fallbackOnly...)
}

// primaryHealthSystem picks the health system the fallback search is anchored
// to: the first non-fallback-only member of the primary team.
func primaryHealthSystem(sctx *scheduleContext, primaryTeamID string) string {
	for _, c := range sctx.candidates {
		if c.teamID == primaryTeamID && !c.fallbackOnly {
			return c.preceptor.HealthSystemID
		}
	}
	return ""
}
