package service

import (
	"sort"
	"time"

	"github.com/medrota/clerkship-api/internal/models"
)

// runState tracks occupancy mutated incrementally across one scheduling run.
// It is owned by a single run and never shared; later decisions within the run
// observe earlier ones without re-querying the store.
type runState struct {
	daily        map[string]map[string]int // preceptor -> date key -> students
	yearly       map[string]int            // preceptor -> running yearly total
	studentDates map[string]map[string]bool
}

func newRunState() *runState {
	return &runState{
		daily:        make(map[string]map[string]int),
		yearly:       make(map[string]int),
		studentDates: make(map[string]map[string]bool),
	}
}

func (s *runState) seedOccupancy(preceptorID string, date time.Time, count int) {
	if s.daily[preceptorID] == nil {
		s.daily[preceptorID] = make(map[string]int)
	}
	s.daily[preceptorID][dateKey(date)] += count
}

func (s *runState) seedYearly(preceptorID string, count int) {
	s.yearly[preceptorID] = count
}

func (s *runState) seedStudentDate(studentID string, date time.Time) {
	if s.studentDates[studentID] == nil {
		s.studentDates[studentID] = make(map[string]bool)
	}
	s.studentDates[studentID][dateKey(date)] = true
}

func (s *runState) dailyCount(preceptorID string, date time.Time) int {
	return s.daily[preceptorID][dateKey(date)]
}

func (s *runState) yearlyCount(preceptorID string) int {
	return s.yearly[preceptorID]
}

func (s *runState) studentBooked(studentID string, date time.Time) bool {
	return s.studentDates[studentID][dateKey(date)]
}

// canAssign is the capacity check for one additional assignment on a date:
// the daily count must stay under the per-day limit and the yearly total must
// not exceed the per-year limit after the increment.
func (s *runState) canAssign(preceptorID string, date time.Time, cap models.Capacity) bool {
	if s.dailyCount(preceptorID, date) >= cap.MaxStudentsPerDay {
		return false
	}
	return s.yearly[preceptorID]+1 <= cap.MaxStudentsPerYear
}

// hasYearlyRoom checks a whole requirement against the yearly limit up front.
func (s *runState) hasYearlyRoom(preceptorID string, increment int, cap models.Capacity) bool {
	return s.yearly[preceptorID]+increment <= cap.MaxStudentsPerYear
}

func (s *runState) reserve(studentID, preceptorID string, date time.Time) {
	key := dateKey(date)
	if s.daily[preceptorID] == nil {
		s.daily[preceptorID] = make(map[string]int)
	}
	s.daily[preceptorID][key]++
	s.yearly[preceptorID]++
	if s.studentDates[studentID] == nil {
		s.studentDates[studentID] = make(map[string]bool)
	}
	s.studentDates[studentID][key] = true
}

func (s *runState) release(studentID, preceptorID string, date time.Time) {
	key := dateKey(date)
	if s.daily[preceptorID] != nil && s.daily[preceptorID][key] > 0 {
		s.daily[preceptorID][key]--
	}
	if s.yearly[preceptorID] > 0 {
		s.yearly[preceptorID]--
	}
	if s.studentDates[studentID] != nil {
		delete(s.studentDates[studentID], key)
	}
}

// candidatePreceptor is a preceptor annotated with the run-scoped data the
// strategies need: resolved availability, effective capacity and membership.
type candidatePreceptor struct {
	preceptor models.Preceptor
	capacity  models.Capacity
	available map[string]bool   // date key -> available
	sites     map[string]string // date key -> site
	priority  int
	// fallbackOnly marks members reserved for the fallback resolver, either
	// via the team membership flag or the preceptor's global flag.
	fallbackOnly bool
	teamID       string
}

func (c *candidatePreceptor) availableOn(date time.Time) bool {
	return c.available[dateKey(date)]
}

// scheduleContext holds everything one strategy invocation needs for a single
// (student, clerkship, pool) requirement.
type scheduleContext struct {
	student      models.Student
	clerkship    models.Clerkship
	elective     *models.Elective
	requiredDays int
	dates        []time.Time // candidate dates, range minus blackouts, ascending
	candidates   []*candidatePreceptor
	teams        []models.Team
	state        *runState
}

// primaryCandidates returns the non-fallback-only candidates, optionally
// filtered by the clerkship's specialty, sorted ascending by current load.
func (sctx *scheduleContext) primaryCandidates() []*candidatePreceptor {
	filtered := make([]*candidatePreceptor, 0, len(sctx.candidates))
	for _, c := range sctx.candidates {
		if c.fallbackOnly {
			continue
		}
		if sctx.clerkship.Specialty != nil && !matchesSpecialty(c.preceptor, *sctx.clerkship.Specialty) {
			continue
		}
		filtered = append(filtered, c)
	}
	sctx.sortByLoad(filtered)
	return filtered
}

func (sctx *scheduleContext) sortByLoad(candidates []*candidatePreceptor) {
	sort.SliceStable(candidates, func(i, j int) bool {
		li := sctx.state.yearlyCount(candidates[i].preceptor.ID)
		lj := sctx.state.yearlyCount(candidates[j].preceptor.ID)
		if li == lj {
			return candidates[i].preceptor.ID < candidates[j].preceptor.ID
		}
		return li < lj
	})
}

// unusedDates returns candidate dates not yet consumed by this student.
func (sctx *scheduleContext) unusedDates() []time.Time {
	var dates []time.Time
	for _, d := range sctx.dates {
		if !sctx.state.studentBooked(sctx.student.ID, d) {
			dates = append(dates, d)
		}
	}
	return dates
}

func matchesSpecialty(p models.Preceptor, specialty string) bool {
	return p.Specialty != nil && *p.Specialty == specialty
}

// electiveID returns the elective identifier for assignments in this pool.
func (sctx *scheduleContext) electiveID() *string {
	if sctx.elective == nil {
		return nil
	}
	id := sctx.elective.ID
	return &id
}
