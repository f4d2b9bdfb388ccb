package service

import (
	"fmt"
	"sort"
	"time"

	"github.com/medrota/clerkship-api/internal/models"
)

// strategyOutcome is the result of one strategy invocation for one requirement.
// Strategies that keep partial progress (daily rotation, team continuity)
// return Success=false with the partial assignments still attached; the
// all-or-nothing strategies return an empty assignment list on failure.
type strategyOutcome struct {
	Success         bool
	Assignments     []models.ScheduleAssignment
	Reason          string
	BlocksCompleted int
	PrimaryShare    float64
}

// assignmentStrategy is the common contract for the polymorphic assignment
// algorithms. Exactly one strategy handles each requirement, selected by
// first-match over an ordered list with ContinuousSingle as the default.
type assignmentStrategy interface {
	Name() string
	CanHandle(clerkship models.Clerkship) bool
	Generate(sctx *scheduleContext) strategyOutcome
}

func defaultStrategies() []assignmentStrategy {
	return []assignmentStrategy{
		teamContinuityStrategy{},
		blockBasedStrategy{},
		dailyRotationStrategy{},
		continuousSingleStrategy{},
	}
}

func selectStrategy(strategies []assignmentStrategy, clerkship models.Clerkship) assignmentStrategy {
	for _, s := range strategies {
		if s.CanHandle(clerkship) {
			return s
		}
	}
	return continuousSingleStrategy{}
}

func newAssignment(sctx *scheduleContext, preceptorID string, date time.Time, blockNumber *int) models.ScheduleAssignment {
	return models.ScheduleAssignment{
		StudentID:   sctx.student.ID,
		PreceptorID: preceptorID,
		ClerkshipID: sctx.clerkship.ID,
		Date:        date,
		ElectiveID:  sctx.electiveID(),
		BlockNumber: blockNumber,
	}
}

// --- ContinuousSingle ---

// continuousSingleStrategy requires one preceptor to cover every required day.
// It is all-or-nothing: when no single preceptor qualifies, zero assignments
// are produced.
type continuousSingleStrategy struct{}

func (continuousSingleStrategy) Name() string { return models.StrategyContinuousSingle }

// CanHandle always matches; the strategy is the ordered list's default.
func (continuousSingleStrategy) CanHandle(models.Clerkship) bool { return true }

func (continuousSingleStrategy) Generate(sctx *scheduleContext) strategyOutcome {
	required := sctx.requiredDays
	dates := sctx.unusedDates()

	for _, c := range sctx.primaryCandidates() {
		covered := make([]time.Time, 0, required)
		for _, d := range dates {
			if !c.availableOn(d) {
				continue
			}
			if sctx.state.dailyCount(c.preceptor.ID, d) >= c.capacity.MaxStudentsPerDay {
				continue
			}
			covered = append(covered, d)
			if len(covered) == required {
				break
			}
		}
		if len(covered) < required {
			continue
		}
		if !sctx.state.hasYearlyRoom(c.preceptor.ID, required, c.capacity) {
			continue
		}

		assignments := make([]models.ScheduleAssignment, 0, required)
		for _, d := range covered {
			sctx.state.reserve(sctx.student.ID, c.preceptor.ID, d)
			assignments = append(assignments, newAssignment(sctx, c.preceptor.ID, d, nil))
		}
		return strategyOutcome{Success: true, Assignments: assignments, PrimaryShare: 1}
	}

	return strategyOutcome{
		Reason: fmt.Sprintf("no single preceptor available for all %d required days", required),
	}
}

// --- BlockBased ---

// blockBasedStrategy splits the requirement into fixed-size blocks, each
// covered by one preceptor. Any unfillable block discards the whole
// requirement's progress.
type blockBasedStrategy struct{}

func (blockBasedStrategy) Name() string { return models.StrategyBlockBased }

func (blockBasedStrategy) CanHandle(c models.Clerkship) bool {
	return c.Strategy == models.StrategyBlockBased
}

func (s blockBasedStrategy) Generate(sctx *scheduleContext) strategyOutcome {
	required := sctx.requiredDays
	size := sctx.clerkship.BlockSizeDays
	if size <= 0 {
		size = 5
	}

	remainder := required % size
	if remainder > 0 && !sctx.clerkship.AllowPartialBlocks {
		return strategyOutcome{
			Reason: fmt.Sprintf("%d required days do not divide into blocks of %d and partial blocks are disabled", required, size),
		}
	}

	blockLengths := make([]int, 0, required/size+1)
	for i := 0; i < required/size; i++ {
		blockLengths = append(blockLengths, size)
	}
	if remainder > 0 {
		blockLengths = append(blockLengths, remainder)
	}

	dates := sctx.unusedDates()
	var assignments []models.ScheduleAssignment
	var prev *candidatePreceptor
	cursor := 0

	abort := func(completed int) strategyOutcome {
		for _, a := range assignments {
			sctx.state.release(a.StudentID, a.PreceptorID, a.Date)
		}
		return strategyOutcome{
			BlocksCompleted: completed,
			Reason:          fmt.Sprintf("staffed %d of %d blocks before running out of eligible preceptors", completed, len(blockLengths)),
		}
	}

	for blockIdx, length := range blockLengths {
		if cursor+length > len(dates) {
			return abort(blockIdx)
		}
		blockDates := dates[cursor : cursor+length]
		cursor += length

		var pick *candidatePreceptor
		if sctx.clerkship.PreferContinuousBlocks && prev != nil && coversBlock(sctx, prev, blockDates) {
			pick = prev
		} else {
			for _, c := range sctx.primaryCandidates() {
				if coversBlock(sctx, c, blockDates) {
					pick = c
					break
				}
			}
		}
		if pick == nil {
			return abort(blockIdx)
		}

		blockNumber := blockIdx + 1
		for _, d := range blockDates {
			sctx.state.reserve(sctx.student.ID, pick.preceptor.ID, d)
			assignments = append(assignments, newAssignment(sctx, pick.preceptor.ID, d, &blockNumber))
		}
		prev = pick
	}

	return strategyOutcome{Success: true, Assignments: assignments, BlocksCompleted: len(blockLengths)}
}

func coversBlock(sctx *scheduleContext, c *candidatePreceptor, blockDates []time.Time) bool {
	if !sctx.state.hasYearlyRoom(c.preceptor.ID, len(blockDates), c.capacity) {
		return false
	}
	for _, d := range blockDates {
		if !c.availableOn(d) {
			return false
		}
		if sctx.state.dailyCount(c.preceptor.ID, d) >= c.capacity.MaxStudentsPerDay {
			return false
		}
	}
	return true
}

// --- DailyRotation ---

// dailyRotationStrategy assigns day by day. Continuity with the previous day's
// preceptor is a soft preference only. A date with zero eligible preceptors
// aborts the requirement, keeping the partial progress.
type dailyRotationStrategy struct{}

func (dailyRotationStrategy) Name() string { return models.StrategyDailyRotation }

func (dailyRotationStrategy) CanHandle(c models.Clerkship) bool {
	return c.Strategy == models.StrategyDailyRotation
}

func (dailyRotationStrategy) Generate(sctx *scheduleContext) strategyOutcome {
	required := sctx.requiredDays
	var assignments []models.ScheduleAssignment
	var prev *candidatePreceptor

	for _, d := range sctx.unusedDates() {
		if len(assignments) == required {
			break
		}

		var eligible []*candidatePreceptor
		for _, c := range sctx.primaryCandidates() {
			if c.availableOn(d) && sctx.state.canAssign(c.preceptor.ID, d, c.capacity) {
				eligible = append(eligible, c)
			}
		}
		if len(eligible) == 0 {
			return strategyOutcome{
				Assignments: assignments,
				Reason:      fmt.Sprintf("no preceptor with remaining capacity on %s", dateKey(d)),
			}
		}

		pick := eligible[0]
		if prev != nil {
			for _, c := range eligible {
				if c.preceptor.ID == prev.preceptor.ID {
					pick = c
					break
				}
			}
		}

		sctx.state.reserve(sctx.student.ID, pick.preceptor.ID, d)
		assignments = append(assignments, newAssignment(sctx, pick.preceptor.ID, d, nil))
		prev = pick
	}

	if len(assignments) < required {
		return strategyOutcome{
			Assignments: assignments,
			Reason:      fmt.Sprintf("only %d of %d days could be covered within the candidate dates", len(assignments), required),
		}
	}
	return strategyOutcome{Success: true, Assignments: assignments}
}

// --- TeamContinuity ---

// teamContinuityStrategy walks team members in priority order, each consuming
// as many unused available dates as still needed, then runs a fill-remaining
// pass over every candidate regardless of priority. It is the only strategy
// that combines multiple preceptors for a single requirement.
type teamContinuityStrategy struct{}

func (teamContinuityStrategy) Name() string { return models.StrategyTeamContinuity }

func (teamContinuityStrategy) CanHandle(c models.Clerkship) bool {
	return c.Strategy == models.StrategyTeamContinuity
}

func (teamContinuityStrategy) Generate(sctx *scheduleContext) strategyOutcome {
	required := sctx.requiredDays
	members := teamOrderedCandidates(sctx)

	var assignments []models.ScheduleAssignment
	perMember := make(map[string]int)
	needed := required

	consume := func(c *candidatePreceptor) {
		for _, d := range sctx.dates {
			if needed == 0 {
				return
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
			assignments = append(assignments, newAssignment(sctx, c.preceptor.ID, d, nil))
			perMember[c.preceptor.ID]++
			needed--
		}
	}

	for _, m := range members {
		if needed == 0 {
			break
		}
		consume(m)
	}

	// Fill remaining: any candidate with capacity on an unused date,
	// irrespective of team priority.
	if needed > 0 {
		for _, c := range sctx.primaryCandidates() {
			if needed == 0 {
				break
			}
			consume(c)
		}
	}

	var primaryShare float64
	if len(members) > 0 && required > 0 {
		primaryShare = float64(perMember[members[0].preceptor.ID]) / float64(required)
	}

	if needed > 0 {
		return strategyOutcome{
			Assignments:  assignments,
			PrimaryShare: primaryShare,
			Reason:       fmt.Sprintf("team capacity exhausted with %d of %d days unassigned", needed, required),
		}
	}
	return strategyOutcome{Success: true, Assignments: assignments, PrimaryShare: primaryShare}
}

// teamOrderedCandidates resolves the primary team's members by ascending
// priority, skipping fallback-only memberships. Without a team the candidate
// pool acts as an implicit team ordered by ascending load.
func teamOrderedCandidates(sctx *scheduleContext) []*candidatePreceptor {
	if len(sctx.teams) == 0 {
		return sctx.primaryCandidates()
	}
	primaryTeam := sctx.teams[0]
	var members []*candidatePreceptor
	for _, c := range sctx.candidates {
		if c.teamID != primaryTeam.ID || c.fallbackOnly {
			continue
		}
		members = append(members, c)
	}
	sort.SliceStable(members, func(i, j int) bool { return members[i].priority < members[j].priority })
	return members
}
