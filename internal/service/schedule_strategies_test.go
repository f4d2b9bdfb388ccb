package service

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/medrota/clerkship-api/internal/models"
)

func strategyDates(start time.Time, n int) []time.Time {
	dates := make([]time.Time, 0, n)
	for i := 0; i < n; i++ {
		dates = append(dates, start.AddDate(0, 0, i))
	}
	return dates
}

func availabilityMap(dates ...time.Time) map[string]bool {
	m := make(map[string]bool, len(dates))
	for _, d := range dates {
		m[dateKey(d)] = true
	}
	return m
}

func candidate(id string, priority int, available map[string]bool) *candidatePreceptor {
	return &candidatePreceptor{
		preceptor: models.Preceptor{ID: id, HealthSystemID: "hs-1", Active: true},
		capacity:  models.DefaultCapacity(),
		available: available,
		sites:     map[string]string{},
		priority:  priority,
	}
}

func newStrategyContext(required int, dates []time.Time, candidates ...*candidatePreceptor) *scheduleContext {
	return &scheduleContext{
		student:      models.Student{ID: "stu-1"},
		clerkship:    models.Clerkship{ID: "clerk-1", Strategy: models.StrategyContinuousSingle, RequiredDays: required},
		requiredDays: required,
		dates:        dates,
		candidates:   candidates,
		state:        newRunState(),
	}
}

func TestContinuousSingleCoversRequiredDays(t *testing.T) {
	// 2026-01-05 is a Monday; the preceptor works Mon, Wed and Fri.
	week1 := day(2026, 1, 5)
	mwf := []time.Time{
		week1, week1.AddDate(0, 0, 2), week1.AddDate(0, 0, 4),
		week1.AddDate(0, 0, 7), week1.AddDate(0, 0, 9), week1.AddDate(0, 0, 11),
	}
	c := candidate("prec-1", 1, availabilityMap(mwf...))
	sctx := newStrategyContext(5, strategyDates(week1, 12), c)

	outcome := continuousSingleStrategy{}.Generate(sctx)
	require.True(t, outcome.Success)
	require.Len(t, outcome.Assignments, 5)
	for i, a := range outcome.Assignments {
		assert.Equal(t, "prec-1", a.PreceptorID)
		assert.True(t, a.Date.Equal(mwf[i]))
	}
	assert.Equal(t, 5, sctx.state.yearlyCount("prec-1"))
}

func TestContinuousSingleAllOrNothing(t *testing.T) {
	start := day(2026, 1, 5)
	dates := strategyDates(start, 5)
	// Each preceptor covers a disjoint half, neither covers all five days.
	a := candidate("prec-a", 1, availabilityMap(dates[0], dates[1]))
	b := candidate("prec-b", 2, availabilityMap(dates[2], dates[3], dates[4]))
	sctx := newStrategyContext(5, dates, a, b)

	outcome := continuousSingleStrategy{}.Generate(sctx)
	assert.False(t, outcome.Success)
	assert.Empty(t, outcome.Assignments)
	assert.NotEmpty(t, outcome.Reason)
	assert.Equal(t, 0, sctx.state.yearlyCount("prec-a"))
	assert.Equal(t, 0, sctx.state.yearlyCount("prec-b"))
}

func TestContinuousSingleRespectsYearlyLimit(t *testing.T) {
	start := day(2026, 1, 5)
	dates := strategyDates(start, 5)
	c := candidate("prec-1", 1, availabilityMap(dates...))
	c.capacity.MaxStudentsPerYear = 3
	sctx := newStrategyContext(5, dates, c)

	outcome := continuousSingleStrategy{}.Generate(sctx)
	assert.False(t, outcome.Success)
	assert.Empty(t, outcome.Assignments)
}

func TestContinuousSingleSkipsFallbackOnlyCandidates(t *testing.T) {
	start := day(2026, 1, 5)
	dates := strategyDates(start, 3)
	c := candidate("prec-1", 1, availabilityMap(dates...))
	c.fallbackOnly = true
	sctx := newStrategyContext(3, dates, c)

	outcome := continuousSingleStrategy{}.Generate(sctx)
	assert.False(t, outcome.Success)
	assert.Empty(t, outcome.Assignments)
}

func TestBlockBasedSplitsAcrossPreceptors(t *testing.T) {
	start := day(2026, 1, 5)
	dates := strategyDates(start, 10)
	a := candidate("prec-a", 1, availabilityMap(dates[:5]...))
	b := candidate("prec-b", 2, availabilityMap(dates[5:]...))
	sctx := newStrategyContext(10, dates, a, b)
	sctx.clerkship.Strategy = models.StrategyBlockBased
	sctx.clerkship.BlockSizeDays = 5

	outcome := blockBasedStrategy{}.Generate(sctx)
	require.True(t, outcome.Success)
	require.Len(t, outcome.Assignments, 10)
	assert.Equal(t, 2, outcome.BlocksCompleted)

	assert.Equal(t, "prec-a", outcome.Assignments[0].PreceptorID)
	require.NotNil(t, outcome.Assignments[0].BlockNumber)
	assert.Equal(t, 1, *outcome.Assignments[0].BlockNumber)
	assert.Equal(t, "prec-b", outcome.Assignments[9].PreceptorID)
	require.NotNil(t, outcome.Assignments[9].BlockNumber)
	assert.Equal(t, 2, *outcome.Assignments[9].BlockNumber)
}

func TestBlockBasedRejectsRemainderWithoutPartialBlocks(t *testing.T) {
	start := day(2026, 1, 5)
	dates := strategyDates(start, 10)
	c := candidate("prec-1", 1, availabilityMap(dates...))
	sctx := newStrategyContext(7, dates, c)
	sctx.clerkship.Strategy = models.StrategyBlockBased
	sctx.clerkship.BlockSizeDays = 5
	sctx.clerkship.AllowPartialBlocks = false

	outcome := blockBasedStrategy{}.Generate(sctx)
	assert.False(t, outcome.Success)
	assert.Empty(t, outcome.Assignments)
	assert.NotEmpty(t, outcome.Reason)
}

func TestBlockBasedAllowsPartialFinalBlock(t *testing.T) {
	start := day(2026, 1, 5)
	dates := strategyDates(start, 10)
	c := candidate("prec-1", 1, availabilityMap(dates...))
	sctx := newStrategyContext(7, dates, c)
	sctx.clerkship.Strategy = models.StrategyBlockBased
	sctx.clerkship.BlockSizeDays = 5
	sctx.clerkship.AllowPartialBlocks = true

	outcome := blockBasedStrategy{}.Generate(sctx)
	require.True(t, outcome.Success)
	require.Len(t, outcome.Assignments, 7)
	assert.Equal(t, 2, outcome.BlocksCompleted)
	assert.Equal(t, 2, *outcome.Assignments[6].BlockNumber)
}

func TestBlockBasedAbortReleasesReservations(t *testing.T) {
	start := day(2026, 1, 5)
	dates := strategyDates(start, 10)
	// Only the first block can be staffed.
	a := candidate("prec-a", 1, availabilityMap(dates[:5]...))
	sctx := newStrategyContext(10, dates, a)
	sctx.clerkship.Strategy = models.StrategyBlockBased
	sctx.clerkship.BlockSizeDays = 5

	outcome := blockBasedStrategy{}.Generate(sctx)
	assert.False(t, outcome.Success)
	assert.Empty(t, outcome.Assignments)
	assert.Equal(t, 1, outcome.BlocksCompleted)
	assert.Equal(t, 0, sctx.state.yearlyCount("prec-a"))
	assert.False(t, sctx.state.studentBooked("stu-1", dates[0]))
}

func TestBlockBasedPrefersContinuousBlocks(t *testing.T) {
	start := day(2026, 1, 5)
	dates := strategyDates(start, 10)
	a := candidate("prec-a", 1, availabilityMap(dates...))
	b := candidate("prec-b", 2, availabilityMap(dates...))
	sctx := newStrategyContext(10, dates, a, b)
	sctx.clerkship.Strategy = models.StrategyBlockBased
	sctx.clerkship.BlockSizeDays = 5
	sctx.clerkship.PreferContinuousBlocks = true

	outcome := blockBasedStrategy{}.Generate(sctx)
	require.True(t, outcome.Success)
	for _, assignment := range outcome.Assignments {
		assert.Equal(t, "prec-a", assignment.PreceptorID, "continuity should keep the first block's preceptor")
	}
}

func TestDailyRotationKeepsPartialProgress(t *testing.T) {
	start := day(2026, 1, 5)
	dates := strategyDates(start, 5)
	c := candidate("prec-1", 1, availabilityMap(dates[0], dates[1], dates[2]))
	sctx := newStrategyContext(5, dates, c)
	sctx.clerkship.Strategy = models.StrategyDailyRotation

	outcome := dailyRotationStrategy{}.Generate(sctx)
	assert.False(t, outcome.Success)
	require.Len(t, outcome.Assignments, 3)
	assert.NotEmpty(t, outcome.Reason)
	// Partial progress stays reserved for fallback resolution.
	assert.Equal(t, 3, sctx.state.yearlyCount("prec-1"))
	assert.True(t, sctx.state.studentBooked("stu-1", dates[0]))
}

func TestDailyRotationPrefersPreviousDayPreceptor(t *testing.T) {
	start := day(2026, 1, 5)
	dates := strategyDates(start, 4)
	a := candidate("prec-a", 1, availabilityMap(dates...))
	b := candidate("prec-b", 2, availabilityMap(dates...))
	sctx := newStrategyContext(4, dates, a, b)
	sctx.clerkship.Strategy = models.StrategyDailyRotation

	outcome := dailyRotationStrategy{}.Generate(sctx)
	require.True(t, outcome.Success)
	require.Len(t, outcome.Assignments, 4)
	first := outcome.Assignments[0].PreceptorID
	for _, assignment := range outcome.Assignments[1:] {
		assert.Equal(t, first, assignment.PreceptorID, "soft continuity should stick with the previous day's pick")
	}
}

func TestTeamContinuityFollowsPriorityOrder(t *testing.T) {
	start := day(2026, 1, 5)
	dates := strategyDates(start, 5)
	lead := candidate("prec-lead", 1, availabilityMap(dates[0], dates[1], dates[2]))
	lead.teamID = "team-1"
	second := candidate("prec-second", 2, availabilityMap(dates...))
	second.teamID = "team-1"
	sctx := newStrategyContext(5, dates, second, lead)
	sctx.clerkship.Strategy = models.StrategyTeamContinuity
	sctx.teams = []models.Team{{ID: "team-1", ClerkshipID: "clerk-1"}}

	outcome := teamContinuityStrategy{}.Generate(sctx)
	require.True(t, outcome.Success)
	require.Len(t, outcome.Assignments, 5)

	perPreceptor := make(map[string]int)
	for _, a := range outcome.Assignments {
		perPreceptor[a.PreceptorID]++
	}
	assert.Equal(t, 3, perPreceptor["prec-lead"], "the lead consumes every day it can cover")
	assert.Equal(t, 2, perPreceptor["prec-second"])
	assert.InDelta(t, 0.6, outcome.PrimaryShare, 0.001)
}

func TestTeamContinuityFillsFromOutsideTheTeam(t *testing.T) {
	start := day(2026, 1, 5)
	dates := strategyDates(start, 4)
	member := candidate("prec-member", 1, availabilityMap(dates[0], dates[1]))
	member.teamID = "team-1"
	outsider := candidate("prec-outside", 5, availabilityMap(dates...))
	outsider.teamID = "team-2"
	sctx := newStrategyContext(4, dates, member, outsider)
	sctx.clerkship.Strategy = models.StrategyTeamContinuity
	sctx.teams = []models.Team{{ID: "team-1"}, {ID: "team-2"}}

	outcome := teamContinuityStrategy{}.Generate(sctx)
	require.True(t, outcome.Success)
	require.Len(t, outcome.Assignments, 4)

	perPreceptor := make(map[string]int)
	for _, a := range outcome.Assignments {
		perPreceptor[a.PreceptorID]++
	}
	assert.Equal(t, 2, perPreceptor["prec-member"])
	assert.Equal(t, 2, perPreceptor["prec-outside"])
}

func TestTeamContinuityWithoutTeamsUsesWholePool(t *testing.T) {
	start := day(2026, 1, 5)
	dates := strategyDates(start, 4)
	a := candidate("prec-a", 1, availabilityMap(dates...))
	sctx := newStrategyContext(4, dates, a)
	sctx.clerkship.Strategy = models.StrategyTeamContinuity

	outcome := teamContinuityStrategy{}.Generate(sctx)
	require.True(t, outcome.Success)
	assert.Len(t, outcome.Assignments, 4)
}

func TestSelectStrategy(t *testing.T) {
	strategies := defaultStrategies()

	assert.Equal(t, models.StrategyBlockBased, selectStrategy(strategies, models.Clerkship{Strategy: models.StrategyBlockBased}).Name())
	assert.Equal(t, models.StrategyDailyRotation, selectStrategy(strategies, models.Clerkship{Strategy: models.StrategyDailyRotation}).Name())
	assert.Equal(t, models.StrategyTeamContinuity, selectStrategy(strategies, models.Clerkship{Strategy: models.StrategyTeamContinuity}).Name())
	assert.Equal(t, models.StrategyContinuousSingle, selectStrategy(strategies, models.Clerkship{Strategy: "unknown"}).Name())
}

func TestRunStateReserveAndRelease(t *testing.T) {
	state := newRunState()
	d := day(2026, 1, 5)
	capacity := models.Capacity{MaxStudentsPerDay: 1, MaxStudentsPerYear: 2}

	assert.True(t, state.canAssign("prec-1", d, capacity))
	state.reserve("stu-1", "prec-1", d)
	assert.False(t, state.canAssign("prec-1", d, capacity), "daily limit reached")
	assert.True(t, state.studentBooked("stu-1", d))
	assert.Equal(t, 1, state.dailyCount("prec-1", d))
	assert.Equal(t, 1, state.yearlyCount("prec-1"))

	state.release("stu-1", "prec-1", d)
	assert.True(t, state.canAssign("prec-1", d, capacity))
	assert.False(t, state.studentBooked("stu-1", d))
	assert.Equal(t, 0, state.yearlyCount("prec-1"))
}

func TestResolveFallbackFlagsAssignments(t *testing.T) {
	start := day(2026, 1, 5)
	dates := strategyDates(start, 3)
	primary := candidate("prec-primary", 1, availabilityMap(dates...))
	primary.teamID = "team-1"
	backup := candidate("prec-backup", 1, availabilityMap(dates...))
	backup.teamID = "team-2"
	sctx := newStrategyContext(3, dates, primary, backup)
	sctx.teams = []models.Team{{ID: "team-1"}, {ID: "team-2"}}

	rescued := resolveFallback(sctx, 2, 3)
	require.Len(t, rescued, 2)
	for _, a := range rescued {
		assert.True(t, a.Fallback)
		assert.Equal(t, "prec-backup", a.PreceptorID, "primary team members are not fallback candidates")
	}
}

func TestFallbackPoolOrdering(t *testing.T) {
	primary := candidate("prec-primary", 1, nil)
	primary.teamID = "team-1"
	otherHigh := candidate("prec-other-high", 1, nil)
	otherHigh.teamID = "team-2"
	otherLow := candidate("prec-other-low", 5, nil)
	otherLow.teamID = "team-2"
	reserve := candidate("prec-reserve", 1, nil)
	reserve.teamID = "team-1"
	reserve.fallbackOnly = true

	sctx := newStrategyContext(1, nil, otherLow, reserve, primary, otherHigh)
	sctx.teams = []models.Team{{ID: "team-1"}, {ID: "team-2"}}

	pool := fallbackPool(sctx)
	require.Len(t, pool, 3)
	assert.Equal(t, "prec-other-high", pool[0].preceptor.ID)
	assert.Equal(t, "prec-other-low", pool[1].preceptor.ID)
	assert.Equal(t, "prec-reserve", pool[2].preceptor.ID, "fallback-only members come last")
}

func TestFallbackPoolCrossSystemGate(t *testing.T) {
	primary := candidate("prec-primary", 1, nil)
	primary.teamID = "team-1"
	sameSystem := candidate("prec-same", 1, nil)
	sameSystem.teamID = "team-2"
	otherSystem := candidate("prec-other", 1, nil)
	otherSystem.teamID = "team-2"
	otherSystem.preceptor.HealthSystemID = "hs-2"

	sctx := newStrategyContext(1, nil, primary, sameSystem, otherSystem)
	sctx.teams = []models.Team{{ID: "team-1"}, {ID: "team-2"}}
	sctx.clerkship.FallbackCrossSystem = false

	pool := fallbackPool(sctx)
	require.Len(t, pool, 1)
	assert.Equal(t, "prec-same", pool[0].preceptor.ID)

	sctx.clerkship.FallbackCrossSystem = true
	pool = fallbackPool(sctx)
	assert.Len(t, pool, 2)
}
