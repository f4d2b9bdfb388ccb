package service

import (
	"context"
	"testing"
	"time"

	"github.com/jmoiron/sqlx/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/medrota/clerkship-api/internal/models"
	appErrors "github.com/medrota/clerkship-api/pkg/errors"
)

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func weeklyPattern(start, end time.Time, daysOfWeek string) models.AvailabilityPattern {
	return models.AvailabilityPattern{
		ID:          "pat-weekly",
		PreceptorID: "prec-1",
		SiteID:      "site-1",
		Type:        models.PatternWeekly,
		StartDate:   start,
		EndDate:     end,
		Available:   true,
		Enabled:     true,
		Config:      types.JSONText(`{"daysOfWeek":` + daysOfWeek + `}`),
	}
}

func TestResolvePatternsWeekly(t *testing.T) {
	// 2026-01-05 is a Monday.
	days := ResolvePatterns([]models.AvailabilityPattern{
		weeklyPattern(day(2026, 1, 5), day(2026, 1, 16), "[1,3,5]"),
	})

	require.Len(t, days, 6)
	expected := []time.Time{
		day(2026, 1, 5), day(2026, 1, 7), day(2026, 1, 9),
		day(2026, 1, 12), day(2026, 1, 14), day(2026, 1, 16),
	}
	for i, d := range days {
		assert.True(t, d.Date.Equal(expected[i]), "date %d: got %s", i, d.Date)
		assert.True(t, d.Available)
		assert.Equal(t, "site-1", d.SiteID)
		assert.Equal(t, models.PatternWeekly, d.SourceType)
	}
}

func TestResolvePatternsWeeklySundayIsSeven(t *testing.T) {
	// 2026-01-11 is a Sunday.
	days := ResolvePatterns([]models.AvailabilityPattern{
		weeklyPattern(day(2026, 1, 5), day(2026, 1, 11), "[7]"),
	})

	require.Len(t, days, 1)
	assert.True(t, days[0].Date.Equal(day(2026, 1, 11)))
}

func TestResolvePatternsMonthlyFirstDays(t *testing.T) {
	days := ResolvePatterns([]models.AvailabilityPattern{{
		Type:      models.PatternMonthly,
		StartDate: day(2026, 2, 1),
		EndDate:   day(2026, 3, 31),
		Available: true,
		Enabled:   true,
		Config:    types.JSONText(`{"mode":"first_days","count":3}`),
	}})

	require.Len(t, days, 6)
	assert.True(t, days[0].Date.Equal(day(2026, 2, 1)))
	assert.True(t, days[2].Date.Equal(day(2026, 2, 3)))
	assert.True(t, days[3].Date.Equal(day(2026, 3, 1)))
	assert.True(t, days[5].Date.Equal(day(2026, 3, 3)))
}

func TestResolvePatternsMonthlyLastDaysShortMonth(t *testing.T) {
	// February 2026 has 28 days.
	days := ResolvePatterns([]models.AvailabilityPattern{{
		Type:      models.PatternMonthly,
		StartDate: day(2026, 2, 1),
		EndDate:   day(2026, 2, 28),
		Available: true,
		Enabled:   true,
		Config:    types.JSONText(`{"mode":"last_days","count":2}`),
	}})

	require.Len(t, days, 2)
	assert.True(t, days[0].Date.Equal(day(2026, 2, 27)))
	assert.True(t, days[1].Date.Equal(day(2026, 2, 28)))
}

func TestResolvePatternsMonthlyBusinessWeeks(t *testing.T) {
	// August 2026 starts on a Saturday and ends on a Monday.
	first := ResolvePatterns([]models.AvailabilityPattern{{
		Type:      models.PatternMonthly,
		StartDate: day(2026, 8, 1),
		EndDate:   day(2026, 8, 31),
		Available: true,
		Enabled:   true,
		Config:    types.JSONText(`{"mode":"first_business_week"}`),
	}})
	require.Len(t, first, 5)
	assert.True(t, first[0].Date.Equal(day(2026, 8, 3)))
	assert.True(t, first[4].Date.Equal(day(2026, 8, 7)))

	last := ResolvePatterns([]models.AvailabilityPattern{{
		Type:      models.PatternMonthly,
		StartDate: day(2026, 8, 1),
		EndDate:   day(2026, 8, 31),
		Available: true,
		Enabled:   true,
		Config:    types.JSONText(`{"mode":"last_business_week"}`),
	}})
	require.Len(t, last, 5)
	assert.True(t, last[0].Date.Equal(day(2026, 8, 25)))
	assert.True(t, last[4].Date.Equal(day(2026, 8, 31)))
}

func TestResolvePatternsMonthlySpecificDaysSkipsMissing(t *testing.T) {
	days := ResolvePatterns([]models.AvailabilityPattern{{
		Type:      models.PatternMonthly,
		StartDate: day(2026, 2, 1),
		EndDate:   day(2026, 2, 28),
		Available: true,
		Enabled:   true,
		Config:    types.JSONText(`{"mode":"specific_days","daysOfMonth":[15,31]}`),
	}})

	require.Len(t, days, 1)
	assert.True(t, days[0].Date.Equal(day(2026, 2, 15)))
}

func TestResolvePatternsBlockExcludesWeekends(t *testing.T) {
	// 2026-01-05 Monday through 2026-01-11 Sunday.
	days := ResolvePatterns([]models.AvailabilityPattern{{
		Type:      models.PatternBlock,
		StartDate: day(2026, 1, 5),
		EndDate:   day(2026, 1, 11),
		Available: true,
		Enabled:   true,
		Config:    types.JSONText(`{"excludeWeekends":true}`),
	}})

	require.Len(t, days, 5)
	assert.True(t, days[4].Date.Equal(day(2026, 1, 9)))
}

func TestResolvePatternsSpecificityOverride(t *testing.T) {
	// Weekly says available every weekday, a block marks the week off, and an
	// individual override re-opens one date inside the block.
	days := ResolvePatterns([]models.AvailabilityPattern{
		{
			Type:      models.PatternIndividual,
			StartDate: day(2026, 1, 7),
			EndDate:   day(2026, 1, 7),
			Available: true,
			Enabled:   true,
		},
		weeklyPattern(day(2026, 1, 5), day(2026, 1, 9), "[1,2,3,4,5]"),
		{
			Type:      models.PatternBlock,
			StartDate: day(2026, 1, 6),
			EndDate:   day(2026, 1, 8),
			Available: false,
			Enabled:   true,
		},
	})

	byDate := make(map[string]models.AvailabilityDay, len(days))
	for _, d := range days {
		byDate[d.Date.Format("2006-01-02")] = d
	}

	assert.True(t, byDate["2026-01-05"].Available)
	assert.Equal(t, models.PatternWeekly, byDate["2026-01-05"].SourceType)
	assert.False(t, byDate["2026-01-06"].Available)
	assert.Equal(t, models.PatternBlock, byDate["2026-01-06"].SourceType)
	assert.True(t, byDate["2026-01-07"].Available, "individual override wins over the block")
	assert.Equal(t, models.PatternIndividual, byDate["2026-01-07"].SourceType)
	assert.False(t, byDate["2026-01-08"].Available)
	assert.True(t, byDate["2026-01-09"].Available)
}

func TestResolvePatternsSkipsDisabledAndMultiDayIndividual(t *testing.T) {
	days := ResolvePatterns([]models.AvailabilityPattern{
		{
			Type:      models.PatternIndividual,
			StartDate: day(2026, 1, 5),
			EndDate:   day(2026, 1, 6),
			Available: true,
			Enabled:   true,
		},
		func() models.AvailabilityPattern {
			p := weeklyPattern(day(2026, 1, 5), day(2026, 1, 9), "[1,2,3,4,5]")
			p.Enabled = false
			return p
		}(),
	})

	assert.Empty(t, days)
}

func TestTruncateToDayUsesUTCCalendar(t *testing.T) {
	eastern := time.FixedZone("UTC-5", -5*3600)
	late := time.Date(2026, 3, 15, 23, 30, 0, 0, eastern)

	assert.True(t, truncateToDay(late).Equal(day(2026, 3, 16)))
}

type patternReaderStub struct {
	patterns []models.AvailabilityPattern
	err      error
	calls    int
}

func (s *patternReaderStub) ListPatterns(ctx context.Context, preceptorID string) ([]models.AvailabilityPattern, error) {
	s.calls++
	return s.patterns, s.err
}

type cacheStub struct {
	enabled bool
	hit     bool
	stored  map[string]interface{}
}

func (s *cacheStub) Enabled() bool { return s.enabled }

func (s *cacheStub) Get(ctx context.Context, key string, dest interface{}) (bool, error) {
	return s.hit, nil
}

func (s *cacheStub) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	if s.stored == nil {
		s.stored = make(map[string]interface{})
	}
	s.stored[key] = value
	return nil
}

func TestAvailabilityServiceResolveForPreceptorClipsWindow(t *testing.T) {
	reader := &patternReaderStub{patterns: []models.AvailabilityPattern{
		weeklyPattern(day(2026, 1, 5), day(2026, 1, 30), "[1,2,3,4,5]"),
	}}
	svc := NewAvailabilityService(reader, nil, nil, AvailabilityConfig{})

	days, err := svc.ResolveForPreceptor(context.Background(), "prec-1", day(2026, 1, 12), day(2026, 1, 16))
	require.NoError(t, err)
	require.Len(t, days, 5)
	assert.True(t, days[0].Date.Equal(day(2026, 1, 12)))
	assert.True(t, days[4].Date.Equal(day(2026, 1, 16)))
}

func TestAvailabilityServiceResolveForPreceptorValidation(t *testing.T) {
	svc := NewAvailabilityService(&patternReaderStub{}, nil, nil, AvailabilityConfig{})

	_, err := svc.ResolveForPreceptor(context.Background(), "", day(2026, 1, 5), day(2026, 1, 9))
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)

	_, err = svc.ResolveForPreceptor(context.Background(), "prec-1", day(2026, 1, 9), day(2026, 1, 5))
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

func TestAvailabilityServiceResolveForPreceptorCacheHit(t *testing.T) {
	reader := &patternReaderStub{}
	svc := NewAvailabilityService(reader, &cacheStub{enabled: true, hit: true}, nil, AvailabilityConfig{})

	_, err := svc.ResolveForPreceptor(context.Background(), "prec-1", day(2026, 1, 5), day(2026, 1, 9))
	require.NoError(t, err)
	assert.Equal(t, 0, reader.calls, "cache hit should skip the pattern store")
}

func TestAvailabilityServiceResolveForPreceptorCachesResult(t *testing.T) {
	reader := &patternReaderStub{patterns: []models.AvailabilityPattern{
		weeklyPattern(day(2026, 1, 5), day(2026, 1, 9), "[1,3]"),
	}}
	cache := &cacheStub{enabled: true}
	svc := NewAvailabilityService(reader, cache, nil, AvailabilityConfig{})

	days, err := svc.ResolveForPreceptor(context.Background(), "prec-1", day(2026, 1, 5), day(2026, 1, 9))
	require.NoError(t, err)
	require.Len(t, days, 2)
	assert.Equal(t, 1, reader.calls)
	assert.Len(t, cache.stored, 1)
}
