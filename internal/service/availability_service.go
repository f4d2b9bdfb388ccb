package service

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"time"

	"go.uber.org/zap"

	"github.com/medrota/clerkship-api/internal/models"
	appErrors "github.com/medrota/clerkship-api/pkg/errors"
)

type availabilityPatternReader interface {
	ListPatterns(ctx context.Context, preceptorID string) ([]models.AvailabilityPattern, error)
}

type availabilityCache interface {
	Enabled() bool
	Get(ctx context.Context, key string, dest interface{}) (bool, error)
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
}

// AvailabilityConfig tunes resolver behaviour.
type AvailabilityConfig struct {
	CacheTTL time.Duration
}

// AvailabilityService resolves recurring patterns into concrete per-date availability.
type AvailabilityService struct {
	patterns availabilityPatternReader
	cache    availabilityCache
	logger   *zap.Logger
	cfg      AvailabilityConfig
}

// NewAvailabilityService wires resolver dependencies.
func NewAvailabilityService(patterns availabilityPatternReader, cache availabilityCache, logger *zap.Logger, cfg AvailabilityConfig) *AvailabilityService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.CacheTTL <= 0 {
		cfg.CacheTTL = 15 * time.Minute
	}
	return &AvailabilityService{patterns: patterns, cache: cache, logger: logger, cfg: cfg}
}

// ResolveForPreceptor loads a preceptor's patterns and returns the resolved days
// clipped to the inclusive [from, to] window. Results are cached per window.
func (s *AvailabilityService) ResolveForPreceptor(ctx context.Context, preceptorID string, from, to time.Time) ([]models.AvailabilityDay, error) {
	if preceptorID == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "preceptor id is required")
	}
	from = truncateToDay(from)
	to = truncateToDay(to)
	if to.Before(from) {
		return nil, appErrors.Clone(appErrors.ErrValidation, "end date must not precede start date")
	}

	cacheKey := fmt.Sprintf("availability:%s:%s:%s", preceptorID, dateKey(from), dateKey(to))
	if s.cache != nil && s.cache.Enabled() {
		var cached []models.AvailabilityDay
		if hit, err := s.cache.Get(ctx, cacheKey, &cached); err == nil && hit {
			return cached, nil
		}
	}

	patterns, err := s.patterns.ListPatterns(ctx, preceptorID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load availability patterns")
	}

	days := ResolvePatterns(patterns)
	clipped := make([]models.AvailabilityDay, 0, len(days))
	for _, day := range days {
		if day.Date.Before(from) || day.Date.After(to) {
			continue
		}
		clipped = append(clipped, day)
	}

	if s.cache != nil && s.cache.Enabled() {
		if err := s.cache.Set(ctx, cacheKey, clipped, s.cfg.CacheTTL); err != nil {
			s.logger.Warn("failed to cache resolved availability", zap.String("preceptor_id", preceptorID), zap.Error(err))
		}
	}

	return clipped, nil
}

// ResolvePatterns turns recurring rules into concrete per-date availability.
// Patterns are applied in ascending specificity so higher-specificity writes
// overwrite lower ones on overlapping dates; ties resolve by load order.
// All date arithmetic uses UTC calendar semantics.
func ResolvePatterns(patterns []models.AvailabilityPattern) []models.AvailabilityDay {
	sorted := make([]models.AvailabilityPattern, 0, len(patterns))
	for _, p := range patterns {
		if p.Enabled {
			sorted = append(sorted, p)
		}
	}
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Type.Specificity() < sorted[j].Type.Specificity()
	})

	resolved := make(map[string]models.AvailabilityDay)
	for _, pattern := range sorted {
		for _, date := range expandPattern(pattern) {
			resolved[dateKey(date)] = models.AvailabilityDay{
				Date:       date,
				SiteID:     pattern.SiteID,
				Available:  pattern.Available,
				SourceType: pattern.Type,
			}
		}
	}

	days := make([]models.AvailabilityDay, 0, len(resolved))
	for _, day := range resolved {
		days = append(days, day)
	}
	sort.Slice(days, func(i, j int) bool { return days[i].Date.Before(days[j].Date) })
	return days
}

func expandPattern(pattern models.AvailabilityPattern) []time.Time {
	start := truncateToDay(pattern.StartDate)
	end := truncateToDay(pattern.EndDate)
	if end.Before(start) {
		return nil
	}

	var cfg models.PatternConfig
	if len(pattern.Config) > 0 {
		if err := json.Unmarshal(pattern.Config, &cfg); err != nil {
			return nil
		}
	}

	switch pattern.Type {
	case models.PatternWeekly:
		return expandWeekly(start, end, cfg.DaysOfWeek)
	case models.PatternMonthly:
		return expandMonthly(start, end, cfg)
	case models.PatternBlock:
		return expandBlock(start, end, cfg.ExcludeWeekends)
	case models.PatternIndividual:
		// An individual override covers exactly one date.
		if !start.Equal(end) {
			return nil
		}
		return []time.Time{start}
	default:
		return nil
	}
}

func expandWeekly(start, end time.Time, daysOfWeek []int) []time.Time {
	if len(daysOfWeek) == 0 {
		return nil
	}
	wanted := make(map[int]bool, len(daysOfWeek))
	for _, d := range daysOfWeek {
		if d >= 1 && d <= 7 {
			wanted[d] = true
		}
	}
	var dates []time.Time
	for d := start; !d.After(end); d = d.AddDate(0, 0, 1) {
		if wanted[isoWeekday(d)] {
			dates = append(dates, d)
		}
	}
	return dates
}

func expandMonthly(start, end time.Time, cfg models.PatternConfig) []time.Time {
	var dates []time.Time
	for month := time.Date(start.Year(), start.Month(), 1, 0, 0, 0, 0, time.UTC); !month.After(end); month = month.AddDate(0, 1, 0) {
		for _, d := range monthlyDates(month, cfg) {
			if d.Before(start) || d.After(end) {
				continue
			}
			dates = append(dates, d)
		}
	}
	return dates
}

// monthlyDates selects the configured days within one month, clipped to days
// that exist in that month.
func monthlyDates(monthStart time.Time, cfg models.PatternConfig) []time.Time {
	daysInMonth := monthStart.AddDate(0, 1, -1).Day()

	switch cfg.Mode {
	case models.MonthlyFirstDays:
		count := cfg.Count
		if count > daysInMonth {
			count = daysInMonth
		}
		var dates []time.Time
		for day := 1; day <= count; day++ {
			dates = append(dates, monthStart.AddDate(0, 0, day-1))
		}
		return dates
	case models.MonthlyLastDays:
		count := cfg.Count
		if count > daysInMonth {
			count = daysInMonth
		}
		var dates []time.Time
		for day := daysInMonth - count + 1; day <= daysInMonth; day++ {
			dates = append(dates, monthStart.AddDate(0, 0, day-1))
		}
		return dates
	case models.MonthlyFirstBusinessWeek:
		return businessDays(monthStart, daysInMonth, false)
	case models.MonthlyLastBusinessWeek:
		return businessDays(monthStart, daysInMonth, true)
	case models.MonthlySpecificDays:
		var dates []time.Time
		for _, day := range cfg.DaysOfMonth {
			if day < 1 || day > daysInMonth {
				continue
			}
			dates = append(dates, monthStart.AddDate(0, 0, day-1))
		}
		sort.Slice(dates, func(i, j int) bool { return dates[i].Before(dates[j]) })
		return dates
	default:
		return nil
	}
}

// businessDays returns the first or last five weekdays of the month.
func businessDays(monthStart time.Time, daysInMonth int, fromEnd bool) []time.Time {
	var weekdays []time.Time
	for day := 1; day <= daysInMonth; day++ {
		d := monthStart.AddDate(0, 0, day-1)
		if wd := d.Weekday(); wd != time.Saturday && wd != time.Sunday {
			weekdays = append(weekdays, d)
		}
	}
	if len(weekdays) <= 5 {
		return weekdays
	}
	if fromEnd {
		return weekdays[len(weekdays)-5:]
	}
	return weekdays[:5]
}

func expandBlock(start, end time.Time, excludeWeekends bool) []time.Time {
	var dates []time.Time
	for d := start; !d.After(end); d = d.AddDate(0, 0, 1) {
		if excludeWeekends {
			if wd := d.Weekday(); wd == time.Saturday || wd == time.Sunday {
				continue
			}
		}
		dates = append(dates, d)
	}
	return dates
}

// isoWeekday maps time.Weekday onto 1=Monday..7=Sunday.
func isoWeekday(d time.Time) int {
	wd := int(d.Weekday())
	if wd == 0 {
		return 7
	}
	return wd
}

// truncateToDay normalises a timestamp to UTC midnight using calendar fields,
// so month and DST boundaries never shift the date.
func truncateToDay(t time.Time) time.Time {
	u := t.UTC()
	return time.Date(u.Year(), u.Month(), u.Day(), 0, 0, 0, 0, time.UTC)
}

func dateKey(t time.Time) string {
	return t.Format("2006-01-02")
}
