package service

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/jmoiron/sqlx/types"
	"go.uber.org/zap"

	"github.com/medrota/clerkship-api/internal/dto"
	"github.com/medrota/clerkship-api/internal/models"
	"github.com/medrota/clerkship-api/internal/repository"
	appErrors "github.com/medrota/clerkship-api/pkg/errors"
)

type engineStudentReader interface {
	ListByIDs(ctx context.Context, ids []string) ([]models.Student, error)
}

type engineClerkshipReader interface {
	ListByIDs(ctx context.Context, ids []string) ([]models.Clerkship, error)
}

type enginePreceptorReader interface {
	ListByIDs(ctx context.Context, ids []string) ([]models.Preceptor, error)
}

type engineTeamReader interface {
	ListByClerkship(ctx context.Context, clerkshipID string) ([]models.Team, error)
}

type engineCapacityResolver interface {
	Resolve(ctx context.Context, preceptorID, clerkshipID string) (models.Capacity, error)
}

type engineBlackoutReader interface {
	ListBetween(ctx context.Context, from, to time.Time) ([]models.BlackoutDate, error)
}

type engineAssignmentStore interface {
	MapByPreceptorAndDate(ctx context.Context, from, to time.Time) ([]repository.OccupancyRow, error)
	CountByPreceptorYear(ctx context.Context, preceptorID string, year int) (int, error)
	ListStudentDates(ctx context.Context, studentIDs []string, from, to time.Time) ([]repository.StudentDateRow, error)
	BulkCreateWithTx(ctx context.Context, tx *sqlx.Tx, assignments []models.ScheduleAssignment) error
	DeleteByRunWithTx(ctx context.Context, tx *sqlx.Tx, runID string) error
	List(ctx context.Context, filter models.AssignmentFilter) ([]models.ScheduleAssignment, int, error)
}

type engineRunStore interface {
	CreateWithTx(ctx context.Context, tx *sqlx.Tx, run *models.SchedulingRun) error
	FindByID(ctx context.Context, id string) (*models.SchedulingRun, error)
	List(ctx context.Context, filter models.RunFilter) ([]models.SchedulingRun, int, error)
	DeleteWithTx(ctx context.Context, tx *sqlx.Tx, id string) error
}

type engineAvailabilityResolver interface {
	ResolveForPreceptor(ctx context.Context, preceptorID string, from, to time.Time) ([]models.AvailabilityDay, error)
}

type engineMetrics interface {
	ObserveScheduleRun(status string, duration time.Duration)
	RecordAssignments(strategy string, count int)
	RecordUnmetDays(count int)
}

type txProvider interface {
	BeginTxx(ctx context.Context, opts *sql.TxOptions) (*sqlx.Tx, error)
}

// EngineConfig bounds engine behaviour.
type EngineConfig struct {
	MaxWindowDays         int
	DefaultFallbackPasses int
}

// ScheduleEngineService orchestrates scheduling runs: it loads the inputs,
// walks students in request order through the assignment strategies, resolves
// fallbacks, validates the proposed set and persists accepted runs in a single
// transaction.
type ScheduleEngineService struct {
	students     engineStudentReader
	clerkships   engineClerkshipReader
	preceptors   enginePreceptorReader
	teams        engineTeamReader
	capacities   engineCapacityResolver
	blackouts    engineBlackoutReader
	assignments  engineAssignmentStore
	runs         engineRunStore
	availability engineAvailabilityResolver
	tx           txProvider
	metrics      engineMetrics
	validator    *validator.Validate
	logger       *zap.Logger
	strategies   []assignmentStrategy
	cfg          EngineConfig
}

// NewScheduleEngineService wires engine dependencies.
func NewScheduleEngineService(
	students engineStudentReader,
	clerkships engineClerkshipReader,
	preceptors enginePreceptorReader,
	teams engineTeamReader,
	capacities engineCapacityResolver,
	blackouts engineBlackoutReader,
	assignments engineAssignmentStore,
	runs engineRunStore,
	availability engineAvailabilityResolver,
	tx txProvider,
	metrics engineMetrics,
	validate *validator.Validate,
	logger *zap.Logger,
	cfg EngineConfig,
) *ScheduleEngineService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.MaxWindowDays <= 0 {
		cfg.MaxWindowDays = 366
	}
	if cfg.DefaultFallbackPasses <= 0 {
		cfg.DefaultFallbackPasses = 3
	}
	return &ScheduleEngineService{
		students:     students,
		clerkships:   clerkships,
		preceptors:   preceptors,
		teams:        teams,
		capacities:   capacities,
		blackouts:    blackouts,
		assignments:  assignments,
		runs:         runs,
		availability: availability,
		tx:           tx,
		metrics:      metrics,
		validator:    validate,
		logger:       logger,
		strategies:   defaultStrategies(),
		cfg:          cfg,
	}
}

// clerkshipPlan carries per-clerkship scheduling inputs shared by all students
// within one run.
type clerkshipPlan struct {
	clerkship  models.Clerkship
	teams      []models.Team
	candidates []*candidatePreceptor
	capacities map[string]models.Capacity
}

// Schedule runs the engine for one request. The returned result is complete
// for both persisted and dry runs; only persistence differs.
func (s *ScheduleEngineService) Schedule(ctx context.Context, req dto.ScheduleRunRequest) (*dto.ScheduleRunResult, error) {
	started := time.Now()

	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid schedule run payload")
	}
	from, to, err := parseWindow(req.StartDate, req.EndDate, s.cfg.MaxWindowDays)
	if err != nil {
		return nil, err
	}

	students, missingStudents, err := s.loadStudents(ctx, req.StudentIDs)
	if err != nil {
		return nil, err
	}
	clerkships, missingClerkships, err := s.loadClerkships(ctx, req.ClerkshipIDs)
	if err != nil {
		return nil, err
	}

	dates, err := s.candidateDates(ctx, from, to)
	if err != nil {
		return nil, err
	}

	plans := make([]*clerkshipPlan, 0, len(clerkships))
	for _, c := range clerkships {
		plan, planErr := s.buildPlan(ctx, c, from, to, req.EnableTeamFormation)
		if planErr != nil {
			return nil, planErr
		}
		plans = append(plans, plan)
	}

	state, err := s.seedState(ctx, plans, req.StudentIDs, from, to)
	if err != nil {
		return nil, err
	}

	builder := newResultBuilder()
	for _, id := range missingClerkships {
		builder.addViolation(dto.ViolationSeverityWarning, fmt.Sprintf("clerkship %s not found, skipped", id), "", "", "")
	}
	for _, id := range missingStudents {
		builder.addViolation(dto.ViolationSeverityWarning, fmt.Sprintf("student %s not found, skipped", id), id, "", "")
	}

	fallbackPasses := req.MaxRetriesPerStudent
	if fallbackPasses <= 0 {
		fallbackPasses = s.cfg.DefaultFallbackPasses
	}

	for _, student := range students {
		for _, plan := range plans {
			s.scheduleRequirements(student, plan, dates, state, builder, req.EnableFallbacks, fallbackPasses)
		}
	}

	allCapacities := make(map[string]models.Capacity)
	for _, plan := range plans {
		for id, capacity := range plan.capacities {
			allCapacities[capacityKey(id, plan.clerkship.ID)] = capacity
		}
	}
	builder.validate(allCapacities)

	runID := uuid.NewString()
	result := builder.build(runID, req.DryRun)
	status := runStatus(result)

	if !req.DryRun {
		if persistErr := s.persistRun(ctx, runID, req, from, to, status, result, builder); persistErr != nil {
			return result, persistErr
		}
	}

	s.observeRun(status, started)
	s.logger.Info("scheduling run finished",
		zap.String("run_id", runID),
		zap.String("status", string(status)),
		zap.Bool("dry_run", req.DryRun),
		zap.Int("assignments", len(result.Assignments)),
		zap.Int("unmet", len(result.UnmetRequirements)),
	)
	return result, nil
}

// scheduleRequirements handles one (student, clerkship) pair: elective pools
// first in declaration order, then the general pool for the remaining days.
func (s *ScheduleEngineService) scheduleRequirements(
	student models.Student,
	plan *clerkshipPlan,
	dates []time.Time,
	state *runState,
	builder *resultBuilder,
	enableFallbacks bool,
	fallbackPasses int,
) {
	type requirement struct {
		elective *models.Elective
		days     int
	}

	var requirements []requirement
	for i := range plan.clerkship.Electives {
		e := &plan.clerkship.Electives[i]
		if e.MinimumDays > 0 {
			requirements = append(requirements, requirement{elective: e, days: e.MinimumDays})
		}
	}
	if general := plan.clerkship.NonElectiveDays(); general > 0 {
		requirements = append(requirements, requirement{days: general})
	}

	strategy := selectStrategy(s.strategies, plan.clerkship)

	for _, requirement := range requirements {
		sctx := &scheduleContext{
			student:      student,
			clerkship:    plan.clerkship,
			elective:     requirement.elective,
			requiredDays: requirement.days,
			dates:        dates,
			candidates:   restrictToElective(plan.candidates, requirement.elective),
			teams:        plan.teams,
			state:        state,
		}

		outcome := strategy.Generate(sctx)
		builder.addRequirement(requirement.days)
		builder.addAssignments(outcome.Assignments, strategy.Name())
		s.recordAssignments(strategy.Name(), len(outcome.Assignments))

		assigned := len(outcome.Assignments)
		if assigned < requirement.days && enableFallbacks && plan.clerkship.AllowFallbacks {
			rescued := resolveFallback(sctx, requirement.days-assigned, fallbackPasses)
			builder.addAssignments(rescued, strategy.Name())
			s.recordAssignments(strategy.Name(), len(rescued))
			assigned += len(rescued)
		}

		if assigned < requirement.days {
			reason := outcome.Reason
			if reason == "" {
				reason = "insufficient preceptor capacity in the window"
			}
			builder.addUnmet(student.ID, plan.clerkship.ID, sctx.electiveID(), requirement.days, assigned, reason)
			s.recordUnmetDays(requirement.days - assigned)
		}
	}
}

// buildPlan resolves the clerkship's teams, candidate preceptors, effective
// capacities and per-date availability for the run window. With team
// formation disabled, memberships still define the candidate pool but team
// ordering constraints are ignored.
func (s *ScheduleEngineService) buildPlan(ctx context.Context, clerkship models.Clerkship, from, to time.Time, enableTeams bool) (*clerkshipPlan, error) {
	teams, err := s.teams.ListByClerkship(ctx, clerkship.ID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load clerkship teams")
	}

	type membership struct {
		teamID       string
		priority     int
		fallbackOnly bool
	}
	memberships := make(map[string]membership)
	var preceptorIDs []string
	for _, team := range teams {
		for _, m := range team.Members {
			if _, seen := memberships[m.PreceptorID]; seen {
				continue
			}
			memberships[m.PreceptorID] = membership{teamID: team.ID, priority: m.Priority, fallbackOnly: m.FallbackOnly}
			preceptorIDs = append(preceptorIDs, m.PreceptorID)
		}
	}
	if len(preceptorIDs) == 0 {
		return &clerkshipPlan{clerkship: clerkship, capacities: map[string]models.Capacity{}}, nil
	}

	preceptors, err := s.preceptors.ListByIDs(ctx, preceptorIDs)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load preceptors")
	}

	capacities := make(map[string]models.Capacity, len(preceptors))
	candidates := make([]*candidatePreceptor, 0, len(preceptors))
	for _, p := range preceptors {
		capacity, capErr := s.capacities.Resolve(ctx, p.ID, clerkship.ID)
		if capErr != nil {
			return nil, appErrors.Wrap(capErr, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to resolve preceptor capacity")
		}
		capacities[p.ID] = capacity

		days, availErr := s.availability.ResolveForPreceptor(ctx, p.ID, from, to)
		if availErr != nil {
			return nil, availErr
		}
		available := make(map[string]bool, len(days))
		sites := make(map[string]string, len(days))
		for _, day := range days {
			key := dateKey(day.Date)
			available[key] = day.Available
			sites[key] = day.SiteID
		}

		m := memberships[p.ID]
		candidates = append(candidates, &candidatePreceptor{
			preceptor:    p,
			capacity:     capacity,
			available:    available,
			sites:        sites,
			priority:     m.priority,
			fallbackOnly: m.fallbackOnly || p.GlobalFallbackOnly,
			teamID:       m.teamID,
		})
	}

	plan := &clerkshipPlan{clerkship: clerkship, candidates: candidates, capacities: capacities}
	if enableTeams {
		plan.teams = teams
	}
	return plan, nil
}

// seedState loads existing occupancy so this run's decisions respect
// assignments persisted by earlier runs.
func (s *ScheduleEngineService) seedState(ctx context.Context, plans []*clerkshipPlan, studentIDs []string, from, to time.Time) (*runState, error) {
	state := newRunState()

	occupancy, err := s.assignments.MapByPreceptorAndDate(ctx, from, to)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load preceptor occupancy")
	}
	for _, row := range occupancy {
		state.seedOccupancy(row.PreceptorID, row.Date, row.Count)
	}

	seeded := make(map[string]bool)
	for _, plan := range plans {
		for _, c := range plan.candidates {
			if seeded[c.preceptor.ID] {
				continue
			}
			seeded[c.preceptor.ID] = true
			count, countErr := s.assignments.CountByPreceptorYear(ctx, c.preceptor.ID, from.Year())
			if countErr != nil {
				return nil, appErrors.Wrap(countErr, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load preceptor yearly totals")
			}
			state.seedYearly(c.preceptor.ID, count)
		}
	}

	studentDates, err := s.assignments.ListStudentDates(ctx, studentIDs, from, to)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load student occupancy")
	}
	for _, row := range studentDates {
		state.seedStudentDate(row.StudentID, row.Date)
	}

	return state, nil
}

func (s *ScheduleEngineService) candidateDates(ctx context.Context, from, to time.Time) ([]time.Time, error) {
	blackouts, err := s.blackouts.ListBetween(ctx, from, to)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load blackout dates")
	}
	blocked := make(map[string]bool, len(blackouts))
	for _, b := range blackouts {
		blocked[dateKey(truncateToDay(b.Date))] = true
	}

	var dates []time.Time
	for d := from; !d.After(to); d = d.AddDate(0, 0, 1) {
		if blocked[dateKey(d)] {
			continue
		}
		dates = append(dates, d)
	}
	return dates, nil
}

func (s *ScheduleEngineService) loadStudents(ctx context.Context, ids []string) ([]models.Student, []string, error) {
	students, err := s.students.ListByIDs(ctx, ids)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load students")
	}
	found := make(map[string]bool, len(students))
	for _, st := range students {
		found[st.ID] = true
	}
	var missing []string
	for _, id := range ids {
		if !found[id] {
			missing = append(missing, id)
		}
	}
	return students, missing, nil
}

func (s *ScheduleEngineService) loadClerkships(ctx context.Context, ids []string) ([]models.Clerkship, []string, error) {
	clerkships, err := s.clerkships.ListByIDs(ctx, ids)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load clerkships")
	}
	found := make(map[string]bool, len(clerkships))
	for _, c := range clerkships {
		found[c.ID] = true
	}
	var missing []string
	for _, id := range ids {
		if !found[id] {
			missing = append(missing, id)
		}
	}
	return clerkships, missing, nil
}

// persistRun writes the run row and its assignments in one transaction.
func (s *ScheduleEngineService) persistRun(ctx context.Context, runID string, req dto.ScheduleRunRequest, from, to time.Time, status models.SchedulingRunStatus, result *dto.ScheduleRunResult, builder *resultBuilder) error {
	if s.tx == nil {
		return appErrors.Clone(appErrors.ErrInternal, "transaction provider missing")
	}

	meta, err := json.Marshal(map[string]any{
		"stats":             result.Stats,
		"unmetRequirements": result.UnmetRequirements,
		"violations":        result.Violations,
		"request": map[string]any{
			"studentIds":          req.StudentIDs,
			"clerkshipIds":        req.ClerkshipIDs,
			"enableTeamFormation": req.EnableTeamFormation,
			"enableFallbacks":     req.EnableFallbacks,
		},
	})
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to encode run metadata")
	}

	tx, err := s.tx.BeginTxx(ctx, nil)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to begin transaction")
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	run := &models.SchedulingRun{
		ID:        runID,
		Status:    status,
		StartDate: from,
		EndDate:   to,
		DryRun:    false,
		Meta:      types.JSONText(meta),
	}
	if req.CreatedBy != "" {
		run.CreatedBy = &req.CreatedBy
	}
	if err = s.runs.CreateWithTx(ctx, tx, run); err != nil {
		err = appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create scheduling run")
		return err
	}

	records := make([]models.ScheduleAssignment, 0, len(result.Assignments))
	for _, a := range result.Assignments {
		date, parseErr := time.Parse("2006-01-02", a.Date)
		if parseErr != nil {
			err = appErrors.Wrap(parseErr, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to decode assignment date")
			return err
		}
		records = append(records, models.ScheduleAssignment{
			RunID:       runID,
			StudentID:   a.StudentID,
			PreceptorID: a.PreceptorID,
			ClerkshipID: a.ClerkshipID,
			Date:        date,
			ElectiveID:  a.ElectiveID,
			BlockNumber: a.BlockNumber,
			Fallback:    a.Fallback,
		})
	}
	if err = s.assignments.BulkCreateWithTx(ctx, tx, records); err != nil {
		err = appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to persist assignments")
		return err
	}

	if err = tx.Commit(); err != nil {
		err = appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to commit scheduling run")
		return err
	}
	return nil
}

// GetRun returns a persisted run by id.
func (s *ScheduleEngineService) GetRun(ctx context.Context, id string) (*models.SchedulingRun, error) {
	if id == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "run id is required")
	}
	run, err := s.runs.FindByID(ctx, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "scheduling run not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load scheduling run")
	}
	return run, nil
}

// ListRuns returns persisted runs matching the filter with the total count.
func (s *ScheduleEngineService) ListRuns(ctx context.Context, filter models.RunFilter) ([]models.SchedulingRun, int, error) {
	runs, total, err := s.runs.List(ctx, filter)
	if err != nil {
		return nil, 0, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list scheduling runs")
	}
	return runs, total, nil
}

// ListRunAssignments returns the assignments a run produced.
func (s *ScheduleEngineService) ListRunAssignments(ctx context.Context, runID string, filter models.AssignmentFilter) ([]models.ScheduleAssignment, int, error) {
	if runID == "" {
		return nil, 0, appErrors.Clone(appErrors.ErrValidation, "run id is required")
	}
	filter.RunID = runID
	assignments, total, err := s.assignments.List(ctx, filter)
	if err != nil {
		return nil, 0, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list run assignments")
	}
	return assignments, total, nil
}

// DeleteRun removes a run and its assignments so the window can be
// regenerated. Both deletes share one transaction.
func (s *ScheduleEngineService) DeleteRun(ctx context.Context, id string) error {
	if id == "" {
		return appErrors.Clone(appErrors.ErrValidation, "run id is required")
	}
	if _, err := s.GetRun(ctx, id); err != nil {
		return err
	}
	if s.tx == nil {
		return appErrors.Clone(appErrors.ErrInternal, "transaction provider missing")
	}

	tx, err := s.tx.BeginTxx(ctx, nil)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to begin transaction")
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	if err = s.assignments.DeleteByRunWithTx(ctx, tx, id); err != nil {
		err = appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete run assignments")
		return err
	}
	if err = s.runs.DeleteWithTx(ctx, tx, id); err != nil {
		err = appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete scheduling run")
		return err
	}
	if err = tx.Commit(); err != nil {
		err = appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to commit run deletion")
		return err
	}
	return nil
}

// restrictToElective narrows the candidate pool to the elective's allowed
// preceptors or sites. An elective with no restrictions uses the full pool.
func restrictToElective(candidates []*candidatePreceptor, elective *models.Elective) []*candidatePreceptor {
	if elective == nil || (len(elective.PreceptorIDs) == 0 && len(elective.SiteIDs) == 0) {
		return candidates
	}

	allowedPreceptors := make(map[string]bool, len(elective.PreceptorIDs))
	for _, id := range elective.PreceptorIDs {
		allowedPreceptors[id] = true
	}
	allowedSites := make(map[string]bool, len(elective.SiteIDs))
	for _, id := range elective.SiteIDs {
		allowedSites[id] = true
	}

	var filtered []*candidatePreceptor
	for _, c := range candidates {
		if allowedPreceptors[c.preceptor.ID] {
			filtered = append(filtered, c)
			continue
		}
		if len(allowedSites) > 0 {
			for _, site := range c.preceptor.SiteIDs {
				if allowedSites[site] {
					filtered = append(filtered, c)
					break
				}
			}
		}
	}
	return filtered
}

func parseWindow(startDate, endDate string, maxDays int) (time.Time, time.Time, error) {
	from, err := time.Parse("2006-01-02", startDate)
	if err != nil {
		return time.Time{}, time.Time{}, appErrors.Clone(appErrors.ErrValidation, "startDate must be YYYY-MM-DD")
	}
	to, err := time.Parse("2006-01-02", endDate)
	if err != nil {
		return time.Time{}, time.Time{}, appErrors.Clone(appErrors.ErrValidation, "endDate must be YYYY-MM-DD")
	}
	from = truncateToDay(from)
	to = truncateToDay(to)
	if to.Before(from) {
		return time.Time{}, time.Time{}, appErrors.Clone(appErrors.ErrValidation, "endDate must not precede startDate")
	}
	if days := int(to.Sub(from).Hours()/24) + 1; days > maxDays {
		return time.Time{}, time.Time{}, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("window exceeds the %d day maximum", maxDays))
	}
	return from, to, nil
}

func runStatus(result *dto.ScheduleRunResult) models.SchedulingRunStatus {
	switch {
	case result.Success:
		return models.RunStatusCompleted
	case len(result.Assignments) > 0:
		return models.RunStatusWithShortfalls
	default:
		return models.RunStatusFailed
	}
}

func (s *ScheduleEngineService) observeRun(status models.SchedulingRunStatus, started time.Time) {
	if s.metrics == nil {
		return
	}
	s.metrics.ObserveScheduleRun(string(status), time.Since(started))
}

func (s *ScheduleEngineService) recordAssignments(strategy string, count int) {
	if s.metrics == nil || count == 0 {
		return
	}
	s.metrics.RecordAssignments(strategy, count)
}

func (s *ScheduleEngineService) recordUnmetDays(count int) {
	if s.metrics == nil || count == 0 {
		return
	}
	s.metrics.RecordUnmetDays(count)
}
