package service

import (
	"fmt"

	"github.com/medrota/clerkship-api/internal/dto"
	"github.com/medrota/clerkship-api/internal/models"
)

// resultBuilder accumulates proposed assignments, shortfalls and violations
// across a run and derives the final result with summary statistics.
type resultBuilder struct {
	assignments []dto.AssignmentProposal
	unmet       []dto.UnmetRequirement
	violations  []dto.ScheduleViolation
	pending     []dto.AssignmentProposal

	requiredTotal int
	assignedTotal int
}

func newResultBuilder() *resultBuilder {
	return &resultBuilder{
		assignments: make([]dto.AssignmentProposal, 0),
		unmet:       make([]dto.UnmetRequirement, 0),
		violations:  make([]dto.ScheduleViolation, 0),
		pending:     make([]dto.AssignmentProposal, 0),
	}
}

func (b *resultBuilder) addAssignments(items []models.ScheduleAssignment, strategy string) {
	for _, a := range items {
		proposal := dto.AssignmentProposal{
			StudentID:   a.StudentID,
			PreceptorID: a.PreceptorID,
			ClerkshipID: a.ClerkshipID,
			Date:        dateKey(a.Date),
			ElectiveID:  a.ElectiveID,
			BlockNumber: a.BlockNumber,
			Fallback:    a.Fallback,
			Strategy:    strategy,
		}
		b.assignments = append(b.assignments, proposal)
		if a.Fallback {
			b.pending = append(b.pending, proposal)
		}
	}
	b.assignedTotal += len(items)
}

func (b *resultBuilder) addRequirement(required int) {
	b.requiredTotal += required
}

func (b *resultBuilder) addUnmet(studentID, clerkshipID string, electiveID *string, required, assigned int, reason string) {
	b.unmet = append(b.unmet, dto.UnmetRequirement{
		StudentID:     studentID,
		ClerkshipID:   clerkshipID,
		ElectiveID:    electiveID,
		RequiredDays:  required,
		AssignedDays:  assigned,
		RemainingDays: required - assigned,
		Reason:        reason,
	})
}

func (b *resultBuilder) addViolation(severity, message, studentID, preceptorID, date string) {
	b.violations = append(b.violations, dto.ScheduleViolation{
		Severity:    severity,
		Message:     message,
		StudentID:   studentID,
		PreceptorID: preceptorID,
		Date:        date,
	})
}

// capacityKey addresses the effective capacity for one preceptor under one
// clerkship; the same preceptor can carry different rules per clerkship.
func capacityKey(preceptorID, clerkshipID string) string {
	return preceptorID + "|" + clerkshipID
}

// validate re-checks the assignment invariants over the full proposed set:
// per (preceptor, date) counts within the daily limit, and one assignment per
// (student, date). Each assignment is held to the limit of its own clerkship.
func (b *resultBuilder) validate(capacities map[string]models.Capacity) {
	perPreceptorDate := make(map[string]int)
	perStudentDate := make(map[string]int)

	for _, a := range b.assignments {
		perPreceptorDate[a.PreceptorID+"|"+a.Date]++
		perStudentDate[a.StudentID+"|"+a.Date]++
	}

	for _, a := range b.assignments {
		key := a.PreceptorID + "|" + a.Date
		limit := models.DefaultMaxStudentsPerDay
		if cap, ok := capacities[capacityKey(a.PreceptorID, a.ClerkshipID)]; ok {
			limit = cap.MaxStudentsPerDay
		}
		if perPreceptorDate[key] > limit {
			b.addViolation(dto.ViolationSeverityError,
				fmt.Sprintf("preceptor %s exceeds daily capacity (%d > %d) on %s", a.PreceptorID, perPreceptorDate[key], limit, a.Date),
				"", a.PreceptorID, a.Date)
			perPreceptorDate[key] = 0 // report each breach once
		}
		if perStudentDate[a.StudentID+"|"+a.Date] > 1 {
			b.addViolation(dto.ViolationSeverityError,
				fmt.Sprintf("student %s double-booked on %s", a.StudentID, a.Date),
				a.StudentID, "", a.Date)
			perStudentDate[a.StudentID+"|"+a.Date] = 0
		}
	}
}

func (b *resultBuilder) hasErrorViolations() bool {
	for _, v := range b.violations {
		if v.Severity == dto.ViolationSeverityError {
			return true
		}
	}
	return false
}

func (b *resultBuilder) build(runID string, dryRun bool) *dto.ScheduleRunResult {
	students := make(map[string]bool)
	preceptors := make(map[string]bool)
	for _, a := range b.assignments {
		students[a.StudentID] = true
		preceptors[a.PreceptorID] = true
	}

	var completion float64
	if b.requiredTotal > 0 {
		completion = float64(b.assignedTotal) / float64(b.requiredTotal)
	}
	var avgPerPreceptor float64
	if len(preceptors) > 0 {
		avgPerPreceptor = float64(len(b.assignments)) / float64(len(preceptors))
	}

	return &dto.ScheduleRunResult{
		RunID:             runID,
		Success:           len(b.unmet) == 0 && !b.hasErrorViolations(),
		DryRun:            dryRun,
		Assignments:       b.assignments,
		UnmetRequirements: b.unmet,
		Violations:        b.violations,
		PendingApprovals:  b.pending,
		Stats: dto.ScheduleRunStats{
			Students:                len(students),
			Preceptors:              len(preceptors),
			Assignments:             len(b.assignments),
			UnmetRequirements:       len(b.unmet),
			CompletionRate:          completion,
			AvgAssignmentsPerPrecep: avgPerPreceptor,
		},
	}
}
