package dto

// ScheduleRunRequest instructs the engine to schedule the given students
// across the given clerkships inside the date window. Dates are inclusive
// calendar days in YYYY-MM-DD form.
type ScheduleRunRequest struct {
	StudentIDs           []string `json:"studentIds" validate:"required,min=1,dive,required"`
	ClerkshipIDs         []string `json:"clerkshipIds" validate:"required,min=1,dive,required"`
	StartDate            string   `json:"startDate" validate:"required,datetime=2006-01-02"`
	EndDate              string   `json:"endDate" validate:"required,datetime=2006-01-02"`
	EnableTeamFormation  bool     `json:"enableTeamFormation"`
	EnableFallbacks      bool     `json:"enableFallbacks"`
	MaxRetriesPerStudent int      `json:"maxRetriesPerStudent" validate:"omitempty,min=0,max=10"`
	DryRun               bool     `json:"dryRun"`
	CreatedBy            string   `json:"-"`
}

// AssignmentProposal is one proposed student-preceptor-date binding.
type AssignmentProposal struct {
	StudentID   string  `json:"studentId"`
	PreceptorID string  `json:"preceptorId"`
	ClerkshipID string  `json:"clerkshipId"`
	Date        string  `json:"date"`
	ElectiveID  *string `json:"electiveId,omitempty"`
	BlockNumber *int    `json:"blockNumber,omitempty"`
	Fallback    bool    `json:"fallback"`
	Strategy    string  `json:"strategy"`
}

// UnmetRequirement reports a requirement the engine could not fully satisfy.
type UnmetRequirement struct {
	StudentID     string  `json:"studentId"`
	ClerkshipID   string  `json:"clerkshipId"`
	ElectiveID    *string `json:"electiveId,omitempty"`
	RequiredDays  int     `json:"requiredDays"`
	AssignedDays  int     `json:"assignedDays"`
	RemainingDays int     `json:"remainingDays"`
	Reason        string  `json:"reason"`
}

// Violation severities.
const (
	ViolationSeverityError   = "error"
	ViolationSeverityWarning = "warning"
)

// ScheduleViolation is a capacity or conflict breach found during validation.
type ScheduleViolation struct {
	Severity    string `json:"severity"`
	Message     string `json:"message"`
	StudentID   string `json:"studentId,omitempty"`
	PreceptorID string `json:"preceptorId,omitempty"`
	Date        string `json:"date,omitempty"`
}

// ScheduleRunStats summarises a completed run.
type ScheduleRunStats struct {
	Students                int     `json:"students"`
	Preceptors              int     `json:"preceptors"`
	Assignments             int     `json:"assignments"`
	UnmetRequirements       int     `json:"unmetRequirements"`
	CompletionRate          float64 `json:"completionRate"`
	AvgAssignmentsPerPrecep float64 `json:"avgAssignmentsPerPreceptor"`
}

// ScheduleRunResult is the engine's full response shape; dry runs return the
// same shape without persisting anything.
type ScheduleRunResult struct {
	RunID             string               `json:"runId,omitempty"`
	Success           bool                 `json:"success"`
	DryRun            bool                 `json:"dryRun"`
	Assignments       []AssignmentProposal `json:"assignments"`
	UnmetRequirements []UnmetRequirement   `json:"unmetRequirements"`
	Violations        []ScheduleViolation  `json:"violations"`
	PendingApprovals  []AssignmentProposal `json:"pendingApprovals"`
	Stats             ScheduleRunStats     `json:"stats"`
}

// RunListQuery filters persisted scheduling runs.
type RunListQuery struct {
	Status string `form:"status"`
	Page   int    `form:"page"`
	Limit  int    `form:"limit"`
}

// AvailabilityPreviewQuery bounds the resolver preview window.
type AvailabilityPreviewQuery struct {
	Start string `form:"start" validate:"required,datetime=2006-01-02"`
	End   string `form:"end" validate:"required,datetime=2006-01-02"`
}
