package dto

// ExportRequest asks for an asynchronous roster export. At least one filter
// should be supplied; an unfiltered export renders the full roster.
type ExportRequest struct {
	RunID       *string `json:"runId,omitempty"`
	ClerkshipID *string `json:"clerkshipId,omitempty"`
	PreceptorID *string `json:"preceptorId,omitempty"`
	Format      string  `json:"format" validate:"required,oneof=csv pdf"`
}

// ExportJobResponse acknowledges job creation.
type ExportJobResponse struct {
	ID     string `json:"id"`
	Status string `json:"status"`
}

// ExportStatusResponse reports job progress to pollers.
type ExportStatusResponse struct {
	ID        string  `json:"id"`
	Status    string  `json:"status"`
	ResultURL *string `json:"resultUrl,omitempty"`
	Error     *string `json:"error,omitempty"`
}
