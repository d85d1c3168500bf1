package dto

// ApplyRequest is a student's application to a job
type ApplyRequest struct {
	JobID int64 `json:"jobId" binding:"required,min=1"`
}

// UpdateApplicationStatusRequest moves an application through the pipeline
type UpdateApplicationStatusRequest struct {
	Status  string `json:"status" binding:"required,oneof=applied shortlisted interviewed selected rejected"`
	Remarks string `json:"remarks" binding:"max=500"`
}

// BulkStatusRequest applies one status change to many applications
type BulkStatusRequest struct {
	ApplicationIDs []int64 `json:"applicationIds" binding:"required,min=1,dive,min=1"`
	Status         string  `json:"status" binding:"required,oneof=shortlisted interviewed selected rejected"`
	Remarks        string  `json:"remarks" binding:"max=500"`
}

// BulkStatusResult reports per-application outcomes of a bulk update
type BulkStatusResult struct {
	Updated []int64          `json:"updated"`
	Failed  map[int64]string `json:"failed,omitempty"`
}
