package models

import "time"

// ApplicationStatus is a step in the hiring pipeline.
type ApplicationStatus string

const (
	ApplicationApplied     ApplicationStatus = "applied"
	ApplicationShortlisted ApplicationStatus = "shortlisted"
	ApplicationInterviewed ApplicationStatus = "interviewed"
	ApplicationSelected    ApplicationStatus = "selected"
	ApplicationRejected    ApplicationStatus = "rejected"
)

var applicationTransitions = map[ApplicationStatus][]ApplicationStatus{
	ApplicationApplied:     {ApplicationShortlisted, ApplicationRejected},
	ApplicationShortlisted: {ApplicationInterviewed, ApplicationRejected},
	ApplicationInterviewed: {ApplicationSelected, ApplicationRejected},
}

// Valid reports whether s is a known status.
func (s ApplicationStatus) Valid() bool {
	switch s {
	case ApplicationApplied, ApplicationShortlisted, ApplicationInterviewed, ApplicationSelected, ApplicationRejected:
		return true
	}
	return false
}

// Terminal reports whether no further transition is possible.
func (s ApplicationStatus) Terminal() bool {
	return s == ApplicationSelected || s == ApplicationRejected
}

// CanTransitionTo reports whether the pipeline allows moving from s to next.
func (s ApplicationStatus) CanTransitionTo(next ApplicationStatus) bool {
	for _, allowed := range applicationTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// Application links a student to a job based on the 'applications' table
type Application struct {
	ID          int64             `json:"id" db:"id" example:"1"`
	StudentID   int64             `json:"studentId" db:"student_id" example:"1"`
	JobID       int64             `json:"jobId" db:"job_id" example:"1"`
	Status      ApplicationStatus `json:"status" db:"status" example:"applied"`
	Remarks     *string           `json:"remarks,omitempty" db:"remarks"`
	AppliedAt   time.Time         `json:"appliedAt" db:"applied_at"`
	UpdatedAt   time.Time         `json:"updatedAt" db:"updated_at"`
	StudentName string            `json:"studentName" db:"student_name"`
	RollNumber  string            `json:"rollNumber" db:"roll_number"`
	Department  string            `json:"department" db:"department"`
	CGPA        float64           `json:"cgpa" db:"cgpa"`
	JobTitle    string            `json:"jobTitle" db:"job_title"`
	CompanyID   int64             `json:"companyId" db:"company_id"`
	CompanyName string            `json:"companyName" db:"company_name"`
}

// Value exposes fields for filtering, sorting and export.
func (a *Application) Value(field string) (any, bool) {
	switch field {
	case "id":
		return a.ID, true
	case "studentId":
		return a.StudentID, true
	case "jobId":
		return a.JobID, true
	case "status":
		return string(a.Status), true
	case "remarks":
		return deref(a.Remarks)
	case "appliedAt", "createdAt":
		return a.AppliedAt, true
	case "updatedAt":
		return a.UpdatedAt, true
	case "studentName":
		return a.StudentName, true
	case "rollNumber":
		return a.RollNumber, true
	case "department":
		return a.Department, true
	case "cgpa":
		return a.CGPA, true
	case "jobTitle":
		return a.JobTitle, true
	case "companyId":
		return a.CompanyID, true
	case "company", "companyName":
		return a.CompanyName, true
	}
	return nil, false
}

// SearchText is matched by free-text queries.
func (a *Application) SearchText() []string {
	return []string{a.StudentName, a.RollNumber, a.JobTitle, a.CompanyName}
}
