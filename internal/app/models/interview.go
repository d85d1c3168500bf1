package models

import "time"

// Interview is a scheduled round for an application
type Interview struct {
	ID              int64           `json:"id" db:"id" example:"1"`
	ApplicationID   int64           `json:"applicationId" db:"application_id" example:"1"`
	JobID           int64           `json:"jobId" db:"job_id" example:"1"`
	ScheduledAt     time.Time       `json:"scheduledAt" db:"scheduled_at"`
	DurationMinutes int             `json:"durationMinutes" db:"duration_minutes" example:"45"`
	Mode            InterviewMode   `json:"mode" db:"mode" example:"online"`
	Location        *string         `json:"location,omitempty" db:"location"`
	Status          InterviewStatus `json:"status" db:"status" example:"scheduled"`
	Notes           *string         `json:"notes,omitempty" db:"notes"`
	StudentID       int64           `json:"studentId" db:"student_id"`
	StudentName     string          `json:"studentName" db:"student_name"`
	JobTitle        string          `json:"jobTitle" db:"job_title"`
	CompanyID       int64           `json:"companyId" db:"company_id"`
	CompanyName     string          `json:"companyName" db:"company_name"`
	CreatedAt       time.Time       `json:"createdAt" db:"created_at"`
	UpdatedAt       time.Time       `json:"updatedAt" db:"updated_at"`
}

// EndsAt is the scheduled end of the interview.
func (i *Interview) EndsAt() time.Time {
	return i.ScheduledAt.Add(time.Duration(i.DurationMinutes) * time.Minute)
}

// Value exposes fields for filtering and sorting.
func (i *Interview) Value(field string) (any, bool) {
	switch field {
	case "id":
		return i.ID, true
	case "scheduledAt", "date":
		return i.ScheduledAt, true
	case "mode":
		return string(i.Mode), true
	case "status":
		return string(i.Status), true
	case "studentName":
		return i.StudentName, true
	case "jobTitle":
		return i.JobTitle, true
	case "companyName", "company":
		return i.CompanyName, true
	case "jobId":
		return i.JobID, true
	}
	return nil, false
}

// SearchText is matched by free-text queries.
func (i *Interview) SearchText() []string {
	return []string{i.StudentName, i.JobTitle, i.CompanyName}
}
