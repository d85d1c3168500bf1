package models

import "time"

// Job defines a posting based on the 'jobs' table
type Job struct {
	ID                 int64     `json:"id" db:"id" example:"1"`
	CompanyID          int64     `json:"companyId" db:"company_id" example:"1"`
	CompanyName        string    `json:"companyName" db:"company_name" example:"Initech"` // Joined from companies
	Title              string    `json:"title" db:"title" example:"Backend Engineer"`
	Description        string    `json:"description" db:"description"`
	Type               JobType   `json:"type" db:"type" example:"full_time"`
	Location           string    `json:"location" db:"location" example:"Bengaluru"`
	MinPackage         float64   `json:"minPackage" db:"min_package" example:"8"`
	MaxPackage         float64   `json:"maxPackage" db:"max_package" example:"14"`
	MinCGPA            float64   `json:"minCgpa" db:"min_cgpa" example:"7"`
	AllowedDepartments []string  `json:"allowedDepartments" db:"allowed_departments"` // Empty means every department
	Skills             []string  `json:"skills" db:"skills"`
	Openings           int       `json:"openings" db:"openings" example:"5"`
	Deadline           time.Time `json:"deadline" db:"deadline"`
	Status             JobStatus `json:"status" db:"status" example:"open"`
	ApplicationCount   int       `json:"applicationCount" db:"application_count"`
	CreatedAt          time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt          time.Time `json:"updatedAt" db:"updated_at"`
}

// AcceptingApplications reports whether the job is open and before its deadline.
func (j *Job) AcceptingApplications(now time.Time) bool {
	return j.Status == JobOpen && now.Before(j.Deadline)
}

// EligibilityError explains why a student cannot apply.
type EligibilityError struct {
	Reason string
}

func (e *EligibilityError) Error() string { return e.Reason }

// CheckEligibility returns nil when s meets the job's academic criteria.
func (j *Job) CheckEligibility(s *Student) *EligibilityError {
	if s.CGPA < j.MinCGPA {
		return &EligibilityError{Reason: "CGPA below the minimum required"}
	}
	if len(j.AllowedDepartments) > 0 && !containsFold(j.AllowedDepartments, s.Department) {
		return &EligibilityError{Reason: "department not eligible for this job"}
	}
	if s.PlacementStatus == PlacementPlaced || s.PlacementStatus == PlacementOptedOut {
		return &EligibilityError{Reason: "student is " + string(s.PlacementStatus)}
	}
	return nil
}

// Value exposes fields for filtering, sorting and export.
func (j *Job) Value(field string) (any, bool) {
	switch field {
	case "id":
		return j.ID, true
	case "companyId":
		return j.CompanyID, true
	case "company", "companyName":
		return j.CompanyName, true
	case "title":
		return j.Title, true
	case "type":
		return string(j.Type), true
	case "location":
		return j.Location, true
	case "minPackage":
		return j.MinPackage, true
	case "package", "maxPackage":
		return j.MaxPackage, true
	case "minCgpa":
		return j.MinCGPA, true
	case "department", "allowedDepartments":
		return j.AllowedDepartments, true
	case "skills":
		return j.Skills, true
	case "openings":
		return j.Openings, true
	case "deadline":
		return j.Deadline, true
	case "status":
		return string(j.Status), true
	case "applicationCount":
		return j.ApplicationCount, true
	case "createdAt":
		return j.CreatedAt, true
	}
	return nil, false
}

// SearchText is matched by free-text queries.
func (j *Job) SearchText() []string {
	out := []string{j.Title, j.CompanyName, j.Location, j.Description}
	return append(out, j.Skills...)
}
