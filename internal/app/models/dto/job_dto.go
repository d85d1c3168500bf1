package dto

import "time"

// CreateJobRequest is the payload for a new posting. CompanyID is ignored for
// company users, who always post for their own company.
type CreateJobRequest struct {
	CompanyID          int64     `json:"companyId"`
	Title              string    `json:"title" binding:"required,min=2,max=150"`
	Description        string    `json:"description"`
	Type               string    `json:"type" binding:"required,oneof=full_time internship contract"`
	Location           string    `json:"location" binding:"required"`
	MinPackage         float64   `json:"minPackage" binding:"gte=0"`
	MaxPackage         float64   `json:"maxPackage" binding:"gtefield=MinPackage"`
	MinCGPA            float64   `json:"minCgpa" binding:"gte=0,lte=10"`
	AllowedDepartments []string  `json:"allowedDepartments"`
	Skills             []string  `json:"skills"`
	Openings           int       `json:"openings" binding:"gte=1"`
	Deadline           time.Time `json:"deadline" binding:"required"`
}

// UpdateJobRequest edits a posting; omitted fields are unchanged
type UpdateJobRequest struct {
	Title              *string    `json:"title" binding:"omitempty,min=2,max=150"`
	Description        *string    `json:"description"`
	Type               *string    `json:"type" binding:"omitempty,oneof=full_time internship contract"`
	Location           *string    `json:"location"`
	MinPackage         *float64   `json:"minPackage" binding:"omitempty,gte=0"`
	MaxPackage         *float64   `json:"maxPackage" binding:"omitempty,gte=0"`
	MinCGPA            *float64   `json:"minCgpa" binding:"omitempty,gte=0,lte=10"`
	AllowedDepartments *[]string  `json:"allowedDepartments"`
	Skills             *[]string  `json:"skills"`
	Openings           *int       `json:"openings" binding:"omitempty,gte=1"`
	Deadline           *time.Time `json:"deadline"`
	Status             *string    `json:"status" binding:"omitempty,oneof=open closed"`
}

// EligibleJobResponse is a job annotated with the caller's eligibility
type EligibleJobResponse struct {
	Job      interface{} `json:"job"`
	Eligible bool        `json:"eligible"`
	Reason   string      `json:"reason,omitempty"`
	Applied  bool        `json:"applied"`
}
