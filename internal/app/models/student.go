package models

import (
	"strings"
	"time"
)

// Student defines the student model based on the 'students' table
type Student struct {
	ID              int64           `json:"id" db:"id" example:"1"`
	UserID          *int64          `json:"userId,omitempty" db:"user_id" example:"5"` // Linked login, if the student has one
	Name            string          `json:"name" db:"name" example:"Asha Rao"`
	Email           string          `json:"email" db:"email" example:"asha.rao@college.edu"`
	Phone           *string         `json:"phone,omitempty" db:"phone" example:"+91 98765 43210"`
	RollNumber      string          `json:"rollNumber" db:"roll_number" example:"CS21001"`
	Department      string          `json:"department" db:"department" example:"CSE"`
	CGPA            float64         `json:"cgpa" db:"cgpa" example:"8.7"`
	GraduationYear  int             `json:"graduationYear" db:"graduation_year" example:"2025"`
	PlacementStatus PlacementStatus `json:"placementStatus" db:"placement_status" example:"unplaced"`
	PlacedCompany   *string         `json:"placedCompany,omitempty" db:"placed_company" example:"Initech"`
	PackageLPA      *float64        `json:"packageLpa,omitempty" db:"package_lpa" example:"12.5"`
	Skills          []string        `json:"skills" db:"skills"`
	ResumeURL       *string         `json:"resumeUrl,omitempty" db:"resume_url" example:"uploads/resumes/cs21001.pdf"`
	CreatedAt       time.Time       `json:"createdAt" db:"created_at"`
	UpdatedAt       time.Time       `json:"updatedAt" db:"updated_at"`
}

// Value exposes fields for filtering, sorting and export.
func (s *Student) Value(field string) (any, bool) {
	switch field {
	case "id":
		return s.ID, true
	case "name":
		return s.Name, true
	case "email":
		return s.Email, true
	case "phone":
		return deref(s.Phone)
	case "rollNumber":
		return s.RollNumber, true
	case "department":
		return s.Department, true
	case "cgpa":
		return s.CGPA, true
	case "graduationYear", "batch":
		return s.GraduationYear, true
	case "placementStatus", "status":
		return string(s.PlacementStatus), true
	case "placedCompany":
		return deref(s.PlacedCompany)
	case "package", "packageLpa":
		return s.PackageLPA, s.PackageLPA != nil
	case "skills":
		return s.Skills, true
	case "createdAt":
		return s.CreatedAt, true
	}
	return nil, false
}

// SearchText is matched by free-text queries.
func (s *Student) SearchText() []string {
	out := []string{s.Name, s.Email, s.RollNumber, s.Department}
	if s.PlacedCompany != nil {
		out = append(out, *s.PlacedCompany)
	}
	return append(out, s.Skills...)
}

// HasSkill reports whether the student lists skill.
func (s *Student) HasSkill(skill string) bool {
	return containsFold(s.Skills, skill)
}

func equalFold(a, b string) bool {
	return strings.EqualFold(strings.TrimSpace(a), strings.TrimSpace(b))
}
