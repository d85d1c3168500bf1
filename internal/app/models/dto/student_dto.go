package dto

// CreateStudentRequest is the admin payload for a new student record
type CreateStudentRequest struct {
	Name            string   `json:"name" binding:"required,min=2,max=100"`
	Email           string   `json:"email" binding:"required,email"`
	Phone           string   `json:"phone" binding:"omitempty,max=20"`
	RollNumber      string   `json:"rollNumber" binding:"required,rollno"`
	Department      string   `json:"department" binding:"required"`
	CGPA            float64  `json:"cgpa" binding:"gte=0,lte=10"`
	GraduationYear  int      `json:"graduationYear" binding:"required,gte=2000,lte=2100"`
	PlacementStatus string   `json:"placementStatus" binding:"omitempty,oneof=unplaced in_process placed opted_out"`
	Skills          []string `json:"skills"`
}

// UpdateStudentRequest is the admin payload for editing a student; omitted
// fields are left unchanged.
type UpdateStudentRequest struct {
	Name            *string   `json:"name" binding:"omitempty,min=2,max=100"`
	Email           *string   `json:"email" binding:"omitempty,email"`
	Phone           *string   `json:"phone" binding:"omitempty,max=20"`
	Department      *string   `json:"department"`
	CGPA            *float64  `json:"cgpa" binding:"omitempty,gte=0,lte=10"`
	GraduationYear  *int      `json:"graduationYear" binding:"omitempty,gte=2000,lte=2100"`
	PlacementStatus *string   `json:"placementStatus" binding:"omitempty,oneof=unplaced in_process placed opted_out"`
	PlacedCompany   *string   `json:"placedCompany"`
	PackageLPA      *float64  `json:"packageLpa" binding:"omitempty,gte=0"`
	Skills          *[]string `json:"skills"`
}

// UpdateOwnProfileRequest is what a student may change about themselves
type UpdateOwnProfileRequest struct {
	Phone  *string   `json:"phone" binding:"omitempty,max=20"`
	Skills *[]string `json:"skills"`
}
