package dto

// CreateCompanyRequest is the payload for a new company
type CreateCompanyRequest struct {
	Name         string   `json:"name" binding:"required,min=2,max=150"`
	Industry     string   `json:"industry" binding:"required"`
	Description  string   `json:"description"`
	Website      string   `json:"website" binding:"omitempty,url"`
	ContactEmail string   `json:"contactEmail" binding:"required,email"`
	Locations    []string `json:"locations"`
	Status       string   `json:"status" binding:"omitempty,oneof=active inactive blacklisted"`
}

// UpdateCompanyRequest edits a company; omitted fields are unchanged
type UpdateCompanyRequest struct {
	Name         *string   `json:"name" binding:"omitempty,min=2,max=150"`
	Industry     *string   `json:"industry"`
	Description  *string   `json:"description"`
	Website      *string   `json:"website" binding:"omitempty,url"`
	ContactEmail *string   `json:"contactEmail" binding:"omitempty,email"`
	Locations    *[]string `json:"locations"`
	Status       *string   `json:"status" binding:"omitempty,oneof=active inactive blacklisted"`
}
