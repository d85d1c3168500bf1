package models

import "time"

// Company defines a recruiter based on the 'companies' table
type Company struct {
	ID               int64         `json:"id" db:"id" example:"1"`
	UserID           *int64        `json:"userId,omitempty" db:"user_id"` // Recruiter login, if any
	Name             string        `json:"name" db:"name" example:"Initech"`
	Industry         string        `json:"industry" db:"industry" example:"Software"`
	Description      *string       `json:"description,omitempty" db:"description"`
	Website          *string       `json:"website,omitempty" db:"website" example:"https://initech.example"`
	ContactEmail     string        `json:"contactEmail" db:"contact_email" example:"hr@initech.example"`
	Locations        []string      `json:"locations" db:"locations"`
	Status           CompanyStatus `json:"status" db:"status" example:"active"`
	TotalHires       int           `json:"totalHires" db:"total_hires" example:"42"`
	CurrentYearHires int           `json:"currentYearHires" db:"current_year_hires" example:"6"`
	CreatedAt        time.Time     `json:"createdAt" db:"created_at"`
	UpdatedAt        time.Time     `json:"updatedAt" db:"updated_at"`
}

// Value exposes fields for filtering, sorting and export.
func (c *Company) Value(field string) (any, bool) {
	switch field {
	case "id":
		return c.ID, true
	case "name":
		return c.Name, true
	case "industry":
		return c.Industry, true
	case "website":
		return deref(c.Website)
	case "contactEmail":
		return c.ContactEmail, true
	case "locations", "location":
		return c.Locations, true
	case "status":
		return string(c.Status), true
	case "totalHires":
		return c.TotalHires, true
	case "currentYearHires":
		return c.CurrentYearHires, true
	case "createdAt":
		return c.CreatedAt, true
	}
	return nil, false
}

// SearchText is matched by free-text queries.
func (c *Company) SearchText() []string {
	return append([]string{c.Name, c.Industry, c.ContactEmail}, c.Locations...)
}
