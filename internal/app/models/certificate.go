package models

import "time"

// Certificate is a student achievement that can be anchored on the ledger
type Certificate struct {
	ID             int64      `json:"id" db:"id" example:"1"`
	StudentID      int64      `json:"studentId" db:"student_id" example:"1"`
	StudentName    string     `json:"studentName" db:"student_name"`
	Title          string     `json:"title" db:"title" example:"Cloud Fundamentals"`
	Issuer         string     `json:"issuer" db:"issuer" example:"Acme Academy"`
	IssueDate      time.Time  `json:"issueDate" db:"issue_date"`
	Verified       bool       `json:"verified" db:"verified"`
	BlockchainHash *string    `json:"blockchainHash,omitempty" db:"blockchain_hash"`
	BlockNumber    *int64     `json:"blockNumber,omitempty" db:"block_number"`
	IssueStage     *string    `json:"issueStage,omitempty" db:"issue_stage"`
	IssuedAt       *time.Time `json:"issuedAt,omitempty" db:"issued_at"`
	CreatedAt      time.Time  `json:"createdAt" db:"created_at"`
	UpdatedAt      time.Time  `json:"updatedAt" db:"updated_at"`
}

// Value exposes fields for filtering, sorting and export.
func (c *Certificate) Value(field string) (any, bool) {
	switch field {
	case "id":
		return c.ID, true
	case "studentId":
		return c.StudentID, true
	case "studentName":
		return c.StudentName, true
	case "title":
		return c.Title, true
	case "issuer":
		return c.Issuer, true
	case "issueDate":
		return c.IssueDate, true
	case "verified":
		return c.Verified, true
	case "blockchainHash":
		return deref(c.BlockchainHash)
	case "blockNumber":
		return c.BlockNumber, c.BlockNumber != nil
	case "stage", "issueStage":
		return deref(c.IssueStage)
	}
	return nil, false
}

// SearchText is matched by free-text queries.
func (c *Certificate) SearchText() []string {
	out := []string{c.Title, c.Issuer, c.StudentName}
	if c.BlockchainHash != nil {
		out = append(out, *c.BlockchainHash)
	}
	return out
}
