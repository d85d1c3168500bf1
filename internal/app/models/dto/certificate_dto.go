package dto

import "time"

// CreateCertificateRequest records a certificate for a student
type CreateCertificateRequest struct {
	StudentID int64     `json:"studentId" binding:"required,min=1"`
	Title     string    `json:"title" binding:"required,min=2,max=200"`
	Issuer    string    `json:"issuer" binding:"required"`
	IssueDate time.Time `json:"issueDate" binding:"required"`
}

// IssueAcceptedResponse is returned when on-chain issuance starts
type IssueAcceptedResponse struct {
	CertificateID int64  `json:"certificateId" example:"1"`
	Stage         string `json:"stage" example:"preparing"`
}

// VerificationResponse is the public result of a certificate lookup
type VerificationResponse struct {
	Valid          bool       `json:"valid"`
	CertificateID  int64      `json:"certificateId,omitempty"`
	Title          string     `json:"title,omitempty"`
	Issuer         string     `json:"issuer,omitempty"`
	StudentName    string     `json:"studentName,omitempty"`
	IssueDate      *time.Time `json:"issueDate,omitempty"`
	BlockchainHash string     `json:"blockchainHash,omitempty"`
	BlockNumber    int64      `json:"blockNumber,omitempty"`
	IssuedAt       *time.Time `json:"issuedAt,omitempty"`
}
