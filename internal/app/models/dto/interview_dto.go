package dto

import "time"

// ScheduleInterviewRequest books an interview for an application
type ScheduleInterviewRequest struct {
	ApplicationID   int64     `json:"applicationId" binding:"required,min=1"`
	ScheduledAt     time.Time `json:"scheduledAt" binding:"required"`
	DurationMinutes int       `json:"durationMinutes" binding:"omitempty,min=10,max=480"`
	Mode            string    `json:"mode" binding:"required,oneof=online onsite phone"`
	Location        string    `json:"location"`
	Notes           string    `json:"notes" binding:"max=1000"`
}

// UpdateInterviewRequest reschedules or closes an interview
type UpdateInterviewRequest struct {
	ScheduledAt     *time.Time `json:"scheduledAt"`
	DurationMinutes *int       `json:"durationMinutes" binding:"omitempty,min=10,max=480"`
	Status          *string    `json:"status" binding:"omitempty,oneof=scheduled completed cancelled"`
	Location        *string    `json:"location"`
	Notes           *string    `json:"notes" binding:"omitempty,max=1000"`
}

// AvailabilityResponse is the remaining capacity for a job on a day
type AvailabilityResponse struct {
	JobID     int64  `json:"jobId"`
	Date      string `json:"date" example:"2025-03-14"`
	Capacity  int    `json:"capacity"`
	Booked    int    `json:"booked"`
	Remaining int    `json:"remaining"`
}
