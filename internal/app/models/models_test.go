package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestApplicationStatus_Transitions(t *testing.T) {
	cases := []struct {
		from, to ApplicationStatus
		ok       bool
	}{
		{ApplicationApplied, ApplicationShortlisted, true},
		{ApplicationApplied, ApplicationRejected, true},
		{ApplicationApplied, ApplicationSelected, false},
		{ApplicationShortlisted, ApplicationInterviewed, true},
		{ApplicationShortlisted, ApplicationApplied, false},
		{ApplicationInterviewed, ApplicationSelected, true},
		{ApplicationInterviewed, ApplicationRejected, true},
		{ApplicationSelected, ApplicationRejected, false},
		{ApplicationRejected, ApplicationShortlisted, false},
		{ApplicationApplied, ApplicationApplied, false},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.ok, tc.from.CanTransitionTo(tc.to), "%s -> %s", tc.from, tc.to)
	}

	assert.True(t, ApplicationSelected.Terminal())
	assert.True(t, ApplicationRejected.Terminal())
	assert.False(t, ApplicationInterviewed.Terminal())
	assert.False(t, ApplicationStatus("hired").Valid())
}

func TestJob_CheckEligibility(t *testing.T) {
	job := &Job{MinCGPA: 7.5, AllowedDepartments: []string{"CSE", "ECE"}}

	assert.Nil(t, job.CheckEligibility(&Student{CGPA: 8, Department: "cse", PlacementStatus: PlacementUnplaced}))
	assert.NotNil(t, job.CheckEligibility(&Student{CGPA: 7, Department: "CSE"}))
	assert.NotNil(t, job.CheckEligibility(&Student{CGPA: 9, Department: "ME"}))
	assert.NotNil(t, job.CheckEligibility(&Student{CGPA: 9, Department: "CSE", PlacementStatus: PlacementPlaced}))

	open := &Job{MinCGPA: 0}
	assert.Nil(t, open.CheckEligibility(&Student{CGPA: 5, Department: "Civil"}))
}

func TestJob_AcceptingApplications(t *testing.T) {
	now := time.Date(2024, 8, 1, 12, 0, 0, 0, time.UTC)
	job := &Job{Status: JobOpen, Deadline: now.Add(time.Hour)}
	assert.True(t, job.AcceptingApplications(now))
	assert.False(t, job.AcceptingApplications(now.Add(2*time.Hour)))

	job.Status = JobClosed
	assert.False(t, job.AcceptingApplications(now))
}

func TestStudent_ValueAndSearchText(t *testing.T) {
	s := &Student{Name: "Asha", Department: "CSE", CGPA: 8.7, Skills: []string{"Go"}, PlacementStatus: PlacementPlaced}

	v, ok := s.Value("status")
	assert.True(t, ok)
	assert.Equal(t, "placed", v)

	_, ok = s.Value("packageLpa")
	assert.False(t, ok, "unset package is missing")

	_, ok = s.Value("nope")
	assert.False(t, ok)

	assert.Contains(t, s.SearchText(), "Go")
	assert.True(t, s.HasSkill("go"))
}

func TestOptionalTextValues(t *testing.T) {
	note := "strong system design"
	app := &Application{Remarks: &note}

	v, ok := app.Value("remarks")
	assert.True(t, ok)
	assert.Equal(t, "strong system design", v)

	app.Remarks = nil
	_, ok = app.Value("remarks")
	assert.False(t, ok)

	hash := "0xabc"
	v, ok = (&Certificate{BlockchainHash: &hash}).Value("blockchainHash")
	assert.True(t, ok)
	assert.Equal(t, "0xabc", v)

	_, ok = (&Student{}).Value("phone")
	assert.False(t, ok)
}

func TestRoleType_Valid(t *testing.T) {
	assert.True(t, RoleAdmin.Valid())
	assert.True(t, RoleCompany.Valid())
	assert.False(t, RoleType("INSTRUCTOR").Valid())
}
