package models

// RoleType defines the user role type
type RoleType string

const (
	RoleAdmin   RoleType = "ADMIN"
	RoleStudent RoleType = "STUDENT"
	RoleCompany RoleType = "COMPANY"
)

// Valid reports whether r is a known role.
func (r RoleType) Valid() bool {
	switch r {
	case RoleAdmin, RoleStudent, RoleCompany:
		return true
	}
	return false
}

// PlacementStatus is a student's position in the placement cycle.
type PlacementStatus string

const (
	PlacementUnplaced  PlacementStatus = "unplaced"
	PlacementInProcess PlacementStatus = "in_process"
	PlacementPlaced    PlacementStatus = "placed"
	PlacementOptedOut  PlacementStatus = "opted_out"
)

// Valid reports whether s is a known placement status.
func (s PlacementStatus) Valid() bool {
	switch s {
	case PlacementUnplaced, PlacementInProcess, PlacementPlaced, PlacementOptedOut:
		return true
	}
	return false
}

// CompanyStatus controls whether a company may post jobs.
type CompanyStatus string

const (
	CompanyActive      CompanyStatus = "active"
	CompanyInactive    CompanyStatus = "inactive"
	CompanyBlacklisted CompanyStatus = "blacklisted"
)

// Valid reports whether s is a known company status.
func (s CompanyStatus) Valid() bool {
	switch s {
	case CompanyActive, CompanyInactive, CompanyBlacklisted:
		return true
	}
	return false
}

// JobType is the kind of engagement offered.
type JobType string

const (
	JobFullTime   JobType = "full_time"
	JobInternship JobType = "internship"
	JobContract   JobType = "contract"
)

// Valid reports whether t is a known job type.
func (t JobType) Valid() bool {
	switch t {
	case JobFullTime, JobInternship, JobContract:
		return true
	}
	return false
}

// JobStatus is open while applications are accepted.
type JobStatus string

const (
	JobOpen   JobStatus = "open"
	JobClosed JobStatus = "closed"
)

// InterviewMode is how an interview is conducted.
type InterviewMode string

const (
	InterviewOnline InterviewMode = "online"
	InterviewOnsite InterviewMode = "onsite"
	InterviewPhone  InterviewMode = "phone"
)

// Valid reports whether m is a known interview mode.
func (m InterviewMode) Valid() bool {
	switch m {
	case InterviewOnline, InterviewOnsite, InterviewPhone:
		return true
	}
	return false
}

// InterviewStatus tracks an interview slot.
type InterviewStatus string

const (
	InterviewScheduled InterviewStatus = "scheduled"
	InterviewCompleted InterviewStatus = "completed"
	InterviewCancelled InterviewStatus = "cancelled"
)

// Valid reports whether s is a known interview status.
func (s InterviewStatus) Valid() bool {
	switch s {
	case InterviewScheduled, InterviewCompleted, InterviewCancelled:
		return true
	}
	return false
}

// containsFold reports whether list contains s ignoring case.
func containsFold(list []string, s string) bool {
	for _, v := range list {
		if equalFold(v, s) {
			return true
		}
	}
	return false
}

// deref reports an optional text column for Value: missing when NULL.
func deref(s *string) (any, bool) {
	if s == nil {
		return nil, false
	}
	return *s, true
}
