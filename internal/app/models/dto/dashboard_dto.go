package dto

// CountByLabel is one bucket of a grouped count
type CountByLabel struct {
	Label string `json:"label" example:"CSE"`
	Count int    `json:"count" example:"12"`
}

// DepartmentStat summarises placements for one department
type DepartmentStat struct {
	Department    string  `json:"department" example:"CSE"`
	Total         int     `json:"total" example:"120"`
	Placed        int     `json:"placed" example:"96"`
	PlacementRate float64 `json:"placementRate" example:"80"`
	AvgPackage    float64 `json:"avgPackage" example:"9.4"`
}

// CompanyHires is a company's hire count
type CompanyHires struct {
	CompanyID   int64  `json:"companyId"`
	CompanyName string `json:"companyName"`
	Hires       int    `json:"hires"`
}

// AdminDashboard is the placement cell overview
type AdminDashboard struct {
	TotalStudents      int              `json:"totalStudents"`
	PlacedStudents     int              `json:"placedStudents"`
	PlacementRate      float64          `json:"placementRate"`
	AveragePackage     float64          `json:"averagePackage"`
	HighestPackage     float64          `json:"highestPackage"`
	ActiveCompanies    int              `json:"activeCompanies"`
	OpenJobs           int              `json:"openJobs"`
	TotalApplications  int              `json:"totalApplications"`
	UpcomingInterviews int              `json:"upcomingInterviews"`
	StatusBreakdown    []CountByLabel   `json:"statusBreakdown"`
	ApplicationFunnel  []CountByLabel   `json:"applicationFunnel"`
	Departments        []DepartmentStat `json:"departments"`
	TopRecruiters      []CompanyHires   `json:"topRecruiters"`
}

// StudentDashboard is a student's own overview
type StudentDashboard struct {
	Student            interface{}    `json:"student"`
	ApplicationsByStep []CountByLabel `json:"applicationsByStep"`
	EligibleOpenJobs   int            `json:"eligibleOpenJobs"`
	UpcomingInterviews interface{}    `json:"upcomingInterviews"`
	Certificates       int            `json:"certificates"`
	UnreadNotices      int            `json:"unreadNotifications"`
}

// CompanyDashboard is a recruiter's overview
type CompanyDashboard struct {
	Company            interface{}    `json:"company"`
	OpenJobs           int            `json:"openJobs"`
	TotalApplications  int            `json:"totalApplications"`
	ApplicationFunnel  []CountByLabel `json:"applicationFunnel"`
	UpcomingInterviews interface{}    `json:"upcomingInterviews"`
}
