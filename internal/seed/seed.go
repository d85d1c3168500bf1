package seed

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"

	appModels "github.com/yigit/placementhub/internal/app/models"
	appRepos "github.com/yigit/placementhub/internal/app/repositories"
	"github.com/yigit/placementhub/internal/pkg/apperrors"
	"github.com/yigit/placementhub/internal/pkg/auth"
)

const defaultAdminPassword = "Admin123!"

// Options controls what CreateDefaultData inserts
type Options struct {
	AdminEmail    string
	AdminPassword string
	SampleData    bool
}

// CreateDefaultData creates the placement cell admin and, when asked, a small
// set of companies, students and jobs. Existing rows are left alone.
func CreateDefaultData(ctx context.Context, repos *appRepos.Repositories, opts Options, lgr zerolog.Logger) error {
	var finalErr error

	if err := createAdmin(ctx, repos.UserRepository, opts, lgr); err != nil {
		finalErr = errors.Join(finalErr, err)
	}

	if opts.SampleData {
		if err := createSampleData(ctx, repos, lgr); err != nil {
			finalErr = errors.Join(finalErr, err)
		}
	}

	return finalErr
}

func createAdmin(ctx context.Context, userRepo appRepos.IUserRepository, opts Options, lgr zerolog.Logger) error {
	exists, err := userRepo.EmailExists(ctx, opts.AdminEmail)
	if err != nil {
		lgr.Error().Err(err).Msg("Error checking if admin user exists")
		return err
	}
	if exists {
		lgr.Info().Msg("Admin user already exists, skipping creation")
		return nil
	}

	password := opts.AdminPassword
	if password == "" {
		lgr.Warn().Str("email", opts.AdminEmail).Msg("SEED_ADMIN_PASSWORD not set, using the default admin password")
		password = defaultAdminPassword
	}
	hashed, err := auth.HashPassword(password)
	if err != nil {
		lgr.Error().Err(err).Msg("Error hashing admin password")
		return err
	}

	now := time.Now()
	admin := &appModels.User{
		Email:         opts.AdminEmail,
		Password:      hashed,
		FirstName:     "Placement",
		LastName:      "Cell",
		RoleType:      appModels.RoleAdmin,
		IsActive:      true,
		EmailVerified: true,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if err := userRepo.Create(ctx, admin); err != nil {
		lgr.Error().Err(err).Msg("Error creating admin user")
		return err
	}
	lgr.Info().Int64("adminID", admin.ID).Msg("Default admin user created successfully")
	return nil
}

func createSampleData(ctx context.Context, repos *appRepos.Repositories, lgr zerolog.Logger) error {
	companies := []*appModels.Company{
		{Name: "Initech", Industry: "Software", ContactEmail: "hr@initech.example", Locations: []string{"Bengaluru", "Pune"}, Status: appModels.CompanyActive},
		{Name: "Globex", Industry: "Electronics", ContactEmail: "careers@globex.example", Locations: []string{"Hyderabad"}, Status: appModels.CompanyActive},
		{Name: "Umbrella Analytics", Industry: "Consulting", ContactEmail: "talent@umbrella.example", Locations: []string{"Mumbai"}, Status: appModels.CompanyActive},
	}
	for _, c := range companies {
		if err := repos.CompanyRepository.Create(ctx, c); err != nil {
			if errors.Is(err, apperrors.ErrCompanyAlreadyExists) {
				lgr.Info().Msg("Sample data already present, skipping")
				return nil
			}
			lgr.Error().Err(err).Str("company", c.Name).Msg("Error creating sample company")
			return err
		}
	}

	students := []*appModels.Student{
		{Name: "Alice Menon", Email: "alice@college.example", RollNumber: "CS21001", Department: "CS", CGPA: 8.2, GraduationYear: 2025, Skills: []string{"Go", "SQL"}},
		{Name: "Bob Iyer", Email: "bob@college.example", RollNumber: "EE21002", Department: "EE", CGPA: 6.1, GraduationYear: 2025, Skills: []string{"MATLAB"}},
		{Name: "Chitra Das", Email: "chitra@college.example", RollNumber: "CS21003", Department: "CS", CGPA: 9.1, GraduationYear: 2025, Skills: []string{"Python", "ML"}},
		{Name: "Dev Kapoor", Email: "dev@college.example", RollNumber: "ME21004", Department: "ME", CGPA: 7.4, GraduationYear: 2026, Skills: []string{"CAD"}},
	}
	var finalErr error
	for _, s := range students {
		s.PlacementStatus = appModels.PlacementUnplaced
		if err := repos.StudentRepository.Create(ctx, s); err != nil && !errors.Is(err, apperrors.ErrRollNumberAlreadyExists) {
			lgr.Error().Err(err).Str("rollNumber", s.RollNumber).Msg("Error creating sample student")
			finalErr = errors.Join(finalErr, err)
		}
	}

	deadline := time.Now().AddDate(0, 0, 21)
	jobs := []*appModels.Job{
		{CompanyID: companies[0].ID, Title: "Backend Engineer", Type: appModels.JobFullTime, Location: "Bengaluru",
			MinPackage: 10, MaxPackage: 14, MinCGPA: 7, AllowedDepartments: []string{"CS"}, Skills: []string{"Go"}, Openings: 4},
		{CompanyID: companies[1].ID, Title: "Hardware Intern", Type: appModels.JobInternship, Location: "Hyderabad",
			MinPackage: 3, MaxPackage: 4, MinCGPA: 6, AllowedDepartments: []string{"EE", "ME"}, Openings: 6},
		{CompanyID: companies[2].ID, Title: "Data Analyst", Type: appModels.JobFullTime, Location: "Mumbai",
			MinPackage: 7, MaxPackage: 9, MinCGPA: 7.5, Skills: []string{"SQL", "Python"}, Openings: 2},
	}
	for _, j := range jobs {
		j.Deadline = deadline
		j.Status = appModels.JobOpen
		if err := repos.JobRepository.Create(ctx, j); err != nil {
			lgr.Error().Err(err).Str("job", j.Title).Msg("Error creating sample job")
			finalErr = errors.Join(finalErr, err)
		}
	}

	lgr.Info().Int("companies", len(companies)).Int("students", len(students)).Int("jobs", len(jobs)).Msg("Sample data created")
	return finalErr
}
