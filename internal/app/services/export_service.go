package services

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/yigit/placementhub/internal/app/auth"
	"github.com/yigit/placementhub/internal/app/models"
	"github.com/yigit/placementhub/internal/app/repositories"
	"github.com/yigit/placementhub/internal/pkg/apperrors"
	"github.com/yigit/placementhub/internal/pkg/export"
	"github.com/yigit/placementhub/internal/pkg/search"
)

// Artifact is a rendered download
type Artifact struct {
	Filename    string
	ContentType string
	Body        []byte
}

var (
	studentColumns = []export.Column{
		{Key: "rollNumber", Header: "Roll No."},
		{Key: "name", Header: "Name", Width: 1.6},
		{Key: "email", Header: "Email", Width: 2},
		{Key: "department", Header: "Department"},
		{Key: "cgpa", Header: "CGPA", Width: 0.6},
		{Key: "graduationYear", Header: "Batch", Width: 0.6},
		{Key: "placementStatus", Header: "Status"},
		{Key: "placedCompany", Header: "Company", Width: 1.4},
		{Key: "packageLpa", Header: "Package (LPA)", Width: 0.8},
		{Key: "skills", Header: "Skills", Width: 2},
	}
	companyColumns = []export.Column{
		{Key: "name", Header: "Name", Width: 1.6},
		{Key: "industry", Header: "Industry"},
		{Key: "contactEmail", Header: "Contact", Width: 1.8},
		{Key: "website", Header: "Website", Width: 1.6},
		{Key: "locations", Header: "Locations", Width: 1.6},
		{Key: "status", Header: "Status", Width: 0.8},
		{Key: "totalHires", Header: "Total Hires", Width: 0.7},
		{Key: "currentYearHires", Header: "Hires This Year", Width: 0.8},
	}
	applicationColumns = []export.Column{
		{Key: "id", Header: "ID", Width: 0.4},
		{Key: "studentName", Header: "Student", Width: 1.4},
		{Key: "rollNumber", Header: "Roll No."},
		{Key: "department", Header: "Department"},
		{Key: "cgpa", Header: "CGPA", Width: 0.6},
		{Key: "jobTitle", Header: "Job", Width: 1.6},
		{Key: "companyName", Header: "Company", Width: 1.4},
		{Key: "status", Header: "Status"},
		{Key: "appliedAt", Header: "Applied"},
		{Key: "remarks", Header: "Remarks", Width: 1.6},
	}
)

// ExportService renders list data and resumes as downloadable documents
type ExportService interface {
	Students(ctx context.Context, format export.Format, opts search.Options) (*Artifact, error)
	Companies(ctx context.Context, format export.Format, opts search.Options) (*Artifact, error)
	Applications(ctx context.Context, actor auth.Actor, format export.Format, opts search.Options) (*Artifact, error)
	Resume(ctx context.Context, actor auth.Actor, studentID int64) (*Artifact, error)
}

type exportService struct {
	studentRepo     repositories.IStudentRepository
	companyRepo     repositories.ICompanyRepository
	applicationRepo repositories.IApplicationRepository
	certRepo        repositories.ICertificateRepository
	authz           *auth.AuthorizationService
	logger          zerolog.Logger
	now             func() time.Time
}

// NewExportService creates a new ExportService
func NewExportService(
	studentRepo repositories.IStudentRepository,
	companyRepo repositories.ICompanyRepository,
	applicationRepo repositories.IApplicationRepository,
	certRepo repositories.ICertificateRepository,
	authz *auth.AuthorizationService,
	logger zerolog.Logger,
) ExportService {
	return &exportService{
		studentRepo:     studentRepo,
		companyRepo:     companyRepo,
		applicationRepo: applicationRepo,
		certRepo:        certRepo,
		authz:           authz,
		logger:          logger,
		now:             time.Now,
	}
}

func (s *exportService) Students(ctx context.Context, format export.Format, opts search.Options) (*Artifact, error) {
	students, err := s.studentRepo.List(ctx)
	if err != nil {
		return nil, err
	}
	return s.render("students", "Students", format, export.Rows(selectAll(students, opts), studentColumns), studentColumns)
}

func (s *exportService) Companies(ctx context.Context, format export.Format, opts search.Options) (*Artifact, error) {
	companies, err := s.companyRepo.List(ctx)
	if err != nil {
		return nil, err
	}
	return s.render("companies", "Companies", format, export.Rows(selectAll(companies, opts), companyColumns), companyColumns)
}

func (s *exportService) Applications(ctx context.Context, actor auth.Actor, format export.Format, opts search.Options) (*Artifact, error) {
	scope, err := s.authz.ScopeFor(ctx, actor)
	if err != nil {
		return nil, err
	}
	apps, err := s.applicationRepo.List(ctx, repositories.ApplicationFilter{
		StudentID: scope.StudentID,
		CompanyID: scope.CompanyID,
	})
	if err != nil {
		return nil, err
	}
	return s.render("applications", "Applications", format, export.Rows(selectAll(apps, opts), applicationColumns), applicationColumns)
}

// Resume renders a one-page PDF from the student's profile and certificates
func (s *exportService) Resume(ctx context.Context, actor auth.Actor, studentID int64) (*Artifact, error) {
	if actor.Role == models.RoleCompany {
		return nil, apperrors.ErrPermissionDenied
	}
	if err := s.authz.ValidateStudentOwnership(ctx, actor, studentID); err != nil {
		return nil, err
	}
	student, err := s.studentRepo.GetByID(ctx, studentID)
	if err != nil {
		return nil, err
	}
	certs, err := s.certRepo.List(ctx, &student.ID)
	if err != nil {
		return nil, err
	}

	r := export.Resume{
		Name:           student.Name,
		Email:          student.Email,
		RollNumber:     student.RollNumber,
		Department:     student.Department,
		CGPA:           student.CGPA,
		GraduationYear: student.GraduationYear,
		Skills:         student.Skills,
	}
	if student.Phone != nil {
		r.Phone = *student.Phone
	}
	for _, c := range certs {
		r.Certificates = append(r.Certificates, export.ResumeCertificate{
			Title:    c.Title,
			Issuer:   c.Issuer,
			Year:     c.IssueDate.Year(),
			Verified: c.Verified,
		})
	}
	if student.PlacementStatus == models.PlacementPlaced && student.PlacedCompany != nil {
		r.Placement = "Placed at " + *student.PlacedCompany
		if student.PackageLPA != nil {
			r.Placement += fmt.Sprintf(" (%s LPA)", export.FormatValue(student.PackageLPA))
		}
	}

	var buf bytes.Buffer
	if err := export.WriteResumePDF(&buf, r); err != nil {
		s.logger.Error().Err(err).Int64("studentID", studentID).Msg("Failed to render resume")
		return nil, err
	}
	return &Artifact{
		Filename:    export.FormatPDF.Filename(slug(student.RollNumber) + "-resume"),
		ContentType: export.FormatPDF.ContentType(),
		Body:        buf.Bytes(),
	}, nil
}

func (s *exportService) render(base, title string, format export.Format, rows []export.Row, cols []export.Column) (*Artifact, error) {
	var buf bytes.Buffer
	var err error
	switch format {
	case export.FormatPDF:
		err = export.WritePDF(&buf, title, cols, rows)
	default:
		format = export.FormatCSV
		err = export.WriteCSV(&buf, cols, rows)
	}
	if err != nil {
		s.logger.Error().Err(err).Str("export", base).Msg("Failed to render export")
		return nil, err
	}

	s.logger.Info().Str("export", base).Str("format", string(format)).Int("rows", len(rows)).Msg("Export rendered")
	return &Artifact{
		Filename:    format.Filename(fmt.Sprintf("%s-%s", base, s.now().Format("20060102"))),
		ContentType: format.ContentType(),
		Body:        buf.Bytes(),
	}, nil
}

// selectAll applies the list filters and ordering without paginating
func selectAll[T search.Record](items []T, opts search.Options) []T {
	return search.Sort(search.Filter(items, opts.Criteria), opts.SortBy, opts.Direction)
}

func slug(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	return strings.Map(func(r rune) rune {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') || r == '-' {
			return r
		}
		return '-'
	}, s)
}
