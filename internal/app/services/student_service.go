package services

import (
	"context"
	"errors"
	"mime/multipart"
	"strings"

	"github.com/rs/zerolog"

	"github.com/yigit/placementhub/internal/app/auth"
	"github.com/yigit/placementhub/internal/app/models"
	"github.com/yigit/placementhub/internal/app/models/dto"
	"github.com/yigit/placementhub/internal/app/repositories"
	"github.com/yigit/placementhub/internal/pkg/apperrors"
	"github.com/yigit/placementhub/internal/pkg/filestorage"
	"github.com/yigit/placementhub/internal/pkg/helpers"
	"github.com/yigit/placementhub/internal/pkg/search"
)

// ResumeDir is the storage subdirectory for uploaded resumes
const ResumeDir = "resumes"

// StudentService manages student records
type StudentService interface {
	List(ctx context.Context, opts search.Options) (search.Page[*models.Student], error)
	GetByID(ctx context.Context, actor auth.Actor, id int64) (*models.Student, error)
	GetOwn(ctx context.Context, actor auth.Actor) (*models.Student, error)
	Create(ctx context.Context, req *dto.CreateStudentRequest) (*models.Student, error)
	Update(ctx context.Context, id int64, req *dto.UpdateStudentRequest) (*models.Student, error)
	UpdateOwn(ctx context.Context, actor auth.Actor, req *dto.UpdateOwnProfileRequest) (*models.Student, error)
	Delete(ctx context.Context, id int64) error
	UploadResume(ctx context.Context, actor auth.Actor, id int64, file *multipart.FileHeader) (*models.Student, error)
}

type studentService struct {
	studentRepo repositories.IStudentRepository
	authz       *auth.AuthorizationService
	storage     filestorage.FileStorage
	logger      zerolog.Logger
}

// NewStudentService creates a new StudentService
func NewStudentService(
	studentRepo repositories.IStudentRepository,
	authz *auth.AuthorizationService,
	storage filestorage.FileStorage,
	logger zerolog.Logger,
) StudentService {
	return &studentService{
		studentRepo: studentRepo,
		authz:       authz,
		storage:     storage,
		logger:      logger,
	}
}

func (s *studentService) List(ctx context.Context, opts search.Options) (search.Page[*models.Student], error) {
	students, err := s.studentRepo.List(ctx)
	if err != nil {
		return search.Page[*models.Student]{}, err
	}
	return search.Run(students, opts), nil
}

func (s *studentService) GetByID(ctx context.Context, actor auth.Actor, id int64) (*models.Student, error) {
	if actor.Role == models.RoleStudent {
		if err := s.authz.ValidateStudentOwnership(ctx, actor, id); err != nil {
			return nil, err
		}
	}
	return s.studentRepo.GetByID(ctx, id)
}

func (s *studentService) GetOwn(ctx context.Context, actor auth.Actor) (*models.Student, error) {
	return s.authz.StudentFor(ctx, actor)
}

func (s *studentService) Create(ctx context.Context, req *dto.CreateStudentRequest) (*models.Student, error) {
	status := models.PlacementStatus(req.PlacementStatus)
	if status == "" {
		status = models.PlacementUnplaced
	}

	student := &models.Student{
		Name:            strings.TrimSpace(req.Name),
		Email:           normalizeEmail(req.Email),
		Phone:           helpers.NilIfEmpty(strings.TrimSpace(req.Phone)),
		RollNumber:      strings.ToUpper(strings.TrimSpace(req.RollNumber)),
		Department:      strings.TrimSpace(req.Department),
		CGPA:            req.CGPA,
		GraduationYear:  req.GraduationYear,
		PlacementStatus: status,
		Skills:          cleanList(req.Skills),
	}
	if err := s.studentRepo.Create(ctx, student); err != nil {
		return nil, err
	}
	s.logger.Info().Int64("studentID", student.ID).Str("rollNumber", student.RollNumber).Msg("Student created")
	return student, nil
}

func (s *studentService) Update(ctx context.Context, id int64, req *dto.UpdateStudentRequest) (*models.Student, error) {
	student, err := s.studentRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		student.Name = strings.TrimSpace(*req.Name)
	}
	if req.Email != nil {
		student.Email = normalizeEmail(*req.Email)
	}
	if req.Phone != nil {
		student.Phone = helpers.NilIfEmpty(strings.TrimSpace(*req.Phone))
	}
	if req.Department != nil {
		student.Department = strings.TrimSpace(*req.Department)
	}
	if req.CGPA != nil {
		student.CGPA = *req.CGPA
	}
	if req.GraduationYear != nil {
		student.GraduationYear = *req.GraduationYear
	}
	if req.PlacementStatus != nil {
		student.PlacementStatus = models.PlacementStatus(*req.PlacementStatus)
	}
	if req.PlacedCompany != nil {
		student.PlacedCompany = helpers.NilIfEmpty(strings.TrimSpace(*req.PlacedCompany))
	}
	if req.PackageLPA != nil {
		student.PackageLPA = req.PackageLPA
	}
	if req.Skills != nil {
		student.Skills = cleanList(*req.Skills)
	}

	// Placement details only make sense for placed students
	if student.PlacementStatus != models.PlacementPlaced {
		student.PlacedCompany = nil
		student.PackageLPA = nil
	}

	if err := s.studentRepo.Update(ctx, student); err != nil {
		return nil, err
	}
	return student, nil
}

func (s *studentService) UpdateOwn(ctx context.Context, actor auth.Actor, req *dto.UpdateOwnProfileRequest) (*models.Student, error) {
	student, err := s.authz.StudentFor(ctx, actor)
	if err != nil {
		return nil, err
	}
	if req.Phone != nil {
		student.Phone = helpers.NilIfEmpty(strings.TrimSpace(*req.Phone))
	}
	if req.Skills != nil {
		student.Skills = cleanList(*req.Skills)
	}
	if err := s.studentRepo.Update(ctx, student); err != nil {
		return nil, err
	}
	return student, nil
}

func (s *studentService) Delete(ctx context.Context, id int64) error {
	student, err := s.studentRepo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if err := s.studentRepo.Delete(ctx, id); err != nil {
		return err
	}
	if student.ResumeURL != nil {
		if err := s.storage.DeleteFile(*student.ResumeURL); err != nil {
			s.logger.Warn().Err(err).Int64("studentID", id).Msg("Failed to delete resume file")
		}
	}
	s.logger.Info().Int64("studentID", id).Msg("Student deleted")
	return nil
}

// UploadResume stores a new resume and replaces the previous one
func (s *studentService) UploadResume(ctx context.Context, actor auth.Actor, id int64, file *multipart.FileHeader) (*models.Student, error) {
	if file == nil {
		return nil, apperrors.NewBadRequestError("resume file is required")
	}
	if err := s.authz.ValidateStudentOwnership(ctx, actor, id); err != nil {
		return nil, err
	}
	student, err := s.studentRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	url, err := s.storage.SaveFileWithPath(file, ResumeDir)
	if err != nil {
		if errors.Is(err, filestorage.ErrFileTooLarge) || errors.Is(err, filestorage.ErrFileTypeNotAllowed) {
			return nil, apperrors.NewBadRequestError(err.Error())
		}
		return nil, err
	}

	if err := s.studentRepo.UpdateResumeURL(ctx, id, url); err != nil {
		_ = s.storage.DeleteFile(url)
		return nil, err
	}
	if student.ResumeURL != nil {
		if err := s.storage.DeleteFile(*student.ResumeURL); err != nil {
			s.logger.Warn().Err(err).Int64("studentID", id).Msg("Failed to delete previous resume")
		}
	}
	student.ResumeURL = &url
	return student, nil
}

// cleanList trims entries and drops blanks and case-insensitive duplicates
func cleanList(in []string) []string {
	out := make([]string, 0, len(in))
	seen := map[string]bool{}
	for _, v := range in {
		v = strings.TrimSpace(v)
		key := strings.ToLower(v)
		if v == "" || seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, v)
	}
	return out
}
