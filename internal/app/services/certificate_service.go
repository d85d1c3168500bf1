package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/yigit/placementhub/internal/app/auth"
	"github.com/yigit/placementhub/internal/app/models"
	"github.com/yigit/placementhub/internal/app/models/dto"
	"github.com/yigit/placementhub/internal/app/repositories"
	"github.com/yigit/placementhub/internal/pkg/apperrors"
	"github.com/yigit/placementhub/internal/pkg/ledger"
	"github.com/yigit/placementhub/internal/pkg/notify"
	"github.com/yigit/placementhub/internal/pkg/search"
)

// LedgerIssuer records a certificate on the (simulated) chain. *ledger.Issuer
// satisfies it.
type LedgerIssuer interface {
	Issue(ctx context.Context, onStage func(ledger.Stage)) (ledger.Receipt, error)
}

// CertificateService manages certificates and their on-chain issuance
type CertificateService interface {
	List(ctx context.Context, actor auth.Actor, opts search.Options) (search.Page[*models.Certificate], error)
	GetByID(ctx context.Context, actor auth.Actor, id int64) (*models.Certificate, error)
	Create(ctx context.Context, req *dto.CreateCertificateRequest) (*models.Certificate, error)
	Delete(ctx context.Context, id int64) error
	Issue(ctx context.Context, id int64) (*dto.IssueAcceptedResponse, error)
	Verify(ctx context.Context, reference string) (*dto.VerificationResponse, error)
	// Close cancels in-flight issuances and waits for them to stop
	Close()
}

// CertificateService implementation. Issuances run on goroutines tied to a
// service-level context so they outlive the HTTP request that started them.
type certificateService struct {
	certRepo    repositories.ICertificateRepository
	studentRepo repositories.IStudentRepository
	authz       *auth.AuthorizationService
	issuer      LedgerIssuer
	notifier    Notifier
	logger      zerolog.Logger

	baseCtx  context.Context
	cancel   context.CancelFunc
	wg       sync.WaitGroup
	mu       sync.Mutex
	inFlight map[int64]bool
}

// NewCertificateService creates a new CertificateService
func NewCertificateService(
	certRepo repositories.ICertificateRepository,
	studentRepo repositories.IStudentRepository,
	authz *auth.AuthorizationService,
	issuer LedgerIssuer,
	notifier Notifier,
	logger zerolog.Logger,
) CertificateService {
	ctx, cancel := context.WithCancel(context.Background())
	return &certificateService{
		certRepo:    certRepo,
		studentRepo: studentRepo,
		authz:       authz,
		issuer:      issuer,
		notifier:    notifier,
		logger:      logger,
		baseCtx:     ctx,
		cancel:      cancel,
		inFlight:    map[int64]bool{},
	}
}

func (s *certificateService) List(ctx context.Context, actor auth.Actor, opts search.Options) (search.Page[*models.Certificate], error) {
	var studentID *int64
	switch actor.Role {
	case models.RoleAdmin:
	case models.RoleStudent:
		student, err := s.authz.StudentFor(ctx, actor)
		if err != nil {
			return search.Page[*models.Certificate]{}, err
		}
		studentID = &student.ID
	default:
		return search.Page[*models.Certificate]{}, apperrors.ErrPermissionDenied
	}

	certs, err := s.certRepo.List(ctx, studentID)
	if err != nil {
		return search.Page[*models.Certificate]{}, err
	}
	return search.Run(certs, opts), nil
}

func (s *certificateService) GetByID(ctx context.Context, actor auth.Actor, id int64) (*models.Certificate, error) {
	cert, err := s.certRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if actor.Role == models.RoleCompany {
		return nil, apperrors.ErrPermissionDenied
	}
	if err := s.authz.ValidateStudentOwnership(ctx, actor, cert.StudentID); err != nil {
		return nil, err
	}
	return cert, nil
}

func (s *certificateService) Create(ctx context.Context, req *dto.CreateCertificateRequest) (*models.Certificate, error) {
	student, err := s.studentRepo.GetByID(ctx, req.StudentID)
	if err != nil {
		return nil, err
	}
	cert := &models.Certificate{
		StudentID:   student.ID,
		StudentName: student.Name,
		Title:       strings.TrimSpace(req.Title),
		Issuer:      strings.TrimSpace(req.Issuer),
		IssueDate:   req.IssueDate,
	}
	if err := s.certRepo.Create(ctx, cert); err != nil {
		return nil, err
	}
	s.logger.Info().Int64("certificateID", cert.ID).Int64("studentID", student.ID).Msg("Certificate created")
	return cert, nil
}

func (s *certificateService) Delete(ctx context.Context, id int64) error {
	s.mu.Lock()
	busy := s.inFlight[id]
	s.mu.Unlock()
	if busy {
		return apperrors.ErrIssuanceInProgress
	}
	return s.certRepo.Delete(ctx, id)
}

// Issue starts issuance in the background and returns immediately. Progress
// is visible through the certificate's issue stage.
func (s *certificateService) Issue(ctx context.Context, id int64) (*dto.IssueAcceptedResponse, error) {
	cert, err := s.certRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if cert.Verified {
		return nil, apperrors.ErrCertificateAlreadyIssued
	}

	s.mu.Lock()
	if s.inFlight[id] {
		s.mu.Unlock()
		return nil, apperrors.ErrIssuanceInProgress
	}
	if s.baseCtx.Err() != nil {
		s.mu.Unlock()
		return nil, fmt.Errorf("certificate service is shutting down: %w", s.baseCtx.Err())
	}
	s.inFlight[id] = true
	s.wg.Add(1)
	s.mu.Unlock()

	if err := s.certRepo.SetStage(ctx, id, string(ledger.StagePreparing)); err != nil {
		s.finish(id)
		return nil, err
	}

	go s.run(cert)

	return &dto.IssueAcceptedResponse{CertificateID: id, Stage: string(ledger.StagePreparing)}, nil
}

func (s *certificateService) finish(id int64) {
	s.mu.Lock()
	delete(s.inFlight, id)
	s.mu.Unlock()
	s.wg.Done()
}

func (s *certificateService) run(cert *models.Certificate) {
	defer s.finish(cert.ID)

	log := s.logger.With().Int64("certificateID", cert.ID).Logger()
	ctx := s.baseCtx

	receipt, err := s.issuer.Issue(ctx, func(stage ledger.Stage) {
		if stage == ledger.StagePreparing || stage == ledger.StageConfirmed {
			return
		}
		if err := s.certRepo.SetStage(ctx, cert.ID, string(stage)); err != nil {
			log.Warn().Err(err).Str("stage", string(stage)).Msg("Failed to record issuance stage")
		}
	})
	if err != nil {
		log.Error().Err(err).Msg("Certificate issuance failed")
		// Record the failure even when the service context is gone
		failCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := s.certRepo.SetStage(failCtx, cert.ID, string(ledger.StageFailed)); err != nil {
			log.Warn().Err(err).Msg("Failed to record failed issuance")
		}
		return
	}

	if err := s.certRepo.MarkIssued(ctx, cert.ID, receipt.TxHash, receipt.BlockNumber, receipt.ConfirmedAt); err != nil {
		log.Error().Err(err).Msg("Failed to store issuance receipt")
		return
	}
	log.Info().Str("txHash", receipt.TxHash).Int64("block", receipt.BlockNumber).Msg("Certificate issued")

	if student, err := s.studentRepo.GetByID(ctx, cert.StudentID); err == nil {
		notifyUser(s.notifier, student.UserID, notify.TypeCertificate, "Certificate verified",
			fmt.Sprintf("%s from %s is now verifiable on-chain.", cert.Title, cert.Issuer),
			"/verify/"+receipt.TxHash)
	}
}

// Verify looks a certificate up by transaction hash or ID. Unknown or
// unissued certificates are reported as invalid rather than as errors.
func (s *certificateService) Verify(ctx context.Context, reference string) (*dto.VerificationResponse, error) {
	ref, ok := ledger.ParseReference(reference)
	if !ok {
		return nil, apperrors.NewBadRequestError("reference must be a transaction hash or certificate ID")
	}

	var (
		cert *models.Certificate
		err  error
	)
	if ref.TxHash != "" {
		cert, err = s.certRepo.GetByHash(ctx, ref.TxHash)
	} else {
		cert, err = s.certRepo.GetByID(ctx, ref.ID)
	}
	if err != nil {
		if errors.Is(err, apperrors.ErrCertificateNotFound) {
			return &dto.VerificationResponse{Valid: false}, nil
		}
		return nil, err
	}

	// the endpoint is public: details are only disclosed once issued on chain
	if !cert.Verified || cert.BlockchainHash == nil {
		return &dto.VerificationResponse{Valid: false}, nil
	}

	resp := &dto.VerificationResponse{
		Valid:          true,
		CertificateID:  cert.ID,
		Title:          cert.Title,
		Issuer:         cert.Issuer,
		StudentName:    cert.StudentName,
		IssueDate:      &cert.IssueDate,
		BlockchainHash: *cert.BlockchainHash,
		IssuedAt:       cert.IssuedAt,
	}
	if cert.BlockNumber != nil {
		resp.BlockNumber = *cert.BlockNumber
	}
	return resp, nil
}

func (s *certificateService) Close() {
	s.mu.Lock()
	s.cancel()
	s.mu.Unlock()
	s.wg.Wait()
}
