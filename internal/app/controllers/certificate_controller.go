package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/yigit/placementhub/internal/app/models/dto"
	"github.com/yigit/placementhub/internal/app/services"
	"github.com/yigit/placementhub/internal/middleware"
	"github.com/yigit/placementhub/internal/pkg/helpers"
)

// CertificateController handles certificates and their on-chain issuance
type CertificateController struct {
	certificateService services.CertificateService
	logger             zerolog.Logger
}

// NewCertificateController creates a new CertificateController
func NewCertificateController(certificateService services.CertificateService, logger zerolog.Logger) *CertificateController {
	return &CertificateController{
		certificateService: certificateService,
		logger:             logger,
	}
}

// List returns certificates visible to the caller
// @Summary List certificates
// @Tags certificates
// @Produce json
// @Security BearerAuth
// @Param q query string false "Free-text search"
// @Param studentId query int false "Student ID"
// @Param verified query bool false "Only issued or only pending certificates"
// @Param page query int false "Page number" default(1)
// @Param size query int false "Page size" default(10)
// @Success 200 {object} dto.APIResponse{data=dto.ListResponse{items=[]models.Certificate}}
// @Router /certificates [get]
func (c *CertificateController) List(ctx *gin.Context) {
	actor, ok := currentActor(ctx)
	if !ok {
		return
	}
	opts := helpers.ParseListOptions(ctx, "studentId", "verified", "stage")

	page, err := c.certificateService.List(ctx.Request.Context(), actor, opts)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respondList(ctx, page, "")
}

// GetByID returns one certificate with its issuance stage
// @Summary Get certificate
// @Tags certificates
// @Produce json
// @Security BearerAuth
// @Param id path int true "Certificate ID"
// @Success 200 {object} dto.APIResponse{data=models.Certificate}
// @Failure 404 {object} dto.ErrorResponse "Certificate not found"
// @Router /certificates/{id} [get]
func (c *CertificateController) GetByID(ctx *gin.Context) {
	actor, ok := currentActor(ctx)
	if !ok {
		return
	}
	id, ok := pathID(ctx, "id")
	if !ok {
		return
	}

	cert, err := c.certificateService.GetByID(ctx.Request.Context(), actor, id)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(cert, ""))
}

// Create records a certificate for a student
// @Summary Create certificate
// @Tags certificates
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.CreateCertificateRequest true "Certificate"
// @Success 201 {object} dto.APIResponse{data=models.Certificate}
// @Failure 404 {object} dto.ErrorResponse "Student not found"
// @Router /certificates [post]
func (c *CertificateController) Create(ctx *gin.Context) {
	var req dto.CreateCertificateRequest
	if !bindJSON(ctx, &req) {
		return
	}

	cert, err := c.certificateService.Create(ctx.Request.Context(), &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusCreated, dto.NewSuccessResponse(cert, "Certificate created successfully"))
}

// Delete removes a certificate that is not being issued
// @Summary Delete certificate
// @Tags certificates
// @Security BearerAuth
// @Param id path int true "Certificate ID"
// @Success 204 "No Content"
// @Failure 409 {object} dto.ErrorResponse "Issuance in progress"
// @Router /certificates/{id} [delete]
func (c *CertificateController) Delete(ctx *gin.Context) {
	id, ok := pathID(ctx, "id")
	if !ok {
		return
	}

	if err := c.certificateService.Delete(ctx.Request.Context(), id); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.Status(http.StatusNoContent)
}

// Issue starts simulated on-chain issuance
// @Summary Issue certificate on chain
// @Description Starts issuance in the background and returns immediately. Poll the certificate or watch notifications for the confirmed stage.
// @Tags certificates
// @Produce json
// @Security BearerAuth
// @Param id path int true "Certificate ID"
// @Success 202 {object} dto.APIResponse{data=dto.IssueAcceptedResponse}
// @Failure 409 {object} dto.ErrorResponse "Already issued or issuance in progress"
// @Router /certificates/{id}/issue [post]
func (c *CertificateController) Issue(ctx *gin.Context) {
	id, ok := pathID(ctx, "id")
	if !ok {
		return
	}

	accepted, err := c.certificateService.Issue(ctx.Request.Context(), id)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	c.logger.Info().Int64("certificateID", id).Msg("Certificate issuance started")
	ctx.JSON(http.StatusAccepted, dto.NewSuccessResponse(accepted, "Issuance started"))
}

// Verify looks a certificate up by transaction hash or ID
// @Summary Verify certificate
// @Description Public endpoint. Unknown references are reported as invalid rather than 404.
// @Tags certificates
// @Produce json
// @Param reference path string true "Transaction hash (0x + 64 hex) or certificate ID"
// @Success 200 {object} dto.APIResponse{data=dto.VerificationResponse}
// @Failure 400 {object} dto.ErrorResponse "Malformed reference"
// @Router /certificates/verify/{reference} [get]
func (c *CertificateController) Verify(ctx *gin.Context) {
	result, err := c.certificateService.Verify(ctx.Request.Context(), ctx.Param("reference"))
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(result, ""))
}
