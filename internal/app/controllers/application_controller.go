package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/yigit/placementhub/internal/app/models"
	"github.com/yigit/placementhub/internal/app/models/dto"
	"github.com/yigit/placementhub/internal/app/services"
	"github.com/yigit/placementhub/internal/middleware"
	"github.com/yigit/placementhub/internal/pkg/helpers"
)

// ApplicationController handles job applications
type ApplicationController struct {
	applicationService services.ApplicationService
	logger             zerolog.Logger
}

// NewApplicationController creates a new ApplicationController
func NewApplicationController(applicationService services.ApplicationService, logger zerolog.Logger) *ApplicationController {
	return &ApplicationController{
		applicationService: applicationService,
		logger:             logger,
	}
}

// List returns applications visible to the caller
// @Summary List applications
// @Description Admins see all, companies see applications to their jobs, students see their own.
// @Tags applications
// @Produce json
// @Security BearerAuth
// @Param q query string false "Free-text search"
// @Param status query string false "applied, shortlisted, interviewed, selected or rejected"
// @Param jobId query int false "Job ID"
// @Param department query string false "Applicant department"
// @Param appliedFrom query string false "Applied on or after (YYYY-MM-DD)"
// @Param appliedTo query string false "Applied on or before (YYYY-MM-DD)"
// @Param sortBy query string false "Field to sort by"
// @Param sortDir query string false "asc or desc"
// @Param page query int false "Page number" default(1)
// @Param size query int false "Page size" default(10)
// @Success 200 {object} dto.APIResponse{data=dto.ListResponse{items=[]models.Application}}
// @Router /applications [get]
func (c *ApplicationController) List(ctx *gin.Context) {
	actor, ok := currentActor(ctx)
	if !ok {
		return
	}
	opts := helpers.ParseListOptions(ctx, "status", "jobId", "companyId", "department")
	helpers.WithDateRange(ctx, &opts, "appliedAt", "appliedFrom", "appliedTo")

	page, err := c.applicationService.List(ctx.Request.Context(), actor, opts)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respondList(ctx, page, "")
}

// GetByID returns one application
// @Summary Get application
// @Tags applications
// @Produce json
// @Security BearerAuth
// @Param id path int true "Application ID"
// @Success 200 {object} dto.APIResponse{data=models.Application}
// @Failure 404 {object} dto.ErrorResponse "Application not found"
// @Router /applications/{id} [get]
func (c *ApplicationController) GetByID(ctx *gin.Context) {
	actor, ok := currentActor(ctx)
	if !ok {
		return
	}
	id, ok := pathID(ctx, "id")
	if !ok {
		return
	}

	app, err := c.applicationService.GetByID(ctx.Request.Context(), actor, id)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(app, ""))
}

// Apply submits the student's application to a job
// @Summary Apply to job
// @Tags applications
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.ApplyRequest true "Job to apply to"
// @Success 201 {object} dto.APIResponse{data=models.Application}
// @Failure 409 {object} dto.ErrorResponse "Already applied"
// @Failure 422 {object} dto.ErrorResponse "Not eligible or job closed"
// @Router /applications [post]
func (c *ApplicationController) Apply(ctx *gin.Context) {
	actor, ok := currentActor(ctx)
	if !ok {
		return
	}
	var req dto.ApplyRequest
	if !bindJSON(ctx, &req) {
		return
	}

	app, err := c.applicationService.Apply(ctx.Request.Context(), actor, req.JobID)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	c.logger.Info().Int64("applicationID", app.ID).Int64("jobID", req.JobID).Msg("Application submitted")
	ctx.JSON(http.StatusCreated, dto.NewSuccessResponse(app, "Application submitted successfully"))
}

// Withdraw deletes an application that has not progressed yet
// @Summary Withdraw application
// @Tags applications
// @Security BearerAuth
// @Param id path int true "Application ID"
// @Success 204 "No Content"
// @Failure 422 {object} dto.ErrorResponse "Application can no longer be withdrawn"
// @Router /applications/{id} [delete]
func (c *ApplicationController) Withdraw(ctx *gin.Context) {
	actor, ok := currentActor(ctx)
	if !ok {
		return
	}
	id, ok := pathID(ctx, "id")
	if !ok {
		return
	}

	if err := c.applicationService.Withdraw(ctx.Request.Context(), actor, id); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.Status(http.StatusNoContent)
}

// UpdateStatus moves an application through the hiring pipeline
// @Summary Update application status
// @Description Notifies and emails the student. Selecting marks the student placed.
// @Tags applications
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Application ID"
// @Param request body dto.UpdateApplicationStatusRequest true "New status"
// @Success 200 {object} dto.APIResponse{data=models.Application}
// @Failure 422 {object} dto.ErrorResponse "Invalid status transition"
// @Router /applications/{id}/status [patch]
func (c *ApplicationController) UpdateStatus(ctx *gin.Context) {
	actor, ok := currentActor(ctx)
	if !ok {
		return
	}
	id, ok := pathID(ctx, "id")
	if !ok {
		return
	}
	var req dto.UpdateApplicationStatusRequest
	if !bindJSON(ctx, &req) {
		return
	}

	app, err := c.applicationService.UpdateStatus(ctx.Request.Context(), actor, id, models.ApplicationStatus(req.Status), req.Remarks)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(app, "Application status updated"))
}

// BulkUpdateStatus applies one status change to many applications
// @Summary Bulk update application status
// @Description Each application is updated independently; failures are reported per ID.
// @Tags applications
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.BulkStatusRequest true "Applications and status"
// @Success 200 {object} dto.APIResponse{data=dto.BulkStatusResult}
// @Router /applications/bulk-status [patch]
func (c *ApplicationController) BulkUpdateStatus(ctx *gin.Context) {
	actor, ok := currentActor(ctx)
	if !ok {
		return
	}
	var req dto.BulkStatusRequest
	if !bindJSON(ctx, &req) {
		return
	}

	result := c.applicationService.BulkUpdateStatus(ctx.Request.Context(), actor, &req)
	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(result, ""))
}
