package controllers

import (
	"github.com/gin-gonic/gin"

	"github.com/yigit/placementhub/internal/app/services"
	"github.com/yigit/placementhub/internal/middleware"
	"github.com/yigit/placementhub/internal/pkg/apperrors"
	"github.com/yigit/placementhub/internal/pkg/export"
	"github.com/yigit/placementhub/internal/pkg/helpers"
)

// ExportController streams CSV and PDF reports. Exports accept the same
// filters as the matching list endpoint and ignore pagination.
type ExportController struct {
	exportService services.ExportService
}

// NewExportController creates a new ExportController
func NewExportController(exportService services.ExportService) *ExportController {
	return &ExportController{exportService: exportService}
}

func parseFormat(ctx *gin.Context) (export.Format, bool) {
	format, err := export.ParseFormat(ctx.Query("format"))
	if err != nil {
		middleware.HandleAPIError(ctx, apperrors.NewBadRequestError(err.Error()))
		return "", false
	}
	return format, true
}

// Students exports the student directory
// @Summary Export students
// @Tags exports
// @Produce text/csv
// @Produce application/pdf
// @Security BearerAuth
// @Param format query string false "csv (default) or pdf"
// @Param department query string false "Department"
// @Param placementStatus query string false "Placement status"
// @Param minCgpa query number false "Minimum CGPA"
// @Param maxCgpa query number false "Maximum CGPA"
// @Success 200 {file} file
// @Router /exports/students [get]
func (c *ExportController) Students(ctx *gin.Context) {
	format, ok := parseFormat(ctx)
	if !ok {
		return
	}
	opts := helpers.ParseListOptions(ctx, "department", "placementStatus", "graduationYear")
	helpers.WithRange(ctx, &opts, "cgpa", "minCgpa", "maxCgpa")

	artifact, err := c.exportService.Students(ctx.Request.Context(), format, opts)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	sendArtifact(ctx, artifact)
}

// Companies exports the company directory
// @Summary Export companies
// @Tags exports
// @Produce text/csv
// @Produce application/pdf
// @Security BearerAuth
// @Param format query string false "csv (default) or pdf"
// @Param industry query string false "Industry"
// @Param status query string false "Status"
// @Success 200 {file} file
// @Router /exports/companies [get]
func (c *ExportController) Companies(ctx *gin.Context) {
	format, ok := parseFormat(ctx)
	if !ok {
		return
	}
	opts := helpers.ParseListOptions(ctx, "industry", "status")

	artifact, err := c.exportService.Companies(ctx.Request.Context(), format, opts)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	sendArtifact(ctx, artifact)
}

// Applications exports the applications visible to the caller
// @Summary Export applications
// @Tags exports
// @Produce text/csv
// @Produce application/pdf
// @Security BearerAuth
// @Param format query string false "csv (default) or pdf"
// @Param status query string false "Status"
// @Param jobId query int false "Job ID"
// @Success 200 {file} file
// @Router /exports/applications [get]
func (c *ExportController) Applications(ctx *gin.Context) {
	actor, ok := currentActor(ctx)
	if !ok {
		return
	}
	format, ok := parseFormat(ctx)
	if !ok {
		return
	}
	opts := helpers.ParseListOptions(ctx, "status", "jobId", "companyId", "department")
	helpers.WithDateRange(ctx, &opts, "appliedAt", "appliedFrom", "appliedTo")

	artifact, err := c.exportService.Applications(ctx.Request.Context(), actor, format, opts)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	sendArtifact(ctx, artifact)
}
