package controllers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/yigit/placementhub/internal/app/models/dto"
	"github.com/yigit/placementhub/internal/app/services"
	"github.com/yigit/placementhub/internal/middleware"
	"github.com/yigit/placementhub/internal/pkg/helpers"
)

// JobController handles job postings
type JobController struct {
	jobService services.JobService
}

// NewJobController creates a new JobController
func NewJobController(jobService services.JobService) *JobController {
	return &JobController{jobService: jobService}
}

// List returns a filtered page of job postings
// @Summary List jobs
// @Description Students and companies only see open postings and their own company's postings respectively.
// @Tags jobs
// @Produce json
// @Security BearerAuth
// @Param q query string false "Free-text search"
// @Param type query string false "full_time, internship or contract"
// @Param status query string false "open or closed"
// @Param companyId query int false "Company ID"
// @Param minPackage query number false "Minimum package (LPA)"
// @Param maxPackage query number false "Maximum package (LPA)"
// @Param deadlineFrom query string false "Deadline from (YYYY-MM-DD)"
// @Param deadlineTo query string false "Deadline to (YYYY-MM-DD)"
// @Param sortBy query string false "Field to sort by"
// @Param sortDir query string false "asc or desc"
// @Param page query int false "Page number" default(1)
// @Param size query int false "Page size" default(10)
// @Success 200 {object} dto.APIResponse{data=dto.ListResponse{items=[]models.Job}}
// @Router /jobs [get]
func (c *JobController) List(ctx *gin.Context) {
	actor, ok := currentActor(ctx)
	if !ok {
		return
	}
	opts := helpers.ParseListOptions(ctx, "type", "status", "companyId", "location")
	helpers.WithRange(ctx, &opts, "package", "minPackage", "maxPackage")
	helpers.WithDateRange(ctx, &opts, "deadline", "deadlineFrom", "deadlineTo")

	page, err := c.jobService.List(ctx.Request.Context(), actor, opts)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respondList(ctx, page, "")
}

// Eligible lists open jobs annotated with the student's eligibility
// @Summary Jobs I can apply to
// @Tags jobs
// @Produce json
// @Security BearerAuth
// @Param includeIneligible query bool false "Also return jobs the student cannot apply to, with the reason"
// @Success 200 {object} dto.APIResponse{data=[]dto.EligibleJobResponse}
// @Failure 403 {object} dto.ErrorResponse "Students only"
// @Router /jobs/eligible [get]
func (c *JobController) Eligible(ctx *gin.Context) {
	actor, ok := currentActor(ctx)
	if !ok {
		return
	}
	includeIneligible, _ := strconv.ParseBool(ctx.Query("includeIneligible"))

	jobs, err := c.jobService.Eligible(ctx.Request.Context(), actor, includeIneligible)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(jobs, ""))
}

// GetByID returns one job posting
// @Summary Get job
// @Tags jobs
// @Produce json
// @Security BearerAuth
// @Param id path int true "Job ID"
// @Success 200 {object} dto.APIResponse{data=models.Job}
// @Failure 404 {object} dto.ErrorResponse "Job not found"
// @Router /jobs/{id} [get]
func (c *JobController) GetByID(ctx *gin.Context) {
	actor, ok := currentActor(ctx)
	if !ok {
		return
	}
	id, ok := pathID(ctx, "id")
	if !ok {
		return
	}

	job, err := c.jobService.GetByID(ctx.Request.Context(), actor, id)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(job, ""))
}

// Create posts a new job
// @Summary Create job
// @Tags jobs
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.CreateJobRequest true "Job"
// @Success 201 {object} dto.APIResponse{data=models.Job}
// @Failure 400 {object} dto.ErrorResponse "Invalid request data"
// @Failure 422 {object} dto.ErrorResponse "Company is not active"
// @Router /jobs [post]
func (c *JobController) Create(ctx *gin.Context) {
	actor, ok := currentActor(ctx)
	if !ok {
		return
	}
	var req dto.CreateJobRequest
	if !bindJSON(ctx, &req) {
		return
	}

	job, err := c.jobService.Create(ctx.Request.Context(), actor, &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusCreated, dto.NewSuccessResponse(job, "Job created successfully"))
}

// Update edits a job posting
// @Summary Update job
// @Tags jobs
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Job ID"
// @Param request body dto.UpdateJobRequest true "Fields to change"
// @Success 200 {object} dto.APIResponse{data=models.Job}
// @Failure 403 {object} dto.ErrorResponse "Forbidden"
// @Router /jobs/{id} [put]
func (c *JobController) Update(ctx *gin.Context) {
	actor, ok := currentActor(ctx)
	if !ok {
		return
	}
	id, ok := pathID(ctx, "id")
	if !ok {
		return
	}
	var req dto.UpdateJobRequest
	if !bindJSON(ctx, &req) {
		return
	}

	job, err := c.jobService.Update(ctx.Request.Context(), actor, id, &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(job, "Job updated successfully"))
}

// Close stops a posting from accepting applications
// @Summary Close job
// @Tags jobs
// @Produce json
// @Security BearerAuth
// @Param id path int true "Job ID"
// @Success 200 {object} dto.APIResponse{data=models.Job}
// @Router /jobs/{id}/close [post]
func (c *JobController) Close(ctx *gin.Context) {
	actor, ok := currentActor(ctx)
	if !ok {
		return
	}
	id, ok := pathID(ctx, "id")
	if !ok {
		return
	}

	job, err := c.jobService.Close(ctx.Request.Context(), actor, id)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(job, "Job closed"))
}

// Delete removes a job posting without applications
// @Summary Delete job
// @Tags jobs
// @Security BearerAuth
// @Param id path int true "Job ID"
// @Success 204 "No Content"
// @Failure 409 {object} dto.ErrorResponse "Job has applications"
// @Router /jobs/{id} [delete]
func (c *JobController) Delete(ctx *gin.Context) {
	actor, ok := currentActor(ctx)
	if !ok {
		return
	}
	id, ok := pathID(ctx, "id")
	if !ok {
		return
	}

	if err := c.jobService.Delete(ctx.Request.Context(), actor, id); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.Status(http.StatusNoContent)
}
