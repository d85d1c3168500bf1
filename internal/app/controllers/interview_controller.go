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

// InterviewController handles interview scheduling
type InterviewController struct {
	interviewService services.InterviewService
}

// NewInterviewController creates a new InterviewController
func NewInterviewController(interviewService services.InterviewService) *InterviewController {
	return &InterviewController{interviewService: interviewService}
}

// List returns interviews visible to the caller
// @Summary List interviews
// @Tags interviews
// @Produce json
// @Security BearerAuth
// @Param status query string false "scheduled, completed or cancelled"
// @Param mode query string false "online, onsite or phone"
// @Param jobId query int false "Job ID"
// @Param from query string false "Scheduled on or after (YYYY-MM-DD)"
// @Param to query string false "Scheduled on or before (YYYY-MM-DD)"
// @Param page query int false "Page number" default(1)
// @Param size query int false "Page size" default(10)
// @Success 200 {object} dto.APIResponse{data=dto.ListResponse{items=[]models.Interview}}
// @Router /interviews [get]
func (c *InterviewController) List(ctx *gin.Context) {
	actor, ok := currentActor(ctx)
	if !ok {
		return
	}
	opts := helpers.ParseListOptions(ctx, "status", "mode", "jobId")
	helpers.WithDateRange(ctx, &opts, "scheduledAt", "from", "to")

	page, err := c.interviewService.List(ctx.Request.Context(), actor, opts)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respondList(ctx, page, "")
}

// GetByID returns one interview
// @Summary Get interview
// @Tags interviews
// @Produce json
// @Security BearerAuth
// @Param id path int true "Interview ID"
// @Success 200 {object} dto.APIResponse{data=models.Interview}
// @Failure 404 {object} dto.ErrorResponse "Interview not found"
// @Router /interviews/{id} [get]
func (c *InterviewController) GetByID(ctx *gin.Context) {
	actor, ok := currentActor(ctx)
	if !ok {
		return
	}
	id, ok := pathID(ctx, "id")
	if !ok {
		return
	}

	interview, err := c.interviewService.GetByID(ctx.Request.Context(), actor, id)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(interview, ""))
}

// Schedule books an interview for an application
// @Summary Schedule interview
// @Tags interviews
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.ScheduleInterviewRequest true "Interview"
// @Success 201 {object} dto.APIResponse{data=models.Interview}
// @Failure 400 {object} dto.ErrorResponse "Interview in the past"
// @Failure 409 {object} dto.ErrorResponse "No capacity left that day"
// @Router /interviews [post]
func (c *InterviewController) Schedule(ctx *gin.Context) {
	actor, ok := currentActor(ctx)
	if !ok {
		return
	}
	var req dto.ScheduleInterviewRequest
	if !bindJSON(ctx, &req) {
		return
	}

	interview, err := c.interviewService.Schedule(ctx.Request.Context(), actor, &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusCreated, dto.NewSuccessResponse(interview, "Interview scheduled"))
}

// Update reschedules, completes or cancels an interview
// @Summary Update interview
// @Tags interviews
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Interview ID"
// @Param request body dto.UpdateInterviewRequest true "Fields to change"
// @Success 200 {object} dto.APIResponse{data=models.Interview}
// @Router /interviews/{id} [patch]
func (c *InterviewController) Update(ctx *gin.Context) {
	actor, ok := currentActor(ctx)
	if !ok {
		return
	}
	id, ok := pathID(ctx, "id")
	if !ok {
		return
	}
	var req dto.UpdateInterviewRequest
	if !bindJSON(ctx, &req) {
		return
	}

	interview, err := c.interviewService.Update(ctx.Request.Context(), actor, id, &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(interview, "Interview updated"))
}

// Availability reports the remaining interview capacity for a job on a day
// @Summary Interview availability
// @Tags interviews
// @Produce json
// @Security BearerAuth
// @Param jobId query int true "Job ID"
// @Param date query string true "Day (YYYY-MM-DD)"
// @Success 200 {object} dto.APIResponse{data=dto.AvailabilityResponse}
// @Failure 400 {object} dto.ErrorResponse "Missing or invalid parameters"
// @Router /interviews/availability [get]
func (c *InterviewController) Availability(ctx *gin.Context) {
	actor, ok := currentActor(ctx)
	if !ok {
		return
	}
	jobID, err := strconv.ParseInt(ctx.Query("jobId"), 10, 64)
	if err != nil || jobID <= 0 {
		errorDetail := dto.NewErrorDetail(dto.ErrorCodeValidationFailed, "Invalid jobId").WithField("jobId")
		ctx.JSON(http.StatusBadRequest, dto.NewErrorResponse(errorDetail))
		return
	}
	day, err := helpers.ParseDate(ctx.Query("date"))
	if err != nil || day == nil {
		errorDetail := dto.NewErrorDetail(dto.ErrorCodeValidationFailed, "Invalid date").
			WithField("date").
			WithDetails("date must be in YYYY-MM-DD format")
		ctx.JSON(http.StatusBadRequest, dto.NewErrorResponse(errorDetail))
		return
	}

	availability, err := c.interviewService.Availability(ctx.Request.Context(), actor, jobID, *day)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(availability, ""))
}
