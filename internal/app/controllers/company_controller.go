package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yigit/placementhub/internal/app/models/dto"
	"github.com/yigit/placementhub/internal/app/services"
	"github.com/yigit/placementhub/internal/middleware"
	"github.com/yigit/placementhub/internal/pkg/helpers"
)

// CompanyController handles recruiting companies
type CompanyController struct {
	companyService services.CompanyService
}

// NewCompanyController creates a new CompanyController
func NewCompanyController(companyService services.CompanyService) *CompanyController {
	return &CompanyController{companyService: companyService}
}

// List returns a filtered page of companies
// @Summary List companies
// @Tags companies
// @Produce json
// @Security BearerAuth
// @Param q query string false "Free-text search"
// @Param industry query string false "Industry"
// @Param status query string false "active, inactive or blacklisted"
// @Param sortBy query string false "Field to sort by"
// @Param sortDir query string false "asc or desc"
// @Param page query int false "Page number" default(1)
// @Param size query int false "Page size" default(10)
// @Success 200 {object} dto.APIResponse{data=dto.ListResponse{items=[]models.Company}}
// @Router /companies [get]
func (c *CompanyController) List(ctx *gin.Context) {
	opts := helpers.ParseListOptions(ctx, "industry", "status")

	page, err := c.companyService.List(ctx.Request.Context(), opts)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respondList(ctx, page, "")
}

// GetByID returns one company
// @Summary Get company
// @Tags companies
// @Produce json
// @Security BearerAuth
// @Param id path int true "Company ID"
// @Success 200 {object} dto.APIResponse{data=models.Company}
// @Failure 404 {object} dto.ErrorResponse "Company not found"
// @Router /companies/{id} [get]
func (c *CompanyController) GetByID(ctx *gin.Context) {
	id, ok := pathID(ctx, "id")
	if !ok {
		return
	}

	company, err := c.companyService.GetByID(ctx.Request.Context(), id)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(company, ""))
}

// GetOwn returns the recruiter's company
// @Summary My company
// @Tags companies
// @Produce json
// @Security BearerAuth
// @Success 200 {object} dto.APIResponse{data=models.Company}
// @Router /companies/me [get]
func (c *CompanyController) GetOwn(ctx *gin.Context) {
	actor, ok := currentActor(ctx)
	if !ok {
		return
	}

	company, err := c.companyService.GetOwn(ctx.Request.Context(), actor)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(company, ""))
}

// Create adds a company
// @Summary Create company
// @Tags companies
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.CreateCompanyRequest true "Company"
// @Success 201 {object} dto.APIResponse{data=models.Company}
// @Failure 409 {object} dto.ErrorResponse "Company already exists"
// @Router /companies [post]
func (c *CompanyController) Create(ctx *gin.Context) {
	var req dto.CreateCompanyRequest
	if !bindJSON(ctx, &req) {
		return
	}

	company, err := c.companyService.Create(ctx.Request.Context(), &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusCreated, dto.NewSuccessResponse(company, "Company created successfully"))
}

// Update edits a company. Recruiters may only edit their own.
// @Summary Update company
// @Tags companies
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Company ID"
// @Param request body dto.UpdateCompanyRequest true "Fields to change"
// @Success 200 {object} dto.APIResponse{data=models.Company}
// @Failure 403 {object} dto.ErrorResponse "Forbidden"
// @Router /companies/{id} [put]
func (c *CompanyController) Update(ctx *gin.Context) {
	actor, ok := currentActor(ctx)
	if !ok {
		return
	}
	id, ok := pathID(ctx, "id")
	if !ok {
		return
	}
	var req dto.UpdateCompanyRequest
	if !bindJSON(ctx, &req) {
		return
	}

	company, err := c.companyService.Update(ctx.Request.Context(), actor, id, &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(company, "Company updated successfully"))
}

// Delete removes a company without job postings
// @Summary Delete company
// @Tags companies
// @Security BearerAuth
// @Param id path int true "Company ID"
// @Success 204 "No Content"
// @Failure 409 {object} dto.ErrorResponse "Company has job postings"
// @Router /companies/{id} [delete]
func (c *CompanyController) Delete(ctx *gin.Context) {
	id, ok := pathID(ctx, "id")
	if !ok {
		return
	}

	if err := c.companyService.Delete(ctx.Request.Context(), id); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.Status(http.StatusNoContent)
}
