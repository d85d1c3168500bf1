package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yigit/placementhub/internal/app/models"
	"github.com/yigit/placementhub/internal/app/models/dto"
	"github.com/yigit/placementhub/internal/app/services"
	"github.com/yigit/placementhub/internal/middleware"
)

// DashboardController serves the per-role dashboards
type DashboardController struct {
	dashboardService services.DashboardService
}

// NewDashboardController creates a new DashboardController
func NewDashboardController(dashboardService services.DashboardService) *DashboardController {
	return &DashboardController{dashboardService: dashboardService}
}

// Get returns the dashboard for the caller's role
// @Summary Dashboard
// @Description Admins get placement statistics, students their pipeline and companies their hiring funnel.
// @Tags dashboard
// @Produce json
// @Security BearerAuth
// @Success 200 {object} dto.APIResponse "dto.AdminDashboard, dto.StudentDashboard or dto.CompanyDashboard"
// @Router /dashboard [get]
func (c *DashboardController) Get(ctx *gin.Context) {
	actor, ok := currentActor(ctx)
	if !ok {
		return
	}

	var (
		data interface{}
		err  error
	)
	switch actor.Role {
	case models.RoleAdmin:
		data, err = c.dashboardService.Admin(ctx.Request.Context())
	case models.RoleStudent:
		data, err = c.dashboardService.Student(ctx.Request.Context(), actor)
	case models.RoleCompany:
		data, err = c.dashboardService.Company(ctx.Request.Context(), actor)
	default:
		errorDetail := dto.NewErrorDetail(dto.ErrorCodeForbidden, "Access denied")
		ctx.JSON(http.StatusForbidden, dto.NewErrorResponse(errorDetail))
		return
	}
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(data, ""))
}
