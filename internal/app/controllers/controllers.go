// Package controllers handles HTTP request handling
package controllers

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yigit/placementhub/internal/app/auth"
	"github.com/yigit/placementhub/internal/app/models/dto"
	"github.com/yigit/placementhub/internal/app/services"
	"github.com/yigit/placementhub/internal/middleware"
	"github.com/yigit/placementhub/internal/pkg/helpers"
	"github.com/yigit/placementhub/internal/pkg/search"
)

// currentActor returns the authenticated caller or writes a 401
func currentActor(ctx *gin.Context) (auth.Actor, bool) {
	actor, ok := middleware.ActorFromContext(ctx)
	if !ok {
		errorDetail := dto.NewErrorDetail(dto.ErrorCodeUnauthorized, "Authentication required").
			WithDetails("User information not found")
		ctx.JSON(http.StatusUnauthorized, dto.NewErrorResponse(errorDetail))
	}
	return actor, ok
}

func pathID(ctx *gin.Context, name string) (int64, bool) {
	id, ok := helpers.ParseID(ctx, name)
	if !ok {
		middleware.HandleInvalidID(ctx, name)
	}
	return id, ok
}

func bindJSON(ctx *gin.Context, req interface{}) bool {
	if err := ctx.ShouldBindJSON(req); err != nil {
		middleware.HandleBindError(ctx, err)
		return false
	}
	return true
}

func respondList[T any](ctx *gin.Context, page search.Page[T], message string) {
	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(dto.PaginatedResponse[T]{
		Items:      page.Items,
		Pagination: helpers.PaginationFromPage(page),
	}, message))
}

// sendArtifact streams an export as a download
func sendArtifact(ctx *gin.Context, a *services.Artifact) {
	ctx.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", a.Filename))
	ctx.Data(http.StatusOK, a.ContentType, a.Body)
}
