package routes

import (
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	_ "github.com/yigit/placementhub/docs" // registers swagger docs
)

// SetupSwagger serves the placement API docs under /swagger. The UI opens
// with models collapsed since the DTO list is long.
func SetupSwagger(router *gin.Engine) {
	handler := ginSwagger.WrapHandler(swaggerFiles.Handler,
		ginSwagger.DefaultModelsExpandDepth(-1),
		ginSwagger.PersistAuthorization(true),
	)
	router.GET("/swagger/*any", handler)
}
