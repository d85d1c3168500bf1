package routes

import (
	"github.com/gin-gonic/gin"

	"github.com/yigit/placementhub/internal/app/controllers"
	"github.com/yigit/placementhub/internal/app/models"
	"github.com/yigit/placementhub/internal/middleware"
)

// Controllers groups the HTTP handlers mounted by SetupRouter
type Controllers struct {
	Auth         *controllers.AuthController
	User         *controllers.UserController
	Student      *controllers.StudentController
	Company      *controllers.CompanyController
	Job          *controllers.JobController
	Application  *controllers.ApplicationController
	Certificate  *controllers.CertificateController
	Interview    *controllers.InterviewController
	Dashboard    *controllers.DashboardController
	Notification *controllers.NotificationController
	Export       *controllers.ExportController
	// Stream upgrades /notifications/ws
	Stream gin.HandlerFunc
}

// SetupRouter configures all application routes
func SetupRouter(router *gin.Engine, c Controllers, authMiddleware *middleware.AuthMiddleware) {
	v1 := router.Group("/api/v1")

	admin := authMiddleware.RoleRequired(models.RoleAdmin)
	adminOrCompany := authMiddleware.RoleRequired(models.RoleAdmin, models.RoleCompany)
	studentOnly := authMiddleware.RoleRequired(models.RoleStudent)
	companyOnly := authMiddleware.RoleRequired(models.RoleCompany)

	// --- Public routes ---
	auth := v1.Group("/auth")
	{
		auth.POST("/register/student", c.Auth.RegisterStudent)
		auth.POST("/register/company", c.Auth.RegisterCompany)
		auth.POST("/login", c.Auth.Login)
		auth.POST("/refresh-token", c.Auth.RefreshToken)
		auth.POST("/logout", c.Auth.Logout)
		auth.GET("/verify-email", c.Auth.VerifyEmail)
		auth.POST("/resend-verification", c.Auth.ResendVerificationEmail)
		auth.POST("/forgot-password", c.Auth.ForgotPassword)
		auth.POST("/reset-password", c.Auth.ResetPassword)
	}
	v1.GET("/certificates/verify/:reference", c.Certificate.Verify)

	// --- Authenticated routes ---
	authenticated := v1.Group("")
	authenticated.Use(authMiddleware.JWTAuth())

	// The profile stays reachable before the email is verified
	authenticated.GET("/auth/me", c.Auth.Profile)
	authenticated.POST("/auth/change-password", c.User.ChangePassword)

	verified := authenticated.Group("")
	verified.Use(authMiddleware.EmailVerificationRequired())

	verified.GET("/dashboard", c.Dashboard.Get)

	users := verified.Group("/users", admin)
	{
		users.GET("", c.User.List)
		users.GET("/:id", c.User.GetByID)
		users.PATCH("/:id/status", c.User.UpdateStatus)
	}

	students := verified.Group("/students")
	{
		students.GET("/me", studentOnly, c.Student.GetOwn)
		students.PUT("/me", studentOnly, c.Student.UpdateOwn)
		students.GET("", admin, c.Student.List)
		students.POST("", admin, c.Student.Create)
		students.GET("/:id", c.Student.GetByID)
		students.PUT("/:id", admin, c.Student.Update)
		students.DELETE("/:id", admin, c.Student.Delete)
		students.POST("/:id/resume", c.Student.UploadResume)
		students.GET("/:id/resume", c.Student.Resume)
	}

	companies := verified.Group("/companies")
	{
		companies.GET("/me", companyOnly, c.Company.GetOwn)
		companies.GET("", c.Company.List)
		companies.POST("", admin, c.Company.Create)
		companies.GET("/:id", c.Company.GetByID)
		companies.PUT("/:id", adminOrCompany, c.Company.Update)
		companies.DELETE("/:id", admin, c.Company.Delete)
	}

	jobs := verified.Group("/jobs")
	{
		jobs.GET("", c.Job.List)
		jobs.GET("/eligible", studentOnly, c.Job.Eligible)
		jobs.GET("/:id", c.Job.GetByID)
		jobs.POST("", adminOrCompany, c.Job.Create)
		jobs.PUT("/:id", adminOrCompany, c.Job.Update)
		jobs.POST("/:id/close", adminOrCompany, c.Job.Close)
		jobs.DELETE("/:id", adminOrCompany, c.Job.Delete)
	}

	applications := verified.Group("/applications")
	{
		applications.GET("", c.Application.List)
		applications.POST("", studentOnly, c.Application.Apply)
		applications.PATCH("/bulk-status", adminOrCompany, c.Application.BulkUpdateStatus)
		applications.GET("/:id", c.Application.GetByID)
		applications.DELETE("/:id", studentOnly, c.Application.Withdraw)
		applications.PATCH("/:id/status", adminOrCompany, c.Application.UpdateStatus)
	}

	certificates := verified.Group("/certificates")
	{
		certificates.GET("", c.Certificate.List)
		certificates.GET("/:id", c.Certificate.GetByID)
		certificates.POST("", admin, c.Certificate.Create)
		certificates.DELETE("/:id", admin, c.Certificate.Delete)
		certificates.POST("/:id/issue", admin, c.Certificate.Issue)
	}

	interviews := verified.Group("/interviews")
	{
		interviews.GET("", c.Interview.List)
		interviews.GET("/availability", adminOrCompany, c.Interview.Availability)
		interviews.GET("/:id", c.Interview.GetByID)
		interviews.POST("", adminOrCompany, c.Interview.Schedule)
		interviews.PATCH("/:id", adminOrCompany, c.Interview.Update)
	}

	notifications := authenticated.Group("/notifications")
	{
		notifications.GET("", c.Notification.List)
		notifications.GET("/unread-count", c.Notification.UnreadCount)
		notifications.GET("/ws", c.Stream)
		notifications.PATCH("/read-all", c.Notification.MarkAllAsRead)
		notifications.PATCH("/:id/read", c.Notification.MarkAsRead)
		notifications.DELETE("/:id", c.Notification.Delete)
		notifications.POST("/broadcast", admin, c.Notification.Broadcast)
	}

	exports := verified.Group("/exports")
	{
		exports.GET("/students", admin, c.Export.Students)
		exports.GET("/companies", admin, c.Export.Companies)
		exports.GET("/applications", adminOrCompany, c.Export.Applications)
	}
}
