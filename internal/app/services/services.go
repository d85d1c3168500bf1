// Package services holds the business logic behind the HTTP controllers.
//
// Services defined in this package:
//   - AuthService: registration, login, token refresh, email verification
//     and password reset
//   - UserService: account administration and password changes
//   - StudentService, CompanyService, JobService: directory management
//   - ApplicationService: the hiring pipeline
//   - InterviewService: interview slots with daily capacity
//   - CertificateService: certificates and simulated on-chain issuance
//   - DashboardService: aggregate statistics
//   - NotificationService: the in-app notification feed
//   - ExportService: CSV and PDF reports
package services
