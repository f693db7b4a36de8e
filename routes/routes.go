package routes

import (
	"github.com/gorilla/mux"

	"github.com/AndersonTREL/TREL-MDM/handlers"
	"github.com/AndersonTREL/TREL-MDM/middleware"
	"github.com/AndersonTREL/TREL-MDM/websocket"
)

// HTTP method constants for better maintainability
var (
	MethodsGetOnly    = []string{"GET", "OPTIONS"}
	MethodsPostOnly   = []string{"POST", "OPTIONS"}
	MethodsPatchOnly  = []string{"PATCH", "OPTIONS"}
	MethodsDeleteOnly = []string{"DELETE", "OPTIONS"}
)

// Route grouping constants
const (
	PathAPI    = "/api"
	PathHealth = "/health"
)

func RegisterRoutes(r *mux.Router) {
	// ====================
	// HEALTH CHECK (Public)
	// ====================
	r.HandleFunc(PathHealth, handlers.HealthCheck).Methods(MethodsGetOnly...)

	// ====================
	// AUTHENTICATION ROUTES (Public - No auth required)
	// ====================
	r.HandleFunc("/api/auth/login", handlers.Login).Methods(MethodsPostOnly...)
	r.HandleFunc("/api/auth/logout", handlers.Logout).Methods(MethodsPostOnly...)
	r.HandleFunc("/api/auth/validate", handlers.ValidateToken).Methods(MethodsGetOnly...)

	// ====================
	// MOBILE AGENT ROUTES (Public - device auth happens in the handler)
	// ====================
	r.HandleFunc("/api/mobile/sync", handlers.SyncDevice).Methods(MethodsPostOnly...)
	r.HandleFunc("/api/mobile/enroll", handlers.EnrollDevice).Methods(MethodsPostOnly...)

	// WebSocket upgrade validates its own token (query param).
	r.HandleFunc("/api/ws", websocket.HandleWebSocket)

	// ====================
	// PROTECTED API ROUTES (Require authentication)
	// ====================
	apiRouter := r.PathPrefix(PathAPI).Subrouter()
	apiRouter.Use(middleware.AuthMiddleware)

	// ====================
	// USER MANAGEMENT
	// ====================
	apiRouter.HandleFunc("/users", middleware.RequirePermissionFunc(middleware.PermUserViewAll, handlers.ListUsers)).Methods(MethodsGetOnly...)
	apiRouter.HandleFunc("/users", middleware.RequirePermissionFunc(middleware.PermUserCreate, handlers.CreateUser)).Methods(MethodsPostOnly...)
	apiRouter.HandleFunc("/user/me", handlers.GetCurrentUser).Methods(MethodsGetOnly...)
	apiRouter.HandleFunc("/user/change-password", handlers.ChangePassword).Methods(MethodsPostOnly...)

	// ====================
	// DEVICES
	// ====================
	apiRouter.HandleFunc("/devices", middleware.RequirePermissionFunc(middleware.PermDeviceView, handlers.ListDevices)).Methods(MethodsGetOnly...)
	apiRouter.HandleFunc("/devices", middleware.RequirePermissionFunc(middleware.PermDeviceManage, handlers.CreateDevice)).Methods(MethodsPostOnly...)
	apiRouter.HandleFunc("/devices/{id}", middleware.RequirePermissionFunc(middleware.PermDeviceView, handlers.GetDevice)).Methods(MethodsGetOnly...)
	apiRouter.HandleFunc("/devices/{id}", middleware.RequirePermissionFunc(middleware.PermDeviceManage, handlers.UpdateDevice)).Methods(MethodsPatchOnly...)
	apiRouter.HandleFunc("/devices/transfer", middleware.RequirePermissionFunc(middleware.PermDeviceManage, handlers.TransferDevice)).Methods(MethodsPostOnly...)

	// Enrollment tokens are an admin device-management action.
	apiRouter.HandleFunc("/mobile/tokens", middleware.RequirePermissionFunc(middleware.PermDeviceManage, handlers.GenerateEnrollmentToken)).Methods(MethodsPostOnly...)

	// ====================
	// PEOPLE
	// ====================
	apiRouter.HandleFunc("/people", middleware.RequirePermissionFunc(middleware.PermDeviceView, handlers.ListPeople)).Methods(MethodsGetOnly...)
	apiRouter.HandleFunc("/people", middleware.RequirePermissionFunc(middleware.PermDeviceManage, handlers.CreatePeople)).Methods(MethodsPostOnly...)
	apiRouter.HandleFunc("/people", middleware.RequirePermissionFunc(middleware.PermDeviceManage, handlers.DeletePerson)).Methods(MethodsDeleteOnly...)

	// ====================
	// DOCUMENTS & COMPLIANCE
	// ====================
	apiRouter.HandleFunc("/documents", handlers.ListDocuments).Methods(MethodsGetOnly...)
	apiRouter.HandleFunc("/documents", middleware.RequirePermissionFunc(middleware.PermDocumentUpload, handlers.UploadDocument)).Methods(MethodsPostOnly...)
	apiRouter.HandleFunc("/documents/{id}/review", middleware.RequirePermissionFunc(middleware.PermDocumentReview, handlers.ReviewDocument)).Methods(MethodsPostOnly...)
	apiRouter.HandleFunc("/documents/{id}/download", handlers.DownloadDocument).Methods(MethodsGetOnly...)
	apiRouter.HandleFunc("/users/{id}/compliance", handlers.GetUserCompliance).Methods(MethodsGetOnly...)

	// ====================
	// COURSES & QUIZZES
	// ====================
	apiRouter.HandleFunc("/courses", middleware.RequirePermissionFunc(middleware.PermCourseView, handlers.ListCourses)).Methods(MethodsGetOnly...)
	apiRouter.HandleFunc("/courses", middleware.RequirePermissionFunc(middleware.PermCourseCreate, handlers.CreateCourse)).Methods(MethodsPostOnly...)
	apiRouter.HandleFunc("/courses/{id}/enroll", middleware.RequirePermissionFunc(middleware.PermCourseView, handlers.EnrollInCourse)).Methods(MethodsPostOnly...)
	apiRouter.HandleFunc("/courses/{id}/submit", middleware.RequirePermissionFunc(middleware.PermCourseView, handlers.SubmitQuiz)).Methods(MethodsPostOnly...)
	apiRouter.HandleFunc("/leaderboard", middleware.RequirePermissionFunc(middleware.PermLeaderboardView, handlers.GetLeaderboard)).Methods(MethodsGetOnly...)

	// ====================
	// NOTIFICATIONS
	// ====================
	apiRouter.HandleFunc("/notifications", handlers.ListMyNotifications).Methods(MethodsGetOnly...)
	apiRouter.HandleFunc("/notifications/{id}/read", handlers.MarkNotificationRead).Methods(MethodsPostOnly...)

	// ====================
	// DASHBOARD & REPORTS
	// ====================
	apiRouter.HandleFunc("/dashboard/stats", middleware.RequirePermissionFunc(middleware.PermReportsView, handlers.GetDashboardStats)).Methods(MethodsGetOnly...)
	apiRouter.HandleFunc("/dashboard/compliance", middleware.RequirePermissionFunc(middleware.PermReportsView, handlers.GetComplianceOverview)).Methods(MethodsGetOnly...)

	// ====================
	// AUDIT LOGS
	// ====================
	apiRouter.HandleFunc("/audit", middleware.RequirePermissionFunc(middleware.PermAuditLogView, handlers.ListAuditLogs)).Methods(MethodsGetOnly...)
	apiRouter.HandleFunc("/audit/stats", middleware.RequirePermissionFunc(middleware.PermAuditLogView, handlers.GetAuditStats)).Methods(MethodsGetOnly...)
}
