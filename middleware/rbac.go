// middleware/rbac.go
package middleware

import (
	"net/http"

	"github.com/AndersonTREL/TREL-MDM/models"
	"github.com/AndersonTREL/TREL-MDM/utils"
)

type Permission string

const (
	PermUserCreate      Permission = "USER_CREATE"
	PermUserUpdate      Permission = "USER_UPDATE"
	PermUserDelete      Permission = "USER_DELETE"
	PermUserViewAll     Permission = "USER_VIEW_ALL"
	PermCourseCreate    Permission = "COURSE_CREATE"
	PermCourseUpdate    Permission = "COURSE_UPDATE"
	PermCourseView      Permission = "COURSE_VIEW"
	PermDocumentReview  Permission = "DOCUMENT_REVIEW"
	PermDocumentUpload  Permission = "DOCUMENT_UPLOAD"
	PermPIIView         Permission = "PII_VIEW"
	PermReportsView     Permission = "REPORTS_VIEW"
	PermLeaderboardView Permission = "LEADERBOARD_VIEW"
	PermAuditLogView    Permission = "AUDIT_LOG_VIEW"
	PermDeviceManage    Permission = "DEVICE_MANAGE"
	PermDeviceView      Permission = "DEVICE_VIEW"
)

// permissions maps each permission to the roles allowed to exercise it.
var permissions = map[Permission][]string{
	PermUserCreate:      {models.RoleAdmin},
	PermUserUpdate:      {models.RoleAdmin},
	PermUserDelete:      {models.RoleAdmin},
	PermUserViewAll:     {models.RoleAdmin, models.RoleInspector},
	PermCourseCreate:    {models.RoleAdmin},
	PermCourseUpdate:    {models.RoleAdmin},
	PermCourseView:      {models.RoleAdmin, models.RoleInspector, models.RoleDriver},
	PermDocumentReview:  {models.RoleAdmin, models.RoleInspector},
	PermDocumentUpload:  {models.RoleDriver},
	PermPIIView:         {models.RoleAdmin, models.RoleInspector},
	PermReportsView:     {models.RoleAdmin, models.RoleInspector},
	PermLeaderboardView: {models.RoleAdmin, models.RoleInspector, models.RoleDriver},
	PermAuditLogView:    {models.RoleAdmin},
	PermDeviceManage:    {models.RoleAdmin, models.RoleInspector},
	PermDeviceView:      {models.RoleAdmin, models.RoleInspector},
}

func HasPermission(role string, perm Permission) bool {
	for _, allowed := range permissions[perm] {
		if allowed == role {
			return true
		}
	}
	return false
}

// RequirePermission gates a route on the role placed in the request context
// by AuthMiddleware.
func RequirePermission(perm Permission) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			role, _ := r.Context().Value(CtxUserRole).(string)
			if !HasPermission(role, perm) {
				utils.RespondWithError(w, http.StatusForbidden, "Insufficient permissions")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// RequirePermissionFunc is the handler-level variant for routes that share a
// path with differently-gated methods.
func RequirePermissionFunc(perm Permission, h http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		role, _ := r.Context().Value(CtxUserRole).(string)
		if !HasPermission(role, perm) {
			utils.RespondWithError(w, http.StatusForbidden, "Insufficient permissions")
			return
		}
		h(w, r)
	}
}
