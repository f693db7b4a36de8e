package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/AndersonTREL/TREL-MDM/models"
)

func TestHasPermission(t *testing.T) {
	assert.True(t, HasPermission(models.RoleAdmin, PermUserCreate))
	assert.False(t, HasPermission(models.RoleDriver, PermUserCreate))

	// Document review is an admin/inspector action; uploading is the
	// driver's side of it.
	assert.True(t, HasPermission(models.RoleInspector, PermDocumentReview))
	assert.False(t, HasPermission(models.RoleDriver, PermDocumentReview))
	assert.True(t, HasPermission(models.RoleDriver, PermDocumentUpload))

	// Everyone sees the leaderboard.
	for _, role := range []string{models.RoleAdmin, models.RoleInspector, models.RoleDriver} {
		assert.True(t, HasPermission(role, PermLeaderboardView), role)
	}

	// Unknown roles and unknown permissions both deny.
	assert.False(t, HasPermission("GUEST", PermDeviceView))
	assert.False(t, HasPermission(models.RoleAdmin, Permission("NOT_A_PERMISSION")))
}

func TestRequirePermissionFunc(t *testing.T) {
	called := false
	handler := RequirePermissionFunc(PermDeviceManage, func(w http.ResponseWriter, r *http.Request) {
		called = true
		w.WriteHeader(http.StatusOK)
	})

	req := httptest.NewRequest(http.MethodPost, "/api/devices", nil)
	req = req.WithContext(context.WithValue(req.Context(), CtxUserRole, models.RoleDriver))
	rec := httptest.NewRecorder()
	handler(rec, req)

	assert.False(t, called)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	req = httptest.NewRequest(http.MethodPost, "/api/devices", nil)
	req = req.WithContext(context.WithValue(req.Context(), CtxUserRole, models.RoleAdmin))
	rec = httptest.NewRecorder()
	handler(rec, req)

	assert.True(t, called)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestRequirePermissionMissingRole(t *testing.T) {
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("handler should not run without a role in context")
	})
	handler := RequirePermission(PermAuditLogView)(next)

	req := httptest.NewRequest(http.MethodGet, "/api/audit", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusForbidden, rec.Code)
}
