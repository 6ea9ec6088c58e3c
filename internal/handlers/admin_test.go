package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"filehost/internal/models"
	"filehost/internal/service"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func adminPost(target string) *http.Request {
	req := httptest.NewRequest(http.MethodPost, target, nil)
	req.Header.Set("Authorization", "Bearer "+tokenFor("root", models.RoleAdmin))
	return req
}

func TestAdminActions_Success(t *testing.T) {
	cases := []struct {
		path    string
		call    string
		message string
	}{
		{"/admin/approve/alice", "approve:root:alice", "User alice approved successfully."},
		{"/admin/deny/bob", "deny:root:bob", "Registration request for bob denied."},
		{"/admin/delete/alice", "delete:root:alice", "User alice deleted successfully."},
		{"/admin/delete-file/alice/a.txt", "delete-file:root:alice/a.txt", "File a.txt deleted from alice."},
	}
	for _, tc := range cases {
		t.Run(tc.path, func(t *testing.T) {
			deps := newTestDeps()
			r := newTestRouter(deps.service())

			w := httptest.NewRecorder()
			r.ServeHTTP(w, adminPost(tc.path))

			require.Equal(t, http.StatusOK, w.Code, "body=%s", w.Body.String())
			out := decodeResponse(t, w)
			assert.True(t, out.Success)
			assert.Equal(t, tc.message, out.Message)
			assert.Equal(t, []string{tc.call}, deps.admin.calls)
		})
	}
}

func TestAdminActions_ErrorMapping(t *testing.T) {
	cases := []struct {
		name string
		path string
		err  error
		code int
	}{
		{"approve unknown", "/admin/approve/ghost", service.ErrRequestNotFound, http.StatusNotFound},
		{"approve taken", "/admin/approve/root", service.ErrUsernameTaken, http.StatusConflict},
		{"deny unknown", "/admin/deny/ghost", service.ErrRequestNotFound, http.StatusNotFound},
		{"delete protected", "/admin/delete/root", service.ErrProtectedAccount, http.StatusForbidden},
		{"delete unknown", "/admin/delete/ghost", service.ErrUserNotFound, http.StatusNotFound},
		{"toggle protected", "/admin/toggle-role/root", service.ErrProtectedAccount, http.StatusForbidden},
		{"delete-file unknown owner", "/admin/delete-file/ghost/a.txt", service.ErrUserNotFound, http.StatusNotFound},
		{"delete-file missing", "/admin/delete-file/alice/a.txt", service.ErrFileNotFound, http.StatusNotFound},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			deps := newTestDeps()
			deps.admin.err = tc.err
			r := newTestRouter(deps.service())

			w := httptest.NewRecorder()
			r.ServeHTTP(w, adminPost(tc.path))

			require.Equal(t, tc.code, w.Code, "body=%s", w.Body.String())
			assert.False(t, decodeResponse(t, w).Success)
		})
	}
}

func TestToggleRole(t *testing.T) {
	deps := newTestDeps()
	deps.admin.role = models.RoleAdmin
	r := newTestRouter(deps.service())

	w := httptest.NewRecorder()
	r.ServeHTTP(w, adminPost("/admin/toggle-role/alice"))

	require.Equal(t, http.StatusOK, w.Code)
	var out toggleRoleResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out))
	assert.True(t, out.Success)
	assert.Equal(t, models.RoleAdmin, out.Role)
	assert.Equal(t, "User alice is now admin.", out.Message)
}

func TestAdminOverview(t *testing.T) {
	deps := newTestDeps()
	deps.admin.overview = service.AdminOverview{
		Users:           []service.UserSummary{{Username: "root", Role: models.RoleAdmin, StorageUsed: 10, FileCount: 1}},
		PendingRequests: []service.PendingView{{Username: "bob"}},
		Stats:           models.StorageStats{Users: 1, Pending: 1, Files: 1, TotalBytes: 10},
	}
	r := newTestRouter(deps.service())

	w := httptest.NewRecorder()
	r.ServeHTTP(w, adminGet("/admin"))
	require.Equal(t, http.StatusOK, w.Code)

	var out service.AdminOverview
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out))
	assert.Equal(t, deps.admin.overview.Users[0].Username, out.Users[0].Username)
	assert.Equal(t, "bob", out.PendingRequests[0].Username)
	assert.NotContains(t, w.Body.String(), "passwordHash")
}

func TestAdminRoutes_ForbiddenForUsers(t *testing.T) {
	deps := newTestDeps()
	r := newTestRouter(deps.service())

	for _, path := range []string{"/admin/approve/bob", "/admin/delete/root", "/admin/toggle-role/alice"} {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, path, nil)
		req.Header.Set("Authorization", "Bearer "+tokenFor("alice", models.RoleAdmin))
		r.ServeHTTP(w, req)
		assert.Equal(t, http.StatusForbidden, w.Code, path)
	}
	assert.Empty(t, deps.admin.calls)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/admin", nil)
	req.Header.Set("Authorization", "Bearer "+tokenFor("alice", models.RoleUser))
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestAdminDownloadFile(t *testing.T) {
	deps := newTestDeps()
	deps.admin.files["alice/a.txt"] = "abc"
	r := newTestRouter(deps.service())

	w := httptest.NewRecorder()
	r.ServeHTTP(w, adminGet("/admin/download-file/alice/a.txt"))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "abc", w.Body.String())

	w = httptest.NewRecorder()
	r.ServeHTTP(w, adminGet("/admin/download-file/alice/missing.txt"))
	assert.Equal(t, http.StatusSeeOther, w.Code)
	assert.Equal(t, "/admin?error=file_not_found", w.Header().Get("Location"))
}
