package handlers

import (
	"context"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"filehost/internal/models"
	"filehost/internal/service"

	"github.com/gin-gonic/gin"
)

// ---- Service Mocks ----

type mockAccounts struct {
	mu sync.Mutex

	roles       map[string]models.Role // existing users
	roleErr     error
	authSession models.Session
	authErr     error
	registerErr error

	lastRegister   [3]string
	lastAuthUser   string
	loggedOut      []string
	roleLookups    int
	bootstrapCalls int
}

func (m *mockAccounts) Bootstrap(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.bootstrapCalls++
	return nil
}

func (m *mockAccounts) Register(ctx context.Context, username, password, email string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.lastRegister = [3]string{username, password, email}
	return m.registerErr
}

func (m *mockAccounts) Authenticate(ctx context.Context, username, password string) (models.Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.lastAuthUser = username
	return m.authSession, m.authErr
}

func (m *mockAccounts) Role(ctx context.Context, username string) (models.Role, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.roleLookups++
	if m.roleErr != nil {
		return "", m.roleErr
	}
	role, ok := m.roles[username]
	if !ok {
		return "", service.ErrUserNotFound
	}
	return role, nil
}

// setRole changes or, with an empty role, removes a user while requests are in flight.
func (m *mockAccounts) setRole(username string, role models.Role) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if role == "" {
		delete(m.roles, username)
		return
	}
	m.roles[username] = role
}

func (m *mockAccounts) Logout(ctx context.Context, username string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.loggedOut = append(m.loggedOut, username)
}

type mockFiles struct {
	view         service.DashboardView
	dashboardErr error
	lastSession  models.Session

	uploadName     string
	uploadErr      error
	lastUploadFor  string
	lastUploadArg  string
	lastUploadBody string

	content   map[string]string // filename -> body
	openErr   error
	deleteErr error
	deleted   []string
}

func (m *mockFiles) Dashboard(ctx context.Context, sess models.Session) (service.DashboardView, error) {
	m.lastSession = sess
	return m.view, m.dashboardErr
}

func (m *mockFiles) Upload(ctx context.Context, username, filename string, content io.Reader) (string, error) {
	m.lastUploadFor = username
	m.lastUploadArg = filename
	body, _ := io.ReadAll(content)
	m.lastUploadBody = string(body)
	return m.uploadName, m.uploadErr
}

func (m *mockFiles) Open(ctx context.Context, username, filename string) (io.ReadCloser, models.StoredFile, error) {
	if m.openErr != nil {
		return nil, models.StoredFile{}, m.openErr
	}
	body, ok := m.content[filename]
	if !ok {
		return nil, models.StoredFile{}, service.ErrFileNotFound
	}
	return io.NopCloser(strings.NewReader(body)), models.StoredFile{
		Name: filename, Owner: username, Size: int64(len(body)), ModifiedAt: time.Now(),
	}, nil
}

func (m *mockFiles) Delete(ctx context.Context, username, filename string) error {
	if m.deleteErr != nil {
		return m.deleteErr
	}
	m.deleted = append(m.deleted, username+"/"+filename)
	return nil
}

type mockAdmin struct {
	mu sync.Mutex

	overview service.AdminOverview
	stats    models.StorageStats
	statsErr error
	err      error // returned by every mutating call
	role     models.Role

	calls []string // "op:actor:subject"
	files map[string]string
}

func (m *mockAdmin) record(op, actor, subject string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = append(m.calls, op+":"+actor+":"+subject)
}

func (m *mockAdmin) Overview(ctx context.Context) (service.AdminOverview, error) {
	return m.overview, m.err
}

func (m *mockAdmin) Approve(ctx context.Context, actor, username string) error {
	m.record("approve", actor, username)
	return m.err
}

func (m *mockAdmin) Deny(ctx context.Context, actor, username string) error {
	m.record("deny", actor, username)
	return m.err
}

func (m *mockAdmin) DeleteUser(ctx context.Context, actor, username string) error {
	m.record("delete", actor, username)
	return m.err
}

func (m *mockAdmin) ToggleRole(ctx context.Context, actor, username string) (models.Role, error) {
	m.record("toggle", actor, username)
	return m.role, m.err
}

func (m *mockAdmin) OpenFile(ctx context.Context, owner, filename string) (io.ReadCloser, models.StoredFile, error) {
	body, ok := m.files[owner+"/"+filename]
	if !ok {
		return nil, models.StoredFile{}, service.ErrFileNotFound
	}
	return io.NopCloser(strings.NewReader(body)), models.StoredFile{Name: filename, Owner: owner, Size: int64(len(body))}, nil
}

func (m *mockAdmin) DeleteFile(ctx context.Context, actor, owner, filename string) error {
	m.record("delete-file", actor, owner+"/"+filename)
	return m.err
}

func (m *mockAdmin) Stats(ctx context.Context) (models.StorageStats, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.stats, m.statsErr
}

type mockActivityLog struct {
	resp     []models.ActivityEvent
	err      error
	lastFrom time.Time
	lastTo   time.Time
	lastType string
}

func (m *mockActivityLog) List(ctx context.Context, f service.LogFilter) ([]models.ActivityEvent, error) {
	m.lastFrom = f.From
	m.lastTo = f.To
	m.lastType = f.Type
	return m.resp, m.err
}

// ---- Shared Test Helpers ----

var testSessions = service.NewSessionService([]byte("handler-test-key"), time.Hour)

// testDeps bundles the mocks behind one *service.Service.
type testDeps struct {
	accounts *mockAccounts
	files    *mockFiles
	admin    *mockAdmin
	activity *mockActivityLog
}

func newTestDeps() *testDeps {
	return &testDeps{
		accounts: &mockAccounts{roles: map[string]models.Role{
			"root":  models.RoleAdmin,
			"alice": models.RoleUser,
		}},
		files:    &mockFiles{content: map[string]string{}},
		admin:    &mockAdmin{files: map[string]string{}},
		activity: &mockActivityLog{},
	}
}

func (d *testDeps) service() *service.Service {
	return &service.Service{
		Accounts:    d.accounts,
		Sessions:    testSessions,
		Files:       d.files,
		Admin:       d.admin,
		ActivityLog: d.activity,
	}
}

func newTestRouter(s *service.Service) *gin.Engine {
	return newTestRouterWithOptions(s, Options{})
}

func newTestRouterWithOptions(s *service.Service, opts Options) *gin.Engine {
	h := NewHandler(s, nil, nil, opts)
	gin.SetMode(gin.TestMode)
	return h.InitRoutes()
}

// tokenFor signs a session for username with the given role claim.
func tokenFor(username string, role models.Role) string {
	token, err := testSessions.IssueToken(models.Session{Username: username, Role: role})
	if err != nil {
		panic(err)
	}
	return token
}

func authHeader(token string) http.Header {
	h := http.Header{}
	if token != "" {
		h.Set("Authorization", "Bearer "+token)
	}
	return h
}

func sessionCookieHeader(token string) http.Header {
	h := http.Header{}
	h.Set("Cookie", sessionCookie+"="+token)
	return h
}
