package service

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"filehost/internal/logger"
	"filehost/internal/models"
	"filehost/internal/repository"
	"filehost/internal/storage"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testEnv struct {
	svc      *Service
	config   *repository.JSONConfigStore
	store    *storage.Store
	activity *fakeActivityRepo
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	dir := t.TempDir()

	config := repository.NewJSONConfigStore(filepath.Join(dir, "config.json"))
	store, err := storage.NewStore(filepath.Join(dir, "uploads"))
	require.NoError(t, err)
	activity := &fakeActivityRepo{}

	svc := NewService(
		&repository.Repository{Config: config, Activity: activity},
		store,
		Options{AdminUsername: "root", AdminPassword: "secret", SigningKey: testSigningKey, SessionTTL: time.Hour},
		logger.Nop(),
	)
	require.NoError(t, svc.Bootstrap(context.Background()))

	return &testEnv{svc: svc, config: config, store: store, activity: activity}
}

// approvedUser registers and approves username with password "pw".
func (e *testEnv) approvedUser(t *testing.T, username string) {
	t.Helper()
	ctx := context.Background()
	require.NoError(t, e.svc.Register(ctx, username, "pw", ""))
	require.NoError(t, e.svc.Approve(ctx, "root", username))
}

func (e *testEnv) upload(t *testing.T, username, name, content string) string {
	t.Helper()
	stored, err := e.svc.Upload(context.Background(), username, name, strings.NewReader(content))
	require.NoError(t, err)
	return stored
}

func (e *testEnv) document(t *testing.T) models.Document {
	t.Helper()
	doc, err := e.config.Load(context.Background())
	require.NoError(t, err)
	return doc
}

func TestBootstrap_CreatesAdminOnce(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	doc := env.document(t)
	require.Len(t, doc.Users, 1)
	root := doc.Users["root"]
	require.NotNil(t, root)
	assert.Equal(t, models.RoleAdmin, root.Role)
	assert.NotEqual(t, "secret", root.PasswordHash)
	assert.Empty(t, doc.PendingRequests)

	require.NoError(t, env.svc.Bootstrap(ctx))
	assert.Equal(t, root.PasswordHash, env.document(t).Users["root"].PasswordHash)
}

func TestBootstrap_ExistingDocumentWithoutAdmin(t *testing.T) {
	config := repository.NewJSONConfigStore(filepath.Join(t.TempDir(), "config.json"))
	doc := models.NewDocument()
	doc.Users["bob"] = &models.UserRecord{PasswordHash: "x", Role: models.RoleUser}
	require.NoError(t, config.Save(context.Background(), doc))

	err := NewAccountService(config, nil, "root", "secret").Bootstrap(context.Background())
	require.ErrorIs(t, err, ErrUserNotFound)
}

func TestBootstrap_CorruptDocument(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o600))

	err := NewAccountService(repository.NewJSONConfigStore(path), nil, "root", "secret").Bootstrap(context.Background())
	require.ErrorIs(t, err, repository.ErrConfigCorrupt)
}

func TestScenario_RootAdmin(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	sess, err := env.svc.Authenticate(ctx, "root", "secret")
	require.NoError(t, err)
	assert.Equal(t, models.Session{Username: "root", Role: models.RoleAdmin}, sess)

	_, err = env.svc.Authenticate(ctx, "root", "wrong")
	require.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = env.svc.Authenticate(ctx, "nobody", "secret")
	require.ErrorIs(t, err, ErrInvalidCredentials)

	require.ErrorIs(t, env.svc.DeleteUser(ctx, "root", "root"), ErrProtectedAccount)
	_, err = env.svc.ToggleRole(ctx, "root", "root")
	require.ErrorIs(t, err, ErrProtectedAccount)

	role, err := env.svc.Role(ctx, "root")
	require.NoError(t, err)
	assert.Equal(t, models.RoleAdmin, role)
}

func TestScenario_AliceLifecycle(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	require.NoError(t, env.svc.Register(ctx, "alice", "wonderland", "alice@example.com"))

	// Pending users cannot sign in.
	_, err := env.svc.Authenticate(ctx, "alice", "wonderland")
	require.ErrorIs(t, err, ErrInvalidCredentials)

	doc := env.document(t)
	require.Len(t, doc.PendingRequests, 1)
	assert.Equal(t, "alice", doc.PendingRequests[0].Username)
	assert.Equal(t, "alice@example.com", doc.PendingRequests[0].Email)
	assert.NotEqual(t, "wonderland", doc.PendingRequests[0].PasswordHash)

	require.NoError(t, env.svc.Approve(ctx, "root", "alice"))
	doc = env.document(t)
	assert.Empty(t, doc.PendingRequests)
	require.Contains(t, doc.Users, "alice")
	assert.Equal(t, models.RoleUser, doc.Users["alice"].Role)
	assert.Equal(t, "alice@example.com", doc.Users["alice"].Email)

	sess, err := env.svc.Authenticate(ctx, "alice", "wonderland")
	require.NoError(t, err)
	assert.Equal(t, models.RoleUser, sess.Role)

	first := env.upload(t, "alice", "report.txt", "v1")
	second := env.upload(t, "alice", "report.txt", "v2")
	assert.Equal(t, "report.txt", first)
	assert.Equal(t, "report_1.txt", second)

	rc, info, err := env.svc.Open(ctx, "alice", "report.txt")
	require.NoError(t, err)
	body, err := io.ReadAll(rc)
	require.NoError(t, rc.Close())
	require.NoError(t, err)
	assert.Equal(t, "v1", string(body))
	assert.Equal(t, "alice", info.Owner)

	view, err := env.svc.Dashboard(ctx, sess)
	require.NoError(t, err)
	assert.Equal(t, 2, view.TotalFiles)
	assert.Equal(t, int64(4), view.StorageUsed)
	assert.Equal(t, "4 B", view.StorageUsedHuman)
	assert.Equal(t, int64(4), env.document(t).Users["alice"].StorageUsed)

	require.NoError(t, env.svc.DeleteUser(ctx, "root", "alice"))
	exists, err := env.store.Exists("alice")
	require.NoError(t, err)
	assert.False(t, exists)

	_, err = env.svc.Authenticate(ctx, "alice", "wonderland")
	require.ErrorIs(t, err, ErrInvalidCredentials)
	_, err = env.svc.Role(ctx, "alice")
	require.ErrorIs(t, err, ErrUserNotFound)

	assert.Subset(t, env.activity.types(), []string{
		models.EventRegister, models.EventLoginFailed, models.EventApprove,
		models.EventLogin, models.EventUpload, models.EventDeleteUser,
	})
}

func TestRegister_Validation(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	cases := []struct {
		name     string
		username string
		password string
		email    string
		want     error
	}{
		{name: "traversal username", username: "../etc", password: "pw", want: ErrInvalidUsername},
		{name: "empty username", username: "  ", password: "pw", want: ErrInvalidUsername},
		{name: "slash username", username: "a/b", password: "pw", want: ErrInvalidUsername},
		{name: "blank password", username: "bob", password: " ", want: ErrEmptyPassword},
		{name: "password over 72 bytes", username: "bob", password: strings.Repeat("p", 73), want: ErrPasswordTooLong},
		{name: "bad email", username: "bob", password: "pw", email: "not-an-email", want: ErrInvalidEmail},
		{name: "existing user", username: "root", password: "pw", want: ErrUsernameTaken},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := env.svc.Register(ctx, tc.username, tc.password, tc.email)
			require.ErrorIs(t, err, tc.want)
		})
	}

	require.NoError(t, env.svc.Register(ctx, "bob", "pw", ""))
	require.ErrorIs(t, env.svc.Register(ctx, "bob", "other", ""), ErrRequestAlreadyPending)
	assert.Len(t, env.document(t).PendingRequests, 1)

	require.NoError(t, env.svc.Register(ctx, "dora", strings.Repeat("p", 72), ""), "72 bytes is the bcrypt limit")

	assert.True(t, IsInputError(ErrInvalidEmail))
	assert.True(t, IsInputError(ErrPasswordTooLong))
	assert.False(t, IsInputError(ErrUsernameTaken))
}

func TestApproveDeny_UnknownRequest(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	require.ErrorIs(t, env.svc.Approve(ctx, "root", "ghost"), ErrRequestNotFound)
	require.ErrorIs(t, env.svc.Deny(ctx, "root", "ghost"), ErrRequestNotFound)

	require.NoError(t, env.svc.Register(ctx, "carol", "pw", ""))
	require.NoError(t, env.svc.Deny(ctx, "root", "carol"))

	doc := env.document(t)
	assert.Empty(t, doc.PendingRequests)
	assert.NotContains(t, doc.Users, "carol")
	require.ErrorIs(t, env.svc.Approve(ctx, "root", "carol"), ErrRequestNotFound)
}

func TestToggleRole_RoleReadFromStore(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	env.approvedUser(t, "dave")

	role, err := env.svc.ToggleRole(ctx, "root", "dave")
	require.NoError(t, err)
	assert.Equal(t, models.RoleAdmin, role)

	stored, err := env.svc.Role(ctx, "dave")
	require.NoError(t, err)
	assert.Equal(t, models.RoleAdmin, stored)

	role, err = env.svc.ToggleRole(ctx, "root", "dave")
	require.NoError(t, err)
	assert.Equal(t, models.RoleUser, role)

	_, err = env.svc.ToggleRole(ctx, "root", "ghost")
	require.ErrorIs(t, err, ErrUserNotFound)
	require.ErrorIs(t, env.svc.DeleteUser(ctx, "root", "ghost"), ErrUserNotFound)
}

func TestAdminFileOps(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	env.approvedUser(t, "erin")
	env.upload(t, "erin", "notes.md", "# hi")

	rc, info, err := env.svc.Admin.OpenFile(ctx, "erin", "notes.md")
	require.NoError(t, err)
	require.NoError(t, rc.Close())
	assert.Equal(t, int64(4), info.Size)

	_, _, err = env.svc.Admin.OpenFile(ctx, "erin", "missing.md")
	require.ErrorIs(t, err, ErrFileNotFound)

	_, _, err = env.svc.Admin.OpenFile(ctx, "ghost", "notes.md")
	require.ErrorIs(t, err, ErrUserNotFound)
	require.ErrorIs(t, env.svc.Admin.DeleteFile(ctx, "root", "ghost", "notes.md"), ErrUserNotFound)

	_, statErr := os.Stat(filepath.Join(env.store.Root(), "ghost"))
	assert.True(t, os.IsNotExist(statErr), "no namespace must be created for unknown owners")

	require.NoError(t, env.svc.Admin.DeleteFile(ctx, "root", "erin", "notes.md"))
	require.ErrorIs(t, env.svc.Admin.DeleteFile(ctx, "root", "erin", "notes.md"), ErrFileNotFound)
}

func TestReadPathsNeverCreateNamespaces(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	env.approvedUser(t, "kate")

	view, err := env.svc.Dashboard(ctx, models.Session{Username: "kate", Role: models.RoleUser})
	require.NoError(t, err)
	assert.Equal(t, 0, view.TotalFiles)
	assert.NotNil(t, view.Files)

	_, err = env.svc.Overview(ctx)
	require.NoError(t, err)
	_, err = env.svc.Stats(ctx)
	require.NoError(t, err)
	_, _, err = env.svc.Files.Open(ctx, "kate", "x.txt")
	require.ErrorIs(t, err, ErrFileNotFound)
	require.ErrorIs(t, env.svc.Files.Delete(ctx, "kate", "x.txt"), ErrFileNotFound)
	_, _, err = env.svc.Admin.OpenFile(ctx, "kate", "x.txt")
	require.ErrorIs(t, err, ErrFileNotFound)

	for _, name := range []string{"kate", "root"} {
		ok, err := env.store.Exists(name)
		require.NoError(t, err)
		assert.False(t, ok, "%s: reads must not create a namespace", name)
	}

	// A user deleted after the document was loaded must not get a directory back.
	env.upload(t, "kate", "k.txt", "k")
	doc := env.document(t)
	require.NoError(t, env.svc.DeleteUser(ctx, "root", "kate"))
	_, _, err = env.svc.Admin.(*AdminService).usage.measureAll(doc)
	require.NoError(t, err)
	ok, err := env.store.Exists("kate")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestFiles_DeleteAndTraversal(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	env.approvedUser(t, "frank")
	env.upload(t, "frank", "a.txt", "aaa")

	require.ErrorIs(t, env.svc.Files.Delete(ctx, "frank", "../root/x"), ErrInvalidFileName)
	require.ErrorIs(t, env.svc.Files.Delete(ctx, "frank", "b.txt"), ErrFileNotFound)
	require.NoError(t, env.svc.Files.Delete(ctx, "frank", "a.txt"))

	_, _, err := env.svc.Files.Open(ctx, "frank", "a.txt")
	require.ErrorIs(t, err, ErrFileNotFound)
	assert.True(t, IsNotFound(err))
}

func TestDashboard_AdminSeesEveryNamespace(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	env.approvedUser(t, "gina")
	env.upload(t, "gina", "g.bin", "12345")
	env.upload(t, "root", "r.bin", "1")

	view, err := env.svc.Dashboard(ctx, models.Session{Username: "root", Role: models.RoleAdmin})
	require.NoError(t, err)
	assert.Equal(t, 2, view.TotalFiles)
	assert.Equal(t, int64(6), view.StorageUsed)

	owners := map[string]string{}
	for _, f := range view.Files {
		owners[f.Name] = f.Owner
	}
	assert.Equal(t, map[string]string{"g.bin": "gina", "r.bin": "root"}, owners)

	doc := env.document(t)
	assert.Equal(t, int64(5), doc.Users["gina"].StorageUsed)
	assert.Equal(t, int64(1), doc.Users["root"].StorageUsed)
}

func TestOverviewAndStats(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	env.approvedUser(t, "hank")
	env.upload(t, "hank", "one.txt", "1")
	env.upload(t, "hank", "two.txt", "22")
	require.NoError(t, env.svc.Register(ctx, "ivy", "pw", "ivy@example.com"))

	out, err := env.svc.Overview(ctx)
	require.NoError(t, err)
	require.Len(t, out.Users, 2)
	assert.Equal(t, "hank", out.Users[0].Username)
	assert.Equal(t, 2, out.Users[0].FileCount)
	assert.Equal(t, int64(3), out.Users[0].StorageUsed)
	assert.Equal(t, "root", out.Users[1].Username)
	require.Len(t, out.PendingRequests, 1)
	assert.Equal(t, "ivy", out.PendingRequests[0].Username)
	assert.Len(t, out.Files, 2)
	assert.Equal(t, models.StorageStats{Users: 2, Pending: 1, Files: 2, TotalBytes: 3}, out.Stats)

	assert.Equal(t, int64(3), env.document(t).Users["hank"].StorageUsed)

	stats, err := env.svc.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, out.Stats, stats)
}

func TestUsageScanner_ScanPersistsTotals(t *testing.T) {
	env := newTestEnv(t)
	env.approvedUser(t, "jack")

	ns, err := env.store.NamespaceFor("jack")
	require.NoError(t, err)
	_, err = ns.Store("big.dat", strings.NewReader(strings.Repeat("x", 2048)))
	require.NoError(t, err)

	scanner := env.svc.UsageScanner.(*UsageScannerService)
	scanner.scanOnce(context.Background())
	assert.Equal(t, int64(2048), env.document(t).Users["jack"].StorageUsed)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	done := make(chan struct{})
	go func() {
		scanner.Run(ctx, time.Millisecond)
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Run did not stop after cancel")
	}

	// disabled scanner returns immediately
	scanner.Run(context.Background(), 0)
}

func TestHumanSize(t *testing.T) {
	assert.Equal(t, "0 B", HumanSize(0))
	assert.Equal(t, "0 B", HumanSize(-5))
	assert.Equal(t, "1.5 KiB", HumanSize(1536))
	assert.Equal(t, "500 MiB", HumanSize(500<<20))
}
