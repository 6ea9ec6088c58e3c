package main

import (
	"bytes"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

// run executes the CLI against files under dir.
func run(t *testing.T, dir, stdin string, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	cmd := newRootCmd(&out, strings.NewReader(stdin))
	cmd.SetArgs(append([]string{
		"--config-dir", dir,
		"--accounts", filepath.Join(dir, "config.json"),
		"--uploads", filepath.Join(dir, "uploads"),
		"--activity-db", filepath.Join(dir, "activity.db"),
	}, args...))
	err := cmd.Execute()
	return out.String(), err
}

func TestHashPassword(t *testing.T) {
	out, err := run(t, t.TempDir(), "", "hash-password", "s3cret")
	require.NoError(t, err)
	hash := strings.TrimSpace(out)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(hash), []byte("s3cret")))

	out, err = run(t, t.TempDir(), "from-stdin\n", "hash-password")
	require.NoError(t, err)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(strings.TrimSpace(out)), []byte("from-stdin")))

	_, err = run(t, t.TempDir(), "\n", "hash-password")
	assert.Error(t, err)
}

func TestUsersPendingApproveDeny(t *testing.T) {
	dir := t.TempDir()

	out, err := run(t, dir, "", "users")
	require.NoError(t, err)
	assert.Contains(t, out, "USERNAME")
	assert.Contains(t, out, "admin")

	out, err = run(t, dir, "", "pending")
	require.NoError(t, err)
	assert.Contains(t, out, "No pending registration requests.")

	_, err = run(t, dir, "", "approve", "ghost")
	assert.ErrorContains(t, err, "registration request not found")

	_, err = run(t, dir, "", "deny", "ghost")
	assert.Error(t, err)

	_, err = run(t, dir, "", "approve")
	assert.Error(t, err, "approve needs a username")
}
