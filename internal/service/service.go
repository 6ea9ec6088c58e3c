package service

import (
	"context"
	"io"
	"time"

	"filehost/internal/logger"
	"filehost/internal/models"
	"filehost/internal/repository"
	"filehost/internal/storage"
)

// Accounts covers registration, credential checks and the bootstrap admin.
type Accounts interface {
	Bootstrap(ctx context.Context) error
	Register(ctx context.Context, username, password, email string) error
	Authenticate(ctx context.Context, username, password string) (models.Session, error)
	Role(ctx context.Context, username string) (models.Role, error)
	Logout(ctx context.Context, username string)
}

// Sessions signs and verifies session tokens.
type Sessions interface {
	IssueToken(sess models.Session) (string, error)
	ParseToken(accessToken string) (models.Session, error)
	TTL() time.Duration
}

// Files operates on the caller's own namespace.
type Files interface {
	Dashboard(ctx context.Context, sess models.Session) (DashboardView, error)
	Upload(ctx context.Context, username, filename string, content io.Reader) (string, error)
	Open(ctx context.Context, username, filename string) (io.ReadCloser, models.StoredFile, error)
	Delete(ctx context.Context, username, filename string) error
}

// Admin groups the operations reserved to administrators.
type Admin interface {
	Overview(ctx context.Context) (AdminOverview, error)
	Approve(ctx context.Context, actor, username string) error
	Deny(ctx context.Context, actor, username string) error
	DeleteUser(ctx context.Context, actor, username string) error
	ToggleRole(ctx context.Context, actor, username string) (models.Role, error)
	OpenFile(ctx context.Context, owner, filename string) (io.ReadCloser, models.StoredFile, error)
	DeleteFile(ctx context.Context, actor, owner, filename string) error
	Stats(ctx context.Context) (models.StorageStats, error)
}

// ActivityLog exposes the audit trail with filtering access.
type ActivityLog interface {
	List(ctx context.Context, f LogFilter) ([]models.ActivityEvent, error)
}

// UsageScanner periodically refreshes the cached storageUsed values.
// Stop via context cancellation in main() for graceful shutdown.
type UsageScanner interface {
	Run(ctx context.Context, interval time.Duration)
}

// Options carries the settings services need from config.
type Options struct {
	AdminUsername string
	AdminPassword string
	SigningKey    []byte
	SessionTTL    time.Duration
}

type Service struct {
	Accounts
	Sessions
	Files
	Admin
	ActivityLog
	UsageScanner
}

// NewService wires the repository layer and the upload store into concrete services.
func NewService(repos *repository.Repository, store *storage.Store, opts Options, log *logger.Logger) *Service {
	if log == nil {
		log = logger.Nop()
	}
	rec := newRecorder(repos.Activity, log)
	usage := newUsageTracker(repos.Config, store, log)

	return &Service{
		Accounts:     NewAccountService(repos.Config, rec, opts.AdminUsername, opts.AdminPassword),
		Sessions:     NewSessionService(opts.SigningKey, opts.SessionTTL),
		Files:        NewFileService(repos.Config, store, usage, rec, log),
		Admin:        NewAdminService(repos.Config, store, usage, rec, opts.AdminUsername),
		ActivityLog:  NewActivityService(repos.Activity),
		UsageScanner: NewUsageScannerService(usage, log),
	}
}
