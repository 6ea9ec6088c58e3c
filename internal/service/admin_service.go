package service

import (
	"context"
	"fmt"
	"io"

	"filehost/internal/models"
	"filehost/internal/repository"
	"filehost/internal/storage"
)

type AdminService struct {
	config    repository.ConfigStore
	store     *storage.Store
	usage     *usageTracker
	rec       *recorder
	protected string
}

// NewAdminService builds the admin operations. protected names the bootstrap
// admin, which can be neither deleted nor demoted.
func NewAdminService(config repository.ConfigStore, store *storage.Store, usage *usageTracker, rec *recorder, protected string) *AdminService {
	return &AdminService{config: config, store: store, usage: usage, rec: rec, protected: protected}
}

// Overview lists users, pending requests and every file, persisting fresh storageUsed values.
func (s *AdminService) Overview(ctx context.Context) (AdminOverview, error) {
	doc, err := s.config.Load(ctx)
	if err != nil {
		return AdminOverview{}, err
	}
	names, usage, err := s.usage.measureAll(doc)
	if err != nil {
		return AdminOverview{}, err
	}

	out := AdminOverview{
		Users:           make([]UserSummary, 0, len(names)),
		PendingRequests: make([]PendingView, 0, len(doc.PendingRequests)),
	}
	totals := make(map[string]int64, len(names))
	var files []models.StoredFile
	for _, name := range names {
		user, nu := doc.Users[name], usage[name]
		totals[name] = nu.total
		files = append(files, nu.files...)
		out.Users = append(out.Users, UserSummary{
			Username:         name,
			Role:             user.Role,
			Email:            user.Email,
			CreatedAt:        user.CreatedAt,
			StorageUsed:      nu.total,
			StorageUsedHuman: HumanSize(nu.total),
			FileCount:        len(nu.files),
		})
		out.Stats.TotalBytes += nu.total
	}
	for _, req := range doc.PendingRequests {
		out.PendingRequests = append(out.PendingRequests, PendingView{
			Username:    req.Username,
			Email:       req.Email,
			RequestedAt: req.RequestedAt,
		})
	}

	s.usage.persistBestEffort(ctx, totals)

	sortFilesNewestFirst(files)
	out.Files = toFileViews(files)
	out.Stats.Users = len(names)
	out.Stats.Pending = len(doc.PendingRequests)
	out.Stats.Files = len(files)
	return out, nil
}

// Approve turns a pending request into a regular user account.
func (s *AdminService) Approve(ctx context.Context, actor, username string) error {
	err := s.config.Update(ctx, func(doc *models.Document) error {
		i := doc.PendingIndex(username)
		if i < 0 {
			return ErrRequestNotFound
		}
		if _, ok := doc.Users[username]; ok {
			return ErrUsernameTaken
		}
		req := doc.PendingRequests[i]
		doc.Users[username] = &models.UserRecord{
			PasswordHash: req.PasswordHash,
			Role:         models.RoleUser,
			Email:        req.Email,
			CreatedAt:    nowUTC(),
		}
		doc.RemovePending(i)
		return nil
	})
	if err != nil {
		return err
	}
	s.rec.record(ctx, models.EventApprove, actor, username, "registration approved", nil)
	return nil
}

// Deny drops a pending request.
func (s *AdminService) Deny(ctx context.Context, actor, username string) error {
	err := s.config.Update(ctx, func(doc *models.Document) error {
		i := doc.PendingIndex(username)
		if i < 0 {
			return ErrRequestNotFound
		}
		doc.RemovePending(i)
		return nil
	})
	if err != nil {
		return err
	}
	s.rec.record(ctx, models.EventDeny, actor, username, "registration denied", nil)
	return nil
}

// DeleteUser removes the account record, then its namespace.
func (s *AdminService) DeleteUser(ctx context.Context, actor, username string) error {
	if username == s.protected {
		return ErrProtectedAccount
	}
	err := s.config.Update(ctx, func(doc *models.Document) error {
		if _, ok := doc.Users[username]; !ok {
			return ErrUserNotFound
		}
		delete(doc.Users, username)
		return nil
	})
	if err != nil {
		return err
	}
	if err := s.store.Destroy(username); err != nil {
		return fmt.Errorf("remove files of %q: %w", username, err)
	}
	s.rec.record(ctx, models.EventDeleteUser, actor, username, "user deleted", nil)
	return nil
}

// ToggleRole flips user <-> admin and returns the new role.
func (s *AdminService) ToggleRole(ctx context.Context, actor, username string) (models.Role, error) {
	if username == s.protected {
		return "", ErrProtectedAccount
	}
	var role models.Role
	err := s.config.Update(ctx, func(doc *models.Document) error {
		user, ok := doc.Users[username]
		if !ok {
			return ErrUserNotFound
		}
		user.Role = user.Role.Toggled()
		role = user.Role
		return nil
	})
	if err != nil {
		return "", err
	}
	s.rec.record(ctx, models.EventToggleRole, actor, username, "role changed",
		map[string]any{"role": string(role)})
	return role, nil
}

// OpenFile reads a file from another user's namespace.
func (s *AdminService) OpenFile(ctx context.Context, owner, filename string) (io.ReadCloser, models.StoredFile, error) {
	ns, err := s.existingNamespace(ctx, owner)
	if err != nil {
		return nil, models.StoredFile{}, err
	}
	return ns.Open(filename)
}

// DeleteFile removes a file from another user's namespace.
func (s *AdminService) DeleteFile(ctx context.Context, actor, owner, filename string) error {
	ns, err := s.existingNamespace(ctx, owner)
	if err != nil {
		return err
	}
	if err := ns.Delete(filename); err != nil {
		return err
	}
	s.rec.record(ctx, models.EventDeleteFile, actor, filename, "file deleted by admin",
		map[string]any{"owner": owner})
	return nil
}

// Stats aggregates counts and sizes over every namespace.
func (s *AdminService) Stats(ctx context.Context) (models.StorageStats, error) {
	doc, err := s.config.Load(ctx)
	if err != nil {
		return models.StorageStats{}, err
	}
	names, usage, err := s.usage.measureAll(doc)
	if err != nil {
		return models.StorageStats{}, err
	}
	stats := models.StorageStats{Users: len(names), Pending: len(doc.PendingRequests)}
	for _, name := range names {
		stats.Files += len(usage[name].files)
		stats.TotalBytes += usage[name].total
	}
	return stats, nil
}

// existingNamespace opens the namespace of a known user without creating it.
func (s *AdminService) existingNamespace(ctx context.Context, owner string) (*storage.Namespace, error) {
	doc, err := s.config.Load(ctx)
	if err != nil {
		return nil, err
	}
	if _, ok := doc.Users[owner]; !ok {
		return nil, ErrUserNotFound
	}
	return lookupNamespace(s.store, owner)
}
