package service

import (
	"context"
	"errors"
	"fmt"
	"io"

	"filehost/internal/logger"
	"filehost/internal/models"
	"filehost/internal/repository"
	"filehost/internal/storage"
)

type FileService struct {
	config repository.ConfigStore
	store  *storage.Store
	usage  *usageTracker
	rec    *recorder
	log    *logger.Logger
}

func NewFileService(config repository.ConfigStore, store *storage.Store, usage *usageTracker, rec *recorder, log *logger.Logger) *FileService {
	return &FileService{config: config, store: store, usage: usage, rec: rec, log: log}
}

// Dashboard lists the caller's files, or every namespace for admins, and refreshes storageUsed.
func (s *FileService) Dashboard(ctx context.Context, sess models.Session) (DashboardView, error) {
	view := DashboardView{Username: sess.Username, Role: sess.Role}

	var (
		files  []models.StoredFile
		totals = map[string]int64{}
	)
	if sess.Role == models.RoleAdmin {
		doc, err := s.config.Load(ctx)
		if err != nil {
			return DashboardView{}, err
		}
		names, usage, err := s.usage.measureAll(doc)
		if err != nil {
			return DashboardView{}, err
		}
		for _, name := range names {
			files = append(files, usage[name].files...)
			totals[name] = usage[name].total
			view.StorageUsed += usage[name].total
		}
	} else {
		nu, err := s.usage.measure(sess.Username)
		if err != nil {
			return DashboardView{}, err
		}
		files = nu.files
		totals[sess.Username] = nu.total
		view.StorageUsed = nu.total
	}

	s.usage.persistBestEffort(ctx, totals)

	sortFilesNewestFirst(files)
	view.Files = toFileViews(files)
	view.TotalFiles = len(files)
	view.StorageUsedHuman = HumanSize(view.StorageUsed)
	return view, nil
}

// Upload stores content under a sanitized, non-colliding name and returns that name.
func (s *FileService) Upload(ctx context.Context, username, filename string, content io.Reader) (string, error) {
	ns, err := s.store.NamespaceFor(username)
	if err != nil {
		return "", err
	}

	cr := &countingReader{r: content}
	stored, err := ns.Store(filename, cr)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrUploadFailed, err)
	}

	s.rec.record(ctx, models.EventUpload, username, stored, "file uploaded",
		map[string]any{"original_name": filename, "size": cr.n})
	return stored, nil
}

// Open returns a reader for one of the caller's files.
func (s *FileService) Open(_ context.Context, username, filename string) (io.ReadCloser, models.StoredFile, error) {
	ns, err := lookupNamespace(s.store, username)
	if err != nil {
		return nil, models.StoredFile{}, err
	}
	return ns.Open(filename)
}

// Delete removes one of the caller's files.
func (s *FileService) Delete(ctx context.Context, username, filename string) error {
	ns, err := lookupNamespace(s.store, username)
	if err != nil {
		return err
	}
	if err := ns.Delete(filename); err != nil {
		return err
	}
	s.rec.record(ctx, models.EventDeleteFile, username, filename, "file deleted",
		map[string]any{"owner": username})
	return nil
}

// lookupNamespace opens an existing namespace. A missing directory holds no files.
func lookupNamespace(store *storage.Store, username string) (*storage.Namespace, error) {
	ns, ok, err := store.Lookup(username)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrFileNotFound
	}
	return ns, nil
}

// IsNotFound reports whether err means the requested file or user does not exist.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrFileNotFound) || errors.Is(err, ErrUserNotFound)
}

type countingReader struct {
	r io.Reader
	n int64
}

func (c *countingReader) Read(p []byte) (int, error) {
	n, err := c.r.Read(p)
	c.n += int64(n)
	return n, err
}
