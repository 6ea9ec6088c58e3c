package service

import (
	"context"
	"fmt"
	"sort"
	"time"

	"filehost/internal/logger"
	"filehost/internal/models"
	"filehost/internal/repository"
	"filehost/internal/storage"

	"github.com/dustin/go-humanize"
)

// usageTracker measures namespaces and writes the results back as storageUsed.
type usageTracker struct {
	config repository.ConfigStore
	store  *storage.Store
	log    *logger.Logger
}

func newUsageTracker(config repository.ConfigStore, store *storage.Store, log *logger.Logger) *usageTracker {
	return &usageTracker{config: config, store: store, log: log}
}

type namespaceUsage struct {
	files []models.StoredFile
	total int64
}

// measure never creates a namespace; a user without a directory has no usage.
func (u *usageTracker) measure(username string) (namespaceUsage, error) {
	ns, ok, err := u.store.Lookup(username)
	if err != nil {
		return namespaceUsage{}, err
	}
	if !ok {
		return namespaceUsage{files: []models.StoredFile{}}, nil
	}
	files, err := ns.ListFiles()
	if err != nil {
		return namespaceUsage{}, err
	}
	total, err := ns.TotalSize()
	if err != nil {
		return namespaceUsage{}, err
	}
	return namespaceUsage{files: files, total: total}, nil
}

// measureAll walks every user in doc, in username order.
func (u *usageTracker) measureAll(doc models.Document) ([]string, map[string]namespaceUsage, error) {
	names := sortedUsernames(doc)
	out := make(map[string]namespaceUsage, len(names))
	for _, name := range names {
		nu, err := u.measure(name)
		if err != nil {
			return nil, nil, fmt.Errorf("measure %q: %w", name, err)
		}
		out[name] = nu
	}
	return names, out, nil
}

// persist stores fresh totals. Users deleted in the meantime are skipped and
// nothing is written when every cached value is already current.
func (u *usageTracker) persist(ctx context.Context, totals map[string]int64) error {
	doc, err := u.config.Load(ctx)
	if err != nil {
		return err
	}
	if !usageChanged(doc, totals) {
		return nil
	}
	return u.config.Update(ctx, func(doc *models.Document) error {
		for name, total := range totals {
			if user, ok := doc.Users[name]; ok {
				user.StorageUsed = total
			}
		}
		return nil
	})
}

// persistBestEffort logs instead of failing a read-only view.
func (u *usageTracker) persistBestEffort(ctx context.Context, totals map[string]int64) {
	if err := u.persist(ctx, totals); err != nil && u.log != nil {
		u.log.Warnw("storage_used_persist_failed", "users", len(totals), "err", err)
	}
}

// scan recomputes storageUsed for every user.
func (u *usageTracker) scan(ctx context.Context) (int, error) {
	doc, err := u.config.Load(ctx)
	if err != nil {
		return 0, err
	}
	names, usage, err := u.measureAll(doc)
	if err != nil {
		return 0, err
	}
	totals := make(map[string]int64, len(names))
	for _, name := range names {
		totals[name] = usage[name].total
	}
	return len(totals), u.persist(ctx, totals)
}

func usageChanged(doc models.Document, totals map[string]int64) bool {
	for name, total := range totals {
		if user, ok := doc.Users[name]; ok && user.StorageUsed != total {
			return true
		}
	}
	return false
}

func sortedUsernames(doc models.Document) []string {
	names := make([]string, 0, len(doc.Users))
	for name := range doc.Users {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// sortFilesNewestFirst orders by modification time, then owner and name for stable output.
func sortFilesNewestFirst(files []models.StoredFile) {
	sort.Slice(files, func(i, j int) bool {
		a, b := files[i], files[j]
		if !a.ModifiedAt.Equal(b.ModifiedAt) {
			return a.ModifiedAt.After(b.ModifiedAt)
		}
		if a.Owner != b.Owner {
			return a.Owner < b.Owner
		}
		return a.Name < b.Name
	})
}

func toFileViews(files []models.StoredFile) []FileView {
	views := make([]FileView, 0, len(files))
	for _, f := range files {
		views = append(views, FileView{StoredFile: f, SizeHuman: HumanSize(f.Size)})
	}
	return views
}

// HumanSize renders a byte count with binary units, e.g. "1.5 KiB".
func HumanSize(n int64) string {
	if n < 0 {
		n = 0
	}
	return humanize.IBytes(uint64(n))
}

func nowUTC() time.Time { return time.Now().UTC() }
