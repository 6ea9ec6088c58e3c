// Package storage maps users to isolated directories under a single upload root.
package storage

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"filehost/internal/models"

	"github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/osfs"
	"github.com/go-git/go-billy/v5/util"
)

var (
	ErrFileNotFound = errors.New("file not found")
	ErrInvalidName  = errors.New("invalid name")
)

const (
	dirMode  = 0o755
	fileMode = 0o644

	// maxNameAttempts bounds the name_N.ext probing on upload.
	maxNameAttempts = 100_000
)

// Store owns the upload root. Every namespace is a directory directly below it.
type Store struct {
	rootDir string
	root    billy.Filesystem
}

// NewStore opens (and creates if needed) the upload root.
func NewStore(rootDir string) (*Store, error) {
	abs, err := filepath.Abs(rootDir)
	if err != nil {
		return nil, fmt.Errorf("resolve upload root %q: %w", rootDir, err)
	}
	if err := os.MkdirAll(abs, dirMode); err != nil {
		return nil, fmt.Errorf("create upload root %q: %w", abs, err)
	}
	return &Store{
		rootDir: abs,
		// bound OS keeps every resolved path inside abs, symlinks included
		root: osfs.New(abs, osfs.WithBoundOS()),
	}, nil
}

// Root returns the absolute upload root.
func (s *Store) Root() string { return s.rootDir }

// NamespaceFor returns the namespace of username, creating its directory when absent.
// Existing content is never touched.
func (s *Store) NamespaceFor(username string) (*Namespace, error) {
	if !ValidUsername(username) {
		return nil, fmt.Errorf("%w: username %q", ErrInvalidName, username)
	}
	if err := s.root.MkdirAll(username, dirMode); err != nil {
		return nil, fmt.Errorf("create namespace %q: %w", username, err)
	}
	nsFS, err := s.root.Chroot(username)
	if err != nil {
		return nil, fmt.Errorf("open namespace %q: %w", username, err)
	}
	return &Namespace{owner: username, fs: nsFS}, nil
}

// Lookup returns the namespace of username without creating it.
// ok is false when the directory does not exist.
func (s *Store) Lookup(username string) (ns *Namespace, ok bool, err error) {
	ok, err = s.Exists(username)
	if err != nil || !ok {
		return nil, false, err
	}
	nsFS, err := s.root.Chroot(username)
	if err != nil {
		return nil, false, fmt.Errorf("open namespace %q: %w", username, err)
	}
	return &Namespace{owner: username, fs: nsFS}, true, nil
}

// Exists reports whether username already has a namespace directory.
func (s *Store) Exists(username string) (bool, error) {
	if !ValidUsername(username) {
		return false, fmt.Errorf("%w: username %q", ErrInvalidName, username)
	}
	info, err := s.root.Stat(username)
	if errors.Is(err, fs.ErrNotExist) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("stat namespace %q: %w", username, err)
	}
	return info.IsDir(), nil
}

// Destroy removes the whole namespace of username. A missing namespace is not an error.
func (s *Store) Destroy(username string) error {
	if !ValidUsername(username) {
		return fmt.Errorf("%w: username %q", ErrInvalidName, username)
	}
	if err := util.RemoveAll(s.root, username); err != nil {
		return fmt.Errorf("remove namespace %q: %w", username, err)
	}
	return nil
}

// Namespace is one user's directory.
type Namespace struct {
	owner string
	fs    billy.Filesystem
}

// Owner returns the username the namespace belongs to.
func (n *Namespace) Owner() string { return n.owner }

// Dir returns the absolute directory of the namespace.
func (n *Namespace) Dir() string { return n.fs.Root() }

// ListFiles returns the regular files at the top of the namespace, in no particular order.
func (n *Namespace) ListFiles() ([]models.StoredFile, error) {
	entries, err := n.fs.ReadDir(".")
	if err != nil {
		return nil, fmt.Errorf("list namespace %q: %w", n.owner, err)
	}
	files := make([]models.StoredFile, 0, len(entries))
	for _, e := range entries {
		if !e.Mode().IsRegular() {
			continue
		}
		files = append(files, models.StoredFile{
			Name:       e.Name(),
			Owner:      n.owner,
			Size:       e.Size(),
			ModifiedAt: e.ModTime().UTC(),
		})
	}
	return files, nil
}

// TotalSize sums the sizes of all regular files in the namespace tree.
func (n *Namespace) TotalSize() (int64, error) {
	var total int64
	err := util.Walk(n.fs, ".", func(_ string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.Mode().IsRegular() {
			total += info.Size()
		}
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("size namespace %q: %w", n.owner, err)
	}
	return total, nil
}

// Store writes content under a sanitized form of desiredName and returns the name used.
// An existing file is never overwritten: taken names get a numeric suffix before the
// extension (report_1.txt, report_2.txt, ...).
func (n *Namespace) Store(desiredName string, content io.Reader) (string, error) {
	name := SanitizeFilename(desiredName)
	if name == "" {
		name = PlaceholderName
	}
	base, ext := splitExt(name)

	for i := 0; i < maxNameAttempts; i++ {
		candidate := name
		if i > 0 {
			candidate = fmt.Sprintf("%s_%d%s", base, i, ext)
		}

		// O_EXCL makes the existence check and the create one step
		f, err := n.fs.OpenFile(candidate, os.O_WRONLY|os.O_CREATE|os.O_EXCL, fileMode)
		if errors.Is(err, fs.ErrExist) {
			continue
		}
		if err != nil {
			return "", fmt.Errorf("create %q in %q: %w", candidate, n.owner, err)
		}

		if _, err := io.Copy(f, content); err != nil {
			_ = f.Close()
			_ = n.fs.Remove(candidate)
			return "", fmt.Errorf("write %q in %q: %w", candidate, n.owner, err)
		}
		if err := f.Close(); err != nil {
			_ = n.fs.Remove(candidate)
			return "", fmt.Errorf("close %q in %q: %w", candidate, n.owner, err)
		}
		return candidate, nil
	}
	return "", fmt.Errorf("no free name for %q in %q after %d attempts", name, n.owner, maxNameAttempts)
}

// Stat describes a single regular file.
func (n *Namespace) Stat(name string) (models.StoredFile, error) {
	if !validName(name) {
		return models.StoredFile{}, fmt.Errorf("%w: %q", ErrInvalidName, name)
	}
	info, err := n.fs.Lstat(name)
	if errors.Is(err, fs.ErrNotExist) || (err == nil && !info.Mode().IsRegular()) {
		return models.StoredFile{}, fmt.Errorf("%w: %q", ErrFileNotFound, name)
	}
	if err != nil {
		return models.StoredFile{}, fmt.Errorf("stat %q in %q: %w", name, n.owner, err)
	}
	return models.StoredFile{
		Name:       info.Name(),
		Owner:      n.owner,
		Size:       info.Size(),
		ModifiedAt: info.ModTime().UTC(),
	}, nil
}

// Open returns a reader over a stored file. The caller closes it.
func (n *Namespace) Open(name string) (io.ReadCloser, models.StoredFile, error) {
	meta, err := n.Stat(name)
	if err != nil {
		return nil, models.StoredFile{}, err
	}
	f, err := n.fs.Open(name)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, models.StoredFile{}, fmt.Errorf("%w: %q", ErrFileNotFound, name)
	}
	if err != nil {
		return nil, models.StoredFile{}, fmt.Errorf("open %q in %q: %w", name, n.owner, err)
	}
	return f, meta, nil
}

// Delete removes a stored file; ErrFileNotFound when there is none.
func (n *Namespace) Delete(name string) error {
	if _, err := n.Stat(name); err != nil {
		return err
	}
	if err := n.fs.Remove(name); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("%w: %q", ErrFileNotFound, name)
		}
		return fmt.Errorf("remove %q in %q: %w", name, n.owner, err)
	}
	return nil
}
