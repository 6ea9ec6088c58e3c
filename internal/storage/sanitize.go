package storage

import (
	"path/filepath"
	"regexp"
	"runtime"
	"strings"

	"golang.org/x/text/unicode/norm"
)

// PlaceholderName replaces an upload name that sanitizes to nothing.
const PlaceholderName = "unnamed_file"

const maxUsernameLen = 64

var (
	unsafeFilenameChars = regexp.MustCompile(`[^A-Za-z0-9_.-]`)
	usernamePattern     = regexp.MustCompile(`^[A-Za-z0-9_.-]+$`)

	windowsDeviceNames = map[string]struct{}{
		"CON": {}, "PRN": {}, "AUX": {}, "NUL": {},
		"COM0": {}, "COM1": {}, "COM2": {}, "COM3": {}, "COM4": {}, "COM5": {}, "COM6": {}, "COM7": {}, "COM8": {}, "COM9": {},
		"LPT0": {}, "LPT1": {}, "LPT2": {}, "LPT3": {}, "LPT4": {}, "LPT5": {}, "LPT6": {}, "LPT7": {}, "LPT8": {}, "LPT9": {},
	}
)

// SanitizeFilename reduces an uploaded file name to a flat, ASCII-only name:
//
//	"My cool movie.mov"   -> "My_cool_movie.mov"
//	"../../../etc/passwd" -> "etc_passwd"
//	"Grüße.txt"           -> "Gruse.txt"
//
// On Windows, device names such as CON or com1.txt get a leading "_".
// The result may be empty.
func SanitizeFilename(name string) string {
	return sanitizeFilename(name, runtime.GOOS == "windows")
}

func sanitizeFilename(name string, windows bool) string {
	name = norm.NFKD.String(name)

	var b strings.Builder
	b.Grow(len(name))
	for _, r := range name {
		if r < 0x80 {
			b.WriteRune(r)
		}
	}
	name = b.String()

	name = strings.NewReplacer("/", " ", `\`, " ").Replace(name)
	name = strings.Join(strings.Fields(name), "_")
	name = unsafeFilenameChars.ReplaceAllString(name, "")
	name = strings.Trim(name, "._")

	if windows && name != "" {
		stem, _, _ := strings.Cut(name, ".")
		if _, reserved := windowsDeviceNames[strings.ToUpper(stem)]; reserved {
			name = "_" + name
		}
	}
	return name
}

// ValidUsername reports whether name is safe to use as a single directory name.
func ValidUsername(name string) bool {
	if name == "." || name == ".." || len(name) > maxUsernameLen {
		return false
	}
	return usernamePattern.MatchString(name)
}

// validName reports whether name is one plain path segment inside a namespace.
// Checked on every access, regardless of how the name was produced.
func validName(name string) bool {
	if name == "" || name == "." || name == ".." {
		return false
	}
	if strings.ContainsAny(name, "/\\\x00") || filepath.IsAbs(name) {
		return false
	}
	return filepath.Base(name) == name
}

// splitExt splits "report.tar.gz" into "report.tar" and ".gz".
func splitExt(name string) (string, string) {
	ext := filepath.Ext(name)
	if ext == name {
		return name, ""
	}
	return strings.TrimSuffix(name, ext), ext
}
