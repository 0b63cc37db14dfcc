package toolsutil

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"path"
	"regexp"
	"strings"
	"unicode/utf8"
)

// Package-level logger for tools
var logger = slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{
	Level: slog.LevelError,
}))

// SetLogger allows setting a custom logger for the tools package
func SetLogger(l *slog.Logger) {
	if l != nil {
		logger = l
	}
}

// GetLogger returns the package logger
func GetLogger() *slog.Logger {
	return logger
}

var (
	ErrUnsafePath   = errors.New("unsafe path")
	ErrFileTooLarge = errors.New("file too large")
	ErrNotTextFile  = errors.New("not a text file")
)

// MaxFileSize is the largest file the file tools will open.
const MaxFileSize = 10 * 1024 * 1024

// ResolvePath maps a path given by the model onto the context filesystem
// root. Absolute and relative paths are both taken relative to the root;
// paths that climb above it are rejected.
func ResolvePath(p string) (string, error) {
	if strings.ContainsRune(p, 0) {
		return "", fmt.Errorf("%w: %q", ErrUnsafePath, p)
	}
	p = strings.ReplaceAll(p, "\\", "/")
	for _, seg := range strings.Split(p, "/") {
		if seg == ".." {
			return "", fmt.Errorf("%w: %s escapes the context folder", ErrUnsafePath, p)
		}
	}
	return path.Clean("/" + p), nil
}

// DisplayPath is the root-relative form of a resolved path shown to the model.
func DisplayPath(resolved string) string {
	rel := strings.TrimPrefix(path.Clean(resolved), "/")
	if rel == "" {
		return "."
	}
	return rel
}

// ValidateFileSize checks if file size is within limits
func ValidateFileSize(size int64) error {
	if size > MaxFileSize {
		return fmt.Errorf("%w: %d bytes exceeds the %d byte limit", ErrFileTooLarge, size, MaxFileSize)
	}
	return nil
}

// IsTextFile checks if content appears to be text
func IsTextFile(content []byte) bool {
	if len(content) == 0 {
		return true
	}

	sample := content
	if len(sample) > 8192 {
		sample = sample[:8192]
	}
	for _, b := range sample {
		if b == 0 {
			return false
		}
	}
	if !utf8.Valid(content) {
		return false
	}

	printable := 0
	for _, r := range string(sample) {
		if r >= 32 || r == '\t' || r == '\n' || r == '\r' {
			printable++
		}
	}
	return float64(printable)/float64(utf8.RuneCount(sample)) > 0.70
}

// GlobToRegexp compiles a glob into a regexp matched against slash-separated
// root-relative paths. "**" crosses directories, "*" and "?" do not.
func GlobToRegexp(glob string) (*regexp.Regexp, error) {
	var b strings.Builder
	b.WriteString("^")
	for i := 0; i < len(glob); i++ {
		c := glob[i]
		switch {
		case strings.HasPrefix(glob[i:], "**/"):
			b.WriteString("(?:.*/)?")
			i += 2
		case strings.HasPrefix(glob[i:], "**"):
			b.WriteString(".*")
			i++
		case c == '*':
			b.WriteString("[^/]*")
		case c == '?':
			b.WriteString("[^/]")
		case c == '{':
			end := strings.IndexByte(glob[i:], '}')
			if end < 0 {
				b.WriteString(regexp.QuoteMeta(string(c)))
				continue
			}
			alts := strings.Split(glob[i+1:i+end], ",")
			for j, alt := range alts {
				alts[j] = regexp.QuoteMeta(alt)
			}
			b.WriteString("(?:" + strings.Join(alts, "|") + ")")
			i += end
		default:
			b.WriteString(regexp.QuoteMeta(string(c)))
		}
	}
	b.WriteString("$")
	return regexp.Compile(b.String())
}

// MatchGlob reports whether rel matches glob. Globs without a slash match
// the base name at any depth, the way shell users expect "*.sql" to work.
func MatchGlob(re *regexp.Regexp, glob, rel string) bool {
	if !strings.Contains(glob, "/") {
		return re.MatchString(path.Base(rel))
	}
	return re.MatchString(rel)
}
