package workspace

import (
	"fmt"
	"net/url"
	"os"
	"os/user"
	"path"
	"path/filepath"
	"strings"
)

// PathKind tells how a raw filepath was written.
type PathKind string

const (
	PathKindPlain PathKind = "path"
	PathKindURI   PathKind = "uri"
)

// Filepath is a normalized, slash-separated path.
type Filepath struct {
	Kind     PathKind
	Filepath string
}

// ConvertFromFilepath normalizes a raw path. Plain paths and file:// URIs are
// accepted; empty input, NUL bytes and other URI schemes are errors.
func ConvertFromFilepath(raw string) (Filepath, error) {
	if strings.TrimSpace(raw) == "" {
		return Filepath{}, ErrEmptyPath
	}
	if strings.ContainsRune(raw, 0) {
		return Filepath{}, fmt.Errorf("filepath %q contains a NUL byte", raw)
	}

	if i := strings.Index(raw, "://"); i > 0 {
		u, err := url.Parse(raw)
		if err != nil {
			return Filepath{}, fmt.Errorf("failed to parse uri %q: %w", raw, err)
		}
		if u.Scheme != "file" {
			return Filepath{}, fmt.Errorf("unsupported uri scheme %q", u.Scheme)
		}
		if u.Path == "" || u.Path == "/" {
			return Filepath{}, fmt.Errorf("uri %q has no path", raw)
		}
		return Filepath{Kind: PathKindURI, Filepath: path.Clean(u.Path)}, nil
	}

	return Filepath{Kind: PathKindPlain, Filepath: path.Clean(filepath.ToSlash(raw))}, nil
}

// SplitPath returns the directory (empty at the workspace root) and file name.
func SplitPath(raw string) (dir, file string, err error) {
	p, err := ConvertFromFilepath(raw)
	if err != nil {
		return "", "", err
	}
	dir, file = path.Split(p.Filepath)
	dir = strings.TrimSuffix(dir, "/")
	if dir == "" && strings.HasPrefix(p.Filepath, "/") {
		dir = "/"
	}
	return dir, file, nil
}

// DisplayFileName returns the base name of raw, or "" when raw is malformed.
func DisplayFileName(raw string) string {
	_, file, err := SplitPath(raw)
	if err != nil {
		return ""
	}
	return file
}

// DirectoryDisplay returns the parent directory of raw, or "" when raw is at the
// root or malformed.
func DirectoryDisplay(raw string) string {
	dir, _, err := SplitPath(raw)
	if err != nil {
		return ""
	}
	return dir
}

// FormatFileDescription is the human readable location shown next to a file.
func FormatFileDescription(p Filepath) string {
	dir := path.Dir(p.Filepath)
	if dir == "." {
		return ""
	}
	if p.Kind == PathKindURI {
		return "file://" + dir
	}
	return dir
}

// ExpandPath expands the tilde (~) in a path to the user's home directory
// and returns the absolute path.
func ExpandPath(p string) (string, error) {
	if strings.HasPrefix(p, "~/") {
		usr, err := user.Current()
		if err != nil {
			return p, err
		}
		p = filepath.Join(usr.HomeDir, p[2:])
	} else if p == "~" {
		usr, err := user.Current()
		if err != nil {
			return p, err
		}
		p = usr.HomeDir
	}

	absPath, err := filepath.Abs(p)
	if err != nil {
		return p, err
	}

	return absPath, nil
}

// IsDirectory checks if a path is a directory
func IsDirectory(p string) bool {
	expandedPath, err := ExpandPath(p)
	if err != nil {
		return false
	}

	info, err := os.Stat(expandedPath)
	if err != nil {
		return false
	}

	return info.IsDir()
}
