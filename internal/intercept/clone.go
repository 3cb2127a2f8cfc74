package intercept

import (
	"path"
	"path/filepath"
	"strings"

	"github.com/go-git/go-git/v5/plumbing/transport"
)

var urlPrefixes = []string{"http://", "https://", "ssh://", "git://", "file://", "git@"}

// IsURLShaped reports whether arg looks like a repository location
func IsURLShaped(arg string) bool {
	if strings.HasSuffix(arg, ".git") {
		return true
	}
	for _, p := range urlPrefixes {
		if strings.HasPrefix(arg, p) {
			return true
		}
	}
	return false
}

// CloneURL returns the last URL-shaped argument of a clone, or ""
func CloneURL(args []string) string {
	for i := len(args) - 1; i >= 0; i-- {
		if !strings.HasPrefix(args[i], "-") && IsURLShaped(args[i]) {
			return args[i]
		}
	}
	return ""
}

// RepoName derives the directory git clone creates for a URL
func RepoName(rawURL string) string {
	var p string
	if ep, err := transport.NewEndpoint(rawURL); err == nil && ep.Path != "" {
		p = path.Base(filepath.ToSlash(ep.Path))
	} else {
		trimmed := strings.TrimRight(rawURL, "/")
		p = trimmed[strings.LastIndexAny(trimmed, "/:")+1:]
	}
	p = strings.TrimSuffix(p, ".git")
	if p == "." || p == "/" {
		return ""
	}
	return p
}

// CloneDir locates the working copy created by git clone args run in cwd.
// It prefers an explicit directory argument, then the name derived from
// the repository URL. Both must exist as directories.
func CloneDir(args []string, cwd string, isDir func(string) bool) (string, bool) {
	if len(args) > 0 && args[0] == "clone" {
		args = args[1:]
	}
	if len(args) == 0 {
		return "", false
	}

	resolve := func(p string) string {
		if filepath.IsAbs(p) {
			return filepath.Clean(p)
		}
		return filepath.Join(cwd, p)
	}

	last := args[len(args)-1]
	if !strings.HasPrefix(last, "-") && !IsURLShaped(last) {
		if dir := resolve(last); isDir(dir) {
			return dir, true
		}
	}

	if url := CloneURL(args); url != "" {
		if name := RepoName(url); name != "" {
			if dir := resolve(name); isDir(dir) {
				return dir, true
			}
		}
	}

	return "", false
}
