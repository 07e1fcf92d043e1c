package storage

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/afero"
	"github.com/tauraamui/xerror"
)

// Locate opens a previously captured file from a name that may or may
// not carry a mount prefix, trying each plausible location in turn.
func (r *Resolver) Locate(name string) (afero.File, os.FileInfo, error) {
	for _, p := range r.locateCandidates(name) {
		f, err := r.fs.Open(p)
		if err != nil {
			continue
		}
		info, err := f.Stat()
		if err != nil || info.IsDir() {
			f.Close()
			continue
		}
		return f, info, nil
	}
	return nil, nil, xerror.Errorf("unable to locate %q: %w", name, ErrNotFound).AsKind(KindNotFound)
}

func (r *Resolver) locateCandidates(name string) []string {
	for strings.HasPrefix(name, "./") {
		name = name[2:]
	}
	if len(name) == 0 || hasParentRef(name) {
		return nil
	}

	roots := map[string]bool{}
	for _, c := range r.candidates {
		roots[filepath.Clean(c)] = true
	}
	root, err := r.Resolve()
	if err == nil {
		roots[filepath.Clean(root.Path)] = true
	}

	trimmed := strings.TrimLeft(name, "/")
	var paths []string
	seen := map[string]bool{}
	// captures sit directly under a mount root, anything else is refused
	add := func(p string) {
		p = filepath.Clean(p)
		if !seen[p] && roots[filepath.Dir(p)] {
			seen[p] = true
			paths = append(paths, p)
		}
	}

	add(filepath.Join(FilesystemRoot, name))
	for _, c := range r.candidates {
		if filepath.Clean(c) != FilesystemRoot {
			add(filepath.Join(c, trimmed))
		}
	}
	add(filepath.Join(FilesystemRoot, trimmed))

	if err == nil {
		add(root.Join(trimmed))
	}

	return paths
}

func hasParentRef(name string) bool {
	for _, part := range strings.Split(filepath.ToSlash(name), "/") {
		if part == ".." {
			return true
		}
	}
	return false
}
