package storage

import (
	"sort"

	"github.com/spf13/afero"
	"github.com/tauraamui/stilldaemon/pkg/log"
)

// Retention caps how many capture files are kept at the mount root.
type Retention struct {
	resolver *Resolver
}

func NewRetention(resolver *Resolver) *Retention {
	return &Retention{resolver: resolver}
}

// Enforce deletes the oldest files so at most maxFiles remain. Names
// sort chronologically so the smallest names go first. A maxFiles of
// zero disables retention. Returns the names that were removed.
func (r *Retention) Enforce(maxFiles int) []string {
	if maxFiles <= 0 {
		return nil
	}

	root, err := r.resolver.Resolve()
	if err != nil {
		log.Debug("Skipping retention, mount root unresolved: %v", err)
		return nil
	}

	fs := r.resolver.Fs()
	entries, err := afero.ReadDir(fs, root.Path)
	if err != nil {
		log.Error("Unable to list %s for retention: %v", root.Path, err)
		return nil
	}

	var names []string
	// symlinks and devices are never captures
	for _, e := range entries {
		if e.Mode().IsRegular() {
			names = append(names, e.Name())
		}
	}

	if len(names) <= maxFiles {
		return nil
	}
	sort.Strings(names)

	var removed []string
	for _, name := range names[:len(names)-maxFiles] {
		p := root.Join(name)
		log.Info("Removing old capture: %s", p)
		if err := fs.Remove(p); err != nil {
			log.Error("Unable to remove old capture %s: %v", p, err)
			continue
		}
		removed = append(removed, name)
	}
	return removed
}
