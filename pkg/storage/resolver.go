package storage

import (
	"path/filepath"

	"github.com/spf13/afero"
	"github.com/tauraamui/xerror"
)

const FilesystemRoot = "/"

// DefaultCandidates mirrors where SD volumes tend to surface: straight at
// the volume root, or under a named sdcard mount point.
var DefaultCandidates = []string{FilesystemRoot, "/sdcard"}

type Root struct {
	Path string
}

func (r Root) Join(name string) string {
	return filepath.Join(r.Path, name)
}

// Resolver works out which candidate root captures currently live under.
// Mount behaviour differs between boots so nothing here is cached.
type Resolver struct {
	fs         afero.Fs
	medium     Medium
	candidates []string
}

func NewResolver(fs afero.Fs, medium Medium, candidates ...string) *Resolver {
	if len(candidates) == 0 {
		candidates = DefaultCandidates
	}
	return &Resolver{fs: fs, medium: medium, candidates: candidates}
}

func (r *Resolver) Fs() afero.Fs { return r.fs }

func (r *Resolver) Medium() Medium { return r.medium }

func (r *Resolver) Candidates() []string { return r.candidates }

type candidateScan struct {
	path   string
	files  int
	viable bool
	err    error
}

// Resolve picks the viable candidate holding the most files, earlier
// candidates winning ties. When every viable candidate is empty a named
// mount point is preferred over the filesystem root.
func (r *Resolver) Resolve() (Root, error) {
	if !Present(r.medium) {
		return Root{}, xerror.Errorf("unable to resolve mount root: %w", ErrNoMedium).AsKind(KindNoMedium)
	}

	scans := r.scan()

	best := -1
	for i, s := range scans {
		if !s.viable {
			continue
		}
		if best == -1 || s.files > scans[best].files {
			best = i
		}
	}

	if best == -1 {
		return Root{}, xerror.Errorf(
			"none of the candidates could be opened: %w", ErrNoMountRoot,
		).AsKind(KindNoMountRoot).WithParam("candidates", r.candidates)
	}

	if scans[best].files == 0 {
		for _, s := range scans {
			if s.viable && filepath.Clean(s.path) != FilesystemRoot {
				return Root{Path: s.path}, nil
			}
		}
	}

	return Root{Path: scans[best].path}, nil
}

func (r *Resolver) scan() []candidateScan {
	scans := make([]candidateScan, 0, len(r.candidates))
	for _, c := range r.candidates {
		count, err := countFiles(r.fs, c)
		scans = append(scans, candidateScan{path: c, files: count, viable: err == nil, err: err})
	}
	return scans
}

func countFiles(fs afero.Fs, path string) (int, error) {
	entries, err := afero.ReadDir(fs, path)
	if err != nil {
		return 0, err
	}
	count := 0
	for _, e := range entries {
		if e.Mode().IsRegular() {
			count++
		}
	}
	return count, nil
}
