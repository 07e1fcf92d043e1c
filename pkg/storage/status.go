package storage

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/afero"
	"github.com/tauraamui/stilldaemon/pkg/log"
)

type Status struct {
	Present bool
	Card    CardType
	Root    string
}

func (r *Resolver) Status() Status {
	card := r.medium.CardType()
	s := Status{Present: card != CardNone, Card: card}
	if root, err := r.Resolve(); err == nil {
		s.Root = root.Path
	}
	return s
}

func (s Status) String() string {
	sb := strings.Builder{}
	sb.WriteString("SD mounted: ")
	if s.Present {
		sb.WriteString("yes\n")
	} else {
		sb.WriteString("no\n")
	}
	sb.WriteString("Detected mount root: ")
	if len(s.Root) > 0 {
		sb.WriteString(s.Root + "\n")
	} else {
		sb.WriteString("(none)\n")
	}
	sb.WriteString(fmt.Sprintf("Card type: %s\n", s.Card))
	return sb.String()
}

// DebugList logs every file under the resolved root with its size, or
// which candidates could be opened when nothing resolves.
func (r *Resolver) DebugList() {
	log.Info("Scanning storage for files...")
	if !Present(r.medium) {
		log.Info("Storage reports no card present")
		return
	}

	root, err := r.Resolve()
	if err != nil {
		log.Info("No mount root detected: %v", err)
		for _, s := range r.scan() {
			if s.viable {
				log.Info("Candidate %s opened but holds no files", s.path)
				continue
			}
			log.Info("Unable to open candidate %s: %v", s.path, s.err)
		}
		return
	}

	log.Info("Detected mount root: %s", root.Path)
	err = afero.Walk(r.fs, root.Path, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			log.Info("Unable to read %s: %v", path, err)
			return nil
		}
		if path == root.Path {
			return nil
		}
		if info.IsDir() {
			log.Info("DIR  : %s", filepath.ToSlash(path))
			return nil
		}
		log.Info("FILE : %s  (%d bytes)", filepath.ToSlash(path), info.Size())
		return nil
	})
	if err != nil {
		log.Error("Storage scan failed: %v", err)
	}
	log.Info("Storage scan complete")
}
