package config

import (
	"github.com/tauraamui/stilldaemon/pkg/configdef"
)

// DefaultCreateResolver reads and writes the config at the env var or
// user config dir location.
func DefaultCreateResolver() configdef.CreateResolver {
	return fileResolver{}
}

// CreateResolverAt pins the config to path, an empty path behaves like
// DefaultCreateResolver.
func CreateResolverAt(path string) configdef.CreateResolver {
	return fileResolver{path: path}
}

func DefaultDestroyer() configdef.Destroyer {
	return fileResolver{}
}

func DestroyerAt(path string) configdef.Destroyer {
	return fileResolver{path: path}
}

type fileResolver struct {
	path string
}

func (f fileResolver) Resolve() (configdef.Values, error) {
	return load(f.path)
}

func (f fileResolver) Create() error {
	return create(f.path)
}

func (f fileResolver) Destroy() error {
	return destroy(f.path)
}
