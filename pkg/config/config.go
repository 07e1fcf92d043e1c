package config

import (
	"github.com/tauraamui/stilldaemon/internal/config"
	"github.com/tauraamui/stilldaemon/pkg/configdef"
)

type CreateResolver interface {
	configdef.CreateResolver
}

func DefaultCreateResolver() CreateResolver {
	return config.DefaultCreateResolver()
}

// CreateResolverAt uses path instead of the env var or user config dir
// when path is not empty.
func CreateResolverAt(path string) CreateResolver {
	return config.CreateResolverAt(path)
}
