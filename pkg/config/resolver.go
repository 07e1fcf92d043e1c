package config

import (
	"github.com/tauraamui/stilldaemon/internal/config"
	"github.com/tauraamui/stilldaemon/pkg/configdef"
)

type Resolver interface {
	configdef.Resolver
}

func DefaultResolver() Resolver {
	return config.DefaultCreateResolver()
}

func ResolverAt(path string) Resolver {
	return config.CreateResolverAt(path)
}
