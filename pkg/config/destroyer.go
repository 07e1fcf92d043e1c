package config

import (
	"github.com/tauraamui/stilldaemon/internal/config"
	"github.com/tauraamui/stilldaemon/pkg/configdef"
)

type Destroyer interface {
	configdef.Destroyer
}

func DefaultDestroyer() Destroyer {
	return config.DefaultDestroyer()
}

func DestroyerAt(path string) Destroyer {
	return config.DestroyerAt(path)
}
