package config

import (
	"github.com/tauraamui/stilldaemon/internal/config"
	"github.com/tauraamui/stilldaemon/pkg/configdef"
)

type Creator interface {
	configdef.Creator
}

func DefaultCreator() Creator {
	return config.DefaultCreateResolver()
}

func CreatorAt(path string) Creator {
	return config.CreateResolverAt(path)
}
