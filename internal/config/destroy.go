package config

import (
	"errors"
	"os"

	"github.com/tauraamui/xerror"
)

func destroy(explicitPath string) error {
	path, err := resolveConfigPath(explicitPath)
	if err != nil {
		return err
	}

	if err := fs.Remove(path); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return xerror.Errorf("unable to remove config file %s: %w", path, err)
	}
	return nil
}
