package cli

import (
	"os"
	"path/filepath"

	"github.com/ardnew/munge/pkg"
)

// baseConfig is the base name of the configuration files.
const baseConfig = "config"

// configPath returns the path formed by joining the configuration directory
// with the given path elements.
func configPath(elem ...string) string {
	return filepath.Join(append([]string{pkg.ConfigDir()}, elem...)...)
}

// mkdirAllRequired creates all required runtime directories.
func mkdirAllRequired() error {
	for _, dir := range []string{pkg.ConfigDir(), pkg.CacheDir()} {
		if err := os.MkdirAll(dir, pkg.DirMode); err != nil {
			return err
		}
	}

	return nil
}
