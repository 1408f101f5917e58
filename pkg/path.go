package pkg

import (
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"sync"
)

// DirMode is the permission mode of directories created for the command.
const DirMode os.FileMode = 0o700

var (
	debugBinary = regexp.MustCompile(`^__debug_bin\d*$`)
	leadingDots = regexp.MustCompile(`^\.+`)
)

// Prefix returns the base name of the running executable without its
// extension or leading dots. A binary built by the dlv debugger is reported
// as [Name].
//
// It names the configuration and cache directories.
var Prefix = sync.OnceValue(func() string {
	path := os.Args[0]
	if exe, err := os.Executable(); err == nil {
		path = exe
	}

	return prefixOf(path)
})

func prefixOf(path string) string {
	base := filepath.Base(path)
	base = strings.TrimSuffix(base, filepath.Ext(base))

	if debugBinary.MatchString(base) {
		return Name
	}

	if id := leadingDots.ReplaceAllString(base, ""); id != "" {
		return id
	}

	return Name
}

// ConfigDir returns the directory holding configuration files.
var ConfigDir = sync.OnceValue(func() string {
	return userDir(os.UserConfigDir, ".config")
})

// CacheDir returns the directory holding transient files such as REPL
// history and profiles.
var CacheDir = sync.OnceValue(func() string {
	return userDir(os.UserCacheDir, ".cache")
})

// userDir joins [Prefix] to the directory returned by lookup, falling back to
// hidden under the home directory and then to the working directory.
func userDir(lookup func() (string, error), hidden string) string {
	dir, err := lookup()
	if err != nil {
		if home, herr := os.UserHomeDir(); herr == nil {
			dir = filepath.Join(home, hidden)
		} else if wd, werr := os.Getwd(); werr == nil {
			dir = wd
		} else {
			dir = "."
		}
	}

	return filepath.Join(dir, Prefix())
}
