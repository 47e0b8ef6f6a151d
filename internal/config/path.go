// Package config holds small configuration helpers shared by the bci
// commands.
package config

import (
	"os"
	"path/filepath"
	"strings"
)

// ExpandPath resolves a user-supplied path from config or flags: a leading
// ~ becomes the home directory and $VAR references are expanded. Values
// that cannot be resolved are returned unchanged, so a bad database path
// surfaces when it is opened rather than here.
func ExpandPath(path string) string {
	switch {
	case path == "":
		return path
	case path == "~":
		if home, err := os.UserHomeDir(); err == nil {
			path = home
		}
	case strings.HasPrefix(path, "~/"):
		if home, err := os.UserHomeDir(); err == nil {
			path = filepath.Join(home, path[2:])
		}
	}

	return os.ExpandEnv(path)
}
