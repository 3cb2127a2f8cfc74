package intercept

import (
	"os"

	"github.com/byterings/gix/internal/platform"
)

func dirExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}

func expand(path string) string {
	if expanded, err := platform.ExpandTilde(path); err == nil {
		return expanded
	}
	return path
}
