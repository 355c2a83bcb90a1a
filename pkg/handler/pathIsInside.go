package handler

import (
	"path/filepath"
	"runtime"
	"strings"
)

// pathIsInside reports whether thePath is potentialParent or below it, on
// whole path segments. Used for symlink targets in directory listings.
func pathIsInside(thePath, potentialParent string) bool {
	thePath = stripTrailingSep(thePath)
	potentialParent = stripTrailingSep(potentialParent)

	if runtime.GOOS == "windows" {
		thePath = strings.ToLower(thePath)
		potentialParent = strings.ToLower(potentialParent)
	}

	plen := len(potentialParent)
	return strings.HasPrefix(thePath, potentialParent) && (len(thePath) == plen || thePath[plen] == filepath.Separator)
}

func stripTrailingSep(thePath string) string {
	return strings.TrimRight(thePath, string(filepath.Separator))
}
