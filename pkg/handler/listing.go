package handler

import (
	"encoding/json"
	"net/http"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"sort"

	"github.com/koblas/ftpserve/pkg/swhttp"
	"github.com/pkg/errors"
)

const listingPrefix = "/ftp/"

func (state HandlerState) serveListing(w http.ResponseWriter, r *http.Request) {
	if state.NoDirectoryListing {
		state.sendError(w, r, &HTTPError{StatusCode: http.StatusNotFound, Err: errors.New("directory listing disabled")})
		return
	}

	page, err := state.renderDirectory()
	if err != nil {
		state.sendError(w, r, err)
		return
	}

	if acceptJSON(r) {
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		if err := json.NewEncoder(w).Encode(page); err != nil {
			state.logger.Info("write listing", "error", err)
		}
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := swhttp.RenderDirectory(w, page); err != nil {
		state.logger.Info("write listing", "error", err)
	}
}

func (state HandlerState) renderDirectory() (swhttp.DirectoryPage, error) {
	entries, err := os.ReadDir(state.Public)
	if err != nil {
		return swhttp.DirectoryPage{}, toHTTPError(errors.Wrap(err, "read public directory"))
	}

	files := []swhttp.DirectoryEntry{}
	for _, entry := range entries {
		if !canBeListed(state.Unlisted, entry.Name()) {
			continue
		}

		info, err := entry.Info()
		if err != nil {
			continue
		}

		isDir := entry.IsDir()
		if entry.Type()&os.ModeSymlink != 0 {
			target, ok := state.symlinkTarget(entry.Name())
			if !ok {
				continue
			}
			info = target
			isDir = target.IsDir()
		}

		details := swhttp.DirectoryEntry{
			Title:    entry.Name(),
			Name:     entry.Name(),
			Ext:      path.Ext(entry.Name()),
			IsDir:    isDir,
			Relative: listingPrefix + url.PathEscape(entry.Name()),
		}

		if isDir {
			details.Relative += "/"
		} else {
			details.Size = info.Size()
		}

		if details.Ext != "" {
			details.Ext = details.Ext[1:]
		} else {
			details.Ext = "txt"
		}

		files = append(files, details)
	}

	// Directories first, then alphabetical
	sort.SliceStable(files, func(i, j int) bool {
		if files[i].IsDir != files[j].IsDir {
			return files[i].IsDir
		}
		return files[i].Name < files[j].Name
	})

	return swhttp.DirectoryPage{
		Directory: listingPrefix,
		Files:     files,
	}, nil
}

// symlinkTarget follows a link in the public directory. Links are only
// listed when enabled and when they stay inside the public directory.
func (state HandlerState) symlinkTarget(name string) (os.FileInfo, bool) {
	if !state.Symlinks {
		return nil, false
	}

	root, err := filepath.EvalSymlinks(state.Public)
	if err != nil {
		return nil, false
	}
	target, err := filepath.EvalSymlinks(filepath.Join(state.Public, name))
	if err != nil || !pathIsInside(target, root) {
		return nil, false
	}

	info, err := os.Stat(target)
	if err != nil {
		return nil, false
	}
	return info, true
}

func canBeListed(excluded []string, file string) bool {
	for _, pattern := range excluded {
		if ok, _ := path.Match(pattern, file); ok {
			return false
		}
	}

	return true
}
