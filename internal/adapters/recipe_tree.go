package adapters

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/ZanzyTHEbar/errbuilder-go"

	"repolint/internal/ports"
	"repolint/internal/types"
)

const (
	recipeFile  = "PKGBUILD"
	srcinfoFile = ".SRCINFO"
)

// RecipeTreeAdapter collects the materialised metadata of every recipe
// directory (one holding a PKGBUILD) below a root. Results are memoised
// per directory until the PKGBUILD or any metadata file changes.
type RecipeTreeAdapter struct {
	mu    sync.Mutex
	cache map[string]recipeCacheEntry
}

func NewRecipeTreeAdapter() *RecipeTreeAdapter {
	return &RecipeTreeAdapter{cache: map[string]recipeCacheEntry{}}
}

type recipeCacheEntry struct {
	modTime time.Time
	blob    types.RecipeBlob
}

func (a *RecipeTreeAdapter) ListRecipes(ctx context.Context, dir string, arches []string) ([]types.RecipeBlob, error) {
	var dirs []string
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() && d.Name() == recipeFile {
			dirs = append(dirs, filepath.Dir(path))
		}
		return nil
	})
	if err != nil {
		return nil, errbuilder.New().
			WithCode(errbuilder.CodeNotFound).
			WithMsg("failed to walk recipe tree " + dir).
			WithCause(err)
	}
	sort.Strings(dirs)
	blobs := make([]types.RecipeBlob, 0, len(dirs))
	for _, recipeDir := range dirs {
		if err := ctx.Err(); err != nil {
			return nil, errbuilder.New().
				WithCode(errbuilder.CodeInternal).
				WithMsg("reading recipes cancelled").
				WithCause(err)
		}
		blobs = append(blobs, a.loadRecipe(recipeDir, arches))
	}
	return blobs, nil
}

func (a *RecipeTreeAdapter) loadRecipe(dir string, arches []string) types.RecipeBlob {
	blob := types.RecipeBlob{Name: filepath.Base(dir), Path: dir}
	files := []string{recipeFile, srcinfoFile}
	for _, arch := range arches {
		files = append(files, srcinfoFile+"."+arch)
	}
	modTime, err := latestModTime(dir, files)
	if err != nil {
		blob.Err = err
		return blob
	}

	a.mu.Lock()
	if entry, ok := a.cache[dir]; ok && entry.modTime.Equal(modTime) {
		a.mu.Unlock()
		return entry.blob
	}
	a.mu.Unlock()

	blob.ModTime = modTime
	content, err := os.ReadFile(filepath.Join(dir, recipeFile))
	if err != nil {
		blob.Err = err
		return blob
	}
	sum := sha256.Sum256(content)
	blob.Digest = hex.EncodeToString(sum[:])

	blob.Metadata = map[string][]byte{}
	if data, err := readOptional(filepath.Join(dir, srcinfoFile)); err != nil {
		blob.Err = err
		return blob
	} else if data != nil {
		blob.Metadata[""] = data
	}
	for _, arch := range arches {
		data, err := readOptional(filepath.Join(dir, srcinfoFile+"."+arch))
		if err != nil {
			blob.Err = err
			return blob
		}
		if data != nil {
			blob.Metadata[arch] = data
		}
	}
	if len(blob.Metadata) == 0 {
		blob.Err = errbuilder.New().
			WithCode(errbuilder.CodeNotFound).
			WithMsg("recipe has no " + srcinfoFile)
	}

	a.mu.Lock()
	a.cache[dir] = recipeCacheEntry{modTime: modTime, blob: blob}
	a.mu.Unlock()
	return blob
}

// latestModTime returns the newest modification time among the files of
// dir that exist.
func latestModTime(dir string, names []string) (time.Time, error) {
	var latest time.Time
	for _, name := range names {
		info, err := os.Stat(filepath.Join(dir, name))
		if errors.Is(err, fs.ErrNotExist) {
			continue
		}
		if err != nil {
			return time.Time{}, err
		}
		if info.ModTime().After(latest) {
			latest = info.ModTime()
		}
	}
	return latest, nil
}

func readOptional(path string) ([]byte, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	return data, err
}

var _ ports.RecipeSourcePort = (*RecipeTreeAdapter)(nil)
