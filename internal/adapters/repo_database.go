package adapters

import (
	"context"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/ZanzyTHEbar/errbuilder-go"
	"github.com/rs/zerolog/log"

	"repolint/internal/ports"
	"repolint/internal/shared"
	"repolint/internal/types"
)

var databaseSuffixes = []string{".db.tar.zst", ".db.tar.xz", ".db.tar.gz", ".db.tar", ".db"}

// RepoDatabaseAdapter reads the desc records of a repository database,
// either packed (<repo>.db.tar.*) or extracted into a <repo>.db directory.
type RepoDatabaseAdapter struct{}

func NewRepoDatabaseAdapter() RepoDatabaseAdapter {
	return RepoDatabaseAdapter{}
}

func (a RepoDatabaseAdapter) ReadEntries(ctx context.Context, dir string, repo string, arches []string) ([]types.EntryBlob, error) {
	if strings.TrimSpace(repo) == "" {
		return nil, errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg("repository name is required")
	}
	archDirs, err := findArchDirs(dir, arches)
	if err != nil {
		return nil, err
	}
	var blobs []types.EntryBlob
	for _, archDir := range archDirs {
		arch := filepath.Base(archDir)
		path, info, ok := locateDatabase(archDir, repo)
		if !ok {
			log.Ctx(ctx).Debug().Str("dir", archDir).Str("repo", repo).Msg("no repository database")
			continue
		}
		var entries []types.EntryBlob
		if info.IsDir() {
			entries, err = readDatabaseDir(path, arch)
		} else {
			entries, err = readDatabaseArchive(path, arch)
		}
		if err != nil {
			return nil, errbuilder.New().
				WithCode(errbuilder.CodeInvalidArgument).
				WithMsg("failed to read repository database " + path).
				WithCause(err)
		}
		blobs = append(blobs, entries...)
	}
	return blobs, nil
}

func locateDatabase(archDir string, repo string) (string, fs.FileInfo, bool) {
	for _, suffix := range databaseSuffixes {
		path := filepath.Join(archDir, repo+suffix)
		info, err := os.Stat(path)
		if err == nil {
			return path, info, true
		}
	}
	return "", nil, false
}

func readDatabaseArchive(path string, arch string) ([]types.EntryBlob, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	tr, closeFn, err := openTar(f)
	if err != nil {
		return nil, err
	}
	defer closeFn()

	var blobs []types.EntryBlob
	for {
		header, err := tr.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		if !strings.HasSuffix(header.Name, "/desc") {
			continue
		}
		data, err := io.ReadAll(tr)
		if err != nil {
			return nil, err
		}
		blobs = append(blobs, types.EntryBlob{Arch: arch, Origin: path + ":" + header.Name, Desc: data})
	}
	return blobs, nil
}

func readDatabaseDir(path string, arch string) ([]types.EntryBlob, error) {
	matches, err := filepath.Glob(filepath.Join(path, "*", "desc"))
	if err != nil {
		return nil, err
	}
	sort.Strings(matches)
	blobs := make([]types.EntryBlob, 0, len(matches))
	for _, match := range matches {
		data, err := os.ReadFile(match)
		if err != nil {
			return nil, err
		}
		blobs = append(blobs, types.EntryBlob{Arch: arch, Origin: match, Desc: data})
	}
	return blobs, nil
}

// findArchDirs lists the directories below root named after one of
// arches.
func findArchDirs(root string, arches []string) ([]string, error) {
	allowed := shared.ToSet(arches)
	var dirs []string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		if strings.HasSuffix(d.Name(), ".db") && path != root {
			return filepath.SkipDir
		}
		if _, ok := allowed[d.Name()]; ok {
			dirs = append(dirs, path)
		}
		return nil
	})
	if err != nil {
		return nil, errbuilder.New().
			WithCode(errbuilder.CodeNotFound).
			WithMsg("failed to walk package tree " + root).
			WithCause(err)
	}
	sort.Strings(dirs)
	return dirs, nil
}

var _ ports.RepoDatabasePort = RepoDatabaseAdapter{}
