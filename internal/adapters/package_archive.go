package adapters

import (
	"context"
	"errors"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/ZanzyTHEbar/errbuilder-go"
	"github.com/rs/zerolog/log"

	"repolint/internal/ports"
	"repolint/internal/shared"
	"repolint/internal/types"
)

const defaultArchiveWorkers = 4

const (
	blobPkgInfo   = "pkginfo"
	blobBuildInfo = "buildinfo"
)

// PackageArchiveAdapter reads the embedded .PKGINFO and .BUILDINFO of
// every package file under a package tree, plus its detached signature.
type PackageArchiveAdapter struct {
	Cache   ports.MetadataCachePort
	Workers int
}

func NewPackageArchiveAdapter(cache ports.MetadataCachePort, workers int) PackageArchiveAdapter {
	return PackageArchiveAdapter{Cache: cache, Workers: workers}
}

type artifactFile struct {
	arch string
	path string
	info fs.FileInfo
}

func (a PackageArchiveAdapter) ReadArtifacts(ctx context.Context, dir string, arches []string) ([]types.ArtifactBlob, error) {
	files, err := findArtifactFiles(dir, arches)
	if err != nil {
		return nil, err
	}
	blobs := make([]types.ArtifactBlob, len(files))
	workers := a.Workers
	if workers <= 0 {
		workers = defaultArchiveWorkers
	}
	sem := make(chan struct{}, workers)
	var wg sync.WaitGroup
	for i, file := range files {
		wg.Add(1)
		go func() {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()
			if ctx.Err() != nil {
				return
			}
			blobs[i] = a.readArtifact(ctx, dir, file)
		}()
	}
	wg.Wait()
	if err := ctx.Err(); err != nil {
		return nil, errbuilder.New().
			WithCode(errbuilder.CodeInternal).
			WithMsg("reading artifacts cancelled").
			WithCause(err)
	}
	return blobs, nil
}

func (a PackageArchiveAdapter) readArtifact(ctx context.Context, dir string, file artifactFile) types.ArtifactBlob {
	blob := types.ArtifactBlob{
		Arch:     file.arch,
		Path:     file.path,
		Filename: filepath.Base(file.path),
	}
	sig, err := os.ReadFile(file.path + ".sig")
	switch {
	case err == nil:
		blob.Signature = sig
	case !errors.Is(err, fs.ErrNotExist):
		blob.Err = err
		return blob
	}

	key := ports.CacheKey{Kind: "artifact", Repo: dir, Arch: file.arch, Name: blob.Filename}
	if a.Cache != nil {
		if cached, ok := a.Cache.Get(ctx, key, file.info.ModTime()); ok {
			blob.PkgInfo = cached[blobPkgInfo]
			blob.BuildInfo = cached[blobBuildInfo]
			return blob
		}
	}

	pkgInfo, buildInfo, err := extractPackageMetadata(file.path)
	if err != nil {
		blob.Err = err
		return blob
	}
	blob.PkgInfo = pkgInfo
	blob.BuildInfo = buildInfo
	if a.Cache != nil {
		cached := map[string][]byte{}
		if pkgInfo != nil {
			cached[blobPkgInfo] = pkgInfo
		}
		if buildInfo != nil {
			cached[blobBuildInfo] = buildInfo
		}
		if err := a.Cache.Put(ctx, key, file.info.ModTime(), cached); err != nil {
			log.Ctx(ctx).Debug().Err(err).Str("path", file.path).Msg("failed to cache package metadata")
		}
	}
	return blob
}

// extractPackageMetadata scans a package archive for its metadata files.
// A missing member comes back as nil.
func extractPackageMetadata(path string) ([]byte, []byte, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, err
	}
	defer f.Close()
	tr, closeFn, err := openTar(f)
	if err != nil {
		return nil, nil, err
	}
	defer closeFn()

	var pkgInfo, buildInfo []byte
	for pkgInfo == nil || buildInfo == nil {
		header, err := tr.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, nil, err
		}
		switch strings.TrimPrefix(header.Name, "./") {
		case ".PKGINFO":
			if pkgInfo, err = io.ReadAll(tr); err != nil {
				return nil, nil, err
			}
		case ".BUILDINFO":
			if buildInfo, err = io.ReadAll(tr); err != nil {
				return nil, nil, err
			}
		default:
			// members are stored metadata first; once a regular payload
			// file shows up there is nothing more to find
			if !strings.HasPrefix(filepath.Base(header.Name), ".") {
				return pkgInfo, buildInfo, nil
			}
		}
	}
	return pkgInfo, buildInfo, nil
}

// findArtifactFiles lists package files that sit in a directory named
// after one of arches, anywhere below dir.
func findArtifactFiles(dir string, arches []string) ([]artifactFile, error) {
	allowed := shared.ToSet(arches)
	var files []artifactFile
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !isPackageFile(d.Name()) {
			return nil
		}
		arch := filepath.Base(filepath.Dir(path))
		if _, ok := allowed[arch]; !ok {
			return nil
		}
		info, err := d.Info()
		if err != nil {
			return err
		}
		files = append(files, artifactFile{arch: arch, path: path, info: info})
		return nil
	})
	if err != nil {
		return nil, errbuilder.New().
			WithCode(errbuilder.CodeNotFound).
			WithMsg("failed to walk package tree " + dir).
			WithCause(err)
	}
	sort.Slice(files, func(i, j int) bool {
		return files[i].path < files[j].path
	})
	return files, nil
}

func isPackageFile(name string) bool {
	return strings.Contains(name, ".pkg.tar") && !strings.HasSuffix(name, ".sig")
}

var _ ports.ArtifactReaderPort = PackageArchiveAdapter{}
