package core

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"

	"repolint/internal/types"
)

// ParseArtifactFilename splits "<name>-<pkgver>-<pkgrel>-<arch>.pkg.tar.*".
func ParseArtifactFilename(filename string) (name string, version types.Version, arch string, ok bool) {
	idx := strings.Index(filename, ".pkg.tar")
	if idx <= 0 {
		return "", types.Version{}, "", false
	}
	parts := strings.Split(filename[:idx], "-")
	if len(parts) < 4 {
		return "", types.Version{}, "", false
	}
	n := len(parts)
	arch = parts[n-1]
	name = strings.Join(parts[:n-3], "-")
	version, err := ParseVersion(parts[n-3] + "-" + parts[n-2])
	if err != nil || name == "" {
		return "", types.Version{}, "", false
	}
	return name, version, arch, true
}

// BuildArtifact turns the extracted metadata of one package file into an
// Artifact. It never fails: unreadable files keep an FSError and a best
// effort identity taken from the filename.
func BuildArtifact(ctx context.Context, repo string, blob types.ArtifactBlob) *types.Artifact {
	artifact := &types.Artifact{
		Repo:         repo,
		Arch:         blob.Arch,
		Path:         blob.Path,
		Filename:     blob.Filename,
		HasSignature: blob.Signature != nil,
		Extra:        map[string]string{},
	}
	if name, version, _, ok := ParseArtifactFilename(blob.Filename); ok {
		artifact.Name = name
		artifact.Version = version
	}

	if blob.Err != nil {
		artifact.FSError = blob.Err.Error()
		return artifact
	}

	if blob.PkgInfo != nil {
		if err := applyPkgInfo(ctx, artifact, blob.PkgInfo); err != nil {
			artifact.FSError = fmt.Sprintf("malformed .PKGINFO: %v", err)
		}
	}
	if blob.BuildInfo != nil {
		info, err := parseBuildInfo(ctx, blob.Path, blob.BuildInfo)
		if err != nil {
			log.Ctx(ctx).Warn().Err(err).Str("artifact", artifact.String()).Msg("malformed .BUILDINFO")
		} else {
			artifact.BuildInfo = info
		}
	}
	if blob.Signature != nil {
		keyID, err := SignatureIssuer(blob.Signature)
		if err != nil {
			log.Ctx(ctx).Warn().Err(err).Str("artifact", artifact.String()).Msg("unreadable detached signature")
		}
		artifact.SigKeyID = keyID
	}
	return artifact
}

func applyPkgInfo(ctx context.Context, artifact *types.Artifact, data []byte) error {
	attrs, err := ParseKeyValue(data, PkginfoFields)
	if err != nil {
		return err
	}
	logUnknown(ctx, artifact.Path, attrs)
	name := attrs.Scalar("pkgname")
	if name == "" {
		return fmt.Errorf("missing pkgname")
	}
	version, err := ParseVersion(attrs.Scalar("pkgver"))
	if err != nil {
		return err
	}
	artifact.HasPkgInfo = true
	artifact.Name = name
	artifact.Version = version
	artifact.BuildDate = ParseTimestamp(attrs.Scalar("builddate"))
	for key, value := range extraScalars(attrs, "pkgbase", "packager", "arch", "size") {
		artifact.Extra[key] = value
	}
	return nil
}

func parseBuildInfo(ctx context.Context, source string, data []byte) (*types.BuildInfo, error) {
	attrs, err := ParseKeyValue(data, BuildinfoFields)
	if err != nil {
		return nil, err
	}
	logUnknown(ctx, source, attrs)
	return &types.BuildInfo{
		Builder:      attrs.Scalar("packager"),
		BuildDate:    ParseTimestamp(attrs.Scalar("builddate")),
		RecipeDigest: attrs.Scalar("pkgbuild_sha256sum"),
		RecipeName:   attrs.Scalar("pkgbase"),
		BuildTool:    attrs.Scalar("buildtool"),
		Extra:        extraScalars(attrs, "format", "pkgname", "pkgver", "pkgarch", "buildtoolver", "builddir"),
	}, nil
}
