package core

import (
	"context"

	"github.com/ZanzyTHEbar/errbuilder-go"
	"github.com/rs/zerolog/log"

	"repolint/internal/types"
)

// BuildEntry turns one database record into a RepoEntry. A record
// without a name or with an unparseable version has no usable identity
// and is rejected.
func BuildEntry(ctx context.Context, repo string, blob types.EntryBlob) (*types.RepoEntry, error) {
	attrs, err := ParseDesc(blob.Desc, DescFields)
	if err != nil {
		return nil, errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg("malformed database record " + blob.Origin).
			WithCause(err)
	}
	logUnknown(ctx, blob.Origin, attrs)

	name := attrs.Scalar("NAME")
	if name == "" {
		return nil, errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg("database record without NAME: " + blob.Origin)
	}
	version, err := ParseVersion(attrs.Scalar("VERSION"))
	if err != nil {
		return nil, errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg("database record " + name + " has no valid VERSION").
			WithCause(err)
	}

	entry := &types.RepoEntry{
		Repo:         repo,
		Arch:         blob.Arch,
		Name:         name,
		Base:         attrs.Scalar("BASE"),
		Version:      version,
		Depends:      attrs.Set("DEPENDS"),
		MakeDepends:  attrs.Set("MAKEDEPENDS"),
		CheckDepends: attrs.Set("CHECKDEPENDS"),
		Provides:     attrs.Set("PROVIDES"),
		Conflicts:    attrs.Set("CONFLICTS"),
		Filename:     attrs.Scalar("FILENAME"),
		PGPSig:       attrs.Scalar("PGPSIG"),
		Packager:     attrs.Scalar("PACKAGER"),
		BuildDate:    ParseTimestamp(attrs.Scalar("BUILDDATE")),
		Extra:        extraScalars(attrs, "DESC", "URL", "ARCH", "CSIZE", "ISIZE", "MD5SUM", "SHA256SUM"),
	}
	if entry.Base == "" {
		entry.Base = name
	}
	if entry.PGPSig != "" {
		keyID, err := SignatureIssuerBase64(entry.PGPSig)
		if err != nil {
			log.Ctx(ctx).Debug().Err(err).Str("entry", entry.String()).Msg("unreadable embedded signature")
		}
		entry.SigKeyID = keyID
	}
	return entry, nil
}
