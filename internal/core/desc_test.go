package core

import (
	"context"
	"encoding/base64"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"repolint/internal/types"
)

func TestBuildEntry(t *testing.T) {
	desc := `%FILENAME%
zlib-1:1.3.1-2-x86_64.pkg.tar.zst

%NAME%
zlib

%BASE%
zlib

%VERSION%
1:1.3.1-2

%BUILDDATE%
1718447400

%PACKAGER%
Jane Builder <jane@example.org>

%DEPENDS%
glibc

%MAKEDEPENDS%
cmake

%PROVIDES%
libz.so=1-64
`
	entry, err := BuildEntry(context.Background(), "core", types.EntryBlob{Arch: "x86_64", Origin: "core.db:zlib/desc", Desc: []byte(desc)})
	require.NoError(t, err)

	assert.Equal(t, "core/x86_64/zlib-1:1.3.1-2", entry.String())
	assert.Equal(t, "zlib-1:1.3.1-2-x86_64.pkg.tar.zst", entry.Filename)
	assert.Equal(t, []string{"glibc"}, entry.Depends)
	assert.Equal(t, []string{"cmake"}, entry.MakeDepends)
	assert.Equal(t, []string{"libz.so=1-64"}, entry.Provides)
	assert.Equal(t, "Jane Builder <jane@example.org>", entry.Packager)
	assert.True(t, time.Date(2024, 6, 15, 10, 30, 0, 0, time.UTC).Equal(entry.BuildDate))
	assert.Empty(t, entry.SigKeyID)
}

func TestBuildEntryDefaultsBaseToName(t *testing.T) {
	entry, err := BuildEntry(context.Background(), "core", types.EntryBlob{
		Arch: "x86_64",
		Desc: []byte("%NAME%\nbash\n%VERSION%\n5.2-1\n"),
	})
	require.NoError(t, err)
	assert.Equal(t, "bash", entry.Base)
}

func TestBuildEntrySignature(t *testing.T) {
	signer := newTestSigner(t)
	sig := base64.StdEncoding.EncodeToString(detachSign(t, signer, "payload", false))
	entry, err := BuildEntry(context.Background(), "core", types.EntryBlob{
		Arch: "x86_64",
		Desc: []byte("%NAME%\nbash\n%VERSION%\n5.2-1\n%PGPSIG%\n" + sig + "\n"),
	})
	require.NoError(t, err)
	assert.Equal(t, signer.PrimaryKey.KeyIdString(), entry.SigKeyID)
}

func TestBuildEntryUnreadableSignatureKeepsEntry(t *testing.T) {
	entry, err := BuildEntry(context.Background(), "core", types.EntryBlob{
		Arch: "x86_64",
		Desc: []byte("%NAME%\nbash\n%VERSION%\n5.2-1\n%PGPSIG%\nAAAA\n"),
	})
	require.NoError(t, err)
	assert.Equal(t, "AAAA", entry.PGPSig)
	assert.Empty(t, entry.SigKeyID)
}

func TestBuildEntryRejectsUnidentifiableRecords(t *testing.T) {
	for name, desc := range map[string]string{
		"no name":     "%VERSION%\n1-1\n",
		"no version":  "%NAME%\nbash\n",
		"bad version": "%NAME%\nbash\n%VERSION%\n-1\n",
		"malformed":   "orphan line\n",
	} {
		_, err := BuildEntry(context.Background(), "core", types.EntryBlob{Arch: "x86_64", Desc: []byte(desc)})
		assert.Error(t, err, name)
	}
}
