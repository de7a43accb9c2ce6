package adapters

import (
	"archive/tar"
	"bytes"
	"compress/gzip"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/klauspost/compress/zstd"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ulikunitz/xz"
)

type tarMember struct {
	name string
	body string
}

// writeTarArchive writes members into a tar stream compressed with
// compression ("zst", "xz", "gz" or "" for none).
func writeTarArchive(t *testing.T, path string, compression string, members ...tarMember) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))

	var raw bytes.Buffer
	tw := tar.NewWriter(&raw)
	for _, member := range members {
		require.NoError(t, tw.WriteHeader(&tar.Header{
			Name:     member.name,
			Mode:     0644,
			Size:     int64(len(member.body)),
			Typeflag: tar.TypeReg,
		}))
		_, err := tw.Write([]byte(member.body))
		require.NoError(t, err)
	}
	require.NoError(t, tw.Close())

	var out bytes.Buffer
	switch compression {
	case "zst":
		zw, err := zstd.NewWriter(&out)
		require.NoError(t, err)
		_, err = zw.Write(raw.Bytes())
		require.NoError(t, err)
		require.NoError(t, zw.Close())
	case "xz":
		xw, err := xz.NewWriter(&out)
		require.NoError(t, err)
		_, err = xw.Write(raw.Bytes())
		require.NoError(t, err)
		require.NoError(t, xw.Close())
	case "gz":
		gw := gzip.NewWriter(&out)
		_, err := gw.Write(raw.Bytes())
		require.NoError(t, err)
		require.NoError(t, gw.Close())
	default:
		out = raw
	}
	require.NoError(t, os.WriteFile(path, out.Bytes(), 0644))
}

func TestOpenTarSniffsCompression(t *testing.T) {
	for _, compression := range []string{"zst", "xz", "gz", ""} {
		t.Run("compression="+compression, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "archive")
			writeTarArchive(t, path, compression, tarMember{name: ".PKGINFO", body: "pkgname = zlib\n"})

			f, err := os.Open(path)
			require.NoError(t, err)
			defer f.Close()

			tr, closeFn, err := openTar(f)
			require.NoError(t, err)
			defer closeFn()

			header, err := tr.Next()
			require.NoError(t, err)
			assert.Equal(t, ".PKGINFO", header.Name)
			body, err := io.ReadAll(tr)
			require.NoError(t, err)
			assert.Equal(t, "pkgname = zlib\n", string(body))
		})
	}
}
