package adapters

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUpstreamVersionsFileAdapter(t *testing.T) {
	path := filepath.Join(t.TempDir(), "upstream.yaml")
	require.NoError(t, os.WriteFile(path, []byte("zlib: 1.3.1\nbash: \"5.2.26\"\nempty: \"\"\n"), 0644))

	adapter := NewUpstreamVersionsFileAdapter()
	versions, err := adapter.LoadVersions(context.Background(), path)
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"zlib": "1.3.1", "bash": "5.2.26"}, versions)

	require.NoError(t, os.Remove(path))
	again, err := adapter.LoadVersions(context.Background(), path)
	require.NoError(t, err, "file is read once per path")
	assert.Equal(t, versions, again)
}

func TestUpstreamVersionsFileAdapterErrors(t *testing.T) {
	_, err := NewUpstreamVersionsFileAdapter().LoadVersions(context.Background(), filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)

	path := filepath.Join(t.TempDir(), "broken.yaml")
	require.NoError(t, os.WriteFile(path, []byte("- not\n- a map\n"), 0644))
	_, err = NewUpstreamVersionsFileAdapter().LoadVersions(context.Background(), path)
	require.Error(t, err)
}
