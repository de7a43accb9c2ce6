package core

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"

	"repolint/internal/types"
)

func addTestEntry(repo *types.Repository, arch string, name string, version string, provides ...string) *types.RepoEntry {
	entry := &types.RepoEntry{
		Repo:     repo.Name,
		Arch:     arch,
		Name:     name,
		Version:  MustParseVersion(version),
		Provides: provides,
	}
	repo.Entries = append(repo.Entries, entry)
	repo.RegisterEntry(entry)
	repo.RegisterProvider(arch, name, entry)
	for _, provided := range provides {
		repo.RegisterProvider(arch, StripVersion(provided), entry)
	}
	return entry
}

func TestResolve(t *testing.T) {
	repo := types.NewRepository("core")
	addTestEntry(repo, "x86_64", "foo", "2.0-1")
	repos := []*types.Repository{repo}

	tests := []struct {
		depspec  string
		expected bool
	}{
		{"foo", true},
		{"foo>=1.0", true},
		{"foo>=3.0", false},
		{"foo=2.0-1", true},
		{"foo=2.0", false},
		{"foo<2.0-2", true},
		{"bar", false},
		{"foo>=", false},
	}
	for _, tt := range tests {
		t.Run(tt.depspec, func(t *testing.T) {
			assert.Equal(t, tt.expected, Resolve(tt.depspec, "x86_64", repos))
		})
	}
}

func TestResolveScopesByArch(t *testing.T) {
	repo := types.NewRepository("core")
	addTestEntry(repo, "x86_64", "foo", "2.0-1")
	assert.False(t, Resolve("foo", "aarch64", []*types.Repository{repo}))
}

func TestResolveWithoutRepositories(t *testing.T) {
	assert.False(t, Resolve("foo", "x86_64", nil))
}

func TestResolveAcrossRepositories(t *testing.T) {
	core := types.NewRepository("core")
	addTestEntry(core, "x86_64", "foo", "1.0-1")
	extra := types.NewRepository("extra")
	addTestEntry(extra, "x86_64", "foo", "3.0-1")

	assert.True(t, Resolve("foo>=3.0", "x86_64", []*types.Repository{core, extra}))
	assert.False(t, Resolve("foo>=3.0", "x86_64", []*types.Repository{core}))
}

func TestResolveThroughProvides(t *testing.T) {
	repo := types.NewRepository("core")
	addTestEntry(repo, "x86_64", "openssl", "3.2.0-1", "libssl.so=3-64", "ssl")
	repos := []*types.Repository{repo}

	assert.True(t, Resolve("libssl.so", "x86_64", repos))
	assert.True(t, Resolve("libssl.so=3-64", "x86_64", repos))
	assert.False(t, Resolve("libssl.so>=4", "x86_64", repos))
	assert.True(t, Resolve("ssl>=3.0", "x86_64", repos), "unversioned provides uses the entry version")
}

func TestEffectiveVersion(t *testing.T) {
	entry := &types.RepoEntry{
		Name:     "python",
		Version:  MustParseVersion("3.12.1-1"),
		Provides: []string{"python3=3.12.1", "python-abi"},
	}
	assert.Equal(t, "3.12.1", EffectiveVersion(entry, "python3").String())
	assert.Equal(t, "3.12.1-1", EffectiveVersion(entry, "python-abi").String())
	assert.Equal(t, "3.12.1-1", EffectiveVersion(entry, "python").String())
}

func TestUnresolvedDepends(t *testing.T) {
	repo := types.NewRepository("core")
	addTestEntry(repo, "x86_64", "glibc", "2.39-1")
	addTestEntry(repo, "x86_64", "zlib", "1:1.3-2")

	got := UnresolvedDepends([]string{"glibc>=2.38", "zlib>=1:1.4", "", "missing"}, "x86_64", []*types.Repository{repo})
	if diff := cmp.Diff([]string{"zlib>=1:1.4", "missing"}, got); diff != "" {
		t.Fatalf("unresolved mismatch (-want +got):\n%s", diff)
	}
}
