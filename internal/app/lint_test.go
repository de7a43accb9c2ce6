package app

import (
	"context"
	"testing"
	"time"

	"github.com/ZanzyTHEbar/errbuilder-go"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"repolint/internal/types"
)

type fakeRecipes map[string][]types.RecipeBlob

func (f fakeRecipes) ListRecipes(_ context.Context, dir string, _ []string) ([]types.RecipeBlob, error) {
	return f[dir], nil
}

type fakeDatabase map[string][]types.EntryBlob

func (f fakeDatabase) ReadEntries(_ context.Context, dir string, _ string, _ []string) ([]types.EntryBlob, error) {
	return f[dir], nil
}

type fakeArtifacts map[string][]types.ArtifactBlob

func (f fakeArtifacts) ReadArtifacts(_ context.Context, dir string, _ []string) ([]types.ArtifactBlob, error) {
	return f[dir], nil
}

type fakeKeyring struct {
	keys []*types.SigningKey
}

func (f fakeKeyring) LoadKeys(context.Context, string) ([]*types.SigningKey, error) {
	return f.keys, nil
}

type fakeUpstream map[string]string

func (f fakeUpstream) LoadVersions(context.Context, string) (map[string]string, error) {
	return f, nil
}

type recordingWriter struct {
	path   string
	report types.LintReport
}

func (w *recordingWriter) WriteReport(_ context.Context, path string, report types.LintReport) error {
	w.path = path
	w.report = report
	return nil
}

var testNow = time.Date(2024, 6, 15, 12, 0, 0, 0, time.UTC)

func artifactFor(name string) types.ArtifactBlob {
	filename := name + "-1.0-1-x86_64.pkg.tar.zst"
	return types.ArtifactBlob{
		Arch:     "x86_64",
		Path:     "/p/" + filename,
		Filename: filename,
		PkgInfo:  []byte("pkgname = " + name + "\npkgver = 1.0-1\n"),
	}
}

func newTestService(writer *recordingWriter) Service {
	srcinfo := "pkgbase = ab\npkgver = 1.0\npkgrel = 1\narch = x86_64\n\npkgname = a\n\npkgname = b\n"
	return Service{
		Recipes: fakeRecipes{
			"/r/core": {{Name: "ab", Path: "/r/core/ab", Metadata: map[string][]byte{"": []byte(srcinfo)}}},
		},
		Database: fakeDatabase{
			"/p/core": {{
				Arch:   "x86_64",
				Origin: "core.db:a-1.0-1/desc",
				Desc:   []byte("%FILENAME%\na-1.0-1-x86_64.pkg.tar.zst\n\n%NAME%\na\n\n%VERSION%\n1.0-1\n"),
			}},
		},
		Artifacts: fakeArtifacts{
			"/p/core":     {artifactFor("a"), artifactFor("b")},
			"/p/upstream": {artifactFor("orphan")},
		},
		Keyring: fakeKeyring{keys: []*types.SigningKey{
			{KeyID: "AAAAAAAAAAAAAAAA", UID: "packager", Expires: testNow.Add(5 * 24 * time.Hour)},
			{KeyID: "BBBBBBBBBBBBBBBB", UID: "builder"},
		}},
		Upstream:     fakeUpstream{"ab": "1.0"},
		ReportWriter: writer,
		Clock:        func() time.Time { return testNow },
		Hostname:     func() (string, error) { return "buildhost", nil },
	}
}

func testRepos() []types.RepositoryPaths {
	return []types.RepositoryPaths{
		{Name: "core", RecipeDir: "/r/core", PackageDir: "/p/core"},
		{Name: "upstream", PackageDir: "/p/upstream", Reference: true},
	}
}

func TestLint(t *testing.T) {
	writer := &recordingWriter{}
	result, err := newTestService(writer).Lint(context.Background(), LintRequest{
		Arches:           []string{"x86_64"},
		Repos:            testRepos(),
		Keyring:          "/etc/keyring.gpg",
		KeyExpiryDays:    90,
		Checks:           []string{"recipe_missing_entries", "artifact_missing_entry", "key_master_expiry", "recipe_out_of_date"},
		UpstreamVersions: "/etc/upstream.yaml",
		ReportPath:       "/tmp/report.yaml",
	})
	require.NoError(t, err)

	assert.Equal(t, 2, result.Repositories)
	assert.Equal(t, 3, result.Issues, "the reference repository is not linted")
	assert.Equal(t, "2024-06-15T12:00:00Z", result.Report.GeneratedAt)
	assert.Equal(t, "buildhost", result.Report.Host)

	issues := map[string][]string{}
	for _, section := range result.Report.Sections {
		issues[section.Rule.ID] = section.Issues
	}
	want := map[string][]string{
		"recipe_missing_entries":   {"core/ab (missing: x86_64/b)"},
		"artifact_missing_entry":   {"core/x86_64/b-1.0-1-x86_64.pkg.tar.zst"},
		"key_master_expiry":        {"AAAAAAAAAAAAAAAA (packager) (expires 2024-06-20)"},
		"recipe_out_of_date": {},
	}
	if diff := cmp.Diff(want, issues); diff != "" {
		t.Fatalf("issues mismatch (-want +got):\n%s", diff)
	}

	assert.Equal(t, "/tmp/report.yaml", result.ReportPath)
	assert.Equal(t, "/tmp/report.yaml", writer.path)
	assert.Equal(t, result.Report, writer.report)
}

func TestLintWithoutReportPath(t *testing.T) {
	writer := &recordingWriter{}
	result, err := newTestService(writer).Lint(context.Background(), LintRequest{
		Arches: []string{"x86_64"},
		Repos:  testRepos(),
		Checks: []string{"artifact_missing_entry"},
	})
	require.NoError(t, err)
	assert.Equal(t, 1, result.Issues)
	assert.Empty(t, result.ReportPath)
	assert.Empty(t, writer.path)
}

func TestLintZeroKeyExpiryDaysReportsExpiredOnly(t *testing.T) {
	service := newTestService(&recordingWriter{})
	service.Keyring = fakeKeyring{keys: []*types.SigningKey{
		{KeyID: "AAAAAAAAAAAAAAAA", Expires: testNow.Add(5 * 24 * time.Hour)},
		{KeyID: "CCCCCCCCCCCCCCCC", Expires: testNow.Add(-24 * time.Hour)},
	}}
	result, err := service.Lint(context.Background(), LintRequest{
		Arches:        []string{"x86_64"},
		Repos:         testRepos(),
		Keyring:       "/etc/keyring.gpg",
		KeyExpiryDays: 0,
		Checks:        []string{"key_master_expiry"},
	})
	require.NoError(t, err)
	require.Len(t, result.Report.Sections, 1)
	assert.Equal(t, []string{"CCCCCCCCCCCCCCCC (expired 2024-06-14)"}, result.Report.Sections[0].Issues)
}

func TestLintValidation(t *testing.T) {
	tests := []struct {
		name string
		req  LintRequest
		code errbuilder.ErrCode
	}{
		{
			name: "no arches",
			req:  LintRequest{Repos: testRepos()},
			code: errbuilder.CodeInvalidArgument,
		},
		{
			name: "no repositories",
			req:  LintRequest{Arches: []string{"x86_64"}},
			code: errbuilder.CodeInvalidArgument,
		},
		{
			name: "repository configured twice",
			req: LintRequest{
				Arches: []string{"x86_64"},
				Repos:  append(testRepos(), types.RepositoryPaths{Name: "core", PackageDir: "/p/other"}),
			},
			code: errbuilder.CodeInvalidArgument,
		},
		{
			name: "repository without directories",
			req: LintRequest{
				Arches: []string{"x86_64"},
				Repos:  []types.RepositoryPaths{{Name: "empty"}},
			},
			code: errbuilder.CodeInvalidArgument,
		},
		{
			name: "unknown check",
			req: LintRequest{
				Arches: []string{"x86_64"},
				Repos:  testRepos(),
				Checks: []string{"no_such_check"},
			},
			code: errbuilder.CodeInvalidArgument,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := newTestService(&recordingWriter{}).Lint(context.Background(), tt.req)
			require.Error(t, err)
			assert.Equal(t, tt.code, errbuilder.CodeOf(err))
		})
	}
}

func TestAttachSignedArtifacts(t *testing.T) {
	keys := []*types.SigningKey{{KeyID: "AAAAAAAAAAAAAAAA"}, {KeyID: "BBBBBBBBBBBBBBBB"}}
	artifacts := []*types.Artifact{
		{Repo: "core", Arch: "x86_64", Filename: "z-1-1-x86_64.pkg.tar.zst", SigKeyID: "aaaaaaaaaaaaaaaa"},
		{Repo: "core", Arch: "x86_64", Filename: "a-1-1-x86_64.pkg.tar.zst", SigKeyID: "AAAAAAAAAAAAAAAA"},
		{Repo: "core", Arch: "x86_64", Filename: "unsigned-1-1-x86_64.pkg.tar.zst"},
	}
	attachSignedArtifacts(keys, artifacts)
	assert.Equal(t, []string{
		"core/x86_64/a-1-1-x86_64.pkg.tar.zst",
		"core/x86_64/z-1-1-x86_64.pkg.tar.zst",
	}, keys[0].Signed)
	assert.Empty(t, keys[1].Signed)
}

func TestListChecks(t *testing.T) {
	infos, err := Service{}.ListChecks()
	require.NoError(t, err)
	assert.Len(t, infos, 28)
	seen := map[string]struct{}{}
	for _, info := range infos {
		assert.NotEmpty(t, info.Header, info.ID)
		seen[info.ID] = struct{}{}
	}
	assert.Len(t, seen, 28, "check ids are unique")
}
