package core

import (
	"context"
	"testing"

	"github.com/ZanzyTHEbar/errbuilder-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"repolint/internal/types"
)

type stubRule struct {
	id    string
	kind  types.EntityKind
	check func(entity types.Entity) (types.CheckIssue, bool)
	calls int
}

func (r *stubRule) ID() string             { return r.id }
func (r *stubRule) Header() string         { return "stub " + r.id }
func (r *stubRule) Kind() types.EntityKind { return r.kind }

func (r *stubRule) Check(_ context.Context, entity types.Entity) (types.CheckIssue, bool) {
	r.calls++
	return r.check(entity)
}

func flagAll(detail string) func(types.Entity) (types.CheckIssue, bool) {
	return func(types.Entity) (types.CheckIssue, bool) {
		return types.CheckIssue{Detail: detail}, true
	}
}

func testStreams() types.EntityStreams {
	return types.EntityStreams{
		Recipes: []*types.Recipe{types.NewRecipe("core", "zlib", "/r/zlib")},
		Entries: []*types.RepoEntry{
			{Repo: "core", Arch: "x86_64", Name: "zlib", Version: MustParseVersion("1.3-1")},
			{Repo: "core", Arch: "x86_64", Name: "bash", Version: MustParseVersion("5.2-1")},
		},
		Keys: []*types.SigningKey{{KeyID: "0123456789ABCDEF"}},
	}
}

func TestNewLinterRejectsDuplicateIDs(t *testing.T) {
	_, err := NewLinter(
		&stubRule{id: "a", kind: types.EntityKindRecipe},
		&stubRule{id: "a", kind: types.EntityKindRepoEntry},
	)
	require.Error(t, err)
	assert.Equal(t, errbuilder.CodeAlreadyExists, errbuilder.CodeOf(err))

	_, err = NewLinter(&stubRule{id: "", kind: types.EntityKindRecipe})
	require.Error(t, err)
	assert.Equal(t, errbuilder.CodeInvalidArgument, errbuilder.CodeOf(err))
}

func TestLinterInfosKeepRegistrationOrder(t *testing.T) {
	linter, err := NewLinter(
		&stubRule{id: "b", kind: types.EntityKindRepoEntry},
		&stubRule{id: "a", kind: types.EntityKindRecipe},
	)
	require.NoError(t, err)
	infos := linter.Infos()
	require.Len(t, infos, 2)
	assert.Equal(t, "b", infos[0].ID)
	assert.Equal(t, "stub b", infos[0].Header)
	assert.Equal(t, types.EntityKindRecipe, infos[1].Kind)

	rule, ok := linter.Rule("a")
	require.True(t, ok)
	assert.Equal(t, "a", rule.ID())
	assert.Len(t, linter.Rules(), 2)
}

func TestLinterSelect(t *testing.T) {
	linter, err := NewLinter(
		&stubRule{id: "a", kind: types.EntityKindRecipe},
		&stubRule{id: "b", kind: types.EntityKindRepoEntry},
		&stubRule{id: "c", kind: types.EntityKindArtifact},
	)
	require.NoError(t, err)

	ids, err := linter.Select(nil, nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b", "c"}, ids)

	ids, err = linter.Select(nil, []string{"b"})
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "c"}, ids)

	ids, err = linter.Select([]string{"c", "a", "c"}, []string{"a"})
	require.NoError(t, err)
	assert.Equal(t, []string{"c"}, ids)

	_, err = linter.Select([]string{"nope"}, nil)
	require.Error(t, err)
	assert.Equal(t, errbuilder.CodeInvalidArgument, errbuilder.CodeOf(err))

	_, err = linter.Select(nil, []string{"nope"})
	require.Error(t, err)
}

func TestRunChecksGroupsByKind(t *testing.T) {
	recipeRule := &stubRule{id: "recipe", kind: types.EntityKindRecipe, check: flagAll("r")}
	entryRule := &stubRule{id: "entry", kind: types.EntityKindRepoEntry, check: func(entity types.Entity) (types.CheckIssue, bool) {
		entry := entity.(*types.RepoEntry)
		return types.CheckIssue{Detail: entry.Name}, entry.Name == "bash"
	}}
	keyRule := &stubRule{id: "key", kind: types.EntityKindSigningKey, check: flagAll("")}
	linter, err := NewLinter(recipeRule, entryRule, keyRule)
	require.NoError(t, err)

	results, err := linter.RunChecks(context.Background(), []string{"recipe", "entry"}, testStreams())
	require.NoError(t, err)

	assert.Equal(t, 1, recipeRule.calls)
	assert.Equal(t, 2, entryRule.calls)
	assert.Equal(t, 0, keyRule.calls, "unselected rules never run")

	require.Len(t, results["recipe"], 1)
	assert.Equal(t, "core/zlib (r)", results["recipe"][0].String())
	require.Len(t, results["entry"], 1)
	assert.Equal(t, "core/x86_64/bash-5.2-1 (bash)", results["entry"][0].String())
	_, ok := results["key"]
	assert.False(t, ok)
}

func TestRunChecksEmptyResultForEveryRequestedRule(t *testing.T) {
	quiet := &stubRule{id: "quiet", kind: types.EntityKindArtifact, check: flagAll("")}
	linter, err := NewLinter(quiet)
	require.NoError(t, err)

	results, err := linter.RunChecks(context.Background(), []string{"quiet"}, testStreams())
	require.NoError(t, err)
	issues, ok := results["quiet"]
	assert.True(t, ok)
	assert.Empty(t, issues)
}

func TestRunChecksIsolatesPanics(t *testing.T) {
	fragile := &stubRule{id: "fragile", kind: types.EntityKindRepoEntry, check: func(entity types.Entity) (types.CheckIssue, bool) {
		if entity.(*types.RepoEntry).Name == "zlib" {
			panic("boom")
		}
		return types.CheckIssue{}, true
	}}
	steady := &stubRule{id: "steady", kind: types.EntityKindRepoEntry, check: flagAll("")}
	linter, err := NewLinter(fragile, steady)
	require.NoError(t, err)

	results, err := linter.RunChecks(context.Background(), []string{"fragile", "steady"}, testStreams())
	require.NoError(t, err)
	require.Len(t, results["fragile"], 1)
	assert.Equal(t, "core/x86_64/bash-5.2-1", results["fragile"][0].String())
	assert.Len(t, results["steady"], 2)
}

func TestRunChecksUnknownRule(t *testing.T) {
	linter, err := NewLinter()
	require.NoError(t, err)
	_, err = linter.RunChecks(context.Background(), []string{"missing"}, types.EntityStreams{})
	require.Error(t, err)
	assert.Equal(t, errbuilder.CodeInvalidArgument, errbuilder.CodeOf(err))
}
