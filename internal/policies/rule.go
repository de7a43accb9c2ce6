package policies

import (
	"context"
	"time"

	"repolint/internal/ports"
	"repolint/internal/types"
)

// Env is the read-only context the built-in rules are evaluated in.
type Env struct {
	Arches []string
	// Repos is the search set for dependency satisfiability and
	// reference-repository lookups.
	Repos []*types.Repository
	Keys  []*types.SigningKey
	// KeyHorizon is how far ahead key expiry is reported. Zero reports
	// expired keys only.
	KeyHorizon time.Duration
	Upstream   map[string]string
	Clock      func() time.Time
}

func (e Env) now() time.Time {
	if e.Clock == nil {
		return time.Now()
	}
	return e.Clock()
}

func (e Env) horizon() time.Duration {
	if e.KeyHorizon < 0 {
		return 0
	}
	return e.KeyHorizon
}

// DefaultRules returns the built-in catalogue in report order.
func DefaultRules(env Env) []ports.Rule {
	rules := []ports.Rule{}
	rules = append(rules, recipeRules(env)...)
	rules = append(rules, entryRules(env)...)
	rules = append(rules, artifactRules(env)...)
	rules = append(rules, keyRules(env)...)
	return rules
}

type rule struct {
	id     string
	header string
	kind   types.EntityKind
	check  func(ctx context.Context, entity types.Entity) (string, bool)
}

var _ ports.Rule = rule{}

func (r rule) ID() string             { return r.id }
func (r rule) Header() string         { return r.header }
func (r rule) Kind() types.EntityKind { return r.kind }

func (r rule) Check(ctx context.Context, entity types.Entity) (types.CheckIssue, bool) {
	detail, found := r.check(ctx, entity)
	if !found {
		return types.CheckIssue{}, false
	}
	return types.CheckIssue{Entity: entity, Detail: detail}, true
}

func recipeRule(id string, header string, fn func(recipe *types.Recipe) (string, bool)) rule {
	return rule{id: id, header: header, kind: types.EntityKindRecipe, check: func(_ context.Context, entity types.Entity) (string, bool) {
		recipe, ok := entity.(*types.Recipe)
		if !ok {
			return "", false
		}
		return fn(recipe)
	}}
}

func entryRule(id string, header string, fn func(entry *types.RepoEntry) (string, bool)) rule {
	return rule{id: id, header: header, kind: types.EntityKindRepoEntry, check: func(_ context.Context, entity types.Entity) (string, bool) {
		entry, ok := entity.(*types.RepoEntry)
		if !ok {
			return "", false
		}
		return fn(entry)
	}}
}

func artifactRule(id string, header string, fn func(artifact *types.Artifact) (string, bool)) rule {
	return rule{id: id, header: header, kind: types.EntityKindArtifact, check: func(_ context.Context, entity types.Entity) (string, bool) {
		artifact, ok := entity.(*types.Artifact)
		if !ok {
			return "", false
		}
		return fn(artifact)
	}}
}

func keyRule(id string, header string, fn func(key *types.SigningKey) (string, bool)) rule {
	return rule{id: id, header: header, kind: types.EntityKindSigningKey, check: func(_ context.Context, entity types.Entity) (string, bool) {
		key, ok := entity.(*types.SigningKey)
		if !ok {
			return "", false
		}
		return fn(key)
	}}
}
