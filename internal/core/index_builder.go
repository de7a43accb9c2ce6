package core

import (
	"context"
	"sort"
	"sync"

	assert "github.com/ZanzyTHEbar/assert-lib"
	"github.com/ZanzyTHEbar/errbuilder-go"
	"github.com/rs/zerolog/log"

	"repolint/internal/shared"
	"repolint/internal/types"
)

const defaultIndexWorkers = 4

// IndexBuilder turns the raw blobs of one repository into a linked
// Repository. Parsing fans out over Workers goroutines; registration into
// the indices runs on the calling goroutine in sorted input order, so
// identical input always yields an identical graph.
type IndexBuilder struct {
	Arches  []string
	Workers int
}

func NewIndexBuilder(arches []string, workers int) IndexBuilder {
	return IndexBuilder{Arches: arches, Workers: workers}
}

// Build runs the recipe, entry and artifact passes in that order. Single
// malformed inputs degrade their entity and never fail the build; only
// cancellation of ctx does.
func (b IndexBuilder) Build(ctx context.Context, input types.RepositoryInput) (*types.Repository, error) {
	assert.NotEmpty(ctx, input.Name, "repository name must be set")
	repo := types.NewRepository(input.Name)
	repo.Reference = input.Reference

	if err := b.indexRecipes(ctx, repo, input.Recipes); err != nil {
		return nil, err
	}
	if err := b.indexEntries(ctx, repo, input.Entries); err != nil {
		return nil, err
	}
	if err := b.indexArtifacts(ctx, repo, input.Artifacts); err != nil {
		return nil, err
	}
	log.Ctx(ctx).Debug().
		Str("repo", repo.Name).
		Int("recipes", len(repo.Recipes)).
		Int("broken_recipes", len(repo.BrokenRecipes)).
		Int("entries", len(repo.Entries)).
		Int("artifacts", len(repo.Artifacts)).
		Msg("repository indexed")
	return repo, nil
}

func (b IndexBuilder) indexRecipes(ctx context.Context, repo *types.Repository, blobs []types.RecipeBlob) error {
	sorted := append([]types.RecipeBlob(nil), blobs...)
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].Path != sorted[j].Path {
			return sorted[i].Path < sorted[j].Path
		}
		return sorted[i].Name < sorted[j].Name
	})
	recipes, err := parallelMap(ctx, b.Workers, sorted, func(blob types.RecipeBlob) *types.Recipe {
		return BuildRecipe(ctx, repo.Name, blob, b.Arches)
	})
	if err != nil {
		return err
	}
	for _, recipe := range recipes {
		repo.Recipes = append(repo.Recipes, recipe)
		if !recipe.Valid {
			repo.BrokenRecipes = append(repo.BrokenRecipes, recipe.Name)
			continue
		}
		for _, decl := range recipe.Packages {
			repo.RegisterRecipe(decl.Arch, decl.Name, recipe)
		}
	}
	return nil
}

type parsedEntry struct {
	entry *types.RepoEntry
	err   error
}

func (b IndexBuilder) indexEntries(ctx context.Context, repo *types.Repository, blobs []types.EntryBlob) error {
	sorted := append([]types.EntryBlob(nil), blobs...)
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].Arch != sorted[j].Arch {
			return sorted[i].Arch < sorted[j].Arch
		}
		return sorted[i].Origin < sorted[j].Origin
	})
	parsed, err := parallelMap(ctx, b.Workers, sorted, func(blob types.EntryBlob) parsedEntry {
		entry, err := BuildEntry(ctx, repo.Name, blob)
		return parsedEntry{entry: entry, err: err}
	})
	if err != nil {
		return err
	}
	for i, result := range parsed {
		if result.err != nil {
			log.Ctx(ctx).Warn().Err(result.err).Str("repo", repo.Name).Str("origin", sorted[i].Origin).Msg("skipping database record")
			continue
		}
		entry := result.entry
		repo.Entries = append(repo.Entries, entry)
		repo.RegisterEntry(entry)
		repo.RegisterProvider(entry.Arch, entry.Name, entry)
		for _, provided := range entry.Provides {
			repo.RegisterProvider(entry.Arch, StripVersion(provided), entry)
		}
		entry.Recipes = LookupRecipes(repo, entry.Arch, entry.Name)
		for _, recipe := range entry.Recipes {
			recipe.Entries[entry.Arch] = append(recipe.Entries[entry.Arch], entry)
		}
	}
	return nil
}

func (b IndexBuilder) indexArtifacts(ctx context.Context, repo *types.Repository, blobs []types.ArtifactBlob) error {
	sorted := append([]types.ArtifactBlob(nil), blobs...)
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].Arch != sorted[j].Arch {
			return sorted[i].Arch < sorted[j].Arch
		}
		return sorted[i].Filename < sorted[j].Filename
	})
	artifacts, err := parallelMap(ctx, b.Workers, sorted, func(blob types.ArtifactBlob) *types.Artifact {
		return BuildArtifact(ctx, repo.Name, blob)
	})
	if err != nil {
		return err
	}
	for _, artifact := range artifacts {
		repo.Artifacts = append(repo.Artifacts, artifact)
		if artifact.Name == "" {
			continue
		}
		artifact.Recipes = LookupRecipes(repo, artifact.Arch, artifact.Name)
		for _, recipe := range artifact.Recipes {
			recipe.Artifacts[artifact.Arch] = append(recipe.Artifacts[artifact.Arch], artifact)
		}
		artifact.Entries = repo.EntriesFor(artifact.Arch, artifact.Name)
		for _, entry := range artifact.Entries {
			if entry.Filename == artifact.Filename {
				entry.Artifact = artifact
				continue
			}
			entry.OtherArtifacts = append(entry.OtherArtifacts, artifact)
		}
	}
	return nil
}

// LookupRecipes finds the recipes declaring name for arch. A split debug
// package falls back to the recipe of the package it was split from.
func LookupRecipes(repo *types.Repository, arch string, name string) []*types.Recipe {
	recipes := repo.RecipesFor(arch, name)
	if len(recipes) > 0 {
		return recipes
	}
	if base, ok := shared.TrimDebugSuffix(name, types.DebugSuffix); ok {
		return repo.RecipesFor(arch, base)
	}
	return nil
}

// parallelMap applies fn to every item on at most workers goroutines and
// returns the results in input order.
func parallelMap[In any, Out any](ctx context.Context, workers int, items []In, fn func(In) Out) ([]Out, error) {
	out := make([]Out, len(items))
	if workers <= 0 {
		workers = defaultIndexWorkers
	}
	if len(items) > 0 && len(items) < workers {
		workers = len(items)
	}
	sem := make(chan struct{}, workers)
	var wg sync.WaitGroup
	for i, item := range items {
		wg.Add(1)
		go func() {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()
			if ctx.Err() != nil {
				return
			}
			out[i] = fn(item)
		}()
	}
	wg.Wait()
	if err := ctx.Err(); err != nil {
		return nil, errbuilder.New().
			WithCode(errbuilder.CodeInternal).
			WithMsg("index build cancelled").
			WithCause(err)
	}
	return out, nil
}
