package app

import (
	"context"
	"strings"

	"github.com/ZanzyTHEbar/errbuilder-go"

	"repolint/internal/core"
	"repolint/internal/shared"
	"repolint/internal/types"
)

// LoadRepository reads the recipe tree and package tree of one repository
// and builds its linked index.
func (s Service) LoadRepository(ctx context.Context, req LoadRequest) (*types.Repository, error) {
	name := strings.TrimSpace(req.Paths.Name)
	if name == "" {
		return nil, errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg("repository name is required")
	}
	arches := shared.SortedUnique(req.Arches)
	if len(arches) == 0 {
		return nil, errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg("at least one architecture is required")
	}
	if strings.TrimSpace(req.Paths.RecipeDir) == "" && strings.TrimSpace(req.Paths.PackageDir) == "" {
		return nil, errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg("repository " + name + " needs a recipe_dir or a package_dir")
	}

	input := types.RepositoryInput{Name: name, Reference: req.Paths.Reference}
	if dir := strings.TrimSpace(req.Paths.RecipeDir); dir != "" {
		recipes, err := s.Recipes.ListRecipes(ctx, dir, arches)
		if err != nil {
			return nil, err
		}
		input.Recipes = recipes
	}
	if dir := strings.TrimSpace(req.Paths.PackageDir); dir != "" {
		entries, err := s.Database.ReadEntries(ctx, dir, name, arches)
		if err != nil {
			return nil, err
		}
		artifacts, err := s.Artifacts.ReadArtifacts(ctx, dir, arches)
		if err != nil {
			return nil, err
		}
		input.Entries = entries
		input.Artifacts = artifacts
	}
	return core.NewIndexBuilder(arches, req.Workers).Build(ctx, input)
}
