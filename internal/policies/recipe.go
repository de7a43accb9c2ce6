package policies

import (
	"fmt"
	"strings"

	"repolint/internal/core"
	"repolint/internal/ports"
	"repolint/internal/shared"
	"repolint/internal/types"
)

func recipeRules(env Env) []ports.Rule {
	return []ports.Rule{
		recipeRule("recipe_invalid", "invalid recipes", func(recipe *types.Recipe) (string, bool) {
			if recipe.Valid {
				return "", false
			}
			return recipe.Error, true
		}),
		recipeRule("recipe_unsupported_arches", "recipes with unsupported architectures", func(recipe *types.Recipe) (string, bool) {
			if !recipe.Valid {
				return "", false
			}
			allowed := shared.ToSet(env.Arches)
			var unsupported []string
			for _, arch := range recipe.Arches {
				if _, ok := allowed[arch]; !ok {
					unsupported = append(unsupported, arch)
				}
			}
			if len(unsupported) == 0 {
				return "", false
			}
			return "unsupported: " + strings.Join(unsupported, ", "), true
		}),
		recipeRule("recipe_missing_entries", "recipes with packages missing from the repository database", func(recipe *types.Recipe) (string, bool) {
			return declsWhere(recipe, func(decl types.PackageDecl) bool {
				return countEntries(recipe, decl) == 0
			}, "missing")
		}),
		recipeRule("recipe_duplicate_entries", "recipes with packages listed more than once", func(recipe *types.Recipe) (string, bool) {
			return declsWhere(recipe, func(decl types.PackageDecl) bool {
				return countEntries(recipe, decl) > 1
			}, "duplicate")
		}),
		recipeRule("recipe_missing_artifacts", "recipes with packages missing built artifacts", func(recipe *types.Recipe) (string, bool) {
			return declsWhere(recipe, func(decl types.PackageDecl) bool {
				for _, artifact := range recipe.Artifacts[decl.Arch] {
					if artifact.Name == decl.Name {
						return false
					}
				}
				return true
			}, "missing")
		}),
		recipeRule("recipe_out_of_date", "recipes behind their upstream version", func(recipe *types.Recipe) (string, bool) {
			if !recipe.Valid || len(recipe.Packages) == 0 {
				return "", false
			}
			upstream, ok := env.Upstream[recipe.Name]
			if !ok || strings.TrimSpace(upstream) == "" {
				return "", false
			}
			current := recipe.Packages[0].Version
			latest := core.ParseForeignVersion(upstream)
			if core.CompareVersions(latest, core.ParseForeignVersion(current.Segment)) <= 0 {
				return "", false
			}
			return fmt.Sprintf("upstream %s, recipe %s", latest.Segment, current.Segment), true
		}),
	}
}

func countEntries(recipe *types.Recipe, decl types.PackageDecl) int {
	count := 0
	for _, entry := range recipe.Entries[decl.Arch] {
		if entry.Name == decl.Name {
			count++
		}
	}
	return count
}

// declsWhere reports the "arch/name" pairs of a valid recipe that match.
func declsWhere(recipe *types.Recipe, match func(decl types.PackageDecl) bool, label string) (string, bool) {
	if !recipe.Valid {
		return "", false
	}
	var hits []string
	for _, decl := range recipe.Packages {
		if match(decl) {
			hits = append(hits, decl.Arch+"/"+decl.Name)
		}
	}
	if len(hits) == 0 {
		return "", false
	}
	return label + ": " + strings.Join(shared.SortedUnique(hits), ", "), true
}
