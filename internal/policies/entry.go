package policies

import (
	"fmt"
	"strings"

	"repolint/internal/core"
	"repolint/internal/ports"
	"repolint/internal/types"
)

func entryRules(env Env) []ports.Rule {
	return []ports.Rule{
		entryRule("entry_missing_recipe", "repository entries without a recipe", func(entry *types.RepoEntry) (string, bool) {
			return "", len(entry.Recipes) == 0
		}),
		entryRule("entry_duplicate_recipes", "repository entries with several recipes", func(entry *types.RepoEntry) (string, bool) {
			if len(entry.Recipes) < 2 {
				return "", false
			}
			return "recipes: " + joinEntities(entry.Recipes), true
		}),
		entryRule("entry_missing_artifact", "repository entries without a built artifact", func(entry *types.RepoEntry) (string, bool) {
			if entry.Artifact != nil {
				return "", false
			}
			return entry.Filename, true
		}),
		unsatisfiableRule(env, "entry_unsatisfiable_depends", "repository entries with unsatisfiable depends", func(entry *types.RepoEntry) []string {
			return entry.Depends
		}),
		unsatisfiableRule(env, "entry_unsatisfiable_makedepends", "repository entries with unsatisfiable makedepends", func(entry *types.RepoEntry) []string {
			return entry.MakeDepends
		}),
		unsatisfiableRule(env, "entry_unsatisfiable_checkdepends", "repository entries with unsatisfiable checkdepends", func(entry *types.RepoEntry) []string {
			return entry.CheckDepends
		}),
		entryRule("entry_signature_mismatch", "repository entries whose signature differs from the artifact's", func(entry *types.RepoEntry) (string, bool) {
			artifact := entry.Artifact
			if artifact == nil || entry.SigKeyID == "" || artifact.SigKeyID == "" {
				return "", false
			}
			if entry.SigKeyID == artifact.SigKeyID {
				return "", false
			}
			return fmt.Sprintf("database %s, artifact %s", entry.SigKeyID, artifact.SigKeyID), true
		}),
		entryRule("entry_outdated", "repository entries older than their recipe", func(entry *types.RepoEntry) (string, bool) {
			if len(entry.Recipes) != 1 || !entry.Recipes[0].Valid {
				return "", false
			}
			decl, ok := entry.Recipes[0].Package(entry.Arch, entry.Name)
			if !ok {
				return "", false
			}
			if core.CompareVersions(entry.Version, decl.Version) >= 0 {
				return "", false
			}
			return "recipe has " + decl.Version.String(), true
		}),
		entryRule("entry_redundant", "repository entries shadowed by a reference repository", func(entry *types.RepoEntry) (string, bool) {
			if isReference(env, entry.Repo) {
				return "", false
			}
			for _, repo := range env.Repos {
				if !repo.Reference || repo.Name == entry.Repo {
					continue
				}
				for _, other := range repo.EntriesFor(entry.Arch, entry.Name) {
					if core.CompareVersions(other.Version, entry.Version) >= 0 {
						return "shadowed by " + other.String(), true
					}
				}
			}
			return "", false
		}),
	}
}

func unsatisfiableRule(env Env, id string, header string, deps func(entry *types.RepoEntry) []string) rule {
	return entryRule(id, header, func(entry *types.RepoEntry) (string, bool) {
		unresolved := core.UnresolvedDepends(deps(entry), entry.Arch, env.Repos)
		if len(unresolved) == 0 {
			return "", false
		}
		return strings.Join(unresolved, ", "), true
	})
}

func isReference(env Env, name string) bool {
	for _, repo := range env.Repos {
		if repo.Name == name {
			return repo.Reference
		}
	}
	return false
}

func joinEntities[E types.Entity](entities []E) string {
	names := make([]string, 0, len(entities))
	for _, entity := range entities {
		names = append(names, entity.String())
	}
	return strings.Join(names, ", ")
}
