package policies

import (
	"strings"

	"repolint/internal/ports"
	"repolint/internal/types"
)

func artifactRules(env Env) []ports.Rule {
	known := map[string]struct{}{}
	for _, key := range env.Keys {
		known[strings.ToUpper(key.KeyID)] = struct{}{}
	}
	return []ports.Rule{
		artifactRule("artifact_fs_error", "artifacts that could not be read", func(artifact *types.Artifact) (string, bool) {
			if artifact.FSError == "" {
				return "", false
			}
			return artifact.FSError, true
		}),
		artifactRule("artifact_missing_recipe", "artifacts without a recipe", func(artifact *types.Artifact) (string, bool) {
			return "", artifact.Name != "" && len(artifact.Recipes) == 0
		}),
		artifactRule("artifact_duplicate_recipes", "artifacts with several recipes", func(artifact *types.Artifact) (string, bool) {
			if len(artifact.Recipes) < 2 {
				return "", false
			}
			return "recipes: " + joinEntities(artifact.Recipes), true
		}),
		artifactRule("artifact_missing_entry", "artifacts not listed in the repository database", func(artifact *types.Artifact) (string, bool) {
			return "", artifact.Name != "" && len(artifact.Entries) == 0
		}),
		artifactRule("artifact_duplicate_entries", "artifacts listed more than once in the repository database", func(artifact *types.Artifact) (string, bool) {
			if len(artifact.Entries) < 2 {
				return "", false
			}
			return "entries: " + joinEntities(artifact.Entries), true
		}),
		artifactRule("artifact_stale", "artifacts superseded by a newer build", func(artifact *types.Artifact) (string, bool) {
			if len(artifact.Entries) == 0 {
				return "", false
			}
			var current []string
			for _, entry := range artifact.Entries {
				if entry.Filename == artifact.Filename {
					return "", false
				}
				current = append(current, entry.Filename)
			}
			return "database lists " + strings.Join(current, ", "), true
		}),
		artifactRule("artifact_missing_pkginfo", "artifacts without .PKGINFO", func(artifact *types.Artifact) (string, bool) {
			return "", artifact.FSError == "" && !artifact.HasPkgInfo
		}),
		artifactRule("artifact_missing_buildinfo", "artifacts without .BUILDINFO", func(artifact *types.Artifact) (string, bool) {
			return "", artifact.FSError == "" && artifact.BuildInfo == nil
		}),
		artifactRule("artifact_recipe_digest_mismatch", "artifacts built from a different recipe revision", func(artifact *types.Artifact) (string, bool) {
			if artifact.BuildInfo == nil || artifact.BuildInfo.RecipeDigest == "" || len(artifact.Recipes) != 1 {
				return "", false
			}
			live := artifact.Recipes[0].Digest
			if live == "" || strings.EqualFold(live, artifact.BuildInfo.RecipeDigest) {
				return "", false
			}
			return "built from " + shortDigest(artifact.BuildInfo.RecipeDigest) + ", recipe is " + shortDigest(live), true
		}),
		artifactRule("artifact_missing_signature", "artifacts without a detached signature", func(artifact *types.Artifact) (string, bool) {
			return "", artifact.FSError == "" && !artifact.HasSignature
		}),
		artifactRule("artifact_unknown_key", "artifacts signed by a key outside the keyring", func(artifact *types.Artifact) (string, bool) {
			if len(known) == 0 || !artifact.HasSignature {
				return "", false
			}
			if artifact.SigKeyID == "" {
				return "unreadable signature", true
			}
			if _, ok := known[strings.ToUpper(artifact.SigKeyID)]; ok {
				return "", false
			}
			return artifact.SigKeyID, true
		}),
	}
}

func shortDigest(digest string) string {
	if len(digest) > 12 {
		return digest[:12]
	}
	return digest
}
