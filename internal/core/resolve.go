package core

import (
	"strings"

	"repolint/internal/types"
)

// Resolve reports whether depspec is met by some provider for arch in
// any of repos. A bare name accepts every provider; a constrained one
// compares the provider's effective version. Malformed specifiers never
// resolve.
func Resolve(depspec string, arch string, repos []*types.Repository) bool {
	spec, err := ParseDepSpec(depspec)
	if err != nil {
		return false
	}
	var want types.Version
	if spec.HasVersion() {
		want, err = ParseVersion(spec.Version)
		if err != nil {
			return false
		}
	}
	for _, repo := range repos {
		for _, candidate := range repo.ProvidersOf(arch, spec.Name) {
			if !spec.HasVersion() {
				return true
			}
			if satisfiesOp(spec.Op, EffectiveVersion(candidate, spec.Name), want) {
				return true
			}
		}
	}
	return false
}

// EffectiveVersion is the version at which entry provides name: the
// version of a matching "name=version" provides record when there is
// one, the entry's own version otherwise.
func EffectiveVersion(entry *types.RepoEntry, name string) types.Version {
	for _, provided := range entry.Provides {
		spec, err := ParseDepSpec(provided)
		if err != nil || spec.Name != name || !spec.HasVersion() {
			continue
		}
		if version, err := ParseVersion(spec.Version); err == nil {
			return version
		}
	}
	return entry.Version
}

// UnresolvedDepends returns the members of deps that Resolve rejects,
// in input order.
func UnresolvedDepends(deps []string, arch string, repos []*types.Repository) []string {
	var out []string
	for _, dep := range deps {
		if strings.TrimSpace(dep) == "" {
			continue
		}
		if !Resolve(dep, arch, repos) {
			out = append(out, dep)
		}
	}
	return out
}
