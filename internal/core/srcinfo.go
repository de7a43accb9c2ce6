package core

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/ZanzyTHEbar/errbuilder-go"
	"github.com/rs/zerolog/log"

	"repolint/internal/shared"
	"repolint/internal/types"
)

// SrcinfoPackage is one pkgname scope of a recipe's metadata. ArchAttrs
// holds the "_<arch>" keys of the active architecture under their base
// name.
type SrcinfoPackage struct {
	Name      string
	Attrs     Attributes
	ArchAttrs Attributes
}

// Srcinfo is a recipe's metadata evaluated for one architecture.
type Srcinfo struct {
	Arch     string
	Base     Attributes
	ArchBase Attributes
	Packages []SrcinfoPackage
}

// Effective returns the attributes of package i with every base key the
// package does not override filled in. Generic and arch-specific keys
// are inherited independently and joined afterwards, so overriding
// "depends" keeps the base "depends_<arch>" values.
func (s Srcinfo) Effective(i int) Attributes {
	pkg := s.Packages[i]
	generic := pkg.Attrs.mergeOver(s.Base)
	specific := pkg.ArchAttrs.mergeOver(s.ArchBase)
	return generic.joinWith(specific)
}

// ParseSrcinfo reads recipe metadata with arch as the active
// architecture. Keys carrying an "_<arch>" suffix count for the active
// architecture only and are dropped for any other one. An empty arch
// drops every suffixed key.
func ParseSrcinfo(data []byte, arch string) (Srcinfo, error) {
	info := Srcinfo{Arch: arch, Base: NewAttributes(), ArchBase: NewAttributes()}
	scope, archScope := info.Base, info.ArchBase
	scanner := bufio.NewScanner(bytes.NewReader(data))
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		idx := strings.Index(line, "=")
		if idx <= 0 {
			return Srcinfo{}, errbuilder.New().
				WithCode(errbuilder.CodeInvalidArgument).
				WithMsg(fmt.Sprintf("malformed recipe metadata line %d: %q", lineNo, line))
		}
		key := strings.TrimSpace(line[:idx])
		value := strings.TrimSpace(line[idx+1:])

		if key == "pkgname" {
			pkg := SrcinfoPackage{Name: value, Attrs: NewAttributes(), ArchAttrs: NewAttributes()}
			pkg.Attrs.Scalars["pkgname"] = value
			info.Packages = append(info.Packages, pkg)
			scope, archScope = pkg.Attrs, pkg.ArchAttrs
			continue
		}

		folded, keep := foldArchKey(key, arch)
		if !keep {
			continue
		}
		if folded != key {
			archScope.add(SrcinfoFields, folded, value)
			continue
		}
		scope.add(SrcinfoFields, folded, value)
	}
	if err := scanner.Err(); err != nil {
		return Srcinfo{}, errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg("failed to read recipe metadata").
			WithCause(err)
	}
	if len(info.Packages) == 0 {
		return Srcinfo{}, errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg("recipe metadata declares no packages")
	}
	return info, nil
}

func foldArchKey(key string, arch string) (string, bool) {
	if SrcinfoFields.Knows(key) {
		return key, true
	}
	idx := strings.Index(key, "_")
	if idx <= 0 {
		return key, true
	}
	base, suffix := key[:idx], key[idx+1:]
	if _, ok := srcinfoArchSpecific[base]; !ok {
		return key, true
	}
	if suffix == arch {
		return base, true
	}
	return "", false
}

// ExpandArches resolves a declared architecture list against the
// configured set. The "any" token is replaced by every configured
// architecture; other declared architectures are kept as listed.
func ExpandArches(declared []string, configured []string) []string {
	seen := map[string]struct{}{}
	for _, arch := range declared {
		if arch == types.ArchAny {
			for _, c := range configured {
				seen[c] = struct{}{}
			}
			continue
		}
		seen[arch] = struct{}{}
	}
	out := make([]string, 0, len(seen))
	for arch := range seen {
		out = append(out, arch)
	}
	sort.Strings(out)
	return out
}

// BuildRecipe turns a recipe blob into a Recipe. Parse failures never
// propagate: the recipe comes back with Valid unset and Error filled.
func BuildRecipe(ctx context.Context, repo string, blob types.RecipeBlob, configured []string) *types.Recipe {
	recipe := types.NewRecipe(repo, blob.Name, blob.Path)
	recipe.Digest = blob.Digest
	if blob.Err != nil {
		return invalidRecipe(ctx, recipe, blob.Err)
	}

	generic, ok := genericMetadata(blob)
	if !ok {
		return invalidRecipe(ctx, recipe, fmt.Errorf("no recipe metadata"))
	}
	base, err := ParseSrcinfo(generic, "")
	if err != nil {
		return invalidRecipe(ctx, recipe, err)
	}
	logUnknown(ctx, blob.Path, base.Base)

	recipe.DeclaredArches = base.Base.Set("arch")
	if len(recipe.DeclaredArches) == 0 {
		return invalidRecipe(ctx, recipe, fmt.Errorf("no architecture declared"))
	}
	recipe.Arches = ExpandArches(recipe.DeclaredArches, configured)

	allowed := shared.ToSet(configured)
	for _, arch := range recipe.Arches {
		if _, ok := allowed[arch]; !ok {
			continue
		}
		data, ok := blob.Metadata[arch]
		if !ok {
			data = generic
		}
		info, err := ParseSrcinfo(data, arch)
		if err != nil {
			return invalidRecipe(ctx, recipe, err)
		}
		for i := range info.Packages {
			attrs := info.Effective(i)
			pkgArches := ExpandArches(attrs.Set("arch"), configured)
			if !shared.Contains(pkgArches, arch) {
				continue
			}
			version, err := ParseVersion(srcinfoVersion(attrs))
			if err != nil {
				return invalidRecipe(ctx, recipe, err)
			}
			recipe.AddPackage(types.PackageDecl{
				Arch:         arch,
				Name:         info.Packages[i].Name,
				Version:      version,
				Depends:      attrs.Set("depends"),
				MakeDepends:  attrs.Set("makedepends"),
				CheckDepends: attrs.Set("checkdepends"),
				Provides:     attrs.Set("provides"),
				Conflicts:    attrs.Set("conflicts"),
				Arches:       pkgArches,
				Extra:        extraScalars(attrs, "pkgbase", "pkgdesc", "url"),
			})
		}
	}
	recipe.Valid = true
	return recipe
}

func invalidRecipe(ctx context.Context, recipe *types.Recipe, err error) *types.Recipe {
	log.Ctx(ctx).Warn().Err(err).Str("recipe", recipe.String()).Msg("invalid recipe")
	recipe.Valid = false
	recipe.Error = err.Error()
	return recipe
}

// genericMetadata picks the architecture independent rendition, or the
// first per-architecture one when the collaborator produced none.
func genericMetadata(blob types.RecipeBlob) ([]byte, bool) {
	if data, ok := blob.Metadata[""]; ok {
		return data, true
	}
	keys := sortedKeys(blob.Metadata)
	if len(keys) == 0 {
		return nil, false
	}
	return blob.Metadata[keys[0]], true
}

func srcinfoVersion(attrs Attributes) string {
	version := attrs.Scalar("pkgver")
	if rel := attrs.Scalar("pkgrel"); rel != "" {
		version += "-" + rel
	}
	if epoch := attrs.Scalar("epoch"); epoch != "" && epoch != "0" {
		version = epoch + ":" + version
	}
	return version
}

func extraScalars(attrs Attributes, keys ...string) map[string]string {
	out := map[string]string{}
	for _, key := range keys {
		if value := attrs.Scalar(key); value != "" {
			out[key] = value
		}
	}
	return out
}
