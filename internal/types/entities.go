package types

import (
	"fmt"
	"time"
)

// Entity is anything a lint rule can be bound to.
type Entity interface {
	Kind() EntityKind
	String() string
}

// PackageDecl is one package a recipe declares for one architecture.
type PackageDecl struct {
	Arch         string
	Name         string
	Version      Version
	Depends      []string
	MakeDepends  []string
	CheckDepends []string
	Provides     []string
	Conflicts    []string
	Arches       []string
	Extra        map[string]string
}

// Recipe is a build description unit (a PKGBUILD directory).
type Recipe struct {
	Repo           string
	Name           string
	Path           string
	Valid          bool
	Error          string
	Digest         string
	DeclaredArches []string
	Arches         []string
	Packages       []PackageDecl

	// backward links, filled while entries and artifacts are indexed
	Entries   map[string][]*RepoEntry
	Artifacts map[string][]*Artifact

	declIndex map[string]int
}

func NewRecipe(repo string, name string, path string) *Recipe {
	return &Recipe{
		Repo:      repo,
		Name:      name,
		Path:      path,
		Entries:   map[string][]*RepoEntry{},
		Artifacts: map[string][]*Artifact{},
		declIndex: map[string]int{},
	}
}

func (r *Recipe) Kind() EntityKind { return EntityKindRecipe }

func (r *Recipe) String() string {
	return fmt.Sprintf("%s/%s", r.Repo, r.Name)
}

// AddPackage appends a declaration to the arena. A second declaration
// for the same (arch, name) pair replaces the first.
func (r *Recipe) AddPackage(decl PackageDecl) {
	if r.declIndex == nil {
		r.declIndex = map[string]int{}
	}
	key := decl.Arch + "/" + decl.Name
	if idx, ok := r.declIndex[key]; ok {
		r.Packages[idx] = decl
		return
	}
	r.declIndex[key] = len(r.Packages)
	r.Packages = append(r.Packages, decl)
}

// Package returns the declaration for (arch, name).
func (r *Recipe) Package(arch string, name string) (PackageDecl, bool) {
	idx, ok := r.declIndex[arch+"/"+name]
	if !ok {
		return PackageDecl{}, false
	}
	return r.Packages[idx], true
}

// PackagesFor returns the declarations for one architecture in
// declaration order.
func (r *Recipe) PackagesFor(arch string) []PackageDecl {
	var out []PackageDecl
	for _, decl := range r.Packages {
		if decl.Arch == arch {
			out = append(out, decl)
		}
	}
	return out
}

// RepoEntry is one record of a repository database, scoped to a
// repository and architecture.
type RepoEntry struct {
	Repo         string
	Arch         string
	Name         string
	Base         string
	Version      Version
	Depends      []string
	MakeDepends  []string
	CheckDepends []string
	Provides     []string
	Conflicts    []string
	Filename     string
	PGPSig       string
	SigKeyID     string
	BuildDate    time.Time
	Packager     string
	Extra        map[string]string

	Recipes        []*Recipe
	Artifact       *Artifact
	OtherArtifacts []*Artifact
}

func (e *RepoEntry) Kind() EntityKind { return EntityKindRepoEntry }

func (e *RepoEntry) String() string {
	return fmt.Sprintf("%s/%s/%s-%s", e.Repo, e.Arch, e.Name, e.Version)
}

// BuildInfo is the content of an artifact's .BUILDINFO file.
type BuildInfo struct {
	Builder      string
	BuildDate    time.Time
	RecipeDigest string
	RecipeName   string
	BuildTool    string
	Extra        map[string]string
}

// Artifact is a built package file on disk.
type Artifact struct {
	Repo         string
	Arch         string
	Path         string
	Filename     string
	Name         string
	Version      Version
	HasPkgInfo   bool
	BuildInfo    *BuildInfo
	HasSignature bool
	SigKeyID     string
	FSError      string
	BuildDate    time.Time
	Extra        map[string]string

	Recipes []*Recipe
	Entries []*RepoEntry
}

func (a *Artifact) Kind() EntityKind { return EntityKindArtifact }

func (a *Artifact) String() string {
	return fmt.Sprintf("%s/%s/%s", a.Repo, a.Arch, a.Filename)
}

// SigningKey is a primary key or subkey from the distribution keyring.
type SigningKey struct {
	KeyID       string
	Fingerprint string
	UID         string
	MasterKeyID string
	Created     time.Time
	Expires     time.Time
	Signed      []string
}

func (k *SigningKey) Kind() EntityKind { return EntityKindSigningKey }

func (k *SigningKey) String() string {
	if k.UID != "" {
		return fmt.Sprintf("%s (%s)", k.KeyID, k.UID)
	}
	return k.KeyID
}

// IsSubkey reports whether the key belongs to a master key.
func (k *SigningKey) IsSubkey() bool {
	return k.MasterKeyID != ""
}

// CheckIssue is one finding of one rule about one entity.
type CheckIssue struct {
	Entity Entity
	Detail string
}

func (i CheckIssue) String() string {
	if i.Detail == "" {
		return i.Entity.String()
	}
	return fmt.Sprintf("%s (%s)", i.Entity.String(), i.Detail)
}

// EntityStreams carries the full entity population of a run.
type EntityStreams struct {
	Recipes   []*Recipe
	Entries   []*RepoEntry
	Artifacts []*Artifact
	Keys      []*SigningKey
}

// Stream returns the entities of one kind.
func (s EntityStreams) Stream(kind EntityKind) []Entity {
	var out []Entity
	switch kind {
	case EntityKindRecipe:
		out = make([]Entity, 0, len(s.Recipes))
		for _, recipe := range s.Recipes {
			out = append(out, recipe)
		}
	case EntityKindRepoEntry:
		out = make([]Entity, 0, len(s.Entries))
		for _, entry := range s.Entries {
			out = append(out, entry)
		}
	case EntityKindArtifact:
		out = make([]Entity, 0, len(s.Artifacts))
		for _, artifact := range s.Artifacts {
			out = append(out, artifact)
		}
	case EntityKindSigningKey:
		out = make([]Entity, 0, len(s.Keys))
		for _, key := range s.Keys {
			out = append(out, key)
		}
	}
	return out
}
