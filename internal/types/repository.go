package types

import (
	"sort"
	"sync"
)

// RepositoryPaths locates the on-disk mirror of one repository.
type RepositoryPaths struct {
	Name       string `mapstructure:"name" yaml:"name"`
	RecipeDir  string `mapstructure:"recipe_dir" yaml:"recipe_dir"`
	PackageDir string `mapstructure:"package_dir" yaml:"package_dir"`
	Reference  bool   `mapstructure:"reference" yaml:"reference,omitempty"`
}

// Repository owns the entities of one logical package collection
// together with its (arch, name) indices.
type Repository struct {
	Name          string
	Reference     bool
	Recipes       []*Recipe
	Entries       []*RepoEntry
	Artifacts     []*Artifact
	BrokenRecipes []string

	mu          sync.Mutex
	recipeIndex map[string]map[string][]*Recipe
	entryIndex  map[string]map[string][]*RepoEntry
	provides    map[string]map[string][]*RepoEntry
}

func NewRepository(name string) *Repository {
	return &Repository{
		Name:        name,
		recipeIndex: map[string]map[string][]*Recipe{},
		entryIndex:  map[string]map[string][]*RepoEntry{},
		provides:    map[string]map[string][]*RepoEntry{},
	}
}

// RegisterRecipe records that recipe declares package name for arch.
func (r *Repository) RegisterRecipe(arch string, name string, recipe *Recipe) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.recipeIndex[arch] == nil {
		r.recipeIndex[arch] = map[string][]*Recipe{}
	}
	r.recipeIndex[arch][name] = append(r.recipeIndex[arch][name], recipe)
}

// RecipesFor returns the recipes declaring name for arch. Zero results
// mean undeclared, more than one means ambiguous provenance.
func (r *Repository) RecipesFor(arch string, name string) []*Recipe {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.recipeIndex[arch][name]
}

func (r *Repository) RegisterEntry(entry *RepoEntry) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.entryIndex[entry.Arch] == nil {
		r.entryIndex[entry.Arch] = map[string][]*RepoEntry{}
	}
	r.entryIndex[entry.Arch][entry.Name] = append(r.entryIndex[entry.Arch][entry.Name], entry)
}

func (r *Repository) EntriesFor(arch string, name string) []*RepoEntry {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.entryIndex[arch][name]
}

// RegisterProvider records that entry provides the capability name on
// arch. The name must already be stripped of any version suffix.
func (r *Repository) RegisterProvider(arch string, name string, entry *RepoEntry) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.provides[arch] == nil {
		r.provides[arch] = map[string][]*RepoEntry{}
	}
	for _, existing := range r.provides[arch][name] {
		if existing == entry {
			return
		}
	}
	r.provides[arch][name] = append(r.provides[arch][name], entry)
}

func (r *Repository) ProvidersOf(arch string, name string) []*RepoEntry {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.provides[arch][name]
}

// Arches returns the architectures that have at least one entry.
func (r *Repository) Arches() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, 0, len(r.entryIndex))
	for arch := range r.entryIndex {
		out = append(out, arch)
	}
	sort.Strings(out)
	return out
}

// Streams exposes the repository content as entity streams.
func (r *Repository) Streams() EntityStreams {
	return EntityStreams{
		Recipes:   r.Recipes,
		Entries:   r.Entries,
		Artifacts: r.Artifacts,
	}
}
