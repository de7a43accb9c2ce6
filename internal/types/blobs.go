package types

import "time"

// RecipeBlob is the raw material for one recipe as produced by the
// recipe metadata collaborator. Metadata maps an architecture to the
// evaluated metadata for it; the empty key holds the architecture
// independent rendition.
type RecipeBlob struct {
	Name     string
	Path     string
	Digest   string
	ModTime  time.Time
	Metadata map[string][]byte
	Err      error
}

// EntryBlob is one desc record read from a repository database.
type EntryBlob struct {
	Arch   string
	Origin string
	Desc   []byte
}

// ArtifactBlob holds the metadata extracted from one package file.
// BuildInfo and Signature are nil when the file has none.
type ArtifactBlob struct {
	Arch      string
	Path      string
	Filename  string
	PkgInfo   []byte
	BuildInfo []byte
	Signature []byte
	Err       error
}

// RepositoryInput bundles everything the index builder consumes for
// one repository.
type RepositoryInput struct {
	Name      string
	Reference bool
	Recipes   []RecipeBlob
	Entries   []EntryBlob
	Artifacts []ArtifactBlob
}
