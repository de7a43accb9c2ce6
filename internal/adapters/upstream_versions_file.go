package adapters

import (
	"context"
	"os"
	"strings"

	"github.com/ZanzyTHEbar/errbuilder-go"
	"gopkg.in/yaml.v3"

	"repolint/internal/ports"
)

// UpstreamVersionsFileAdapter reads a YAML map of recipe name to the
// latest upstream version. The file is read once per path.
type UpstreamVersionsFileAdapter struct {
	cached map[string]map[string]string
}

func NewUpstreamVersionsFileAdapter() *UpstreamVersionsFileAdapter {
	return &UpstreamVersionsFileAdapter{cached: map[string]map[string]string{}}
}

func (a *UpstreamVersionsFileAdapter) LoadVersions(_ context.Context, path string) (map[string]string, error) {
	if versions, ok := a.cached[path]; ok {
		return versions, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errbuilder.New().
			WithCode(errbuilder.CodeNotFound).
			WithMsg("upstream versions file not found").
			WithCause(err)
	}
	var raw map[string]string
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg("invalid upstream versions format").
			WithCause(err)
	}
	versions := make(map[string]string, len(raw))
	for name, version := range raw {
		name = strings.TrimSpace(name)
		version = strings.TrimSpace(version)
		if name == "" || version == "" {
			continue
		}
		versions[name] = version
	}
	a.cached[path] = versions
	return versions, nil
}

var _ ports.UpstreamVersionsPort = (*UpstreamVersionsFileAdapter)(nil)
