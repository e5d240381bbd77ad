// Package graph loads the declarative navigation graph: containers, scopes,
// deep-link patterns, start destination and tab labels.
package graph

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/atomicstack/navstate/internal/deeplink"
	"github.com/atomicstack/navstate/internal/nav"
	"github.com/atomicstack/navstate/internal/scope"
)

// Format is a graph file encoding.
type Format string

const (
	FormatYAML Format = "yaml"
	FormatTOML Format = "toml"
)

// FormatFor picks the encoding from a file extension.
func FormatFor(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FormatYAML, nil
	case ".toml":
		return FormatTOML, nil
	}
	return "", fmt.Errorf("graph %s: unknown extension, want .yaml, .yml or .toml", path)
}

// Route maps a deep-link pattern to a destination route.
type Route struct {
	Pattern string `yaml:"pattern" toml:"pattern" validate:"required,startswith=/"`
	Route   string `yaml:"route" toml:"route" validate:"required"`
}

// Graph is the parsed file. The registry and router are built by Parse.
type Graph struct {
	Start  string                       `yaml:"start" toml:"start" validate:"required"`
	Routes []Route                      `yaml:"routes" toml:"routes" validate:"dive"`
	Tabs   []scope.TabContainer         `yaml:"tabs" toml:"tabs"`
	Panes  []scope.PaneContainer        `yaml:"panes" toml:"panes"`
	Scopes map[string][]string          `yaml:"scopes" toml:"scopes"`
	Labels map[string]map[string]string `yaml:"labels" toml:"labels" validate:"dive,keys,bcp47_language_tag,endkeys"`

	path     string
	registry *scope.Registry
	router   *deeplink.Router
}

var validate = validator.New()

// Load reads and parses the graph file at path.
func Load(path string) (*Graph, error) {
	format, err := FormatFor(path)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read graph: %w", err)
	}
	g, err := Parse(data, format)
	if err != nil {
		return nil, fmt.Errorf("graph %s: %w", path, err)
	}
	g.path = path
	return g, nil
}

// Parse decodes data, validates it and builds the registry and router.
func Parse(data []byte, format Format) (*Graph, error) {
	g := &Graph{}
	switch format {
	case FormatYAML:
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		if err := dec.Decode(g); err != nil {
			return nil, fmt.Errorf("decode yaml: %w", err)
		}
	case FormatTOML:
		md, err := toml.Decode(string(data), g)
		if err != nil {
			return nil, fmt.Errorf("decode toml: %w", err)
		}
		if undecoded := md.Undecoded(); len(undecoded) > 0 {
			return nil, fmt.Errorf("decode toml: unknown keys %v", undecoded)
		}
	default:
		return nil, fmt.Errorf("unknown graph format %q", format)
	}
	if err := g.build(); err != nil {
		return nil, err
	}
	return g, nil
}

func (g *Graph) build() error {
	if err := validate.Struct(g); err != nil {
		return fmt.Errorf("validate graph: %w", err)
	}
	b := scope.NewBuilder()
	for _, tc := range g.Tabs {
		b.Tabs(tc)
	}
	for _, pc := range g.Panes {
		b.Panes(pc)
	}
	keys := make([]string, 0, len(g.Scopes))
	for k := range g.Scopes {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	for _, k := range keys {
		b.Scope(nav.ScopeKey(k), g.Scopes[k]...)
	}
	registry, err := b.Build()
	if err != nil {
		return err
	}

	router := deeplink.NewRouter()
	var errs []error
	for _, r := range g.Routes {
		if err := router.Register(r.Pattern, r.Route); err != nil {
			errs = append(errs, err)
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("routes: %w", errors.Join(errs...))
	}
	g.registry, g.router = registry, router
	return nil
}

// Path is the file the graph was loaded from, empty for parsed data.
func (g *Graph) Path() string { return g.path }

func (g *Graph) Registry() *scope.Registry { return g.registry }

func (g *Graph) Router() *deeplink.Router { return g.router }

// StartDestination is where a fresh session begins.
func (g *Graph) StartDestination() nav.Destination {
	return nav.To(g.Start)
}

// Destinations lists every route a user can navigate to by name: registry
// routes plus deep-link targets, sorted and unique.
func (g *Graph) Destinations() []string {
	out := slices.Clone(g.registry.Routes())
	for _, r := range g.Routes {
		out = append(out, r.Route)
	}
	out = append(out, g.Start)
	slices.Sort(out)
	return slices.Compact(out)
}
