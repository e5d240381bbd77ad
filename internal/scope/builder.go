package scope

import (
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"

	"github.com/atomicstack/navstate/internal/nav"
)

// ErrInvalidRegistry wraps every Build failure.
var ErrInvalidRegistry = errors.New("invalid scope registry")

var validate *validator.Validate

func init() {
	validate = validator.New()
	_ = validate.RegisterValidation("panerole", func(fl validator.FieldLevel) bool {
		return nav.PaneRole(fl.Field().String()).Valid()
	})
}

type scopeDecl struct {
	key    nav.ScopeKey
	routes []string
}

// Builder assembles a Registry at startup. Containers default their scope key
// to their own route.
type Builder struct {
	tabs   []TabContainer
	panes  []PaneContainer
	scopes []scopeDecl
}

func NewBuilder() *Builder {
	return &Builder{}
}

// Tabs registers a tab container.
func (b *Builder) Tabs(c TabContainer) *Builder {
	b.tabs = append(b.tabs, c)
	return b
}

// Panes registers a pane container.
func (b *Builder) Panes(c PaneContainer) *Builder {
	b.panes = append(b.panes, c)
	return b
}

// Scope adds routes to the scope key. Tab and pane roots are members of their
// container's scope without being listed here.
func (b *Builder) Scope(key nav.ScopeKey, routes ...string) *Builder {
	b.scopes = append(b.scopes, scopeDecl{key: key, routes: routes})
	return b
}

// Build validates the declarations and returns the registry. All problems
// found are reported together.
func (b *Builder) Build() (*Registry, error) {
	r := &Registry{
		containers: make(map[string]Container),
		byScope:    make(map[nav.ScopeKey]string),
		owner:      make(map[string]nav.ScopeKey),
		members:    make(map[nav.ScopeKey]map[string]struct{}),
	}
	var errs []error
	fail := func(format string, args ...any) {
		errs = append(errs, fmt.Errorf(format, args...))
	}

	add := func(c Container) {
		route := c.Route()
		if _, dup := r.containers[route]; dup {
			fail("container %q registered twice", route)
			return
		}
		if other, dup := r.byScope[c.Scope()]; dup {
			fail("scope %q used by containers %q and %q", c.Scope(), other, route)
			return
		}
		r.containers[route] = c
		r.byScope[c.Scope()] = route
		r.members[c.Scope()] = make(map[string]struct{})
	}

	for _, tc := range b.tabs {
		tc.Tabs = append([]Tab(nil), tc.Tabs...)
		if err := validate.Struct(tc); err != nil {
			fail("tab container %q: %w", tc.Route, err)
			continue
		}
		if tc.Initial >= len(tc.Tabs) {
			fail("tab container %q: initial tab %d out of range [0,%d)", tc.Route, tc.Initial, len(tc.Tabs))
			continue
		}
		if tc.Scope == "" {
			tc.Scope = nav.ScopeKey(tc.Route)
		}
		add(Container{Kind: nav.KindTab, Tab: &tc})
	}
	for _, pc := range b.panes {
		pc.Panes = append([]Pane(nil), pc.Panes...)
		if err := validate.Struct(pc); err != nil {
			fail("pane container %q: %w", pc.Route, err)
			continue
		}
		if err := checkRoles(pc); err != nil {
			fail("pane container %q: %w", pc.Route, err)
			continue
		}
		if pc.Scope == "" {
			pc.Scope = nav.ScopeKey(pc.Route)
		}
		add(Container{Kind: nav.KindPane, Pane: &pc})
	}

	claim := func(scope nav.ScopeKey, route string) {
		if prev, ok := r.owner[route]; ok && prev != scope {
			fail("route %q claimed by scopes %q and %q", route, prev, scope)
			return
		}
		r.owner[route] = scope
		r.members[scope][route] = struct{}{}
	}
	for _, c := range r.containers {
		switch {
		case c.Tab != nil:
			for _, t := range c.Tab.Tabs {
				claim(c.Tab.Scope, t.Root)
				for _, route := range t.Routes {
					claim(c.Tab.Scope, route)
				}
			}
		case c.Pane != nil:
			for _, p := range c.Pane.Panes {
				if p.Root != "" {
					claim(c.Pane.Scope, p.Root)
				}
				for _, route := range p.Routes {
					claim(c.Pane.Scope, route)
				}
			}
		}
	}
	for _, d := range b.scopes {
		if _, ok := r.members[d.key]; !ok {
			fail("scope %q has no container", d.key)
			continue
		}
		for _, route := range d.routes {
			claim(d.key, route)
		}
	}

	for route := range r.containers {
		if err := r.checkChain(route); err != nil {
			errs = append(errs, err)
		}
	}

	if len(errs) > 0 {
		return nil, fmt.Errorf("%w: %w", ErrInvalidRegistry, errors.Join(errs...))
	}
	return r, nil
}

// MustBuild is Build for registries declared in code.
func (b *Builder) MustBuild() *Registry {
	r, err := b.Build()
	if err != nil {
		panic(err)
	}
	return r
}

func checkRoles(pc PaneContainer) error {
	seen := make(map[nav.PaneRole]struct{}, len(pc.Panes))
	for _, p := range pc.Panes {
		if _, dup := seen[p.Role]; dup {
			return fmt.Errorf("role %s declared twice", p.Role)
		}
		seen[p.Role] = struct{}{}
	}
	if _, ok := seen[nav.RolePrimary]; !ok {
		return errors.New("no primary role")
	}
	return nil
}

// checkChain follows the ownership chain upward from a container route. A
// container that ends up owning itself would materialise forever.
func (r *Registry) checkChain(route string) error {
	seen := map[string]struct{}{route: {}}
	cur := route
	for {
		scope, ok := r.owner[cur]
		if !ok {
			return nil
		}
		parent := r.byScope[scope]
		if _, loop := seen[parent]; loop {
			return fmt.Errorf("container %q is nested inside itself via scope %q", route, scope)
		}
		seen[parent] = struct{}{}
		cur = parent
	}
}

// Chain returns the container routes that own route, innermost first.
func (r *Registry) Chain(route string) []string {
	var out []string
	seen := make(map[string]struct{})
	for cur := route; ; {
		scope, ok := r.owner[cur]
		if !ok {
			return out
		}
		parent := r.byScope[scope]
		if _, loop := seen[parent]; loop {
			return out
		}
		seen[parent] = struct{}{}
		out = append(out, parent)
		cur = parent
	}
}
