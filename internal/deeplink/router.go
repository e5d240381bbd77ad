// Package deeplink turns flat route strings into navigation trees.
package deeplink

import (
	"errors"
	"fmt"
	"net/url"
	"slices"
	"sort"
	"strings"
	"sync"

	"github.com/lithammer/fuzzysearch/fuzzy"

	"github.com/atomicstack/navstate/internal/nav"
)

// ErrNoMatch is returned when no registered pattern matches a link.
var ErrNoMatch = errors.New("no route matches link")

// Match is a link resolved to a destination.
type Match struct {
	Pattern     string
	Destination nav.Destination
}

type pattern struct {
	raw      string
	route    string
	segments []string
	literals int
}

// Router maps path patterns such as "/mail/{id}" to routes. Register during
// setup; Match is safe for concurrent use.
type Router struct {
	mu       sync.RWMutex
	patterns []pattern
}

func NewRouter() *Router {
	return &Router{}
}

// Register adds pattern for route. Segments wrapped in braces capture args.
func (r *Router) Register(raw, route string) error {
	if route == "" {
		return fmt.Errorf("pattern %q: empty route", raw)
	}
	segs := split(raw)
	p := pattern{raw: raw, route: route, segments: segs}
	names := make(map[string]struct{})
	for _, s := range segs {
		name, ok := param(s)
		if !ok {
			if strings.ContainsAny(s, "{}") {
				return fmt.Errorf("pattern %q: malformed segment %q", raw, s)
			}
			p.literals++
			continue
		}
		if name == "" {
			return fmt.Errorf("pattern %q: empty parameter name", raw)
		}
		if _, dup := names[name]; dup {
			return fmt.Errorf("pattern %q: parameter %q repeated", raw, name)
		}
		names[name] = struct{}{}
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.patterns {
		if existing.raw == raw {
			return fmt.Errorf("pattern %q registered twice", raw)
		}
	}
	r.patterns = append(r.patterns, p)
	return nil
}

// MustRegister is Register for patterns declared in code.
func (r *Router) MustRegister(raw, route string) *Router {
	if err := r.Register(raw, route); err != nil {
		panic(err)
	}
	return r
}

// Patterns lists the registered patterns in registration order.
func (r *Router) Patterns() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]string, len(r.patterns))
	for i, p := range r.patterns {
		out[i] = p.raw
	}
	return out
}

// Route returns the route registered for pattern raw.
func (r *Router) Route(raw string) (string, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, p := range r.patterns {
		if p.raw == raw {
			return p.route, true
		}
	}
	return "", false
}

// Match resolves link. For http and https links the host is ignored; for any
// other scheme the host is the first path segment, so app://mail/42 matches
// /mail/{id}. Query parameters become args and path parameters win over query
// parameters of the same name. The pattern with the most literal segments
// wins; ties go to the earliest.
func (r *Router) Match(link string) (Match, bool) {
	path, query, err := parse(link)
	if err != nil {
		return Match{}, false
	}
	segs := split(path)

	r.mu.RLock()
	defer r.mu.RUnlock()
	var (
		best     *pattern
		bestArgs map[string]string
	)
	for i := range r.patterns {
		p := &r.patterns[i]
		args, ok := p.match(segs)
		if !ok {
			continue
		}
		if best == nil || p.literals > best.literals {
			best, bestArgs = p, args
		}
	}
	if best == nil {
		return Match{}, false
	}
	merged := make(map[string]string, len(query)+len(bestArgs))
	for k, v := range query {
		if len(v) > 0 {
			merged[k] = v[0]
		}
	}
	for k, v := range bestArgs {
		merged[k] = v
	}
	dest := nav.Destination{Route: best.route}
	if len(merged) > 0 {
		dest.Args = merged
	}
	return Match{Pattern: best.raw, Destination: dest}, true
}

// Suggest ranks registered patterns by fuzzy similarity to link, closest
// first, returning at most n.
func (r *Router) Suggest(link string, n int) []string {
	path, _, err := parse(link)
	if err != nil {
		path = link
	}
	query := strings.Trim(path, "/")
	candidates := r.Patterns()
	if query == "" {
		return truncate(candidates, n)
	}
	ranks := fuzzy.RankFindNormalizedFold(query, candidates)
	sort.SliceStable(ranks, func(i, j int) bool {
		if ranks[i].Distance != ranks[j].Distance {
			return ranks[i].Distance < ranks[j].Distance
		}
		return ranks[i].OriginalIndex < ranks[j].OriginalIndex
	})
	out := make([]string, 0, len(ranks))
	for _, rank := range ranks {
		out = append(out, rank.Target)
	}
	return truncate(out, n)
}

func (p *pattern) match(segs []string) (map[string]string, bool) {
	if len(segs) != len(p.segments) {
		return nil, false
	}
	var args map[string]string
	for i, s := range p.segments {
		if name, ok := param(s); ok {
			if args == nil {
				args = make(map[string]string)
			}
			args[name] = segs[i]
			continue
		}
		if s != segs[i] {
			return nil, false
		}
	}
	return args, true
}

func parse(link string) (string, url.Values, error) {
	u, err := url.Parse(strings.TrimSpace(link))
	if err != nil {
		return "", nil, err
	}
	path := u.Path
	if u.Opaque != "" {
		path = u.Opaque
	}
	if u.Host != "" && !webScheme(u.Scheme) {
		path = "/" + u.Host + path
	}
	return path, u.Query(), nil
}

func webScheme(scheme string) bool {
	switch strings.ToLower(scheme) {
	case "http", "https":
		return true
	}
	return false
}

func split(path string) []string {
	return slices.DeleteFunc(strings.Split(path, "/"), func(s string) bool { return s == "" })
}

func param(seg string) (string, bool) {
	if len(seg) >= 2 && strings.HasPrefix(seg, "{") && strings.HasSuffix(seg, "}") {
		return seg[1 : len(seg)-1], true
	}
	return "", false
}

func truncate(s []string, n int) []string {
	if n > 0 && len(s) > n {
		return s[:n]
	}
	return s
}
