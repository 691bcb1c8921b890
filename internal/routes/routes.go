// Package routes holds the declarative route registry: one table mapping a
// (domain, operation) key to the logical backend service, HTTP method and
// path template that serve it.
//
// The registry is validated once at construction. Validation rejects
// malformed entries and route drift, i.e. two entries that differ only by
// path casing or singular/plural resource names.
package routes

import (
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"regexp"
	"sort"
	"strings"
)

// Key identifies a route by domain and operation.
type Key struct {
	Domain    string
	Operation string
}

// String renders the key as "domain.operation".
func (k Key) String() string { return k.Domain + "." + k.Operation }

// ParseKey parses "domain.operation".
func ParseKey(s string) (Key, error) {
	d, op, ok := strings.Cut(strings.TrimSpace(s), ".")
	if !ok || d == "" || op == "" {
		return Key{}, fmt.Errorf("route key %q: want domain.operation", s)
	}
	return Key{Domain: d, Operation: op}, nil
}

// Route is one registry entry.
type Route struct {
	Domain    string `yaml:"domain"    json:"domain"`
	Operation string `yaml:"operation" json:"operation"`
	Service   string `yaml:"service"   json:"service"`
	Method    string `yaml:"method"    json:"method"`
	Path      string `yaml:"path"      json:"path"`
}

// Key returns the route's registry key.
func (r Route) Key() Key { return Key{Domain: r.Domain, Operation: r.Operation} }

// HasBody reports whether the method carries a JSON request body.
func (r Route) HasBody() bool {
	switch r.Method {
	case http.MethodPost, http.MethodPut, http.MethodPatch:
		return true
	}
	return false
}

// Params returns the placeholder names in path order.
func (r Route) Params() []string {
	var out []string
	for _, seg := range segments(r.Path) {
		if name, ok := placeholder(seg); ok {
			out = append(out, name)
		}
	}
	return out
}

// Expand substitutes params into the path template. Every placeholder must be
// supplied and no unknown params are accepted. Values are path-escaped.
func (r Route) Expand(params map[string]string) (string, error) {
	want := r.Params()
	known := make(map[string]struct{}, len(want))
	for _, name := range want {
		known[name] = struct{}{}
	}
	for name := range params {
		if _, ok := known[name]; !ok {
			return "", fmt.Errorf("route %s: unknown param %q", r.Key(), name)
		}
	}

	segs := segments(r.Path)
	for i, seg := range segs {
		name, ok := placeholder(seg)
		if !ok {
			continue
		}
		v := strings.TrimSpace(params[name])
		if v == "" {
			return "", fmt.Errorf("route %s: missing param %q", r.Key(), name)
		}
		segs[i] = url.PathEscape(v)
	}
	return "/" + strings.Join(segs, "/"), nil
}

// GinPath converts the template to gin syntax ({id} -> :id).
func (r Route) GinPath() string {
	segs := segments(r.Path)
	for i, seg := range segs {
		if name, ok := placeholder(seg); ok {
			segs[i] = ":" + name
		}
	}
	return "/" + strings.Join(segs, "/")
}

// Registry is an immutable, validated route table. Safe for concurrent use.
type Registry struct {
	byKey map[Key]Route
	all   []Route
}

// New validates routes and builds a Registry. All problems are reported
// together as a joined error.
func New(routes ...Route) (*Registry, error) {
	reg := &Registry{byKey: make(map[Key]Route, len(routes))}
	var errs []error
	drift := make(map[string]Route, len(routes))

	for _, r := range routes {
		r.Method = strings.ToUpper(strings.TrimSpace(r.Method))
		if err := validate(r); err != nil {
			errs = append(errs, err)
			continue
		}
		if prev, dup := reg.byKey[r.Key()]; dup {
			errs = append(errs, fmt.Errorf("route %s: duplicate key (%s %s and %s %s)", r.Key(), prev.Method, prev.Path, r.Method, r.Path))
			continue
		}
		sig := r.Method + " " + canonicalPath(r.Path)
		if prev, clash := drift[sig]; clash {
			errs = append(errs, fmt.Errorf("route drift: %s (%s %s) and %s (%s %s) address the same resource", prev.Key(), prev.Method, prev.Path, r.Key(), r.Method, r.Path))
			continue
		}
		drift[sig] = r
		reg.byKey[r.Key()] = r
		reg.all = append(reg.all, r)
	}
	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}

	sort.Slice(reg.all, func(i, j int) bool {
		if reg.all[i].Domain != reg.all[j].Domain {
			return reg.all[i].Domain < reg.all[j].Domain
		}
		return reg.all[i].Operation < reg.all[j].Operation
	})
	return reg, nil
}

// MustNew is New that panics on validation failure.
func MustNew(routes ...Route) *Registry {
	reg, err := New(routes...)
	if err != nil {
		panic(err)
	}
	return reg
}

// Lookup returns the route for (domain, op).
func (g *Registry) Lookup(domain, op string) (Route, bool) {
	r, ok := g.byKey[Key{Domain: domain, Operation: op}]
	return r, ok
}

// Route returns the route for k or an error naming the missing key.
func (g *Registry) Route(k Key) (Route, error) {
	r, ok := g.byKey[k]
	if !ok {
		return Route{}, fmt.Errorf("no route registered for %s", k)
	}
	return r, nil
}

// All returns the routes sorted by domain then operation.
func (g *Registry) All() []Route {
	out := make([]Route, len(g.all))
	copy(out, g.all)
	return out
}

// Domains returns the distinct domains, sorted.
func (g *Registry) Domains() []string {
	var out []string
	for _, r := range g.all {
		if len(out) == 0 || out[len(out)-1] != r.Domain {
			out = append(out, r.Domain)
		}
	}
	return out
}

// Len returns the number of routes.
func (g *Registry) Len() int { return len(g.all) }

var (
	identRE  = regexp.MustCompile(`^[a-z][a-z0-9_]*$`)
	paramRE  = regexp.MustCompile(`^[A-Za-z][A-Za-z0-9_]*$`)
	staticRE = regexp.MustCompile(`^[A-Za-z0-9._~-]+$`)
)

var allowedMethods = map[string]struct{}{
	http.MethodGet:    {},
	http.MethodPost:   {},
	http.MethodPut:    {},
	http.MethodPatch:  {},
	http.MethodDelete: {},
}

func validate(r Route) error {
	var errs []error
	if !identRE.MatchString(r.Domain) {
		errs = append(errs, fmt.Errorf("domain %q must be a lowercase identifier", r.Domain))
	}
	if !identRE.MatchString(r.Operation) {
		errs = append(errs, fmt.Errorf("operation %q must be a lowercase identifier", r.Operation))
	}
	if !identRE.MatchString(r.Service) {
		errs = append(errs, fmt.Errorf("service %q must be a lowercase identifier", r.Service))
	}
	if _, ok := allowedMethods[r.Method]; !ok {
		errs = append(errs, fmt.Errorf("method %q not allowed", r.Method))
	}
	if err := validatePath(r.Path); err != nil {
		errs = append(errs, err)
	}
	if len(errs) == 0 {
		return nil
	}
	return fmt.Errorf("route %s: %w", r.Key(), errors.Join(errs...))
}

func validatePath(p string) error {
	if !strings.HasPrefix(p, "/api/") {
		return fmt.Errorf("path %q must start with /api/", p)
	}
	seen := map[string]struct{}{}
	for _, seg := range strings.Split(strings.TrimPrefix(p, "/"), "/") {
		if seg == "" {
			return fmt.Errorf("path %q has an empty segment", p)
		}
		if strings.ContainsAny(seg, "{}") {
			name, ok := placeholder(seg)
			if !ok || !paramRE.MatchString(name) {
				return fmt.Errorf("path %q: malformed placeholder %q", p, seg)
			}
			if _, dup := seen[name]; dup {
				return fmt.Errorf("path %q: repeated placeholder %q", p, name)
			}
			seen[name] = struct{}{}
			continue
		}
		if !staticRE.MatchString(seg) {
			return fmt.Errorf("path %q: invalid segment %q", p, seg)
		}
	}
	return nil
}

func segments(p string) []string {
	return strings.Split(strings.Trim(p, "/"), "/")
}

func placeholder(seg string) (string, bool) {
	if len(seg) > 2 && seg[0] == '{' && seg[len(seg)-1] == '}' {
		return seg[1 : len(seg)-1], true
	}
	return "", false
}

// canonicalPath lowercases and singularizes static segments and erases
// placeholder names, so drifted spellings collapse to one signature.
func canonicalPath(p string) string {
	segs := segments(p)
	for i, seg := range segs {
		if _, ok := placeholder(seg); ok {
			segs[i] = "{}"
			continue
		}
		segs[i] = singular(strings.ToLower(seg))
	}
	return strings.Join(segs, "/")
}

func singular(s string) string {
	switch {
	case strings.HasSuffix(s, "ies") && len(s) > 3:
		return s[:len(s)-3] + "y"
	case strings.HasSuffix(s, "ss"):
		return s
	case strings.HasSuffix(s, "s") && len(s) > 1:
		return s[:len(s)-1]
	}
	return s
}
