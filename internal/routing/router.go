package routing

import (
	"errors"
	"fmt"
	"net/url"
	"reflect"
	"regexp"
	"strings"
	"sync"

	"github.com/spf13/cast"
)

var (
	ErrRouteNotFound    = errors.New("route not found")
	ErrMissingParameter = errors.New("missing route parameter")
	ErrInvalidParameter = errors.New("invalid route parameter")
)

var placeholderPattern = regexp.MustCompile(`\{(\w+)\}`)

// Router owns the route registry and generates absolute URLs from it.
// The collection can be swapped while the router is serving.
type Router struct {
	mu      sync.RWMutex
	baseURL string
	routes  *Collection
}

func NewRouter(baseURL string, routes *Collection) (*Router, error) {
	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid base url %q: %w", baseURL, err)
	}
	if u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("base url %q must be absolute", baseURL)
	}
	if routes == nil {
		routes = NewCollection()
	}

	return &Router{
		baseURL: strings.TrimRight(u.String(), "/"),
		routes:  routes,
	}, nil
}

// Routes returns a snapshot of the registry in registration order.
func (r *Router) Routes() []Route {
	return r.collection().Routes()
}

// Replace swaps the registry for the next lookups.
func (r *Router) Replace(routes *Collection) {
	if routes == nil {
		routes = NewCollection()
	}
	r.mu.Lock()
	r.routes = routes
	r.mu.Unlock()
}

func (r *Router) collection() *Collection {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.routes
}

// Snapshot pins the current collection. Later calls to Replace do not affect
// the returned value.
func (r *Router) Snapshot() *Snapshot {
	return &Snapshot{baseURL: r.baseURL, routes: r.collection()}
}

// GenerateAbsoluteURL resolves name against the current collection.
func (r *Router) GenerateAbsoluteURL(name string, params map[string]any) (string, error) {
	return r.Snapshot().GenerateAbsoluteURL(name, params)
}

// Snapshot is one fixed state of a Router's registry.
type Snapshot struct {
	baseURL string
	routes  *Collection
}

func (s *Snapshot) Routes() []Route {
	return s.routes.Routes()
}

// GenerateAbsoluteURL builds the absolute URL of the named route. When params
// carries a _locale, the locale variant of a canonical route is preferred.
// Parameters not consumed by the path and not prefixed with "_" become the
// query string.
func (s *Snapshot) GenerateAbsoluteURL(name string, params map[string]any) (string, error) {
	route, err := s.lookup(name, params)
	if err != nil {
		return "", err
	}

	used := make(map[string]struct{})
	var genErr error
	path := placeholderPattern.ReplaceAllStringFunc(route.Path, func(m string) string {
		if genErr != nil {
			return m
		}
		key := m[1 : len(m)-1]
		used[key] = struct{}{}

		v, ok := params[key]
		if !ok || v == nil {
			v, ok = route.Defaults[key]
		}
		if !ok || v == nil {
			genErr = fmt.Errorf("%w: %q for route %q", ErrMissingParameter, key, route.Name)
			return m
		}
		value, err := cast.ToStringE(v)
		if err != nil {
			genErr = fmt.Errorf("%w: %q for route %q: %v", ErrInvalidParameter, key, route.Name, err)
			return m
		}
		if value == "" {
			genErr = fmt.Errorf("%w: %q for route %q is empty", ErrMissingParameter, key, route.Name)
			return m
		}
		return escapeSegments(value)
	})
	if genErr != nil {
		return "", genErr
	}

	query := url.Values{}
	for k, v := range params {
		if _, ok := used[k]; ok || strings.HasPrefix(k, "_") || v == nil {
			continue
		}
		if d, ok := route.Defaults[k]; ok && reflect.DeepEqual(d, v) {
			continue
		}
		value, err := cast.ToStringE(v)
		if err != nil {
			return "", fmt.Errorf("%w: %q for route %q: %v", ErrInvalidParameter, k, route.Name, err)
		}
		query.Set(k, value)
	}

	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	loc := s.baseURL + path
	if len(query) > 0 {
		loc += "?" + query.Encode()
	}
	return loc, nil
}

func (s *Snapshot) lookup(name string, params map[string]any) (Route, error) {
	routes := s.routes
	if locale, ok := params[DefaultLocale]; ok && locale != nil {
		if l, err := cast.ToStringE(locale); err == nil {
			if route, ok := routes.Localized(name, l); ok {
				return route, nil
			}
		}
	}
	if route, ok := routes.Get(name); ok {
		return route, nil
	}
	return Route{}, fmt.Errorf("%w: %q", ErrRouteNotFound, name)
}

func escapeSegments(s string) string {
	parts := strings.Split(s, "/")
	for i, p := range parts {
		parts[i] = url.PathEscape(p)
	}
	return strings.Join(parts, "/")
}
