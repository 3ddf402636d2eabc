package routing

import "github.com/spf13/cast"

// Reserved default keys read by the sitemap builder.
const (
	DefaultSitemap        = "_sitemap"
	DefaultCanonicalRoute = "_canonical_route"
	DefaultLocale         = "_locale"
)

// Route is a named, parameterized path with declared default values.
type Route struct {
	Name     string
	Path     string
	Defaults map[string]any
}

// HasDefault reports whether key is declared, even with a nil value.
func (r Route) HasDefault(key string) bool {
	_, ok := r.Defaults[key]
	return ok
}

// Default returns the declared value for key; nil when absent.
func (r Route) Default(key string) any {
	return r.Defaults[key]
}

// StringDefault returns the default for key as a string. The second result is
// false when the key is absent, nil, or not representable as a string.
func (r Route) StringDefault(key string) (string, bool) {
	v, ok := r.Defaults[key]
	if !ok || v == nil {
		return "", false
	}
	s, err := cast.ToStringE(v)
	if err != nil {
		return "", false
	}
	return s, true
}

// Collection is an ordered set of routes keyed by name.
type Collection struct {
	routes []Route
	index  map[string]int
}

func NewCollection(routes ...Route) *Collection {
	c := &Collection{index: make(map[string]int)}
	for _, r := range routes {
		c.Add(r)
	}
	return c
}

// Add registers r. Re-adding an existing name moves the route to the end.
func (c *Collection) Add(r Route) {
	if i, ok := c.index[r.Name]; ok {
		c.routes = append(c.routes[:i], c.routes[i+1:]...)
		for j := i; j < len(c.routes); j++ {
			c.index[c.routes[j].Name] = j
		}
	}
	c.index[r.Name] = len(c.routes)
	c.routes = append(c.routes, r)
}

func (c *Collection) Get(name string) (Route, bool) {
	i, ok := c.index[name]
	if !ok {
		return Route{}, false
	}
	return c.routes[i], true
}

// Routes returns the routes in registration order.
func (c *Collection) Routes() []Route {
	out := make([]Route, len(c.routes))
	copy(out, c.routes)
	return out
}

func (c *Collection) Len() int {
	return len(c.routes)
}

// Localized finds the route declaring canonical as its canonical route and
// locale as its locale.
func (c *Collection) Localized(canonical, locale string) (Route, bool) {
	for _, r := range c.routes {
		cr, ok := r.StringDefault(DefaultCanonicalRoute)
		if !ok || cr != canonical {
			continue
		}
		if l, ok := r.StringDefault(DefaultLocale); ok && l == locale {
			return r, true
		}
	}
	return Route{}, false
}
