package sitemap

import "github.com/romangod6/route-sitemap/internal/routing"

// routeContext is one sitemap-eligible route as seen by the expander.
type routeContext struct {
	// target is the route name URLs are generated for: the canonical route
	// for locale variants, the route itself otherwise.
	target string
	config any
	locale string
}

func (rc routeContext) localized() bool {
	return rc.locale != ""
}

// scanRoutes keeps routes declaring a non-nil _sitemap default, in registry order.
func scanRoutes(routes []routing.Route) []routeContext {
	var contexts []routeContext
	for _, route := range routes {
		conf := route.Default(routing.DefaultSitemap)
		if conf == nil {
			continue
		}

		// An empty _locale names no variant, so the route is listed on its own.
		canonical, hasCanonical := route.StringDefault(routing.DefaultCanonicalRoute)
		locale, hasLocale := route.StringDefault(routing.DefaultLocale)
		if hasCanonical && hasLocale && locale != "" {
			contexts = append(contexts, routeContext{target: canonical, config: conf, locale: locale})
			continue
		}

		contexts = append(contexts, routeContext{target: route.Name, config: conf})
	}
	return contexts
}
