package sitemap

import (
	"fmt"

	"github.com/romangod6/route-sitemap/internal/models"
	"github.com/romangod6/route-sitemap/internal/routing"
)

// alternates lists every locale variant of canonical, addressed with payload.
// The current route is part of its own list.
func (b *Builder) alternates(urls URLGenerator, routes []routing.Route, canonical string, payload models.Payload) ([]models.SitemapItemAlternate, error) {
	alternates := []models.SitemapItemAlternate{}
	for _, route := range routes {
		cr, ok := route.StringDefault(routing.DefaultCanonicalRoute)
		if !ok || cr != canonical {
			continue
		}
		locale, ok := route.StringDefault(routing.DefaultLocale)
		if !ok || locale == "" {
			continue
		}

		params := payload.Clone()
		params[routing.DefaultLocale] = locale
		href, err := urls.GenerateAbsoluteURL(canonical, params)
		if err != nil {
			return nil, fmt.Errorf("failed to generate %s alternate for route %q: %w", locale, canonical, err)
		}
		alternates = append(alternates, models.SitemapItemAlternate{Href: href, HrefLang: locale})
	}
	return alternates, nil
}
