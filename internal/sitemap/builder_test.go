package sitemap

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"github.com/romangod6/route-sitemap/internal/models"
	"github.com/romangod6/route-sitemap/internal/routing"
	"github.com/romangod6/route-sitemap/internal/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func route(name, path string, defaults map[string]any) routing.Route {
	return routing.Route{Name: name, Path: path, Defaults: defaults}
}

// byLocale stubs URL generation on the _locale parameter, like a localized router.
func byLocale(urls map[string]string) URLGeneratorFunc {
	return func(name string, params map[string]any) (string, error) {
		locale, _ := params[routing.DefaultLocale].(string)
		return urls[locale], nil
	}
}

func priority(p float64) *float64 { return &p }

func TestSimpleSitemap(t *testing.T) {
	registry := routing.NewCollection(
		route("index", "/", map[string]any{"_sitemap": 1.0}),
		route("home", "/home", map[string]any{"_sitemap": true}),
		route("other", "/other", nil),
	)
	var calls []string
	urls := URLGeneratorFunc(func(name string, params map[string]any) (string, error) {
		calls = append(calls, name)
		assert.Empty(t, params)
		return map[string]string{"index": "/", "home": "/home", "other": "/other"}[name], nil
	})

	items, err := NewBuilder(registry, urls).BuildSitemapItems(context.Background())
	require.NoError(t, err)

	index := models.NewSitemapItem("/")
	index.SetPriority(1.0)
	expected := []*models.SitemapItem{index, models.NewSitemapItem("/home")}

	assert.Equal(t, expected, items)
	assert.Equal(t, []string{"index", "home"}, calls)
}

func TestNumericSitemapValues(t *testing.T) {
	registry := routing.NewCollection(
		route("int", "/int", map[string]any{"_sitemap": 1}),
		route("float", "/float", map[string]any{"_sitemap": 0.3}),
		route("out-of-range", "/oor", map[string]any{"_sitemap": 7}),
	)
	urls := URLGeneratorFunc(func(name string, _ map[string]any) (string, error) { return "/" + name, nil })

	items, err := NewBuilder(registry, urls).BuildSitemapItems(context.Background())
	require.NoError(t, err)
	require.Len(t, items, 3)
	assert.Equal(t, priority(1), items[0].Priority)
	assert.Equal(t, priority(0.3), items[1].Priority)
	assert.Equal(t, priority(7), items[2].Priority)
	for _, item := range items {
		assert.Empty(t, item.ChangeFrequency)
		assert.Nil(t, item.ModificationDate)
		assert.Empty(t, item.Alternates)
	}
}

func TestPermissiveSitemapValues(t *testing.T) {
	registry := routing.NewCollection(
		route("bool", "/bool", map[string]any{"_sitemap": true}),
		route("string", "/string", map[string]any{"_sitemap": "yes"}),
		route("empty", "/empty", map[string]any{"_sitemap": map[string]any{}}),
		route("null", "/null", map[string]any{"_sitemap": nil}),
		route("list", "/list", map[string]any{"_sitemap": []any{1, 2}}),
	)
	urls := URLGeneratorFunc(func(name string, _ map[string]any) (string, error) { return "/" + name, nil })

	items, err := NewBuilder(registry, urls).BuildSitemapItems(context.Background())
	require.NoError(t, err)

	expected := []*models.SitemapItem{
		models.NewSitemapItem("/bool"),
		models.NewSitemapItem("/string"),
		models.NewSitemapItem("/empty"),
		models.NewSitemapItem("/list"),
	}
	assert.Equal(t, expected, items)
}

func TestLocaleSitemap(t *testing.T) {
	registry := routing.NewCollection(
		route("about-us.pl", "/pl/o-nas", map[string]any{"_locale": "pl", "_canonical_route": "about-us", "_sitemap": true}),
		route("about-us.en", "/en/about-us", map[string]any{"_locale": "en", "_canonical_route": "about-us", "_sitemap": true}),
	)
	urls := byLocale(map[string]string{"pl": "/pl/o-nas", "en": "/en/about-us"})

	items, err := NewBuilder(registry, urls).BuildSitemapItems(context.Background())
	require.NoError(t, err)

	alternates := []models.SitemapItemAlternate{
		{Href: "/pl/o-nas", HrefLang: "pl"},
		{Href: "/en/about-us", HrefLang: "en"},
	}
	pl := models.NewSitemapItem("/pl/o-nas")
	pl.Alternates = alternates
	en := models.NewSitemapItem("/en/about-us")
	en.Alternates = alternates

	assert.Equal(t, []*models.SitemapItem{pl, en}, items)
}

func TestLocaleSitemapDeclarationOrder(t *testing.T) {
	registry := routing.NewCollection(
		route("about-us.en", "/en/about-us", map[string]any{"_canonical_route": "about-us", "_locale": "en", "_sitemap": true}),
		route("about-us.pl", "/pl/o-nas", map[string]any{"_sitemap": true, "_locale": "pl", "_canonical_route": "about-us"}),
	)
	urls := byLocale(map[string]string{"pl": "/pl/o-nas", "en": "/en/about-us"})

	items, err := NewBuilder(registry, urls).BuildSitemapItems(context.Background())
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, "/en/about-us", items[0].Location)
	assert.Equal(t, "/pl/o-nas", items[1].Location)
	assert.Len(t, items[0].Alternates, 2)
	assert.Equal(t, items[0].Alternates, items[1].Alternates)
}

func TestLocaleSitemapSingleVariantKeepsSelfAlternate(t *testing.T) {
	registry := routing.NewCollection(
		route("contact.de", "/de/kontakt", map[string]any{"_locale": "de", "_canonical_route": "contact", "_sitemap": 0.4}),
	)
	urls := byLocale(map[string]string{"de": "/de/kontakt"})

	items, err := NewBuilder(registry, urls).BuildSitemapItems(context.Background())
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, priority(0.4), items[0].Priority)
	assert.Equal(t, []models.SitemapItemAlternate{{Href: "/de/kontakt", HrefLang: "de"}}, items[0].Alternates)
}

func TestLocaleSiblingWithoutSitemapStillAlternate(t *testing.T) {
	registry := routing.NewCollection(
		route("faq.en", "/en/faq", map[string]any{"_locale": "en", "_canonical_route": "faq", "_sitemap": true}),
		route("faq.fr", "/fr/faq", map[string]any{"_locale": "fr", "_canonical_route": "faq"}),
		route("help", "/help", map[string]any{"_canonical_route": "faq"}),
	)
	urls := byLocale(map[string]string{"en": "/en/faq", "fr": "/fr/faq"})

	items, err := NewBuilder(registry, urls).BuildSitemapItems(context.Background())
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, []models.SitemapItemAlternate{
		{Href: "/en/faq", HrefLang: "en"},
		{Href: "/fr/faq", HrefLang: "fr"},
	}, items[0].Alternates)
}

func TestGeneratedSitemap(t *testing.T) {
	registry := routing.NewCollection(
		route("name", "/name/{name}", map[string]any{"_sitemap": map[string]any{
			"generator":         "people::names",
			"priority":          0.5,
			"change_frequency":  "Weekly",
			"last_modification": "2020-01-02",
		}}),
	)
	generators := NewGenerators()
	var routeSeen string
	generators.Register("people", Operations{
		"names": func(_ context.Context, route string) ([]models.Payload, error) {
			routeSeen = route
			return []models.Payload{{"name": "Susan"}, {"name": "Matt"}}, nil
		},
	})
	urls := URLGeneratorFunc(func(name string, params map[string]any) (string, error) {
		assert.Equal(t, "name", name)
		return "/name/" + params["name"].(string), nil
	})

	items, err := NewBuilder(registry, urls, WithGenerators(generators)).BuildSitemapItems(context.Background())
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, "name", routeSeen)

	assert.Equal(t, "/name/Susan", items[0].Location)
	assert.Equal(t, models.Payload{"name": "Susan"}, items[0].Payload)
	assert.Equal(t, "/name/Matt", items[1].Location)
	assert.Equal(t, models.Payload{"name": "Matt"}, items[1].Payload)

	lastmod := time.Date(2020, 1, 2, 0, 0, 0, 0, time.UTC)
	for _, item := range items {
		assert.Equal(t, priority(0.5), item.Priority)
		assert.Equal(t, models.ChangeWeekly, item.ChangeFrequency)
		require.NotNil(t, item.ModificationDate)
		assert.True(t, lastmod.Equal(*item.ModificationDate))
		assert.Empty(t, item.Alternates)
	}
}

func TestGeneratedSitemapWithoutSharedValues(t *testing.T) {
	registry := routing.NewCollection(
		route("name", "/name/{name}", map[string]any{"_sitemap": map[string]any{"generator": "people::names"}}),
	)
	generators := NewGenerators()
	generators.Register("people", Operations{
		"names": func(context.Context, string) ([]models.Payload, error) {
			return []models.Payload{{"name": "Susan"}, {"name": "Matt"}}, nil
		},
	})
	urls := URLGeneratorFunc(func(_ string, params map[string]any) (string, error) {
		return "/name/" + params["name"].(string), nil
	})

	items, err := NewBuilder(registry, urls, WithGenerators(generators)).BuildSitemapItems(context.Background())
	require.NoError(t, err)

	susan := models.NewSitemapItem("/name/Susan")
	susan.Payload = models.Payload{"name": "Susan"}
	matt := models.NewSitemapItem("/name/Matt")
	matt.Payload = models.Payload{"name": "Matt"}
	assert.Equal(t, []*models.SitemapItem{susan, matt}, items)
}

func TestGeneratedLocaleSitemapUsesItemPayload(t *testing.T) {
	registry := routing.NewCollection(
		route("post.en", "/en/post/{slug}", map[string]any{"_locale": "en", "_canonical_route": "post", "_sitemap": map[string]any{"generator": "posts::all"}}),
		route("post.de", "/de/beitrag/{slug}", map[string]any{"_locale": "de", "_canonical_route": "post", "_sitemap": map[string]any{"generator": "posts::all"}}),
	)
	generators := NewGenerators()
	generators.Register("posts", Operations{
		"all": func(context.Context, string) ([]models.Payload, error) {
			return []models.Payload{{"slug": "a"}, {"slug": "b"}}, nil
		},
	})
	urls := URLGeneratorFunc(func(name string, params map[string]any) (string, error) {
		return "/" + params["_locale"].(string) + "/" + params["slug"].(string), nil
	})

	items, err := NewBuilder(registry, urls, WithGenerators(generators)).BuildSitemapItems(context.Background())
	require.NoError(t, err)
	require.Len(t, items, 4)

	assert.Equal(t, "/en/a", items[0].Location)
	assert.Equal(t, []models.SitemapItemAlternate{{Href: "/en/a", HrefLang: "en"}, {Href: "/de/a", HrefLang: "de"}}, items[0].Alternates)
	assert.Equal(t, "/en/b", items[1].Location)
	assert.Equal(t, []models.SitemapItemAlternate{{Href: "/en/b", HrefLang: "en"}, {Href: "/de/b", HrefLang: "de"}}, items[1].Alternates)
	assert.Equal(t, "/de/a", items[2].Location)
	assert.Equal(t, items[0].Alternates, items[2].Alternates)
	for _, item := range items {
		assert.NotContains(t, item.Payload, "_locale")
	}
}

type skipRecorder struct {
	skips    []string
	outcomes []string
	items    int
}

func (r *skipRecorder) ObserveBuildDuration(time.Duration) {}
func (r *skipRecorder) IncBuildOutcome(o string)           { r.outcomes = append(r.outcomes, o) }
func (r *skipRecorder) SetItemCount(n int)                 { r.items = n }
func (r *skipRecorder) IncGeneratorSkip(reason string)     { r.skips = append(r.skips, reason) }

func TestUnresolvableGeneratorsAreSkipped(t *testing.T) {
	generators := NewGenerators()
	generators.Register("people", Operations{
		"fails": func(context.Context, string) ([]models.Payload, error) { return nil, errors.New("db down") },
		"empty": func(context.Context, string) ([]models.Payload, error) { return []models.Payload{}, nil },
		"nil":   nil,
	})

	tests := []struct {
		name   string
		ref    any
		reason string
	}{
		{"unknown capability", "missing::names", "not_found"},
		{"unknown operation", "people::absent", "operation_not_found"},
		{"nil operation", "people::nil", "operation_not_found"},
		{"malformed reference", "people", "not_found"},
		{"non-string reference", 42, "invalid_reference"},
		{"operation error", "people::fails", "error"},
		{"empty result", "people::empty", "empty"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			registry := routing.NewCollection(
				route("dynamic", "/d/{id}", map[string]any{"_sitemap": map[string]any{"generator": tt.ref}}),
				route("static", "/s", map[string]any{"_sitemap": true}),
			)
			urls := URLGeneratorFunc(func(name string, _ map[string]any) (string, error) { return "/" + name, nil })
			rec := &skipRecorder{}
			var logs bytes.Buffer
			logger := utils.NewWriterLogger(&logs)
			logger.SetDebug(true)

			items, err := NewBuilder(registry, urls,
				WithGenerators(generators), WithRecorder(rec), WithLogger(logger),
			).BuildSitemapItems(context.Background())

			require.NoError(t, err)
			require.Len(t, items, 1)
			assert.Equal(t, "/static", items[0].Location)
			assert.Equal(t, []string{tt.reason}, rec.skips)
			assert.Equal(t, 1, rec.items)
			assert.Contains(t, logs.String(), "Skipping dynamic route")
		})
	}
}

func TestNoGeneratorsRegistered(t *testing.T) {
	registry := routing.NewCollection(
		route("dynamic", "/d/{id}", map[string]any{"_sitemap": map[string]any{"generator": "x::y"}}),
	)
	urls := URLGeneratorFunc(func(string, map[string]any) (string, error) {
		t.Fatal("url generation not expected")
		return "", nil
	})

	items, err := NewBuilder(registry, urls, WithGenerators(nil)).BuildSitemapItems(context.Background())
	require.NoError(t, err)
	assert.Empty(t, items)
}

func TestInvalidModificationDateFailsBuild(t *testing.T) {
	registry := routing.NewCollection(
		route("ok", "/ok", map[string]any{"_sitemap": true}),
		route("news", "/news", map[string]any{"_sitemap": map[string]any{"last_modification": "not a date"}}),
	)
	urls := URLGeneratorFunc(func(name string, _ map[string]any) (string, error) { return "/" + name, nil })
	rec := &skipRecorder{}

	items, err := NewBuilder(registry, urls, WithRecorder(rec)).BuildSitemapItems(context.Background())
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrInvalidModificationDate))
	assert.Nil(t, items)
	assert.Equal(t, []string{"failed"}, rec.outcomes)
}

func TestInvalidChangeFrequencyIsIgnored(t *testing.T) {
	registry := routing.NewCollection(
		route("news", "/news", map[string]any{"_sitemap": map[string]any{
			"change_frequency": "fortnightly",
			"priority":         "0.7",
		}}),
	)
	urls := URLGeneratorFunc(func(name string, _ map[string]any) (string, error) { return "/" + name, nil })

	items, err := NewBuilder(registry, urls).BuildSitemapItems(context.Background())
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Empty(t, items[0].ChangeFrequency)
	assert.Equal(t, priority(0.7), items[0].Priority)
}

func TestURLGenerationFailureAbortsBuild(t *testing.T) {
	collection := routing.NewCollection(
		route("index", "/", map[string]any{"_sitemap": 1.0}),
		route("article", "/articles/{slug}", map[string]any{"_sitemap": true}),
	)
	router, err := routing.NewRouter("https://example.com", collection)
	require.NoError(t, err)

	items, err := NewBuilder(router, router).BuildSitemapItems(context.Background())
	require.Error(t, err)
	assert.True(t, errors.Is(err, routing.ErrMissingParameter))
	assert.Nil(t, items)
}

func TestBuildIsIdempotent(t *testing.T) {
	collection := routing.NewCollection(
		route("index", "/", map[string]any{"_sitemap": 1.0}),
		route("about-us.pl", "/pl/o-nas", map[string]any{"_locale": "pl", "_canonical_route": "about-us", "_sitemap": true}),
		route("about-us.en", "/en/about-us", map[string]any{"_locale": "en", "_canonical_route": "about-us", "_sitemap": true}),
		route("name", "/name/{name}", map[string]any{"_sitemap": map[string]any{
			"generator":         "people::names",
			"change_frequency":  "daily",
			"last_modification": "2021-06-01T10:00:00Z",
		}}),
	)
	router, err := routing.NewRouter("https://example.com", collection)
	require.NoError(t, err)

	generators := NewGenerators()
	generators.Register("people", Operations{
		"names": func(context.Context, string) ([]models.Payload, error) {
			return []models.Payload{{"name": "Susan"}, {"name": "Matt"}}, nil
		},
	})
	builder := NewBuilder(router, router, WithGenerators(generators))

	first, err := builder.BuildSitemapItems(context.Background())
	require.NoError(t, err)
	second, err := builder.BuildSitemapItems(context.Background())
	require.NoError(t, err)
	assert.Equal(t, first, second)

	locations := make([]string, 0, len(first))
	for _, item := range first {
		locations = append(locations, item.Location)
	}
	assert.Equal(t, []string{
		"https://example.com/",
		"https://example.com/pl/o-nas",
		"https://example.com/en/about-us",
		"https://example.com/name/Susan",
		"https://example.com/name/Matt",
	}, locations)
}

func TestDuplicateURLsAreKept(t *testing.T) {
	registry := routing.NewCollection(
		route("home", "/", map[string]any{"_sitemap": true}),
		route("index", "/", map[string]any{"_sitemap": true}),
	)
	urls := URLGeneratorFunc(func(string, map[string]any) (string, error) { return "/", nil })

	items, err := NewBuilder(registry, urls).BuildSitemapItems(context.Background())
	require.NoError(t, err)
	assert.Len(t, items, 2)
}

func TestBuildSeesRegistryChanges(t *testing.T) {
	router, err := routing.NewRouter("https://example.com", routing.NewCollection(
		route("index", "/", map[string]any{"_sitemap": true}),
	))
	require.NoError(t, err)
	builder := NewBuilder(router, router)

	items, err := builder.BuildSitemapItems(context.Background())
	require.NoError(t, err)
	assert.Len(t, items, 1)

	router.Replace(routing.NewCollection(
		route("index", "/", map[string]any{"_sitemap": true}),
		route("blog", "/blog", map[string]any{"_sitemap": 0.6}),
	))
	items, err = builder.BuildSitemapItems(context.Background())
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, "https://example.com/blog", items[1].Location)
}

func TestReplaceDuringBuildKeepsSnapshot(t *testing.T) {
	router, err := routing.NewRouter("https://example.com", routing.NewCollection(
		route("person", "/people/{name}", map[string]any{"_sitemap": map[string]any{"generator": "people::list"}}),
		route("about.pl", "/pl/o-nas", map[string]any{"_canonical_route": "about", "_locale": "pl", "_sitemap": true}),
		route("about.en", "/en/about", map[string]any{"_canonical_route": "about", "_locale": "en", "_sitemap": true}),
	))
	require.NoError(t, err)

	generators := NewGenerators()
	generators.Register("people", Operations{
		"list": func(context.Context, string) ([]models.Payload, error) {
			router.Replace(routing.NewCollection(
				route("renamed", "/renamed", map[string]any{"_sitemap": true}),
			))
			return []models.Payload{{"name": "susan"}}, nil
		},
	})
	builder := NewBuilder(router, router, WithGenerators(generators))

	items, err := builder.BuildSitemapItems(context.Background())
	require.NoError(t, err)
	require.Len(t, items, 3)
	assert.Equal(t, "https://example.com/people/susan", items[0].Location)
	assert.Equal(t, "https://example.com/pl/o-nas", items[1].Location)
	assert.Equal(t, []models.SitemapItemAlternate{
		{Href: "https://example.com/pl/o-nas", HrefLang: "pl"},
		{Href: "https://example.com/en/about", HrefLang: "en"},
	}, items[1].Alternates)

	items, err = builder.BuildSitemapItems(context.Background())
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "https://example.com/renamed", items[0].Location)
}

func TestEmptyLocaleIsPlainRoute(t *testing.T) {
	registry := routing.NewCollection(
		route("about.default", "/about", map[string]any{"_canonical_route": "about", "_locale": "", "_sitemap": true}),
	)
	var calls []string
	urls := URLGeneratorFunc(func(name string, params map[string]any) (string, error) {
		calls = append(calls, name)
		assert.NotContains(t, params, routing.DefaultLocale)
		return "/" + name, nil
	})

	items, err := NewBuilder(registry, urls).BuildSitemapItems(context.Background())
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "/about.default", items[0].Location)
	assert.Empty(t, items[0].Alternates)
	assert.Equal(t, []string{"about.default"}, calls)
}
