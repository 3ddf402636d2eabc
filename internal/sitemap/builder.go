// Package sitemap derives sitemap items from the route registry.
//
// A build scans the registry for routes declaring a _sitemap default, expands
// each into one item or, for generator-backed routes, one item per payload,
// and cross-links the locale variants of canonical routes. Builds are
// synchronous and keep no state between calls.
package sitemap

import (
	"context"
	"time"

	"github.com/romangod6/route-sitemap/internal/metrics"
	"github.com/romangod6/route-sitemap/internal/models"
	"github.com/romangod6/route-sitemap/internal/routing"
	"github.com/romangod6/route-sitemap/internal/utils"
)

// RouteRegistry is the read-only view of the declared routes.
type RouteRegistry interface {
	Routes() []routing.Route
}

// URLGenerator produces absolute URLs for a route and its parameters.
type URLGenerator interface {
	GenerateAbsoluteURL(name string, params map[string]any) (string, error)
}

// URLGeneratorFunc adapts a function to URLGenerator.
type URLGeneratorFunc func(name string, params map[string]any) (string, error)

func (f URLGeneratorFunc) GenerateAbsoluteURL(name string, params map[string]any) (string, error) {
	return f(name, params)
}

// Snapshotter pins one registry state. When the URL generator of a Builder
// implements it, each build reads both routes and URLs from a single snapshot.
type Snapshotter interface {
	Snapshot() *routing.Snapshot
}

type Builder struct {
	registry   RouteRegistry
	urls       URLGenerator
	generators *Generators
	logger     *utils.Logger
	recorder   metrics.Recorder
}

type Option func(*Builder)

func WithGenerators(g *Generators) Option {
	return func(b *Builder) { b.generators = g }
}

func WithLogger(l *utils.Logger) Option {
	return func(b *Builder) { b.logger = l }
}

func WithRecorder(r metrics.Recorder) Option {
	return func(b *Builder) {
		if r != nil {
			b.recorder = r
		}
	}
}

func NewBuilder(registry RouteRegistry, urls URLGenerator, opts ...Option) *Builder {
	b := &Builder{
		registry:   registry,
		urls:       urls,
		generators: NewGenerators(),
		recorder:   metrics.NoopRecorder{},
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// BuildSitemapItems returns the items of the current registry state in
// registration order. URL generation failures and invalid dates abort the
// build; generator failures only drop that route's items.
func (b *Builder) BuildSitemapItems(ctx context.Context) ([]*models.SitemapItem, error) {
	start := time.Now()
	items, err := b.build(ctx)
	b.recorder.ObserveBuildDuration(time.Since(start))
	if err != nil {
		b.recorder.IncBuildOutcome(metrics.OutcomeFailed)
		b.logger.LogError("Sitemap build failed: %v", err)
		return nil, err
	}

	b.recorder.IncBuildOutcome(metrics.OutcomeSuccess)
	b.recorder.SetItemCount(len(items))
	b.logger.LogInfo("Sitemap build produced %d items in %s", len(items), time.Since(start))
	return items, nil
}

func (b *Builder) build(ctx context.Context) ([]*models.SitemapItem, error) {
	routes, urls := b.view()
	items := []*models.SitemapItem{}

	for _, rc := range scanRoutes(routes) {
		expanded, err := b.expand(ctx, urls, rc)
		if err != nil {
			return nil, err
		}

		if rc.localized() {
			for _, item := range expanded {
				alternates, err := b.alternates(urls, routes, rc.target, item.Payload)
				if err != nil {
					return nil, err
				}
				item.Alternates = alternates
			}
		}

		items = append(items, expanded...)
	}

	return items, nil
}

// view returns the routes and URL generator a single build works against.
func (b *Builder) view() ([]routing.Route, URLGenerator) {
	if s, ok := b.urls.(Snapshotter); ok {
		snap := s.Snapshot()
		return snap.Routes(), snap
	}
	return b.registry.Routes(), b.urls
}

func (b *Builder) skip(reason, format string, v ...interface{}) {
	b.recorder.IncGeneratorSkip(reason)
	b.logger.LogDebug("Skipping dynamic route: "+format, v...)
}
