package sitemap

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/romangod6/route-sitemap/internal/models"
	"github.com/romangod6/route-sitemap/internal/routing"
	"github.com/spf13/cast"
)

// Recognized keys of a mapping-shaped _sitemap value.
const (
	keyPriority         = "priority"
	keyChangeFrequency  = "change_frequency"
	keyLastModification = "last_modification"
	keyGenerator        = "generator"
)

var ErrInvalidModificationDate = errors.New("invalid last_modification date")

// itemDefaults are the values shared by every item of one route.
type itemDefaults struct {
	priority         *float64
	changeFrequency  string
	modificationDate *time.Time
}

func (d itemDefaults) apply(item *models.SitemapItem) {
	if d.priority != nil {
		item.SetPriority(*d.priority)
	}
	if d.changeFrequency != "" {
		item.SetChangeFrequency(d.changeFrequency)
	}
	if d.modificationDate != nil {
		item.SetModificationDate(*d.modificationDate)
	}
}

func (b *Builder) expand(ctx context.Context, urls URLGenerator, rc routeContext) ([]*models.SitemapItem, error) {
	if conf, ok := toMapping(rc.config); ok && len(conf) > 0 {
		return b.expandMapping(ctx, urls, rc, conf)
	}

	item, err := b.newItem(urls, rc, nil)
	if err != nil {
		return nil, err
	}
	if p, ok := toNumber(rc.config); ok {
		item.SetPriority(p)
	}
	return []*models.SitemapItem{item}, nil
}

func (b *Builder) expandMapping(ctx context.Context, urls URLGenerator, rc routeContext, conf map[string]any) ([]*models.SitemapItem, error) {
	defaults, err := extractDefaults(rc, conf)
	if err != nil {
		return nil, err
	}

	ref, hasGenerator := conf[keyGenerator]
	if !hasGenerator || ref == nil {
		item, err := b.newItem(urls, rc, nil)
		if err != nil {
			return nil, err
		}
		defaults.apply(item)
		return []*models.SitemapItem{item}, nil
	}

	payloads := b.generate(ctx, rc, ref)
	items := make([]*models.SitemapItem, 0, len(payloads))
	for _, payload := range payloads {
		item, err := b.newItem(urls, rc, payload)
		if err != nil {
			return nil, err
		}
		defaults.apply(item)
		items = append(items, item)
	}
	return items, nil
}

// generate runs the referenced operation. Every failure mode yields no payloads.
func (b *Builder) generate(ctx context.Context, rc routeContext, ref any) []models.Payload {
	name, ok := ref.(string)
	if !ok {
		b.skip("invalid_reference", "route %q: generator reference %v is not a string", rc.target, ref)
		return nil
	}

	op, err := b.generators.Resolve(name)
	if err != nil {
		reason := "not_found"
		if errors.Is(err, ErrOperationNotFound) {
			reason = "operation_not_found"
		}
		b.skip(reason, "route %q: %v", rc.target, err)
		return nil
	}

	payloads, err := op(ctx, rc.target)
	if err != nil {
		b.skip("error", "route %q: generator %q failed: %v", rc.target, name, err)
		return nil
	}
	if len(payloads) == 0 {
		b.skip("empty", "route %q: generator %q returned no payloads", rc.target, name)
		return nil
	}
	return payloads
}

// newItem generates the item URL from payload merged with the route locale.
func (b *Builder) newItem(urls URLGenerator, rc routeContext, payload models.Payload) (*models.SitemapItem, error) {
	params := payload.Clone()
	if rc.localized() {
		params[routing.DefaultLocale] = rc.locale
	}

	loc, err := urls.GenerateAbsoluteURL(rc.target, params)
	if err != nil {
		return nil, fmt.Errorf("failed to generate url for route %q: %w", rc.target, err)
	}

	item := models.NewSitemapItem(loc)
	item.Payload = payload.Clone()
	return item, nil
}

func extractDefaults(rc routeContext, conf map[string]any) (itemDefaults, error) {
	var d itemDefaults

	if v := conf[keyPriority]; v != nil {
		if p, ok := toNumber(v); ok {
			d.priority = &p
		} else if s, ok := v.(string); ok {
			if p, err := strconv.ParseFloat(s, 64); err == nil {
				d.priority = &p
			}
		}
	}

	if v, ok := conf[keyChangeFrequency].(string); ok {
		d.changeFrequency = v
	}

	if v := conf[keyLastModification]; v != nil {
		t, err := cast.ToTimeE(v)
		if err != nil {
			return d, fmt.Errorf("%w: route %q: %v", ErrInvalidModificationDate, rc.target, err)
		}
		d.modificationDate = &t
	}

	return d, nil
}

func toNumber(v any) (float64, bool) {
	switch n := v.(type) {
	case int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64, float32, float64:
		return cast.ToFloat64(n), true
	}
	return 0, false
}

func toMapping(v any) (map[string]any, bool) {
	switch m := v.(type) {
	case map[string]any:
		return m, true
	case models.Payload:
		return m, true
	case map[any]any:
		out, err := cast.ToStringMapE(m)
		return out, err == nil
	}
	return nil, false
}
