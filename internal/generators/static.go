package generators

import (
	"context"

	"github.com/romangod6/route-sitemap/internal/models"
	"github.com/romangod6/route-sitemap/internal/sitemap"
)

// NewStatic exposes one operation per configured payload list.
func NewStatic(lists map[string][]map[string]any) sitemap.Operations {
	ops := make(sitemap.Operations, len(lists))
	for name, list := range lists {
		payloads := make([]models.Payload, 0, len(list))
		for _, p := range list {
			payloads = append(payloads, models.Payload(p).Clone())
		}
		ops[name] = func(context.Context, string) ([]models.Payload, error) {
			out := make([]models.Payload, len(payloads))
			for i, p := range payloads {
				out[i] = p.Clone()
			}
			return out, nil
		}
	}
	return ops
}
