package generators

import (
	"context"
	"fmt"

	"github.com/romangod6/route-sitemap/internal/models"
	"github.com/romangod6/route-sitemap/internal/sitemap"
	"github.com/romangod6/route-sitemap/internal/storage"
)

const DefaultBatchSize = 500

// NewArticles exposes article records:
//
//	slugs        {slug}
//	ids          {id}
//	by_category  {category, slug}
func NewArticles(store storage.Store, batchSize int) sitemap.Operations {
	if batchSize <= 0 {
		batchSize = DefaultBatchSize
	}
	list := func(ctx context.Context, fn func(*models.Article) models.Payload) ([]models.Payload, error) {
		var payloads []models.Payload
		for offset := 0; ; offset += batchSize {
			articles, err := store.ListArticles(ctx, batchSize, offset)
			if err != nil {
				return nil, fmt.Errorf("failed to list articles: %w", err)
			}
			for _, a := range articles {
				payloads = append(payloads, fn(a))
			}
			if len(articles) < batchSize {
				return payloads, nil
			}
		}
	}

	return sitemap.Operations{
		"slugs": func(ctx context.Context, _ string) ([]models.Payload, error) {
			return list(ctx, (*models.Article).Payload)
		},
		"ids": func(ctx context.Context, _ string) ([]models.Payload, error) {
			return list(ctx, func(a *models.Article) models.Payload {
				return models.Payload{"id": a.ID.String()}
			})
		},
		"by_category": func(ctx context.Context, _ string) ([]models.Payload, error) {
			categories, err := store.ListCategories(ctx)
			if err != nil {
				return nil, fmt.Errorf("failed to list categories: %w", err)
			}

			var payloads []models.Payload
			for _, c := range categories {
				for offset := 0; ; offset += batchSize {
					articles, err := store.GetArticlesByCategory(ctx, c.ID, batchSize, offset)
					if err != nil {
						return nil, fmt.Errorf("failed to list articles of %s: %w", c.Slug, err)
					}
					for _, a := range articles {
						payloads = append(payloads, models.Payload{"category": c.Slug, "slug": a.Slug})
					}
					if len(articles) < batchSize {
						break
					}
				}
			}
			return payloads, nil
		},
	}
}

// NewCategories exposes category records:
//
//	slugs  {category}
func NewCategories(store storage.Store) sitemap.Operations {
	return sitemap.Operations{
		"slugs": func(ctx context.Context, _ string) ([]models.Payload, error) {
			categories, err := store.ListCategories(ctx)
			if err != nil {
				return nil, fmt.Errorf("failed to list categories: %w", err)
			}
			payloads := make([]models.Payload, 0, len(categories))
			for _, c := range categories {
				payloads = append(payloads, c.Payload())
			}
			return payloads, nil
		},
	}
}
