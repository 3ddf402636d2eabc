package storage

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/romangod6/route-sitemap/internal/models"
)

// Store holds the records dynamic sitemap generators enumerate.
type Store interface {
	Initialize() error
	Close() error

	// Category operations
	CreateCategory(ctx context.Context, category *models.Category) error
	GetCategory(ctx context.Context, id uuid.UUID) (*models.Category, error)
	ListCategories(ctx context.Context) ([]*models.Category, error)

	// Article operations
	CreateArticle(ctx context.Context, article *models.Article) error
	GetArticle(ctx context.Context, id uuid.UUID) (*models.Article, error)
	ListArticles(ctx context.Context, limit, offset int) ([]*models.Article, error)
	GetArticlesByCategory(ctx context.Context, categoryID uuid.UUID, limit, offset int) ([]*models.Article, error)
}

// Open connects to the store selected by driver ("postgres" or "sqlite3").
func Open(driver, dsn string) (Store, error) {
	switch driver {
	case "postgres":
		return NewPostgresStore(dsn)
	case "sqlite3", "sqlite":
		return NewSQLiteStore(dsn)
	default:
		return nil, fmt.Errorf("unsupported database driver %q", driver)
	}
}
