package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"
	"github.com/romangod6/route-sitemap/internal/models"
)

type SQLiteStore struct {
	db *sql.DB
}

func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, err
	}

	if err := db.Ping(); err != nil {
		return nil, err
	}

	// One connection keeps ":memory:" databases shared across queries.
	db.SetMaxOpenConns(1)

	return &SQLiteStore{db: db}, nil
}

func (s *SQLiteStore) Initialize() error {
	queries := []string{
		`CREATE TABLE IF NOT EXISTS categories (
            id TEXT PRIMARY KEY,
            name TEXT NOT NULL,
            slug TEXT UNIQUE NOT NULL,
            description TEXT,
            parent_id TEXT,
            created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
            updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
            FOREIGN KEY(parent_id) REFERENCES categories(id)
        )`,
		`CREATE TABLE IF NOT EXISTS articles (
            id TEXT PRIMARY KEY,
            category_id TEXT,
            name TEXT NOT NULL,
            slug TEXT UNIQUE NOT NULL,
            tags TEXT,
            author TEXT,
            created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
            updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
            FOREIGN KEY(category_id) REFERENCES categories(id)
        )`,
		`CREATE INDEX IF NOT EXISTS idx_articles_category_id ON articles(category_id)`,
	}

	for _, query := range queries {
		if _, err := s.db.Exec(query); err != nil {
			return fmt.Errorf("error executing query %s: %w", query, err)
		}
	}

	return nil
}

func (s *SQLiteStore) CreateCategory(ctx context.Context, category *models.Category) error {
	query := `
        INSERT INTO categories (id, name, slug, description, parent_id, created_at, updated_at)
        VALUES (?, ?, ?, ?, ?, ?, ?)
        ON CONFLICT(id) DO UPDATE SET
            name = excluded.name,
            slug = excluded.slug,
            description = excluded.description,
            parent_id = excluded.parent_id,
            updated_at = CURRENT_TIMESTAMP
    `

	_, err := s.db.ExecContext(ctx, query,
		category.ID.String(),
		category.Name,
		category.Slug,
		category.Description,
		nilIfEmpty(category.ParentID),
		category.CreatedAt,
		category.UpdatedAt,
	)

	return err
}

func (s *SQLiteStore) CreateArticle(ctx context.Context, article *models.Article) error {
	query := `
        INSERT INTO articles (id, category_id, name, slug, tags, author, created_at, updated_at)
        VALUES (?, ?, ?, ?, ?, ?, ?, ?)
        ON CONFLICT(slug) DO UPDATE SET
            category_id = excluded.category_id,
            name = excluded.name,
            tags = excluded.tags,
            author = excluded.author,
            updated_at = CURRENT_TIMESTAMP
    `

	tagsJSON, err := json.Marshal(article.Tags)
	if err != nil {
		return err
	}

	_, err = s.db.ExecContext(ctx, query,
		article.ID.String(),
		article.CategoryID.String(),
		article.Name,
		article.Slug,
		string(tagsJSON),
		article.Author,
		article.CreatedAt,
		article.UpdatedAt,
	)

	return err
}

func (s *SQLiteStore) GetArticle(ctx context.Context, id uuid.UUID) (*models.Article, error) {
	query := `
        SELECT id, category_id, name, slug, tags, author, created_at, updated_at
        FROM articles
        WHERE id = ?
    `

	articles, err := s.queryArticles(ctx, query, id.String())
	if err != nil {
		return nil, err
	}
	if len(articles) == 0 {
		return nil, nil
	}
	return articles[0], nil
}

func (s *SQLiteStore) GetCategory(ctx context.Context, id uuid.UUID) (*models.Category, error) {
	query := `
        SELECT id, name, slug, description, parent_id, created_at, updated_at
        FROM categories
        WHERE id = ?
    `

	categories, err := s.queryCategories(ctx, query, id.String())
	if err != nil {
		return nil, err
	}
	if len(categories) == 0 {
		return nil, nil
	}
	return categories[0], nil
}

func (s *SQLiteStore) ListArticles(ctx context.Context, limit, offset int) ([]*models.Article, error) {
	query := `
        SELECT id, category_id, name, slug, tags, author, created_at, updated_at
        FROM articles
        ORDER BY created_at DESC, id
        LIMIT ? OFFSET ?
    `

	return s.queryArticles(ctx, query, limit, offset)
}

func (s *SQLiteStore) ListCategories(ctx context.Context) ([]*models.Category, error) {
	query := `
        SELECT id, name, slug, description, parent_id, created_at, updated_at
        FROM categories
        ORDER BY name
    `

	return s.queryCategories(ctx, query)
}

func (s *SQLiteStore) GetArticlesByCategory(ctx context.Context, categoryID uuid.UUID, limit, offset int) ([]*models.Article, error) {
	query := `
        SELECT id, category_id, name, slug, tags, author, created_at, updated_at
        FROM articles
        WHERE category_id = ?
        ORDER BY created_at DESC, id
        LIMIT ? OFFSET ?
    `

	return s.queryArticles(ctx, query, categoryID.String(), limit, offset)
}

func (s *SQLiteStore) queryCategories(ctx context.Context, query string, args ...interface{}) ([]*models.Category, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var categories []*models.Category
	for rows.Next() {
		var category models.Category
		var idStr string
		var description, parentIDStr sql.NullString

		err := rows.Scan(
			&idStr,
			&category.Name,
			&category.Slug,
			&description,
			&parentIDStr,
			&category.CreatedAt,
			&category.UpdatedAt,
		)

		if err != nil {
			return nil, err
		}

		category.ID, _ = uuid.Parse(idStr)
		category.Description = description.String
		if parentIDStr.Valid {
			parentID, err := uuid.Parse(parentIDStr.String)
			if err == nil {
				category.ParentID = &parentID
			}
		}

		categories = append(categories, &category)
	}

	return categories, rows.Err()
}

func (s *SQLiteStore) queryArticles(ctx context.Context, query string, args ...interface{}) ([]*models.Article, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var articles []*models.Article
	for rows.Next() {
		var article models.Article
		var idStr, categoryIDStr string
		var tagsJSON, author sql.NullString

		err := rows.Scan(
			&idStr,
			&categoryIDStr,
			&article.Name,
			&article.Slug,
			&tagsJSON,
			&author,
			&article.CreatedAt,
			&article.UpdatedAt,
		)

		if err != nil {
			return nil, err
		}

		article.ID, _ = uuid.Parse(idStr)
		article.CategoryID, _ = uuid.Parse(categoryIDStr)
		article.Author = author.String
		if tagsJSON.Valid {
			json.Unmarshal([]byte(tagsJSON.String), &article.Tags)
		}

		articles = append(articles, &article)
	}

	return articles, rows.Err()
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func nilIfEmpty(id *uuid.UUID) interface{} {
	if id == nil {
		return nil
	}
	return id.String()
}
