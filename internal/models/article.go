package models

import (
	"time"

	"github.com/google/uuid"
)

// NewArticle creates a new article with generated UUID and timestamps
func NewArticle() *Article {
	now := time.Now()
	return &Article{
		ID:        uuid.New(),
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// Payload returns the route parameters that address this article.
func (a *Article) Payload() Payload {
	return Payload{
		"slug": a.Slug,
	}
}
