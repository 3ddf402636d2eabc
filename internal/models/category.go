package models

import (
	"time"

	"github.com/google/uuid"
)

// NewCategory creates a new category with generated UUID and timestamps
func NewCategory() *Category {
	now := time.Now()
	return &Category{
		ID:        uuid.New(),
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// IsRoot returns true if the category has no parent
func (c *Category) IsRoot() bool {
	return c.ParentID == nil
}

// Payload returns the route parameters that address this category.
func (c *Category) Payload() Payload {
	return Payload{
		"category": c.Slug,
	}
}
