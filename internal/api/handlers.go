package api

import (
	"context"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/romangod6/route-sitemap/internal/models"
	"github.com/romangod6/route-sitemap/internal/render"
	"github.com/romangod6/route-sitemap/internal/storage"
	"github.com/romangod6/route-sitemap/internal/utils"
)

// SitemapBuilder produces the current sitemap items.
type SitemapBuilder interface {
	BuildSitemapItems(ctx context.Context) ([]*models.SitemapItem, error)
}

type Handler struct {
	store   storage.Store
	builder SitemapBuilder
	logger  *utils.Logger
}

type ErrorResponse struct {
	Error string `json:"error"`
}

type PaginationResponse struct {
	Data       interface{} `json:"data"`
	Page       int         `json:"page"`
	Limit      int         `json:"limit"`
	TotalCount int         `json:"total_count,omitempty"`
}

type CreateCategoryRequest struct {
	Name        string     `json:"name" binding:"required"`
	Slug        string     `json:"slug" binding:"required"`
	Description string     `json:"description"`
	ParentID    *uuid.UUID `json:"parent_id"`
}

type CreateArticleRequest struct {
	CategoryID uuid.UUID `json:"category_id" binding:"required"`
	Name       string    `json:"name" binding:"required"`
	Slug       string    `json:"slug" binding:"required"`
	Tags       []string  `json:"tags"`
	Author     string    `json:"author"`
}

func NewHandler(store storage.Store, builder SitemapBuilder, logger *utils.Logger) *Handler {
	return &Handler{store: store, builder: builder, logger: logger}
}

// Sitemap handlers
func (h *Handler) SitemapXML(c *gin.Context) {
	items, err := h.builder.BuildSitemapItems(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "Failed to build sitemap"})
		return
	}

	body, err := render.Bytes(items)
	if err != nil {
		h.logger.LogError("Failed to render sitemap: %v", err)
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "Failed to render sitemap"})
		return
	}

	c.Data(http.StatusOK, render.ContentType, body)
}

func (h *Handler) SitemapItems(c *gin.Context) {
	items, err := h.builder.BuildSitemapItems(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "Failed to build sitemap"})
		return
	}

	c.JSON(http.StatusOK, items)
}

// Article handlers
func (h *Handler) ListArticles(c *gin.Context) {
	page, limit := getPaginationParams(c)
	offset := (page - 1) * limit

	articles, err := h.store.ListArticles(c.Request.Context(), limit, offset)
	if err != nil {
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "Failed to fetch articles"})
		return
	}

	if articles == nil {
		articles = []*models.Article{}
	}

	c.JSON(http.StatusOK, PaginationResponse{
		Data:  articles,
		Page:  page,
		Limit: limit,
	})
}

func (h *Handler) GetArticle(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid article ID"})
		return
	}

	article, err := h.store.GetArticle(c.Request.Context(), id)
	if err != nil {
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "Failed to fetch article"})
		return
	}

	if article == nil {
		c.JSON(http.StatusNotFound, ErrorResponse{Error: "Article not found"})
		return
	}

	c.JSON(http.StatusOK, article)
}

func (h *Handler) CreateArticle(c *gin.Context) {
	var req CreateArticleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid article data"})
		return
	}

	article := models.NewArticle()
	article.CategoryID = req.CategoryID
	article.Name = req.Name
	article.Slug = req.Slug
	article.Tags = req.Tags
	article.Author = req.Author
	if article.Tags == nil {
		article.Tags = []string{}
	}

	if err := h.store.CreateArticle(c.Request.Context(), article); err != nil {
		h.logger.LogError("Failed to create article %s: %v", req.Slug, err)
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "Failed to create article"})
		return
	}

	c.JSON(http.StatusCreated, article)
}

// Category handlers
func (h *Handler) ListCategories(c *gin.Context) {
	categories, err := h.store.ListCategories(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "Failed to fetch categories"})
		return
	}

	if categories == nil {
		categories = []*models.Category{}
	}

	c.JSON(http.StatusOK, categories)
}

func (h *Handler) GetCategory(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid category ID"})
		return
	}

	category, err := h.store.GetCategory(c.Request.Context(), id)
	if err != nil {
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "Failed to fetch category"})
		return
	}

	if category == nil {
		c.JSON(http.StatusNotFound, ErrorResponse{Error: "Category not found"})
		return
	}

	c.JSON(http.StatusOK, category)
}

func (h *Handler) CreateCategory(c *gin.Context) {
	var req CreateCategoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid category data"})
		return
	}

	category := models.NewCategory()
	category.Name = req.Name
	category.Slug = req.Slug
	category.Description = req.Description
	category.ParentID = req.ParentID

	if err := h.store.CreateCategory(c.Request.Context(), category); err != nil {
		h.logger.LogError("Failed to create category %s: %v", req.Slug, err)
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "Failed to create category"})
		return
	}

	c.JSON(http.StatusCreated, category)
}

func (h *Handler) GetArticlesByCategory(c *gin.Context) {
	categoryID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid category ID"})
		return
	}

	page, limit := getPaginationParams(c)
	offset := (page - 1) * limit

	articles, err := h.store.GetArticlesByCategory(c.Request.Context(), categoryID, limit, offset)
	if err != nil {
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "Failed to fetch articles"})
		return
	}

	if articles == nil {
		articles = []*models.Article{}
	}

	c.JSON(http.StatusOK, PaginationResponse{
		Data:  articles,
		Page:  page,
		Limit: limit,
	})
}

// Utility functions
func getPaginationParams(c *gin.Context) (page, limit int) {
	page, _ = strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ = strconv.Atoi(c.DefaultQuery("limit", "10"))

	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 10
	}

	return page, limit
}
