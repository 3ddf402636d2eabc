package api

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/romangod6/route-sitemap/internal/storage"
	"github.com/romangod6/route-sitemap/internal/utils"
)

type Server struct {
	router *gin.Engine
	port   int
	server *http.Server
}

// NewServer wires the sitemap document, the record API and, when metrics is
// non-nil, the /metrics endpoint.
func NewServer(port int, store storage.Store, builder SitemapBuilder, metrics http.Handler, logger *utils.Logger) *Server {
	router := gin.Default()

	// Setup CORS
	router.Use(cors.New(cors.Config{
		AllowOrigins:  []string{"*"},
		AllowMethods:  []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:  []string{"Origin", "Content-Type", "Accept"},
		ExposeHeaders: []string{"Content-Length"},
		MaxAge:        12 * time.Hour,
	}))

	handler := NewHandler(store, builder, logger)

	router.GET("/sitemap.xml", handler.SitemapXML)
	if metrics != nil {
		router.GET("/metrics", gin.WrapH(metrics))
	}

	api := router.Group("/api")
	{
		api.GET("/health", func(c *gin.Context) {
			c.JSON(http.StatusOK, gin.H{"status": "healthy"})
		})

		api.GET("/sitemap/items", handler.SitemapItems)

		articles := api.Group("/articles")
		{
			articles.GET("", handler.ListArticles)
			articles.POST("", handler.CreateArticle)
			articles.GET("/:id", handler.GetArticle)
		}

		categories := api.Group("/categories")
		{
			categories.GET("", handler.ListCategories)
			categories.POST("", handler.CreateCategory)
			categories.GET("/:id", handler.GetCategory)
			categories.GET("/:id/articles", handler.GetArticlesByCategory)
		}
	}

	return &Server{
		router: router,
		port:   port,
	}
}

// Handler exposes the engine for httptest.
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) Start() error {
	s.server = &http.Server{
		Addr:         fmt.Sprintf(":%d", s.port),
		Handler:      s.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	return s.server.ListenAndServe()
}

func (s *Server) Shutdown(ctx context.Context) error {
	if s.server != nil {
		return s.server.Shutdown(ctx)
	}
	return nil
}
