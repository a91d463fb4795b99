package main

import (
	"errors"
	"net/http"

	"g2p-curation/config"
	"g2p-curation/providers"
	"g2p-curation/services"
	"g2p-curation/store"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const (
	apiPrefix        = "/gene2phenotype/api"
	authenticatedKey = "authenticated"
	userEmailHeader  = "X-USER-EMAIL"
)

type apiDeps struct {
	store    *store.Store
	catalog  *services.Catalog
	diseases *services.DiseaseDeduplicator
	resolver *services.PublicationResolver
}

func newRouter(cfg *config.Config, deps apiDeps, log *zap.Logger) *gin.Engine {
	router := gin.Default()
	router.Use(gin.Recovery())
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := router.Group(apiPrefix)
	api.Use(apiKeyAuthMiddleware(cfg))
	setupPanelRoutes(api, deps.catalog, log)
	setupUserRoutes(api, deps.catalog, log)
	setupGeneRoutes(api, deps.catalog, log)
	setupDiseaseRoutes(api, cfg, deps, log)
	setupRecordRoutes(api, deps.catalog, log)
	setupPublicationRoutes(api, cfg, deps, log)
	return router
}

// apiKeyAuthMiddleware marks requests carrying the configured key as
// authenticated. A wrong key is rejected; no key means anonymous access.
func apiKeyAuthMiddleware(cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		apiKey := c.GetHeader("X-API-KEY")
		if cfg.APISecretKey == "" || apiKey == "" {
			c.Set(authenticatedKey, false)
			c.Next()
			return
		}
		if apiKey != cfg.APISecretKey {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized: Invalid API Key"})
			return
		}
		c.Set(authenticatedKey, true)
		c.Next()
	}
}

// requireAPIKey guards write routes when a key is configured.
func requireAPIKey(cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		if cfg.APISecretKey != "" && !authenticated(c) {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized: API key required"})
			return
		}
		c.Next()
	}
}

func authenticated(c *gin.Context) bool {
	return c.GetBool(authenticatedKey)
}

// respondError maps service errors to status codes.
func respondError(c *gin.Context, log *zap.Logger, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, services.ErrNotFound), errors.Is(err, services.ErrRecordNotFound), errors.Is(err, gorm.ErrRecordNotFound):
		status = http.StatusNotFound
	case errors.Is(err, services.ErrDuplicateDisease), errors.Is(err, services.ErrPublicationExists):
		status = http.StatusConflict
	case errors.Is(err, services.ErrInvalidPublicationID), errors.Is(err, services.ErrInvalidOntologyAccession), errors.Is(err, services.ErrUnknownUser):
		status = http.StatusBadRequest
	case errors.Is(err, providers.ErrUnavailable):
		status = http.StatusBadGateway
	}
	if status >= http.StatusInternalServerError {
		log.Error("Request failed", zap.String("path", c.Request.URL.Path), zap.Error(err))
	}
	if status == http.StatusInternalServerError {
		c.JSON(status, gin.H{"error": "internal error"})
		return
	}
	c.JSON(status, gin.H{"error": err.Error()})
}

func setupPanelRoutes(api *gin.RouterGroup, catalog *services.Catalog, log *zap.Logger) {
	rg := api.Group("/panel")

	rg.GET("/", func(c *gin.Context) {
		panels, err := catalog.Panels(c.Request.Context(), authenticated(c))
		if err != nil {
			respondError(c, log, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"results": panels, "count": len(panels)})
	})

	rg.GET("/:name", func(c *gin.Context) {
		panel, err := catalog.Panel(c.Request.Context(), c.Param("name"), authenticated(c))
		if err != nil {
			respondError(c, log, err)
			return
		}
		c.JSON(http.StatusOK, panel)
	})

	rg.GET("/:name/stats", func(c *gin.Context) {
		stats, err := catalog.PanelStats(c.Request.Context(), c.Param("name"), authenticated(c))
		if err != nil {
			respondError(c, log, err)
			return
		}
		c.JSON(http.StatusOK, stats)
	})

	rg.GET("/:name/records_summary", func(c *gin.Context) {
		summary, err := catalog.PanelRecordsSummary(c.Request.Context(), c.Param("name"), authenticated(c))
		if err != nil {
			respondError(c, log, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"records_summary": summary})
	})
}

func setupUserRoutes(api *gin.RouterGroup, catalog *services.Catalog, log *zap.Logger) {
	api.GET("/users/", func(c *gin.Context) {
		users, err := catalog.Users(c.Request.Context(), authenticated(c))
		if err != nil {
			respondError(c, log, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"results": users, "count": len(users)})
	})
}

func setupGeneRoutes(api *gin.RouterGroup, catalog *services.Catalog, log *zap.Logger) {
	rg := api.Group("/gene")

	rg.GET("/:symbol", func(c *gin.Context) {
		gene, err := catalog.Gene(c.Request.Context(), c.Param("symbol"))
		if err != nil {
			respondError(c, log, err)
			return
		}
		c.JSON(http.StatusOK, gene)
	})

	rg.GET("/:symbol/summary", func(c *gin.Context) {
		records, err := catalog.GeneRecords(c.Request.Context(), c.Param("symbol"), authenticated(c))
		if err != nil {
			respondError(c, log, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"gene_symbol": c.Param("symbol"), "records_summary": records})
	})
}

func setupDiseaseRoutes(api *gin.RouterGroup, cfg *config.Config, deps apiDeps, log *zap.Logger) {
	rg := api.Group("/disease")

	rg.GET("/:name", func(c *gin.Context) {
		disease, err := deps.catalog.Disease(c.Request.Context(), c.Param("name"))
		if err != nil {
			respondError(c, log, err)
			return
		}
		c.JSON(http.StatusOK, disease)
	})

	rg.POST("/", requireAPIKey(cfg), func(c *gin.Context) {
		var req services.NewDisease
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
			return
		}
		user, err := services.ActingUser(c.Request.Context(), deps.store, c.GetHeader(userEmailHeader))
		if err != nil {
			respondError(c, log, err)
			return
		}
		disease, err := deps.diseases.CreateDisease(c.Request.Context(), user, req)
		if err != nil {
			respondError(c, log, err)
			return
		}
		c.JSON(http.StatusCreated, gin.H{"id": disease.ID, "name": disease.Name})
	})
}

func setupRecordRoutes(api *gin.RouterGroup, catalog *services.Catalog, log *zap.Logger) {
	api.GET("/lgd/:stable_id", func(c *gin.Context) {
		record, err := catalog.Record(c.Request.Context(), c.Param("stable_id"), authenticated(c))
		if err != nil {
			respondError(c, log, err)
			return
		}
		c.JSON(http.StatusOK, record)
	})
}

func setupPublicationRoutes(api *gin.RouterGroup, cfg *config.Config, deps apiDeps, log *zap.Logger) {
	api.POST("/publication/", requireAPIKey(cfg), func(c *gin.Context) {
		type newPublication struct {
			PMID  int    `json:"pmid" binding:"required"`
			Title string `json:"title"`
		}

		var req newPublication
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
			return
		}
		user, err := services.ActingUser(c.Request.Context(), deps.store, c.GetHeader(userEmailHeader))
		if err != nil {
			respondError(c, log, err)
			return
		}
		pub, err := deps.resolver.Create(c.Request.Context(), user, req.PMID, req.Title)
		if err != nil {
			respondError(c, log, err)
			return
		}
		c.JSON(http.StatusCreated, pub)
	})
}
