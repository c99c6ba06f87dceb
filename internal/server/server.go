package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"lemonbi/storefront/internal/config"
	"lemonbi/storefront/internal/service"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"
)

type Server struct {
	httpServer *http.Server
	service    *service.Service
	adminToken string
}

func New(cfg config.ServerConfig, adminToken string, svc *service.Service) *Server {
	s := &Server{
		service:    svc,
		adminToken: adminToken,
	}

	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery())

	api := router.Group("/api")
	{
		store := api.Group("/store")
		store.GET("/:code", s.getStorefront)
		store.GET("/:code/catalog", s.getCatalog)

		admin := api.Group("/admin", s.requireAdmin)
		admin.GET("/tenants", s.listTenants)
		admin.GET("/tenants/:code/status", s.getTenantStatus)
		admin.POST("/tenants/check", s.checkTenants)
	}

	s.httpServer = &http.Server{
		Addr:    fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Handler: router,
	}

	return s
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	errCh := make(chan error, 1)

	go func() {
		log.Infof("HTTP API listening on %s", s.httpServer.Addr)
		if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return s.httpServer.Shutdown(shutdownCtx)
	}
}

func (s *Server) requireAdmin(c *gin.Context) {
	if s.adminToken == "" || c.GetHeader("Authorization") != "Bearer "+s.adminToken {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "admin token required"})
		return
	}
	c.Next()
}
