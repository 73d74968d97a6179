// Package server exposes the topology graph and the connect verbs over HTTP
// for the console front end.
package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/go-logr/logr"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"k8s.io/apimachinery/pkg/apis/meta/v1/unstructured"

	"github.com/anzersy/console/internal/config"
	"github.com/anzersy/console/internal/metrics"
	"github.com/anzersy/console/internal/state/resource"
)

// SnapshotProvider supplies the resource snapshot the graph is built from.
// Fetching and watching stay outside this repository; the manifests package
// ships a directory-backed implementation for offline use.
type SnapshotProvider interface {
	Snapshot(ctx context.Context, namespace string) (resource.Snapshot, error)
}

// Connector issues the mutation verbs behind new topology edges. Implemented
// by actions.Actions. A nil Connector serves the topology read-only.
type Connector interface {
	ConnectSourceToSink(ctx context.Context, source, target *unstructured.Unstructured) error
	ConnectSubscriberToSink(ctx context.Context, subscription, target *unstructured.Unstructured) error
	CreateTrigger(ctx context.Context, broker, service *unstructured.Unstructured) (*unstructured.Unstructured, error)
	CreateSubscription(ctx context.Context, channel, service *unstructured.Unstructured) (*unstructured.Unstructured, error)
}

// Server serves the topology API.
type Server struct {
	provider  SnapshotProvider
	connector Connector
	recorder  metrics.GraphRecorder
	logger    logr.Logger
	cfg       config.Config
}

// New creates a Server. A nil recorder disables build observations; a nil
// connector makes the mutation endpoints respond 503.
func New(
	cfg config.Config,
	provider SnapshotProvider,
	connector Connector,
	recorder metrics.GraphRecorder,
	logger logr.Logger,
) *Server {
	if recorder == nil {
		recorder = metrics.NewGraphNoopCollector()
	}

	return &Server{
		cfg:       cfg,
		provider:  provider,
		connector: connector,
		recorder:  recorder,
		logger:    logger,
	}
}

// Router builds the gin engine serving the topology API.
func (s *Server) Router() *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(cors.New(s.corsConfig()))

	router.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "version": s.cfg.Version})
	})

	if s.cfg.Metrics.Enabled {
		router.GET("/metrics", gin.WrapH(promhttp.Handler()))
	}

	api := router.Group("/api/v1")
	{
		api.GET("/namespaces/:namespace/topology", s.getTopology)
		api.POST("/connections", s.postConnection)
		api.POST("/triggers", s.postTrigger)
		api.POST("/subscriptions", s.postSubscription)
	}

	return router
}

// ListenAndServe serves the API on the configured port until ctx is done.
func (s *Server) ListenAndServe(ctx context.Context) error {
	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", s.cfg.HTTP.Port),
		Handler:           s.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			s.logger.Error(err, "Failed to shut down HTTP server cleanly")
		}
	}()

	s.logger.Info("Serving topology API", "port", s.cfg.HTTP.Port)

	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("HTTP server failed: %w", err)
	}

	return nil
}

func (s *Server) corsConfig() cors.Config {
	corsCfg := cors.Config{
		AllowMethods:  []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:  []string{"Origin", "Authorization", "Content-Type", "Accept"},
		ExposeHeaders: []string{"Content-Length"},
		MaxAge:        12 * time.Hour,
	}

	if len(s.cfg.HTTP.AllowedOrigins) == 0 {
		corsCfg.AllowAllOrigins = true
	} else {
		corsCfg.AllowOrigins = s.cfg.HTTP.AllowedOrigins
	}

	return corsCfg
}
