// Package config holds the configuration of the topology service, populated
// by flag parsing in cmd/topology.
package config

import (
	"github.com/go-logr/logr"
	"go.uber.org/zap"
)

// Config is the configuration of the topology service.
type Config struct {
	Version string
	Logger  logr.Logger
	// AtomicLevel is the level of the Logger, adjustable at runtime.
	AtomicLevel zap.AtomicLevel
	// ManifestDir is the directory the snapshot provider loads resource
	// manifests from.
	ManifestDir string
	HTTP        HTTPConfig
	Metrics     MetricsConfig
	Graph       GraphConfig
}

// HTTPConfig is the configuration of the HTTP surface.
type HTTPConfig struct {
	// AllowedOrigins are the CORS origins of the console front end. Empty
	// allows every origin.
	AllowedOrigins []string
	Port           int
}

// MetricsConfig is the metrics endpoint configuration.
type MetricsConfig struct {
	Enabled bool
}

// GraphConfig fixes the dynamic categories of a graph build. Both lists empty
// means discover them from the snapshot.
type GraphConfig struct {
	EventSourceCategories []string
	ChannelCategories     []string
}
