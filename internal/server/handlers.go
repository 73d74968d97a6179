package server

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"k8s.io/apimachinery/pkg/apis/meta/v1/unstructured"

	"github.com/anzersy/console/internal/actions"
	"github.com/anzersy/console/internal/state/graph"
	"github.com/anzersy/console/internal/state/resource"
)

// objectRef locates a resource in the snapshot, or, when URI is set, names an
// external sink outside the cluster.
type objectRef struct {
	Category string `json:"category"`
	Name     string `json:"name"`
	URI      string `json:"uri"`
}

type connectionRequest struct {
	Namespace string    `json:"namespace" binding:"required"`
	Source    objectRef `json:"source" binding:"required"`
	Target    objectRef `json:"target" binding:"required"`
}

type bindingRequest struct {
	Namespace string `json:"namespace" binding:"required"`
	// Broker is set on trigger requests, Channel on subscription requests.
	Broker  objectRef `json:"broker"`
	Channel objectRef `json:"channel"`
	Service objectRef `json:"service" binding:"required"`
}

func (s *Server) getTopology(c *gin.Context) {
	namespace := c.Param("namespace")

	snap, err := s.provider.Snapshot(c.Request.Context(), namespace)
	if err != nil {
		s.logger.Error(err, "Failed to load snapshot", "namespace", namespace)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load resource snapshot"})
		return
	}

	opts := graph.Options{
		EventSourceCategories: s.cfg.Graph.EventSourceCategories,
		ChannelCategories:     s.cfg.Graph.ChannelCategories,
	}
	if len(opts.EventSourceCategories) == 0 && len(opts.ChannelCategories) == 0 {
		opts.EventSourceCategories, opts.ChannelCategories = resource.DiscoverCategories(snap)
	}

	start := time.Now()
	built := graph.BuildGraph(snap, opts)
	s.recorder.ObserveGraphBuild(time.Since(start), len(built.Nodes), len(built.Edges))

	c.JSON(http.StatusOK, built)
}

// postConnection rewires the sink of an event producer, or the subscriber of
// a trigger or subscription, to a new target.
func (s *Server) postConnection(c *gin.Context) {
	if s.connector == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "mutations are not available"})
		return
	}

	var req connectionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	snap, err := s.provider.Snapshot(c.Request.Context(), req.Namespace)
	if err != nil {
		s.logger.Error(err, "Failed to load snapshot", "namespace", req.Namespace)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load resource snapshot"})
		return
	}

	source := findInSnapshot(snap, req.Source)
	if source == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "source not found"})
		return
	}

	var target *unstructured.Unstructured
	if req.Target.URI != "" {
		target = sinkURIResource(req.Target.URI, req.Namespace)
	} else if target = findInSnapshot(snap, req.Target); target == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "target not found"})
		return
	}

	ctx := c.Request.Context()

	switch req.Source.Category {
	case resource.CategoryTriggers, resource.CategorySubscriptions:
		err = s.connector.ConnectSubscriberToSink(ctx, source, target)
	default:
		err = s.connector.ConnectSourceToSink(ctx, source, target)
	}

	switch {
	case errors.Is(err, actions.ErrInvalidConnection):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case err != nil:
		s.logger.Error(err, "Failed to connect", "source", req.Source.Name, "target", req.Target.Name)
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
	default:
		c.Status(http.StatusNoContent)
	}
}

// postTrigger creates a trigger binding the named service to the named
// broker.
func (s *Server) postTrigger(c *gin.Context) {
	req, snap, ok := s.bindingRequest(c)
	if !ok {
		return
	}

	ref := req.Broker
	if ref.Category == "" {
		ref.Category = resource.CategoryBrokers
	}

	broker, svc, ok := s.resolveBinding(c, snap, ref, req.Service)
	if !ok {
		return
	}

	created, err := s.connector.CreateTrigger(c.Request.Context(), broker, svc)
	s.writeCreateResult(c, created, err)
}

// postSubscription creates a subscription binding the named service to the
// named channel. The channel ref must carry its dynamic category.
func (s *Server) postSubscription(c *gin.Context) {
	req, snap, ok := s.bindingRequest(c)
	if !ok {
		return
	}

	channel, svc, ok := s.resolveBinding(c, snap, req.Channel, req.Service)
	if !ok {
		return
	}

	created, err := s.connector.CreateSubscription(c.Request.Context(), channel, svc)
	s.writeCreateResult(c, created, err)
}

func (s *Server) bindingRequest(c *gin.Context) (bindingRequest, resource.Snapshot, bool) {
	var req bindingRequest

	if s.connector == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "mutations are not available"})
		return req, nil, false
	}

	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return req, nil, false
	}

	snap, err := s.provider.Snapshot(c.Request.Context(), req.Namespace)
	if err != nil {
		s.logger.Error(err, "Failed to load snapshot", "namespace", req.Namespace)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load resource snapshot"})
		return req, nil, false
	}

	return req, snap, true
}

func (s *Server) resolveBinding(
	c *gin.Context,
	snap resource.Snapshot,
	parentRef, serviceRef objectRef,
) (parent, svc *unstructured.Unstructured, ok bool) {
	parent = findInSnapshot(snap, parentRef)
	if parent == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "broker or channel not found"})
		return nil, nil, false
	}

	if serviceRef.Category == "" {
		serviceRef.Category = resource.CategoryKsServices
	}

	svc = findInSnapshot(snap, serviceRef)
	if svc == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "service not found"})
		return nil, nil, false
	}

	return parent, svc, true
}

// writeCreateResult renders the outcome of a create verb. A nil created with
// a nil error means the failure was already reported through the notifier;
// the client then gets an empty object rather than an error.
func (s *Server) writeCreateResult(c *gin.Context, created *unstructured.Unstructured, err error) {
	switch {
	case errors.Is(err, actions.ErrInvalidConnection):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case err != nil:
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
	case created == nil:
		c.JSON(http.StatusOK, gin.H{})
	default:
		c.JSON(http.StatusCreated, created)
	}
}

func findInSnapshot(snap resource.Snapshot, ref objectRef) *unstructured.Unstructured {
	if ref.Category == "" || ref.Name == "" {
		return nil
	}

	for _, obj := range snap[ref.Category] {
		if obj.GetName() == ref.Name {
			return obj
		}
	}

	return nil
}

func sinkURIResource(uri, namespace string) *unstructured.Unstructured {
	return &unstructured.Unstructured{
		Object: map[string]any{
			"metadata": map[string]any{
				"name":      uri,
				"namespace": namespace,
			},
			"spec": map[string]any{
				"sinkUri": uri,
			},
		},
	}
}
