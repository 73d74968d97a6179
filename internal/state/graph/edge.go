package graph

import (
	"k8s.io/apimachinery/pkg/apis/meta/v1/unstructured"

	"github.com/anzersy/console/internal/framework/helpers"
	"github.com/anzersy/console/internal/state/resource"
)

// EdgeType tags the relationship an edge represents.
type EdgeType string

// Edge types of the topology view.
const (
	EdgeTypeTraffic     EdgeType = "revision-traffic"
	EdgeTypeEventSource EdgeType = "event-source-link"
	EdgeTypePubSub      EdgeType = "event-pubsub-link"
)

// EdgeData carries the relationship payload of an edge. Percent is set on
// traffic edges; Resource holds the trigger or subscription object that
// produced a pub/sub edge so the console can inspect and edit the binding.
type EdgeData struct {
	Percent  *int64                     `json:"percent,omitempty"`
	Resource *unstructured.Unstructured `json:"resource,omitempty"`
}

// Edge is one directed edge of the topology graph.
type Edge struct {
	ID     string   `json:"id"`
	Type   EdgeType `json:"type"`
	Source string   `json:"source"`
	Target string   `json:"target"`
	Data   EdgeData `json:"data"`
}

func edgeID(source, target string) string {
	return source + "_" + target
}

// edgeSet accumulates edges in insertion order. Traffic edges naming the same
// (source, target) pair merge by summing percents. For other edge types a
// colliding id coming from a different relationship object gets the
// relationship name appended instead of overwriting the stored edge.
type edgeSet struct {
	index map[string]int
	edges []Edge
}

func newEdgeSet() *edgeSet {
	return &edgeSet{
		index: make(map[string]int),
		edges: make([]Edge, 0),
	}
}

func (s *edgeSet) addTraffic(source, target string, percent int64) {
	id := edgeID(source, target)

	if i, ok := s.index[id]; ok {
		merged := *s.edges[i].Data.Percent + percent
		s.edges[i].Data.Percent = &merged
		return
	}

	s.index[id] = len(s.edges)
	s.edges = append(s.edges, Edge{
		ID:     id,
		Type:   EdgeTypeTraffic,
		Source: source,
		Target: target,
		Data:   EdgeData{Percent: helpers.GetPointer(percent)},
	})
}

func (s *edgeSet) add(edge Edge) {
	if i, ok := s.index[edge.ID]; ok {
		if sameRelationship(s.edges[i], edge) {
			return
		}

		edge.ID += "_" + relationshipName(edge)
		if _, taken := s.index[edge.ID]; taken {
			return
		}
	}

	s.index[edge.ID] = len(s.edges)
	s.edges = append(s.edges, edge)
}

func sameRelationship(a, b Edge) bool {
	return resource.ID(a.Data.Resource) == resource.ID(b.Data.Resource)
}

func relationshipName(edge Edge) string {
	if edge.Data.Resource == nil {
		return string(edge.Type)
	}

	return edge.Data.Resource.GetName()
}

// buildTrafficEdges emits one edge per revision the service routes traffic
// to. Entries naming a revision absent from the snapshot are skipped; entries
// naming the same revision merge their percents.
func buildTrafficEdges(snap resource.Snapshot, svc *unstructured.Unstructured, set *edgeSet) {
	for _, target := range resource.Traffic(svc) {
		rev := findByName(snap[resource.CategoryRevisions], target.RevisionName)
		if rev == nil {
			continue
		}

		set.addTraffic(resource.ID(svc), resource.ID(rev), target.Percent)
	}
}

// buildTriggerEdges connects a broker to every service subscribed to it
// through a trigger naming it in spec.broker.
func buildTriggerEdges(snap resource.Snapshot, broker *unstructured.Unstructured, set *edgeSet) {
	for _, trigger := range snap[resource.CategoryTriggers] {
		if resource.BrokerName(trigger) != broker.GetName() {
			continue
		}

		svc := subscriberService(snap, trigger)
		if svc == nil {
			continue
		}

		set.add(Edge{
			ID:     edgeID(resource.ID(broker), resource.ID(svc)),
			Type:   EdgeTypePubSub,
			Source: resource.ID(broker),
			Target: resource.ID(svc),
			Data:   EdgeData{Resource: trigger},
		})
	}
}

// buildSubscriptionEdges connects a channel to every service subscribed to it
// through a subscription naming it in spec.channel.
func buildSubscriptionEdges(snap resource.Snapshot, channel *unstructured.Unstructured, set *edgeSet) {
	for _, sub := range snap[resource.CategorySubscriptions] {
		if resource.ChannelName(sub) != channel.GetName() {
			continue
		}

		svc := subscriberService(snap, sub)
		if svc == nil {
			continue
		}

		set.add(Edge{
			ID:     edgeID(resource.ID(channel), resource.ID(svc)),
			Type:   EdgeTypePubSub,
			Source: resource.ID(channel),
			Target: resource.ID(svc),
			Data:   EdgeData{Resource: sub},
		})
	}
}

func subscriberService(snap resource.Snapshot, obj *unstructured.Unstructured) *unstructured.Unstructured {
	dest := resource.Subscriber(obj)
	if dest == nil || dest.IsURI() {
		return nil
	}

	return findByName(snap[resource.CategoryKsServices], dest.Name)
}

func findByName(candidates []*unstructured.Unstructured, name string) *unstructured.Unstructured {
	if name == "" {
		return nil
	}

	for _, candidate := range candidates {
		if candidate.GetName() == name {
			return candidate
		}
	}

	return nil
}

// findRef resolves an object-reference destination against candidates by
// name, and by kind when the reference declares one.
func findRef(candidates []*unstructured.Unstructured, dest *resource.Destination) *unstructured.Unstructured {
	for _, candidate := range candidates {
		if candidate.GetName() != dest.Name {
			continue
		}
		if dest.Kind != "" && candidate.GetKind() != dest.Kind {
			continue
		}

		return candidate
	}

	return nil
}
