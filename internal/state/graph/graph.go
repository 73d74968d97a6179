package graph

import (
	"k8s.io/apimachinery/pkg/apis/meta/v1/unstructured"

	"github.com/anzersy/console/internal/state/overview"
	"github.com/anzersy/console/internal/state/resource"
)

// Group collects the nodes of one logical application, keyed by the part-of
// label the member resources share.
type Group struct {
	ID    string   `json:"id"`
	Name  string   `json:"name"`
	Nodes []string `json:"nodes"`
}

// Graph is the topology handed to the rendering layer.
type Graph struct {
	Nodes  []Node  `json:"nodes"`
	Edges  []Edge  `json:"edges"`
	Groups []Group `json:"groups"`
}

// Options configures a graph build.
type Options struct {
	// GroupFilter admits services into the build. Nil admits everything.
	GroupFilter resource.GroupFilter

	// EventSourceCategories lists the snapshot keys scanned for event
	// sources, in scan order.
	EventSourceCategories []string

	// ChannelCategories lists the snapshot keys scanned for channels, in
	// scan order.
	ChannelCategories []string

	// Enrichers extend the overview item built for every top-level node.
	Enrichers []overview.Enricher
}

// IsInternal reports whether a resource is a subordinate object assumed to be
// represented elsewhere in the graph and therefore excluded from pub/sub node
// emission. Brokers are never internal regardless of ownership.
func IsInternal(obj *unstructured.Unstructured) bool {
	if obj.GetKind() == resource.KindBroker {
		return false
	}

	return len(obj.GetOwnerReferences()) > 0
}

// BuildGraph translates the snapshot into the topology graph. The build is a
// single deterministic traversal over services, event sources, brokers and
// channels; identical snapshots produce identical graphs.
func BuildGraph(snap resource.Snapshot, opts Options) *Graph {
	b := newBuilder(snap, opts)

	b.addKnServices()
	b.addEventSources()
	b.addPubSub()

	return b.graph()
}

type builder struct {
	snap       resource.Snapshot
	opts       Options
	edges      *edgeSet
	groupIndex map[string]*Group
	nodes      []Node
	groupOrder []string
}

func newBuilder(snap resource.Snapshot, opts Options) *builder {
	return &builder{
		snap:       snap,
		opts:       opts,
		nodes:      make([]Node, 0),
		edges:      newEdgeSet(),
		groupIndex: make(map[string]*Group),
	}
}

func (b *builder) addKnServices() {
	for _, svc := range b.snap[resource.CategoryKsServices] {
		if b.opts.GroupFilter != nil && !b.opts.GroupFilter(svc) {
			continue
		}

		item := overview.Build(b.snap, svc, b.opts.Enrichers...)
		b.nodes = append(b.nodes, buildKnServiceNodes(b.snap, svc, item, b.opts.GroupFilter)...)

		buildTrafficEdges(b.snap, svc, b.edges)
		b.addToGroup(svc)
	}
}

func (b *builder) addEventSources() {
	for _, category := range b.opts.EventSourceCategories {
		for _, src := range b.snap[category] {
			item := overview.Build(b.snap, src, b.opts.Enrichers...)
			b.addNode(NewNode(src, TypeEventSource, item))

			b.addSinkEdges(src)
			b.addToGroup(src)
		}
	}
}

func (b *builder) addPubSub() {
	for _, broker := range b.snap[resource.CategoryBrokers] {
		if IsInternal(broker) {
			continue
		}

		item := overview.Build(b.snap, broker, b.opts.Enrichers...)
		b.addNode(NewNode(broker, TypeEventPubSub, item))

		buildTriggerEdges(b.snap, broker, b.edges)
		b.addToGroup(broker)
	}

	for _, category := range b.opts.ChannelCategories {
		for _, channel := range b.snap[category] {
			if IsInternal(channel) {
				continue
			}

			item := overview.Build(b.snap, channel, b.opts.Enrichers...)
			b.addNode(NewNode(channel, TypeEventPubSub, item))

			// A channel can itself forward events onward through spec.sink.
			b.addSinkEdges(channel)
			buildSubscriptionEdges(b.snap, channel, b.edges)
			b.addToGroup(channel)
		}
	}
}

func (b *builder) addNode(node Node) {
	b.nodes = append(b.nodes, node)
}

// addSinkEdges emits the edge from an event producer to its sink: an object
// reference resolved against services, brokers and channels, or a raw URI
// resolved against the synthetic sink-uri node, created on first use.
func (b *builder) addSinkEdges(src *unstructured.Unstructured) {
	dest := resource.SinkDestination(src)
	if dest == nil {
		return
	}

	sourceID := resource.ID(src)

	if dest.IsURI() {
		node := b.ensureSinkURINode(dest.URI, src.GetNamespace())
		b.edges.add(Edge{
			ID:     edgeID(sourceID, node.ID),
			Type:   EdgeTypeEventSource,
			Source: sourceID,
			Target: node.ID,
		})

		return
	}

	target := findRef(b.sinkCandidates(), dest)
	if target == nil {
		return
	}

	b.edges.add(Edge{
		ID:     edgeID(sourceID, resource.ID(target)),
		Type:   EdgeTypeEventSource,
		Source: sourceID,
		Target: resource.ID(target),
	})
}

func (b *builder) sinkCandidates() []*unstructured.Unstructured {
	size := len(b.snap[resource.CategoryKsServices]) + len(b.snap[resource.CategoryBrokers])
	candidates := make([]*unstructured.Unstructured, 0, size)

	candidates = append(candidates, b.snap[resource.CategoryKsServices]...)
	candidates = append(candidates, b.snap[resource.CategoryBrokers]...)
	for _, category := range b.opts.ChannelCategories {
		candidates = append(candidates, b.snap[category]...)
	}

	return candidates
}

// ensureSinkURINode returns the sink-uri node for uri, synthesizing it on
// first use. Reuse scans the running node list; the first match wins.
func (b *builder) ensureSinkURINode(uri, namespace string) Node {
	for _, node := range b.nodes {
		if node.Type == TypeSinkURI && node.Data.SinkURI == uri {
			return node
		}
	}

	node := newSinkURINode(uri, namespace)
	b.addNode(node)

	return node
}

func (b *builder) addToGroup(obj *unstructured.Unstructured) {
	name := obj.GetLabels()[resource.PartOfLabel]
	if name == "" {
		return
	}

	group, ok := b.groupIndex[name]
	if !ok {
		group = &Group{ID: "group:" + name, Name: name}
		b.groupIndex[name] = group
		b.groupOrder = append(b.groupOrder, name)
	}

	id := resource.ID(obj)
	for _, member := range group.Nodes {
		if member == id {
			return
		}
	}

	group.Nodes = append(group.Nodes, id)
}

func (b *builder) graph() *Graph {
	groups := make([]Group, 0, len(b.groupOrder))
	for _, name := range b.groupOrder {
		groups = append(groups, *b.groupIndex[name])
	}

	return &Graph{
		Nodes:  b.nodes,
		Edges:  b.edges.edges,
		Groups: groups,
	}
}
