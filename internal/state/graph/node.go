package graph

import (
	"net/url"

	"k8s.io/apimachinery/pkg/apis/meta/v1/unstructured"

	"github.com/anzersy/console/internal/state/overview"
	"github.com/anzersy/console/internal/state/resource"
)

// NodeType tags how the renderer draws a node.
type NodeType string

// Node types of the topology view.
const (
	TypeKsService   NodeType = "ksservice"
	TypeRevision    NodeType = "revision"
	TypeEventSource NodeType = "event-source"
	TypeEventPubSub NodeType = "event-pubsub"
	TypeSinkURI     NodeType = "sink-uri"
	TypeWorkload    NodeType = "workload"
)

// Node shapes understood by the renderer.
const (
	ShapeRect   = "rect"
	ShapeCircle = "circle"
)

// Style fixes the rendered dimensions and behavior of a node type.
type Style struct {
	Shape       string  `json:"shape"`
	Width       float64 `json:"width"`
	Height      float64 `json:"height"`
	IsGroup     bool    `json:"isGroup"`
	Collapsible bool    `json:"collapsible"`
}

// nodeStyles is the style lookup table. Unknown node types fall back to the
// workload entry.
var nodeStyles = map[NodeType]Style{
	TypeWorkload:    {Shape: ShapeCircle, Width: 104, Height: 104},
	TypeEventSource: {Shape: ShapeRect, Width: 104, Height: 104},
	TypeRevision:    {Shape: ShapeCircle, Width: 104, Height: 104},
	TypeKsService:   {Shape: ShapeRect, Width: 208, Height: 104, IsGroup: true, Collapsible: true},
	TypeEventPubSub: {Shape: ShapeRect, Width: 104, Height: 52},
	TypeSinkURI:     {Shape: ShapeCircle, Width: 52, Height: 52},
}

// StyleFor returns the style for a node type, falling back to the workload
// style for unrecognized types.
func StyleFor(nodeType NodeType) Style {
	if style, ok := nodeStyles[nodeType]; ok {
		return style
	}

	return nodeStyles[TypeWorkload]
}

// iconKeys maps resource kinds to the icon assets the front end ships.
var iconKeys = map[string]string{
	resource.KindService:      "knative-service",
	resource.KindRevision:     "knative-revision",
	resource.KindBroker:       "knative-broker",
	resource.KindTrigger:      "knative-trigger",
	resource.KindSubscription: "knative-subscription",
}

// IconFor maps a kind to its display icon key. Kinds without a dedicated
// asset get the generic workload icon. Purely cosmetic.
func IconFor(kind string) string {
	if icon, ok := iconKeys[kind]; ok {
		return icon
	}

	return "workload"
}

// NodeData carries the display and semantic payload of a node.
type NodeData struct {
	Overview   *overview.Item `json:"overview,omitempty"`
	Kind       string         `json:"kind,omitempty"`
	APIVersion string         `json:"apiVersion,omitempty"`
	Icon       string         `json:"icon,omitempty"`
	SinkURI    string         `json:"sinkUri,omitempty"`
}

// Node is one vertex of the topology graph. ID is the resource uid, or the
// escaped URI for synthetic sink-uri nodes, and is unique across the graph.
// Children reference node ids present in the same graph.
type Node struct {
	Resource *unstructured.Unstructured `json:"resource,omitempty"`
	ID       string                     `json:"id"`
	Type     NodeType                   `json:"type"`
	Data     NodeData                   `json:"data"`
	Children []string                   `json:"children,omitempty"`
	Style    Style                      `json:"style"`
}

// NewNode builds the node for a resource.
func NewNode(obj *unstructured.Unstructured, nodeType NodeType, item *overview.Item) Node {
	return Node{
		ID:       resource.ID(obj),
		Type:     nodeType,
		Resource: obj,
		Style:    StyleFor(nodeType),
		Data: NodeData{
			Kind:       obj.GetKind(),
			APIVersion: obj.GetAPIVersion(),
			Icon:       IconFor(obj.GetKind()),
			Overview:   item,
		},
	}
}

// buildKnServiceNodes builds the group node of a Knative service followed by
// one child node per revision that survives the traffic and group filter.
// Child nodes carry no overview data; their ids are recorded on the group
// node.
func buildKnServiceNodes(
	snap resource.Snapshot,
	svc *unstructured.Unstructured,
	item *overview.Item,
	filter resource.GroupFilter,
) []Node {
	group := NewNode(svc, TypeKsService, item)
	children := make([]Node, 0)

	for _, config := range resource.FindOwned(svc, snap[resource.CategoryConfigurations]) {
		owned := resource.FindOwned(config, snap[resource.CategoryRevisions])

		for _, rev := range resource.FilterRevisions(owned, snap, filter) {
			child := NewNode(rev, TypeRevision, nil)
			group.Children = append(group.Children, child.ID)
			children = append(children, child)
		}
	}

	return append([]Node{group}, children...)
}

// newSinkURINode synthesizes the node for a sink addressed only by URI. The
// id is the query-escaped URI; the resource is a minimal record carrying the
// URI and the namespace of the first source referencing it.
func newSinkURINode(uri, namespace string) Node {
	res := &unstructured.Unstructured{
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

	return Node{
		ID:       url.QueryEscape(uri),
		Type:     TypeSinkURI,
		Resource: res,
		Style:    StyleFor(TypeSinkURI),
		Data: NodeData{
			SinkURI: uri,
			Icon:    IconFor(""),
		},
	}
}
