package overview

import (
	"k8s.io/apimachinery/pkg/apis/meta/v1/unstructured"

	"github.com/anzersy/console/internal/state/resource"
)

// KnativeConfigurations attaches the configurations owned by the resource.
func KnativeConfigurations(snap resource.Snapshot, obj *unstructured.Unstructured, item *Item) {
	item.Configurations = resource.FindOwned(obj, snap[resource.CategoryConfigurations])
}

// KnativeRevisions attaches the revisions reachable through the resource's
// configurations, each with its own workload rollup.
func KnativeRevisions(snap resource.Snapshot, obj *unstructured.Unstructured, item *Item) {
	var revisions []*Item

	for _, config := range resource.FindOwned(obj, snap[resource.CategoryConfigurations]) {
		for _, rev := range resource.FindOwned(config, snap[resource.CategoryRevisions]) {
			revisions = append(revisions, Build(snap, rev))
		}
	}

	item.Revisions = revisions
}

// KnativeRoutes attaches the Knative routes owned by the resource.
func KnativeRoutes(snap resource.Snapshot, obj *unstructured.Unstructured, item *Item) {
	item.KsRoutes = resource.FindOwned(obj, snap[resource.CategoryKsRoutes])
}

// EventSources attaches every event source whose sink references the resource
// by kind and name. URI sinks never reference a resource.
func EventSources(snap resource.Snapshot, obj *unstructured.Unstructured, item *Item) {
	categories, _ := resource.DiscoverCategories(snap)

	var sources []*unstructured.Unstructured

	for _, category := range categories {
		for _, src := range snap[category] {
			dest := resource.SinkDestination(src)
			if dest == nil || dest.IsURI() {
				continue
			}
			if dest.Kind == obj.GetKind() && dest.Name == obj.GetName() {
				sources = append(sources, src)
			}
		}
	}

	item.EventSources = sources
}
