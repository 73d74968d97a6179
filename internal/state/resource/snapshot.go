package resource

import (
	"sort"
	"strings"

	"k8s.io/apimachinery/pkg/apis/meta/v1/unstructured"
)

// Snapshot maps a resource category to the ordered resources of that
// category. It is supplied whole by the external data layer and read-only to
// this package and its consumers.
type Snapshot map[string][]*unstructured.Unstructured

// Fixed category names. Dynamic categories (event sources and channels) are
// keyed by GVR-style strings, e.g. "pingsources.sources.knative.dev".
const (
	CategoryKsServices     = "ksservices"
	CategoryConfigurations = "configurations"
	CategoryRevisions      = "revisions"
	CategoryKsRoutes       = "ksroutes"
	CategoryBrokers        = "brokers"
	CategoryTriggers       = "triggers"
	CategorySubscriptions  = "eventingsubscription"
	CategoryDeployments    = "deployments"
	CategoryReplicaSets    = "replicasets"
	CategoryPods           = "pods"
	CategoryServices       = "services"
	CategoryRoutes         = "routes"
	CategoryBuildConfigs   = "buildconfigs"
	CategoryBuilds         = "builds"
)

// DiscoverCategories returns the event-source and channel categories present
// in the snapshot, each sorted for deterministic traversal. Callers that
// receive the category lists from elsewhere (the console front end sends its
// own) do not need this.
func DiscoverCategories(snap Snapshot) (eventSources, channels []string) {
	keys := make([]string, 0, len(snap))
	for key := range snap {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	for _, key := range keys {
		switch {
		case strings.HasSuffix(key, "."+SourcesGroup):
			eventSources = append(eventSources, key)
		case strings.HasSuffix(key, "."+MessagingGroup):
			// Subscriptions live in the messaging group but are not channels.
			if strings.HasPrefix(key, "subscriptions.") {
				continue
			}
			channels = append(channels, key)
		}
	}

	return eventSources, channels
}
