// Package resource defines the snapshot model shared by the topology graph
// and resolves ownership relationships between resources.
//
// Resources are kept as unstructured objects because event-source and channel
// categories are discovered at runtime and cannot be enumerated at compile
// time. Kind-specific spec and status fields are read through the typed view
// helpers in this package.
package resource

import (
	"k8s.io/apimachinery/pkg/apis/meta/v1/unstructured"
)

// Kinds of the resources the topology understands.
const (
	KindService       = "Service"
	KindConfiguration = "Configuration"
	KindRevision      = "Revision"
	KindRoute         = "Route"
	KindBroker        = "Broker"
	KindTrigger       = "Trigger"
	KindSubscription  = "Subscription"
	KindDeployment    = "Deployment"
	KindReplicaSet    = "ReplicaSet"
	KindPod           = "Pod"
	KindBuildConfig   = "BuildConfig"
	KindBuild         = "Build"
)

// API versions of the Knative resources the topology creates or inspects.
const (
	ServingAPIVersion   = "serving.knative.dev/v1"
	EventingAPIVersion  = "eventing.knative.dev/v1"
	MessagingAPIVersion = "messaging.knative.dev/v1"
)

// API groups that mark dynamically discovered categories.
const (
	SourcesGroup   = "sources.knative.dev"
	MessagingGroup = "messaging.knative.dev"
)

// Well-known labels and annotations.
const (
	PartOfLabel   = "app.kubernetes.io/part-of"
	InstanceLabel = "app.kubernetes.io/instance"

	DeploymentRevisionAnnotation = "deployment.kubernetes.io/revision"
)

// New builds a minimal resource of the given kind. Callers fill spec fields
// through unstructured accessors.
func New(apiVersion, kind, namespace, name string) *unstructured.Unstructured {
	return &unstructured.Unstructured{
		Object: map[string]any{
			"apiVersion": apiVersion,
			"kind":       kind,
			"metadata": map[string]any{
				"namespace": namespace,
				"name":      name,
			},
		},
	}
}

// ID returns the graph identity of a resource, its uid.
func ID(obj *unstructured.Unstructured) string {
	if obj == nil {
		return ""
	}
	return string(obj.GetUID())
}
