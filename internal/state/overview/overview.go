// Package overview assembles the denormalized per-resource aggregate shown by
// the console side panel and embedded in topology nodes.
package overview

import (
	"k8s.io/apimachinery/pkg/apis/meta/v1/unstructured"

	"github.com/anzersy/console/internal/state/resource"
)

// Alert severities.
const (
	SeverityInfo    = "info"
	SeverityWarning = "warning"
	SeverityError   = "error"
)

// Alert is a user-facing warning attached to an overview item, keyed by a
// stable alert name in Item.Alerts.
type Alert struct {
	Severity string `json:"severity"`
	Message  string `json:"message"`
}

// PodController pairs a workload controller (a replica set) with the pods it
// currently runs and its rollout revision.
type PodController struct {
	Source   *unstructured.Unstructured   `json:"source,omitempty"`
	Pods     []*unstructured.Unstructured `json:"pods,omitempty"`
	Revision int64                        `json:"revision"`
}

// Item denormalizes everything the console shows about one top-level
// resource. It is rebuilt from scratch on every graph build and owned by the
// caller; it holds no references other than reads into the snapshot.
//
// The Knative facets (Configurations, Revisions, KsRoutes, EventSources) are
// populated either by the base rollup or by enrichers.
type Item struct {
	Resource   *unstructured.Unstructured `json:"resource,omitempty"`
	Deployment *unstructured.Unstructured `json:"deployment,omitempty"`
	Current    *PodController             `json:"current,omitempty"`
	Previous   *PodController             `json:"previous,omitempty"`

	Pods         []*unstructured.Unstructured `json:"pods,omitempty"`
	Services     []*unstructured.Unstructured `json:"services,omitempty"`
	Routes       []*unstructured.Unstructured `json:"routes,omitempty"`
	BuildConfigs []*unstructured.Unstructured `json:"buildConfigs,omitempty"`

	Configurations []*unstructured.Unstructured `json:"configurations,omitempty"`
	Revisions      []*Item                      `json:"revisions,omitempty"`
	KsRoutes       []*unstructured.Unstructured `json:"ksroutes,omitempty"`
	EventSources   []*unstructured.Unstructured `json:"eventSources,omitempty"`

	Alerts map[string]Alert `json:"alerts,omitempty"`

	IsRollingOut bool `json:"isRollingOut"`
}

// Enricher adds kind-specific facets to an overview item after the base
// rollup. Enrichers run in order; when two write the same field the later one
// wins. A panicking enricher is not recovered here.
type Enricher func(snap resource.Snapshot, obj *unstructured.Unstructured, item *Item)
