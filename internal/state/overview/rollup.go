package overview

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"k8s.io/apimachinery/pkg/apis/meta/v1/unstructured"
	"k8s.io/apimachinery/pkg/labels"

	"github.com/anzersy/console/internal/state/resource"
)

const (
	buildPhaseFailed = "Failed"
	buildPhaseError  = "Error"
)

// Build assembles the overview item for one top-level resource.
//
// A resource owning a deployment is rolled up as a plain workload: current and
// previous replica sets, their pods, the services selecting those pods, the
// routes exposing those services, and the build configs sharing the resource's
// instance label. A resource without an owned deployment is treated as a
// Knative service: owned configurations, their revisions (each with its own
// workload rollup), and owned Knative routes.
//
// Enrichers run in order after either branch.
func Build(snap resource.Snapshot, obj *unstructured.Unstructured, enrichers ...Enricher) *Item {
	item := &Item{
		Resource: obj,
		Alerts:   make(map[string]Alert),
	}

	if deployment := firstOwned(obj, snap[resource.CategoryDeployments]); deployment != nil {
		buildWorkloadRollup(snap, deployment, item)
	} else {
		buildKnativeRollup(snap, obj, item)
	}

	for _, enrich := range enrichers {
		enrich(snap, obj, item)
	}

	return item
}

func buildWorkloadRollup(snap resource.Snapshot, deployment *unstructured.Unstructured, item *Item) {
	item.Deployment = deployment
	item.Current, item.Previous = replicaSetPair(snap, deployment)
	item.IsRollingOut = item.Current != nil && item.Previous != nil

	if item.Current != nil {
		item.Pods = append(item.Pods, item.Current.Pods...)
	}
	if item.Previous != nil {
		item.Pods = append(item.Pods, item.Previous.Pods...)
	}

	item.Services = matchServices(snap, deployment)
	item.Routes = matchRoutes(snap, item.Services)
	item.BuildConfigs = matchBuildConfigs(snap, deployment)

	addPausedAlert(deployment, item.Alerts)
	addRolloutAlert(deployment, item)
	addBuildAlerts(snap, item.BuildConfigs, item.Alerts)
}

func buildKnativeRollup(snap resource.Snapshot, obj *unstructured.Unstructured, item *Item) {
	item.Configurations = resource.FindOwned(obj, snap[resource.CategoryConfigurations])

	for _, config := range item.Configurations {
		for _, rev := range resource.FindOwned(config, snap[resource.CategoryRevisions]) {
			item.Revisions = append(item.Revisions, Build(snap, rev))
		}
	}

	item.KsRoutes = resource.FindOwned(obj, snap[resource.CategoryKsRoutes])
}

// replicaSetPair returns the newest owned replica set and the next newest one
// that still holds replicas. A deployment mid-rollout has both.
func replicaSetPair(snap resource.Snapshot, deployment *unstructured.Unstructured) (current, previous *PodController) {
	owned := resource.FindOwned(deployment, snap[resource.CategoryReplicaSets])
	if len(owned) == 0 {
		return nil, nil
	}

	sort.SliceStable(owned, func(i, j int) bool {
		return controllerRevision(owned[i]) > controllerRevision(owned[j])
	})

	current = newPodController(snap, owned[0])

	for _, rs := range owned[1:] {
		if replicas(rs) > 0 {
			previous = newPodController(snap, rs)
			break
		}
	}

	return current, previous
}

func newPodController(snap resource.Snapshot, rs *unstructured.Unstructured) *PodController {
	return &PodController{
		Source:   rs,
		Revision: controllerRevision(rs),
		Pods:     resource.FindOwned(rs, snap[resource.CategoryPods]),
	}
}

func controllerRevision(rs *unstructured.Unstructured) int64 {
	rev, err := strconv.ParseInt(rs.GetAnnotations()[resource.DeploymentRevisionAnnotation], 10, 64)
	if err != nil {
		return 0
	}

	return rev
}

func replicas(rs *unstructured.Unstructured) int64 {
	count, _, _ := unstructured.NestedInt64(rs.Object, "status", "replicas")
	return count
}

// matchServices returns the services whose selector matches the deployment's
// pod template labels. Selector-less services never match.
func matchServices(snap resource.Snapshot, deployment *unstructured.Unstructured) []*unstructured.Unstructured {
	templateLabels, _, _ := unstructured.NestedStringMap(deployment.Object, "spec", "template", "metadata", "labels")
	if len(templateLabels) == 0 {
		return nil
	}

	var matched []*unstructured.Unstructured

	for _, svc := range snap[resource.CategoryServices] {
		selectorMap, _, _ := unstructured.NestedStringMap(svc.Object, "spec", "selector")

		selector := labels.SelectorFromSet(selectorMap)
		if selector.Empty() {
			continue
		}

		if selector.Matches(labels.Set(templateLabels)) {
			matched = append(matched, svc)
		}
	}

	return matched
}

func matchRoutes(snap resource.Snapshot, services []*unstructured.Unstructured) []*unstructured.Unstructured {
	names := make(map[string]struct{}, len(services))
	for _, svc := range services {
		names[svc.GetName()] = struct{}{}
	}

	var matched []*unstructured.Unstructured

	for _, route := range snap[resource.CategoryRoutes] {
		to, _, _ := unstructured.NestedString(route.Object, "spec", "to", "name")
		if to == "" {
			continue
		}
		if _, ok := names[to]; ok {
			matched = append(matched, route)
		}
	}

	return matched
}

func matchBuildConfigs(snap resource.Snapshot, deployment *unstructured.Unstructured) []*unstructured.Unstructured {
	instance := deployment.GetLabels()[resource.InstanceLabel]
	if instance == "" {
		return nil
	}

	var matched []*unstructured.Unstructured

	for _, config := range snap[resource.CategoryBuildConfigs] {
		if config.GetLabels()[resource.InstanceLabel] == instance {
			matched = append(matched, config)
		}
	}

	return matched
}

func addPausedAlert(deployment *unstructured.Unstructured, alerts map[string]Alert) {
	paused, _, _ := unstructured.NestedBool(deployment.Object, "spec", "paused")
	if !paused {
		return
	}

	alerts["paused"] = Alert{
		Severity: SeverityWarning,
		Message:  fmt.Sprintf("%s is paused", deployment.GetName()),
	}
}

func addRolloutAlert(deployment *unstructured.Unstructured, item *Item) {
	if !item.IsRollingOut {
		return
	}

	item.Alerts["rollout"] = Alert{
		Severity: SeverityInfo,
		Message:  fmt.Sprintf("%s is rolling out", deployment.GetName()),
	}
}

// addBuildAlerts records an alert for every build config whose latest build
// failed.
func addBuildAlerts(snap resource.Snapshot, configs []*unstructured.Unstructured, alerts map[string]Alert) {
	for _, config := range configs {
		latest := latestBuild(resource.FindOwned(config, snap[resource.CategoryBuilds]))
		if latest == nil {
			continue
		}

		phase, _, _ := unstructured.NestedString(latest.Object, "status", "phase")
		if phase != buildPhaseFailed && phase != buildPhaseError {
			continue
		}

		alerts["build-"+config.GetName()] = Alert{
			Severity: SeverityError,
			Message:  fmt.Sprintf("build %s %s", latest.GetName(), strings.ToLower(phase)),
		}
	}
}

func latestBuild(builds []*unstructured.Unstructured) *unstructured.Unstructured {
	var latest *unstructured.Unstructured

	for _, build := range builds {
		if latest == nil || build.GetCreationTimestamp().After(latest.GetCreationTimestamp().Time) {
			latest = build
		}
	}

	return latest
}

func firstOwned(obj *unstructured.Unstructured, candidates []*unstructured.Unstructured) *unstructured.Unstructured {
	owned := resource.FindOwned(obj, candidates)
	if len(owned) == 0 {
		return nil
	}

	return owned[0]
}
