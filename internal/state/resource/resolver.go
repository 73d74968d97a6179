package resource

import (
	"k8s.io/apimachinery/pkg/apis/meta/v1/unstructured"
)

// GroupFilter admits resources into the currently selected application group.
// A nil GroupFilter admits everything.
type GroupFilter func(*unstructured.Unstructured) bool

// FindParent returns the first candidate whose uid appears in the owner
// references of res, or nil when none matches. When more than one candidate
// matches, the first in candidate order wins.
func FindParent(res *unstructured.Unstructured, candidates []*unstructured.Unstructured) *unstructured.Unstructured {
	if res == nil {
		return nil
	}

	owners := res.GetOwnerReferences()
	if len(owners) == 0 {
		return nil
	}

	for _, candidate := range candidates {
		for _, ref := range owners {
			if candidate.GetUID() == ref.UID {
				return candidate
			}
		}
	}

	return nil
}

// FindOwned returns every candidate whose owner references include the uid of
// parent, preserving candidate order.
func FindOwned(parent *unstructured.Unstructured, candidates []*unstructured.Unstructured) []*unstructured.Unstructured {
	if parent == nil {
		return nil
	}

	var owned []*unstructured.Unstructured

	for _, candidate := range candidates {
		for _, ref := range candidate.GetOwnerReferences() {
			if ref.UID == parent.GetUID() {
				owned = append(owned, candidate)
				break
			}
		}
	}

	return owned
}

// FilterRevisions keeps a revision only when the service that ultimately owns
// it routes traffic to it and passes the group filter. The revision ->
// configuration -> service chain is re-derived on every call; nothing is
// cached between calls.
func FilterRevisions(
	revisions []*unstructured.Unstructured,
	snap Snapshot,
	filter GroupFilter,
) []*unstructured.Unstructured {
	var kept []*unstructured.Unstructured

	for _, rev := range revisions {
		config := FindParent(rev, snap[CategoryConfigurations])
		if config == nil {
			continue
		}

		svc := FindParent(config, snap[CategoryKsServices])
		if svc == nil {
			continue
		}

		if filter != nil && !filter(svc) {
			continue
		}

		for _, target := range Traffic(svc) {
			if target.RevisionName == rev.GetName() {
				kept = append(kept, rev)
				break
			}
		}
	}

	return kept
}
