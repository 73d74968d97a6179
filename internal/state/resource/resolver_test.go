package resource_test

import (
	"testing"

	. "github.com/onsi/gomega"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/apimachinery/pkg/apis/meta/v1/unstructured"
	"k8s.io/apimachinery/pkg/types"

	"github.com/anzersy/console/internal/state/resource"
)

func newResource(apiVersion, kind, name, uid string) *unstructured.Unstructured {
	res := resource.New(apiVersion, kind, "test", name)
	res.SetUID(types.UID(uid))
	return res
}

func newServingResource(kind, name, uid string) *unstructured.Unstructured {
	return newResource(resource.ServingAPIVersion, kind, name, uid)
}

func ownedBy(res *unstructured.Unstructured, owners ...*unstructured.Unstructured) *unstructured.Unstructured {
	refs := make([]metav1.OwnerReference, 0, len(owners))
	for _, owner := range owners {
		refs = append(refs, metav1.OwnerReference{
			APIVersion: owner.GetAPIVersion(),
			Kind:       owner.GetKind(),
			Name:       owner.GetName(),
			UID:        owner.GetUID(),
		})
	}
	res.SetOwnerReferences(refs)

	return res
}

func setTraffic(svc *unstructured.Unstructured, targets ...map[string]any) *unstructured.Unstructured {
	entries := make([]any, 0, len(targets))
	for _, target := range targets {
		entries = append(entries, target)
	}
	if err := unstructured.SetNestedSlice(svc.Object, entries, "status", "traffic"); err != nil {
		panic(err)
	}

	return svc
}

func TestFindParent(t *testing.T) {
	t.Parallel()

	parentA := newServingResource(resource.KindService, "parent-a", "uid-a")
	parentB := newServingResource(resource.KindService, "parent-b", "uid-b")
	stranger := newServingResource(resource.KindService, "stranger", "uid-s")

	tests := []struct {
		res        *unstructured.Unstructured
		expected   *unstructured.Unstructured
		name       string
		candidates []*unstructured.Unstructured
	}{
		{
			name:       "no owner references",
			res:        newServingResource(resource.KindConfiguration, "orphan", "uid-o"),
			candidates: []*unstructured.Unstructured{parentA, parentB},
			expected:   nil,
		},
		{
			name:       "owner among candidates",
			res:        ownedBy(newServingResource(resource.KindConfiguration, "child", "uid-c"), parentA),
			candidates: []*unstructured.Unstructured{stranger, parentA},
			expected:   parentA,
		},
		{
			name:       "owner absent from candidates",
			res:        ownedBy(newServingResource(resource.KindConfiguration, "child", "uid-c"), parentA),
			candidates: []*unstructured.Unstructured{stranger, parentB},
			expected:   nil,
		},
		{
			name:       "multiple matching candidates returns the first in candidate order",
			res:        ownedBy(newServingResource(resource.KindConfiguration, "child", "uid-c"), parentA, parentB),
			candidates: []*unstructured.Unstructured{parentB, parentA},
			expected:   parentB,
		},
		{
			name:       "nil resource",
			res:        nil,
			candidates: []*unstructured.Unstructured{parentA},
			expected:   nil,
		},
		{
			name:     "no candidates",
			res:      ownedBy(newServingResource(resource.KindConfiguration, "child", "uid-c"), parentA),
			expected: nil,
		},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			t.Parallel()
			g := NewWithT(t)

			parent := resource.FindParent(test.res, test.candidates)

			if test.expected == nil {
				g.Expect(parent).To(BeNil())
			} else {
				g.Expect(parent).To(BeIdenticalTo(test.expected))
			}
		})
	}
}

func TestFindOwned(t *testing.T) {
	t.Parallel()

	parent := newServingResource(resource.KindService, "parent", "uid-p")
	other := newServingResource(resource.KindService, "other", "uid-x")

	owned1 := ownedBy(newServingResource(resource.KindConfiguration, "owned-1", "uid-1"), parent)
	owned2 := ownedBy(newServingResource(resource.KindConfiguration, "owned-2", "uid-2"), other, parent)
	noise := ownedBy(newServingResource(resource.KindConfiguration, "noise", "uid-3"), other)
	orphan := newServingResource(resource.KindConfiguration, "orphan", "uid-4")

	tests := []struct {
		parent     *unstructured.Unstructured
		name       string
		candidates []*unstructured.Unstructured
		expected   []*unstructured.Unstructured
	}{
		{
			name:       "returns owned candidates in candidate order",
			parent:     parent,
			candidates: []*unstructured.Unstructured{owned1, noise, owned2, orphan},
			expected:   []*unstructured.Unstructured{owned1, owned2},
		},
		{
			name:       "nothing owned",
			parent:     parent,
			candidates: []*unstructured.Unstructured{noise, orphan},
			expected:   nil,
		},
		{
			name:       "nil parent",
			parent:     nil,
			candidates: []*unstructured.Unstructured{owned1},
			expected:   nil,
		},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			t.Parallel()
			g := NewWithT(t)

			owned := resource.FindOwned(test.parent, test.candidates)
			g.Expect(owned).To(Equal(test.expected))
		})
	}
}

func TestFilterRevisions(t *testing.T) {
	t.Parallel()

	svc := setTraffic(
		newServingResource(resource.KindService, "svc", "uid-svc"),
		map[string]any{"revisionName": "rev-1", "percent": int64(100)},
	)
	config := ownedBy(newServingResource(resource.KindConfiguration, "config", "uid-config"), svc)

	revInTraffic := ownedBy(newServingResource(resource.KindRevision, "rev-1", "uid-rev-1"), config)
	revNoTraffic := ownedBy(newServingResource(resource.KindRevision, "rev-2", "uid-rev-2"), config)
	revOrphan := newServingResource(resource.KindRevision, "rev-3", "uid-rev-3")

	snap := resource.Snapshot{
		resource.CategoryKsServices:     {svc},
		resource.CategoryConfigurations: {config},
	}

	revisions := []*unstructured.Unstructured{revInTraffic, revNoTraffic, revOrphan}

	tests := []struct {
		filter   resource.GroupFilter
		name     string
		expected []*unstructured.Unstructured
	}{
		{
			name:     "nil filter keeps revisions routed by their service",
			filter:   nil,
			expected: []*unstructured.Unstructured{revInTraffic},
		},
		{
			name:     "admitting filter keeps revisions routed by their service",
			filter:   func(*unstructured.Unstructured) bool { return true },
			expected: []*unstructured.Unstructured{revInTraffic},
		},
		{
			name:     "rejecting filter drops everything",
			filter:   func(*unstructured.Unstructured) bool { return false },
			expected: nil,
		},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			t.Parallel()
			g := NewWithT(t)

			kept := resource.FilterRevisions(revisions, snap, test.filter)
			g.Expect(kept).To(Equal(test.expected))
		})
	}
}
