package manifests

import (
	"context"

	"github.com/anzersy/console/internal/state/resource"
)

// Provider is a snapshot provider backed by a manifest directory. The
// directory is re-read on every call, so edits show up on the next request.
type Provider struct {
	// Dir is the manifest directory.
	Dir string
}

// Snapshot loads the directory and keeps only resources in the given
// namespace. An empty namespace keeps everything.
func (p Provider) Snapshot(_ context.Context, namespace string) (resource.Snapshot, error) {
	snap, err := Load(p.Dir)
	if err != nil {
		return nil, err
	}

	if namespace == "" {
		return snap, nil
	}

	filtered := resource.Snapshot{}
	for category, objs := range snap {
		for _, obj := range objs {
			if obj.GetNamespace() == namespace {
				filtered[category] = append(filtered[category], obj)
			}
		}
	}

	return filtered, nil
}
