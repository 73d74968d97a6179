package resource

import (
	"k8s.io/apimachinery/pkg/apis/meta/v1/unstructured"
)

// TrafficTarget is one entry of a Knative service's status.traffic list.
type TrafficTarget struct {
	RevisionName   string
	Tag            string
	Percent        int64
	LatestRevision bool
}

// Destination is a sink or subscriber target: an object reference or a raw
// URI, never both.
type Destination struct {
	APIVersion string
	Kind       string
	Name       string
	URI        string
}

// IsURI reports whether the destination addresses a raw URI rather than an
// object reference.
func (d *Destination) IsURI() bool {
	return d.URI != ""
}

// Traffic reads the status.traffic list of a Knative service or route.
// Entries missing a revision name are kept as-is; callers that resolve
// revisions by name skip them naturally.
func Traffic(obj *unstructured.Unstructured) []TrafficTarget {
	entries, ok, err := unstructured.NestedSlice(obj.Object, "status", "traffic")
	if !ok || err != nil {
		return nil
	}

	targets := make([]TrafficTarget, 0, len(entries))

	for _, entry := range entries {
		fields, ok := entry.(map[string]any)
		if !ok {
			continue
		}

		var target TrafficTarget
		if name, ok := fields["revisionName"].(string); ok {
			target.RevisionName = name
		}
		if tag, ok := fields["tag"].(string); ok {
			target.Tag = tag
		}
		// A percent decodes as int64 from the API machinery codecs but as
		// float64 from generic JSON unmarshalers.
		switch percent := fields["percent"].(type) {
		case int64:
			target.Percent = percent
		case float64:
			target.Percent = int64(percent)
		}
		if latest, ok := fields["latestRevision"].(bool); ok {
			target.LatestRevision = latest
		}

		targets = append(targets, target)
	}

	return targets
}

// SinkDestination reads spec.sink of an event source or channel. Returns nil
// when no sink is declared.
func SinkDestination(obj *unstructured.Unstructured) *Destination {
	return destination(obj, "sink")
}

// Subscriber reads spec.subscriber of a trigger or subscription. Returns nil
// when no subscriber is declared.
func Subscriber(obj *unstructured.Unstructured) *Destination {
	return destination(obj, "subscriber")
}

// SinkURI reads spec.sinkUri, the marker field of a synthetic sink-uri
// resource. Empty for regular resources.
func SinkURI(obj *unstructured.Unstructured) string {
	uri, _, _ := unstructured.NestedString(obj.Object, "spec", "sinkUri")
	return uri
}

// BrokerName reads spec.broker of a trigger.
func BrokerName(obj *unstructured.Unstructured) string {
	name, _, _ := unstructured.NestedString(obj.Object, "spec", "broker")
	return name
}

// ChannelName reads spec.channel.name of a subscription.
func ChannelName(obj *unstructured.Unstructured) string {
	name, _, _ := unstructured.NestedString(obj.Object, "spec", "channel", "name")
	return name
}

func destination(obj *unstructured.Unstructured, field string) *Destination {
	if uri, ok, _ := unstructured.NestedString(obj.Object, "spec", field, "uri"); ok && uri != "" {
		return &Destination{URI: uri}
	}

	ref, ok, err := unstructured.NestedMap(obj.Object, "spec", field, "ref")
	if !ok || err != nil {
		return nil
	}

	var dest Destination
	if v, ok := ref["apiVersion"].(string); ok {
		dest.APIVersion = v
	}
	if v, ok := ref["kind"].(string); ok {
		dest.Kind = v
	}
	if v, ok := ref["name"].(string); ok {
		dest.Name = v
	}

	// A reference without a name cannot be resolved against anything.
	if dest.Name == "" {
		return nil
	}

	return &dest
}
