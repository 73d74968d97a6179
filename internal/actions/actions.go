// Package actions issues the API mutations behind the console's
// drag-to-connect gestures: rewiring an event source or subscription to a new
// sink, and creating the trigger or subscription that backs a new pub/sub
// edge.
//
// Each operation builds one request payload and issues one call through the
// injected client; no state is kept between calls.
package actions

import (
	"context"
	"errors"
	"fmt"

	"github.com/go-logr/logr"
	"k8s.io/apimachinery/pkg/apis/meta/v1/unstructured"
	"k8s.io/apimachinery/pkg/util/rand"
	"sigs.k8s.io/controller-runtime/pkg/client"

	"github.com/anzersy/console/internal/state/resource"
)

// ErrInvalidConnection flags a connect request rejected before any API call
// is made.
var ErrInvalidConnection = errors.New("invalid connection")

// Actions issues the mutation verbs of the topology view.
type Actions struct {
	client   client.Client
	notifier Notifier
	logger   logr.Logger
}

// New creates an Actions issuing calls through the given client. Failures of
// the create verbs are reported through the notifier instead of being
// returned.
func New(cl client.Client, notifier Notifier, logger logr.Logger) *Actions {
	return &Actions{
		client:   cl,
		notifier: notifier,
		logger:   logger,
	}
}

// ConnectSourceToSink points the sink of an event source (or channel) at
// target and updates it. The target is either a regular addressable resource,
// referenced by apiVersion/kind/name, or a synthetic sink-uri resource,
// referenced by its URI. The source's status is stripped from the update
// payload. Transport errors propagate to the caller.
func (a *Actions) ConnectSourceToSink(ctx context.Context, source, target *unstructured.Unstructured) error {
	if err := validateConnection(source, target); err != nil {
		return err
	}

	updated := source.DeepCopy()
	unstructured.RemoveNestedField(updated.Object, "status")

	var sink map[string]any
	if uri := resource.SinkURI(target); uri != "" {
		sink = map[string]any{"uri": uri}
	} else {
		sink = map[string]any{"ref": objectReference(target)}
	}

	if err := unstructured.SetNestedMap(updated.Object, sink, "spec", "sink"); err != nil {
		return fmt.Errorf("failed to set sink on %s/%s: %w", source.GetNamespace(), source.GetName(), err)
	}

	if err := a.client.Update(ctx, updated); err != nil {
		return fmt.Errorf("failed to update %s %s/%s: %w",
			source.GetKind(), source.GetNamespace(), source.GetName(), err)
	}

	return nil
}

// ConnectSubscriberToSink points the subscriber of a trigger or subscription
// at target and updates it. Transport errors propagate to the caller.
func (a *Actions) ConnectSubscriberToSink(ctx context.Context, subscription, target *unstructured.Unstructured) error {
	if err := validateConnection(subscription, target); err != nil {
		return err
	}

	updated := subscription.DeepCopy()
	unstructured.RemoveNestedField(updated.Object, "status")

	ref := objectReference(target)
	if err := unstructured.SetNestedMap(updated.Object, ref, "spec", "subscriber", "ref"); err != nil {
		return fmt.Errorf("failed to set subscriber on %s/%s: %w",
			subscription.GetNamespace(), subscription.GetName(), err)
	}

	if err := a.client.Update(ctx, updated); err != nil {
		return fmt.Errorf("failed to update %s %s/%s: %w",
			subscription.GetKind(), subscription.GetNamespace(), subscription.GetName(), err)
	}

	return nil
}

// CreateTrigger creates a trigger subscribing service to broker, named after
// the broker with a random suffix, in the broker's namespace. A create
// failure is reported through the notifier and the call returns nil, nil; the
// console learns about the trigger, or its absence, from the next snapshot.
func (a *Actions) CreateTrigger(ctx context.Context, broker, service *unstructured.Unstructured) (*unstructured.Unstructured, error) {
	if broker == nil || service == nil {
		return nil, fmt.Errorf("%w: broker and service must be set", ErrInvalidConnection)
	}

	name := fmt.Sprintf("%s-trigger-%s", broker.GetName(), rand.String(5))
	trigger := resource.New(resource.EventingAPIVersion, resource.KindTrigger, broker.GetNamespace(), name)

	spec := map[string]any{
		"broker": broker.GetName(),
		"subscriber": map[string]any{
			"ref": objectReference(service),
		},
	}
	if err := unstructured.SetNestedMap(trigger.Object, spec, "spec"); err != nil {
		return nil, fmt.Errorf("failed to build trigger spec: %w", err)
	}

	if err := a.client.Create(ctx, trigger); err != nil {
		a.logger.Error(err, "Failed to create trigger", "broker", broker.GetName(), "service", service.GetName())
		a.notifier.NotifyError("TriggerCreateFailed", err.Error())
		return nil, nil
	}

	return trigger, nil
}

// CreateSubscription creates a subscription routing channel to service,
// named after the channel with a random suffix, in the channel's namespace.
// Failure reporting follows CreateTrigger.
func (a *Actions) CreateSubscription(ctx context.Context, channel, service *unstructured.Unstructured) (*unstructured.Unstructured, error) {
	if channel == nil || service == nil {
		return nil, fmt.Errorf("%w: channel and service must be set", ErrInvalidConnection)
	}

	name := fmt.Sprintf("%s-subscription-%s", channel.GetName(), rand.String(5))
	sub := resource.New(resource.MessagingAPIVersion, resource.KindSubscription, channel.GetNamespace(), name)

	spec := map[string]any{
		"channel": objectReference(channel),
		"subscriber": map[string]any{
			"ref": objectReference(service),
		},
	}
	if err := unstructured.SetNestedMap(sub.Object, spec, "spec"); err != nil {
		return nil, fmt.Errorf("failed to build subscription spec: %w", err)
	}

	if err := a.client.Create(ctx, sub); err != nil {
		a.logger.Error(err, "Failed to create subscription", "channel", channel.GetName(), "service", service.GetName())
		a.notifier.NotifyError("SubscriptionCreateFailed", err.Error())
		return nil, nil
	}

	return sub, nil
}

func validateConnection(source, target *unstructured.Unstructured) error {
	if source == nil || target == nil {
		return fmt.Errorf("%w: source and target must be set", ErrInvalidConnection)
	}

	if resource.ID(source) != "" && resource.ID(source) == resource.ID(target) {
		return fmt.Errorf("%w: source and target are the same resource", ErrInvalidConnection)
	}

	return nil
}

func objectReference(obj *unstructured.Unstructured) map[string]any {
	return map[string]any{
		"apiVersion": obj.GetAPIVersion(),
		"kind":       obj.GetKind(),
		"name":       obj.GetName(),
	}
}
