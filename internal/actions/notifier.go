package actions

import (
	v1 "k8s.io/api/core/v1"
	"k8s.io/apimachinery/pkg/runtime"
	"k8s.io/client-go/tools/record"
)

//go:generate go run github.com/maxbrunsfeld/counterfeiter/v6 -generate

//counterfeiter:generate . Notifier

// Notifier reports a mutation failure to the user. Fire and forget; callers
// never learn whether the report was delivered.
type Notifier interface {
	NotifyError(title, message string)
}

// RecorderNotifier reports failures as warning Events recorded against a
// fixed reference object, typically the console's own Deployment, so they
// show up in the cluster's event stream.
type RecorderNotifier struct {
	recorder record.EventRecorder
	object   runtime.Object
}

// NewRecorderNotifier creates a RecorderNotifier attaching events to object.
func NewRecorderNotifier(recorder record.EventRecorder, object runtime.Object) *RecorderNotifier {
	return &RecorderNotifier{
		recorder: recorder,
		object:   object,
	}
}

// NotifyError records a warning event with the title as reason.
func (n *RecorderNotifier) NotifyError(title, message string) {
	n.recorder.Event(n.object, v1.EventTypeWarning, title, message)
}
