package actions_test

import (
	"testing"

	. "github.com/onsi/gomega"
	"k8s.io/client-go/tools/record"

	"github.com/anzersy/console/internal/actions"
	"github.com/anzersy/console/internal/state/resource"
)

func TestRecorderNotifier(t *testing.T) {
	t.Parallel()
	g := NewWithT(t)

	recorder := record.NewFakeRecorder(1)
	ref := resource.New("apps/v1", resource.KindDeployment, "console", "topology-console")

	notifier := actions.NewRecorderNotifier(recorder, ref)
	notifier.NotifyError("TriggerCreateFailed", "connection refused")

	var event string
	g.Expect(recorder.Events).To(Receive(&event))
	g.Expect(event).To(ContainSubstring("Warning"))
	g.Expect(event).To(ContainSubstring("TriggerCreateFailed"))
	g.Expect(event).To(ContainSubstring("connection refused"))
}
