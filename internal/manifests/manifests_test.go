package manifests_test

import (
	"os"
	"path/filepath"
	"testing"

	. "github.com/onsi/gomega"

	"github.com/anzersy/console/internal/manifests"
	"github.com/anzersy/console/internal/state/resource"
)

const servingManifest = `apiVersion: serving.knative.dev/v1
kind: Service
metadata:
  name: greeter
  namespace: demo
  uid: uid-greeter
status:
  traffic:
  - revisionName: greeter-00001
    percent: 100
---
apiVersion: serving.knative.dev/v1
kind: Revision
metadata:
  name: greeter-00001
  namespace: demo
  uid: uid-rev
`

const eventingManifest = `apiVersion: sources.knative.dev/v1
kind: PingSource
metadata:
  name: ticker
  namespace: demo
  uid: uid-ticker
spec:
  sink:
    uri: http://ext
---
apiVersion: messaging.knative.dev/v1
kind: InMemoryChannel
metadata:
  name: updates
  namespace: demo
  uid: uid-updates
---
apiVersion: messaging.knative.dev/v1
kind: Subscription
metadata:
  name: updates-sub
  namespace: demo
  uid: uid-sub
---
apiVersion: v1
kind: ConfigMap
metadata:
  name: ignored
`

func writeFile(t *testing.T, dir, name, content string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}
}

func TestLoad(t *testing.T) {
	t.Parallel()
	g := NewWithT(t)

	dir := t.TempDir()
	writeFile(t, dir, "eventing.yaml", eventingManifest)
	writeFile(t, dir, "serving.yaml", servingManifest)
	writeFile(t, dir, "notes.txt", "not a manifest")

	snap, err := manifests.Load(dir)
	g.Expect(err).ToNot(HaveOccurred())

	g.Expect(snap[resource.CategoryKsServices]).To(HaveLen(1))
	g.Expect(snap[resource.CategoryRevisions]).To(HaveLen(1))
	g.Expect(snap[resource.CategorySubscriptions]).To(HaveLen(1))
	g.Expect(snap["pingsources."+resource.SourcesGroup]).To(HaveLen(1))
	g.Expect(snap["inmemorychannels."+resource.MessagingGroup]).To(HaveLen(1))

	// The ConfigMap is outside the topology vocabulary and is dropped.
	total := 0
	for _, objs := range snap {
		total += len(objs)
	}
	g.Expect(total).To(Equal(5))

	svc := snap[resource.CategoryKsServices][0]
	g.Expect(svc.GetName()).To(Equal("greeter"))

	// Traffic percents must decode as integers for the graph build to read them.
	traffic := resource.Traffic(svc)
	g.Expect(traffic).To(HaveLen(1))
	g.Expect(traffic[0].Percent).To(BeEquivalentTo(100))

	sources, channels := resource.DiscoverCategories(snap)
	g.Expect(sources).To(Equal([]string{"pingsources." + resource.SourcesGroup}))
	g.Expect(channels).To(Equal([]string{"inmemorychannels." + resource.MessagingGroup}))
}

func TestLoadInvalidManifest(t *testing.T) {
	t.Parallel()
	g := NewWithT(t)

	dir := t.TempDir()
	writeFile(t, dir, "broken.yaml", "kind: [not\tvalid")

	_, err := manifests.Load(dir)
	g.Expect(err).To(HaveOccurred())
}

func TestLoadMissingDir(t *testing.T) {
	t.Parallel()
	g := NewWithT(t)

	_, err := manifests.Load(filepath.Join(t.TempDir(), "absent"))
	g.Expect(err).To(HaveOccurred())
}
