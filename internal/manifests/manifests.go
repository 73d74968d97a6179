// Package manifests loads a resource snapshot from a directory of YAML or
// JSON manifests. It backs the offline render command and the
// directory-backed snapshot provider; in a deployed console the snapshot
// comes from the watch-based data layer instead.
package manifests

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"k8s.io/apimachinery/pkg/apis/meta/v1/unstructured"
	"k8s.io/apimachinery/pkg/runtime/schema"
	"sigs.k8s.io/yaml"

	"github.com/anzersy/console/internal/state/resource"
)

var documentSeparator = regexp.MustCompile(`(?m)^---\s*$`)

// Load walks dir and decodes every .yaml, .yml and .json file into a
// snapshot, keyed by the category inferred from each object's group and kind.
// Objects of kinds the topology does not understand are skipped. Files are
// visited in lexical order, so identical directories load into identical
// snapshots.
func Load(dir string) (resource.Snapshot, error) {
	snap := resource.Snapshot{}

	err := filepath.WalkDir(dir, func(path string, entry fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if entry.IsDir() {
			return nil
		}

		switch filepath.Ext(path) {
		case ".yaml", ".yml", ".json":
		default:
			return nil
		}

		data, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("failed to read manifest %s: %w", path, err)
		}

		if err := appendDocuments(snap, data); err != nil {
			return fmt.Errorf("failed to decode manifest %s: %w", path, err)
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	return snap, nil
}

func appendDocuments(snap resource.Snapshot, data []byte) error {
	for _, doc := range documentSeparator.Split(string(data), -1) {
		if strings.TrimSpace(doc) == "" {
			continue
		}

		jsonData, err := yaml.YAMLToJSON([]byte(doc))
		if err != nil {
			return err
		}

		obj := &unstructured.Unstructured{}
		if _, _, err := unstructured.UnstructuredJSONScheme.Decode(jsonData, nil, obj); err != nil {
			return err
		}

		category := categoryFor(obj)
		if category == "" {
			continue
		}

		snap[category] = append(snap[category], obj)
	}

	return nil
}

// categoryFor maps an object to its snapshot category. Event-source and
// channel kinds map to dynamic GVR-style categories; kinds outside the
// topology's vocabulary map to "".
func categoryFor(obj *unstructured.Unstructured) string {
	gv, err := schema.ParseGroupVersion(obj.GetAPIVersion())
	if err != nil {
		return ""
	}

	kind := obj.GetKind()

	switch gv.Group {
	case "serving.knative.dev":
		switch kind {
		case resource.KindService:
			return resource.CategoryKsServices
		case resource.KindConfiguration:
			return resource.CategoryConfigurations
		case resource.KindRevision:
			return resource.CategoryRevisions
		case resource.KindRoute:
			return resource.CategoryKsRoutes
		}
	case "eventing.knative.dev":
		switch kind {
		case resource.KindBroker:
			return resource.CategoryBrokers
		case resource.KindTrigger:
			return resource.CategoryTriggers
		}
	case resource.MessagingGroup:
		if kind == resource.KindSubscription {
			return resource.CategorySubscriptions
		}
		return dynamicCategory(kind, gv.Group)
	case resource.SourcesGroup:
		return dynamicCategory(kind, gv.Group)
	case "apps":
		switch kind {
		case resource.KindDeployment:
			return resource.CategoryDeployments
		case resource.KindReplicaSet:
			return resource.CategoryReplicaSets
		}
	case "":
		switch kind {
		case resource.KindPod:
			return resource.CategoryPods
		case resource.KindService:
			return resource.CategoryServices
		}
	case "route.openshift.io":
		if kind == resource.KindRoute {
			return resource.CategoryRoutes
		}
	case "build.openshift.io":
		switch kind {
		case resource.KindBuildConfig:
			return resource.CategoryBuildConfigs
		case resource.KindBuild:
			return resource.CategoryBuilds
		}
	}

	return ""
}

func dynamicCategory(kind, group string) string {
	return strings.ToLower(kind) + "s." + group
}
