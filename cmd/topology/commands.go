package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/go-logr/logr"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"go.uber.org/zap"
	v1 "k8s.io/api/core/v1"
	"k8s.io/client-go/kubernetes"
	"k8s.io/client-go/kubernetes/scheme"
	typedcorev1 "k8s.io/client-go/kubernetes/typed/core/v1"
	"k8s.io/client-go/tools/record"
	"k8s.io/klog/v2"
	ctlr "sigs.k8s.io/controller-runtime"
	"sigs.k8s.io/controller-runtime/pkg/client"
	ctlrConfig "sigs.k8s.io/controller-runtime/pkg/client/config"
	"sigs.k8s.io/controller-runtime/pkg/log"
	ctlrZap "sigs.k8s.io/controller-runtime/pkg/log/zap"
	"sigs.k8s.io/yaml"

	"github.com/anzersy/console/internal/actions"
	"github.com/anzersy/console/internal/config"
	"github.com/anzersy/console/internal/manifests"
	"github.com/anzersy/console/internal/metrics"
	"github.com/anzersy/console/internal/server"
	"github.com/anzersy/console/internal/state/graph"
	"github.com/anzersy/console/internal/state/resource"
)

func createRootCommand() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "topology",
		Short:         "Topology graph service for the Knative console",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return cmd.Help()
		},
	}

	return rootCmd
}

func createServeCommand() *cobra.Command {
	// flag names
	const (
		manifestDirFlag         = "manifest-dir"
		portFlag                = "port"
		metricsDisableFlag      = "metrics-disable"
		allowedOriginFlag       = "allowed-origin"
		eventSourceCategoryFlag = "event-source-category"
		channelCategoryFlag     = "channel-category"
	)

	// flag values
	var (
		manifestDir = stringValidatingValue{
			validator: validatePath,
		}
		port = intValidatingValue{
			validator: validatePort,
			value:     8080,
		}
		disableMetrics        bool
		allowedOrigins        []string
		eventSourceCategories []string
		channelCategories     []string
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the topology API over HTTP",
		RunE: func(cmd *cobra.Command, _ []string) error {
			atom := zap.NewAtomicLevel()

			logger := ctlrZap.New(ctlrZap.Level(atom))
			klog.SetLogger(logger)
			log.SetLogger(logger)

			flagKeys, flagValues := parseFlags(cmd.Flags())
			logger.Info("Starting topology service",
				"version", version,
				"flags", flagKeys,
				"values", flagValues,
			)

			for _, origin := range allowedOrigins {
				if err := validateOrigin(origin); err != nil {
					return fmt.Errorf("error validating allowed origins: %w", err)
				}
			}

			categories := make([]string, 0, len(eventSourceCategories)+len(channelCategories))
			categories = append(categories, eventSourceCategories...)
			categories = append(categories, channelCategories...)
			for _, key := range categories {
				if err := validateCategoryKey(key); err != nil {
					return fmt.Errorf("error validating categories: %w", err)
				}
			}

			conf := config.Config{
				Version:     version,
				Logger:      logger,
				AtomicLevel: atom,
				ManifestDir: manifestDir.value,
				HTTP: config.HTTPConfig{
					Port:           port.value,
					AllowedOrigins: allowedOrigins,
				},
				Metrics: config.MetricsConfig{
					Enabled: !disableMetrics,
				},
				Graph: config.GraphConfig{
					EventSourceCategories: eventSourceCategories,
					ChannelCategories:     channelCategories,
				},
			}

			var recorder metrics.GraphRecorder = metrics.NewGraphNoopCollector()
			if conf.Metrics.Enabled {
				collector := metrics.NewGraphCollector(map[string]string{"version": version})
				if err := prometheus.Register(collector); err != nil {
					return fmt.Errorf("failed to register metrics collector: %w", err)
				}
				recorder = collector
			}

			srv := server.New(
				conf,
				manifests.Provider{Dir: conf.ManifestDir},
				buildConnector(logger),
				recorder,
				logger,
			)

			return srv.ListenAndServe(ctlr.SetupSignalHandler())
		},
	}

	cmd.Flags().Var(
		&manifestDir,
		manifestDirFlag,
		"The directory the resource snapshot is loaded from.",
	)
	cmd.Flags().Var(
		&port,
		portFlag,
		"Port for the topology API.",
	)
	cmd.Flags().BoolVar(
		&disableMetrics,
		metricsDisableFlag,
		false,
		"Disable the /metrics endpoint.",
	)
	cmd.Flags().StringArrayVar(
		&allowedOrigins,
		allowedOriginFlag,
		nil,
		"CORS origin of the console front end. Repeatable; when unset every origin is allowed.",
	)
	cmd.Flags().StringSliceVar(
		&eventSourceCategories,
		eventSourceCategoryFlag,
		nil,
		"Snapshot category scanned for event sources, e.g. pingsources.sources.knative.dev. "+
			"Repeatable; when unset categories are discovered from the snapshot.",
	)
	cmd.Flags().StringSliceVar(
		&channelCategories,
		channelCategoryFlag,
		nil,
		"Snapshot category scanned for channels, e.g. inmemorychannels.messaging.knative.dev. "+
			"Repeatable; when unset categories are discovered from the snapshot.",
	)

	_ = cmd.MarkFlagRequired(manifestDirFlag)

	return cmd
}

// parseFlags returns the flag names alongside whether each was left at its
// default, so startup logs never leak user-supplied values.
func parseFlags(flags *pflag.FlagSet) ([]string, []string) {
	var flagKeys, flagValues []string

	flags.VisitAll(
		func(flag *pflag.Flag) {
			flagKeys = append(flagKeys, flag.Name)

			if flag.Value.Type() == "bool" {
				flagValues = append(flagValues, flag.Value.String())
			} else {
				val := "user-defined"
				if flag.Value.String() == flag.DefValue {
					val = "default"
				}

				flagValues = append(flagValues, val)
			}
		},
	)

	return flagKeys, flagValues
}

// buildConnector wires the mutation verbs to the cluster. Without a reachable
// Kubernetes API the topology is served read-only.
func buildConnector(logger logr.Logger) server.Connector {
	restCfg, err := ctlrConfig.GetConfig()
	if err != nil {
		logger.Info("Kubernetes API not configured; serving topology read-only", "reason", err.Error())
		return nil
	}

	cl, err := client.New(restCfg, client.Options{})
	if err != nil {
		logger.Error(err, "Failed to create Kubernetes client; serving topology read-only")
		return nil
	}

	clientset, err := kubernetes.NewForConfig(restCfg)
	if err != nil {
		logger.Error(err, "Failed to create Kubernetes clientset; serving topology read-only")
		return nil
	}

	broadcaster := record.NewBroadcaster()
	broadcaster.StartRecordingToSink(&typedcorev1.EventSinkImpl{Interface: clientset.CoreV1().Events("")})
	recorder := broadcaster.NewRecorder(scheme.Scheme, v1.EventSource{Component: "topology-console"})

	namespace := os.Getenv("POD_NAMESPACE")
	if namespace == "" {
		namespace = "default"
	}
	ref := resource.New("apps/v1", resource.KindDeployment, namespace, "topology-console")

	return actions.New(cl, actions.NewRecorderNotifier(recorder, ref), logger)
}

func createRenderCommand() *cobra.Command {
	const (
		manifestDirFlag = "manifest-dir"
		namespaceFlag   = "namespace"
		formatFlag      = "format"
	)

	var (
		manifestDir = stringValidatingValue{
			validator: validatePath,
		}
		namespace string
		format    = stringValidatingValue{
			validator: validateFormat,
			value:     "json",
		}
	)

	cmd := &cobra.Command{
		Use:   "render",
		Short: "Build the topology graph from a manifest directory and print it",
		RunE: func(cmd *cobra.Command, _ []string) error {
			snap, err := manifests.Provider{Dir: manifestDir.value}.Snapshot(cmd.Context(), namespace)
			if err != nil {
				return err
			}

			sources, channels := resource.DiscoverCategories(snap)
			built := graph.BuildGraph(snap, graph.Options{
				EventSourceCategories: sources,
				ChannelCategories:     channels,
			})

			data, err := json.MarshalIndent(built, "", "  ")
			if err != nil {
				return fmt.Errorf("failed to encode graph: %w", err)
			}

			if format.value == "yaml" {
				if data, err = yaml.JSONToYAML(data); err != nil {
					return fmt.Errorf("failed to convert graph to YAML: %w", err)
				}
			}

			_, err = fmt.Fprintln(cmd.OutOrStdout(), string(data))
			return err
		},
	}

	cmd.Flags().Var(
		&manifestDir,
		manifestDirFlag,
		"The directory the resource snapshot is loaded from.",
	)
	cmd.Flags().StringVar(
		&namespace,
		namespaceFlag,
		"",
		"Keep only resources in this namespace. Empty keeps everything.",
	)
	cmd.Flags().Var(
		&format,
		formatFlag,
		"Output format (json|yaml).",
	)

	_ = cmd.MarkFlagRequired(manifestDirFlag)

	return cmd
}
