// Copyright 2024 kharf
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package main

import (
	"fmt"
	"io"
	"os"
	"runtime"
	"strings"

	"github.com/go-logr/logr"
	"github.com/go-logr/zapr"
	"github.com/google/go-cmp/cmp"
	"github.com/kharf/declcs/pkg/catalog"
	"github.com/kharf/declcs/pkg/constraint"
	"github.com/kharf/declcs/pkg/inventory"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/automaxprocs/maxprocs"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/yaml.v3"
)

var Version = "development"

const (
	membershipServiceKey = "membership_service"
	inventoryPathKey     = "inventory_path"
	workersKey           = "workers"
	logLevelKey          = "log_level"
)

func main() {
	if _, err := maxprocs.Set(); err != nil {
		fmt.Println(err)
	}
	cfg, err := initCliConfig()
	if err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
	root := initCli(cfg)
	if err := root.Build().Execute(); err != nil {
		os.Exit(1)
	}
}

// Settings are the resolved cli configuration values.
type Settings struct {
	MembershipService string
	InventoryPath     string
	Workers           int
	LogLevel          string
}

func loadSettings(cfg *viper.Viper) Settings {
	return Settings{
		MembershipService: cfg.GetString(membershipServiceKey),
		InventoryPath:     cfg.GetString(inventoryPathKey),
		Workers:           cfg.GetInt(workersKey),
		LogLevel:          cfg.GetString(logLevelKey),
	}
}

type RootCommandBuilder struct {
	config                *viper.Viper
	initCommandBuilder    InitCommandBuilder
	verifyCommandBuilder  VerifyCommandBuilder
	graphCommandBuilder   GraphCommandBuilder
	planCommandBuilder    PlanCommandBuilder
	commitCommandBuilder  CommitCommandBuilder
	versionCommandBuilder VersionCommandBuilder
}

func (builder RootCommandBuilder) Build() *cobra.Command {
	rootCmd := cobra.Command{
		Use:          "decl-cs",
		Short:        "Declarative Corosync/Pacemaker order constraints",
		SilenceUsage: true,
	}
	flags := rootCmd.PersistentFlags()
	flags.String(
		"membership-service",
		constraint.MembershipService,
		"Name of the cluster membership service every order constraint requires",
	)
	flags.String("inventory-path", ".declcs/inventory", "Directory holding the state snapshot of applied order constraints")
	flags.Int("workers", runtime.GOMAXPROCS(0), "Number of catalog packages built concurrently")
	flags.String("log-level", "info", "Log level, info or debug")
	for key, flag := range map[string]string{
		membershipServiceKey: "membership-service",
		inventoryPathKey:     "inventory-path",
		workersKey:           "workers",
		logLevelKey:          "log-level",
	} {
		_ = builder.config.BindPFlag(key, flags.Lookup(flag))
	}
	rootCmd.AddCommand(builder.initCommandBuilder.Build())
	rootCmd.AddCommand(builder.verifyCommandBuilder.Build())
	rootCmd.AddCommand(builder.graphCommandBuilder.Build())
	rootCmd.AddCommand(builder.planCommandBuilder.Build())
	rootCmd.AddCommand(builder.commitCommandBuilder.Build())
	rootCmd.AddCommand(builder.versionCommandBuilder.Build())
	return &rootCmd
}

type InitCommandBuilder struct{}

func (builder InitCommandBuilder) Build() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "init <module>",
		Short: "Init a catalog project in the current directory",
		Args:  cobra.ExactArgs(1),
		RunE: func(cobraCmd *cobra.Command, args []string) error {
			cwd, err := os.Getwd()
			if err != nil {
				return err
			}
			return catalog.Init(args[0], cwd)
		},
	}
	return cmd
}

// loader carries what every catalog reading command needs.
type loader struct {
	config *viper.Viper
}

func (l loader) load(args []string) (Settings, logr.Logger, *catalog.DependencyGraph, []catalog.Resource, error) {
	settings := loadSettings(l.config)
	log, err := initLogger(settings.LogLevel)
	if err != nil {
		return settings, logr.Discard(), nil, nil, err
	}
	projectPath := "."
	if len(args) > 0 {
		projectPath = args[0]
	}
	manager := catalog.NewManager(catalog.NewBuilder(), log, settings.Workers)
	graph, err := manager.Load(projectPath)
	if err != nil {
		return settings, log, nil, nil, err
	}
	sorted, err := graph.TopologicalSort(settings.MembershipService)
	if err != nil {
		return settings, log, nil, nil, err
	}
	log.V(1).Info("Loaded catalog", "project", projectPath, "resources", graph.Len())
	return settings, log, graph, sorted, nil
}

type VerifyCommandBuilder struct {
	loader loader
}

func (builder VerifyCommandBuilder) Build() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "verify [path]",
		Short: "Verify a catalog project, whether every resource is valid and the dependency graph is acyclic",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cobraCmd *cobra.Command, args []string) error {
			_, _, _, sorted, err := builder.loader.load(args)
			if err != nil {
				return err
			}
			orders := 0
			for _, resource := range sorted {
				if _, ok := resource.(*catalog.OrderResource); ok {
					orders++
				}
			}
			fmt.Fprintf(cobraCmd.OutOrStdout(), "Catalog is valid: %d resources, %d order constraints\n", len(sorted), orders)
			return nil
		},
	}
	return cmd
}

type GraphCommandBuilder struct {
	loader loader
}

type graphEntry struct {
	Resource     string   `yaml:"resource"`
	Dependencies []string `yaml:"dependencies"`
}

func (builder GraphCommandBuilder) Build() *cobra.Command {
	var output string
	cmd := &cobra.Command{
		Use:   "graph [path]",
		Short: "Print every resource with its resolved dependencies in apply order",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cobraCmd *cobra.Command, args []string) error {
			settings, _, graph, sorted, err := builder.loader.load(args)
			if err != nil {
				return err
			}
			entries := make([]graphEntry, 0, len(sorted))
			for _, resource := range sorted {
				deps, err := graph.Dependencies(resource, settings.MembershipService)
				if err != nil {
					return err
				}
				entry := graphEntry{
					Resource:     resource.GetRef().String(),
					Dependencies: make([]string, 0, len(deps)),
				}
				for _, dep := range deps {
					entry.Dependencies = append(entry.Dependencies, dep.String())
				}
				entries = append(entries, entry)
			}
			return writeGraph(cobraCmd.OutOrStdout(), output, entries)
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "text", "Output format, text or yaml")
	return cmd
}

func writeGraph(w io.Writer, output string, entries []graphEntry) error {
	switch output {
	case "yaml":
		encoder := yaml.NewEncoder(w)
		encoder.SetIndent(2)
		if err := encoder.Encode(entries); err != nil {
			return err
		}
		return encoder.Close()
	case "text":
		for _, entry := range entries {
			if len(entry.Dependencies) == 0 {
				fmt.Fprintln(w, entry.Resource)
				continue
			}
			fmt.Fprintf(w, "%s -> %s\n", entry.Resource, strings.Join(entry.Dependencies, ", "))
		}
		return nil
	}
	return fmt.Errorf("unknown output format %q", output)
}

type PlanCommandBuilder struct {
	loader loader
}

func (builder PlanCommandBuilder) Build() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "plan [path]",
		Short: "Compare the order constraints of a catalog project with the inventory",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cobraCmd *cobra.Command, args []string) error {
			settings, _, _, sorted, err := builder.loader.load(args)
			if err != nil {
				return err
			}
			storage, err := inventory.Instance{Path: settings.InventoryPath}.Load()
			if err != nil {
				return err
			}
			return writePlan(cobraCmd.OutOrStdout(), sorted, storage)
		},
	}
	return cmd
}

func writePlan(w io.Writer, sorted []catalog.Resource, storage *inventory.Storage) error {
	var created, updated, deleted int
	for _, resource := range sorted {
		orderResource, ok := resource.(*catalog.OrderResource)
		if !ok {
			continue
		}
		desired := orderResource.Order
		current := storage.Get(desired.Name)
		if desired.InSync(current) {
			continue
		}
		ref := desired.Ref().String()
		switch {
		case current == nil:
			created++
			fmt.Fprintf(w, "create %s\n", ref)
		case desired.Ensure == constraint.Absent:
			deleted++
			fmt.Fprintf(w, "delete %s\n", ref)
		default:
			updated++
			fmt.Fprintf(w, "update %s\n", ref)
			for _, change := range desired.Changes(current) {
				fmt.Fprintf(w, "  %s: %s => %s\n", change.Property, change.Current, change.Desired)
			}
			fmt.Fprint(w, cmp.Diff(inventory.NewOrderItem(current), inventory.NewOrderItem(desired)))
		}
	}
	fmt.Fprintf(w, "Plan: %d to create, %d to update, %d to delete.\n", created, updated, deleted)
	return nil
}

type CommitCommandBuilder struct {
	loader loader
}

func (builder CommitCommandBuilder) Build() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "commit [path]",
		Short: "Record the order constraints of a catalog project as the current state in the inventory",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cobraCmd *cobra.Command, args []string) error {
			settings, log, _, sorted, err := builder.loader.load(args)
			if err != nil {
				return err
			}
			instance := inventory.Instance{Path: settings.InventoryPath}
			for _, resource := range sorted {
				orderResource, ok := resource.(*catalog.OrderResource)
				if !ok {
					continue
				}
				order := orderResource.Order
				if order.Ensure == constraint.Absent {
					log.Info("Deleting order from inventory", "name", order.Name)
					if err := instance.Delete(order.Name); err != nil {
						return err
					}
					continue
				}
				log.Info("Storing order in inventory", "name", order.Name)
				if err := instance.Store(order); err != nil {
					return err
				}
			}
			return nil
		},
	}
	return cmd
}

type VersionCommandBuilder struct{}

func (builder VersionCommandBuilder) Build() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version of decl-cs",
		Args:  cobra.NoArgs,
		Run: func(cobraCmd *cobra.Command, args []string) {
			fmt.Fprintln(cobraCmd.OutOrStdout(), Version)
		},
	}
}

func initZap(level string) (*zap.Logger, error) {
	zapConfig := zap.NewDevelopmentConfig()
	zapConfig.OutputPaths = []string{"stderr"}
	switch level {
	case "debug":
		zapConfig.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
	case "info":
		zapConfig.Level = zap.NewAtomicLevelAt(zapcore.InfoLevel)
	default:
		return nil, fmt.Errorf("unknown log level %q", level)
	}
	return zapConfig.Build()
}

func initLogger(level string) (logr.Logger, error) {
	zapLog, err := initZap(level)
	if err != nil {
		return logr.Discard(), err
	}
	return zapr.NewLogger(zapLog), nil
}

func initCliConfig() (*viper.Viper, error) {
	config := viper.New()
	config.SetEnvPrefix("decl_cs")
	config.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	config.AutomaticEnv()
	return config, nil
}

func initCli(cliConfig *viper.Viper) *RootCommandBuilder {
	l := loader{config: cliConfig}
	return &RootCommandBuilder{
		config:               cliConfig,
		verifyCommandBuilder: VerifyCommandBuilder{loader: l},
		graphCommandBuilder:  GraphCommandBuilder{loader: l},
		planCommandBuilder:   PlanCommandBuilder{loader: l},
		commitCommandBuilder: CommitCommandBuilder{loader: l},
	}
}
