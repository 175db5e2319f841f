// Copyright 2024 Workflow Generator Project
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
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/your-org/workflow-generator/internal/generator"
	"github.com/your-org/workflow-generator/internal/workflow"
)

// Generator is the generation service driven by the commands
type Generator interface {
	SuggestTools(ctx context.Context, query string) ([]workflow.ToolRecommendation, generator.Outcome)
	AnalyzeTabs(ctx context.Context, tabs []workflow.TabInfo) (string, generator.Outcome)
	GenerateWorkflow(ctx context.Context, query, userContext string) (*workflow.Plan, generator.Outcome)
	OptimizeWorkflow(ctx context.Context, summary string) ([]string, generator.Outcome)
}

// generatorLoader builds a Generator and a cleanup function
type generatorLoader func(configPath string, verbose bool) (Generator, func(), error)

// output is what every command prints
type output struct {
	Result interface{} `json:"result"`
	Source string      `json:"source"`
	Reason string      `json:"reason,omitempty"`
}

type rootOptions struct {
	configPath string
	pretty     bool
	verbose    bool
}

func newRootCmd(load generatorLoader) *cobra.Command {
	opts := &rootOptions{}

	rootCmd := &cobra.Command{
		Use:           "workflowctl",
		Short:         "Generate workflow plans, tool suggestions and optimizations",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.PersistentFlags().StringVarP(&opts.configPath, "config", "c", "", "Path to configuration file")
	rootCmd.PersistentFlags().BoolVarP(&opts.pretty, "pretty", "p", false, "Indent JSON output")
	rootCmd.PersistentFlags().BoolVarP(&opts.verbose, "verbose", "v", false, "Log at the configured level instead of warn")

	rootCmd.AddCommand(
		newPlanCmd(opts, load),
		newToolsCmd(opts, load),
		newOptimizeCmd(opts, load),
		newTabsCmd(opts, load),
	)
	return rootCmd
}

func newPlanCmd(opts *rootOptions, load generatorLoader) *cobra.Command {
	var userContext string

	cmd := &cobra.Command{
		Use:   "plan <goal>",
		Short: "Generate a step-by-step workflow plan",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			query, err := joinQuery(args)
			if err != nil {
				return err
			}
			return run(cmd, opts, load, func(ctx context.Context, g Generator) (interface{}, generator.Outcome) {
				return g.GenerateWorkflow(ctx, query, userContext)
			})
		},
	}
	cmd.Flags().StringVar(&userContext, "context", "", "Additional context about the user or situation")
	return cmd
}

func newToolsCmd(opts *rootOptions, load generatorLoader) *cobra.Command {
	return &cobra.Command{
		Use:   "tools <task>",
		Short: "Recommend tools for a task",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			query, err := joinQuery(args)
			if err != nil {
				return err
			}
			return run(cmd, opts, load, func(ctx context.Context, g Generator) (interface{}, generator.Outcome) {
				return g.SuggestTools(ctx, query)
			})
		},
	}
}

func newOptimizeCmd(opts *rootOptions, load generatorLoader) *cobra.Command {
	return &cobra.Command{
		Use:   "optimize <workflow summary>",
		Short: "Suggest optimizations for a workflow",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			summary, err := joinQuery(args)
			if err != nil {
				return err
			}
			return run(cmd, opts, load, func(ctx context.Context, g Generator) (interface{}, generator.Outcome) {
				return g.OptimizeWorkflow(ctx, summary)
			})
		},
	}
}

func newTabsCmd(opts *rootOptions, load generatorLoader) *cobra.Command {
	var rawTabs []string

	cmd := &cobra.Command{
		Use:   "tabs",
		Short: "Give a productivity insight about open tabs",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			tabs := make([]workflow.TabInfo, 0, len(rawTabs))
			for _, raw := range rawTabs {
				tab, err := parseTab(raw)
				if err != nil {
					return err
				}
				tabs = append(tabs, tab)
			}
			return run(cmd, opts, load, func(ctx context.Context, g Generator) (interface{}, generator.Outcome) {
				return g.AnalyzeTabs(ctx, tabs)
			})
		},
	}
	cmd.Flags().StringArrayVarP(&rawTabs, "tab", "t", nil, `Open tab as "title|url|category" (repeatable)`)
	return cmd
}

func run(cmd *cobra.Command, opts *rootOptions, load generatorLoader, call func(context.Context, Generator) (interface{}, generator.Outcome)) error {
	g, cleanup, err := load(opts.configPath, opts.verbose)
	if err != nil {
		return err
	}
	if cleanup != nil {
		defer cleanup()
	}

	result, outcome := call(cmd.Context(), g)
	return writeOutput(cmd.OutOrStdout(), output{
		Result: result,
		Source: string(outcome.Source),
		Reason: outcome.Reason.String(),
	}, opts.pretty)
}

func writeOutput(w io.Writer, out output, pretty bool) error {
	encoder := json.NewEncoder(w)
	if pretty {
		encoder.SetIndent("", "  ")
	}
	if err := encoder.Encode(out); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

func joinQuery(args []string) (string, error) {
	query := strings.TrimSpace(strings.Join(args, " "))
	if query == "" {
		return "", fmt.Errorf("query cannot be empty")
	}
	return query, nil
}

// parseTab reads "title|url|category". Missing trailing fields are empty.
func parseTab(raw string) (workflow.TabInfo, error) {
	parts := strings.SplitN(raw, "|", 3)
	tab := workflow.TabInfo{Title: strings.TrimSpace(parts[0])}
	if len(parts) > 1 {
		tab.URL = strings.TrimSpace(parts[1])
	}
	if len(parts) > 2 {
		tab.Category = strings.TrimSpace(parts[2])
	}
	if tab.Title == "" && tab.URL == "" {
		return workflow.TabInfo{}, fmt.Errorf("invalid tab %q: title or url is required", raw)
	}
	return tab, nil
}
