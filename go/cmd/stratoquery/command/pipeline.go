// Copyright 2025 StratoDoc, Inc.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
// http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package command

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"github.com/stratodoc/stratodoc/go/elements"
	"github.com/stratodoc/stratodoc/go/queryexec"
	"github.com/stratodoc/stratodoc/go/queryexec/aggregate"
	"github.com/stratodoc/stratodoc/go/queryexec/fakesource"
)

// pageReport is one drained page, rendered for inspection.
type pageReport struct {
	Elements          []string `json:"elements" yaml:"elements"`
	RequestCharge     float64  `json:"requestCharge" yaml:"requestCharge"`
	ActivityID        string   `json:"activityId,omitempty" yaml:"activityId,omitempty"`
	ContinuationToken string   `json:"continuationToken,omitempty" yaml:"continuationToken,omitempty"`
	FailureKind       string   `json:"failureKind,omitempty" yaml:"failureKind,omitempty"`
}

// simulationReport is the full trace of one pipeline run.
type simulationReport struct {
	Pages      []pageReport `json:"pages" yaml:"pages"`
	FinalState string       `json:"finalState,omitempty" yaml:"finalState,omitempty"`
}

func (a *App) pipelineCommand() *cobra.Command {
	pipeline := &cobra.Command{
		Use:   "pipeline",
		Short: "Simulate operator pipelines over canned pages",
	}

	var (
		offset   int64
		limit    int64
		aggKind  string
		resume   string
		maxItems int
	)
	simulate := &cobra.Command{
		Use:   "simulate <pages.json>",
		Short: "Run a skip/take/aggregate pipeline over pages from a JSON file",
		Long: `Simulate composes compute operators over an in-memory source serving the
pages in the given file (a JSON array of pages, each an array of elements),
drains the pipeline to exhaustion and prints every page plus the final
serialized state. Operators nest aggregate innermost, then skip, then take.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			pages, err := a.loadPages(args[0])
			if err != nil {
				return err
			}

			var resumeToken elements.Element
			if resume != "" {
				resumeToken, err = elements.ParseString(resume)
				if err != nil {
					return fmt.Errorf("invalid resume token: %w", err)
				}
			}

			ctx := cmd.Context()
			root, err := buildPipeline(ctx, pages, aggKind, offset, limit, resumeToken)
			if err != nil {
				return err
			}

			report := &simulationReport{Pages: []pageReport{}}
			for !root.IsDone() {
				page, err := root.Drain(ctx, maxItems)
				if err != nil {
					return err
				}
				rendered, err := renderPage(page)
				if err != nil {
					return err
				}
				report.Pages = append(report.Pages, *rendered)
				if !page.Succeeded() {
					slog.Warn("pipeline surfaced a failed page", "kind", page.Failure.Kind)
					break
				}
			}

			if state, err := root.SerializeState(); err == nil {
				report.FinalState, err = elements.MarshalString(state)
				if err != nil {
					return err
				}
			}
			return a.render(cmd, report)
		},
	}
	simulate.Flags().Int64Var(&offset, "offset", -1, "Skip this many elements (-1 disables the operator)")
	simulate.Flags().Int64Var(&limit, "limit", -1, "Take at most this many elements (-1 disables the operator)")
	simulate.Flags().StringVar(&aggKind, "aggregate", "", "Aggregate the rows with this function (SUM, COUNT, MIN, MAX, AVG)")
	simulate.Flags().StringVar(&resume, "resume", "", "Resume from a serialized pipeline state")
	simulate.Flags().IntVar(&maxItems, "max-items", 100, "Maximum elements requested per drain")

	pipeline.AddCommand(simulate)
	return pipeline
}

// loadPages reads a JSON array of pages, each itself an array of elements.
func (a *App) loadPages(path string) ([][]elements.Element, error) {
	data, err := afero.ReadFile(a.fs, path)
	if err != nil {
		return nil, err
	}
	parsed, err := elements.Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	outer, ok := parsed.(elements.Array)
	if !ok {
		return nil, fmt.Errorf("%s: want an array of pages, got %v", path, parsed.Kind())
	}
	pages := make([][]elements.Element, 0, len(outer))
	for i, page := range outer {
		inner, ok := page.(elements.Array)
		if !ok {
			return nil, fmt.Errorf("%s: page %d is a %v, not an array", path, i, page.Kind())
		}
		pages = append(pages, inner)
	}
	return pages, nil
}

// buildPipeline nests the requested operators over a fake source, innermost
// first, and constructs the tree from the resume token.
func buildPipeline(ctx context.Context, pages [][]elements.Element, aggKind string, offset, limit int64, token elements.Element) (queryexec.Component, error) {
	factory := fakesource.Factory(pages)

	if aggKind != "" {
		kind, err := aggregate.ParseKind(aggKind)
		if err != nil {
			return nil, err
		}
		specs := []aggregate.AliasSpec{{Alias: "$1", Kind: kind}}
		inner := factory
		factory = func(ctx context.Context, token elements.Element) (queryexec.Component, error) {
			return queryexec.NewComputeAggregate(ctx, specs, true, token, inner)
		}
	}
	if offset >= 0 {
		count := offset
		inner := factory
		factory = func(ctx context.Context, token elements.Element) (queryexec.Component, error) {
			return queryexec.NewComputeSkip(ctx, count, token, inner)
		}
	}
	if limit >= 0 {
		count := limit
		inner := factory
		factory = func(ctx context.Context, token elements.Element) (queryexec.Component, error) {
			return queryexec.NewComputeTake(ctx, count, token, inner)
		}
	}
	return factory(ctx, token)
}

func renderPage(page *queryexec.Page) (*pageReport, error) {
	report := &pageReport{
		Elements:          []string{},
		RequestCharge:     page.RequestCharge,
		ActivityID:        page.ActivityID,
		ContinuationToken: page.ContinuationToken,
	}
	if page.Failure != nil {
		report.FailureKind = page.Failure.Kind
	}
	for _, element := range page.Elements {
		rendered, err := elements.MarshalString(element)
		if err != nil {
			return nil, err
		}
		report.Elements = append(report.Elements, rendered)
	}
	return report, nil
}
