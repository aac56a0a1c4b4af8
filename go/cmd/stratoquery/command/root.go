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

// Package command implements the stratoquery CLI, a debugging tool for the
// query execution pipeline: it inspects continuation tokens, decodes and
// encodes batch result rows, and simulates operator pipelines over canned
// pages.
package command

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// App carries the state shared by all stratoquery subcommands. The
// filesystem is injected so command tests run on an in-memory fs.
type App struct {
	fs       afero.Fs
	logLevel string
	output   string
}

// NewRootCommand builds the stratoquery command tree over the given
// filesystem.
func NewRootCommand(fs afero.Fs) *cobra.Command {
	app := &App{fs: fs}

	root := &cobra.Command{
		Use:   "stratoquery",
		Short: "Query pipeline debugging tool for StratoDoc",
		Long: `stratoquery inspects the artifacts of the cross-partition query pipeline.
It classifies continuation tokens, decodes and encodes binary batch result
rows, and simulates skip/take/aggregate pipelines over pages loaded from a
JSON file.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	app.registerFlags(root.PersistentFlags())

	v := viper.New()
	v.SetEnvPrefix("STRATOQUERY")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	root.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		if err := v.BindPFlags(root.PersistentFlags()); err != nil {
			return err
		}
		app.logLevel = v.GetString("log-level")
		app.output = v.GetString("output")
		if err := app.setupLogging(cmd); err != nil {
			return err
		}
		if app.output != "json" && app.output != "yaml" {
			return fmt.Errorf("unknown output format %q", app.output)
		}
		return nil
	}

	root.AddCommand(app.tokenCommand())
	root.AddCommand(app.rowCommand())
	root.AddCommand(app.pipelineCommand())
	return root
}

func (a *App) registerFlags(flags *pflag.FlagSet) {
	flags.StringVar(&a.logLevel, "log-level", "info", "Log level (debug, info, warn, error)")
	flags.StringVar(&a.output, "output", "json", "Output format (json, yaml)")
}

func (a *App) setupLogging(cmd *cobra.Command) error {
	var level slog.Level
	if err := level.UnmarshalText([]byte(a.logLevel)); err != nil {
		return fmt.Errorf("invalid log level %q: %w", a.logLevel, err)
	}
	handler := slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: level})
	slog.SetDefault(slog.New(handler))
	return nil
}

// render writes v to the command's stdout in the selected output format.
func (a *App) render(cmd *cobra.Command, v any) error {
	switch a.output {
	case "yaml":
		enc := yaml.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent(2)
		if err := enc.Encode(v); err != nil {
			return err
		}
		return enc.Close()
	default:
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	}
}
