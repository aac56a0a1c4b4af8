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

// stratoquery is a debugging tool for the StratoDoc query pipeline. It
// inspects continuation tokens, decodes and encodes binary batch result
// rows, and simulates operator pipelines over canned pages.
package main

import (
	"log/slog"
	"os"

	"github.com/spf13/afero"

	"github.com/stratodoc/stratodoc/go/cmd/stratoquery/command"
)

func main() {
	root := command.NewRootCommand(afero.NewOsFs())
	if err := root.Execute(); err != nil {
		slog.Error("command failed", "error", err)
		os.Exit(1)
	}
}
