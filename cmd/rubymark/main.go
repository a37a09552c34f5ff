// Copyright 2025 Ross Light
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//		 https://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.
//
// SPDX-License-Identifier: Apache-2.0

// rubymark converts inline ruby annotations between the operator
// markup, macro call, and rendered HTML forms.
package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"zombiezen.com/go/rubymark"
)

func main() {
	rootCmd := &cobra.Command{
		Use:          "rubymark",
		Short:        "Convert inline ruby annotations between their three forms",
		SilenceUsage: true,
	}
	var output string
	rootCmd.PersistentFlags().StringVarP(&output, "output", "o", "", "write the result to `file` instead of stdout")

	convertCommand := func(use, short string, convert func(string) string) *cobra.Command {
		return &cobra.Command{
			Use:   use + " [file]",
			Short: short,
			Args:  cobra.MaximumNArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				text, err := readInput(args)
				if err != nil {
					return err
				}
				return writeOutput(output, convert(text))
			},
		}
	}

	rootCmd.AddCommand(
		convertCommand("html", "Convert annotations to the rendered HTML form", rubymark.ToHTML),
		convertCommand("markup", "Convert annotations to the operator markup form", rubymark.ToMarkup),
		convertCommand("macro", "Convert annotations to the macro call form", rubymark.ToMacro),
		&cobra.Command{
			Use:   "detect [file]",
			Short: "Report whether the input contains annotations",
			Args:  cobra.MaximumNArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				text, err := readInput(args)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "markup: %t\nannotation: %t\n",
					rubymark.HasMarkup(text), rubymark.HasAnnotation(text))
				return nil
			},
		},
	)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func readInput(args []string) (string, error) {
	if len(args) == 0 {
		b, err := io.ReadAll(os.Stdin)
		if err != nil {
			return "", fmt.Errorf("read stdin: %w", err)
		}
		return string(b), nil
	}
	b, err := os.ReadFile(args[0])
	if err != nil {
		return "", err
	}
	return string(b), nil
}

func writeOutput(path, text string) error {
	if path == "" {
		_, err := io.WriteString(os.Stdout, text)
		return err
	}
	if err := os.WriteFile(path, []byte(text), 0o666); err != nil {
		return fmt.Errorf("write output: %w", err)
	}
	return nil
}
