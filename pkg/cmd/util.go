// Copyright Consensys Software Inc.
//
// Licensed under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with
// the License. You may obtain a copy of the License at
//
// http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on
// an "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied. See the License for the
// specific language governing permissions and limitations under the License.
//
// SPDX-License-Identifier: Apache-2.0
package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

// GetFlag reads an expected boolean flag, or terminates the process if the
// flag was never registered -- a programming error, not a user error.
func GetFlag(cmd *cobra.Command, flag string) bool {
	r, err := cmd.Flags().GetBool(flag)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}

	return r
}

// GetString reads an expected string flag.
func GetString(cmd *cobra.Command, flag string) string {
	r, err := cmd.Flags().GetString(flag)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}

	return r
}

// fileDefaults mirrors the subset of front-end configuration that may be
// supplied via an on-disk vericache.yaml, layered underneath (and
// overridden by) explicit CLI flags.
type fileDefaults struct {
	Backend  string `yaml:"backend"`
	NoCache  bool   `yaml:"noCache"`
	Verbose  bool   `yaml:"verbose"`
}

// loadDefaults reads a YAML defaults file, if path is non-empty.  A missing
// or empty path is not an error: CLI flags and built-in defaults suffice.
func loadDefaults(path string) (fileDefaults, error) {
	var d fileDefaults

	if path == "" {
		return d, nil
	}

	bytes, err := os.ReadFile(path)
	if err != nil {
		return d, fmt.Errorf("reading config file %s: %w", path, err)
	}

	if err := yaml.Unmarshal(bytes, &d); err != nil {
		return d, fmt.Errorf("parsing config file %s: %w", path, err)
	}

	return d, nil
}
