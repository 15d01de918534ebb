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
	"context"
	"errors"
	"fmt"
	"os"
	"runtime"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/vericache/vericache/pkg/frontend"
	"github.com/vericache/vericache/pkg/orchestrator"
	"github.com/vericache/vericache/pkg/report"
	"github.com/vericache/vericache/pkg/store"
	"github.com/vericache/vericache/pkg/verrors"
)

var verifyCmd = &cobra.Command{
	Use:   "verify [files...]",
	Short: "Verify one or more source files, consulting and updating the cache.",
	Long: "verify runs one verification job per file. The cache is process-lifetime: " +
		"passing several files to a single invocation lets later jobs in that run reuse " +
		"cache entries built by earlier ones, but nothing is persisted once the process exits.",
	Args: cobra.MinimumNArgs(1),
	Run:  runVerify,
}

func init() {
	rootCmd.AddCommand(verifyCmd)
}

func runVerify(cmd *cobra.Command, args []string) {
	defaults, err := loadDefaults(GetString(cmd, "config"))
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}

	if defaults.Verbose && !cmd.Flags().Changed("verbose") {
		log.SetLevel(log.DebugLevel)
	}

	backendName := resolvedFlag(cmd, "backend", defaults.Backend)
	noCache := GetFlag(cmd, "no-cache") || (!cmd.Flags().Changed("no-cache") && defaults.NoCache)

	console := report.NewConsole(os.Stdout)
	defer console.Close()

	o := orchestrator.New(store.New(), console, func(cfg frontend.Config) frontend.Frontend { return frontend.New(cfg) })

	jobs := make([]orchestrator.Job, len(args))
	for i, file := range args {
		jobs[i] = orchestrator.Job{File: file, BackendName: backendName, NoCache: noCache}
	}

	concurrency := int64(runtime.GOMAXPROCS(0))

	outcomes, runErr := o.VerifyAll(context.Background(), jobs, concurrency)

	console.Close()

	if runErr != nil {
		switch {
		case errors.Is(runErr, verrors.ErrConfiguration):
			os.Exit(2)
		case errors.Is(runErr, verrors.ErrTranslator):
			os.Exit(3)
		case errors.Is(runErr, verrors.ErrInvariantViolation):
			os.Exit(4)
		default:
			os.Exit(5)
		}
	}

	for _, outcome := range outcomes {
		if len(outcome.Errors) > 0 {
			os.Exit(1)
		}
	}
}

// resolvedFlag returns the CLI flag's value if the user explicitly set it,
// falling back to a config-file default, and finally the flag's own
// built-in default.
func resolvedFlag(cmd *cobra.Command, flag, fileDefault string) string {
	if cmd.Flags().Changed(flag) || fileDefault == "" {
		return GetString(cmd, flag)
	}

	return fileDefault
}
