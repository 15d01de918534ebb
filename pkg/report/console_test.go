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
package report_test

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/vericache/vericache/pkg/ast"
	"github.com/vericache/vericache/pkg/report"
	"github.com/vericache/vericache/pkg/verrors"
)

func TestConsole_StatisticsReport_RendersCounts(t *testing.T) {
	var buf bytes.Buffer
	c := report.NewConsole(&buf)

	c.StatisticsReport(ast.MemberCounts{Methods: 1, Functions: 2, Predicates: 3, Domains: 4, Fields: 5})
	c.Close()

	require.Contains(t, buf.String(), "1 methods, 2 functions, 3 predicates, 4 domains, 5 fields")
}

func TestConsole_OverallSuccessMessage(t *testing.T) {
	var buf bytes.Buffer
	c := report.NewConsole(&buf)

	c.OverallSuccessMessage("reference", 12*time.Millisecond)
	c.Close()

	require.True(t, strings.Contains(buf.String(), "reference: verification succeeded"))
}

func TestConsole_Close_DrainsQueueBeforeReturning(t *testing.T) {
	var buf bytes.Buffer
	c := report.NewConsole(&buf)

	for i := 0; i < 10; i++ {
		c.ExceptionReport(errTest{})
	}

	c.Close()

	require.Equal(t, 10, strings.Count(buf.String(), "error: boom"))
}

func TestConsole_OverallFailureMessage_PrintsSourceLine(t *testing.T) {
	path := filepath.Join(t.TempDir(), "x.vpr")
	require.NoError(t, os.WriteFile(path, []byte("method foo() {\n  assert false\n}\n"), 0o644))

	cond := &ast.BoolLit{Position: ast.NewPosition(path, 2, 10), Value: false}
	errs := []verrors.VerificationError{{Kind: verrors.AssertFailed, Message: "assertion might not hold", Offending: cond}}

	var buf bytes.Buffer
	c := report.NewConsole(&buf)

	c.OverallFailureMessage("reference", 5*time.Millisecond, errs)
	c.Close()

	require.Contains(t, buf.String(), "assert false")
}

type errTest struct{}

func (errTest) Error() string { return "boom" }
