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
package report

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	log "github.com/sirupsen/logrus"
	"golang.org/x/term"

	"github.com/vericache/vericache/pkg/ast"
	"github.com/vericache/vericache/pkg/util/source"
	"github.com/vericache/vericache/pkg/verrors"
)

const queueCapacity = 64

// message is the internal envelope queued between a Console's public
// methods and its single rendering goroutine.
type message struct {
	render func(w io.Writer, width int)
}

// Console is a Reporter that renders to an io.Writer (typically stdout),
// word-wrapped to the detected terminal width when available. Rendering
// happens on a single background goroutine so concurrent verification jobs
// never interleave partial lines; a bounded queue means a stalled
// downstream write drops messages rather than blocking a job (§4.4).
type Console struct {
	out   io.Writer
	width int

	ch   chan message
	once sync.Once
	done chan struct{}

	// sources caches source files loaded to print failure context lines.
	// Only ever touched from the single rendering goroutine, so it needs
	// no lock of its own.
	sources map[string]*source.File
}

// NewConsole constructs a Console writing to out. If out is a terminal,
// its current width is used for wrapping; otherwise a informative default
// of 100 columns is used.
func NewConsole(out io.Writer) *Console {
	width := 100

	if f, ok := out.(*os.File); ok {
		if w, _, err := term.GetSize(int(f.Fd())); err == nil && w > 0 {
			width = w
		}
	}

	c := &Console{
		out: out, width: width,
		ch:      make(chan message, queueCapacity),
		done:    make(chan struct{}),
		sources: make(map[string]*source.File),
	}

	go c.run()

	return c
}

func (c *Console) run() {
	for m := range c.ch {
		m.render(c.out, c.width)
	}

	close(c.done)
}

// Close stops accepting new messages and blocks until the queue drains.
func (c *Console) Close() {
	c.once.Do(func() { close(c.ch) })
	<-c.done
}

func (c *Console) emit(render func(w io.Writer, width int)) {
	select {
	case c.ch <- message{render: render}:
	default:
		log.Warn("report: console queue full, dropping message")
	}
}

// ProgramOutlineReport implements Reporter.
func (c *Console) ProgramOutlineReport(members []ast.Member) {
	c.emit(func(w io.Writer, width int) {
		fmt.Fprintln(w, wrap("outline: "+strings.Join(memberNames(members), ", "), width))
	})
}

// StatisticsReport implements Reporter.
func (c *Console) StatisticsReport(counts ast.MemberCounts) {
	c.emit(func(w io.Writer, width int) {
		fmt.Fprintf(w, "%d methods, %d functions, %d predicates, %d domains, %d fields\n",
			counts.Methods, counts.Functions, counts.Predicates, counts.Domains, counts.Fields)
	})
}

// ProgramDefinitionsReport implements Reporter.
func (c *Console) ProgramDefinitionsReport(defs []ast.Definition) {
	c.emit(func(w io.Writer, width int) {
		for _, d := range defs {
			fmt.Fprintf(w, "  %s @ %s\n", d.Name, d.Position)
		}
	})
}

// OverallSuccessMessage implements Reporter.
func (c *Console) OverallSuccessMessage(backendName string, elapsed time.Duration) {
	c.emit(func(w io.Writer, width int) {
		fmt.Fprintf(w, "%s: verification succeeded (%s)\n", backendName, elapsed.Round(time.Millisecond))
	})
}

// OverallFailureMessage implements Reporter.
func (c *Console) OverallFailureMessage(backendName string, elapsed time.Duration, errs []verrors.VerificationError) {
	c.emit(func(w io.Writer, width int) {
		fmt.Fprintf(w, "%s: verification failed with %d error(s) (%s)\n", backendName, len(errs), elapsed.Round(time.Millisecond))

		for _, e := range errs {
			cached := ""
			if e.Cached {
				cached = " [cached]"
			}

			fmt.Fprintln(w, wrap(fmt.Sprintf("  %s: %s @ %s%s", e.Kind, e.Message, e.Offending.Pos(), cached), width))

			if line, ok := c.sourceLine(e.Offending.Pos()); ok {
				fmt.Fprintf(w, "    | %s\n", line)
			}

			if e.Reason != nil {
				fmt.Fprintln(w, wrap(fmt.Sprintf("    reason: %s @ %s", e.Reason.Message, e.Reason.Offending.Pos()), width))
			}
		}
	})
}

// sourceLine returns the source text of pos's line, loading and caching the
// underlying file on first use. It returns false if pos carries no known
// file, or the file cannot be read (e.g. it has since been deleted).
func (c *Console) sourceLine(pos ast.Position) (string, bool) {
	if !pos.HasPosition() || pos.File() == "" {
		return "", false
	}

	f, ok := c.sources[pos.File()]
	if !ok {
		files, err := source.ReadFiles(pos.File())
		if err != nil {
			log.Debugf("report: could not read %s for failure context: %v", pos.File(), err)
			c.sources[pos.File()] = nil
		} else {
			f = &files[0]
			c.sources[pos.File()] = f
		}
	}

	if f == nil {
		return "", false
	}

	line := f.FindLine(pos.Line())

	return line.String(), true
}

// ExceptionReport implements Reporter.
func (c *Console) ExceptionReport(err error) {
	c.emit(func(w io.Writer, width int) {
		fmt.Fprintln(w, wrap("error: "+err.Error(), width))
	})
}

func memberNames(members []ast.Member) []string {
	names := make([]string, len(members))
	for i, m := range members {
		names[i] = m.MemberName()
	}

	return names
}

// wrap breaks s into width-wide lines on whitespace boundaries, matching
// the plain word-wrapping a terminal-width-aware CLI reporter performs.
func wrap(s string, width int) string {
	if width <= 0 || len(s) <= width {
		return s
	}

	var b strings.Builder

	line := 0

	for i, word := range strings.Fields(s) {
		if i > 0 {
			if line+1+len(word) > width {
				b.WriteByte('\n')
				line = 0
			} else {
				b.WriteByte(' ')
				line++
			}
		}

		b.WriteString(word)
		line += len(word)
	}

	return b.String()
}
