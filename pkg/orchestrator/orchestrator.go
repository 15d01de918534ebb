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

// Package orchestrator drives one verification job end to end: front-end
// translation, cache consultation, reduced-program dispatch to a back-end,
// result merging, and cache update. A job runs as a single straight
// pipeline (§4.5); jobs for distinct (backend, file) pairs may run
// concurrently, coordinated by VerifyAll.
package orchestrator

import (
	"context"
	"fmt"
	"time"

	log "github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/semaphore"

	"github.com/vericache/vericache/pkg/ast"
	"github.com/vericache/vericache/pkg/backend"
	"github.com/vericache/vericache/pkg/depgraph"
	"github.com/vericache/vericache/pkg/fingerprint"
	"github.com/vericache/vericache/pkg/frontend"
	"github.com/vericache/vericache/pkg/report"
	"github.com/vericache/vericache/pkg/store"
	"github.com/vericache/vericache/pkg/util"
	"github.com/vericache/vericache/pkg/verrors"
)

// Job describes one verification request.
type Job struct {
	// File is the source file to verify, passed through to the
	// front-end and used as part of the cache key.
	File string
	// BackendName selects the registered back-end to dispatch to.
	BackendName string
	// BackendArgs is passed through to backend.Resolve.
	BackendArgs backend.Config
	// NoCache disables cache consultation and update for this job:
	// every method is treated as to-verify and the store is left
	// untouched.
	NoCache bool
}

// Outcome is a job's final verdict.
type Outcome struct {
	Errors    []verrors.VerificationError
	Verified  int // methods sent to the back-end for verification (body-less cache hits not counted)
	Cached    int // methods whose errors were replayed from the cache
}

// Orchestrator ties together a cache store, a reporter sink and a
// front-end factory.
type Orchestrator struct {
	store       *store.Store
	reporter    report.Reporter
	newFrontend func(frontend.Config) frontend.Frontend
}

// New constructs an Orchestrator. newFrontend is a factory rather than a
// single shared Frontend because each job needs its own Parse/Typecheck/
// Translate state.
func New(s *store.Store, r report.Reporter, newFrontend func(frontend.Config) frontend.Frontend) *Orchestrator {
	return &Orchestrator{store: s, reporter: r, newFrontend: newFrontend}
}

// Verify runs one job to completion.
func (o *Orchestrator) Verify(ctx context.Context, job Job) (Outcome, error) {
	start := time.Now()

	b, err := backend.Resolve(job.BackendName, job.BackendArgs)
	if err != nil {
		o.reporter.ExceptionReport(err)
		return Outcome{}, err
	}
	defer b.Stop()

	fe := o.newFrontend(frontend.Config{SourceFile: job.File})

	if err := fe.Parse(); err != nil {
		o.reporter.ExceptionReport(err)
		return Outcome{}, err
	}

	if err := fe.Typecheck(); err != nil {
		o.reporter.ExceptionReport(err)
		return Outcome{}, err
	}

	if err := fe.Translate(); err != nil {
		o.reporter.ExceptionReport(err)
		return Outcome{}, err
	}

	program := fe.Program()

	o.reporter.ProgramOutlineReport(program.AllMembers())
	o.reporter.StatisticsReport(program.Counts())
	o.reporter.ProgramDefinitionsReport(ast.CollectDefinitions(program))

	fp := fingerprint.New()
	deps := depgraph.New(program, fp)

	toVerify, cachedBodiless, cachedErrors, err := o.consultCache(b.ID(), job, program, fp, deps)
	if err != nil {
		o.reporter.ExceptionReport(err)
		return Outcome{}, err
	}

	reduced := program.WithMethods(append(append([]*ast.Method{}, toVerify...), cachedBodiless...))

	var freshErrors []verrors.VerificationError

	if len(toVerify) > 0 {
		result, err := b.Verify(ctx, reduced)
		if err != nil {
			wrapped := fmt.Errorf("%w: %v", verrors.ErrVerification, err)
			o.reporter.ExceptionReport(wrapped)
			return Outcome{}, wrapped
		}

		freshErrors, err = o.mergeAndCache(b.ID(), job, toVerify, fp, deps, result.Errors)
		if err != nil {
			o.reporter.ExceptionReport(err)
			return Outcome{}, err
		}
	}

	merged := append(append([]verrors.VerificationError{}, cachedErrors...), freshErrors...)

	elapsed := time.Since(start)
	if len(merged) == 0 {
		o.reporter.OverallSuccessMessage(b.ID(), elapsed)
	} else {
		o.reporter.OverallFailureMessage(b.ID(), elapsed, merged)
	}

	return Outcome{Errors: merged, Verified: len(toVerify), Cached: len(program.Methods) - len(toVerify)}, nil
}

// consultCache partitions program's methods into those needing
// re-verification and those whose cache entry can be trusted as-is,
// replaying the latter's errors with translated positions (§4.5 steps
// 2-4).
func (o *Orchestrator) consultCache(
	backendID string, job Job, program *ast.Program, fp *fingerprint.Fingerprinter, deps *depgraph.Resolver,
) (toVerify, cachedBodiless []*ast.Method, cachedErrors []verrors.VerificationError, err error) {
	for _, m := range program.Methods {
		if job.NoCache {
			toVerify = append(toVerify, m)
			continue
		}

		key := store.Key{BackendID: backendID, File: job.File, Method: fp.Fingerprint(m)}

		entry, ok := o.store.Get(key)
		if !ok {
			toVerify = append(toVerify, m)
			continue
		}

		if !entry.DependencyHash.Equals(deps.DependencyHash(m)) {
			toVerify = append(toVerify, m)
			continue
		}

		replayed, ok := replayErrors(entry.Errors, m)
		if !ok {
			log.Warnf("orchestrator: stale access path for %s, re-verifying", m.Name)
			toVerify = append(toVerify, m)
			continue
		}

		cachedErrors = append(cachedErrors, replayed...)
		cachedBodiless = append(cachedBodiless, m.WithoutBody())
	}

	return toVerify, cachedBodiless, cachedErrors, nil
}

// replayErrors attempts to relocate every localized error in entries
// against m's current AST. It returns false as soon as any single error
// fails to relocate: per §4.2's I3, a partially-stale cache entry is
// treated as a full miss for the method, not a partial hit.
func replayErrors(entries []store.LocalizedError, m *ast.Method) ([]verrors.VerificationError, bool) {
	replayed := make([]verrors.VerificationError, 0, len(entries))

	for _, le := range entries {
		ve, ok := store.Delocalize(le, m)
		if !ok {
			return nil, false
		}

		replayed = append(replayed, ve.SetCached())
	}

	return replayed, true
}

// mergeAndCache attributes each fresh back-end error to the to-verify method
// whose line range (§4.5 step 7's getMethodSpecificErrors) contains it,
// updates the store for every verified method with its owned subset, and
// returns fresh unchanged: per §4.5 step 8, the surfaced result is the union
// of every error the back-end reported with the replayed cache hits, not
// just the subset attributable to some method (an error against a function,
// predicate or wand -- members P' preserves whole rather than re-verifying
// -- owns no to-verify method's range and so is cached nowhere, but it must
// still be surfaced in this run's output).
func (o *Orchestrator) mergeAndCache(
	backendID string, job Job, toVerify []*ast.Method, fp *fingerprint.Fingerprinter, deps *depgraph.Resolver,
	fresh []verrors.VerificationError,
) ([]verrors.VerificationError, error) {
	for _, e := range fresh {
		if e.Offending == nil || !e.Offending.Pos().HasPosition() {
			return nil, fmt.Errorf("%w: back-end reported a %s error with no source position", verrors.ErrInvariantViolation, e.Kind)
		}
	}

	for _, m := range toVerify {
		var localized []store.LocalizedError

		for _, e := range fresh {
			if !m.Range.Contains(e.Offending.Pos().Line()) {
				continue
			}

			if le, ok := store.Localize(e, m); ok {
				localized = append(localized, le)
			}
		}

		if !job.NoCache {
			key := store.Key{BackendID: backendID, File: job.File, Method: fp.Fingerprint(m)}
			o.store.Update(key, store.Entry{DependencyHash: deps.DependencyHash(m), Errors: localized})
		}
	}

	return fresh, nil
}

// VerifyAll runs jobs concurrently, honoring the scheduling model of §5:
// one job per (backend, file) pair runs its pipeline sequentially, but
// distinct jobs run in parallel up to maxConcurrency. Outcomes are
// returned in the same order as jobs; the first job error cancels the
// remaining ones via the shared context.
func (o *Orchestrator) VerifyAll(ctx context.Context, jobs []Job, maxConcurrency int64) ([]Outcome, error) {
	stats := util.NewPerfStats()
	defer stats.Log(fmt.Sprintf("orchestrator: VerifyAll(%d jobs)", len(jobs)))

	g, gctx := errgroup.WithContext(ctx)
	sem := semaphore.NewWeighted(maxConcurrency)

	outcomes := make([]Outcome, len(jobs))

	for i, job := range jobs {
		i, job := i, job

		g.Go(func() error {
			if err := sem.Acquire(gctx, 1); err != nil {
				return err
			}
			defer sem.Release(1)

			outcome, err := o.Verify(gctx, job)
			outcomes[i] = outcome

			return err
		})
	}

	if err := g.Wait(); err != nil {
		return outcomes, err
	}

	return outcomes, nil
}
