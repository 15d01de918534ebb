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
package verrors_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/vericache/vericache/pkg/verrors"
)

func TestSetCached_IsIdempotent(t *testing.T) {
	e := verrors.VerificationError{Kind: verrors.AssertFailed, Message: "assertion might not hold"}

	once := e.SetCached()
	twice := once.SetCached()

	require.True(t, once.Cached)
	require.Equal(t, once, twice)
}

func TestSetCached_DoesNotMutateReceiver(t *testing.T) {
	e := verrors.VerificationError{Kind: verrors.AssertFailed}

	_ = e.SetCached()

	require.False(t, e.Cached, "SetCached must return a copy, not mutate in place")
}

func TestSentinelErrors_AreDistinguishable(t *testing.T) {
	wrapped := errors.Join(verrors.ErrCacheLookup, errors.New("stale access path"))

	require.True(t, errors.Is(wrapped, verrors.ErrCacheLookup))
	require.False(t, errors.Is(wrapped, verrors.ErrConfiguration))
}

func TestKind_String_CoversKnownVariants(t *testing.T) {
	require.Equal(t, "postcondition.violated", verrors.PostconditionViolated.String())
	require.Equal(t, "unknown.error", verrors.Kind(255).String())
}
