/*
Copyright (c) Facebook, Inc. and its affiliates.

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

    http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

package client

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestBackoffNoneNeverActivates(t *testing.T) {
	b := newBackoff(BackoffConfig{Mode: backoffNone})
	b.inc()
	require.False(t, b.active())
}

func TestBackoffFixedStaysConstant(t *testing.T) {
	b := newBackoff(BackoffConfig{Mode: backoffFixed, Step: 2, MaxValue: 100})
	require.Equal(t, 2*time.Second, b.inc())
	require.Equal(t, 2*time.Second, b.inc())
	require.True(t, b.active())
}

func TestBackoffLinearGrowsByStep(t *testing.T) {
	b := newBackoff(BackoffConfig{Mode: backoffLinear, Step: 2, MaxValue: 100})
	require.Equal(t, 2*time.Second, b.inc())
	require.Equal(t, 4*time.Second, b.inc())
	require.Equal(t, 6*time.Second, b.inc())
}

func TestBackoffExponentialCapsAtMaxValue(t *testing.T) {
	b := newBackoff(BackoffConfig{Mode: backoffExponential, Step: 2, MaxValue: 5})
	b.inc() // 2^1 = 2s
	b.inc() // 2^2 = 4s
	got := b.inc() // 2^3 = 8s, capped to 5s
	require.Equal(t, 5*time.Second, got)
}

func TestBackoffResetClearsState(t *testing.T) {
	b := newBackoff(BackoffConfig{Mode: backoffFixed, Step: 1, MaxValue: 10})
	b.inc()
	require.True(t, b.active())
	b.reset()
	require.False(t, b.active())
}

func TestBackoffDecCountsDownToZero(t *testing.T) {
	b := newBackoff(BackoffConfig{Mode: backoffFixed, Step: 1, MaxValue: 10})
	b.inc()
	require.Equal(t, time.Duration(0), b.dec(2*time.Second))
}
