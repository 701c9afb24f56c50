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

package stats

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestIntervalJitterFirstObserveSeedsOnly(t *testing.T) {
	j := NewIntervalJitter()
	j.Observe(time.Unix(0, 0))
	require.Equal(t, int64(0), j.Count())
}

func TestIntervalJitterConstantRateHasZeroStddev(t *testing.T) {
	j := NewIntervalJitter()
	start := time.Unix(0, 0)
	for i := 0; i < 10; i++ {
		j.Observe(start.Add(time.Duration(i) * time.Millisecond))
	}
	require.Equal(t, int64(9), j.Count())
	require.InDelta(t, 1.0, j.Mean(), 1e-9)
	require.InDelta(t, 0.0, j.Stddev(), 1e-9)
}

func TestIntervalJitterResetClearsState(t *testing.T) {
	j := NewIntervalJitter()
	start := time.Unix(0, 0)
	j.Observe(start)
	j.Observe(start.Add(5 * time.Millisecond))
	require.Equal(t, int64(1), j.Count())
	j.Reset()
	require.Equal(t, int64(0), j.Count())
	require.Equal(t, 0.0, j.Mean())
}
