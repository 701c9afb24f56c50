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

// Package stats collects and exports running statistics about an NSP
// client connection: ingest counters, inter-packet jitter, and host
// process/runtime metrics.
package stats

import (
	"sync"
	"time"

	"github.com/eclesh/welford"
)

// IntervalJitter tracks the running mean and variance of the wall-clock
// gap between consecutive arrivals on some stream (a sample group, the
// heartbeat, or the datagram receive loop as a whole), using Welford's
// single-pass algorithm so it never needs to retain the sample history.
type IntervalJitter struct {
	mu   sync.Mutex
	acc  *welford.Stats
	last time.Time
}

// NewIntervalJitter returns an empty tracker.
func NewIntervalJitter() *IntervalJitter {
	return &IntervalJitter{acc: welford.New()}
}

// Observe records one arrival at t, folding the gap since the previous
// arrival into the running statistics. The first call after construction
// or Reset only seeds last and contributes no sample.
func (j *IntervalJitter) Observe(t time.Time) {
	j.mu.Lock()
	defer j.mu.Unlock()
	if !j.last.IsZero() {
		j.acc.Add(float64(t.Sub(j.last)) / float64(time.Millisecond))
	}
	j.last = t
}

// Mean returns the running mean inter-arrival gap, in milliseconds.
func (j *IntervalJitter) Mean() float64 {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.acc.Mean()
}

// Stddev returns the running standard deviation of the inter-arrival gap,
// in milliseconds — the jitter figure callers usually want.
func (j *IntervalJitter) Stddev() float64 {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.acc.Stddev()
}

// Count returns the number of gaps folded in so far.
func (j *IntervalJitter) Count() int64 {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.acc.Count()
}

// Reset clears the tracker back to its initial empty state.
func (j *IntervalJitter) Reset() {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.acc = welford.New()
	j.last = time.Time{}
}
