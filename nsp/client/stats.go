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
	"sync"
	"sync/atomic"
	"time"

	nspstats "github.com/CerebusOSS/nspsdk-go/nsp/stats"
)

// clientStats is just a grouping, don't use directly
type clientStats struct {
	packetsReceived int64
	bytesReceived   int64
	outOfOrder      int64
	decodeErrors    int64
	unknownPackets  int64
	channelCount    int64
	runLevel        int64
}

// Stats aggregates the ingest pipeline's running counters, the device's
// configuration/run state, and host process/runtime stats into one
// snapshot a monitoring endpoint can serialize.
type Stats struct {
	sync.Mutex

	clientStats
	sys         *SysStats
	jitter      *nspstats.IntervalJitter
	sysCounters map[string]uint64
}

// NewStats returns an empty Stats, ready to be fed by SetFromHandler and
// SetFromDevice on every tick.
func NewStats() *Stats {
	return &Stats{sys: &SysStats{}, jitter: nspstats.NewIntervalJitter()}
}

// SetFromHandler copies the ingest pipeline's running counters.
func (s *Stats) SetFromHandler(h *Handler) {
	packets, bytesIn, outOfOrder, decodeErrors, unknown := h.Stats()
	atomic.StoreInt64(&s.packetsReceived, int64(packets))
	atomic.StoreInt64(&s.bytesReceived, int64(bytesIn))
	atomic.StoreInt64(&s.outOfOrder, int64(outOfOrder))
	atomic.StoreInt64(&s.decodeErrors, int64(decodeErrors))
	atomic.StoreInt64(&s.unknownPackets, int64(unknown))
}

// SetFromDevice copies the device's run level and channel count.
func (s *Stats) SetFromDevice(d *Device) {
	atomic.StoreInt64(&s.channelCount, int64(d.mirror.ChannelCount()))
	atomic.StoreInt64(&s.runLevel, int64(d.RunLevel()))
}

// ObserveArrival folds one datagram arrival into the inter-packet jitter
// tracker; callers typically call this from the transport's read loop.
func (s *Stats) ObserveArrival(t time.Time) {
	s.jitter.Observe(t)
}

// CollectSysStats gathers cpu, mem, gc statistics for this process.
func (s *Stats) CollectSysStats(interval time.Duration) error {
	counters, err := s.sys.CollectRuntimeStats(interval)
	if err != nil {
		return err
	}
	s.Lock()
	s.sysCounters = counters
	s.Unlock()
	return nil
}

// GetCounters returns a flat map of counters, suitable for JSON or
// Prometheus export.
func (s *Stats) GetCounters() map[string]int64 {
	s.Lock()
	defer s.Unlock()

	counters := map[string]int64{
		"nsp.ingest.packets_received": atomic.LoadInt64(&s.packetsReceived),
		"nsp.ingest.bytes_received":   atomic.LoadInt64(&s.bytesReceived),
		"nsp.ingest.out_of_order":     atomic.LoadInt64(&s.outOfOrder),
		"nsp.ingest.decode_errors":    atomic.LoadInt64(&s.decodeErrors),
		"nsp.ingest.unknown_packets":  atomic.LoadInt64(&s.unknownPackets),
		"nsp.device.channel_count":    atomic.LoadInt64(&s.channelCount),
		"nsp.device.run_level":        atomic.LoadInt64(&s.runLevel),
		"nsp.ingest.jitter_mean_ms":   int64(s.jitter.Mean()),
		"nsp.ingest.jitter_stddev_ms": int64(s.jitter.Stddev()),
	}
	for k, v := range s.sysCounters {
		counters[k] = int64(v)
	}
	return counters
}
