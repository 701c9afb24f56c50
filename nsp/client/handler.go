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
	"sync/atomic"

	log "github.com/sirupsen/logrus"

	"github.com/CerebusOSS/nspsdk-go/nsp/protocol"
)

// SampleGroupCallback is invoked for every decoded multichannel sample frame.
type SampleGroupCallback func(group protocol.PacketType, sg *protocol.SampleGroup)

// SpikeCallback is invoked for every decoded spike event.
type SpikeCallback func(ev *protocol.SpikeEvent)

// ConfigCallback is invoked for every decoded configuration reply.
type ConfigCallback func(p protocol.Packet)

// CommentCallback is invoked for every decoded comment annotation.
type CommentCallback func(c *protocol.Comment)

// EventCallback is invoked for every decoded per-channel event (spike,
// digital input, or any other non-group, non-configuration packet) whose
// channel falls in the class it was registered for.
type EventCallback func(p protocol.Packet)

// handlerStats are the ingest pipeline's own running counters, independent
// of whatever downstream Stats a caller wires in — useful even with no
// callbacks registered at all.
type handlerStats struct {
	packetsReceived uint64
	bytesReceived   uint64
	outOfOrder      uint64
	decodeErrors    uint64
	unknownPackets  uint64
}

// Handler drains a transport's receive queue on its own goroutine, decodes
// each datagram via the factory, and fans it out to whichever callbacks are
// registered for that packet's kind. It never reorders samples: an
// out-of-order group-6 frame (the raw, highest-rate stream) is logged and
// passed through rather than buffered and resequenced.
type Handler struct {
	factory *protocol.Factory
	counter protocol.GroupChanCounter
	classOf protocol.ChannelClassLookup
	log     *log.Entry

	lastTime      uint64
	lastGroupTime map[protocol.PacketType]uint64

	stats handlerStats

	nextID    uint64
	onGroup   []idCallback[SampleGroupCallback]
	onSpike   []idCallback[SpikeCallback]
	onConfig  map[protocol.PacketType][]idCallback[ConfigCallback]
	onComment []idCallback[CommentCallback]
	onEvent   map[protocol.ChannelClass][]idCallback[EventCallback]
}

// idCallback pairs a callback with the token Unregister needs to remove it.
type idCallback[T any] struct {
	id uint64
	cb T
}

// NewHandler constructs a Handler bound to factory, using counter (if
// non-nil) to size incoming sample groups and classOf (if non-nil) to
// resolve a chid's channel class for per-class event dispatch.
func NewHandler(factory *protocol.Factory, counter protocol.GroupChanCounter, classOf protocol.ChannelClassLookup, logger *log.Entry) *Handler {
	if logger == nil {
		logger = log.NewEntry(log.StandardLogger())
	}
	return &Handler{
		factory:       factory,
		counter:       counter,
		classOf:       classOf,
		log:           logger,
		lastGroupTime: make(map[protocol.PacketType]uint64),
		onConfig:      make(map[protocol.PacketType][]idCallback[ConfigCallback]),
		onEvent:       make(map[protocol.ChannelClass][]idCallback[EventCallback]),
	}
}

// RegisterSampleGroupCallback adds cb to the set invoked for decoded sample
// groups, returning an id for a later UnregisterSampleGroupCallback.
func (h *Handler) RegisterSampleGroupCallback(cb SampleGroupCallback) uint64 {
	h.nextID++
	h.onGroup = append(h.onGroup, idCallback[SampleGroupCallback]{id: h.nextID, cb: cb})
	return h.nextID
}

// UnregisterSampleGroupCallback removes a callback previously returned by
// RegisterSampleGroupCallback.
func (h *Handler) UnregisterSampleGroupCallback(id uint64) {
	h.onGroup = removeByID(h.onGroup, id)
}

// RegisterSpikeCallback adds cb to the set invoked for decoded spike events.
func (h *Handler) RegisterSpikeCallback(cb SpikeCallback) uint64 {
	h.nextID++
	h.onSpike = append(h.onSpike, idCallback[SpikeCallback]{id: h.nextID, cb: cb})
	return h.nextID
}

// UnregisterSpikeCallback removes a callback previously returned by RegisterSpikeCallback.
func (h *Handler) UnregisterSpikeCallback(id uint64) {
	h.onSpike = removeByID(h.onSpike, id)
}

// RegisterConfigCallback adds cb to the set invoked for decoded configuration
// packets of type t, or every configuration packet when t is
// protocol.ConfigTypeAny.
func (h *Handler) RegisterConfigCallback(t protocol.PacketType, cb ConfigCallback) uint64 {
	h.nextID++
	h.onConfig[t] = append(h.onConfig[t], idCallback[ConfigCallback]{id: h.nextID, cb: cb})
	return h.nextID
}

// UnregisterConfigCallback removes a callback previously returned by
// RegisterConfigCallback for the same type t.
func (h *Handler) UnregisterConfigCallback(t protocol.PacketType, id uint64) {
	h.onConfig[t] = removeByID(h.onConfig[t], id)
}

// RegisterCommentCallback adds cb to the set invoked for decoded comments.
func (h *Handler) RegisterCommentCallback(cb CommentCallback) uint64 {
	h.nextID++
	h.onComment = append(h.onComment, idCallback[CommentCallback]{id: h.nextID, cb: cb})
	return h.nextID
}

// UnregisterCommentCallback removes a callback previously returned by RegisterCommentCallback.
func (h *Handler) UnregisterCommentCallback(id uint64) {
	h.onComment = removeByID(h.onComment, id)
}

// RegisterEventCallback adds cb to the set invoked for decoded per-channel
// events (spike, digital input, or generic) whose channel classifies as
// class, or every class when class is protocol.ClassAny.
func (h *Handler) RegisterEventCallback(class protocol.ChannelClass, cb EventCallback) uint64 {
	h.nextID++
	h.onEvent[class] = append(h.onEvent[class], idCallback[EventCallback]{id: h.nextID, cb: cb})
	return h.nextID
}

// UnregisterEventCallback removes a callback previously returned by
// RegisterEventCallback for the same class.
func (h *Handler) UnregisterEventCallback(class protocol.ChannelClass, id uint64) {
	h.onEvent[class] = removeByID(h.onEvent[class], id)
}

func removeByID[T any](list []idCallback[T], id uint64) []idCallback[T] {
	out := list[:0]
	for _, entry := range list {
		if entry.id != id {
			out = append(out, entry)
		}
	}
	return out
}

// hasRecipient reports whether decoding this datagram's body would even be
// useful; the handler skips the decode entirely when nothing is listening,
// so a connected-but-quiet client doesn't pay the decode cost per packet.
func (h *Handler) hasRecipient(header protocol.Header) bool {
	switch {
	case protocol.IsConfiguration(header.ChanID):
		t := protocol.PacketType(header.Type)
		return len(h.onConfig[t]) > 0 || len(h.onConfig[protocol.ConfigTypeAny]) > 0 || len(h.onComment) > 0
	case protocol.IsGroup(header.ChanID):
		return header.Type == 0 || len(h.onGroup) > 0
	default:
		// Per-chid classification isn't cheaply available before decode, so
		// this over-approximates: any registered spike or event callback at
		// all is enough to justify decoding.
		if len(h.onSpike) > 0 || len(h.onEvent[protocol.ClassAny]) > 0 {
			return true
		}
		for _, cbs := range h.onEvent {
			if len(cbs) > 0 {
				return true
			}
		}
		return false
	}
}

// Handle decodes and dispatches a single datagram. It always increments the
// packet counter, whether or not anything was decoded, and never blocks the
// caller on a slow callback longer than the callback itself takes — callers
// on the hot path should keep callbacks fast or hand off to their own queue.
func (h *Handler) Handle(raw []byte) {
	atomic.AddUint64(&h.stats.packetsReceived, 1)
	atomic.AddUint64(&h.stats.bytesReceived, uint64(len(raw)))

	header, err := protocol.UnmarshalHeader(h.factory.WireVersion(), raw)
	if err != nil {
		atomic.AddUint64(&h.stats.decodeErrors, 1)
		h.log.WithError(err).Debug("nsp: dropping unparseable datagram")
		return
	}

	h.trackOrdering(header)

	if !h.hasRecipient(header) {
		return
	}

	pkt, err := h.factory.Decode(raw, h.counter, h.classOf)
	if err != nil {
		atomic.AddUint64(&h.stats.decodeErrors, 1)
		h.log.WithError(err).WithField("chid", header.ChanID).Debug("nsp: failed to decode datagram")
		return
	}

	h.dispatch(header, pkt)
}

// trackOrdering updates last_time/last_group_time bookkeeping and logs (but
// never corrects) an out-of-order arrival. Every sample group keeps its own
// last-seen time, separate from the device-wide last_time; both checks add
// to the same outOfOrder counter.
func (h *Handler) trackOrdering(header protocol.Header) {
	if header.Time < h.lastTime {
		atomic.AddUint64(&h.stats.outOfOrder, 1)
		h.log.WithFields(log.Fields{"time": header.Time, "last_time": h.lastTime}).
			Debug("nsp: out-of-order packet time, passing through unreordered")
	} else {
		h.lastTime = header.Time
	}

	if protocol.IsGroup(header.ChanID) && header.Type != 0 {
		group := protocol.PacketType(header.Type)
		if last, ok := h.lastGroupTime[group]; ok && header.Time < last {
			atomic.AddUint64(&h.stats.outOfOrder, 1)
			h.log.WithFields(log.Fields{"group": group, "time": header.Time, "last_group_time": last}).
				Warn("nsp: out-of-order sample group, passing through unreordered")
		} else {
			h.lastGroupTime[group] = header.Time
		}
	}
}

func (h *Handler) dispatch(header protocol.Header, pkt protocol.Packet) {
	switch p := pkt.(type) {
	case *protocol.SampleGroup:
		for _, entry := range h.onGroup {
			entry.cb(protocol.PacketType(header.Type), p)
		}
	case *protocol.Comment:
		for _, entry := range h.onComment {
			entry.cb(p)
		}
	case *protocol.HeartBeat:
		// keepalive only, nothing to fan out
	default:
		if protocol.IsConfiguration(header.ChanID) {
			t := protocol.PacketType(header.Type)
			for _, entry := range h.onConfig[t] {
				entry.cb(pkt)
			}
			if t != protocol.ConfigTypeAny {
				for _, entry := range h.onConfig[protocol.ConfigTypeAny] {
					entry.cb(pkt)
				}
			}
			return
		}
		h.dispatchEvent(header, pkt)
	}
}

// dispatchEvent fans a decoded per-channel event out to RegisterSpikeCallback
// sugar subscribers (only when it's actually a SpikeEvent on a FrontEnd
// channel) plus every class-scoped RegisterEventCallback subscriber for the
// channel's class, unioned with ClassAny subscribers, matching
// event_callbacks[class] + event_callbacks[Any] in the original device's
// dispatch loop.
func (h *Handler) dispatchEvent(header protocol.Header, pkt protocol.Packet) {
	class := protocol.ClassFrontEnd
	if h.classOf != nil {
		if c, ok := h.classOf(header.ChanID); ok {
			class = c
		}
	}

	fired := false
	if spk, ok := pkt.(*protocol.SpikeEvent); ok && class == protocol.ClassFrontEnd {
		for _, entry := range h.onSpike {
			entry.cb(spk)
			fired = true
		}
	}
	for _, entry := range h.onEvent[class] {
		entry.cb(pkt)
		fired = true
	}
	if class != protocol.ClassAny {
		for _, entry := range h.onEvent[protocol.ClassAny] {
			entry.cb(pkt)
			fired = true
		}
	}
	if !fired {
		atomic.AddUint64(&h.stats.unknownPackets, 1)
	}
}

// Stats returns a point-in-time snapshot of the ingest counters.
func (h *Handler) Stats() (packets, bytesIn, outOfOrder, decodeErrors, unknown uint64) {
	return atomic.LoadUint64(&h.stats.packetsReceived),
		atomic.LoadUint64(&h.stats.bytesReceived),
		atomic.LoadUint64(&h.stats.outOfOrder),
		atomic.LoadUint64(&h.stats.decodeErrors),
		atomic.LoadUint64(&h.stats.unknownPackets)
}

// Run drains t's receive queue on the calling goroutine until the transport
// is closed, handing each datagram to Handle. Intended to be started with
// `go handler.Run(transport)`.
func (h *Handler) Run(t *UDPTransport) {
	for {
		d, ok := t.Recv()
		if !ok {
			return
		}
		h.Handle(d.data)
	}
}
