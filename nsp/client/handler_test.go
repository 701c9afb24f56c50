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

	"github.com/stretchr/testify/require"

	"github.com/CerebusOSS/nspsdk-go/nsp/protocol"
)

func newTestHandler() (*Handler, *protocol.Factory) {
	f := protocol.NewFactory(protocol.WireVersion41, nil)
	return NewHandler(f, nil, nil, nil), f
}

func encodeTestPacket(t *testing.T, f *protocol.Factory, p protocol.BinaryMarshalerTo) []byte {
	t.Helper()
	buf := make([]byte, protocol.MaxPacketBytes)
	n, _, err := f.Encode(p, buf)
	require.NoError(t, err)
	return buf[:n]
}

func TestHandlerDispatchesHeartBeat(t *testing.T) {
	h, f := newTestHandler()
	var got int
	h.RegisterSampleGroupCallback(func(protocol.PacketType, *protocol.SampleGroup) { got++ })

	raw := encodeTestPacket(t, f, &protocol.HeartBeat{Header: protocol.Header{ChanID: 0, Type: 0}})
	h.Handle(raw)

	packets, _, _, _, _ := h.Stats()
	require.Equal(t, uint64(1), packets)
	require.Equal(t, 0, got) // heartbeat never fans out
}

func TestHandlerDispatchesSampleGroupOnlyWhenRecipientRegistered(t *testing.T) {
	h, f := newTestHandler()
	raw := encodeTestPacket(t, f, &protocol.SampleGroup{
		Header:  protocol.Header{ChanID: 0, Type: 1},
		Samples: []int16{1, 2, 3, 4},
	})

	h.Handle(raw) // no recipient yet: must not even attempt a decode
	_, _, _, decodeErrors, _ := h.Stats()
	require.Equal(t, uint64(0), decodeErrors)

	var got *protocol.SampleGroup
	h.RegisterSampleGroupCallback(func(_ protocol.PacketType, sg *protocol.SampleGroup) { got = sg })
	h.Handle(raw)
	require.NotNil(t, got)
	require.Equal(t, []int16{1, 2, 3, 4}, got.Samples)
}

func TestHandlerUnregisterStopsDelivery(t *testing.T) {
	h, f := newTestHandler()
	var calls int
	id := h.RegisterSpikeCallback(func(*protocol.SpikeEvent) { calls++ })

	raw := encodeTestPacket(t, f, &protocol.SpikeEvent{Header: protocol.Header{ChanID: 12, Type: 1}, Unit: 1})
	h.Handle(raw)
	require.Equal(t, 1, calls)

	h.UnregisterSpikeCallback(id)
	h.Handle(raw)
	require.Equal(t, 1, calls)
}

func TestHandlerConfigCallbackReceivesSysRep(t *testing.T) {
	h, f := newTestHandler()
	var got protocol.Packet
	h.RegisterConfigCallback(protocol.ConfigTypeAny, func(p protocol.Packet) { got = p })

	raw := encodeTestPacket(t, f, &protocol.SysInfo{
		Header:   protocol.Header{ChanID: protocol.ChanConfiguration, Type: uint16(protocol.TypeSysRep)},
		RunLevel: protocol.RunLevelRunning,
	})
	h.Handle(raw)

	sysRep, ok := got.(*protocol.SysInfo)
	require.True(t, ok)
	require.Equal(t, protocol.RunLevelRunning, sysRep.RunLevel)
}

func TestHandlerTracksOutOfOrderWithoutReordering(t *testing.T) {
	h, f := newTestHandler()
	h.RegisterConfigCallback(protocol.ConfigTypeAny, func(protocol.Packet) {})

	newer := encodeTestPacket(t, f, &protocol.SysInfo{Header: protocol.Header{ChanID: protocol.ChanConfiguration, Type: uint16(protocol.TypeSysRep), Time: 100}})
	older := encodeTestPacket(t, f, &protocol.SysInfo{Header: protocol.Header{ChanID: protocol.ChanConfiguration, Type: uint16(protocol.TypeSysRep), Time: 50}})

	h.Handle(newer)
	h.Handle(older)

	_, _, outOfOrder, _, _ := h.Stats()
	require.Equal(t, uint64(1), outOfOrder)
}

func TestHandlerEventCallbackRoutesByChannelClass(t *testing.T) {
	f := protocol.NewFactory(protocol.WireVersion41, nil)
	classOf := func(chid uint16) (protocol.ChannelClass, bool) {
		if chid == 7 {
			return protocol.ClassDigitalIn, true
		}
		return protocol.ClassFrontEnd, true
	}
	h := NewHandler(f, nil, classOf, nil)

	var digitalHits, anyHits int
	h.RegisterEventCallback(protocol.ClassDigitalIn, func(protocol.Packet) { digitalHits++ })
	h.RegisterEventCallback(protocol.ClassAny, func(protocol.Packet) { anyHits++ })

	din := encodeTestPacket(t, f, &protocol.DigitalInputEvent{Header: protocol.Header{ChanID: 7, Type: 1}, EventType: 2})
	h.Handle(din)
	require.Equal(t, 1, digitalHits)
	require.Equal(t, 1, anyHits)

	spk := encodeTestPacket(t, f, &protocol.SpikeEvent{Header: protocol.Header{ChanID: 12, Type: 1}, Unit: 1})
	h.Handle(spk)
	require.Equal(t, 1, digitalHits) // FrontEnd channel, unaffected
	require.Equal(t, 2, anyHits)     // still unioned with ClassAny
}

func TestRemoveByIDLeavesOthersInOrder(t *testing.T) {
	list := []idCallback[int]{{id: 1, cb: 10}, {id: 2, cb: 20}, {id: 3, cb: 30}}
	list = removeByID(list, 2)
	require.Len(t, list, 2)
	require.Equal(t, uint64(1), list[0].id)
	require.Equal(t, uint64(3), list[1].id)
}
