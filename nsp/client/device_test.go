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
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/CerebusOSS/nspsdk-go/nsp/protocol"
)

func TestConfigMirrorFullReplaceThenScopedMerge(t *testing.T) {
	m := newConfigMirror()

	m.applyChanInfo(protocol.TypeChanInfoRep, &protocol.ChanInfo{
		Body: protocol.ChanInfoBody{Chan: 3, ChanCaps: protocol.ChanCapAnalogIn | protocol.ChanCapIsolated, Label: [16]byte{'a'}},
	})
	body, class, ok := m.Channel(3)
	require.True(t, ok)
	require.Equal(t, protocol.ClassFrontEnd, class)
	require.Equal(t, byte('a'), body.Label[0])

	m.applyChanInfo(protocol.TypeChanLabelRep, &protocol.ChanInfo{
		Body: protocol.ChanInfoBody{Chan: 3, Label: [16]byte{'b'}},
	})
	body, _, ok = m.Channel(3)
	require.True(t, ok)
	require.Equal(t, byte('b'), body.Label[0])
	// unrelated fields untouched by the scoped update
	require.Equal(t, protocol.ChanCapAnalogIn|protocol.ChanCapIsolated, body.ChanCaps)
}

func TestConfigMirrorUnrecognizedScopedVariantMergesNothing(t *testing.T) {
	m := newConfigMirror()
	m.applyChanInfo(protocol.TypeChanInfoRep, &protocol.ChanInfo{Body: protocol.ChanInfoBody{Chan: 1, SmpFilter: 7}})
	m.applyChanInfo(protocol.PacketType(0xFE), &protocol.ChanInfo{Body: protocol.ChanInfoBody{Chan: 1, SmpFilter: 99}})
	body, _, _ := m.Channel(1)
	require.Equal(t, uint32(7), body.SmpFilter)
}

func TestConfigMirrorGroupChanCount(t *testing.T) {
	m := newConfigMirror()
	_, ok := m.GroupChanCount(1)
	require.False(t, ok)
	m.groups[1] = &protocol.GroupInfo{ChanIDs: []uint16{1, 2, 3}}
	n, ok := m.GroupChanCount(1)
	require.True(t, ok)
	require.Equal(t, 3, n)
}

func TestOneShotEventsSignalWakesWaiter(t *testing.T) {
	e := newOneShotEvents()
	done := make(chan error, 1)
	go func() { done <- e.Wait(context.Background(), "ready") }()
	time.Sleep(10 * time.Millisecond)
	e.Signal("ready")
	require.NoError(t, <-done)
}

func TestOneShotEventsWaitTimesOut(t *testing.T) {
	e := newOneShotEvents()
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	require.Error(t, e.Wait(ctx, "never"))
}

// fakeInstrument answers a Device's startup handshake over loopback,
// modeling the real run-level state machine rather than echoing every
// request: a HARDRESET request replies STANDBY (never HARDRESET itself), a
// RESET request replies RUNNING, and anything else (including a first
// RUNNING request) replies with the level actually requested. REQCONFIGALL
// gets one ProcInfo (1 channel), one ChanInfo, and a closing REPCONFIGALL.
// startRunLevel controls what the very first SYSSETRUNLEV request gets back,
// so tests can choose between the immediate-RUNNING happy path and the
// HARDRESET/RESET fallback path.
func fakeInstrument(t *testing.T, side *UDPTransport, startRunLevel protocol.RunLevel) {
	t.Helper()
	f := protocol.NewFactory(protocol.WireVersion41, nil)
	go func() {
		first := true
		for {
			d, ok := side.Recv()
			if !ok {
				return
			}
			header, err := protocol.UnmarshalHeader(protocol.WireVersion41, d.data)
			require.NoError(t, err)

			switch protocol.PacketType(header.Type) {
			case protocol.TypeSysSetRunLevel:
				pkt, err := f.Decode(d.data, nil, nil)
				require.NoError(t, err)
				sys := pkt.(*protocol.SysInfo)

				got := sys.RunLevel
				switch {
				case first:
					got = startRunLevel
					first = false
				case sys.RunLevel == protocol.RunLevelHardReset:
					got = protocol.RunLevelStandby
				case sys.RunLevel == protocol.RunLevelReset:
					got = protocol.RunLevelRunning
				}
				reply := &protocol.SysInfo{
					Header:   protocol.Header{ChanID: protocol.ChanConfiguration, Type: uint16(protocol.TypeSysRep)},
					RunLevel: got,
				}
				buf := make([]byte, protocol.MaxPacketBytes)
				n, _, err := f.Encode(reply, buf)
				require.NoError(t, err)
				require.NoError(t, side.Send(buf[:n]))

			case protocol.TypeReqConfigAll:
				proc := &protocol.ProcInfo{
					Header:    protocol.Header{ChanID: protocol.ChanConfiguration, Type: uint16(protocol.TypeProcInfo)},
					ChanCount: 1,
				}
				ci := &protocol.ChanInfo{
					Header: protocol.Header{ChanID: protocol.ChanConfiguration, Type: uint16(protocol.TypeChanInfoRep)},
					Body:   protocol.ChanInfoBody{Chan: 5},
				}
				done := &protocol.Generic{Header: protocol.Header{ChanID: protocol.ChanConfiguration, Type: uint16(protocol.TypeRepConfigAll)}}
				for _, p := range []protocol.BinaryMarshalerTo{proc, ci, done} {
					buf := make([]byte, protocol.MaxPacketBytes)
					n, _, err := f.Encode(p, buf)
					require.NoError(t, err)
					require.NoError(t, side.Send(buf[:n]))
				}
			}
		}
	}()
}

// S7: the device is already RUNNING when asked, so Connect never needs the
// HARDRESET/RESET fallback.
func TestDeviceConnectReachesRunning(t *testing.T) {
	deviceSide, instrumentSide := localTransportPair(t)
	defer deviceSide.Close()
	defer instrumentSide.Close()

	fakeInstrument(t, instrumentSide, protocol.RunLevelRunning)
	go func() { _ = instrumentSide.ReadLoop() }()

	device := NewDevice(DefaultConfig(), deviceSide, protocol.WireVersion41)
	device.Start()

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	require.NoError(t, device.Connect(ctx))
	require.Equal(t, protocol.RunLevelRunning, device.RunLevel())
	require.Equal(t, 1, device.mirror.ChannelCount())
}

// The device reports STARTUP when first asked for RUNNING, forcing Connect
// through HARDRESET (await STANDBY), REQCONFIGALL, and finally RESET
// (await RUNNING with no added timeout).
func TestDeviceConnectFallsBackThroughHardResetAndReset(t *testing.T) {
	deviceSide, instrumentSide := localTransportPair(t)
	defer deviceSide.Close()
	defer instrumentSide.Close()

	fakeInstrument(t, instrumentSide, protocol.RunLevelStartup)
	go func() { _ = instrumentSide.ReadLoop() }()

	device := NewDevice(DefaultConfig(), deviceSide, protocol.WireVersion41)
	device.Start()

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	require.NoError(t, device.Connect(ctx))
	require.Equal(t, protocol.RunLevelRunning, device.RunLevel())
	require.Equal(t, 1, device.mirror.ChannelCount())
}
