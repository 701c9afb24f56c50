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

package protocol

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSpikeEventRoundTrip(t *testing.T) {
	p := &SpikeEvent{
		Header:   Header{ChanID: 3, Type: 1},
		Unit:     1,
		Waveform: []int16{1, 2, 3, 4, 5},
	}
	buf := make([]byte, MaxPacketBytes)
	n, err := p.MarshalBinaryTo(WireVersion41, buf)
	require.NoError(t, err)

	header, err := UnmarshalHeader(WireVersion41, buf)
	require.NoError(t, err)
	got, err := UnmarshalSpikeEvent(WireVersion41, header, buf[WireVersion41.HeaderSize():n])
	require.NoError(t, err)
	require.Equal(t, p.Unit, got.Unit)
	require.Equal(t, p.Waveform, got.Waveform)
}

func TestSpikeEventWaveformClampedToMax(t *testing.T) {
	wave := make([]int16, MaxWaveformSamples+20)
	p := &SpikeEvent{Header: Header{ChanID: 3}, Waveform: wave}
	buf := make([]byte, MaxPacketBytes)
	n, err := p.MarshalBinaryTo(WireVersion41, buf)
	require.NoError(t, err)

	header, err := UnmarshalHeader(WireVersion41, buf)
	require.NoError(t, err)
	got, err := UnmarshalSpikeEvent(WireVersion41, header, buf[WireVersion41.HeaderSize():n])
	require.NoError(t, err)
	require.Len(t, got.Waveform, MaxWaveformSamples)
}

func TestSampleGroupOddLengthGetsAlignmentPadding(t *testing.T) {
	p := &SampleGroup{Header: Header{ChanID: ChanGroup, Type: 6}, Samples: []int16{1, 2, 3}}
	buf := make([]byte, MaxPacketBytes)
	n, err := p.MarshalBinaryTo(WireVersion41, buf)
	require.NoError(t, err)
	require.Zero(t, n%4, "body must stay word-aligned")

	header, err := UnmarshalHeader(WireVersion41, buf)
	require.NoError(t, err)
	got, err := UnmarshalSampleGroup(WireVersion41, header, buf[WireVersion41.HeaderSize():n], 3)
	require.NoError(t, err)
	require.Equal(t, []int16{1, 2, 3}, got.Samples)
}

func TestGenericRoundTrip(t *testing.T) {
	p := &Generic{Header: Header{ChanID: ChanConfiguration, Type: 0x7E}, Words: []uint32{1, 2, 3}}
	buf := make([]byte, MaxPacketBytes)
	n, err := p.MarshalBinaryTo(WireVersion41, buf)
	require.NoError(t, err)

	header, err := UnmarshalHeader(WireVersion41, buf)
	require.NoError(t, err)
	got, err := UnmarshalGeneric(WireVersion41, header, buf[WireVersion41.HeaderSize():n])
	require.NoError(t, err)
	require.Equal(t, p.Words, got.Words)
}

func TestHeartBeatRoundTrip(t *testing.T) {
	p := &HeartBeat{Header: Header{ChanID: ChanGroup, Type: 0}}
	buf := make([]byte, MaxPacketBytes)
	n, err := p.MarshalBinaryTo(WireVersion41, buf)
	require.NoError(t, err)
	require.Equal(t, WireVersion41.HeaderSize(), n)

	header, err := UnmarshalHeader(WireVersion41, buf[:n])
	require.NoError(t, err)
	got, err := UnmarshalHeartBeat(WireVersion41, header, nil)
	require.NoError(t, err)
	require.Equal(t, header, got.Header)
}
