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

func TestChanInfoRoundTripV40(t *testing.T) {
	body := ChanInfoBody{
		Chan:     5,
		ChanCaps: ChanCapExists | ChanCapConnected | ChanCapAnalogIn | ChanCapIsolated,
		AinpCaps: 1,
		Label:    [16]byte{'f', 'e', '0', '5'},
		AinpOpts: AinpLNCRunSoft | AinpRefElecSpk,
		SmpGroup: 5,
	}
	p := &ChanInfo{Header: Header{ChanID: ChanConfiguration, Type: uint16(TypeChanInfoRep)}, Body: body}
	buf := make([]byte, MaxPacketBytes)
	n, err := p.MarshalBinaryTo(WireVersion40, buf)
	require.NoError(t, err)

	header, err := UnmarshalHeader(WireVersion40, buf)
	require.NoError(t, err)
	got, err := UnmarshalChanInfo(WireVersion40, header, buf[WireVersion40.HeaderSize():n])
	require.NoError(t, err)
	require.Equal(t, body.Chan, got.Body.Chan)
	require.Equal(t, body.ChanCaps, got.Body.ChanCaps)
	require.Equal(t, body.AinpOpts, got.Body.AinpOpts)
	require.Equal(t, body.SmpGroup, got.Body.SmpGroup)
	require.Equal(t, uint8(0), got.Body.TrigInstrument) // absent at v4.0
}

func TestChanInfoRoundTripV41CarriesTrigInstrument(t *testing.T) {
	body := ChanInfoBody{Chan: 7, TrigInstrument: 3, TrigType: 1, TrigChan: 9}
	p := &ChanInfo{Header: Header{ChanID: ChanConfiguration, Type: uint16(TypeChanInfoRep)}, Body: body}
	buf := make([]byte, MaxPacketBytes)
	n, err := p.MarshalBinaryTo(WireVersion41, buf)
	require.NoError(t, err)
	require.Equal(t, chanInfoFixedSize(WireVersion41)+WireVersion41.HeaderSize(), n)

	header, err := UnmarshalHeader(WireVersion41, buf)
	require.NoError(t, err)
	got, err := UnmarshalChanInfo(WireVersion41, header, buf[WireVersion41.HeaderSize():n])
	require.NoError(t, err)
	require.Equal(t, uint8(3), got.Body.TrigInstrument)
	require.Equal(t, uint8(1), got.Body.TrigType)
	require.Equal(t, uint16(9), got.Body.TrigChan)
}

func TestClassifyFrontEndVsAnalogIn(t *testing.T) {
	isolatedAinp := ChanInfoBody{ChanCaps: ChanCapAnalogIn | ChanCapIsolated}
	require.Equal(t, ClassFrontEnd, isolatedAinp.Classify())

	plainAinp := ChanInfoBody{ChanCaps: ChanCapAnalogIn}
	require.Equal(t, ClassAnalogIn, plainAinp.Classify())
}

func TestClassifySerialVsDigitalIn(t *testing.T) {
	serial := ChanInfoBody{ChanCaps: ChanCapDigitalIn, DinpCaps: DinpSerialMask}
	require.Equal(t, ClassSerial, serial.Classify())

	plain := ChanInfoBody{ChanCaps: ChanCapDigitalIn}
	require.Equal(t, ClassDigitalIn, plain.Classify())
}

func TestClassifyDigitalOutAndAudio(t *testing.T) {
	dout := ChanInfoBody{ChanCaps: ChanCapDigitalOut}
	require.Equal(t, ClassDigitalOut, dout.Classify())

	audio := ChanInfoBody{ChanCaps: ChanCapAnalogOut, AoutCaps: AoutAudio}
	require.Equal(t, ClassAudio, audio.Classify())

	plainOut := ChanInfoBody{ChanCaps: ChanCapAnalogOut}
	require.Equal(t, ClassAny, plainOut.Classify())
}

func TestDefaultSampleFilter(t *testing.T) {
	require.Equal(t, uint32(5), DefaultSampleFilter(1))
	require.Equal(t, uint32(10), DefaultSampleFilter(4))
	require.Equal(t, uint32(0), DefaultSampleFilter(99))
}
