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

import "encoding/binary"

// ChanCaps are the general channel capability flags (chancaps field).
const (
	ChanCapExists    uint32 = 0x00000001
	ChanCapConnected uint32 = 0x00000002
	ChanCapIsolated  uint32 = 0x00000004
	ChanCapAnalogIn  uint32 = 0x00000100
	ChanCapAnalogOut uint32 = 0x00000200
	ChanCapDigitalIn uint32 = 0x00000400
	ChanCapDigitalOut uint32 = 0x00000800
	ChanCapGyro      uint32 = 0x00001000
)

// AnalogInputOpts are the tri-state analog-input option bits (ainpopts field).
const (
	AinpLNCOff              uint32 = 0x00000000
	AinpLNCRunHard          uint32 = 0x00000001
	AinpLNCRunSoft          uint32 = 0x00000002
	AinpLNCHold             uint32 = 0x00000004
	AinpLNCMask             uint32 = 0x00000007
	AinpRefElecLFPSpk       uint32 = 0x00000010
	AinpRefElecSpk          uint32 = 0x00000020
	AinpRefElecMask         uint32 = 0x00000030
	AinpRefElecRawStream    uint32 = 0x00000040
	AinpRefElecOffsetCorrect uint32 = 0x00000100
)

// AnalogOutputCaps/Opts are the analog-output capability flags (aoutcaps field).
const (
	AoutAudio      uint32 = 0x00000001
	AoutScale      uint32 = 0x00000002
	AoutTrack      uint32 = 0x00000004
	AoutStatic     uint32 = 0x00000008
	AoutMonitorRaw uint32 = 0x00000010
	AoutMonitorLNC uint32 = 0x00000020
	AoutMonitorSmp uint32 = 0x00000040
	AoutMonitorSpk uint32 = 0x00000080
	AoutStimulate  uint32 = 0x00000100
	AoutWaveform   uint32 = 0x00000200
	AoutExtension  uint32 = 0x00000400
)

// DigitalInputCaps are the digital-input capability flags (dinpcaps field).
const (
	DinpSerialMask uint32 = 0x000000FF
	Dinp1Bit       uint32 = 0x00000100
	Dinp8Bit       uint32 = 0x00000200
	Dinp16Bit      uint32 = 0x00000400
	Dinp32Bit      uint32 = 0x00000800
	DinpAnyBit     uint32 = 0x00001000
)

// SpikeOpts are the spike-processing option flags (spkopts field).
const (
	SpkExtract   uint32 = 0x00000001
	SpkRejArt    uint32 = 0x00000002
	SpkRejClip   uint32 = 0x00000004
	SpkAlignPeak uint32 = 0x00000008
	SpkRejAmpl   uint32 = 0x00000010
	SpkThrLevel  uint32 = 0x00000100
	SpkThrEnergy uint32 = 0x00000200
	SpkThrAuto   uint32 = 0x00000400
	SpkHoopSort  uint32 = 0x00010000
)

// Sample-filter defaults per group, per §4.7.
var defaultSampleFilterByGroup = map[uint32]uint32{
	1: 5,
	2: 6,
	3: 7,
	4: 10,
}

// DefaultSampleFilter returns the default smpfilter value for a sample group,
// 0 for groups with no documented default.
func DefaultSampleFilter(group uint32) uint32 {
	if f, ok := defaultSampleFilterByGroup[group]; ok {
		return f
	}
	return 0
}

// ChanInfoBody is the large fixed channel descriptor record. It has a v4.1
// wire variant that inserts a TrigInstrument field into the trigger union;
// the struct always carries the field, and the codec decides whether to
// read/write it based on the wire version in effect.
type ChanInfoBody struct {
	Chan       uint32
	Proc       uint32
	Bank       uint32
	Term       uint32
	ChanCaps   uint32
	DoutCaps   uint32
	DinpCaps   uint32
	AoutCaps   uint32
	AinpCaps   uint32
	SpkCaps    uint32
	PhysCalIn  Scaling
	PhysFiltIn FilterDesc
	PhysCalOut Scaling
	PhysFiltOut FilterDesc
	Label      [16]byte
	UserFlags  uint32
	Position   [4]int32
	ScaleIn    Scaling
	ScaleOut   Scaling
	DoutOpts   uint32
	DinpOpts   uint32
	AoutOpts   uint32
	EOPChar    uint32

	// Trigger/monitor union. TrigInstrument only exists on the wire at v4.1+;
	// at v3.11/v4.0 TrigType directly follows EOPChar.
	TrigInstrument uint8
	TrigType       uint8
	TrigChan       uint16
	TrigVal        uint16

	AinpOpts    uint32
	LNCRate     uint32
	SmpFilter   uint32
	SmpGroup    uint32
	SmpDispMin  int32
	SmpDispMax  int32
	SpkFilter   uint32
	SpkDispMax  int32
	LNCDispMax  int32
	SpkOpts     uint32
	SpkThrLevel int32
	SpkThrLimit int32
	SpkGroup    uint32
	AmplRejPos  int16
	AmplRejNeg  int16
	RefElecChan uint32
	UnitMapping [5]UnitMapping
	SpkHoops    [5]HoopSet
}

// chanInfoFixedBaseSize is the fixed ChanInfo record size at wire versions
// that carry no TrigInstrument byte (v3.11, v4.0).
const chanInfoFixedBaseSize = 4*10 + scalingSize*2 + filterDescSize*2 + 16 + 4 + 4*4 + scalingSize*2 + 4*4 +
	1 /* trigtype */ + 2 /* trigchan */ + 2 /* trigval */ +
	4*13 /* ainpopts..spkgroup */ + 2 + 2 /* amplrejpos, amplrejneg */ + 4 /* refelecchan */ +
	5*unitMappingSize + 5*hoopSetSize

// chanInfoFixedSize returns the on-the-wire byte size of the fixed ChanInfo
// record for the given wire version (v4.1 is one byte larger: the
// TrigInstrument field inserted ahead of TrigType).
func chanInfoFixedSize(v WireVersion) int {
	if v.AtLeast(WireVersion41) {
		return chanInfoFixedBaseSize + 1
	}
	return chanInfoFixedBaseSize
}

// ChanInfo is a full ChanInfo packet (header + body, no trailing array).
type ChanInfo struct {
	Header Header
	Body   ChanInfoBody
}

// GetHeader implements Packet.
func (p *ChanInfo) GetHeader() *Header { return &p.Header }

// DefaultType implements Packet.
func (p *ChanInfo) DefaultType() PacketType { return TypeChanInfoSet }

// MarshalBinaryTo implements BinaryMarshalerTo.
func (p *ChanInfo) MarshalBinaryTo(wire WireVersion, b []byte) (int, error) {
	hn, err := MarshalHeaderTo(wire, p.Header, b)
	if err != nil {
		return 0, err
	}
	size := chanInfoFixedSize(wire)
	if len(b) < hn+size {
		return 0, errShortBuffer("ChanInfo", hn+size, len(b))
	}
	body := p.Body
	off := hn
	putU32 := func(v uint32) { binary.LittleEndian.PutUint32(b[off:], v); off += 4 }
	putI32 := func(v int32) { putU32(uint32(v)) }
	putU16 := func(v uint16) { binary.LittleEndian.PutUint16(b[off:], v); off += 2 }
	putI16 := func(v int16) { putU16(uint16(v)) }

	putU32(body.Chan)
	putU32(body.Proc)
	putU32(body.Bank)
	putU32(body.Term)
	putU32(body.ChanCaps)
	putU32(body.DoutCaps)
	putU32(body.DinpCaps)
	putU32(body.AoutCaps)
	putU32(body.AinpCaps)
	putU32(body.SpkCaps)
	body.PhysCalIn.marshalTo(b[off:])
	off += scalingSize
	body.PhysFiltIn.marshalTo(b[off:])
	off += filterDescSize
	body.PhysCalOut.marshalTo(b[off:])
	off += scalingSize
	body.PhysFiltOut.marshalTo(b[off:])
	off += filterDescSize
	copy(b[off:off+16], body.Label[:])
	off += 16
	putU32(body.UserFlags)
	for _, v := range body.Position {
		putI32(v)
	}
	body.ScaleIn.marshalTo(b[off:])
	off += scalingSize
	body.ScaleOut.marshalTo(b[off:])
	off += scalingSize
	putU32(body.DoutOpts)
	putU32(body.DinpOpts)
	putU32(body.AoutOpts)
	putU32(body.EOPChar)
	if wire.AtLeast(WireVersion41) {
		b[off] = body.TrigInstrument
		off++
	}
	b[off] = body.TrigType
	off++
	putU16(body.TrigChan)
	putU16(body.TrigVal)
	putU32(body.AinpOpts)
	putU32(body.LNCRate)
	putU32(body.SmpFilter)
	putU32(body.SmpGroup)
	putI32(body.SmpDispMin)
	putI32(body.SmpDispMax)
	putU32(body.SpkFilter)
	putI32(body.SpkDispMax)
	putI32(body.LNCDispMax)
	putU32(body.SpkOpts)
	putI32(body.SpkThrLevel)
	putI32(body.SpkThrLimit)
	putU32(body.SpkGroup)
	putI16(body.AmplRejPos)
	putI16(body.AmplRejNeg)
	putU32(body.RefElecChan)
	for i := range body.UnitMapping {
		body.UnitMapping[i].marshalTo(b[off:])
		off += unitMappingSize
	}
	for i := range body.SpkHoops {
		for j := range body.SpkHoops[i] {
			body.SpkHoops[i][j].marshalTo(b[off:])
			off += hoopSize
		}
	}
	return off, nil
}

// UnmarshalChanInfo decodes a ChanInfo body (header already decoded) from b,
// zero-padding if the device truncated its struct size modulo 4.
func UnmarshalChanInfo(wire WireVersion, header Header, b []byte) (*ChanInfo, error) {
	size := chanInfoFixedSize(wire)
	b = zeroPad(b, size)
	p := &ChanInfo{Header: header}
	body := &p.Body
	off := 0
	getU32 := func() uint32 { v := binary.LittleEndian.Uint32(b[off:]); off += 4; return v }
	getI32 := func() int32 { return int32(getU32()) }
	getU16 := func() uint16 { v := binary.LittleEndian.Uint16(b[off:]); off += 2; return v }
	getI16 := func() int16 { return int16(getU16()) }

	body.Chan = getU32()
	body.Proc = getU32()
	body.Bank = getU32()
	body.Term = getU32()
	body.ChanCaps = getU32()
	body.DoutCaps = getU32()
	body.DinpCaps = getU32()
	body.AoutCaps = getU32()
	body.AinpCaps = getU32()
	body.SpkCaps = getU32()
	body.PhysCalIn.unmarshal(b[off:])
	off += scalingSize
	body.PhysFiltIn.unmarshal(b[off:])
	off += filterDescSize
	body.PhysCalOut.unmarshal(b[off:])
	off += scalingSize
	body.PhysFiltOut.unmarshal(b[off:])
	off += filterDescSize
	copy(body.Label[:], b[off:off+16])
	off += 16
	body.UserFlags = getU32()
	for i := range body.Position {
		body.Position[i] = getI32()
	}
	body.ScaleIn.unmarshal(b[off:])
	off += scalingSize
	body.ScaleOut.unmarshal(b[off:])
	off += scalingSize
	body.DoutOpts = getU32()
	body.DinpOpts = getU32()
	body.AoutOpts = getU32()
	body.EOPChar = getU32()
	if wire.AtLeast(WireVersion41) {
		body.TrigInstrument = b[off]
		off++
	}
	body.TrigType = b[off]
	off++
	body.TrigChan = getU16()
	body.TrigVal = getU16()
	body.AinpOpts = getU32()
	body.LNCRate = getU32()
	body.SmpFilter = getU32()
	body.SmpGroup = getU32()
	body.SmpDispMin = getI32()
	body.SmpDispMax = getI32()
	body.SpkFilter = getU32()
	body.SpkDispMax = getI32()
	body.LNCDispMax = getI32()
	body.SpkOpts = getU32()
	body.SpkThrLevel = getI32()
	body.SpkThrLimit = getI32()
	body.SpkGroup = getU32()
	body.AmplRejPos = getI16()
	body.AmplRejNeg = getI16()
	body.RefElecChan = getU32()
	for i := range body.UnitMapping {
		body.UnitMapping[i].unmarshal(b[off:])
		off += unitMappingSize
	}
	for i := range body.SpkHoops {
		for j := range body.SpkHoops[i] {
			body.SpkHoops[i][j].unmarshal(b[off:])
			off += hoopSize
		}
	}
	return p, nil
}

// Classify derives the channel class from a ChanInfo record's capability
// bits, per the decision rule: isolated+ainp -> FrontEnd; ainp alone ->
// AnalogIn; dinp with serial baud bits -> Serial; dinp alone -> DigitalIn;
// dout -> DigitalOut; aout+audio -> Audio; otherwise Any.
func (b *ChanInfoBody) Classify() ChannelClass {
	isolated := b.ChanCaps&ChanCapIsolated != 0
	ainp := b.ChanCaps&ChanCapAnalogIn != 0
	dinp := b.ChanCaps&ChanCapDigitalIn != 0
	dout := b.ChanCaps&ChanCapDigitalOut != 0
	aout := b.ChanCaps&ChanCapAnalogOut != 0

	switch {
	case isolated && ainp:
		return ClassFrontEnd
	case ainp && !isolated:
		return ClassAnalogIn
	case dinp && b.DinpCaps&DinpSerialMask != 0:
		return ClassSerial
	case dinp:
		return ClassDigitalIn
	case dout:
		return ClassDigitalOut
	case aout && b.AoutCaps&AoutAudio != 0:
		return ClassAudio
	default:
		return ClassAny
	}
}
