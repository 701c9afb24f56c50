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

// MaxWaveformSamples bounds a SpikeEvent's trailing waveform, per the
// instrument's fixed spike-length ceiling.
const MaxWaveformSamples = 128

// SpikeEvent is a per-channel detected spike: its sorted unit and a snippet
// of the waveform that triggered it. The channel it belongs to is carried in
// the shared Header (chid), not in the body.
type SpikeEvent struct {
	Header   Header
	Unit     uint8
	Reserved uint8
	Waveform []int16 // up to MaxWaveformSamples samples
}

const spikeEventFixedSize = 2

func (p *SpikeEvent) GetHeader() *Header      { return &p.Header }
func (p *SpikeEvent) DefaultType() PacketType { return PacketType(0) }

func (p *SpikeEvent) MarshalBinaryTo(wire WireVersion, b []byte) (int, error) {
	hn, err := MarshalHeaderTo(wire, p.Header, b)
	if err != nil {
		return 0, err
	}
	n := len(p.Waveform)
	if n > MaxWaveformSamples {
		n = MaxWaveformSamples
	}
	trailing := make([]byte, 2*n)
	for i := 0; i < n; i++ {
		binary.LittleEndian.PutUint16(trailing[i*2:], uint16(p.Waveform[i]))
	}
	fixed := []byte{p.Unit, p.Reserved}
	if (len(fixed)+len(trailing))%4 != 0 {
		// a dummy trailing sample keeps the body word-aligned so no sample is
		// cut off; an even-length waveform therefore decodes with one extra
		// zero sample (dropped again by the clamp at MaxWaveformSamples)
		trailing = append(trailing, 0, 0)
	}
	body, _ := encodeFixedPlusVar(fixed, trailing)
	if len(b) < hn+len(body) {
		return 0, errShortBuffer("SpikeEvent", hn+len(body), len(b))
	}
	copy(b[hn:], body)
	return hn + len(body), nil
}

func UnmarshalSpikeEvent(wire WireVersion, header Header, b []byte) (*SpikeEvent, error) {
	b = zeroPad(b, spikeEventFixedSize)
	p := &SpikeEvent{Header: header}
	p.Unit = b[0]
	p.Reserved = b[1]
	rest := b[spikeEventFixedSize:]
	n := len(rest) / 2
	if n > MaxWaveformSamples {
		n = MaxWaveformSamples
	}
	p.Waveform = make([]int16, n)
	for i := 0; i < n; i++ {
		p.Waveform[i] = int16(binary.LittleEndian.Uint16(rest[i*2:]))
	}
	return p, nil
}

// DigitalInputEvent is a per-channel digital/serial transition: the value
// read at the time of the event, which bits changed to trigger it, and the
// edge/condition type that armed it. The channel it belongs to is carried in
// the shared Header (chid), not in the body.
type DigitalInputEvent struct {
	Header      Header
	ValueRead   uint32
	BitsChanged uint32
	EventType   uint32
}

const digitalInputEventFixedSize = 12

func (p *DigitalInputEvent) GetHeader() *Header      { return &p.Header }
func (p *DigitalInputEvent) DefaultType() PacketType { return PacketType(0) }

func (p *DigitalInputEvent) MarshalBinaryTo(wire WireVersion, b []byte) (int, error) {
	hn, err := MarshalHeaderTo(wire, p.Header, b)
	if err != nil {
		return 0, err
	}
	need := hn + digitalInputEventFixedSize
	if len(b) < need {
		return 0, errShortBuffer("DigitalInputEvent", need, len(b))
	}
	binary.LittleEndian.PutUint32(b[hn:], p.ValueRead)
	binary.LittleEndian.PutUint32(b[hn+4:], p.BitsChanged)
	binary.LittleEndian.PutUint32(b[hn+8:], p.EventType)
	return need, nil
}

func UnmarshalDigitalInputEvent(wire WireVersion, header Header, b []byte) (*DigitalInputEvent, error) {
	b = zeroPad(b, digitalInputEventFixedSize)
	return &DigitalInputEvent{
		Header:      header,
		ValueRead:   binary.LittleEndian.Uint32(b[0:]),
		BitsChanged: binary.LittleEndian.Uint32(b[4:]),
		EventType:   binary.LittleEndian.Uint32(b[8:]),
	}, nil
}

// MaxGroupSamples bounds a SampleGroup's trailing per-channel sample array.
const MaxGroupSamples = 272

// SampleGroup is one multiplexed acquisition frame for a sample group: the
// group id is carried in Header.Type (a non-zero PacketType), Header.ChanID
// is always ChanGroup (0), and Samples holds one value per channel in the
// group's configured order. The device pads odd-length groups with a dummy
// trailing slot to keep the body word-aligned; callers should size Samples
// from the group's channel count, not from the wire length, to avoid
// surfacing the padding slot.
type SampleGroup struct {
	Header  Header
	Samples []int16
}

func (p *SampleGroup) GetHeader() *Header      { return &p.Header }
func (p *SampleGroup) DefaultType() PacketType { return PacketType(0) }

func (p *SampleGroup) MarshalBinaryTo(wire WireVersion, b []byte) (int, error) {
	hn, err := MarshalHeaderTo(wire, p.Header, b)
	if err != nil {
		return 0, err
	}
	n := len(p.Samples)
	if n > MaxGroupSamples {
		n = MaxGroupSamples
	}
	body := make([]byte, 2*n)
	for i := 0; i < n; i++ {
		binary.LittleEndian.PutUint16(body[i*2:], uint16(p.Samples[i]))
	}
	if len(body)%4 != 0 {
		body = append(body, 0, 0) // dummy trailing slot keeps the body word-aligned
	}
	if len(b) < hn+len(body) {
		return 0, errShortBuffer("SampleGroup", hn+len(body), len(b))
	}
	copy(b[hn:], body)
	return hn + len(body), nil
}

// UnmarshalSampleGroup decodes chanCount samples from b, ignoring any
// trailing dummy padding slot beyond that count.
func UnmarshalSampleGroup(wire WireVersion, header Header, b []byte, chanCount int) (*SampleGroup, error) {
	avail := len(b) / 2
	if chanCount <= 0 || chanCount > avail {
		chanCount = avail
	}
	if chanCount > MaxGroupSamples {
		chanCount = MaxGroupSamples
	}
	p := &SampleGroup{Header: header, Samples: make([]int16, chanCount)}
	for i := 0; i < chanCount; i++ {
		p.Samples[i] = int16(binary.LittleEndian.Uint16(b[i*2:]))
	}
	return p, nil
}

// Generic is the fallback packet kind used when the factory recognizes the
// header (chid/type) but has no concrete body layout registered for it. The
// raw body is preserved as 32-bit little-endian words so callers can still
// inspect it, and so a Generic packet re-encodes byte-for-byte.
type Generic struct {
	Header Header
	Words  []uint32
}

func (p *Generic) GetHeader() *Header      { return &p.Header }
func (p *Generic) DefaultType() PacketType { return PacketType(p.Header.Type) }

func (p *Generic) MarshalBinaryTo(wire WireVersion, b []byte) (int, error) {
	hn, err := MarshalHeaderTo(wire, p.Header, b)
	if err != nil {
		return 0, err
	}
	need := hn + 4*len(p.Words)
	if len(b) < need {
		return 0, errShortBuffer("Generic", need, len(b))
	}
	off := hn
	for _, w := range p.Words {
		binary.LittleEndian.PutUint32(b[off:], w)
		off += 4
	}
	return off, nil
}

func UnmarshalGeneric(wire WireVersion, header Header, b []byte) (*Generic, error) {
	n := len(b) / 4
	words := make([]uint32, n)
	for i := 0; i < n; i++ {
		words[i] = binary.LittleEndian.Uint32(b[i*4:])
	}
	return &Generic{Header: header, Words: words}, nil
}

// HeartBeat is the empty-bodied keepalive exchanged to detect a dead link.
type HeartBeat struct {
	Header Header
}

func (p *HeartBeat) GetHeader() *Header      { return &p.Header }
func (p *HeartBeat) DefaultType() PacketType { return TypeHeartbeat }

func (p *HeartBeat) MarshalBinaryTo(wire WireVersion, b []byte) (int, error) {
	return MarshalHeaderTo(wire, p.Header, b)
}

func UnmarshalHeartBeat(wire WireVersion, header Header, b []byte) (*HeartBeat, error) {
	return &HeartBeat{Header: header}, nil
}
