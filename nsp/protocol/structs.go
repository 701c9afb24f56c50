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

// Scaling is the physical/user scaling descriptor shared by analog input and
// output channel attributes. Dense-packed, little-endian, 24 bytes.
type Scaling struct {
	DigitalMin   int16
	DigitalMax   int16
	AnalogMin    int32
	AnalogMax    int32
	AnalogGain   int32
	AnalogUnit   [8]byte
}

const scalingSize = 24

func (s *Scaling) marshalTo(b []byte) {
	binary.LittleEndian.PutUint16(b[0:], uint16(s.DigitalMin))
	binary.LittleEndian.PutUint16(b[2:], uint16(s.DigitalMax))
	binary.LittleEndian.PutUint32(b[4:], uint32(s.AnalogMin))
	binary.LittleEndian.PutUint32(b[8:], uint32(s.AnalogMax))
	binary.LittleEndian.PutUint32(b[12:], uint32(s.AnalogGain))
	copy(b[16:24], s.AnalogUnit[:])
}

func (s *Scaling) unmarshal(b []byte) {
	s.DigitalMin = int16(binary.LittleEndian.Uint16(b[0:]))
	s.DigitalMax = int16(binary.LittleEndian.Uint16(b[2:]))
	s.AnalogMin = int32(binary.LittleEndian.Uint32(b[4:]))
	s.AnalogMax = int32(binary.LittleEndian.Uint32(b[8:]))
	s.AnalogGain = int32(binary.LittleEndian.Uint32(b[12:]))
	copy(s.AnalogUnit[:], b[16:24])
}

// FilterDesc names and characterizes an analog filter applied to a channel's
// pathway. Dense-packed, little-endian, 40 bytes.
type FilterDesc struct {
	Label        [16]byte
	HighPassFreq uint32
	HighPassOrder uint32
	HighPassType uint32
	LowPassFreq  uint32
	LowPassOrder uint32
	LowPassType  uint32
}

const filterDescSize = 40

func (f *FilterDesc) marshalTo(b []byte) {
	copy(b[0:16], f.Label[:])
	binary.LittleEndian.PutUint32(b[16:], f.HighPassFreq)
	binary.LittleEndian.PutUint32(b[20:], f.HighPassOrder)
	binary.LittleEndian.PutUint32(b[24:], f.HighPassType)
	binary.LittleEndian.PutUint32(b[28:], f.LowPassFreq)
	binary.LittleEndian.PutUint32(b[32:], f.LowPassOrder)
	binary.LittleEndian.PutUint32(b[36:], f.LowPassType)
}

func (f *FilterDesc) unmarshal(b []byte) {
	copy(f.Label[:], b[0:16])
	f.HighPassFreq = binary.LittleEndian.Uint32(b[16:])
	f.HighPassOrder = binary.LittleEndian.Uint32(b[20:])
	f.HighPassType = binary.LittleEndian.Uint32(b[24:])
	f.LowPassFreq = binary.LittleEndian.Uint32(b[28:])
	f.LowPassOrder = binary.LittleEndian.Uint32(b[32:])
	f.LowPassType = binary.LittleEndian.Uint32(b[36:])
}

// UnitMapping is a manual spike-sorting unit override for one of a channel's
// up to 5 units. Dense-packed, little-endian, 24 bytes.
type UnitMapping struct {
	Override int16
	Origin   [3]int16
	Shape    [3][3]int16
	Phi      int16
	Valid    uint32
}

const unitMappingSize = 24

func (u *UnitMapping) marshalTo(b []byte) {
	binary.LittleEndian.PutUint16(b[0:], uint16(u.Override))
	off := 2
	for _, v := range u.Origin {
		binary.LittleEndian.PutUint16(b[off:], uint16(v))
		off += 2
	}
	for _, row := range u.Shape {
		for _, v := range row {
			binary.LittleEndian.PutUint16(b[off:], uint16(v))
			off += 2
		}
	}
	binary.LittleEndian.PutUint16(b[off:], uint16(u.Phi))
	off += 2
	binary.LittleEndian.PutUint32(b[off:], u.Valid)
}

func (u *UnitMapping) unmarshal(b []byte) {
	u.Override = int16(binary.LittleEndian.Uint16(b[0:]))
	off := 2
	for i := range u.Origin {
		u.Origin[i] = int16(binary.LittleEndian.Uint16(b[off:]))
		off += 2
	}
	for i := range u.Shape {
		for j := range u.Shape[i] {
			u.Shape[i][j] = int16(binary.LittleEndian.Uint16(b[off:]))
			off += 2
		}
	}
	u.Phi = int16(binary.LittleEndian.Uint16(b[off:]))
	off += 2
	u.Valid = binary.LittleEndian.Uint32(b[off:])
}

// Hoop is one sort window (time, min, max) used in spike unit assignment; up
// to 4 per unit, up to 5 units per channel. Dense-packed, little-endian, 8 bytes.
type Hoop struct {
	Valid uint16 // 0 = undefined, 1 = valid
	Time  int16  // time offset into the spike window
	Min   int16
	Max   int16
}

const hoopSize = 8

func (h *Hoop) marshalTo(b []byte) {
	binary.LittleEndian.PutUint16(b[0:], h.Valid)
	binary.LittleEndian.PutUint16(b[2:], uint16(h.Time))
	binary.LittleEndian.PutUint16(b[4:], uint16(h.Min))
	binary.LittleEndian.PutUint16(b[6:], uint16(h.Max))
}

func (h *Hoop) unmarshal(b []byte) {
	h.Valid = binary.LittleEndian.Uint16(b[0:])
	h.Time = int16(binary.LittleEndian.Uint16(b[2:]))
	h.Min = int16(binary.LittleEndian.Uint16(b[4:]))
	h.Max = int16(binary.LittleEndian.Uint16(b[6:]))
}

// HoopSet is the up-to-4-hoops sort window set for a single spike-sorted unit.
type HoopSet [4]Hoop

const hoopSetSize = 4 * hoopSize
