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

// Package protocol implements the NSP wire format: versioned packet
// headers, the concrete body layouts carried over UDP, and the factory
// that maps an incoming datagram to a typed record.
package protocol

import (
	"encoding/binary"
	"fmt"

	hashiversion "github.com/hashicorp/go-version"
)

// WireVersion identifies which of the three coexisting header layouts
// a connection has been configured to speak. It is frozen once a Factory
// is constructed; every packet exchanged over that connection uses it.
type WireVersion uint8

// Supported wire versions, oldest first.
const (
	WireVersion311 WireVersion = iota
	WireVersion40
	WireVersion41
)

// semver gives us a real ordering (and a String()) instead of hand-rolled
// comparisons every time code needs to ask "is this 4.1 or later".
var wireSemver = map[WireVersion]*hashiversion.Version{
	WireVersion311: hashiversion.Must(hashiversion.NewVersion("3.11.0")),
	WireVersion40:  hashiversion.Must(hashiversion.NewVersion("4.0.0")),
	WireVersion41:  hashiversion.Must(hashiversion.NewVersion("4.1.0")),
}

func (v WireVersion) String() string {
	sv, ok := wireSemver[v]
	if !ok {
		return "unknown"
	}
	return sv.String()
}

// AtLeast reports whether v is the same wire version as, or newer than, other.
func (v WireVersion) AtLeast(other WireVersion) bool {
	sv, ok := wireSemver[v]
	if !ok {
		return false
	}
	osv, ok := wireSemver[other]
	if !ok {
		return false
	}
	return sv.GreaterThanOrEqual(osv)
}

// HeaderSize returns the on-the-wire byte size of the header for this version.
func (v WireVersion) HeaderSize() int {
	if v == WireVersion311 {
		return 8
	}
	return 16
}

// Special chid values, Table: chid of 0 means a multichannel sample-group
// packet; chid with the top bit set means a configuration packet.
const (
	ChanGroup         uint16 = 0x0000
	ChanConfiguration uint16 = 0x8000
)

// IsConfiguration reports whether chid identifies a configuration packet.
func IsConfiguration(chid uint16) bool { return chid&ChanConfiguration != 0 }

// IsGroup reports whether chid identifies a multichannel sample-group packet.
func IsGroup(chid uint16) bool { return chid == ChanGroup }

// Header is the canonical, version-independent in-memory representation of
// the fixed record at the start of every datagram body. Concrete wire
// versions narrow some of these fields; decoding widens them back out.
type Header struct {
	Time       uint64
	ChanID     uint16
	Type       uint16
	DataLength uint16 // dlen: count of 32-bit words in the body that follows
	Instrument uint8
	Reserved   uint8
}

// BodyBytes returns how many body bytes this header declares, i.e. dlen*4.
func (h Header) BodyBytes() int { return int(h.DataLength) * 4 }

// UnmarshalHeader decodes a Header from the first HeaderSize(v) bytes of b.
func UnmarshalHeader(v WireVersion, b []byte) (Header, error) {
	var h Header
	size := v.HeaderSize()
	if len(b) < size {
		return h, fmt.Errorf("%w: need %d header bytes, got %d", ErrTruncatedDatagram, size, len(b))
	}
	switch v {
	case WireVersion311:
		h.Time = uint64(binary.LittleEndian.Uint32(b[0:]))
		h.ChanID = binary.LittleEndian.Uint16(b[4:])
		h.Type = uint16(b[6])
		h.DataLength = uint16(b[7])
	case WireVersion40:
		h.Time = binary.LittleEndian.Uint64(b[0:])
		h.ChanID = binary.LittleEndian.Uint16(b[8:])
		h.Type = uint16(b[10])
		h.DataLength = binary.LittleEndian.Uint16(b[11:])
		h.Instrument = b[13]
		h.Reserved = b[14] // second reserved byte (b[15]) is unused padding
	case WireVersion41:
		h.Time = binary.LittleEndian.Uint64(b[0:])
		h.ChanID = binary.LittleEndian.Uint16(b[8:])
		h.Type = binary.LittleEndian.Uint16(b[10:])
		h.DataLength = binary.LittleEndian.Uint16(b[12:])
		h.Instrument = b[14]
		h.Reserved = b[15]
	default:
		return h, fmt.Errorf("%w: unsupported wire version %v", ErrWireVersionMismatch, v)
	}
	return h, nil
}

// MarshalHeaderTo encodes h into b using wire version v, returning the
// number of bytes written (always v.HeaderSize()).
func MarshalHeaderTo(v WireVersion, h Header, b []byte) (int, error) {
	size := v.HeaderSize()
	if len(b) < size {
		return 0, fmt.Errorf("not enough buffer to write header: need %d, got %d", size, len(b))
	}
	switch v {
	case WireVersion311:
		binary.LittleEndian.PutUint32(b[0:], uint32(h.Time))
		binary.LittleEndian.PutUint16(b[4:], h.ChanID)
		b[6] = byte(h.Type)
		b[7] = byte(h.DataLength)
	case WireVersion40:
		binary.LittleEndian.PutUint64(b[0:], h.Time)
		binary.LittleEndian.PutUint16(b[8:], h.ChanID)
		b[10] = byte(h.Type)
		binary.LittleEndian.PutUint16(b[11:], h.DataLength)
		b[13] = h.Instrument
		b[14] = h.Reserved
		b[15] = 0
	case WireVersion41:
		binary.LittleEndian.PutUint64(b[0:], h.Time)
		binary.LittleEndian.PutUint16(b[8:], h.ChanID)
		binary.LittleEndian.PutUint16(b[10:], h.Type)
		binary.LittleEndian.PutUint16(b[12:], h.DataLength)
		b[14] = h.Instrument
		b[15] = h.Reserved
	default:
		return 0, fmt.Errorf("%w: unsupported wire version %v", ErrWireVersionMismatch, v)
	}
	return size, nil
}
