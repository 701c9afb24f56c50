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
	"fmt"

	"github.com/davecgh/go-spew/spew"
	"github.com/sirupsen/logrus"
)

// decodeFunc decodes one concrete body layout given the already-parsed
// header and the raw body bytes (header stripped).
type decodeFunc func(wire WireVersion, header Header, b []byte) (Packet, error)

func wrapDecoder[T Packet](f func(WireVersion, Header, []byte) (T, error)) decodeFunc {
	return func(wire WireVersion, header Header, b []byte) (Packet, error) {
		return f(wire, header, b)
	}
}

// configDecoders maps an exact configuration packet type to its decoder.
var configDecoders = map[PacketType]decodeFunc{
	TypeSysRep:                 wrapDecoder(UnmarshalSysInfo),
	TypeSysSet:                 wrapDecoder(UnmarshalSysInfo),
	TypeProtocolMonitor:        wrapDecoder(UnmarshalSysProtocolMonitor),
	TypeProcInfo:                wrapDecoder(UnmarshalProcInfo),
	TypeBankInfo:                wrapDecoder(UnmarshalBankInfo),
	TypeFiltInfoRep:             wrapDecoder(UnmarshalFiltInfo),
	TypeFiltInfoSet:             wrapDecoder(UnmarshalFiltInfo),
	TypeAdaptFiltRep:            wrapDecoder(UnmarshalAdaptFiltInfo),
	TypeAdaptFiltSet:            wrapDecoder(UnmarshalAdaptFiltInfo),
	TypeRefElecFiltRep:          wrapDecoder(UnmarshalRefElecFiltInfo),
	TypeRefElecFiltSet:          wrapDecoder(UnmarshalRefElecFiltInfo),
	TypeNTrodeInfoRep:           wrapDecoder(UnmarshalNTrodeInfo),
	TypeNTrodeInfoSet:           wrapDecoder(UnmarshalNTrodeInfo),
	TypeLNCRep:                  wrapDecoder(UnmarshalLNC),
	TypeLNCSet:                  wrapDecoder(UnmarshalLNC),
	TypeVideoSynchRep:           wrapDecoder(UnmarshalVideoSynch),
	TypeVideoSynchSet:           wrapDecoder(UnmarshalVideoSynch),
	TypeGroupInfoRep:            wrapDecoder(UnmarshalGroupInfo),
	TypeGroupInfoSet:            wrapDecoder(UnmarshalGroupInfo),
	TypeCommentRep:               wrapDecoder(UnmarshalComment),
	TypeCommentSet:               wrapDecoder(UnmarshalComment),
	TypeNPlayRep:                 wrapDecoder(UnmarshalNPlay),
	TypeNPlaySet:                 wrapDecoder(UnmarshalNPlay),
	TypeSetDOutRep:               wrapDecoder(UnmarshalSetDOut),
	TypeSetDOutSet:               wrapDecoder(UnmarshalSetDOut),
	TypeVideoTrackRep:            wrapDecoder(UnmarshalVideoTrack),
	TypeVideoTrackSet:            wrapDecoder(UnmarshalVideoTrack),
	TypeFileCFGRep:                wrapDecoder(UnmarshalFileCFG),
	TypeFileCFGSet:                wrapDecoder(UnmarshalFileCFG),
	TypeLogRep:                    wrapDecoder(UnmarshalLog),
	TypeLogSet:                    wrapDecoder(UnmarshalLog),
}

// isChanInfoFamily covers every CHANREP*/CHANSET* scoped variant (0x40-0x4F,
// 0xC0-0xCF): all of them carry a ChanInfo-shaped body, just with only the
// attributes they own actually meaningful; the rest mirror the channel's
// last-known state and should be merged scoped-field-only by the caller.
func isChanInfoFamily(t PacketType) bool {
	fam := t.Family()
	return fam == TypeChanInfoRep.Family() || fam == TypeChanInfoSet.Family()
}

// Factory turns raw datagrams into typed Packet values and back, for a
// fixed wire version. It is safe for concurrent use: its maps are immutable
// after construction.
type Factory struct {
	wire WireVersion
	log  *logrus.Entry
}

// NewFactory returns a Factory bound to wire version v.
func NewFactory(v WireVersion, log *logrus.Entry) *Factory {
	if log == nil {
		log = logrus.NewEntry(logrus.StandardLogger())
	}
	return &Factory{wire: v, log: log}
}

// WireVersion reports the version this factory decodes/encodes with.
func (f *Factory) WireVersion() WireVersion { return f.wire }

// GroupChanCounter resolves how many channels a sample group id carries, so
// the caller can size the decoded SampleGroup without over-reading the
// dummy alignment slot. nil or a miss falls back to filling every 16-bit
// slot in the body as a sample.
type GroupChanCounter func(group PacketType) (int, bool)

// ChannelClassLookup resolves a chid's channel class from the live
// configuration mirror, so Decode can pick the right per-channel event body
// for a non-group, non-configuration datagram. A miss (ok=false) tells Decode
// the chid isn't known yet.
type ChannelClassLookup func(chid uint16) (ChannelClass, bool)

// Decode parses one datagram (header + body) into a typed Packet, following
// the dispatch rule: chid with the configuration bit set decodes via the
// type-keyed configuration table (falling back to the type's family, then
// to Generic); chid == ChanGroup decodes as a SampleGroup when type > 0, a
// HeartBeat when type == 0; any other chid decodes per its channel class —
// FrontEnd/AnalogIn as a SpikeEvent, DigitalIn/Serial as a DigitalInputEvent,
// everything else as Generic. classOf nil, or a miss, defaults to FrontEnd so
// callers that don't care to classify keep decoding spikes as before.
func (f *Factory) Decode(b []byte, counter GroupChanCounter, classOf ChannelClassLookup) (Packet, error) {
	header, err := UnmarshalHeader(f.wire, b)
	if err != nil {
		return nil, err
	}
	body := b[f.wire.HeaderSize():]
	declared := header.BodyBytes()
	if declared > 0 && len(body) < declared {
		return nil, fmt.Errorf("%w: chid=%#x type=%#x declared %d got %d",
			ErrTruncatedDatagram, header.ChanID, header.Type, declared, len(body))
	}
	if declared > 0 && len(body) > declared {
		body = body[:declared]
	}

	switch {
	case IsConfiguration(header.ChanID):
		t := PacketType(header.Type)
		if dec, ok := configDecoders[t]; ok {
			return dec(f.wire, header, body)
		}
		if isChanInfoFamily(t) {
			return UnmarshalChanInfo(f.wire, header, body)
		}
		if dec, ok := configDecoders[t.Family()]; ok {
			return dec(f.wire, header, body)
		}
		if f.log.Logger.IsLevelEnabled(logrus.DebugLevel) {
			f.log.WithFields(logrus.Fields{"chid": header.ChanID, "type": header.Type}).
				Debugf("nsp: unrecognized configuration packet, falling back to generic: %s", spew.Sdump(header))
		}
		return UnmarshalGeneric(f.wire, header, body)

	case IsGroup(header.ChanID):
		if header.Type == 0 {
			return UnmarshalHeartBeat(f.wire, header, body)
		}
		chanCount := 0
		if counter != nil {
			if n, ok := counter(PacketType(header.Type)); ok {
				chanCount = n
			}
		}
		return UnmarshalSampleGroup(f.wire, header, body, chanCount)

	default:
		class := ClassFrontEnd
		if classOf != nil {
			if c, ok := classOf(header.ChanID); ok {
				class = c
			}
		}
		switch class {
		case ClassFrontEnd, ClassAnalogIn:
			return UnmarshalSpikeEvent(f.wire, header, body)
		case ClassDigitalIn, ClassSerial:
			return UnmarshalDigitalInputEvent(f.wire, header, body)
		default:
			return UnmarshalGeneric(f.wire, header, body)
		}
	}
}

// Encode serializes p into b using this factory's wire version, reporting
// the number of bytes written. If the marshaled size is not a multiple of
// 4 bytes, the encoded form is truncated down to the nearest word boundary
// (matching the device's own on-wire behavior) and truncated is true, so
// callers can emit a debug log as the design calls for.
func (f *Factory) Encode(p BinaryMarshalerTo, b []byte) (n int, truncated bool, err error) {
	scratch := make([]byte, MaxPacketBytes)
	n, err = p.MarshalBinaryTo(f.wire, scratch)
	if err != nil {
		return 0, false, err
	}
	aligned := roundDownMod4(n)
	if aligned != n {
		truncated = true
		n = aligned
	}
	if len(b) < n {
		return 0, false, errShortBuffer("Encode", n, len(b))
	}
	copy(b, scratch[:n])
	if truncated {
		f.log.Debug("nsp: encoded packet truncated to a 4-byte boundary")
	}
	return n, truncated, nil
}

// ClassifyHint narrows which family a freshly constructed, not-yet-typed
// configuration write should target when more than one scoped variant could
// apply, per the channel's classification (e.g. a FrontEnd/AnalogIn channel
// takes CHANSETAINP, a DigitalIn channel takes CHANSETDINP).
func ClassifyHint(class ChannelClass) PacketType {
	switch class {
	case ClassFrontEnd, ClassAnalogIn:
		return TypeChanAInpSet
	case ClassDigitalIn, ClassSerial:
		return TypeChanDInpSet
	case ClassDigitalOut:
		return TypeChanDOutSet
	case ClassAudio:
		return TypeChanAOutSet
	default:
		return TypeChanInfoSet
	}
}
