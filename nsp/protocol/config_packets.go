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

// FiltInfo names and characterizes one of the instrument's shared filters,
// referenced by index from ChanInfo's smpfilter/spkfilter fields.
type FiltInfo struct {
	Header Header
	Proc   uint32
	Filt   uint32
	Desc   FilterDesc
}

const filtInfoBodySize = 4*2 + filterDescSize

func (p *FiltInfo) GetHeader() *Header      { return &p.Header }
func (p *FiltInfo) DefaultType() PacketType { return TypeFiltInfoSet }

func (p *FiltInfo) MarshalBinaryTo(wire WireVersion, b []byte) (int, error) {
	hn, err := MarshalHeaderTo(wire, p.Header, b)
	if err != nil {
		return 0, err
	}
	if len(b) < hn+filtInfoBodySize {
		return 0, errShortBuffer("FiltInfo", hn+filtInfoBodySize, len(b))
	}
	off := hn
	binary.LittleEndian.PutUint32(b[off:], p.Proc)
	off += 4
	binary.LittleEndian.PutUint32(b[off:], p.Filt)
	off += 4
	p.Desc.marshalTo(b[off:])
	return off + filterDescSize, nil
}

func UnmarshalFiltInfo(wire WireVersion, header Header, b []byte) (*FiltInfo, error) {
	b = zeroPad(b, filtInfoBodySize)
	p := &FiltInfo{Header: header}
	off := 0
	p.Proc = binary.LittleEndian.Uint32(b[off:])
	off += 4
	p.Filt = binary.LittleEndian.Uint32(b[off:])
	off += 4
	p.Desc.unmarshal(b[off:])
	return p, nil
}

// GroupInfo names one of the device's sample groups (1-6) and lists the
// channel IDs multiplexed into it, in acquisition order.
type GroupInfo struct {
	Header Header
	Proc   uint32
	Group  uint32
	Label  [16]byte
	ChanCount uint32
	ChanIDs   []uint16
}

const groupInfoFixedSize = 4*3 + 16

func (p *GroupInfo) GetHeader() *Header      { return &p.Header }
func (p *GroupInfo) DefaultType() PacketType { return TypeGroupInfoSet }

func (p *GroupInfo) MarshalBinaryTo(wire WireVersion, b []byte) (int, error) {
	hn, err := MarshalHeaderTo(wire, p.Header, b)
	if err != nil {
		return 0, err
	}
	trailing := make([]byte, 2*len(p.ChanIDs))
	for i, id := range p.ChanIDs {
		binary.LittleEndian.PutUint16(trailing[i*2:], id)
	}
	if len(trailing)%4 != 0 {
		// a dummy trailing slot keeps the body word-aligned so no id is cut off
		trailing = append(trailing, 0, 0)
	}
	fixed := make([]byte, groupInfoFixedSize)
	binary.LittleEndian.PutUint32(fixed[0:], p.Proc)
	binary.LittleEndian.PutUint32(fixed[4:], p.Group)
	copy(fixed[8:24], p.Label[:])
	binary.LittleEndian.PutUint32(fixed[24:], uint32(len(p.ChanIDs)))
	body, truncated := encodeFixedPlusVar(fixed, trailing)
	_ = truncated
	if len(b) < hn+len(body) {
		return 0, errShortBuffer("GroupInfo", hn+len(body), len(b))
	}
	copy(b[hn:], body)
	return hn + len(body), nil
}

func UnmarshalGroupInfo(wire WireVersion, header Header, b []byte) (*GroupInfo, error) {
	b = zeroPad(b, groupInfoFixedSize)
	p := &GroupInfo{Header: header}
	p.Proc = binary.LittleEndian.Uint32(b[0:])
	p.Group = binary.LittleEndian.Uint32(b[4:])
	copy(p.Label[:], b[8:24])
	p.ChanCount = binary.LittleEndian.Uint32(b[24:])
	rest := b[groupInfoFixedSize:]
	n := int(p.ChanCount)
	if n*2 > len(rest) {
		n = len(rest) / 2
	}
	p.ChanIDs = make([]uint16, n)
	for i := 0; i < n; i++ {
		p.ChanIDs[i] = binary.LittleEndian.Uint16(rest[i*2:])
	}
	return p, nil
}

// NTrodeInfo groups channels into a single spike-sorted n-trode (tetrode,
// stereotrode, etc.) and carries the shared sort hoops/unit mappings.
type NTrodeInfo struct {
	Header      Header
	NTrode      uint32
	Label       [16]byte
	NumChans    uint32
	ChanIDs     [4]uint16
	UnitMapping [5]UnitMapping
	SpkHoops    [5]HoopSet
}

const ntrodeInfoBodySize = 4*2 + 16 + 4*2 + 5*unitMappingSize + 5*hoopSetSize

func (p *NTrodeInfo) GetHeader() *Header      { return &p.Header }
func (p *NTrodeInfo) DefaultType() PacketType { return TypeNTrodeInfoSet }

func (p *NTrodeInfo) MarshalBinaryTo(wire WireVersion, b []byte) (int, error) {
	hn, err := MarshalHeaderTo(wire, p.Header, b)
	if err != nil {
		return 0, err
	}
	if len(b) < hn+ntrodeInfoBodySize {
		return 0, errShortBuffer("NTrodeInfo", hn+ntrodeInfoBodySize, len(b))
	}
	off := hn
	binary.LittleEndian.PutUint32(b[off:], p.NTrode)
	off += 4
	copy(b[off:off+16], p.Label[:])
	off += 16
	binary.LittleEndian.PutUint32(b[off:], p.NumChans)
	off += 4
	for _, c := range p.ChanIDs {
		binary.LittleEndian.PutUint16(b[off:], c)
		off += 2
	}
	for i := range p.UnitMapping {
		p.UnitMapping[i].marshalTo(b[off:])
		off += unitMappingSize
	}
	for i := range p.SpkHoops {
		for j := range p.SpkHoops[i] {
			p.SpkHoops[i][j].marshalTo(b[off:])
			off += hoopSize
		}
	}
	return off, nil
}

func UnmarshalNTrodeInfo(wire WireVersion, header Header, b []byte) (*NTrodeInfo, error) {
	b = zeroPad(b, ntrodeInfoBodySize)
	p := &NTrodeInfo{Header: header}
	off := 0
	p.NTrode = binary.LittleEndian.Uint32(b[off:])
	off += 4
	copy(p.Label[:], b[off:off+16])
	off += 16
	p.NumChans = binary.LittleEndian.Uint32(b[off:])
	off += 4
	for i := range p.ChanIDs {
		p.ChanIDs[i] = binary.LittleEndian.Uint16(b[off:])
		off += 2
	}
	for i := range p.UnitMapping {
		p.UnitMapping[i].unmarshal(b[off:])
		off += unitMappingSize
	}
	for i := range p.SpkHoops {
		for j := range p.SpkHoops[i] {
			p.SpkHoops[i][j].unmarshal(b[off:])
			off += hoopSize
		}
	}
	return p, nil
}

// AdaptFiltInfo configures the per-channel adaptive filter used ahead of
// spike detection.
type AdaptFiltInfo struct {
	Header   Header
	Chan     uint32
	Enabled  uint32
	LearnMode uint32
	LearnFreq uint32
	RefChan1  uint32
	RefChan2  uint32
}

const adaptFiltInfoBodySize = 4 * 6

func (p *AdaptFiltInfo) GetHeader() *Header      { return &p.Header }
func (p *AdaptFiltInfo) DefaultType() PacketType { return TypeAdaptFiltSet }

func (p *AdaptFiltInfo) MarshalBinaryTo(wire WireVersion, b []byte) (int, error) {
	hn, err := MarshalHeaderTo(wire, p.Header, b)
	if err != nil {
		return 0, err
	}
	if len(b) < hn+adaptFiltInfoBodySize {
		return 0, errShortBuffer("AdaptFiltInfo", hn+adaptFiltInfoBodySize, len(b))
	}
	off := hn
	vals := []uint32{p.Chan, p.Enabled, p.LearnMode, p.LearnFreq, p.RefChan1, p.RefChan2}
	for _, v := range vals {
		binary.LittleEndian.PutUint32(b[off:], v)
		off += 4
	}
	return off, nil
}

func UnmarshalAdaptFiltInfo(wire WireVersion, header Header, b []byte) (*AdaptFiltInfo, error) {
	b = zeroPad(b, adaptFiltInfoBodySize)
	p := &AdaptFiltInfo{Header: header}
	fields := []*uint32{&p.Chan, &p.Enabled, &p.LearnMode, &p.LearnFreq, &p.RefChan1, &p.RefChan2}
	off := 0
	for _, f := range fields {
		*f = binary.LittleEndian.Uint32(b[off:])
		off += 4
	}
	return p, nil
}

// RefElecFiltInfo configures the shared reference-electrode filter.
type RefElecFiltInfo struct {
	Header    Header
	Chan      uint32
	FilterLow  FilterDesc
	FilterHigh FilterDesc
}

const refElecFiltInfoBodySize = 4 + 2*filterDescSize

func (p *RefElecFiltInfo) GetHeader() *Header      { return &p.Header }
func (p *RefElecFiltInfo) DefaultType() PacketType { return TypeRefElecFiltSet }

func (p *RefElecFiltInfo) MarshalBinaryTo(wire WireVersion, b []byte) (int, error) {
	hn, err := MarshalHeaderTo(wire, p.Header, b)
	if err != nil {
		return 0, err
	}
	if len(b) < hn+refElecFiltInfoBodySize {
		return 0, errShortBuffer("RefElecFiltInfo", hn+refElecFiltInfoBodySize, len(b))
	}
	off := hn
	binary.LittleEndian.PutUint32(b[off:], p.Chan)
	off += 4
	p.FilterLow.marshalTo(b[off:])
	off += filterDescSize
	p.FilterHigh.marshalTo(b[off:])
	off += filterDescSize
	return off, nil
}

func UnmarshalRefElecFiltInfo(wire WireVersion, header Header, b []byte) (*RefElecFiltInfo, error) {
	b = zeroPad(b, refElecFiltInfoBodySize)
	p := &RefElecFiltInfo{Header: header}
	off := 0
	p.Chan = binary.LittleEndian.Uint32(b[off:])
	off += 4
	p.FilterLow.unmarshal(b[off:])
	off += filterDescSize
	p.FilterHigh.unmarshal(b[off:])
	return p, nil
}

// LNC configures the device-wide line-noise cancellation reference.
type LNC struct {
	Header    Header
	Enabled   uint32
	RefChan   uint32
	GlobalMode uint32
}

const lncBodySize = 4 * 3

func (p *LNC) GetHeader() *Header      { return &p.Header }
func (p *LNC) DefaultType() PacketType { return TypeLNCSet }

func (p *LNC) MarshalBinaryTo(wire WireVersion, b []byte) (int, error) {
	hn, err := MarshalHeaderTo(wire, p.Header, b)
	if err != nil {
		return 0, err
	}
	if len(b) < hn+lncBodySize {
		return 0, errShortBuffer("LNC", hn+lncBodySize, len(b))
	}
	off := hn
	vals := []uint32{p.Enabled, p.RefChan, p.GlobalMode}
	for _, v := range vals {
		binary.LittleEndian.PutUint32(b[off:], v)
		off += 4
	}
	return off, nil
}

func UnmarshalLNC(wire WireVersion, header Header, b []byte) (*LNC, error) {
	b = zeroPad(b, lncBodySize)
	p := &LNC{Header: header}
	fields := []*uint32{&p.Enabled, &p.RefChan, &p.GlobalMode}
	off := 0
	for _, f := range fields {
		*f = binary.LittleEndian.Uint32(b[off:])
		off += 4
	}
	return p, nil
}

// FileCFG drives the device's own recording-to-file feature: start/stop a
// named session file, or query its current state.
type FileCFG struct {
	Header  Header
	Options uint32
	Recording uint32
	FileName [256]byte
	Comment  [256]byte
}

const fileCFGBodySize = 4*2 + 256 + 256

func (p *FileCFG) GetHeader() *Header      { return &p.Header }
func (p *FileCFG) DefaultType() PacketType { return TypeFileCFGSet }

func (p *FileCFG) MarshalBinaryTo(wire WireVersion, b []byte) (int, error) {
	hn, err := MarshalHeaderTo(wire, p.Header, b)
	if err != nil {
		return 0, err
	}
	if len(b) < hn+fileCFGBodySize {
		return 0, errShortBuffer("FileCFG", hn+fileCFGBodySize, len(b))
	}
	off := hn
	binary.LittleEndian.PutUint32(b[off:], p.Options)
	off += 4
	binary.LittleEndian.PutUint32(b[off:], p.Recording)
	off += 4
	copy(b[off:off+256], p.FileName[:])
	off += 256
	copy(b[off:off+256], p.Comment[:])
	off += 256
	return off, nil
}

func UnmarshalFileCFG(wire WireVersion, header Header, b []byte) (*FileCFG, error) {
	b = zeroPad(b, fileCFGBodySize)
	p := &FileCFG{Header: header}
	off := 0
	p.Options = binary.LittleEndian.Uint32(b[off:])
	off += 4
	p.Recording = binary.LittleEndian.Uint32(b[off:])
	off += 4
	copy(p.FileName[:], b[off:off+256])
	off += 256
	copy(p.Comment[:], b[off:off+256])
	return p, nil
}

// VideoTrack reports tracked-object positions from an attached video source.
type VideoTrack struct {
	Header    Header
	ParentID  uint16
	NodeID    uint16
	NodeCount uint16
	Reserved  uint16
	Positions []byte // raw trailing tracking payload, format source-specific
}

const videoTrackFixedSize = 2 * 4

func (p *VideoTrack) GetHeader() *Header      { return &p.Header }
func (p *VideoTrack) DefaultType() PacketType { return TypeVideoTrackRep }

func (p *VideoTrack) MarshalBinaryTo(wire WireVersion, b []byte) (int, error) {
	hn, err := MarshalHeaderTo(wire, p.Header, b)
	if err != nil {
		return 0, err
	}
	fixed := make([]byte, videoTrackFixedSize)
	binary.LittleEndian.PutUint16(fixed[0:], p.ParentID)
	binary.LittleEndian.PutUint16(fixed[2:], p.NodeID)
	binary.LittleEndian.PutUint16(fixed[4:], p.NodeCount)
	binary.LittleEndian.PutUint16(fixed[6:], p.Reserved)
	body, _ := encodeFixedPlusVar(fixed, p.Positions)
	if len(b) < hn+len(body) {
		return 0, errShortBuffer("VideoTrack", hn+len(body), len(b))
	}
	copy(b[hn:], body)
	return hn + len(body), nil
}

func UnmarshalVideoTrack(wire WireVersion, header Header, b []byte) (*VideoTrack, error) {
	b = zeroPad(b, videoTrackFixedSize)
	p := &VideoTrack{Header: header}
	p.ParentID = binary.LittleEndian.Uint16(b[0:])
	p.NodeID = binary.LittleEndian.Uint16(b[2:])
	p.NodeCount = binary.LittleEndian.Uint16(b[4:])
	p.Reserved = binary.LittleEndian.Uint16(b[6:])
	if len(b) > videoTrackFixedSize {
		p.Positions = append([]byte(nil), b[videoTrackFixedSize:]...)
	}
	return p, nil
}

// VideoSynch aligns an external video frame index with device sample time.
type VideoSynch struct {
	Header    Header
	SplitNum  uint32
	FrameNum  uint32
	ETime     uint32
	Recording uint32
}

const videoSynchBodySize = 4 * 4

func (p *VideoSynch) GetHeader() *Header      { return &p.Header }
func (p *VideoSynch) DefaultType() PacketType { return TypeVideoSynchSet }

func (p *VideoSynch) MarshalBinaryTo(wire WireVersion, b []byte) (int, error) {
	hn, err := MarshalHeaderTo(wire, p.Header, b)
	if err != nil {
		return 0, err
	}
	if len(b) < hn+videoSynchBodySize {
		return 0, errShortBuffer("VideoSynch", hn+videoSynchBodySize, len(b))
	}
	off := hn
	vals := []uint32{p.SplitNum, p.FrameNum, p.ETime, p.Recording}
	for _, v := range vals {
		binary.LittleEndian.PutUint32(b[off:], v)
		off += 4
	}
	return off, nil
}

func UnmarshalVideoSynch(wire WireVersion, header Header, b []byte) (*VideoSynch, error) {
	b = zeroPad(b, videoSynchBodySize)
	p := &VideoSynch{Header: header}
	fields := []*uint32{&p.SplitNum, &p.FrameNum, &p.ETime, &p.Recording}
	off := 0
	for _, f := range fields {
		*f = binary.LittleEndian.Uint32(b[off:])
		off += 4
	}
	return p, nil
}

// Log is a device-originated diagnostic log line (LOGREP).
type Log struct {
	Header   Header
	Severity LogSeverity
	Text     []byte // trailing NUL-terminated-or-truncated message text
}

const logFixedSize = 4

func (p *Log) GetHeader() *Header      { return &p.Header }
func (p *Log) DefaultType() PacketType { return TypeLogRep }

// Message returns Text decoded up to the first NUL byte (or the whole slice).
func (p *Log) Message() string {
	for i, c := range p.Text {
		if c == 0 {
			return string(p.Text[:i])
		}
	}
	return string(p.Text)
}

func (p *Log) MarshalBinaryTo(wire WireVersion, b []byte) (int, error) {
	hn, err := MarshalHeaderTo(wire, p.Header, b)
	if err != nil {
		return 0, err
	}
	fixed := make([]byte, logFixedSize)
	binary.LittleEndian.PutUint32(fixed, uint32(p.Severity))
	body, _ := encodeFixedPlusVar(fixed, p.Text)
	if len(b) < hn+len(body) {
		return 0, errShortBuffer("Log", hn+len(body), len(b))
	}
	copy(b[hn:], body)
	return hn + len(body), nil
}

func UnmarshalLog(wire WireVersion, header Header, b []byte) (*Log, error) {
	b = zeroPad(b, logFixedSize)
	p := &Log{Header: header}
	p.Severity = LogSeverity(binary.LittleEndian.Uint32(b[0:]))
	if len(b) > logFixedSize {
		p.Text = append([]byte(nil), b[logFixedSize:]...)
	}
	return p, nil
}

// Comment is an annotation timestamped into the data stream, optionally
// associated with an RGBA color and carrying free-text up to 256 bytes.
type Comment struct {
	Header    Header
	CharSet   uint8
	Flags     uint8
	Reserved  uint16
	TimeStart uint64
	Red, Green, Blue, Alpha uint8
	Text      []byte
}

const commentFixedSize = 1 + 1 + 2 + 8 + 4

func (p *Comment) GetHeader() *Header      { return &p.Header }
func (p *Comment) DefaultType() PacketType { return TypeCommentSet }

func (p *Comment) MarshalBinaryTo(wire WireVersion, b []byte) (int, error) {
	hn, err := MarshalHeaderTo(wire, p.Header, b)
	if err != nil {
		return 0, err
	}
	fixed := make([]byte, commentFixedSize)
	fixed[0] = p.CharSet
	fixed[1] = p.Flags
	binary.LittleEndian.PutUint16(fixed[2:], p.Reserved)
	binary.LittleEndian.PutUint64(fixed[4:], p.TimeStart)
	fixed[12] = p.Red
	fixed[13] = p.Green
	fixed[14] = p.Blue
	fixed[15] = p.Alpha
	body, _ := encodeFixedPlusVar(fixed, p.Text)
	if len(b) < hn+len(body) {
		return 0, errShortBuffer("Comment", hn+len(body), len(b))
	}
	copy(b[hn:], body)
	return hn + len(body), nil
}

func UnmarshalComment(wire WireVersion, header Header, b []byte) (*Comment, error) {
	b = zeroPad(b, commentFixedSize)
	p := &Comment{Header: header}
	p.CharSet = b[0]
	p.Flags = b[1]
	p.Reserved = binary.LittleEndian.Uint16(b[2:])
	p.TimeStart = binary.LittleEndian.Uint64(b[4:])
	p.Red, p.Green, p.Blue, p.Alpha = b[12], b[13], b[14], b[15]
	if len(b) > commentFixedSize {
		p.Text = append([]byte(nil), b[commentFixedSize:]...)
	}
	return p, nil
}

// NPlay drives the device's file-playback emulation mode: load, seek, and
// step through a recorded session file in lieu of live acquisition.
type NPlay struct {
	Header     Header
	Mode       NPlayMode
	FileIndex  uint32
	FileCount  uint32
	Flags      uint32
	ETime      uint64
	Stime      uint64
	Valid      uint32
	FileName   []byte // trailing file path, up to 992 bytes
}

const nplayFixedSize = 4*4 + 8*2 + 4

func (p *NPlay) GetHeader() *Header      { return &p.Header }
func (p *NPlay) DefaultType() PacketType { return TypeNPlaySet }

// Filename decodes FileName up to the first NUL byte.
func (p *NPlay) Filename() string {
	for i, c := range p.FileName {
		if c == 0 {
			return string(p.FileName[:i])
		}
	}
	return string(p.FileName)
}

func (p *NPlay) MarshalBinaryTo(wire WireVersion, b []byte) (int, error) {
	hn, err := MarshalHeaderTo(wire, p.Header, b)
	if err != nil {
		return 0, err
	}
	fixed := make([]byte, nplayFixedSize)
	binary.LittleEndian.PutUint32(fixed[0:], uint32(p.Mode))
	binary.LittleEndian.PutUint32(fixed[4:], p.FileIndex)
	binary.LittleEndian.PutUint32(fixed[8:], p.FileCount)
	binary.LittleEndian.PutUint32(fixed[12:], p.Flags)
	binary.LittleEndian.PutUint64(fixed[16:], p.ETime)
	binary.LittleEndian.PutUint64(fixed[24:], p.Stime)
	binary.LittleEndian.PutUint32(fixed[32:], p.Valid)
	name := p.FileName
	if len(name) > 992 {
		name = name[:992]
	}
	body, _ := encodeFixedPlusVar(fixed, name)
	if len(b) < hn+len(body) {
		return 0, errShortBuffer("NPlay", hn+len(body), len(b))
	}
	copy(b[hn:], body)
	return hn + len(body), nil
}

func UnmarshalNPlay(wire WireVersion, header Header, b []byte) (*NPlay, error) {
	b = zeroPad(b, nplayFixedSize)
	p := &NPlay{Header: header}
	p.Mode = NPlayMode(binary.LittleEndian.Uint32(b[0:]))
	p.FileIndex = binary.LittleEndian.Uint32(b[4:])
	p.FileCount = binary.LittleEndian.Uint32(b[8:])
	p.Flags = binary.LittleEndian.Uint32(b[12:])
	p.ETime = binary.LittleEndian.Uint64(b[16:])
	p.Stime = binary.LittleEndian.Uint64(b[24:])
	p.Valid = binary.LittleEndian.Uint32(b[32:])
	if len(b) > nplayFixedSize {
		p.FileName = append([]byte(nil), b[nplayFixedSize:]...)
	}
	return p, nil
}

// SetDOut drives a single digital-output channel to an immediate value.
type SetDOut struct {
	Header Header
	Chan   uint32
	Value  uint16
	Reserved uint16
}

const setDOutBodySize = 4 + 2 + 2

func (p *SetDOut) GetHeader() *Header      { return &p.Header }
func (p *SetDOut) DefaultType() PacketType { return TypeSetDOutSet }

func (p *SetDOut) MarshalBinaryTo(wire WireVersion, b []byte) (int, error) {
	hn, err := MarshalHeaderTo(wire, p.Header, b)
	if err != nil {
		return 0, err
	}
	if len(b) < hn+setDOutBodySize {
		return 0, errShortBuffer("SetDOut", hn+setDOutBodySize, len(b))
	}
	off := hn
	binary.LittleEndian.PutUint32(b[off:], p.Chan)
	off += 4
	binary.LittleEndian.PutUint16(b[off:], p.Value)
	off += 2
	binary.LittleEndian.PutUint16(b[off:], p.Reserved)
	off += 2
	return off, nil
}

func UnmarshalSetDOut(wire WireVersion, header Header, b []byte) (*SetDOut, error) {
	b = zeroPad(b, setDOutBodySize)
	p := &SetDOut{Header: header}
	off := 0
	p.Chan = binary.LittleEndian.Uint32(b[off:])
	off += 4
	p.Value = binary.LittleEndian.Uint16(b[off:])
	off += 2
	p.Reserved = binary.LittleEndian.Uint16(b[off:])
	return p, nil
}
