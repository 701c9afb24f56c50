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

// SysInfo reports/sets global instrument parameters: sample rates, spike
// length, run level, resets remaining and the active transport.
type SysInfo struct {
	Header       Header
	SysFreq      uint32
	SpikeLength  uint32
	SpikePreTrig uint32
	Resets       uint32
	RunLevel     RunLevel
	RunFlags     uint32
	Transport    Transport
	Reserved     [2]byte
}

const sysInfoBodySize = 4*6 + 2 + 2

func (p *SysInfo) GetHeader() *Header      { return &p.Header }
func (p *SysInfo) DefaultType() PacketType { return TypeSysSet }

func (p *SysInfo) MarshalBinaryTo(wire WireVersion, b []byte) (int, error) {
	hn, err := MarshalHeaderTo(wire, p.Header, b)
	if err != nil {
		return 0, err
	}
	if len(b) < hn+sysInfoBodySize {
		return 0, errShortBuffer("SysInfo", hn+sysInfoBodySize, len(b))
	}
	off := hn
	binary.LittleEndian.PutUint32(b[off:], p.SysFreq)
	off += 4
	binary.LittleEndian.PutUint32(b[off:], p.SpikeLength)
	off += 4
	binary.LittleEndian.PutUint32(b[off:], p.SpikePreTrig)
	off += 4
	binary.LittleEndian.PutUint32(b[off:], p.Resets)
	off += 4
	binary.LittleEndian.PutUint32(b[off:], uint32(p.RunLevel))
	off += 4
	binary.LittleEndian.PutUint32(b[off:], p.RunFlags)
	off += 4
	binary.LittleEndian.PutUint16(b[off:], uint16(p.Transport))
	off += 2
	copy(b[off:], p.Reserved[:])
	off += 2
	return off, nil
}

func UnmarshalSysInfo(wire WireVersion, header Header, b []byte) (*SysInfo, error) {
	b = zeroPad(b, sysInfoBodySize)
	p := &SysInfo{Header: header}
	off := 0
	p.SysFreq = binary.LittleEndian.Uint32(b[off:])
	off += 4
	p.SpikeLength = binary.LittleEndian.Uint32(b[off:])
	off += 4
	p.SpikePreTrig = binary.LittleEndian.Uint32(b[off:])
	off += 4
	p.Resets = binary.LittleEndian.Uint32(b[off:])
	off += 4
	p.RunLevel = RunLevel(binary.LittleEndian.Uint32(b[off:]))
	off += 4
	p.RunFlags = binary.LittleEndian.Uint32(b[off:])
	off += 4
	p.Transport = Transport(binary.LittleEndian.Uint16(b[off:]))
	off += 2
	copy(p.Reserved[:], b[off:])
	off += 2
	return p, nil
}

// SysProtocolMonitor is the periodic heartbeat-adjacent packet carrying the
// device's own sent/received packet counters, used for link health stats.
type SysProtocolMonitor struct {
	Header     Header
	SentPkts   uint32
}

const sysProtocolMonitorBodySize = 4

func (p *SysProtocolMonitor) GetHeader() *Header      { return &p.Header }
func (p *SysProtocolMonitor) DefaultType() PacketType { return TypeProtocolMonitor }

func (p *SysProtocolMonitor) MarshalBinaryTo(wire WireVersion, b []byte) (int, error) {
	hn, err := MarshalHeaderTo(wire, p.Header, b)
	if err != nil {
		return 0, err
	}
	if len(b) < hn+sysProtocolMonitorBodySize {
		return 0, errShortBuffer("SysProtocolMonitor", hn+sysProtocolMonitorBodySize, len(b))
	}
	binary.LittleEndian.PutUint32(b[hn:], p.SentPkts)
	return hn + sysProtocolMonitorBodySize, nil
}

func UnmarshalSysProtocolMonitor(wire WireVersion, header Header, b []byte) (*SysProtocolMonitor, error) {
	b = zeroPad(b, sysProtocolMonitorBodySize)
	return &SysProtocolMonitor{Header: header, SentPkts: binary.LittleEndian.Uint32(b)}, nil
}

// ProcInfo describes one signal processor (front-end) present in the instrument.
type ProcInfo struct {
	Header     Header
	Proc       uint32
	ProcCount  uint32
	BankCount  uint32
	ChanCount  uint32
	BankPerProc uint32
	GroupCount uint32
	FiltCount  uint32
	SysFreq    uint32
}

const procInfoBodySize = 4 * 8

func (p *ProcInfo) GetHeader() *Header      { return &p.Header }
func (p *ProcInfo) DefaultType() PacketType { return TypeProcInfo }

func (p *ProcInfo) MarshalBinaryTo(wire WireVersion, b []byte) (int, error) {
	hn, err := MarshalHeaderTo(wire, p.Header, b)
	if err != nil {
		return 0, err
	}
	if len(b) < hn+procInfoBodySize {
		return 0, errShortBuffer("ProcInfo", hn+procInfoBodySize, len(b))
	}
	vals := []uint32{p.Proc, p.ProcCount, p.BankCount, p.ChanCount, p.BankPerProc, p.GroupCount, p.FiltCount, p.SysFreq}
	off := hn
	for _, v := range vals {
		binary.LittleEndian.PutUint32(b[off:], v)
		off += 4
	}
	return off, nil
}

func UnmarshalProcInfo(wire WireVersion, header Header, b []byte) (*ProcInfo, error) {
	b = zeroPad(b, procInfoBodySize)
	p := &ProcInfo{Header: header}
	fields := []*uint32{&p.Proc, &p.ProcCount, &p.BankCount, &p.ChanCount, &p.BankPerProc, &p.GroupCount, &p.FiltCount, &p.SysFreq}
	off := 0
	for _, f := range fields {
		*f = binary.LittleEndian.Uint32(b[off:])
		off += 4
	}
	return p, nil
}

// BankInfo describes one electrode bank's channel range and front-end identity.
type BankInfo struct {
	Header     Header
	Proc       uint32
	Bank       uint32
	RangeMin   uint32
	RangeMax   uint32
	ChanCount  uint32
	Label      [16]byte
}

const bankInfoBodySize = 4*5 + 16

func (p *BankInfo) GetHeader() *Header      { return &p.Header }
func (p *BankInfo) DefaultType() PacketType { return TypeBankInfo }

func (p *BankInfo) MarshalBinaryTo(wire WireVersion, b []byte) (int, error) {
	hn, err := MarshalHeaderTo(wire, p.Header, b)
	if err != nil {
		return 0, err
	}
	if len(b) < hn+bankInfoBodySize {
		return 0, errShortBuffer("BankInfo", hn+bankInfoBodySize, len(b))
	}
	off := hn
	vals := []uint32{p.Proc, p.Bank, p.RangeMin, p.RangeMax, p.ChanCount}
	for _, v := range vals {
		binary.LittleEndian.PutUint32(b[off:], v)
		off += 4
	}
	copy(b[off:off+16], p.Label[:])
	return off + 16, nil
}

func UnmarshalBankInfo(wire WireVersion, header Header, b []byte) (*BankInfo, error) {
	b = zeroPad(b, bankInfoBodySize)
	p := &BankInfo{Header: header}
	fields := []*uint32{&p.Proc, &p.Bank, &p.RangeMin, &p.RangeMax, &p.ChanCount}
	off := 0
	for _, f := range fields {
		*f = binary.LittleEndian.Uint32(b[off:])
		off += 4
	}
	copy(p.Label[:], b[off:off+16])
	return p, nil
}
