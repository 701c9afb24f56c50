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

// PacketType is the header.type field of a configuration packet (or, for
// group packets, reinterpreted as the sample-group id; for per-channel
// event packets, it's family-specific and not enumerated here).
type PacketType uint16

// Configuration packet types. REP is device->client, SET is client->device.
// Values preserve the protocol's own numbering.
const (
	TypeHeartbeat         PacketType = 0x00
	TypeProtocolMonitor   PacketType = 0x01
	TypeRepConfigAll      PacketType = 0x08
	TypeReqConfigAll      PacketType = 0x88
	TypeSysRep            PacketType = 0x10
	TypeSysSet            PacketType = 0x90
	TypeSysRepSpikeLength PacketType = 0x11
	TypeSysSetSpikeLength PacketType = 0x91
	TypeSysRepRunLevel    PacketType = 0x12
	TypeSysSetRunLevel    PacketType = 0x92
	TypeSysRepTransport   PacketType = 0x13
	TypeSysSetTransport   PacketType = 0x93

	TypeProcInfo PacketType = 0x21
	TypeBankInfo PacketType = 0x22

	TypeFiltInfoRep PacketType = 0x23
	TypeFiltInfoSet PacketType = 0xA3

	TypeAdaptFiltRep PacketType = 0x25
	TypeAdaptFiltSet PacketType = 0xA5

	TypeRefElecFiltRep PacketType = 0x26
	TypeRefElecFiltSet PacketType = 0xA6

	TypeNTrodeInfoRep PacketType = 0x27
	TypeNTrodeInfoSet PacketType = 0xA7

	TypeLNCRep PacketType = 0x28
	TypeLNCSet PacketType = 0xA8

	TypeVideoSynchRep PacketType = 0x29
	TypeVideoSynchSet PacketType = 0xA9

	TypeGroupInfoRep PacketType = 0x30
	TypeGroupInfoSet PacketType = 0xB0

	TypeCommentRep PacketType = 0x31
	TypeCommentSet PacketType = 0xB1

	// ChanInfo family: full-scope plus per-attribute scoped REP/SET pairs.
	TypeChanInfoRep            PacketType = 0x40
	TypeChanInfoSet            PacketType = 0xC0
	TypeChanLabelRep           PacketType = 0x41
	TypeChanLabelSet           PacketType = 0xC1
	TypeChanScaleRep           PacketType = 0x42
	TypeChanScaleSet           PacketType = 0xC2
	TypeChanDOutRep            PacketType = 0x43
	TypeChanDOutSet            PacketType = 0xC3
	TypeChanDInpRep            PacketType = 0x44
	TypeChanDInpSet            PacketType = 0xC4
	TypeChanAOutRep            PacketType = 0x45
	TypeChanAOutSet            PacketType = 0xC5
	TypeChanDispRep            PacketType = 0x46
	TypeChanDispSet            PacketType = 0xC6
	TypeChanAInpRep            PacketType = 0x47
	TypeChanAInpSet            PacketType = 0xC7
	TypeChanSmpRep             PacketType = 0x48
	TypeChanSmpSet             PacketType = 0xC8
	TypeChanSpkRep             PacketType = 0x49
	TypeChanSpkSet             PacketType = 0xC9
	TypeChanSpkThrRep          PacketType = 0x4A
	TypeChanSpkThrSet          PacketType = 0xCA
	TypeChanSpkHoopsRep        PacketType = 0x4B
	TypeChanSpkHoopsSet        PacketType = 0xCB
	TypeChanUnitOverridesRep   PacketType = 0x4C
	TypeChanUnitOverridesSet   PacketType = 0xCC
	TypeChanNTrodeGroupRep     PacketType = 0x4D
	TypeChanNTrodeGroupSet     PacketType = 0xCD
	TypeChanRejectAmplitudeRep PacketType = 0x4E
	TypeChanRejectAmplitudeSet PacketType = 0xCE
	TypeChanAutoThresholdRep   PacketType = 0x4F
	TypeChanAutoThresholdSet   PacketType = 0xCF

	TypeNPlayRep PacketType = 0x5C
	TypeNPlaySet PacketType = 0xDC

	TypeSetDOutRep PacketType = 0x5D
	TypeSetDOutSet PacketType = 0xDD

	TypeVideoTrackRep PacketType = 0x5F
	TypeVideoTrackSet PacketType = 0xDF

	TypeFileCFGRep PacketType = 0x61
	TypeFileCFGSet PacketType = 0xE1

	TypeLogRep PacketType = 0x63
	TypeLogSet PacketType = 0xE3

	// ConfigTypeAny is a sentinel PacketType, never sent by the real
	// instrument, used as the catch-all key in a config-callback registry
	// for a callback that should fire on every configuration packet type.
	ConfigTypeAny PacketType = 0xFFFF
)

// packetTypeNames is used by (PacketType).String for debug logging.
var packetTypeNames = map[PacketType]string{
	TypeHeartbeat:              "HEARTBEAT",
	TypeProtocolMonitor:        "SYSPROTOCOLMONITOR",
	TypeRepConfigAll:           "REPCONFIGALL",
	TypeReqConfigAll:           "REQCONFIGALL",
	TypeSysRep:                 "SYSREP",
	TypeSysSet:                 "SYSSET",
	TypeSysRepSpikeLength:      "SYSREPSPKLEN",
	TypeSysSetSpikeLength:      "SYSSETSPKLEN",
	TypeSysRepRunLevel:         "SYSREPRUNLEV",
	TypeSysSetRunLevel:         "SYSSETRUNLEV",
	TypeSysRepTransport:        "SYSREPTRANSPORT",
	TypeSysSetTransport:        "SYSSETTRANSPORT",
	TypeProcInfo:               "PROCREP",
	TypeBankInfo:               "BANKREP",
	TypeFiltInfoRep:            "FILTREP",
	TypeFiltInfoSet:            "FILTSET",
	TypeAdaptFiltRep:           "ADAPTFILTREP",
	TypeAdaptFiltSet:           "ADAPTFILTSET",
	TypeRefElecFiltRep:         "REFELECFILTREP",
	TypeRefElecFiltSet:         "REFELECFILTSET",
	TypeNTrodeInfoRep:          "REPNTRODEINFO",
	TypeNTrodeInfoSet:          "SETNTRODEINFO",
	TypeLNCRep:                 "LNCREP",
	TypeLNCSet:                 "LNCSET",
	TypeVideoSynchRep:          "VIDEOSYNCHREP",
	TypeVideoSynchSet:          "VIDEOSYNCHSET",
	TypeGroupInfoRep:           "GROUPREP",
	TypeGroupInfoSet:           "GROUPSET",
	TypeCommentRep:             "COMMENTREP",
	TypeCommentSet:             "COMMENTSET",
	TypeChanInfoRep:            "CHANREP",
	TypeChanInfoSet:            "CHANSET",
	TypeChanLabelRep:           "CHANREPLABEL",
	TypeChanLabelSet:           "CHANSETLABEL",
	TypeChanScaleRep:           "CHANREPSCALE",
	TypeChanScaleSet:           "CHANSETSCALE",
	TypeChanDOutRep:            "CHANREPDOUT",
	TypeChanDOutSet:            "CHANSETDOUT",
	TypeChanDInpRep:            "CHANREPDINP",
	TypeChanDInpSet:            "CHANSETDINP",
	TypeChanAOutRep:            "CHANREPAOUT",
	TypeChanAOutSet:            "CHANSETAOUT",
	TypeChanDispRep:            "CHANREPDISP",
	TypeChanDispSet:            "CHANSETDISP",
	TypeChanAInpRep:            "CHANREPAINP",
	TypeChanAInpSet:            "CHANSETAINP",
	TypeChanSmpRep:             "CHANREPSMP",
	TypeChanSmpSet:             "CHANSETSMP",
	TypeChanSpkRep:             "CHANREPSPK",
	TypeChanSpkSet:             "CHANSETSPK",
	TypeChanSpkThrRep:          "CHANREPSPKTHR",
	TypeChanSpkThrSet:          "CHANSETSPKTHR",
	TypeChanSpkHoopsRep:        "CHANREPSPKHPS",
	TypeChanSpkHoopsSet:        "CHANSETSPKHPS",
	TypeChanUnitOverridesRep:   "CHANREPUNITOVERRIDES",
	TypeChanUnitOverridesSet:   "CHANSETUNITOVERRIDES",
	TypeChanNTrodeGroupRep:     "CHANREPNTRODEGROUP",
	TypeChanNTrodeGroupSet:     "CHANSETNTRODEGROUP",
	TypeChanRejectAmplitudeRep: "CHANREPREJECTAMPLITUDE",
	TypeChanRejectAmplitudeSet: "CHANSETREJECTAMPLITUDE",
	TypeChanAutoThresholdRep:   "CHANREPAUTOTHRESHOLD",
	TypeChanAutoThresholdSet:   "CHANSETAUTOTHRESHOLD",
	TypeNPlayRep:               "NPLAYREP",
	TypeNPlaySet:               "NPLAYSET",
	TypeSetDOutRep:             "SET_DOUTREP",
	TypeSetDOutSet:             "SET_DOUTSET",
	TypeVideoTrackRep:          "VIDEOTRACKREP",
	TypeVideoTrackSet:          "VIDEOTRACKSET",
	TypeFileCFGRep:             "REPFILECFG",
	TypeFileCFGSet:             "SETFILECFG",
	TypeLogRep:                 "LOGREP",
	TypeLogSet:                 "LOGSET",
}

func (t PacketType) String() string {
	if s, ok := packetTypeNames[t]; ok {
		return s
	}
	return "UNKNOWN"
}

// Family returns the high-nibble family a scoped CHANSET/CHANREP variant
// shares with siblings, used for the dispatch rule's second-chance lookup.
func (t PacketType) Family() PacketType { return t & 0xF0 }

// ChannelClass is the derived classification of a channel, computed from its
// capability bits by Classify. Any is both the default and the catch-all.
type ChannelClass int

// Channel class values. Any is the zero value and the default/catch-all.
const (
	ClassAny ChannelClass = iota
	ClassFrontEnd
	ClassAnalogIn
	ClassDigitalIn
	ClassDigitalOut
	ClassSerial
	ClassAudio
)

var channelClassNames = map[ChannelClass]string{
	ClassAny:        "Any",
	ClassFrontEnd:   "FrontEnd",
	ClassAnalogIn:   "AnalogIn",
	ClassDigitalIn:  "DigitalIn",
	ClassDigitalOut: "DigitalOut",
	ClassSerial:     "Serial",
	ClassAudio:      "Audio",
}

func (c ChannelClass) String() string {
	if s, ok := channelClassNames[c]; ok {
		return s
	}
	return "Any"
}

// RunLevel is the instrument's run-level lifecycle state.
type RunLevel uint32

// Run-level values as reported in SysInfo/SysRep packets.
const (
	RunLevelStartup   RunLevel = 10
	RunLevelHardReset RunLevel = 20
	RunLevelStandby   RunLevel = 30
	RunLevelReset     RunLevel = 40
	RunLevelRunning   RunLevel = 50
	RunLevelStressed  RunLevel = 60
	RunLevelError     RunLevel = 70
	RunLevelShutdown  RunLevel = 80
)

var runLevelNames = map[RunLevel]string{
	RunLevelStartup:   "STARTUP",
	RunLevelHardReset: "HARDRESET",
	RunLevelStandby:   "STANDBY",
	RunLevelReset:     "RESET",
	RunLevelRunning:   "RUNNING",
	RunLevelStressed:  "STRESSED",
	RunLevelError:     "ERROR",
	RunLevelShutdown:  "SHUTDOWN",
}

func (r RunLevel) String() string {
	if s, ok := runLevelNames[r]; ok {
		return s
	}
	return "UNKNOWN"
}

// Transport identifies the physical/logical transport a packet was (or
// should be) exchanged over. Only UDP is implemented by this core; the
// others are recognized for protocol completeness (e.g. reported by the
// instrument) but never originate from this client.
type Transport uint16

// Transport values as reported in SysRepTransport/SysSetTransport.
const (
	TransportUDP    Transport = 0x0000
	TransportTCP    Transport = 0x0001
	TransportLSL    Transport = 0x0004
	TransportUSB    Transport = 0x0008
	TransportSerial Transport = 0x000F
	TransportAll    Transport = 0xFFFF
)

// NPlayMode is the playback-control mode used by the NPlay choreography.
type NPlayMode uint16

// NPlay mode values.
const (
	NPlayModeNone   NPlayMode = 0
	NPlayModePause  NPlayMode = 1
	NPlayModeSingle NPlayMode = 2
	NPlayModeStep   NPlayMode = 3
	NPlayModePlay   NPlayMode = 4
)

// LogSeverity is the severity carried by a LOGREP packet.
type LogSeverity uint32

// Severity levels recognized in LOGREP packets.
const (
	LogSeverityInfo     LogSeverity = 0
	LogSeverityCritical LogSeverity = 1
	LogSeverityError    LogSeverity = 5
)
