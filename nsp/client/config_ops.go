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

package client

import (
	"fmt"

	"github.com/CerebusOSS/nspsdk-go/nsp/protocol"
)

// GetChannelConfig returns the mirrored ChanInfo and derived class for chid.
func (d *Device) GetChannelConfig(chid uint16) (protocol.ChanInfoBody, protocol.ChannelClass, bool) {
	return d.mirror.Channel(chid)
}

// GetConfig returns a snapshot of the device-wide SysInfo, if one has been received.
func (d *Device) GetConfig() (protocol.SysInfo, bool) {
	d.mirror.mu.RLock()
	defer d.mirror.mu.RUnlock()
	if d.mirror.sys == nil {
		return protocol.SysInfo{}, false
	}
	return *d.mirror.sys, true
}

// SetConfig pushes a full SysInfo write to the instrument (e.g. to change
// the spike length or pre-trigger window before acquisition starts).
func (d *Device) SetConfig(sys protocol.SysInfo) error {
	sys.Header = protocol.Header{ChanID: protocol.ChanConfiguration, Type: uint16(protocol.TypeSysSet)}
	return d.send(&sys)
}

// SetChannelConfigByPacket sends an already-constructed ChanInfo-family
// packet verbatim, letting advanced callers target a scoped variant this
// package doesn't wrap explicitly.
func (d *Device) SetChannelConfigByPacket(p protocol.Packet) error {
	return d.send(p)
}

// SetChannelConfig writes a full ChanInfo record for one channel.
func (d *Device) SetChannelConfig(body protocol.ChanInfoBody) error {
	p := &protocol.ChanInfo{
		Header: protocol.Header{ChanID: protocol.ChanConfiguration, Type: uint16(protocol.TypeChanInfoSet)},
		Body:   body,
	}
	return d.send(p)
}

// scopedChanInfo builds a minimal ChanInfo write targeting one scoped
// family, carrying only the channel number plus whatever the caller fills
// into body — the device only honors the fields that family owns.
func (d *Device) scopedChanInfo(t protocol.PacketType, chid uint16, body protocol.ChanInfoBody) error {
	body.Chan = uint32(chid)
	p := &protocol.ChanInfo{
		Header: protocol.Header{ChanID: protocol.ChanConfiguration, Type: uint16(t)},
		Body:   body,
	}
	return d.send(p)
}

// SetChannelLabel renames a channel.
func (d *Device) SetChannelLabel(chid uint16, label string) error {
	var body protocol.ChanInfoBody
	copy(body.Label[:], label)
	return d.scopedChanInfo(protocol.TypeChanLabelSet, chid, body)
}

// SetChannelSpkConfig configures spike detection for one channel: the
// shared filter index, detection options, and threshold bounds.
func (d *Device) SetChannelSpkConfig(chid uint16, filter uint32, opts uint32, thrLevel, thrLimit int32) error {
	body := protocol.ChanInfoBody{SpkFilter: filter, SpkOpts: opts, SpkThrLevel: thrLevel, SpkThrLimit: thrLimit}
	return d.scopedChanInfo(protocol.TypeChanSpkSet, chid, body)
}

// SetChannelSampleConfig configures the shared filter and sample-group
// membership used for a channel's continuous stream.
func (d *Device) SetChannelSampleConfig(chid uint16, filter, group uint32) error {
	body := protocol.ChanInfoBody{SmpFilter: filter, SmpGroup: group}
	return d.scopedChanInfo(protocol.TypeChanSmpSet, chid, body)
}

// SetChannelSpkHoops configures a channel's up-to-5 hoop-sort boxes used
// when spike detection runs in hoop-sorting rather than threshold mode.
func (d *Device) SetChannelSpkHoops(chid uint16, hoops [5]protocol.HoopSet) error {
	body := protocol.ChanInfoBody{SpkHoops: hoops}
	return d.scopedChanInfo(protocol.TypeChanSpkHoopsSet, chid, body)
}

// SetChannelAutoThreshold requests the instrument recompute a channel's
// spike threshold from its current noise floor.
func (d *Device) SetChannelAutoThreshold(chid uint16, thrLevel, thrLimit int32) error {
	body := protocol.ChanInfoBody{SpkThrLevel: thrLevel, SpkThrLimit: thrLimit}
	return d.scopedChanInfo(protocol.TypeChanAutoThresholdSet, chid, body)
}

// SetChannelScale writes a channel's input/output physical-unit scaling.
func (d *Device) SetChannelScale(chid uint16, scaleIn, scaleOut protocol.Scaling) error {
	body := protocol.ChanInfoBody{ScaleIn: scaleIn, ScaleOut: scaleOut}
	return d.scopedChanInfo(protocol.TypeChanScaleSet, chid, body)
}

// SetChannelAOutMode sets an analog-output channel's aoutopts mode bits
// (e.g. AoutMonitorRaw, AoutStatic).
func (d *Device) SetChannelAOutMode(chid uint16, opts uint32) error {
	body := protocol.ChanInfoBody{AoutOpts: opts}
	return d.scopedChanInfo(protocol.TypeChanAOutSet, chid, body)
}

// SetChannelDOutMode sets a digital-output channel's doutopts mode bits.
func (d *Device) SetChannelDOutMode(chid uint16, opts uint32) error {
	body := protocol.ChanInfoBody{DoutOpts: opts}
	return d.scopedChanInfo(protocol.TypeChanDOutSet, chid, body)
}

// SetChannelDInpMode sets a digital-input channel's dinpopts mode bits.
func (d *Device) SetChannelDInpMode(chid uint16, opts uint32) error {
	body := protocol.ChanInfoBody{DinpOpts: opts}
	return d.scopedChanInfo(protocol.TypeChanDInpSet, chid, body)
}

// SetLNC configures line-noise cancellation: whether it's enabled, the
// reference channel it tracks, and its global run mode. Unlike the
// ChanInfo-family ops above, LNCSET is its own standalone packet type.
func (d *Device) SetLNC(enabled bool, refChan, globalMode uint32) error {
	var enabledFlag uint32
	if enabled {
		enabledFlag = 1
	}
	p := &protocol.LNC{
		Header:     protocol.Header{ChanID: protocol.ChanConfiguration, Type: uint16(protocol.TypeLNCSet)},
		Enabled:    enabledFlag,
		RefChan:    refChan,
		GlobalMode: globalMode,
	}
	return d.send(p)
}

// disableMaskFor returns the option bits that disabling a channel of class
// clears: the LNC mask for FrontEnd and AnalogIn channels, and 0 (nothing
// to toggle) for every other class.
func disableMaskFor(class protocol.ChannelClass) uint32 {
	switch class {
	case protocol.ClassFrontEnd, protocol.ClassAnalogIn:
		return protocol.AinpLNCMask // clearing LNC mode effectively silences continuous acquisition
	default:
		return 0
	}
}

// SetChannelDisable enables or disables acquisition on a single channel.
// For an analog-input-class channel this is a tri-state toggle on the
// device: disabling must clear the relevant ainpopts bits, and re-enabling
// must explicitly set them back rather than merely un-clearing — reading
// back the mirror's last-known opts and only then setting bypasses the
// device silently ignoring a set-from-disabled-with-no-bits-changed request.
func (d *Device) SetChannelDisable(chid uint16, disable bool) error {
	body, class, ok := d.mirror.Channel(chid)
	if !ok {
		return fmt.Errorf("nsp: channel %d not in configuration mirror", chid)
	}
	opts := body.AinpOpts
	if disable {
		opts &^= disableMaskFor(class)
	} else {
		opts |= disableMaskFor(class)
	}
	ci := protocol.ChanInfoBody{AinpOpts: opts}
	return d.scopedChanInfo(protocol.TypeChanAInpSet, chid, ci)
}

// SetAllChannelsDisable applies SetChannelDisable to every channel currently
// in the configuration mirror.
func (d *Device) SetAllChannelsDisable(disable bool) error {
	d.mirror.mu.RLock()
	chids := make([]uint16, 0, len(d.mirror.channels))
	for chid := range d.mirror.channels {
		chids = append(chids, chid)
	}
	d.mirror.mu.RUnlock()
	for _, chid := range chids {
		if err := d.SetChannelDisable(chid, disable); err != nil {
			return fmt.Errorf("nsp: disabling channel %d: %w", chid, err)
		}
	}
	return nil
}

// SetTransport requests the instrument switch its active output transport.
func (d *Device) SetTransport(t protocol.Transport) error {
	p := &protocol.SysInfo{
		Header:    protocol.Header{ChanID: protocol.ChanConfiguration, Type: uint16(protocol.TypeSysSetTransport)},
		Transport: t,
	}
	return d.send(p)
}

// SetComment timestamps a free-text annotation into the data stream,
// optionally colored for downstream visualization.
func (d *Device) SetComment(text string, red, green, blue, alpha uint8) error {
	p := &protocol.Comment{
		Header: protocol.Header{ChanID: protocol.ChanConfiguration, Type: uint16(protocol.TypeCommentSet)},
		Red:    red,
		Green:  green,
		Blue:   blue,
		Alpha:  alpha,
		Text:   []byte(text),
	}
	return d.send(p)
}

// RegisterSampleGroupCallback forwards to the ingest handler.
func (d *Device) RegisterSampleGroupCallback(cb SampleGroupCallback) uint64 {
	return d.handler.RegisterSampleGroupCallback(cb)
}

// UnregisterSampleGroupCallback forwards to the ingest handler.
func (d *Device) UnregisterSampleGroupCallback(id uint64) { d.handler.UnregisterSampleGroupCallback(id) }

// RegisterSpikeCallback forwards to the ingest handler.
func (d *Device) RegisterSpikeCallback(cb SpikeCallback) uint64 { return d.handler.RegisterSpikeCallback(cb) }

// UnregisterSpikeCallback forwards to the ingest handler.
func (d *Device) UnregisterSpikeCallback(id uint64) { d.handler.UnregisterSpikeCallback(id) }

// RegisterConfigCallback forwards to the ingest handler, scoping cb to
// configuration packets of type t (or every type, via protocol.ConfigTypeAny).
func (d *Device) RegisterConfigCallback(t protocol.PacketType, cb ConfigCallback) uint64 {
	return d.handler.RegisterConfigCallback(t, cb)
}

// UnregisterConfigCallback forwards to the ingest handler.
func (d *Device) UnregisterConfigCallback(t protocol.PacketType, id uint64) {
	d.handler.UnregisterConfigCallback(t, id)
}

// RegisterCommentCallback forwards to the ingest handler.
func (d *Device) RegisterCommentCallback(cb CommentCallback) uint64 { return d.handler.RegisterCommentCallback(cb) }

// UnregisterCommentCallback forwards to the ingest handler.
func (d *Device) UnregisterCommentCallback(id uint64) { d.handler.UnregisterCommentCallback(id) }

// RegisterEventCallback forwards to the ingest handler, scoping cb to
// per-channel events whose channel classifies as class (or every class, via
// protocol.ClassAny).
func (d *Device) RegisterEventCallback(class protocol.ChannelClass, cb EventCallback) uint64 {
	return d.handler.RegisterEventCallback(class, cb)
}

// UnregisterEventCallback forwards to the ingest handler.
func (d *Device) UnregisterEventCallback(class protocol.ChannelClass, id uint64) {
	d.handler.UnregisterEventCallback(class, id)
}
