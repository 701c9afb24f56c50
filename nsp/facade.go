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

// Package nsp is a thin, stateless-function surface over nsp/client's
// Device, matching how a procedural caller (CLI tool, notebook binding,
// another process's glue code) expects to drive one instrument: build
// params, get a handle, connect, push configuration, register callbacks.
// It adds no behavior of its own beyond wiring — every real decision lives
// in nsp/client, nsp/protocol and nsp/stats.
package nsp

import (
	"context"
	"net"

	"github.com/CerebusOSS/nspsdk-go/nsp/client"
	"github.com/CerebusOSS/nspsdk-go/nsp/protocol"
)

// Params bundles everything needed to open a connection to one instrument.
// Discovering the right addresses is an external concern (auto-discovery,
// ICMP probing, operator input); this package only consumes the result.
type Params struct {
	Config *client.Config
}

// CreateParams returns Params built from cfg, or client.DefaultConfig if
// cfg is nil.
func CreateParams(cfg *client.Config) *Params {
	if cfg == nil {
		cfg = client.DefaultConfig()
	}
	return &Params{Config: cfg}
}

// Handle is the opaque device handle callers hold for the lifetime of one
// connection.
type Handle struct {
	Device *client.Device

	transport *client.UDPTransport
}

// GetDevice validates params, binds the UDP transport, and constructs a
// Device bound to it. The returned handle's ingest pipeline is already
// running; call Connect to drive the startup handshake.
func GetDevice(p *Params) (*Handle, error) {
	if err := p.Config.Validate(); err != nil {
		return nil, err
	}
	wire, err := p.Config.WireVersion()
	if err != nil {
		return nil, err
	}
	opts := client.TransportOptions{
		RecvBufBytes: p.Config.RecvBufferBytes,
		QueueDepth:   p.Config.QueueDepth,
	}
	transport, err := client.NewUDPTransport(
		net.ParseIP(p.Config.LocalAddress), p.Config.LocalPort,
		net.ParseIP(p.Config.InstrumentAddress), p.Config.InstrumentPort,
		opts,
	)
	if err != nil {
		return nil, err
	}
	device := client.NewDevice(p.Config, transport, wire)
	device.Start()
	return &Handle{Device: device, transport: transport}, nil
}

// Connect drives the instrument through its startup handshake and blocks
// until RUNNING is reached or ctx is canceled.
func Connect(ctx context.Context, h *Handle) error {
	return h.Device.Connect(ctx)
}

// Disconnect requests STANDBY and releases the transport. The handle must
// not be used again afterward.
func Disconnect(ctx context.Context, h *Handle) error {
	return h.Device.Disconnect(ctx)
}

// SetConfig pushes a full SysInfo write to the instrument.
func SetConfig(h *Handle, sys protocol.SysInfo) error {
	return h.Device.SetConfig(sys)
}

// GetConfig returns the mirrored device-wide SysInfo, if known.
func GetConfig(h *Handle) (protocol.SysInfo, bool) {
	return h.Device.GetConfig()
}

// SetChannelConfigByPacket sends an already-constructed ChanInfo-family
// packet verbatim.
func SetChannelConfigByPacket(h *Handle, p protocol.Packet) error {
	return h.Device.SetChannelConfigByPacket(p)
}

// SetChannelConfig writes a full ChanInfo record for one channel.
func SetChannelConfig(h *Handle, body protocol.ChanInfoBody) error {
	return h.Device.SetChannelConfig(body)
}

// SetChannelSpkConfig configures spike detection for one channel.
func SetChannelSpkConfig(h *Handle, chid uint16, filter, opts uint32, thrLevel, thrLimit int32) error {
	return h.Device.SetChannelSpkConfig(chid, filter, opts, thrLevel, thrLimit)
}

// SetChannelDisable enables or disables acquisition on one channel.
func SetChannelDisable(h *Handle, chid uint16, disable bool) error {
	return h.Device.SetChannelDisable(chid, disable)
}

// SetAllChannelsDisable applies SetChannelDisable to every mirrored channel.
func SetAllChannelsDisable(h *Handle, disable bool) error {
	return h.Device.SetAllChannelsDisable(disable)
}

// SetRunLevel requests a run-level transition and waits for confirmation.
func SetRunLevel(ctx context.Context, h *Handle, level protocol.RunLevel) error {
	return h.Device.SetRunLevel(ctx, level)
}

// GetRunLevel returns the instrument's last-reported run level.
func GetRunLevel(h *Handle) protocol.RunLevel {
	return h.Device.RunLevel()
}

// SetChannelSpkHoops configures a channel's hoop-sort boxes.
func SetChannelSpkHoops(h *Handle, chid uint16, hoops [5]protocol.HoopSet) error {
	return h.Device.SetChannelSpkHoops(chid, hoops)
}

// SetChannelAutoThreshold requests the instrument recompute a channel's
// spike threshold from its current noise floor.
func SetChannelAutoThreshold(h *Handle, chid uint16, thrLevel, thrLimit int32) error {
	return h.Device.SetChannelAutoThreshold(chid, thrLevel, thrLimit)
}

// SetChannelScale writes a channel's input/output physical-unit scaling.
func SetChannelScale(h *Handle, chid uint16, scaleIn, scaleOut protocol.Scaling) error {
	return h.Device.SetChannelScale(chid, scaleIn, scaleOut)
}

// SetChannelAOutMode sets an analog-output channel's mode bits.
func SetChannelAOutMode(h *Handle, chid uint16, opts uint32) error {
	return h.Device.SetChannelAOutMode(chid, opts)
}

// SetChannelDOutMode sets a digital-output channel's mode bits.
func SetChannelDOutMode(h *Handle, chid uint16, opts uint32) error {
	return h.Device.SetChannelDOutMode(chid, opts)
}

// SetChannelDInpMode sets a digital-input channel's mode bits.
func SetChannelDInpMode(h *Handle, chid uint16, opts uint32) error {
	return h.Device.SetChannelDInpMode(chid, opts)
}

// SetLNC configures line-noise cancellation.
func SetLNC(h *Handle, enabled bool, refChan, globalMode uint32) error {
	return h.Device.SetLNC(enabled, refChan, globalMode)
}

// SetTransport requests the instrument switch its active output transport.
func SetTransport(h *Handle, t protocol.Transport) error {
	return h.Device.SetTransport(t)
}

// SetComment timestamps a free-text annotation into the data stream.
func SetComment(h *Handle, text string, red, green, blue, alpha uint8) error {
	return h.Device.SetComment(text, red, green, blue, alpha)
}

// RegisterGroupCallback registers cb for every decoded sample group.
func RegisterGroupCallback(h *Handle, cb client.SampleGroupCallback) uint64 {
	return h.Device.RegisterSampleGroupCallback(cb)
}

// UnregisterGroupCallback removes a callback registered with RegisterGroupCallback.
func UnregisterGroupCallback(h *Handle, id uint64) {
	h.Device.UnregisterSampleGroupCallback(id)
}

// RegisterSpkCallback registers cb for every decoded spike event.
func RegisterSpkCallback(h *Handle, cb client.SpikeCallback) uint64 {
	return h.Device.RegisterSpikeCallback(cb)
}

// UnregisterSpkCallback removes a callback registered with RegisterSpkCallback.
func UnregisterSpkCallback(h *Handle, id uint64) {
	h.Device.UnregisterSpikeCallback(id)
}

// RegisterConfigCallback registers cb for every decoded configuration packet
// of type t, or every configuration packet when t is protocol.ConfigTypeAny.
func RegisterConfigCallback(h *Handle, t protocol.PacketType, cb client.ConfigCallback) uint64 {
	return h.Device.RegisterConfigCallback(t, cb)
}

// UnregisterConfigCallback removes a callback registered with RegisterConfigCallback.
func UnregisterConfigCallback(h *Handle, t protocol.PacketType, id uint64) {
	h.Device.UnregisterConfigCallback(t, id)
}

// RegisterCommentCallback registers cb for every decoded comment annotation.
func RegisterCommentCallback(h *Handle, cb client.CommentCallback) uint64 {
	return h.Device.RegisterCommentCallback(cb)
}

// UnregisterCommentCallback removes a callback registered with RegisterCommentCallback.
func UnregisterCommentCallback(h *Handle, id uint64) {
	h.Device.UnregisterCommentCallback(id)
}

// RegisterEventCallback registers cb to run for every decoded per-channel
// event (spike, digital input, or any other non-group, non-configuration
// packet) whose channel classifies as class, or every class when class is
// protocol.ClassAny — the generic per-channel-class event registration
// RegisterSpkCallback is sugar for (channelType=FrontEnd).
func RegisterEventCallback(h *Handle, class protocol.ChannelClass, cb client.EventCallback) uint64 {
	return h.Device.RegisterEventCallback(class, cb)
}

// UnregisterEventCallback removes a callback registered with RegisterEventCallback.
func UnregisterEventCallback(h *Handle, class protocol.ChannelClass, id uint64) {
	h.Device.UnregisterEventCallback(class, id)
}
