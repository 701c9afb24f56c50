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
	"context"
	"fmt"
	"sync"
	"time"

	log "github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/CerebusOSS/nspsdk-go/nsp/protocol"
)

// channelRecord is the mirrored view of one channel's ChanInfo, refreshed
// wholesale by a full CHANREP and patched field-by-field by scoped
// CHANREP* variants.
type channelRecord struct {
	body  protocol.ChanInfoBody
	class protocol.ChannelClass
}

// configMirror is the device's local understanding of every channel's
// configuration, kept current by the handler's config callback. Reads take
// the shared lock; writers (applyChanInfo and the device's config callback)
// take the exclusive lock.
type configMirror struct {
	mu       sync.RWMutex
	channels map[uint16]*channelRecord
	procs    []*protocol.ProcInfo
	banks    []*protocol.BankInfo
	groups   map[uint32]*protocol.GroupInfo
	sys      *protocol.SysInfo
}

func newConfigMirror() *configMirror {
	return &configMirror{
		channels: make(map[uint16]*channelRecord),
		groups:   make(map[uint32]*protocol.GroupInfo),
	}
}

// Channel returns a copy of the mirrored record for chid, if known.
func (m *configMirror) Channel(chid uint16) (protocol.ChanInfoBody, protocol.ChannelClass, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	r, ok := m.channels[chid]
	if !ok {
		return protocol.ChanInfoBody{}, protocol.ClassAny, false
	}
	return r.body, r.class, true
}

// ChannelCount returns how many channels the mirror currently knows about.
func (m *configMirror) ChannelCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.channels)
}

// GroupChanCount returns the number of channels multiplexed into a sample
// group, if a GroupInfo for it has been received.
func (m *configMirror) GroupChanCount(group uint32) (int, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	gi, ok := m.groups[group]
	if !ok {
		return 0, false
	}
	return len(gi.ChanIDs), true
}

// applyChanInfo merges an incoming ChanInfo packet into the mirror. A full
// CHANREP (type CHANREP itself) replaces the whole record and reclassifies
// it; a scoped variant (CHANREPLABEL, CHANREPAINP, ...) only owns the
// attributes meaningful to that family, so it's merged field-by-field
// rather than overwriting the record wholesale.
func (m *configMirror) applyChanInfo(packetType protocol.PacketType, ci *protocol.ChanInfo) {
	m.mu.Lock()
	defer m.mu.Unlock()
	chid := uint16(ci.Body.Chan)
	rec, ok := m.channels[chid]
	if !ok {
		rec = &channelRecord{}
		m.channels[chid] = rec
	}
	switch packetType {
	case protocol.TypeChanInfoRep:
		rec.body = ci.Body
		rec.class = ci.Body.Classify()
	case protocol.TypeChanLabelRep:
		rec.body.Label = ci.Body.Label
	case protocol.TypeChanScaleRep:
		rec.body.ScaleIn = ci.Body.ScaleIn
		rec.body.ScaleOut = ci.Body.ScaleOut
	case protocol.TypeChanDOutRep:
		rec.body.DoutOpts = ci.Body.DoutOpts
	case protocol.TypeChanDInpRep:
		rec.body.DinpOpts = ci.Body.DinpOpts
	case protocol.TypeChanAOutRep:
		rec.body.AoutOpts = ci.Body.AoutOpts
	case protocol.TypeChanAInpRep:
		rec.body.AinpOpts = ci.Body.AinpOpts
		rec.body.LNCRate = ci.Body.LNCRate
		rec.class = rec.body.Classify()
	case protocol.TypeChanSmpRep:
		rec.body.SmpFilter = ci.Body.SmpFilter
		rec.body.SmpGroup = ci.Body.SmpGroup
	case protocol.TypeChanSpkRep:
		rec.body.SpkFilter = ci.Body.SpkFilter
		rec.body.SpkOpts = ci.Body.SpkOpts
		rec.body.SpkGroup = ci.Body.SpkGroup
	case protocol.TypeChanSpkThrRep:
		rec.body.SpkThrLevel = ci.Body.SpkThrLevel
		rec.body.SpkThrLimit = ci.Body.SpkThrLimit
	case protocol.TypeChanSpkHoopsRep:
		rec.body.SpkHoops = ci.Body.SpkHoops
	case protocol.TypeChanUnitOverridesRep:
		rec.body.UnitMapping = ci.Body.UnitMapping
	case protocol.TypeChanRejectAmplitudeRep:
		rec.body.AmplRejPos = ci.Body.AmplRejPos
		rec.body.AmplRejNeg = ci.Body.AmplRejNeg
	default:
		// unrecognized scoped variant: merge nothing rather than guess
	}
}

// oneShotEvents lets a goroutine wait for a named condition (e.g.
// "sysrep", "reqconfigall") to be signaled exactly once by the ingest
// goroutine, without a dedicated channel per call site.
type oneShotEvents struct {
	mu   sync.Mutex
	wait map[string][]chan struct{}
}

func newOneShotEvents() *oneShotEvents {
	return &oneShotEvents{wait: make(map[string][]chan struct{})}
}

// Wait blocks until name is signaled, ctx is done, or the timeout elapses.
func (e *oneShotEvents) Wait(ctx context.Context, name string) error {
	ch := make(chan struct{})
	e.mu.Lock()
	e.wait[name] = append(e.wait[name], ch)
	e.mu.Unlock()
	select {
	case <-ch:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Signal wakes every goroutine currently waiting on name.
func (e *oneShotEvents) Signal(name string) {
	e.mu.Lock()
	waiters := e.wait[name]
	delete(e.wait, name)
	e.mu.Unlock()
	for _, ch := range waiters {
		close(ch)
	}
}

// Device is the stateful NSP connection: transport, ingest handler,
// configuration mirror, and run-level lifecycle, all bound to one instrument.
type Device struct {
	cfg       *Config
	transport *UDPTransport
	handler   *Handler
	factory   *protocol.Factory
	mirror    *configMirror
	events    *oneShotEvents
	backoff   *backoff
	clock     Clock
	log       *log.Entry

	group *errgroup.Group

	mu         sync.Mutex
	runLevel   protocol.RunLevel
	transportV protocol.Transport
	nplaySeen  bool
	procChans  int // total channels reported across all ProcInfo records
}

// NewDevice constructs a Device around the given transport, bound to wire
// version wire. The ingest handler's config callback is registered into the
// mirror here; call Start before Connect so replies are read and dispatched.
func NewDevice(cfg *Config, transport *UDPTransport, wire protocol.WireVersion) *Device {
	logger := log.NewEntry(log.StandardLogger())
	factory := protocol.NewFactory(wire, logger)
	mirror := newConfigMirror()
	counter := func(group protocol.PacketType) (int, bool) {
		return mirror.GroupChanCount(uint32(group))
	}
	classOf := func(chid uint16) (protocol.ChannelClass, bool) {
		_, class, ok := mirror.Channel(chid)
		return class, ok
	}
	handler := NewHandler(factory, counter, classOf, logger)
	d := &Device{
		cfg:       cfg,
		transport: transport,
		handler:   handler,
		factory:   factory,
		mirror:    mirror,
		events:    newOneShotEvents(),
		backoff:   newBackoff(cfg.Backoff),
		clock:     realClock{},
		log:       logger,
		runLevel:  protocol.RunLevelStartup,
	}
	handler.RegisterConfigCallback(protocol.ConfigTypeAny, d.onConfigPacket)
	return d
}

// onConfigPacket is the ingest-side hook that keeps the mirror and run-level
// state current as configuration replies arrive, and wakes any connect()
// goroutine waiting on the packet kind that just landed.
func (d *Device) onConfigPacket(p protocol.Packet) {
	header := p.GetHeader()
	t := protocol.PacketType(header.Type)

	switch v := p.(type) {
	case *protocol.SysInfo:
		d.mu.Lock()
		d.runLevel = v.RunLevel
		d.transportV = v.Transport
		d.mu.Unlock()
		d.mirror.mu.Lock()
		d.mirror.sys = v
		d.mirror.mu.Unlock()
		d.events.Signal("sysrep")
	case *protocol.NPlay:
		d.mu.Lock()
		d.nplaySeen = true
		d.mu.Unlock()
	case *protocol.ChanInfo:
		d.mirror.applyChanInfo(t, v)
	case *protocol.ProcInfo:
		d.mirror.mu.Lock()
		d.mirror.procs = append(d.mirror.procs, v)
		d.mu.Lock()
		d.procChans += int(v.ChanCount)
		d.mu.Unlock()
		d.mirror.mu.Unlock()
	case *protocol.BankInfo:
		d.mirror.mu.Lock()
		d.mirror.banks = append(d.mirror.banks, v)
		d.mirror.mu.Unlock()
	case *protocol.GroupInfo:
		d.mirror.mu.Lock()
		d.mirror.groups[v.Group] = v
		d.mirror.mu.Unlock()
	}

	if t == protocol.TypeRepConfigAll {
		d.events.Signal("reqconfigall")
	}
}

// send encodes p and writes it to the transport, stamping its header type
// with DefaultType if the caller left it zero.
func (d *Device) send(p protocol.Packet) error {
	if p.GetHeader().Type == 0 {
		p.GetHeader().Type = uint16(p.DefaultType())
	}
	marshaler, ok := p.(protocol.BinaryMarshalerTo)
	if !ok {
		return fmt.Errorf("nsp: packet type does not support marshaling")
	}
	buf := make([]byte, protocol.MaxPacketBytes)
	n, _, err := d.factory.Encode(marshaler, buf)
	if err != nil {
		return err
	}
	return d.transport.Send(buf[:n])
}

// Start launches the transport's read loop and the ingest handler's
// dispatch loop under a shared errgroup, and returns immediately. Connect
// should only be called after Start; Stop/Disconnect join both goroutines.
func (d *Device) Start() {
	d.group = &errgroup.Group{}
	d.group.Go(d.transport.ReadLoop)
	d.group.Go(func() error {
		d.handler.Run(d.transport)
		return nil
	})
}

// Stop closes the transport, which unblocks both the read loop and the
// handler, then joins them, returning the first non-nil error either
// reported.
func (d *Device) Stop() error {
	closeErr := d.transport.Close()
	if d.group == nil {
		return closeErr
	}
	if err := d.group.Wait(); err != nil {
		return err
	}
	return closeErr
}

// Handler returns the device's ingest handler, for callers that need to
// register callbacks or read handler-side stats directly.
func (d *Device) Handler() *Handler { return d.handler }

// SetClock overrides the clock ConnectWithBackoff waits on. Exposed for
// tests that need to drive backoff timing deterministically.
func (d *Device) SetClock(c Clock) { d.clock = c }

// RunLevel returns the instrument's last-reported run level.
func (d *Device) RunLevel() protocol.RunLevel {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.runLevel
}

// setRunLevel requests a run-level transition and waits for the device's
// SYSREP confirmation, honoring ctx's deadline.
func (d *Device) setRunLevel(ctx context.Context, level protocol.RunLevel) error {
	req := &protocol.SysInfo{
		Header:   protocol.Header{ChanID: protocol.ChanConfiguration, Type: uint16(protocol.TypeSysSetRunLevel)},
		RunLevel: level,
	}
	if err := d.send(req); err != nil {
		return fmt.Errorf("nsp: sending SYSSETRUNLEV(%s): %w", level, err)
	}
	if err := d.events.Wait(ctx, "sysrep"); err != nil {
		return fmt.Errorf("nsp: waiting for SYSREP after requesting %s: %w", level, err)
	}
	if got := d.RunLevel(); got != level {
		return fmt.Errorf("nsp: requested run level %s, device reports %s", level, got)
	}
	return nil
}

// SetRunLevel requests a run-level transition and waits for the device's
// confirmation, honoring ctx's deadline. Exported for callers that need to
// drive a transition outside of Connect/Disconnect (e.g. STRESSED recovery).
func (d *Device) SetRunLevel(ctx context.Context, level protocol.RunLevel) error {
	return d.setRunLevel(ctx, level)
}

// Connect drives the instrument through its startup handshake: request
// RUNNING directly and give the device a short window to confirm it's
// already past startup; only on failure does it fall back to HARDRESET
// (awaiting STANDBY). A REQCONFIGALL refresh follows in either case, with a
// final RESET fallback that blocks with no timeout until RUNNING is observed. If a NPlay record
// was received during REQCONFIGALL, Connect finishes by driving the
// NPLAYSET{NONE}->{PAUSE}->{SINGLE} choreography.
func (d *Device) Connect(ctx context.Context) error {
	runCtx, cancel := context.WithTimeout(ctx, 450*time.Millisecond)
	err := d.setRunLevel(runCtx, protocol.RunLevelRunning)
	cancel()
	if err != nil {
		d.log.WithError(err).Debug("nsp: RUNNING did not confirm in time, falling back to HARDRESET")

		req := &protocol.SysInfo{
			Header:   protocol.Header{ChanID: protocol.ChanConfiguration, Type: uint16(protocol.TypeSysSetRunLevel)},
			RunLevel: protocol.RunLevelHardReset,
		}
		if err := d.send(req); err != nil {
			return fmt.Errorf("nsp: sending SYSSETRUNLEV(HARDRESET): %w", err)
		}
		if err := d.awaitRunLevel(ctx, protocol.RunLevelStandby); err != nil {
			return fmt.Errorf("nsp: waiting for STANDBY after HARDRESET: %w", err)
		}
	}

	reqCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	req2 := &protocol.Generic{Header: protocol.Header{ChanID: protocol.ChanConfiguration, Type: uint16(protocol.TypeReqConfigAll)}}
	sendErr := d.send(req2)
	if sendErr == nil {
		sendErr = d.events.Wait(reqCtx, "reqconfigall")
	}
	cancel()
	if sendErr != nil {
		return fmt.Errorf("nsp: REQCONFIGALL did not complete: %w", sendErr)
	}

	d.mu.Lock()
	want := d.procChans
	d.mu.Unlock()
	if got := d.mirror.ChannelCount(); want > 0 && got != want {
		return fmt.Errorf("nsp: REQCONFIGALL enumerated %d channels, expected %d", got, want)
	}

	if d.RunLevel() != protocol.RunLevelRunning {
		resetReq := &protocol.SysInfo{
			Header:   protocol.Header{ChanID: protocol.ChanConfiguration, Type: uint16(protocol.TypeSysSetRunLevel)},
			RunLevel: protocol.RunLevelReset,
		}
		if err := d.send(resetReq); err != nil {
			return fmt.Errorf("nsp: sending SYSSETRUNLEV(RESET): %w", err)
		}
		if err := d.awaitRunLevel(ctx, protocol.RunLevelRunning); err != nil {
			return fmt.Errorf("nsp: waiting for RUNNING after RESET: %w", err)
		}
	}

	return d.nplayChoreography(ctx)
}

// awaitRunLevel blocks on repeated SYSREP arrivals until the mirrored run
// level reaches want or ctx is canceled.
func (d *Device) awaitRunLevel(ctx context.Context, want protocol.RunLevel) error {
	for d.RunLevel() != want {
		if err := d.events.Wait(ctx, "sysrep"); err != nil {
			return err
		}
	}
	return nil
}

// nplayChoreography drives the three-step NPLAYSET handshake the startup
// sequence requires whenever an NPlay record was received during
// REQCONFIGALL: NONE, then PAUSE, then SINGLE, each a short gap apart.
func (d *Device) nplayChoreography(ctx context.Context) error {
	d.mu.Lock()
	seen := d.nplaySeen
	d.mu.Unlock()
	if !seen {
		return nil
	}

	steps := []protocol.NPlayMode{protocol.NPlayModeNone, protocol.NPlayModePause, protocol.NPlayModeSingle}
	for i, mode := range steps {
		p := &protocol.NPlay{
			Header: protocol.Header{ChanID: protocol.ChanConfiguration, Type: uint16(protocol.TypeNPlaySet)},
			Mode:   mode,
		}
		if err := d.send(p); err != nil {
			return fmt.Errorf("nsp: sending NPLAYSET step %d (mode=%d): %w", i, mode, err)
		}
		if i < len(steps)-1 {
			select {
			case <-d.clock.After(150 * time.Millisecond):
			case <-ctx.Done():
				return ctx.Err()
			}
		}
	}
	return nil
}

// ConnectWithBackoff retries Connect using the device's configured backoff
// policy between attempts, until it succeeds or ctx is canceled. With no
// backoff configured (BackoffConfig.Mode == "") it behaves like a single
// plain Connect.
func (d *Device) ConnectWithBackoff(ctx context.Context) error {
	for {
		err := d.Connect(ctx)
		if err == nil {
			d.backoff.reset()
			return nil
		}
		if ctx.Err() != nil {
			return err
		}
		wait := d.backoff.inc()
		if !d.backoff.active() {
			return fmt.Errorf("%w: %v", errBackoff, err)
		}
		d.log.WithError(err).WithField("backoff", wait).Warn("nsp: connect attempt failed, backing off")
		select {
		case <-d.clock.After(wait):
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

// Disconnect requests STANDBY, then stops the transport and ingest
// goroutines and joins them before returning.
func (d *Device) Disconnect(ctx context.Context) error {
	_ = d.setRunLevel(ctx, protocol.RunLevelStandby)
	return d.Stop()
}
