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
	"net"

	"golang.org/x/sys/unix"

	"github.com/CerebusOSS/nspsdk-go/nsp/protocol"
)

// rawDatagram is one received UDP payload plus the address it came from, fed
// into the ingest pipeline by the reader goroutine.
type rawDatagram struct {
	data []byte
	from unix.Sockaddr
}

// shutdownDatagram is pushed onto the receive queue to wake a blocked
// consumer on Close, since the socket read itself can't be interrupted
// cleanly once it is mid-Recvfrom.
var shutdownDatagram = &rawDatagram{}

// UDPTransport is a raw-socket UDP datagram transport for one NSP
// instrument connection: one socket, one blocking reader goroutine feeding
// a bounded single-producer/single-consumer queue, and a thread-safe writer.
type UDPTransport struct {
	connFd   int
	peerAddr unix.Sockaddr

	recvQueue chan *rawDatagram
	closed    chan struct{}
}

// TransportOptions configures socket-level tuning knobs for a new transport.
type TransportOptions struct {
	// RecvBufBytes sets SO_RCVBUF; 0 leaves the OS default in place.
	RecvBufBytes int
	// QueueDepth bounds the receive queue between the reader goroutine and
	// the ingest handler. A full queue blocks ReadLoop (not the socket
	// itself) until the handler drains it or Close is called.
	QueueDepth int
}

// DefaultTransportOptions mirrors the device's own burst profile: sample
// groups arrive at up to several kHz under full acquisition, so the queue
// is sized generously rather than tuned tight.
func DefaultTransportOptions() TransportOptions {
	return TransportOptions{RecvBufBytes: 4 << 20, QueueDepth: 8192}
}

// NewUDPTransport binds a UDP socket to localAddr and remembers peerAddr as
// the instrument to send to. Binding to the wildcard port lets the OS pick
// an ephemeral source port, matching how the instrument's own discovery
// broadcast is answered.
func NewUDPTransport(localAddr net.IP, localPort int, peer net.IP, peerPort int, opts TransportOptions) (*UDPTransport, error) {
	domain := unix.AF_INET
	if localAddr.To4() == nil {
		domain = unix.AF_INET6
	}
	fd, err := unix.Socket(domain, unix.SOCK_DGRAM, unix.IPPROTO_UDP)
	if err != nil {
		return nil, fmt.Errorf("nsp: creating socket: %w", err)
	}
	if err := unix.SetNonblock(fd, false); err != nil {
		_ = unix.Close(fd)
		return nil, fmt.Errorf("nsp: setting blocking mode: %w", err)
	}
	if opts.RecvBufBytes > 0 {
		if err := unix.SetsockoptInt(fd, unix.SOL_SOCKET, unix.SO_RCVBUF, opts.RecvBufBytes); err != nil {
			_ = unix.Close(fd)
			return nil, fmt.Errorf("nsp: setting SO_RCVBUF: %w", err)
		}
	}
	if err := unix.SetsockoptInt(fd, unix.SOL_SOCKET, unix.SO_REUSEADDR, 1); err != nil {
		_ = unix.Close(fd)
		return nil, fmt.Errorf("nsp: setting SO_REUSEADDR: %w", err)
	}
	if err := unix.SetsockoptInt(fd, unix.SOL_SOCKET, unix.SO_DONTROUTE, 1); err != nil {
		_ = unix.Close(fd)
		return nil, fmt.Errorf("nsp: setting SO_DONTROUTE: %w", err)
	}
	local := ipToSockaddr(localAddr, localPort)
	if err := unix.Bind(fd, local); err != nil {
		_ = unix.Close(fd)
		return nil, fmt.Errorf("nsp: binding %v: %w", local, err)
	}
	depth := opts.QueueDepth
	if depth <= 0 {
		depth = DefaultTransportOptions().QueueDepth
	}
	return &UDPTransport{
		connFd:    fd,
		peerAddr:  ipToSockaddr(peer, peerPort),
		recvQueue: make(chan *rawDatagram, depth),
		closed:    make(chan struct{}),
	}, nil
}

func ipToSockaddr(ip net.IP, port int) unix.Sockaddr {
	if v4 := ip.To4(); v4 != nil {
		var addr [4]byte
		copy(addr[:], v4)
		return &unix.SockaddrInet4{Port: port, Addr: addr}
	}
	var addr [16]byte
	copy(addr[:], ip.To16())
	return &unix.SockaddrInet6{Port: port, Addr: addr}
}

// Send writes one already-encoded datagram to the instrument.
func (t *UDPTransport) Send(b []byte) error {
	return unix.Sendto(t.connFd, b, 0, t.peerAddr)
}

// ReadLoop blocks reading datagrams off the socket and pushing them onto the
// receive queue until Close is called; it never decodes, so a malformed or
// oversized datagram never blocks the socket itself. Run it in its own
// goroutine.
func (t *UDPTransport) ReadLoop() error {
	buf := make([]byte, protocol.MaxPacketBytes)
	for {
		n, from, err := unix.Recvfrom(t.connFd, buf, 0)
		if err != nil {
			select {
			case <-t.closed:
				return nil
			default:
				return fmt.Errorf("nsp: reading datagram: %w", err)
			}
		}
		cp := make([]byte, n)
		copy(cp, buf[:n])
		select {
		case t.recvQueue <- &rawDatagram{data: cp, from: from}:
		case <-t.closed:
			return nil
		}
	}
}

// Recv returns the next queued datagram, or ok=false if the transport has
// been closed. Datagrams still queued when Close is called may be dropped.
func (t *UDPTransport) Recv() (*rawDatagram, bool) {
	select {
	case d, ok := <-t.recvQueue:
		if !ok || d == shutdownDatagram {
			return nil, false
		}
		return d, true
	case <-t.closed:
		return nil, false
	}
}

// Close unblocks ReadLoop and any Recv callers and releases the socket.
func (t *UDPTransport) Close() error {
	select {
	case <-t.closed:
		return nil
	default:
		close(t.closed)
	}
	// close alone does not wake a Recvfrom already blocked in ReadLoop;
	// shutting the socket down first does.
	_ = unix.Shutdown(t.connFd, unix.SHUT_RDWR)
	err := unix.Close(t.connFd)
	// best-effort wake a blocked Recv; if the queue is full this is a no-op
	// and the reader's own closed-channel check still unblocks it.
	select {
	case t.recvQueue <- shutdownDatagram:
	default:
	}
	return err
}
