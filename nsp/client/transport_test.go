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
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"golang.org/x/sys/unix"
)

func localTransportPair(t *testing.T) (a, b *UDPTransport) {
	t.Helper()
	loopback := net.ParseIP("127.0.0.1")

	a, err := NewUDPTransport(loopback, 0, loopback, 0, DefaultTransportOptions())
	require.NoError(t, err)
	aSockAddr, err := unix.Getsockname(a.connFd)
	require.NoError(t, err)
	aPort := aSockAddr.(*unix.SockaddrInet4).Port

	b, err = NewUDPTransport(loopback, 0, loopback, aPort, DefaultTransportOptions())
	require.NoError(t, err)
	bSockAddr, err := unix.Getsockname(b.connFd)
	require.NoError(t, err)
	bPort := bSockAddr.(*unix.SockaddrInet4).Port

	a.peerAddr = ipToSockaddr(loopback, bPort)
	return a, b
}

func TestUDPTransportSendRecvRoundTrip(t *testing.T) {
	a, b := localTransportPair(t)
	defer a.Close()
	defer b.Close()

	go func() { _ = b.ReadLoop() }()

	payload := []byte{1, 2, 3, 4}
	require.NoError(t, a.Send(payload))

	d, ok := b.Recv()
	require.True(t, ok)
	require.Equal(t, payload, d.data)
}

func TestUDPTransportCloseUnblocksRecv(t *testing.T) {
	_, b := localTransportPair(t)
	go func() { _ = b.ReadLoop() }()

	done := make(chan struct{})
	go func() {
		_, ok := b.Recv()
		require.False(t, ok)
		close(done)
	}()

	time.Sleep(10 * time.Millisecond)
	require.NoError(t, b.Close())

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Recv did not unblock after Close")
	}
}

func TestUDPTransportCloseIsIdempotent(t *testing.T) {
	_, b := localTransportPair(t)
	require.NoError(t, b.Close())
	require.NoError(t, b.Close())
}
