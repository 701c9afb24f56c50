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
	"testing"
	"time"

	"go.uber.org/mock/gomock"

	"github.com/stretchr/testify/require"

	"github.com/CerebusOSS/nspsdk-go/nsp/protocol"
)

// TestConnectWithBackoffConsultsClockBetweenAttempts closes the transport
// before connecting, so every Connect attempt fails immediately on the send
// itself rather than on a timeout. That isolates ConnectWithBackoff's own
// retry/backoff bookkeeping: it must wait via the injected Clock, not real
// time, and keep retrying (fixed backoff never exhausts) until the outer
// context is canceled.
func TestConnectWithBackoffConsultsClockBetweenAttempts(t *testing.T) {
	deviceSide, quietSide := localTransportPair(t)
	defer quietSide.Close()
	require.NoError(t, deviceSide.Close())

	cfg := DefaultConfig()
	cfg.Backoff = BackoffConfig{Mode: backoffFixed, Step: 1, MaxValue: 5}
	device := NewDevice(cfg, deviceSide, protocol.WireVersion41)

	ctrl := gomock.NewController(t)
	defer ctrl.Finish()
	mockClock := NewMockClock(ctrl)
	closed := make(chan time.Time)
	close(closed)
	mockClock.EXPECT().After(time.Duration(1)*time.Second).Return(closed).MinTimes(2)
	device.SetClock(mockClock)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	err := device.ConnectWithBackoff(ctx)
	require.Error(t, err)
}
