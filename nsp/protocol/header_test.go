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
	"testing"

	"github.com/stretchr/testify/require"
)

func TestHeaderSizes(t *testing.T) {
	require.Equal(t, 8, WireVersion311.HeaderSize())
	require.Equal(t, 16, WireVersion40.HeaderSize())
	require.Equal(t, 16, WireVersion41.HeaderSize())
}

func TestWireVersionAtLeast(t *testing.T) {
	require.True(t, WireVersion41.AtLeast(WireVersion40))
	require.True(t, WireVersion41.AtLeast(WireVersion311))
	require.False(t, WireVersion40.AtLeast(WireVersion41))
	require.True(t, WireVersion40.AtLeast(WireVersion40))
}

func TestHeaderRoundTrip311(t *testing.T) {
	h := Header{Time: 123456, ChanID: 5, Type: 7, DataLength: 3}
	buf := make([]byte, WireVersion311.HeaderSize())
	n, err := MarshalHeaderTo(WireVersion311, h, buf)
	require.NoError(t, err)
	require.Equal(t, 8, n)

	got, err := UnmarshalHeader(WireVersion311, buf)
	require.NoError(t, err)
	require.Equal(t, uint64(123456&0xFFFFFFFF), got.Time)
	require.Equal(t, h.ChanID, got.ChanID)
	require.Equal(t, h.Type, got.Type)
	require.Equal(t, h.DataLength, got.DataLength)
}

func TestHeaderRoundTrip40And41(t *testing.T) {
	for _, v := range []WireVersion{WireVersion40, WireVersion41} {
		h := Header{Time: 0xDEADBEEF, ChanID: 0x8001, Type: 0x40, DataLength: 200, Instrument: 2, Reserved: 1}
		buf := make([]byte, v.HeaderSize())
		n, err := MarshalHeaderTo(v, h, buf)
		require.NoError(t, err)
		require.Equal(t, 16, n)

		got, err := UnmarshalHeader(v, buf)
		require.NoError(t, err)
		require.Equal(t, h, got)
	}
}

func TestUnmarshalHeaderTruncated(t *testing.T) {
	_, err := UnmarshalHeader(WireVersion41, make([]byte, 4))
	require.ErrorIs(t, err, ErrTruncatedDatagram)
}

func TestIsConfigurationAndIsGroup(t *testing.T) {
	require.True(t, IsConfiguration(0x8040))
	require.False(t, IsConfiguration(0x0040))
	require.True(t, IsGroup(0x0000))
	require.False(t, IsGroup(0x0001))
}
