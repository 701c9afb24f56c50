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
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/CerebusOSS/nspsdk-go/nsp/protocol"
)

func TestDumpChannelTableListsChannelsInOrder(t *testing.T) {
	m := newConfigMirror()
	m.applyChanInfo(protocol.TypeChanInfoRep, &protocol.ChanInfo{
		Body: protocol.ChanInfoBody{Chan: 2, ChanCaps: protocol.ChanCapAnalogIn, Label: [16]byte{'y'}},
	})
	m.applyChanInfo(protocol.TypeChanInfoRep, &protocol.ChanInfo{
		Body: protocol.ChanInfoBody{Chan: 1, ChanCaps: protocol.ChanCapAnalogIn, Label: [16]byte{'x'}},
	})

	var buf bytes.Buffer
	m.DumpChannelTable(&buf)

	out := buf.String()
	require.Contains(t, out, "chid")
	require.Contains(t, out, "AnalogIn")
	require.Less(t, indexOf(out, "x"), indexOf(out, "y"))
}

func indexOf(s, sub string) int {
	for i := 0; i+len(sub) <= len(s); i++ {
		if s[i:i+len(sub)] == sub {
			return i
		}
	}
	return -1
}
