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
	"io"
	"sort"
	"strconv"
	"strings"

	"github.com/olekukonko/tablewriter"
)

const maxDumpColWidth = 40

// DumpChannelTable renders every channel the mirror currently knows about as
// a table, chid ascending, for operator-facing diagnostics (e.g. a CLI
// "show channels" command). It takes a snapshot under the mirror's read
// lock and does no further I/O once rendering starts.
func (m *configMirror) DumpChannelTable(w io.Writer) {
	m.mu.RLock()
	chids := make([]uint16, 0, len(m.channels))
	rows := make(map[uint16]*channelRecord, len(m.channels))
	for chid, rec := range m.channels {
		chids = append(chids, chid)
		rows[chid] = rec
	}
	m.mu.RUnlock()

	sort.Slice(chids, func(i, j int) bool { return chids[i] < chids[j] })

	table := tablewriter.NewWriter(w)
	table.SetColWidth(maxDumpColWidth)
	table.SetHeader([]string{"chid", "class", "label", "chancaps", "smpgroup", "spkfilter"})
	for _, chid := range chids {
		rec := rows[chid]
		label := strings.TrimRight(string(rec.body.Label[:]), "\x00")
		table.Append([]string{
			strconv.Itoa(int(chid)),
			rec.class.String(),
			label,
			strconv.FormatUint(uint64(rec.body.ChanCaps), 16),
			strconv.FormatUint(uint64(rec.body.SmpGroup), 10),
			strconv.FormatUint(uint64(rec.body.SpkFilter), 10),
		})
	}
	table.Render()
}

// DumpChannelTable renders the device's current channel configuration mirror.
func (d *Device) DumpChannelTable(w io.Writer) {
	d.mirror.DumpChannelTable(w)
}
