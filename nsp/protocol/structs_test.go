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

func TestScalingRoundTrip(t *testing.T) {
	s := Scaling{DigitalMin: -100, DigitalMax: 100, AnalogMin: -5000, AnalogMax: 5000, AnalogGain: 1000}
	copy(s.AnalogUnit[:], "uV")
	buf := make([]byte, scalingSize)
	s.marshalTo(buf)

	var got Scaling
	got.unmarshal(buf)
	require.Equal(t, s, got)
}

func TestFilterDescRoundTrip(t *testing.T) {
	f := FilterDesc{HighPassFreq: 250, HighPassOrder: 4, LowPassFreq: 7500, LowPassOrder: 4}
	copy(f.Label[:], "Filter1")
	buf := make([]byte, filterDescSize)
	f.marshalTo(buf)

	var got FilterDesc
	got.unmarshal(buf)
	require.Equal(t, f, got)
}

func TestUnitMappingRoundTrip(t *testing.T) {
	u := UnitMapping{Override: 1, Origin: [3]int16{1, 2, 3}, Phi: 90, Valid: 1}
	u.Shape[0] = [3]int16{4, 5, 6}
	buf := make([]byte, unitMappingSize)
	u.marshalTo(buf)

	var got UnitMapping
	got.unmarshal(buf)
	require.Equal(t, u, got)
}

func TestHoopRoundTrip(t *testing.T) {
	h := Hoop{Valid: 1, Time: 10, Min: -50, Max: 50}
	buf := make([]byte, hoopSize)
	h.marshalTo(buf)

	var got Hoop
	got.unmarshal(buf)
	require.Equal(t, h, got)
}
