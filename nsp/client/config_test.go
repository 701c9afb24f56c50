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
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/CerebusOSS/nspsdk-go/nsp/protocol"
)

func TestDefaultConfigIsValid(t *testing.T) {
	require.NoError(t, DefaultConfig().Validate())
}

func TestConfigWireVersion(t *testing.T) {
	c := DefaultConfig()
	c.WireVersionName = "3.11"
	v, err := c.WireVersion()
	require.NoError(t, err)
	require.Equal(t, protocol.WireVersion311, v)

	c.WireVersionName = "bogus"
	_, err = c.WireVersion()
	require.Error(t, err)
}

func TestConfigValidateRejectsBadInstrumentAddress(t *testing.T) {
	c := DefaultConfig()
	c.InstrumentAddress = "not-an-ip"
	require.Error(t, c.Validate())
}

func TestConfigValidateRejectsNonPositivePort(t *testing.T) {
	c := DefaultConfig()
	c.InstrumentPort = 0
	require.Error(t, c.Validate())
}

func TestBackoffConfigValidate(t *testing.T) {
	require.NoError(t, (&BackoffConfig{Mode: backoffNone}).Validate())
	require.NoError(t, (&BackoffConfig{Mode: backoffFixed, Step: 1}).Validate())
	require.Error(t, (&BackoffConfig{Mode: backoffFixed, Step: 0}).Validate())
	require.Error(t, (&BackoffConfig{Mode: backoffLinear, Step: 1, MaxValue: 0}).Validate())
	require.Error(t, (&BackoffConfig{Mode: "bogus"}).Validate())
}

func TestReadConfigOverridesDefaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "nsp.yaml")
	require.NoError(t, os.WriteFile(path, []byte("instrument_address: 10.0.0.5\ninstrument_port: 51001\n"), 0o644))

	c, err := ReadConfig(path)
	require.NoError(t, err)
	require.Equal(t, "10.0.0.5", c.InstrumentAddress)
	require.Equal(t, 51001, c.InstrumentPort)
	// unset fields keep DefaultConfig's values
	require.Equal(t, "4.1", c.WireVersionName)
}
