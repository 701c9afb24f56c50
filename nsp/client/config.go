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
	"os"
	"time"

	log "github.com/sirupsen/logrus"
	yaml "gopkg.in/yaml.v2"

	"github.com/CerebusOSS/nspsdk-go/nsp/protocol"
)

// BackoffConfig describes configuration for backoff on a lost/unresponsive instrument.
type BackoffConfig struct {
	Mode     string
	Step     int
	MaxValue int
}

// Validate BackoffConfig is sane.
func (c *BackoffConfig) Validate() error {
	if c.Mode != backoffNone && c.Mode != backoffFixed && c.Mode != backoffLinear && c.Mode != backoffExponential {
		return fmt.Errorf("mode must be either %q, %q, %q or %q", backoffNone, backoffFixed, backoffLinear, backoffExponential)
	}
	if c.Mode != backoffNone {
		if c.Step <= 0 {
			return fmt.Errorf("step must be positive")
		}
		if c.Mode != backoffFixed && c.MaxValue <= 0 {
			return fmt.Errorf("maxvalue must be positive")
		}
	}
	return nil
}

// Config specifies how to reach and drive one NSP instrument.
type Config struct {
	// LocalAddress/LocalPort is where this client binds; LocalPort 0 lets
	// the OS choose an ephemeral port.
	LocalAddress string `yaml:"local_address"`
	LocalPort    int    `yaml:"local_port"`
	// InstrumentAddress/InstrumentPort is the device to talk to.
	InstrumentAddress string `yaml:"instrument_address"`
	InstrumentPort    int    `yaml:"instrument_port"`

	// WireVersionName selects the header layout: "3.11", "4.0" or "4.1".
	WireVersionName string `yaml:"wire_version"`

	ConnectTimeout  time.Duration `yaml:"connect_timeout"`
	MonitoringPort  int           `yaml:"monitoring_port"`
	RecvBufferBytes int           `yaml:"recv_buffer_bytes"`
	QueueDepth      int           `yaml:"queue_depth"`

	Backoff BackoffConfig `yaml:"backoff"`
}

// DefaultConfig returns Config initialized with default values, matching the
// instrument's well-known discovery address and 4.1 wire format.
func DefaultConfig() *Config {
	return &Config{
		LocalAddress:      "0.0.0.0",
		LocalPort:         0,
		InstrumentAddress: "192.168.137.1",
		InstrumentPort:    51002,
		WireVersionName:   "4.1",
		ConnectTimeout:    5 * time.Second,
		MonitoringPort:    0,
		RecvBufferBytes:   4 << 20,
		QueueDepth:        8192,
	}
}

// WireVersion parses WireVersionName into a protocol.WireVersion.
func (c *Config) WireVersion() (protocol.WireVersion, error) {
	switch c.WireVersionName {
	case "3.11":
		return protocol.WireVersion311, nil
	case "4.0":
		return protocol.WireVersion40, nil
	case "4.1", "":
		return protocol.WireVersion41, nil
	default:
		return 0, fmt.Errorf("unsupported wire_version %q", c.WireVersionName)
	}
}

// Validate config is sane.
func (c *Config) Validate() error {
	if c.InstrumentAddress == "" {
		return fmt.Errorf("instrument_address must be specified")
	}
	if net.ParseIP(c.InstrumentAddress) == nil {
		return fmt.Errorf("instrument_address %q is not a valid IP", c.InstrumentAddress)
	}
	if c.InstrumentPort <= 0 {
		return fmt.Errorf("instrument_port must be positive")
	}
	if c.LocalAddress != "" && net.ParseIP(c.LocalAddress) == nil {
		return fmt.Errorf("local_address %q is not a valid IP", c.LocalAddress)
	}
	if c.LocalPort < 0 {
		return fmt.Errorf("local_port must be 0 or positive")
	}
	if c.ConnectTimeout <= 0 {
		return fmt.Errorf("connect_timeout must be positive")
	}
	if c.MonitoringPort < 0 {
		return fmt.Errorf("monitoring_port must be 0 or positive")
	}
	if c.RecvBufferBytes < 0 {
		return fmt.Errorf("recv_buffer_bytes must be 0 or positive")
	}
	if c.QueueDepth <= 0 {
		return fmt.Errorf("queue_depth must be positive")
	}
	if _, err := c.WireVersion(); err != nil {
		return err
	}
	if err := c.Backoff.Validate(); err != nil {
		return fmt.Errorf("invalid backoff config: %w", err)
	}
	return nil
}

// ReadConfig reads config from a YAML file, starting from DefaultConfig so
// the file only needs to override what it cares about.
func ReadConfig(path string) (*Config, error) {
	c := DefaultConfig()
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return nil, err
	}
	log.Debugf("nsp config: %+v", c)
	return c, nil
}
