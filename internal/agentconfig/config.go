// Package agentconfig loads the TOML file the bcp-agent binary starts
// from: radio device wiring, handshake/advertising timing overrides, and
// the admin HTTP surface.
package agentconfig

import (
	"fmt"
	"strings"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/danmuck/bcp/internal/agent"
)

// File is the on-disk shape of a bcp-agent config file. Only fields the
// caller actually set in the file override agent.DefaultConfig(); the rest
// come from the compiled-in defaults.
type File struct {
	Address   uint32   `toml:"address"`
	Device    string   `toml:"device"`
	AdminAddr string   `toml:"admin_addr"`
	CORS      []string `toml:"cors_origins"`

	HandshakeLeadTime               string `toml:"handshake_lead_time"`
	BaseAdvertisingInterval         string `toml:"base_advertising_interval"`
	AdvertisingTransmissionDuration string `toml:"advertising_transmission_duration"`
	HandshakeReceiveDuration        string `toml:"handshake_receive_duration"`
	PendSleepTime                   string `toml:"pend_sleep_time"`
	HardcodedTransmissionTime       string `toml:"session_transmit_duration"`
	HardcodedSleepTime              string `toml:"session_gap_duration"`
	SessionTimeoutLimit             int    `toml:"session_timeout_limit"`
	SessionSpinloopThreshold        string `toml:"session_spinloop_threshold"`
}

// Loaded bundles everything a bcp-agent main needs to start: the agent
// address, the radio device path, the admin surface address, and the agent
// timing configuration.
type Loaded struct {
	Address   uint32
	Device    string
	AdminAddr string
	CORS      []string
	Agent     agent.Config
}

// Load reads path, applying only the fields present in the file on top of
// agent.DefaultConfig() and sensible address/device/admin defaults.
func Load(path string) (Loaded, error) {
	out := Loaded{
		Device:    "/dev/ttyUSB0",
		AdminAddr: ":8080",
		Agent:     agent.DefaultConfig(),
	}

	var raw File
	meta, err := toml.DecodeFile(path, &raw)
	if err != nil {
		return Loaded{}, fmt.Errorf("load agent config: %w", err)
	}

	if meta.IsDefined("address") {
		out.Address = raw.Address
	}
	if meta.IsDefined("device") {
		d := strings.TrimSpace(raw.Device)
		if d != "" {
			out.Device = d
		}
	}
	if meta.IsDefined("admin_addr") {
		a := strings.TrimSpace(raw.AdminAddr)
		if a != "" {
			out.AdminAddr = a
		}
	}
	if meta.IsDefined("cors_origins") {
		out.CORS = normalizeList(raw.CORS)
	}

	durationFields := []struct {
		defined bool
		raw     string
		field   *time.Duration
		name    string
	}{
		{meta.IsDefined("handshake_lead_time"), raw.HandshakeLeadTime, &out.Agent.HandshakeLeadTime, "handshake_lead_time"},
		{meta.IsDefined("base_advertising_interval"), raw.BaseAdvertisingInterval, &out.Agent.BaseAdvertisingInterval, "base_advertising_interval"},
		{meta.IsDefined("advertising_transmission_duration"), raw.AdvertisingTransmissionDuration, &out.Agent.AdvertisingTransmissionDuration, "advertising_transmission_duration"},
		{meta.IsDefined("handshake_receive_duration"), raw.HandshakeReceiveDuration, &out.Agent.HandshakeReceiveDuration, "handshake_receive_duration"},
		{meta.IsDefined("pend_sleep_time"), raw.PendSleepTime, &out.Agent.PendSleepTime, "pend_sleep_time"},
		{meta.IsDefined("session_transmit_duration"), raw.HardcodedTransmissionTime, &out.Agent.HardcodedTransmissionTime, "session_transmit_duration"},
		{meta.IsDefined("session_gap_duration"), raw.HardcodedSleepTime, &out.Agent.HardcodedSleepTime, "session_gap_duration"},
		{meta.IsDefined("session_spinloop_threshold"), raw.SessionSpinloopThreshold, &out.Agent.SessionSpinloopThreshold, "session_spinloop_threshold"},
	}
	for _, f := range durationFields {
		if !f.defined {
			continue
		}
		d, err := time.ParseDuration(strings.TrimSpace(f.raw))
		if err != nil {
			return Loaded{}, fmt.Errorf("parse %s: %w", f.name, err)
		}
		*f.field = d
	}

	if meta.IsDefined("session_timeout_limit") {
		out.Agent.SessionTimeoutLimit = raw.SessionTimeoutLimit
	}

	out.Agent.ConnectionRequestInterval = out.Agent.BaseAdvertisingInterval - out.Agent.AdvertisingTransmissionDuration

	return out, nil
}

func normalizeList(in []string) []string {
	out := make([]string, 0, len(in))
	for _, v := range in {
		v = strings.TrimSpace(v)
		if v == "" {
			continue
		}
		out = append(out, v)
	}
	return out
}
