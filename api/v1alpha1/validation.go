/*
Copyright 2025 The sipstuff-k8s-operator authors.

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

    https://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

package v1alpha1

import (
	"fmt"

	"k8s.io/apimachinery/pkg/util/validation"
)

// Validate checks field shapes and bounds. The text/wav exclusivity and the
// transcribe/record dependency are not checked here; the job builder owns
// those rules.
func (r *CallRequest) Validate() error {
	if r.Dest == "" {
		return fmt.Errorf("dest is required")
	}
	if r.SIPPort != nil && (*r.SIPPort < 1 || *r.SIPPort > 65535) {
		return fmt.Errorf("sip_port must be between 1 and 65535, got %d", *r.SIPPort)
	}
	if err := validateTransport("sip_transport", r.SIPTransport); err != nil {
		return err
	}
	if r.SIPSRTP != nil {
		switch *r.SIPSRTP {
		case SRTPDisabled, SRTPOptional, SRTPMandatory:
		default:
			return fmt.Errorf("sip_srtp must be one of disabled, optional or mandatory, got %q", *r.SIPSRTP)
		}
	}
	if err := validateTransport("turn_transport", r.TURNTransport); err != nil {
		return err
	}
	if r.KeepaliveSec != nil && (*r.KeepaliveSec < 0 || *r.KeepaliveSec > 600) {
		return fmt.Errorf("keepalive_sec must be between 0 and 600, got %d", *r.KeepaliveSec)
	}
	if r.Timeout != nil && (*r.Timeout < 1 || *r.Timeout > 600) {
		return fmt.Errorf("timeout must be between 1 and 600, got %d", *r.Timeout)
	}
	for _, d := range []struct {
		name  string
		value float64
	}{
		{"pre_delay", r.PreDelay},
		{"post_delay", r.PostDelay},
		{"inter_delay", r.InterDelay},
	} {
		if d.value < 0 || d.value > 30 {
			return fmt.Errorf("%s must be between 0 and 30, got %v", d.name, d.value)
		}
	}
	if r.WaitForSilence != nil && (*r.WaitForSilence < 0 || *r.WaitForSilence > 30) {
		return fmt.Errorf("wait_for_silence must be between 0 and 30, got %v", *r.WaitForSilence)
	}
	if r.Repeat != nil && (*r.Repeat < 1 || *r.Repeat > 100) {
		return fmt.Errorf("repeat must be between 1 and 100, got %d", *r.Repeat)
	}
	if r.TTSSampleRate != nil && (*r.TTSSampleRate < 0 || *r.TTSSampleRate > 48000) {
		return fmt.Errorf("tts_sample_rate must be between 0 and 48000, got %d", *r.TTSSampleRate)
	}
	return nil
}

func validateTransport(field string, t *TransportProtocol) error {
	if t == nil {
		return nil
	}
	switch *t {
	case TransportUDP, TransportTCP, TransportTLS:
		return nil
	default:
		return fmt.Errorf("%s must be one of udp, tcp or tls, got %q", field, *t)
	}
}

// Validate checks the schedule registration. The cron expression itself is
// parsed by the scheduler, which owns the cron syntax.
func (s *ScheduledCall) Validate() error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}
	if msgs := validation.IsDNS1123Label(s.Name); len(msgs) > 0 {
		return fmt.Errorf("name must be a DNS-1123 label: %s", msgs[0])
	}
	if s.Schedule == "" {
		return fmt.Errorf("schedule is required")
	}
	if err := s.Template.Validate(); err != nil {
		return fmt.Errorf("template: %w", err)
	}
	return nil
}
