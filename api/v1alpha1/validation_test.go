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

package v1alpha1_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"k8s.io/utils/ptr"

	"github.com/vroomfondel/sipstuff-k8s-operator/api/v1alpha1"
)

func TestCallRequestValidate(t *testing.T) {
	tests := []struct {
		name    string
		request v1alpha1.CallRequest
		wantErr string
	}{
		{
			name: "minimal valid request",
			request: v1alpha1.CallRequest{
				Dest: "+4912345678",
				Text: ptr.To("Hello"),
			},
		},
		{
			name:    "missing dest",
			request: v1alpha1.CallRequest{Text: ptr.To("Hello")},
			wantErr: "dest is required",
		},
		{
			name: "sip_port below range",
			request: v1alpha1.CallRequest{
				Dest:    "100",
				Text:    ptr.To("hi"),
				SIPPort: ptr.To(int32(0)),
			},
			wantErr: "sip_port must be between 1 and 65535",
		},
		{
			name: "sip_port above range",
			request: v1alpha1.CallRequest{
				Dest:    "100",
				Text:    ptr.To("hi"),
				SIPPort: ptr.To(int32(70000)),
			},
			wantErr: "sip_port must be between 1 and 65535",
		},
		{
			name: "bad sip_transport",
			request: v1alpha1.CallRequest{
				Dest:         "100",
				Text:         ptr.To("hi"),
				SIPTransport: ptr.To(v1alpha1.TransportProtocol("sctp")),
			},
			wantErr: "sip_transport must be one of udp, tcp or tls",
		},
		{
			name: "bad srtp mode",
			request: v1alpha1.CallRequest{
				Dest:    "100",
				Text:    ptr.To("hi"),
				SIPSRTP: ptr.To(v1alpha1.SRTPMode("always")),
			},
			wantErr: "sip_srtp must be one of disabled, optional or mandatory",
		},
		{
			name: "bad turn_transport",
			request: v1alpha1.CallRequest{
				Dest:          "100",
				Text:          ptr.To("hi"),
				TURNTransport: ptr.To(v1alpha1.TransportProtocol("quic")),
			},
			wantErr: "turn_transport must be one of udp, tcp or tls",
		},
		{
			name: "keepalive out of range",
			request: v1alpha1.CallRequest{
				Dest:         "100",
				Text:         ptr.To("hi"),
				KeepaliveSec: ptr.To(int32(601)),
			},
			wantErr: "keepalive_sec must be between 0 and 600",
		},
		{
			name: "explicit zero timeout rejected",
			request: v1alpha1.CallRequest{
				Dest:    "100",
				Text:    ptr.To("hi"),
				Timeout: ptr.To(int32(0)),
			},
			wantErr: "timeout must be between 1 and 600",
		},
		{
			name: "pre_delay too long",
			request: v1alpha1.CallRequest{
				Dest:     "100",
				Text:     ptr.To("hi"),
				PreDelay: 31,
			},
			wantErr: "pre_delay must be between 0 and 30",
		},
		{
			name: "negative inter_delay",
			request: v1alpha1.CallRequest{
				Dest:       "100",
				Text:       ptr.To("hi"),
				InterDelay: -0.5,
			},
			wantErr: "inter_delay must be between 0 and 30",
		},
		{
			name: "wait_for_silence too long",
			request: v1alpha1.CallRequest{
				Dest:           "100",
				Text:           ptr.To("hi"),
				WaitForSilence: ptr.To(60.0),
			},
			wantErr: "wait_for_silence must be between 0 and 30",
		},
		{
			name: "repeat zero rejected",
			request: v1alpha1.CallRequest{
				Dest:   "100",
				Text:   ptr.To("hi"),
				Repeat: ptr.To(int32(0)),
			},
			wantErr: "repeat must be between 1 and 100",
		},
		{
			name: "tts_sample_rate too high",
			request: v1alpha1.CallRequest{
				Dest:          "100",
				Text:          ptr.To("hi"),
				TTSSampleRate: ptr.To(int32(96000)),
			},
			wantErr: "tts_sample_rate must be between 0 and 48000",
		},
		{
			name: "all bounds at their edges",
			request: v1alpha1.CallRequest{
				Dest:           "100",
				Wav:            ptr.To("/tmp/hello.wav"),
				SIPPort:        ptr.To(int32(65535)),
				SIPTransport:   ptr.To(v1alpha1.TransportTLS),
				SIPSRTP:        ptr.To(v1alpha1.SRTPMandatory),
				KeepaliveSec:   ptr.To(int32(600)),
				Timeout:        ptr.To(int32(600)),
				PreDelay:       30,
				PostDelay:      30,
				InterDelay:     30,
				WaitForSilence: ptr.To(30.0),
				Repeat:         ptr.To(int32(100)),
				TTSSampleRate:  ptr.To(int32(48000)),
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.request.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
			} else {
				assert.ErrorContains(t, err, tt.wantErr)
			}
		})
	}
}

func TestScheduledCallValidate(t *testing.T) {
	valid := v1alpha1.CallRequest{Dest: "100", Text: ptr.To("hi")}

	tests := []struct {
		name     string
		schedule v1alpha1.ScheduledCall
		wantErr  string
	}{
		{
			name: "valid schedule",
			schedule: v1alpha1.ScheduledCall{
				Name:     "trunk-check",
				Schedule: "*/10 * * * *",
				Template: valid,
			},
		},
		{
			name:     "missing name",
			schedule: v1alpha1.ScheduledCall{Schedule: "@hourly", Template: valid},
			wantErr:  "name is required",
		},
		{
			name: "name not a dns label",
			schedule: v1alpha1.ScheduledCall{
				Name:     "Trunk_Check",
				Schedule: "@hourly",
				Template: valid,
			},
			wantErr: "name must be a DNS-1123 label",
		},
		{
			name:     "missing schedule",
			schedule: v1alpha1.ScheduledCall{Name: "trunk-check", Template: valid},
			wantErr:  "schedule is required",
		},
		{
			name: "invalid template",
			schedule: v1alpha1.ScheduledCall{
				Name:     "trunk-check",
				Schedule: "@hourly",
				Template: v1alpha1.CallRequest{Text: ptr.To("hi")},
			},
			wantErr: "template: dest is required",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.schedule.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
			} else {
				assert.ErrorContains(t, err, tt.wantErr)
			}
		})
	}
}

func TestSetCallRequestDefaults(t *testing.T) {
	r := &v1alpha1.CallRequest{Dest: "100", Text: ptr.To("hi")}
	v1alpha1.SetCallRequestDefaults(r)
	if assert.NotNil(t, r.Timeout) {
		assert.Equal(t, int32(60), *r.Timeout)
	}
	if assert.NotNil(t, r.Repeat) {
		assert.Equal(t, int32(1), *r.Repeat)
	}

	// explicit values survive defaulting
	r = &v1alpha1.CallRequest{
		Dest:    "100",
		Text:    ptr.To("hi"),
		Timeout: ptr.To(int32(120)),
		Repeat:  ptr.To(int32(3)),
	}
	v1alpha1.SetCallRequestDefaults(r)
	assert.Equal(t, int32(120), *r.Timeout)
	assert.Equal(t, int32(3), *r.Repeat)

	v1alpha1.SetCallRequestDefaults(nil)
}

func TestSetScheduledCallDefaults(t *testing.T) {
	s := &v1alpha1.ScheduledCall{
		Name:     "trunk-check",
		Schedule: "@hourly",
		Template: v1alpha1.CallRequest{Dest: "100", Text: ptr.To("hi")},
	}
	v1alpha1.SetScheduledCallDefaults(s)
	if assert.NotNil(t, s.Suspend) {
		assert.False(t, *s.Suspend)
	}
	assert.NotNil(t, s.Template.Timeout)
	assert.NotNil(t, s.Template.Repeat)
}
