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
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
)

// TransportProtocol is the transport used for SIP signaling.
type TransportProtocol string

const (
	TransportUDP TransportProtocol = "udp"
	TransportTCP TransportProtocol = "tcp"
	TransportTLS TransportProtocol = "tls"
)

// SRTPMode controls SRTP media encryption negotiation.
type SRTPMode string

const (
	SRTPDisabled  SRTPMode = "disabled"
	SRTPOptional  SRTPMode = "optional"
	SRTPMandatory SRTPMode = "mandatory"
)

// CallRequest is the body of POST /call. Optional fields are pointers so
// that an absent field is distinguishable from an explicit zero value.
type CallRequest struct {
	// Dest is the destination to dial, in whatever form the call runtime
	// accepts (number or SIP URI).
	Dest string `json:"dest"`

	// Text is the message to synthesize and speak. Exactly one of Text or
	// Wav must be set.
	Text *string `json:"text,omitempty"`
	// Wav is the audio file to play instead of synthesized speech.
	Wav *string `json:"wav,omitempty"`

	// SIP connection overrides. An unset field falls back to a reference
	// into the operator's credentials secret.
	SIPServer    *string            `json:"sip_server,omitempty"`
	SIPPort      *int32             `json:"sip_port,omitempty"`
	SIPUser      *string            `json:"sip_user,omitempty"`
	SIPPassword  *string            `json:"sip_password,omitempty"`
	SIPTransport *TransportProtocol `json:"sip_transport,omitempty"`
	SIPSRTP      *SRTPMode          `json:"sip_srtp,omitempty"`
	SIPTLSVerify *bool              `json:"sip_tls_verify,omitempty"`

	// NAT traversal overrides, secret-backed the same way.
	STUNServers   *string            `json:"stun_servers,omitempty"`
	ICEEnabled    *bool              `json:"ice_enabled,omitempty"`
	TURNServer    *string            `json:"turn_server,omitempty"`
	TURNUsername  *string            `json:"turn_username,omitempty"`
	TURNPassword  *string            `json:"turn_password,omitempty"`
	TURNTransport *TransportProtocol `json:"turn_transport,omitempty"`
	KeepaliveSec  *int32             `json:"keepalive_sec,omitempty"`
	PublicAddress *string            `json:"public_address,omitempty"`

	// Call parameters. Timeout and Repeat are defaulted by
	// SetCallRequestDefaults when unset.
	Timeout        *int32   `json:"timeout,omitempty"`
	PreDelay       float64  `json:"pre_delay,omitempty"`
	PostDelay      float64  `json:"post_delay,omitempty"`
	WaitForSilence *float64 `json:"wait_for_silence,omitempty"`
	InterDelay     float64  `json:"inter_delay,omitempty"`
	Repeat         *int32   `json:"repeat,omitempty"`

	// TTS parameters.
	TTSModel      *string `json:"tts_model,omitempty"`
	TTSSampleRate *int32  `json:"tts_sample_rate,omitempty"`
	TTSDataDir    *string `json:"tts_data_dir,omitempty"`

	// STT parameters.
	STTModel    *string `json:"stt_model,omitempty"`
	STTLanguage *string `json:"stt_language,omitempty"`
	STTDataDir  *string `json:"stt_data_dir,omitempty"`

	// Record is the file the call runtime records to. It should point below
	// /data/recordings when the recording volume mount is configured,
	// e.g. "/data/recordings/call.wav".
	Record *string `json:"record,omitempty"`
	// Transcribe runs speech-to-text over the recording. Requires Record.
	Transcribe bool `json:"transcribe,omitempty"`

	Verbose bool `json:"verbose,omitempty"`

	// NodeSelector replaces the operator's default node selector when
	// present. An explicit empty map clears the default.
	NodeSelector map[string]string `json:"node_selector,omitempty"`
}

// HasText reports whether the request carries a non-empty text message.
func (r *CallRequest) HasText() bool {
	return r.Text != nil && *r.Text != ""
}

// HasWav reports whether the request carries a non-empty audio file path.
func (r *CallRequest) HasWav() bool {
	return r.Wav != nil && *r.Wav != ""
}

// CallResponse is returned by POST /call.
type CallResponse struct {
	JobName   string `json:"job_name"`
	Namespace string `json:"namespace"`
	Status    string `json:"status"`
}

// JobPhase summarizes the lifecycle state of a call job.
type JobPhase string

const (
	JobPending   JobPhase = "pending"
	JobRunning   JobPhase = "running"
	JobSucceeded JobPhase = "succeeded"
	JobFailed    JobPhase = "failed"
)

// JobInfo is the status view of one call job.
type JobInfo struct {
	Name        string       `json:"name"`
	Namespace   string       `json:"namespace"`
	Status      JobPhase     `json:"status"`
	CreatedAt   *metav1.Time `json:"created_at,omitempty"`
	CompletedAt *metav1.Time `json:"completed_at,omitempty"`
}

// HealthResponse is returned by GET /health.
type HealthResponse struct {
	Status  string `json:"status"`
	Version string `json:"version"`
}

// ScheduledCall registers a recurring call fired on a cron schedule.
type ScheduledCall struct {
	// Name identifies the schedule. Must be a DNS-1123 label.
	Name string `json:"name"`
	// Schedule is a standard 5-field cron expression, optionally prefixed
	// with CRON_TZ=<zone>.
	Schedule string `json:"schedule"`
	// TimeZone interprets Schedule in the given IANA zone when it carries
	// no CRON_TZ prefix of its own.
	TimeZone string `json:"timezone,omitempty"`
	// Suspend stops the schedule from firing without removing it.
	Suspend *bool `json:"suspend,omitempty"`
	// Template is the call to place on every firing.
	Template CallRequest `json:"template"`
}

// ScheduledCallStatus reports the execution bookkeeping of one schedule.
type ScheduledCallStatus struct {
	Name        string       `json:"name"`
	Schedule    string       `json:"schedule"`
	TimeZone    string       `json:"timezone,omitempty"`
	Suspend     bool         `json:"suspend"`
	LastRun     *metav1.Time `json:"last_run,omitempty"`
	NextRun     *metav1.Time `json:"next_run,omitempty"`
	LastRunName string       `json:"last_run_name,omitempty"`
}
