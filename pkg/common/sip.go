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

package common

// SIP credential environment variables. Each name doubles as the canonical
// key under which the credentials secret stores the fallback value.
const (
	EnvSIPServer = "SIP_SERVER"

	EnvSIPPort = "SIP_PORT"

	EnvSIPUser = "SIP_USER"

	EnvSIPPassword = "SIP_PASSWORD"

	EnvSIPTransport = "SIP_TRANSPORT"

	EnvSIPSRTP = "SIP_SRTP"

	EnvSIPTLSVerifyServer = "SIP_TLS_VERIFY_SERVER"
)

// NAT traversal environment variables, secret-keyed the same way.
const (
	EnvSIPSTUNServers = "SIP_STUN_SERVERS"

	EnvSIPICEEnabled = "SIP_ICE_ENABLED"

	EnvSIPTURNServer = "SIP_TURN_SERVER"

	EnvSIPTURNUsername = "SIP_TURN_USERNAME"

	EnvSIPTURNPassword = "SIP_TURN_PASSWORD"

	EnvSIPTURNTransport = "SIP_TURN_TRANSPORT"

	EnvSIPKeepaliveSec = "SIP_KEEPALIVE_SEC"

	EnvSIPPublicAddress = "SIP_PUBLIC_ADDRESS"

	// EnvSIPTURNEnabled is set to "true" whenever a request overrides the
	// TURN server, so the call runtime switches TURN on without a separate
	// request field.
	EnvSIPTURNEnabled = "SIP_TURN_ENABLED"
)

// Data directory environment variables. The operator reads them as host
// paths to mount; the caller container receives them again, pointing at the
// in-container mount paths.
const (
	EnvPiperDataDir = "PIPER_DATA_DIR"

	EnvWhisperDataDir = "WHISPER_DATA_DIR"

	EnvRecordingDir = "RECORDING_DIR"
)
