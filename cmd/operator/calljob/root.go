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

// Package calljob holds the dumpjob and startjob verbs. Both assemble a
// call request from --data JSON plus flags (explicitly set flags win) and
// an operator config from the environment plus override flags.
package calljob

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/vroomfondel/sipstuff-k8s-operator/api/v1alpha1"
	"github.com/vroomfondel/sipstuff-k8s-operator/internal/config"
	"github.com/vroomfondel/sipstuff-k8s-operator/pkg/util"
)

var (
	data string

	dest           string
	text           string
	wav            string
	sipServer      string
	sipPort        int32
	sipUser        string
	sipPassword    string
	sipTransport   string
	sipSRTP        string
	sipTLSVerify   bool
	stunServers    string
	iceEnabled     bool
	turnServer     string
	turnUsername   string
	turnPassword   string
	turnTransport  string
	keepaliveSec   int32
	publicAddress  string
	timeout        int32
	preDelay       float64
	postDelay      float64
	interDelay     float64
	waitForSilence float64
	repeat         int32
	ttsModel       string
	ttsSampleRate  int32
	ttsDataDir     string
	sttModel       string
	sttLanguage    string
	sttDataDir     string
	record         string
	transcribe     bool
	verbose        bool
)

var (
	namespace      string
	image          string
	secretName     string
	ttlSeconds     int32
	backoffLimit   int32
	hostNetwork    bool
	piperDataDir   string
	whisperDataDir string
	recordingDir   string
	runAsUser      int64
	runAsGroup     int64
	fsGroup        int64
	nodeSelector   string
)

func registerRequestFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&data, "data", "", "JSON call request used as the base; explicitly set flags override its fields.")

	cmd.Flags().StringVar(&dest, "dest", "", "The destination to dial (number or SIP URI).")
	cmd.Flags().StringVar(&text, "text", "", "The message to synthesize and speak.")
	cmd.Flags().StringVar(&wav, "wav", "", "The audio file to play instead of synthesized speech.")

	cmd.Flags().StringVar(&sipServer, "sip-server", "", "The SIP registrar to register with.")
	cmd.Flags().Int32Var(&sipPort, "sip-port", 0, "The SIP registrar port.")
	cmd.Flags().StringVar(&sipUser, "sip-user", "", "The SIP account user.")
	cmd.Flags().StringVar(&sipPassword, "sip-password", "", "The SIP account password.")
	cmd.Flags().StringVar(&sipTransport, "sip-transport", "", "The SIP transport: udp, tcp or tls.")
	cmd.Flags().StringVar(&sipSRTP, "sip-srtp", "", "SRTP negotiation: disabled, optional or mandatory.")
	cmd.Flags().BoolVar(&sipTLSVerify, "sip-tls-verify", false, "Verify the SIP server TLS certificate.")

	cmd.Flags().StringVar(&stunServers, "stun-servers", "", "Comma-separated STUN servers.")
	cmd.Flags().BoolVar(&iceEnabled, "ice-enabled", false, "Enable ICE for NAT traversal.")
	cmd.Flags().StringVar(&turnServer, "turn-server", "", "The TURN relay server.")
	cmd.Flags().StringVar(&turnUsername, "turn-username", "", "The TURN username.")
	cmd.Flags().StringVar(&turnPassword, "turn-password", "", "The TURN password.")
	cmd.Flags().StringVar(&turnTransport, "turn-transport", "", "The TURN transport: udp, tcp or tls.")
	cmd.Flags().Int32Var(&keepaliveSec, "keepalive-sec", 0, "NAT keepalive interval in seconds.")
	cmd.Flags().StringVar(&publicAddress, "public-address", "", "The public address announced in SIP/SDP.")

	cmd.Flags().Int32Var(&timeout, "timeout", 0, "Maximum call duration in seconds.")
	cmd.Flags().Float64Var(&preDelay, "pre-delay", 0, "Seconds to wait after answer before speaking.")
	cmd.Flags().Float64Var(&postDelay, "post-delay", 0, "Seconds to wait after speaking before hangup.")
	cmd.Flags().Float64Var(&interDelay, "inter-delay", 0, "Seconds to wait between repetitions.")
	cmd.Flags().Float64Var(&waitForSilence, "wait-for-silence", 0, "Seconds of silence to wait for before speaking.")
	cmd.Flags().Int32Var(&repeat, "repeat", 0, "Number of times the message is played.")

	cmd.Flags().StringVar(&ttsModel, "tts-model", "", "The piper TTS model.")
	cmd.Flags().Int32Var(&ttsSampleRate, "tts-sample-rate", 0, "The TTS output sample rate in Hz.")
	cmd.Flags().StringVar(&ttsDataDir, "tts-data-dir", "", "The TTS model cache directory inside the container.")

	cmd.Flags().StringVar(&sttModel, "stt-model", "", "The whisper STT model.")
	cmd.Flags().StringVar(&sttLanguage, "stt-language", "", "The STT language hint.")
	cmd.Flags().StringVar(&sttDataDir, "stt-data-dir", "", "The STT model cache directory inside the container.")

	cmd.Flags().StringVar(&record, "record", "", "The file the call is recorded to.")
	cmd.Flags().BoolVar(&transcribe, "transcribe", false, "Run speech-to-text over the recording.")
	cmd.Flags().BoolVar(&verbose, "verbose", false, "Verbose call runtime output.")
}

func registerConfigFlags(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&namespace, "namespace", "n", "", "The namespace the job is created in.")
	cmd.Flags().StringVar(&image, "image", "", "The container image running the call.")
	cmd.Flags().StringVar(&secretName, "secret-name", "", "The secret holding fallback SIP credentials.")
	cmd.Flags().Int32Var(&ttlSeconds, "ttl-seconds", 0, "Seconds a finished job is kept before cleanup.")
	cmd.Flags().Int32Var(&backoffLimit, "backoff-limit", 0, "Number of pod retries before the job fails.")
	cmd.Flags().BoolVar(&hostNetwork, "host-network", false, "Run the call pod on the host network.")
	cmd.Flags().StringVar(&piperDataDir, "piper-data-dir", "", "Host directory for the piper model cache; empty disables the mount.")
	cmd.Flags().StringVar(&whisperDataDir, "whisper-data-dir", "", "Host directory for the whisper model cache; empty disables the mount.")
	cmd.Flags().StringVar(&recordingDir, "recording-dir", "", "Host directory for recordings; empty disables the mount.")
	cmd.Flags().Int64Var(&runAsUser, "run-as-user", 0, "UID the call container runs as.")
	cmd.Flags().Int64Var(&runAsGroup, "run-as-group", 0, "GID the call container runs as.")
	cmd.Flags().Int64Var(&fsGroup, "fs-group", 0, "Filesystem group of the call pod.")
	cmd.Flags().StringVar(&nodeSelector, "node-selector", "", "Default node selector as key=value pairs; empty clears it.")
}

func buildCallRequest(cmd *cobra.Command) (*v1alpha1.CallRequest, error) {
	req := &v1alpha1.CallRequest{}
	if data != "" {
		decoder := json.NewDecoder(strings.NewReader(data))
		decoder.DisallowUnknownFields()
		if err := decoder.Decode(req); err != nil {
			return nil, fmt.Errorf("invalid --data: %v", err)
		}
	}

	flags := cmd.Flags()
	if flags.Changed("dest") {
		req.Dest = dest
	}
	if flags.Changed("text") {
		req.Text = &text
	}
	if flags.Changed("wav") {
		req.Wav = &wav
	}
	if flags.Changed("sip-server") {
		req.SIPServer = &sipServer
	}
	if flags.Changed("sip-port") {
		req.SIPPort = &sipPort
	}
	if flags.Changed("sip-user") {
		req.SIPUser = &sipUser
	}
	if flags.Changed("sip-password") {
		req.SIPPassword = &sipPassword
	}
	if flags.Changed("sip-transport") {
		transport := v1alpha1.TransportProtocol(sipTransport)
		req.SIPTransport = &transport
	}
	if flags.Changed("sip-srtp") {
		mode := v1alpha1.SRTPMode(sipSRTP)
		req.SIPSRTP = &mode
	}
	if flags.Changed("sip-tls-verify") {
		req.SIPTLSVerify = &sipTLSVerify
	}
	if flags.Changed("stun-servers") {
		req.STUNServers = &stunServers
	}
	if flags.Changed("ice-enabled") {
		req.ICEEnabled = &iceEnabled
	}
	if flags.Changed("turn-server") {
		req.TURNServer = &turnServer
	}
	if flags.Changed("turn-username") {
		req.TURNUsername = &turnUsername
	}
	if flags.Changed("turn-password") {
		req.TURNPassword = &turnPassword
	}
	if flags.Changed("turn-transport") {
		transport := v1alpha1.TransportProtocol(turnTransport)
		req.TURNTransport = &transport
	}
	if flags.Changed("keepalive-sec") {
		req.KeepaliveSec = &keepaliveSec
	}
	if flags.Changed("public-address") {
		req.PublicAddress = &publicAddress
	}
	if flags.Changed("timeout") {
		req.Timeout = &timeout
	}
	if flags.Changed("pre-delay") {
		req.PreDelay = preDelay
	}
	if flags.Changed("post-delay") {
		req.PostDelay = postDelay
	}
	if flags.Changed("inter-delay") {
		req.InterDelay = interDelay
	}
	if flags.Changed("wait-for-silence") {
		req.WaitForSilence = &waitForSilence
	}
	if flags.Changed("repeat") {
		req.Repeat = &repeat
	}
	if flags.Changed("tts-model") {
		req.TTSModel = &ttsModel
	}
	if flags.Changed("tts-sample-rate") {
		req.TTSSampleRate = &ttsSampleRate
	}
	if flags.Changed("tts-data-dir") {
		req.TTSDataDir = &ttsDataDir
	}
	if flags.Changed("stt-model") {
		req.STTModel = &sttModel
	}
	if flags.Changed("stt-language") {
		req.STTLanguage = &sttLanguage
	}
	if flags.Changed("stt-data-dir") {
		req.STTDataDir = &sttDataDir
	}
	if flags.Changed("record") {
		req.Record = &record
	}
	if flags.Changed("transcribe") {
		req.Transcribe = transcribe
	}
	if flags.Changed("verbose") {
		req.Verbose = verbose
	}

	v1alpha1.SetCallRequestDefaults(req)
	if err := req.Validate(); err != nil {
		return nil, err
	}
	return req, nil
}

func loadOperatorConfig(cmd *cobra.Command) (*config.OperatorConfig, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}

	flags := cmd.Flags()
	if flags.Changed("namespace") {
		cfg.Namespace = namespace
	}
	if flags.Changed("image") {
		cfg.JobImage = image
	}
	if flags.Changed("secret-name") {
		cfg.SIPSecretName = secretName
	}
	if flags.Changed("ttl-seconds") {
		cfg.JobTTLSeconds = ttlSeconds
	}
	if flags.Changed("backoff-limit") {
		cfg.JobBackoffLimit = backoffLimit
	}
	if flags.Changed("host-network") {
		cfg.HostNetwork = hostNetwork
	}
	if flags.Changed("piper-data-dir") {
		cfg.PiperDataDir = optionalValue(piperDataDir)
	}
	if flags.Changed("whisper-data-dir") {
		cfg.WhisperDataDir = optionalValue(whisperDataDir)
	}
	if flags.Changed("recording-dir") {
		cfg.RecordingDir = optionalValue(recordingDir)
	}
	if flags.Changed("run-as-user") {
		cfg.RunAsUser = &runAsUser
	}
	if flags.Changed("run-as-group") {
		cfg.RunAsGroup = &runAsGroup
	}
	if flags.Changed("fs-group") {
		cfg.FSGroup = &fsGroup
	}
	if flags.Changed("node-selector") {
		selector, err := util.ParseNodeSelector(nodeSelector)
		if err != nil {
			return nil, fmt.Errorf("invalid --node-selector: %v", err)
		}
		cfg.NodeSelector = selector
	}
	return cfg, nil
}

func optionalValue(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
