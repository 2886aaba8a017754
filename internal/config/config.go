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

package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/viper"

	"github.com/vroomfondel/sipstuff-k8s-operator/pkg/common"
	"github.com/vroomfondel/sipstuff-k8s-operator/pkg/util"
)

const serviceAccountNamespaceFile = "/var/run/secrets/kubernetes.io/serviceaccount/namespace"

// OperatorConfig holds the process-wide settings for the operator. It is
// loaded once at startup from environment variables and never mutated;
// callers receive it by explicit injection.
type OperatorConfig struct {
	// Namespace is where call jobs are created and listed.
	Namespace string
	// JobImage is the container image running the call.
	JobImage string
	// SIPSecretName names the secret holding fallback SIP credentials.
	SIPSecretName string

	JobTTLSeconds   int32
	JobBackoffLimit int32
	HostNetwork     bool

	// Optional host directories. A nil entry means no volume for that slot.
	PiperDataDir   *string
	WhisperDataDir *string
	RecordingDir   *string

	// Optional pod security identities.
	RunAsUser  *int64
	RunAsGroup *int64
	FSGroup    *int64

	// NodeSelector is the default selector for call job pods. A request may
	// replace it, including with an explicit empty map.
	NodeSelector map[string]string

	// Port is the HTTP listen port.
	Port int

	// CallRateQPS/CallRateBurst bound POST /call throughput. Zero disables
	// the limiter.
	CallRateQPS   float64
	CallRateBurst int
}

// Load builds an OperatorConfig from environment variables.
func Load() (*OperatorConfig, error) {
	return load(serviceAccountNamespaceFile)
}

func load(namespaceFile string) (*OperatorConfig, error) {
	v := viper.New()
	v.AutomaticEnv()
	v.SetDefault(common.EnvJobNamespace, detectNamespace(namespaceFile))
	v.SetDefault(common.EnvJobImage, common.DefaultJobImage)
	v.SetDefault(common.EnvSIPSecretName, common.DefaultSecretName)
	v.SetDefault(common.EnvJobTTLSeconds, common.DefaultTTLSeconds)
	v.SetDefault(common.EnvJobBackoffLimit, common.DefaultBackoffLimit)
	v.SetDefault(common.EnvJobHostNetwork, "true")
	v.SetDefault(common.EnvPort, common.DefaultPort)

	cfg := &OperatorConfig{
		Namespace:      strings.TrimSpace(v.GetString(common.EnvJobNamespace)),
		JobImage:       strings.TrimSpace(v.GetString(common.EnvJobImage)),
		SIPSecretName:  strings.TrimSpace(v.GetString(common.EnvSIPSecretName)),
		HostNetwork:    parseBool(v.GetString(common.EnvJobHostNetwork)),
		PiperDataDir:   optionalString(v, common.EnvPiperDataDir),
		WhisperDataDir: optionalString(v, common.EnvWhisperDataDir),
		RecordingDir:   optionalString(v, common.EnvRecordingDir),
	}

	var err error
	if cfg.JobTTLSeconds, err = parseInt32(v, common.EnvJobTTLSeconds); err != nil {
		return nil, err
	}
	if cfg.JobBackoffLimit, err = parseInt32(v, common.EnvJobBackoffLimit); err != nil {
		return nil, err
	}
	port, err := parseInt32(v, common.EnvPort)
	if err != nil {
		return nil, err
	}
	cfg.Port = int(port)

	if cfg.RunAsUser, err = parseOptionalInt64(v, common.EnvRunAsUser); err != nil {
		return nil, err
	}
	if cfg.RunAsGroup, err = parseOptionalInt64(v, common.EnvRunAsGroup); err != nil {
		return nil, err
	}
	if cfg.FSGroup, err = parseOptionalInt64(v, common.EnvFSGroup); err != nil {
		return nil, err
	}

	if cfg.NodeSelector, err = util.ParseNodeSelector(v.GetString(common.EnvJobNodeSelector)); err != nil {
		return nil, fmt.Errorf("invalid %s: %w", common.EnvJobNodeSelector, err)
	}

	if cfg.CallRateQPS, err = parseOptionalFloat(v, common.EnvCallRateQPS); err != nil {
		return nil, err
	}
	burst, err := parseOptionalInt64(v, common.EnvCallRateBurst)
	if err != nil {
		return nil, err
	}
	if burst != nil {
		cfg.CallRateBurst = int(*burst)
	}

	return cfg, nil
}

// detectNamespace falls back to the namespace the operator pod runs in,
// then to the static default.
func detectNamespace(namespaceFile string) string {
	data, err := os.ReadFile(namespaceFile)
	if err != nil {
		return common.DefaultNamespace
	}
	if ns := strings.TrimSpace(string(data)); ns != "" {
		return ns
	}
	return common.DefaultNamespace
}

func parseBool(value string) bool {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "true", "1", "yes":
		return true
	}
	return false
}

func parseInt32(v *viper.Viper, key string) (int32, error) {
	raw := strings.TrimSpace(v.GetString(key))
	n, err := strconv.ParseInt(raw, 10, 32)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", key, raw, err)
	}
	return int32(n), nil
}

func parseOptionalInt64(v *viper.Viper, key string) (*int64, error) {
	raw := strings.TrimSpace(v.GetString(key))
	if raw == "" {
		return nil, nil
	}
	n, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid %s %q: %w", key, raw, err)
	}
	return &n, nil
}

func parseOptionalFloat(v *viper.Viper, key string) (float64, error) {
	raw := strings.TrimSpace(v.GetString(key))
	if raw == "" {
		return 0, nil
	}
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", key, raw, err)
	}
	return f, nil
}

func optionalString(v *viper.Viper, key string) *string {
	raw := strings.TrimSpace(v.GetString(key))
	if raw == "" {
		return nil
	}
	return &raw
}
