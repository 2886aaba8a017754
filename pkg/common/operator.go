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

// Operator configuration environment variables.
const (
	EnvJobNamespace = "JOB_NAMESPACE"

	EnvJobImage = "JOB_IMAGE"

	EnvSIPSecretName = "SIP_SECRET_NAME"

	EnvJobTTLSeconds = "JOB_TTL_SECONDS"

	EnvJobBackoffLimit = "JOB_BACKOFF_LIMIT"

	EnvJobHostNetwork = "JOB_HOST_NETWORK"

	EnvJobNodeSelector = "JOB_NODE_SELECTOR"

	EnvRunAsUser = "RUN_AS_USER"

	EnvRunAsGroup = "RUN_AS_GROUP"

	EnvFSGroup = "FS_GROUP"

	EnvPort = "PORT"

	EnvCallRateQPS = "CALL_RATE_QPS"

	EnvCallRateBurst = "CALL_RATE_BURST"
)

// Operator defaults.
const (
	DefaultNamespace = "sipstuff"

	DefaultJobImage = "xomoxcc/somestuff:latest"

	DefaultSecretName = "sip-credentials"

	DefaultTTLSeconds = 3600

	DefaultBackoffLimit = 0

	DefaultPort = 8080
)

// Labels applied to every job and pod the operator creates.
const (
	LabelApp = "app"

	LabelAppValue = "sipstuff-operator"

	LabelComponent = "component"

	LabelComponentValue = "sip-caller"

	// LabelScheduleName carries the name of the schedule that fired a
	// recurring call job. Absent on jobs created via the API or CLI.
	LabelScheduleName = "sipstuff.io/schedule-name"
)

// Container names and images.
const (
	SIPCallerContainerName = "sip-caller"

	PermissionFixContainerName = "fix-permissions"

	PermissionFixImage = "busybox:latest"
)

// Volume names and their fixed container mount paths.
const (
	VolumeNamePiperData = "piper-data"

	MountPathPiperData = "/data/piper"

	VolumeNameWhisperData = "whisper-data"

	MountPathWhisperData = "/data/whisper"

	VolumeNameRecordingData = "recording-data"

	MountPathRecordingData = "/data/recordings"
)

// JobNamePrefix starts every generated job name.
const JobNamePrefix = "sipcall"

// MinSupportedKubeVersion is the oldest Kubernetes release the connectivity
// test accepts without a warning.
const MinSupportedKubeVersion = "v1.24.0"
