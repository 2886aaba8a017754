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

package builder

import (
	corev1 "k8s.io/api/core/v1"
	"k8s.io/utils/ptr"

	"github.com/vroomfondel/sipstuff-k8s-operator/internal/config"
	"github.com/vroomfondel/sipstuff-k8s-operator/pkg/common"
)

// VolumeSpec is one host directory attached to the call pod. EnvName is the
// variable announcing the in-container mount path to the call runtime.
type VolumeSpec struct {
	Name      string
	HostPath  string
	MountPath string
	EnvName   string
}

// PlanVolumes maps the configured data directories onto their fixed mount
// slots, in slot order, skipping unset directories. The mount paths are
// static; config only controls whether a slot is populated.
func PlanVolumes(cfg *config.OperatorConfig) []VolumeSpec {
	slots := []struct {
		hostPath         *string
		name             string
		mountPath        string
		envName          string
	}{
		{cfg.PiperDataDir, common.VolumeNamePiperData, common.MountPathPiperData, common.EnvPiperDataDir},
		{cfg.WhisperDataDir, common.VolumeNameWhisperData, common.MountPathWhisperData, common.EnvWhisperDataDir},
		{cfg.RecordingDir, common.VolumeNameRecordingData, common.MountPathRecordingData, common.EnvRecordingDir},
	}

	var specs []VolumeSpec
	for _, slot := range slots {
		if slot.hostPath == nil {
			continue
		}
		specs = append(specs, VolumeSpec{
			Name:      slot.name,
			HostPath:  *slot.hostPath,
			MountPath: slot.mountPath,
			EnvName:   slot.envName,
		})
	}
	return specs
}

// Volume renders the pod volume. DirectoryOrCreate keeps first runs on a
// fresh node from failing.
func (s VolumeSpec) Volume() corev1.Volume {
	return corev1.Volume{
		Name: s.Name,
		VolumeSource: corev1.VolumeSource{
			HostPath: &corev1.HostPathVolumeSource{
				Path: s.HostPath,
				Type: ptr.To(corev1.HostPathDirectoryOrCreate),
			},
		},
	}
}

// Mount renders the read-write container mount.
func (s VolumeSpec) Mount() corev1.VolumeMount {
	return corev1.VolumeMount{
		Name:      s.Name,
		MountPath: s.MountPath,
	}
}

// EnvVar announces the mount path to the call runtime.
func (s VolumeSpec) EnvVar() corev1.EnvVar {
	return corev1.EnvVar{
		Name:  s.EnvName,
		Value: s.MountPath,
	}
}
