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
	"fmt"
	"strconv"
	"strings"

	corev1 "k8s.io/api/core/v1"
	"k8s.io/utils/ptr"

	"github.com/vroomfondel/sipstuff-k8s-operator/internal/config"
	"github.com/vroomfondel/sipstuff-k8s-operator/pkg/common"
)

// NewPermissionFixContainer returns the root init container that chowns the
// mounted data directories to the configured identity, or nil when no uid
// is configured or nothing is mounted. fsGroup does not apply to hostPath
// volumes, so the chown is the only way the non-root caller gets writable
// mounts. A non-zero chown exit fails the pod before the caller starts.
func NewPermissionFixContainer(cfg *config.OperatorConfig, volumes []VolumeSpec) *corev1.Container {
	if cfg.RunAsUser == nil || len(volumes) == 0 {
		return nil
	}

	// The owning group prefers fsGroup over the runtime gid, mirroring what
	// the pod security context would arrange on managed volume types.
	owner := strconv.FormatInt(*cfg.RunAsUser, 10)
	if cfg.FSGroup != nil {
		owner += ":" + strconv.FormatInt(*cfg.FSGroup, 10)
	} else if cfg.RunAsGroup != nil {
		owner += ":" + strconv.FormatInt(*cfg.RunAsGroup, 10)
	}

	paths := make([]string, 0, len(volumes))
	mounts := make([]corev1.VolumeMount, 0, len(volumes))
	for _, v := range volumes {
		paths = append(paths, v.MountPath)
		mounts = append(mounts, v.Mount())
	}

	return &corev1.Container{
		Name:         common.PermissionFixContainerName,
		Image:        common.PermissionFixImage,
		Command:      []string{"sh", "-c", fmt.Sprintf("chown -R %s %s", owner, strings.Join(paths, " "))},
		VolumeMounts: mounts,
		SecurityContext: &corev1.SecurityContext{
			RunAsUser: ptr.To(int64(0)),
		},
	}
}
