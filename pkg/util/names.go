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

package util

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/vroomfondel/sipstuff-k8s-operator/pkg/common"
)

// GenerateJobName returns a job name like "sipcall-20260208-1430-a7f3c2d1".
// The timestamp keeps names sortable; the uuid-derived suffix keeps them
// unique across concurrent submissions and operator replicas. The result is
// a valid DNS-1123 label.
func GenerateJobName(now time.Time) string {
	suffix := uuid.NewString()[:8]
	return fmt.Sprintf("%s-%s-%s", common.JobNamePrefix, now.UTC().Format("20060102-1504"), suffix)
}
