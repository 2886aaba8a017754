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
	"k8s.io/utils/ptr"
)

// Documented defaults for call parameters.
const (
	DefaultTimeoutSeconds int32 = 60
	DefaultRepeat         int32 = 1
)

// SetCallRequestDefaults sets default values for unset fields of a CallRequest.
func SetCallRequestDefaults(r *CallRequest) {
	if r == nil {
		return
	}
	if r.Timeout == nil {
		r.Timeout = ptr.To(DefaultTimeoutSeconds)
	}
	if r.Repeat == nil {
		r.Repeat = ptr.To(DefaultRepeat)
	}
}

// SetScheduledCallDefaults sets default values for unset fields of a ScheduledCall.
func SetScheduledCallDefaults(s *ScheduledCall) {
	if s == nil {
		return
	}
	if s.Suspend == nil {
		s.Suspend = ptr.To(false)
	}
	SetCallRequestDefaults(&s.Template)
}
