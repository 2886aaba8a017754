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
	"strconv"

	corev1 "k8s.io/api/core/v1"
	"k8s.io/utils/ptr"

	"github.com/vroomfondel/sipstuff-k8s-operator/api/v1alpha1"
	"github.com/vroomfondel/sipstuff-k8s-operator/pkg/common"
)

// envField resolves one credential or NAT field: the request override when
// present, a secret reference otherwise. The env var name doubles as the
// secret key.
type envField struct {
	name  string
	value func(r *v1alpha1.CallRequest) (string, bool)
}

// envSchema fixes the field order, so equal requests resolve to identical
// env lists.
var envSchema = []envField{
	{common.EnvSIPServer, func(r *v1alpha1.CallRequest) (string, bool) { return fromString(r.SIPServer) }},
	{common.EnvSIPPort, func(r *v1alpha1.CallRequest) (string, bool) { return fromInt32(r.SIPPort) }},
	{common.EnvSIPUser, func(r *v1alpha1.CallRequest) (string, bool) { return fromString(r.SIPUser) }},
	{common.EnvSIPPassword, func(r *v1alpha1.CallRequest) (string, bool) { return fromString(r.SIPPassword) }},
	{common.EnvSIPTransport, func(r *v1alpha1.CallRequest) (string, bool) { return fromTransport(r.SIPTransport) }},
	{common.EnvSIPSRTP, func(r *v1alpha1.CallRequest) (string, bool) {
		if r.SIPSRTP == nil {
			return "", false
		}
		return string(*r.SIPSRTP), true
	}},
	{common.EnvSIPTLSVerifyServer, func(r *v1alpha1.CallRequest) (string, bool) { return fromBool(r.SIPTLSVerify) }},
	{common.EnvSIPSTUNServers, func(r *v1alpha1.CallRequest) (string, bool) { return fromString(r.STUNServers) }},
	{common.EnvSIPICEEnabled, func(r *v1alpha1.CallRequest) (string, bool) { return fromBool(r.ICEEnabled) }},
	{common.EnvSIPTURNServer, func(r *v1alpha1.CallRequest) (string, bool) { return fromString(r.TURNServer) }},
	{common.EnvSIPTURNUsername, func(r *v1alpha1.CallRequest) (string, bool) { return fromString(r.TURNUsername) }},
	{common.EnvSIPTURNPassword, func(r *v1alpha1.CallRequest) (string, bool) { return fromString(r.TURNPassword) }},
	{common.EnvSIPTURNTransport, func(r *v1alpha1.CallRequest) (string, bool) { return fromTransport(r.TURNTransport) }},
	{common.EnvSIPKeepaliveSec, func(r *v1alpha1.CallRequest) (string, bool) { return fromInt32(r.KeepaliveSec) }},
	{common.EnvSIPPublicAddress, func(r *v1alpha1.CallRequest) (string, bool) { return fromString(r.PublicAddress) }},
}

// ResolveEnv produces the env entries for the caller container. Each schema
// field resolves independently: a request override becomes a literal value,
// anything else a reference into the credentials secret. A TURN server
// override additionally switches TURN on for the call runtime.
func ResolveEnv(req *v1alpha1.CallRequest, secretName string) []corev1.EnvVar {
	env := make([]corev1.EnvVar, 0, len(envSchema)+1)
	for _, field := range envSchema {
		if value, ok := field.value(req); ok {
			env = append(env, corev1.EnvVar{Name: field.name, Value: value})
		} else {
			env = append(env, secretEnv(field.name, secretName))
		}
	}
	if req.TURNServer != nil {
		env = append(env, corev1.EnvVar{Name: common.EnvSIPTURNEnabled, Value: "true"})
	}
	return env
}

// secretEnv references a key of the credentials secret. The reference is
// optional so that secrets holding only a subset of the keys stay usable;
// a missing key surfaces in the call runtime, not at submission.
func secretEnv(name, secretName string) corev1.EnvVar {
	return corev1.EnvVar{
		Name: name,
		ValueFrom: &corev1.EnvVarSource{
			SecretKeyRef: &corev1.SecretKeySelector{
				LocalObjectReference: corev1.LocalObjectReference{Name: secretName},
				Key:                  name,
				Optional:             ptr.To(true),
			},
		},
	}
}

func fromString(p *string) (string, bool) {
	if p == nil {
		return "", false
	}
	return *p, true
}

func fromInt32(p *int32) (string, bool) {
	if p == nil {
		return "", false
	}
	return strconv.Itoa(int(*p)), true
}

func fromBool(p *bool) (string, bool) {
	if p == nil {
		return "", false
	}
	return strconv.FormatBool(*p), true
}

func fromTransport(p *v1alpha1.TransportProtocol) (string, bool) {
	if p == nil {
		return "", false
	}
	return string(*p), true
}
