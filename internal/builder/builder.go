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

// Package builder turns validated call requests into Kubernetes batch jobs.
// Everything here is a pure function of the request and the operator
// configuration; the generated job name is the only non-deterministic piece.
package builder

import (
	"time"

	batchv1 "k8s.io/api/batch/v1"
	corev1 "k8s.io/api/core/v1"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/utils/ptr"

	"github.com/vroomfondel/sipstuff-k8s-operator/api/v1alpha1"
	"github.com/vroomfondel/sipstuff-k8s-operator/internal/config"
	"github.com/vroomfondel/sipstuff-k8s-operator/pkg/common"
	"github.com/vroomfondel/sipstuff-k8s-operator/pkg/util"
)

// Build assembles the batch job for one call request.
//
// The request is re-checked against the rules the call runtime cannot
// tolerate being broken, even when an upstream layer already validated it:
// this is the last stop before a job reaches the cluster.
func Build(req *v1alpha1.CallRequest, cfg *config.OperatorConfig) (*batchv1.Job, error) {
	if err := checkRules(req); err != nil {
		return nil, err
	}

	args := buildCallArgs(req)

	env := ResolveEnv(req, cfg.SIPSecretName)
	volumes := PlanVolumes(cfg)
	for _, v := range volumes {
		env = append(env, v.EnvVar())
	}

	var mounts []corev1.VolumeMount
	var podVolumes []corev1.Volume
	for _, v := range volumes {
		mounts = append(mounts, v.Mount())
		podVolumes = append(podVolumes, v.Volume())
	}

	podSpec := corev1.PodSpec{
		Containers: []corev1.Container{
			{
				Name:            common.SIPCallerContainerName,
				Image:           cfg.JobImage,
				ImagePullPolicy: corev1.PullAlways,
				Command:         args,
				Env:             env,
				VolumeMounts:    mounts,
			},
		},
		RestartPolicy:   corev1.RestartPolicyNever,
		HostNetwork:     cfg.HostNetwork,
		Volumes:         podVolumes,
		SecurityContext: podSecurityContext(cfg),
		NodeSelector:    resolveNodeSelector(req, cfg),
	}
	if init := NewPermissionFixContainer(cfg, volumes); init != nil {
		podSpec.InitContainers = []corev1.Container{*init}
	}

	job := &batchv1.Job{
		TypeMeta: metav1.TypeMeta{
			APIVersion: "batch/v1",
			Kind:       "Job",
		},
		ObjectMeta: metav1.ObjectMeta{
			Name:      util.GenerateJobName(time.Now()),
			Namespace: cfg.Namespace,
			Labels:    jobLabels(),
		},
		Spec: batchv1.JobSpec{
			Template: corev1.PodTemplateSpec{
				ObjectMeta: metav1.ObjectMeta{
					Labels: jobLabels(),
				},
				Spec: podSpec,
			},
			BackoffLimit:            ptr.To(cfg.JobBackoffLimit),
			TTLSecondsAfterFinished: ptr.To(cfg.JobTTLSeconds),
		},
	}
	return job, nil
}

// checkRules enforces the two request rules owned by the builder.
func checkRules(req *v1alpha1.CallRequest) error {
	hasText := req.HasText()
	hasWav := req.HasWav()
	if hasText && hasWav {
		return &ConfigurationError{
			Rule:   RuleTextWavExclusive,
			Detail: "exactly one of 'text' or 'wav' must be provided, not both",
		}
	}
	if !hasText && !hasWav {
		return &ConfigurationError{
			Rule:   RuleTextWavExclusive,
			Detail: "exactly one of 'text' or 'wav' must be provided",
		}
	}
	if req.Transcribe && (req.Record == nil || *req.Record == "") {
		return &ConfigurationError{
			Rule:   RuleTranscribeRequiresRecord,
			Detail: "transcribe requires 'record' to point at a recording file",
		}
	}
	return nil
}

// resolveNodeSelector applies the selector precedence: a request selector,
// even an explicit empty one, replaces the operator default entirely.
func resolveNodeSelector(req *v1alpha1.CallRequest, cfg *config.OperatorConfig) map[string]string {
	selector := cfg.NodeSelector
	if req.NodeSelector != nil {
		selector = req.NodeSelector
	}
	if len(selector) == 0 {
		return nil
	}
	out := make(map[string]string, len(selector))
	for k, v := range selector {
		out[k] = v
	}
	return out
}

func podSecurityContext(cfg *config.OperatorConfig) *corev1.PodSecurityContext {
	if cfg.RunAsUser == nil && cfg.RunAsGroup == nil && cfg.FSGroup == nil {
		return nil
	}
	return &corev1.PodSecurityContext{
		RunAsUser:  cfg.RunAsUser,
		RunAsGroup: cfg.RunAsGroup,
		FSGroup:    cfg.FSGroup,
	}
}

func jobLabels() map[string]string {
	return map[string]string{
		common.LabelApp:       common.LabelAppValue,
		common.LabelComponent: common.LabelComponentValue,
	}
}
