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

// Package orchestrator submits call jobs to the cluster and reads them back.
package orchestrator

import (
	"context"
	"fmt"

	"github.com/go-logr/logr"
	batchv1 "k8s.io/api/batch/v1"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/apimachinery/pkg/labels"
	"k8s.io/client-go/kubernetes"

	"github.com/vroomfondel/sipstuff-k8s-operator/api/v1alpha1"
	"github.com/vroomfondel/sipstuff-k8s-operator/pkg/common"
)

// Manager owns all cluster I/O for call jobs. The builder never touches the
// cluster; everything it produces goes through here.
type Manager struct {
	kubeClient kubernetes.Interface
	namespace  string
	logger     logr.Logger
}

func NewManager(kubeClient kubernetes.Interface, namespace string, logger logr.Logger) *Manager {
	return &Manager{
		kubeClient: kubeClient,
		namespace:  namespace,
		logger:     logger,
	}
}

// Submit creates the job in the manager's namespace and returns the object
// as stored by the API server.
func (m *Manager) Submit(ctx context.Context, job *batchv1.Job) (*batchv1.Job, error) {
	created, err := m.kubeClient.BatchV1().Jobs(m.namespace).Create(ctx, job, metav1.CreateOptions{})
	if err != nil {
		return nil, fmt.Errorf("failed to create job %q in namespace %q: %w", job.Name, m.namespace, err)
	}
	m.logger.Info("Created call job", "name", created.Name, "namespace", created.Namespace)
	return created, nil
}

// Get returns the info for a single call job. Not-found errors from the API
// server are wrapped, not swallowed, so callers can map them with
// apierrors.IsNotFound.
func (m *Manager) Get(ctx context.Context, name string) (*v1alpha1.JobInfo, error) {
	job, err := m.kubeClient.BatchV1().Jobs(m.namespace).Get(ctx, name, metav1.GetOptions{})
	if err != nil {
		return nil, fmt.Errorf("failed to get job %q in namespace %q: %w", name, m.namespace, err)
	}
	info := infoOf(job)
	return &info, nil
}

// List returns info for every job this operator submitted, identified by the
// app label.
func (m *Manager) List(ctx context.Context) ([]v1alpha1.JobInfo, error) {
	selector := labels.Set{common.LabelApp: common.LabelAppValue}.AsSelector().String()
	jobList, err := m.kubeClient.BatchV1().Jobs(m.namespace).List(ctx, metav1.ListOptions{LabelSelector: selector})
	if err != nil {
		return nil, fmt.Errorf("failed to list jobs in namespace %q: %w", m.namespace, err)
	}

	infos := make([]v1alpha1.JobInfo, 0, len(jobList.Items))
	for i := range jobList.Items {
		infos = append(infos, infoOf(&jobList.Items[i]))
	}
	return infos, nil
}

// PhaseOf derives the coarse job phase from the job status counters.
func PhaseOf(job *batchv1.Job) v1alpha1.JobPhase {
	switch {
	case job.Status.Succeeded > 0:
		return v1alpha1.JobSucceeded
	case job.Status.Failed > 0:
		return v1alpha1.JobFailed
	case job.Status.Active > 0:
		return v1alpha1.JobRunning
	default:
		return v1alpha1.JobPending
	}
}

func infoOf(job *batchv1.Job) v1alpha1.JobInfo {
	created := job.CreationTimestamp
	return v1alpha1.JobInfo{
		Name:        job.Name,
		Namespace:   job.Namespace,
		Status:      PhaseOf(job),
		CreatedAt:   &created,
		CompletedAt: job.Status.CompletionTime,
	}
}
