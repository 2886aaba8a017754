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

package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"sigs.k8s.io/controller-runtime/pkg/log"
	"sigs.k8s.io/controller-runtime/pkg/metrics"

	"github.com/vroomfondel/sipstuff-k8s-operator/pkg/common"
	"github.com/vroomfondel/sipstuff-k8s-operator/pkg/util"
)

var logger = log.Log.WithName("")

// CallJobMetrics counts call job submissions and times job construction.
type CallJobMetrics struct {
	submitCount           prometheus.Counter
	failedSubmissionCount prometheus.Counter
	scheduledCount        prometheus.Counter
	buildSeconds          prometheus.Histogram
}

func NewCallJobMetrics() *CallJobMetrics {
	return &CallJobMetrics{
		submitCount: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: util.CreateValidMetricName(common.MetricsNamespace, common.MetricCallJobSubmitCount),
				Help: "Total number of submitted call jobs",
			},
		),
		failedSubmissionCount: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: util.CreateValidMetricName(common.MetricsNamespace, common.MetricCallJobFailedSubmissionCount),
				Help: "Total number of failed call job submissions",
			},
		),
		scheduledCount: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: util.CreateValidMetricName(common.MetricsNamespace, common.MetricCallJobScheduledCount),
				Help: "Total number of call jobs fired by schedules",
			},
		),
		buildSeconds: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    util.CreateValidMetricName(common.MetricsNamespace, common.MetricCallJobBuildSeconds),
				Help:    "Time spent assembling job specifications",
				Buckets: prometheus.DefBuckets,
			},
		),
	}
}

func (m *CallJobMetrics) Register() {
	if err := metrics.Registry.Register(m.submitCount); err != nil {
		logger.Error(err, "Failed to register call job metric", "name", common.MetricCallJobSubmitCount)
	}
	if err := metrics.Registry.Register(m.failedSubmissionCount); err != nil {
		logger.Error(err, "Failed to register call job metric", "name", common.MetricCallJobFailedSubmissionCount)
	}
	if err := metrics.Registry.Register(m.scheduledCount); err != nil {
		logger.Error(err, "Failed to register call job metric", "name", common.MetricCallJobScheduledCount)
	}
	if err := metrics.Registry.Register(m.buildSeconds); err != nil {
		logger.Error(err, "Failed to register call job metric", "name", common.MetricCallJobBuildSeconds)
	}
}

// HandleSubmitted records one accepted submission.
func (m *CallJobMetrics) HandleSubmitted() {
	m.submitCount.Inc()
}

// HandleFailedSubmission records one submission the cluster rejected.
func (m *CallJobMetrics) HandleFailedSubmission() {
	m.failedSubmissionCount.Inc()
}

// HandleScheduled records one job fired by the schedule registry.
func (m *CallJobMetrics) HandleScheduled() {
	m.scheduledCount.Inc()
}

// ObserveBuild records how long one builder invocation took.
func (m *CallJobMetrics) ObserveBuild(elapsed time.Duration) {
	m.buildSeconds.Observe(elapsed.Seconds())
}

// Handler serves the operator metrics registry in Prometheus exposition
// format.
func Handler() http.Handler {
	return promhttp.HandlerFor(metrics.Registry, promhttp.HandlerOpts{})
}
