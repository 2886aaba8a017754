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
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"sigs.k8s.io/controller-runtime/pkg/metrics"

	"github.com/vroomfondel/sipstuff-k8s-operator/pkg/common"
	"github.com/vroomfondel/sipstuff-k8s-operator/pkg/util"
)

// HTTPMetrics counts and times HTTP requests by route pattern, not raw
// path, so destination numbers and job names never become label values.
type HTTPMetrics struct {
	requestsTotal   *prometheus.CounterVec
	durationSeconds *prometheus.HistogramVec
}

func NewHTTPMetrics() *HTTPMetrics {
	return &HTTPMetrics{
		requestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: util.CreateValidMetricName(common.MetricsNamespace, common.MetricHTTPRequestsTotal),
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "route", "code"},
		),
		durationSeconds: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    util.CreateValidMetricName(common.MetricsNamespace, common.MetricHTTPRequestDurationSeconds),
				Help:    "HTTP request duration",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "route"},
		),
	}
}

func (m *HTTPMetrics) Register() {
	if err := metrics.Registry.Register(m.requestsTotal); err != nil {
		logger.Error(err, "Failed to register HTTP metric", "name", common.MetricHTTPRequestsTotal)
	}
	if err := metrics.Registry.Register(m.durationSeconds); err != nil {
		logger.Error(err, "Failed to register HTTP metric", "name", common.MetricHTTPRequestDurationSeconds)
	}
}

// HandleRequest records one served request.
func (m *HTTPMetrics) HandleRequest(method, route string, code int, elapsed time.Duration) {
	labels := prometheus.Labels{"method": method, "route": route, "code": strconv.Itoa(code)}
	counter, err := m.requestsTotal.GetMetricWith(labels)
	if err != nil {
		logger.Error(err, "Failed to collect HTTP metric", "metric", common.MetricHTTPRequestsTotal, "labels", labels)
		return
	}
	counter.Inc()

	observer, err := m.durationSeconds.GetMetricWith(prometheus.Labels{"method": method, "route": route})
	if err != nil {
		logger.Error(err, "Failed to collect HTTP metric", "metric", common.MetricHTTPRequestDurationSeconds, "labels", labels)
		return
	}
	observer.Observe(elapsed.Seconds())
}
