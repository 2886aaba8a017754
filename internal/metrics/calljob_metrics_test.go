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
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	prometheus_model "github.com/prometheus/client_model/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fetchCounterValue(c prometheus.Counter) float64 {
	pb := &prometheus_model.Metric{}
	if err := c.Write(pb); err != nil {
		return -1
	}
	return pb.GetCounter().GetValue()
}

func fetchHistogramSampleCount(h prometheus.Histogram) uint64 {
	pb := &prometheus_model.Metric{}
	if err := h.Write(pb); err != nil {
		return 0
	}
	return pb.GetHistogram().GetSampleCount()
}

func TestCallJobMetricsCounters(t *testing.T) {
	m := NewCallJobMetrics()

	m.HandleSubmitted()
	m.HandleSubmitted()
	m.HandleFailedSubmission()
	m.HandleScheduled()

	assert.Equal(t, float64(2), fetchCounterValue(m.submitCount))
	assert.Equal(t, float64(1), fetchCounterValue(m.failedSubmissionCount))
	assert.Equal(t, float64(1), fetchCounterValue(m.scheduledCount))
}

func TestCallJobMetricsObserveBuild(t *testing.T) {
	m := NewCallJobMetrics()

	m.ObserveBuild(12 * time.Millisecond)
	m.ObserveBuild(3 * time.Millisecond)

	assert.Equal(t, uint64(2), fetchHistogramSampleCount(m.buildSeconds))
}

func TestCallJobMetricsRegisterTwice(t *testing.T) {
	m := NewCallJobMetrics()
	// double registration must be survivable, not fatal
	m.Register()
	m.Register()
}

func TestHTTPMetricsHandleRequest(t *testing.T) {
	m := NewHTTPMetrics()

	m.HandleRequest("POST", "/call", 201, 5*time.Millisecond)
	m.HandleRequest("POST", "/call", 201, 7*time.Millisecond)
	m.HandleRequest("POST", "/call", 400, time.Millisecond)
	m.HandleRequest("GET", "/jobs", 200, time.Millisecond)

	created, err := m.requestsTotal.GetMetricWith(prometheus.Labels{"method": "POST", "route": "/call", "code": "201"})
	require.NoError(t, err)
	assert.Equal(t, float64(2), fetchCounterValue(created))

	rejected, err := m.requestsTotal.GetMetricWith(prometheus.Labels{"method": "POST", "route": "/call", "code": "400"})
	require.NoError(t, err)
	assert.Equal(t, float64(1), fetchCounterValue(rejected))

	duration, err := m.durationSeconds.GetMetricWith(prometheus.Labels{"method": "POST", "route": "/call"})
	require.NoError(t, err)
	histogram, ok := duration.(prometheus.Histogram)
	require.True(t, ok)
	assert.Equal(t, uint64(3), fetchHistogramSampleCount(histogram))
}
