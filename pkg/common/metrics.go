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

package common

// MetricsNamespace prefixes every metric the operator exports.
const MetricsNamespace = "sipstuff_operator"

// Call job metric names.
const (
	MetricCallJobSubmitCount = "call_job_submit_count"

	MetricCallJobFailedSubmissionCount = "call_job_failed_submission_count"

	MetricCallJobScheduledCount = "call_job_scheduled_count"

	MetricCallJobBuildSeconds = "call_job_build_seconds"
)

// HTTP metric names.
const (
	MetricHTTPRequestsTotal = "http_requests_total"

	MetricHTTPRequestDurationSeconds = "http_request_duration_seconds"
)
