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

package server_test

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	batchv1 "k8s.io/api/batch/v1"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/apimachinery/pkg/runtime"
	"k8s.io/client-go/kubernetes/fake"
	k8stesting "k8s.io/client-go/testing"
	clocktesting "k8s.io/utils/clock/testing"
	"sigs.k8s.io/controller-runtime/pkg/log"

	"github.com/vroomfondel/sipstuff-k8s-operator/api/v1alpha1"
	"github.com/vroomfondel/sipstuff-k8s-operator/internal/config"
	"github.com/vroomfondel/sipstuff-k8s-operator/internal/orchestrator"
	"github.com/vroomfondel/sipstuff-k8s-operator/internal/scheduler"
	"github.com/vroomfondel/sipstuff-k8s-operator/internal/server"
	"github.com/vroomfondel/sipstuff-k8s-operator/pkg/common"
)

func testConfig() *config.OperatorConfig {
	return &config.OperatorConfig{
		Namespace:       "sipstuff",
		JobImage:        "ghcr.io/sipstuff/sipstuff:latest",
		SIPSecretName:   "sip-credentials",
		JobTTLSeconds:   3600,
		JobBackoffLimit: 0,
		HostNetwork:     true,
		Port:            8080,
	}
}

func newTestServer(cfg *config.OperatorConfig, kubeClient *fake.Clientset) *server.Server {
	manager := orchestrator.NewManager(kubeClient, cfg.Namespace, log.Log.WithName("orchestrator"))
	clk := clocktesting.NewFakeClock(time.Date(2025, 6, 1, 10, 30, 0, 0, time.UTC))
	schedules := scheduler.NewRegistry(cfg, manager, callMetrics, clk, log.Log.WithName("scheduler"))
	return server.NewServer(cfg, manager, schedules, callMetrics, httpMetrics, log.Log.WithName("server"))
}

func doRequest(srv *server.Server, method, target, body string) *httptest.ResponseRecorder {
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, reader)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)
	return rec
}

func errorMessage(rec *httptest.ResponseRecorder) string {
	var body map[string]string
	Expect(json.Unmarshal(rec.Body.Bytes(), &body)).To(Succeed())
	return body["error"]
}

func operatorJob(name string, status batchv1.JobStatus) *batchv1.Job {
	return &batchv1.Job{
		ObjectMeta: metav1.ObjectMeta{
			Name:      name,
			Namespace: "sipstuff",
			Labels: map[string]string{
				common.LabelApp:       common.LabelAppValue,
				common.LabelComponent: common.LabelComponentValue,
			},
		},
		Status: status,
	}
}

var _ = Describe("Server", func() {
	var (
		kubeClient *fake.Clientset
		srv        *server.Server
	)

	BeforeEach(func() {
		kubeClient = fake.NewSimpleClientset()
		srv = newTestServer(testConfig(), kubeClient)
	})

	Context("POST /call", func() {
		It("should submit a job and return 201", func() {
			rec := doRequest(srv, http.MethodPost, "/call", `{"dest":"+4915112345678","text":"hello"}`)
			Expect(rec.Code).To(Equal(http.StatusCreated))
			Expect(rec.Header().Get("Content-Type")).To(Equal("application/json"))

			var resp v1alpha1.CallResponse
			Expect(json.Unmarshal(rec.Body.Bytes(), &resp)).To(Succeed())
			Expect(resp.JobName).To(MatchRegexp(`^sipcall-\d{8}-\d{4}-[0-9a-f]{8}$`))
			Expect(resp.Namespace).To(Equal("sipstuff"))
			Expect(resp.Status).To(Equal("created"))

			job, err := kubeClient.BatchV1().Jobs("sipstuff").Get(context.TODO(), resp.JobName, metav1.GetOptions{})
			Expect(err).NotTo(HaveOccurred())
			Expect(job.Labels).To(HaveKeyWithValue(common.LabelApp, common.LabelAppValue))
			Expect(job.Labels).To(HaveKeyWithValue(common.LabelComponent, common.LabelComponentValue))
			Expect(job.Spec.Template.Spec.HostNetwork).To(BeTrue())
		})

		It("should attach a request ID to every response", func() {
			rec := doRequest(srv, http.MethodPost, "/call", `{"dest":"100","text":"hi"}`)
			Expect(rec.Header().Get("X-Request-ID")).NotTo(BeEmpty())
		})

		It("should reject malformed JSON", func() {
			rec := doRequest(srv, http.MethodPost, "/call", `{"dest":`)
			Expect(rec.Code).To(Equal(http.StatusBadRequest))
			Expect(errorMessage(rec)).To(ContainSubstring("invalid request body"))
		})

		It("should reject unknown fields", func() {
			rec := doRequest(srv, http.MethodPost, "/call", `{"dest":"100","text":"hi","bogus":true}`)
			Expect(rec.Code).To(Equal(http.StatusBadRequest))
			Expect(errorMessage(rec)).To(ContainSubstring("unknown field"))
		})

		It("should reject a request without a destination", func() {
			rec := doRequest(srv, http.MethodPost, "/call", `{"text":"hi"}`)
			Expect(rec.Code).To(Equal(http.StatusBadRequest))
			Expect(errorMessage(rec)).To(ContainSubstring("dest is required"))
		})

		It("should reject an out of range timeout", func() {
			rec := doRequest(srv, http.MethodPost, "/call", `{"dest":"100","text":"hi","timeout":0}`)
			Expect(rec.Code).To(Equal(http.StatusBadRequest))
			Expect(errorMessage(rec)).To(ContainSubstring("timeout must be between 1 and 600"))
		})

		It("should reject a request carrying both text and wav", func() {
			rec := doRequest(srv, http.MethodPost, "/call", `{"dest":"100","text":"hi","wav":"/data/a.wav"}`)
			Expect(rec.Code).To(Equal(http.StatusBadRequest))
			Expect(errorMessage(rec)).To(ContainSubstring("text_wav_exclusive"))
		})

		It("should reject transcription without a recording", func() {
			rec := doRequest(srv, http.MethodPost, "/call", `{"dest":"100","text":"hi","transcribe":true}`)
			Expect(rec.Code).To(Equal(http.StatusBadRequest))
			Expect(errorMessage(rec)).To(ContainSubstring("transcribe_requires_record"))
		})

		It("should return 502 when the cluster rejects the job", func() {
			kubeClient.PrependReactor("create", "jobs", func(_ k8stesting.Action) (bool, runtime.Object, error) {
				return true, nil, errors.New("apiserver is down")
			})

			rec := doRequest(srv, http.MethodPost, "/call", `{"dest":"100","text":"hi"}`)
			Expect(rec.Code).To(Equal(http.StatusBadGateway))
			Expect(errorMessage(rec)).To(ContainSubstring("apiserver is down"))
		})
	})

	Context("rate limiting", func() {
		It("should return 429 once the rate limit is exhausted", func() {
			cfg := testConfig()
			cfg.CallRateQPS = 0.001
			cfg.CallRateBurst = 1
			limited := newTestServer(cfg, fake.NewSimpleClientset())

			first := doRequest(limited, http.MethodPost, "/call", `{"dest":"100","text":"hi"}`)
			Expect(first.Code).To(Equal(http.StatusCreated))

			second := doRequest(limited, http.MethodPost, "/call", `{"dest":"100","text":"hi"}`)
			Expect(second.Code).To(Equal(http.StatusTooManyRequests))
			Expect(errorMessage(second)).To(ContainSubstring("rate limit"))
		})

		It("should leave read endpoints unlimited", func() {
			cfg := testConfig()
			cfg.CallRateQPS = 0.001
			cfg.CallRateBurst = 1
			limited := newTestServer(cfg, fake.NewSimpleClientset())

			for i := 0; i < 5; i++ {
				rec := doRequest(limited, http.MethodGet, "/jobs", "")
				Expect(rec.Code).To(Equal(http.StatusOK))
			}
		})
	})

	Context("GET /jobs", func() {
		It("should return an empty array when no jobs exist", func() {
			rec := doRequest(srv, http.MethodGet, "/jobs", "")
			Expect(rec.Code).To(Equal(http.StatusOK))
			Expect(strings.TrimSpace(rec.Body.String())).To(Equal("[]"))
		})

		It("should list operator jobs with their derived status", func() {
			_, err := kubeClient.BatchV1().Jobs("sipstuff").Create(context.TODO(),
				operatorJob("sipcall-20250601-1030-aaaaaaaa", batchv1.JobStatus{Succeeded: 1}), metav1.CreateOptions{})
			Expect(err).NotTo(HaveOccurred())
			_, err = kubeClient.BatchV1().Jobs("sipstuff").Create(context.TODO(),
				operatorJob("sipcall-20250601-1031-bbbbbbbb", batchv1.JobStatus{Active: 1}), metav1.CreateOptions{})
			Expect(err).NotTo(HaveOccurred())
			_, err = kubeClient.BatchV1().Jobs("sipstuff").Create(context.TODO(),
				&batchv1.Job{ObjectMeta: metav1.ObjectMeta{Name: "unrelated", Namespace: "sipstuff"}}, metav1.CreateOptions{})
			Expect(err).NotTo(HaveOccurred())

			rec := doRequest(srv, http.MethodGet, "/jobs", "")
			Expect(rec.Code).To(Equal(http.StatusOK))

			var infos []v1alpha1.JobInfo
			Expect(json.Unmarshal(rec.Body.Bytes(), &infos)).To(Succeed())
			Expect(infos).To(HaveLen(2))

			byName := make(map[string]v1alpha1.JobPhase, len(infos))
			for _, info := range infos {
				byName[info.Name] = info.Status
			}
			Expect(byName).To(HaveKeyWithValue("sipcall-20250601-1030-aaaaaaaa", v1alpha1.JobSucceeded))
			Expect(byName).To(HaveKeyWithValue("sipcall-20250601-1031-bbbbbbbb", v1alpha1.JobRunning))
		})
	})

	Context("GET /jobs/{name}", func() {
		It("should return a single job", func() {
			_, err := kubeClient.BatchV1().Jobs("sipstuff").Create(context.TODO(),
				operatorJob("sipcall-20250601-1030-cccccccc", batchv1.JobStatus{Failed: 1}), metav1.CreateOptions{})
			Expect(err).NotTo(HaveOccurred())

			rec := doRequest(srv, http.MethodGet, "/jobs/sipcall-20250601-1030-cccccccc", "")
			Expect(rec.Code).To(Equal(http.StatusOK))

			var info v1alpha1.JobInfo
			Expect(json.Unmarshal(rec.Body.Bytes(), &info)).To(Succeed())
			Expect(info.Name).To(Equal("sipcall-20250601-1030-cccccccc"))
			Expect(info.Namespace).To(Equal("sipstuff"))
			Expect(info.Status).To(Equal(v1alpha1.JobFailed))
		})

		It("should return 404 for an unknown job", func() {
			rec := doRequest(srv, http.MethodGet, "/jobs/nope", "")
			Expect(rec.Code).To(Equal(http.StatusNotFound))
			Expect(errorMessage(rec)).To(Equal(`job "nope" not found`))
		})
	})

	Context("GET /health", func() {
		It("should report ok and the build version", func() {
			rec := doRequest(srv, http.MethodGet, "/health", "")
			Expect(rec.Code).To(Equal(http.StatusOK))

			var resp v1alpha1.HealthResponse
			Expect(json.Unmarshal(rec.Body.Bytes(), &resp)).To(Succeed())
			Expect(resp.Status).To(Equal("ok"))
			Expect(resp.Version).NotTo(BeEmpty())
		})
	})

	Context("GET /metrics", func() {
		It("should expose call job metrics", func() {
			rec := doRequest(srv, http.MethodPost, "/call", `{"dest":"100","text":"hi"}`)
			Expect(rec.Code).To(Equal(http.StatusCreated))

			rec = doRequest(srv, http.MethodGet, "/metrics", "")
			Expect(rec.Code).To(Equal(http.StatusOK))
			Expect(rec.Body.String()).To(ContainSubstring("sipstuff_operator_call_job_submit_count"))
		})
	})

	Context("schedules", func() {
		const scheduleBody = `{"name":"morning-check","schedule":"*/5 * * * *","template":{"dest":"+4930111222","text":"ping"}}`

		It("should register a schedule and report its next run", func() {
			rec := doRequest(srv, http.MethodPost, "/schedules", scheduleBody)
			Expect(rec.Code).To(Equal(http.StatusCreated))

			var status v1alpha1.ScheduledCallStatus
			Expect(json.Unmarshal(rec.Body.Bytes(), &status)).To(Succeed())
			Expect(status.Name).To(Equal("morning-check"))
			Expect(status.Schedule).To(Equal("*/5 * * * *"))
			Expect(status.Suspend).To(BeFalse())
			Expect(status.LastRun).To(BeNil())
			Expect(status.NextRun).NotTo(BeNil())
			Expect(status.NextRun.Time.UTC()).To(Equal(time.Date(2025, 6, 1, 10, 35, 0, 0, time.UTC)))
		})

		It("should reject a duplicate name with 409", func() {
			rec := doRequest(srv, http.MethodPost, "/schedules", scheduleBody)
			Expect(rec.Code).To(Equal(http.StatusCreated))

			rec = doRequest(srv, http.MethodPost, "/schedules", scheduleBody)
			Expect(rec.Code).To(Equal(http.StatusConflict))
			Expect(errorMessage(rec)).To(ContainSubstring("morning-check"))
		})

		It("should reject an invalid cron expression", func() {
			rec := doRequest(srv, http.MethodPost, "/schedules",
				`{"name":"broken","schedule":"not-a-cron","template":{"dest":"100","text":"hi"}}`)
			Expect(rec.Code).To(Equal(http.StatusBadRequest))
		})

		It("should reject a name that is not a DNS-1123 label", func() {
			rec := doRequest(srv, http.MethodPost, "/schedules",
				`{"name":"Bad_Name","schedule":"*/5 * * * *","template":{"dest":"100","text":"hi"}}`)
			Expect(rec.Code).To(Equal(http.StatusBadRequest))
			Expect(errorMessage(rec)).To(ContainSubstring("DNS-1123"))
		})

		It("should reject a template that breaks a call rule", func() {
			rec := doRequest(srv, http.MethodPost, "/schedules",
				`{"name":"clashing","schedule":"*/5 * * * *","template":{"dest":"100","text":"hi","wav":"/data/a.wav"}}`)
			Expect(rec.Code).To(Equal(http.StatusBadRequest))
			Expect(errorMessage(rec)).To(ContainSubstring("text_wav_exclusive"))
		})

		It("should list registered schedules ordered by name", func() {
			rec := doRequest(srv, http.MethodPost, "/schedules",
				`{"name":"zulu","schedule":"@hourly","template":{"dest":"100","text":"hi"}}`)
			Expect(rec.Code).To(Equal(http.StatusCreated))
			rec = doRequest(srv, http.MethodPost, "/schedules",
				`{"name":"alpha","schedule":"@daily","template":{"dest":"100","text":"hi"}}`)
			Expect(rec.Code).To(Equal(http.StatusCreated))

			rec = doRequest(srv, http.MethodGet, "/schedules", "")
			Expect(rec.Code).To(Equal(http.StatusOK))

			var statuses []v1alpha1.ScheduledCallStatus
			Expect(json.Unmarshal(rec.Body.Bytes(), &statuses)).To(Succeed())
			Expect(statuses).To(HaveLen(2))
			Expect(statuses[0].Name).To(Equal("alpha"))
			Expect(statuses[1].Name).To(Equal("zulu"))
		})

		It("should get one schedule by name", func() {
			rec := doRequest(srv, http.MethodPost, "/schedules", scheduleBody)
			Expect(rec.Code).To(Equal(http.StatusCreated))

			rec = doRequest(srv, http.MethodGet, "/schedules/morning-check", "")
			Expect(rec.Code).To(Equal(http.StatusOK))

			var status v1alpha1.ScheduledCallStatus
			Expect(json.Unmarshal(rec.Body.Bytes(), &status)).To(Succeed())
			Expect(status.Name).To(Equal("morning-check"))
		})

		It("should return 404 for an unknown schedule", func() {
			rec := doRequest(srv, http.MethodGet, "/schedules/ghost", "")
			Expect(rec.Code).To(Equal(http.StatusNotFound))
		})

		It("should delete a schedule", func() {
			rec := doRequest(srv, http.MethodPost, "/schedules", scheduleBody)
			Expect(rec.Code).To(Equal(http.StatusCreated))

			rec = doRequest(srv, http.MethodDelete, "/schedules/morning-check", "")
			Expect(rec.Code).To(Equal(http.StatusNoContent))

			rec = doRequest(srv, http.MethodGet, "/schedules/morning-check", "")
			Expect(rec.Code).To(Equal(http.StatusNotFound))
		})
	})
})
