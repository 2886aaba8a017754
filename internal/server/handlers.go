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

package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	apierrors "k8s.io/apimachinery/pkg/api/errors"

	sipoperator "github.com/vroomfondel/sipstuff-k8s-operator"
	"github.com/vroomfondel/sipstuff-k8s-operator/api/v1alpha1"
	"github.com/vroomfondel/sipstuff-k8s-operator/internal/builder"
	"github.com/vroomfondel/sipstuff-k8s-operator/internal/scheduler"
)

func (s *Server) handleCall(w http.ResponseWriter, r *http.Request) {
	var req v1alpha1.CallRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	v1alpha1.SetCallRequestDefaults(&req)
	if err := req.Validate(); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	start := time.Now()
	job, err := builder.Build(&req, s.cfg)
	s.callMetrics.ObserveBuild(time.Since(start))
	if err != nil {
		var confErr *builder.ConfigurationError
		if errors.As(err, &confErr) {
			writeError(w, http.StatusBadRequest, confErr.Error())
			return
		}
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	created, err := s.manager.Submit(r.Context(), job)
	if err != nil {
		s.callMetrics.HandleFailedSubmission()
		s.logger.Error(err, "Failed to submit call job", "dest", req.Dest)
		writeError(w, http.StatusBadGateway, err.Error())
		return
	}
	s.callMetrics.HandleSubmitted()

	writeJSON(w, http.StatusCreated, v1alpha1.CallResponse{
		JobName:   created.Name,
		Namespace: created.Namespace,
		Status:    "created",
	})
}

func (s *Server) handleListJobs(w http.ResponseWriter, r *http.Request) {
	infos, err := s.manager.List(r.Context())
	if err != nil {
		s.logger.Error(err, "Failed to list call jobs")
		writeError(w, http.StatusBadGateway, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, infos)
}

func (s *Server) handleGetJob(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	info, err := s.manager.Get(r.Context(), name)
	if err != nil {
		if apierrors.IsNotFound(err) {
			writeError(w, http.StatusNotFound, fmt.Sprintf("job %q not found", name))
			return
		}
		s.logger.Error(err, "Failed to get call job", "name", name)
		writeError(w, http.StatusBadGateway, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, info)
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, v1alpha1.HealthResponse{
		Status:  "ok",
		Version: sipoperator.GetVersion().Version,
	})
}

func (s *Server) handleAddSchedule(w http.ResponseWriter, r *http.Request) {
	var sc v1alpha1.ScheduledCall
	if err := decodeJSON(r, &sc); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	status, err := s.schedules.Add(sc)
	if err != nil {
		if errors.Is(err, scheduler.ErrScheduleExists) {
			writeError(w, http.StatusConflict, err.Error())
			return
		}
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	writeJSON(w, http.StatusCreated, status)
}

func (s *Server) handleListSchedules(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.schedules.List())
}

func (s *Server) handleGetSchedule(w http.ResponseWriter, r *http.Request) {
	status, err := s.schedules.Get(chi.URLParam(r, "name"))
	if err != nil {
		writeError(w, http.StatusNotFound, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, status)
}

func (s *Server) handleDeleteSchedule(w http.ResponseWriter, r *http.Request) {
	if err := s.schedules.Delete(chi.URLParam(r, "name")); err != nil {
		writeError(w, http.StatusNotFound, err.Error())
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// decodeJSON decodes a request body, rejecting fields the API does not know
// so typos surface as errors instead of silently dropped settings.
func decodeJSON(r *http.Request, into any) error {
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(into); err != nil {
		return fmt.Errorf("invalid request body: %w", err)
	}
	return nil
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		logger.Error(err, "Failed to write JSON response")
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
