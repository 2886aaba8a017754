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

package calljob

import (
	"fmt"

	"github.com/spf13/cobra"
	ctrl "sigs.k8s.io/controller-runtime"

	"github.com/vroomfondel/sipstuff-k8s-operator/internal/builder"
	"github.com/vroomfondel/sipstuff-k8s-operator/internal/orchestrator"
	"github.com/vroomfondel/sipstuff-k8s-operator/pkg/util"
)

func NewStartCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "startjob",
		Short: "Build a call job and submit it to the cluster",
		RunE: func(cmd *cobra.Command, _ []string) error {
			req, err := buildCallRequest(cmd)
			if err != nil {
				return err
			}
			cfg, err := loadOperatorConfig(cmd)
			if err != nil {
				return err
			}
			job, err := builder.Build(req, cfg)
			if err != nil {
				return err
			}

			clientset, err := util.GetClientset()
			if err != nil {
				return fmt.Errorf("failed to create Kubernetes clientset: %v", err)
			}

			manager := orchestrator.NewManager(clientset, cfg.Namespace, ctrl.Log.WithName("orchestrator"))
			created, err := manager.Submit(cmd.Context(), job)
			if err != nil {
				return err
			}

			fmt.Printf("Created job %s in namespace %s\n", created.Name, created.Namespace)
			return nil
		},
	}

	registerRequestFlags(cmd)
	registerConfigFlags(cmd)

	return cmd
}
