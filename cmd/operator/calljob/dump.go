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
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
	batchv1 "k8s.io/api/batch/v1"
	"sigs.k8s.io/yaml"

	"github.com/vroomfondel/sipstuff-k8s-operator/internal/builder"
)

var (
	jsonOutput bool
)

func NewDumpCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "dumpjob",
		Short: "Print the job a call request would create, without submitting it",
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
			return printJob(job, jsonOutput)
		},
	}

	registerRequestFlags(cmd)
	registerConfigFlags(cmd)
	cmd.Flags().BoolVar(&jsonOutput, "json-output", false, "Print the job as JSON instead of YAML.")

	return cmd
}

func printJob(job *batchv1.Job, asJSON bool) error {
	if asJSON {
		out, err := json.MarshalIndent(job, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal job: %v", err)
		}
		fmt.Println(string(out))
		return nil
	}

	out, err := yaml.Marshal(job)
	if err != nil {
		return fmt.Errorf("failed to marshal job: %v", err)
	}
	fmt.Print(string(out))
	return nil
}
