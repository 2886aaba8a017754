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

package conntest

import (
	"fmt"

	"github.com/spf13/cobra"
	"golang.org/x/mod/semver"

	"github.com/vroomfondel/sipstuff-k8s-operator/pkg/common"
	"github.com/vroomfondel/sipstuff-k8s-operator/pkg/util"
)

func NewCommand() *cobra.Command {
	command := &cobra.Command{
		Use:   "conntest",
		Short: "Test connectivity to the Kubernetes cluster",
		RunE: func(_ *cobra.Command, args []string) error {
			return run()
		},
	}
	return command
}

func run() error {
	clientset, err := util.GetClientset()
	if err != nil {
		return fmt.Errorf("failed to create Kubernetes client: %v", err)
	}

	serverVersion, err := clientset.Discovery().ServerVersion()
	if err != nil {
		return fmt.Errorf("failed to query the Kubernetes apiserver: %v", err)
	}

	fmt.Printf("Connected to Kubernetes %s (%s)\n", serverVersion.GitVersion, serverVersion.Platform)
	if semver.Compare(serverVersion.GitVersion, common.MinSupportedKubeVersion) < 0 {
		return fmt.Errorf("kubernetes %s is older than the minimum supported version %s", serverVersion.GitVersion, common.MinSupportedKubeVersion)
	}

	fmt.Printf("Cluster version meets the minimum supported %s\n", common.MinSupportedKubeVersion)
	return nil
}
