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

package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	// Import all Kubernetes client auth plugins (e.g. Azure, GCP, OIDC, etc.)
	// to ensure that exec-entrypoint and run can make use of them.
	_ "k8s.io/client-go/plugin/pkg/client/auth"

	"github.com/vroomfondel/sipstuff-k8s-operator/cmd/operator/calljob"
	"github.com/vroomfondel/sipstuff-k8s-operator/cmd/operator/conntest"
	"github.com/vroomfondel/sipstuff-k8s-operator/cmd/operator/server"
	"github.com/vroomfondel/sipstuff-k8s-operator/cmd/operator/version"
)

func NewCommand() *cobra.Command {
	command := &cobra.Command{
		Use:   "sipstuff-operator",
		Short: "SIP call operator",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return cmd.Help()
		},
	}
	command.AddCommand(server.NewCommand())
	command.AddCommand(conntest.NewCommand())
	command.AddCommand(calljob.NewDumpCommand())
	command.AddCommand(calljob.NewStartCommand())
	command.AddCommand(version.NewCommand())
	return command
}

func main() {
	if err := NewCommand().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(1)
	}
}
