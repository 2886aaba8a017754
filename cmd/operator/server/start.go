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
	"flag"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"k8s.io/utils/clock"
	ctrl "sigs.k8s.io/controller-runtime"
	logzap "sigs.k8s.io/controller-runtime/pkg/log/zap"

	sipoperator "github.com/vroomfondel/sipstuff-k8s-operator"
	"github.com/vroomfondel/sipstuff-k8s-operator/internal/config"
	"github.com/vroomfondel/sipstuff-k8s-operator/internal/metrics"
	"github.com/vroomfondel/sipstuff-k8s-operator/internal/orchestrator"
	"github.com/vroomfondel/sipstuff-k8s-operator/internal/scheduler"
	httpserver "github.com/vroomfondel/sipstuff-k8s-operator/internal/server"
	"github.com/vroomfondel/sipstuff-k8s-operator/pkg/util"
)

var (
	logger = ctrl.Log.WithName("")
)

var (
	development bool
	zapOptions  = logzap.Options{}
)

func NewCommand() *cobra.Command {
	var command = &cobra.Command{
		Use:   "server",
		Short: "Start the call job HTTP server",
		PreRun: func(_ *cobra.Command, args []string) {
			development = viper.GetBool("development")
		},
		Run: func(_ *cobra.Command, args []string) {
			sipoperator.PrintVersion(false)
			start()
		},
	}

	command.Flags().Bool("development", false, "Use development logging (console encoder, colored levels).")
	viper.BindPFlag("development", command.Flags().Lookup("development"))

	flagSet := flag.NewFlagSet("server", flag.ExitOnError)
	ctrl.RegisterFlags(flagSet)
	zapOptions.BindFlags(flagSet)
	command.Flags().AddGoFlagSet(flagSet)

	return command
}

func start() {
	setupLog()

	cfg, err := config.Load()
	if err != nil {
		logger.Error(err, "Failed to load configuration")
		os.Exit(1)
	}

	// Echo the effective configuration once at startup. The secret is
	// referenced by name only; its values never pass through the operator.
	logger.Info("Loaded operator configuration",
		"namespace", cfg.Namespace,
		"jobImage", cfg.JobImage,
		"sipSecretName", cfg.SIPSecretName,
		"jobTTLSeconds", cfg.JobTTLSeconds,
		"jobBackoffLimit", cfg.JobBackoffLimit,
		"hostNetwork", cfg.HostNetwork,
		"piperDataDir", cfg.PiperDataDir,
		"whisperDataDir", cfg.WhisperDataDir,
		"recordingDir", cfg.RecordingDir,
		"runAsUser", cfg.RunAsUser,
		"runAsGroup", cfg.RunAsGroup,
		"fsGroup", cfg.FSGroup,
		"nodeSelector", cfg.NodeSelector,
		"port", cfg.Port,
		"callRateQPS", cfg.CallRateQPS,
		"callRateBurst", cfg.CallRateBurst,
	)

	// Create the clientset. Uses kubeConfig if given, otherwise assumes
	// in-cluster.
	clientset, err := util.GetClientset()
	if err != nil {
		logger.Error(err, "Failed to create clientset")
		os.Exit(1)
	}

	callMetrics := metrics.NewCallJobMetrics()
	callMetrics.Register()
	httpMetrics := metrics.NewHTTPMetrics()
	httpMetrics.Register()

	manager := orchestrator.NewManager(clientset, cfg.Namespace, ctrl.Log.WithName("orchestrator"))
	schedules := scheduler.NewRegistry(cfg, manager, callMetrics, clock.RealClock{}, ctrl.Log.WithName("scheduler"))

	ctx := ctrl.SetupSignalHandler()
	schedules.Start(ctx)

	srv := httpserver.NewServer(cfg, manager, schedules, callMetrics, httpMetrics, ctrl.Log.WithName("server"))
	logger.Info("Starting HTTP server", "port", cfg.Port)
	if err := srv.Run(ctx); err != nil {
		logger.Error(err, "Failed to run HTTP server")
		os.Exit(1)
	}
}

// setupLog configures the logging system.
func setupLog() {
	ctrl.SetLogger(logzap.New(
		logzap.UseFlagOptions(&zapOptions),
		func(o *logzap.Options) {
			o.Development = development
		}, func(o *logzap.Options) {
			o.ZapOpts = append(o.ZapOpts, zap.AddCaller())
		}, func(o *logzap.Options) {
			var config zapcore.EncoderConfig
			if !development {
				config = zap.NewProductionEncoderConfig()
			} else {
				config = zap.NewDevelopmentEncoderConfig()
				config.EncodeLevel = zapcore.CapitalColorLevelEncoder
			}
			config.EncodeTime = zapcore.ISO8601TimeEncoder
			config.EncodeCaller = zapcore.ShortCallerEncoder
			if !development {
				o.Encoder = zapcore.NewJSONEncoder(config)
			} else {
				o.Encoder = zapcore.NewConsoleEncoder(config)
			}
		}),
	)
}
