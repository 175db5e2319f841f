// Copyright 2024 Workflow Generator Project
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package main

import (
	"fmt"
	"os"

	"go.uber.org/zap"

	"github.com/your-org/workflow-generator/internal/config"
	"github.com/your-org/workflow-generator/internal/generator"
	"github.com/your-org/workflow-generator/internal/logging"
)

func main() {
	rootCmd := newRootCmd(loadGenerator)
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// loadGenerator builds the generator from configuration. Logs go to stderr
// at warn level so stdout stays machine readable.
func loadGenerator(configPath string, verbose bool) (Generator, func(), error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	cfg.Logging.Output = "stderr"
	if !verbose {
		cfg.Logging.Level = "warn"
	}
	logger, err := logging.New(cfg.Logging, "workflowctl")
	if err != nil {
		return nil, nil, fmt.Errorf("failed to initialize logger: %w", err)
	}

	svc, err := generator.NewFromConfig(cfg, logger)
	if err != nil {
		_ = logger.Sync()
		return nil, nil, fmt.Errorf("failed to initialize generator: %w", err)
	}
	if !svc.Configured() {
		logger.Warn("No API key configured, results will use fallback content",
			zap.String("backend", cfg.Provider.Backend))
	}

	return svc, func() { _ = logger.Sync() }, nil
}
