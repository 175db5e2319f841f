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

// Package logging builds the zap logger shared by the binaries
package logging

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/your-org/workflow-generator/internal/config"
)

// New builds a logger from the logging config. "json" selects the production
// encoder, anything else the development one. Output "file" writes to
// <service>.log and "stderr" keeps stdout free for protocol traffic.
func New(cfg config.LoggingConfig, service string) (*zap.Logger, error) {
	var zapConfig zap.Config

	if cfg.Format == "json" {
		zapConfig = zap.NewProductionConfig()
	} else {
		zapConfig = zap.NewDevelopmentConfig()
	}

	zapConfig.Level = zap.NewAtomicLevelAt(ParseLevel(cfg.Level))

	switch cfg.Output {
	case "file":
		zapConfig.OutputPaths = []string{service + ".log"}
		zapConfig.ErrorOutputPaths = []string{service + ".log"}
	case "stderr":
		zapConfig.OutputPaths = []string{"stderr"}
		zapConfig.ErrorOutputPaths = []string{"stderr"}
	default:
		zapConfig.OutputPaths = []string{"stdout"}
		zapConfig.ErrorOutputPaths = []string{"stderr"}
	}

	logger, err := zapConfig.Build()
	if err != nil {
		return nil, err
	}
	return logger.With(zap.String("service", service)), nil
}

// ParseLevel maps a config level name to a zap level, defaulting to info
func ParseLevel(level string) zapcore.Level {
	switch level {
	case "debug":
		return zapcore.DebugLevel
	case "warn":
		return zapcore.WarnLevel
	case "error":
		return zapcore.ErrorLevel
	default:
		return zapcore.InfoLevel
	}
}
