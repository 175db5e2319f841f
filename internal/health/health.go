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

// Package health provides health check functionality for the generator service
package health

import (
	"context"
	"encoding/json"
	"net/http"
	"os"
	"runtime"
	"sort"
	"time"

	"go.uber.org/zap"
)

const (
	// StatusHealthy represents healthy status
	StatusHealthy = "healthy"
	// StatusUnhealthy represents unhealthy status
	StatusUnhealthy = "unhealthy"
	// StatusDegraded represents degraded status
	StatusDegraded = "degraded"
	// DefaultTimeout is the default timeout for health checks
	DefaultTimeout = 5 * time.Second
)

// CheckResult represents the result of a health check
type CheckResult struct {
	Status    string                 `json:"status"`
	Latency   time.Duration          `json:"latency"`
	Error     string                 `json:"error,omitempty"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
	Timestamp time.Time              `json:"timestamp"`
}

// Response represents the complete health check response
type Response struct {
	Status       string                 `json:"status"`
	Service      string                 `json:"service"`
	Version      string                 `json:"version"`
	Uptime       time.Duration          `json:"uptime"`
	Dependencies map[string]CheckResult `json:"dependencies"`
	Metadata     map[string]interface{} `json:"metadata"`
	Timestamp    time.Time              `json:"timestamp"`
}

// Checker interface for health checks
type Checker interface {
	Check(ctx context.Context) CheckResult
}

// CheckerFunc is a function adapter for the Checker interface
type CheckerFunc func(ctx context.Context) CheckResult

// Check implements the Checker interface
func (f CheckerFunc) Check(ctx context.Context) CheckResult {
	return f(ctx)
}

// Manager runs the registered checks. Checkers are registered during setup
// and must not be added concurrently with Check.
type Manager struct {
	serviceName string
	version     string
	startTime   time.Time
	checkers    map[string]Checker
	timeout     time.Duration
	logger      *zap.Logger
}

// NewManager creates a new health check manager
func NewManager(serviceName, version string, logger *zap.Logger) *Manager {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Manager{
		serviceName: serviceName,
		version:     version,
		startTime:   time.Now(),
		checkers:    make(map[string]Checker),
		timeout:     DefaultTimeout,
		logger:      logger,
	}
}

// SetTimeout sets the timeout for health checks
func (m *Manager) SetTimeout(timeout time.Duration) {
	m.timeout = timeout
}

// AddChecker adds a health checker
func (m *Manager) AddChecker(name string, checker Checker) {
	m.checkers[name] = checker
}

// Check performs all health checks and returns the result
func (m *Manager) Check(ctx context.Context) Response {
	ctx, cancel := context.WithTimeout(ctx, m.timeout)
	defer cancel()

	names := make([]string, 0, len(m.checkers))
	for name := range m.checkers {
		names = append(names, name)
	}
	sort.Strings(names)

	dependencies := make(map[string]CheckResult, len(names))
	overallStatus := StatusHealthy

	for _, name := range names {
		start := time.Now()
		result := m.checkers[name].Check(ctx)
		result.Latency = time.Since(start)
		result.Timestamp = time.Now()

		dependencies[name] = result

		if result.Status == StatusUnhealthy {
			overallStatus = StatusUnhealthy
		} else if result.Status == StatusDegraded && overallStatus != StatusUnhealthy {
			overallStatus = StatusDegraded
		}
	}

	return Response{
		Status:       overallStatus,
		Service:      m.serviceName,
		Version:      m.version,
		Uptime:       time.Since(m.startTime),
		Dependencies: dependencies,
		Metadata:     systemMetadata(),
		Timestamp:    time.Now(),
	}
}

// HTTPHandler returns a HTTP handler for health checks. Degraded still
// answers 200 since fallback content keeps every operation usable.
func (m *Manager) HTTPHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}

		result := m.Check(r.Context())

		statusCode := http.StatusOK
		if result.Status == StatusUnhealthy {
			statusCode = http.StatusServiceUnavailable
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(statusCode)

		if err := json.NewEncoder(w).Encode(result); err != nil {
			m.logger.Error("Failed to write health check response", zap.Error(err))
		}
	}
}

func systemMetadata() map[string]interface{} {
	var memStats runtime.MemStats
	runtime.ReadMemStats(&memStats)

	hostname, err := os.Hostname()
	if err != nil {
		hostname = "unknown"
	}

	return map[string]interface{}{
		"go_version":   runtime.Version(),
		"goroutines":   runtime.NumGoroutine(),
		"memory_alloc": memStats.Alloc,
		"hostname":     hostname,
		"process_id":   os.Getpid(),
	}
}

// ProviderChecker reports degraded when no completion provider is
// configured. configured is consulted on every check so it can follow
// configuration reloads.
func ProviderChecker(configured func() bool, backend, model string) Checker {
	return CheckerFunc(func(_ context.Context) CheckResult {
		metadata := map[string]interface{}{
			"backend": backend,
			"model":   model,
		}
		if !configured() {
			return CheckResult{
				Status:   StatusDegraded,
				Error:    "no provider API key configured; serving fallback content",
				Metadata: metadata,
			}
		}
		return CheckResult{Status: StatusHealthy, Metadata: metadata}
	})
}

// ReadinessChecker wraps a function that fails when a required component
// could not be built.
func ReadinessChecker(check func(ctx context.Context) error) Checker {
	return CheckerFunc(func(ctx context.Context) CheckResult {
		if err := check(ctx); err != nil {
			return CheckResult{Status: StatusUnhealthy, Error: err.Error()}
		}
		return CheckResult{Status: StatusHealthy}
	})
}
