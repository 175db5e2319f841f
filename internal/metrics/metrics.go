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

// Package metrics tracks how often generation succeeds and why it falls back
package metrics

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
)

// OperationMetrics tracks results for one generator operation
type OperationMetrics struct {
	TotalRequests   int64            `json:"total_requests"`
	ProviderResults int64            `json:"provider_results"`
	FallbackResults int64            `json:"fallback_results"`
	FallbackRate    float64          `json:"fallback_rate"`
	ByReason        map[string]int64 `json:"by_reason"`
	AvgDurationMs   float64          `json:"average_duration_ms"`
}

// AlertingConfig defines thresholds for alerting
type AlertingConfig struct {
	FallbackRateThreshold float64 `json:"fallback_rate_threshold"`
	MinimumSamples        int64   `json:"minimum_samples"`
	DurationThresholdMs   float64 `json:"duration_threshold_ms"`
}

// Snapshot is a point-in-time copy of the collected metrics
type Snapshot struct {
	Operations  map[string]OperationMetrics `json:"operations"`
	Alerting    AlertingConfig              `json:"alerting_config"`
	LastReset   time.Time                   `json:"last_reset"`
	CollectedAt time.Time                   `json:"collected_at"`
}

// Collector collects generation metrics. It is safe for concurrent use.
type Collector struct {
	mu            sync.RWMutex
	operations    map[string]*OperationMetrics
	alerting      AlertingConfig
	lastReset     time.Time
	logger        *zap.Logger
	alertCallback func(string, string, map[string]interface{})
}

// NewCollector creates a new metrics collector
func NewCollector(logger *zap.Logger, alertCallback func(string, string, map[string]interface{})) *Collector {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Collector{
		operations: make(map[string]*OperationMetrics),
		alerting: AlertingConfig{
			FallbackRateThreshold: 0.50,  // Alert if more than half the results are fallbacks
			MinimumSamples:        10,    // Ignore rates until there is enough traffic
			DurationThresholdMs:   30000, // Alert if average duration > 30s
		},
		lastReset:     time.Now(),
		logger:        logger,
		alertCallback: alertCallback,
	}
}

// Record adds one operation result. An empty reason marks a provider result.
func (c *Collector) Record(operation string, fallback bool, reason string, duration time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()

	m, ok := c.operations[operation]
	if !ok {
		m = &OperationMetrics{ByReason: make(map[string]int64)}
		c.operations[operation] = m
	}

	prevTotal := m.TotalRequests
	m.TotalRequests++

	if fallback {
		m.FallbackResults++
		if reason != "" {
			m.ByReason[reason]++
		}
	} else {
		m.ProviderResults++
	}
	m.FallbackRate = float64(m.FallbackResults) / float64(m.TotalRequests)

	// Running average
	ms := float64(duration.Milliseconds())
	if prevTotal == 0 {
		m.AvgDurationMs = ms
	} else {
		m.AvgDurationMs = (m.AvgDurationMs*float64(prevTotal) + ms) / float64(m.TotalRequests)
	}

	if m.TotalRequests >= c.alerting.MinimumSamples && m.FallbackRate > c.alerting.FallbackRateThreshold {
		c.triggerAlert("FALLBACK_RATE_HIGH", "Fallback rate exceeded threshold", map[string]interface{}{
			"operation":     operation,
			"fallback_rate": m.FallbackRate,
			"threshold":     c.alerting.FallbackRateThreshold,
			"reason":        reason,
		})
	}

	if m.AvgDurationMs > c.alerting.DurationThresholdMs {
		c.triggerAlert("DURATION_HIGH", "Average duration exceeded threshold", map[string]interface{}{
			"operation":   operation,
			"duration_ms": m.AvgDurationMs,
			"threshold":   c.alerting.DurationThresholdMs,
		})
	}
}

// Snapshot returns a copy of the current metrics
func (c *Collector) Snapshot() Snapshot {
	c.mu.RLock()
	defer c.mu.RUnlock()

	ops := make(map[string]OperationMetrics, len(c.operations))
	for name, m := range c.operations {
		cp := *m
		cp.ByReason = make(map[string]int64, len(m.ByReason))
		for reason, count := range m.ByReason {
			cp.ByReason[reason] = count
		}
		ops[name] = cp
	}

	return Snapshot{
		Operations:  ops,
		Alerting:    c.alerting,
		LastReset:   c.lastReset,
		CollectedAt: time.Now(),
	}
}

// Reset clears all counters
func (c *Collector) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.operations = make(map[string]*OperationMetrics)
	c.lastReset = time.Now()

	c.logger.Info("Generation metrics reset")
}

// triggerAlert sends an alert when thresholds are exceeded
func (c *Collector) triggerAlert(alertType, message string, metadata map[string]interface{}) {
	if c.alertCallback != nil {
		c.alertCallback(alertType, message, metadata)
	}

	c.logger.Warn("Generation alert triggered",
		zap.String("alert_type", alertType),
		zap.String("message", message),
		zap.Any("metadata", metadata),
	)
}

// HealthCheck reports degraded when any operation with enough traffic falls
// back more often than the alert threshold.
func (c *Collector) HealthCheck(_ context.Context) (bool, string, map[string]interface{}) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	healthy := true
	metadata := make(map[string]interface{})

	for name, m := range c.operations {
		metadata[name+"_fallback_rate"] = m.FallbackRate
		metadata[name+"_requests"] = m.TotalRequests
		if m.TotalRequests >= c.alerting.MinimumSamples && m.FallbackRate > c.alerting.FallbackRateThreshold {
			healthy = false
		}
	}

	status := "healthy"
	if !healthy {
		status = "degraded"
	}

	return healthy, status, metadata
}
