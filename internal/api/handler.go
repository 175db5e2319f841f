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

// Package api exposes the generator over HTTP
package api

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/your-org/workflow-generator/internal/generator"
	"github.com/your-org/workflow-generator/internal/health"
	"github.com/your-org/workflow-generator/internal/metrics"
	"github.com/your-org/workflow-generator/internal/resilience"
	"github.com/your-org/workflow-generator/internal/workflow"
)

const (
	maxQueryLength   = 10000
	maxContextLength = 20000
	maxTabs          = 100
)

// Generator is the generation service used by the handlers
type Generator interface {
	SuggestTools(ctx context.Context, query string) ([]workflow.ToolRecommendation, generator.Outcome)
	AnalyzeTabs(ctx context.Context, tabs []workflow.TabInfo) (string, generator.Outcome)
	GenerateWorkflow(ctx context.Context, query, userContext string) (*workflow.Plan, generator.Outcome)
	OptimizeWorkflow(ctx context.Context, summary string) ([]string, generator.Outcome)
}

// ToolsRequest asks for tool recommendations
type ToolsRequest struct {
	Query string `json:"query"`
}

// TabsRequest asks for an insight about open tabs
type TabsRequest struct {
	Tabs []workflow.TabInfo `json:"tabs"`
}

// WorkflowRequest asks for a workflow plan
type WorkflowRequest struct {
	Query   string `json:"query"`
	Context string `json:"context"`
}

// OptimizeRequest asks for optimizations of a plan, given either as a
// summary or as the plan itself.
type OptimizeRequest struct {
	Summary string         `json:"summary"`
	Plan    *workflow.Plan `json:"plan"`
}

// Meta describes how a result was produced
type Meta struct {
	Source           string `json:"source"`
	Reason           string `json:"reason,omitempty"`
	RequestID        string `json:"request_id"`
	ProcessingTimeMs int64  `json:"processing_time_ms"`
}

// Response wraps every successful result
type Response struct {
	Result interface{} `json:"result"`
	Meta   Meta        `json:"meta"`
}

// Handler serves the generator endpoints
type Handler struct {
	service func() Generator
	metrics *metrics.Collector
	health  *health.Manager
	errors  *resilience.ErrorHandler
	logger  *zap.Logger
}

// NewHandler creates a handler. service is called per request so the
// generator can be replaced while the server runs.
func NewHandler(service func() Generator, collector *metrics.Collector, healthManager *health.Manager, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	if collector == nil {
		collector = metrics.NewCollector(logger, nil)
	}
	return &Handler{
		service: service,
		metrics: collector,
		health:  healthManager,
		errors:  resilience.NewErrorHandler(logger),
		logger:  logger,
	}
}

// NewRouter builds a gin engine with the middleware chain and all routes
func NewRouter(h *Handler) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery(), RequestID(), RequestLogger(h.logger))
	h.RegisterRoutes(router)
	return router
}

// RegisterRoutes registers the API routes with the Gin router
func (h *Handler) RegisterRoutes(router *gin.Engine) {
	api := router.Group("/api/v1")
	{
		api.POST("/tools", h.suggestTools)
		api.POST("/tabs/insight", h.analyzeTabs)
		api.POST("/workflows", h.generateWorkflow)
		api.POST("/workflows/optimize", h.optimizeWorkflow)
	}

	if h.health != nil {
		router.GET("/health", gin.WrapF(h.health.HTTPHandler()))
	}
	router.GET("/metrics", h.getMetrics)

	router.NoRoute(func(c *gin.Context) {
		h.fail(c, resilience.NewNotFoundError("The requested resource was not found.", nil))
	})
}

// suggestTools handles POST /api/v1/tools
func (h *Handler) suggestTools(c *gin.Context) {
	var req ToolsRequest
	if !h.bind(c, &req) {
		return
	}
	if err := validateQuery(req.Query); err != nil {
		h.fail(c, err)
		return
	}

	tools, outcome := h.service().SuggestTools(c.Request.Context(), strings.TrimSpace(req.Query))
	h.respond(c, "suggest_tools", tools, outcome)
}

// analyzeTabs handles POST /api/v1/tabs/insight
func (h *Handler) analyzeTabs(c *gin.Context) {
	var req TabsRequest
	if !h.bind(c, &req) {
		return
	}
	if len(req.Tabs) > maxTabs {
		h.fail(c, resilience.NewBadRequestError(fmt.Sprintf("too many tabs (max %d)", maxTabs), nil))
		return
	}

	insight, outcome := h.service().AnalyzeTabs(c.Request.Context(), req.Tabs)
	h.respond(c, "analyze_tabs", insight, outcome)
}

// generateWorkflow handles POST /api/v1/workflows
func (h *Handler) generateWorkflow(c *gin.Context) {
	var req WorkflowRequest
	if !h.bind(c, &req) {
		return
	}
	if err := validateQuery(req.Query); err != nil {
		h.fail(c, err)
		return
	}
	if len(req.Context) > maxContextLength {
		h.fail(c, resilience.NewBadRequestError(fmt.Sprintf("context is too long (max %d characters)", maxContextLength), nil))
		return
	}

	plan, outcome := h.service().GenerateWorkflow(c.Request.Context(), strings.TrimSpace(req.Query), req.Context)
	h.respond(c, "generate_workflow", plan, outcome)
}

// optimizeWorkflow handles POST /api/v1/workflows/optimize
func (h *Handler) optimizeWorkflow(c *gin.Context) {
	var req OptimizeRequest
	if !h.bind(c, &req) {
		return
	}

	summary := strings.TrimSpace(req.Summary)
	if summary == "" {
		summary = generator.SummarizePlan(req.Plan)
	}
	if summary == "" {
		h.fail(c, resilience.NewBadRequestError("summary or plan is required", nil))
		return
	}
	if len(summary) > maxQueryLength {
		h.fail(c, resilience.NewBadRequestError(fmt.Sprintf("summary is too long (max %d characters)", maxQueryLength), nil))
		return
	}

	tips, outcome := h.service().OptimizeWorkflow(c.Request.Context(), summary)
	h.respond(c, "optimize_workflow", tips, outcome)
}

// getMetrics handles GET /metrics
func (h *Handler) getMetrics(c *gin.Context) {
	c.JSON(http.StatusOK, h.metrics.Snapshot())
}

func (h *Handler) bind(c *gin.Context, req interface{}) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		h.fail(c, resilience.NewBadRequestError("Invalid request format", err))
		return false
	}
	return true
}

func (h *Handler) respond(c *gin.Context, operation string, result interface{}, outcome generator.Outcome) {
	h.metrics.Record(operation, outcome.Degraded(), outcome.Reason.String(), outcome.Duration)

	meta := Meta{
		Source:           string(outcome.Source),
		Reason:           outcome.Reason.String(),
		RequestID:        requestIDFrom(c),
		ProcessingTimeMs: outcome.Duration.Milliseconds(),
	}

	if outcome.Degraded() {
		h.logger.Warn("Serving fallback result",
			zap.String("request_id", meta.RequestID),
			zap.String("operation", operation),
			zap.String("reason", meta.Reason))
	}

	c.JSON(http.StatusOK, Response{Result: result, Meta: meta})
}

func (h *Handler) fail(c *gin.Context, err error) {
	h.errors.WriteErrorResponse(c.Writer, err, requestIDFrom(c))
	c.Abort()
}

func validateQuery(query string) error {
	trimmed := strings.TrimSpace(query)
	if trimmed == "" {
		return resilience.NewBadRequestError("query cannot be empty", nil)
	}
	if len(trimmed) > maxQueryLength {
		return resilience.NewBadRequestError(fmt.Sprintf("query is too long (max %d characters)", maxQueryLength), nil)
	}
	return nil
}
