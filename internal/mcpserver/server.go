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


// Package mcpserver exposes the generator as Model Context Protocol tools
package mcpserver

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"go.uber.org/zap"

	"github.com/your-org/workflow-generator/internal/generator"
	"github.com/your-org/workflow-generator/internal/metrics"
	"github.com/your-org/workflow-generator/internal/workflow"
)

// Tool names
const (
	ToolSuggestTools     = "suggest_tools"
	ToolAnalyzeTabs      = "analyze_tabs"
	ToolGenerateWorkflow = "generate_workflow"
	ToolOptimizeWorkflow = "optimize_workflow"
)

const instructions = "Workflow Generator turns a goal into a structured plan. " +
	"Use generate_workflow for a step-by-step plan, suggest_tools for tool recommendations, " +
	"optimize_workflow for efficiency tips on an existing plan and analyze_tabs for a productivity insight about open browser tabs. " +
	"Every tool always answers; the source field says whether the result came from the model or from built-in fallback content."

// Generator is the generation service behind the tools
type Generator interface {
	SuggestTools(ctx context.Context, query string) ([]workflow.ToolRecommendation, generator.Outcome)
	AnalyzeTabs(ctx context.Context, tabs []workflow.TabInfo) (string, generator.Outcome)
	GenerateWorkflow(ctx context.Context, query, userContext string) (*workflow.Plan, generator.Outcome)
	OptimizeWorkflow(ctx context.Context, summary string) ([]string, generator.Outcome)
}

// Result is the JSON payload of every successful tool call
type Result struct {
	Result interface{} `json:"result"`
	Source string      `json:"source"`
	Reason string      `json:"reason,omitempty"`
}

// Server wraps an MCP server with the generator tool handlers
type Server struct {
	service   Generator
	metrics   *metrics.Collector
	logger    *zap.Logger
	mcpServer *server.MCPServer
}

// New creates a server with all tools registered. collector may be nil.
func New(service Generator, version string, collector *metrics.Collector, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}

	s := &Server{
		service: service,
		metrics: collector,
		logger:  logger,
	}

	mcpSrv := server.NewMCPServer(
		"workflow-generator",
		version,
		server.WithToolCapabilities(false),
		server.WithRecovery(),
		server.WithInstructions(instructions),
	)
	mcpSrv.AddTools(s.tools()...)
	s.mcpServer = mcpSrv
	return s
}

// Serve runs the stdio transport until ctx is cancelled or stdin closes
func (s *Server) Serve(ctx context.Context) error {
	stdio := server.NewStdioServer(s.mcpServer)
	return stdio.Listen(ctx, os.Stdin, os.Stdout)
}

// MCPServer returns the underlying server for custom transports
func (s *Server) MCPServer() *server.MCPServer {
	return s.mcpServer
}

func (s *Server) tools() []server.ServerTool {
	return []server.ServerTool{
		{Tool: suggestToolsTool(), Handler: s.handleSuggestTools},
		{Tool: analyzeTabsTool(), Handler: s.handleAnalyzeTabs},
		{Tool: generateWorkflowTool(), Handler: s.handleGenerateWorkflow},
		{Tool: optimizeWorkflowTool(), Handler: s.handleOptimizeWorkflow},
	}
}

func suggestToolsTool() mcp.Tool {
	return mcp.NewTool(ToolSuggestTools,
		mcp.WithDescription("Recommend 3-5 tools or resources for a task"),
		mcp.WithString("query", mcp.Required(), mcp.Description("Task or goal to find tools for")),
	)
}

func analyzeTabsTool() mcp.Tool {
	return mcp.NewTool(ToolAnalyzeTabs,
		mcp.WithDescription("Give one short productivity insight about a set of open browser tabs"),
		mcp.WithArray("tabs",
			mcp.Required(),
			mcp.Description("Open tabs, each with title, url and category"),
			mcp.Items(map[string]any{
				"type": "object",
				"properties": map[string]any{
					"title":    map[string]any{"type": "string"},
					"url":      map[string]any{"type": "string"},
					"category": map[string]any{"type": "string"},
				},
			}),
		),
	)
}

func generateWorkflowTool() mcp.Tool {
	return mcp.NewTool(ToolGenerateWorkflow,
		mcp.WithDescription("Generate a structured step-by-step workflow plan for a goal"),
		mcp.WithString("query", mcp.Required(), mcp.Description("Goal to plan for")),
		mcp.WithString("context", mcp.Description("Additional context about the user or situation")),
	)
}

func optimizeWorkflowTool() mcp.Tool {
	return mcp.NewTool(ToolOptimizeWorkflow,
		mcp.WithDescription("Suggest 3-5 optimizations for an existing workflow"),
		mcp.WithString("summary", mcp.Description("Short summary of the workflow")),
		mcp.WithObject("plan", mcp.Description("A plan returned by generate_workflow, used when summary is empty")),
	)
}

func (s *Server) handleSuggestTools(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	query, err := req.RequireString("query")
	if err != nil || strings.TrimSpace(query) == "" {
		return mcp.NewToolResultError("query is required"), nil
	}

	tools, outcome := s.service.SuggestTools(ctx, strings.TrimSpace(query))
	return s.marshalResult(ToolSuggestTools, tools, outcome)
}

func (s *Server) handleAnalyzeTabs(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var tabs []workflow.TabInfo
	if err := decodeArgument(req, "tabs", &tabs); err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("invalid tabs: %v", err)), nil
	}

	insight, outcome := s.service.AnalyzeTabs(ctx, tabs)
	return s.marshalResult(ToolAnalyzeTabs, insight, outcome)
}

func (s *Server) handleGenerateWorkflow(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	query, err := req.RequireString("query")
	if err != nil || strings.TrimSpace(query) == "" {
		return mcp.NewToolResultError("query is required"), nil
	}
	userContext := req.GetString("context", "")

	plan, outcome := s.service.GenerateWorkflow(ctx, strings.TrimSpace(query), userContext)
	return s.marshalResult(ToolGenerateWorkflow, plan, outcome)
}

func (s *Server) handleOptimizeWorkflow(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	summary := strings.TrimSpace(req.GetString("summary", ""))
	if summary == "" {
		var plan *workflow.Plan
		if err := decodeArgument(req, "plan", &plan); err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("invalid plan: %v", err)), nil
		}
		summary = generator.SummarizePlan(plan)
	}
	if summary == "" {
		return mcp.NewToolResultError("summary or plan is required"), nil
	}

	tips, outcome := s.service.OptimizeWorkflow(ctx, summary)
	return s.marshalResult(ToolOptimizeWorkflow, tips, outcome)
}

// decodeArgument re-encodes one loosely typed argument into target.
// A missing argument leaves target untouched.
func decodeArgument(req mcp.CallToolRequest, name string, target interface{}) error {
	value, ok := req.GetArguments()[name]
	if !ok || value == nil {
		return nil
	}
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	return json.Unmarshal(raw, target)
}

func (s *Server) marshalResult(tool string, result interface{}, outcome generator.Outcome) (*mcp.CallToolResult, error) {
	if s.metrics != nil {
		s.metrics.Record(tool, outcome.Degraded(), outcome.Reason.String(), outcome.Duration)
	}
	if outcome.Degraded() {
		s.logger.Warn("Serving fallback result",
			zap.String("tool", tool),
			zap.String("reason", outcome.Reason.String()))
	}

	data, err := json.Marshal(Result{
		Result: result,
		Source: string(outcome.Source),
		Reason: outcome.Reason.String(),
	})
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to marshal result: %v", err)), nil
	}
	return mcp.NewToolResultText(string(data)), nil
}
