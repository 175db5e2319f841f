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

package workflow

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestValidator(t *testing.T) *Validator {
	t.Helper()
	v, err := NewValidator()
	require.NoError(t, err)
	return v
}

func validTool() ToolRecommendation {
	return ToolRecommendation{
		Name:        "Notion",
		Description: "Organize research",
		Category:    "Productivity",
		URL:         "https://notion.so",
		Pricing:     PricingFreemium,
		Difficulty:  DifficultyBeginner,
	}
}

func validPlan() *Plan {
	return &Plan{
		Title:              "Launch a blog",
		Description:        "Get a blog online",
		TotalEstimatedTime: "3 hours",
		Complexity:         ComplexitySimple,
		Steps: []Step{
			{ID: "step-1", Title: "Plan", Priority: PriorityHigh, Tools: []ToolRecommendation{validTool()}},
			{ID: "step-2", Title: "Write", Priority: PriorityMedium, Dependencies: []string{"step-1"}},
			{ID: "step-3", Title: "Publish", Priority: PriorityLow, Dependencies: []string{"step-1", "step-2"}},
		},
		RecommendedTools: []ToolRecommendation{validTool()},
		EfficiencyTips:   []string{"Batch writing sessions"},
		Alternatives:     []string{"Use a hosted platform"},
	}
}

func TestDecodePlan(t *testing.T) {
	v := newTestValidator(t)

	raw := `{
		"title": "Ship an app",
		"description": "From idea to store",
		"totalEstimatedTime": "2 days",
		"complexity": "moderate",
		"steps": [
			{"id": "a", "title": "Design", "priority": "high",
			 "tools": [{"name": "Figma", "description": "Mockups", "category": "Design",
			            "url": "https://figma.com", "pricing": "freemium", "difficulty": "beginner"}]},
			{"id": "b", "title": "Build", "priority": "medium", "dependencies": ["a"]}
		]
	}`

	plan, err := v.DecodePlan([]byte(raw))
	require.NoError(t, err)
	assert.Equal(t, "Ship an app", plan.Title)
	require.Len(t, plan.Steps, 2)
	assert.Equal(t, []string{"a"}, plan.Steps[1].Dependencies)
	assert.NotNil(t, plan.Steps[0].Dependencies, "normalized to empty slice")
	assert.NotNil(t, plan.Steps[1].Tools, "normalized to empty slice")
	assert.NotNil(t, plan.RecommendedTools)
	assert.False(t, plan.Steps[0].Completed)
}

func TestDecodePlanRejects(t *testing.T) {
	v := newTestValidator(t)

	tests := []struct {
		name    string
		mutate  func(p *Plan)
		message string
	}{
		{
			name:    "missing title",
			mutate:  func(p *Plan) { p.Title = "" },
			message: "title",
		},
		{
			name:    "empty steps",
			mutate:  func(p *Plan) { p.Steps = []Step{} },
			message: "steps",
		},
		{
			name:    "bad complexity",
			mutate:  func(p *Plan) { p.Complexity = "extreme" },
			message: "complexity",
		},
		{
			name:    "bad priority",
			mutate:  func(p *Plan) { p.Steps[0].Priority = "urgent" },
			message: "priority",
		},
		{
			name:    "bad pricing",
			mutate:  func(p *Plan) { p.RecommendedTools[0].Pricing = "cheap" },
			message: "pricing",
		},
		{
			name:    "bad difficulty",
			mutate:  func(p *Plan) { p.Steps[0].Tools[0].Difficulty = "expert" },
			message: "difficulty",
		},
		{
			name:    "relative url",
			mutate:  func(p *Plan) { p.RecommendedTools[0].URL = "notion.so" },
			message: "url",
		},
		{
			name:    "duplicate id",
			mutate:  func(p *Plan) { p.Steps[1].ID = "step-1"; p.Steps[1].Dependencies = nil },
			message: "duplicate step id",
		},
		{
			name:    "unknown dependency",
			mutate:  func(p *Plan) { p.Steps[1].Dependencies = []string{"step-9"} },
			message: "unknown step",
		},
		{
			name:    "self dependency",
			mutate:  func(p *Plan) { p.Steps[0].Dependencies = []string{"step-1"} },
			message: "depends on itself",
		},
		{
			name:    "cycle",
			mutate:  func(p *Plan) { p.Steps[0].Dependencies = []string{"step-3"} },
			message: "dependency cycle",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			plan := validPlan()
			tt.mutate(plan)

			err := v.ValidatePlan(plan)
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrInvalid))
			assert.Contains(t, err.Error(), tt.message)
		})
	}
}

func TestValidatePlanAcceptsValidPlan(t *testing.T) {
	v := newTestValidator(t)
	assert.NoError(t, v.ValidatePlan(validPlan()))
	assert.Error(t, v.ValidatePlan(nil))
}

func TestDecodeTools(t *testing.T) {
	v := newTestValidator(t)

	tools, err := v.DecodeTools([]byte(`[{"name":"Linear","description":"Issues","category":"PM",
		"url":"https://linear.app","pricing":"paid","difficulty":"intermediate"}]`))
	require.NoError(t, err)
	require.Len(t, tools, 1)
	assert.Equal(t, "Linear", tools[0].Name)

	_, err = v.DecodeTools([]byte(`[]`))
	assert.ErrorIs(t, err, ErrInvalid)

	_, err = v.DecodeTools([]byte(`[{"name":"Linear","url":"https://linear.app"}]`))
	assert.ErrorIs(t, err, ErrInvalid, "pricing and difficulty are required")

	_, err = v.DecodeTools([]byte(`{"name":"Linear"}`))
	assert.ErrorIs(t, err, ErrInvalid)
}

func TestDecodeStrings(t *testing.T) {
	v := newTestValidator(t)

	out, err := v.DecodeStrings([]byte(`["one", "two"]`))
	require.NoError(t, err)
	assert.Equal(t, []string{"one", "two"}, out)

	for _, raw := range []string{`[]`, `[1, 2]`, `["ok", ""]`, `"text"`} {
		_, err := v.DecodeStrings([]byte(raw))
		assert.ErrorIs(t, err, ErrInvalid, raw)
	}
}

func TestFindCycle(t *testing.T) {
	steps := []Step{
		{ID: "a", Dependencies: []string{"c"}},
		{ID: "b", Dependencies: []string{"a"}},
		{ID: "c", Dependencies: []string{"b"}},
	}
	cycle := findCycle(steps)
	require.NotEmpty(t, cycle)
	assert.Equal(t, cycle[0], cycle[len(cycle)-1])

	assert.Nil(t, findCycle(validPlan().Steps))
}

func TestIsAbsoluteURL(t *testing.T) {
	assert.True(t, IsAbsoluteURL("https://figma.com"))
	assert.True(t, IsAbsoluteURL("http://localhost:3000/path"))
	assert.False(t, IsAbsoluteURL("figma.com"))
	assert.False(t, IsAbsoluteURL("https://"))
	assert.False(t, IsAbsoluteURL(""))
}

func TestValidationErrorMessage(t *testing.T) {
	err := invalid("plan", "a", "b")
	assert.True(t, strings.Contains(err.Error(), "2 violations"))
	assert.Equal(t, "invalid plan: a", invalid("plan", "a").Error())
}
