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

// Package workflow defines the structured results produced by the generator:
// tool recommendations, workflow plans and the reasons a generation can fail.
package workflow

// Pricing tiers accepted for a tool recommendation
const (
	PricingFree     = "free"
	PricingFreemium = "freemium"
	PricingPaid     = "paid"
)

// Difficulty levels accepted for a tool recommendation
const (
	DifficultyBeginner     = "beginner"
	DifficultyIntermediate = "intermediate"
	DifficultyAdvanced     = "advanced"
)

// Step priorities
const (
	PriorityHigh   = "high"
	PriorityMedium = "medium"
	PriorityLow    = "low"
)

// Plan complexity levels
const (
	ComplexitySimple   = "simple"
	ComplexityModerate = "moderate"
	ComplexityComplex  = "complex"
)

// ToolRecommendation is one suggested external resource
type ToolRecommendation struct {
	Name        string `json:"name" yaml:"name"`
	Description string `json:"description" yaml:"description"`
	Category    string `json:"category" yaml:"category"`
	URL         string `json:"url" yaml:"url"`
	Pricing     string `json:"pricing" yaml:"pricing"`
	Difficulty  string `json:"difficulty" yaml:"difficulty"`
}

// Step is one unit of work inside a plan
type Step struct {
	ID            string               `json:"id" yaml:"id"`
	Title         string               `json:"title" yaml:"title"`
	Description   string               `json:"description" yaml:"description"`
	EstimatedTime string               `json:"estimatedTime" yaml:"estimated_time"`
	Tools         []ToolRecommendation `json:"tools" yaml:"tools"`
	Dependencies  []string             `json:"dependencies" yaml:"dependencies"`
	Priority      string               `json:"priority" yaml:"priority"`
	Category      string               `json:"category" yaml:"category"`
	Completed     bool                 `json:"completed" yaml:"completed"`
}

// Plan is the full structured result of a workflow request
type Plan struct {
	Title              string               `json:"title"`
	Description        string               `json:"description"`
	TotalEstimatedTime string               `json:"totalEstimatedTime"`
	Complexity         string               `json:"complexity"`
	Steps              []Step               `json:"steps"`
	RecommendedTools   []ToolRecommendation `json:"recommendedTools"`
	EfficiencyTips     []string             `json:"efficiencyTips"`
	Alternatives       []string             `json:"alternatives"`
}

// TabInfo describes one open browser tab handed to tab analysis
type TabInfo struct {
	Title    string `json:"title"`
	URL      string `json:"url"`
	Category string `json:"category"`
}

// Normalize replaces nil slices with empty ones so the plan always
// serializes with arrays rather than nulls.
func (p *Plan) Normalize() {
	if p.Steps == nil {
		p.Steps = []Step{}
	}
	if p.RecommendedTools == nil {
		p.RecommendedTools = []ToolRecommendation{}
	}
	if p.EfficiencyTips == nil {
		p.EfficiencyTips = []string{}
	}
	if p.Alternatives == nil {
		p.Alternatives = []string{}
	}
	for i := range p.Steps {
		if p.Steps[i].Tools == nil {
			p.Steps[i].Tools = []ToolRecommendation{}
		}
		if p.Steps[i].Dependencies == nil {
			p.Steps[i].Dependencies = []string{}
		}
	}
}

// StepIndex returns the position of the step with the given id, or -1
func (p *Plan) StepIndex(id string) int {
	for i := range p.Steps {
		if p.Steps[i].ID == id {
			return i
		}
	}
	return -1
}
